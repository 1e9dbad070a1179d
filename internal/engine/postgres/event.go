package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/veltrack-io/veltrack/internal/engine/core/model"
	"github.com/veltrack-io/veltrack/internal/pkg/util"
)

type eventRepo struct {
	q querier
}

func (r *eventRepo) LastByVehicle(ctx context.Context, vehicleID int64) (*model.Event, error) {
	row := r.q.QueryRow(ctx,
		`SELECT id, vehicle_id, client_id, type, description, recorded_at, read
		 FROM events WHERE vehicle_id = $1
		 ORDER BY recorded_at DESC, id DESC LIMIT 1`, vehicleID)

	var (
		e        model.Event
		clientID sql.NullInt64
	)
	if err := row.Scan(&e.ID, &e.VehicleID, &clientID, &e.Type, &e.Description, &e.Timestamp, &e.Read); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query last event: %w", err)
	}
	if clientID.Valid {
		e.ClientID = clientID.Int64
	}
	return &e, nil
}

func (r *eventRepo) Append(ctx context.Context, e *model.Event) error {
	var clientID any
	if e.ClientID != 0 {
		clientID = e.ClientID
	}

	row := r.q.QueryRow(ctx,
		`INSERT INTO events (vehicle_id, client_id, type, description, recorded_at, read)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		e.VehicleID, clientID, e.Type, e.Description, e.Timestamp, e.Read)
	if err := row.Scan(&e.ID); err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}
