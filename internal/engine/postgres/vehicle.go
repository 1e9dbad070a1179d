package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/veltrack-io/veltrack/internal/engine/core/model"
	"github.com/veltrack-io/veltrack/internal/pkg/util"
)

type vehicleRepo struct {
	q querier
}

func (r *vehicleRepo) GetByPlate(ctx context.Context, plate string) (*model.Vehicle, error) {
	row := r.q.QueryRow(ctx,
		`SELECT id, plate, client_id, ignition, last_contact, active
		 FROM vehicles WHERE plate = $1`, plate)

	var (
		v           model.Vehicle
		lastContact sql.NullTime
	)
	if err := row.Scan(&v.ID, &v.Plate, &v.ClientID, &v.Ignition, &lastContact, &v.Active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query vehicle: %w", err)
	}
	if lastContact.Valid {
		v.LastContact = lastContact.Time
	}
	return &v, nil
}

func (r *vehicleRepo) SetIgnition(ctx context.Context, vehicleID int64, on bool) error {
	tag, err := r.q.Exec(ctx, `UPDATE vehicles SET ignition = $2 WHERE id = $1`, vehicleID, on)
	if err != nil {
		return fmt.Errorf("failed to update ignition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return util.ErrNotFound
	}
	return nil
}

func (r *vehicleRepo) TouchLastContact(ctx context.Context, vehicleID int64, ts time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE vehicles SET last_contact = GREATEST(COALESCE(last_contact, $2), $2) WHERE id = $1`,
		vehicleID, ts)
	if err != nil {
		return fmt.Errorf("failed to update last contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return util.ErrNotFound
	}
	return nil
}
