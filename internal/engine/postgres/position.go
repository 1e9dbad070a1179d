package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/veltrack-io/veltrack/internal/engine/core/model"
	"github.com/veltrack-io/veltrack/internal/pkg/util"
)

type positionRepo struct {
	q querier
}

func (r *positionRepo) LastByPlate(ctx context.Context, plate string) (*model.Position, error) {
	row := r.q.QueryRow(ctx,
		`SELECT id, plate, latitude, longitude, recorded_at
		 FROM positions WHERE plate = $1
		 ORDER BY recorded_at DESC, id DESC LIMIT 1`, plate)

	var p model.Position
	if err := row.Scan(&p.ID, &p.Plate, &p.Latitude, &p.Longitude, &p.Timestamp); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query last position: %w", err)
	}
	return &p, nil
}

func (r *positionRepo) Append(ctx context.Context, p *model.Position) error {
	row := r.q.QueryRow(ctx,
		`INSERT INTO positions (plate, latitude, longitude, recorded_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		p.Plate, p.Latitude, p.Longitude, p.Timestamp)
	if err := row.Scan(&p.ID); err != nil {
		return fmt.Errorf("failed to insert position: %w", err)
	}
	return nil
}

func (r *positionRepo) Range(ctx context.Context, plate string, from, to time.Time) ([]model.Position, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, plate, latitude, longitude, recorded_at
		 FROM positions
		 WHERE plate = $1 AND recorded_at BETWEEN $2 AND $3
		 ORDER BY recorded_at ASC, id ASC`,
		plate, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var out []model.Position
	for rows.Next() {
		var p model.Position
		if err := rows.Scan(&p.ID, &p.Plate, &p.Latitude, &p.Longitude, &p.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate positions: %w", err)
	}
	return out, nil
}
