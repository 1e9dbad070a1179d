package postgres

import (
	"context"
	"fmt"

	"github.com/veltrack-io/veltrack/internal/engine/core/model"
)

type commandLogRepo struct {
	q querier
}

func (r *commandLogRepo) Append(ctx context.Context, entry *model.CommandLogEntry) error {
	row := r.q.QueryRow(ctx,
		`INSERT INTO command_log (vehicle_id, command, origin, status, recorded_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		entry.VehicleID, entry.Command, entry.Origin, entry.Status, entry.Timestamp)
	if err := row.Scan(&entry.ID); err != nil {
		return fmt.Errorf("failed to insert command log entry: %w", err)
	}
	return nil
}
