package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/veltrack-io/veltrack/internal/pkg/util"
)

type clientRepo struct {
	q querier
}

func (r *clientRepo) PIN(ctx context.Context, clientID int64) (string, error) {
	row := r.q.QueryRow(ctx, `SELECT pin FROM clients WHERE id = $1`, clientID)

	var pin sql.NullString
	if err := row.Scan(&pin); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", util.ErrNotFound
		}
		return "", fmt.Errorf("failed to query client: %w", err)
	}
	if !pin.Valid || pin.String == "" {
		return "", util.ErrPinNotSet
	}
	return pin.String, nil
}
