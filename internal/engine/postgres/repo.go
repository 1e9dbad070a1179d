// Package postgres implements the engine's storage contracts on PostgreSQL
// via pgx connection pooling.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veltrack-io/veltrack/internal/engine/core"
)

// querier is the query surface shared by *pgxpool.Pool and pgx.Tx, so the
// same entity repositories serve both pooled and transactional access.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repo is the PostgreSQL-backed core.Repository. The zero pool form is the
// transaction-scoped view handed to InTx callbacks.
type Repo struct {
	pool *pgxpool.Pool
	q    querier
}

var _ core.Repository = (*Repo)(nil)

// New connects to PostgreSQL and verifies the connection.
func New(ctx context.Context, dsn string) (*Repo, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Repo{pool: pool, q: pool}, nil
}

// Close releases the connection pool.
func (r *Repo) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// Ping reports database reachability for readiness checks.
func (r *Repo) Ping(ctx context.Context) error {
	if r.pool == nil {
		return errors.New("no connection pool")
	}
	return r.pool.Ping(ctx)
}

func (r *Repo) Vehicle() core.VehicleRepository       { return &vehicleRepo{r.q} }
func (r *Repo) Position() core.PositionRepository     { return &positionRepo{r.q} }
func (r *Repo) Event() core.EventRepository           { return &eventRepo{r.q} }
func (r *Repo) Client() core.ClientRepository         { return &clientRepo{r.q} }
func (r *Repo) CommandLog() core.CommandLogRepository { return &commandLogRepo{r.q} }

// InTx runs fn inside a transaction holding a plate-scoped advisory lock, so
// concurrent writers touching the same vehicle serialize while distinct
// plates proceed in parallel.
func (r *Repo) InTx(ctx context.Context, plate string, fn func(core.Repository) error) error {
	if r.pool == nil {
		return errors.New("nested transactions are not supported")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", plate); err != nil {
		return fmt.Errorf("failed to acquire plate lock: %w", err)
	}

	if err := fn(&Repo{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// EnsureSchema creates the tables and indexes if they do not exist yet.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS clients (
			id        BIGSERIAL PRIMARY KEY,
			name      TEXT NOT NULL,
			pin       TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS vehicles (
			id           BIGSERIAL PRIMARY KEY,
			plate        TEXT NOT NULL UNIQUE,
			client_id    BIGINT NOT NULL REFERENCES clients (id),
			ignition     BOOLEAN NOT NULL DEFAULT FALSE,
			last_contact TIMESTAMPTZ,
			active       BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS positions (
			id          BIGSERIAL PRIMARY KEY,
			plate       TEXT NOT NULL,
			latitude    DOUBLE PRECISION NOT NULL,
			longitude   DOUBLE PRECISION NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS positions_plate_recorded_at_idx
			ON positions (plate, recorded_at DESC)`,
		`CREATE TABLE IF NOT EXISTS events (
			id          BIGSERIAL PRIMARY KEY,
			vehicle_id  BIGINT NOT NULL REFERENCES vehicles (id),
			client_id   BIGINT REFERENCES clients (id),
			type        TEXT NOT NULL,
			description TEXT NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL,
			read        BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS events_vehicle_recorded_at_idx
			ON events (vehicle_id, recorded_at DESC, id DESC)`,
		`CREATE TABLE IF NOT EXISTS command_log (
			id          BIGSERIAL PRIMARY KEY,
			vehicle_id  BIGINT NOT NULL REFERENCES vehicles (id),
			command     TEXT NOT NULL,
			origin      TEXT NOT NULL,
			status      TEXT NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := r.q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
