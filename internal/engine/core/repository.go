package core

import (
	"context"
	"time"

	"github.com/veltrack-io/veltrack/internal/engine/core/model"
)

// VehicleRepository defines the interface for vehicle persistent data.
type VehicleRepository interface {
	// GetByPlate retrieves a vehicle by its license plate.
	// Returns util.ErrNotFound when the plate is unknown.
	GetByPlate(ctx context.Context, plate string) (*model.Vehicle, error)

	// SetIgnition updates the authoritative ignition flag.
	SetIgnition(ctx context.Context, vehicleID int64, on bool) error

	// TouchLastContact records the last communication timestamp.
	TouchLastContact(ctx context.Context, vehicleID int64, ts time.Time) error
}

// PositionRepository defines the interface for the append-only position log.
type PositionRepository interface {
	// LastByPlate returns the most recent stored position for a plate.
	// Returns util.ErrNotFound when no position exists yet.
	LastByPlate(ctx context.Context, plate string) (*model.Position, error)

	// Append stores a new position sample.
	Append(ctx context.Context, p *model.Position) error

	// Range returns raw samples for a plate in [from, to], oldest first.
	Range(ctx context.Context, plate string, from, to time.Time) ([]model.Position, error)
}

// EventRepository defines the interface for the append-only semantic event log.
type EventRepository interface {
	// LastByVehicle returns the most recent event for a vehicle.
	// Returns util.ErrNotFound when the vehicle has no event history.
	LastByVehicle(ctx context.Context, vehicleID int64) (*model.Event, error)

	// Append stores a new semantic event.
	Append(ctx context.Context, e *model.Event) error
}

// ClientRepository exposes the client-held security code.
type ClientRepository interface {
	// PIN returns the client's configured security code.
	// Returns util.ErrNotFound for unknown clients and util.ErrPinNotSet when
	// the client exists but never configured a code.
	PIN(ctx context.Context, clientID int64) (string, error)
}

// CommandLogRepository defines the interface for the ignition command audit log.
type CommandLogRepository interface {
	// Append stores a new command log entry.
	Append(ctx context.Context, entry *model.CommandLogEntry) error
}

// Repository aggregates the storage contracts the engine consumes.
type Repository interface {
	Vehicle() VehicleRepository
	Position() PositionRepository
	Event() EventRepository
	Client() ClientRepository
	CommandLog() CommandLogRepository

	// InTx runs fn against transaction-scoped repositories. All writes issued
	// through the passed Repository become visible atomically on commit.
	// Implementations must serialize transactions touching the same plate.
	InTx(ctx context.Context, plate string, fn func(Repository) error) error
}
