package core

import (
	"context"
	"time"

	"github.com/veltrack-io/veltrack/internal/engine/core/model"
)

// EventNotifier defines the interface for fanning out freshly appended
// semantic events to subscribed client applications.
// In Veltrack this is implemented by the MQTT outbound adapter.
type EventNotifier interface {
	// Notify publishes an event for the given plate. Best effort: the caller
	// logs failures but never fails ingestion on them.
	Notify(ctx context.Context, plate string, event *model.Event) error
}

// CommandDispatcher defines the interface for pushing confirmed ignition
// directives down to the tracker relay hardware.
type CommandDispatcher interface {
	// Dispatch publishes a directive for the given plate. Best effort: the
	// tracker applies it on its next connection if currently offline.
	Dispatch(ctx context.Context, plate string, command model.CommandType) error
}

// LiveState is the volatile last-known snapshot mirrored for fast status
// queries.
type LiveState struct {
	Plate     string
	Latitude  float64
	Longitude float64
	Ignition  bool
	Timestamp time.Time
}

// LiveStateStore defines the interface for the low-latency vehicle state
// mirror consulted by the status query path before falling back to the
// relational store.
type LiveStateStore interface {
	// Put overwrites the live snapshot for a plate.
	Put(ctx context.Context, state *LiveState) error

	// Get returns the live snapshot, or util.ErrNotFound when the mirror has
	// expired or was never written.
	Get(ctx context.Context, plate string) (*LiveState, error)
}

// ArchiveStore defines the interface for the object store holding position
// history exports.
type ArchiveStore interface {
	// Put uploads an export object.
	Put(ctx context.Context, objectKey string, contentType string, body []byte) error

	// PresignedURL generates a temporary download link for an uploaded object.
	PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
}
