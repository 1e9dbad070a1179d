// Package service implements the engine's business operations on top of the
// core repository and adapter contracts: telemetry ingestion and movement
// classification, remote ignition commands, online status queries and
// position history exports.
package service

import (
	"errors"
	"time"

	"github.com/veltrack-io/veltrack/internal/engine/core"
	"github.com/veltrack-io/veltrack/pkg/log"
)

// Operation errors surfaced to transports. Transports map these onto their
// own status codes; everything else is an internal fault.
var (
	ErrVehicleNotFound    = errors.New("vehicle not found")
	ErrClientNotFound     = errors.New("client not found")
	ErrPinNotConfigured   = errors.New("security code not configured")
	ErrPinMismatch        = errors.New("security code mismatch")
	ErrInvalidCommand     = errors.New("invalid command type")
	ErrInvalidCoordinates = errors.New("coordinates out of range")
)

// onlineWindow is how recent the last sign of life must be for a vehicle to
// be reported online. Trackers beacon every few seconds when powered.
const onlineWindow = 9 * time.Second

// Service executes the engine's operations. The live store, notifier and
// archive adapters are optional; a nil adapter disables the corresponding
// side channel without affecting the authoritative flow.
type Service struct {
	repo       core.Repository
	live       core.LiveStateStore
	notifier   core.EventNotifier
	dispatcher core.CommandDispatcher
	archive    core.ArchiveStore
	classifier *Classifier
	logger     log.Logger

	// now is replaceable for tests.
	now func() time.Time
}

// New creates a Service.
func New(
	repo core.Repository,
	live core.LiveStateStore,
	notifier core.EventNotifier,
	dispatcher core.CommandDispatcher,
	archive core.ArchiveStore,
	classifier *Classifier,
	logger log.Logger,
) *Service {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Service{
		repo:       repo,
		live:       live,
		notifier:   notifier,
		dispatcher: dispatcher,
		archive:    archive,
		classifier: classifier,
		logger:     logger,
		now:        time.Now,
	}
}
