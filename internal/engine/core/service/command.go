package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/veltrack-io/veltrack/internal/engine/core"
	"github.com/veltrack-io/veltrack/internal/engine/core/model"
	"github.com/veltrack-io/veltrack/internal/pkg/metrics"
	"github.com/veltrack-io/veltrack/internal/pkg/util"
)

// CommandRequest is a remote ignition request from a client application or
// the central operator console.
type CommandRequest struct {
	Plate    string
	Command  model.CommandType
	ClientID int64
	PIN      string
	Origin   model.CommandOrigin
}

// CommandResult reports an accepted command.
type CommandResult struct {
	Status   model.CommandStatus
	Ignition bool
	Event    model.Event
}

// SubmitIgnitionCommand authorizes and applies a remote cut or reactivation.
// On success the ignition flag, the audit log entry and the semantic event
// commit atomically. Authorization failures leave no trace in vehicle state.
func (s *Service) SubmitIgnitionCommand(ctx context.Context, req *CommandRequest) (*CommandResult, error) {
	if !req.Command.Valid() {
		metrics.CommandsTotal.WithLabelValues(string(req.Command), "denied").Inc()
		return nil, fmt.Errorf("%w: %q", ErrInvalidCommand, req.Command)
	}
	origin := req.Origin
	if origin == "" {
		origin = model.CommandOriginApp
	}

	out := &CommandResult{}
	err := s.repo.InTx(ctx, req.Plate, func(r core.Repository) error {
		vehicle, err := r.Vehicle().GetByPlate(ctx, req.Plate)
		if err != nil {
			if errors.Is(err, util.ErrNotFound) {
				return ErrVehicleNotFound
			}
			return fmt.Errorf("failed to load vehicle: %w", err)
		}

		pin, err := r.Client().PIN(ctx, req.ClientID)
		if err != nil {
			switch {
			case errors.Is(err, util.ErrNotFound):
				return ErrClientNotFound
			case errors.Is(err, util.ErrPinNotSet):
				return ErrPinNotConfigured
			}
			return fmt.Errorf("failed to load security code: %w", err)
		}
		if subtle.ConstantTimeCompare([]byte(pin), []byte(req.PIN)) != 1 {
			s.logger.Warn("Rejected ignition command with wrong security code",
				"plate", req.Plate, "client", req.ClientID, "command", req.Command)
			return ErrPinMismatch
		}

		now := s.now()
		on := req.Command == model.CommandTypeReactivate

		if err := r.Vehicle().SetIgnition(ctx, vehicle.ID, on); err != nil {
			return fmt.Errorf("failed to update ignition flag: %w", err)
		}
		if err := r.Vehicle().TouchLastContact(ctx, vehicle.ID, now); err != nil {
			return fmt.Errorf("failed to record last contact: %w", err)
		}
		if err := r.CommandLog().Append(ctx, &model.CommandLogEntry{
			VehicleID: vehicle.ID,
			Command:   req.Command,
			Origin:    origin,
			Status:    model.CommandStatusConfirmed,
			Timestamp: now,
		}); err != nil {
			return fmt.Errorf("failed to append command log entry: %w", err)
		}

		event := model.Event{
			VehicleID: vehicle.ID,
			ClientID:  req.ClientID,
			Timestamp: now,
		}
		if on {
			event.Type = model.EventTypeIgnitionReactivated
			event.Description = "Ignition reactivated remotely"
		} else {
			event.Type = model.EventTypeIgnitionCut
			event.Description = "Ignition cut remotely"
		}
		if err := r.Event().Append(ctx, &event); err != nil {
			return fmt.Errorf("failed to append event: %w", err)
		}

		out.Status = model.CommandStatusConfirmed
		out.Ignition = on
		out.Event = event
		return nil
	})
	if err != nil {
		result := "failed"
		if errors.Is(err, ErrVehicleNotFound) || errors.Is(err, ErrClientNotFound) ||
			errors.Is(err, ErrPinNotConfigured) || errors.Is(err, ErrPinMismatch) {
			result = "denied"
		}
		metrics.CommandsTotal.WithLabelValues(string(req.Command), result).Inc()
		return nil, err
	}

	metrics.CommandsTotal.WithLabelValues(string(req.Command), "confirmed").Inc()
	metrics.EventsEmitted.WithLabelValues(string(out.Event.Type)).Inc()

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, req.Plate, &out.Event); err != nil {
			s.logger.Warn("Failed to notify command event", "plate", req.Plate, "err", err)
		}
	}
	if s.dispatcher != nil {
		if err := s.dispatcher.Dispatch(ctx, req.Plate, req.Command); err != nil {
			s.logger.Warn("Failed to dispatch directive to tracker", "plate", req.Plate, "command", req.Command, "err", err)
		}
	}

	s.logger.Info("Ignition command confirmed",
		"plate", req.Plate, "command", req.Command, "origin", origin, "ignition", out.Ignition)
	return out, nil
}
