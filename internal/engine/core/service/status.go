package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/veltrack-io/veltrack/internal/pkg/util"
)

// OnlineStatus is a vehicle's reachability verdict.
type OnlineStatus string

const (
	StatusOnline  OnlineStatus = "Online"
	StatusOffline OnlineStatus = "Offline"
)

// QueryOnlineStatus reports whether a vehicle showed any sign of life inside
// the online window. The volatile mirror answers first; on a miss the stored
// last position and the vehicle's last-contact timestamp decide.
func (s *Service) QueryOnlineStatus(ctx context.Context, plate string) (OnlineStatus, error) {
	now := s.now()

	if s.live != nil {
		state, err := s.live.Get(ctx, plate)
		switch {
		case err == nil:
			if now.Sub(state.Timestamp) <= onlineWindow {
				return StatusOnline, nil
			}
		case !errors.Is(err, util.ErrNotFound):
			s.logger.Warn("Live state lookup failed, falling back to storage", "plate", plate, "err", err)
		}
	}

	vehicle, err := s.repo.Vehicle().GetByPlate(ctx, plate)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return "", ErrVehicleNotFound
		}
		return "", fmt.Errorf("failed to load vehicle: %w", err)
	}

	last, err := s.repo.Position().LastByPlate(ctx, plate)
	if err != nil && !errors.Is(err, util.ErrNotFound) {
		return "", fmt.Errorf("failed to load last position: %w", err)
	}
	if last != nil && now.Sub(last.Timestamp) <= onlineWindow {
		return StatusOnline, nil
	}

	if !vehicle.LastContact.IsZero() && now.Sub(vehicle.LastContact) <= onlineWindow {
		return StatusOnline, nil
	}
	return StatusOffline, nil
}
