package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/veltrack-io/veltrack/internal/engine/core"
	"github.com/veltrack-io/veltrack/internal/engine/core/model"
	"github.com/veltrack-io/veltrack/internal/pkg/metrics"
	"github.com/veltrack-io/veltrack/internal/pkg/util"
)

// TelemetrySample is one raw report from a tracker.
type TelemetrySample struct {
	Plate     string
	Latitude  float64
	Longitude float64
	Timestamp time.Time
	Signal    IgnitionSignal
}

// IngestResult reports what one sample produced.
type IngestResult struct {
	Events    []model.Event
	Ignition  bool
	Duplicate bool
}

// IngestTelemetry persists one position sample and classifies it against the
// vehicle's stored history. The position write and the derived events commit
// atomically; a classification fault is logged and swallowed so the raw
// position is never lost. Samples for the same plate are serialized by the
// repository transaction.
func (s *Service) IngestTelemetry(ctx context.Context, sample *TelemetrySample) (*IngestResult, error) {
	timer := prometheus.NewTimer(metrics.IngestDuration)
	defer timer.ObserveDuration()

	if sample.Latitude < -90 || sample.Latitude > 90 ||
		sample.Longitude < -180 || sample.Longitude > 180 {
		metrics.SamplesIngested.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: lat=%v lon=%v", ErrInvalidCoordinates, sample.Latitude, sample.Longitude)
	}

	out := &IngestResult{}
	err := s.repo.InTx(ctx, sample.Plate, func(r core.Repository) error {
		vehicle, err := r.Vehicle().GetByPlate(ctx, sample.Plate)
		if err != nil {
			if errors.Is(err, util.ErrNotFound) {
				return ErrVehicleNotFound
			}
			return fmt.Errorf("failed to load vehicle: %w", err)
		}
		out.Ignition = vehicle.Ignition

		prevPos, err := r.Position().LastByPlate(ctx, sample.Plate)
		if err != nil && !errors.Is(err, util.ErrNotFound) {
			return fmt.Errorf("failed to load last position: %w", err)
		}
		prevEvent, err := r.Event().LastByVehicle(ctx, vehicle.ID)
		if err != nil && !errors.Is(err, util.ErrNotFound) {
			return fmt.Errorf("failed to load last event: %w", err)
		}

		if err := r.Position().Append(ctx, &model.Position{
			Plate:     sample.Plate,
			Latitude:  sample.Latitude,
			Longitude: sample.Longitude,
			Timestamp: sample.Timestamp,
		}); err != nil {
			return fmt.Errorf("failed to append position: %w", err)
		}
		if err := r.Vehicle().TouchLastContact(ctx, vehicle.ID, sample.Timestamp); err != nil {
			return fmt.Errorf("failed to record last contact: %w", err)
		}

		cls := s.classifySafe(ctx, &ClassifyInput{
			Vehicle:      vehicle,
			PrevPosition: prevPos,
			PrevEvent:    prevEvent,
			Latitude:     sample.Latitude,
			Longitude:    sample.Longitude,
			Timestamp:    sample.Timestamp,
			Signal:       sample.Signal,
		})
		if cls == nil {
			// Classification faulted; the position still commits.
			return nil
		}

		for i := range cls.Events {
			if err := r.Event().Append(ctx, &cls.Events[i]); err != nil {
				return fmt.Errorf("failed to append event: %w", err)
			}
		}
		if cls.IgnitionChanged {
			if err := r.Vehicle().SetIgnition(ctx, vehicle.ID, cls.Ignition); err != nil {
				return fmt.Errorf("failed to update ignition flag: %w", err)
			}
		}

		out.Events = cls.Events
		out.Ignition = cls.Ignition
		out.Duplicate = cls.Duplicate
		return nil
	})
	if err != nil {
		metrics.SamplesIngested.WithLabelValues("failed").Inc()
		return nil, err
	}

	switch {
	case out.Duplicate:
		metrics.SamplesIngested.WithLabelValues("duplicate").Inc()
	default:
		metrics.SamplesIngested.WithLabelValues("accepted").Inc()
	}
	for i := range out.Events {
		metrics.EventsEmitted.WithLabelValues(string(out.Events[i].Type)).Inc()
	}

	// Side channels after commit, best effort.
	if s.live != nil && !out.Duplicate {
		if err := s.live.Put(ctx, &core.LiveState{
			Plate:     sample.Plate,
			Latitude:  sample.Latitude,
			Longitude: sample.Longitude,
			Ignition:  out.Ignition,
			Timestamp: sample.Timestamp,
		}); err != nil {
			s.logger.Warn("Failed to mirror live state", "plate", sample.Plate, "err", err)
		}
	}
	if s.notifier != nil {
		for i := range out.Events {
			if err := s.notifier.Notify(ctx, sample.Plate, &out.Events[i]); err != nil {
				s.logger.Warn("Failed to notify event", "plate", sample.Plate, "type", out.Events[i].Type, "err", err)
			}
		}
	}

	return out, nil
}

// classifySafe runs the classifier and contains any fault. The raw position
// flow must survive classifier bugs.
func (s *Service) classifySafe(ctx context.Context, in *ClassifyInput) (cls *Classification) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(fmt.Errorf("panic: %v", r), "Classifier panicked", "plate", in.Vehicle.Plate)
			cls = nil
		}
	}()

	cls, err := s.classifier.Classify(ctx, in)
	if err != nil {
		s.logger.Error(err, "Classification failed", "plate", in.Vehicle.Plate)
		return nil
	}
	return cls
}
