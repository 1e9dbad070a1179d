package service

import (
	"context"
	"fmt"
	"time"

	"github.com/looplab/fsm"

	"github.com/veltrack-io/veltrack/internal/engine/core/model"
	utilfsm "github.com/veltrack-io/veltrack/internal/pkg/util/fsm"
	"github.com/veltrack-io/veltrack/pkg/geo"
)

// IgnitionSignal is the optional out-of-band hardware signal carried by a
// position sample. Trackers report it as the status LED color: green means
// the engine is on, red means off.
type IgnitionSignal string

const (
	SignalNone IgnitionSignal = ""
	SignalOn   IgnitionSignal = "on"
	SignalOff  IgnitionSignal = "off"
)

// SignalFromLED maps the raw LED color reported by the tracker onto an
// ignition signal. Unrecognized colors carry no signal.
func SignalFromLED(color string) IgnitionSignal {
	switch color {
	case "green":
		return SignalOn
	case "red":
		return SignalOff
	}
	return SignalNone
}

// Movement state machine transitions.
const (
	transitionMove = "move"
	transitionStop = "stop"
)

// ClassifierOptions tunes the movement heuristics. The defaults match the
// deployed tracker fleet's reporting cadence.
type ClassifierOptions struct {
	// MovingSpeedKmh is the speed above which a vehicle is moving.
	MovingSpeedKmh float64

	// StoppedSpeedKmh is the speed below which a vehicle is stopped.
	// The closed interval [StoppedSpeedKmh, MovingSpeedKmh) is hysteresis.
	StoppedSpeedKmh float64

	// DisplacementFallbackMeters classifies as moving on displacement alone:
	// low-frequency sampling can depress the computed speed.
	DisplacementFallbackMeters float64

	// GapSeconds is the silence threshold after which a sample is treated as
	// a reconnection rather than a regular movement observation.
	GapSeconds float64

	// GapStopRadiusMeters bounds the displacement under which a reconnection
	// confirms the vehicle sat still while offline.
	GapStopRadiusMeters float64

	// IgnitionOffAuthoritative makes an explicit "engine off" signal override
	// the movement-derived ignition flag instead of only being logged.
	// Default false: the signal is recorded but the movement inference keeps
	// ownership of the flag. Flip this if the tracker hardware turns out to
	// report the relay state reliably.
	IgnitionOffAuthoritative bool
}

// NewClassifierOptions returns the production thresholds.
func NewClassifierOptions() *ClassifierOptions {
	return &ClassifierOptions{
		MovingSpeedKmh:             5.0,
		StoppedSpeedKmh:            2.0,
		DisplacementFallbackMeters: 15.0,
		GapSeconds:                 600,
		GapStopRadiusMeters:        50.0,
	}
}

// Classifier derives semantic events from the position/time series of a
// single vehicle. It is stateless between calls: the last stored event is
// the state cell.
type Classifier struct {
	opts *ClassifierOptions
	loc  *time.Location
}

// NewClassifier creates a Classifier. All timestamps are normalized to the
// fleet's reference zone before any delta is computed.
func NewClassifier(opts *ClassifierOptions) (*Classifier, error) {
	if opts == nil {
		opts = NewClassifierOptions()
	}

	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		return nil, fmt.Errorf("failed to load reference time zone: %w", err)
	}

	return &Classifier{opts: opts, loc: loc}, nil
}

// ClassifyInput carries one new sample plus the stored context it is judged
// against.
type ClassifyInput struct {
	Vehicle      *model.Vehicle
	PrevPosition *model.Position // nil when this is the first sample
	PrevEvent    *model.Event    // nil when the vehicle has no event history
	Latitude     float64
	Longitude    float64
	Timestamp    time.Time
	Signal       IgnitionSignal
}

// Classification is the outcome of judging one sample.
type Classification struct {
	// Events to append, in emission order.
	Events []model.Event

	// Ignition is the resulting flag value; IgnitionChanged reports whether
	// it differs from the vehicle's stored flag.
	Ignition        bool
	IgnitionChanged bool

	// Duplicate is set when the sample was rejected as out of order. No
	// events are emitted and no state changes.
	Duplicate bool
}

func (c *Classification) setIgnition(on bool, was bool) {
	c.Ignition = on
	c.IgnitionChanged = on != was
}

// Classify judges a new position sample against the vehicle's stored history
// and produces zero or more semantic events plus the updated ignition flag.
// It performs no I/O.
func (c *Classifier) Classify(ctx context.Context, in *ClassifyInput) (*Classification, error) {
	ts := in.Timestamp.In(c.loc)

	res := &Classification{Ignition: in.Vehicle.Ignition}

	lastType := model.EventType("")
	if in.PrevEvent != nil {
		lastType = in.PrevEvent.Type
	}

	machine := c.newMovementMachine(model.MovementStateOf(in.PrevEvent), in.Vehicle, res)

	// Explicit hardware signal first: it is independent of position. An "on"
	// signal owns the flag; an "off" signal is recorded but, unless
	// configured otherwise, the movement inference keeps the flag.
	ignitionTurnedOn := false
	switch in.Signal {
	case SignalOn:
		if lastType != model.EventTypeIgnitionOn {
			res.Events = append(res.Events, model.Event{
				VehicleID:   in.Vehicle.ID,
				Type:        model.EventTypeIgnitionOn,
				Description: "Ignition on reported by tracker",
				Timestamp:   ts,
			})
			res.setIgnition(true, in.Vehicle.Ignition)
			ignitionTurnedOn = true
		}
	case SignalOff:
		if lastType != model.EventTypeIgnitionOff {
			res.Events = append(res.Events, model.Event{
				VehicleID:   in.Vehicle.ID,
				Type:        model.EventTypeIgnitionOff,
				Description: "Ignition off reported by tracker",
				Timestamp:   ts,
			})
			if c.opts.IgnitionOffAuthoritative {
				res.setIgnition(false, in.Vehicle.Ignition)
			}
		}
	}

	// First sample ever: no movement inference is possible yet. A vehicle
	// that just signaled ignition-on is assumed to start moving; the +1s
	// offset keeps the log strictly chronological.
	if in.PrevPosition == nil {
		if ignitionTurnedOn && machine.Can(transitionMove) {
			if err := machine.Event(ctx, transitionMove,
				"Vehicle started moving (tracker activation)", ts.Add(time.Second)); err != nil {
				return nil, err
			}
		}
		return res, nil
	}

	prevTS := in.PrevPosition.Timestamp.In(c.loc)
	deltaSeconds := ts.Sub(prevTS).Seconds()

	if deltaSeconds <= 0 {
		// Duplicate or out-of-order packet.
		res.Duplicate = true
		return res, nil
	}

	distMeters := geo.Distance(
		in.PrevPosition.Latitude, in.PrevPosition.Longitude,
		in.Latitude, in.Longitude,
	)

	// Reconnection after a long silence: speed computed over the gap is
	// meaningless, so skip the regular thresholds. A short displacement
	// confirms the vehicle sat still while offline; a long one only earns an
	// alert, since no movement state can be asserted for the unobserved span.
	if deltaSeconds > c.opts.GapSeconds {
		minutesOffline := int(deltaSeconds / 60)

		if distMeters < c.opts.GapStopRadiusMeters {
			if machine.Can(transitionStop) {
				desc := fmt.Sprintf("Vehicle confirmed stopped, reconnected after %d min offline", minutesOffline)
				if err := machine.Event(ctx, transitionStop, desc, ts); err != nil {
					return nil, err
				}
			}
			return res, nil
		}

		res.Events = append(res.Events, model.Event{
			VehicleID:   in.Vehicle.ID,
			Type:        model.EventTypeAlert,
			Description: fmt.Sprintf("Connection restored after %d min offline", minutesOffline),
			Timestamp:   ts,
		})
		return res, nil
	}

	speedKmh := distMeters / deltaSeconds * 3.6

	switch {
	case speedKmh > c.opts.MovingSpeedKmh || distMeters >= c.opts.DisplacementFallbackMeters:
		if machine.Can(transitionMove) {
			desc := fmt.Sprintf("Vehicle started moving (approx. %d km/h)", int(speedKmh))
			if err := machine.Event(ctx, transitionMove, desc, ts); err != nil {
				return nil, err
			}
		}
	case speedKmh < c.opts.StoppedSpeedKmh:
		if machine.Can(transitionStop) {
			desc := fmt.Sprintf("Vehicle stopped (approx. %d km/h)", int(speedKmh))
			if err := machine.Event(ctx, transitionStop, desc, ts); err != nil {
				return nil, err
			}
		}
		// Speeds inside the hysteresis band assert nothing.
	}

	return res, nil
}

// newMovementMachine builds the per-call movement state machine. Transitions
// append the corresponding event and take over the ignition flag; the guard
// sets keep the event log free of repeated terminal states (never two Moving
// in a row, and a Stopped must be preceded by motion or silence).
func (c *Classifier) newMovementMachine(initial model.MovementState, v *model.Vehicle, res *Classification) *fsm.FSM {
	return fsm.NewFSM(
		string(initial),
		fsm.Events{
			{
				Name: transitionMove,
				Src: []string{
					string(model.MovementUnknown),
					string(model.MovementStopped),
					string(model.MovementAnnotated),
				},
				Dst: string(model.MovementMoving),
			},
			{
				Name: transitionStop,
				Src: []string{
					string(model.MovementMoving),
					string(model.MovementUnknown),
				},
				Dst: string(model.MovementStopped),
			},
		},
		fsm.Callbacks{
			"enter_" + string(model.MovementMoving): utilfsm.WrapEvent(func(ctx context.Context, e *fsm.Event) error {
				desc, at, err := transitionArgs(e)
				if err != nil {
					return err
				}
				res.Events = append(res.Events, model.Event{
					VehicleID:   v.ID,
					Type:        model.EventTypeMoving,
					Description: desc,
					Timestamp:   at,
				})
				res.setIgnition(true, v.Ignition)
				return nil
			}),
			"enter_" + string(model.MovementStopped): utilfsm.WrapEvent(func(ctx context.Context, e *fsm.Event) error {
				desc, at, err := transitionArgs(e)
				if err != nil {
					return err
				}
				res.Events = append(res.Events, model.Event{
					VehicleID:   v.ID,
					Type:        model.EventTypeStopped,
					Description: desc,
					Timestamp:   at,
				})
				res.setIgnition(false, v.Ignition)
				return nil
			}),
		},
	)
}

func transitionArgs(e *fsm.Event) (string, time.Time, error) {
	if len(e.Args) != 2 {
		return "", time.Time{}, fmt.Errorf("movement transition %q expects 2 args, got %d", e.Event, len(e.Args))
	}
	desc, ok := e.Args[0].(string)
	if !ok {
		return "", time.Time{}, fmt.Errorf("movement transition %q: first arg is not a description", e.Event)
	}
	at, ok := e.Args[1].(time.Time)
	if !ok {
		return "", time.Time{}, fmt.Errorf("movement transition %q: second arg is not a timestamp", e.Event)
	}
	return desc, at, nil
}
