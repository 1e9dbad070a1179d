package model

import "time"

// EventType enumerates the semantic events derived from the telemetry stream
// and from the ignition command path.
type EventType string

const (
	EventTypeMoving              EventType = "Moving"
	EventTypeStopped             EventType = "Stopped"
	EventTypeIgnitionOn          EventType = "IgnitionOn"
	EventTypeIgnitionOff         EventType = "IgnitionOff"
	EventTypeIgnitionCut         EventType = "IgnitionCut"
	EventTypeIgnitionReactivated EventType = "IgnitionReactivated"
	EventTypeAlert               EventType = "Alert"
)

// Event is an append-only semantic event. The most recent event per vehicle
// doubles as the classifier's last-known-state marker: there is no separate
// state table.
type Event struct {
	ID          int64
	VehicleID   int64
	ClientID    int64 // zero when the event is not attributed to a client action
	Type        EventType
	Description string
	Timestamp   time.Time
	Read        bool
}

// MovementState is the explicit movement interpretation reconstructed from
// the latest event. It is never persisted on its own.
type MovementState string

const (
	// MovementUnknown means the vehicle has no event history yet.
	MovementUnknown MovementState = "unknown"

	// MovementMoving and MovementStopped mirror the latest terminal
	// movement event.
	MovementMoving  MovementState = "moving"
	MovementStopped MovementState = "stopped"

	// MovementAnnotated means the latest event is informational (alert,
	// ignition signal); a stop may not be inferred directly on top of it.
	MovementAnnotated MovementState = "annotated"
)

// MovementStateOf maps the latest stored event onto the movement state
// machine's starting state.
func MovementStateOf(last *Event) MovementState {
	if last == nil {
		return MovementUnknown
	}
	switch last.Type {
	case EventTypeMoving:
		return MovementMoving
	case EventTypeStopped:
		return MovementStopped
	default:
		return MovementAnnotated
	}
}
