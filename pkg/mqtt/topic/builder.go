package topic

import (
	"fmt"
)

// Constants defining the standard topic segments.
// These act as the protocol contract between the engine and the trackers.
// Changing these values will break compatibility with deployed trackers.
const (
	// SuffixPosition is the upstream topic where trackers publish position samples.
	// Structure: {root}/position/{plate}
	SuffixPosition = "position"

	// SuffixEvent is the downstream topic where the engine publishes semantic
	// events derived from the telemetry stream.
	// Structure: {root}/event/{plate}
	SuffixEvent = "event"

	// SuffixCommand is the downstream topic carrying ignition directives to the
	// tracker relay hardware.
	// Structure: {root}/command/{plate}
	SuffixCommand = "command"
)

// Builder encapsulates the logic for constructing MQTT topic strings.
// It keeps topic construction consistent across servers and notifiers.
type Builder struct {
	// root is the base namespace for all topics (e.g., "veltrack/v1").
	root string
}

// NewBuilder creates a new Builder with the specified root namespace.
func NewBuilder(root string) *Builder {
	return &Builder{root: root}
}

// Position returns the topic a specific tracker publishes samples on.
// Direction: Edge -> Engine
func (b *Builder) Position(plate string) string {
	return b.build(SuffixPosition, plate)
}

// PositionWildcard returns the wildcard filter the engine subscribes with to
// receive samples from every tracker.
// Result: {root}/position/+
func (b *Builder) PositionWildcard() string {
	return b.build(SuffixPosition, Wildcard)
}

// Event returns the topic the engine publishes semantic events on.
// Direction: Engine -> Clients
func (b *Builder) Event(plate string) string {
	return b.build(SuffixEvent, plate)
}

// Command returns the topic carrying ignition directives to a tracker.
// Direction: Engine -> Edge
func (b *Builder) Command(plate string) string {
	return b.build(SuffixCommand, plate)
}

// Shared prefixes a filter with an MQTT shared subscription group so multiple
// engine replicas split the tracker stream.
// Result: $share/{group}/{filter}
func (b *Builder) Shared(group, filter string) string {
	return fmt.Sprintf("$share/%s/%s", group, filter)
}

// build is a private helper to construct the final topic string.
// Pattern: {root}/{suffix}/{identifier}
func (b *Builder) build(suffix, id string) string {
	return fmt.Sprintf("%s/%s/%s", b.root, suffix, id)
}
