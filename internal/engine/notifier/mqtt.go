// Package notifier fans freshly appended semantic events out to client
// applications over MQTT.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/veltrack-io/veltrack/internal/engine/core"
	"github.com/veltrack-io/veltrack/internal/engine/core/model"
	"github.com/veltrack-io/veltrack/pkg/log"
	"github.com/veltrack-io/veltrack/pkg/mqtt"
	"github.com/veltrack-io/veltrack/pkg/mqtt/topic"
)

// eventMessage is the wire form published on the per-plate event topic.
type eventMessage struct {
	Plate       string    `json:"plate"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// MQTTNotifier publishes events on the per-plate event topic with QoS 1.
type MQTTNotifier struct {
	client mqtt.Client
	topics *topic.Builder
	logger log.Logger
}

var _ core.EventNotifier = (*MQTTNotifier)(nil)

// New creates an MQTTNotifier.
func New(client mqtt.Client, topics *topic.Builder, logger log.Logger) *MQTTNotifier {
	return &MQTTNotifier{
		client: client,
		topics: topics,
		logger: logger.WithName("notifier"),
	}
}

// Notify publishes one event. Delivery is at-least-once; subscribers must
// tolerate replays after reconnects.
func (n *MQTTNotifier) Notify(ctx context.Context, plate string, event *model.Event) error {
	payload, err := json.Marshal(&eventMessage{
		Plate:       plate,
		Type:        string(event.Type),
		Description: event.Description,
		Timestamp:   event.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	t := n.topics.Event(plate)
	if err := n.client.Publish(ctx, t, 1, false, payload); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", t, err)
	}

	n.logger.Debug("Published event", "topic", t, "type", event.Type)
	return nil
}
