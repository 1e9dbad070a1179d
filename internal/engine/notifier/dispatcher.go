package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/veltrack-io/veltrack/internal/engine/core"
	"github.com/veltrack-io/veltrack/internal/engine/core/model"
	"github.com/veltrack-io/veltrack/pkg/log"
	"github.com/veltrack-io/veltrack/pkg/mqtt"
	"github.com/veltrack-io/veltrack/pkg/mqtt/topic"
)

// directiveMessage is the wire form published on the per-plate command topic.
type directiveMessage struct {
	Action    string    `json:"action"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// directiveTTL bounds how long a queued directive stays meaningful for a
// tracker that reconnects late.
const directiveTTL = 10 * time.Minute

// MQTTDispatcher pushes confirmed ignition directives down to the tracker
// relay on the per-plate command topic. Messages are retained so a tracker
// that is offline at publish time applies the directive on reconnect.
type MQTTDispatcher struct {
	client mqtt.Client
	topics *topic.Builder
	logger log.Logger
}

var _ core.CommandDispatcher = (*MQTTDispatcher)(nil)

// NewDispatcher creates an MQTTDispatcher.
func NewDispatcher(client mqtt.Client, topics *topic.Builder, logger log.Logger) *MQTTDispatcher {
	return &MQTTDispatcher{
		client: client,
		topics: topics,
		logger: logger.WithName("dispatcher"),
	}
}

// Dispatch publishes one directive with QoS 1 and the retain flag set.
func (d *MQTTDispatcher) Dispatch(ctx context.Context, plate string, command model.CommandType) error {
	now := time.Now().UTC()
	payload, err := json.Marshal(&directiveMessage{
		Action:    strings.ToLower(string(command)),
		IssuedAt:  now,
		ExpiresAt: now.Add(directiveTTL),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal directive: %w", err)
	}

	t := d.topics.Command(plate)
	if err := d.client.Publish(ctx, t, 1, true, payload); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", t, err)
	}

	d.logger.Info("Dispatched directive", "topic", t, "action", command)
	return nil
}
