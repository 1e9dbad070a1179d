// Package mqtt implements the telemetry ingress layer. Trackers publish
// position samples on per-plate topics; engine replicas split the stream via
// a shared subscription.
package mqtt

import (
	"context"
	"fmt"
	"time"

	"github.com/veltrack-io/veltrack/internal/engine/core/service"
	"github.com/veltrack-io/veltrack/pkg/log"
	pkgmqtt "github.com/veltrack-io/veltrack/pkg/mqtt"
	"github.com/veltrack-io/veltrack/pkg/mqtt/topic"
)

// GroupEngine is the shared subscription group engine replicas join.
const GroupEngine = "veltrack-engine"

// Server implements the MQTT ingress layer.
type Server struct {
	client pkgmqtt.Client
	topics *topic.Builder
	svc    *service.Service
}

// NewServer creates a new MQTT server (client).
func NewServer(client pkgmqtt.Client, builder *topic.Builder, svc *service.Service) *Server {
	return &Server{
		client: client,
		topics: builder,
		svc:    svc,
	}
}

// Start connects to the broker and subscribes to the tracker stream.
func (s *Server) Start(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		return err
	}

	// Disconnect when Run exits (LIFO order).
	defer func() {
		log.Info("Disconnecting MQTT client...")
		// Fresh context with timeout so the disconnect packet still sends.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.client.Disconnect(shutdownCtx)
		log.Info("MQTT client disconnected")
	}()

	log.Info("Waiting for MQTT connection...")
	if err := s.client.AwaitConnection(ctx); err != nil {
		return err
	}
	log.Info("MQTT Connected")

	if err := s.initMQTTSubscriptions(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	return nil
}

func (s *Server) initMQTTSubscriptions(ctx context.Context) error {
	const qos = 1

	filter := s.topics.Shared(GroupEngine, s.topics.PositionWildcard())
	if err := s.client.Subscribe(ctx, filter, qos, s.handlePosition); err != nil {
		return fmt.Errorf("failed to subscribe to topic: %s, err: %w", filter, err)
	}
	return nil
}
