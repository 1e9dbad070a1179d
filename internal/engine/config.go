// Package engine assembles the telemetry interpretation and ignition control
// engine from its adapters.
package engine

import (
	"context"
	"fmt"
	"os"

	goredis "github.com/redis/go-redis/v9"

	"github.com/veltrack-io/veltrack/internal/engine/core"
	"github.com/veltrack-io/veltrack/internal/engine/core/service"
	"github.com/veltrack-io/veltrack/internal/engine/notifier"
	"github.com/veltrack-io/veltrack/internal/engine/postgres"
	"github.com/veltrack-io/veltrack/internal/engine/redis"
	"github.com/veltrack-io/veltrack/internal/engine/server"
	serverhttp "github.com/veltrack-io/veltrack/internal/engine/server/http"
	servermqtt "github.com/veltrack-io/veltrack/internal/engine/server/mqtt"
	"github.com/veltrack-io/veltrack/internal/engine/storage"
	"github.com/veltrack-io/veltrack/pkg/log"
	pkgmqtt "github.com/veltrack-io/veltrack/pkg/mqtt"
	"github.com/veltrack-io/veltrack/pkg/mqtt/topic"
	"github.com/veltrack-io/veltrack/pkg/options"
)

// Config aggregates every option group the engine binary consumes.
type Config struct {
	EngineOptions   *options.EngineOptions
	HttpOptions     *options.HttpOptions
	MqttOptions     *options.MqttOptions
	PostgresOptions *options.PostgresOptions
	RedisOptions    *options.RedisOptions
	S3Options       *options.S3Options
}

// NewEngineServer wires the adapters together: storage and side channels
// into the core service, and the core service into the ingress servers.
func (cfg *Config) NewEngineServer(ctx context.Context) (*EngineServer, error) {
	// Authoritative storage (Secondary Adapter).
	repo, err := postgres.New(ctx, cfg.PostgresOptions.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to init postgres: %w", err)
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		repo.Close()
		return nil, err
	}

	// Live state mirror (Secondary Adapter). Degraded mode without it.
	var live *redis.Store
	if cfg.RedisOptions != nil {
		live, err = redis.New(ctx, &goredis.Options{
			Addr:         cfg.RedisOptions.Addr,
			Password:     cfg.RedisOptions.Password,
			DB:           cfg.RedisOptions.DB,
			PoolSize:     cfg.RedisOptions.PoolSize,
			MinIdleConns: cfg.RedisOptions.MinIdleConns,
		})
		if err != nil {
			repo.Close()
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
	}

	// Export archive (Secondary Adapter).
	archive, err := storage.New(ctx, cfg.S3Options)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to init object storage: %w", err)
	}

	// Shared MQTT client for ingress, event fan-out and directives.
	mqttClient, err := initializeMQTTClient(cfg.MqttOptions)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to init mqtt client: %w", err)
	}
	topicBuilder := topic.NewBuilder(cfg.MqttOptions.TopicRoot)

	notifierAdapter := notifier.New(mqttClient, topicBuilder, log.Std())
	dispatcherAdapter := notifier.NewDispatcher(mqttClient, topicBuilder, log.Std())

	classifier, err := service.NewClassifier(classifierOptions(cfg.EngineOptions))
	if err != nil {
		repo.Close()
		return nil, err
	}

	// Core Domain Service (The Business Logic).
	var liveStore core.LiveStateStore
	if live != nil {
		liveStore = live
	}
	svc := service.New(repo, liveStore, notifierAdapter, dispatcherAdapter, archive, classifier, log.Std())

	// Ingress Servers (Primary Adapters).
	readiness := []serverhttp.ReadyChecker{repo.Ping}
	if live != nil {
		readiness = append(readiness, live.Ping)
	}
	mqttServer := servermqtt.NewServer(mqttClient, topicBuilder, svc)
	httpServer := serverhttp.NewServer(cfg.HttpOptions, svc, readiness...)
	srvManager := server.NewManager(mqttServer, httpServer)

	return &EngineServer{
		serverManager: srvManager,
		repo:          repo,
		live:          live,
	}, nil
}

func classifierOptions(opts *options.EngineOptions) *service.ClassifierOptions {
	cls := service.NewClassifierOptions()
	if opts == nil {
		return cls
	}
	cls.MovingSpeedKmh = opts.MovingSpeedKmh
	cls.StoppedSpeedKmh = opts.StoppedSpeedKmh
	cls.IgnitionOffAuthoritative = opts.IgnitionOffAuthoritative
	return cls
}

func initializeMQTTClient(opts *options.MqttOptions) (pkgmqtt.Client, error) {
	cfg := opts.ToClientConfig()

	if cfg.ClientID == "" {
		hostname, _ := os.Hostname()
		cfg.ClientID = fmt.Sprintf("veltrack-engine-%s", hostname)
	}

	return pkgmqtt.NewClient(cfg)
}
