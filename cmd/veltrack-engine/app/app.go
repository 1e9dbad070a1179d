package app

import (
	"fmt"

	"github.com/veltrack-io/veltrack/cmd/veltrack-engine/app/options"
	"github.com/veltrack-io/veltrack/pkg/app"
	"github.com/veltrack-io/veltrack/pkg/log"
)

const (
	commandName = "veltrack-engine"
	commandDesc = `The Veltrack engine ingests raw tracker telemetry, interprets it into
semantic fleet events (movement, stops, reconnections), keeps the
authoritative ignition state of every vehicle and executes remote
ignition cut and reactivation commands.

Telemetry arrives over MQTT and HTTP; derived events fan out over MQTT.`
)

// NewApp builds the engine command line application.
func NewApp() *app.App {
	opts := options.NewEngineOptions()
	application := app.NewApp(
		commandName,
		"Launch the Veltrack telemetry interpretation engine",
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithRunFunc(run(opts)),
	)
	return application
}

func run(opts *options.EngineOptions) app.RunFunc {
	return func() error {
		log.Init(opts.Log)
		defer log.Sync()

		ctx := app.SetupSignalContext()

		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		server, err := cfg.NewEngineServer(ctx)
		if err != nil {
			return fmt.Errorf("failed to create engine server: %w", err)
		}

		return server.Run(ctx)
	}
}
