// Package options aggregates the flag groups of the veltrack-engine binary.
package options

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/veltrack-io/veltrack/internal/engine"
	"github.com/veltrack-io/veltrack/pkg/log"
	"github.com/veltrack-io/veltrack/pkg/options"
)

// EngineOptions carries every option group of the engine binary.
type EngineOptions struct {
	Engine   *options.EngineOptions   `json:"engine" mapstructure:"engine"`
	Http     *options.HttpOptions     `json:"http" mapstructure:"http"`
	Mqtt     *options.MqttOptions     `json:"mqtt" mapstructure:"mqtt"`
	Postgres *options.PostgresOptions `json:"postgres" mapstructure:"postgres"`
	Redis    *options.RedisOptions    `json:"redis" mapstructure:"redis"`
	S3       *options.S3Options       `json:"s3" mapstructure:"s3"`
	Log      *log.Options             `json:"log" mapstructure:"log"`
}

// NewEngineOptions creates an EngineOptions with default parameters.
func NewEngineOptions() *EngineOptions {
	return &EngineOptions{
		Engine:   options.NewEngineOptions(),
		Http:     options.NewHttpOptions(),
		Mqtt:     options.NewMqttOptions(),
		Postgres: options.NewPostgresOptions(),
		Redis:    options.NewRedisOptions(),
		S3:       options.NewS3Options(),
		Log:      log.NewOptions(),
	}
}

// AddFlags registers all flag groups on the command.
func (o *EngineOptions) AddFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	o.Engine.AddFlags(fs)
	o.Http.AddFlags(fs)
	o.Mqtt.AddFlags(fs)
	o.Postgres.AddFlags(fs)
	o.Redis.AddFlags(fs)
	o.S3.AddFlags(fs)
	o.Log.AddFlags(fs)
}

// Complete fills in derived values after flag parsing.
func (o *EngineOptions) Complete() error {
	return nil
}

// Validate checks all option groups.
func (o *EngineOptions) Validate() error {
	var errs []error
	errs = append(errs, o.Engine.Validate()...)
	errs = append(errs, o.Http.Validate()...)
	errs = append(errs, o.Mqtt.Validate()...)
	errs = append(errs, o.Postgres.Validate()...)
	errs = append(errs, o.Redis.Validate()...)
	errs = append(errs, o.S3.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return errors.Join(errs...)
}

// Config assembles the engine wiring configuration.
func (o *EngineOptions) Config() (*engine.Config, error) {
	return &engine.Config{
		EngineOptions:   o.Engine,
		HttpOptions:     o.Http,
		MqttOptions:     o.Mqtt,
		PostgresOptions: o.Postgres,
		RedisOptions:    o.Redis,
		S3Options:       o.S3,
	}, nil
}
