package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

var _ IOptions = (*PostgresOptions)(nil)

// PostgresOptions contains configuration for the relational store that owns
// vehicles, positions, events and command logs.
type PostgresOptions struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	User     string `json:"user" mapstructure:"user"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`

	// MaxConns caps the pgx pool size.
	MaxConns int32 `json:"max-conns" mapstructure:"max-conns"`
}

// NewPostgresOptions creates a new PostgresOptions with default values.
func NewPostgresOptions() *PostgresOptions {
	return &PostgresOptions{
		Host:     "localhost",
		Port:     "5432",
		User:     "veltrack",
		Password: "veltrack",
		Database: "veltrack",
		MaxConns: 15,
	}
}

// Validate is used to parse and validate the parameters entered by the user at
// the command line when the program starts.
func (o *PostgresOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	if o.Database == "" {
		errors = append(errors, fmt.Errorf("postgres database name is required"))
	}
	if o.MaxConns <= 0 {
		errors = append(errors, fmt.Errorf("postgres max-conns must be positive, got %d", o.MaxConns))
	}

	return errors
}

// AddFlags adds flags for PostgresOptions to the specified FlagSet.
func (o *PostgresOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Host, "postgres.host", o.Host, "PostgreSQL server host.")
	fs.StringVar(&o.Port, "postgres.port", o.Port, "PostgreSQL server port.")
	fs.StringVar(&o.User, "postgres.user", o.User, "PostgreSQL user.")
	fs.StringVar(&o.Password, "postgres.password", o.Password, "PostgreSQL password.")
	fs.StringVar(&o.Database, "postgres.database", o.Database, "PostgreSQL database name.")
	fs.Int32Var(&o.MaxConns, "postgres.max-conns", o.MaxConns, "Maximum number of pooled connections.")
}

// DSN renders the pool connection string consumed by pgxpool.New.
func (o *PostgresOptions) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?pool_max_conns=%d",
		o.User, o.Password, o.Host, o.Port, o.Database, o.MaxConns,
	)
}
