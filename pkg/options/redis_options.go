package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

var _ IOptions = (*RedisOptions)(nil)

// RedisOptions contains configuration for the live vehicle state mirror.
type RedisOptions struct {
	Addr     string `json:"addr" mapstructure:"addr"`
	Password string `json:"password" mapstructure:"password"`
	DB       int    `json:"db" mapstructure:"db"`

	PoolSize     int `json:"pool-size" mapstructure:"pool-size"`
	MinIdleConns int `json:"min-idle-conns" mapstructure:"min-idle-conns"`
}

// NewRedisOptions creates a new RedisOptions with default values.
func NewRedisOptions() *RedisOptions {
	return &RedisOptions{
		Addr:         "localhost:6379",
		DB:           0,
		PoolSize:     20,
		MinIdleConns: 5,
	}
}

// Validate is used to parse and validate the parameters entered by the user at
// the command line when the program starts.
func (o *RedisOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	if err := ValidateAddress(o.Addr); err != nil {
		errors = append(errors, err)
	}
	if o.DB < 0 {
		errors = append(errors, fmt.Errorf("redis db must be non-negative, got %d", o.DB))
	}

	return errors
}

// AddFlags adds flags for RedisOptions to the specified FlagSet.
func (o *RedisOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Addr, "redis.addr", o.Addr, "Redis server address.")
	fs.StringVar(&o.Password, "redis.password", o.Password, "Redis password.")
	fs.IntVar(&o.DB, "redis.db", o.DB, "Redis logical database index.")
	fs.IntVar(&o.PoolSize, "redis.pool-size", o.PoolSize, "Redis connection pool size.")
	fs.IntVar(&o.MinIdleConns, "redis.min-idle-conns", o.MinIdleConns, "Minimum idle Redis connections to keep open.")
}
