// Package redis implements the volatile live-state mirror on Redis hashes.
// Entries expire on their own, so a silent vehicle falls out of the fast
// path and status queries hit authoritative storage instead.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/veltrack-io/veltrack/internal/engine/core"
	"github.com/veltrack-io/veltrack/internal/pkg/util"
)

// liveTTL keeps a snapshot a few beacon intervals beyond the online window.
const liveTTL = 30 * time.Second

// Store mirrors the last-known vehicle state for fast status lookups.
type Store struct {
	client *goredis.Client
}

var _ core.LiveStateStore = (*Store)(nil)

// New connects to Redis and verifies the connection.
func New(ctx context.Context, opts *goredis.Options) (*Store, error) {
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &Store{client: client}, nil
}

// Close releases the client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Ping reports reachability for readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func liveKey(plate string) string {
	return "veltrack:live:" + plate
}

// Put overwrites the snapshot and refreshes its TTL in one round trip.
func (s *Store) Put(ctx context.Context, state *core.LiveState) error {
	key := liveKey(state.Plate)

	pipe := s.client.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"plate":     state.Plate,
		"latitude":  state.Latitude,
		"longitude": state.Longitude,
		"ignition":  strconv.FormatBool(state.Ignition),
		"timestamp": state.Timestamp.UTC().Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, key, liveTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write live state: %w", err)
	}
	return nil
}

// Get returns the snapshot, or util.ErrNotFound when it expired or was
// never written.
func (s *Store) Get(ctx context.Context, plate string) (*core.LiveState, error) {
	fields, err := s.client.HGetAll(ctx, liveKey(plate)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read live state: %w", err)
	}
	if len(fields) == 0 {
		return nil, util.ErrNotFound
	}

	state := &core.LiveState{Plate: plate}
	if state.Latitude, err = strconv.ParseFloat(fields["latitude"], 64); err != nil {
		return nil, fmt.Errorf("corrupt live latitude %q: %w", fields["latitude"], err)
	}
	if state.Longitude, err = strconv.ParseFloat(fields["longitude"], 64); err != nil {
		return nil, fmt.Errorf("corrupt live longitude %q: %w", fields["longitude"], err)
	}
	state.Ignition = fields["ignition"] == "true"
	if state.Timestamp, err = time.Parse(time.RFC3339Nano, fields["timestamp"]); err != nil {
		return nil, fmt.Errorf("corrupt live timestamp %q: %w", fields["timestamp"], err)
	}
	return state, nil
}
