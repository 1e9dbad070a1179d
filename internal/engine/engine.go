package engine

import (
	"context"

	"github.com/veltrack-io/veltrack/internal/engine/postgres"
	"github.com/veltrack-io/veltrack/internal/engine/redis"
	"github.com/veltrack-io/veltrack/internal/engine/server"
	"github.com/veltrack-io/veltrack/pkg/log"
)

// EngineServer is the main application struct for the engine binary.
type EngineServer struct {
	serverManager *server.Manager
	repo          *postgres.Repo
	live          *redis.Store
}

// Run starts the protocol servers and blocks until ctx is canceled or a
// server fails, then releases the backing connections.
func (a *EngineServer) Run(ctx context.Context) error {
	log.Info("Starting Veltrack Engine...")

	err := a.serverManager.Start(ctx)

	a.repo.Close()
	if a.live != nil {
		if closeErr := a.live.Close(); closeErr != nil {
			log.Error(closeErr, "Failed to close live state store")
		}
	}

	return err
}
