package staticdata

import (
	"context"
	"fmt"

	"rynko-workers/internal/common/config"
	"rynko-workers/internal/common/database"
	"rynko-workers/internal/common/logger"
)

// Open connects the backend selected by cfg.StaticData.Driver. The returned
// close function releases the connection and is never nil.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger, maxRetries uint64) (Store, func() error, error) {
	switch cfg.StaticData.Driver {
	case "memory":
		log.Warn("Using in-memory static data; webhook ids will not survive a restart", nil)
		return NewMemoryStore(), func() error { return nil }, nil

	case "redis":
		client, err := database.ConnectRedis(ctx, cfg.Database.Redis, log, maxRetries)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisStore(client.GetClient()), client.Close, nil

	case "postgres":
		client, err := database.ConnectPostgres(ctx, cfg.Database.Postgres, log, maxRetries)
		if err != nil {
			return nil, nil, err
		}
		return NewPostgresStore(client.GetDB()), client.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported static data driver %q", cfg.StaticData.Driver)
	}
}
