package bootstrap

import (
	"context"
	"fmt"

	"github.com/go-authgate/devicelink/internal/config"
	"github.com/go-authgate/devicelink/internal/core"
	"github.com/go-authgate/devicelink/internal/store"

	"go.uber.org/zap"
)

// initializeDatabase creates and initializes the database connection
func initializeDatabase(cfg *config.Config, logger *zap.Logger) (*store.Store, error) {
	db, err := store.New(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	logger.Info("Database initialized", zap.String("driver", cfg.DatabaseDriver))
	return db, nil
}

// initializeObjectStorage selects the object storage backend. The database
// backend shares the account store; the redis backend returns a closer.
func initializeObjectStorage(
	ctx context.Context,
	cfg *config.Config,
	db *store.Store,
	logger *zap.Logger,
) (core.ObjectStorage, func() error, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendRedis:
		ctx, cancel := context.WithTimeout(ctx, cfg.RedisConnTimeout)
		defer cancel()

		objects, err := store.NewRueidisObjectStore(
			ctx,
			cfg.RedisAddr,
			cfg.RedisPassword,
			cfg.RedisDB,
			cfg.RedisKeyPrefix,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize redis object storage: %w", err)
		}
		logger.Info("Object storage initialized",
			zap.String("backend", config.StorageBackendRedis),
			zap.String("address", cfg.RedisAddr),
		)
		return objects, objects.Close, nil
	default:
		logger.Info("Object storage initialized",
			zap.String("backend", config.StorageBackendDatabase),
		)
		return db, nil, nil
	}
}
