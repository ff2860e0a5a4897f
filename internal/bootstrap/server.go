package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-authgate/devicelink/internal/config"
	"github.com/go-authgate/devicelink/internal/core"
	"github.com/go-authgate/devicelink/internal/metrics"
	"github.com/go-authgate/devicelink/internal/store"

	"github.com/appleboy/graceful"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// expiredObjectPurger is implemented by storage backends without native expiry
type expiredObjectPurger interface {
	DeleteExpiredObjects(ctx context.Context) (int64, error)
}

// purgeRecorder is implemented by recorders that count purged objects
type purgeRecorder interface {
	RecordExpiredObjectsPurged(count int64)
}

// createHTTPServer creates the HTTP server instance
func createHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// addServerRunningJob adds the HTTP server running job
func addServerRunningJob(m *graceful.Manager, srv *http.Server, logger *zap.Logger) {
	m.AddRunningJob(func(ctx context.Context) error {
		go func() {
			logger.Info("Server listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("Failed to start server", zap.Error(err))
			}
		}()
		<-ctx.Done()
		return nil
	})
}

// addServerShutdownJob adds HTTP server shutdown handler
func addServerShutdownJob(
	m *graceful.Manager,
	srv *http.Server,
	cfg *config.Config,
	logger *zap.Logger,
) {
	m.AddShutdownJob(func() error {
		logger.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server forced to shutdown", zap.Error(err))
			return err
		}

		logger.Info("Server exited")
		return nil
	})
}

// addRedisClientShutdownJob adds Redis client shutdown handler
func addRedisClientShutdownJob(m *graceful.Manager, redisClient *redis.Client, logger *zap.Logger) {
	if redisClient == nil {
		return
	}

	m.AddShutdownJob(func() error {
		logger.Info("Closing Redis connection...")
		if err := redisClient.Close(); err != nil {
			logger.Error("Error closing Redis client", zap.Error(err))
			return err
		}
		logger.Info("Redis connection closed")
		return nil
	})
}

// addStorageShutdownJob closes a standalone object storage backend
func addStorageShutdownJob(m *graceful.Manager, closer func() error, logger *zap.Logger) {
	if closer == nil {
		return
	}

	m.AddShutdownJob(func() error {
		if err := closer(); err != nil {
			logger.Error("Error closing object storage", zap.Error(err))
			return err
		}
		logger.Info("Object storage closed")
		return nil
	})
}

// addDatabaseShutdownJob closes the database connection pool
func addDatabaseShutdownJob(m *graceful.Manager, db *store.Store, logger *zap.Logger) {
	m.AddShutdownJob(func() error {
		if err := db.Close(); err != nil {
			logger.Error("Error closing database", zap.Error(err))
			return err
		}
		logger.Info("Database connection closed")
		return nil
	})
}

// addExpiredObjectCleanupJob adds the periodic purge of expired link tickets.
// Backends with native expiry do not implement expiredObjectPurger and are skipped.
func addExpiredObjectCleanupJob(
	m *graceful.Manager,
	cfg *config.Config,
	storage core.ObjectStorage,
	recorder metrics.Recorder,
	logger *zap.Logger,
) {
	purger, ok := storage.(expiredObjectPurger)
	if !ok || cfg.TicketCleanupInterval <= 0 {
		return
	}

	m.AddRunningJob(func(ctx context.Context) error {
		ticker := time.NewTicker(cfg.TicketCleanupInterval)
		defer ticker.Stop()

		// Run cleanup immediately on startup
		purgeExpiredObjects(ctx, purger, recorder, logger)

		for {
			select {
			case <-ticker.C:
				purgeExpiredObjects(ctx, purger, recorder, logger)
			case <-ctx.Done():
				return nil
			}
		}
	})
}

// purgeExpiredObjects runs one cleanup pass and records the purged count
func purgeExpiredObjects(
	ctx context.Context,
	purger expiredObjectPurger,
	recorder metrics.Recorder,
	logger *zap.Logger,
) int64 {
	deleted, err := purger.DeleteExpiredObjects(ctx)
	if err != nil {
		logger.Warn("Failed to purge expired objects", zap.Error(err))
		return 0
	}
	if r, ok := recorder.(purgeRecorder); ok {
		r.RecordExpiredObjectsPurged(deleted)
	}
	if deleted > 0 {
		logger.Info("Purged expired objects", zap.Int64("count", deleted))
	}
	return deleted
}
