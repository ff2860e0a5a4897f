package bootstrap

import (
	"context"
	"net/http"

	"github.com/go-authgate/devicelink/internal/config"
	"github.com/go-authgate/devicelink/internal/core"
	"github.com/go-authgate/devicelink/internal/metrics"
	"github.com/go-authgate/devicelink/internal/store"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Application holds all initialized components
type Application struct {
	Config *config.Config
	Logger *zap.Logger

	// Core infrastructure
	DB                   *store.Store
	Storage              core.ObjectStorage
	StorageCloser        func() error
	MetricsRecorder      metrics.Recorder
	RateLimitRedisClient *redis.Client

	// Services
	Services serviceSet

	// HTTP
	HandlerSet handlerSet
	Router     *gin.Engine
	Server     *http.Server
}

// Run initializes and starts the application
func Run(cfg *config.Config) error {
	// Phase 1: Validate configuration
	if err := validateAllConfiguration(cfg); err != nil {
		return err
	}

	logger, err := initializeLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	app := &Application{
		Config: cfg,
		Logger: logger,
	}

	// Phase 2: Initialize infrastructure
	ctx := context.Background()
	if err := app.initializeInfrastructure(ctx); err != nil {
		return err
	}

	// Phase 3: Initialize business layer
	if err := app.initializeBusinessLayer(); err != nil {
		return err
	}

	// Phase 4: Initialize HTTP layer
	if err := app.initializeHTTPLayer(); err != nil {
		return err
	}

	// Phase 5: Start server with graceful shutdown
	app.startWithGracefulShutdown()

	return nil
}

// initializeInfrastructure sets up database, object storage, metrics, and Redis
func (app *Application) initializeInfrastructure(ctx context.Context) error {
	var err error

	// Database
	app.DB, err = initializeDatabase(app.Config, app.Logger)
	if err != nil {
		return err
	}

	// Object storage for link tickets and provider tokens
	app.Storage, app.StorageCloser, err = initializeObjectStorage(ctx, app.Config, app.DB, app.Logger)
	if err != nil {
		return err
	}

	// Metrics
	app.MetricsRecorder = initializeMetrics(app.Config, app.Logger)

	// Redis (for rate limiting)
	app.RateLimitRedisClient, err = initializeRateLimitRedisClient(ctx, app.Config, app.Logger)
	if err != nil {
		return err
	}

	return nil
}

// initializeBusinessLayer sets up the provider client and services
func (app *Application) initializeBusinessLayer() error {
	httpClient, err := createOAuthHTTPClient(app.Config, app.Logger)
	if err != nil {
		return err
	}
	provider := initializeDiscordProvider(app.Config, httpClient, app.MetricsRecorder, app.Logger)

	app.Services = initializeServices(
		app.Config,
		app.DB,
		app.Storage,
		provider,
		app.MetricsRecorder,
		app.Logger,
	)
	return nil
}

// initializeHTTPLayer sets up handlers, router, and server
func (app *Application) initializeHTTPLayer() error {
	app.HandlerSet = initializeHandlers(app.DB, app.Services)

	router, err := setupRouter(
		app.Config,
		app.Logger,
		app.healthChecks(),
		app.HandlerSet,
		app.MetricsRecorder,
		app.RateLimitRedisClient,
	)
	if err != nil {
		return err
	}
	app.Router = router
	app.Server = createHTTPServer(app.Config, app.Router)
	return nil
}

// healthChecks lists the dependencies reported by /health
func (app *Application) healthChecks() []healthCheck {
	checks := []healthCheck{{name: "database", check: app.DB.Health}}
	if pinger, ok := app.Storage.(interface{ Health(context.Context) error }); ok {
		checks = append(checks, healthCheck{
			name: "object_storage",
			check: func() error {
				ctx, cancel := context.WithTimeout(context.Background(), app.Config.RedisConnTimeout)
				defer cancel()
				return pinger.Health(ctx)
			},
		})
	}
	return checks
}

// startWithGracefulShutdown starts the server and handles graceful shutdown
func (app *Application) startWithGracefulShutdown() {
	m := graceful.NewManager()

	// Add jobs
	addServerRunningJob(m, app.Server, app.Logger)
	addServerShutdownJob(m, app.Server, app.Config, app.Logger)
	addRedisClientShutdownJob(m, app.RateLimitRedisClient, app.Logger)
	addStorageShutdownJob(m, app.StorageCloser, app.Logger)
	addDatabaseShutdownJob(m, app.DB, app.Logger)
	addExpiredObjectCleanupJob(m, app.Config, app.Storage, app.MetricsRecorder, app.Logger)

	// Wait for graceful shutdown
	<-m.Done()
}
