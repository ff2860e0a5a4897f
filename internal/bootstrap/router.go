package bootstrap

import (
	"net/http"

	"github.com/go-authgate/devicelink/internal/config"
	"github.com/go-authgate/devicelink/internal/metrics"
	"github.com/go-authgate/devicelink/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// healthCheck reports the status of one backing dependency
type healthCheck struct {
	name  string
	check func() error
}

// setupRouter configures the Gin router with all routes and middleware
func setupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	checks []healthCheck,
	h handlerSet,
	recorder metrics.Recorder,
	rateLimitRedisClient *redis.Client,
) (*gin.Engine, error) {
	// Setup Gin mode
	setupGinMode(cfg, logger)
	r := gin.New()

	// Setup middleware
	r.Use(metrics.HTTPMetricsMiddleware(recorder))
	r.Use(middleware.RequestLogger(logger.Named("http")), gin.Recovery())

	// Health check endpoint
	r.GET("/health", createHealthCheckHandler(checks))

	// Setup metrics endpoint
	setupMetricsEndpoint(r, cfg, logger)

	// Setup rate limiting
	rateLimiters, err := setupRateLimiting(cfg, rateLimitRedisClient, logger)
	if err != nil {
		return nil, err
	}

	// Setup all routes
	setupAllRoutes(r, h, rateLimiters)

	logger.Info("Device link server configured",
		zap.String("addr", cfg.ServerAddr),
		zap.String("storage_backend", cfg.StorageBackend),
		zap.Duration("link_ticket_ttl", cfg.LinkTicketTTL),
	)
	return r, nil
}

// setupMetricsEndpoint configures the Prometheus metrics endpoint
func setupMetricsEndpoint(r *gin.Engine, cfg *config.Config, logger *zap.Logger) {
	if !cfg.MetricsEnabled {
		logger.Info("Prometheus metrics disabled")
		return
	}
	logger.Info("Prometheus metrics enabled at /metrics")
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// setupAllRoutes configures all application routes
func setupAllRoutes(r *gin.Engine, h handlerSet, rateLimiters rateLimitMiddlewares) {
	v1 := r.Group("/v1")

	// Link RPCs: the headset issues a code, the companion site redeems it
	rpc := v1.Group("/rpc")
	{
		rpc.POST("/link/code", rateLimiters.linkCode, h.link.IssueLinkCode)
		rpc.POST("/link/device", rateLimiters.linkDevice, h.link.LinkDevice)
	}

	// Device session, runs the token refresh hook before issuing a session
	v1.POST("/auth/device", rateLimiters.deviceAuth, h.session.AuthenticateDevice)
}

// createHealthCheckHandler creates health check endpoint handler
func createHealthCheckHandler(checks []healthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{"status": "healthy"}
		for _, hc := range checks {
			if err := hc.check(); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "unhealthy"
				body[hc.name] = "disconnected"
				continue
			}
			body[hc.name] = "connected"
		}
		c.JSON(status, body)
	}
}

// setupGinMode sets Gin mode based on environment configuration
func setupGinMode(cfg *config.Config, logger *zap.Logger) {
	mode := ginModeMap[cfg.IsProduction()]
	gin.SetMode(mode)
	logger.Info("Gin mode", zap.String("mode", mode))
}

var ginModeMap = map[bool]string{
	true:  gin.ReleaseMode,
	false: gin.DebugMode,
}
