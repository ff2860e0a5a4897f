package bootstrap

import (
	"fmt"

	"github.com/go-authgate/devicelink/internal/config"
	"github.com/go-authgate/devicelink/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// rateLimitMiddlewares holds rate limiting middlewares for different endpoints
type rateLimitMiddlewares struct {
	linkCode   gin.HandlerFunc
	linkDevice gin.HandlerFunc
	deviceAuth gin.HandlerFunc
}

// setupRateLimiting configures rate limiting middlewares based on configuration
// Accepts an optional go-redis client
func setupRateLimiting(
	cfg *config.Config,
	redisClient *redis.Client,
	logger *zap.Logger,
) (rateLimitMiddlewares, error) {
	// Return no-op middlewares when rate limiting is disabled
	if !cfg.EnableRateLimit {
		noOpMiddleware := func(c *gin.Context) { c.Next() }
		return rateLimitMiddlewares{
			linkCode:   noOpMiddleware,
			linkDevice: noOpMiddleware,
			deviceAuth: noOpMiddleware,
		}, nil
	}
	return createRateLimiters(cfg, redisClient, logger)
}

// createRateLimiters creates rate limiting middlewares for all endpoints
func createRateLimiters(
	cfg *config.Config,
	redisClient *redis.Client,
	logger *zap.Logger,
) (rateLimitMiddlewares, error) {
	storeType := middleware.RateLimitStoreType(cfg.RateLimitStore)
	if storeType == middleware.RateLimitStoreRedis {
		logger.Info("Rate limiting enabled", zap.String("store", "redis (shared client)"))
	} else {
		logger.Info("Rate limiting enabled", zap.String("store", "memory (single instance only)"))
	}

	var limiters rateLimitMiddlewares
	for _, l := range []struct {
		target            *gin.HandlerFunc
		prefix            string
		requestsPerMinute int
	}{
		{&limiters.linkCode, "ratelimit:link-code", cfg.LinkCodeRateLimit},
		{&limiters.linkDevice, "ratelimit:link-device", cfg.LinkDeviceRateLimit},
		{&limiters.deviceAuth, "ratelimit:device-auth", cfg.DeviceAuthRateLimit},
	} {
		limiter, err := middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerMinute: l.requestsPerMinute,
			StoreType:         storeType,
			RedisClient:       redisClient, // nil for memory store
			Prefix:            l.prefix,
			CleanupInterval:   cfg.RateLimitCleanupTime,
		})
		if err != nil {
			return rateLimitMiddlewares{}, fmt.Errorf("failed to create rate limiter %s: %w", l.prefix, err)
		}
		*l.target = limiter
	}
	return limiters, nil
}
