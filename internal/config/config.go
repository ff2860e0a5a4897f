package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment names
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Object storage backends
const (
	StorageBackendDatabase = "database"
	StorageBackendRedis    = "redis"
)

// Rate limit store types
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

type Config struct {
	// Server settings
	ServerAddr  string
	Environment string

	// Session token settings
	JWTSecret     string
	JWTExpiration time.Duration

	// Database
	DatabaseDriver string
	DatabaseDSN    string
	DBInitTimeout  time.Duration
	DBCloseTimeout time.Duration

	// Object storage backend for link tickets and provider tokens
	StorageBackend string

	// Redis, shared by the redis object storage and the rate limiter
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	RedisKeyPrefix    string
	RedisConnTimeout  time.Duration
	RedisCloseTimeout time.Duration

	// Discord OAuth
	DiscordClientID     string
	DiscordClientSecret string
	DiscordAPIURL       string
	DiscordScopes       []string

	OAuthTimeout            time.Duration // HTTP client timeout for provider requests (default: 15s)
	OAuthInsecureSkipVerify bool          // Skip TLS verification for provider calls (dev/testing only)

	// Link codes
	LinkTicketTTL         time.Duration
	LinkCodeMaxAttempts   int
	TicketCleanupInterval time.Duration

	// Provider token freshness
	TokenRefreshThreshold time.Duration

	// Rate limiting
	EnableRateLimit      bool
	RateLimitStore       string
	LinkCodeRateLimit    int // requests per minute per IP
	LinkDeviceRateLimit  int
	DeviceAuthRateLimit  int
	RateLimitCleanupTime time.Duration

	// Metrics
	MetricsEnabled bool

	// Server shutdown
	ServerShutdownTimeout time.Duration
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	// Determine database driver and DSN
	driver := getEnv("DATABASE_DRIVER", "sqlite")
	var dsn string
	if driver == "sqlite" {
		dsn = getEnv("DATABASE_DSN", getEnv("DATABASE_PATH", "devicelink.db"))
	} else {
		dsn = getEnv("DATABASE_DSN", "")
	}

	return &Config{
		ServerAddr:    getEnv("SERVER_ADDR", ":8080"),
		Environment:   getEnv("ENVIRONMENT", EnvDevelopment),
		JWTSecret:     getEnv("JWT_SECRET", "your-256-bit-secret-change-in-production"),
		JWTExpiration: getEnvDuration("JWT_EXPIRATION", time.Hour),

		DatabaseDriver: driver,
		DatabaseDSN:    dsn,
		DBInitTimeout:  getEnvDuration("DB_INIT_TIMEOUT", 30*time.Second),
		DBCloseTimeout: getEnvDuration("DB_CLOSE_TIMEOUT", 5*time.Second),

		StorageBackend: getEnv("STORAGE_BACKEND", StorageBackendDatabase),

		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		RedisKeyPrefix:    getEnv("REDIS_KEY_PREFIX", "devicelink:"),
		RedisConnTimeout:  getEnvDuration("REDIS_CONN_TIMEOUT", 5*time.Second),
		RedisCloseTimeout: getEnvDuration("REDIS_CLOSE_TIMEOUT", 5*time.Second),

		DiscordClientID:     getEnv("DISCORD_CLIENT_ID", ""),
		DiscordClientSecret: getEnv("DISCORD_CLIENT_SECRET", ""),
		DiscordAPIURL:       getEnv("DISCORD_API_URL", "https://discord.com/api/v10"),
		DiscordScopes:       getEnvSlice("DISCORD_SCOPES", []string{"identify"}),

		OAuthTimeout:            getEnvDuration("OAUTH_TIMEOUT", 15*time.Second),
		OAuthInsecureSkipVerify: getEnvBool("OAUTH_INSECURE_SKIP_VERIFY", false),

		LinkTicketTTL:         getEnvDuration("LINK_TICKET_TTL", 30*time.Minute),
		LinkCodeMaxAttempts:   getEnvInt("LINK_CODE_MAX_ATTEMPTS", 10),
		TicketCleanupInterval: getEnvDuration("TICKET_CLEANUP_INTERVAL", 5*time.Minute),

		TokenRefreshThreshold: getEnvDuration("TOKEN_REFRESH_THRESHOLD", 24*time.Hour),

		EnableRateLimit:      getEnvBool("ENABLE_RATE_LIMIT", true),
		RateLimitStore:       getEnv("RATE_LIMIT_STORE", RateLimitStoreMemory),
		LinkCodeRateLimit:    getEnvInt("LINK_CODE_RATE_LIMIT", 10),
		LinkDeviceRateLimit:  getEnvInt("LINK_DEVICE_RATE_LIMIT", 10),
		DeviceAuthRateLimit:  getEnvInt("DEVICE_AUTH_RATE_LIMIT", 30),
		RateLimitCleanupTime: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),

		ServerShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second),
	}
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if !slices.Contains([]string{StorageBackendDatabase, StorageBackendRedis}, c.StorageBackend) {
		return fmt.Errorf(
			"invalid STORAGE_BACKEND value: %q (must be %q or %q)",
			c.StorageBackend, StorageBackendDatabase, StorageBackendRedis,
		)
	}
	if !slices.Contains([]string{RateLimitStoreMemory, RateLimitStoreRedis}, c.RateLimitStore) {
		return fmt.Errorf(
			"invalid RATE_LIMIT_STORE value: %q (must be %q or %q)",
			c.RateLimitStore, RateLimitStoreMemory, RateLimitStoreRedis,
		)
	}
	if c.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN is required")
	}
	if c.LinkCodeMaxAttempts < 1 {
		return fmt.Errorf("LINK_CODE_MAX_ATTEMPTS must be at least 1, got %d", c.LinkCodeMaxAttempts)
	}
	if c.LinkTicketTTL <= 0 {
		return fmt.Errorf("LINK_TICKET_TTL must be positive, got %s", c.LinkTicketTTL)
	}
	if c.OAuthTimeout <= 0 {
		return fmt.Errorf("OAUTH_TIMEOUT must be positive, got %s", c.OAuthTimeout)
	}
	if c.TokenRefreshThreshold <= 0 {
		return fmt.Errorf(
			"TOKEN_REFRESH_THRESHOLD must be positive, got %s",
			c.TokenRefreshThreshold,
		)
	}
	if c.JWTExpiration <= 0 {
		return fmt.Errorf("JWT_EXPIRATION must be positive, got %s", c.JWTExpiration)
	}
	if c.IsProduction() {
		if c.DiscordClientID == "" || c.DiscordClientSecret == "" {
			return errors.New("DISCORD_CLIENT_ID and DISCORD_CLIENT_SECRET are required in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		if parts := splitAndTrim(value, ","); len(parts) > 0 {
			return parts
		}
	}
	return defaultValue
}

func splitAndTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
