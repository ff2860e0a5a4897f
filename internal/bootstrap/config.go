package bootstrap

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-authgate/devicelink/internal/config"
	"github.com/go-authgate/devicelink/internal/store"
)

// validateAllConfiguration validates all configuration settings
func validateAllConfiguration(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := validateDatabaseConfig(cfg); err != nil {
		return fmt.Errorf("invalid database configuration: %w", err)
	}
	return nil
}

// validateDatabaseConfig checks that the selected driver is registered
func validateDatabaseConfig(cfg *config.Config) error {
	if cfg.DatabaseDriver == "" {
		return errors.New("DATABASE_DRIVER is required")
	}
	if !slices.Contains(store.SupportedDrivers(), cfg.DatabaseDriver) {
		return fmt.Errorf(
			"unsupported DATABASE_DRIVER: %s (must be one of: %v)",
			cfg.DatabaseDriver,
			store.SupportedDrivers(),
		)
	}
	return nil
}
