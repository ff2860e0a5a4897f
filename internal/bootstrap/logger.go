package bootstrap

import (
	"fmt"

	"github.com/go-authgate/devicelink/internal/config"

	"go.uber.org/zap"
)

// initializeLogger builds a production logger in production and a
// development logger otherwise, and installs it as the global logger.
func initializeLogger(cfg *config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	zap.ReplaceGlobals(logger)
	return logger, nil
}
