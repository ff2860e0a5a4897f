package bootstrap

import (
	"github.com/go-authgate/devicelink/internal/config"
	"github.com/go-authgate/devicelink/internal/metrics"

	"go.uber.org/zap"
)

// initializeMetrics creates the metrics recorder (Prometheus or noop)
func initializeMetrics(cfg *config.Config, logger *zap.Logger) metrics.Recorder {
	recorder := metrics.Init(cfg.MetricsEnabled)
	if cfg.MetricsEnabled {
		logger.Info("Prometheus metrics initialized")
	} else {
		logger.Info("Metrics disabled (using noop implementation)")
	}
	return recorder
}
