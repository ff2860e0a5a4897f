package bootstrap

import (
	"github.com/go-authgate/devicelink/internal/config"
	"github.com/go-authgate/devicelink/internal/core"
	"github.com/go-authgate/devicelink/internal/metrics"
	"github.com/go-authgate/devicelink/internal/services"
	"github.com/go-authgate/devicelink/internal/token"

	"go.uber.org/zap"
)

// serviceSet holds the business services
type serviceSet struct {
	tickets   *services.LinkTicketService
	linker    *services.AccountLinker
	refresher *services.TokenRefresher
	tokens    *token.LocalTokenProvider
}

// initializeServices creates all business services
func initializeServices(
	cfg *config.Config,
	directory core.AccountDirectory,
	storage core.ObjectStorage,
	provider core.OAuthProvider,
	recorder metrics.Recorder,
	logger *zap.Logger,
) serviceSet {
	tickets := services.NewLinkTicketService(
		storage,
		cfg,
		recorder,
		logger.Named("tickets"),
	)
	return serviceSet{
		tickets: tickets,
		linker: services.NewAccountLinker(
			tickets,
			directory,
			storage,
			provider,
			recorder,
			logger.Named("linker"),
		),
		refresher: services.NewTokenRefresher(
			directory,
			storage,
			provider,
			cfg,
			recorder,
			logger.Named("refresher"),
		),
		tokens: token.NewLocalTokenProvider(cfg),
	}
}
