package bootstrap

import (
	"fmt"
	"net/http"

	"github.com/go-authgate/devicelink/internal/auth"
	"github.com/go-authgate/devicelink/internal/client"
	"github.com/go-authgate/devicelink/internal/config"
	"github.com/go-authgate/devicelink/internal/metrics"

	"go.uber.org/zap"
)

// createOAuthHTTPClient creates a bounded-timeout HTTP client for provider requests
func createOAuthHTTPClient(cfg *config.Config, logger *zap.Logger) (*http.Client, error) {
	if cfg.OAuthInsecureSkipVerify {
		logger.Warn("OAuth TLS verification is disabled (OAUTH_INSECURE_SKIP_VERIFY=true)")
	}

	httpClient, err := client.NewProviderClient(cfg.OAuthTimeout, cfg.OAuthInsecureSkipVerify)
	if err != nil {
		return nil, fmt.Errorf("failed to create OAuth HTTP client: %w", err)
	}
	return httpClient, nil
}

// initializeDiscordProvider creates the Discord OAuth client
func initializeDiscordProvider(
	cfg *config.Config,
	httpClient *http.Client,
	recorder metrics.Recorder,
	logger *zap.Logger,
) *auth.DiscordProvider {
	if cfg.DiscordClientID == "" || cfg.DiscordClientSecret == "" {
		logger.Warn("Discord OAuth credentials are not configured; link requests will fail")
	}

	provider := auth.NewDiscordProvider(auth.DiscordConfig{
		ClientID:     cfg.DiscordClientID,
		ClientSecret: cfg.DiscordClientSecret,
		APIURL:       cfg.DiscordAPIURL,
		Scopes:       cfg.DiscordScopes,
		Timeout:      cfg.OAuthTimeout,
	}, httpClient, recorder, logger.Named("discord"))

	logger.Info("OAuth provider enabled",
		zap.String("provider", provider.Name()),
		zap.String("api_url", cfg.DiscordAPIURL),
		zap.Strings("scopes", cfg.DiscordScopes),
	)
	return provider
}
