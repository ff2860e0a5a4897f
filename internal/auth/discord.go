package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-authgate/devicelink/internal/core"
	"github.com/go-authgate/devicelink/internal/models"
	"github.com/go-authgate/devicelink/internal/rpcerr"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// DefaultDiscordAPIURL is the versioned Discord REST API root.
const DefaultDiscordAPIURL = "https://discord.com/api/v10"

// maxResponseSize caps how much of a provider response body is read.
const maxResponseSize = 1 << 20

// DiscordConfig contains configuration for the Discord provider
type DiscordConfig struct {
	ClientID     string
	ClientSecret string
	APIURL       string
	Scopes       []string
	Timeout      time.Duration
}

var _ core.OAuthProvider = (*DiscordProvider)(nil)

// DiscordProvider performs the authorization-code and refresh grants against
// Discord and reads the current user. Calls are made once and never retried.
type DiscordProvider struct {
	config  *oauth2.Config
	apiURL  string
	client  *http.Client
	timeout time.Duration
	metrics core.Recorder
	logger  *zap.Logger
	now     func() time.Time
}

// NewDiscordProvider creates a new Discord OAuth provider
func NewDiscordProvider(
	cfg DiscordConfig,
	httpClient *http.Client,
	recorder core.Recorder,
	logger *zap.Logger,
) *DiscordProvider {
	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = DefaultDiscordAPIURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DiscordProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   "https://discord.com/oauth2/authorize",
				TokenURL:  apiURL + "/oauth2/token",
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		apiURL:  apiURL,
		client:  httpClient,
		timeout: cfg.Timeout,
		metrics: recorder,
		logger:  logger.Named("discord"),
		now:     time.Now,
	}
}

// Name returns the provider name
func (p *DiscordProvider) Name() string {
	return "discord"
}

// AuthCodeURL returns the URL a browser visits to start the authorization.
func (p *DiscordProvider) AuthCodeURL(state, redirectURI string) string {
	return p.config.AuthCodeURL(state, oauth2.SetAuthURLParam("redirect_uri", redirectURI))
}

// requestContext binds the provider HTTP client and the per-call timeout.
func (p *DiscordProvider) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)
	if p.timeout > 0 {
		return context.WithTimeout(ctx, p.timeout)
	}
	return context.WithCancel(ctx)
}

// ExchangeCode performs the authorization-code grant.
func (p *DiscordProvider) ExchangeCode(
	ctx context.Context,
	code, redirectURI string,
) (*models.OAuthToken, error) {
	ctx, cancel := p.requestContext(ctx)
	defer cancel()

	start := time.Now()
	tok, err := p.config.Exchange(ctx, code, oauth2.SetAuthURLParam("redirect_uri", redirectURI))
	p.record("exchange_code", err == nil, start)
	if err != nil {
		return nil, p.classifyGrantError("exchange_code", err)
	}
	return p.fromOAuth2(tok), nil
}

// RefreshToken performs the refresh-token grant.
func (p *DiscordProvider) RefreshToken(
	ctx context.Context,
	token *models.OAuthToken,
) (*models.OAuthToken, error) {
	if token == nil || token.RefreshToken == "" {
		return nil, rpcerr.Internal(ErrMissingRefreshToken, "Stored token cannot be refreshed")
	}

	ctx, cancel := p.requestContext(ctx)
	defer cancel()

	start := time.Now()
	tok, err := p.config.TokenSource(ctx, &oauth2.Token{RefreshToken: token.RefreshToken}).Token()
	p.record("refresh_token", err == nil, start)
	if err != nil {
		return nil, p.classifyGrantError("refresh_token", err)
	}
	return p.fromOAuth2(tok), nil
}

// FetchCurrentUser reads the profile of the token's owner.
func (p *DiscordProvider) FetchCurrentUser(
	ctx context.Context,
	token *models.OAuthToken,
) (*models.ProviderIdentity, error) {
	ctx, cancel := p.requestContext(ctx)
	defer cancel()

	endpoint := p.apiURL + "/users/@me"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, rpcerr.Internal(err, "Could not build provider request")
	}
	tokenType := token.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	req.Header.Set("Authorization", tokenType+" "+token.AccessToken)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		p.record("fetch_user", false, start)
		p.logger.Error("provider request failed",
			zap.String("operation", "fetch_user"),
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		return nil, rpcerr.Internal(fmt.Errorf("%w: %v", ErrProviderUnavailable, err), "Provider request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		p.record("fetch_user", false, start)
		return nil, rpcerr.Internal(fmt.Errorf("%w: %v", ErrProviderUnavailable, err), "Provider request failed")
	}

	if resp.StatusCode != http.StatusOK {
		p.record("fetch_user", false, start)
		p.logger.Error("provider returned unexpected status",
			zap.String("operation", "fetch_user"),
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
		)
		return nil, rpcerr.Internal(
			fmt.Errorf("%w: %d", ErrProviderStatus, resp.StatusCode),
			"Provider returned status %d", resp.StatusCode,
		)
	}

	var identity models.ProviderIdentity
	if err := json.Unmarshal(body, &identity); err != nil || identity.ID == "" {
		p.record("fetch_user", false, start)
		p.logger.Error("provider user response did not decode",
			zap.String("operation", "fetch_user"),
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		return nil, rpcerr.Internal(ErrDecodeResponse, "Could not decode provider response")
	}

	p.record("fetch_user", true, start)
	return &identity, nil
}

// classifyGrantError maps a token endpoint failure to a caller-facing error.
func (p *DiscordProvider) classifyGrantError(operation string, err error) error {
	fields := []zap.Field{
		zap.String("operation", operation),
		zap.String("endpoint", p.config.Endpoint.TokenURL),
		zap.Error(err),
	}

	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) {
		status := 0
		if rErr.Response != nil {
			status = rErr.Response.StatusCode
		}
		fields = append(fields, zap.Int("status", status), zap.String("error_code", rErr.ErrorCode))

		if isInvalidGrant(rErr) {
			p.logger.Warn("provider rejected grant", fields...)
			return rpcerr.Unauthenticated(
				fmt.Errorf("%w: %s", ErrInvalidGrant, rErr.ErrorDescription),
				"Provider rejected the authorization",
			)
		}
		p.logger.Error("token request failed", fields...)
		if status >= 200 && status < 300 {
			return rpcerr.Internal(ErrDecodeResponse, "Could not decode provider response")
		}
		return rpcerr.Internal(
			fmt.Errorf("%w: %d", ErrProviderStatus, status),
			"Provider returned status %d", status,
		)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		p.logger.Error("token request failed", fields...)
		return rpcerr.Internal(fmt.Errorf("%w: %v", ErrProviderUnavailable, err), "Provider request failed")
	}

	// Remaining failures come from parsing a successful response.
	p.logger.Error("token response did not decode", fields...)
	return rpcerr.Internal(fmt.Errorf("%w: %v", ErrDecodeResponse, err), "Could not decode provider response")
}

func isInvalidGrant(rErr *oauth2.RetrieveError) bool {
	if rErr.ErrorCode != "" {
		return rErr.ErrorCode == "invalid_grant"
	}
	return strings.Contains(string(rErr.Body), "invalid_grant")
}

func (p *DiscordProvider) fromOAuth2(tok *oauth2.Token) *models.OAuthToken {
	now := p.now().UTC()
	out := &models.OAuthToken{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    int(tok.ExpiresIn),
		ObtainedAt:   now,
	}
	if !tok.Expiry.IsZero() {
		out.ExpiresAt = tok.Expiry.UTC()
		if out.ExpiresIn == 0 {
			out.ExpiresIn = int(tok.Expiry.Sub(now).Round(time.Second).Seconds())
		}
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		out.Scope = scope
	}
	return out
}

func (p *DiscordProvider) record(operation string, success bool, start time.Time) {
	if p.metrics == nil {
		return
	}
	p.metrics.RecordProviderCall(operation, success, time.Since(start))
}
