package services

import (
	"context"
	"time"

	"github.com/go-authgate/devicelink/internal/config"
	"github.com/go-authgate/devicelink/internal/core"
	"github.com/go-authgate/devicelink/internal/models"
	"github.com/go-authgate/devicelink/internal/rpcerr"

	"go.uber.org/zap"
)

const defaultTokenRefreshThreshold = 24 * time.Hour

// Token refresh results recorded in metrics.
const (
	RefreshResultAbsent    = "absent"
	RefreshResultFresh     = "fresh"
	RefreshResultRefreshed = "refreshed"
	RefreshResultError     = "error"
)

// RefresherOption configures a TokenRefresher.
type RefresherOption func(*TokenRefresher)

// WithRefreshClock replaces the clock used to compute token age.
func WithRefreshClock(now func() time.Time) RefresherOption {
	return func(r *TokenRefresher) {
		r.now = now
	}
}

// TokenRefresher keeps a linked account's provider token fresh. It runs
// around device authentication.
type TokenRefresher struct {
	oauth     core.OAuthProvider
	accounts  *providerAccounts
	threshold time.Duration
	metrics   core.Recorder
	logger    *zap.Logger
	now       func() time.Time
}

func NewTokenRefresher(
	directory core.AccountDirectory,
	storage core.ObjectStorage,
	provider core.OAuthProvider,
	cfg *config.Config,
	recorder core.Recorder,
	logger *zap.Logger,
	opts ...RefresherOption,
) *TokenRefresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &TokenRefresher{
		oauth: provider,
		accounts: &providerAccounts{
			directory: directory,
			storage:   storage,
			provider:  models.CollectionProvider,
			logger:    logger,
		},
		threshold: cfg.TokenRefreshThreshold,
		metrics:   recorder,
		logger:    logger,
		now:       time.Now,
	}
	if r.threshold <= 0 {
		r.threshold = defaultTokenRefreshThreshold
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// EnsureFresh refreshes the account's stored token once it is older than the
// threshold and relinks the account's custom credential to the current token.
// Accounts without a stored token are left alone. When the refresh or the
// store of the new token fails, the old token stays in place.
func (r *TokenRefresher) EnsureFresh(ctx context.Context, accountID string) error {
	result, err := r.ensureFresh(ctx, accountID)
	if err != nil {
		result = RefreshResultError
		r.logger.Error("token refresh failed",
			zap.String("operation", "ensure_fresh"),
			zap.String("account_id", accountID),
			zap.Error(err),
		)
	}
	r.metrics.RecordTokenRefresh(result)
	return err
}

func (r *TokenRefresher) ensureFresh(ctx context.Context, accountID string) (string, error) {
	token, version, err := r.accounts.loadToken(ctx, accountID)
	if err != nil {
		return "", err
	}
	if token == nil {
		return RefreshResultAbsent, nil
	}

	result := RefreshResultFresh
	if token.Age(r.now()) > r.threshold {
		refreshed, err := r.oauth.RefreshToken(ctx, token)
		if err != nil {
			return "", rpcerr.Internal(err, "Could not refresh provider token")
		}
		if err := r.accounts.saveToken(ctx, accountID, refreshed, version); err != nil {
			return "", err
		}
		token = refreshed
		result = RefreshResultRefreshed
	}

	if err := r.accounts.relinkCustom(ctx, accountID, token); err != nil {
		return "", err
	}

	if result == RefreshResultRefreshed {
		identity, err := r.oauth.FetchCurrentUser(ctx, token)
		if err != nil {
			return "", rpcerr.Internal(err, "Could not fetch provider user")
		}
		if err := r.accounts.syncProfile(ctx, accountID, identity, token); err != nil {
			return "", err
		}
	}

	return result, nil
}
