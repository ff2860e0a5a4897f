package core

import (
	"context"

	"github.com/go-authgate/devicelink/internal/models"
)

// OAuthProvider performs single-attempt calls against the identity provider.
type OAuthProvider interface {
	ExchangeCode(ctx context.Context, code, redirectURI string) (*models.OAuthToken, error)
	RefreshToken(ctx context.Context, token *models.OAuthToken) (*models.OAuthToken, error)
	FetchCurrentUser(ctx context.Context, token *models.OAuthToken) (*models.ProviderIdentity, error)
	Name() string
}
