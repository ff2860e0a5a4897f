package core

import (
	"context"

	"github.com/go-authgate/devicelink/internal/models"
)

// AccountDirectory owns persistent accounts and their login credentials.
type AccountDirectory interface {
	// FindByUsername returns nil when no account has the username.
	FindByUsername(ctx context.Context, username string) (*models.Account, error)

	// AuthenticateDevice returns the account bound to cred. With create set an
	// unbound credential gets a new account named username.
	AuthenticateDevice(
		ctx context.Context,
		cred, username string,
		create bool,
	) (*models.Account, error)

	LinkDevice(ctx context.Context, accountID, cred string) error
	LinkCustom(ctx context.Context, accountID, cred string) error
	UnlinkCustom(ctx context.Context, accountID string) error

	GetAccount(ctx context.Context, accountID string) (*models.Account, error)

	// UpdateAccount writes the non-nil fields. metadata replaces the stored bag.
	UpdateAccount(
		ctx context.Context,
		accountID string,
		displayName *string,
		metadata map[string]any,
	) error
}
