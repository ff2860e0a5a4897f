package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-authgate/devicelink/internal/core"
	"github.com/go-authgate/devicelink/internal/models"
	"github.com/go-authgate/devicelink/internal/rpcerr"
	"github.com/go-authgate/devicelink/internal/store"

	"go.uber.org/zap"
)

// providerAccounts keeps an account's provider-derived state in step with a
// token: the custom credential, the stored token and the metadata snapshot.
type providerAccounts struct {
	directory core.AccountDirectory
	storage   core.ObjectStorage
	provider  string
	logger    *zap.Logger
}

// relinkCustom replaces the account's custom credential with the one derived
// from token. An account without a custom credential is not an error.
func (p *providerAccounts) relinkCustom(
	ctx context.Context,
	accountID string,
	token *models.OAuthToken,
) error {
	if err := p.directory.UnlinkCustom(ctx, accountID); err != nil &&
		!errors.Is(err, store.ErrCredentialNotLinked) {
		p.logger.Error("failed to unlink custom credential",
			zap.String("operation", "unlink_custom"),
			zap.String("account_id", accountID),
			zap.Error(err),
		)
		return rpcerr.Internal(err, "Could not unlink provider credential")
	}

	if err := p.directory.LinkCustom(ctx, accountID, token.CustomCredential()); err != nil {
		p.logger.Error("failed to link custom credential",
			zap.String("operation", "link_custom"),
			zap.String("account_id", accountID),
			zap.Error(err),
		)
		return rpcerr.Internal(err, "Could not link provider credential")
	}
	return nil
}

// loadToken returns the stored token and its storage version, or nil when the
// account has never been linked.
func (p *providerAccounts) loadToken(
	ctx context.Context,
	accountID string,
) (*models.OAuthToken, string, error) {
	obj, err := p.storage.Read(ctx, p.provider, models.KeyAccessToken, accountID)
	if err != nil {
		p.logger.Error("failed to read provider token",
			zap.String("operation", "load_token"),
			zap.String("collection", p.provider),
			zap.String("key", models.KeyAccessToken),
			zap.String("account_id", accountID),
			zap.Error(err),
		)
		return nil, "", rpcerr.Internal(err, "Could not read provider token")
	}
	if obj == nil {
		return nil, "", nil
	}

	var token models.OAuthToken
	if err := json.Unmarshal([]byte(obj.Value), &token); err != nil {
		return nil, "", rpcerr.Internal(err, "Could not decode provider token")
	}
	return &token, obj.Version, nil
}

// saveToken stores token for the account. The owner may read it; only the
// server may write it. An empty version overwrites unconditionally.
func (p *providerAccounts) saveToken(
	ctx context.Context,
	accountID string,
	token *models.OAuthToken,
	version string,
) error {
	value, err := json.Marshal(token)
	if err != nil {
		return rpcerr.Internal(err, "Could not encode provider token")
	}

	_, err = p.storage.Write(ctx, &models.StorageWrite{
		Collection:      p.provider,
		Key:             models.KeyAccessToken,
		UserID:          accountID,
		Value:           string(value),
		Version:         version,
		PermissionRead:  models.ReadOwner,
		PermissionWrite: models.WriteNoAccess,
	})
	if err != nil {
		p.logger.Error("failed to write provider token",
			zap.String("operation", "save_token"),
			zap.String("collection", p.provider),
			zap.String("key", models.KeyAccessToken),
			zap.String("account_id", accountID),
			zap.Error(err),
		)
		return rpcerr.Internal(err, "Could not store provider token")
	}
	return nil
}

// syncProfile merges the provider snapshot into the account metadata and
// refreshes the display name. Unrelated metadata keys are preserved.
func (p *providerAccounts) syncProfile(
	ctx context.Context,
	accountID string,
	identity *models.ProviderIdentity,
	token *models.OAuthToken,
) error {
	account, err := p.directory.GetAccount(ctx, accountID)
	if err != nil {
		p.logger.Error("failed to load account",
			zap.String("operation", "sync_profile"),
			zap.String("account_id", accountID),
			zap.Error(err),
		)
		return rpcerr.Internal(err, "Could not load account")
	}

	metadata := account.Metadata.Merge(map[string]any{
		p.provider: map[string]any{
			"user":  identitySnapshot(identity),
			"oauth": tokenSnapshot(token),
		},
	})

	var displayName *string
	if name := SelectDisplayName(identity, account); name != "" {
		displayName = &name
	}

	if err := p.directory.UpdateAccount(ctx, accountID, displayName, metadata); err != nil {
		p.logger.Error("failed to update account",
			zap.String("operation", "sync_profile"),
			zap.String("account_id", accountID),
			zap.Error(err),
		)
		return rpcerr.Internal(err, "Could not update account")
	}
	return nil
}

func identitySnapshot(identity *models.ProviderIdentity) map[string]any {
	snapshot := map[string]any{
		"id":       identity.ID,
		"username": identity.Username,
	}
	if identity.GlobalName != "" {
		snapshot["global_name"] = identity.GlobalName
	}
	if identity.Discriminator != "" {
		snapshot["discriminator"] = identity.Discriminator
	}
	if identity.Avatar != "" {
		snapshot["avatar"] = identity.Avatar
	}
	if identity.Locale != "" {
		snapshot["locale"] = identity.Locale
	}
	return snapshot
}

// tokenSnapshot describes the token without its secrets.
func tokenSnapshot(token *models.OAuthToken) map[string]any {
	snapshot := map[string]any{
		"token_type": token.TokenType,
		"scope":      token.Scope,
		"expires_in": token.ExpiresIn,
	}
	if !token.ExpiresAt.IsZero() {
		snapshot["expires_at"] = token.ExpiresAt.UTC().Format(time.RFC3339)
	}
	if !token.ObtainedAt.IsZero() {
		snapshot["obtained_at"] = token.ObtainedAt.UTC().Format(time.RFC3339)
	}
	return snapshot
}
