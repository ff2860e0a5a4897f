package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-authgate/devicelink/internal/core"
	"github.com/go-authgate/devicelink/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var _ core.AccountDirectory = (*Store)(nil)

func preloadCredentials(db *gorm.DB) *gorm.DB {
	return db.Preload("DeviceCredentials").Preload("CustomCredential")
}

// FindByUsername returns nil when no account has the username.
func (s *Store) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).
		Scopes(preloadCredentials).
		Where("username = ?", username).
		First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil //nolint:nilnil // absence is a normal result
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetAccount returns ErrAccountNotFound for an unknown id.
func (s *Store) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	return getAccount(s.db.WithContext(ctx), accountID)
}

func getAccount(db *gorm.DB, accountID string) (*models.Account, error) {
	var account models.Account
	err := db.Scopes(preloadCredentials).Where("id = ?", accountID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func accountExists(tx *gorm.DB, accountID string) error {
	var count int64
	if err := tx.Model(&models.Account{}).Where("id = ?", accountID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// AuthenticateDevice returns the account bound to cred. When the credential
// is unbound and create is set, a new account named username is created in
// the same transaction. An empty username is replaced by a generated one.
func (s *Store) AuthenticateDevice(
	ctx context.Context,
	cred, username string,
	create bool,
) (*models.Account, error) {
	if cred == "" {
		return nil, ErrInvalidCredential
	}

	var account *models.Account
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bound models.DeviceCredential
		err := tx.Where("credential = ?", cred).First(&bound).Error
		if err == nil {
			account, err = getAccount(tx, bound.AccountID)
			return err
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to query device credential: %w", err)
		}
		if !create {
			return ErrAccountNotFound
		}

		if username == "" {
			username = generateUsername()
		}
		var taken int64
		if err := tx.Model(&models.Account{}).
			Where("username = ?", username).
			Count(&taken).Error; err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		if taken > 0 {
			return ErrUsernameConflict
		}

		created := &models.Account{
			ID:       uuid.New().String(),
			Username: username,
			Metadata: models.JSONMap{},
		}
		if err := tx.Create(created).Error; err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}
		if err := tx.Create(&models.DeviceCredential{
			Credential: cred,
			AccountID:  created.ID,
		}).Error; err != nil {
			return fmt.Errorf("failed to bind device credential: %w", err)
		}

		account, err = getAccount(tx, created.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// LinkDevice binds cred to the account, moving it off any account that held it.
func (s *Store) LinkDevice(ctx context.Context, accountID, cred string) error {
	if cred == "" {
		return ErrInvalidCredential
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := accountExists(tx, accountID); err != nil {
			return err
		}
		if err := tx.Where("credential = ?", cred).
			Delete(&models.DeviceCredential{}).Error; err != nil {
			return err
		}
		return tx.Create(&models.DeviceCredential{
			Credential: cred,
			AccountID:  accountID,
		}).Error
	})
}

// LinkCustom sets the account's custom credential. The credential is moved off
// any other account and replaces the account's previous one.
func (s *Store) LinkCustom(ctx context.Context, accountID, cred string) error {
	if cred == "" {
		return ErrInvalidCredential
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := accountExists(tx, accountID); err != nil {
			return err
		}
		if err := tx.Where("credential = ? OR account_id = ?", cred, accountID).
			Delete(&models.CustomCredential{}).Error; err != nil {
			return err
		}
		return tx.Create(&models.CustomCredential{
			Credential: cred,
			AccountID:  accountID,
		}).Error
	})
}

// UnlinkCustom removes the account's custom credential.
func (s *Store) UnlinkCustom(ctx context.Context, accountID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := accountExists(tx, accountID); err != nil {
			return err
		}
		result := tx.Where("account_id = ?", accountID).Delete(&models.CustomCredential{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrCredentialNotLinked
		}
		return nil
	})
}

// UpdateAccount writes the non-nil fields.
func (s *Store) UpdateAccount(
	ctx context.Context,
	accountID string,
	displayName *string,
	metadata map[string]any,
) error {
	updates := map[string]any{}
	if displayName != nil {
		updates["display_name"] = *displayName
	}
	if metadata != nil {
		updates["metadata"] = models.JSONMap(metadata)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := accountExists(tx, accountID); err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&models.Account{}).Where("id = ?", accountID).Updates(updates).Error
	})
}

func generateUsername() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
}
