package store

import (
	"context"
	"errors"
	"time"

	"github.com/go-authgate/devicelink/internal/core"
	"github.com/go-authgate/devicelink/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ core.ObjectStorage = (*Store)(nil)

var objectPrimaryKey = []clause.Column{
	{Name: "collection"},
	{Name: "object_key"},
	{Name: "user_id"},
}

func objectScope(collection, key, userID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"collection = ? AND object_key = ? AND user_id = ?",
			collection, key, userID,
		)
	}
}

// Read returns the live object, or nil when it is absent or expired.
func (s *Store) Read(
	ctx context.Context,
	collection, key, userID string,
) (*models.StorageObject, error) {
	var obj models.StorageObject
	err := s.db.WithContext(ctx).
		Scopes(objectScope(collection, key, userID)).
		First(&obj).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil //nolint:nilnil // absence is a normal result
	}
	if err != nil {
		return nil, err
	}
	if obj.IsExpiredAt(s.now()) {
		return nil, nil //nolint:nilnil // expired objects are invisible
	}
	return &obj, nil
}

// Write stores w under the condition selected by w.Version.
func (s *Store) Write(ctx context.Context, w *models.StorageWrite) (*models.StorageAck, error) {
	if w.Collection == "" || w.Key == "" {
		return nil, ErrInvalidObject
	}

	now := s.now()
	obj := &models.StorageObject{
		Collection:      w.Collection,
		Key:             w.Key,
		UserID:          w.UserID,
		Value:           w.Value,
		Version:         uuid.New().String(),
		PermissionRead:  w.PermissionRead,
		PermissionWrite: w.PermissionWrite,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if !w.ExpiresAt.IsZero() {
		expiresAt := w.ExpiresAt.UTC()
		obj.ExpiresAt = &expiresAt
	}

	var err error
	switch w.Version {
	case models.VersionIfAbsent:
		err = s.createIfAbsent(ctx, obj, now)
	case "":
		err = s.upsert(ctx, obj)
	default:
		err = s.compareAndSwap(ctx, obj, w.Version, now)
	}
	if err != nil {
		return nil, err
	}

	return &models.StorageAck{
		Collection: obj.Collection,
		Key:        obj.Key,
		UserID:     obj.UserID,
		Version:    obj.Version,
	}, nil
}

func (s *Store) createIfAbsent(ctx context.Context, obj *models.StorageObject, now time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// An expired object no longer occupies its key.
		if err := tx.Scopes(objectScope(obj.Collection, obj.Key, obj.UserID)).
			Where("expires_at IS NOT NULL AND expires_at <= ?", now).
			Delete(&models.StorageObject{}).Error; err != nil {
			return err
		}

		result := tx.Clauses(clause.OnConflict{
			Columns:   objectPrimaryKey,
			DoNothing: true,
		}).Create(obj)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrVersionConflict
		}
		return nil
	})
}

func (s *Store) upsert(ctx context.Context, obj *models.StorageObject) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: objectPrimaryKey,
		DoUpdates: clause.AssignmentColumns([]string{
			"value",
			"version",
			"permission_read",
			"permission_write",
			"expires_at",
			"updated_at",
		}),
	}).Create(obj).Error
}

func (s *Store) compareAndSwap(
	ctx context.Context,
	obj *models.StorageObject,
	version string,
	now time.Time,
) error {
	result := s.db.WithContext(ctx).
		Model(&models.StorageObject{}).
		Scopes(objectScope(obj.Collection, obj.Key, obj.UserID)).
		Where("version = ?", version).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Updates(map[string]any{
			"value":            obj.Value,
			"version":          obj.Version,
			"permission_read":  obj.PermissionRead,
			"permission_write": obj.PermissionWrite,
			"expires_at":       obj.ExpiresAt,
			"updated_at":       now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

// Delete removes the object. Deleting an absent object is not an error.
func (s *Store) Delete(ctx context.Context, collection, key, userID string) error {
	return s.db.WithContext(ctx).
		Scopes(objectScope(collection, key, userID)).
		Delete(&models.StorageObject{}).Error
}

// DeleteExpiredObjects purges objects whose expiry has passed and reports how
// many were removed.
func (s *Store) DeleteExpiredObjects(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", s.now()).
		Delete(&models.StorageObject{})
	return result.RowsAffected, result.Error
}
