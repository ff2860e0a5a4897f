package core

import (
	"context"

	"github.com/go-authgate/devicelink/internal/models"
)

// ObjectStorage is a key-value store with per-object permissions and
// optimistic versioning.
type ObjectStorage interface {
	// Read returns the live object, or nil when it is absent or expired.
	Read(ctx context.Context, collection, key, userID string) (*models.StorageObject, error)

	// Write applies w under the condition selected by w.Version.
	// A failed condition returns store.ErrVersionConflict.
	Write(ctx context.Context, w *models.StorageWrite) (*models.StorageAck, error)

	// Delete removes the object. Deleting an absent object is not an error.
	Delete(ctx context.Context, collection, key, userID string) error
}
