package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-authgate/devicelink/internal/core"
	"github.com/go-authgate/devicelink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type objectStorageUnderTest = core.ObjectStorage

// testObjectStorage exercises the conditional write contract shared by every
// ObjectStorage backend.
func testObjectStorage(t *testing.T, newStorage func(t *testing.T) objectStorageUnderTest) {
	ticket := func(value string) *models.StorageWrite {
		return &models.StorageWrite{
			Collection:      models.CollectionLinkTicket,
			Key:             "ABCD",
			UserID:          models.SystemUserID,
			Value:           value,
			Version:         models.VersionIfAbsent,
			PermissionRead:  models.ReadNoAccess,
			PermissionWrite: models.WriteNoAccess,
		}
	}

	t.Run("ReadAbsent", func(t *testing.T) {
		s := newStorage(t)
		obj, err := s.Read(context.Background(), "missing", "key", models.SystemUserID)
		require.NoError(t, err)
		assert.Nil(t, obj)
	})

	t.Run("CreateIfAbsent", func(t *testing.T) {
		s := newStorage(t)
		ctx := context.Background()

		ack, err := s.Write(ctx, ticket(`{"n":1}`))
		require.NoError(t, err)
		assert.NotEmpty(t, ack.Version)
		assert.Equal(t, "ABCD", ack.Key)

		_, err = s.Write(ctx, ticket(`{"n":2}`))
		assert.ErrorIs(t, err, ErrVersionConflict)

		obj, err := s.Read(ctx, models.CollectionLinkTicket, "ABCD", models.SystemUserID)
		require.NoError(t, err)
		require.NotNil(t, obj)
		assert.Equal(t, `{"n":1}`, obj.Value)
		assert.Equal(t, ack.Version, obj.Version)
		assert.Equal(t, models.ReadNoAccess, obj.PermissionRead)
		assert.Equal(t, models.WriteNoAccess, obj.PermissionWrite)
	})

	t.Run("OwnerScopesIdentity", func(t *testing.T) {
		s := newStorage(t)
		ctx := context.Background()

		_, err := s.Write(ctx, ticket("system"))
		require.NoError(t, err)

		other := ticket("player")
		other.UserID = "11111111-1111-1111-1111-111111111111"
		_, err = s.Write(ctx, other)
		require.NoError(t, err)

		obj, err := s.Read(ctx, models.CollectionLinkTicket, "ABCD", other.UserID)
		require.NoError(t, err)
		require.NotNil(t, obj)
		assert.Equal(t, "player", obj.Value)
	})

	t.Run("CompareAndSwap", func(t *testing.T) {
		s := newStorage(t)
		ctx := context.Background()

		first, err := s.Write(ctx, &models.StorageWrite{
			Collection:     models.CollectionProvider,
			Key:            models.KeyAccessToken,
			UserID:         "account-1",
			Value:          "v1",
			PermissionRead: models.ReadOwner,
		})
		require.NoError(t, err)

		second, err := s.Write(ctx, &models.StorageWrite{
			Collection:     models.CollectionProvider,
			Key:            models.KeyAccessToken,
			UserID:         "account-1",
			Value:          "v2",
			Version:        first.Version,
			PermissionRead: models.ReadOwner,
		})
		require.NoError(t, err)
		assert.NotEqual(t, first.Version, second.Version)

		// Stale version is rejected and the stored value is kept.
		_, err = s.Write(ctx, &models.StorageWrite{
			Collection: models.CollectionProvider,
			Key:        models.KeyAccessToken,
			UserID:     "account-1",
			Value:      "v3",
			Version:    first.Version,
		})
		assert.ErrorIs(t, err, ErrVersionConflict)

		obj, err := s.Read(ctx, models.CollectionProvider, models.KeyAccessToken, "account-1")
		require.NoError(t, err)
		require.NotNil(t, obj)
		assert.Equal(t, "v2", obj.Value)
		assert.Equal(t, models.ReadOwner, obj.PermissionRead)

		// A version never matches an absent object.
		_, err = s.Write(ctx, &models.StorageWrite{
			Collection: models.CollectionProvider,
			Key:        "other",
			UserID:     "account-1",
			Value:      "v1",
			Version:    second.Version,
		})
		assert.ErrorIs(t, err, ErrVersionConflict)
	})

	t.Run("UpsertOverwrites", func(t *testing.T) {
		s := newStorage(t)
		ctx := context.Background()

		for _, value := range []string{"a", "b"} {
			_, err := s.Write(ctx, &models.StorageWrite{
				Collection: "profiles",
				Key:        "settings",
				UserID:     "account-1",
				Value:      value,
			})
			require.NoError(t, err)
		}

		obj, err := s.Read(ctx, "profiles", "settings", "account-1")
		require.NoError(t, err)
		require.NotNil(t, obj)
		assert.Equal(t, "b", obj.Value)
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		s := newStorage(t)
		ctx := context.Background()

		_, err := s.Write(ctx, ticket("x"))
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, models.CollectionLinkTicket, "ABCD", models.SystemUserID))
		require.NoError(t, s.Delete(ctx, models.CollectionLinkTicket, "ABCD", models.SystemUserID))

		obj, err := s.Read(ctx, models.CollectionLinkTicket, "ABCD", models.SystemUserID)
		require.NoError(t, err)
		assert.Nil(t, obj)

		// The key is free again.
		_, err = s.Write(ctx, ticket("y"))
		require.NoError(t, err)
	})

	t.Run("ExpiredObjectIsReplaceable", func(t *testing.T) {
		s := newStorage(t)
		ctx := context.Background()

		w := ticket("old")
		w.ExpiresAt = time.Now().Add(200 * time.Millisecond)
		_, err := s.Write(ctx, w)
		require.NoError(t, err)

		time.Sleep(400 * time.Millisecond)

		obj, err := s.Read(ctx, models.CollectionLinkTicket, "ABCD", models.SystemUserID)
		require.NoError(t, err)
		assert.Nil(t, obj)

		_, err = s.Write(ctx, ticket("new"))
		require.NoError(t, err)

		obj, err = s.Read(ctx, models.CollectionLinkTicket, "ABCD", models.SystemUserID)
		require.NoError(t, err)
		require.NotNil(t, obj)
		assert.Equal(t, "new", obj.Value)
		assert.Nil(t, obj.ExpiresAt)
	})

	t.Run("InvalidObject", func(t *testing.T) {
		s := newStorage(t)
		_, err := s.Write(context.Background(), &models.StorageWrite{Key: "k"})
		assert.ErrorIs(t, err, ErrInvalidObject)
	})

	t.Run("ConcurrentCreateIfAbsent", func(t *testing.T) {
		s := newStorage(t)
		ctx := context.Background()

		const workers = 16
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			created   int
			conflicts int
			failures  []error
		)
		for n := 0; n < workers; n++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Write(ctx, ticket("x"))
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					created++
				case errors.Is(err, ErrVersionConflict):
					conflicts++
				default:
					failures = append(failures, err)
				}
			}()
		}
		wg.Wait()

		assert.Empty(t, failures)
		assert.Equal(t, 1, created)
		assert.Equal(t, workers-1, conflicts)
	})
}
