package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-authgate/devicelink/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestStoreWithSQLite tests store operations with SQLite
func TestStoreWithSQLite(t *testing.T) {
	testBasicOperations(t, "sqlite", nil)
}

// TestStoreWithPostgres tests store operations with PostgreSQL
func TestStoreWithPostgres(t *testing.T) {
	// Skip if running short tests or Docker is not available
	if testing.Short() {
		t.Skip("Skipping PostgreSQL integration test in short mode")
	}

	// Recover from panic if Docker is not available
	defer func() {
		if r := recover(); r != nil {
			t.Skipf("Skipping PostgreSQL test: Docker not available (panic: %v)", r)
		}
	}()

	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Skipf("Skipping PostgreSQL test: Docker not available (%v)", err)
		return
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	testBasicOperations(t, "postgres", pgContainer)
}

// createFreshStore creates a new store instance for test isolation
// For SQLite, each call creates a fresh :memory: database
// For PostgreSQL, each call creates a uniquely-named database in the container
func createFreshStore(t *testing.T, driver string, pgContainer *postgres.PostgresContainer) *Store {
	t.Helper()

	var dsn string
	switch driver {
	case "sqlite":
		dsn = ":memory:"
	case "postgres":
		dbName := "test_" + uuid.New().String()[:8]
		ctx := context.Background()

		createDBCmd := fmt.Sprintf("CREATE DATABASE %s", dbName)
		_, _, err := pgContainer.Exec(
			ctx,
			[]string{"psql", "-U", "testuser", "-d", "testdb", "-c", createDBCmd},
		)
		require.NoError(t, err)

		host, err := pgContainer.Host(ctx)
		require.NoError(t, err)
		port, err := pgContainer.MappedPort(ctx, "5432")
		require.NoError(t, err)
		dsn = fmt.Sprintf(
			"host=%s port=%s user=testuser password=testpass dbname=%s sslmode=disable",
			host, port.Port(), dbName,
		)

		t.Cleanup(func() {
			dropDBCmd := fmt.Sprintf("DROP DATABASE IF EXISTS %s WITH (FORCE)", dbName)
			_, _, _ = pgContainer.Exec(
				context.Background(),
				[]string{"psql", "-U", "testuser", "-d", "testdb", "-c", dropDBCmd},
			)
		})
	default:
		t.Fatalf("unsupported driver: %s", driver)
	}

	store, err := New(driver, dsn)
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

// testBasicOperations runs the object storage and account directory suites.
// Each subtest creates a fresh store instance for isolation
func testBasicOperations(t *testing.T, driver string, pgContainer *postgres.PostgresContainer) {
	t.Run("ObjectStorage", func(t *testing.T) {
		testObjectStorage(t, func(t *testing.T) objectStorageUnderTest {
			return createFreshStore(t, driver, pgContainer)
		})
	})

	t.Run("DeleteExpiredObjects", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)
		ctx := context.Background()

		for i, expiresAt := range []time.Time{
			time.Now().Add(-time.Minute),
			time.Now().Add(-time.Second),
			time.Now().Add(time.Hour),
			{},
		} {
			_, err := store.Write(ctx, &models.StorageWrite{
				Collection: "tickets",
				Key:        fmt.Sprintf("k%d", i),
				UserID:     models.SystemUserID,
				Value:      "{}",
				ExpiresAt:  expiresAt,
			})
			require.NoError(t, err)
		}

		removed, err := store.DeleteExpiredObjects(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), removed)

		var remaining int64
		require.NoError(t, store.DB().Model(&models.StorageObject{}).Count(&remaining).Error)
		assert.Equal(t, int64(2), remaining)
	})

	t.Run("AuthenticateDevice", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)
		ctx := context.Background()

		_, err := store.AuthenticateDevice(ctx, "device-1", "", false)
		assert.ErrorIs(t, err, ErrAccountNotFound)

		_, err = store.AuthenticateDevice(ctx, "", "alice", true)
		assert.ErrorIs(t, err, ErrInvalidCredential)

		created, err := store.AuthenticateDevice(ctx, "device-1", "alice", true)
		require.NoError(t, err)
		assert.Equal(t, "alice", created.Username)
		assert.Equal(t, []string{"device-1"}, created.DeviceIDs())

		again, err := store.AuthenticateDevice(ctx, "device-1", "ignored", true)
		require.NoError(t, err)
		assert.Equal(t, created.ID, again.ID)
		assert.Equal(t, "alice", again.Username)

		probe, err := store.AuthenticateDevice(ctx, "device-1", "", false)
		require.NoError(t, err)
		assert.Equal(t, created.ID, probe.ID)

		_, err = store.AuthenticateDevice(ctx, "device-2", "alice", true)
		assert.ErrorIs(t, err, ErrUsernameConflict)

		generated, err := store.AuthenticateDevice(ctx, "device-3", "", true)
		require.NoError(t, err)
		assert.Len(t, generated.Username, 16)
	})

	t.Run("FindByUsername", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)
		ctx := context.Background()

		missing, err := store.FindByUsername(ctx, "9001")
		require.NoError(t, err)
		assert.Nil(t, missing)

		created, err := store.AuthenticateDevice(ctx, "device-1", "9001", true)
		require.NoError(t, err)

		found, err := store.FindByUsername(ctx, "9001")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("LinkDeviceTransfersCredential", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)
		ctx := context.Background()

		first, err := store.AuthenticateDevice(ctx, "device-1", "first", true)
		require.NoError(t, err)
		second, err := store.AuthenticateDevice(ctx, "device-2", "second", true)
		require.NoError(t, err)

		require.NoError(t, store.LinkDevice(ctx, second.ID, "device-1"))

		owner, err := store.AuthenticateDevice(ctx, "device-1", "", false)
		require.NoError(t, err)
		assert.Equal(t, second.ID, owner.ID)

		reloaded, err := store.GetAccount(ctx, first.ID)
		require.NoError(t, err)
		assert.Empty(t, reloaded.DeviceIDs())

		reloaded, err = store.GetAccount(ctx, second.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"device-1", "device-2"}, reloaded.DeviceIDs())

		// Linking to the current owner is a no-op.
		require.NoError(t, store.LinkDevice(ctx, second.ID, "device-1"))

		assert.ErrorIs(t, store.LinkDevice(ctx, uuid.New().String(), "device-9"), ErrAccountNotFound)
	})

	t.Run("CustomCredentialLifecycle", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)
		ctx := context.Background()

		first, err := store.AuthenticateDevice(ctx, "device-1", "first", true)
		require.NoError(t, err)
		second, err := store.AuthenticateDevice(ctx, "device-2", "second", true)
		require.NoError(t, err)

		assert.ErrorIs(t, store.UnlinkCustom(ctx, first.ID), ErrCredentialNotLinked)

		require.NoError(t, store.LinkCustom(ctx, first.ID, "tok1"))
		require.NoError(t, store.LinkCustom(ctx, first.ID, "tok2"))

		reloaded, err := store.GetAccount(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "tok2", reloaded.CustomID())

		// A credential held elsewhere moves to the new account.
		require.NoError(t, store.LinkCustom(ctx, second.ID, "tok2"))
		reloaded, err = store.GetAccount(ctx, first.ID)
		require.NoError(t, err)
		assert.Empty(t, reloaded.CustomID())
		reloaded, err = store.GetAccount(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, "tok2", reloaded.CustomID())

		require.NoError(t, store.UnlinkCustom(ctx, second.ID))
		assert.ErrorIs(t, store.UnlinkCustom(ctx, second.ID), ErrCredentialNotLinked)
		assert.ErrorIs(t, store.UnlinkCustom(ctx, uuid.New().String()), ErrAccountNotFound)
	})

	t.Run("UpdateAccount", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)
		ctx := context.Background()

		account, err := store.AuthenticateDevice(ctx, "device-1", "9001", true)
		require.NoError(t, err)

		name := "bob"
		require.NoError(t, store.UpdateAccount(ctx, account.ID, &name, map[string]any{
			"discord": map[string]any{"user": map[string]any{"id": "9001"}},
		}))

		reloaded, err := store.GetAccount(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, "bob", reloaded.DisplayName)
		assert.Equal(t, "9001", reloaded.Metadata["discord"].(map[string]any)["user"].(map[string]any)["id"])

		// nil fields are left alone
		require.NoError(t, store.UpdateAccount(ctx, account.ID, nil, nil))
		reloaded, err = store.GetAccount(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, "bob", reloaded.DisplayName)
		assert.Contains(t, reloaded.Metadata, "discord")

		assert.ErrorIs(t, store.UpdateAccount(ctx, uuid.New().String(), &name, nil), ErrAccountNotFound)

		_, err = store.GetAccount(ctx, uuid.New().String())
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})
}
