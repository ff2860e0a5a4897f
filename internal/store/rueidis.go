package store

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-authgate/devicelink/internal/core"
	"github.com/go-authgate/devicelink/internal/models"

	"github.com/google/uuid"
	"github.com/redis/rueidis"
)

// Compile-time interface check.
var _ core.ObjectStorage = (*RueidisObjectStore)(nil)

// writeScript applies a conditional write to the object hash.
// ARGV: mode, expected version, value, new version, read, write, updated, expires, ttl ms.
var writeScript = rueidis.NewLuaScript(`
local mode = ARGV[1]
if mode == 'absent' then
  if redis.call('EXISTS', KEYS[1]) == 1 then return 0 end
elseif mode == 'cas' then
  if redis.call('HGET', KEYS[1], 'version') ~= ARGV[2] then return 0 end
end
redis.call('DEL', KEYS[1])
redis.call('HSET', KEYS[1], 'value', ARGV[3], 'version', ARGV[4], 'read', ARGV[5],
  'write', ARGV[6], 'updated', ARGV[7], 'expires', ARGV[8])
local ttl = tonumber(ARGV[9])
if ttl > 0 then redis.call('PEXPIRE', KEYS[1], ttl) end
return 1
`)

// RueidisObjectStore implements ObjectStorage on Redis via rueidis.
// Each object is a hash; expiry uses the key TTL.
// Suitable for multi-instance deployments that share a Redis.
type RueidisObjectStore struct {
	client    rueidis.Client
	keyPrefix string
	now       func() time.Time
}

// NewRueidisObjectStore connects to Redis and verifies the connection.
func NewRueidisObjectStore(
	ctx context.Context,
	addr, password string,
	db int,
	keyPrefix string,
) (*RueidisObjectStore, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{addr},
		Password:     password,
		SelectDB:     db,
		DisableCache: true, // Basic mode without client-side caching
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}

	// Test connection with provided context
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return NewRueidisObjectStoreWithClient(client, keyPrefix), nil
}

// NewRueidisObjectStoreWithClient wraps an existing client.
func NewRueidisObjectStoreWithClient(client rueidis.Client, keyPrefix string) *RueidisObjectStore {
	return &RueidisObjectStore{
		client:    client,
		keyPrefix: keyPrefix,
		now:       time.Now,
	}
}

func (r *RueidisObjectStore) objectKey(collection, key, userID string) string {
	return r.keyPrefix + url.PathEscape(collection) + "/" + url.PathEscape(userID) + "/" + url.PathEscape(key)
}

// Read returns the live object, or nil when it is absent or expired.
func (r *RueidisObjectStore) Read(
	ctx context.Context,
	collection, key, userID string,
) (*models.StorageObject, error) {
	cmd := r.client.B().Hgetall().Key(r.objectKey(collection, key, userID)).Build()
	fields, err := r.client.Do(ctx, cmd).AsStrMap()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil //nolint:nilnil // absence is a normal result
		}
		return nil, fmt.Errorf("failed to read object: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil //nolint:nilnil // absence is a normal result
	}

	obj := &models.StorageObject{
		Collection: collection,
		Key:        key,
		UserID:     userID,
		Value:      fields["value"],
		Version:    fields["version"],
	}
	obj.PermissionRead, _ = strconv.Atoi(fields["read"])
	obj.PermissionWrite, _ = strconv.Atoi(fields["write"])
	if ms, err := strconv.ParseInt(fields["updated"], 10, 64); err == nil {
		obj.UpdatedAt = time.UnixMilli(ms).UTC()
	}
	if ms, err := strconv.ParseInt(fields["expires"], 10, 64); err == nil && ms > 0 {
		expiresAt := time.UnixMilli(ms).UTC()
		obj.ExpiresAt = &expiresAt
	}
	if obj.IsExpiredAt(r.now()) {
		return nil, nil //nolint:nilnil // expired objects are invisible
	}
	return obj, nil
}

// Write stores w under the condition selected by w.Version.
func (r *RueidisObjectStore) Write(
	ctx context.Context,
	w *models.StorageWrite,
) (*models.StorageAck, error) {
	if w.Collection == "" || w.Key == "" {
		return nil, ErrInvalidObject
	}

	mode := "cas"
	switch w.Version {
	case models.VersionIfAbsent:
		mode = "absent"
	case "":
		mode = "any"
	}

	now := r.now()
	var expires, ttl int64
	if !w.ExpiresAt.IsZero() {
		expires = w.ExpiresAt.UnixMilli()
		ttl = max(w.ExpiresAt.Sub(now).Milliseconds(), 1)
	}

	version := uuid.New().String()
	applied, err := writeScript.Exec(ctx, r.client,
		[]string{r.objectKey(w.Collection, w.Key, w.UserID)},
		[]string{
			mode,
			w.Version,
			w.Value,
			version,
			strconv.Itoa(w.PermissionRead),
			strconv.Itoa(w.PermissionWrite),
			strconv.FormatInt(now.UnixMilli(), 10),
			strconv.FormatInt(expires, 10),
			strconv.FormatInt(ttl, 10),
		},
	).AsInt64()
	if err != nil {
		return nil, fmt.Errorf("failed to write object: %w", err)
	}
	if applied == 0 {
		return nil, ErrVersionConflict
	}

	return &models.StorageAck{
		Collection: w.Collection,
		Key:        w.Key,
		UserID:     w.UserID,
		Version:    version,
	}, nil
}

// Delete removes the object. Deleting an absent object is not an error.
func (r *RueidisObjectStore) Delete(ctx context.Context, collection, key, userID string) error {
	cmd := r.client.B().Del().Key(r.objectKey(collection, key, userID)).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// Health checks the Redis connection.
func (r *RueidisObjectStore) Health(ctx context.Context) error {
	return r.client.Do(ctx, r.client.B().Ping().Build()).Error()
}

// Close closes the Redis connection.
func (r *RueidisObjectStore) Close() error {
	r.client.Close()
	return nil
}
