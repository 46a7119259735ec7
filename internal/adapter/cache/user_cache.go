package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "user-crud-service/internal/domain/user"
)

// UserCache defines the interface for user caching operations.
type UserCache interface {
	// Get retrieves a user from cache by hex id.
	// Returns nil, nil on a cache miss.
	Get(ctx context.Context, id string) (*domain.User, error)

	// Set stores a user in cache with the configured TTL.
	Set(ctx context.Context, user *domain.User) error

	// Delete removes a user from cache by hex id and bumps its version, so a
	// read that started earlier can no longer store its result.
	Delete(ctx context.Context, id string) error

	// Version returns the current cache version of an id. Zero when unset.
	Version(ctx context.Context, id string) (int64, error)

	// SetIfVersion stores user only if its id is still at version.
	// Reports whether the entry was written.
	SetIfVersion(ctx context.Context, user *domain.User, version int64) (bool, error)
}

// setIfVersion writes KEYS[1] only while KEYS[2] still holds ARGV[1].
var setIfVersion = redis.NewScript(`
local current = redis.call("GET", KEYS[2])
if not current then
	current = "0"
end
if current ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// invalidate drops KEYS[1] and bumps the version held in KEYS[2].
var invalidate = redis.NewScript(`
redis.call("DEL", KEYS[1])
local version = redis.call("INCR", KEYS[2])
redis.call("PEXPIRE", KEYS[2], ARGV[1])
return version
`)

// RedisUserCache implements UserCache using Redis as the backing store.
type RedisUserCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisUserCache creates a new Redis-backed user cache.
func NewRedisUserCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisUserCache {
	return &RedisUserCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// Key returns the Redis key for a user id.
func Key(id string) string {
	return fmt.Sprintf("user:%s", id)
}

// VersionKey returns the Redis key holding the version of a user id.
func VersionKey(id string) string {
	return Key(id) + ":v"
}

// Get retrieves a user from Redis cache.
func (c *RedisUserCache) Get(ctx context.Context, id string) (*domain.User, error) {
	data, err := c.client.Get(ctx, Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.log.Debug("cache miss", zap.String("user_id", id))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get from cache", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		c.log.Error("failed to unmarshal cached user", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}

	c.log.Debug("cache hit", zap.String("user_id", id))
	return &user, nil
}

// Set stores a user in Redis cache with TTL.
func (c *RedisUserCache) Set(ctx context.Context, user *domain.User) error {
	if user == nil {
		return fmt.Errorf("cannot cache nil user")
	}

	id := user.ID.Hex()
	data, err := json.Marshal(user)
	if err != nil {
		c.log.Error("failed to marshal user for cache", zap.String("user_id", id), zap.Error(err))
		return err
	}

	if err := c.client.Set(ctx, Key(id), data, c.ttl).Err(); err != nil {
		c.log.Error("failed to set cache", zap.String("user_id", id), zap.Error(err))
		return err
	}

	c.log.Debug("cached user", zap.String("user_id", id), zap.Duration("ttl", c.ttl))
	return nil
}

// SetIfVersion stores a user unless the id was invalidated after version was read.
func (c *RedisUserCache) SetIfVersion(ctx context.Context, user *domain.User, version int64) (bool, error) {
	if user == nil {
		return false, fmt.Errorf("cannot cache nil user")
	}

	id := user.ID.Hex()
	data, err := json.Marshal(user)
	if err != nil {
		c.log.Error("failed to marshal user for cache", zap.String("user_id", id), zap.Error(err))
		return false, err
	}

	stored, err := setIfVersion.Run(ctx, c.client,
		[]string{Key(id), VersionKey(id)},
		strconv.FormatInt(version, 10), data, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		c.log.Error("failed to set cache", zap.String("user_id", id), zap.Error(err))
		return false, err
	}
	if stored == 0 {
		c.log.Debug("skipped caching invalidated user", zap.String("user_id", id), zap.Int64("version", version))
		return false, nil
	}

	c.log.Debug("cached user", zap.String("user_id", id), zap.Duration("ttl", c.ttl))
	return true, nil
}

// Version returns the current version of a user id.
func (c *RedisUserCache) Version(ctx context.Context, id string) (int64, error) {
	v, err := c.client.Get(ctx, VersionKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		c.log.Error("failed to read cache version", zap.String("user_id", id), zap.Error(err))
		return 0, err
	}
	return v, nil
}

// Delete removes a user from Redis cache and bumps its version.
func (c *RedisUserCache) Delete(ctx context.Context, id string) error {
	if err := invalidate.Run(ctx, c.client, []string{Key(id), VersionKey(id)}, c.ttl.Milliseconds()).Err(); err != nil {
		c.log.Error("failed to delete from cache", zap.String("user_id", id), zap.Error(err))
		return err
	}

	c.log.Debug("deleted from cache", zap.String("user_id", id))
	return nil
}
