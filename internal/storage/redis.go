package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ytnotes:transcript:"

// RedisCache is the Redis-backed transcript cache, for deployments that
// share a cache across instances. Entries are stored as JSON under
// ytnotes:transcript:<videoID>.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis at addr. ttl of zero means entries never
// expire; retention then falls to Redis eviction policy.
func NewRedisCache(addr, password string, db int, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl: ttl,
	}
}

// Ping verifies the Redis connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Get returns the cached transcript for a video, or ErrNotFound.
func (c *RedisCache) Get(ctx context.Context, videoID string) (*CacheEntry, error) {
	data, err := c.client.Get(ctx, redisKeyPrefix+videoID).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var e CacheEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("parsing cached entry for %s: %w", videoID, err)
	}
	return &e, nil
}

// Put upserts a transcript keyed by video id.
func (c *RedisCache) Put(ctx context.Context, entry CacheEntry) error {
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshalling entry: %w", err)
	}
	if err := c.client.Set(ctx, redisKeyPrefix+entry.VideoID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
