package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/hermes/internal/models"
	"github.com/redis/go-redis/v9"
)

// RedisKeyPrefix namespaces geocode entries in a shared Redis database.
const RedisKeyPrefix = "hermes:geocode:"

// RedisCache keeps entries in Redis. SET replaces a value atomically, so concurrent
// runs sharing one server can only duplicate API calls, not corrupt an entry.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration // zero means entries never expire
	log    *slog.Logger
	now    func() time.Time
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, addr, password string, db int, ttl time.Duration, log *slog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl, log: log, now: time.Now}, nil
}

// Lookup fetches the entry for address.
func (rc *RedisCache) Lookup(ctx context.Context, address string) (*models.CacheEntry, bool) {
	key := RedisKeyPrefix + Key(address)

	data, err := rc.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			rc.log.WarnContext(ctx, "Redis lookup failed, treating as miss", "key", key, "error", err)
		}
		return nil, false
	}

	entry, ok := decodeEntry(data)
	if !ok {
		rc.log.WarnContext(ctx, "Corrupted cache entry, treating as miss", "key", key)
		return nil, false
	}

	return entry, true
}

// Store writes the entry for address.
func (rc *RedisCache) Store(ctx context.Context, address string, coords models.Coordinates) error {
	data, err := encodeEntry(address, coords, rc.now())
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	if err = rc.client.Set(ctx, RedisKeyPrefix+Key(address), data, rc.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store in Redis: %w", err)
	}

	return nil
}

// Close releases the Redis connection pool.
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}
