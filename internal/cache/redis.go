package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// viewKeyPrefix namespaces all cached view projections in Redis.
const viewKeyPrefix = "view:"

// RedisInvalidator drops cached view projections from Redis. Views are stored
// under "view:<key>" (optionally with further suffixes for parameterized
// ranges), so invalidation deletes by prefix scan.
type RedisInvalidator struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisInvalidator creates a RedisInvalidator and verifies connectivity.
func NewRedisInvalidator(client *redis.Client, logger *zap.Logger) (*RedisInvalidator, error) {
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &RedisInvalidator{client: client, logger: logger}, nil
}

// Invalidate deletes every cached projection under each key prefix.
func (r *RedisInvalidator) Invalidate(ctx context.Context, keys ...Key) error {
	for _, key := range keys {
		pattern := viewKeyPrefix + key.String() + "*"

		var cursor uint64
		for {
			batch, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
			if err != nil {
				return fmt.Errorf("failed to scan view keys for %s: %w", key, err)
			}
			if len(batch) > 0 {
				if err := r.client.Del(ctx, batch...).Err(); err != nil {
					return fmt.Errorf("failed to delete view keys for %s: %w", key, err)
				}
				r.logger.Debug("invalidated cached views",
					zap.String("key", key.String()),
					zap.Int("dropped", len(batch)),
				)
			}
			cursor = next
			if cursor == 0 {
				break
			}
		}
	}
	return nil
}
