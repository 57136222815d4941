// Package redis provides the Redis-backed response cache.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// clearBatch caps the number of keys deleted per DEL during Clear.
const clearBatch = 500

// Cache implements domain.Cache on Redis. Every key lives under a
// "<namespace>:" prefix so Clear only touches this service's entries.
type Cache struct {
	client    *redis.Client
	logger    *zap.Logger
	namespace string
}

// NewCache creates a Redis cache scoped to namespace.
func NewCache(client *redis.Client, logger *zap.Logger, namespace string) *Cache {
	return &Cache{
		client:    client,
		logger:    logger.With(zap.String("cache", namespace)),
		namespace: namespace,
	}
}

// Get returns the cached bytes, or nil on a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("cache miss", zap.String("key", key))
		return nil, nil
	}
	if err != nil {
		c.logger.Error("cache get failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	c.logger.Debug("cache hit", zap.String("key", key), zap.Int("bytes", len(data)))
	return data, nil
}

// Set stores value under key for ttl.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		c.logger.Error("cache set failed",
			zap.String("key", key),
			zap.Duration("ttl", ttl),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		c.logger.Error("cache delete failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// Clear removes every key in the namespace. It walks the keyspace with SCAN
// and deletes in batches.
func (c *Cache) Clear(ctx context.Context) error {
	pattern := c.namespace + ":*"
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()

	deleted := 0
	batch := make([]string, 0, clearBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return err
		}
		deleted += len(batch)
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == clearBatch {
			if err := flush(); err != nil {
				c.logger.Error("cache clear delete failed", zap.Error(err))
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		c.logger.Error("cache clear scan failed", zap.String("pattern", pattern), zap.Error(err))
		return err
	}
	if err := flush(); err != nil {
		c.logger.Error("cache clear delete failed", zap.Error(err))
		return err
	}

	c.logger.Info("cache cleared", zap.Int("key_count", deleted))
	return nil
}

// Ping checks connectivity for readiness probes.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) key(key string) string {
	return c.namespace + ":" + key
}
