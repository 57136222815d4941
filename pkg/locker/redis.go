package locker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisLocker implements DistributedLocker with redsync (Redlock).
type RedisLocker struct {
	rs     *redsync.Redsync
	logger *zap.Logger

	mu   sync.Mutex
	held map[string]*redsync.Mutex
}

// NewRedisLocker creates a locker backed by a single Redis client.
func NewRedisLocker(client *redis.Client, logger *zap.Logger) *RedisLocker {
	return &RedisLocker{
		rs:     redsync.New(goredis.NewPool(client)),
		logger: logger,
		held:   make(map[string]*redsync.Mutex),
	}
}

// isContention reports whether err means the lock is owned elsewhere rather
// than that Redis failed.
func isContention(err error) bool {
	if errors.Is(err, redsync.ErrFailed) {
		return true
	}
	var taken *redsync.ErrTaken
	if errors.As(err, &taken) {
		return true
	}
	return strings.Contains(err.Error(), "lock already taken")
}

// Acquire makes a single, non-blocking attempt at key.
func (r *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	mutex := r.rs.NewMutex(key,
		redsync.WithExpiry(ttl),
		redsync.WithTries(1),
	)

	if err := mutex.LockContext(ctx); err != nil {
		if ctx.Err() == nil && isContention(err) {
			r.logger.Debug("lock held elsewhere", zap.String("key", key))
			return false, nil
		}
		return false, fmt.Errorf("acquire lock %s: %w", key, err)
	}

	r.mu.Lock()
	r.held[key] = mutex
	r.mu.Unlock()

	r.logger.Debug("lock acquired", zap.String("key", key), zap.Duration("ttl", ttl))
	return true, nil
}

// Release unlocks key if this instance acquired it. Redsync verifies the
// token, so a lock that expired and was re-taken elsewhere is left alone.
func (r *RedisLocker) Release(ctx context.Context, key string) error {
	r.mu.Lock()
	mutex, ok := r.held[key]
	delete(r.held, key)
	r.mu.Unlock()

	if !ok {
		return nil
	}

	released, err := mutex.UnlockContext(ctx)
	if errors.Is(err, redsync.ErrLockAlreadyExpired) {
		r.logger.Debug("lock already expired", zap.String("key", key))
		return nil
	}
	if err != nil {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	if !released {
		r.logger.Debug("lock already expired", zap.String("key", key))
	}
	return nil
}
