// Package locker coordinates work across service instances with distributed
// locks.
package locker

import (
	"context"
	"time"
)

// DistributedLocker grants at most one holder per key across instances.
// Implementations must be safe for concurrent use.
//
//	acquired, err := l.Acquire(ctx, "listings:sync", 5*time.Minute)
//	if err != nil || !acquired {
//	    return err
//	}
//	defer l.Release(ctx, "listings:sync")
type DistributedLocker interface {
	// Acquire tries once to take the lock. It returns false, not an error,
	// when another holder owns it. The lock expires after ttl; schedulers use
	// ttl as a cooldown as well as a safety net.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release gives up a lock taken by this instance. Releasing a lock this
	// instance does not hold is a no-op.
	Release(ctx context.Context, key string) error
}
