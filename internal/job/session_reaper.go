package job

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Reapable is a session registry that can drop idle sessions.
type Reapable interface {
	Name() string
	Reap(now time.Time) int
}

// SessionReaper periodically disposes idle search sessions.
type SessionReaper struct {
	registries []Reapable
	interval   time.Duration
	logger     *zap.Logger
	now        func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSessionReaper creates a reaper sweeping registries every interval.
func NewSessionReaper(interval time.Duration, logger *zap.Logger, registries ...Reapable) *SessionReaper {
	return &SessionReaper{
		registries: registries,
		interval:   interval,
		logger:     logger,
		now:        time.Now,
	}
}

// Start begins sweeping in the background.
func (r *SessionReaper) Start() {
	var ctx context.Context
	ctx, r.cancel = context.WithCancel(context.Background())

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Sweep()
			}
		}
	}()
}

// Stop halts the reaper and waits for an in-progress sweep.
func (r *SessionReaper) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	r.wg.Wait()
}

// Sweep reaps every registry once and returns the number of sessions removed.
func (r *SessionReaper) Sweep() int {
	now := r.now()
	total := 0
	for _, reg := range r.registries {
		n := reg.Reap(now)
		if n > 0 {
			r.logger.Info("idle sessions reaped",
				zap.String("registry", reg.Name()),
				zap.Int("count", n),
			)
		}
		total += n
	}
	return total
}
