// Package job provides background job schedulers.
package job

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"property-match-service/internal/app/service"
	"property-match-service/pkg/locker"
)

// SyncLockKey guards listing sync across instances.
const SyncLockKey = "listings:sync:lock"

// ListingSyncer mirrors every listing feed once.
type ListingSyncer interface {
	SyncAll(ctx context.Context) []service.SyncResult
}

// SyncScheduler runs periodic listing synchronization with distributed locking
// to ensure only one instance executes sync jobs at a time.
type SyncScheduler struct {
	syncer   ListingSyncer
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
	locker   locker.DistributedLocker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// SyncConfig holds sync scheduler configuration.
type SyncConfig struct {
	Interval  time.Duration
	Timeout   time.Duration
	OnStartup bool
}

// NewSyncScheduler creates a new SyncScheduler with distributed locking support.
func NewSyncScheduler(
	syncer ListingSyncer,
	cfg SyncConfig,
	logger *zap.Logger,
	locker locker.DistributedLocker,
) *SyncScheduler {
	return &SyncScheduler{
		syncer:   syncer,
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
		logger:   logger,
		locker:   locker,
	}
}

// Start begins the background sync job.
func (s *SyncScheduler) Start(runOnStartup bool) {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.logger.Info("starting sync scheduler",
		zap.Duration("interval", s.interval),
		zap.Bool("run_on_startup", runOnStartup),
	)

	s.wg.Add(1)
	go s.run(runOnStartup)
}

// Stop gracefully stops the scheduler. It is a no-op on a nil or unstarted
// scheduler.
func (s *SyncScheduler) Stop() {
	if s == nil || s.cancel == nil {
		return
	}
	s.logger.Info("stopping sync scheduler")
	s.cancel()
	s.wg.Wait()
	s.logger.Info("sync scheduler stopped")
}

func (s *SyncScheduler) run(runOnStartup bool) {
	defer s.wg.Done()

	if runOnStartup {
		s.RunOnce(s.ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(s.ctx)
		}
	}
}

// RunOnce performs one sync under the distributed lock and reports whether
// this instance ran it.
//
// Locking behavior:
//   - Lock TTL = interval duration (cooldown model, not timeout)
//   - Success: Lock held for full interval to prevent duplicate syncs
//   - Failure: Lock released immediately to allow retry by another instance
func (s *SyncScheduler) RunOnce(parent context.Context) bool {
	acquired, err := s.locker.Acquire(parent, SyncLockKey, s.interval)
	if err != nil {
		s.logger.Error("failed to acquire distributed lock", zap.Error(err))

		return false
	}
	if !acquired {
		s.logger.Debug("another instance is running sync, skipping execution")

		return false
	}

	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	results := s.syncer.SyncAll(ctx)

	totalSynced := 0
	totalErrors := 0

	for _, r := range results {
		if r.Error != nil {
			totalErrors++
			s.logger.Warn("feed sync failed",
				zap.String("feed", r.Feed),
				zap.Error(r.Error),
			)
		} else {
			totalSynced += r.Count
		}
	}

	if totalErrors > 0 {
		if err := s.locker.Release(parent, SyncLockKey); err != nil {
			s.logger.Error("failed to release lock after sync error", zap.Error(err))
		}
		s.logger.Info("sync completed with errors, lock released for retry",
			zap.Int("total_synced", totalSynced),
			zap.Int("feeds_failed", totalErrors),
		)
	} else {
		// Lock expires after interval (cooldown period)
		s.logger.Info("sync completed successfully, lock held for cooldown",
			zap.Int("total_synced", totalSynced),
			zap.Duration("cooldown", s.interval),
		)
	}

	return true
}
