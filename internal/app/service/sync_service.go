package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"property-match-service/internal/domain"
)

// ErrFeedNotFound is returned when a sync is requested for an unknown feed.
var ErrFeedNotFound = errors.New("feed not found")

// SyncService mirrors upstream listing feeds into the listing repository.
// Rows are stored verbatim so the normalizer sees the upstream shapes.
type SyncService struct {
	repo   domain.ListingRepository
	feeds  []domain.ListingFeed
	logger *zap.Logger
}

// NewSyncService creates a new SyncService.
func NewSyncService(repo domain.ListingRepository, feeds []domain.ListingFeed, logger *zap.Logger) *SyncService {
	return &SyncService{
		repo:   repo,
		feeds:  feeds,
		logger: logger,
	}
}

// SyncResult holds the result of a sync operation.
type SyncResult struct {
	Feed     string        `json:"feed"`
	Count    int           `json:"count"`
	Skipped  int           `json:"skipped"`
	Duration time.Duration `json:"duration"`
	Error    error         `json:"-"`
}

// SyncAll synchronizes listings from all feeds concurrently.
// Returns results for each feed. Partial failures are allowed.
func (s *SyncService) SyncAll(ctx context.Context) []SyncResult {
	results := make([]SyncResult, len(s.feeds))
	var wg sync.WaitGroup

	s.logger.Info("starting sync from all feeds",
		zap.Int("feed_count", len(s.feeds)),
	)

	for i, feed := range s.feeds {
		wg.Add(1)
		go func(idx int, f domain.ListingFeed) {
			defer wg.Done()
			results[idx] = s.syncFeed(ctx, f)
		}(i, feed)
	}

	wg.Wait()

	totalSynced := 0
	totalErrors := 0
	for _, r := range results {
		if r.Error != nil {
			totalErrors++
		} else {
			totalSynced += r.Count
		}
	}

	s.logger.Info("sync completed",
		zap.Int("total_synced", totalSynced),
		zap.Int("feeds_failed", totalErrors),
	)

	return results
}

// syncFeed fetches and upserts listings from a single feed.
func (s *SyncService) syncFeed(ctx context.Context, feed domain.ListingFeed) SyncResult {
	start := time.Now()
	result := SyncResult{Feed: feed.Name()}

	s.logger.Debug("syncing feed", zap.String("feed", feed.Name()))

	rows, err := feed.Fetch(ctx)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		s.logger.Warn("feed fetch failed",
			zap.String("feed", feed.Name()),
			zap.Error(err),
		)
		return result
	}

	listings, skipped := toListings(feed.Name(), rows)
	result.Skipped = skipped

	if len(listings) > 0 {
		if err := s.repo.BulkUpsert(ctx, listings); err != nil {
			result.Error = fmt.Errorf("upserting %s listings: %w", feed.Name(), err)
			result.Duration = time.Since(start)
			s.logger.Error("bulk upsert failed",
				zap.String("feed", feed.Name()),
				zap.Error(err),
			)
			return result
		}
	}

	result.Count = len(listings)
	result.Duration = time.Since(start)

	s.logger.Info("feed sync completed",
		zap.String("feed", feed.Name()),
		zap.Int("count", result.Count),
		zap.Int("skipped", result.Skipped),
		zap.Duration("duration", result.Duration),
	)

	return result
}

// toListings keys raw rows for mirroring. Rows without an id cannot be
// upserted and are skipped.
func toListings(feed string, rows []domain.RawProperty) ([]domain.Listing, int) {
	listings := make([]domain.Listing, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		c, _ := domain.ParseCandidate(row)
		if c.ID == "" {
			skipped++
			continue
		}
		listings = append(listings, domain.Listing{
			ID:     c.ID,
			Source: feed,
			Status: c.Status,
			Title:  c.Title,
			Images: c.Images,
			Raw:    row,
		})
	}
	return listings, skipped
}

// SyncFeed synchronizes listings from a specific feed.
func (s *SyncService) SyncFeed(ctx context.Context, name string) (*SyncResult, error) {
	for _, f := range s.feeds {
		if f.Name() == name {
			result := s.syncFeed(ctx, f)
			return &result, result.Error
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrFeedNotFound, name)
}

// FeedNames returns the names of all registered feeds.
func (s *SyncService) FeedNames() []string {
	names := make([]string, len(s.feeds))
	for i, f := range s.feeds {
		names[i] = f.Name()
	}
	return names
}

// FeedHealth reports reachability per feed. A nil entry means healthy.
func (s *SyncService) FeedHealth(ctx context.Context) map[string]error {
	health := make(map[string]error, len(s.feeds))
	for _, f := range s.feeds {
		health[f.Name()] = f.HealthCheck(ctx)
	}
	return health
}

// MirrorStats summarizes the listing mirror for the dashboard.
type MirrorStats struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
	Recent   []domain.Listing `json:"-"`
}

// Stats returns listing counts and the most recently updated listings.
func (s *SyncService) Stats(ctx context.Context, recent int) (*MirrorStats, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting listings: %w", err)
	}
	byStatus, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting listings by status: %w", err)
	}
	latest, err := s.repo.Recent(ctx, recent)
	if err != nil {
		return nil, fmt.Errorf("loading recent listings: %w", err)
	}

	return &MirrorStats{
		Total:    total,
		ByStatus: byStatus,
		Recent:   latest,
	}, nil
}
