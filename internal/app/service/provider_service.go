package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"property-match-service/internal/domain"
)

// ProviderService runs the paged service-provider search. Pages are cached
// when a cache is configured; ranking stays with the remote search.
type ProviderService struct {
	source   domain.ServiceProviderSource
	cache    domain.Cache
	ttl      time.Duration
	pageSize int
	logger   *zap.Logger
}

// NewProviderService creates a new ProviderService. cache may be nil.
func NewProviderService(source domain.ServiceProviderSource, cache domain.Cache, ttl time.Duration, pageSize int, logger *zap.Logger) *ProviderService {
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	return &ProviderService{
		source:   source,
		cache:    cache,
		ttl:      ttl,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Search returns one page of providers using the configured page size.
func (s *ProviderService) Search(ctx context.Context, q domain.ServiceQuery, page int) (domain.Page[domain.ServiceProvider], error) {
	return s.SearchPage(ctx, q, page, s.pageSize)
}

// SearchPage returns one page of providers in server order. A query that is
// not ready yields an empty page without a remote call.
func (s *ProviderService) SearchPage(ctx context.Context, q domain.ServiceQuery, page, pageSize int) (domain.Page[domain.ServiceProvider], error) {
	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	empty := domain.EmptyPage[domain.ServiceProvider](page, pageSize)
	if !q.Ready() {
		return empty, nil
	}
	page, pageSize = empty.Page, empty.PageSize

	key := providerCacheKey(q, page, pageSize)
	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}

	batch, err := s.source.SearchServiceProviders(ctx, q, page, pageSize)
	if err != nil {
		return domain.Page[domain.ServiceProvider]{}, fmt.Errorf("searching providers: %w", err)
	}

	items := batch.Items
	if items == nil {
		items = []domain.ServiceProvider{}
	}
	result := domain.Page[domain.ServiceProvider]{
		Items:    items,
		Total:    batch.Total,
		Page:     page,
		PageSize: pageSize,
		HasMore:  domain.PageHasMore(page, pageSize, batch.Total),
	}

	s.toCache(ctx, key, result)

	return result, nil
}

func (s *ProviderService) fromCache(ctx context.Context, key string) (domain.Page[domain.ServiceProvider], bool) {
	var page domain.Page[domain.ServiceProvider]
	if s.cache == nil {
		return page, false
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("provider cache read failed", zap.String("key", key), zap.Error(err))
		return page, false
	}
	if data == nil {
		return page, false
	}
	if err := json.Unmarshal(data, &page); err != nil {
		s.logger.Warn("provider cache entry unreadable", zap.String("key", key), zap.Error(err))
		return page, false
	}

	s.logger.Debug("provider cache hit", zap.String("key", key))
	return page, true
}

func (s *ProviderService) toCache(ctx context.Context, key string, page domain.Page[domain.ServiceProvider]) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(page)
	if err != nil {
		s.logger.Warn("provider cache encode failed", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("provider cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// providerCacheKey is stable for equal queries regardless of case and padding.
func providerCacheKey(q domain.ServiceQuery, page, pageSize int) string {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	return fmt.Sprintf("providers:%s:%s:%s:%s:%d:%d",
		norm(q.Category), norm(q.Country), norm(q.State), norm(q.City), page, pageSize)
}
