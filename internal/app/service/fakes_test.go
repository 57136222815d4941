package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"property-match-service/internal/domain"
)

// memorySource is an in-memory domain.ListingRepository.
type memorySource struct {
	mu        sync.Mutex
	rows      []domain.RawProperty
	listings  map[string]domain.Listing
	fetchErr  error
	upsertErr error
	fetches   int
	lastLimit int
}

func newMemorySource(rows ...domain.RawProperty) *memorySource {
	return &memorySource{rows: rows, listings: map[string]domain.Listing{}}
}

func (m *memorySource) FetchCandidates(_ context.Context, limit int) ([]domain.RawProperty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches++
	m.lastLimit = limit
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	if limit < len(m.rows) {
		return m.rows[:limit], nil
	}
	return m.rows, nil
}

func (m *memorySource) GetListing(_ context.Context, id string) (domain.RawProperty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	for _, r := range m.rows {
		if r["id"] == id {
			return r, nil
		}
	}
	return nil, domain.ErrListingNotFound
}

func (m *memorySource) BulkUpsert(_ context.Context, listings []domain.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	for _, l := range listings {
		m.listings[l.ID] = l
	}
	return nil
}

func (m *memorySource) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.listings)), nil
}

func (m *memorySource) CountByStatus(_ context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int64{}
	for _, l := range m.listings {
		counts[l.Status]++
	}
	return counts, nil
}

func (m *memorySource) Recent(_ context.Context, limit int) ([]domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Listing, 0, len(m.listings))
	for _, l := range m.listings {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// stubFeed is a domain.ListingFeed returning fixed rows.
type stubFeed struct {
	name      string
	rows      []domain.RawProperty
	err       error
	healthErr error
}

func (f *stubFeed) Name() string { return f.name }

func (f *stubFeed) Fetch(_ context.Context) ([]domain.RawProperty, error) {
	return f.rows, f.err
}

func (f *stubFeed) HealthCheck(_ context.Context) error { return f.healthErr }

// stubProviders is a domain.ServiceProviderSource returning a fixed batch.
type stubProviders struct {
	mu    sync.Mutex
	batch *domain.ServiceProviderBatch
	err   error
	calls int
	last  domain.ServiceQuery
}

func (s *stubProviders) SearchServiceProviders(_ context.Context, q domain.ServiceQuery, _, _ int) (*domain.ServiceProviderBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.last = q
	if s.err != nil {
		return nil, s.err
	}
	return s.batch, nil
}

var errUpstream = errors.New("upstream unavailable")

func row(id, propertyType, listingType, status, city, state string, price any) domain.RawProperty {
	return domain.RawProperty{
		"id":             id,
		"title":          "Listing " + id,
		"property_type":  propertyType,
		"listing_type":   listingType,
		"status":         status,
		"city":           city,
		"state":          state,
		"expected_price": price,
	}
}
