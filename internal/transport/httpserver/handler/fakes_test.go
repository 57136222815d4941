package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"property-match-service/internal/domain"
)

var errUpstream = errors.New("upstream unavailable")

// listingStore is an in-memory domain.ListingRepository.
type listingStore struct {
	mu       sync.Mutex
	rows     []domain.RawProperty
	mirrored map[string]domain.Listing
	err      error
	gate     chan struct{}
	calls    atomic.Int32
}

func newListingStore(rows ...domain.RawProperty) *listingStore {
	return &listingStore{rows: rows, mirrored: map[string]domain.Listing{}}
}

func (s *listingStore) FetchCandidates(ctx context.Context, limit int) ([]domain.RawProperty, error) {
	s.calls.Add(1)
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if limit < len(s.rows) {
		return s.rows[:limit], nil
	}
	return s.rows, nil
}

func (s *listingStore) GetListing(_ context.Context, id string) (domain.RawProperty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, r := range s.rows {
		if r["id"] == id {
			return r, nil
		}
	}
	return nil, domain.ErrListingNotFound
}

func (s *listingStore) BulkUpsert(_ context.Context, listings []domain.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range listings {
		s.mirrored[l.ID] = l
	}
	return nil
}

func (s *listingStore) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.mirrored)), s.err
}

func (s *listingStore) CountByStatus(_ context.Context) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := map[string]int64{}
	for _, l := range s.mirrored {
		counts[l.Status]++
	}
	return counts, s.err
}

func (s *listingStore) Recent(_ context.Context, _ int) ([]domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Listing, 0, len(s.mirrored))
	for _, l := range s.mirrored {
		l.UpdatedAt = time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)
		out = append(out, l)
	}
	return out, s.err
}

// fixedFeed is a domain.ListingFeed with canned rows.
type fixedFeed struct {
	name string
	rows []domain.RawProperty
	err  error
}

func (f *fixedFeed) Name() string { return f.name }

func (f *fixedFeed) Fetch(_ context.Context) ([]domain.RawProperty, error) {
	return f.rows, f.err
}

func (f *fixedFeed) HealthCheck(_ context.Context) error { return f.err }

// providerDirectory is a domain.ServiceProviderSource.
type providerDirectory struct {
	items []domain.ServiceProvider
	err   error
}

func (d *providerDirectory) SearchServiceProviders(_ context.Context, _ domain.ServiceQuery, page, pageSize int) (*domain.ServiceProviderBatch, error) {
	if d.err != nil {
		return nil, d.err
	}
	start := (page - 1) * pageSize
	if start > len(d.items) {
		start = len(d.items)
	}
	end := min(start+pageSize, len(d.items))
	return &domain.ServiceProviderBatch{Items: d.items[start:end], Total: len(d.items)}, nil
}

func listing(id, propertyType, status, city, state string, price float64) domain.RawProperty {
	return domain.RawProperty{
		"id":             id,
		"title":          "Listing " + id,
		"property_type":  propertyType,
		"listing_type":   "sale",
		"status":         status,
		"expected_price": price,
		"city":           city,
		"state":          state,
	}
}

func doRequest(t *testing.T, app *fiber.App, method, target, body string) *http.Response {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, target, r)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}
