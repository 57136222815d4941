package domain

import (
	"context"
	"errors"
	"time"
)

// ErrListingNotFound is returned when a listing id does not exist.
var ErrListingNotFound = errors.New("listing not found")

// PropertySource is the read-only property data source searched per query.
// Implementations: internal/infra/postgres (mirror), internal/infra/source/baas (upstream REST).
type PropertySource interface {
	// FetchCandidates returns up to limit raw rows with no server-side filter.
	FetchCandidates(ctx context.Context, limit int) ([]RawProperty, error)

	// GetListing returns a single raw row or ErrListingNotFound.
	GetListing(ctx context.Context, id string) (RawProperty, error)
}

// Listing is a raw row keyed for mirroring. Title, Status and Images are
// denormalized from Raw for ops views; Raw stays the source of truth.
type Listing struct {
	ID        string
	Source    string
	Status    string
	Title     string
	Images    []string
	Raw       RawProperty
	UpdatedAt time.Time
}

// ListingRepository persists mirrored listings.
// Implementations: internal/infra/postgres/repository.go
type ListingRepository interface {
	PropertySource

	// BulkUpsert creates or updates listings keyed by ID.
	BulkUpsert(ctx context.Context, listings []Listing) error

	// Count returns the number of mirrored listings.
	Count(ctx context.Context) (int64, error)

	// CountByStatus returns mirrored listing counts grouped by status.
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Recent returns the most recently updated listings.
	Recent(ctx context.Context, limit int) ([]Listing, error)
}

// ListingFeed is an upstream source of listings mirrored by the sync job.
// Implementations: internal/infra/source/baas, internal/infra/source/partnerfeed
type ListingFeed interface {
	// Name returns the unique identifier for this feed.
	Name() string

	// Fetch retrieves the feed's current listings as raw rows.
	Fetch(ctx context.Context) ([]RawProperty, error)

	// HealthCheck verifies the feed is reachable.
	HealthCheck(ctx context.Context) error
}

// ServiceProviderSource runs the remote paged service-provider search.
// Implementations: internal/infra/source/baas
type ServiceProviderSource interface {
	SearchServiceProviders(ctx context.Context, q ServiceQuery, page, pageSize int) (*ServiceProviderBatch, error)
}

// Cache defines the interface for caching operations.
// Implementations: internal/infra/redis/cache.go
type Cache interface {
	// Get retrieves a value by key. Returns nil if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// Clear removes all cached values.
	Clear(ctx context.Context) error
}
