// Package baas implements the client for the marketplace's backend REST API:
// the listing table, the listing feed used by sync, and the service-provider
// search RPC.
package baas

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"property-match-service/internal/domain"
	"property-match-service/internal/infra/source"
)

const (
	// Name identifies this client as a listing feed.
	Name = "baas"

	// PropertiesEndpoint is the listing table.
	PropertiesEndpoint = "/rest/v1/properties"

	// ProviderSearchEndpoint is the paged, server-ranked provider search RPC.
	ProviderSearchEndpoint = "/rest/v1/rpc/search_service_providers"

	// HealthEndpoint answers liveness checks.
	HealthEndpoint = "/health"
)

// Client implements domain.PropertySource, domain.ListingFeed and
// domain.ServiceProviderSource.
type Client struct {
	client    *resty.Client
	cb        *gobreaker.CircuitBreaker[*resty.Response]
	syncLimit int
	logger    *zap.Logger
}

// New creates a backend client. syncLimit bounds the rows pulled per feed
// sync.
func New(cfg source.ClientConfig, syncLimit int, logger *zap.Logger) *Client {
	if syncLimit <= 0 {
		syncLimit = domain.MaxCandidates
	}
	return &Client{
		client:    source.NewRestyClient(cfg),
		cb:        source.NewCircuitBreaker[*resty.Response](Name, cfg.CB, logger),
		syncLimit: syncLimit,
		logger:    logger,
	}
}

// Name returns the feed identifier.
func (c *Client) Name() string {
	return Name
}

// execute runs a request through the circuit breaker and treats non-2xx
// responses as failures.
func (c *Client) execute(op string, do func() (*resty.Response, error)) (*resty.Response, error) {
	resp, err := c.cb.Execute(func() (*resty.Response, error) {
		r, err := do()
		if err != nil {
			return nil, err
		}
		if r.IsError() {
			return nil, fmt.Errorf("baas returned status %d", r.StatusCode())
		}
		return r, nil
	})
	if err != nil && errors.Is(err, context.Canceled) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err != nil {
		c.logger.Warn("baas request failed",
			zap.String("op", op),
			zap.Error(err),
			zap.String("state", c.cb.State().String()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return resp, nil
}

// FetchCandidates returns up to limit listing rows, newest first, without any
// server-side filtering.
func (c *Client) FetchCandidates(ctx context.Context, limit int) ([]domain.RawProperty, error) {
	var rows []domain.RawProperty
	_, err := c.execute("fetching candidates", func() (*resty.Response, error) {
		return c.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"select": "*",
				"order":  "created_at.desc",
				"limit":  strconv.Itoa(limit),
			}).
			SetResult(&rows).
			Get(PropertiesEndpoint)
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("baas candidates fetched", zap.Int("count", len(rows)))
	return rows, nil
}

// GetListing returns a single listing row.
func (c *Client) GetListing(ctx context.Context, id string) (domain.RawProperty, error) {
	var rows []domain.RawProperty
	_, err := c.execute("getting listing", func() (*resty.Response, error) {
		return c.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"select": "*",
				"id":     "eq." + id,
				"limit":  "1",
			}).
			SetResult(&rows).
			Get(PropertiesEndpoint)
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrListingNotFound
	}
	return rows[0], nil
}

// Fetch pulls the listing table for mirroring.
func (c *Client) Fetch(ctx context.Context) ([]domain.RawProperty, error) {
	rows, err := c.FetchCandidates(ctx, c.syncLimit)
	if err != nil {
		return nil, fmt.Errorf("fetching from baas: %w", err)
	}

	c.logger.Info("baas fetch completed", zap.Int("count", len(rows)))
	return rows, nil
}

// SearchServiceProviders runs the provider search RPC. Results come back
// ranked and are returned in server order.
func (c *Client) SearchServiceProviders(ctx context.Context, q domain.ServiceQuery, page, pageSize int) (*domain.ServiceProviderBatch, error) {
	body := providerSearchRequest{
		Category: q.Category,
		Location: q.Location(),
		City:     q.City,
		State:    q.State,
		Country:  q.Country,
		Page:     page,
		PageSize: pageSize,
	}

	var result providerSearchResponse
	_, err := c.execute("searching service providers", func() (*resty.Response, error) {
		return c.client.R().
			SetContext(ctx).
			SetBody(body).
			SetResult(&result).
			Post(ProviderSearchEndpoint)
	})
	if err != nil {
		return nil, err
	}

	batch := &domain.ServiceProviderBatch{
		Items: make([]domain.ServiceProvider, 0, len(result.Items)),
		Total: result.Total,
	}
	for i := range result.Items {
		batch.Items = append(batch.Items, result.Items[i].ToDomain())
	}
	return batch, nil
}

// HealthCheck verifies the backend is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.client.R().
		SetContext(ctx).
		Get(HealthEndpoint)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("health check returned status %d", resp.StatusCode())
	}

	return nil
}
