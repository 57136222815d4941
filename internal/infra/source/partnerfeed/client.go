// Package partnerfeed implements the client for the partner XML listing feed.
package partnerfeed

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"property-match-service/internal/domain"
	"property-match-service/internal/infra/source"
)

const (
	// Name identifies this client as a listing feed.
	Name = "partner_feed"

	// Endpoint is the API path of the XML export.
	Endpoint = "/export/listings.xml"
)

// Client implements domain.ListingFeed for the partner XML export.
type Client struct {
	client *resty.Client
	cb     *gobreaker.CircuitBreaker[*resty.Response]
	logger *zap.Logger
}

// New creates a new partner feed client.
func New(cfg source.ClientConfig, logger *zap.Logger) *Client {
	return &Client{
		client: source.NewRestyClient(cfg),
		cb:     source.NewCircuitBreaker[*resty.Response](Name, cfg.CB, logger),
		logger: logger,
	}
}

// Name returns the feed identifier.
func (c *Client) Name() string {
	return Name
}

// Fetch retrieves the full export. Listings without a ref are skipped.
func (c *Client) Fetch(ctx context.Context) ([]domain.RawProperty, error) {
	resp, err := c.cb.Execute(func() (*resty.Response, error) {
		r, err := c.client.R().
			SetContext(ctx).
			SetHeader("Accept", "application/xml").
			Get(Endpoint)
		if err != nil {
			return nil, err
		}
		if r.IsError() {
			return nil, fmt.Errorf("partner_feed returned status %d", r.StatusCode())
		}

		return r, nil
	})

	if err != nil {
		c.logger.Warn("partner_feed fetch failed",
			zap.Error(err),
			zap.String("state", c.cb.State().String()),
		)

		return nil, fmt.Errorf("fetching from partner_feed: %w", err)
	}

	var feed Feed
	if err := xml.Unmarshal(resp.Body(), &feed); err != nil {
		return nil, fmt.Errorf("parsing partner_feed XML: %w", err)
	}

	rows := make([]domain.RawProperty, 0, len(feed.Listings.Listings))
	skipped := 0
	for i := range feed.Listings.Listings {
		l := &feed.Listings.Listings[i]
		if strings.TrimSpace(l.Ref) == "" {
			skipped++
			continue
		}
		rows = append(rows, l.ToRaw(Name))
	}

	c.logger.Info("partner_feed fetch completed",
		zap.Int("count", len(rows)),
		zap.Int("skipped", skipped),
	)

	return rows, nil
}

// HealthCheck verifies the feed is accessible.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.client.R().
		SetContext(ctx).
		Get("/health")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("health check returned status %d", resp.StatusCode())
	}

	return nil
}
