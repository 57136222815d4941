// Package registry builds the configured upstream clients.
package registry

import (
	"go.uber.org/zap"

	"property-match-service/internal/config"
	"property-match-service/internal/domain"
	"property-match-service/internal/infra/source"
	"property-match-service/internal/infra/source/baas"
	"property-match-service/internal/infra/source/partnerfeed"
)

// ClientConfig maps an endpoint section to client settings.
func ClientConfig(ep config.Endpoint) source.ClientConfig {
	return source.ClientConfig{
		BaseURL: ep.BaseURL,
		APIKey:  ep.APIKey,
		Timeout: ep.Timeout,
		Retry: source.RetryConfig{
			MaxAttempts: ep.Retry.MaxAttempts,
			WaitTime:    ep.Retry.WaitTime,
			MaxWaitTime: ep.Retry.MaxWaitTime,
		},
		CB: source.CBConfig{
			MaxRequests:  ep.CB.MaxRequests,
			Interval:     ep.CB.Interval,
			Timeout:      ep.CB.Timeout,
			FailureRatio: ep.CB.FailureRatio,
		},
	}
}

// NewBaaS creates the backend client. It serves the provider search in every
// configuration and the listing table when source.driver is "rest".
func NewBaaS(cfg config.SourceConfig, logger *zap.Logger) *baas.Client {
	return baas.New(ClientConfig(cfg.BaaS), cfg.SyncLimit, logger)
}

// NewFeeds returns the enabled listing feeds for the sync job.
func NewFeeds(cfg config.SourceConfig, backend *baas.Client, logger *zap.Logger) []domain.ListingFeed {
	feeds := make([]domain.ListingFeed, 0, 2)

	if cfg.BaaS.Enabled && backend != nil {
		feeds = append(feeds, backend)
	}
	if cfg.PartnerFeed.Enabled {
		feeds = append(feeds, partnerfeed.New(ClientConfig(cfg.PartnerFeed), logger))
	}

	return feeds
}
