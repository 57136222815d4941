package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"property-match-service/internal/config"
	"property-match-service/internal/infra/source/baas"
	"property-match-service/internal/infra/source/partnerfeed"
)

func endpoint(enabled bool) config.Endpoint {
	return config.Endpoint{
		Enabled: enabled,
		BaseURL: "http://localhost:8081",
		APIKey:  "key",
		Timeout: 5 * time.Second,
		Retry:   config.RetryConfig{MaxAttempts: 2, WaitTime: time.Second, MaxWaitTime: 3 * time.Second},
		CB:      config.CBConfig{MaxRequests: 3, Interval: time.Minute, Timeout: 30 * time.Second, FailureRatio: 0.5},
	}
}

func TestClientConfig(t *testing.T) {
	got := ClientConfig(endpoint(true))

	assert.Equal(t, "http://localhost:8081", got.BaseURL)
	assert.Equal(t, "key", got.APIKey)
	assert.Equal(t, 2, got.Retry.MaxAttempts)
	assert.Equal(t, 3*time.Second, got.Retry.MaxWaitTime)
	assert.Equal(t, uint32(3), got.CB.MaxRequests)
	assert.Equal(t, 0.5, got.CB.FailureRatio)
}

func TestNewFeeds(t *testing.T) {
	tests := []struct {
		name    string
		baas    bool
		partner bool
		want    []string
	}{
		{"both", true, true, []string{baas.Name, partnerfeed.Name}},
		{"backend only", true, false, []string{baas.Name}},
		{"partner only", false, true, []string{partnerfeed.Name}},
		{"none", false, false, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.SourceConfig{SyncLimit: 100, BaaS: endpoint(tt.baas), PartnerFeed: endpoint(tt.partner)}

			feeds := NewFeeds(cfg, NewBaaS(cfg, zap.NewNop()), zap.NewNop())

			names := make([]string, 0, len(feeds))
			for _, f := range feeds {
				names = append(names, f.Name())
			}
			assert.Equal(t, tt.want, names)
		})
	}
}
