package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"property-match-service/internal/domain"
)

func TestSyncService_SyncAll(t *testing.T) {
	repo := newMemorySource()
	feeds := []domain.ListingFeed{
		&stubFeed{name: "baas", rows: []domain.RawProperty{
			row("p-1", "apartment", "sale", "approved", "Pune", "Maharashtra", 100),
			{"title": "no id"},
		}},
		&stubFeed{name: "partner_feed", err: errUpstream},
		&stubFeed{name: "empty"},
	}
	svc := NewSyncService(repo, feeds, zap.NewNop())

	results := svc.SyncAll(context.Background())

	require.Len(t, results, 3)
	assert.Equal(t, "baas", results[0].Feed)
	assert.Equal(t, 1, results[0].Count)
	assert.Equal(t, 1, results[0].Skipped)
	assert.NoError(t, results[0].Error)

	assert.Equal(t, "partner_feed", results[1].Feed)
	assert.ErrorIs(t, results[1].Error, errUpstream)

	assert.NoError(t, results[2].Error)
	assert.Equal(t, 0, results[2].Count)

	stored := repo.listings["p-1"]
	assert.Equal(t, "baas", stored.Source)
	assert.Equal(t, "approved", stored.Status)
	assert.Equal(t, "Listing p-1", stored.Title)
	assert.Equal(t, "Pune", stored.Raw["city"], "raw row is kept verbatim")
}

func TestSyncService_UpsertFailure(t *testing.T) {
	repo := newMemorySource()
	repo.upsertErr = errUpstream
	feed := &stubFeed{name: "baas", rows: []domain.RawProperty{
		row("p-1", "apartment", "sale", "approved", "Pune", "Maharashtra", 100),
	}}
	svc := NewSyncService(repo, []domain.ListingFeed{feed}, zap.NewNop())

	result, err := svc.SyncFeed(context.Background(), "baas")

	require.Error(t, err)
	assert.ErrorIs(t, err, errUpstream)
	assert.Equal(t, 0, result.Count)
}

func TestSyncService_SyncFeed_Unknown(t *testing.T) {
	svc := NewSyncService(newMemorySource(), nil, zap.NewNop())

	result, err := svc.SyncFeed(context.Background(), "nope")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrFeedNotFound)
}

func TestSyncService_FeedNamesAndHealth(t *testing.T) {
	svc := NewSyncService(newMemorySource(), []domain.ListingFeed{
		&stubFeed{name: "baas"},
		&stubFeed{name: "partner_feed", healthErr: errUpstream},
	}, zap.NewNop())

	assert.Equal(t, []string{"baas", "partner_feed"}, svc.FeedNames())

	health := svc.FeedHealth(context.Background())
	assert.NoError(t, health["baas"])
	assert.ErrorIs(t, health["partner_feed"], errUpstream)
}

func TestSyncService_Stats(t *testing.T) {
	repo := newMemorySource()
	svc := NewSyncService(repo, []domain.ListingFeed{
		&stubFeed{name: "baas", rows: []domain.RawProperty{
			row("a", "plot", "sale", "approved", "Pune", "Maharashtra", 1),
			row("b", "plot", "sale", "pending", "Pune", "Maharashtra", 1),
			row("c", "plot", "sale", "approved", "Pune", "Maharashtra", 1),
		}},
	}, zap.NewNop())

	svc.SyncAll(context.Background())
	stats, err := svc.Stats(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, map[string]int64{"approved": 2, "pending": 1}, stats.ByStatus)
	assert.Len(t, stats.Recent, 2)
}
