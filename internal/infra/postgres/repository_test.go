package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	postgresContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	postgresDriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"property-match-service/internal/domain"
	"property-match-service/internal/infra/postgres/migrations"
)

// setupTestDB creates a PostgreSQL testcontainer, applies migrations and
// returns a connected GORM DB.
//
// Prerequisites:
//   - Docker must be running
//
// OR
//   - Skip tests with: go test -short
func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	ctx := context.Background()

	pgContainer, err := postgresContainer.Run(ctx,
		"postgres:16-alpine",
		postgresContainer.WithDatabase("testdb"),
		postgresContainer.WithUsername("testuser"),
		postgresContainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container (is Docker running? use -short to skip): %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	db, err := gorm.Open(postgresDriver.Open(connStr), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "Failed to connect to test database")

	require.NoError(t, migrations.Run(db), "Failed to run migrations")

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return db, cleanup
}

// createTestListing is a factory for mirrored listings with a nested payload.
func createTestListing(id, status string) domain.Listing {
	return domain.Listing{
		ID:     id,
		Source: "baas",
		Status: status,
		Title:  "Listing " + id,
		Images: []string{"https://cdn.example.com/" + id + ".jpg"},
		Raw: domain.RawProperty{
			"id":     id,
			"status": status,
			"city":   "Pune",
			"state":  "Maharashtra",
			"content": map[string]any{
				"title":          "Listing " + id,
				"property_type":  "Apartment",
				"expected_price": 4500000.0,
				"images":         `["https://cdn.example.com/` + id + `.jpg"]`,
			},
		},
	}
}

func TestBulkUpsert_InsertAndFetch(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db, zap.NewNop())
	ctx := context.Background()

	err := repo.BulkUpsert(ctx, []domain.Listing{
		createTestListing("l-1", "approved"),
		createTestListing("l-2", "pending"),
	})
	require.NoError(t, err)

	rows, err := repo.FetchCandidates(ctx, 500)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Payload round-trips verbatim, including the nested content object.
	for _, row := range rows {
		content, ok := row["content"].(map[string]any)
		require.True(t, ok, "content should decode as an object")
		assert.Equal(t, "Apartment", content["property_type"])
	}

	c, err := domain.ParseCandidate(rows[0])
	require.NoError(t, err)
	assert.Equal(t, "Pune", c.City)
	require.NotNil(t, c.ExpectedPrice)
	assert.Equal(t, 4500000.0, *c.ExpectedPrice)
}

func TestBulkUpsert_UpdatesExisting(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.BulkUpsert(ctx, []domain.Listing{createTestListing("l-1", "pending")}))

	var original ListingModel
	require.NoError(t, db.Where("id = ?", "l-1").First(&original).Error)

	time.Sleep(10 * time.Millisecond)

	updated := createTestListing("l-1", "approved")
	updated.Title = "Renovated"
	require.NoError(t, repo.BulkUpsert(ctx, []domain.Listing{updated}))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	var model ListingModel
	require.NoError(t, db.Where("id = ?", "l-1").First(&model).Error)
	assert.Equal(t, "approved", model.Status)
	assert.Equal(t, "Renovated", model.Title)
	assert.Equal(t, original.CreatedAt.Unix(), model.CreatedAt.Unix(), "CreatedAt should not change")
	assert.True(t, model.UpdatedAt.After(original.UpdatedAt), "UpdatedAt should be newer")
}

func TestBulkUpsert_EmptySlice(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db, zap.NewNop())
	ctx := context.Background()

	assert.NoError(t, repo.BulkUpsert(ctx, []domain.Listing{}))
	assert.NoError(t, repo.BulkUpsert(ctx, nil))
}

func TestFetchCandidates_RespectsLimit(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db, zap.NewNop())
	ctx := context.Background()

	const recordCount = 250
	listings := make([]domain.Listing, recordCount)
	for i := range listings {
		listings[i] = createTestListing(fmt.Sprintf("l-%03d", i), "approved")
	}
	require.NoError(t, repo.BulkUpsert(ctx, listings))

	rows, err := repo.FetchCandidates(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, rows, 100)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(recordCount), count)
}

func TestGetListing(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.BulkUpsert(ctx, []domain.Listing{createTestListing("l-1", "approved")}))

	row, err := repo.GetListing(ctx, "l-1")
	require.NoError(t, err)
	assert.Equal(t, "l-1", row["id"])

	_, err = repo.GetListing(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
}

func TestCountByStatusAndRecent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.BulkUpsert(ctx, []domain.Listing{
		createTestListing("l-1", "approved"),
		createTestListing("l-2", "approved"),
		createTestListing("l-3", "rejected"),
	}))

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"approved": 2, "rejected": 1}, counts)

	recent, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
	for _, l := range recent {
		assert.Equal(t, "baas", l.Source)
		assert.NotEmpty(t, l.Images)
	}
}

func TestListingModel_ToDomainFillsMirrorKeys(t *testing.T) {
	m := ListingModel{ID: "l-9", Status: "approved", Payload: []byte(`{"title":"No id in payload"}`)}

	l, err := m.ToDomain()
	require.NoError(t, err)
	assert.Equal(t, "l-9", l.Raw["id"])
	assert.Equal(t, "approved", l.Raw["status"])

	m.Payload = []byte(`[1,2,3]`)
	l, err = m.ToDomain()
	assert.Error(t, err)
	assert.Equal(t, "l-9", l.Raw["id"], "corrupt payloads fall back to the mirror columns")

	m.Payload = []byte(`null`)
	l, err = m.ToDomain()
	require.NoError(t, err)
	assert.Equal(t, "l-9", l.Raw["id"])
	assert.Equal(t, "approved", l.Raw["status"])
}

func TestFetchCandidates_KeepsRowsWithOddPayloads(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.BulkUpsert(ctx, []domain.Listing{createTestListing("l-ok", "approved")}))
	require.NoError(t, db.Create(&ListingModel{ID: "l-null", Source: "baas", Status: "approved", Payload: []byte(`null`)}).Error)
	require.NoError(t, db.Create(&ListingModel{ID: "l-array", Source: "baas", Status: "pending", Payload: []byte(`[1,2,3]`)}).Error)

	rows, err := repo.FetchCandidates(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	ids := make([]any, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row["id"])
	}
	assert.ElementsMatch(t, []any{"l-ok", "l-null", "l-array"}, ids)
}
