package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"property-match-service/internal/domain"
)

// Repository implements domain.ListingRepository using PostgreSQL.
type Repository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *gorm.DB, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{db: db, logger: logger}
}

// toDomain converts a stored row, keeping it when its payload is corrupt.
func (r *Repository) toDomain(m *ListingModel) domain.Listing {
	l, err := m.ToDomain()
	if err != nil {
		r.logger.Warn("keeping listing with undecodable payload",
			zap.String("id", m.ID),
			zap.Error(err),
		)
	}
	return l
}

// FetchCandidates returns up to limit raw rows, newest first. No filtering
// happens here; the match engine filters in memory.
func (r *Repository) FetchCandidates(ctx context.Context, limit int) ([]domain.RawProperty, error) {
	var models []ListingModel
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("fetching candidates: %w", err)
	}

	rows := make([]domain.RawProperty, 0, len(models))
	for i := range models {
		rows = append(rows, r.toDomain(&models[i]).Raw)
	}

	return rows, nil
}

// GetListing returns a single raw row.
func (r *Repository) GetListing(ctx context.Context, id string) (domain.RawProperty, error) {
	var model ListingModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrListingNotFound
		}

		return nil, fmt.Errorf("getting listing by id: %w", err)
	}

	return r.toDomain(&model).Raw, nil
}

// BulkUpsert creates or updates listings keyed by id.
func (r *Repository) BulkUpsert(ctx context.Context, listings []domain.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	models, err := FromDomainSlice(listings)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	for _, m := range models {
		m.UpdatedAt = now
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"source", "status", "title", "images", "payload", "updated_at",
		}),
	}).CreateInBatches(models, 100).Error
	if err != nil {
		return fmt.Errorf("bulk upserting listings: %w", err)
	}

	return nil
}

// Count returns the number of mirrored listings.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&ListingModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting listings: %w", err)
	}

	return count, nil
}

// CountByStatus returns listing counts grouped by status.
func (r *Repository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&ListingModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("counting listings by status: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}

// Recent returns the most recently updated listings.
func (r *Repository) Recent(ctx context.Context, limit int) ([]domain.Listing, error) {
	var models []ListingModel
	err := r.db.WithContext(ctx).
		Order("updated_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("listing recent: %w", err)
	}

	listings := make([]domain.Listing, 0, len(models))
	for i := range models {
		listings = append(listings, r.toDomain(&models[i]))
	}

	return listings, nil
}
