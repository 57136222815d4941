package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"property-match-service/internal/domain"
)

// ListingModel is the GORM model for the listings table. Payload holds the
// upstream row verbatim so the normalizer sees the original shapes.
type ListingModel struct {
	ID      string         `gorm:"type:varchar(100);primaryKey"`
	Source  string         `gorm:"type:varchar(50);not null;index"`
	Status  string         `gorm:"type:varchar(30);not null;index"`
	Title   string         `gorm:"type:varchar(500)"`
	Images  pq.StringArray `gorm:"type:text[]"`
	Payload []byte         `gorm:"type:jsonb;not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for ListingModel.
func (ListingModel) TableName() string {
	return "listings"
}

// ToDomain decodes the stored payload. The mirror id and status are filled in
// when the payload does not carry them itself. An undecodable payload still
// yields a listing built from the mirror columns, returned with the error.
func (m *ListingModel) ToDomain() (domain.Listing, error) {
	var raw domain.RawProperty
	var decodeErr error
	if len(m.Payload) > 0 {
		if err := json.Unmarshal(m.Payload, &raw); err != nil {
			raw = nil
			decodeErr = fmt.Errorf("decoding listing %s payload: %w", m.ID, err)
		}
	}
	if raw == nil {
		raw = domain.RawProperty{}
	}
	if _, ok := raw["id"]; !ok {
		raw["id"] = m.ID
	}
	if _, ok := raw["status"]; !ok && m.Status != "" {
		raw["status"] = m.Status
	}

	return domain.Listing{
		ID:        m.ID,
		Source:    m.Source,
		Status:    m.Status,
		Title:     m.Title,
		Images:    m.Images,
		Raw:       raw,
		UpdatedAt: m.UpdatedAt,
	}, decodeErr
}

// FromDomain creates a ListingModel from a domain.Listing.
func FromDomain(l domain.Listing) (*ListingModel, error) {
	payload, err := json.Marshal(l.Raw)
	if err != nil {
		return nil, fmt.Errorf("encoding listing %s payload: %w", l.ID, err)
	}

	return &ListingModel{
		ID:      l.ID,
		Source:  l.Source,
		Status:  l.Status,
		Title:   l.Title,
		Images:  l.Images,
		Payload: payload,
	}, nil
}

// FromDomainSlice converts listings to models.
func FromDomainSlice(listings []domain.Listing) ([]*ListingModel, error) {
	models := make([]*ListingModel, len(listings))
	for i, l := range listings {
		m, err := FromDomain(l)
		if err != nil {
			return nil, err
		}
		models[i] = m
	}

	return models, nil
}
