package partnerfeed

import (
	"encoding/xml"
	"strings"

	"property-match-service/internal/domain"
)

// idPrefix keeps partner refs from colliding with backend listing ids.
const idPrefix = "partner-"

// Feed represents the partner's XML listing export.
type Feed struct {
	XMLName  xml.Name `xml:"feed"`
	Listings Listings `xml:"listings"`
	Meta     Meta     `xml:"meta"`
}

// Listings wraps the list of listings.
type Listings struct {
	Listings []Listing `xml:"listing"`
}

// Listing is a single partner listing. Values are kept as text; the
// normalizer coerces them.
type Listing struct {
	Ref         string `xml:"ref"`
	Headline    string `xml:"headline"`
	Category    string `xml:"category"`
	Transaction string `xml:"transaction"`
	Moderation  string `xml:"moderation"`
	Price       Price  `xml:"price"`
	Location    string `xml:"location"` // "City, State, Country"
	Featured    string `xml:"featured"`
	Photos      string `xml:"photos"` // comma-joined URLs
	Area        string `xml:"area"`
	Furnishing  string `xml:"furnishing"`
	Possession  string `xml:"possession"`
}

// Price carries the amount and its currency attribute.
type Price struct {
	Currency string `xml:"currency,attr"`
	Amount   string `xml:",chardata"`
}

// Meta holds export info.
type Meta struct {
	TotalCount  int    `xml:"total_count"`
	GeneratedAt string `xml:"generated_at"`
}

// ToRaw converts a partner listing into a raw row using the same attribute
// keys as backend rows. Empty elements are omitted.
func (l *Listing) ToRaw(source string) domain.RawProperty {
	raw := domain.RawProperty{
		"id":     idPrefix + strings.TrimSpace(l.Ref),
		"source": source,
	}

	set := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			raw[key] = value
		}
	}
	set("title", l.Headline)
	set("property_type", l.Category)
	set("listing_type", l.Transaction)
	set("status", l.Moderation)
	set("expected_price", l.Price.Amount)
	set("location", l.Location)
	set("is_featured", l.Featured)
	set("images", l.Photos)
	set("super_area", l.Area)
	set("furnishing", l.Furnishing)
	set("availability_type", l.Possession)

	return raw
}
