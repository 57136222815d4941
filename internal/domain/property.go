// Package domain contains the core business logic and entities.
// Apart from spf13/cast for value coercion it only depends on the stdlib.
package domain

import "strings"

// Intent is the user's transaction intent for a property search.
type Intent string

const (
	IntentUnset      Intent = ""
	IntentBuy        Intent = "buy"
	IntentSell       Intent = "sell"
	IntentLease      Intent = "lease"
	IntentRent       Intent = "rent"
	IntentNewLaunch  Intent = "new-launch"
	IntentPG         Intent = "pg"
	IntentCommercial Intent = "commercial"
	IntentPlots      Intent = "plots"
	IntentProjects   Intent = "projects"
)

// Intents lists every selectable intent in display order.
var Intents = []Intent{
	IntentBuy, IntentSell, IntentLease, IntentRent, IntentNewLaunch,
	IntentPG, IntentCommercial, IntentPlots, IntentProjects,
}

// IsValid reports whether i is one of the known intents or unset.
func (i Intent) IsValid() bool {
	if i == IntentUnset {
		return true
	}
	for _, known := range Intents {
		if i == known {
			return true
		}
	}
	return false
}

const (
	// StatusApproved is the only listing status eligible for results.
	StatusApproved = "approved"

	// ListingTypeSale is the listing type shown to buyers as "buy".
	ListingTypeSale = "sale"

	// PropertyTypeAny is the dropdown sentinel meaning "no type filter".
	PropertyTypeAny = "others"
)

// RawProperty is a listing row exactly as the data source returned it.
// Attributes may live at the top level or inside a nested "content" payload,
// and list-valued fields may be lists, JSON strings or comma-separated text.
type RawProperty map[string]any

// CandidateProperty is the canonical, normalized listing used for matching.
type CandidateProperty struct {
	ID    string `json:"id"`
	Title string `json:"title"`

	// Classification, all lowercased
	PropertyType string `json:"property_type"`
	ListingType  string `json:"listing_type"`
	Status       string `json:"status"`

	ExpectedPrice *float64 `json:"expected_price,omitempty"`

	City  string `json:"city"`
	State string `json:"state"`

	// Ranking signals
	IsFeatured    bool `json:"is_featured"`
	IsRecommended bool `json:"is_recommended"`

	Furnishing       string   `json:"furnishing,omitempty"`
	SuperArea        *float64 `json:"super_area,omitempty"`
	AvailabilityType string   `json:"availability_type,omitempty"`

	Images []string `json:"images"`
}

// IsApproved reports whether the candidate may appear in results.
func (c *CandidateProperty) IsApproved() bool {
	return strings.EqualFold(strings.TrimSpace(c.Status), StatusApproved)
}

// Price returns the expected price, treating a missing price as zero.
func (c *CandidateProperty) Price() float64 {
	if c.ExpectedPrice == nil {
		return 0
	}
	return *c.ExpectedPrice
}

// locationText is the synthesized "{city} {state}" string used by the
// location filters.
func (c *CandidateProperty) locationText() string {
	return strings.ToLower(c.City + " " + c.State)
}
