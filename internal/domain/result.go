package domain

import (
	"strconv"
)

const (
	// DefaultCountry fills SearchResultItem.Country; listings do not track
	// country per row.
	DefaultCountry = "India"

	// PlaceholderImage is shown for listings without photos.
	PlaceholderImage = "https://images.unsplash.com/photo-1560518883-ce09059eeffa?w=800"
)

// SearchResultItem is the projection of a ranked candidate sent to callers.
type SearchResultItem struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Type     string   `json:"type"`
	Intent   string   `json:"intent"`
	PriceINR *float64 `json:"price_inr"`
	City     string   `json:"city"`
	State    string   `json:"state"`
	Country  string   `json:"country"`
	Image    string   `json:"image"`
	Badges   []string `json:"badges"`
	URL      string   `json:"url"`
}

// ToResultItem projects a candidate into its result shape.
func ToResultItem(c CandidateProperty) SearchResultItem {
	image := PlaceholderImage
	if len(c.Images) > 0 && c.Images[0] != "" {
		image = c.Images[0]
	}

	return SearchResultItem{
		ID:       c.ID,
		Title:    c.Title,
		Type:     c.PropertyType,
		Intent:   ResultIntent(c.ListingType),
		PriceINR: c.ExpectedPrice,
		City:     c.City,
		State:    c.State,
		Country:  DefaultCountry,
		Image:    image,
		Badges:   Badges(c),
		URL:      PropertyURL(c.ID),
	}
}

// ToResultItems projects every candidate, preserving order.
func ToResultItems(candidates []CandidateProperty) []SearchResultItem {
	items := make([]SearchResultItem, len(candidates))
	for i, c := range candidates {
		items[i] = ToResultItem(c)
	}
	return items
}

// ResultIntent derives the caller-facing intent from a listing type.
func ResultIntent(listingType string) string {
	if listingType == ListingTypeSale {
		return string(IntentBuy)
	}
	return listingType
}

// PropertyURL is the detail-page path for a listing.
func PropertyURL(id string) string {
	return "/property/" + id
}

// Badges derives display tags in a fixed order: recommended, furnishing,
// availability, area, featured. Empty tags are dropped.
func Badges(c CandidateProperty) []string {
	var area string
	if c.SuperArea != nil && *c.SuperArea > 0 {
		area = strconv.FormatFloat(*c.SuperArea, 'f', -1, 64) + " sq.ft"
	}

	candidates := []string{
		ifTrue(c.IsRecommended, "Recommended"),
		c.Furnishing,
		c.AvailabilityType,
		area,
		ifTrue(c.IsFeatured, "Featured"),
	}

	badges := make([]string, 0, len(candidates))
	for _, b := range candidates {
		if b != "" {
			badges = append(badges, b)
		}
	}
	return badges
}

func ifTrue(cond bool, s string) string {
	if cond {
		return s
	}
	return ""
}
