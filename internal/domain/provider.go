package domain

import "strings"

// ServiceQuery holds the parameters for a service-provider search
// (movers, interior designers, legal help and similar).
type ServiceQuery struct {
	Category string `json:"category"`
	Country  string `json:"country"`
	State    string `json:"state"`
	City     string `json:"city"`
}

// Ready reports whether category, country and state are all set.
func (q ServiceQuery) Ready() bool {
	return strings.TrimSpace(q.Category) != "" &&
		strings.TrimSpace(q.Country) != "" &&
		strings.TrimSpace(q.State) != ""
}

// Location joins the non-empty location parts as "City, State, Country".
func (q ServiceQuery) Location() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{q.City, q.State, q.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// ServiceProvider is a single service-provider result. Results arrive
// pre-ranked from the remote search and are never re-ordered locally.
type ServiceProvider struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	Country    string   `json:"country"`
	Rating     *float64 `json:"rating,omitempty"`
	IsVerified bool     `json:"is_verified"`
	Image      string   `json:"image,omitempty"`
	URL        string   `json:"url"`
}

// ServiceProviderURL is the detail-page path for a provider.
func ServiceProviderURL(id string) string {
	return "/services/" + id
}

// ServiceProviderBatch is what the remote paged search returns.
type ServiceProviderBatch struct {
	Items []ServiceProvider `json:"items"`
	Total int               `json:"total"`
}
