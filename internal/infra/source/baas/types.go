package baas

import (
	"strings"

	"property-match-service/internal/domain"
)

// providerSearchRequest is the body of the search_service_providers RPC.
type providerSearchRequest struct {
	Category string `json:"p_category"`
	Location string `json:"p_location"`
	City     string `json:"p_city,omitempty"`
	State    string `json:"p_state"`
	Country  string `json:"p_country"`
	Page     int    `json:"p_page"`
	PageSize int    `json:"p_page_size"`
}

// providerSearchResponse is the RPC result: one page plus the total count.
type providerSearchResponse struct {
	Items []ProviderRow `json:"items"`
	Total int           `json:"total"`
}

// ProviderRow is a service provider as the backend returns it.
type ProviderRow struct {
	ID         string   `json:"id"`
	Name       string   `json:"business_name"`
	Category   string   `json:"category"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	Country    string   `json:"country"`
	Rating     *float64 `json:"rating"`
	IsVerified bool     `json:"is_verified"`
	LogoURL    string   `json:"logo_url"`
}

// ToDomain converts a ProviderRow to domain.ServiceProvider.
func (r *ProviderRow) ToDomain() domain.ServiceProvider {
	return domain.ServiceProvider{
		ID:         r.ID,
		Name:       strings.TrimSpace(r.Name),
		Category:   r.Category,
		City:       r.City,
		State:      r.State,
		Country:    r.Country,
		Rating:     r.Rating,
		IsVerified: r.IsVerified,
		Image:      r.LogoURL,
		URL:        domain.ServiceProviderURL(r.ID),
	}
}
