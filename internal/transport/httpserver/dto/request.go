// Package dto provides Data Transfer Objects for HTTP requests and responses.
package dto

import (
	"strings"

	"property-match-service/internal/domain"
)

// MatchRequest carries a property match query, either as query parameters
// (one-shot search) or as a JSON body (session input).
type MatchRequest struct {
	Intent       string `json:"intent" query:"intent" validate:"omitempty,intent"`
	PropertyType string `json:"property_type" query:"property_type" validate:"max=50"`
	Country      string `json:"country" query:"country" validate:"max=100"`
	State        string `json:"state" query:"state" validate:"max=100"`
	City         string `json:"city" query:"city" validate:"max=100"`
	BudgetMin    int64  `json:"budget_min" query:"budget_min" validate:"min=0"`
	BudgetMax    int64  `json:"budget_max" query:"budget_max" validate:"budget_max"`
	Page         int    `json:"page,omitempty" query:"page" validate:"omitempty,min=1,max=10000"`
	PageSize     int    `json:"page_size,omitempty" query:"page_size" validate:"omitempty,min=1,max=50"`
}

// ToQuery converts the request to a domain.SearchQuery. Missing required
// fields are kept empty; the pipeline answers such queries with no results.
func (r *MatchRequest) ToQuery() domain.SearchQuery {
	return domain.SearchQuery{
		Intent:       domain.Intent(strings.ToLower(strings.TrimSpace(r.Intent))),
		PropertyType: strings.TrimSpace(r.PropertyType),
		Country:      strings.TrimSpace(r.Country),
		State:        strings.TrimSpace(r.State),
		City:         strings.TrimSpace(r.City),
		BudgetMin:    r.BudgetMin,
		BudgetMax:    r.BudgetMax,
	}
}

// ProviderSearchRequest carries a service-provider query.
type ProviderSearchRequest struct {
	Category string `json:"category" query:"category" validate:"max=100"`
	Country  string `json:"country" query:"country" validate:"max=100"`
	State    string `json:"state" query:"state" validate:"max=100"`
	City     string `json:"city" query:"city" validate:"max=100"`
	Page     int    `json:"page,omitempty" query:"page" validate:"omitempty,min=1,max=10000"`
	PageSize int    `json:"page_size,omitempty" query:"page_size" validate:"omitempty,min=1,max=50"`
}

// ToQuery converts the request to a domain.ServiceQuery.
func (r *ProviderSearchRequest) ToQuery() domain.ServiceQuery {
	return domain.ServiceQuery{
		Category: strings.TrimSpace(r.Category),
		Country:  strings.TrimSpace(r.Country),
		State:    strings.TrimSpace(r.State),
		City:     strings.TrimSpace(r.City),
	}
}
