package domain

import (
	"math"
	"strings"
)

// BudgetCeiling is the upper end of the sentinel budget window. A query whose
// budget spans 0..BudgetCeiling carries no budget filter.
const BudgetCeiling int64 = 1_000_000_000

// SearchQuery holds the structured property search parameters.
// A query is immutable per invocation; callers build a new one per input change.
type SearchQuery struct {
	Intent       Intent `json:"intent"`
	PropertyType string `json:"property_type"`

	// Location; country and state are required for the query to execute
	Country string `json:"country"`
	State   string `json:"state"`
	City    string `json:"city"`

	// Budget window in currency-agnostic integer units
	BudgetMin int64 `json:"budget_min"`
	BudgetMax int64 `json:"budget_max"`
}

// Ready reports whether all required fields are present. Queries that are not
// ready short-circuit to an empty result without touching the data source.
func (q SearchQuery) Ready() bool {
	return q.Intent != IntentUnset &&
		strings.TrimSpace(q.Country) != "" &&
		strings.TrimSpace(q.State) != ""
}

// HasTypeFilter reports whether the property type constrains results.
func (q SearchQuery) HasTypeFilter() bool {
	t := normalizeText(q.PropertyType)
	return t != "" && t != PropertyTypeAny
}

// HasBudgetFilter reports whether the budget window differs from the
// sentinel "any budget" range. A zero or negative max counts as unbounded.
func (q SearchQuery) HasBudgetFilter() bool {
	unboundedMax := q.BudgetMax <= 0 || q.BudgetMax >= BudgetCeiling
	return q.BudgetMin > 0 || !unboundedMax
}

// budgetBounds returns the inclusive price window.
func (q SearchQuery) budgetBounds() (float64, float64) {
	lo := float64(q.BudgetMin)
	if lo < 0 {
		lo = 0
	}
	hi := math.MaxFloat64
	if q.BudgetMax > 0 {
		hi = float64(q.BudgetMax)
	}
	return lo, hi
}

// normalizeText lowercases and trims s for case-insensitive comparisons.
func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
