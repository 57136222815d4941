package domain

import (
	"slices"
	"strings"
)

// FilterOutcome is the working candidate set for a query.
type FilterOutcome struct {
	Candidates []CandidateProperty
	// Relaxed is true when the primary filter matched nothing and the
	// state-only fallback produced the set.
	Relaxed bool
}

// FilterCandidates applies the primary filter and, when it yields nothing,
// the relaxed state-only fallback. The approved-status gate holds in both.
func FilterCandidates(pool []CandidateProperty, q SearchQuery) FilterOutcome {
	primary := make([]CandidateProperty, 0, len(pool))
	for _, c := range pool {
		if MatchesPrimary(c, q) {
			primary = append(primary, c)
		}
	}
	if len(primary) > 0 {
		return FilterOutcome{Candidates: primary}
	}

	fallback := make([]CandidateProperty, 0)
	for _, c := range pool {
		if matchesFallback(c, q) {
			fallback = append(fallback, c)
		}
	}

	slices.SortStableFunc(fallback, func(a, b CandidateProperty) int {
		sa, sb := FallbackScore(a, q), FallbackScore(b, q)
		switch {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		default:
			return 0
		}
	})

	return FilterOutcome{Candidates: fallback, Relaxed: true}
}

// MatchesPrimary reports whether c satisfies every hard constraint of q.
//
// Type and location use loose substring containment in both directions; this
// looseness is part of the matching contract.
func MatchesPrimary(c CandidateProperty, q SearchQuery) bool {
	if !c.IsApproved() {
		return false
	}

	if q.HasTypeFilter() {
		want := normalizeText(q.PropertyType)
		have := normalizeText(c.PropertyType)
		if !strings.Contains(have, want) && !strings.Contains(want, have) && have != want {
			return false
		}
	}

	if state := normalizeText(q.State); state != "" {
		if !strings.Contains(c.locationText(), state) &&
			!strings.Contains(strings.ToLower(c.State), state) {
			return false
		}
	}

	if city := normalizeText(q.City); city != "" {
		if !strings.Contains(c.locationText(), city) &&
			!strings.Contains(strings.ToLower(c.City), city) {
			return false
		}
	}

	if c.ExpectedPrice != nil && q.HasBudgetFilter() {
		lo, hi := q.budgetBounds()
		if *c.ExpectedPrice < lo || *c.ExpectedPrice > hi {
			return false
		}
	}

	return true
}

// matchesFallback keeps approved listings in the requested state, ignoring
// type, city and budget.
func matchesFallback(c CandidateProperty, q SearchQuery) bool {
	if !c.IsApproved() {
		return false
	}
	state := normalizeText(q.State)
	if state == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.State), state)
}

// FallbackScore weights fallback candidates:
//
//	isRecommended*2 + isFeatured*1 + cityExactMatch*0.5
func FallbackScore(c CandidateProperty, q SearchQuery) float64 {
	score := 0.0
	if c.IsRecommended {
		score += 2
	}
	if c.IsFeatured {
		score++
	}
	if cityEquals(c, q) {
		score += 0.5
	}
	return score
}

// cityEquals reports a case-insensitive exact city match against a set
// query city.
func cityEquals(c CandidateProperty, q SearchQuery) bool {
	city := normalizeText(q.City)
	return city != "" && normalizeText(c.City) == city
}
