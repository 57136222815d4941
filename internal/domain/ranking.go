package domain

import (
	"cmp"
	"slices"
)

// TypeMapper maps a free-text property type onto a canonical category so
// that synonyms ("flat", "apartment") compare equal during ranking.
type TypeMapper func(propertyType string) string

// propertyTypeAliases maps common listing vocabulary onto canonical types.
var propertyTypeAliases = map[string]string{
	"flat":              "apartment",
	"flats":             "apartment",
	"apartment":         "apartment",
	"apartments":        "apartment",
	"builder floor":     "apartment",
	"studio":            "apartment",
	"villa":             "house",
	"villas":            "house",
	"house":             "house",
	"independent house": "house",
	"bungalow":          "house",
	"row house":         "house",
	"plot":              "plot",
	"plots":             "plot",
	"land":              "plot",
	"residential plot":  "plot",
	"office":            "commercial",
	"office space":      "commercial",
	"shop":              "commercial",
	"showroom":          "commercial",
	"warehouse":         "commercial",
	"commercial":        "commercial",
	"pg":                "pg",
	"hostel":            "pg",
	"co-living":         "pg",
}

// NormalizePropertyType is the default TypeMapper.
func NormalizePropertyType(propertyType string) string {
	t := normalizeText(propertyType)
	if mapped, ok := propertyTypeAliases[t]; ok {
		return mapped
	}
	return t
}

// RankCandidates returns a copy of candidates ordered by the ranking cascade:
//
//  1. recommended before not recommended
//  2. exact city match before others (only when the query has a city)
//  3. featured before not featured
//  4. mapped type equal to the mapped query type before others
//     (only when the query has a type filter)
//  5. price ascending, or descending for the "sell" intent; missing prices
//     compare as zero
//
// Each rule is a full partition; ties fall through to the next rule. The sort
// is stable, so fully tied candidates keep their input order.
func RankCandidates(candidates []CandidateProperty, q SearchQuery, mapType TypeMapper) []CandidateProperty {
	if mapType == nil {
		mapType = NormalizePropertyType
	}

	ranked := slices.Clone(candidates)
	if ranked == nil {
		ranked = []CandidateProperty{}
	}

	var queryType string
	if q.HasTypeFilter() {
		queryType = mapType(q.PropertyType)
	}

	slices.SortStableFunc(ranked, func(a, b CandidateProperty) int {
		if c := preferTrue(a.IsRecommended, b.IsRecommended); c != 0 {
			return c
		}
		if q.City != "" {
			if c := preferTrue(cityEquals(a, q), cityEquals(b, q)); c != 0 {
				return c
			}
		}
		if c := preferTrue(a.IsFeatured, b.IsFeatured); c != 0 {
			return c
		}
		if queryType != "" {
			if c := preferTrue(mapType(a.PropertyType) == queryType, mapType(b.PropertyType) == queryType); c != 0 {
				return c
			}
		}
		if q.Intent == IntentSell {
			return cmp.Compare(b.Price(), a.Price())
		}
		return cmp.Compare(a.Price(), b.Price())
	})

	return ranked
}

// preferTrue orders true before false.
func preferTrue(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	default:
		return 1
	}
}
