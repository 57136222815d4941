package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// MaxCandidates is the hard ceiling on rows fetched per search invocation.
// It bounds the pool; it is not a pagination cursor.
const MaxCandidates = 500

// contentKey names the nested free-form payload some rows keep attributes in.
const contentKey = "content"

// ParseError lists the fields of a row that could not be read and were
// replaced by defaults. The accompanying candidate is still usable.
type ParseError struct {
	ID     string
	Fields []string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("listing %q: coerced fields to defaults: %s", e.ID, strings.Join(e.Fields, ", "))
}

// ParseCandidate converts a raw row into a CandidateProperty. It never fails:
// malformed values fall back to zero values and are reported in a *ParseError.
func ParseCandidate(raw RawProperty) (CandidateProperty, error) {
	r := newRowReader(raw)

	c := CandidateProperty{
		ID:               r.text("id"),
		Title:            r.text("title"),
		PropertyType:     strings.ToLower(r.text("property_type", "propertyType")),
		ListingType:      strings.ToLower(r.text("listing_type", "listingType")),
		Status:           strings.ToLower(r.text("status")),
		ExpectedPrice:    r.number("expected_price", "expectedPrice", "price"),
		IsFeatured:       r.flag("is_featured", "isFeatured"),
		IsRecommended:    r.flag("is_recommended", "isRecommended"),
		Furnishing:       r.text("furnishing", "furnishing_status"),
		SuperArea:        r.number("super_area", "superArea"),
		AvailabilityType: r.text("availability_type", "availabilityType"),
		Images:           CoerceStringList(r.value("images")),
	}
	c.City, c.State = ResolveLocation(r.text("city"), r.text("state"), r.text("location"))

	if len(r.issues) > 0 {
		return c, &ParseError{ID: c.ID, Fields: r.issues}
	}
	return c, nil
}

// NormalizeCandidates parses every row, preserving input order. No row is
// dropped; parse issues are returned alongside for diagnostics.
func NormalizeCandidates(rows []RawProperty) ([]CandidateProperty, []error) {
	candidates := make([]CandidateProperty, 0, len(rows))
	var issues []error
	for _, row := range rows {
		c, err := ParseCandidate(row)
		if err != nil {
			issues = append(issues, err)
		}
		candidates = append(candidates, c)
	}
	return candidates, issues
}

// CoerceStringList reads a list-valued field. Lists are returned as-is,
// strings are decoded as a JSON array or, failing that, split on commas.
// Anything else yields an empty list.
func CoerceStringList(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := strings.TrimSpace(cast.ToString(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return []string{}
		}
		var decoded []any
		if err := json.Unmarshal([]byte(s), &decoded); err == nil {
			return CoerceStringList(decoded)
		}
		out := []string{}
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	default:
		return []string{}
	}
}

// ResolveLocation prefers explicit city and state values and fills whichever
// is missing from a combined "City, State, Country" string.
func ResolveLocation(city, state, location string) (string, string) {
	if city != "" && state != "" {
		return city, state
	}
	parts := strings.Split(location, ",")
	if city == "" {
		city = strings.TrimSpace(parts[0])
	}
	if state == "" && len(parts) > 1 {
		state = strings.TrimSpace(parts[1])
	}
	return city, state
}

// rowReader looks attributes up at the top level first, then inside the
// nested content payload, and records fields it had to coerce.
type rowReader struct {
	top     RawProperty
	content map[string]any
	issues  []string
}

func newRowReader(raw RawProperty) *rowReader {
	r := &rowReader{top: raw}

	switch payload := raw[contentKey].(type) {
	case map[string]any:
		r.content = payload
	case string:
		if strings.TrimSpace(payload) == "" {
			break
		}
		if err := json.Unmarshal([]byte(payload), &r.content); err != nil {
			r.issues = append(r.issues, contentKey)
		}
	case []byte:
		if err := json.Unmarshal(payload, &r.content); err != nil {
			r.issues = append(r.issues, contentKey)
		}
	}

	return r
}

// value returns the first non-nil value found under any of keys.
func (r *rowReader) value(keys ...string) any {
	for _, k := range keys {
		if v, ok := r.top[k]; ok && v != nil {
			return v
		}
	}
	for _, k := range keys {
		if v, ok := r.content[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func (r *rowReader) text(keys ...string) string {
	v := r.value(keys...)
	if v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		r.issues = append(r.issues, keys[0])
		return ""
	}
	return strings.TrimSpace(s)
}

func (r *rowReader) number(keys ...string) *float64 {
	v := r.value(keys...)
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
		if s == "" {
			return nil
		}
		v = s
	}
	if v == nil {
		return nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		r.issues = append(r.issues, keys[0])
		return nil
	}
	return &f
}

func (r *rowReader) flag(keys ...string) bool {
	v := r.value(keys...)
	if v == nil {
		return false
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		r.issues = append(r.issues, keys[0])
		return false
	}
	return b
}
