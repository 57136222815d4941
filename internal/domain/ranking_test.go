package domain

import (
	"reflect"
	"testing"
)

func TestRankCandidates_RecommendedThenFeaturedThenPrice(t *testing.T) {
	x := candidate("X", "apartment", "Bengaluru", "Karnataka", price(100))
	x.IsRecommended = true
	y := candidate("Y", "apartment", "Bengaluru", "Karnataka", price(50))
	y.IsFeatured = true
	z := candidate("Z", "apartment", "Bengaluru", "Karnataka", price(10))

	ranked := RankCandidates([]CandidateProperty{z, y, x}, baseQuery(), nil)

	if got := ids(ranked); !reflect.DeepEqual(got, []string{"X", "Y", "Z"}) {
		t.Errorf("RankCandidates() = %v, want [X Y Z]", got)
	}
}

func TestRankCandidates_CityExactMatch(t *testing.T) {
	near := candidate("near", "apartment", "Mysuru", "Karnataka", price(900))
	far := candidate("far", "apartment", "Mysuru Road", "Karnataka", price(100))

	q := baseQuery()
	q.City = "mysuru"

	ranked := RankCandidates([]CandidateProperty{far, near}, q, nil)
	if got := ids(ranked); !reflect.DeepEqual(got, []string{"near", "far"}) {
		t.Errorf("with city: got %v, want [near far]", got)
	}

	q.City = ""
	ranked = RankCandidates([]CandidateProperty{near, far}, q, nil)
	if got := ids(ranked); !reflect.DeepEqual(got, []string{"far", "near"}) {
		t.Errorf("without city: got %v, want price order [far near]", got)
	}
}

func TestRankCandidates_CityBeatsFeatured(t *testing.T) {
	featured := candidate("featured", "apartment", "Hubli", "Karnataka", nil)
	featured.IsFeatured = true
	local := candidate("local", "apartment", "Mysuru", "Karnataka", nil)

	q := baseQuery()
	q.City = "Mysuru"

	ranked := RankCandidates([]CandidateProperty{featured, local}, q, nil)
	if got := ids(ranked); !reflect.DeepEqual(got, []string{"local", "featured"}) {
		t.Errorf("got %v, want [local featured]", got)
	}
}

func TestRankCandidates_MappedTypeMatch(t *testing.T) {
	flat := candidate("flat", "flat", "Pune", "Maharashtra", price(500))
	studioFlat := candidate("studio-flat", "studio flat", "Pune", "Maharashtra", price(100))

	q := baseQuery()
	q.PropertyType = "Apartment"

	ranked := RankCandidates([]CandidateProperty{studioFlat, flat}, q, nil)
	if got := ids(ranked); !reflect.DeepEqual(got, []string{"flat", "studio-flat"}) {
		t.Errorf("got %v, want mapped type first", got)
	}

	q.PropertyType = "Others"
	ranked = RankCandidates([]CandidateProperty{flat, studioFlat}, q, nil)
	if got := ids(ranked); !reflect.DeepEqual(got, []string{"studio-flat", "flat"}) {
		t.Errorf("Others should skip the type rule, got %v", got)
	}
}

func TestRankCandidates_CustomTypeMapper(t *testing.T) {
	a := candidate("a", "duplex", "", "", price(2))
	b := candidate("b", "penthouse", "", "", price(1))

	q := baseQuery()
	q.PropertyType = "luxury"

	mapper := func(s string) string {
		if s == "duplex" || s == "luxury" {
			return "premium"
		}
		return s
	}

	ranked := RankCandidates([]CandidateProperty{b, a}, q, mapper)
	if got := ids(ranked); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("got %v, want [a b]", got)
	}
}

func TestRankCandidates_PriceDirection(t *testing.T) {
	pool := []CandidateProperty{
		candidate("mid", "apartment", "", "", price(50)),
		candidate("none", "apartment", "", "", nil),
		candidate("high", "apartment", "", "", price(90)),
	}

	tests := []struct {
		intent   Intent
		expected []string
	}{
		{IntentBuy, []string{"none", "mid", "high"}},
		{IntentRent, []string{"none", "mid", "high"}},
		{IntentSell, []string{"high", "mid", "none"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.intent), func(t *testing.T) {
			q := baseQuery()
			q.Intent = tt.intent
			if got := ids(RankCandidates(pool, q, nil)); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRankCandidates_StableAndNonMutating(t *testing.T) {
	pool := []CandidateProperty{
		candidate("1", "apartment", "", "", price(10)),
		candidate("2", "apartment", "", "", price(10)),
		candidate("3", "apartment", "", "", price(10)),
	}

	ranked := RankCandidates(pool, baseQuery(), nil)

	if got := ids(ranked); !reflect.DeepEqual(got, []string{"1", "2", "3"}) {
		t.Errorf("ties should keep input order, got %v", got)
	}

	ranked[0].ID = "changed"
	if pool[0].ID != "1" {
		t.Error("RankCandidates mutated its input")
	}
}

func TestRankCandidates_Empty(t *testing.T) {
	ranked := RankCandidates(nil, baseQuery(), nil)
	if ranked == nil || len(ranked) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", ranked)
	}
}

func TestNormalizePropertyType(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Flat", "apartment"},
		{" villa ", "house"},
		{"Land", "plot"},
		{"Co-Living", "pg"},
		{"Office Space", "commercial"},
		{"Farmhouse", "farmhouse"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizePropertyType(tt.input); got != tt.expected {
				t.Errorf("NormalizePropertyType(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
