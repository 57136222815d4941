package domain

import "testing"

func TestSearchQuery_Ready(t *testing.T) {
	tests := []struct {
		name     string
		query    SearchQuery
		expected bool
	}{
		{"complete", SearchQuery{Intent: IntentBuy, Country: "India", State: "Karnataka"}, true},
		{"missing intent", SearchQuery{Country: "India", State: "Karnataka"}, false},
		{"missing country", SearchQuery{Intent: IntentRent, State: "Karnataka"}, false},
		{"blank state", SearchQuery{Intent: IntentRent, Country: "India", State: "  "}, false},
		{"city optional", SearchQuery{Intent: IntentPG, Country: "India", State: "Goa", City: ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.Ready(); got != tt.expected {
				t.Errorf("Ready() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSearchQuery_HasBudgetFilter(t *testing.T) {
	tests := []struct {
		name     string
		min, max int64
		expected bool
	}{
		{"sentinel window", 0, BudgetCeiling, false},
		{"above ceiling", 0, BudgetCeiling * 2, false},
		{"unset", 0, 0, false},
		{"negative min", -5, 0, false},
		{"min only", 1000, 0, true},
		{"max only", 0, 5000, true},
		{"both", 1000, 5000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := SearchQuery{BudgetMin: tt.min, BudgetMax: tt.max}
			if got := q.HasBudgetFilter(); got != tt.expected {
				t.Errorf("HasBudgetFilter() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSearchQuery_HasTypeFilter(t *testing.T) {
	for input, expected := range map[string]bool{
		"":          false,
		"Others":    false,
		" others ":  false,
		"Apartment": true,
	} {
		q := SearchQuery{PropertyType: input}
		if got := q.HasTypeFilter(); got != expected {
			t.Errorf("HasTypeFilter(%q) = %v, want %v", input, got, expected)
		}
	}
}

func TestIntent_IsValid(t *testing.T) {
	for _, i := range Intents {
		if !i.IsValid() {
			t.Errorf("%q should be valid", i)
		}
	}
	if !IntentUnset.IsValid() {
		t.Error("unset intent should be valid")
	}
	if Intent("auction").IsValid() {
		t.Error("unknown intent should be invalid")
	}
}

func TestServiceQuery(t *testing.T) {
	q := ServiceQuery{Category: "movers", Country: "India", State: "Kerala", City: "Kochi"}
	if !q.Ready() {
		t.Error("expected ready")
	}
	if got := q.Location(); got != "Kochi, Kerala, India" {
		t.Errorf("Location() = %q", got)
	}

	q.Category = ""
	if q.Ready() {
		t.Error("missing category should not be ready")
	}

	q = ServiceQuery{Country: "India", State: "Kerala"}
	if got := q.Location(); got != "Kerala, India" {
		t.Errorf("Location() = %q", got)
	}
}
