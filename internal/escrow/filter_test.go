package escrow

import (
	"reflect"
	"testing"
)

func filterFixtures() []Escrow {
	return []Escrow{
		{ID: "1", Code: "#ESC-2026-AAAAAA", Title: "Logo redesign", Status: StatusActive},
		{ID: "2", Code: "#ESC-2026-BBBBBB", Title: "API integration", Status: StatusPending},
		{ID: "3", Code: "#ESC-2026-CCCCCC", Title: "Landing page copy", Status: StatusActive},
		{ID: "4", Code: "#ESC-2025-DDDDDD", Title: "Logo animation", Status: StatusCompleted},
		{ID: "5", Code: "#ESC-2025-EEEEEE", Title: "SEO audit", Status: StatusDisputed},
	}
}

func ids(list []Escrow) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	fixtures := filterFixtures()

	tests := []struct {
		name string
		q    Query
		want []string
	}{
		{"all empty search", Query{Status: "all"}, []string{"1", "2", "3", "4", "5"}},
		{"blank status means all", Query{}, []string{"1", "2", "3", "4", "5"}},
		{"status only", Query{Status: "active"}, []string{"1", "3"}},
		{"search only", Query{Status: "all", Search: "logo"}, []string{"1", "4"}},
		{"case insensitive", Query{Status: "all", Search: "LOGO"}, []string{"1", "4"}},
		{"status and search", Query{Status: "active", Search: "logo"}, []string{"1"}},
		{"matches display code", Query{Status: "all", Search: "2025"}, []string{"4", "5"}},
		{"no matches", Query{Status: "completed", Search: "seo"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(fixtures, tt.q)
			if !reflect.DeepEqual(ids(got), tt.want) && !(len(got) == 0 && len(tt.want) == 0) {
				t.Errorf("got %v, want %v", ids(got), tt.want)
			}
		})
	}
}

func TestFilterPreservesInputOrder(t *testing.T) {
	fixtures := filterFixtures()
	// Reverse the slice; the filter must not re-sort.
	rev := make([]Escrow, len(fixtures))
	for i, e := range fixtures {
		rev[len(fixtures)-1-i] = e
	}
	got := Filter(rev, Query{Status: "active"})
	if want := []string{"3", "1"}; !reflect.DeepEqual(ids(got), want) {
		t.Errorf("got %v, want %v", ids(got), want)
	}
}

func TestCounts(t *testing.T) {
	got := Counts(filterFixtures())
	want := map[string]int{
		"all":       5,
		"active":    2,
		"pending":   1,
		"completed": 1,
		"disputed":  1,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSuggest(t *testing.T) {
	fixtures := filterFixtures()

	got := Suggest(fixtures, "logo redsign", 3)
	if len(got) == 0 || got[0] != "Logo redesign" {
		t.Fatalf("got %v, want Logo redesign first", got)
	}

	if got := Suggest(fixtures, "zzzzzzzzzzzz", 3); len(got) != 0 {
		t.Errorf("distant term returned %v", got)
	}
	if got := Suggest(fixtures, "", 3); got != nil {
		t.Errorf("empty term returned %v", got)
	}
}

func TestSummarizeEarnings(t *testing.T) {
	list := []Escrow{
		{Status: StatusCompleted, AmountCents: 100000, Verification: &Verification{Score: 92, PaidCents: 92000}},
		{Status: StatusCompleted, AmountCents: 50000, Verification: &Verification{Score: 80, PaidCents: 40000}},
		{Status: StatusActive, AmountCents: 30000},
		{Status: StatusDisputed, AmountCents: 20000},
	}
	got := SummarizeEarnings(list)
	if got.CompletedCount != 2 {
		t.Errorf("count = %d, want 2", got.CompletedCount)
	}
	if got.EarnedCents != 132000 {
		t.Errorf("earned = %d, want 132000", got.EarnedCents)
	}
	if got.HeldCents != 18000 {
		t.Errorf("held = %d, want 18000", got.HeldCents)
	}
	if got.AverageScore != 86 {
		t.Errorf("avg = %d, want 86", got.AverageScore)
	}
}
