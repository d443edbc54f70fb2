package escrow

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// StatusAll is the filter value that matches every record.
const StatusAll = "all"

// Query is the list-view filter: a status tab and a free-text search.
type Query struct {
	Status string
	Search string
}

// Filter returns the records matching q, preserving the input order.
// Status matches exactly (or "all"); the search is a case-insensitive
// substring match against title or display code. Both predicates are ANDed.
func Filter(list []Escrow, q Query) []Escrow {
	status := strings.TrimSpace(q.Status)
	search := strings.ToLower(strings.TrimSpace(q.Search))

	var out []Escrow
	for _, e := range list {
		if status != "" && status != StatusAll && string(e.Status) != status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(e.Title), search) &&
			!strings.Contains(strings.ToLower(e.Code), search) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Counts tallies records per status, plus the "all" total, for the filter
// tabs above the list.
func Counts(list []Escrow) map[string]int {
	counts := map[string]int{StatusAll: len(list)}
	for _, e := range list {
		counts[string(e.Status)]++
	}
	return counts
}

// Suggest proposes up to max titles that nearly match a search term that
// produced no results. A title qualifies when the edit distance to the term
// is under half the longer string's length.
func Suggest(list []Escrow, term string, max int) []string {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" || max <= 0 {
		return nil
	}

	type candidate struct {
		title string
		dist  int
	}
	var cands []candidate
	seen := map[string]struct{}{}
	for _, e := range list {
		title := strings.TrimSpace(e.Title)
		if title == "" {
			continue
		}
		key := strings.ToLower(title)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		dist := levenshtein.ComputeDistance(term, key)
		longer := len(term)
		if len(key) > longer {
			longer = len(key)
		}
		if longer == 0 || float64(dist)/float64(longer) >= 0.5 {
			continue
		}
		cands = append(cands, candidate{title: title, dist: dist})
	}

	sort.SliceStable(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })
	if len(cands) > max {
		cands = cands[:max]
	}
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.title
	}
	return out
}
