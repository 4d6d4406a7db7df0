// Package listing applies the search and status predicates of the admin list views.
package listing

import (
	"net/url"
	"strings"
)

// StatusAll disables the status predicate.
const StatusAll = "all"

// Params carries the list view's search term and status filter.
type Params struct {
	Search string
	Status string
}

// ParseParams extracts search and status from URL query values.
func ParseParams(q url.Values) Params {
	return Params{
		Search: strings.TrimSpace(q.Get("search")),
		Status: strings.ToLower(strings.TrimSpace(q.Get("status"))),
	}
}

// FiltersStatus reports whether the status predicate is active.
func (p Params) FiltersStatus() bool {
	return p.Status != "" && p.Status != StatusAll
}

// MatchesSearch reports whether term is a case-insensitive substring of any field.
// An empty term matches everything.
func MatchesSearch(term string, fields ...string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// Filter returns the items satisfying both the search and the status predicate, in their original order.
// fields yields the searchable text of an item; status yields its filter value.
func Filter[T any](items []T, p Params, fields func(T) []string, status func(T) string) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if p.FiltersStatus() && !strings.EqualFold(status(it), p.Status) {
			continue
		}
		if !MatchesSearch(p.Search, fields(it)...) {
			continue
		}
		out = append(out, it)
	}
	return out
}
