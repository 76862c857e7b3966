// ABOUTME: Shared helpers for the derived view builders
// ABOUTME: Case-insensitive text search and inclusive date-range checks
package views

import (
	"strings"
	"time"
)

// DateRange bounds a date field. Either end may be nil; both ends are inclusive.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

func (r DateRange) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// matchesText reports whether any field contains query, ignoring case.
// An empty query matches everything.
func matchesText(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}
