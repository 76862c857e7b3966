// ABOUTME: Shared plumbing for MCP tool handlers
// ABOUTME: Holds the cache store, the clock, and date parsing for tool arguments
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/rapport/cache"
	"github.com/harperreed/rapport/db"
)

const defaultLimit = 20

type base struct {
	store *cache.Store
	now   func() time.Time
}

func newBase(store *cache.Store) base {
	return base{store: store, now: time.Now}
}

// refresh reloads a controller so tool results reflect writes made by
// other processes sharing the same store.
func refresh(ctx context.Context, l interface{ Load(context.Context) error }, what string) error {
	if err := l.Load(ctx); err != nil {
		return fmt.Errorf("failed to load %s: %w", what, err)
	}
	return nil
}

// parseDate accepts YYYY-MM-DD or RFC3339.
func parseDate(field, s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q (use YYYY-MM-DD or RFC3339)", field, s)
	}
	return t, nil
}

func parseOptionalDate(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseDate(field, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}

func formatInstant(t time.Time) string {
	return db.FormatTimestamp(t)
}

func limitOf(n int) int {
	if n <= 0 {
		return defaultLimit
	}
	return n
}

func truncate[T any](items []T, limit int) []T {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}

type DeleteOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
