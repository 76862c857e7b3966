// ABOUTME: Derived reminder lists filtered by contact, type, status, text, and date range
// ABOUTME: Status filters use the effective status so expired snoozes read as pending
package views

import (
	"cmp"
	"slices"
	"time"

	"github.com/harperreed/rapport/models"
)

type ReminderCriteria struct {
	// Query matches title or description.
	Query     string
	Type      models.ReminderType
	Status    models.ReminderStatus
	ContactID string
	Dates     DateRange
	// OverdueOnly keeps pending reminders due before Now.
	OverdueOnly bool
	// Now evaluates snoozes and overdue checks. Zero means time.Now.
	Now time.Time
}

// Reminders returns matching reminders, earliest due first.
func Reminders(items []models.Reminder, c ReminderCriteria) []models.Reminder {
	now := c.Now
	if now.IsZero() {
		now = time.Now()
	}
	out := filter(items, func(r models.Reminder) bool {
		if c.Type != "" && r.Type != c.Type {
			return false
		}
		if c.ContactID != "" && r.ContactID != c.ContactID {
			return false
		}
		if c.Status != "" && r.EffectiveStatus(now) != c.Status {
			return false
		}
		if !c.Dates.Contains(r.Date) {
			return false
		}
		if c.OverdueOnly && !IsOverdue(r, now) {
			return false
		}
		return matchesText(c.Query, r.Title, r.Description)
	})
	slices.SortStableFunc(out, func(a, b models.Reminder) int {
		if n := a.Due().Compare(b.Due()); n != 0 {
			return n
		}
		return cmp.Compare(a.Title, b.Title)
	})
	return out
}
