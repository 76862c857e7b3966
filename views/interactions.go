// ABOUTME: Derived interaction lists filtered by contact, type, text, and date range
// ABOUTME: Results are sorted newest first
package views

import (
	"slices"

	"github.com/harperreed/rapport/models"
)

type InteractionCriteria struct {
	// Query matches notes or location.
	Query     string
	Type      models.InteractionType
	ContactID string
	Dates     DateRange
}

func Interactions(items []models.Interaction, c InteractionCriteria) []models.Interaction {
	out := filter(items, func(i models.Interaction) bool {
		if c.Type != "" && i.Type != c.Type {
			return false
		}
		if c.ContactID != "" && !i.Involves(c.ContactID) {
			return false
		}
		if !c.Dates.Contains(i.Date) {
			return false
		}
		return matchesText(c.Query, i.Notes, i.Location)
	})
	slices.SortStableFunc(out, func(a, b models.Interaction) int {
		return b.Date.Compare(a.Date)
	})
	return out
}
