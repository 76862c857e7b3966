// ABOUTME: Derived gift lists filtered by contact, status, and text
// ABOUTME: Also groups gifts along the idea, purchased, given progression
package views

import (
	"cmp"
	"slices"
	"strings"

	"github.com/harperreed/rapport/models"
)

type GiftCriteria struct {
	// Query matches name, description, or occasion.
	Query     string
	Status    models.GiftStatus
	ContactID string
}

func Gifts(items []models.Gift, c GiftCriteria) []models.Gift {
	out := filter(items, func(g models.Gift) bool {
		if c.Status != "" && g.Status != c.Status {
			return false
		}
		if c.ContactID != "" && g.ContactID != c.ContactID {
			return false
		}
		return matchesText(c.Query, g.Name, g.Description, g.Occasion)
	})
	slices.SortStableFunc(out, func(a, b models.Gift) int {
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return out
}

type GiftGroup struct {
	Status models.GiftStatus
	Gifts  []models.Gift
}

// GiftsByStatus returns one group per status in progression order, empty groups included.
func GiftsByStatus(items []models.Gift) []GiftGroup {
	sorted := Gifts(items, GiftCriteria{})
	out := []GiftGroup{{Status: models.GiftIdea}, {Status: models.GiftPurchased}, {Status: models.GiftGiven}}
	for i := range out {
		out[i].Gifts = filter(sorted, func(g models.Gift) bool { return g.Status == out[i].Status })
	}
	return out
}
