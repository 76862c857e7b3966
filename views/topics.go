// ABOUTME: Derived topic lists and grouping of topics by conversation category
// ABOUTME: Groups follow the canonical category order and skip empty categories
package views

import (
	"cmp"
	"slices"
	"strings"

	"github.com/harperreed/rapport/models"
)

type TopicCriteria struct {
	// Query matches name or notes.
	Query     string
	Category  models.TopicCategory
	ContactID string
}

// Topics returns matching topics sorted by name. ContactID matches any
// linked contact, not only the owner.
func Topics(items []models.Topic, c TopicCriteria) []models.Topic {
	out := filter(items, func(t models.Topic) bool {
		if c.Category != "" && t.Category != c.Category {
			return false
		}
		if c.ContactID != "" && t.ContactID != c.ContactID && !slices.Contains(t.ContactIDs, c.ContactID) {
			return false
		}
		return matchesText(c.Query, t.Name, t.Notes)
	})
	slices.SortStableFunc(out, func(a, b models.Topic) int {
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return out
}

type TopicGroup struct {
	Category models.TopicCategory
	Topics   []models.Topic
}

// GroupTopics buckets topics by category in models.TopicCategories order.
// Topics with a category outside that list are dropped.
func GroupTopics(items []models.Topic) []TopicGroup {
	sorted := Topics(items, TopicCriteria{})
	var out []TopicGroup
	for _, cat := range models.TopicCategories {
		var group []models.Topic
		for _, t := range sorted {
			if t.Category == cat {
				group = append(group, t)
			}
		}
		if len(group) > 0 {
			out = append(out, TopicGroup{Category: cat, Topics: group})
		}
	}
	return out
}
