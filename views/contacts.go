// ABOUTME: Derived contact lists filtered by search, relationship, group, and birthday
// ABOUTME: Results are always sorted by name after filtering
package views

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/harperreed/rapport/models"
)

type ContactCriteria struct {
	// Query matches name, email, or phone.
	Query            string
	RelationshipType string
	Group            *models.Group
}

// Contacts returns the contacts matching every criterion, sorted by name.
func Contacts(items []models.Contact, c ContactCriteria) []models.Contact {
	out := filter(items, func(ct models.Contact) bool {
		if c.Group != nil && !c.Group.Has(ct.ID) {
			return false
		}
		if c.RelationshipType != "" && ct.RelationshipType != c.RelationshipType {
			return false
		}
		return matchesText(c.Query, ct.Name, ct.Email, ct.Phone)
	})
	slices.SortStableFunc(out, compareNames)
	return out
}

func compareNames(a, b models.Contact) int {
	if n := cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); n != 0 {
		return n
	}
	return cmp.Compare(a.Name, b.Name)
}

type UpcomingBirthday struct {
	Contact models.Contact
	Days    int
}

// UpcomingBirthdays lists contacts whose birthday falls within the next
// within days, soonest first.
func UpcomingBirthdays(items []models.Contact, now time.Time, within int) []UpcomingBirthday {
	var out []UpcomingBirthday
	for _, c := range items {
		if c.Birthday == nil {
			continue
		}
		if days := DaysUntilBirthday(*c.Birthday, now); days <= within {
			out = append(out, UpcomingBirthday{Contact: c, Days: days})
		}
	}
	slices.SortStableFunc(out, func(a, b UpcomingBirthday) int {
		if n := cmp.Compare(a.Days, b.Days); n != 0 {
			return n
		}
		return compareNames(a.Contact, b.Contact)
	})
	return out
}
