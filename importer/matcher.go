// ABOUTME: Contact deduplication and matching logic
// ABOUTME: Finds existing contacts by email, or by name when a record has no email
package importer

import (
	"strings"

	"github.com/harperreed/rapport/models"
)

type ContactMatcher struct {
	byEmail map[string]models.Contact
	byName  map[string]models.Contact
}

// NewContactMatcher creates a matcher from existing contacts.
func NewContactMatcher(contacts []models.Contact) *ContactMatcher {
	m := &ContactMatcher{
		byEmail: make(map[string]models.Contact),
		byName:  make(map[string]models.Contact),
	}
	for _, c := range contacts {
		m.Add(c)
	}
	return m
}

// FindMatch prefers email. Name is only consulted when email is blank,
// so two people sharing a name but not an address stay separate.
func (m *ContactMatcher) FindMatch(email, name string) (models.Contact, bool) {
	if e := normalize(email); e != "" {
		c, ok := m.byEmail[e]
		return c, ok
	}
	c, ok := m.byName[normalize(name)]
	return c, ok
}

// Add registers a contact so later records in the same import match it.
func (m *ContactMatcher) Add(c models.Contact) {
	if e := normalize(c.Email); e != "" {
		m.byEmail[e] = c
	}
	if n := normalize(c.Name); n != "" {
		m.byName[n] = c
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
