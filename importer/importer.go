// ABOUTME: Contact importer with deduplication against the cache
// ABOUTME: Creates new contacts and fills blank fields on matched ones
package importer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/harperreed/rapport/cache"
	"github.com/harperreed/rapport/models"
)

// RowError records a record the store rejected. The import carries on.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

type Result struct {
	Created int
	Updated int
	Skipped int
	Failed  []RowError
}

type ContactsImporter struct {
	contacts *cache.ContactController
	logger   *slog.Logger
}

func NewContactsImporter(contacts *cache.ContactController, logger *slog.Logger) *ContactsImporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContactsImporter{contacts: contacts, logger: logger}
}

// Import loads the contact list, then applies each record in order.
// Matched contacts only gain fields they were missing; nothing already
// set is overwritten.
func (ci *ContactsImporter) Import(ctx context.Context, records []Record) (Result, error) {
	var res Result
	if err := ci.contacts.Load(ctx); err != nil {
		return res, fmt.Errorf("failed to load contacts: %w", err)
	}
	matcher := NewContactMatcher(ci.contacts.Items())

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		existing, found := matcher.FindMatch(rec.Input.Email, rec.Input.Name)
		if !found {
			created, err := ci.contacts.Add(ctx, rec.Input)
			if err != nil {
				res.Failed = append(res.Failed, RowError{Line: rec.Line, Err: err})
				continue
			}
			matcher.Add(created)
			res.Created++
			continue
		}

		patch := fillBlanks(existing, rec.Input)
		if patch.Empty() {
			res.Skipped++
			continue
		}
		updated, err := ci.contacts.Update(ctx, existing.ID, patch)
		if err != nil {
			res.Failed = append(res.Failed, RowError{Line: rec.Line, Err: err})
			continue
		}
		matcher.Add(updated)
		res.Updated++
	}

	ci.logger.Info("contact import finished",
		"created", res.Created, "updated", res.Updated, "skipped", res.Skipped, "failed", len(res.Failed))
	return res, nil
}

func fillBlanks(c models.Contact, in models.ContactInput) models.ContactPatch {
	var p models.ContactPatch
	if c.Email == "" && in.Email != "" {
		p.Email = &in.Email
	}
	if c.Phone == "" && in.Phone != "" {
		p.Phone = &in.Phone
	}
	if c.RelationshipType == "" && in.RelationshipType != "" {
		p.RelationshipType = &in.RelationshipType
	}
	if c.Birthday == nil && in.Birthday != nil {
		p.Birthday = in.Birthday
	}
	return p
}
