// ABOUTME: Contact MCP tool handlers
// ABOUTME: Implements add_contact, find_contacts, update_contact, delete_contact, and upcoming_birthdays
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/rapport/cache"
	"github.com/harperreed/rapport/models"
	"github.com/harperreed/rapport/views"
)

type ContactHandlers struct {
	base
}

func NewContactHandlers(store *cache.Store) *ContactHandlers {
	return &ContactHandlers{base: newBase(store)}
}

type AddContactInput struct {
	Name             string `json:"name" jsonschema:"Contact name (required)"`
	Email            string `json:"email,omitempty" jsonschema:"Contact email address"`
	Phone            string `json:"phone,omitempty" jsonschema:"Contact phone number"`
	RelationshipType string `json:"relationship_type,omitempty" jsonschema:"How you know them, e.g. friend, family, colleague"`
	Birthday         string `json:"birthday,omitempty" jsonschema:"Birthday as YYYY-MM-DD"`
	ProfilePicture   string `json:"profile_picture,omitempty" jsonschema:"URL of a profile picture"`
}

type ContactOutput struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email,omitempty"`
	Phone             string `json:"phone,omitempty"`
	RelationshipType  string `json:"relationship_type,omitempty"`
	Birthday          string `json:"birthday,omitempty"`
	DaysUntilBirthday *int   `json:"days_until_birthday,omitempty"`
	ProfilePicture    string `json:"profile_picture,omitempty"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}

func (h *ContactHandlers) AddContact(ctx context.Context, _ *mcp.CallToolRequest, input AddContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	birthday, err := parseOptionalDate("birthday", input.Birthday)
	if err != nil {
		return nil, ContactOutput{}, err
	}

	contact, err := h.store.Contacts.Add(ctx, models.ContactInput{
		Name:             input.Name,
		Email:            input.Email,
		Phone:            input.Phone,
		RelationshipType: input.RelationshipType,
		Birthday:         birthday,
		ProfilePicture:   input.ProfilePicture,
	})
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to create contact: %w", err)
	}

	return nil, contactToOutput(contact, h.now()), nil
}

type FindContactsInput struct {
	Query            string `json:"query,omitempty" jsonschema:"Search query (matches name, email, or phone)"`
	RelationshipType string `json:"relationship_type,omitempty" jsonschema:"Filter by relationship type"`
	Limit            int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 20)"`
}

type FindContactsOutput struct {
	Contacts []ContactOutput `json:"contacts"`
}

func (h *ContactHandlers) FindContacts(ctx context.Context, _ *mcp.CallToolRequest, input FindContactsInput) (*mcp.CallToolResult, FindContactsOutput, error) {
	if err := refresh(ctx, h.store.Contacts, "contacts"); err != nil {
		return nil, FindContactsOutput{}, err
	}

	found := views.Contacts(h.store.Contacts.Items(), views.ContactCriteria{
		Query:            input.Query,
		RelationshipType: input.RelationshipType,
	})
	found = truncate(found, limitOf(input.Limit))

	result := make([]ContactOutput, len(found))
	for i, c := range found {
		result[i] = contactToOutput(c, h.now())
	}
	return nil, FindContactsOutput{Contacts: result}, nil
}

type UpdateContactInput struct {
	ID               string  `json:"id" jsonschema:"Contact ID (required)"`
	Name             *string `json:"name,omitempty" jsonschema:"Updated contact name"`
	Email            *string `json:"email,omitempty" jsonschema:"Updated email address; empty clears it"`
	Phone            *string `json:"phone,omitempty" jsonschema:"Updated phone number; empty clears it"`
	RelationshipType *string `json:"relationship_type,omitempty" jsonschema:"Updated relationship type"`
	Birthday         *string `json:"birthday,omitempty" jsonschema:"Updated birthday as YYYY-MM-DD; empty clears it"`
	ProfilePicture   *string `json:"profile_picture,omitempty" jsonschema:"Updated profile picture URL"`
}

func (h *ContactHandlers) UpdateContact(ctx context.Context, _ *mcp.CallToolRequest, input UpdateContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	if input.ID == "" {
		return nil, ContactOutput{}, fmt.Errorf("id is required")
	}

	patch := models.ContactPatch{
		Name:             input.Name,
		Email:            input.Email,
		Phone:            input.Phone,
		RelationshipType: input.RelationshipType,
		ProfilePicture:   input.ProfilePicture,
	}
	if input.Birthday != nil {
		if *input.Birthday == "" {
			patch.ClearBirthday = true
		} else {
			b, err := parseDate("birthday", *input.Birthday)
			if err != nil {
				return nil, ContactOutput{}, err
			}
			patch.Birthday = &b
		}
	}

	contact, err := h.store.Contacts.Update(ctx, input.ID, patch)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to update contact: %w", err)
	}
	return nil, contactToOutput(contact, h.now()), nil
}

type DeleteContactInput struct {
	ID string `json:"id" jsonschema:"Contact ID (required)"`
}

// DeleteContact also removes the contact's reminders, gifts, and owned topics.
func (h *ContactHandlers) DeleteContact(ctx context.Context, _ *mcp.CallToolRequest, input DeleteContactInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if input.ID == "" {
		return nil, DeleteOutput{}, fmt.Errorf("id is required")
	}
	if err := h.store.DeleteContact(ctx, input.ID); err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("failed to delete contact: %w", err)
	}
	return nil, DeleteOutput{Success: true, Message: fmt.Sprintf("Deleted contact %s", input.ID)}, nil
}

type UpcomingBirthdaysInput struct {
	Days int `json:"days,omitempty" jsonschema:"Look-ahead window in days (default 30)"`
}

type UpcomingBirthdaysOutput struct {
	Contacts []ContactOutput `json:"contacts"`
}

func (h *ContactHandlers) UpcomingBirthdays(ctx context.Context, _ *mcp.CallToolRequest, input UpcomingBirthdaysInput) (*mcp.CallToolResult, UpcomingBirthdaysOutput, error) {
	if err := refresh(ctx, h.store.Contacts, "contacts"); err != nil {
		return nil, UpcomingBirthdaysOutput{}, err
	}

	within := input.Days
	if within <= 0 {
		within = views.BirthdayWindow
	}
	upcoming := views.UpcomingBirthdays(h.store.Contacts.Items(), h.now(), within)

	result := make([]ContactOutput, len(upcoming))
	for i, u := range upcoming {
		result[i] = contactToOutput(u.Contact, h.now())
	}
	return nil, UpcomingBirthdaysOutput{Contacts: result}, nil
}

func contactToOutput(c models.Contact, now time.Time) ContactOutput {
	out := ContactOutput{
		ID:               c.ID,
		Name:             c.Name,
		Email:            c.Email,
		Phone:            c.Phone,
		RelationshipType: c.RelationshipType,
		Birthday:         formatDate(c.Birthday),
		ProfilePicture:   c.ProfilePicture,
		CreatedAt:        formatInstant(c.CreatedAt),
		UpdatedAt:        formatInstant(c.UpdatedAt),
	}
	if c.Birthday != nil {
		days := views.DaysUntilBirthday(*c.Birthday, now)
		out.DaysUntilBirthday = &days
	}
	return out
}
