// ABOUTME: Reminder MCP tool handlers
// ABOUTME: Implements add_reminder, list_reminders, complete_reminder, snooze_reminder, and reactivate_reminder
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

type ReminderHandlers struct {
	base
}

func NewReminderHandlers(store *cache.Store) *ReminderHandlers {
	return &ReminderHandlers{base: newBase(store)}
}

type AddReminderInput struct {
	Title         string `json:"title" jsonschema:"What to be reminded of (required)"`
	ContactID     string `json:"contact_id" jsonschema:"Contact the reminder is about (required)"`
	Type          string `json:"type" jsonschema:"birthday, check_in, follow_up, or custom"`
	Date          string `json:"date" jsonschema:"Due date as YYYY-MM-DD (required)"`
	Time          string `json:"time,omitempty" jsonschema:"Due time as HH:MM"`
	Description   string `json:"description,omitempty" jsonschema:"Longer description"`
	Recurrence    string `json:"recurrence,omitempty" jsonschema:"none, daily, weekly, monthly, or yearly (default none)"`
	InteractionID string `json:"interaction_id,omitempty" jsonschema:"Interaction that prompted this reminder"`
}

type ReminderOutput struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	Type          string `json:"type"`
	Date          string `json:"date"`
	Time          string `json:"time,omitempty"`
	When          string `json:"when"`
	ContactID     string `json:"contact_id"`
	Status        string `json:"status"`
	Overdue       bool   `json:"overdue"`
	Recurrence    string `json:"recurrence"`
	SnoozedUntil  string `json:"snoozed_until,omitempty"`
	InteractionID string `json:"interaction_id,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

func (h *ReminderHandlers) AddReminder(ctx context.Context, _ *mcp.CallToolRequest, input AddReminderInput) (*mcp.CallToolResult, ReminderOutput, error) {
	if input.Date == "" {
		return nil, ReminderOutput{}, fmt.Errorf("date is required")
	}
	date, err := parseDate("date", input.Date)
	if err != nil {
		return nil, ReminderOutput{}, err
	}

	reminder, err := h.store.Reminders.Add(ctx, models.ReminderInput{
		Title:         input.Title,
		Description:   input.Description,
		Type:          models.ReminderType(input.Type),
		Date:          date,
		Time:          input.Time,
		ContactID:     input.ContactID,
		Recurrence:    models.Recurrence(input.Recurrence),
		InteractionID: input.InteractionID,
	})
	if err != nil {
		return nil, ReminderOutput{}, fmt.Errorf("failed to create reminder: %w", err)
	}
	return nil, reminderToOutput(reminder, h.now()), nil
}

type ListRemindersInput struct {
	ContactID   string `json:"contact_id,omitempty" jsonschema:"Only reminders for this contact"`
	Status      string `json:"status,omitempty" jsonschema:"pending, completed, or snoozed; expired snoozes count as pending"`
	Type        string `json:"type,omitempty" jsonschema:"Filter by reminder type"`
	Query       string `json:"query,omitempty" jsonschema:"Search title and description"`
	OverdueOnly bool   `json:"overdue_only,omitempty" jsonschema:"Only pending reminders already past due"`
	Limit       int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 20)"`
}

type ListRemindersOutput struct {
	Reminders []ReminderOutput `json:"reminders"`
}

func (h *ReminderHandlers) ListReminders(ctx context.Context, _ *mcp.CallToolRequest, input ListRemindersInput) (*mcp.CallToolResult, ListRemindersOutput, error) {
	if err := refresh(ctx, h.store.Reminders, "reminders"); err != nil {
		return nil, ListRemindersOutput{}, err
	}

	found := views.Reminders(h.store.Reminders.Items(), views.ReminderCriteria{
		Query:       input.Query,
		Type:        models.ReminderType(input.Type),
		Status:      models.ReminderStatus(input.Status),
		ContactID:   input.ContactID,
		OverdueOnly: input.OverdueOnly,
		Now:         h.now(),
	})
	found = truncate(found, limitOf(input.Limit))

	result := make([]ReminderOutput, len(found))
	for i, r := range found {
		result[i] = reminderToOutput(r, h.now())
	}
	return nil, ListRemindersOutput{Reminders: result}, nil
}

type ReminderIDInput struct {
	ID string `json:"id" jsonschema:"Reminder ID (required)"`
}

func (h *ReminderHandlers) CompleteReminder(ctx context.Context, _ *mcp.CallToolRequest, input ReminderIDInput) (*mcp.CallToolResult, ReminderOutput, error) {
	return h.transition(ctx, input.ID, "complete", h.store.CompleteReminder)
}

// SnoozeReminder pushes the reminder out by one day from now.
func (h *ReminderHandlers) SnoozeReminder(ctx context.Context, _ *mcp.CallToolRequest, input ReminderIDInput) (*mcp.CallToolResult, ReminderOutput, error) {
	return h.transition(ctx, input.ID, "snooze", h.store.SnoozeReminder)
}

func (h *ReminderHandlers) ReactivateReminder(ctx context.Context, _ *mcp.CallToolRequest, input ReminderIDInput) (*mcp.CallToolResult, ReminderOutput, error) {
	return h.transition(ctx, input.ID, "reactivate", h.store.ReactivateReminder)
}

func (h *ReminderHandlers) transition(ctx context.Context, id, verb string, fn func(context.Context, string) (models.Reminder, error)) (*mcp.CallToolResult, ReminderOutput, error) {
	if id == "" {
		return nil, ReminderOutput{}, fmt.Errorf("id is required")
	}
	r, err := fn(ctx, id)
	if err != nil {
		return nil, ReminderOutput{}, fmt.Errorf("failed to %s reminder: %w", verb, err)
	}
	return nil, reminderToOutput(r, h.now()), nil
}

func reminderToOutput(r models.Reminder, now time.Time) ReminderOutput {
	out := ReminderOutput{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		Type:          string(r.Type),
		Date:          r.Date.Format("2006-01-02"),
		Time:          r.Time,
		When:          views.RelativeDateLabel(r.Date, now),
		ContactID:     r.ContactID,
		Status:        string(r.EffectiveStatus(now)),
		Overdue:       views.IsOverdue(r, now),
		Recurrence:    string(r.Recurrence),
		InteractionID: r.InteractionID,
		CreatedAt:     formatInstant(r.CreatedAt),
		UpdatedAt:     formatInstant(r.UpdatedAt),
	}
	if r.SnoozeActive(now) {
		out.SnoozedUntil = formatInstant(*r.SnoozedUntil)
	}
	return out
}
