// ABOUTME: Interaction MCP tool handlers
// ABOUTME: Implements log_interaction and find_interactions over the many-to-many contact links
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/rapport/cache"
	"github.com/harperreed/rapport/models"
	"github.com/harperreed/rapport/views"
)

type InteractionHandlers struct {
	base
}

func NewInteractionHandlers(store *cache.Store) *InteractionHandlers {
	return &InteractionHandlers{base: newBase(store)}
}

type LogInteractionInput struct {
	ContactIDs []string `json:"contact_ids" jsonschema:"IDs of every contact involved (at least one)"`
	Type       string   `json:"type" jsonschema:"life_event or relationship_event"`
	Date       string   `json:"date,omitempty" jsonschema:"When it happened (YYYY-MM-DD or RFC3339, defaults to now)"`
	Notes      string   `json:"notes,omitempty" jsonschema:"What happened"`
	Location   string   `json:"location,omitempty" jsonschema:"Where it happened"`
}

type InteractionOutput struct {
	ID         string   `json:"id"`
	Date       string   `json:"date"`
	Type       string   `json:"type"`
	Notes      string   `json:"notes,omitempty"`
	Location   string   `json:"location,omitempty"`
	ContactIDs []string `json:"contact_ids"`
	CreatedAt  string   `json:"created_at"`
	UpdatedAt  string   `json:"updated_at"`
}

func (h *InteractionHandlers) LogInteraction(ctx context.Context, _ *mcp.CallToolRequest, input LogInteractionInput) (*mcp.CallToolResult, InteractionOutput, error) {
	if len(input.ContactIDs) == 0 {
		return nil, InteractionOutput{}, fmt.Errorf("contact_ids needs at least one contact")
	}

	when := h.now()
	if input.Date != "" {
		parsed, err := parseDate("date", input.Date)
		if err != nil {
			return nil, InteractionOutput{}, err
		}
		when = parsed
	}

	interaction, err := h.store.Interactions.AddWithRelations(ctx, models.InteractionInput{
		Date:     when,
		Type:     models.InteractionType(input.Type),
		Notes:    input.Notes,
		Location: input.Location,
	}, input.ContactIDs)
	if err != nil {
		return nil, InteractionOutput{}, fmt.Errorf("failed to log interaction: %w", err)
	}
	return nil, interactionToOutput(interaction), nil
}

type FindInteractionsInput struct {
	ContactID string `json:"contact_id,omitempty" jsonschema:"Only interactions involving this contact"`
	Type      string `json:"type,omitempty" jsonschema:"Filter by type"`
	Query     string `json:"query,omitempty" jsonschema:"Search notes and location"`
	From      string `json:"from,omitempty" jsonschema:"Earliest date, inclusive (YYYY-MM-DD)"`
	To        string `json:"to,omitempty" jsonschema:"Latest date, inclusive (YYYY-MM-DD)"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 20)"`
}

type FindInteractionsOutput struct {
	Interactions []InteractionOutput `json:"interactions"`
}

func (h *InteractionHandlers) FindInteractions(ctx context.Context, _ *mcp.CallToolRequest, input FindInteractionsInput) (*mcp.CallToolResult, FindInteractionsOutput, error) {
	from, err := parseOptionalDate("from", input.From)
	if err != nil {
		return nil, FindInteractionsOutput{}, err
	}
	to, err := parseOptionalDate("to", input.To)
	if err != nil {
		return nil, FindInteractionsOutput{}, err
	}
	if to != nil && len(input.To) == len("2006-01-02") {
		// A bare end date covers that whole day.
		end := to.AddDate(0, 0, 1).Add(-1)
		to = &end
	}

	if err := refresh(ctx, h.store.Interactions, "interactions"); err != nil {
		return nil, FindInteractionsOutput{}, err
	}

	found := views.Interactions(h.store.Interactions.Items(), views.InteractionCriteria{
		Query:     input.Query,
		Type:      models.InteractionType(input.Type),
		ContactID: input.ContactID,
		Dates:     views.DateRange{From: from, To: to},
	})
	found = truncate(found, limitOf(input.Limit))

	result := make([]InteractionOutput, len(found))
	for i, it := range found {
		result[i] = interactionToOutput(it)
	}
	return nil, FindInteractionsOutput{Interactions: result}, nil
}

func interactionToOutput(i models.Interaction) InteractionOutput {
	ids := i.ContactIDs
	if ids == nil {
		ids = []string{}
	}
	return InteractionOutput{
		ID:         i.ID,
		Date:       formatInstant(i.Date),
		Type:       string(i.Type),
		Notes:      i.Notes,
		Location:   i.Location,
		ContactIDs: ids,
		CreatedAt:  formatInstant(i.CreatedAt),
		UpdatedAt:  formatInstant(i.UpdatedAt),
	}
}
