// ABOUTME: MCP prompt handlers for reusable relationship workflow templates
// ABOUTME: Builds catch-up briefings and gift brainstorming prompts from cached data
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/rapport/cache"
	"github.com/harperreed/rapport/models"
	"github.com/harperreed/rapport/views"
)

type PromptHandlers struct {
	base
}

func NewPromptHandlers(store *cache.Store) *PromptHandlers {
	return &PromptHandlers{base: newBase(store)}
}

// GetPrompt generates the prompt message based on the template.
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	switch request.Params.Name {
	case "catch-up":
		return h.getCatchUpPrompt(ctx, request.Params.Arguments)
	case "gift-ideas":
		return h.getGiftIdeasPrompt(ctx, request.Params.Arguments)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func (h *PromptHandlers) contactFor(ctx context.Context, args map[string]string) (models.Contact, error) {
	id, ok := args["contact_id"]
	if !ok || id == "" {
		return models.Contact{}, fmt.Errorf("contact_id is required")
	}
	contact, err := h.store.Contacts.Get(ctx, id)
	if err != nil {
		return models.Contact{}, fmt.Errorf("failed to fetch contact: %w", err)
	}
	if err := h.store.LoadAll(ctx); err != nil {
		return models.Contact{}, fmt.Errorf("failed to load related data: %w", err)
	}
	return contact, nil
}

func (h *PromptHandlers) getCatchUpPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	contact, err := h.contactFor(ctx, args)
	if err != nil {
		return nil, err
	}
	now := h.now()

	var promptText strings.Builder
	promptText.WriteString("I'm about to catch up with someone. Help me prepare.\n\n")
	promptText.WriteString(fmt.Sprintf("Name: %s\n", contact.Name))
	if contact.RelationshipType != "" {
		promptText.WriteString(fmt.Sprintf("Relationship: %s\n", contact.RelationshipType))
	}
	if contact.Birthday != nil {
		promptText.WriteString(fmt.Sprintf("Birthday: %s (in %d days)\n",
			contact.Birthday.Format("January 2"), views.DaysUntilBirthday(*contact.Birthday, now)))
	}

	recent := views.Interactions(h.store.Interactions.Items(), views.InteractionCriteria{ContactID: contact.ID})
	if len(recent) > 0 {
		promptText.WriteString("\nRecent interactions:\n")
		for _, i := range truncate(recent, 5) {
			promptText.WriteString(fmt.Sprintf("- %s (%s): %s\n", i.Date.Format("2006-01-02"), i.Type, i.Notes))
		}
	}

	groups := views.GroupTopics(views.Topics(h.store.Topics.Items(), views.TopicCriteria{ContactID: contact.ID}))
	for _, g := range groups {
		promptText.WriteString(fmt.Sprintf("\nTopics (%s):\n", g.Category))
		for _, t := range g.Topics {
			promptText.WriteString(fmt.Sprintf("- %s\n", t.Name))
		}
	}

	pending := views.Reminders(h.store.Reminders.Items(), views.ReminderCriteria{
		ContactID: contact.ID, Status: models.ReminderPending, Now: now,
	})
	if len(pending) > 0 {
		promptText.WriteString("\nOpen reminders:\n")
		for _, r := range pending {
			promptText.WriteString(fmt.Sprintf("- %s (%s)\n", r.Title, views.RelativeDateLabel(r.Date, now)))
		}
	}

	promptText.WriteString("\nPlease suggest:")
	promptText.WriteString("\n1. A few natural ways to open the conversation")
	promptText.WriteString("\n2. Follow-ups on what happened since we last spoke")
	promptText.WriteString("\n3. Anything to steer clear of")

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Catch-up briefing for %s", contact.Name),
		Messages: []*mcp.PromptMessage{
			{
				Role: "user",
				Content: &mcp.TextContent{
					Text: promptText.String(),
				},
			},
		},
	}, nil
}

func (h *PromptHandlers) getGiftIdeasPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	contact, err := h.contactFor(ctx, args)
	if err != nil {
		return nil, err
	}

	var promptText strings.Builder
	promptText.WriteString(fmt.Sprintf("Help me brainstorm gift ideas for %s.\n", contact.Name))
	if occasion := args["occasion"]; occasion != "" {
		promptText.WriteString(fmt.Sprintf("Occasion: %s\n", occasion))
	}

	for _, g := range views.GiftsByStatus(views.Gifts(h.store.Gifts.Items(), views.GiftCriteria{ContactID: contact.ID})) {
		if len(g.Gifts) == 0 {
			continue
		}
		promptText.WriteString(fmt.Sprintf("\nGifts already %s:\n", g.Status))
		for _, gift := range g.Gifts {
			line := fmt.Sprintf("- %s", gift.Name)
			if gift.Reaction != "" {
				line += fmt.Sprintf(" (they %s it)", gift.Reaction)
			}
			promptText.WriteString(line + "\n")
		}
	}

	topics := views.Topics(h.store.Topics.Items(), views.TopicCriteria{ContactID: contact.ID})
	if len(topics) > 0 {
		promptText.WriteString("\nThings they care about:\n")
		for _, t := range topics {
			if t.Category == models.TopicAvoid {
				continue
			}
			promptText.WriteString(fmt.Sprintf("- %s\n", t.Name))
		}
	}

	promptText.WriteString("\nSuggest five ideas that don't repeat earlier gifts, with a rough price for each.")

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Gift ideas for %s", contact.Name),
		Messages: []*mcp.PromptMessage{
			{
				Role: "user",
				Content: &mcp.TextContent{
					Text: promptText.String(),
				},
			},
		},
	}, nil
}
