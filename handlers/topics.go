// ABOUTME: Conversation topic MCP tool handlers
// ABOUTME: Implements add_topic and list_topics with category grouping
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/rapport/cache"
	"github.com/harperreed/rapport/models"
	"github.com/harperreed/rapport/views"
)

type TopicHandlers struct {
	base
}

func NewTopicHandlers(store *cache.Store) *TopicHandlers {
	return &TopicHandlers{base: newBase(store)}
}

type AddTopicInput struct {
	ContactID     string   `json:"contact_id" jsonschema:"Contact who owns the topic (required)"`
	Name          string   `json:"name" jsonschema:"Topic (required)"`
	Category      string   `json:"category" jsonschema:"next_time, conversation_starter, evergreen, or avoid"`
	Notes         string   `json:"notes,omitempty" jsonschema:"Extra context"`
	LastDiscussed string   `json:"last_discussed,omitempty" jsonschema:"When it last came up (YYYY-MM-DD)"`
	ContactIDs    []string `json:"contact_ids,omitempty" jsonschema:"Other contacts the topic applies to"`
}

type TopicOutput struct {
	ID            string   `json:"id"`
	ContactID     string   `json:"contact_id"`
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	Notes         string   `json:"notes,omitempty"`
	LastDiscussed string   `json:"last_discussed,omitempty"`
	ContactIDs    []string `json:"contact_ids"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

func (h *TopicHandlers) AddTopic(ctx context.Context, _ *mcp.CallToolRequest, input AddTopicInput) (*mcp.CallToolResult, TopicOutput, error) {
	lastDiscussed, err := parseOptionalDate("last_discussed", input.LastDiscussed)
	if err != nil {
		return nil, TopicOutput{}, err
	}

	topic, err := h.store.Topics.AddWithRelations(ctx, models.TopicInput{
		ContactID:     input.ContactID,
		Name:          input.Name,
		Category:      models.TopicCategory(input.Category),
		Notes:         input.Notes,
		LastDiscussed: lastDiscussed,
	}, input.ContactIDs)
	if err != nil {
		return nil, TopicOutput{}, fmt.Errorf("failed to create topic: %w", err)
	}
	return nil, topicToOutput(topic), nil
}

type ListTopicsInput struct {
	ContactID string `json:"contact_id,omitempty" jsonschema:"Only topics linked to this contact"`
	Category  string `json:"category,omitempty" jsonschema:"Filter by category"`
	Query     string `json:"query,omitempty" jsonschema:"Search name and notes"`
}

type TopicGroupOutput struct {
	Category string        `json:"category"`
	Topics   []TopicOutput `json:"topics"`
}

type ListTopicsOutput struct {
	Groups []TopicGroupOutput `json:"groups"`
}

// ListTopics returns matching topics grouped by category.
func (h *TopicHandlers) ListTopics(ctx context.Context, _ *mcp.CallToolRequest, input ListTopicsInput) (*mcp.CallToolResult, ListTopicsOutput, error) {
	if err := refresh(ctx, h.store.Topics, "topics"); err != nil {
		return nil, ListTopicsOutput{}, err
	}

	found := views.Topics(h.store.Topics.Items(), views.TopicCriteria{
		Query:     input.Query,
		Category:  models.TopicCategory(input.Category),
		ContactID: input.ContactID,
	})

	out := ListTopicsOutput{Groups: []TopicGroupOutput{}}
	for _, g := range views.GroupTopics(found) {
		group := TopicGroupOutput{Category: string(g.Category)}
		for _, t := range g.Topics {
			group.Topics = append(group.Topics, topicToOutput(t))
		}
		out.Groups = append(out.Groups, group)
	}
	return nil, out, nil
}

func topicToOutput(t models.Topic) TopicOutput {
	ids := t.ContactIDs
	if ids == nil {
		ids = []string{}
	}
	return TopicOutput{
		ID:            t.ID,
		ContactID:     t.ContactID,
		Name:          t.Name,
		Category:      string(t.Category),
		Notes:         t.Notes,
		LastDiscussed: formatDate(t.LastDiscussed),
		ContactIDs:    ids,
		CreatedAt:     formatInstant(t.CreatedAt),
		UpdatedAt:     formatInstant(t.UpdatedAt),
	}
}
