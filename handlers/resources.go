// ABOUTME: MCP resource handlers for exposing relationship data
// ABOUTME: Provides read-only access to contacts and the dashboard via rapport:// URIs
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/rapport/cache"
	"github.com/harperreed/rapport/views"
)

const resourceScheme = "rapport://"

type ResourceHandlers struct {
	base
}

func NewResourceHandlers(store *cache.Store) *ResourceHandlers {
	return &ResourceHandlers{base: newBase(store)}
}

// ReadResource handles resource read requests.
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", resourceScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, resourceScheme), "/")
	switch parts[0] {
	case "contacts":
		if len(parts) == 1 || parts[1] == "" {
			return h.readAllContacts(ctx, uri)
		}
		return h.readContact(ctx, uri, parts[1])
	case "dashboard":
		return h.readDashboard(ctx, uri)
	default:
		return nil, mcp.ResourceNotFoundError(uri)
	}
}

func (h *ResourceHandlers) readAllContacts(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	if err := refresh(ctx, h.store.Contacts, "contacts"); err != nil {
		return nil, err
	}
	contacts := views.Contacts(h.store.Contacts.Items(), views.ContactCriteria{})

	out := make([]ContactOutput, len(contacts))
	for i, c := range contacts {
		out[i] = contactToOutput(c, h.now())
	}
	return jsonResource(uri, out)
}

type contactDetail struct {
	Contact      ContactOutput       `json:"contact"`
	Interactions []InteractionOutput `json:"interactions"`
	Reminders    []ReminderOutput    `json:"reminders"`
	Topics       []TopicOutput       `json:"topics"`
	Gifts        []GiftOutput        `json:"gifts"`
}

func (h *ResourceHandlers) readContact(ctx context.Context, uri, id string) (*mcp.ReadResourceResult, error) {
	contact, err := h.store.Contacts.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contact: %w", err)
	}
	if err := h.store.LoadAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to load related data: %w", err)
	}

	now := h.now()
	detail := contactDetail{
		Contact:      contactToOutput(contact, now),
		Interactions: []InteractionOutput{},
		Reminders:    []ReminderOutput{},
		Topics:       []TopicOutput{},
		Gifts:        []GiftOutput{},
	}
	for _, i := range views.Interactions(h.store.Interactions.Items(), views.InteractionCriteria{ContactID: id}) {
		detail.Interactions = append(detail.Interactions, interactionToOutput(i))
	}
	for _, r := range views.Reminders(h.store.Reminders.Items(), views.ReminderCriteria{ContactID: id, Now: now}) {
		detail.Reminders = append(detail.Reminders, reminderToOutput(r, now))
	}
	for _, t := range views.Topics(h.store.Topics.Items(), views.TopicCriteria{ContactID: id}) {
		detail.Topics = append(detail.Topics, topicToOutput(t))
	}
	for _, g := range views.Gifts(h.store.Gifts.Items(), views.GiftCriteria{ContactID: id}) {
		detail.Gifts = append(detail.Gifts, giftToOutput(g))
	}
	return jsonResource(uri, detail)
}

func (h *ResourceHandlers) readDashboard(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	if err := h.store.LoadAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}
	stats := views.GenerateDashboardStats(views.DashboardInput{
		Contacts:     h.store.Contacts.Items(),
		Interactions: h.store.Interactions.Items(),
		Reminders:    h.store.Reminders.Items(),
		Gifts:        h.store.Gifts.Items(),
		Now:          h.now(),
	})
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     views.RenderDashboard(stats),
		},
	}}, nil
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
