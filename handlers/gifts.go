// ABOUTME: Gift MCP tool handlers
// ABOUTME: Implements add_gift, list_gifts, and advance_gift along idea, purchased, given
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/rapport/cache"
	"github.com/harperreed/rapport/models"
	"github.com/harperreed/rapport/views"
)

type GiftHandlers struct {
	base
}

func NewGiftHandlers(store *cache.Store) *GiftHandlers {
	return &GiftHandlers{base: newBase(store)}
}

type AddGiftInput struct {
	ContactID   string   `json:"contact_id" jsonschema:"Recipient contact ID (required)"`
	Name        string   `json:"name" jsonschema:"Gift (required)"`
	Description string   `json:"description,omitempty" jsonschema:"Details"`
	Price       *float64 `json:"price,omitempty" jsonschema:"Price, not negative"`
	Occasion    string   `json:"occasion,omitempty" jsonschema:"Occasion, e.g. birthday"`
	Status      string   `json:"status,omitempty" jsonschema:"idea, purchased, or given (default idea)"`
}

type GiftOutput struct {
	ID          string   `json:"id"`
	ContactID   string   `json:"contact_id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Status      string   `json:"status"`
	Reaction    string   `json:"reaction,omitempty"`
	Occasion    string   `json:"occasion,omitempty"`
	GivenDate   string   `json:"given_date,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

func (h *GiftHandlers) AddGift(ctx context.Context, _ *mcp.CallToolRequest, input AddGiftInput) (*mcp.CallToolResult, GiftOutput, error) {
	gift, err := h.store.Gifts.Add(ctx, models.GiftInput{
		ContactID:   input.ContactID,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Occasion:    input.Occasion,
		Status:      models.GiftStatus(input.Status),
	})
	if err != nil {
		return nil, GiftOutput{}, fmt.Errorf("failed to create gift: %w", err)
	}
	return nil, giftToOutput(gift), nil
}

type ListGiftsInput struct {
	ContactID string `json:"contact_id,omitempty" jsonschema:"Only gifts for this contact"`
	Status    string `json:"status,omitempty" jsonschema:"Filter by status"`
	Query     string `json:"query,omitempty" jsonschema:"Search name, description, and occasion"`
}

type ListGiftsOutput struct {
	Gifts []GiftOutput `json:"gifts"`
}

func (h *GiftHandlers) ListGifts(ctx context.Context, _ *mcp.CallToolRequest, input ListGiftsInput) (*mcp.CallToolResult, ListGiftsOutput, error) {
	if err := refresh(ctx, h.store.Gifts, "gifts"); err != nil {
		return nil, ListGiftsOutput{}, err
	}

	found := views.Gifts(h.store.Gifts.Items(), views.GiftCriteria{
		Query:     input.Query,
		Status:    models.GiftStatus(input.Status),
		ContactID: input.ContactID,
	})

	result := make([]GiftOutput, len(found))
	for i, g := range found {
		result[i] = giftToOutput(g)
	}
	return nil, ListGiftsOutput{Gifts: result}, nil
}

type AdvanceGiftInput struct {
	ID string `json:"id" jsonschema:"Gift ID (required)"`
}

func (h *GiftHandlers) AdvanceGift(ctx context.Context, _ *mcp.CallToolRequest, input AdvanceGiftInput) (*mcp.CallToolResult, GiftOutput, error) {
	if input.ID == "" {
		return nil, GiftOutput{}, fmt.Errorf("id is required")
	}
	gift, err := h.store.AdvanceGift(ctx, input.ID)
	if err != nil {
		return nil, GiftOutput{}, fmt.Errorf("failed to advance gift: %w", err)
	}
	return nil, giftToOutput(gift), nil
}

func giftToOutput(g models.Gift) GiftOutput {
	return GiftOutput{
		ID:          g.ID,
		ContactID:   g.ContactID,
		Name:        g.Name,
		Description: g.Description,
		Price:       g.Price,
		Status:      string(g.Status),
		Reaction:    string(g.Reaction),
		Occasion:    g.Occasion,
		GivenDate:   formatDate(g.GivenDate),
		CreatedAt:   formatInstant(g.CreatedAt),
		UpdatedAt:   formatInstant(g.UpdatedAt),
	}
}
