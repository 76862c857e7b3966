// ABOUTME: MCP server assembly registering every tool, resource, and prompt
// ABOUTME: The CLI runs the returned server on the stdio transport
package handlers

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/rapport/cache"
)

// NewServer builds the MCP server over store.
func NewServer(store *cache.Store, version string) *mcp.Server {
	contactHandlers := NewContactHandlers(store)
	interactionHandlers := NewInteractionHandlers(store)
	reminderHandlers := NewReminderHandlers(store)
	topicHandlers := NewTopicHandlers(store)
	giftHandlers := NewGiftHandlers(store)
	resourceHandlers := NewResourceHandlers(store)
	promptHandlers := NewPromptHandlers(store)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "rapport",
		Version: version,
	}, nil)

	// Contacts
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_contact",
		Description: "Add a new contact",
	}, contactHandlers.AddContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_contacts",
		Description: "Search contacts by name, email, or phone, sorted by name",
	}, contactHandlers.FindContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_contact",
		Description: "Update an existing contact's information",
	}, contactHandlers.UpdateContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_contact",
		Description: "Delete a contact along with their reminders, gifts, and topics; interactions are kept",
	}, contactHandlers.DeleteContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "upcoming_birthdays",
		Description: "List contacts with a birthday in the next N days, soonest first",
	}, contactHandlers.UpcomingBirthdays)

	// Interactions
	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_interaction",
		Description: "Log an event involving one or more contacts",
	}, interactionHandlers.LogInteraction)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_interactions",
		Description: "Find interactions by contact, type, text, or date range, newest first",
	}, interactionHandlers.FindInteractions)

	// Reminders
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_reminder",
		Description: "Create a reminder about a contact",
	}, reminderHandlers.AddReminder)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_reminders",
		Description: "List reminders, earliest due first, with relative due labels",
	}, reminderHandlers.ListReminders)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "complete_reminder",
		Description: "Mark a reminder completed",
	}, reminderHandlers.CompleteReminder)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "snooze_reminder",
		Description: "Snooze a reminder for one day",
	}, reminderHandlers.SnoozeReminder)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "reactivate_reminder",
		Description: "Return a completed or snoozed reminder to pending",
	}, reminderHandlers.ReactivateReminder)

	// Topics
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_topic",
		Description: "Save a conversation topic for a contact",
	}, topicHandlers.AddTopic)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_topics",
		Description: "List conversation topics grouped by category",
	}, topicHandlers.ListTopics)

	// Gifts
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_gift",
		Description: "Record a gift idea or purchase for a contact",
	}, giftHandlers.AddGift)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_gifts",
		Description: "List gifts by contact, status, or text",
	}, giftHandlers.ListGifts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "advance_gift",
		Description: "Move a gift from idea to purchased, or purchased to given",
	}, giftHandlers.AdvanceGift)

	// Resources
	server.AddResource(&mcp.Resource{
		URI:      resourceScheme + "contacts",
		Name:     "contacts",
		MIMEType: "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: resourceScheme + "contacts/{id}",
		Name:        "contact",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResource(&mcp.Resource{
		URI:      resourceScheme + "dashboard",
		Name:     "dashboard",
		MIMEType: "text/plain",
	}, resourceHandlers.ReadResource)

	// Prompts
	server.AddPrompt(&mcp.Prompt{
		Name:        "catch-up",
		Description: "Briefing before talking to a contact",
		Arguments: []*mcp.PromptArgument{
			{Name: "contact_id", Description: "Contact ID", Required: true},
		},
	}, promptHandlers.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "gift-ideas",
		Description: "Brainstorm gifts that avoid repeats",
		Arguments: []*mcp.PromptArgument{
			{Name: "contact_id", Description: "Contact ID", Required: true},
			{Name: "occasion", Description: "Occasion for the gift"},
		},
	}, promptHandlers.GetPrompt)

	return server
}
