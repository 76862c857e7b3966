// ABOUTME: Conversation topic CLI commands
// ABOUTME: Saves topics for contacts, lists them by category, and marks them discussed
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harperreed/rapport/models"
	"github.com/harperreed/rapport/views"
)

func newTopicCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "topic",
		Aliases: []string{"topics"},
		Short:   "Manage conversation topics",
	}
	cmd.AddCommand(newTopicAddCmd(a))
	cmd.AddCommand(newTopicListCmd(a))
	cmd.AddCommand(newTopicDiscussedCmd(a))
	cmd.AddCommand(newTopicShareCmd(a))
	return cmd
}

func newTopicAddCmd(a *app) *cobra.Command {
	var in models.TopicInput
	var category string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Save a topic to bring up with a contact",
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Category = models.TopicCategory(category)
			store, err := a.open()
			if err != nil {
				return err
			}
			topic, err := store.Topics.AddWithRelations(cmd.Context(), in, in.ContactIDs)
			if err != nil {
				return fmt.Errorf("failed to create topic: %w", err)
			}
			success(cmd.OutOrStdout(), "Topic saved: %s [%s] (ID: %s)", topic.Name, topic.Category, topic.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.ContactID, "contact", "", "Contact who owns the topic (required)")
	cmd.Flags().StringVar(&in.Name, "name", "", "Topic (required)")
	cmd.Flags().StringVar(&category, "category", string(models.TopicNextTime), "next_time, conversation_starter, evergreen, or avoid")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "Extra context")
	cmd.Flags().StringSliceVar(&in.ContactIDs, "also", nil, "Other contacts the topic applies to")
	return cmd
}

func newTopicListCmd(a *app) *cobra.Command {
	var criteria views.TopicCriteria
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List topics grouped by category",
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria.Category = models.TopicCategory(category)
			store, err := a.open()
			if err != nil {
				return err
			}
			if err := store.Topics.Load(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load topics: %w", err)
			}

			groups := views.GroupTopics(views.Topics(store.Topics.Items(), criteria))
			out := cmd.OutOrStdout()
			if len(groups) == 0 {
				fmt.Fprintln(out, "No topics found")
				return nil
			}
			for _, g := range groups {
				fmt.Fprintln(out, headerStyle.Render(string(g.Category)))
				for _, t := range g.Topics {
					line := fmt.Sprintf("  %s  %s", t.ID, t.Name)
					if t.LastDiscussed != nil {
						line += mutedStyle.Render(" (discussed " + t.LastDiscussed.Format("Jan 2") + ")")
					}
					fmt.Fprintln(out, line)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&criteria.ContactID, "contact", "", "Only topics linked to this contact")
	cmd.Flags().StringVar(&category, "category", "", "Filter by category")
	cmd.Flags().StringVar(&criteria.Query, "query", "", "Search name and notes")
	return cmd
}

func newTopicDiscussedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "discussed <id>",
		Short: "Record that a topic came up today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.open()
			if err != nil {
				return err
			}
			today := models.DateOnly(a.clock())
			topic, err := store.Topics.Update(cmd.Context(), args[0], models.TopicPatch{LastDiscussed: &today})
			if err != nil {
				return fmt.Errorf("failed to update topic: %w", err)
			}
			success(cmd.OutOrStdout(), "Topic discussed: %s", topic.Name)
			return nil
		},
	}
}

func newTopicShareCmd(a *app) *cobra.Command {
	var contactIDs []string

	cmd := &cobra.Command{
		Use:   "share <id>",
		Short: "Replace the contacts a topic applies to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.open()
			if err != nil {
				return err
			}
			topic, err := store.Topics.SetRelations(cmd.Context(), args[0], contactIDs)
			if err != nil {
				return fmt.Errorf("failed to update topic contacts: %w", err)
			}
			success(cmd.OutOrStdout(), "Topic %s now linked to %d contact(s)", topic.Name, len(topic.ContactIDs))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&contactIDs, "contact", nil, "Contact IDs the topic applies to")
	return cmd
}
