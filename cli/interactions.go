// ABOUTME: Interaction CLI commands
// ABOUTME: Logs shared events with one or more contacts and lists them newest first
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harperreed/rapport/models"
	"github.com/harperreed/rapport/views"
)

func newInteractionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "interaction",
		Aliases: []string{"interactions", "log"},
		Short:   "Log and review interactions",
	}
	cmd.AddCommand(newInteractionAddCmd(a))
	cmd.AddCommand(newInteractionListCmd(a))
	cmd.AddCommand(newInteractionDeleteCmd(a))
	return cmd
}

func newInteractionAddCmd(a *app) *cobra.Command {
	var in models.InteractionInput
	var contactIDs []string
	var kind, date string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log an interaction with one or more contacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(contactIDs) == 0 {
				return fmt.Errorf("--contact is required")
			}
			in.Type = models.InteractionType(kind)
			in.Date = a.clock()
			if date != "" {
				d, err := parseDateFlag("date", date)
				if err != nil {
					return err
				}
				in.Date = d
			}

			store, err := a.open()
			if err != nil {
				return err
			}
			interaction, err := store.Interactions.AddWithRelations(cmd.Context(), in, contactIDs)
			if err != nil {
				return fmt.Errorf("failed to log interaction: %w", err)
			}
			success(cmd.OutOrStdout(), "Interaction logged: %s with %d contact(s) (ID: %s)",
				interaction.Type, len(interaction.ContactIDs), interaction.ID)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&contactIDs, "contact", nil, "Contact ID involved (repeat or comma-separate)")
	cmd.Flags().StringVar(&kind, "type", string(models.InteractionRelationshipEvent), "life_event or relationship_event")
	cmd.Flags().StringVar(&date, "date", "", "When it happened (default now)")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "What happened")
	cmd.Flags().StringVar(&in.Location, "location", "", "Where it happened")
	return cmd
}

func newInteractionListCmd(a *app) *cobra.Command {
	var criteria views.InteractionCriteria
	var kind, from, to string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List interactions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if criteria.Dates.From, err = optionalDateFlag("from", from); err != nil {
				return err
			}
			if criteria.Dates.To, err = optionalDateFlag("to", to); err != nil {
				return err
			}
			if criteria.Dates.To != nil {
				end := criteria.Dates.To.AddDate(0, 0, 1).Add(-1)
				criteria.Dates.To = &end
			}
			criteria.Type = models.InteractionType(kind)

			store, err := a.open()
			if err != nil {
				return err
			}
			if err := store.LoadAll(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load interactions: %w", err)
			}

			found := views.Interactions(store.Interactions.Items(), criteria)
			out := cmd.OutOrStdout()
			if len(found) == 0 {
				fmt.Fprintln(out, "No interactions found")
				return nil
			}
			if limit > 0 && len(found) > limit {
				found = found[:limit]
			}

			names := contactNames(store.Contacts.Items())
			w := newTable(out)
			fmt.Fprintln(w, "DATE\tTYPE\tWITH\tNOTES")
			fmt.Fprintln(w, "----\t----\t----\t-----")
			for _, i := range found {
				with := make([]string, 0, len(i.ContactIDs))
				for _, id := range i.ContactIDs {
					with = append(with, nameOr(names, id))
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					i.Date.Format("2006-01-02"), i.Type, shorten(strings.Join(with, ", "), 40), shorten(i.Notes, 50))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&criteria.ContactID, "contact", "", "Only interactions involving this contact")
	cmd.Flags().StringVar(&kind, "type", "", "Filter by type")
	cmd.Flags().StringVar(&criteria.Query, "query", "", "Search notes and location")
	cmd.Flags().StringVar(&from, "from", "", "Earliest date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Latest date, inclusive (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum results (0 for all)")
	return cmd
}

func newInteractionDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an interaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.open()
			if err != nil {
				return err
			}
			if err := store.Interactions.Remove(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete interaction: %w", err)
			}
			success(cmd.OutOrStdout(), "Interaction deleted: %s", args[0])
			return nil
		},
	}
}

func contactNames(contacts []models.Contact) map[string]string {
	names := make(map[string]string, len(contacts))
	for _, c := range contacts {
		names[c.ID] = c.Name
	}
	return names
}

func nameOr(names map[string]string, id string) string {
	if n, ok := names[id]; ok {
		return n
	}
	return id
}
