// ABOUTME: Contact CLI commands
// ABOUTME: Human-friendly commands for adding, listing, showing, updating, and deleting contacts
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harperreed/rapport/models"
	"github.com/harperreed/rapport/views"
)

func newContactCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contact",
		Aliases: []string{"contacts"},
		Short:   "Manage contacts",
	}
	cmd.AddCommand(newContactAddCmd(a))
	cmd.AddCommand(newContactListCmd(a))
	cmd.AddCommand(newContactShowCmd(a))
	cmd.AddCommand(newContactUpdateCmd(a))
	cmd.AddCommand(newContactDeleteCmd(a))
	cmd.AddCommand(newContactImportCmd(a))
	return cmd
}

func newContactAddCmd(a *app) *cobra.Command {
	var in models.ContactInput
	var birthday string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new contact",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Name == "" {
				return fmt.Errorf("--name is required")
			}
			b, err := optionalDateFlag("birthday", birthday)
			if err != nil {
				return err
			}
			in.Birthday = b

			store, err := a.open()
			if err != nil {
				return err
			}
			contact, err := store.Contacts.Add(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("failed to create contact: %w", err)
			}

			out := cmd.OutOrStdout()
			success(out, "Contact created: %s (ID: %s)", contact.Name, contact.ID)
			if contact.Email != "" {
				fmt.Fprintf(out, "  Email: %s\n", contact.Email)
			}
			if contact.Phone != "" {
				fmt.Fprintf(out, "  Phone: %s\n", contact.Phone)
			}
			if contact.Birthday != nil {
				fmt.Fprintf(out, "  Birthday: %s\n", contact.Birthday.Format("January 2"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "Contact name (required)")
	cmd.Flags().StringVar(&in.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&in.RelationshipType, "relationship", "", "How you know them, e.g. friend or family")
	cmd.Flags().StringVar(&birthday, "birthday", "", "Birthday as YYYY-MM-DD")
	cmd.Flags().StringVar(&in.ProfilePicture, "picture", "", "Profile picture URL")
	return cmd
}

func newContactListCmd(a *app) *cobra.Command {
	var criteria views.ContactCriteria
	var only []string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contacts sorted by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.open()
			if err != nil {
				return err
			}
			if err := store.Contacts.Load(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load contacts: %w", err)
			}
			if len(only) > 0 {
				criteria.Group = &models.Group{Name: "selection", Contacts: only}
			}

			contacts := views.Contacts(store.Contacts.Items(), criteria)
			out := cmd.OutOrStdout()
			if len(contacts) == 0 {
				fmt.Fprintln(out, "No contacts found")
				return nil
			}
			if limit > 0 && len(contacts) > limit {
				contacts = contacts[:limit]
			}

			now := a.clock()
			w := newTable(out)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tPHONE\tRELATIONSHIP\tBIRTHDAY")
			fmt.Fprintln(w, "--\t----\t-----\t-----\t------------\t--------")
			for _, c := range contacts {
				bday := "-"
				if c.Birthday != nil {
					bday = c.Birthday.Format("Jan 2")
					if views.BirthdaySoon(c, now) {
						bday += fmt.Sprintf(" (in %d days)", views.DaysUntilBirthday(*c.Birthday, now))
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					c.ID, shorten(c.Name, 30), dash(c.Email), dash(c.Phone), dash(c.RelationshipType), bday)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nTotal: %d contact(s)\n", len(contacts))
			return nil
		},
	}

	cmd.Flags().StringVar(&criteria.Query, "query", "", "Search name, email, or phone")
	cmd.Flags().StringVar(&criteria.RelationshipType, "relationship", "", "Filter by relationship type")
	cmd.Flags().StringSliceVar(&only, "only", nil, "Restrict to these contact IDs")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum results (0 for all)")
	return cmd
}

func newContactShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a contact with their interactions, reminders, topics, and gifts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.open()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			contact, err := store.Contacts.Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to fetch contact: %w", err)
			}
			if err := store.LoadAll(ctx); err != nil {
				return fmt.Errorf("failed to load related data: %w", err)
			}

			now := a.clock()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headerStyle.Render(contact.Name))
			fmt.Fprintf(out, "  ID:           %s\n", contact.ID)
			fmt.Fprintf(out, "  Email:        %s\n", dash(contact.Email))
			fmt.Fprintf(out, "  Phone:        %s\n", dash(contact.Phone))
			fmt.Fprintf(out, "  Relationship: %s\n", dash(contact.RelationshipType))
			if contact.Birthday != nil {
				fmt.Fprintf(out, "  Birthday:     %s (in %d days)\n",
					contact.Birthday.Format("January 2"), views.DaysUntilBirthday(*contact.Birthday, now))
			}

			interactions := views.Interactions(store.Interactions.Items(), views.InteractionCriteria{ContactID: contact.ID})
			fmt.Fprintf(out, "\nInteractions (%d)\n", len(interactions))
			for _, i := range interactions {
				fmt.Fprintf(out, "  %s  %-18s %s\n", i.Date.Format("2006-01-02"), i.Type, shorten(i.Notes, 60))
			}

			reminders := views.Reminders(store.Reminders.Items(), views.ReminderCriteria{ContactID: contact.ID, Now: now})
			fmt.Fprintf(out, "\nReminders (%d)\n", len(reminders))
			for _, r := range reminders {
				fmt.Fprintf(out, "  %-12s %-10s %s%s\n",
					views.RelativeDateLabel(r.Date, now), r.EffectiveStatus(now), r.Title, overdueBadge(r, now))
			}

			fmt.Fprintln(out, "\nTopics")
			for _, g := range views.GroupTopics(views.Topics(store.Topics.Items(), views.TopicCriteria{ContactID: contact.ID})) {
				names := make([]string, len(g.Topics))
				for i, t := range g.Topics {
					names[i] = t.Name
				}
				fmt.Fprintf(out, "  %s: %s\n", g.Category, strings.Join(names, ", "))
			}

			gifts := views.Gifts(store.Gifts.Items(), views.GiftCriteria{ContactID: contact.ID})
			fmt.Fprintf(out, "\nGifts (%d)\n", len(gifts))
			for _, g := range gifts {
				fmt.Fprintf(out, "  %-10s %s\n", g.Status, g.Name)
			}
			return nil
		},
	}
}

func newContactUpdateCmd(a *app) *cobra.Command {
	var name, email, phone, relationship, birthday, picture string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a contact; pass an empty value to clear a field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch models.ContactPatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("email") {
				patch.Email = &email
			}
			if flags.Changed("phone") {
				patch.Phone = &phone
			}
			if flags.Changed("relationship") {
				patch.RelationshipType = &relationship
			}
			if flags.Changed("picture") {
				patch.ProfilePicture = &picture
			}
			if flags.Changed("birthday") {
				if birthday == "" {
					patch.ClearBirthday = true
				} else {
					b, err := parseDateFlag("birthday", birthday)
					if err != nil {
						return err
					}
					patch.Birthday = &b
				}
			}
			if patch.Empty() {
				return fmt.Errorf("nothing to update")
			}

			store, err := a.open()
			if err != nil {
				return err
			}
			contact, err := store.Contacts.Update(cmd.Context(), args[0], patch)
			if err != nil {
				return fmt.Errorf("failed to update contact: %w", err)
			}
			success(cmd.OutOrStdout(), "Contact updated: %s (ID: %s)", contact.Name, contact.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Contact name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&relationship, "relationship", "", "Relationship type")
	cmd.Flags().StringVar(&birthday, "birthday", "", "Birthday as YYYY-MM-DD")
	cmd.Flags().StringVar(&picture, "picture", "", "Profile picture URL")
	return cmd
}

func newContactDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a contact with their reminders, gifts, and topics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.open()
			if err != nil {
				return err
			}
			if err := store.DeleteContact(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete contact: %w", err)
			}
			success(cmd.OutOrStdout(), "Contact deleted: %s", args[0])
			return nil
		},
	}
}
