// ABOUTME: Cross-entity overview commands
// ABOUTME: Upcoming birthdays, the terminal dashboard, and the contact graph
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harperreed/rapport/views"
	"github.com/harperreed/rapport/viz"
)

func newBirthdaysCmd(a *app) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "birthdays",
		Short: "List birthdays coming up, soonest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("--days must be positive, got %d", days)
			}
			store, err := a.open()
			if err != nil {
				return err
			}
			if err := store.Contacts.Load(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load contacts: %w", err)
			}

			upcoming := views.UpcomingBirthdays(store.Contacts.Items(), a.clock(), days)
			out := cmd.OutOrStdout()
			if len(upcoming) == 0 {
				fmt.Fprintf(out, "No birthdays in the next %d days\n", days)
				return nil
			}

			w := newTable(out)
			fmt.Fprintln(w, "WHEN\tNAME\tDATE")
			fmt.Fprintln(w, "----\t----\t----")
			for _, u := range upcoming {
				when := fmt.Sprintf("in %d days", u.Days)
				switch u.Days {
				case 0:
					when = "today"
				case 1:
					when = "tomorrow"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", when, u.Contact.Name, u.Contact.Birthday.Format("January 2"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&days, "days", views.BirthdayWindow, "Look-ahead window in days")
	return cmd
}

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show counts, due reminders, and stale contacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.open()
			if err != nil {
				return err
			}
			if err := store.LoadAll(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load data: %w", err)
			}
			stats := views.GenerateDashboardStats(views.DashboardInput{
				Contacts:     store.Contacts.Items(),
				Interactions: store.Interactions.Items(),
				Reminders:    store.Reminders.Items(),
				Gifts:        store.Gifts.Items(),
				Now:          a.clock(),
			})
			fmt.Fprint(cmd.OutOrStdout(), views.RenderDashboard(stats))
			return nil
		},
	}
}

func newGraphCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "graph [contact-id]",
		Short: "Render who you see together as a graphviz network",
		Long: `Render contacts as a graphviz network. Contacts are linked when they
appear on the same interaction or share a topic. Pass a contact ID to show
only that contact and their direct links.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.open()
			if err != nil {
				return err
			}
			if err := store.LoadAll(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load data: %w", err)
			}

			var focus string
			if len(args) == 1 {
				focus = args[0]
				if _, err := store.Contacts.Get(cmd.Context(), focus); err != nil {
					return err
				}
			}

			network := viz.BuildNetwork(store.Contacts.Items(), store.Interactions.Items(), store.Topics.Items(), focus)
			dot, err := viz.Render(cmd.Context(), network)
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Fprint(cmd.OutOrStdout(), dot)
				return nil
			}
			if err := os.WriteFile(output, []byte(dot), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			success(cmd.OutOrStdout(), "Graph written to %s", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}
