// ABOUTME: Reminder CLI commands
// ABOUTME: Adds reminders, lists them with relative due labels, and moves them between statuses
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harperreed/rapport/models"
	"github.com/harperreed/rapport/views"
)

func newReminderCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reminder",
		Aliases: []string{"reminders"},
		Short:   "Manage reminders",
	}
	cmd.AddCommand(newReminderAddCmd(a))
	cmd.AddCommand(newReminderListCmd(a))
	cmd.AddCommand(newReminderTransitionCmd(a, "complete", "Mark a reminder completed",
		func(ctx context.Context, id string) (models.Reminder, error) {
			return a.store.CompleteReminder(ctx, id)
		}))
	cmd.AddCommand(newReminderTransitionCmd(a, "snooze", "Snooze a reminder for one day",
		func(ctx context.Context, id string) (models.Reminder, error) {
			return a.store.SnoozeReminder(ctx, id)
		}))
	cmd.AddCommand(newReminderTransitionCmd(a, "reactivate", "Return a reminder to pending",
		func(ctx context.Context, id string) (models.Reminder, error) {
			return a.store.ReactivateReminder(ctx, id)
		}))
	return cmd
}

func newReminderAddCmd(a *app) *cobra.Command {
	var in models.ReminderInput
	var kind, date, recurrence string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a reminder about a contact",
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				return fmt.Errorf("--date is required")
			}
			d, err := parseDateFlag("date", date)
			if err != nil {
				return err
			}
			in.Date = d
			in.Type = models.ReminderType(kind)
			in.Recurrence = models.Recurrence(recurrence)

			store, err := a.open()
			if err != nil {
				return err
			}
			r, err := store.Reminders.Add(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("failed to create reminder: %w", err)
			}
			success(cmd.OutOrStdout(), "Reminder created: %s, due %s (ID: %s)",
				r.Title, views.RelativeDateLabel(r.Date, a.clock()), r.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.ContactID, "contact", "", "Contact ID (required)")
	cmd.Flags().StringVar(&in.Title, "title", "", "What to be reminded of (required)")
	cmd.Flags().StringVar(&in.Description, "description", "", "Longer description")
	cmd.Flags().StringVar(&kind, "type", string(models.ReminderCheckIn), "birthday, check_in, follow_up, or custom")
	cmd.Flags().StringVar(&date, "date", "", "Due date as YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&in.Time, "time", "", "Due time as HH:MM")
	cmd.Flags().StringVar(&recurrence, "recurrence", "", "none, daily, weekly, monthly, or yearly")
	cmd.Flags().StringVar(&in.InteractionID, "interaction", "", "Interaction that prompted the reminder")
	return cmd
}

func newReminderListCmd(a *app) *cobra.Command {
	var criteria views.ReminderCriteria
	var kind, status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reminders, earliest due first",
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria.Type = models.ReminderType(kind)
			criteria.Status = models.ReminderStatus(status)
			criteria.Now = a.clock()

			store, err := a.open()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := store.Reminders.Load(ctx); err != nil {
				return fmt.Errorf("failed to load reminders: %w", err)
			}
			if err := store.Contacts.Load(ctx); err != nil {
				return fmt.Errorf("failed to load contacts: %w", err)
			}

			found := views.Reminders(store.Reminders.Items(), criteria)
			out := cmd.OutOrStdout()
			if len(found) == 0 {
				fmt.Fprintln(out, "No reminders found")
				return nil
			}

			names := contactNames(store.Contacts.Items())
			w := newTable(out)
			fmt.Fprintln(w, "ID\tDUE\tSTATUS\tCONTACT\tTITLE")
			fmt.Fprintln(w, "--\t---\t------\t-------\t-----")
			for _, r := range found {
				due := views.RelativeDateLabel(r.Date, criteria.Now)
				if r.Time != "" {
					due += " " + r.Time
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s%s\n",
					r.ID, due, r.EffectiveStatus(criteria.Now), nameOr(names, r.ContactID), shorten(r.Title, 50), overdueBadge(r, criteria.Now))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&criteria.ContactID, "contact", "", "Only reminders for this contact")
	cmd.Flags().StringVar(&status, "status", "", "pending, completed, or snoozed")
	cmd.Flags().StringVar(&kind, "type", "", "Filter by reminder type")
	cmd.Flags().StringVar(&criteria.Query, "query", "", "Search title and description")
	cmd.Flags().BoolVar(&criteria.OverdueOnly, "overdue", false, "Only pending reminders past due")
	return cmd
}

func newReminderTransitionCmd(a *app, verb, short string, fn func(context.Context, string) (models.Reminder, error)) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.open(); err != nil {
				return err
			}
			r, err := fn(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to %s reminder: %w", verb, err)
			}
			now := a.clock()
			msg := fmt.Sprintf("Reminder %s: %s", r.EffectiveStatus(now), r.Title)
			if r.SnoozeActive(now) {
				msg += fmt.Sprintf(" (until %s)", r.SnoozedUntil.Local().Format(time.DateTime))
			}
			success(cmd.OutOrStdout(), "%s", msg)
			return nil
		},
	}
}

func overdueBadge(r models.Reminder, now time.Time) string {
	if views.IsOverdue(r, now) {
		return " " + warnStyle.Render("OVERDUE")
	}
	return ""
}
