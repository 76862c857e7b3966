// ABOUTME: Gift CLI commands
// ABOUTME: Tracks gift ideas through purchase and giving, and records reactions
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harperreed/rapport/models"
	"github.com/harperreed/rapport/views"
)

func newGiftCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "gift",
		Aliases: []string{"gifts"},
		Short:   "Plan and track gifts",
	}
	cmd.AddCommand(newGiftAddCmd(a))
	cmd.AddCommand(newGiftListCmd(a))
	cmd.AddCommand(newGiftAdvanceCmd(a))
	cmd.AddCommand(newGiftReactCmd(a))
	return cmd
}

func newGiftAddCmd(a *app) *cobra.Command {
	var in models.GiftInput
	var status string
	var price float64

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a gift idea for a contact",
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Status = models.GiftStatus(status)
			if cmd.Flags().Changed("price") {
				in.Price = &price
			}
			store, err := a.open()
			if err != nil {
				return err
			}
			gift, err := store.Gifts.Add(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("failed to create gift: %w", err)
			}
			success(cmd.OutOrStdout(), "Gift saved: %s [%s] (ID: %s)", gift.Name, gift.Status, gift.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.ContactID, "contact", "", "Recipient contact ID (required)")
	cmd.Flags().StringVar(&in.Name, "name", "", "Gift (required)")
	cmd.Flags().StringVar(&in.Description, "description", "", "Details")
	cmd.Flags().Float64Var(&price, "price", 0, "Price")
	cmd.Flags().StringVar(&in.Occasion, "occasion", "", "Occasion, e.g. birthday")
	cmd.Flags().StringVar(&status, "status", "", "idea, purchased, or given (default idea)")
	return cmd
}

func newGiftListCmd(a *app) *cobra.Command {
	var criteria views.GiftCriteria
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List gifts grouped by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria.Status = models.GiftStatus(status)
			store, err := a.open()
			if err != nil {
				return err
			}
			if err := store.Gifts.Load(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load gifts: %w", err)
			}

			out := cmd.OutOrStdout()
			found := views.Gifts(store.Gifts.Items(), criteria)
			if len(found) == 0 {
				fmt.Fprintln(out, "No gifts found")
				return nil
			}
			for _, g := range views.GiftsByStatus(found) {
				fmt.Fprintf(out, "%s (%d)\n", headerStyle.Render(string(g.Status)), len(g.Gifts))
				w := newTable(out)
				for _, gift := range g.Gifts {
					price := "-"
					if gift.Price != nil {
						price = fmt.Sprintf("$%.2f", *gift.Price)
					}
					fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n",
						gift.ID, shorten(gift.Name, 40), price, dash(gift.Occasion), dash(string(gift.Reaction)))
				}
				if err := w.Flush(); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&criteria.ContactID, "contact", "", "Only gifts for this contact")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&criteria.Query, "query", "", "Search name, description, and occasion")
	return cmd
}

func newGiftAdvanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "advance <id>",
		Short: "Move a gift from idea to purchased, or purchased to given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.open()
			if err != nil {
				return err
			}
			gift, err := store.AdvanceGift(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to advance gift: %w", err)
			}
			success(cmd.OutOrStdout(), "Gift %s: %s", gift.Status, gift.Name)
			return nil
		},
	}
}

func newGiftReactCmd(a *app) *cobra.Command {
	var reaction string

	cmd := &cobra.Command{
		Use:   "react <id>",
		Short: "Record how a given gift landed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if reaction == "" {
				return fmt.Errorf("--reaction is required")
			}
			r := models.GiftReaction(reaction)
			store, err := a.open()
			if err != nil {
				return err
			}
			gift, err := store.Gifts.Update(cmd.Context(), args[0], models.GiftPatch{Reaction: &r})
			if err != nil {
				return fmt.Errorf("failed to record reaction: %w", err)
			}
			success(cmd.OutOrStdout(), "They %s %s", gift.Reaction, gift.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&reaction, "reaction", "", "loved, liked, or neutral (required)")
	return cmd
}
