// ABOUTME: Contact import command
// ABOUTME: Reads a CSV file (or stdin) and merges it into the contact list
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/harperreed/rapport/importer"
)

func newContactImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import contacts from CSV",
		Long: `Import contacts from a CSV file with a header row. Recognised columns are
name (required), email, phone, relationship, and birthday (YYYY-MM-DD).
Rows matching an existing contact by email, or by name when email is blank,
only fill fields that contact is missing. Use - to read stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				defer f.Close()
				r = f
			}

			records, err := importer.ReadCSV(r)
			if err != nil {
				return err
			}

			store, err := a.open()
			if err != nil {
				return err
			}
			res, err := importer.NewContactsImporter(store.Contacts, a.logger).Import(cmd.Context(), records)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			success(out, "Imported %d record(s): %d created, %d updated, %d unchanged",
				len(records), res.Created, res.Updated, res.Skipped)
			for _, f := range res.Failed {
				fmt.Fprintln(out, warnStyle.Render("  skipped "+f.Error()))
			}
			return nil
		},
	}
}
