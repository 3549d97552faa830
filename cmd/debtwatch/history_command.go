package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent upload attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}

			records, err := store.ListUploads(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list uploads: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No uploads recorded yet")
				return nil
			}

			titler := cases.Title(language.English)
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				organization := rec.Organization
				if organization == "" {
					organization = "-"
				}
				outcome := rec.Status
				if rec.ErrorMessage != "" {
					outcome = fmt.Sprintf("%s (%s)", rec.Status, rec.ErrorMessage)
				}
				rows = append(rows, []string{
					rec.CreatedAt.Local().Format("2006-01-02 15:04"),
					titler.String(rec.UploadType),
					rec.Filename,
					humanize.Bytes(uint64(rec.SizeBytes)),
					organization,
					fmt.Sprintf("%d", rec.ValidRows),
					fmt.Sprintf("%d", rec.InvalidRows),
					outcome,
				})
			}

			fmt.Fprintln(out, renderTable(
				[]column{
					{title: "When"},
					{title: "Type"},
					{title: "File"},
					{title: "Size", numeric: true},
					{title: "Organization"},
					{title: "Valid", numeric: true},
					{title: "Invalid", numeric: true},
					{title: "Outcome"},
				},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of uploads to show")
	return cmd
}
