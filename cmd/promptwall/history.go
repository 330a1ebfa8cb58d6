package main

import (
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/vigilsec/promptwall/pkg/store"
)

func newHistoryCmd() *cobra.Command {
	var (
		storePath string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent scans from a history database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := store.Open(storePath)
			if err != nil {
				return err
			}
			defer db.Close()

			entries, err := db.Recent(limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No scans recorded.")
				return nil
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header([]string{"When", "Source", "Score", "Band", "Length"})
			for _, e := range entries {
				if err := table.Append([]string{
					e.CreatedAt.Format(time.RFC3339),
					e.Source,
					fmt.Sprintf("%.1f", e.RiskScore),
					e.RiskBand.String(),
					fmt.Sprintf("%d", e.NormalizedLen),
				}); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}

	cmd.Flags().StringVar(&storePath, "store", "", "SQLite history database written by scan --store")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries to show")
	_ = cmd.MarkFlagRequired("store")
	return cmd
}
