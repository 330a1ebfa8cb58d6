package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newListRulesCmd(root *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list-rules",
		Short: "List the active rule set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := root.newRepository()
			rules, err := repo.LoadRules(cmd.Context())
			if err != nil {
				return fmt.Errorf("loading rules: %w", err)
			}
			sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })

			if asJSON {
				data, err := json.MarshalIndent(rules, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d rule(s) loaded\n\n", len(rules))

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header([]string{"ID", "Kind", "Weight", "Window", "Description"})
			for _, r := range rules {
				window := "-"
				if r.Window != nil {
					window = fmt.Sprintf("%d", *r.Window)
				}
				if err := table.Append([]string{r.ID, string(r.Kind), fmt.Sprintf("%.1f", r.Weight), window, r.Description}); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit rules as JSON")
	return cmd
}
