package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newSweepCmd(a *app) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Remove store keys no manifest references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reports, err := a.vault.Sweep(cmd.Context(), dryRun)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, ns := range slices.Sorted(maps.Keys(reports)) {
				r := reports[ns]
				fmt.Fprintf(out, "%s %s: scanned %d, orphans %d, deleted %d\n",
					color.CyanString("→"), ns, r.Scanned, len(r.Orphans), r.Deleted)
				for _, key := range r.Orphans {
					fmt.Fprintf(out, "    %s\n", key)
				}
			}
			if dryRun {
				fmt.Fprintf(out, "%s dry run, nothing deleted\n", color.YellowString("!"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report orphans without deleting them")
	return cmd
}
