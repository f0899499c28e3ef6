package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newOrderCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "order",
		Short: "Print every node in build order",
		Long: `Print the nodes of the manifest in topological order: every node comes
after the nodes it depends on.

Cycles are cut at nodes of the configured cut point kinds before sorting.
Source nodes nothing depends on are left out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.loadProject(cmd)
			if err != nil {
				return err
			}
			sched, err := p.schedule("", "")
			if err != nil {
				return err
			}

			if p.jsonOutput(cmd, asJSON) {
				return printJSON(cmd, sched.Sorted)
			}
			for _, id := range sched.Sorted {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
