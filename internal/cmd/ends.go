package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtmx-ai/depgraph/internal/graph"
	"github.com/rtmx-ai/depgraph/internal/plan"
)

func newRootsCmd(opts *globalOptions) *cobra.Command {
	return newEndsCmd(opts, "roots", "List nodes without dependencies",
		`List the nodes that depend on nothing, in ascending order. Undeclared
ids referenced by a node count as nodes without dependencies.`,
		graph.Roots[string])
}

func newLeavesCmd(opts *globalOptions) *cobra.Command {
	return newEndsCmd(opts, "leaves", "List nodes nothing depends on",
		`List the nodes no other node depends on, in ascending order.`,
		graph.Leaves[string])
}

// newEndsCmd builds a command printing one end of the normalized graph.
func newEndsCmd(opts *globalOptions, use, short, long string, ends func(*graph.Graph[string]) []string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.loadProject(cmd)
			if err != nil {
				return err
			}

			ids := ends(plan.Normalize(p.manifest))
			if ids == nil {
				ids = []string{}
			}
			if p.jsonOutput(cmd, asJSON) {
				return printJSON(cmd, ids)
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
