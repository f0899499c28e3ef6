package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtmx-ai/depgraph/internal/graph"
	"github.com/rtmx-ai/depgraph/internal/plan"
)

func newLineageCmd(opts *globalOptions) *cobra.Command {
	var (
		prefix []string
		suffix []string
		exact  []string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "lineage",
		Short: "Collect the edges through a set of nodes",
		Long: `Collect the dependency edges that lie on a path through the given
nodes: everything that depends on a --prefix node, everything a --suffix
node depends on, and the --exact nodes themselves.

Each line of the output is a node followed by its dependencies within the
collected edges.

Examples:
  depgraph lineage --prefix model.shop.orders
  depgraph lineage --prefix model.shop.orders --suffix model.shop.orders`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(prefix)+len(suffix)+len(exact) == 0 {
				return fmt.Errorf("at least one of --prefix, --suffix or --exact is required")
			}
			p, err := opts.loadProject(cmd)
			if err != nil {
				return err
			}

			edges := graph.CollectEdgesThrough(plan.Normalize(p.manifest),
				graph.NewSet(prefix...), graph.NewSet(suffix...), graph.NewSet(exact...))

			if p.jsonOutput(cmd, asJSON) {
				return printJSON(cmd, edges.ToMap())
			}
			fmt.Fprint(cmd.OutOrStdout(), edges.String())
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&prefix, "prefix", nil, "collect every node depending on these ids")
	cmd.Flags().StringSliceVar(&suffix, "suffix", nil, "collect every node these ids depend on")
	cmd.Flags().StringSliceVar(&exact, "exact", nil, "include these ids as they are")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
