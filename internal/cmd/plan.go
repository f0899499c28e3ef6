package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newPlanCmd(opts *globalOptions) *cobra.Command {
	var (
		selectExpr  string
		excludeExpr string
		asJSON      bool
		list        bool
		fingerprint bool
		outputKeys  []string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the build schedule of a selection",
		Long: `Compute the build schedule of the selected nodes: every node the
selection needs in topological order, marking the frontier (direct
dependencies of the selection that are not selected themselves).

Selection expressions are space-separated unions of comma-separated
intersections. Each criterion is a glob on the unique id, package.name or
name, or a method such as kind:model, package:shop, tag:nightly or
path:models/staging/*. A leading + adds upstream nodes, a trailing + adds
downstream nodes, and a number before or after the + bounds the depth.

Examples:
  depgraph plan --select orders+
  depgraph plan --select "tag:nightly" --exclude "kind:test"
  depgraph plan --list --json --output-keys unique_id,depends_on`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.loadProject(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("select") {
				selectExpr = p.cfg.Depgraph.Scheduling.Select
			}
			if !cmd.Flags().Changed("exclude") {
				excludeExpr = p.cfg.Depgraph.Scheduling.Exclude
			}

			sched, err := p.schedule(selectExpr, excludeExpr)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case fingerprint:
				fmt.Fprintln(out, sched.Fingerprint())
			case list || p.jsonOutput(cmd, asJSON):
				lines, err := sched.ListNodes(p.manifest, p.jsonOutput(cmd, asJSON), outputKeys)
				if err != nil {
					return err
				}
				if len(lines) > 0 {
					fmt.Fprintln(out, strings.Join(lines, "\n"))
				}
			default:
				fmt.Fprint(out, sched.String())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&selectExpr, "select", "s", "", "nodes to include (default: everything)")
	cmd.Flags().StringVar(&excludeExpr, "exclude", "", "nodes to leave out")
	cmd.Flags().BoolVar(&asJSON, "json", false, "list selected nodes as JSON lines")
	cmd.Flags().BoolVar(&list, "list", false, "list selected nodes instead of the schedule table")
	cmd.Flags().BoolVar(&fingerprint, "fingerprint", false, "print the schedule fingerprint only")
	cmd.Flags().StringSliceVar(&outputKeys, "output-keys", nil, "node keys included in JSON lines")
	return cmd
}
