package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rtmx-ai/depgraph/internal/graph"
	"github.com/rtmx-ai/depgraph/internal/output"
)

type levelsResult struct {
	Levels [][]string `json:"levels"`
	Cyclic []string   `json:"cyclic"`
}

func newLevelsCmd(opts *globalOptions) *cobra.Command {
	var (
		packages bool
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "levels",
		Short: "Group nodes into concurrent waves",
		Long: `Group the nodes into levels. Level 0 holds the nodes without
dependencies; every other node sits one level above its deepest dependency.
The nodes of one level can be built concurrently once the earlier levels
are done.

With --packages the packages are leveled instead, using the package-level
dependency relation. Nodes caught in a cycle that could not be cut have no
level and are listed separately.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.loadProject(cmd)
			if err != nil {
				return err
			}

			var g *graph.Graph[string]
			if packages {
				g = p.manifest.PackageGraph()
			} else {
				sched, err := p.schedule("", "")
				if err != nil {
					return err
				}
				g = graph.Restrict(sched.Cycles.Graph, sched.Selected)
			}
			assigned := graph.AssignLevels(g)
			res := levelsResult{
				Levels: assigned.Levels,
				Cyclic: assigned.Cyclic.Slice(),
			}
			if res.Levels == nil {
				res.Levels = [][]string{}
			}

			if p.jsonOutput(cmd, asJSON) {
				return printJSON(cmd, res)
			}
			return printLevels(cmd, res, packages, p.width())
		},
	}

	cmd.Flags().BoolVar(&packages, "packages", false, "level packages instead of nodes")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func printLevels(cmd *cobra.Command, res levelsResult, packages bool, width int) error {
	out := cmd.OutOrStdout()
	title := "Build Levels"
	if packages {
		title = "Package Levels"
	}
	fmt.Fprintln(out, output.Header(title, width))
	fmt.Fprintln(out)

	for i, level := range res.Levels {
		fmt.Fprintf(out, "Level %d (%d):\n", i, len(level))
		for _, id := range level {
			fmt.Fprintf(out, "  %s\n", output.ColorID(id))
		}
	}
	if len(res.Levels) == 0 {
		fmt.Fprintln(out, "No nodes.")
	}

	if len(res.Cyclic) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "%s %s: %s\n", output.Checkmark(false),
			output.FormatCount(len(res.Cyclic), "cyclic", output.Red),
			strings.Join(res.Cyclic, ", "))
	}
	return nil
}
