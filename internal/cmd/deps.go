package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtmx-ai/depgraph/internal/graph"
	"github.com/rtmx-ai/depgraph/internal/manifest"
	"github.com/rtmx-ai/depgraph/internal/output"
	"github.com/rtmx-ai/depgraph/internal/plan"
)

func newDepsCmd(opts *globalOptions) *cobra.Command {
	var (
		reverse bool
		all     bool
	)

	cmd := &cobra.Command{
		Use:   "deps [unique_id]",
		Short: "Show node dependencies",
		Long: `Display dependency information for nodes.

Without arguments, shows an overview of the dependency graph.
With a unique id, shows the dependencies of that node.

Flags:
  --reverse   Show dependents instead of dependencies
  --all       Show transitive dependencies (not just direct)`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.loadProject(cmd)
			if err != nil {
				return err
			}
			g := plan.Normalize(p.manifest)

			if len(args) > 0 {
				return showNodeDeps(cmd, args[0], p, g, reverse, all)
			}
			return showDepsOverview(cmd, p, g)
		},
	}

	cmd.Flags().BoolVarP(&reverse, "reverse", "r", false, "show dependents instead of dependencies")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "show transitive dependencies")
	return cmd
}

func showNodeDeps(cmd *cobra.Command, id string, p *project, g *graph.Graph[string], reverse, all bool) error {
	if !g.Has(id) {
		return fmt.Errorf("%w: %q", manifest.ErrNodeNotFound, id)
	}

	out := cmd.OutOrStdout()
	width := p.width()
	fmt.Fprintln(out, output.Header(fmt.Sprintf("Dependencies: %s", id), width))
	fmt.Fprintln(out)

	if n := p.manifest.Get(id); n != nil {
		fmt.Fprintf(out, "%s [%s]\n", output.ColorID(id), n.Kind)
		if n.Description != "" {
			fmt.Fprintf(out, "   %s\n", output.Truncate(n.Description, width-10))
		}
	} else {
		fmt.Fprintf(out, "%s [undeclared]\n", id)
	}
	fmt.Fprintln(out)

	var (
		ids   []string
		label string
	)
	switch {
	case reverse && all:
		label = "All Dependents (transitive)"
		ids = graph.Downstream(g, graph.NewSet(id), false).Slice()
	case reverse:
		label = "Direct Dependents"
		ids = graph.Reverse(g).Dependencies(id)
	case all:
		label = "All Dependencies (transitive)"
		ids = graph.AllUpstream(g, id).Slice()
	default:
		label = "Direct Dependencies"
		ids = g.Dependencies(id)
	}

	fmt.Fprintln(out, output.SubHeader(label, width))
	if len(ids) == 0 {
		fmt.Fprintln(out, "  (none)")
		return nil
	}
	for _, dep := range ids {
		if !p.manifest.Exists(dep) {
			fmt.Fprintf(out, "  %s %s\n", dep, output.Color("(undeclared)", output.Yellow))
			continue
		}
		fmt.Fprintf(out, "  %s\n", output.ColorID(dep))
	}
	return nil
}

func showDepsOverview(cmd *cobra.Command, p *project, g *graph.Graph[string]) error {
	out := cmd.OutOrStdout()
	width := p.width()
	fmt.Fprintln(out, output.Header("Dependency Graph Overview", width))
	fmt.Fprintln(out)

	stats := g.Statistics()
	fmt.Fprintf(out, "Nodes: %d\n", stats.Nodes)
	fmt.Fprintf(out, "Edges: %d\n", stats.Edges)
	fmt.Fprintf(out, "Roots (no dependencies): %d\n", stats.Roots)
	fmt.Fprintf(out, "Leaves (no dependents): %d\n", stats.Leaves)
	fmt.Fprintf(out, "Average dependencies: %.2f\n", stats.AvgDependencies)
	fmt.Fprintln(out)

	if dangling := p.manifest.Dangling(); len(dangling) > 0 {
		fmt.Fprintf(out, "%s %s\n", output.Color("!", output.Yellow),
			output.FormatCount(len(dangling), "undeclared reference(s)", output.Yellow))
	}

	if cycles := graph.FindCycles(g); len(cycles) > 0 {
		fmt.Fprintf(out, "%s Found %d cycle(s)!\n", output.Color("!", output.Red), len(cycles))
		fmt.Fprintln(out, "   Run 'depgraph cycles' for details.")
	} else {
		fmt.Fprintf(out, "%s No cycles detected\n", output.Checkmark(true))
	}
	fmt.Fprintln(out)

	t := output.NewTable("Kind", "Count")
	counts := p.manifest.KindCounts()
	for _, k := range manifest.AllKinds() {
		if n := counts[k]; n > 0 {
			t.AddRow(output.Color(string(k), output.KindColor(string(k))), fmt.Sprint(n))
		}
	}
	if t.Len() > 0 {
		fmt.Fprint(out, t.RenderCompact())
	}
	return nil
}
