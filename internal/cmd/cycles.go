package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rtmx-ai/depgraph/internal/graph"
	"github.com/rtmx-ai/depgraph/internal/output"
	"github.com/rtmx-ai/depgraph/internal/plan"
)

type cycleEntry struct {
	Members  []string `json:"members"`
	CutPoint string   `json:"cut_point"`
	Resolved bool     `json:"resolved"`
}

type cycleResult struct {
	Found      bool         `json:"found"`
	Count      int          `json:"count"`
	Unresolved int          `json:"unresolved"`
	Policy     string       `json:"policy"`
	Cycles     []cycleEntry `json:"cycles"`
}

func newCyclesCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "cycles",
		Short: "Detect and cut dependency cycles",
		Long: `Detect dependency cycles and show where each one is cut.

A cycle is resolved when one of its members has a cut point kind (tests by
default): the edges pointing at that member from inside the cycle are
dropped. A cycle without such a member is unresolved; the fallback policy
decides whether its first member is cut anyway ("apply") or the cycle is
only reported ("report").

Exit codes:
  0  No unresolved cycles
  1  Unresolved cycles found`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.loadProject(cmd)
			if err != nil {
				return err
			}
			b, err := p.builder()
			if err != nil {
				return err
			}

			report := b.CutCycles(p.manifest)
			res := cycleResult{
				Found:  report.HasCycles(),
				Count:  len(report.Cycles),
				Policy: b.Policy.String(),
				Cycles: make([]cycleEntry, len(report.Cycles)),
			}
			for i, c := range report.Cycles {
				cut := report.CutPoints[i]
				res.Cycles[i] = cycleEntry{
					Members:  []string(c),
					CutPoint: cut.Node,
					Resolved: !cut.Fallback,
				}
				if cut.Fallback {
					res.Unresolved++
				}
			}

			if p.jsonOutput(cmd, asJSON) {
				if err := printJSON(cmd, res); err != nil {
					return err
				}
			} else {
				printCycles(cmd, res, report, plan.Normalize(p.manifest).Statistics(), p.width())
			}

			if res.Unresolved > 0 {
				return NewExitError(1, "")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func printCycles(cmd *cobra.Command, res cycleResult, report graph.CycleReport[string], stats graph.Stats, width int) {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, output.Header("Dependency Cycle Analysis", width))
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Graph Statistics:")
	fmt.Fprintf(out, "  Total nodes: %d\n", stats.Nodes)
	fmt.Fprintf(out, "  Total dependencies: %d\n", stats.Edges)
	fmt.Fprintf(out, "  Average dependencies per node: %.2f\n", stats.AvgDependencies)
	fmt.Fprintln(out)

	if !res.Found {
		fmt.Fprintf(out, "%s No dependency cycles found.\n", output.Checkmark(true))
		return
	}

	fmt.Fprintf(out, "%s, %s (policy: %s)\n\n",
		output.FormatCount(res.Count-res.Unresolved, "resolved", output.Green),
		output.FormatCount(res.Unresolved, "unresolved", output.Red),
		res.Policy)

	fmt.Fprintln(out, output.SubHeader("Cycles", width))
	for i, c := range report.Cycles {
		entry := res.Cycles[i]
		fmt.Fprintf(out, "%d. %s\n", i+1, plan.FormatCycle(c))
		switch {
		case entry.Resolved:
			fmt.Fprintf(out, "   %s cut at %s\n", output.Checkmark(true), output.ColorID(entry.CutPoint))
		case res.Policy == graph.FallbackApply.String():
			fmt.Fprintf(out, "   %s no cut point kind; fallback cut at %s\n", output.Checkmark(false), output.ColorID(entry.CutPoint))
		default:
			fmt.Fprintf(out, "   %s no cut point kind; members: %s\n", output.Checkmark(false), strings.Join(entry.Members, ", "))
		}
	}
}
