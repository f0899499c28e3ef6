package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/rtmx-ai/depgraph/internal/graph"
	"github.com/rtmx-ai/depgraph/internal/logging"
	"github.com/rtmx-ai/depgraph/internal/output"
	"github.com/rtmx-ai/depgraph/internal/waves"
)

type simulatedNode struct {
	Node   string `json:"node"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type simulatedWave struct {
	Index int             `json:"index"`
	Nodes []simulatedNode `json:"nodes"`
}

type simulateResult struct {
	RunID     string          `json:"run_id"`
	Waves     []simulatedWave `json:"waves"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Skipped   int             `json:"skipped"`
	Canceled  int             `json:"canceled"`
}

func newSimulateCmd(opts *globalOptions) *cobra.Command {
	var (
		selectExpr  string
		excludeExpr string
		concurrency int
		failFast    bool
		fail        []string
		delay       time.Duration
		asJSON      bool
		metrics     bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Dry-run the wave schedule",
		Long: `Run the selection wave by wave without building anything. Each node
runs a no-op task; the nodes of one wave run concurrently and the next wave
starts when the current one has finished.

Use --fail to make chosen nodes fail and watch their dependents get
skipped. With --fail-fast every wave after a failed one is skipped.

Exit codes:
  0  Every node succeeded
  1  At least one node failed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.loadProject(cmd)
			if err != nil {
				return err
			}
			sched := p.cfg.Depgraph.Scheduling
			if !cmd.Flags().Changed("select") {
				selectExpr = sched.Select
			}
			if !cmd.Flags().Changed("exclude") {
				excludeExpr = sched.Exclude
			}
			if !cmd.Flags().Changed("concurrency") {
				concurrency = sched.Concurrency
			}
			if !cmd.Flags().Changed("fail-fast") {
				failFast = sched.FailFast
			}

			s, err := p.schedule(selectExpr, excludeExpr)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			reg := prometheus.NewRegistry()
			runner := &waves.Runner{
				Concurrency: concurrency,
				FailFast:    failFast,
				Metrics:     waves.NewMetrics(reg),
				Logger:      logging.Logger("simulate"),
			}
			report, runErr := runner.Run(ctx, graph.Restrict(s.Cycles.Graph, s.Selected), s.Levels,
				simulatedTask(delay, fail))
			res := summarizeRun(report)

			if p.jsonOutput(cmd, asJSON) {
				if err := printJSON(cmd, res); err != nil {
					return err
				}
			} else {
				printRun(cmd, res, p.width())
			}
			if metrics {
				if err := writeMetrics(cmd, reg); err != nil {
					return err
				}
			}

			if runErr != nil {
				return runErr
			}
			if res.Failed > 0 {
				return NewExitError(1, fmt.Sprintf("%d node(s) failed", res.Failed))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&selectExpr, "select", "s", "", "nodes to include (default: everything)")
	cmd.Flags().StringVar(&excludeExpr, "exclude", "", "nodes to leave out")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 4, "tasks running at once inside a wave")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "skip later waves after a failure")
	cmd.Flags().StringSliceVar(&fail, "fail", nil, "unique ids whose task fails")
	cmd.Flags().DurationVar(&delay, "delay", 0, "time each task takes")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "print run metrics in Prometheus text format")
	return cmd
}

// simulatedTask waits for delay and then fails for the ids in fail.
func simulatedTask(delay time.Duration, fail []string) waves.Task {
	return func(ctx context.Context, node string) error {
		if delay > 0 {
			t := time.NewTimer(delay)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
			}
		}
		if slices.Contains(fail, node) {
			return fmt.Errorf("simulated failure")
		}
		return nil
	}
}

func summarizeRun(report *waves.Report) simulateResult {
	res := simulateResult{
		RunID:     report.RunID.String(),
		Waves:     make([]simulatedWave, 0, len(report.Waves)),
		Succeeded: report.Count(waves.StatusSucceeded),
		Failed:    report.Count(waves.StatusFailed),
		Skipped:   report.Count(waves.StatusSkipped),
		Canceled:  report.Count(waves.StatusCanceled),
	}
	for _, w := range report.Waves {
		sw := simulatedWave{Index: w.Index, Nodes: make([]simulatedNode, 0, len(w.Nodes))}
		for _, id := range w.Nodes {
			r := report.Results[id]
			n := simulatedNode{Node: id, Status: r.Status.String()}
			if r.Err != nil {
				n.Error = r.Err.Error()
			}
			sw.Nodes = append(sw.Nodes, n)
		}
		res.Waves = append(res.Waves, sw)
	}
	return res
}

func printRun(cmd *cobra.Command, res simulateResult, width int) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, output.Header("Wave Simulation", width))
	fmt.Fprintln(out)

	t := output.NewTable("Wave", "Node", "Status")
	for _, w := range res.Waves {
		for _, n := range w.Nodes {
			t.AddRow(fmt.Sprint(w.Index), output.ColorID(n.Node),
				output.StatusIcon(n.Status)+" "+output.Color(n.Status, output.StatusColor(n.Status)))
		}
	}
	if t.Len() == 0 {
		fmt.Fprintln(out, "No nodes selected.")
	} else {
		fmt.Fprint(out, t.RenderCompact())
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Run %s: %s, %s, %s, %s\n", res.RunID,
		output.FormatCount(res.Succeeded, "succeeded", output.Green),
		output.FormatCount(res.Failed, "failed", output.Red),
		output.FormatCount(res.Skipped, "skipped", output.Yellow),
		output.FormatCount(res.Canceled, "canceled", output.Dim))
}

func writeMetrics(cmd *cobra.Command, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}
