// Package waves executes a leveled dependency graph: the nodes of one level
// run concurrently, and a level starts only after the previous one has
// finished.
package waves

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rtmx-ai/depgraph/internal/graph"
	"github.com/rtmx-ai/depgraph/internal/logging"
)

// Task does the work of one node. It should return promptly once ctx is
// done.
type Task func(ctx context.Context, node string) error

// Runner runs tasks wave by wave.
type Runner struct {
	// Concurrency caps the tasks running at once inside a wave. Values
	// below 1 mean no cap.
	Concurrency int
	// FailFast skips every later wave once a wave had a failure.
	FailFast bool
	// Metrics may be nil.
	Metrics *Metrics
	// Logger defaults to the "waves" subsystem logger.
	Logger *slog.Logger
}

// Run executes task for every node of levels, level 0 first. g supplies the
// dependencies used to skip nodes whose upstream did not succeed; nodes it
// does not know have no dependencies.
//
// Task failures are recorded in the report, not returned. The returned error
// is the context's error when the run was cut short by cancellation.
func (r *Runner) Run(ctx context.Context, g *graph.Graph[string], levels [][]string, task Task) (*Report, error) {
	logger := r.Logger
	if logger == nil {
		logger = logging.Logger("waves")
	}

	report := newReport()
	logger.Info("run started", "run_id", report.RunID, "waves", len(levels))

	halted := false
	for i, level := range levels {
		start := time.Now()
		wave := WaveResult{Index: i, Nodes: level}

		switch {
		case ctx.Err() != nil:
			r.finish(report, level, i, StatusCanceled, ctx.Err())
		case halted:
			r.finish(report, level, i, StatusSkipped, nil)
		default:
			r.runWave(ctx, g, report, level, i, task)
		}

		for _, id := range level {
			if report.Results[id].Status == StatusFailed {
				wave.Failed++
			}
		}
		wave.Duration = time.Since(start)
		report.Waves = append(report.Waves, wave)
		r.Metrics.observeWave(wave.Duration.Seconds())

		logger.Debug("wave finished", "run_id", report.RunID, "wave", i,
			"nodes", len(level), "failed", wave.Failed, "duration", wave.Duration)
		if wave.Failed > 0 && r.FailFast && !halted {
			logger.Warn("halting after failed wave", "run_id", report.RunID, "wave", i)
			halted = true
		}
	}

	logger.Info("run finished", "run_id", report.RunID,
		"succeeded", report.Count(StatusSucceeded),
		"failed", report.Count(StatusFailed),
		"skipped", report.Count(StatusSkipped),
		"canceled", report.Count(StatusCanceled))
	return report, ctx.Err()
}

// runWave runs one level behind an errgroup barrier.
func (r *Runner) runWave(ctx context.Context, g *graph.Graph[string], report *Report, level []string, index int, task Task) {
	var mu sync.Mutex
	record := func(res Result) {
		mu.Lock()
		defer mu.Unlock()
		report.Results[res.Node] = res
		r.Metrics.observeNode(res.Status)
	}

	var eg errgroup.Group
	if r.Concurrency > 0 {
		eg.SetLimit(r.Concurrency)
	}

	// Decide skips before any task of this wave can write a result.
	runnable := make([]string, 0, len(level))
	for _, id := range level {
		if upstreamSucceeded(g, report, id) {
			runnable = append(runnable, id)
			continue
		}
		record(Result{Node: id, Wave: index, Status: StatusSkipped})
	}

	for _, id := range runnable {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				record(Result{Node: id, Wave: index, Status: StatusCanceled, Err: err})
				return nil
			}

			start := time.Now()
			err := task(ctx, id)
			res := Result{Node: id, Wave: index, Err: err, Duration: time.Since(start)}
			switch {
			case err == nil:
				res.Status = StatusSucceeded
			case ctx.Err() != nil && errors.Is(err, ctx.Err()):
				res.Status = StatusCanceled
			default:
				res.Status = StatusFailed
			}
			record(res)
			// Failures stay in the report; siblings keep running.
			return nil
		})
	}
	_ = eg.Wait()
}

// upstreamSucceeded reports whether every dependency of id that took part in
// the run succeeded.
func upstreamSucceeded(g *graph.Graph[string], report *Report, id string) bool {
	deps, _ := g.Deps(id)
	for d := range deps.All() {
		if res, ok := report.Results[d]; ok && res.Status != StatusSucceeded {
			return false
		}
	}
	return true
}

func (r *Runner) finish(report *Report, level []string, index int, s Status, err error) {
	for _, id := range level {
		report.Results[id] = Result{Node: id, Wave: index, Status: s, Err: err}
		r.Metrics.observeNode(s)
	}
}
