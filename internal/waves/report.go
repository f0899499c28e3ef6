package waves

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Status is the final state of one node in a run.
type Status int

const (
	StatusSucceeded Status = iota
	StatusFailed
	// StatusSkipped marks a node that never ran because a dependency did not
	// succeed or an earlier wave failed under FailFast.
	StatusSkipped
	// StatusCanceled marks a node that did not finish because the run's
	// context was done.
	StatusCanceled
)

// String returns the metric label of the status.
func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	case StatusCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Result is the outcome of one node.
type Result struct {
	Node     string
	Wave     int
	Status   Status
	Err      error
	Duration time.Duration
}

// WaveResult summarizes one wave.
type WaveResult struct {
	Index    int
	Nodes    []string
	Duration time.Duration
	Failed   int
}

// Report is the outcome of a run.
type Report struct {
	RunID   uuid.UUID
	Results map[string]Result
	Waves   []WaveResult
}

func newReport() *Report {
	return &Report{
		RunID:   uuid.New(),
		Results: make(map[string]Result),
	}
}

// Count returns the number of nodes that ended with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Failed returns the failed nodes in ascending order.
func (r *Report) Failed() []string {
	var res []string
	for id, result := range r.Results {
		if result.Status == StatusFailed {
			res = append(res, id)
		}
	}
	slices.Sort(res)
	return res
}

// Err joins the errors of every failed node, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, id := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", id, r.Results[id].Err))
	}
	return errors.Join(errs...)
}
