package graph

import (
	"cmp"
	"slices"
)

// Cycle is a closed walk through the graph: each member depends on the next
// one and the last member depends back on the first.
type Cycle[K cmp.Ordered] []K

// CutPoint names the member whose incoming edges from inside its cycle were
// removed. Fallback is set when the predicate matched no member; Node is then
// the first member of the cycle.
type CutPoint[K cmp.Ordered] struct {
	Node     K
	Fallback bool
}

// Get returns the cut node and whether it was chosen by the predicate.
func (c CutPoint[K]) Get() (K, bool) {
	return c.Node, !c.Fallback
}

// FallbackPolicy decides what happens to cycles the predicate cannot cut.
type FallbackPolicy int

const (
	// FallbackReportOnly cuts fallback edges only in the working copy used to
	// keep detection going. The returned graph still contains the cycle.
	FallbackReportOnly FallbackPolicy = iota
	// FallbackApply also removes fallback edges from the returned graph.
	FallbackApply
)

// String returns the config spelling of the policy.
func (p FallbackPolicy) String() string {
	switch p {
	case FallbackApply:
		return "apply"
	default:
		return "report"
	}
}

type cutOptions struct {
	fallback FallbackPolicy
}

// CutOption configures FindAndCutCycles.
type CutOption func(*cutOptions)

// WithFallbackPolicy selects how unmatched cycles are handled.
func WithFallbackPolicy(p FallbackPolicy) CutOption {
	return func(o *cutOptions) {
		o.fallback = p
	}
}

// CycleReport is the outcome of FindAndCutCycles. CutPoints[i] belongs to
// Cycles[i]; both are in discovery order.
type CycleReport[K cmp.Ordered] struct {
	Cycles    []Cycle[K]
	CutPoints []CutPoint[K]
	// Graph is the input with the cuts applied.
	Graph *Graph[K]
}

// HasCycles reports whether any cycle was found.
func (r CycleReport[K]) HasCycles() bool {
	return len(r.Cycles) > 0
}

// Unresolved returns the cycles whose cut point is a fallback.
func (r CycleReport[K]) Unresolved() []Cycle[K] {
	var res []Cycle[K]
	for i, c := range r.Cycles {
		if r.CutPoints[i].Fallback {
			res = append(res, c)
		}
	}
	return res
}

// cycleSearch holds the state of one depth-first scan.
type cycleSearch[K cmp.Ordered] struct {
	graph   *Graph[K]
	stack   []K
	onStack *Set[K]
	visited *Set[K]
	cycles  []Cycle[K]
}

func newCycleSearch[K cmp.Ordered](g *Graph[K]) *cycleSearch[K] {
	return &cycleSearch[K]{
		graph:   g,
		onStack: NewSet[K](),
		visited: NewSet[K](),
	}
}

// scan visits every key in ascending order and returns the cycles found.
func (s *cycleSearch[K]) scan() []Cycle[K] {
	for k := range s.graph.All() {
		if !s.visited.Has(k) {
			s.visit(k)
		}
	}
	return s.cycles
}

func (s *cycleSearch[K]) visit(node K) {
	if s.onStack.Has(node) {
		// Back edge: the cycle is the stack from node to the top.
		start := slices.Index(s.stack, node)
		s.cycles = append(s.cycles, Cycle[K](slices.Clone(s.stack[start:])))
		return
	}
	if s.visited.Has(node) {
		return
	}

	s.visited.Add(node)
	s.stack = append(s.stack, node)
	s.onStack.Add(node)

	deps, _ := s.graph.Deps(node)
	for next := range deps.All() {
		s.visit(next)
	}

	s.stack = s.stack[:len(s.stack)-1]
	s.onStack.Remove(node)
}

// FindAndCutCycles finds every cycle of g and breaks each one at a cut point.
//
// The cut point of a cycle is its first member satisfying cutPoint; if none
// does, the first member is used as a fallback. Cutting removes, for every
// member, its edge toward the cut point. Scanning repeats on the cut graph
// until a pass finds no new cycle. g itself is never modified.
//
// Fallback cuts always apply to the internal working copy, so the loop
// terminates: every pass removes at least one edge. Whether they also apply
// to the returned graph is decided by the FallbackPolicy.
func FindAndCutCycles[K cmp.Ordered](g *Graph[K], cutPoint func(K) bool, opts ...CutOption) CycleReport[K] {
	var o cutOptions
	for _, opt := range opts {
		opt(&o)
	}

	work := g.Clone()
	report := CycleReport[K]{Graph: g.Clone()}

	for {
		found := newCycleSearch(work).scan()
		if len(found) == 0 {
			break
		}

		for _, cycle := range found {
			cut := chooseCutPoint(cycle, cutPoint)
			report.Cycles = append(report.Cycles, cycle)
			report.CutPoints = append(report.CutPoints, cut)

			pruneCycle(work, cycle, cut.Node)
			if !cut.Fallback || o.fallback == FallbackApply {
				pruneCycle(report.Graph, cycle, cut.Node)
			}
		}
	}

	return report
}

func chooseCutPoint[K cmp.Ordered](cycle Cycle[K], pred func(K) bool) CutPoint[K] {
	for _, n := range cycle {
		if pred != nil && pred(n) {
			return CutPoint[K]{Node: n}
		}
	}
	return CutPoint[K]{Node: cycle[0], Fallback: true}
}

func pruneCycle[K cmp.Ordered](g *Graph[K], cycle Cycle[K], cut K) {
	for _, n := range cycle {
		g.RemoveEdge(n, cut)
	}
}

// CycleCutPoints returns only the cut points FindAndCutCycles would choose.
func CycleCutPoints[K cmp.Ordered](g *Graph[K], cutPoint func(K) bool) []CutPoint[K] {
	return FindAndCutCycles(g, cutPoint).CutPoints
}

// FindCycles returns every cycle of g, cutting each at its first member to
// keep looking.
func FindCycles[K cmp.Ordered](g *Graph[K]) []Cycle[K] {
	return FindAndCutCycles[K](g, nil).Cycles
}

// HasCycles reports whether g contains at least one cycle.
func HasCycles[K cmp.Ordered](g *Graph[K]) bool {
	return len(newCycleSearch(g).scan()) > 0
}
