// Package plan turns a manifest and a selection into a build schedule: the
// dependency graph of the selection with cycles cut, its topological order and
// its concurrent waves.
package plan

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rtmx-ai/depgraph/internal/graph"
	"github.com/rtmx-ai/depgraph/internal/logging"
	"github.com/rtmx-ai/depgraph/internal/manifest"
	"github.com/rtmx-ai/depgraph/internal/selector"
)

// ErrUnresolvedCycle is returned when a cycle has no member of a cut point
// kind and the builder is told to fail on it.
var ErrUnresolvedCycle = errors.New("unresolved dependency cycle")

// Builder builds schedules.
type Builder struct {
	// CutPointKinds lists the kinds allowed to absorb a cycle cut.
	CutPointKinds []manifest.Kind
	// Policy decides what happens to cycles no cut point kind resolves.
	Policy graph.FallbackPolicy
	// FailOnUnresolvedCycles turns fallback cuts into ErrUnresolvedCycle.
	FailOnUnresolvedCycles bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithCutPointKinds replaces the cut point kinds.
func WithCutPointKinds(kinds ...manifest.Kind) Option {
	return func(b *Builder) {
		b.CutPointKinds = kinds
	}
}

// WithFallbackPolicy sets the policy for unresolved cycles.
func WithFallbackPolicy(p graph.FallbackPolicy) Option {
	return func(b *Builder) {
		b.Policy = p
	}
}

// WithFailOnUnresolvedCycles makes unresolved cycles fatal.
func WithFailOnUnresolvedCycles(fail bool) Option {
	return func(b *Builder) {
		b.FailOnUnresolvedCycles = fail
	}
}

// NewBuilder returns a builder that cuts cycles at test nodes and only
// reports the rest.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		CutPointKinds: []manifest.Kind{manifest.KindTest, manifest.KindUnitTest},
		Policy:        graph.FallbackReportOnly,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// KindPredicate returns a cut point predicate matching nodes of m whose kind
// is one of kinds. Ids m does not declare never match.
func KindPredicate(m *manifest.Manifest, kinds ...manifest.Kind) func(string) bool {
	return func(id string) bool {
		n := m.Get(id)
		return n != nil && slices.Contains(kinds, n.Kind)
	}
}

// Normalize returns the dependency graph of m with self-dependencies removed
// and every referenced node declared.
func Normalize(m *manifest.Manifest) *graph.Graph[string] {
	raw := m.Graph()
	graph.PruneSelfDeps(raw)
	return graph.EnsureAllNodesDefined(raw)
}

// CutCycles normalizes m and runs cycle breaking with the builder's
// predicate and policy.
func (b *Builder) CutCycles(m *manifest.Manifest) graph.CycleReport[string] {
	report := graph.FindAndCutCycles(Normalize(m), KindPredicate(m, b.CutPointKinds...),
		graph.WithFallbackPolicy(b.Policy))

	for i, cycle := range report.Cycles {
		cut := report.CutPoints[i]
		if cut.Fallback {
			logging.Warn("plan", "unresolved cycle %s (policy %s)", FormatCycle(cycle), b.Policy)
			continue
		}
		logging.Info("plan", "cut cycle %s at %s", FormatCycle(cycle), cut.Node)
	}
	return report
}

// Build computes the schedule of m for the given selection. An empty
// selectExpr selects every node; an empty excludeExpr excludes nothing.
func (b *Builder) Build(m *manifest.Manifest, selectExpr, excludeExpr string) (*Schedule, error) {
	report := b.CutCycles(m)
	if unresolved := report.Unresolved(); b.FailOnUnresolvedCycles && len(unresolved) > 0 {
		names := make([]string, len(unresolved))
		for i, c := range unresolved {
			names[i] = FormatCycle(c)
		}
		return nil, fmt.Errorf("%w: %s", ErrUnresolvedCycle, strings.Join(names, "; "))
	}
	cut := report.Graph

	selected, sel, err := selector.SelectString(selectExpr, m, cut)
	if err != nil {
		return nil, fmt.Errorf("invalid --select: %w", err)
	}
	var excl *selector.Expression
	if strings.TrimSpace(excludeExpr) != "" {
		excl, err = selector.Parse(excludeExpr)
		if err != nil {
			return nil, fmt.Errorf("invalid --exclude: %w", err)
		}
		for id := range excl.Select(m, cut).All() {
			selected.Remove(id)
		}
	}

	frontier := graph.NewSet[string]()
	for id := range selected.All() {
		deps, _ := cut.Deps(id)
		for d := range deps.All() {
			if !selected.Has(d) {
				frontier.Add(d)
			}
		}
	}

	unused := unusedSources(m, cut)

	deps := graph.UpstreamGraph(cut, selected)
	sorted := slices.DeleteFunc(graph.TopologicalSort(deps), unused.Has)

	closed := selected.Clone()
	closed.Union(frontier)

	s := &Schedule{
		Deps:          deps,
		Sorted:        sorted,
		SelfContained: graph.TopologicalSort(graph.Restrict(cut, closed)),
		Levels:        graph.Levels(graph.Restrict(cut, selected)),
		Selected:      selected,
		Frontier:      frontier,
		Unused:        unused,
		Cycles:        report,
	}
	if sel != nil {
		s.Select = sel.String()
	}
	if excl != nil {
		s.Exclude = excl.String()
	}

	logging.Debug("plan", "selected %d nodes, %d frontier, %d levels",
		selected.Len(), frontier.Len(), len(s.Levels))
	return s, nil
}

// unusedSources returns the source nodes of m nothing depends on.
func unusedSources(m *manifest.Manifest, g *graph.Graph[string]) *graph.Set[string] {
	dependents := graph.Reverse(g)
	res := graph.NewSet[string]()
	for _, n := range m.All() {
		if !n.Kind.IsSource() {
			continue
		}
		if deps, _ := dependents.Deps(n.UniqueID); deps.Len() == 0 {
			res.Add(n.UniqueID)
		}
	}
	return res
}

// FormatCycle renders a cycle as "a -> b -> a".
func FormatCycle(c graph.Cycle[string]) string {
	if len(c) == 0 {
		return ""
	}
	return strings.Join(c, " -> ") + " -> " + c[0]
}
