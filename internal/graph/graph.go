// Package graph provides the dependency graph algorithms used to plan a build.
//
// A Graph maps every node to the ordered set of nodes it directly depends on.
// Everything in this package is deterministic: keys and dependency sets are
// kept in ascending order, so two runs over the same input produce identical
// orders, levels and cycle reports.
//
// The functions never perform I/O and never mutate their inputs unless the
// name says so (PruneSelfDeps, AddEdge, ...). Read-only functions may be
// called concurrently on a Graph that nobody is mutating.
package graph

import (
	"cmp"
	"fmt"
	"iter"
	"strings"

	"github.com/google/btree"
)

type entry[K cmp.Ordered] struct {
	key  K
	deps *Set[K]
}

func entryLess[K cmp.Ordered](a, b entry[K]) bool {
	return cmp.Less(a.key, b.key)
}

// Graph is a dependency relation: node -> nodes it depends on.
//
// Cycles and self-loops are allowed; they are an expected transient state
// until FindAndCutCycles has been applied.
type Graph[K cmp.Ordered] struct {
	nodes *btree.BTreeG[entry[K]]
}

func New[K cmp.Ordered]() *Graph[K] {
	return &Graph[K]{nodes: btree.NewG[entry[K]](btreeDegree, entryLess[K])}
}

// FromMap builds a graph from a plain adjacency map.
func FromMap[K cmp.Ordered](deps map[K][]K) *Graph[K] {
	g := New[K]()
	for k, vs := range deps {
		g.AddNode(k)
		for _, v := range vs {
			g.AddEdge(k, v)
		}
	}
	return g
}

func (g *Graph[K]) lookup(k K) (*Set[K], bool) {
	if g == nil || g.nodes == nil {
		return nil, false
	}
	e, ok := g.nodes.Get(entry[K]{key: k})
	if !ok {
		return nil, false
	}
	return e.deps, true
}

func (g *Graph[K]) ensure(k K) *Set[K] {
	if deps, ok := g.lookup(k); ok {
		return deps
	}
	if g.nodes == nil {
		g.nodes = btree.NewG[entry[K]](btreeDegree, entryLess[K])
	}
	deps := NewSet[K]()
	g.nodes.ReplaceOrInsert(entry[K]{key: k, deps: deps})
	return deps
}

// AddNode declares k as a key. Existing dependencies are kept.
func (g *Graph[K]) AddNode(k K) {
	g.ensure(k)
}

// AddEdge records that from depends on to. The target is not declared as a
// key; use EnsureAllNodesDefined for that.
func (g *Graph[K]) AddEdge(from, to K) {
	g.ensure(from).Add(to)
}

// RemoveEdge deletes the edge from -> to and reports whether it existed.
func (g *Graph[K]) RemoveEdge(from, to K) bool {
	deps, ok := g.lookup(from)
	if !ok {
		return false
	}
	return deps.Remove(to)
}

func (g *Graph[K]) Has(k K) bool {
	_, ok := g.lookup(k)
	return ok
}

// Deps returns the direct dependencies of k and whether k is a key.
// The returned set is owned by the graph and must not be modified.
func (g *Graph[K]) Deps(k K) (*Set[K], bool) {
	return g.lookup(k)
}

// Dependencies returns the direct dependencies of k as a sorted slice.
func (g *Graph[K]) Dependencies(k K) []K {
	deps, _ := g.lookup(k)
	return deps.Slice()
}

func (g *Graph[K]) HasEdge(from, to K) bool {
	deps, _ := g.lookup(from)
	return deps.Has(to)
}

func (g *Graph[K]) Len() int {
	if g == nil || g.nodes == nil {
		return 0
	}
	return g.nodes.Len()
}

// EdgeCount returns the number of edges.
func (g *Graph[K]) EdgeCount() int {
	count := 0
	for _, deps := range g.All() {
		count += deps.Len()
	}
	return count
}

// All iterates keys in ascending order together with their dependency sets.
func (g *Graph[K]) All() iter.Seq2[K, *Set[K]] {
	return func(yield func(K, *Set[K]) bool) {
		if g == nil || g.nodes == nil {
			return
		}
		g.nodes.Ascend(func(e entry[K]) bool {
			return yield(e.key, e.deps)
		})
	}
}

func (g *Graph[K]) Keys() []K {
	keys := make([]K, 0, g.Len())
	for k := range g.All() {
		keys = append(keys, k)
	}
	return keys
}

func (g *Graph[K]) KeySet() *Set[K] {
	s := NewSet[K]()
	for k := range g.All() {
		s.Add(k)
	}
	return s
}

// Nodes returns every node mentioned by g, as a key or as a dependency.
func (g *Graph[K]) Nodes() *Set[K] {
	s := NewSet[K]()
	for k, deps := range g.All() {
		s.Add(k)
		s.Union(deps)
	}
	return s
}

// Clone returns a deep copy; dependency sets are not shared.
func (g *Graph[K]) Clone() *Graph[K] {
	c := New[K]()
	for k, deps := range g.All() {
		c.nodes.ReplaceOrInsert(entry[K]{key: k, deps: deps.Clone()})
	}
	return c
}

// Equal reports whether both graphs have the same keys and edges.
func (g *Graph[K]) Equal(other *Graph[K]) bool {
	if g.Len() != other.Len() {
		return false
	}
	for k, deps := range g.All() {
		od, ok := other.lookup(k)
		if !ok || !deps.Equal(od) {
			return false
		}
	}
	return true
}

// ToMap converts the graph to a plain map with sorted dependency slices.
func (g *Graph[K]) ToMap() map[K][]K {
	m := make(map[K][]K, g.Len())
	for k, deps := range g.All() {
		m[k] = deps.Slice()
	}
	return m
}

// String renders one "key -> dep, dep" line per key.
func (g *Graph[K]) String() string {
	var sb strings.Builder
	for k, deps := range g.All() {
		parts := make([]string, 0, deps.Len())
		for d := range deps.All() {
			parts = append(parts, fmt.Sprint(d))
		}
		fmt.Fprintf(&sb, "%v -> %s\n", k, strings.Join(parts, ", "))
	}
	return sb.String()
}

// Stats summarizes the shape of a graph.
type Stats struct {
	Nodes           int     `json:"nodes"`
	Edges           int     `json:"edges"`
	Roots           int     `json:"roots"`
	Leaves          int     `json:"leaves"`
	AvgDependencies float64 `json:"avg_dependencies"`
}

// Statistics returns graph statistics. Roots are nodes without
// dependencies, leaves are nodes nothing depends on.
func (g *Graph[K]) Statistics() Stats {
	full := EnsureAllNodesDefined(g)
	rev := Reverse(full)

	stats := Stats{
		Nodes: full.Len(),
		Edges: full.EdgeCount(),
	}
	for k, deps := range full.All() {
		if deps.Len() == 0 {
			stats.Roots++
		}
		if !rev.Has(k) {
			stats.Leaves++
		}
	}
	if stats.Nodes > 0 {
		stats.AvgDependencies = float64(stats.Edges) / float64(stats.Nodes)
	}
	return stats
}
