package graph

import "cmp"

// Reverse builds the inverse relation: for every edge k -> v the result has
// v -> k. Every dependency target of g is a key of the result.
func Reverse[K cmp.Ordered](g *Graph[K]) *Graph[K] {
	rev := New[K]()
	for k, deps := range g.All() {
		for v := range deps.All() {
			rev.AddEdge(v, k)
		}
	}
	return rev
}

// EnsureAllNodesDefined returns a copy of g in which every node that is only
// referenced as a dependency becomes a key with no dependencies.
//
// Dangling references are not errors here; whether a reference resolves to a
// real project node is decided by whoever built the graph.
func EnsureAllNodesDefined[K cmp.Ordered](g *Graph[K]) *Graph[K] {
	res := g.Clone()
	for _, deps := range g.All() {
		for v := range deps.All() {
			if !g.Has(v) {
				res.AddNode(v)
			}
		}
	}
	return res
}

// PruneSelfDeps removes every self-loop from g in place.
func PruneSelfDeps[K cmp.Ordered](g *Graph[K]) {
	for k, deps := range g.All() {
		deps.Remove(k)
	}
}
