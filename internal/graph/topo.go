package graph

import (
	"cmp"
	"slices"

	"github.com/google/btree"
)

// TopologicalSort returns the nodes of g so that every dependency comes
// before the nodes depending on it (Kahn's algorithm).
//
// The sort counts, per node, how many nodes depend on it. Nodes nobody
// depends on seed a max-priority queue; the largest is popped, emitted, and
// its dependencies lose one dependent each. The emitted sequence is reversed
// at the end. Popping the maximum plus the final reversal makes the order a
// pure function of the graph.
//
// Cycles are not detected here: nodes on a cycle, and everything they
// depend on exclusively through it, are left out. Run FindAndCutCycles first.
func TopologicalSort[K cmp.Ordered](g *Graph[K]) []K {
	dependents := make(map[K]int, g.Len())
	for k, deps := range g.All() {
		if _, ok := dependents[k]; !ok {
			dependents[k] = 0
		}
		for d := range deps.All() {
			dependents[d]++
		}
	}

	queue := btree.NewG[K](btreeDegree, cmp.Less[K])
	for n, count := range dependents {
		if count == 0 {
			queue.ReplaceOrInsert(n)
		}
	}

	order := make([]K, 0, len(dependents))
	for queue.Len() > 0 {
		n, _ := queue.DeleteMax()
		order = append(order, n)

		deps, _ := g.Deps(n)
		for d := range deps.All() {
			dependents[d]--
			if dependents[d] == 0 {
				queue.ReplaceOrInsert(d)
			}
		}
	}

	slices.Reverse(order)
	return order
}
