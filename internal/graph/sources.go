package graph

import "cmp"

// Sources returns the nodes that depend on nothing: keys with an empty
// dependency set plus nodes that are referenced but never declared as keys.
func Sources[K cmp.Ordered](g *Graph[K]) *Set[K] {
	sources := NewSet[K]()
	for k, deps := range g.All() {
		if deps.Len() == 0 {
			sources.Add(k)
			continue
		}
		for v := range deps.All() {
			if !g.Has(v) {
				sources.Add(v)
			}
		}
	}
	return sources
}

// Sinks walks the reverse relation (node -> dependents) breadth-first from
// the given nodes. A node without dependents is a sink. With all set, every
// visited node is returned instead of only the sinks.
func Sinks[K cmp.Ordered](reverse *Graph[K], from *Set[K], all bool) *Set[K] {
	visited := NewSet[K]()
	sinks := NewSet[K]()

	queue := make([]K, 0, from.Len())
	for n := range from.All() {
		queue = append(queue, n)
		visited.Add(n)
	}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		dependents, ok := reverse.Deps(n)
		if !ok || dependents.Len() == 0 {
			sinks.Add(n)
			continue
		}
		for d := range dependents.All() {
			if visited.Add(d) {
				queue = append(queue, d)
			}
		}
	}

	if all {
		return visited
	}
	return sinks
}

// TerminalSinks returns the dependents recorded in reverse that have no
// dependents of their own. When there are none and g is not empty, the
// first key of g is returned so the result is never empty for a non-empty
// graph.
func TerminalSinks[K cmp.Ordered](g, reverse *Graph[K]) *Set[K] {
	sinks := NewSet[K]()
	for _, dependents := range reverse.All() {
		for v := range dependents.All() {
			if !reverse.Has(v) {
				sinks.Add(v)
			}
		}
	}
	if sinks.Len() == 0 {
		for k := range g.All() {
			sinks.Add(k)
			break
		}
	}
	return sinks
}

// Roots returns the keys of g without dependencies, in ascending order.
func Roots[K cmp.Ordered](g *Graph[K]) []K {
	var roots []K
	for k, deps := range g.All() {
		if deps.Len() == 0 {
			roots = append(roots, k)
		}
	}
	return roots
}

// Leaves returns the nodes of g that nothing depends on, in ascending order.
func Leaves[K cmp.Ordered](g *Graph[K]) []K {
	rev := Reverse(g)
	var leaves []K
	for n := range g.Nodes().All() {
		if !rev.Has(n) {
			leaves = append(leaves, n)
		}
	}
	return leaves
}
