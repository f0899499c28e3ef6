package graph

import "cmp"

// Reachable returns every node reachable from seeds by following dependency
// edges breadth-first, seeds included. maxDepth bounds the number of edges
// followed; a negative maxDepth means unbounded.
//
// Nodes that are only referenced (not keys) are reported but not expanded.
func Reachable[K cmp.Ordered](g *Graph[K], seeds *Set[K], maxDepth int) *Set[K] {
	type item struct {
		node  K
		depth int
	}

	visited := NewSet[K]()
	queue := make([]item, 0, seeds.Len())
	for s := range seeds.All() {
		queue = append(queue, item{node: s})
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if !visited.Add(cur.node) {
			continue
		}
		if maxDepth >= 0 && cur.depth >= maxDepth {
			continue
		}
		deps, _ := g.Deps(cur.node)
		for next := range deps.All() {
			if !visited.Has(next) {
				queue = append(queue, item{node: next, depth: cur.depth + 1})
			}
		}
	}
	return visited
}

// Slice returns the part of g reachable from seeds: every visited key mapped
// to its full dependency set. The sets are not trimmed, so an edge may point
// outside the result; follow with Restrict for a closed subgraph.
func Slice[K cmp.Ordered](g *Graph[K], seeds *Set[K]) *Graph[K] {
	included := Reachable(g, seeds, -1)
	res := New[K]()
	for k, deps := range g.All() {
		if included.Has(k) {
			res.ensure(k).Union(deps)
		}
	}
	return res
}

// SliceFunc is Slice for identities whose canonical comparison is not plain
// equality, e.g. case-insensitive names. Membership checks and key lookups
// are linear.
func SliceFunc[K cmp.Ordered](g *Graph[K], seeds *Set[K], eq func(a, b K) bool) *Graph[K] {
	var included []K
	contains := func(n K) bool {
		for _, e := range included {
			if eq(e, n) {
				return true
			}
		}
		return false
	}

	queue := seeds.Slice()
	for len(queue) > 0 {
		element := queue[0]
		queue = queue[1:]
		if contains(element) {
			continue
		}
		included = append(included, element)
		for k, deps := range g.All() {
			if eq(k, element) {
				queue = append(queue, deps.Slice()...)
			}
		}
	}

	res := New[K]()
	for k, deps := range g.All() {
		if contains(k) {
			res.ensure(k).Union(deps)
		}
	}
	return res
}

// Restrict keeps the keys of g that are in subset and drops every edge whose
// target is outside subset. The result never has an edge leaving subset.
func Restrict[K cmp.Ordered](g *Graph[K], subset *Set[K]) *Graph[K] {
	res := New[K]()
	for k, deps := range g.All() {
		if !subset.Has(k) {
			continue
		}
		kept := res.ensure(k)
		for d := range deps.All() {
			if subset.Has(d) {
				kept.Add(d)
			}
		}
	}
	return res
}

// ancestors is the single ancestor-closure walk behind UpstreamGraph,
// Upstreams and AllUpstream. With includeSelf false every target is
// excluded, even one that is an ancestor of another target.
func ancestors[K cmp.Ordered](g *Graph[K], targets *Set[K], includeSelf bool) *Set[K] {
	visited := Reachable(g, targets, -1)
	if includeSelf {
		return visited
	}
	for t := range targets.All() {
		visited.Remove(t)
	}
	return visited
}

// UpstreamGraph returns the ancestor closure of targets, targets included,
// as a graph: each visited node maps to its direct dependencies, and nodes
// that are not keys of g map to an empty set.
func UpstreamGraph[K cmp.Ordered](g *Graph[K], targets *Set[K]) *Graph[K] {
	res := New[K]()
	for n := range ancestors(g, targets, true).All() {
		deps, _ := g.Deps(n)
		res.ensure(n).Union(deps)
	}
	return res
}

// Upstreams returns the ancestor closure of targets as a flat set.
func Upstreams[K cmp.Ordered](g *Graph[K], targets *Set[K], includeSelf bool) *Set[K] {
	return ancestors(g, targets, includeSelf)
}

// AllUpstream returns every transitive dependency of node, excluding node.
func AllUpstream[K cmp.Ordered](g *Graph[K], node K) *Set[K] {
	return ancestors(g, NewSet(node), false)
}

// Downstream returns every node that transitively depends on one of targets.
// With includeSelf the targets are part of the result.
func Downstream[K cmp.Ordered](g *Graph[K], targets *Set[K], includeSelf bool) *Set[K] {
	return ancestors(Reverse(g), targets, includeSelf)
}

// CollectEdgesThrough answers "which edges lie on a path through this
// boundary". The result merges:
//   - the nodes depending on prefix, walked over the reverse relation and
//     expressed back as forward edges,
//   - the slice of g below suffix,
//   - exact, as nodes without extra edges.
func CollectEdgesThrough[K cmp.Ordered](g *Graph[K], prefix, suffix, exact *Set[K]) *Graph[K] {
	rev := Reverse(g)
	up := Slice(rev, prefix)
	down := Slice(g, suffix)

	res := New[K]()
	for n := range exact.All() {
		res.AddNode(n)
	}
	for k, deps := range Reverse(up).All() {
		res.ensure(k).Union(deps)
	}
	for k, deps := range down.All() {
		res.ensure(k).Union(deps)
	}
	return res
}
