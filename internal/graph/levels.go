package graph

import (
	"cmp"
	"maps"
	"slices"
)

// LevelAssignment groups nodes into waves that can run concurrently.
type LevelAssignment[K cmp.Ordered] struct {
	// Levels[i] holds the nodes of level i in ascending order.
	Levels [][]K
	// Level maps every non-cyclic node to its level.
	Level map[K]int
	// Cyclic holds the nodes that sit on a cycle or depend on one.
	Cyclic *Set[K]
}

type levelState[K cmp.Ordered] struct {
	graph  *Graph[K]
	levels map[K]int
	stack  *Set[K]
	cyclic *Set[K]
}

// compute returns the level of n, or false when n reaches a cycle.
func (s *levelState[K]) compute(n K) (int, bool) {
	if lvl, ok := s.levels[n]; ok {
		return lvl, true
	}
	if s.cyclic.Has(n) {
		return 0, false
	}
	if s.stack.Has(n) {
		s.cyclic.Add(n)
		return 0, false
	}

	s.stack.Add(n)
	level := 0
	deps, _ := s.graph.Deps(n)
	for d := range deps.All() {
		dl, ok := s.compute(d)
		if !ok {
			s.cyclic.Add(n)
			s.stack.Remove(n)
			return 0, false
		}
		level = max(level, dl+1)
	}
	s.stack.Remove(n)
	s.levels[n] = level
	return level, true
}

// AssignLevels computes level(n) = 0 for nodes without dependencies and
// 1 + max(level(d)) otherwise. Nodes on a cycle, and nodes depending on one,
// get no level and are reported in Cyclic.
//
// No two nodes of one level depend on each other, directly or transitively,
// so a level can run concurrently once every earlier level has finished.
func AssignLevels[K cmp.Ordered](g *Graph[K]) LevelAssignment[K] {
	s := &levelState[K]{
		graph:  g,
		levels: make(map[K]int, g.Len()),
		stack:  NewSet[K](),
		cyclic: NewSet[K](),
	}
	for k := range g.All() {
		s.compute(k)
	}

	var levels [][]K
	for _, n := range slices.Sorted(maps.Keys(s.levels)) {
		if s.cyclic.Has(n) {
			continue
		}
		lvl := s.levels[n]
		for len(levels) <= lvl {
			levels = append(levels, nil)
		}
		levels[lvl] = append(levels[lvl], n)
	}

	return LevelAssignment[K]{
		Levels: compactLevels(levels),
		Level:  s.levels,
		Cyclic: s.cyclic,
	}
}

// compactLevels drops empty levels so the result stays dense.
func compactLevels[K cmp.Ordered](levels [][]K) [][]K {
	return slices.DeleteFunc(levels, func(l []K) bool { return len(l) == 0 })
}

// Levels returns the wave layering of g, level 0 first.
func Levels[K cmp.Ordered](g *Graph[K]) [][]K {
	return AssignLevels(g).Levels
}
