package graph

import (
	"cmp"
	"iter"

	"github.com/google/btree"
)

// btreeDegree is the branching factor used for every ordered container.
const btreeDegree = 16

// Set is an ordered set of node identities. Iteration is always ascending.
//
// A nil *Set behaves like an empty set for every read-only method.
type Set[K cmp.Ordered] struct {
	tree *btree.BTreeG[K]
}

// NewSet creates a set holding the given items.
func NewSet[K cmp.Ordered](items ...K) *Set[K] {
	s := &Set[K]{tree: btree.NewG[K](btreeDegree, cmp.Less[K])}
	for _, item := range items {
		s.tree.ReplaceOrInsert(item)
	}
	return s
}

// SetOf collects the items of a sequence into a new set.
func SetOf[K cmp.Ordered](seq iter.Seq[K]) *Set[K] {
	s := NewSet[K]()
	for item := range seq {
		s.Add(item)
	}
	return s
}

func (s *Set[K]) init() {
	if s.tree == nil {
		s.tree = btree.NewG[K](btreeDegree, cmp.Less[K])
	}
}

// Add inserts item and reports whether it was newly added.
func (s *Set[K]) Add(item K) bool {
	s.init()
	_, existed := s.tree.ReplaceOrInsert(item)
	return !existed
}

// Remove deletes item and reports whether it was present.
func (s *Set[K]) Remove(item K) bool {
	if s == nil || s.tree == nil {
		return false
	}
	_, ok := s.tree.Delete(item)
	return ok
}

func (s *Set[K]) Has(item K) bool {
	if s == nil || s.tree == nil {
		return false
	}
	return s.tree.Has(item)
}

func (s *Set[K]) Len() int {
	if s == nil || s.tree == nil {
		return 0
	}
	return s.tree.Len()
}

func (s *Set[K]) Min() (K, bool) {
	if s == nil || s.tree == nil {
		var zero K
		return zero, false
	}
	return s.tree.Min()
}

// All iterates the items in ascending order.
func (s *Set[K]) All() iter.Seq[K] {
	return func(yield func(K) bool) {
		if s == nil || s.tree == nil {
			return
		}
		s.tree.Ascend(func(item K) bool {
			return yield(item)
		})
	}
}

func (s *Set[K]) Slice() []K {
	items := make([]K, 0, s.Len())
	for item := range s.All() {
		items = append(items, item)
	}
	return items
}

// Clone returns an independent copy of the set.
//
// btree's own Clone swaps the copy-on-write context of the source tree, which
// is a write; copying item by item keeps Clone safe on shared snapshots.
func (s *Set[K]) Clone() *Set[K] {
	c := NewSet[K]()
	for item := range s.All() {
		c.tree.ReplaceOrInsert(item)
	}
	return c
}

func (s *Set[K]) Union(other *Set[K]) {
	for item := range other.All() {
		s.Add(item)
	}
}

// Equal reports whether both sets hold the same items.
func (s *Set[K]) Equal(other *Set[K]) bool {
	if s.Len() != other.Len() {
		return false
	}
	for item := range s.All() {
		if !other.Has(item) {
			return false
		}
	}
	return true
}
