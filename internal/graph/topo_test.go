package graph

import (
	"fmt"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTopologicalSort(t *testing.T) {
	tests := []struct {
		name string
		deps map[string][]string
		want []string
	}{
		{
			name: "chain",
			deps: map[string][]string{"a": {"b"}, "b": {"c"}, "c": nil},
			want: []string{"c", "b", "a"},
		},
		{
			name: "diamond with isolated node",
			deps: map[string][]string{"A": {"B", "C"}, "B": {"D"}, "C": {"D"}, "D": nil, "E": nil},
			want: []string{"D", "B", "C", "A", "E"},
		},
		{
			name: "undeclared dependency",
			deps: map[string][]string{"a": {"ext"}},
			want: []string{"ext", "a"},
		},
		{
			name: "empty",
			deps: map[string][]string{},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TopologicalSort(FromMap(tt.deps))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("TopologicalSort mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// layeredGraph builds a deterministic acyclic graph in which node i depends
// on a few nodes with a smaller index.
func layeredGraph(n int) *Graph[string] {
	g := New[string]()
	name := func(i int) string { return fmt.Sprintf("node_%03d", i) }
	for i := range n {
		g.AddNode(name(i))
		for _, step := range []int{1, 3, 7} {
			if j := i - step; j >= 0 && i%step == 0 {
				g.AddEdge(name(i), name(j))
			}
		}
	}
	return g
}

func TestTopologicalSortDependencyOrder(t *testing.T) {
	g := layeredGraph(60)
	order := TopologicalSort(g)

	if len(order) != g.Len() {
		t.Fatalf("order has %d nodes, want %d", len(order), g.Len())
	}
	for n, deps := range g.All() {
		ni := slices.Index(order, n)
		for d := range deps.All() {
			if di := slices.Index(order, d); di >= ni {
				t.Errorf("dependency %s at %d is not before %s at %d", d, di, n, ni)
			}
		}
	}
}

func TestTopologicalSortIsDeterministic(t *testing.T) {
	forward := New[string]()
	backward := New[string]()
	edges := [][2]string{{"m", "a"}, {"m", "z"}, {"q", "a"}, {"b", "q"}, {"z", "c"}}
	for _, e := range edges {
		forward.AddEdge(e[0], e[1])
	}
	for _, e := range slices.Backward(edges) {
		backward.AddEdge(e[0], e[1])
	}

	first := TopologicalSort(forward)
	for range 5 {
		if diff := cmp.Diff(first, TopologicalSort(backward)); diff != "" {
			t.Fatalf("order depends on insertion order (-first +got):\n%s", diff)
		}
	}
}

func TestTopologicalSortLeavesOutCycles(t *testing.T) {
	g := createCyclicGraph()
	g.AddEdge("D", "A")
	g.AddNode("E")

	got := TopologicalSort(g)
	if diff := cmp.Diff([]string{"D", "E"}, got); diff != "" {
		t.Errorf("TopologicalSort mismatch (-want +got):\n%s", diff)
	}
}
