package graph

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLevels(t *testing.T) {
	tests := []struct {
		name string
		deps map[string][]string
		want [][]string
	}{
		{
			name: "chain",
			deps: map[string][]string{"a": {"b"}, "b": {"c"}, "c": nil},
			want: [][]string{{"c"}, {"b"}, {"a"}},
		},
		{
			name: "diamond",
			deps: map[string][]string{"a": {"b", "c"}, "b": {"d"}, "c": {"d"}, "d": nil},
			want: [][]string{{"d"}, {"b", "c"}, {"a"}},
		},
		{
			name: "multiple roots",
			deps: map[string][]string{"a": {"x", "y"}, "x": nil, "y": nil},
			want: [][]string{{"x", "y"}, {"a"}},
		},
		{
			name: "disconnected",
			deps: map[string][]string{"a": {"b"}, "b": nil, "c": nil},
			want: [][]string{{"b", "c"}, {"a"}},
		},
		{
			name: "longest path wins",
			deps: map[string][]string{"a": {"b", "d"}, "b": {"c"}, "c": {"d"}, "d": nil},
			want: [][]string{{"d"}, {"c"}, {"b"}, {"a"}},
		},
		{
			name: "undeclared dependency",
			deps: map[string][]string{"a": {"ext"}},
			want: [][]string{{"ext"}, {"a"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Levels(FromMap(tt.deps))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Levels mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLevelsEmpty(t *testing.T) {
	if got := Levels(New[string]()); len(got) != 0 {
		t.Errorf("Levels(empty) = %v, want none", got)
	}
}

func TestLevelsDropCycles(t *testing.T) {
	g := FromMap(map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": {"a"},
		"x": {"a"},
		"y": nil,
		"z": {"y"},
	})

	la := AssignLevels(g)
	if diff := cmp.Diff([][]string{{"y"}, {"z"}}, la.Levels); diff != "" {
		t.Errorf("Levels mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b", "c", "x"}, la.Cyclic.Slice()); diff != "" {
		t.Errorf("Cyclic mismatch (-want +got):\n%s", diff)
	}
	if _, ok := la.Level["x"]; ok {
		t.Error("node depending on a cycle got a level")
	}

	if got := Levels(createCyclicGraph()); len(got) != 0 {
		t.Errorf("Levels(pure cycle) = %v, want none", got)
	}
}

func TestLevelMonotonicity(t *testing.T) {
	g := layeredGraph(80)
	la := AssignLevels(g)

	if la.Cyclic.Len() != 0 {
		t.Fatalf("acyclic graph reported cyclic nodes %v", la.Cyclic.Slice())
	}
	for n, deps := range g.All() {
		for d := range deps.All() {
			if la.Level[d] >= la.Level[n] {
				t.Errorf("level(%s)=%d is not below level(%s)=%d", d, la.Level[d], n, la.Level[n])
			}
		}
	}

	total := 0
	for _, lvl := range la.Levels {
		total += len(lvl)
	}
	if total != g.Len() {
		t.Errorf("levels hold %d nodes, want %d", total, g.Len())
	}
}
