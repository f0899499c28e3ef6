package graph

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func is(want string) func(string) bool {
	return func(n string) bool { return n == want }
}

func never(string) bool { return false }

func TestFindAndCutCyclesWithPredicate(t *testing.T) {
	g := FromMap(map[string][]string{"a": {"b"}, "b": {"c"}, "c": {"a"}})

	report := FindAndCutCycles(g, is("b"))

	if diff := cmp.Diff([]Cycle[string]{{"a", "b", "c"}}, report.Cycles); diff != "" {
		t.Errorf("Cycles mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]CutPoint[string]{{Node: "b"}}, report.CutPoints); diff != "" {
		t.Errorf("CutPoints mismatch (-want +got):\n%s", diff)
	}

	want := map[string][]string{"a": {}, "b": {"c"}, "c": {"a"}}
	if diff := cmp.Diff(want, report.Graph.ToMap()); diff != "" {
		t.Errorf("cut graph mismatch (-want +got):\n%s", diff)
	}
	if !g.HasEdge("a", "b") {
		t.Error("FindAndCutCycles modified its input")
	}
	if len(report.Unresolved()) != 0 {
		t.Errorf("Unresolved = %v, want none", report.Unresolved())
	}
}

func TestFindAndCutCyclesFixedPoint(t *testing.T) {
	g := FromMap(map[string][]string{
		"model.a": {"model.b"},
		"model.b": {"seed.x", "model.c"},
		"model.c": {"model.a"},
		"seed.x":  {"model.b"},
	})
	isModelB := is("model.b")

	report := FindAndCutCycles(g, isModelB)
	if !report.HasCycles() {
		t.Fatal("expected cycles")
	}
	if len(report.Unresolved()) != 0 {
		t.Fatalf("predicate should match every cycle, unresolved: %v", report.Unresolved())
	}
	if HasCycles(report.Graph) {
		t.Errorf("cut graph still has cycles:\n%s", report.Graph)
	}

	again := FindAndCutCycles(report.Graph, isModelB)
	if again.HasCycles() {
		t.Errorf("second pass found %v, want none", again.Cycles)
	}
}

func TestFallbackReportOnlyKeepsCycle(t *testing.T) {
	g := createCyclicGraph()

	report := FindAndCutCycles(g, never)

	if diff := cmp.Diff([]CutPoint[string]{{Node: "A", Fallback: true}}, report.CutPoints); diff != "" {
		t.Errorf("CutPoints mismatch (-want +got):\n%s", diff)
	}
	if !report.Graph.Equal(g) {
		t.Errorf("report-only policy changed the graph:\n%s", report.Graph)
	}
	if got := len(report.Unresolved()); got != 1 {
		t.Errorf("Unresolved count = %d, want 1", got)
	}
	if _, ok := report.CutPoints[0].Get(); ok {
		t.Error("fallback cut point should report no predicate match")
	}
}

func TestFallbackApplyCutsCycle(t *testing.T) {
	g := createCyclicGraph()

	report := FindAndCutCycles(g, never, WithFallbackPolicy(FallbackApply))

	want := map[string][]string{"A": {"B"}, "B": {"C"}, "C": {}}
	if diff := cmp.Diff(want, report.Graph.ToMap()); diff != "" {
		t.Errorf("cut graph mismatch (-want +got):\n%s", diff)
	}
	if !report.CutPoints[0].Fallback {
		t.Error("fallback cut point should stay tagged under the apply policy")
	}
	if HasCycles(report.Graph) {
		t.Error("apply policy left a cycle behind")
	}
}

func TestSelfLoopIsACycle(t *testing.T) {
	g := FromMap(map[string][]string{"a": {"a", "b"}, "b": nil})

	report := FindAndCutCycles(g, nil)
	if diff := cmp.Diff([]Cycle[string]{{"a"}}, report.Cycles); diff != "" {
		t.Errorf("Cycles mismatch (-want +got):\n%s", diff)
	}
}

func TestOverlappingCycles(t *testing.T) {
	g := FromMap(map[string][]string{
		"a": {"b"},
		"b": {"a", "c"},
		"c": {"b"},
	})

	cycles := FindCycles(g)
	want := []Cycle[string]{{"a", "b"}, {"b", "c"}}
	if diff := cmp.Diff(want, cycles); diff != "" {
		t.Errorf("FindCycles mismatch (-want +got):\n%s", diff)
	}
}

func TestDisjointCycles(t *testing.T) {
	g := FromMap(map[string][]string{
		"a": {"b"}, "b": {"a"},
		"c": {"d"}, "d": {"c"},
		"e": nil,
	})

	cuts := CycleCutPoints(g, is("d"))
	want := []CutPoint[string]{{Node: "a", Fallback: true}, {Node: "d"}}
	if diff := cmp.Diff(want, cuts); diff != "" {
		t.Errorf("CycleCutPoints mismatch (-want +got):\n%s", diff)
	}
}

func TestHasCycles(t *testing.T) {
	if HasCycles(createTestGraph()) {
		t.Error("acyclic graph reported as cyclic")
	}
	if !HasCycles(createCyclicGraph()) {
		t.Error("cyclic graph reported as acyclic")
	}
	if got := FindCycles(createTestGraph()); len(got) != 0 {
		t.Errorf("FindCycles on acyclic graph = %v, want none", got)
	}
}

func TestFallbackPolicyString(t *testing.T) {
	if FallbackReportOnly.String() != "report" {
		t.Errorf("FallbackReportOnly.String() = %q", FallbackReportOnly.String())
	}
	if FallbackApply.String() != "apply" {
		t.Errorf("FallbackApply.String() = %q", FallbackApply.String())
	}
}
