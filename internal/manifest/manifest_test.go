package manifest

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input    string
		expected Kind
		wantErr  bool
	}{
		{"model", KindModel, false},
		{"MODEL", KindModel, false},
		{" seed ", KindSeed, false},
		{"unit_test", KindUnitTest, false},
		{"source", KindSource, false},
		{"", "", true},
		{"macro", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.expected {
				t.Errorf("ParseKind(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestKindPredicates(t *testing.T) {
	if !KindTest.IsTest() || !KindUnitTest.IsTest() || KindModel.IsTest() {
		t.Error("IsTest reports wrong kinds")
	}
	if !KindSource.IsSource() || KindSeed.IsSource() {
		t.Error("IsSource reports wrong kinds")
	}
	if KindSource.Weight() >= KindModel.Weight() || KindModel.Weight() >= KindTest.Weight() {
		t.Error("Weight should order sources before models before tests")
	}
}

func TestSplitID(t *testing.T) {
	tests := []struct {
		id   string
		kind Kind
		pkg  string
		name string
	}{
		{"model.shop.orders", KindModel, "shop", "orders"},
		{"source.shop.raw.orders", KindSource, "shop", "raw.orders"},
		{"test.shop.not_null_orders_id.5f1a", KindTest, "shop", "not_null_orders_id.5f1a"},
		{"orders", "", "", ""},
		{"macro.shop.helper", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			kind, pkg, name := SplitID(tt.id)
			if kind != tt.kind || pkg != tt.pkg || name != tt.name {
				t.Errorf("SplitID(%q) = (%q, %q, %q), want (%q, %q, %q)",
					tt.id, kind, pkg, name, tt.kind, tt.pkg, tt.name)
			}
		})
	}
}

func TestStringSet(t *testing.T) {
	s := NewStringSet("b", "a", " ", "c")
	if s.Len() != 3 {
		t.Errorf("NewStringSet: expected 3 items, got %d", s.Len())
	}
	if got := s.String(); got != "a|b|c" {
		t.Errorf("String() = %q, want %q", got, "a|b|c")
	}

	s.Remove("a")
	if s.Contains("a") {
		t.Error("StringSet should not contain 'a' after Remove")
	}

	if got := ParseStringSet("x| y ||z").Slice(); !cmp.Equal(got, []string{"x", "y", "z"}) {
		t.Errorf("ParseStringSet = %v", got)
	}
	if got := ParseStringSet("").Slice(); len(got) != 0 || got == nil {
		t.Errorf("ParseStringSet(\"\").Slice() = %#v, want empty non-nil", got)
	}
}

func TestNewNodeDerivesFields(t *testing.T) {
	n := NewNode("model.shop.orders")
	if n.Kind != KindModel || n.Package != "shop" || n.Name != "orders" {
		t.Errorf("NewNode = %+v", n)
	}
	if n.FQN() != "shop.orders" {
		t.Errorf("FQN() = %q, want shop.orders", n.FQN())
	}

	clone := n.Clone()
	clone.DependsOn.Add("seed.shop.raw")
	if n.DependsOn.Len() != 0 {
		t.Error("Clone should not share DependsOn")
	}
}

// shopManifest builds a small two-package project.
func shopManifest(t *testing.T) *Manifest {
	t.Helper()
	m := New()
	add := func(id string, deps ...string) *Node {
		n := NewNode(id)
		for _, d := range deps {
			n.DependsOn.Add(d)
		}
		if err := m.Add(n); err != nil {
			t.Fatalf("Add(%s) failed: %v", id, err)
		}
		return n
	}
	add("source.shop.raw.orders")
	add("seed.shop.countries")
	add("model.shop.stg_orders", "source.shop.raw.orders")
	add("model.shop.orders", "model.shop.stg_orders", "seed.shop.countries")
	add("model.finance.revenue", "model.shop.orders").Tags.Add("nightly")
	add("test.shop.not_null_orders_id", "model.shop.orders")
	add("exposure.finance.dashboard", "model.finance.revenue", "model.legacy.gone")
	return m
}

func TestManifest(t *testing.T) {
	m := New()

	n := NewNode("model.shop.orders")
	if err := m.Add(n); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if got := m.Get("model.shop.orders"); got != n {
		t.Fatal("Get returned a different node")
	}
	if !m.Exists("model.shop.orders") || m.Exists("model.shop.nope") {
		t.Error("Exists reports wrong membership")
	}
	if !m.IsDirty() {
		t.Error("manifest should be dirty after Add")
	}

	if err := m.Add(NewNode("model.shop.orders")); !errors.Is(err, ErrNodeExists) {
		t.Errorf("duplicate Add error = %v, want ErrNodeExists", err)
	}
	if err := m.Add(&Node{}); err == nil {
		t.Error("Add should fail for empty unique id")
	}

	if err := m.Remove("model.shop.orders"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if m.Len() != 0 || len(m.IDs()) != 0 {
		t.Errorf("Len = %d after Remove, want 0", m.Len())
	}
	if err := m.Remove("model.shop.orders"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("second Remove error = %v, want ErrNodeNotFound", err)
	}
}

func TestManifestFilter(t *testing.T) {
	m := shopManifest(t)

	model := KindModel
	if got := len(m.Filter(FilterOptions{Kind: &model})); got != 3 {
		t.Errorf("Filter by model: got %d, want 3", got)
	}
	if got := len(m.Filter(FilterOptions{Package: "finance"})); got != 2 {
		t.Errorf("Filter by package: got %d, want 2", got)
	}
	if got := len(m.Filter(FilterOptions{Tag: "nightly"})); got != 1 {
		t.Errorf("Filter by tag: got %d, want 1", got)
	}
	isTest := true
	if got := len(m.Filter(FilterOptions{IsTest: &isTest})); got != 1 {
		t.Errorf("Filter by IsTest: got %d, want 1", got)
	}

	counts := m.KindCounts()
	if counts[KindModel] != 3 || counts[KindSource] != 1 {
		t.Errorf("KindCounts = %v", counts)
	}
	if diff := cmp.Diff([]string{"finance", "shop"}, m.Packages()); diff != "" {
		t.Errorf("Packages mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"model.legacy.gone"}, m.Dangling()); diff != "" {
		t.Errorf("Dangling mismatch (-want +got):\n%s", diff)
	}
}

func TestManifestGraph(t *testing.T) {
	g := shopManifest(t).Graph()

	want := map[string][]string{
		"source.shop.raw.orders":       {},
		"seed.shop.countries":          {},
		"model.shop.stg_orders":        {"source.shop.raw.orders"},
		"model.shop.orders":            {"model.shop.stg_orders", "seed.shop.countries"},
		"model.finance.revenue":        {"model.shop.orders"},
		"test.shop.not_null_orders_id": {"model.shop.orders"},
		"exposure.finance.dashboard":   {"model.finance.revenue", "model.legacy.gone"},
	}
	if diff := cmp.Diff(want, g.ToMap()); diff != "" {
		t.Errorf("Graph mismatch (-want +got):\n%s", diff)
	}
}

func TestPackageGraph(t *testing.T) {
	g := shopManifest(t).PackageGraph()

	want := map[string][]string{
		"finance": {"shop"},
		"shop":    {},
	}
	if diff := cmp.Diff(want, g.ToMap()); diff != "" {
		t.Errorf("PackageGraph mismatch (-want +got):\n%s", diff)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	m := New()
	n := NewNode("model.shop.orders")
	n.Description = "Orders, with \"quotes\""
	n.Path = "models/orders.sql"
	n.DependsOn.Add("model.shop.stg_orders")
	n.DependsOn.Add("seed.shop.countries")
	n.Tags.Add("nightly")
	n.Extra["owner"] = "data-eng"
	if err := m.Add(n); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	var buf bytes.Buffer
	if err := m.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	m2, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	got := m2.Get("model.shop.orders")
	if got == nil {
		t.Fatal("Round-trip: node not found")
	}
	if diff := cmp.Diff(n, got); diff != "" {
		t.Errorf("Round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCSV(t *testing.T) {
	csvData := `UniqueId,Kind,DependsOn,Owner
model.shop.orders,,model.shop.stg_orders|seed.shop.countries,data-eng
seed.shop.countries,,,
model.shop.stg_orders,model,,
`
	m, err := ReadCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if diff := cmp.Diff([]string{"model.shop.orders", "seed.shop.countries", "model.shop.stg_orders"}, m.IDs()); diff != "" {
		t.Errorf("IDs mismatch (-want +got):\n%s", diff)
	}

	orders := m.Get("model.shop.orders")
	if orders.Kind != KindModel {
		t.Errorf("Kind = %v, want derived model", orders.Kind)
	}
	if orders.Extra["Owner"] != "data-eng" {
		t.Errorf("Extra = %v, want Owner preserved", orders.Extra)
	}
	if m.Get("seed.shop.countries").Kind != KindSeed {
		t.Error("seed kind was not derived from the id")
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing column", "kind,name\nmodel,orders\n"},
		{"empty id", "unique_id,kind\n,model\n"},
		{"bad kind", "unique_id,kind\nmodel.shop.orders,macro\n"},
		{"duplicate", "unique_id\nmodel.shop.a\nmodel.shop.a\n"},
		{"empty input", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadCSV(strings.NewReader(tt.data)); err == nil {
				t.Error("ReadCSV should fail")
			}
		})
	}
}

func TestReadYAML(t *testing.T) {
	data := `nodes:
  - unique_id: model.shop.orders
    depends_on: [model.shop.stg_orders, seed.shop.countries]
    tags: nightly|core
  - unique_id: model.shop.stg_orders
    kind: MODEL
  - unique_id: seed.shop.countries
`
	m, err := ReadYAML(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadYAML failed: %v", err)
	}
	if m.Len() != 3 {
		t.Fatalf("Len = %d, want 3", m.Len())
	}

	orders := m.Get("model.shop.orders")
	if diff := cmp.Diff([]string{"model.shop.stg_orders", "seed.shop.countries"}, orders.DependsOn.Slice()); diff != "" {
		t.Errorf("DependsOn mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"core", "nightly"}, orders.Tags.Slice()); diff != "" {
		t.Errorf("Tags mismatch (-want +got):\n%s", diff)
	}
	if m.Get("model.shop.stg_orders").Kind != KindModel {
		t.Error("kind was not normalized")
	}
}

func TestReadYAMLErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad kind", "nodes:\n  - unique_id: x.y.z\n    kind: macro\n"},
		{"missing id", "nodes:\n  - kind: model\n"},
		{"null entry", "nodes:\n  -\n"},
		{"not a list", "nodes: 3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadYAML(strings.NewReader(tt.data)); err == nil {
				t.Error("ReadYAML should fail")
			}
		})
	}

	m, err := ReadYAML(strings.NewReader(""))
	if err != nil || m.Len() != 0 {
		t.Errorf("empty document = (%v, %v), want empty manifest", m, err)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	m := shopManifest(t)

	var buf bytes.Buffer
	if err := m.WriteYAML(&buf); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}
	m2, err := ReadYAML(&buf)
	if err != nil {
		t.Fatalf("ReadYAML failed: %v", err)
	}
	if diff := cmp.Diff(m.Graph().ToMap(), m2.Graph().ToMap()); diff != "" {
		t.Errorf("graph changed across YAML (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(m.IDs(), m2.IDs()); diff != "" {
		t.Errorf("order changed across YAML (-want +got):\n%s", diff)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "manifest.csv")
	if err := os.WriteFile(csvPath, []byte("unique_id,depends_on\nmodel.a.x,model.a.y\nmodel.a.y,\n"), 0644); err != nil {
		t.Fatal(err)
	}
	yamlPath := filepath.Join(dir, "manifest.yml")
	if err := os.WriteFile(yamlPath, []byte("nodes:\n  - unique_id: model.a.x\n"), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadFile(csvPath)
	if err != nil {
		t.Fatalf("LoadFile(csv) failed: %v", err)
	}
	if m.Len() != 2 || m.Path() != csvPath || m.IsDirty() {
		t.Errorf("LoadFile(csv) = %d nodes, path %q, dirty %v", m.Len(), m.Path(), m.IsDirty())
	}

	m, err = LoadFile(yamlPath)
	if err != nil {
		t.Fatalf("LoadFile(yaml) failed: %v", err)
	}
	if m.Len() != 1 {
		t.Errorf("LoadFile(yaml) = %d nodes, want 1", m.Len())
	}

	if _, err := LoadFile(filepath.Join(dir, "manifest.json")); err == nil {
		t.Error("LoadFile should reject unknown extensions")
	}
	if _, err := LoadFile(filepath.Join(dir, "missing.csv")); err == nil {
		t.Error("LoadFile should fail for a missing file")
	}
}

func TestSaveCSV(t *testing.T) {
	m := shopManifest(t)
	if err := m.Save(""); err == nil {
		t.Error("Save without a path should fail")
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := m.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if m.IsDirty() || m.Path() != path {
		t.Error("Save should record the path and clear the dirty flag")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(m.Graph().ToMap(), loaded.Graph().ToMap()); diff != "" {
		t.Errorf("graph changed across Save/Load (-want +got):\n%s", diff)
	}
}

func TestNormalizeColumnName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"unique_id", "unique_id"},
		{"UniqueId", "unique_id"},
		{"DependsOn", "depends_on"},
		{"DEPENDS_ON", "depends_on"},
		{"packageName", "package_name"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := normalizeColumnName(tt.input); got != tt.expected {
				t.Errorf("normalizeColumnName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
