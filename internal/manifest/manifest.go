package manifest

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rtmx-ai/depgraph/internal/graph"
)

var (
	// ErrNodeExists is returned when adding a unique id twice.
	ErrNodeExists = errors.New("node already exists")
	// ErrNodeNotFound is returned when a unique id is unknown.
	ErrNodeNotFound = errors.New("node not found")
)

// Manifest is the in-memory set of project nodes.
type Manifest struct {
	// nodes stores all nodes by unique id.
	nodes map[string]*Node

	// order preserves insertion order for consistent output.
	order []string

	// path is the file path this manifest was loaded from.
	path string

	// dirty tracks if the manifest has been modified.
	dirty bool
}

// New creates a new empty manifest.
func New() *Manifest {
	return &Manifest{
		nodes: make(map[string]*Node),
		order: make([]string, 0),
	}
}

// Path returns the file path this manifest was loaded from.
func (m *Manifest) Path() string {
	return m.path
}

// SetPath sets the file path for saving.
func (m *Manifest) SetPath(path string) {
	m.path = path
}

// IsDirty returns true if the manifest has unsaved changes.
func (m *Manifest) IsDirty() bool {
	return m.dirty
}

// Len returns the number of nodes.
func (m *Manifest) Len() int {
	return len(m.nodes)
}

// Get retrieves a node by unique id, or nil.
func (m *Manifest) Get(id string) *Node {
	return m.nodes[id]
}

// Exists checks if a node exists.
func (m *Manifest) Exists(id string) bool {
	_, ok := m.nodes[id]
	return ok
}

// Add adds a new node. Empty kind, package and name are derived from the id.
func (m *Manifest) Add(n *Node) error {
	if n.UniqueID == "" {
		return fmt.Errorf("unique id cannot be empty")
	}
	if m.Exists(n.UniqueID) {
		return fmt.Errorf("%w: %q", ErrNodeExists, n.UniqueID)
	}
	n.fillFromID()
	m.nodes[n.UniqueID] = n
	m.order = append(m.order, n.UniqueID)
	m.dirty = true
	return nil
}

// Remove removes a node. Edges pointing at it from other nodes are kept and
// become dangling references.
func (m *Manifest) Remove(id string) error {
	if !m.Exists(id) {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}
	delete(m.nodes, id)
	m.order = slices.DeleteFunc(m.order, func(o string) bool { return o == id })
	m.dirty = true
	return nil
}

// All returns all nodes in insertion order.
func (m *Manifest) All() []*Node {
	nodes := make([]*Node, 0, len(m.order))
	for _, id := range m.order {
		if n := m.nodes[id]; n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// IDs returns all unique ids in insertion order.
func (m *Manifest) IDs() []string {
	return slices.Clone(m.order)
}

// FilterOptions specifies criteria for filtering nodes. Zero values match
// everything.
type FilterOptions struct {
	Kind    *Kind
	Package string
	Tag     string
	IsTest  *bool
}

// Filter returns the nodes matching the given criteria in insertion order.
func (m *Manifest) Filter(opts FilterOptions) []*Node {
	var results []*Node
	for _, n := range m.All() {
		if opts.Kind != nil && n.Kind != *opts.Kind {
			continue
		}
		if opts.Package != "" && n.Package != opts.Package {
			continue
		}
		if opts.Tag != "" && !n.HasTag(opts.Tag) {
			continue
		}
		if opts.IsTest != nil && n.Kind.IsTest() != *opts.IsTest {
			continue
		}
		results = append(results, n)
	}
	return results
}

// KindCounts returns the number of nodes per kind.
func (m *Manifest) KindCounts() map[Kind]int {
	counts := make(map[Kind]int)
	for _, n := range m.All() {
		counts[n.Kind]++
	}
	return counts
}

// Packages returns all unique non-empty package names, sorted.
func (m *Manifest) Packages() []string {
	seen := make(map[string]bool)
	var pkgs []string
	for _, n := range m.All() {
		if n.Package != "" && !seen[n.Package] {
			seen[n.Package] = true
			pkgs = append(pkgs, n.Package)
		}
	}
	slices.Sort(pkgs)
	return pkgs
}

// Dangling returns the referenced unique ids that no node declares, sorted.
func (m *Manifest) Dangling() []string {
	missing := make(StringSet)
	for _, n := range m.All() {
		for dep := range n.DependsOn {
			if !m.Exists(dep) {
				missing.Add(dep)
			}
		}
	}
	return missing.Slice()
}

// Graph returns the raw dependency relation: every node is a key mapped to
// the ids it depends on. References to undeclared ids are kept as edges;
// normalizing them is left to the graph package.
func (m *Manifest) Graph() *graph.Graph[string] {
	g := graph.New[string]()
	for _, n := range m.All() {
		g.AddNode(n.UniqueID)
		for dep := range n.DependsOn {
			g.AddEdge(n.UniqueID, dep)
		}
	}
	return g
}

// PackageGraph returns the package-level relation: a package depends on
// every other package one of its nodes reads from. Nodes without a package
// and references to undeclared ids are ignored.
func (m *Manifest) PackageGraph() *graph.Graph[string] {
	g := graph.New[string]()
	for _, n := range m.All() {
		if n.Package == "" {
			continue
		}
		g.AddNode(n.Package)
		for dep := range n.DependsOn {
			target := m.Get(dep)
			if target == nil || target.Package == "" || target.Package == n.Package {
				continue
			}
			g.AddEdge(n.Package, target.Package)
		}
	}
	return g
}
