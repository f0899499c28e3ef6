// Package testutil provides test utilities and fixtures for depgraph testing.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rtmx-ai/depgraph/internal/config"
	"github.com/rtmx-ai/depgraph/internal/manifest"
)

// ManifestOption configures a test manifest.
type ManifestOption func(*manifest.Manifest)

// NewTestManifest creates a manifest for testing with optional configuration.
func NewTestManifest(t *testing.T, opts ...ManifestOption) *manifest.Manifest {
	t.Helper()

	m := manifest.New()

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// WithNode adds a node to the manifest.
func WithNode(n *manifest.Node) ManifestOption {
	return func(m *manifest.Manifest) {
		_ = m.Add(n)
	}
}

// WithNodes adds multiple nodes to the manifest.
func WithNodes(nodes ...*manifest.Node) ManifestOption {
	return func(m *manifest.Manifest) {
		for _, n := range nodes {
			_ = m.Add(n)
		}
	}
}

// NodeOption configures a test node.
type NodeOption func(*manifest.Node)

// NewTestNode creates a node for testing. Kind, package and name are derived
// from the id.
func NewTestNode(id string, opts ...NodeOption) *manifest.Node {
	n := manifest.NewNode(id)
	n.Description = "Test node " + id

	for _, opt := range opts {
		opt(n)
	}

	return n
}

// WithDependsOn sets the node dependencies.
func WithDependsOn(deps ...string) NodeOption {
	return func(n *manifest.Node) {
		n.DependsOn = manifest.NewStringSet(deps...)
	}
}

// WithTags sets the node tags.
func WithTags(tags ...string) NodeOption {
	return func(n *manifest.Node) {
		n.Tags = manifest.NewStringSet(tags...)
	}
}

// WithKind overrides the derived kind.
func WithKind(kind manifest.Kind) NodeOption {
	return func(n *manifest.Node) {
		n.Kind = kind
	}
}

// WithPath sets the original file path.
func WithPath(path string) NodeOption {
	return func(n *manifest.Node) {
		n.Path = path
	}
}

// ConfigOption configures a test config.
type ConfigOption func(*config.Config)

// NewTestConfig creates a config for testing with optional configuration.
func NewTestConfig(t *testing.T, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// WithManifestPath sets the manifest path in the config.
func WithManifestPath(path string) ConfigOption {
	return func(c *config.Config) {
		c.Depgraph.Manifest = path
	}
}

// WithCutPointKinds sets the kinds allowed to absorb a cycle cut.
func WithCutPointKinds(kinds ...manifest.Kind) ConfigOption {
	return func(c *config.Config) {
		names := make([]string, len(kinds))
		for i, k := range kinds {
			names[i] = string(k)
		}
		c.Depgraph.Scheduling.CutPointKinds = names
	}
}

// WithFailOnUnresolvedCycles makes unresolved cycles fatal.
func WithFailOnUnresolvedCycles() ConfigOption {
	return func(c *config.Config) {
		c.Depgraph.Scheduling.FailOnUnresolvedCycles = true
	}
}

// WithConcurrency sets the wave concurrency.
func WithConcurrency(n int) ConfigOption {
	return func(c *config.Config) {
		c.Depgraph.Scheduling.Concurrency = n
	}
}

// TempProject creates a temporary directory with a .depgraph directory.
// Returns the directory path and a cleanup function.
func TempProject(t *testing.T) (string, func()) {
	t.Helper()

	dir, err := os.MkdirTemp("", "depgraph-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}

	if err := os.MkdirAll(filepath.Join(dir, ".depgraph"), 0755); err != nil {
		os.RemoveAll(dir)
		t.Fatalf("Failed to create .depgraph directory: %v", err)
	}

	cleanup := func() {
		os.RemoveAll(dir)
	}

	return dir, cleanup
}

// TempProjectWithConfig creates a temp project with a config file.
func TempProjectWithConfig(t *testing.T, cfg *config.Config) (string, func()) {
	t.Helper()

	dir, cleanup := TempProject(t)

	configPath := filepath.Join(dir, ".depgraph", "config.yaml")
	if err := cfg.Save(configPath); err != nil {
		cleanup()
		t.Fatalf("Failed to write config: %v", err)
	}

	return dir, cleanup
}

// TempProjectWithManifest creates a temp project with a manifest at the
// default location.
func TempProjectWithManifest(t *testing.T, m *manifest.Manifest) (string, func()) {
	t.Helper()

	dir, cleanup := TempProject(t)

	if err := m.Save(filepath.Join(dir, ".depgraph", "manifest.csv")); err != nil {
		cleanup()
		t.Fatalf("Failed to write manifest: %v", err)
	}

	return dir, cleanup
}

// TempProjectFull creates a temp project with both config and manifest. The
// manifest is written where the config points.
func TempProjectFull(t *testing.T, cfg *config.Config, m *manifest.Manifest) (string, func()) {
	t.Helper()

	dir, cleanup := TempProject(t)

	configPath := filepath.Join(dir, ".depgraph", "config.yaml")
	if err := cfg.Save(configPath); err != nil {
		cleanup()
		t.Fatalf("Failed to write config: %v", err)
	}

	if err := m.Save(cfg.ManifestPath(dir)); err != nil {
		cleanup()
		t.Fatalf("Failed to write manifest: %v", err)
	}

	return dir, cleanup
}

// SampleNodes returns a small warehouse project: a source feeding staging
// and mart models, a test, a downstream package and an unused source.
//
//	source.shop.raw_orders <- model.shop.stg_orders <- model.shop.orders <- model.finance.revenue <- exposure.finance.dashboard
//	seed.shop.countries    <- model.shop.orders
//	model.shop.orders      <- test.shop.not_null_orders_id
//	source.shop.raw_unused
func SampleNodes() []*manifest.Node {
	return []*manifest.Node{
		NewTestNode("source.shop.raw_orders", WithPath("models/sources.yml")),
		NewTestNode("source.shop.raw_unused", WithPath("models/sources.yml")),
		NewTestNode("seed.shop.countries", WithPath("seeds/countries.csv")),
		NewTestNode("model.shop.stg_orders", WithDependsOn("source.shop.raw_orders"), WithPath("models/staging/stg_orders.sql")),
		NewTestNode("model.shop.orders", WithDependsOn("model.shop.stg_orders", "seed.shop.countries"), WithPath("models/marts/orders.sql")),
		NewTestNode("test.shop.not_null_orders_id", WithDependsOn("model.shop.orders")),
		NewTestNode("model.finance.revenue", WithDependsOn("model.shop.orders"), WithTags("nightly"), WithPath("models/finance/revenue.sql")),
		NewTestNode("exposure.finance.dashboard", WithDependsOn("model.finance.revenue")),
	}
}

// SampleManifest returns a manifest without dependency cycles.
func SampleManifest(t *testing.T) *manifest.Manifest {
	t.Helper()

	return NewTestManifest(t, WithNodes(SampleNodes()...))
}

// SampleManifestWithCycle returns a manifest whose only cycle runs through a
// test node, so the default cut point kinds resolve it.
func SampleManifestWithCycle(t *testing.T) *manifest.Manifest {
	t.Helper()

	return NewTestManifest(t,
		WithNode(NewTestNode("model.loop.a", WithDependsOn("test.loop.check"))),
		WithNode(NewTestNode("test.loop.check", WithDependsOn("model.loop.b"))),
		WithNode(NewTestNode("model.loop.b", WithDependsOn("model.loop.a"))),
		WithNode(NewTestNode("model.loop.c", WithDependsOn("model.loop.b"))),
	)
}

// SampleManifestUnresolvedCycle returns a manifest with a cycle made only of
// models.
func SampleManifestUnresolvedCycle(t *testing.T) *manifest.Manifest {
	t.Helper()

	return NewTestManifest(t,
		WithNode(NewTestNode("model.loop.a", WithDependsOn("model.loop.c"))),
		WithNode(NewTestNode("model.loop.b", WithDependsOn("model.loop.a"))),
		WithNode(NewTestNode("model.loop.c", WithDependsOn("model.loop.b"))),
		WithNode(NewTestNode("model.loop.d")),
	)
}
