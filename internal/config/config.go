// Package config provides configuration management for depgraph.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/rtmx-ai/depgraph/internal/graph"
	"github.com/rtmx-ai/depgraph/internal/logging"
	"github.com/rtmx-ai/depgraph/internal/manifest"
)

// Config represents the depgraph configuration.
type Config struct {
	Depgraph DepgraphConfig `yaml:"depgraph" json:"depgraph"`
}

// DepgraphConfig contains the main settings.
type DepgraphConfig struct {
	// Manifest is the path to the node manifest (CSV or YAML).
	Manifest string `yaml:"manifest" json:"manifest"`

	Scheduling SchedulingConfig `yaml:"scheduling" json:"scheduling"`
	Output     OutputConfig     `yaml:"output" json:"output"`
	Log        LogConfig        `yaml:"log" json:"log"`
}

// SchedulingConfig controls cycle breaking and wave execution.
type SchedulingConfig struct {
	// CutPointKinds lists the node kinds allowed to absorb a cycle cut.
	CutPointKinds []string `yaml:"cut_point_kinds" json:"cut_point_kinds"`

	// FallbackPolicy is "report" or "apply" for cycles no kind matched.
	FallbackPolicy string `yaml:"fallback_policy" json:"fallback_policy"`

	// FailOnUnresolvedCycles turns unresolved cycles into errors.
	FailOnUnresolvedCycles bool `yaml:"fail_on_unresolved_cycles" json:"fail_on_unresolved_cycles"`

	// Concurrency caps the tasks running at once inside a wave.
	Concurrency int `yaml:"concurrency" json:"concurrency"`

	// FailFast stops after the first wave with a failure.
	FailFast bool `yaml:"fail_fast" json:"fail_fast"`

	// Select and Exclude are the default selection expressions.
	Select  string `yaml:"select" json:"select"`
	Exclude string `yaml:"exclude" json:"exclude"`
}

// OutputConfig controls rendering.
type OutputConfig struct {
	Format string `yaml:"format" json:"format"`
	Width  int    `yaml:"width" json:"width"`
}

// LogConfig controls diagnostics written to stderr.
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatText  = "text"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Depgraph: DepgraphConfig{
			Manifest: ".depgraph/manifest.csv",
			Scheduling: SchedulingConfig{
				CutPointKinds:  []string{string(manifest.KindTest), string(manifest.KindUnitTest)},
				FallbackPolicy: graph.FallbackReportOnly.String(),
				Concurrency:    4,
			},
			Output: OutputConfig{
				Format: FormatTable,
				Width:  80,
			},
			Log: LogConfig{
				Level: "warn",
			},
		},
	}
}

// Load loads configuration from a file. Missing keys keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return config, nil
}

// Save saves the configuration to a file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ErrConfigNotFound is returned by FindConfig when no configuration file
// exists in the start directory or any of its parents.
var ErrConfigNotFound = errors.New("no depgraph configuration found")

// FindConfig searches for a configuration file starting from the given path
// and walking up to the filesystem root. Failures other than a missing file
// stop the search.
func FindConfig(startPath string) (string, error) {
	candidates := []string{
		".depgraph/config.yaml",
		"depgraph.yaml",
		"depgraph.yml",
	}

	dir := startPath
	for {
		for _, candidate := range candidates {
			path := filepath.Join(dir, candidate)
			_, err := os.Stat(path)
			if err == nil {
				return path, nil
			}
			if !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, syscall.ENOTDIR) {
				return "", fmt.Errorf("failed to check %s: %w", path, err)
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", ErrConfigNotFound
}

// LoadFromDir loads configuration from the given directory, falling back to
// the defaults when no file is found.
func LoadFromDir(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if errors.Is(err, ErrConfigNotFound) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}

	return Load(path)
}

// ManifestPath returns the resolved manifest path.
func (c *Config) ManifestPath(baseDir string) string {
	if filepath.IsAbs(c.Depgraph.Manifest) {
		return c.Depgraph.Manifest
	}
	return filepath.Join(baseDir, c.Depgraph.Manifest)
}

// Validate checks every enumerated or bounded setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Depgraph.Manifest) == "" {
		return fmt.Errorf("manifest path cannot be empty")
	}
	if _, err := c.CutPointKinds(); err != nil {
		return err
	}
	if _, err := c.FallbackPolicy(); err != nil {
		return err
	}
	if c.Depgraph.Scheduling.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Depgraph.Scheduling.Concurrency)
	}
	switch c.Depgraph.Output.Format {
	case FormatTable, FormatJSON, FormatText:
	default:
		return fmt.Errorf("invalid output format: %q", c.Depgraph.Output.Format)
	}
	if c.Depgraph.Output.Width < 0 {
		return fmt.Errorf("output width cannot be negative")
	}
	if _, err := logging.ParseLevel(c.Depgraph.Log.Level); err != nil {
		return err
	}
	return nil
}

// CutPointKinds returns the configured cut point kinds.
func (c *Config) CutPointKinds() ([]manifest.Kind, error) {
	kinds := make([]manifest.Kind, 0, len(c.Depgraph.Scheduling.CutPointKinds))
	for _, s := range c.Depgraph.Scheduling.CutPointKinds {
		k, err := manifest.ParseKind(s)
		if err != nil {
			return nil, fmt.Errorf("cut_point_kinds: %w", err)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// FallbackPolicy returns the configured fallback policy.
func (c *Config) FallbackPolicy() (graph.FallbackPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(c.Depgraph.Scheduling.FallbackPolicy)) {
	case "report", "":
		return graph.FallbackReportOnly, nil
	case "apply":
		return graph.FallbackApply, nil
	default:
		return graph.FallbackReportOnly, fmt.Errorf("invalid fallback_policy: %q", c.Depgraph.Scheduling.FallbackPolicy)
	}
}

// LogLevel returns the configured log level.
func (c *Config) LogLevel() logging.LogLevel {
	level, _ := logging.ParseLevel(c.Depgraph.Log.Level)
	return level
}
