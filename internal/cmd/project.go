package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rtmx-ai/depgraph/internal/config"
	"github.com/rtmx-ai/depgraph/internal/logging"
	"github.com/rtmx-ai/depgraph/internal/manifest"
	"github.com/rtmx-ai/depgraph/internal/output"
	"github.com/rtmx-ai/depgraph/internal/plan"
)

// project is the loaded state every graph command works on.
type project struct {
	// dir is the directory relative manifest paths resolve against.
	dir      string
	cfg      *config.Config
	manifest *manifest.Manifest
}

// loadConfig resolves the configuration file, the configuration and the
// project directory. An explicit --config wins; otherwise the nearest config
// file above the working directory is used, and the defaults when there is
// none, in which case the returned path is empty.
func (o *globalOptions) loadConfig() (cfg *config.Config, path, dir string, err error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to get working directory: %w", err)
	}

	path = o.cfgFile
	if path == "" {
		found, err := config.FindConfig(cwd)
		if errors.Is(err, config.ErrConfigNotFound) {
			return config.DefaultConfig(), "", cwd, nil
		}
		if err != nil {
			return nil, "", "", fmt.Errorf("failed to find config: %w", err)
		}
		path = found
	}
	if path, err = filepath.Abs(path); err != nil {
		return nil, "", "", fmt.Errorf("failed to resolve config path: %w", err)
	}

	cfg, err = config.Load(path)
	if err != nil {
		return nil, path, "", fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, path, projectDir(path), nil
}

// projectDir maps a config file to its project directory: the parent of
// .depgraph for .depgraph/config.yaml, the containing directory otherwise.
func projectDir(configPath string) string {
	dir := filepath.Dir(configPath)
	if filepath.Base(dir) == ".depgraph" {
		return filepath.Dir(dir)
	}
	return dir
}

// setup applies the presentation flags and installs the CLI logger.
func (o *globalOptions) setup(cmd *cobra.Command, cfg *config.Config) error {
	if o.noColor {
		output.DisableColor()
	}

	level := cfg.LogLevel()
	if o.logLevel != "" {
		l, err := logging.ParseLevel(o.logLevel)
		if err != nil {
			return err
		}
		level = l
	}
	logging.InitForCLI(level, cmd.ErrOrStderr())
	return nil
}

// loadProject loads the configuration and the manifest it points to.
func (o *globalOptions) loadProject(cmd *cobra.Command) (*project, error) {
	cfg, _, dir, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	if err := o.setup(cmd, cfg); err != nil {
		return nil, err
	}

	path := cfg.ManifestPath(dir)
	if o.manifestPath != "" {
		path = o.manifestPath
	}
	m, err := manifest.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	logging.Debug("cmd", "loaded %d nodes from %s", m.Len(), path)

	return &project{dir: dir, cfg: cfg, manifest: m}, nil
}

// builder returns a schedule builder configured from the project settings.
func (p *project) builder() (*plan.Builder, error) {
	kinds, err := p.cfg.CutPointKinds()
	if err != nil {
		return nil, err
	}
	policy, err := p.cfg.FallbackPolicy()
	if err != nil {
		return nil, err
	}
	return plan.NewBuilder(
		plan.WithCutPointKinds(kinds...),
		plan.WithFallbackPolicy(policy),
		plan.WithFailOnUnresolvedCycles(p.cfg.Depgraph.Scheduling.FailOnUnresolvedCycles),
	), nil
}

// schedule builds the schedule of the given selection.
func (p *project) schedule(selectExpr, excludeExpr string) (*plan.Schedule, error) {
	b, err := p.builder()
	if err != nil {
		return nil, err
	}
	return b.Build(p.manifest, selectExpr, excludeExpr)
}

// jsonOutput reports whether a command should print JSON: the --json flag
// when given, the configured output format otherwise.
func (p *project) jsonOutput(cmd *cobra.Command, flag bool) bool {
	if cmd.Flags().Changed("json") {
		return flag
	}
	return p.cfg.Depgraph.Output.Format == config.FormatJSON
}

// width returns the configured rendering width.
func (p *project) width() int {
	if w := p.cfg.Depgraph.Output.Width; w > 0 {
		return w
	}
	return 80
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
