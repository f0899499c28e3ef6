package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rtmx-ai/depgraph/internal/config"
	"github.com/rtmx-ai/depgraph/internal/manifest"
	"github.com/rtmx-ai/depgraph/internal/output"
)

func newConfigCmd(opts *globalOptions) *cobra.Command {
	var (
		validate bool
		format   string
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or validate depgraph configuration",
		Long: `Display the effective configuration after merging defaults with the
config file.

Examples:
    depgraph config                     # Show current config
    depgraph config --validate          # Check config and manifest
    depgraph config --format yaml       # Output as YAML`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if validate {
				return validateConfig(cmd, opts)
			}

			cfg, path, dir, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if err := opts.setup(cmd, cfg); err != nil {
				return err
			}

			switch format {
			case "json":
				return printJSON(cmd, cfg)
			case "yaml":
				data, err := yaml.Marshal(cfg)
				if err != nil {
					return fmt.Errorf("failed to marshal config: %w", err)
				}
				fmt.Fprint(cmd.OutOrStdout(), string(data))
				return nil
			case "terminal":
				displayConfig(cmd, cfg, path, dir)
				return nil
			default:
				return fmt.Errorf("invalid format %q: use terminal, yaml or json", format)
			}
		},
	}

	cmd.Flags().BoolVar(&validate, "validate", false, "validate configuration and manifest")
	cmd.Flags().StringVar(&format, "format", "terminal", "output format: terminal, yaml, json")
	return cmd
}

func displayConfig(cmd *cobra.Command, cfg *config.Config, path, dir string) {
	out := cmd.OutOrStdout()
	width := 80
	if cfg.Depgraph.Output.Width > 0 {
		width = cfg.Depgraph.Output.Width
	}
	fmt.Fprintln(out, output.Header("depgraph Configuration", width))
	fmt.Fprintln(out)

	if path == "" {
		path = "(defaults)"
	}
	d := cfg.Depgraph
	fmt.Fprintln(out, "Paths:")
	fmt.Fprintf(out, "  Config file: %s\n", path)
	fmt.Fprintf(out, "  Manifest:    %s\n", cfg.ManifestPath(dir))
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Scheduling:")
	fmt.Fprintf(out, "  Cut point kinds:  %s\n", strings.Join(d.Scheduling.CutPointKinds, ", "))
	fmt.Fprintf(out, "  Fallback policy:  %s\n", d.Scheduling.FallbackPolicy)
	fmt.Fprintf(out, "  Fail on unresolved cycles: %v\n", d.Scheduling.FailOnUnresolvedCycles)
	fmt.Fprintf(out, "  Concurrency:      %d\n", d.Scheduling.Concurrency)
	fmt.Fprintf(out, "  Fail fast:        %v\n", d.Scheduling.FailFast)
	if d.Scheduling.Select != "" {
		fmt.Fprintf(out, "  Select:           %s\n", d.Scheduling.Select)
	}
	if d.Scheduling.Exclude != "" {
		fmt.Fprintf(out, "  Exclude:          %s\n", d.Scheduling.Exclude)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Output:")
	fmt.Fprintf(out, "  Format:    %s\n", d.Output.Format)
	fmt.Fprintf(out, "  Width:     %d\n", d.Output.Width)
	fmt.Fprintf(out, "  Log level: %s\n", d.Log.Level)
}

func validateConfig(cmd *cobra.Command, opts *globalOptions) error {
	out := cmd.OutOrStdout()
	pass := output.Color("[PASS]", output.Green)
	fmt.Fprintln(out, output.Header("Configuration Validation", 80))
	fmt.Fprintln(out)

	var errs, warnings []string

	cfg, path, dir, err := opts.loadConfig()
	switch {
	case err != nil:
		errs = append(errs, err.Error())
	case path == "":
		warnings = append(warnings, "Config file not found (using defaults)")
	default:
		fmt.Fprintf(out, "  %s Config file: %s\n", pass, path)
	}

	if cfg != nil {
		if err := opts.setup(cmd, cfg); err != nil {
			errs = append(errs, err.Error())
		}

		manifestPath := cfg.ManifestPath(dir)
		if opts.manifestPath != "" {
			manifestPath = opts.manifestPath
		}
		m, err := manifest.LoadFile(manifestPath)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Manifest not loadable: %v", err))
		} else {
			fmt.Fprintf(out, "  %s Manifest: %s (%d nodes)\n", pass, manifestPath, m.Len())
			if dangling := m.Dangling(); len(dangling) > 0 {
				warnings = append(warnings, fmt.Sprintf("Undeclared references: %s", strings.Join(dangling, ", ")))
			}

			p := &project{dir: dir, cfg: cfg, manifest: m}
			if b, err := p.builder(); err == nil {
				if unresolved := b.CutCycles(m).Unresolved(); len(unresolved) > 0 {
					warnings = append(warnings, fmt.Sprintf("%d unresolved cycle(s); run 'depgraph cycles'", len(unresolved)))
				}
			}
		}
	}
	fmt.Fprintln(out)

	for _, e := range errs {
		fmt.Fprintf(out, "  %s %s\n", output.Color("[FAIL]", output.Red), e)
	}
	for _, w := range warnings {
		fmt.Fprintf(out, "  %s %s\n", output.Color("[WARN]", output.Yellow), w)
	}
	if len(errs)+len(warnings) > 0 {
		fmt.Fprintln(out)
	}

	switch {
	case len(errs) > 0:
		fmt.Fprintf(out, "Status: %s\n", output.Color("INVALID", output.Red))
		return NewExitError(1, "configuration validation failed")
	case len(warnings) > 0:
		fmt.Fprintf(out, "Status: %s\n", output.Color("VALID (with warnings)", output.Yellow))
	default:
		fmt.Fprintf(out, "Status: %s\n", output.Color("VALID", output.Green))
	}
	return nil
}
