// Package cmd provides the CLI commands for depgraph.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time via ldflags.
	Version = "dev"
	// Commit is set at build time via ldflags.
	Commit = "none"
	// Date is set at build time via ldflags.
	Date = "unknown"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	cfgFile      string
	manifestPath string
	logLevel     string
	noColor      bool
}

// NewRootCmd builds the depgraph command tree. Each call returns an
// independent tree with its own flag state.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "depgraph",
		Short: "Dependency graph and build scheduling toolkit",
		Long: `depgraph reads a manifest of nodes and their dependencies and answers
scheduling questions about it: build order, concurrent waves, cycles and
where to cut them, upstream and downstream closures, and the plan for a
selection of nodes.

The manifest is a CSV or YAML file, located through .depgraph/config.yaml,
depgraph.yaml, or the --manifest flag.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	pf := root.PersistentFlags()
	pf.StringVar(&opts.cfgFile, "config", "", "config file (default: .depgraph/config.yaml or depgraph.yaml)")
	pf.StringVar(&opts.manifestPath, "manifest", "", "manifest file, overriding the configured path")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newVersionCmd(),
		newOrderCmd(opts),
		newLevelsCmd(opts),
		newCyclesCmd(opts),
		newDepsCmd(opts),
		newRootsCmd(opts),
		newLeavesCmd(opts),
		newPlanCmd(opts),
		newSimulateCmd(opts),
		newLineageCmd(opts),
		newConfigCmd(opts),
	)
	return root
}

// Execute runs the depgraph command tree.
// This is called by main.main().
func Execute() error {
	return NewRootCmd().Execute()
}
