// Package main provides the entry point for the depgraph CLI.
package main

import (
	"errors"
	"os"

	"github.com/rtmx-ai/depgraph/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		// SilenceErrors suppresses Cobra's own output.
		if err.Error() != "" {
			os.Stderr.WriteString("Error: " + err.Error() + "\n")
		}
		var exitErr *cmd.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
