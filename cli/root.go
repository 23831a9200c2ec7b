// Package cli implements the csl command surface.
package cli

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rootCmd = &cobra.Command{
	Use:   "csl",
	Short: "Constitution-gated execution for pipelines and tools",
	Long: "Evaluates declarative constitutions against execution contexts before\n" +
		"anything runs: scenario checks for CI, one-off evaluation, and an MCP\n" +
		"server that puts every tool call behind the constitution.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// styledOutput reports whether stdout is a terminal worth styling.
func styledOutput() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
