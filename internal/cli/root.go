// Package cli implements the induction command-line interface using
// Cobra. Each subcommand maps to one ambient operation against a running
// or one-shot Service.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "induction",
	Short: "induction — train induction planning and scheduling engine",
	Long: `induction decides which trains enter service, stand down for
maintenance or cleaning, and what nightly schedule the fleet runs, combining
an exact/heuristic assignment optimizer, a rule-based autonomous decision
engine, and a confidence-routed scheduler.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
