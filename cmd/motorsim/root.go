package main

import (
	"os"

	"github.com/spf13/cobra"
)

// newRootCmd builds the base command with every subcommand attached
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "motorsim",
		Short: "Simulate the closed-loop DC motor speed controller.",
		Long: `motorsim runs the speed control loop against a first-order DC ` +
			`motor model in virtual time. Runs can be traced to SQLite and ` +
			`plotted to PNG.`,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newRunCmd())
	return rootCmd
}

// envDefault returns the environment value of key, or def when unset
func envDefault(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}
