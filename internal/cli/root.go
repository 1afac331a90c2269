// Package cli implements the Planka command-line interface using Cobra.
// Each subcommand maps to an engagement capability (serve, status, etc.).
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "planka",
	Short: "Planka — Fitness engagement engine",
	Long: `Planka is the engagement backend for the plank-workout app.
It tracks workout sessions, streaks, achievements and decides when to
send motivational rewards.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	// Local overrides (PLANKA_HOME etc.) from a .env file, if present.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
