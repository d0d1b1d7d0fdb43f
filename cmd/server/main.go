package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X main.version=..."
var (
	version = "dev"
	commit  = "none"
)

var rootCmd = &cobra.Command{
	Use:   "stellarflux",
	Short: "StellarFlux OS desktop backend",
	Long:  "Serves the StellarFlux OS desktop: per-user window registries, application content, auth, profiles and file storage.",
	// Running without a subcommand serves
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", version, commit)
	rootCmd.PersistentFlags().String("data-dir", "", "Data directory (overrides DATA_DIR)")
	rootCmd.PersistentFlags().Bool("dev", false, "Development logging (overrides LOG_DEV)")
}
