package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var verbose bool
var noColor bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "loadgen",
	Short: "HTTP load generator driven by a declarative traffic spec",
	Long: `loadgen drives an HTTP service at a target transactions-per-second
rate, shaping traffic over time (stable, ramp-up, spike, or a custom
CSV pattern), materializing requests from weighted templates and
parameter sources, and reporting latency, throughput, and error metrics.

Tunable defaults are in internal/config/defaults.go - edit and recompile.

Example usage:
  loadgen run test-config.json ./output
  loadgen schema
  loadgen version`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colors and animations")

	// Silence usage on error - we'll print our own messages
	rootCmd.SilenceUsage = true

	// Set version template
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// Verbose returns whether verbose mode is enabled
func Verbose() bool {
	return verbose
}

// Exit with code
func Exit(code int) {
	os.Exit(code)
}
