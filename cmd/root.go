package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/logcompose/internal/config"
	"github.com/KaramelBytes/logcompose/internal/logger"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	logJSON bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "compose",
	Short: "compose: turn measurement logs into plot-ready data files",
	Long: `compose reads delimited measurement logs, skips their header, and writes a
normalized data file whose columns are copies of source columns or small
formulas over them, optionally aggregated over blocks of consecutive rows.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	err := rootCmd.Execute()
	logger.Cleanup()
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.compose/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "write logs as JSON lines to stderr")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
	} else {
		cfg = c
	}
	jsonOut := logJSON
	if !rootCmd.PersistentFlags().Changed("log-json") && cfg != nil {
		jsonOut = cfg.LogJSON
	}
	if err := logger.Initialize(jsonOut, debug); err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to initialize logger: %v\n", err)
	}
}

// settings returns the loaded configuration, loading it on demand when the
// command runs without cobra initializers (as in tests).
func settings() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return cfgpkg.Defaults()
	}
	return c
}
