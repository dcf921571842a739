package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "callisto",
	Short: "Callisto - LLM telemetry capture and aggregation engine",
	Long: `Callisto records request and tool-call lifecycle events from LLM
workloads, scrubs sensitive content, and aggregates the event log into
statistics, time series, and trace listings.

Events arrive from two producers: in-process instrumentation hooks and an
OpenTelemetry span bridge. A pluggable store (in-memory, SQLite, or
append-only JSONL) persists them, and an HTTP API serves the dashboard
query surface.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "callisto.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
