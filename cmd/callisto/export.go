package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/event"
	"mercator-hq/callisto/pkg/export"
	"mercator-hq/callisto/pkg/logging"
)

var exportFlags struct {
	format    string
	output    string
	requestID string
	pretty    bool
	noHeader  bool
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored events to JSON or CSV",
	Long: `Export events from the configured store to a portable format.

By default every stored event is exported; --request-id narrows the export
to one request's event log.

Examples:
  # Dump everything as JSON to stdout
  callisto export

  # Pretty-printed JSON to a file
  callisto export --pretty --output events.json

  # CSV for one request
  callisto export --format csv --request-id req_3f2a81c4 --output trace.csv`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFlags.format, "format", "f", "json", "output format (json, csv)")
	exportCmd.Flags().StringVarP(&exportFlags.output, "output", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&exportFlags.requestID, "request-id", "", "export only this request's events")
	exportCmd.Flags().BoolVar(&exportFlags.pretty, "pretty", false, "pretty-print JSON output")
	exportCmd.Flags().BoolVar(&exportFlags.noHeader, "no-header", false, "omit the CSV header row")
}

// allEventsStore is the optional dump capability the built-in backends
// implement.
type allEventsStore interface {
	AllEvents(ctx context.Context) ([]*event.Event, error)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	logging.Setup("warn", cfg.Logging.Format, nil)

	store, err := openStore(&cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()

	var events []*event.Event
	if exportFlags.requestID != "" {
		es, ok := store.(event.EventStore)
		if !ok {
			return fmt.Errorf("store backend %q does not support event lookups", cfg.Store.Backend)
		}
		events, err = es.GetEvents(ctx, exportFlags.requestID)
	} else {
		as, ok := store.(allEventsStore)
		if !ok {
			return fmt.Errorf("store backend %q does not support full export", cfg.Store.Backend)
		}
		events, err = as.AllEvents(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}

	var w io.Writer = os.Stdout
	if exportFlags.output != "" {
		f, err := os.Create(exportFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch exportFlags.format {
	case "json":
		if err := export.NewJSONExporter(exportFlags.pretty).Export(ctx, events, w); err != nil {
			return err
		}
	case "csv":
		if err := export.NewCSVExporter(!exportFlags.noHeader).Export(ctx, events, w); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q (expected json or csv)", exportFlags.format)
	}

	fmt.Fprintf(os.Stderr, "exported %d events\n", len(events))
	return nil
}
