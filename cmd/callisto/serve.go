package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/callisto/pkg/bridge"
	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/event"
	"mercator-hq/callisto/pkg/logging"
	"mercator-hq/callisto/pkg/metrics"
	"mercator-hq/callisto/pkg/retention"
	"mercator-hq/callisto/pkg/server"
)

var serveFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the telemetry query server",
	Long: `Start the telemetry query server with the specified configuration.

The server persists incoming events to the configured store and serves the
dashboard query surface: statistics, metrics, trace listings, and raw event
lookups. When the bridge is enabled, an OpenTelemetry tracer provider is
installed globally so instrumented AI SDK spans become events.

Examples:
  # Start with default config
  callisto serve

  # Start with custom config
  callisto serve --config /etc/callisto/callisto.yaml

  # Override listen address
  callisto serve --listen 0.0.0.0:8484

  # Validate config without starting the server
  callisto serve --dry-run`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.logLevel != "" {
		cfg.Logging.Level = serveFlags.logLevel
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format, nil)

	if serveFlags.dryRun {
		fmt.Println("configuration valid")
		return nil
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	store, err := openStore(&cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(&metrics.Config{Namespace: cfg.Metrics.Namespace}, nil)
	}

	// Span bridge: installed globally so any OTel-instrumented AI SDK in
	// this process feeds the store.
	if cfg.Bridge.Enabled {
		proc, err := bridge.NewSpanProcessor(&bridge.Config{
			Store:          store,
			CaptureContent: cfg.Capture.Content,
			Metrics:        collector,
		})
		if err != nil {
			return fmt.Errorf("failed to create span bridge: %w", err)
		}
		tp, err := bridge.NewTracerProvider(&bridge.ProviderConfig{
			ServiceName: cfg.Bridge.ServiceName,
			Processor:   proc,
			OTLP: bridge.OTLPConfig{
				Endpoint: cfg.Bridge.OTLP.Endpoint,
				Insecure: cfg.Bridge.OTLP.Insecure,
				Timeout:  cfg.Bridge.OTLP.Timeout,
			},
			SetGlobal: true,
		})
		if err != nil {
			return fmt.Errorf("failed to install tracer provider: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				slog.Error("tracer provider shutdown failed", "error", err)
			}
		}()
		slog.Info("span bridge installed", "service_name", cfg.Bridge.ServiceName)
	}

	// Retention runs only against backends that can prune.
	if prunable, ok := store.(event.PrunableStore); ok && cfg.Retention.RetentionDays > 0 {
		pruner, err := retention.NewPruner(prunable, &retention.Config{
			RetentionDays: cfg.Retention.RetentionDays,
			PruneSchedule: cfg.Retention.PruneSchedule,
		})
		if err != nil {
			return err
		}
		sched := retention.NewScheduler(pruner)
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start retention scheduler: %w", err)
		}
		defer sched.Stop()
	}

	// Reload the logger on config file changes; structural changes (store,
	// listen address) need a restart.
	if watcher, err := config.NewWatcher(cfgFile, nil); err == nil {
		go watcher.Watch(ctx, func(next *config.Config) {
			logging.Setup(next.Logging.Level, next.Logging.Format, nil)
		})
	} else {
		slog.Warn("config watcher unavailable", "error", err)
	}

	srv, err := server.New(&cfg.Server, store, collector)
	if err != nil {
		return err
	}
	return srv.Start(ctx)
}
