package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/ahrav/go-tally/infrastructure/middleware"
	"github.com/ahrav/go-tally/internal/application"
	"github.com/ahrav/go-tally/internal/logging"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	rootFlags struct {
		configPath string
		logLevel   string
		logFormat  string
		metricsOut string
		trace      bool
	}

	cfg      application.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *middleware.PrometheusMetrics
	tracer   *sdktrace.TracerProvider
}

func newApp() *app {
	return &app{
		cfg:    application.DefaultConfig(),
		logger: zap.NewNop(),
	}
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tally",
		Short: "Summarize safety labels and scores of agent evaluation runs",
		Long: `tally reads newline-delimited JSON run records, normalizes their loosely
structured fields, and aggregates safety statistics per strategy and per task.

Malformed lines never abort a run; they are counted as unknown error runs.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&a.rootFlags.configPath, "config", "", "Path to a YAML config file (optional)")
	f.StringVar(&a.rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn or error (default from config)")
	f.StringVar(&a.rootFlags.logFormat, "log-format", "", "Log format: console or json (default from config)")
	f.StringVar(&a.rootFlags.metricsOut, "metrics-out", "", "Write Prometheus metrics in text format to this path after the run")
	f.BoolVar(&a.rootFlags.trace, "trace", false, "Print OpenTelemetry spans of pipeline stages to stderr")

	cmd.AddCommand(a.analyzeCmd())
	cmd.AddCommand(a.compareCmd())
	return cmd
}

// setup loads configuration and builds the logger, metrics registry and
// optional tracer provider before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.rootFlags.configPath != "" {
		loader, err := application.NewConfigLoader()
		if err != nil {
			return err
		}
		cfg, err := loader.LoadFromFile(a.rootFlags.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		a.cfg = cfg
	}
	if a.rootFlags.logLevel != "" {
		a.cfg.Logging.Level = a.rootFlags.logLevel
	}
	if a.rootFlags.logFormat != "" {
		a.cfg.Logging.Format = a.rootFlags.logFormat
	}

	logger, err := logging.New(a.cfg.Logging.Level, a.cfg.Logging.Format)
	if err != nil {
		return err
	}
	a.logger = logger.With(
		zap.String("invocation_id", uuid.NewString()),
		zap.String("command", cmd.Name()),
	)

	a.registry = prometheus.NewRegistry()
	a.metrics = middleware.NewPrometheusMetrics(a.registry)

	if a.rootFlags.trace {
		exporter, err := stdouttrace.New(
			stdouttrace.WithWriter(cmd.ErrOrStderr()),
			stdouttrace.WithPrettyPrint(),
		)
		if err != nil {
			return fmt.Errorf("failed to create trace exporter: %w", err)
		}
		a.tracer = sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
		otel.SetTracerProvider(a.tracer)
	}

	a.logger.Debug("invocation configured",
		zap.String("config", a.rootFlags.configPath),
		zap.String("log_level", a.cfg.Logging.Level),
		zap.Bool("trace", a.rootFlags.trace))
	return nil
}

// close flushes traces and metrics. It is safe to call when setup never
// ran.
func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to flush traces: %w", err))
		}
	}
	if a.rootFlags.metricsOut != "" && a.registry != nil {
		if err := prometheus.WriteToTextfile(a.rootFlags.metricsOut, a.registry); err != nil {
			errs = append(errs, fmt.Errorf("failed to write metrics: %w", err))
		}
	}
	_ = a.logger.Sync()
	return errors.Join(errs...)
}
