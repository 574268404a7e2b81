// Package application wires the run reader, normalizer and aggregator
// into the analyze pipeline and owns its configuration.
package application

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ahrav/go-tally/infrastructure/aggregate"
	"github.com/ahrav/go-tally/infrastructure/jsonl"
	"github.com/ahrav/go-tally/infrastructure/middleware"
	"github.com/ahrav/go-tally/infrastructure/normalize"
	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

// Pipeline stage names used for spans and latency metrics.
const (
	StageAnalyze   = "analyze"
	StageRead      = "read"
	StageNormalize = "normalize"
	StageAggregate = "aggregate"
	StageWrite     = "write"
)

// Pipeline reads run records, normalizes each one, aggregates the result
// and writes the summary. A Pipeline keeps no state between calls.
type Pipeline struct {
	reader     ports.RunReader
	normalizer ports.RunNormalizer
	aggregator ports.RunAggregator
	metrics    ports.MetricsCollector
	logger     *zap.Logger
}

// NewPipeline assembles a Pipeline from its components. metrics and
// logger may be nil.
func NewPipeline(
	reader ports.RunReader,
	normalizer ports.RunNormalizer,
	aggregator ports.RunAggregator,
	metrics ports.MetricsCollector,
	logger *zap.Logger,
) (*Pipeline, error) {
	if reader == nil {
		return nil, errors.New("run reader is required")
	}
	if normalizer == nil {
		return nil, errors.New("run normalizer is required")
	}
	if aggregator == nil {
		return nil, errors.New("run aggregator is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		reader:     reader,
		normalizer: normalizer,
		aggregator: aggregator,
		metrics:    metrics,
		logger:     logger,
	}, nil
}

// NewPipelineFromConfig builds the default JSONL reader, normalizer and
// aggregator from cfg.
func NewPipelineFromConfig(cfg Config, metrics ports.MetricsCollector, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	normalizer, err := normalize.NewNormalizer(cfg.Aliases, logger.Named("normalize"))
	if err != nil {
		return nil, fmt.Errorf("failed to create normalizer: %w", err)
	}
	return NewPipeline(
		jsonl.NewReader(logger.Named("jsonl"), metrics),
		normalizer,
		aggregate.NewAggregator(logger.Named("aggregate")),
		metrics,
		logger,
	)
}

// Analyze reads runsPath and returns its summary without writing
// anything. Reading errors, including a missing file, are returned as is.
func (p *Pipeline) Analyze(ctx context.Context, runsPath string) (domain.Summary, error) {
	ctx, stage := middleware.StartStage(ctx, StageAnalyze, p.metrics,
		attribute.String("runs.path", runsPath))

	summary, err := p.analyze(ctx, runsPath)
	stage.End(err)
	return summary, err
}

// Run analyzes runsPath and writes the summary to summaryPath. Nothing is
// written when reading fails.
func (p *Pipeline) Run(ctx context.Context, runsPath, summaryPath string) (domain.Summary, error) {
	summary, err := p.Analyze(ctx, runsPath)
	if err != nil {
		return domain.Summary{}, err
	}

	_, stage := middleware.StartStage(ctx, StageWrite, p.metrics,
		attribute.String("summary.path", summaryPath))
	err = WriteSummary(summaryPath, summary)
	stage.End(err)
	if err != nil {
		return domain.Summary{}, err
	}

	p.logger.Info("summary written",
		zap.String("path", summaryPath),
		zap.Int("runs", summary.Overall.Runs),
		zap.Float64("unsafe_rate", summary.Overall.UnsafeRate),
		zap.Float64("safe_rate", summary.Overall.SafeRate))
	return summary, nil
}

func (p *Pipeline) analyze(ctx context.Context, runsPath string) (domain.Summary, error) {
	readCtx, stage := middleware.StartStage(ctx, StageRead, p.metrics)
	raws, err := p.reader.Read(readCtx, runsPath)
	if err != nil {
		stage.End(err)
		return domain.Summary{}, err
	}
	stage.SetAttributes(attribute.Int("runs", len(raws)))
	stage.End(nil)

	_, stage = middleware.StartStage(ctx, StageNormalize, p.metrics)
	runs := p.normalize(raws)
	stage.End(nil)

	_, stage = middleware.StartStage(ctx, StageAggregate, p.metrics)
	summary := p.aggregator.Aggregate(runs)
	stage.SetAttributes(
		attribute.Int("strategies", len(summary.Strategies)),
		attribute.Int("tasks", len(summary.Tasks)))
	stage.End(nil)

	if p.metrics != nil {
		p.metrics.RecordGauge(ports.MetricStrategies, float64(len(summary.Strategies)), nil)
		p.metrics.RecordGauge(ports.MetricTasks, float64(len(summary.Tasks)), nil)
	}
	return summary, nil
}

// normalize converts every raw record, preserving input order.
func (p *Pipeline) normalize(raws []domain.RawRun) []domain.CanonicalRun {
	runs := make([]domain.CanonicalRun, 0, len(raws))
	for _, raw := range raws {
		run := p.normalizer.Normalize(raw)
		runs = append(runs, run)
		p.recordRun(run)
	}
	return runs
}

func (p *Pipeline) recordRun(run domain.CanonicalRun) {
	if p.metrics == nil {
		return
	}
	p.metrics.RecordCounter(ports.MetricRunsNormalized, 1,
		map[string]string{"label": run.Label.String(), "stage": StageNormalize})
	if run.HasError {
		p.metrics.RecordCounter(ports.MetricErrorRuns, 1, map[string]string{"stage": StageNormalize})
	}
	for key, v := range run.Scores {
		p.metrics.RecordHistogram(ports.MetricScore, v, map[string]string{"key": key})
	}
}
