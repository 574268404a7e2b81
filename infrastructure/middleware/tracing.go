package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-tally/internal/ports"
)

// TracerName identifies the tracer used for pipeline spans.
const TracerName = "github.com/ahrav/go-tally/pipeline"

// Stage wraps one pipeline stage in an OpenTelemetry span and records its
// latency with an optional MetricsCollector.
type Stage struct {
	name    string
	span    trace.Span
	metrics ports.MetricsCollector
	started time.Time
}

// StartStage opens a span named "pipeline.<name>" using the global tracer
// provider. With no provider installed the span is a no-op.
func StartStage(
	ctx context.Context,
	name string,
	metrics ports.MetricsCollector,
	attrs ...attribute.KeyValue,
) (context.Context, *Stage) {
	ctx, span := otel.Tracer(TracerName).Start(ctx, "pipeline."+name,
		trace.WithAttributes(attrs...))
	return ctx, &Stage{
		name:    name,
		span:    span,
		metrics: metrics,
		started: time.Now(),
	}
}

// SetAttributes attaches attributes to the stage span.
func (s *Stage) SetAttributes(attrs ...attribute.KeyValue) {
	s.span.SetAttributes(attrs...)
}

// End closes the span, marking it failed when err is non-nil.
func (s *Stage) End(err error) {
	defer s.span.End()

	if s.metrics != nil {
		s.metrics.RecordLatency(s.name, time.Since(s.started), map[string]string{"stage": s.name})
	}
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
		return
	}
	s.span.SetStatus(codes.Ok, "")
}
