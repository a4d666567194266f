package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/randalmurphal/drivealert/pkg/drivealert/queue"
)

// NoopMetrics is a MetricsRecorder that does nothing.
// Use when metrics are disabled to avoid overhead.
type NoopMetrics struct{}

// Compile-time interface check.
var _ MetricsRecorder = NoopMetrics{}

// Produced does nothing.
func (NoopMetrics) Produced(_ queue.Category) {}

// Consumed does nothing.
func (NoopMetrics) Consumed(_ queue.Category, _ int) {}

// Drained does nothing.
func (NoopMetrics) Drained(_ queue.Category, _ int) {}

// RecordProcess does nothing.
func (NoopMetrics) RecordProcess(_ context.Context, _ string, _ time.Duration, _ error) {}

// RecordPlayback does nothing.
func (NoopMetrics) RecordPlayback(_ context.Context, _ string, _ time.Duration) {}

// RecordDroppedTrigger does nothing.
func (NoopMetrics) RecordDroppedTrigger(_ context.Context, _ string) {}

// RecordNLUFallback does nothing.
func (NoopMetrics) RecordNLUFallback(_ context.Context) {}

// RecordMarker does nothing.
func (NoopMetrics) RecordMarker(_ context.Context, _, _ string) {}

// RecordRedraw does nothing.
func (NoopMetrics) RecordRedraw(_ context.Context, _ bool) {}

// NoopSpanManager is a SpanManager that does nothing.
// Use when tracing is disabled to avoid overhead.
type NoopSpanManager struct{}

// Compile-time interface check.
var _ SpanManager = NoopSpanManager{}

// noopSpan is a span that does nothing.
// We use the OTel noop package for a proper no-op span implementation.
var noopSpan = noop.Span{}

// StartPlaybackSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartPlaybackSpan(ctx context.Context, _, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// StartRedrawSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartRedrawSpan(ctx context.Context, _ bool) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// StartRemovalSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartRemovalSpan(ctx context.Context, _ string, _, _ float64) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// EndSpanWithError does nothing.
func (NoopSpanManager) EndSpanWithError(_ trace.Span, _ error) {}

// AddSpanEvent does nothing.
func (NoopSpanManager) AddSpanEvent(_ context.Context, _ string, _ ...attribute.KeyValue) {}
