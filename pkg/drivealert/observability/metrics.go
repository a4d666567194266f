package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/randalmurphal/drivealert/pkg/drivealert/queue"
)

// MetricsRecorder records drivealert metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
//
// Every MetricsRecorder is also a queue.Observer so it can be attached to
// the event queues directly.
type MetricsRecorder interface {
	queue.Observer

	// RecordProcess records one process step of a worker.
	RecordProcess(ctx context.Context, worker string, duration time.Duration, err error)

	// RecordPlayback records a finished playback or speech synthesis.
	RecordPlayback(ctx context.Context, mode string, duration time.Duration)

	// RecordDroppedTrigger records a voice trigger that mapped to no asset.
	RecordDroppedTrigger(ctx context.Context, trigger string)

	// RecordNLUFallback records an intent resolution failure replaced by the apology utterance.
	RecordNLUFallback(ctx context.Context)

	// RecordMarker records a marker decision: added, skipped or removed.
	RecordMarker(ctx context.Context, kind, outcome string)

	// RecordRedraw records a map redraw attempt.
	RecordRedraw(ctx context.Context, success bool)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	queueProduced   metric.Int64Counter
	queueConsumed   metric.Int64Counter
	queueDrained    metric.Int64Counter
	processSteps    metric.Int64Counter
	processLatency  metric.Float64Histogram
	processErrors   metric.Int64Counter
	playbacks       metric.Int64Counter
	playbackLatency metric.Float64Histogram
	droppedTriggers metric.Int64Counter
	nluFallbacks    metric.Int64Counter
	markers         metric.Int64Counter
	redraws         metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("drivealert")
	m := &otelMetrics{}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.queueProduced, "drivealert.queue.produced", "Number of events produced"},
		{&m.queueConsumed, "drivealert.queue.consumed", "Number of events consumed"},
		{&m.queueDrained, "drivealert.queue.drained", "Number of events discarded by drains"},
		{&m.processSteps, "drivealert.worker.steps", "Number of worker process steps"},
		{&m.processErrors, "drivealert.worker.errors", "Number of failed worker process steps"},
		{&m.playbacks, "drivealert.voice.playbacks", "Number of playbacks and speech syntheses"},
		{&m.droppedTriggers, "drivealert.voice.dropped_triggers", "Number of triggers without an audio asset"},
		{&m.nluFallbacks, "drivealert.voice.nlu_fallbacks", "Number of intent resolutions replaced by the fallback utterance"},
		{&m.markers, "drivealert.markers.decisions", "Number of marker add, skip and remove decisions"},
		{&m.redraws, "drivealert.map.redraws", "Number of map redraw attempts"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	processLatency, err := meter.Float64Histogram("drivealert.worker.latency_ms",
		metric.WithDescription("Worker process step latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	m.processLatency = processLatency

	playbackLatency, err := meter.Float64Histogram("drivealert.voice.playback_ms",
		metric.WithDescription("Playback duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	m.playbackLatency = playbackLatency

	return m, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

func categoryAttr(category queue.Category) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("queue", string(category)))
}

// Produced implements queue.Observer.
func (m *otelMetrics) Produced(category queue.Category) {
	m.queueProduced.Add(context.Background(), 1, categoryAttr(category))
}

// Consumed implements queue.Observer.
func (m *otelMetrics) Consumed(category queue.Category, n int) {
	m.queueConsumed.Add(context.Background(), int64(n), categoryAttr(category))
}

// Drained implements queue.Observer.
func (m *otelMetrics) Drained(category queue.Category, n int) {
	m.queueDrained.Add(context.Background(), int64(n), categoryAttr(category))
}

// RecordProcess records a worker process step.
func (m *otelMetrics) RecordProcess(ctx context.Context, worker string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("worker", worker))

	m.processSteps.Add(ctx, 1, attrs)
	m.processLatency.Record(ctx, float64(duration.Milliseconds()), attrs)

	if err != nil {
		m.processErrors.Add(ctx, 1, attrs)
	}
}

// RecordPlayback records a playback.
func (m *otelMetrics) RecordPlayback(ctx context.Context, mode string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("mode", mode))
	m.playbacks.Add(ctx, 1, attrs)
	m.playbackLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// RecordDroppedTrigger records a trigger without asset.
func (m *otelMetrics) RecordDroppedTrigger(ctx context.Context, trigger string) {
	m.droppedTriggers.Add(ctx, 1, metric.WithAttributes(attribute.String("trigger", trigger)))
}

// RecordNLUFallback records a fallback utterance.
func (m *otelMetrics) RecordNLUFallback(ctx context.Context) {
	m.nluFallbacks.Add(ctx, 1)
}

// RecordMarker records a marker decision.
func (m *otelMetrics) RecordMarker(ctx context.Context, kind, outcome string) {
	m.markers.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	))
}

// RecordRedraw records a redraw attempt.
func (m *otelMetrics) RecordRedraw(ctx context.Context, success bool) {
	m.redraws.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}
