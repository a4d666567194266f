package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the drivealert tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("drivealert")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartPlaybackSpan starts a span covering one playback or speech synthesis.
	StartPlaybackSpan(ctx context.Context, mode, trigger string) (context.Context, trace.Span)

	// StartRedrawSpan starts a span for a map redraw.
	StartRedrawSpan(ctx context.Context, geoRectangleAvailable bool) (context.Context, trace.Span)

	// StartRemovalSpan starts a span for a reconciled marker removal.
	StartRemovalSpan(ctx context.Context, kind string, lat, lon float64) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartPlaybackSpan starts a playback span.
func (m *otelSpanManager) StartPlaybackSpan(ctx context.Context, mode, trigger string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "drivealert.voice.playback",
		trace.WithAttributes(
			attribute.String("voice.mode", mode),
			attribute.String("voice.trigger", trigger),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartRedrawSpan starts a redraw span.
func (m *otelSpanManager) StartRedrawSpan(ctx context.Context, geoRectangleAvailable bool) (context.Context, trace.Span) {
	return tracer.Start(ctx, "drivealert.map.redraw",
		trace.WithAttributes(
			attribute.Bool("map.geo_rectangle_available", geoRectangleAvailable),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartRemovalSpan starts a removal span.
func (m *otelSpanManager) StartRemovalSpan(ctx context.Context, kind string, lat, lon float64) (context.Context, trace.Span) {
	return tracer.Start(ctx, "drivealert.markers.remove",
		trace.WithAttributes(
			attribute.String("marker.kind", kind),
			attribute.Float64("marker.lat", lat),
			attribute.Float64("marker.lon", lon),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	EndSpanWithError(span, err)
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	AddSpanEvent(ctx, name, attrs...)
}

// EndSpanWithError completes a span, optionally recording an error.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span in context.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
