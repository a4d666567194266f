package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/randalmurphal/drivealert/pkg/drivealert/queue"
)

// setupMetricsTest creates a test meter provider and returns a function to collect metrics.
func setupMetricsTest(t *testing.T) (*sdkmetric.ManualReader, func()) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	originalProvider := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)

	cleanup := func() {
		otel.SetMeterProvider(originalProvider)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	}
	return reader, cleanup
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return &rm
}

func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumFor(t *testing.T, rm *metricdata.ResourceMetrics, name, key, value string) int64 {
	t.Helper()
	m := findMetric(rm, name)
	require.NotNil(t, m, "metric %s not found", name)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "Expected Sum type")

	var total int64
	for _, dp := range sum.DataPoints {
		if key == "" {
			total += dp.Value
			continue
		}
		for _, attr := range dp.Attributes.ToSlice() {
			if string(attr.Key) == key && attr.Value.Emit() == value {
				total += dp.Value
			}
		}
	}
	return total
}

func TestNewMetricsRecorder(t *testing.T) {
	_, cleanup := setupMetricsTest(t)
	defer cleanup()

	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)

	_, isNoop := recorder.(NoopMetrics)
	assert.False(t, isNoop, "Expected real metrics recorder, got noop")
}

func TestQueueObserverMetrics(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	q := queue.New[string](queue.CategoryVoice, queue.WithObserver(m))
	q.Produce("GPS_OFF")
	q.Produce("GPS_ON")
	_, _ = q.Take()
	q.Drain()

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(2), sumFor(t, rm, "drivealert.queue.produced", "queue", "voice"))
	assert.Equal(t, int64(1), sumFor(t, rm, "drivealert.queue.consumed", "queue", "voice"))
	assert.Equal(t, int64(1), sumFor(t, rm, "drivealert.queue.drained", "queue", "voice"))
}

func TestRecordProcess(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordProcess(ctx, "voice", 5*time.Millisecond, nil)
	m.RecordProcess(ctx, "voice", 5*time.Millisecond, errors.New("failed"))

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(2), sumFor(t, rm, "drivealert.worker.steps", "worker", "voice"))
	assert.Equal(t, int64(1), sumFor(t, rm, "drivealert.worker.errors", "worker", "voice"))

	hist := findMetric(rm, "drivealert.worker.latency_ms")
	require.NotNil(t, hist)
	_, ok := hist.Data.(metricdata.Histogram[float64])
	assert.True(t, ok, "Expected Histogram type")
}

func TestDomainCounters(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordPlayback(ctx, "static", 20*time.Millisecond)
	m.RecordDroppedTrigger(ctx, "OSM_DATA_ERROR")
	m.RecordNLUFallback(ctx)
	m.RecordMarker(ctx, "camera", "skipped")
	m.RecordMarker(ctx, "camera", "added")
	m.RecordRedraw(ctx, false)

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(1), sumFor(t, rm, "drivealert.voice.playbacks", "mode", "static"))
	assert.Equal(t, int64(1), sumFor(t, rm, "drivealert.voice.dropped_triggers", "trigger", "OSM_DATA_ERROR"))
	assert.Equal(t, int64(1), sumFor(t, rm, "drivealert.voice.nlu_fallbacks", "", ""))
	assert.Equal(t, int64(1), sumFor(t, rm, "drivealert.markers.decisions", "outcome", "skipped"))
	assert.Equal(t, int64(1), sumFor(t, rm, "drivealert.map.redraws", "success", "false"))
}
