package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoopMetrics(t *testing.T) {
	var m MetricsRecorder = NoopMetrics{}
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.Produced("voice")
		m.Consumed("voice", 1)
		m.Drained("voice", 2)
		m.RecordProcess(ctx, "voice", time.Millisecond, errors.New("x"))
		m.RecordPlayback(ctx, "nlu", time.Millisecond)
		m.RecordDroppedTrigger(ctx, "OSM_DATA_ERROR")
		m.RecordNLUFallback(ctx)
		m.RecordMarker(ctx, "poi", "added")
		m.RecordRedraw(ctx, true)
	})
}

func TestNoopSpanManager(t *testing.T) {
	var sm SpanManager = NoopSpanManager{}
	ctx := context.Background()

	newCtx, span := sm.StartPlaybackSpan(ctx, "static", "HAZARD")
	assert.Equal(t, ctx, newCtx)
	assert.False(t, span.IsRecording())

	newCtx, _ = sm.StartRedrawSpan(ctx, false)
	assert.Equal(t, ctx, newCtx)

	newCtx, _ = sm.StartRemovalSpan(ctx, "camera", 0, 0)
	assert.Equal(t, ctx, newCtx)

	assert.NotPanics(t, func() {
		sm.EndSpanWithError(span, errors.New("x"))
		sm.AddSpanEvent(ctx, "event")
	})
}
