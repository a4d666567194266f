package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testHandler captures log records for testing.
type testHandler struct {
	buf   *bytes.Buffer
	level slog.Level
	attrs []slog.Attr
}

func newTestHandler() *testHandler {
	return &testHandler{
		buf:   &bytes.Buffer{},
		level: slog.LevelDebug,
	}
}

func (h *testHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *testHandler) Handle(_ context.Context, r slog.Record) error {
	data := map[string]any{
		"level": r.Level.String(),
		"msg":   r.Message,
	}
	for _, attr := range h.attrs {
		data[attr.Key] = attr.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		data[a.Key] = a.Value.Any()
		return true
	})
	return json.NewEncoder(h.buf).Encode(data)
}

func (h *testHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newH := &testHandler{
		buf:   h.buf,
		level: h.level,
		attrs: make([]slog.Attr, len(h.attrs)+len(attrs)),
	}
	copy(newH.attrs, h.attrs)
	copy(newH.attrs[len(h.attrs):], attrs)
	return newH
}

func (h *testHandler) WithGroup(_ string) slog.Handler {
	return h
}

func (h *testHandler) getLastRecord() map[string]any {
	lines := bytes.Split(h.buf.Bytes(), []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		if len(lines[i]) > 0 {
			var m map[string]any
			if err := json.Unmarshal(lines[i], &m); err == nil {
				return m
			}
		}
	}
	return nil
}

func TestEnrichLogger(t *testing.T) {
	t.Run("adds component and worker", func(t *testing.T) {
		h := newTestHandler()
		logger := slog.New(h)

		enriched := EnrichLogger(logger, "voice", "voice-prompt")
		enriched.Info("test message")

		record := h.getLastRecord()
		require.NotNil(t, record)
		assert.Equal(t, "voice", record["component"])
		assert.Equal(t, "voice-prompt", record["worker"])
		assert.Equal(t, "test message", record["msg"])
	})

	t.Run("nil logger returns nil", func(t *testing.T) {
		assert.Nil(t, EnrichLogger(nil, "voice", "voice-prompt"))
	})
}

func TestLogHelpers(t *testing.T) {
	tests := []struct {
		name  string
		log   func(*slog.Logger)
		msg   string
		level string
	}{
		{"worker start", func(l *slog.Logger) { LogWorkerStart(l, "map") }, "worker starting", "INFO"},
		{"worker terminating", func(l *slog.Logger) { LogWorkerTerminating(l, "map", 3) }, "worker terminating", "INFO"},
		{"state change", func(l *slog.Logger) { LogStateChange(l, "map", "running", "paused") }, "worker state changed", "DEBUG"},
		{"process error", func(l *slog.Logger) { LogProcessError(l, "map", errors.New("boom")) }, "process step failed", "ERROR"},
		{"playback", func(l *slog.Logger) { LogPlayback(l, "GPS_OFF", "gps_off.wav") }, "trigger sound", "INFO"},
		{"playback finished", func(l *slog.Logger) { LogPlaybackFinished(l, "gps_off.wav", 12) }, "playback finished", "DEBUG"},
		{"marker added", func(l *slog.Logger) { LogMarkerAdded(l, "camera", "FIX_A", 1, 2) }, "marker added", "DEBUG"},
		{"marker skipped", func(l *slog.Logger) { LogMarkerSkipped(l, "camera", "FIX_B", 1, 2) }, "ignore adding marker, already added into map", "INFO"},
		{"marker removed", func(l *slog.Logger) { LogMarkerRemoved(l, "camera", 1, 2) }, "marker removed", "INFO"},
		{"redraw error", func(l *slog.Logger) { LogRedrawError(l, errors.New("dns")) }, "map redraw skipped", "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler()
			tt.log(slog.New(h))

			record := h.getLastRecord()
			require.NotNil(t, record)
			assert.Equal(t, tt.msg, record["msg"])
			assert.Equal(t, tt.level, record["level"])
		})
	}
}

func TestLogHelpers_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		LogWorkerStart(nil, "map")
		LogWorkerTerminating(nil, "map", 0)
		LogStateChange(nil, "map", "a", "b")
		LogProcessError(nil, "map", errors.New("x"))
		LogPlayback(nil, "t", "a")
		LogPlaybackFinished(nil, "a", 0)
		LogMarkerAdded(nil, "camera", "k", 0, 0)
		LogMarkerSkipped(nil, "camera", "k", 0, 0)
		LogMarkerRemoved(nil, "camera", 0, 0)
		LogRedrawError(nil, errors.New("x"))
	})
}

func TestTimedOperation(t *testing.T) {
	done := TimedOperation()
	time.Sleep(15 * time.Millisecond)
	assert.GreaterOrEqual(t, done(), float64(10))
}
