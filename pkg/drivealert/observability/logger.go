// Package observability provides structured logging, metrics and tracing for
// the drivealert workers.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds worker context to a logger.
// Returns a new logger with the component and worker fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "voice", "voice-prompt")
//	enriched.Info("playing") // includes component and worker
func EnrichLogger(logger *slog.Logger, component, worker string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("component", component),
		slog.String("worker", worker),
	)
}

// LogWorkerStart logs the start of a worker loop.
func LogWorkerStart(logger *slog.Logger, worker string) {
	if logger == nil {
		return
	}
	logger.Info("worker starting",
		slog.String("worker", worker),
	)
}

// LogWorkerTerminating logs a worker leaving its loop.
func LogWorkerTerminating(logger *slog.Logger, worker string, drained int) {
	if logger == nil {
		return
	}
	logger.Info("worker terminating",
		slog.String("worker", worker),
		slog.Int("drained", drained),
	)
}

// LogStateChange logs a lifecycle transition.
func LogStateChange(logger *slog.Logger, worker, from, to string) {
	if logger == nil {
		return
	}
	logger.Debug("worker state changed",
		slog.String("worker", worker),
		slog.String("from", from),
		slog.String("to", to),
	)
}

// LogProcessError logs a failed process step. The loop keeps running.
func LogProcessError(logger *slog.Logger, worker string, err error) {
	if logger == nil {
		return
	}
	logger.Error("process step failed",
		slog.String("worker", worker),
		slog.String("error", err.Error()),
	)
}

// LogPlayback logs the start of an audio playback.
func LogPlayback(logger *slog.Logger, trigger, asset string) {
	if logger == nil {
		return
	}
	logger.Info("trigger sound",
		slog.String("trigger", trigger),
		slog.String("asset", asset),
	)
}

// LogPlaybackFinished logs the end of an audio playback.
func LogPlaybackFinished(logger *slog.Logger, asset string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("playback finished",
		slog.String("asset", asset),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogMarkerAdded logs a marker placed on the map.
func LogMarkerAdded(logger *slog.Logger, kind, key string, lat, lon float64) {
	if logger == nil {
		return
	}
	logger.Debug("marker added",
		slog.String("kind", kind),
		slog.String("key", key),
		slog.Float64("lat", lat),
		slog.Float64("lon", lon),
	)
}

// LogMarkerSkipped logs a marker ignored because one already exists at the
// same coordinate.
func LogMarkerSkipped(logger *slog.Logger, kind, key string, lat, lon float64) {
	if logger == nil {
		return
	}
	logger.Info("ignore adding marker, already added into map",
		slog.String("kind", kind),
		slog.String("key", key),
		slog.Float64("lat", lat),
		slog.Float64("lon", lon),
	)
}

// LogMarkerRemoved logs a reconciled marker removal.
func LogMarkerRemoved(logger *slog.Logger, kind string, lat, lon float64) {
	if logger == nil {
		return
	}
	logger.Info("marker removed",
		slog.String("kind", kind),
		slog.Float64("lat", lat),
		slog.Float64("lon", lon),
	)
}

// LogRedrawError logs a recoverable redraw failure (non-fatal).
func LogRedrawError(logger *slog.Logger, err error) {
	if logger == nil {
		return
	}
	logger.Error("map redraw skipped",
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
