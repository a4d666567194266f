package drivealert

import (
	"log/slog"
	"time"

	"github.com/randalmurphal/drivealert/pkg/drivealert/config"
	"github.com/randalmurphal/drivealert/pkg/drivealert/lifecycle"
	"github.com/randalmurphal/drivealert/pkg/drivealert/observability"
	"github.com/randalmurphal/drivealert/pkg/drivealert/voice"
)

// pipelineConfig holds configuration for pipeline construction.
type pipelineConfig struct {
	logger       *slog.Logger
	metrics      observability.MetricsRecorder
	spans        observability.SpanManager
	pausePoll    time.Duration
	drawRects    bool
	voiceOptions []voice.Option
}

// defaultPipelineConfig returns the default configuration.
func defaultPipelineConfig() pipelineConfig {
	return pipelineConfig{
		metrics:   observability.NoopMetrics{},
		spans:     observability.NoopSpanManager{},
		pausePoll: lifecycle.DefaultPausePoll,
		drawRects: true,
	}
}

// Option configures a Pipeline.
type Option func(*pipelineConfig)

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(c *pipelineConfig) { c.logger = logger }
}

// WithMetrics sets the metrics recorder. It also observes queue traffic.
//
// Example:
//
//	p, err := drivealert.NewPipeline(surface,
//	    drivealert.WithMetrics(observability.NewMetricsRecorder()))
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *pipelineConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithSpanManager sets the span manager.
func WithSpanManager(s observability.SpanManager) Option {
	return func(c *pipelineConfig) {
		if s != nil {
			c.spans = s
		}
	}
}

// WithPausePoll sets how often a paused worker re-checks the app state.
// Default: lifecycle.DefaultPausePoll
func WithPausePoll(d time.Duration) Option {
	return func(c *pipelineConfig) {
		if d > 0 {
			c.pausePoll = d
		}
	}
}

// WithDrawRects enables drawing of lookahead rectangles. Default: true
func WithDrawRects(enabled bool) Option {
	return func(c *pipelineConfig) { c.drawRects = enabled }
}

// WithVoiceOptions passes options through to the voice dispatcher, e.g. the
// player, synthesizers and intent resolver.
func WithVoiceOptions(opts ...voice.Option) Option {
	return func(c *pipelineConfig) { c.voiceOptions = append(c.voiceOptions, opts...) }
}

// WithSettings applies loaded settings. Options given after it override it.
// Backends (player, synthesizers, resolver) are not created here.
func WithSettings(s config.Settings) Option {
	return func(c *pipelineConfig) {
		if s.PausePoll > 0 {
			c.pausePoll = s.PausePoll
		}
		c.drawRects = s.Map.DrawRects
		c.voiceOptions = append(c.voiceOptions,
			voice.WithMode(voice.Mode(s.Voice.Mode)),
			voice.WithAssetDir(s.Voice.AssetDir),
			voice.WithVoiceParams(voice.VoiceParams{Language: s.Voice.Language, Rate: s.Voice.Rate}),
		)
	}
}
