// Package voice speaks driving alerts.
//
// The Dispatcher consumes Events from the voice queue. In static mode each
// trigger is looked up in a fixed asset table and the sound is played; in NLU
// mode the event text is sent to an IntentResolver and the fulfillment is
// spoken by a platform synthesizer. A PlaybackLock keeps playbacks from
// overlapping.
package voice

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	daerrors "github.com/randalmurphal/drivealert/pkg/drivealert/errors"
	"github.com/randalmurphal/drivealert/pkg/drivealert/observability"
	"github.com/randalmurphal/drivealert/pkg/drivealert/queue"
)

// FallbackUtterance is spoken when intent resolution fails.
const FallbackUtterance = "Sorry, I couldn't process your request."

// PlatformAndroid selects the mobile synthesizer.
const PlatformAndroid = "android"

// Mode selects how events are voiced.
type Mode string

// Dispatch modes.
const (
	ModeStatic Mode = "static"
	ModeNLU    Mode = "nlu"
)

// IntentResolver turns free text into a spoken fulfillment.
type IntentResolver interface {
	DetectIntent(ctx context.Context, text string) (string, error)
}

// VoiceParams are passed to the synthesizer.
type VoiceParams struct {
	Language string
	// Rate scales the engine's default speaking rate.
	Rate float64
}

// DefaultVoiceParams speaks US English slightly slower than the engine default.
var DefaultVoiceParams = VoiceParams{Language: "en-US", Rate: 0.8}

// Synthesizer speaks an utterance and returns once speaking has finished.
type Synthesizer interface {
	Speak(ctx context.Context, utterance string, params VoiceParams) error
}

// Player starts playing an audio file. The returned channel is closed when
// playback has finished.
type Player interface {
	Play(ctx context.Context, path string) (<-chan struct{}, error)
}

// PlatformFunc reports the platform name. It is called on every NLU event.
type PlatformFunc func() string

// Dispatcher is the voice worker component.
type Dispatcher struct {
	events *queue.Queue[Event]
	owned  []queue.Drainer
	lock   *PlaybackLock

	mode     Mode
	assetDir string
	params   VoiceParams
	platform PlatformFunc

	admit func() bool

	resolver IntentResolver
	desktop  Synthesizer
	mobile   Synthesizer
	player   Player

	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMode sets the dispatch mode.
func WithMode(m Mode) Option {
	return func(d *Dispatcher) { d.mode = m }
}

// WithAssetDir sets the directory asset file names are resolved against.
func WithAssetDir(dir string) Option {
	return func(d *Dispatcher) { d.assetDir = dir }
}

// WithVoiceParams overrides DefaultVoiceParams.
func WithVoiceParams(p VoiceParams) Option {
	return func(d *Dispatcher) { d.params = p }
}

// WithPlatform overrides runtime platform detection.
func WithPlatform(fn PlatformFunc) Option {
	return func(d *Dispatcher) {
		if fn != nil {
			d.platform = fn
		}
	}
}

// WithResolver sets the intent resolver used in NLU mode.
func WithResolver(r IntentResolver) Option {
	return func(d *Dispatcher) { d.resolver = r }
}

// WithSynthesizers sets the desktop and mobile synthesizers.
func WithSynthesizers(desktop, mobile Synthesizer) Option {
	return func(d *Dispatcher) {
		d.desktop = desktop
		d.mobile = mobile
	}
}

// WithPlayer sets the audio player used in static mode.
func WithPlayer(p Player) Option {
	return func(d *Dispatcher) { d.player = p }
}

// WithLock shares an existing PlaybackLock.
func WithLock(l *PlaybackLock) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.lock = l
		}
	}
}

// WithOwnedQueues adds queues that are drained together with the voice queue.
func WithOwnedQueues(qs ...queue.Drainer) Option {
	return func(d *Dispatcher) { d.owned = append(d.owned, qs...) }
}

// WithAdmission sets a gate checked after every consume. Events consumed
// while it reports false are dropped unvoiced.
func WithAdmission(fn func() bool) Option {
	return func(d *Dispatcher) { d.admit = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(d *Dispatcher) {
		if m != nil {
			d.metrics = m
		}
	}
}

// WithSpanManager sets the span manager.
func WithSpanManager(s observability.SpanManager) Option {
	return func(d *Dispatcher) {
		if s != nil {
			d.spans = s
		}
	}
}

// NewDispatcher creates a Dispatcher consuming events.
func NewDispatcher(events *queue.Queue[Event], opts ...Option) *Dispatcher {
	d := &Dispatcher{
		events:   events,
		lock:     NewPlaybackLock(),
		mode:     ModeStatic,
		params:   DefaultVoiceParams,
		platform: func() string { return runtime.GOOS },
		metrics:  observability.NoopMetrics{},
		spans:    observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Lock returns the dispatcher's playback lock.
func (d *Dispatcher) Lock() *PlaybackLock {
	return d.lock
}

// WaitIdle blocks until no playback is in flight.
func (d *Dispatcher) WaitIdle(ctx context.Context) error {
	return d.lock.WaitIdle(ctx)
}

// Process voices one event. It blocks until an event is queued and until the
// previous playback has finished.
func (d *Dispatcher) Process(ctx context.Context) error {
	ev, ok := d.events.Consume()
	d.events.Release()
	if !ok {
		return nil
	}
	if d.admit != nil && !d.admit() {
		if d.logger != nil {
			d.logger.Debug("voice event dropped while not admitting", slog.String("trigger", string(ev.Trigger)))
		}
		return nil
	}

	if err := d.lock.Acquire(ctx); err != nil {
		return err
	}

	if d.mode == ModeNLU {
		return d.speak(ctx, ev)
	}
	return d.play(ctx, ev)
}

// Drain empties the voice queue and every owned queue.
func (d *Dispatcher) Drain() int {
	return queue.DrainAll(append([]queue.Drainer{d.events}, d.owned...)...)
}

func (d *Dispatcher) speak(ctx context.Context, ev Event) error {
	defer d.lock.Release()

	ctx, span := d.spans.StartPlaybackSpan(ctx, string(ModeNLU), string(ev.Trigger))
	start := time.Now()

	utterance := FallbackUtterance
	if d.resolver != nil {
		resolved, err := d.resolver.DetectIntent(ctx, ev.Utterance())
		if err != nil {
			if d.logger != nil {
				d.logger.Warn("intent resolution failed",
					slog.String("event", ev.ID),
					slog.String("error", err.Error()),
				)
			}
			d.metrics.RecordNLUFallback(ctx)
		} else {
			utterance = resolved
		}
	} else {
		d.metrics.RecordNLUFallback(ctx)
	}

	if d.logger != nil {
		d.logger.Info("intent response", slog.String("event", ev.ID), slog.String("response", utterance))
	}

	synth := d.synthesizer()
	if synth == nil {
		d.spans.EndSpanWithError(span, ErrNoSynthesizer)
		return ErrNoSynthesizer
	}

	err := synth.Speak(ctx, utterance, d.params)
	d.metrics.RecordPlayback(ctx, string(ModeNLU), time.Since(start))
	d.spans.EndSpanWithError(span, err)
	if err != nil {
		return fmt.Errorf("speak: %w", err)
	}
	return nil
}

func (d *Dispatcher) play(ctx context.Context, ev Event) error {
	asset, ok := Lookup(ev.Trigger)
	if !ok {
		d.lock.Release()
		d.metrics.RecordDroppedTrigger(ctx, string(ev.Trigger))
		if d.logger != nil {
			d.logger.Debug("no sound for trigger", slog.String("trigger", string(ev.Trigger)))
		}
		return nil
	}
	if d.player == nil {
		d.lock.Release()
		return ErrNoPlayer
	}

	path := filepath.Join(d.assetDir, asset)
	observability.LogPlayback(d.logger, string(ev.Trigger), path)

	spanCtx, span := d.spans.StartPlaybackSpan(ctx, string(ModeStatic), string(ev.Trigger))
	start := time.Now()

	done, err := d.player.Play(spanCtx, path)
	if err != nil {
		d.lock.Release()
		d.spans.EndSpanWithError(span, err)
		if daerrors.Categorize(err) == daerrors.CategoryMissing {
			if d.logger != nil {
				d.logger.Debug("audio asset unavailable", slog.String("asset", path))
			}
			return nil
		}
		return fmt.Errorf("play %s: %w", asset, err)
	}

	// The lock is held until playback finishes, so the next Process call
	// waits in Acquire.
	go func() {
		defer d.lock.Release()
		select {
		case <-done:
		case <-ctx.Done():
		}
		elapsed := time.Since(start)
		d.metrics.RecordPlayback(spanCtx, string(ModeStatic), elapsed)
		d.spans.EndSpanWithError(span, nil)
		observability.LogPlaybackFinished(d.logger, path, float64(elapsed.Milliseconds()))
	}()
	return nil
}

func (d *Dispatcher) synthesizer() Synthesizer {
	if d.platform() == PlatformAndroid {
		if d.mobile != nil {
			return d.mobile
		}
		return d.desktop
	}
	if d.desktop != nil {
		return d.desktop
	}
	return d.mobile
}
