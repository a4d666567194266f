package voice_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/drivealert/pkg/drivealert/queue"
	"github.com/randalmurphal/drivealert/pkg/drivealert/voice"
)

// manualPlayer records plays and finishes each one only when told to.
// It fails the test if two plays overlap.
type manualPlayer struct {
	t       *testing.T
	mu      sync.Mutex
	paths   []string
	active  int
	pending []chan struct{}
	started chan string
}

func newManualPlayer(t *testing.T) *manualPlayer {
	return &manualPlayer{t: t, started: make(chan string, 16)}
}

func (p *manualPlayer) Play(_ context.Context, path string) (<-chan struct{}, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.active++
	if p.active > 1 {
		p.t.Errorf("overlapping playback of %s", path)
	}
	p.paths = append(p.paths, path)
	done := make(chan struct{})
	p.pending = append(p.pending, done)
	p.started <- path
	return done, nil
}

// finish completes the oldest unfinished playback.
func (p *manualPlayer) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	done := p.pending[0]
	p.pending = p.pending[1:]
	p.active--
	close(done)
}

func (p *manualPlayer) played() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.paths...)
}

type stubResolver struct {
	answer string
	err    error
	texts  []string
}

func (r *stubResolver) DetectIntent(_ context.Context, text string) (string, error) {
	r.texts = append(r.texts, text)
	return r.answer, r.err
}

type recordingSpeaker struct {
	mu     sync.Mutex
	spoken []string
	params []voice.VoiceParams
}

func (s *recordingSpeaker) Speak(_ context.Context, utterance string, params voice.VoiceParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spoken = append(s.spoken, utterance)
	s.params = append(s.params, params)
	return nil
}

func runProcess(ctx context.Context, d *voice.Dispatcher, n int) <-chan error {
	errs := make(chan error, n)
	go func() {
		for i := 0; i < n; i++ {
			errs <- d.Process(ctx)
		}
	}()
	return errs
}

func TestDispatcher_GPSOffThenOnPlaysInOrderWithoutOverlap(t *testing.T) {
	ctx := context.Background()
	events := queue.New[voice.Event](queue.CategoryVoice)
	player := newManualPlayer(t)
	d := voice.NewDispatcher(events, voice.WithPlayer(player), voice.WithAssetDir("sounds"))

	events.Produce(voice.NewEvent(voice.GPSOff))
	events.Produce(voice.NewEvent(voice.GPSOn))

	errs := runProcess(ctx, d, 2)

	first := <-player.started
	assert.Equal(t, filepath.Join("sounds", "gps_off.wav"), first)
	require.NoError(t, <-errs)

	// The second event is consumed but must wait for the first playback.
	select {
	case path := <-player.started:
		t.Fatalf("second playback %s started while first in flight", path)
	case <-time.After(50 * time.Millisecond):
	}
	assert.True(t, d.Lock().Busy())

	player.finish()

	select {
	case second := <-player.started:
		assert.Equal(t, filepath.Join("sounds", "gps_established.wav"), second)
	case <-time.After(time.Second):
		t.Fatal("second playback never started")
	}
	require.NoError(t, <-errs)
	player.finish()

	require.NoError(t, d.WaitIdle(ctx))
	assert.Equal(t, []string{
		filepath.Join("sounds", "gps_off.wav"),
		filepath.Join("sounds", "gps_established.wav"),
	}, player.played())
}

func TestDispatcher_AdmissionGateDropsEvent(t *testing.T) {
	ctx := context.Background()
	events := queue.New[voice.Event](queue.CategoryVoice)
	player := newManualPlayer(t)
	admitting := false
	d := voice.NewDispatcher(events,
		voice.WithPlayer(player),
		voice.WithAssetDir("sounds"),
		voice.WithAdmission(func() bool { return admitting }),
	)

	events.Produce(voice.NewEvent(voice.GPSOff))
	require.NoError(t, d.Process(ctx))
	assert.Equal(t, 0, events.Len())
	assert.False(t, d.Lock().Busy(), "dropped event must not take the playback lock")
	assert.Empty(t, player.played())

	admitting = true
	events.Produce(voice.NewEvent(voice.GPSOn))
	require.NoError(t, d.Process(ctx))
	player.finish()
	require.NoError(t, d.WaitIdle(ctx))
	assert.Equal(t, []string{filepath.Join("sounds", "gps_established.wav")}, player.played())
}

func TestDispatcher_UnmappedTriggerIsSilent(t *testing.T) {
	ctx := context.Background()
	events := queue.New[voice.Event](queue.CategoryVoice)
	player := newManualPlayer(t)
	d := voice.NewDispatcher(events, voice.WithPlayer(player))

	for _, trig := range []voice.Trigger{voice.OSMDataError, voice.EmptyDatasetFromServer, "NOT_A_TRIGGER"} {
		events.Produce(voice.NewEvent(trig))
		require.NoError(t, d.Process(ctx))
		assert.False(t, d.Lock().Busy(), "lock must be released for %s", trig)
	}
	assert.Empty(t, player.played())
}

type failingPlayer struct{ err error }

func (p failingPlayer) Play(context.Context, string) (<-chan struct{}, error) {
	return nil, p.err
}

func TestDispatcher_PlayFailureReleasesLock(t *testing.T) {
	events := queue.New[voice.Event](queue.CategoryVoice)
	d := voice.NewDispatcher(events, voice.WithPlayer(failingPlayer{err: errors.New("no audio device")}))

	events.Produce(voice.NewEvent(voice.Hazard))
	err := d.Process(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hazard.wav")
	assert.False(t, d.Lock().Busy())
}

func TestDispatcher_MissingAssetFileIsSkipped(t *testing.T) {
	events := queue.New[voice.Event](queue.CategoryVoice)
	d := voice.NewDispatcher(events,
		voice.WithPlayer(voice.NewCommandPlayer()),
		voice.WithAssetDir(t.TempDir()),
	)

	events.Produce(voice.NewEvent(voice.Water))
	require.NoError(t, d.Process(context.Background()))
	assert.False(t, d.Lock().Busy())
}

func TestDispatcher_NoPlayer(t *testing.T) {
	events := queue.New[voice.Event](queue.CategoryVoice)
	d := voice.NewDispatcher(events)

	events.Produce(voice.NewEvent(voice.FixNow))
	assert.ErrorIs(t, d.Process(context.Background()), voice.ErrNoPlayer)
	assert.False(t, d.Lock().Busy())
}

func TestDispatcher_NLUSpeaksResolvedUtterance(t *testing.T) {
	events := queue.New[voice.Event](queue.CategoryVoice)
	resolver := &stubResolver{answer: "Speed camera in 300 meters."}
	desktop := &recordingSpeaker{}
	mobile := &recordingSpeaker{}
	d := voice.NewDispatcher(events,
		voice.WithMode(voice.ModeNLU),
		voice.WithResolver(resolver),
		voice.WithSynthesizers(desktop, mobile),
		voice.WithPlatform(func() string { return "linux" }),
	)

	events.Produce(voice.NewEvent(voice.Fix300))
	require.NoError(t, d.Process(context.Background()))

	assert.Equal(t, []string{"FIX_300"}, resolver.texts)
	assert.Equal(t, []string{"Speed camera in 300 meters."}, desktop.spoken)
	assert.Empty(t, mobile.spoken)
	assert.Equal(t, voice.DefaultVoiceParams, desktop.params[0])
	assert.False(t, d.Lock().Busy())
}

func TestDispatcher_NLUFallbackOnResolverError(t *testing.T) {
	events := queue.New[voice.Event](queue.CategoryVoice)
	mobile := &recordingSpeaker{}
	d := voice.NewDispatcher(events,
		voice.WithMode(voice.ModeNLU),
		voice.WithResolver(&stubResolver{err: errors.New("deadline exceeded")}),
		voice.WithSynthesizers(&recordingSpeaker{}, mobile),
		voice.WithPlatform(func() string { return voice.PlatformAndroid }),
	)

	events.Produce(voice.NewTextEvent("where is the next fuel station"))
	require.NoError(t, d.Process(context.Background()))

	assert.Equal(t, []string{voice.FallbackUtterance}, mobile.spoken)
}

func TestDispatcher_NLUWithoutSynthesizer(t *testing.T) {
	events := queue.New[voice.Event](queue.CategoryVoice)
	d := voice.NewDispatcher(events, voice.WithMode(voice.ModeNLU), voice.WithResolver(&stubResolver{answer: "ok"}))

	events.Produce(voice.NewEvent(voice.GPSLow))
	assert.ErrorIs(t, d.Process(context.Background()), voice.ErrNoSynthesizer)
	assert.False(t, d.Lock().Busy())
}

func TestDispatcher_ClosedQueue(t *testing.T) {
	events := queue.New[voice.Event](queue.CategoryVoice)
	d := voice.NewDispatcher(events)
	events.Close()

	assert.NoError(t, d.Process(context.Background()))
}

func TestDispatcher_DrainOwnedQueues(t *testing.T) {
	events := queue.New[voice.Event](queue.CategoryVoice)
	gps := queue.New[string](queue.CategoryGPSSignal)
	maxSpeed := queue.New[int](queue.CategoryMaxSpeedExceeded)
	online := queue.New[bool](queue.CategoryOnline)
	ar := queue.New[string](queue.CategoryAR)
	d := voice.NewDispatcher(events, voice.WithOwnedQueues(gps, maxSpeed, online, ar))

	events.Produce(voice.NewEvent(voice.GPSOn))
	gps.Produce("OFF")
	maxSpeed.Produce(130)
	online.Produce(true)
	ar.Produce("person")

	assert.Equal(t, 5, d.Drain())
	assert.Zero(t, events.Len()+gps.Len()+maxSpeed.Len()+online.Len()+ar.Len())
}

func TestPlaybackLock(t *testing.T) {
	ctx := context.Background()
	l := voice.NewPlaybackLock()
	require.NoError(t, l.Acquire(ctx))
	assert.True(t, l.Busy())

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Acquire(short), context.DeadlineExceeded)

	idle := make(chan error, 1)
	go func() { idle <- l.WaitIdle(ctx) }()
	l.Release()
	select {
	case err := <-idle:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("WaitIdle not woken")
	}

	l.Release()
	assert.False(t, l.Busy())
}
