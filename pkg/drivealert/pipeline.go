package drivealert

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/randalmurphal/drivealert/pkg/drivealert/calculator"
	"github.com/randalmurphal/drivealert/pkg/drivealert/lifecycle"
	"github.com/randalmurphal/drivealert/pkg/drivealert/mapview"
	"github.com/randalmurphal/drivealert/pkg/drivealert/markers"
	"github.com/randalmurphal/drivealert/pkg/drivealert/observability"
	"github.com/randalmurphal/drivealert/pkg/drivealert/queue"
	"github.com/randalmurphal/drivealert/pkg/drivealert/voice"
)

// Worker names.
const (
	WorkerVoice = "voice"
	WorkerMap   = "map"
)

// Pipeline owns the queues and the two workers.
type Pipeline struct {
	// Voice event queues. GPS, MaxSpeed, Online and AR are drained together
	// with Voice when the voice worker pauses or terminates.
	Voice    *queue.Queue[voice.Event]
	GPS      *queue.Queue[voice.Event]
	MaxSpeed *queue.Queue[voice.Event]
	Online   *queue.Queue[voice.Event]
	AR       *queue.Queue[voice.Event]

	// Map queues.
	MapUpdates   *queue.Queue[mapview.Command]
	POIs         *queue.Queue[mapview.POIPayload]
	Construction *queue.Queue[markers.AttributeMap]
	OSMCameras   *queue.Queue[markers.AttributeMap]
	CloudCameras *queue.Queue[markers.AttributeMap]
	DBCameras    *queue.Queue[markers.AttributeMap]

	Calculator *calculator.Registry
	Markers    *markers.Registry
	Router     *mapview.Router
	Dispatcher *voice.Dispatcher

	app     *lifecycle.AppState
	stopper *lifecycle.Stopper
	workers []*lifecycle.Worker
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
}

// NewPipeline builds a pipeline drawing on surface. Workers start with Run.
func NewPipeline(surface markers.Surface, opts ...Option) (*Pipeline, error) {
	if surface == nil {
		return nil, ErrNilSurface
	}

	cfg := defaultPipelineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	observe := queue.WithObserver(cfg.metrics)
	p := &Pipeline{
		Voice:        queue.New[voice.Event](queue.CategoryVoice, observe),
		GPS:          queue.New[voice.Event](queue.CategoryGPSSignal, observe),
		MaxSpeed:     queue.New[voice.Event](queue.CategoryMaxSpeedExceeded, observe),
		Online:       queue.New[voice.Event](queue.CategoryOnline, observe),
		AR:           queue.New[voice.Event](queue.CategoryAR, observe),
		MapUpdates:   queue.New[mapview.Command](queue.CategoryMapUpdate, observe),
		POIs:         queue.New[mapview.POIPayload](queue.CategoryPOI, observe),
		Construction: queue.New[markers.AttributeMap](queue.CategoryConstruction, observe),
		OSMCameras:   queue.New[markers.AttributeMap](queue.CategoryOSMCamera, observe),
		CloudCameras: queue.New[markers.AttributeMap](queue.CategoryCloudCamera, observe),
		DBCameras:    queue.New[markers.AttributeMap](queue.CategoryDBCamera, observe),
		Calculator:   calculator.New(),
		app:          lifecycle.NewAppState(),
		stopper:      lifecycle.NewStopper(),
		logger:       cfg.logger,
	}

	voiceOpts := append([]voice.Option{
		voice.WithOwnedQueues(p.GPS, p.MaxSpeed, p.Online, p.AR),
		voice.WithAdmission(p.app.Admitting),
		voice.WithLogger(observability.EnrichLogger(cfg.logger, "voice", WorkerVoice)),
		voice.WithMetrics(cfg.metrics),
		voice.WithSpanManager(cfg.spans),
	}, cfg.voiceOptions...)
	p.Dispatcher = voice.NewDispatcher(p.Voice, voiceOpts...)

	p.Markers = markers.NewRegistry(surface,
		markers.WithCameraQueues(p.OSMCameras, p.CloudCameras, p.DBCameras),
		markers.WithConstructionQueue(p.Construction),
		markers.WithCalculator(p.Calculator),
		markers.WithDrawRects(cfg.drawRects),
		markers.WithLogger(observability.EnrichLogger(cfg.logger, "markers", WorkerMap)),
		markers.WithMetrics(cfg.metrics),
		markers.WithSpanManager(cfg.spans),
	)

	p.Router = mapview.NewRouter(p.MapUpdates, p.POIs, p.Markers, p.Calculator,
		mapview.WithVoiceIdle(p.Dispatcher),
		mapview.WithRemover(p.Markers),
		mapview.WithAdmission(p.app.Admitting),
		mapview.WithLogger(observability.EnrichLogger(cfg.logger, "mapview", WorkerMap)),
		mapview.WithMetrics(cfg.metrics),
		mapview.WithSpanManager(cfg.spans),
	)

	workerOpts := []lifecycle.WorkerOption{
		lifecycle.WithLogger(cfg.logger),
		lifecycle.WithMetrics(cfg.metrics),
		lifecycle.WithPausePoll(cfg.pausePoll),
	}
	p.workers = []*lifecycle.Worker{
		lifecycle.NewWorker(WorkerVoice, p.Dispatcher, p.app, p.stopper, workerOpts...),
		lifecycle.NewWorker(WorkerMap, p.Router, p.app, p.stopper, workerOpts...),
	}
	return p, nil
}

// Run starts both workers and blocks until they have terminated.
func (p *Pipeline) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.running || p.stopper.Stopped() {
		p.mu.Unlock()
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	p.running = true
	p.cancel = cancel
	p.done = make(chan struct{})
	p.mu.Unlock()
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for _, w := range p.workers {
		g.Go(func() error { return w.Run(gctx) })
	}
	err := g.Wait()

	p.mu.Lock()
	p.err = err
	close(p.done)
	p.mu.Unlock()
	return err
}

// Shutdown terminates both workers and waits for them until ctx is done.
// Queued events are drained, not processed.
func (p *Pipeline) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return ErrNotRunning
	}
	done, cancel := p.done, p.cancel
	p.mu.Unlock()

	if p.logger != nil {
		p.logger.Info("pipeline shutting down")
	}
	p.stopper.Stop()
	p.MapUpdates.Produce(mapview.Exit())
	for _, q := range p.queues() {
		q.Close()
	}
	cancel()

	select {
	case <-done:
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type closer interface {
	Close()
}

func (p *Pipeline) queues() []closer {
	return []closer{
		p.Voice, p.GPS, p.MaxSpeed, p.Online, p.AR,
		p.MapUpdates, p.POIs, p.Construction,
		p.OSMCameras, p.CloudCameras, p.DBCameras,
	}
}

// Running reports whether Run has started. It stays true after Shutdown.
func (p *Pipeline) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// WorkerStates returns each worker's lifecycle state by name.
func (p *Pipeline) WorkerStates() map[string]lifecycle.State {
	states := make(map[string]lifecycle.State, len(p.workers))
	for _, w := range p.workers {
		states[w.Name()] = w.State()
	}
	return states
}

// App returns the shared app state.
func (p *Pipeline) App() *lifecycle.AppState { return p.app }

// Background parks both workers until Foreground.
func (p *Pipeline) Background() { p.app.Background() }

// Foreground wakes backgrounded workers.
func (p *Pipeline) Foreground() { p.app.Foreground() }

// Pause makes both workers drain their queues without processing.
func (p *Pipeline) Pause() { p.app.Pause() }

// Resume returns paused workers to processing.
func (p *Pipeline) Resume() { p.app.Resume() }
