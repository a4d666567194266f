package lifecycle

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/randalmurphal/drivealert/pkg/drivealert/observability"
)

// DefaultPausePoll is how long a paused worker sleeps between drains when
// no state change arrives.
const DefaultPausePoll = 100 * time.Millisecond

// Component is the domain half of a worker.
type Component interface {
	// Process performs one unit of work. It may block on a queue.
	Process(ctx context.Context) error

	// Drain empties every queue the component consumes.
	Drain() int
}

// Worker drives a Component through the lifecycle states.
type Worker struct {
	name      string
	component Component
	app       *AppState
	stopper   *Stopper

	logger    *slog.Logger
	metrics   observability.MetricsRecorder
	pausePoll time.Duration

	state atomic.Int32
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithLogger sets the worker logger.
func WithLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) {
		w.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observability.MetricsRecorder) WorkerOption {
	return func(w *Worker) {
		if m != nil {
			w.metrics = m
		}
	}
}

// WithPausePoll sets the paused sleep interval.
func WithPausePoll(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.pausePoll = d
		}
	}
}

// NewWorker creates a worker. app and stopper are shared across the pipeline.
func NewWorker(name string, component Component, app *AppState, stopper *Stopper, opts ...WorkerOption) *Worker {
	w := &Worker{
		name:      name,
		component: component,
		app:       app,
		stopper:   stopper,
		metrics:   observability.NoopMetrics{},
		pausePoll: DefaultPausePoll,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = observability.EnrichLogger(w.logger, "lifecycle", name)
	w.state.Store(int32(Running))
	return w
}

// Name returns the worker name.
func (w *Worker) Name() string { return w.name }

// State returns the current lifecycle state.
func (w *Worker) State() State {
	return State(w.state.Load())
}

// Run loops until the stopper fires or ctx is done. Termination is only
// observed at the top of an iteration, so a Process call blocked on a queue
// returns first (closing the queue wakes it).
//
// Process errors are logged and never end the loop. Run always drains the
// component once more before returning and returns nil.
func (w *Worker) Run(ctx context.Context) error {
	observability.LogWorkerStart(w.logger, w.name)

	for {
		if w.stopper.Stopped() || ctx.Err() != nil {
			break
		}

		if !w.app.WaitForeground(ctx, w.stopper.Done()) {
			continue
		}

		if !w.app.Resumed() {
			w.transition(Paused)
			w.component.Drain()
			w.sleepPaused(ctx)
			continue
		}

		w.transition(Running)
		start := time.Now()
		err := w.component.Process(ctx)
		w.metrics.RecordProcess(ctx, w.name, time.Since(start), err)
		if err != nil {
			observability.LogProcessError(w.logger, w.name, err)
		}
	}

	w.transition(Terminated)
	drained := w.component.Drain()
	observability.LogWorkerTerminating(w.logger, w.name, drained)
	return nil
}

func (w *Worker) sleepPaused(ctx context.Context) {
	timer := time.NewTimer(w.pausePoll)
	defer timer.Stop()

	select {
	case <-w.app.Changed():
	case <-timer.C:
	case <-w.stopper.Done():
	case <-ctx.Done():
	}
}

func (w *Worker) transition(to State) {
	from := State(w.state.Swap(int32(to)))
	if from != to {
		observability.LogStateChange(w.logger, w.name, from.String(), to.String())
	}
}
