package lifecycle_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/drivealert/pkg/drivealert/lifecycle"
	"github.com/randalmurphal/drivealert/pkg/drivealert/queue"
)

// queueComponent consumes one int per step and counts them.
type queueComponent struct {
	q         *queue.Queue[int]
	processed atomic.Int64
	drains    atomic.Int64
	fail      bool
}

func (c *queueComponent) Process(_ context.Context) error {
	_, ok := c.q.Take()
	if !ok {
		return nil
	}
	c.processed.Add(1)
	if c.fail {
		return errors.New("step failed")
	}
	return nil
}

func (c *queueComponent) Drain() int {
	c.drains.Add(1)
	return c.q.Drain()
}

func startWorker(t *testing.T, w *lifecycle.Worker) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()
	return done
}

func waitDone(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not terminate")
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "running", lifecycle.Running.String())
	assert.Equal(t, "paused", lifecycle.Paused.String())
	assert.Equal(t, "terminated", lifecycle.Terminated.String())
	assert.Equal(t, "unknown", lifecycle.State(42).String())
}

func TestStopper_Idempotent(t *testing.T) {
	s := lifecycle.NewStopper()
	assert.False(t, s.Stopped())

	s.Stop()
	s.Stop()

	assert.True(t, s.Stopped())
	select {
	case <-s.Done():
	default:
		t.Fatal("Done not closed after Stop")
	}
}

func TestAppState_WaitForeground(t *testing.T) {
	app := lifecycle.NewAppState()
	app.Background()
	require.True(t, app.Backgrounded())

	result := make(chan bool, 1)
	go func() { result <- app.WaitForeground(context.Background(), nil) }()

	select {
	case <-result:
		t.Fatal("returned while backgrounded")
	case <-time.After(30 * time.Millisecond):
	}

	app.Foreground()
	select {
	case ok := <-result:
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("not woken by Foreground")
	}
}

func TestAppState_Admitting(t *testing.T) {
	app := lifecycle.NewAppState()
	assert.True(t, app.Admitting())

	app.Pause()
	assert.False(t, app.Admitting())
	app.Background()
	app.Resume()
	assert.False(t, app.Admitting(), "backgrounded app does not admit")
	app.Foreground()
	assert.True(t, app.Admitting())
}

func TestAppState_WaitForegroundStops(t *testing.T) {
	app := lifecycle.NewAppState()
	app.Background()
	stopper := lifecycle.NewStopper()
	stopper.Stop()

	assert.False(t, app.WaitForeground(context.Background(), stopper.Done()))
}

func TestWorker_ProcessesUntilStopped(t *testing.T) {
	q := queue.New[int](queue.CategoryVoice)
	comp := &queueComponent{q: q}
	stopper := lifecycle.NewStopper()
	w := lifecycle.NewWorker("voice", comp, lifecycle.NewAppState(), stopper)

	done := startWorker(t, w)
	q.Produce(1)
	q.Produce(2)

	require.Eventually(t, func() bool { return comp.processed.Load() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, lifecycle.Running, w.State())

	stopper.Stop()
	q.Close()
	waitDone(t, done)

	assert.Equal(t, lifecycle.Terminated, w.State())
	assert.GreaterOrEqual(t, comp.drains.Load(), int64(1), "final drain must run")
}

func TestWorker_PauseDrainsWithoutProcessing(t *testing.T) {
	q := queue.New[int](queue.CategoryMapUpdate)
	comp := &queueComponent{q: q}
	app := lifecycle.NewAppState()
	app.Pause()
	stopper := lifecycle.NewStopper()
	w := lifecycle.NewWorker("map", comp, app, stopper, lifecycle.WithPausePoll(5*time.Millisecond))

	done := startWorker(t, w)
	for i := 0; i < 10; i++ {
		q.Produce(i)
	}

	require.Eventually(t, func() bool { return q.Len() == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, lifecycle.Paused, w.State())
	assert.Zero(t, comp.processed.Load())

	app.Resume()
	q.Produce(99)
	require.Eventually(t, func() bool { return comp.processed.Load() == 1 }, time.Second, 5*time.Millisecond)

	stopper.Stop()
	q.Close()
	waitDone(t, done)
}

func TestWorker_ErrorsAreNotFatal(t *testing.T) {
	q := queue.New[int](queue.CategoryPOI)
	comp := &queueComponent{q: q, fail: true}
	stopper := lifecycle.NewStopper()
	w := lifecycle.NewWorker("poi", comp, lifecycle.NewAppState(), stopper)

	done := startWorker(t, w)
	q.Produce(1)
	q.Produce(2)
	q.Produce(3)

	require.Eventually(t, func() bool { return comp.processed.Load() == 3 }, time.Second, 5*time.Millisecond)

	stopper.Stop()
	q.Close()
	waitDone(t, done)
}

func TestWorker_StopWhileBackgrounded(t *testing.T) {
	q := queue.New[int](queue.CategoryAR)
	comp := &queueComponent{q: q}
	app := lifecycle.NewAppState()
	app.Background()
	stopper := lifecycle.NewStopper()
	w := lifecycle.NewWorker("ar", comp, app, stopper)

	done := startWorker(t, w)
	time.Sleep(20 * time.Millisecond)
	stopper.Stop()
	waitDone(t, done)

	assert.Equal(t, lifecycle.Terminated, w.State())
	assert.Zero(t, comp.processed.Load())
}

func TestWorker_ContextCancel(t *testing.T) {
	q := queue.New[int](queue.CategoryOnline)
	comp := &queueComponent{q: q}
	app := lifecycle.NewAppState()
	app.Pause()
	w := lifecycle.NewWorker("online", comp, app, lifecycle.NewStopper())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	cancel()
	waitDone(t, done)
}
