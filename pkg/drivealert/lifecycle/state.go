// Package lifecycle runs the drivealert workers through their
// Running, Paused and Terminated states.
//
// A Worker owns no domain logic. It drives a Component one step at a time,
// drains the component's queues whenever the host application is paused and
// stops cooperatively once the shared Stopper fires.
package lifecycle

import (
	"sync"
	"sync/atomic"
)

// State is the lifecycle state of a worker.
type State int32

// Worker states.
const (
	Running State = iota
	Paused
	Terminated
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Stopper is the termination flag shared by every worker of a pipeline.
// Once stopped it stays stopped.
type Stopper struct {
	stopped atomic.Bool
	once    sync.Once
	done    chan struct{}
}

// NewStopper creates a Stopper that has not fired.
func NewStopper() *Stopper {
	return &Stopper{done: make(chan struct{})}
}

// Stop sets the flag. Safe to call more than once.
func (s *Stopper) Stop() {
	s.once.Do(func() {
		s.stopped.Store(true)
		close(s.done)
	})
}

// Stopped reports whether Stop has been called.
func (s *Stopper) Stopped() bool {
	return s.stopped.Load()
}

// Done is closed when Stop is called.
func (s *Stopper) Done() <-chan struct{} {
	return s.done
}
