package lifecycle

import (
	"context"
	"sync"
)

// AppState tracks the host application's foreground and pause state.
//
// Every change closes the current change channel and replaces it, so any
// number of workers can wait for "something changed" without polling.
type AppState struct {
	mu         sync.Mutex
	background bool
	paused     bool
	changed    chan struct{}
}

// NewAppState returns a foreground, resumed application state.
func NewAppState() *AppState {
	return &AppState{changed: make(chan struct{})}
}

// Background marks the application as backgrounded.
func (a *AppState) Background() { a.set(func() { a.background = true }) }

// Foreground marks the application as foregrounded.
func (a *AppState) Foreground() { a.set(func() { a.background = false }) }

// Pause marks the application as paused. Workers drain instead of processing.
func (a *AppState) Pause() { a.set(func() { a.paused = true }) }

// Resume clears the paused flag.
func (a *AppState) Resume() { a.set(func() { a.paused = false }) }

// Backgrounded reports whether the application is in the background.
func (a *AppState) Backgrounded() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.background
}

// Resumed reports whether the application is not paused.
func (a *AppState) Resumed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.paused
}

// Admitting reports whether the application is in the foreground and not
// paused. Components check it after a blocking consume so an item that
// arrives once the app has gone away is dropped instead of processed.
func (a *AppState) Admitting() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.background && !a.paused
}

// Changed returns a channel closed on the next state change.
func (a *AppState) Changed() <-chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.changed
}

// WaitForeground blocks until the application is in the foreground, stop
// fires or ctx is done. It returns false if it gave up waiting.
func (a *AppState) WaitForeground(ctx context.Context, stop <-chan struct{}) bool {
	for {
		a.mu.Lock()
		bg, changed := a.background, a.changed
		a.mu.Unlock()

		if !bg {
			return true
		}
		select {
		case <-changed:
		case <-stop:
			return false
		case <-ctx.Done():
			return false
		}
	}
}

func (a *AppState) set(mutate func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	mutate()
	close(a.changed)
	a.changed = make(chan struct{})
}
