package voice

import (
	"context"
)

// PlaybackLock allows at most one playback or speech synthesis in flight.
// Waiters block on a single-slot channel instead of spinning.
type PlaybackLock struct {
	slot chan struct{}
}

// NewPlaybackLock creates an unlocked PlaybackLock.
func NewPlaybackLock() *PlaybackLock {
	return &PlaybackLock{slot: make(chan struct{}, 1)}
}

// Acquire blocks until the lock is free or ctx is done.
func (l *PlaybackLock) Acquire(ctx context.Context) error {
	select {
	case l.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees the lock. Releasing an unlocked lock is a no-op.
func (l *PlaybackLock) Release() {
	select {
	case <-l.slot:
	default:
	}
}

// Busy reports whether a playback is in flight.
func (l *PlaybackLock) Busy() bool {
	return len(l.slot) == 1
}

// WaitIdle blocks until no playback is in flight or ctx is done.
func (l *PlaybackLock) WaitIdle(ctx context.Context) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	l.Release()
	return nil
}
