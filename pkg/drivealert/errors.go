package drivealert

import "errors"

// Sentinel errors for pipeline construction and lifecycle.
var (
	// ErrNilSurface indicates NewPipeline was called without a map surface.
	ErrNilSurface = errors.New("map surface cannot be nil")

	// ErrAlreadyRunning indicates Run was called twice.
	ErrAlreadyRunning = errors.New("pipeline already running")

	// ErrNotRunning indicates Shutdown was called before Run.
	ErrNotRunning = errors.New("pipeline not running")
)
