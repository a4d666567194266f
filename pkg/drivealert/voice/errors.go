package voice

import "errors"

// Sentinel errors for dispatch configuration problems.
var (
	// ErrNoPlayer is returned in static mode when no Player was configured.
	ErrNoPlayer = errors.New("voice: no player configured")

	// ErrNoSynthesizer is returned in NLU mode when no synthesizer is
	// available for the current platform.
	ErrNoSynthesizer = errors.New("voice: no synthesizer configured")
)
