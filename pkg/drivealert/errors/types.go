package errors

import "fmt"

// Phase names the step of a reconciled marker removal.
type Phase string

// Removal phases, in execution order.
const (
	PhaseCalculator Phase = "calculator"
	PhaseSurface    Phase = "surface"
	PhaseRegistry   Phase = "registry"
)

// RemovalError reports a marker removal that failed part way.
// Compensated is true when completed phases were rolled back.
type RemovalError struct {
	Kind        string
	Lat, Lon    float64
	Phase       Phase
	Compensated bool
	Err         error
}

// Error implements the error interface.
func (e *RemovalError) Error() string {
	state := "not compensated"
	if e.Compensated {
		state = "compensated"
	}
	return fmt.Sprintf("remove %s marker (%f, %f): %s phase: %v (%s)",
		e.Kind, e.Lat, e.Lon, e.Phase, e.Err, state)
}

// Unwrap returns the underlying error.
func (e *RemovalError) Unwrap() error {
	return e.Err
}
