// Package saga runs multi-step commands with compensation.
//
// A Saga is a sequence of steps where each step has a forward action and
// an optional compensation action. If any step fails, all previously
// completed steps are compensated in reverse order, each compensation
// receiving the output its forward action produced.
//
// drivealert uses it to keep the map marker registry and the calculator
// registry in step when a marker is removed: the calculator entry is removed
// first and restored if removing the marker from the map surface fails.
package saga

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Status represents the state of a saga execution.
type Status string

// Saga status constants.
const (
	StatusPending     Status = "pending"
	StatusRunning     Status = "running"
	StatusCompleted   Status = "completed"
	StatusCompensated Status = "compensated"
	StatusFailed      Status = "failed"
)

// StepHandler executes a saga step.
type StepHandler func(ctx context.Context, input any) (output any, err error)

// Step defines a single step in a saga.
type Step struct {
	// Name identifies this step.
	Name string

	// Handler executes the forward action.
	Handler StepHandler

	// Compensation executes the rollback action.
	// It receives the output from the forward Handler.
	Compensation StepHandler
}

// Definition defines a complete saga.
type Definition struct {
	// Name identifies this saga type.
	Name string

	// Steps are executed in order. Each step receives the previous output.
	Steps []Step
}

// Validate checks the saga definition for errors.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return errors.New("saga name is required")
	}
	if len(d.Steps) == 0 {
		return errors.New("saga must have at least one step")
	}
	for i, step := range d.Steps {
		if step.Name == "" {
			return fmt.Errorf("step %d: name is required", i)
		}
		if step.Handler == nil {
			return fmt.Errorf("step %d (%s): handler is required", i, step.Name)
		}
	}
	return nil
}

// StepExecution tracks a single step's execution.
type StepExecution struct {
	StepName string
	Status   Status
	Output   any
	Error    string
	Duration time.Duration
}

// Execution tracks the complete saga execution.
type Execution struct {
	ID              string
	SagaName        string
	Status          Status
	Output          any
	Error           string
	FailedStep      string
	Steps           []StepExecution
	CompensateError string
}

// Runner executes saga definitions synchronously on the caller's goroutine.
type Runner struct {
	logger *slog.Logger
}

// NewRunner creates a new saga runner.
func NewRunner() *Runner {
	return &Runner{logger: slog.Default()}
}

// WithLogger sets the logger for the runner.
func (r *Runner) WithLogger(logger *slog.Logger) *Runner {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// StepError reports the step that failed and whether compensation ran cleanly.
type StepError struct {
	Step        string
	Compensated bool
	Err         error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("saga step %s: %v", e.Step, e.Err)
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error {
	return e.Err
}

// Run executes every step of def in order. On failure the completed steps are
// compensated in reverse order and a *StepError is returned together with the
// execution record.
func (r *Runner) Run(ctx context.Context, def *Definition, input any) (*Execution, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	execution := &Execution{
		ID:       fmt.Sprintf("saga-%s", uuid.New().String()[:8]),
		SagaName: def.Name,
		Status:   StatusRunning,
		Steps:    make([]StepExecution, len(def.Steps)),
	}
	for i, step := range def.Steps {
		execution.Steps[i] = StepExecution{StepName: step.Name, Status: StatusPending}
	}

	current := input
	for i := range def.Steps {
		step := &def.Steps[i]
		stepExec := &execution.Steps[i]

		if err := ctx.Err(); err != nil {
			return execution, r.fail(ctx, def, execution, i, step.Name, err)
		}

		stepExec.Status = StatusRunning
		start := time.Now()
		output, err := step.Handler(ctx, current)
		stepExec.Duration = time.Since(start)

		if err != nil {
			stepExec.Status = StatusFailed
			stepExec.Error = err.Error()
			r.logger.Error("saga step failed",
				"saga_id", execution.ID,
				"saga_name", def.Name,
				"step", step.Name,
				"error", err,
			)
			return execution, r.fail(ctx, def, execution, i, step.Name, err)
		}

		stepExec.Status = StatusCompleted
		stepExec.Output = output
		current = output

		r.logger.Debug("saga step completed",
			"saga_id", execution.ID,
			"step", step.Name,
		)
	}

	execution.Status = StatusCompleted
	execution.Output = current
	return execution, nil
}

// fail compensates every step before failedIndex and builds the StepError.
func (r *Runner) fail(ctx context.Context, def *Definition, execution *Execution, failedIndex int, stepName string, cause error) error {
	execution.Error = cause.Error()
	execution.FailedStep = stepName

	var compensateErrors []string
	for i := failedIndex - 1; i >= 0; i-- {
		step := &def.Steps[i]
		stepExec := &execution.Steps[i]

		if stepExec.Status != StatusCompleted || step.Compensation == nil {
			continue
		}

		// Compensation must run even if ctx was cancelled mid-saga.
		if _, err := step.Compensation(context.WithoutCancel(ctx), stepExec.Output); err != nil {
			compensateErrors = append(compensateErrors, fmt.Sprintf("%s: %s", step.Name, err.Error()))
			r.logger.Error("saga compensation failed",
				"saga_id", execution.ID,
				"step", step.Name,
				"error", err,
			)
			continue
		}
		stepExec.Status = StatusCompensated
	}

	if len(compensateErrors) > 0 {
		execution.Status = StatusFailed
		execution.CompensateError = fmt.Sprintf("compensation errors: %v", compensateErrors)
	} else {
		execution.Status = StatusCompensated
	}

	r.logger.Info("saga compensation completed",
		"saga_id", execution.ID,
		"saga_name", def.Name,
		"status", execution.Status,
	)

	return &StepError{
		Step:        stepName,
		Compensated: len(compensateErrors) == 0,
		Err:         cause,
	}
}
