package dynamo

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration marks a parameter, mode or controller name
	// that cannot be run.
	ErrInvalidConfiguration = errors.New("dynamo: invalid configuration")

	// ErrNotReset is returned by Step and Render before the first Reset.
	ErrNotReset = errors.New("dynamo: step called before reset")

	// ErrDimensionMismatch marks a state or control of the wrong length.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch")

	ErrContextCanceled = errors.New("dynamo: rollout canceled")
)

// SimulationError records the step index and state at which stepping
// failed.
type SimulationError struct {
	Step    int
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Wrapped)
}

func (e *SimulationError) Unwrap() error { return e.Wrapped }
