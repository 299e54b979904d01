package dynamo

import (
	"errors"
	"fmt"
)

// Integration failures, reported through Result.Err.
var (
	// ErrMaxSteps indicates the step cap was hit before the final time.
	ErrMaxSteps = errors.New("dynamo: maximum number of steps reached")

	// ErrStepTooSmall indicates the adaptive step no longer advances time.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrInvalidState indicates a state or derivative with NaN or Inf values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrInvalidProblem indicates inconsistent inputs (time span, step size, sample times).
	ErrInvalidProblem = errors.New("dynamo: invalid problem definition")

	// ErrDimensionMismatch indicates the vector field returned a vector of the wrong length.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and vector field")
)

// IntegrationError wraps a failure with the step, time and last good state.
type IntegrationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("step %d (t=%.6g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *IntegrationError) Unwrap() error {
	return e.Wrapped
}
