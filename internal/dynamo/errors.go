package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidConfiguration indicates a world or run was requested with
	// parameters that cannot produce a valid simulation (e.g. n <= 0).
	ErrInvalidConfiguration = errors.New("dynamo: invalid configuration")

	// ErrInvalidState indicates a body position or velocity became NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrOutOfBounds indicates a point outside the region covered by a spatial index.
	ErrOutOfBounds = errors.New("dynamo: position outside index bounds")

	// ErrUnknownBody indicates a body id that does not exist in the world.
	ErrUnknownBody = errors.New("dynamo: unknown body id")

	// ErrContextCanceled indicates the simulation was interrupted between steps.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")
)

// Invalidf wraps ErrInvalidConfiguration with a formatted reason.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

// SimError reports a failure detected after a step completed.
type SimError struct {
	Step    int
	Message string
	Wrapped error
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d: %s", e.Step, e.Message)
}

func (e SimError) Unwrap() error {
	return e.Wrapped
}
