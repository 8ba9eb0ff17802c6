package surface

import (
	"errors"
	"fmt"
)

// Configuration errors returned by New and Build.
var (
	// ErrParameterBounds indicates a parameter outside its valid range.
	ErrParameterBounds = errors.New("surface: parameter out of valid bounds")

	// ErrUnknownStrategy indicates a growth strategy name with no factory.
	ErrUnknownStrategy = errors.New("surface: unknown growth strategy")

	// ErrDimension indicates a strategy or boundary used in a dimension it
	// does not support.
	ErrDimension = errors.New("surface: unsupported dimension")

	// ErrInvariant is wrapped by every InvariantError.
	ErrInvariant = errors.New("surface: invariant violated")
)

// InvariantError is the panic value raised when the simulation state breaks
// an invariant: a grid index out of range, a corrupt topology or a failed
// re-triangulation. These are programming errors and are not recovered.
type InvariantError struct {
	Step    int
	Op      string
	Wrapped error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("step %d: %s: %v", e.Step, e.Op, e.Wrapped)
}

func (e *InvariantError) Unwrap() []error {
	return []error{ErrInvariant, e.Wrapped}
}

func (s *Simulation[V]) fail(op string, err error) {
	panic(&InvariantError{Step: s.step, Op: op, Wrapped: err})
}
