package refine

import (
	"errors"
	"fmt"
)

// ErrInvariant is matched (via errors.Is) by every error reporting a broken
// caller contract or corrupted topology: degenerate edges, non-adjacent
// edges passed to AngleBetween, coincident point insertion, malformed
// triangulation input. Such errors are never transient.
var ErrInvariant = errors.New("refine: invariant violation")

// InvariantError describes a programmatic-invariant violation.
type InvariantError struct {
	Op  string // operation that detected the violation
	Msg string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("refine: %s: %s", e.Op, e.Msg)
}

// Is makes errors.Is(err, ErrInvariant) report true.
func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariant
}

func invariantf(op, format string, args ...any) error {
	return &InvariantError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// mustInvariant panics for states that no sequence of exported calls can
// reach without corrupting the mesh by hand.
func mustInvariant(op, format string, args ...any) {
	panic(invariantf(op, format, args...))
}
