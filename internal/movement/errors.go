// Package movement implements the movement rules: classification of a
// traversal between two locations, tick/energy costing, validation,
// orchestration of instant and scheduled moves, and arrival processing.
package movement

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound marks a missing unit, lane, system, or planet. Callers wrap
// it with context: fmt.Errorf("unit %d: %w", id, ErrNotFound).
var ErrNotFound = errors.New("not found")

// ValidationError is a rejected move: a human-readable reason, no mutation
// performed. Always recoverable by retrying with different input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// rejectf builds a ValidationError.
func rejectf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// InsufficientEnergyError is an energy shortfall: no mutation performed.
type InsufficientEnergyError struct {
	Required  int
	Available int
}

func (e *InsufficientEnergyError) Error() string {
	return fmt.Sprintf("insufficient energy: need %d, have %d (short %d)",
		e.Required, e.Available, e.Required-e.Available)
}

// PersistenceError is a store write that failed after side effects may have
// landed (the at-least-charged gap). The correlation ID ties the generic
// caller-facing message to the detailed system log entry.
type PersistenceError struct {
	Op            string
	CorrelationID uuid.UUID
	Err           error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("internal error during %s (ref %s)", e.Op, e.CorrelationID)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
