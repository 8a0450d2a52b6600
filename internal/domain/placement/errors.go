package placement

import "fmt"

// RejectedError is returned when a placement fails validation.
// Reason is shown to the player unchanged.
type RejectedError struct {
	Step   string
	Reason string
}

func (e *RejectedError) Error() string {
	return e.Reason
}

// InvariantViolationError means the engine found its own state inconsistent.
// The command that raised it has been rolled back and must not be retried.
type InvariantViolationError struct {
	Operation string
	Detail    string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("placement invariant violated in %s: %s", e.Operation, e.Detail)
}

func invariant(op, format string, args ...interface{}) *InvariantViolationError {
	return &InvariantViolationError{Operation: op, Detail: fmt.Sprintf(format, args...)}
}
