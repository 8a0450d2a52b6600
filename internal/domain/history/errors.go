package history

import "fmt"

// ErrInvalidEvent represents validation errors for history events
type ErrInvalidEvent struct {
	Field  string
	Reason string
}

func (e *ErrInvalidEvent) Error() string {
	return fmt.Sprintf("invalid history event: %s - %s", e.Field, e.Reason)
}

// ErrEventNotFound represents errors when an event cannot be found
type ErrEventNotFound struct {
	ID     string
	Player string
}

func (e *ErrEventNotFound) Error() string {
	return fmt.Sprintf("history event not found: id=%s, player=%s", e.ID, e.Player)
}
