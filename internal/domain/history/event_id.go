package history

import (
	"fmt"

	"github.com/google/uuid"
)

// EventID is a value object representing a history event's unique identifier
type EventID struct {
	value string
}

// NewEventID creates a new EventID with a generated UUID
func NewEventID() EventID {
	return EventID{value: uuid.New().String()}
}

// NewEventIDFromString creates an EventID from an existing UUID string
func NewEventIDFromString(id string) (EventID, error) {
	if id == "" {
		return EventID{}, fmt.Errorf("event_id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return EventID{}, fmt.Errorf("invalid event_id format: %w", err)
	}
	return EventID{value: id}, nil
}

// MustNewEventIDFromString creates an EventID from a string, panicking if invalid
// Use this only when you're certain the ID is valid (e.g., from database)
func MustNewEventIDFromString(id string) EventID {
	eid, err := NewEventIDFromString(id)
	if err != nil {
		panic(err)
	}
	return eid
}

func (e EventID) Value() string {
	return e.value
}

func (e EventID) String() string {
	return e.value
}

func (e EventID) Equals(other EventID) bool {
	return e.value == other.value
}

func (e EventID) IsZero() bool {
	return e.value == ""
}
