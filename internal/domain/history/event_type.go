package history

import "fmt"

// EventType classifies a history event
type EventType string

const (
	// EventTypePlacement is written when units are placed from the held pool
	EventTypePlacement EventType = "PLACEMENT"

	// EventTypeConsumption is written when placed units upgrade or consume units already on the map
	EventTypeConsumption EventType = "CONSUMPTION"

	// EventTypeAirRelocation is written when existing fighters move onto new carriers
	EventTypeAirRelocation EventType = "AIR_RELOCATION"

	// EventTypeUnplacedDiscard is written when held units are discarded at end of step
	EventTypeUnplacedDiscard EventType = "UNPLACED_DISCARD"

	// EventTypeUndo is written when a placement is undone
	EventTypeUndo EventType = "UNDO"
)

// AllEventTypes returns all valid event types
func AllEventTypes() []EventType {
	return []EventType{
		EventTypePlacement,
		EventTypeConsumption,
		EventTypeAirRelocation,
		EventTypeUnplacedDiscard,
		EventTypeUndo,
	}
}

func (t EventType) String() string {
	return string(t)
}

// IsValid checks if the event type is valid
func (t EventType) IsValid() bool {
	switch t {
	case EventTypePlacement,
		EventTypeConsumption,
		EventTypeAirRelocation,
		EventTypeUnplacedDiscard,
		EventTypeUndo:
		return true
	default:
		return false
	}
}

// ParseEventType parses a string into an EventType
func ParseEventType(s string) (EventType, error) {
	t := EventType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid event type: %s", s)
	}
	return t, nil
}
