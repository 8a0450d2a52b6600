package history

import (
	"fmt"
	"time"

	"github.com/andrescamacho/placement-go/internal/domain/shared"
)

// Event is an immutable entry of the game history written by the placement engine
type Event struct {
	id          EventID
	player      shared.PlayerID
	timestamp   time.Time
	eventType   EventType
	region      string
	description string
	unitIDs     []string
	parentID    *EventID
}

// NewEvent creates a new event with validation
func NewEvent(
	player shared.PlayerID,
	timestamp time.Time,
	eventType EventType,
	region string,
	description string,
	unitIDs []string,
) (*Event, error) {
	if player.IsZero() {
		return nil, &ErrInvalidEvent{Field: "player", Reason: "player cannot be neutral"}
	}
	if !eventType.IsValid() {
		return nil, &ErrInvalidEvent{Field: "event_type", Reason: fmt.Sprintf("invalid event type: %s", eventType)}
	}
	if description == "" {
		return nil, &ErrInvalidEvent{Field: "description", Reason: "description cannot be empty"}
	}
	if timestamp.IsZero() {
		return nil, &ErrInvalidEvent{Field: "timestamp", Reason: "timestamp cannot be zero"}
	}

	ids := make([]string, len(unitIDs))
	copy(ids, unitIDs)

	return &Event{
		id:          NewEventID(),
		player:      player,
		timestamp:   timestamp,
		eventType:   eventType,
		region:      region,
		description: description,
		unitIDs:     ids,
	}, nil
}

// ReconstructEvent reconstructs an event from persistence
// This bypasses validation and is used by the repository
func ReconstructEvent(
	id EventID,
	player shared.PlayerID,
	timestamp time.Time,
	eventType EventType,
	region string,
	description string,
	unitIDs []string,
	parentID *EventID,
) *Event {
	return &Event{
		id:          id,
		player:      player,
		timestamp:   timestamp,
		eventType:   eventType,
		region:      region,
		description: description,
		unitIDs:     unitIDs,
		parentID:    parentID,
	}
}

// AttachTo marks the event as a child of parent (e.g. fighters moved as part of a placement)
func (e *Event) AttachTo(parent *Event) {
	id := parent.id
	e.parentID = &id
}

func (e *Event) ID() EventID {
	return e.id
}

func (e *Event) Player() shared.PlayerID {
	return e.player
}

func (e *Event) Timestamp() time.Time {
	return e.timestamp
}

func (e *Event) Type() EventType {
	return e.eventType
}

func (e *Event) Region() string {
	return e.region
}

func (e *Event) Description() string {
	return e.description
}

func (e *Event) UnitIDs() []string {
	ids := make([]string, len(e.unitIDs))
	copy(ids, e.unitIDs)
	return ids
}

// ParentID returns the parent event id, or nil for top level events
func (e *Event) ParentID() *EventID {
	return e.parentID
}

func (e *Event) String() string {
	return fmt.Sprintf("Event[%s, type=%s, player=%s, %q]", e.id, e.eventType, e.player, e.description)
}
