package history

import (
	"context"
	"time"

	"github.com/andrescamacho/placement-go/internal/domain/shared"
)

// Writer receives events as they are committed. It is append-only.
type Writer interface {
	Append(event *Event)
}

// EventRepository defines persistence operations for history events
type EventRepository interface {
	// Save persists events in order
	Save(ctx context.Context, events []*Event) error

	// FindByID retrieves an event by its ID
	FindByID(ctx context.Context, id EventID, player shared.PlayerID) (*Event, error)

	// FindByPlayer retrieves events for a player with optional filtering
	FindByPlayer(ctx context.Context, player shared.PlayerID, opts QueryOptions) ([]*Event, error)

	// CountByPlayer returns the count of events matching the criteria
	CountByPlayer(ctx context.Context, player shared.PlayerID, opts QueryOptions) (int, error)
}

// QueryOptions defines filtering and pagination options for history queries
type QueryOptions struct {
	StartDate *time.Time
	EndDate   *time.Time

	EventType *EventType
	Region    *string

	Limit  int
	Offset int

	OrderBy string // "timestamp ASC" or "timestamp DESC" (default DESC)
}

// DefaultQueryOptions returns default query options
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{
		Limit:   50,
		Offset:  0,
		OrderBy: "timestamp DESC",
	}
}
