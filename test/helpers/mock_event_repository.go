package helpers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/andrescamacho/placement-go/internal/domain/history"
	"github.com/andrescamacho/placement-go/internal/domain/shared"
)

// MockEventRepository is an in-memory implementation of history.EventRepository for testing
type MockEventRepository struct {
	mu      sync.Mutex
	events  []*history.Event
	SaveErr error
}

// NewMockEventRepository creates a new mock event repository
func NewMockEventRepository() *MockEventRepository {
	return &MockEventRepository{}
}

// Save appends events in order
func (m *MockEventRepository) Save(ctx context.Context, events []*history.Event) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

// FindByID retrieves an event by its ID
func (m *MockEventRepository) FindByID(ctx context.Context, id history.EventID, player shared.PlayerID) (*history.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID().Equals(id) && e.Player().Equals(player) {
			return e, nil
		}
	}
	return nil, &history.ErrEventNotFound{ID: id.String(), Player: player.Value()}
}

// FindByPlayer retrieves events for a player with optional filtering
func (m *MockEventRepository) FindByPlayer(ctx context.Context, player shared.PlayerID, opts history.QueryOptions) ([]*history.Event, error) {
	filtered, err := m.filter(player, opts)
	if err != nil {
		return nil, err
	}
	if opts.Offset >= len(filtered) {
		return []*history.Event{}, nil
	}
	filtered = filtered[opts.Offset:]
	if opts.Limit > 0 && len(filtered) > opts.Limit {
		filtered = filtered[:opts.Limit]
	}
	return filtered, nil
}

// CountByPlayer returns the count of events matching the criteria
func (m *MockEventRepository) CountByPlayer(ctx context.Context, player shared.PlayerID, opts history.QueryOptions) (int, error) {
	filtered, err := m.filter(player, opts)
	if err != nil {
		return 0, err
	}
	return len(filtered), nil
}

// All returns every saved event in save order
func (m *MockEventRepository) All() []*history.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*history.Event{}, m.events...)
}

func (m *MockEventRepository) filter(player shared.PlayerID, opts history.QueryOptions) ([]*history.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*history.Event, 0)
	for _, e := range m.events {
		if !e.Player().Equals(player) {
			continue
		}
		if opts.EventType != nil && e.Type() != *opts.EventType {
			continue
		}
		if opts.Region != nil && e.Region() != *opts.Region {
			continue
		}
		if opts.StartDate != nil && e.Timestamp().Before(*opts.StartDate) {
			continue
		}
		if opts.EndDate != nil && e.Timestamp().After(*opts.EndDate) {
			continue
		}
		out = append(out, e)
	}

	switch opts.OrderBy {
	case "", "timestamp DESC":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp().After(out[j].Timestamp()) })
		// Save order breaks ties, newest first
		reverseTies(out)
	case "timestamp ASC":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp().Before(out[j].Timestamp()) })
	default:
		return nil, fmt.Errorf("unsupported order: %s", opts.OrderBy)
	}
	return out, nil
}

func reverseTies(events []*history.Event) {
	for start := 0; start < len(events); {
		end := start + 1
		for end < len(events) && events[end].Timestamp().Equal(events[start].Timestamp()) {
			end++
		}
		for i, j := start, end-1; i < j; i, j = i+1, j-1 {
			events[i], events[j] = events[j], events[i]
		}
		start = end
	}
}

var _ history.EventRepository = (*MockEventRepository)(nil)
