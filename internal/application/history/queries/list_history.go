package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/placement-go/internal/application/mediator"
	"github.com/andrescamacho/placement-go/internal/domain/history"
	"github.com/andrescamacho/placement-go/internal/domain/shared"
)

// ListHistoryQuery represents a query to retrieve history events of a player
type ListHistoryQuery struct {
	Player    string
	StartDate *time.Time
	EndDate   *time.Time
	EventType *string
	Region    *string
	Limit     int
	Offset    int
	OrderBy   string
}

// ListHistoryResponse represents the result of the query
type ListHistoryResponse struct {
	Events []*EventDTO
	Total  int
}

// EventDTO represents a history event data transfer object
type EventDTO struct {
	ID          string
	Player      string
	Timestamp   time.Time
	Type        string
	Region      string
	Description string
	UnitIDs     []string
	ParentID    string
}

// ListHistoryHandler handles the ListHistory query
type ListHistoryHandler struct {
	eventRepo history.EventRepository
}

// NewListHistoryHandler creates a new ListHistoryHandler
func NewListHistoryHandler(eventRepo history.EventRepository) *ListHistoryHandler {
	return &ListHistoryHandler{eventRepo: eventRepo}
}

// Handle executes the ListHistory query
func (h *ListHistoryHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListHistoryQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListHistoryQuery")
	}

	player, err := shared.NewPlayerID(query.Player)
	if err != nil {
		return nil, err
	}

	opts, err := h.buildQueryOptions(query)
	if err != nil {
		return nil, err
	}

	events, err := h.eventRepo.FindByPlayer(ctx, player, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}

	total, err := h.eventRepo.CountByPlayer(ctx, player, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to count history: %w", err)
	}

	dtos := make([]*EventDTO, len(events))
	for i, e := range events {
		dtos[i] = toDTO(e)
	}

	return &ListHistoryResponse{
		Events: dtos,
		Total:  total,
	}, nil
}

func (h *ListHistoryHandler) buildQueryOptions(query *ListHistoryQuery) (history.QueryOptions, error) {
	opts := history.DefaultQueryOptions()

	opts.StartDate = query.StartDate
	opts.EndDate = query.EndDate

	if query.EventType != nil {
		t, err := history.ParseEventType(*query.EventType)
		if err != nil {
			return opts, err
		}
		opts.EventType = &t
	}
	if query.Region != nil {
		opts.Region = query.Region
	}

	// Pagination
	if query.Limit > 0 {
		opts.Limit = query.Limit
	}
	opts.Offset = query.Offset

	if query.OrderBy != "" {
		opts.OrderBy = query.OrderBy
	}

	return opts, nil
}

func toDTO(e *history.Event) *EventDTO {
	dto := &EventDTO{
		ID:          e.ID().String(),
		Player:      e.Player().Value(),
		Timestamp:   e.Timestamp(),
		Type:        e.Type().String(),
		Region:      e.Region(),
		Description: e.Description(),
		UnitIDs:     e.UnitIDs(),
	}
	if parent := e.ParentID(); parent != nil {
		dto.ParentID = parent.String()
	}
	return dto
}
