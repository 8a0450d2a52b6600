package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/placement-go/internal/application/mediator"
	placementapp "github.com/andrescamacho/placement-go/internal/application/placement"
	"github.com/andrescamacho/placement-go/internal/domain/placement"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
)

// GetPlacementsMadeQuery lists the undo log of the current step
type GetPlacementsMadeQuery struct{}

// GetPlacementsMadeResponse carries the committed placements in index order
type GetPlacementsMadeResponse struct {
	Count    int
	Records  []*RecordDTO
	Produced map[string][]string
}

// RecordDTO represents one committed placement
type RecordDTO struct {
	ID          string
	Index       int
	Producer    string
	Destination string
	UnitIDs     []string
	Description string
	PlacedAt    time.Time
}

// GetPlacementsMadeHandler handles the GetPlacementsMade query
type GetPlacementsMadeHandler struct {
	session *placementapp.Session
}

// NewGetPlacementsMadeHandler creates a new GetPlacementsMadeHandler
func NewGetPlacementsMadeHandler(session *placementapp.Session) *GetPlacementsMadeHandler {
	return &GetPlacementsMadeHandler{session: session}
}

// Handle executes the GetPlacementsMade query
func (h *GetPlacementsMadeHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*GetPlacementsMadeQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetPlacementsMadeQuery")
	}

	resp := &GetPlacementsMadeResponse{Produced: make(map[string][]string)}
	_ = h.session.View(func(e *placement.Engine) error {
		records := e.Records()
		resp.Count = len(records)
		resp.Records = make([]*RecordDTO, len(records))
		for i, rec := range records {
			resp.Records[i] = toRecordDTO(rec)
		}
		for _, producer := range e.State().Producers() {
			resp.Produced[producer] = unit.IDs(e.State().Produced(producer))
		}
		return nil
	})

	return resp, nil
}

func toRecordDTO(rec *placement.Record) *RecordDTO {
	return &RecordDTO{
		ID:          rec.ID.String(),
		Index:       rec.Index,
		Producer:    rec.Producer,
		Destination: rec.Destination,
		UnitIDs:     unit.IDs(rec.Units),
		Description: rec.Description(),
		PlacedAt:    rec.PlacedAt,
	}
}
