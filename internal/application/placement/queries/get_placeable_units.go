package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/placement-go/internal/application/mediator"
	placementapp "github.com/andrescamacho/placement-go/internal/application/placement"
	"github.com/andrescamacho/placement-go/internal/domain/placement"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
)

// GetPlaceableUnitsQuery asks which of the given units a destination accepts
type GetPlaceableUnitsQuery struct {
	UnitIDs     []string
	Destination string
}

// GetPlaceableUnitsResponse lists the accepted units. Max is -1 when no cap applies.
type GetPlaceableUnitsResponse struct {
	UnitIDs []string
	Max     int
	Reason  string
}

// GetPlaceableUnitsHandler handles the GetPlaceableUnits query
type GetPlaceableUnitsHandler struct {
	session *placementapp.Session
}

// NewGetPlaceableUnitsHandler creates a new GetPlaceableUnitsHandler
func NewGetPlaceableUnitsHandler(session *placementapp.Session) *GetPlaceableUnitsHandler {
	return &GetPlaceableUnitsHandler{session: session}
}

// Handle executes the GetPlaceableUnits query
func (h *GetPlaceableUnitsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetPlaceableUnitsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetPlaceableUnitsQuery")
	}

	units, err := h.session.ResolveUnits(query.UnitIDs)
	if err != nil {
		return nil, err
	}

	var result *placement.Placeable
	err = h.session.View(func(e *placement.Engine) error {
		var err error
		result, err = e.PlaceableUnits(units, query.Destination)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compute placeable units: %w", err)
	}

	return &GetPlaceableUnitsResponse{
		UnitIDs: unit.IDs(result.Units),
		Max:     result.Max.Int(),
		Reason:  result.Reason,
	}, nil
}
