package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrescamacho/placement-go/internal/adapters/metrics"
	"github.com/andrescamacho/placement-go/internal/application/logging"
	"github.com/andrescamacho/placement-go/internal/application/mediator"
	placementapp "github.com/andrescamacho/placement-go/internal/application/placement"
	"github.com/andrescamacho/placement-go/internal/domain/placement"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
)

// PlaceUnitsCommand places held units into a destination region
type PlaceUnitsCommand struct {
	UnitIDs     []string `validate:"required,min=1,unique,dive,required"`
	Destination string   `validate:"required"`
}

// PlaceUnitsResponse reports whether the placement was committed
type PlaceUnitsResponse struct {
	Accepted       bool
	Step           string
	Reason         string
	Placed         int
	PlacementsMade int
}

// IsAccepted reports whether the rules allowed the placement
func (r *PlaceUnitsResponse) IsAccepted() bool { return r.Accepted }

// PlaceUnitsHandler handles the PlaceUnits command
type PlaceUnitsHandler struct {
	session *placementapp.Session
}

// NewPlaceUnitsHandler creates a new PlaceUnitsHandler
func NewPlaceUnitsHandler(session *placementapp.Session) *PlaceUnitsHandler {
	return &PlaceUnitsHandler{session: session}
}

// Handle executes the PlaceUnits command
func (h *PlaceUnitsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*PlaceUnitsCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *PlaceUnitsCommand")
	}
	if err := validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("invalid place units command: %w", err)
	}

	logger := logging.LoggerFromContext(ctx)
	player := h.session.Player().Value()

	units, err := h.session.ResolveUnits(cmd.UnitIDs)
	if err != nil {
		return nil, err
	}

	var made int
	err = h.session.Do(ctx, func(e *placement.Engine) error {
		if err := e.Place(ctx, units, cmd.Destination); err != nil {
			return err
		}
		made = e.PlacementsMade()
		return nil
	})

	var rejected *placement.RejectedError
	if errors.As(err, &rejected) {
		metrics.RecordRejection(player, rejected.Step)
		logger.Log("INFO", fmt.Sprintf("[Placement] %s rejected in %s: %s", unit.Describe(units), cmd.Destination, rejected.Reason), map[string]interface{}{
			"player": player,
			"step":   rejected.Step,
		})
		return &PlaceUnitsResponse{Step: rejected.Step, Reason: rejected.Reason}, nil
	}
	if err != nil {
		logger.Log("ERROR", fmt.Sprintf("[Placement] Failed to place units in %s: %v", cmd.Destination, err), nil)
		return nil, fmt.Errorf("failed to place units: %w", err)
	}

	metrics.RecordPlacement(player, cmd.Destination, len(units), made)
	logger.Log("INFO", fmt.Sprintf("[Placement] %s placed in %s", unit.Describe(units), cmd.Destination), map[string]interface{}{
		"player":          player,
		"placements_made": made,
	})

	return &PlaceUnitsResponse{
		Accepted:       true,
		Placed:         len(units),
		PlacementsMade: made,
	}, nil
}
