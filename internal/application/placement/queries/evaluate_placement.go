package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/placement-go/internal/application/mediator"
	placementapp "github.com/andrescamacho/placement-go/internal/application/placement"
	"github.com/andrescamacho/placement-go/internal/domain/placement"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
)

// EvaluatePlacementQuery runs the validation pipeline without placing anything
type EvaluatePlacementQuery struct {
	UnitIDs     []string
	Destination string
}

// EvaluatePlacementResponse is the outcome of the validation pipeline
type EvaluatePlacementResponse struct {
	Accepted bool
	Step     string
	Reason   string
	UnitIDs  []string
	Max      int
}

// IsAccepted reports whether the rules allowed the placement
func (r *EvaluatePlacementResponse) IsAccepted() bool { return r.Accepted }

// EvaluatePlacementHandler handles the EvaluatePlacement query
type EvaluatePlacementHandler struct {
	session *placementapp.Session
}

// NewEvaluatePlacementHandler creates a new EvaluatePlacementHandler
func NewEvaluatePlacementHandler(session *placementapp.Session) *EvaluatePlacementHandler {
	return &EvaluatePlacementHandler{session: session}
}

// Handle executes the EvaluatePlacement query
func (h *EvaluatePlacementHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*EvaluatePlacementQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *EvaluatePlacementQuery")
	}

	units, err := h.session.ResolveUnits(query.UnitIDs)
	if err != nil {
		return nil, err
	}

	var ev *placement.Evaluation
	err = h.session.View(func(e *placement.Engine) error {
		var err error
		ev, err = e.Evaluate(h.session.Player(), units, query.Destination)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate placement: %w", err)
	}

	return &EvaluatePlacementResponse{
		Accepted: ev.Accepted,
		Step:     ev.Step,
		Reason:   ev.Reason,
		UnitIDs:  unit.IDs(ev.Units),
		Max:      ev.Max.Int(),
	}, nil
}
