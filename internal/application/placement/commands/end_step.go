package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/placement-go/internal/adapters/metrics"
	"github.com/andrescamacho/placement-go/internal/application/logging"
	"github.com/andrescamacho/placement-go/internal/application/mediator"
	placementapp "github.com/andrescamacho/placement-go/internal/application/placement"
	"github.com/andrescamacho/placement-go/internal/domain/placement"
)

// EndStepCommand closes the player's placement step
type EndStepCommand struct{}

// EndStepResponse reports what happened to units left unplaced
type EndStepResponse struct {
	Placements int
	Unplaced   int
	Discarded  int
}

// EndStepHandler handles the EndStep command
type EndStepHandler struct {
	session *placementapp.Session
}

// NewEndStepHandler creates a new EndStepHandler
func NewEndStepHandler(session *placementapp.Session) *EndStepHandler {
	return &EndStepHandler{session: session}
}

// Handle executes the EndStep command
func (h *EndStepHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*EndStepCommand); !ok {
		return nil, fmt.Errorf("invalid request type: expected *EndStepCommand")
	}

	logger := logging.LoggerFromContext(ctx)
	player := h.session.Player()

	resp := &EndStepResponse{}
	err := h.session.Do(ctx, func(e *placement.Engine) error {
		resp.Placements = e.PlacementsMade()
		resp.Unplaced = len(e.Board().Held(player))
		if err := e.EndOfStep(); err != nil {
			return err
		}
		resp.Discarded = resp.Unplaced - len(e.Board().Held(player))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to end placement step: %w", err)
	}

	metrics.RecordEndOfStep(player.Value(), resp.Discarded)
	logger.Log("INFO", fmt.Sprintf("[Placement] Step ended after %d placements, %d units discarded", resp.Placements, resp.Discarded), map[string]interface{}{
		"player": player.Value(),
	})

	return resp, nil
}
