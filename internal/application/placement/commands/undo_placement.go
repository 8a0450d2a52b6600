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
)

// UndoPlacementCommand reverts one placement of the current step
type UndoPlacementCommand struct {
	Index int `validate:"min=0"`
}

// UndoPlacementResponse reports the result of an undo
type UndoPlacementResponse struct {
	Undone         bool
	Reason         string
	PlacementsMade int
}

// IsAccepted reports whether a placement was undone
func (r *UndoPlacementResponse) IsAccepted() bool { return r.Undone }

// UndoPlacementHandler handles the UndoPlacement command
type UndoPlacementHandler struct {
	session *placementapp.Session
}

// NewUndoPlacementHandler creates a new UndoPlacementHandler
func NewUndoPlacementHandler(session *placementapp.Session) *UndoPlacementHandler {
	return &UndoPlacementHandler{session: session}
}

// Handle executes the UndoPlacement command
func (h *UndoPlacementHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*UndoPlacementCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *UndoPlacementCommand")
	}
	if err := validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("invalid undo command: %w", err)
	}

	logger := logging.LoggerFromContext(ctx)
	player := h.session.Player().Value()

	var made int
	err := h.session.Do(ctx, func(e *placement.Engine) error {
		if err := e.Undo(cmd.Index); err != nil {
			return err
		}
		made = e.PlacementsMade()
		return nil
	})

	var rejected *placement.RejectedError
	if errors.As(err, &rejected) {
		return &UndoPlacementResponse{Reason: rejected.Reason, PlacementsMade: made}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to undo placement %d: %w", cmd.Index, err)
	}

	metrics.RecordUndo(player, made)
	logger.Log("INFO", fmt.Sprintf("[Placement] Undid placement %d", cmd.Index), map[string]interface{}{"player": player})

	return &UndoPlacementResponse{Undone: true, PlacementsMade: made}, nil
}
