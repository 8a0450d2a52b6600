package commands_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/placement-go/internal/application/logging"
	"github.com/andrescamacho/placement-go/internal/application/mediator"
	placementapp "github.com/andrescamacho/placement-go/internal/application/placement"
	"github.com/andrescamacho/placement-go/internal/application/placement/commands"
	"github.com/andrescamacho/placement-go/internal/domain/board"
	"github.com/andrescamacho/placement-go/internal/domain/history"
	"github.com/andrescamacho/placement-go/internal/domain/placement"
	"github.com/andrescamacho/placement-go/internal/domain/shared"
	"github.com/andrescamacho/placement-go/test/helpers"
)

type fixture struct {
	board    *board.Board
	session  *placementapp.Session
	events   *helpers.MockEventRepository
	mediator mediator.Mediator
}

func newFixture(t *testing.T, unplacedLive bool) *fixture {
	t.Helper()
	b, cfg, err := helpers.NewBoardBuilder().
		Land("Germany", "Germany", 3).
		Put("Germany", "factory", 1, "Germany").
		Hold("infantry", 4, "Germany").
		Build()
	require.NoError(t, err)
	cfg.Properties.UnplacedUnitsLive = unplacedLive

	events := helpers.NewMockEventRepository()
	session, err := placementapp.NewSession(context.Background(), b, cfg, shared.MustNewPlayerID("Germany"),
		placementapp.WithEventRepository(events))
	require.NoError(t, err)

	m := mediator.NewMediator()
	require.NoError(t, mediator.RegisterHandler[*commands.PlaceUnitsCommand](m, commands.NewPlaceUnitsHandler(session)))
	require.NoError(t, mediator.RegisterHandler[*commands.UndoPlacementCommand](m, commands.NewUndoPlacementHandler(session)))
	require.NoError(t, mediator.RegisterHandler[*commands.EndStepCommand](m, commands.NewEndStepHandler(session)))

	return &fixture{board: b, session: session, events: events, mediator: m}
}

func (f *fixture) place(t *testing.T, ids []string, dest string) *commands.PlaceUnitsResponse {
	t.Helper()
	resp, err := f.mediator.Send(context.Background(), &commands.PlaceUnitsCommand{UnitIDs: ids, Destination: dest})
	require.NoError(t, err)
	return resp.(*commands.PlaceUnitsResponse)
}

func TestPlaceUnits_Accepted(t *testing.T) {
	// Arrange
	f := newFixture(t, true)
	ids := helpers.HeldIDs(f.board, "Germany")[:2]
	var logs bytes.Buffer
	ctx := logging.WithLogger(context.Background(), logging.NewSlogLogger(&logs, "info", "text", false))

	// Act
	resp, err := f.mediator.Send(ctx, &commands.PlaceUnitsCommand{UnitIDs: ids, Destination: "Germany"})

	// Assert
	require.NoError(t, err)
	placed := resp.(*commands.PlaceUnitsResponse)
	assert.True(t, placed.Accepted)
	assert.False(t, mediator.Rejected(placed))
	assert.Equal(t, 2, placed.Placed)
	assert.Equal(t, 1, placed.PlacementsMade)
	assert.Len(t, f.board.Held(f.session.Player()), 2)
	assert.Contains(t, logs.String(), "[Placement] 2 infantry placed in Germany")
}

func TestPlaceUnits_RejectionIsAResponse(t *testing.T) {
	// Arrange
	f := newFixture(t, true)
	ids := helpers.HeldIDs(f.board, "Germany")

	// Act
	resp := f.place(t, ids, "Germany")

	// Assert
	assert.False(t, resp.Accepted)
	assert.Equal(t, placement.StepProduction, resp.Step)
	assert.Equal(t, "Cannot place 4 more units in Germany", resp.Reason)
	assert.True(t, mediator.Rejected(resp))
	assert.Empty(t, f.events.All())
}

func TestPlaceUnits_Validation(t *testing.T) {
	tests := []struct {
		name string
		cmd  *commands.PlaceUnitsCommand
	}{
		{name: "no units", cmd: &commands.PlaceUnitsCommand{Destination: "Germany"}},
		{name: "blank unit id", cmd: &commands.PlaceUnitsCommand{UnitIDs: []string{""}, Destination: "Germany"}},
		{name: "no destination", cmd: &commands.PlaceUnitsCommand{UnitIDs: []string{"infantry-002"}}},
		{name: "unit listed twice", cmd: &commands.PlaceUnitsCommand{UnitIDs: []string{"infantry-002", "infantry-002"}, Destination: "Germany"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t, true)

			// Act
			_, err := f.mediator.Send(context.Background(), tt.cmd)

			// Assert
			assert.Error(t, err)
		})
	}
}

func TestPlaceUnits_UnknownDestinationIsAnError(t *testing.T) {
	// Arrange
	f := newFixture(t, true)

	// Act
	_, err := f.mediator.Send(context.Background(), &commands.PlaceUnitsCommand{
		UnitIDs:     helpers.HeldIDs(f.board, "Germany")[:1],
		Destination: "Atlantis",
	})

	// Assert
	assert.Error(t, err)
}

func TestUndoPlacement(t *testing.T) {
	// Arrange
	f := newFixture(t, true)
	held := helpers.HeldIDs(f.board, "Germany")
	f.place(t, held[:1], "Germany")
	f.place(t, held[1:2], "Germany")

	// Act
	resp, err := f.mediator.Send(context.Background(), &commands.UndoPlacementCommand{Index: 0})

	// Assert
	require.NoError(t, err)
	undone := resp.(*commands.UndoPlacementResponse)
	assert.True(t, undone.Undone)
	assert.Equal(t, 1, undone.PlacementsMade)
	events := f.events.All()
	require.Len(t, events, 3)
	assert.Equal(t, history.EventTypeUndo, events[2].Type())
}

func TestUndoPlacement_OutOfRange(t *testing.T) {
	// Arrange
	f := newFixture(t, true)

	// Act
	resp, err := f.mediator.Send(context.Background(), &commands.UndoPlacementCommand{Index: 3})

	// Assert
	require.NoError(t, err)
	undone := resp.(*commands.UndoPlacementResponse)
	assert.False(t, undone.Undone)
	assert.Equal(t, "No placement with index 3", undone.Reason)
	assert.True(t, mediator.Rejected(undone))
}

func TestEndStep_DiscardsWhenUnitsDoNotLive(t *testing.T) {
	// Arrange
	f := newFixture(t, false)
	f.place(t, helpers.HeldIDs(f.board, "Germany")[:1], "Germany")

	// Act
	resp, err := f.mediator.Send(context.Background(), &commands.EndStepCommand{})

	// Assert
	require.NoError(t, err)
	ended := resp.(*commands.EndStepResponse)
	assert.Equal(t, 1, ended.Placements)
	assert.Equal(t, 3, ended.Unplaced)
	assert.Equal(t, 3, ended.Discarded)
	assert.Empty(t, f.board.Held(f.session.Player()))
}

func TestEndStep_KeepsUnitsThatLive(t *testing.T) {
	// Arrange
	f := newFixture(t, true)

	// Act
	resp, err := f.mediator.Send(context.Background(), &commands.EndStepCommand{})

	// Assert
	require.NoError(t, err)
	ended := resp.(*commands.EndStepResponse)
	assert.Equal(t, 4, ended.Unplaced)
	assert.Zero(t, ended.Discarded)
}
