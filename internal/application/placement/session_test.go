package placement_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	placementapp "github.com/andrescamacho/placement-go/internal/application/placement"
	"github.com/andrescamacho/placement-go/internal/domain/board"
	"github.com/andrescamacho/placement-go/internal/domain/history"
	"github.com/andrescamacho/placement-go/internal/domain/placement"
	"github.com/andrescamacho/placement-go/internal/domain/rules"
	"github.com/andrescamacho/placement-go/internal/domain/shared"
	"github.com/andrescamacho/placement-go/test/helpers"
)

var germany = shared.MustNewPlayerID("Germany")

func germanyBoard(t *testing.T) (*board.Board, *rules.Config) {
	t.Helper()
	b, cfg, err := helpers.NewBoardBuilder().
		Land("Germany", "Germany", 3).
		Put("Germany", "factory", 1, "Germany").
		Hold("infantry", 4, "Germany").
		Build()
	require.NoError(t, err)
	return b, cfg
}

func TestSession_DoPersistsEventsAndSnapshot(t *testing.T) {
	// Arrange
	b, cfg := germanyBoard(t)
	events := helpers.NewMockEventRepository()
	snapshots := helpers.NewMockSnapshotRepository()
	s, err := placementapp.NewSession(context.Background(), b, cfg, germany,
		placementapp.WithEventRepository(events),
		placementapp.WithSnapshotRepository(snapshots))
	require.NoError(t, err)
	units, err := s.ResolveUnits(helpers.HeldIDs(b, "Germany")[:2])
	require.NoError(t, err)

	// Act
	err = s.Do(context.Background(), func(e *placement.Engine) error {
		return e.Place(context.Background(), units, "Germany")
	})

	// Assert
	require.NoError(t, err)
	saved := events.All()
	require.Len(t, saved, 1)
	assert.Equal(t, history.EventTypePlacement, saved[0].Type())
	assert.Equal(t, "2 infantry placed in Germany", saved[0].Description())
	assert.True(t, snapshots.Has("Germany"))
}

func TestSession_RejectionIsReturnedUnwrapped(t *testing.T) {
	// Arrange
	b, cfg := germanyBoard(t)
	events := helpers.NewMockEventRepository()
	s, err := placementapp.NewSession(context.Background(), b, cfg, germany, placementapp.WithEventRepository(events))
	require.NoError(t, err)
	units, err := s.ResolveUnits(helpers.HeldIDs(b, "Germany"))
	require.NoError(t, err)

	// Act
	err = s.Do(context.Background(), func(e *placement.Engine) error {
		return e.Place(context.Background(), units, "Germany")
	})

	// Assert
	var rejected *placement.RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, "Cannot place 4 more units in Germany", rejected.Reason)
	assert.Empty(t, events.All())
}

func TestSession_ResumesFromSnapshot(t *testing.T) {
	// Arrange
	b, cfg := germanyBoard(t)
	snapshots := helpers.NewMockSnapshotRepository()
	first, err := placementapp.NewSession(context.Background(), b, cfg, germany, placementapp.WithSnapshotRepository(snapshots))
	require.NoError(t, err)
	units, err := first.ResolveUnits(helpers.HeldIDs(b, "Germany")[:2])
	require.NoError(t, err)
	require.NoError(t, first.Do(context.Background(), func(e *placement.Engine) error {
		return e.Place(context.Background(), units, "Germany")
	}))

	// Act
	resumed, err := placementapp.NewSession(context.Background(), b, cfg, germany, placementapp.WithSnapshotRepository(snapshots))
	require.NoError(t, err)

	// Assert
	var made int
	var produced int
	require.NoError(t, resumed.View(func(e *placement.Engine) error {
		made = e.PlacementsMade()
		produced = len(e.State().Produced("Germany"))
		return nil
	}))
	assert.Equal(t, 1, made)
	assert.Equal(t, 2, produced)
}

func TestSession_ReplaysSavedStepOntoStartOfStepBoard(t *testing.T) {
	// Arrange
	b, cfg := germanyBoard(t)
	snapshots := helpers.NewMockSnapshotRepository()
	first, err := placementapp.NewSession(context.Background(), b, cfg, germany, placementapp.WithSnapshotRepository(snapshots))
	require.NoError(t, err)
	units, err := first.ResolveUnits(helpers.HeldIDs(b, "Germany")[:2])
	require.NoError(t, err)
	require.NoError(t, first.Do(context.Background(), func(e *placement.Engine) error {
		return e.Place(context.Background(), units, "Germany")
	}))
	fresh, freshCfg := germanyBoard(t)

	// Act
	resumed, err := placementapp.NewSession(context.Background(), fresh, freshCfg, germany,
		placementapp.WithSnapshotRepository(snapshots), placementapp.WithReplay())

	// Assert
	require.NoError(t, err)
	assert.Len(t, fresh.Held(germany), 2)
	region, err := fresh.Region("Germany")
	require.NoError(t, err)
	assert.Len(t, region.Units, 3)
	require.NoError(t, resumed.Do(context.Background(), func(e *placement.Engine) error {
		return e.Undo(0)
	}))
	assert.Len(t, fresh.Held(germany), 4)
	assert.False(t, snapshots.Has("Germany"))
}

func TestSession_UndoingLastPlacementClearsSnapshot(t *testing.T) {
	// Arrange
	b, cfg := germanyBoard(t)
	snapshots := helpers.NewMockSnapshotRepository()
	s, err := placementapp.NewSession(context.Background(), b, cfg, germany, placementapp.WithSnapshotRepository(snapshots))
	require.NoError(t, err)
	units, err := s.ResolveUnits(helpers.HeldIDs(b, "Germany")[:1])
	require.NoError(t, err)
	require.NoError(t, s.Do(context.Background(), func(e *placement.Engine) error {
		return e.Place(context.Background(), units, "Germany")
	}))
	require.True(t, snapshots.Has("Germany"))

	// Act
	err = s.Do(context.Background(), func(e *placement.Engine) error { return e.Undo(0) })

	// Assert
	require.NoError(t, err)
	assert.False(t, snapshots.Has("Germany"))
	assert.Len(t, b.Held(germany), 4)
}

func TestSession_FlushFailureIsReported(t *testing.T) {
	// Arrange
	b, cfg := germanyBoard(t)
	events := helpers.NewMockEventRepository()
	events.SaveErr = errors.New("disk full")
	s, err := placementapp.NewSession(context.Background(), b, cfg, germany, placementapp.WithEventRepository(events))
	require.NoError(t, err)
	units, err := s.ResolveUnits(helpers.HeldIDs(b, "Germany")[:1])
	require.NoError(t, err)

	// Act
	err = s.Do(context.Background(), func(e *placement.Engine) error {
		return e.Place(context.Background(), units, "Germany")
	})

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestSession_ResolveUnknownUnit(t *testing.T) {
	// Arrange
	b, cfg := germanyBoard(t)
	s, err := placementapp.NewSession(context.Background(), b, cfg, germany)
	require.NoError(t, err)

	// Act
	_, err = s.ResolveUnits([]string{"nope"})

	// Assert
	assert.Error(t, err)
}
