package placement_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/placement-go/internal/domain/board"
	"github.com/andrescamacho/placement-go/internal/domain/history"
	"github.com/andrescamacho/placement-go/internal/domain/placement"
	"github.com/andrescamacho/placement-go/internal/domain/rules"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
)

func snapshotUnits(b *board.Board) map[string][]*unit.Unit {
	out := make(map[string][]*unit.Unit)
	for _, r := range b.Regions() {
		out[r.Name] = unit.Copy(r.Units)
	}
	return out
}

func assertSameUnits(t *testing.T, before, after map[string][]*unit.Unit) {
	t.Helper()
	require.Len(t, after, len(before))
	for name, units := range before {
		assert.ElementsMatch(t, units, after[name], "region %s", name)
	}
}

func TestLaw_PlaceThenUndoRestoresState(t *testing.T) {
	tests := []struct {
		name        string
		destination string
		build       func(w *world) []*unit.Unit
	}{
		{
			name:        "land units into original factory",
			destination: "Germany",
			build: func(w *world) []*unit.Unit {
				return w.hold("infantry", 3, germany)
			},
		},
		{
			name:        "upgrade consuming units",
			destination: "Germany",
			build: func(w *world) []*unit.Unit {
				w.defineType("elite", unit.ClassLand, func(t *unit.Type) {
					t.ConsumesUnits = map[string]int{"infantry": 1}
				})
				w.put("Germany", "infantry", 1, germany)
				return w.hold("elite", 1, germany)
			},
		},
		{
			name:        "carrier picking up fighters",
			destination: "Baltic Sea",
			build: func(w *world) []*unit.Unit {
				w.rules.Properties.MoveExistingFightersToNewCarriers = true
				w.put("Germany", "fighter", 2, germany)
				return w.hold("carrier", 1, germany)
			},
		},
		{
			name:        "factory changes original owner",
			destination: "Poland",
			build: func(w *world) []*unit.Unit {
				units := w.hold("factory", 1, germany)
				units[0].OriginalOwner = russia
				return units
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			w := newWorld(t)
			w.land("Germany", germany, 10)
			w.factory("Germany", germany, true)
			w.land("Poland", germany, 2)
			w.sea("Baltic Sea")
			w.connect("Germany", "Baltic Sea")
			units := tt.build(w)
			e := w.engine()

			regionsBefore := snapshotUnits(w.board)
			heldBefore := w.board.Held(germany)
			owners := make(map[*unit.Unit]string)
			for _, u := range units {
				owners[u] = u.OriginalOwner.Value()
			}

			// Act
			require.NoError(t, e.Place(context.Background(), units, tt.destination))
			require.NoError(t, e.Undo(e.PlacementsMade()-1))

			// Assert
			assertSameUnits(t, regionsBefore, snapshotUnits(w.board))
			assert.ElementsMatch(t, heldBefore, w.board.Held(germany))
			assert.Empty(t, e.State().Producers())
			assert.Equal(t, 0, e.PlacementsMade())
			for _, u := range units {
				assert.Equal(t, owners[u], u.OriginalOwner.Value())
			}
		})
	}
}

func TestLaw_UndoPutsBackHandedOffPlacement(t *testing.T) {
	// Arrange
	w := newWorld(t)
	w.land("Western Germany", germany, 3)
	w.factory("Western Germany", germany, false)
	w.land("Denmark", germany, 2)
	w.factory("Denmark", germany, false)
	w.sea("North Sea")
	w.sea("Baltic Sea")
	w.connect("Western Germany", "North Sea")
	w.connect("Western Germany", "Baltic Sea")
	w.connect("Denmark", "North Sea")
	w.connect("Denmark", "Baltic Sea")
	first := w.hold("transport", 2, germany)
	second := w.hold("transport", 3, germany)
	e := w.engine()
	require.NoError(t, e.Place(context.Background(), first, "North Sea"))
	firstID := e.Records()[0].ID
	regionsBefore := snapshotUnits(w.board)
	heldBefore := w.board.Held(germany)
	require.NoError(t, e.Place(context.Background(), second, "Baltic Sea"))
	require.Equal(t, "Denmark", e.Records()[0].Producer)

	// Act
	require.NoError(t, e.Undo(e.PlacementsMade()-1))

	// Assert
	records := e.Records()
	require.Len(t, records, 1)
	assert.Equal(t, firstID, records[0].ID)
	assert.Equal(t, "Western Germany", records[0].Producer)
	assert.ElementsMatch(t, first, e.State().Produced("Western Germany"))
	assert.Empty(t, e.State().Produced("Denmark"))
	assertSameUnits(t, regionsBefore, snapshotUnits(w.board))
	assert.ElementsMatch(t, heldBefore, w.board.Held(germany))
}

func TestLaw_UndoRejoinsSplitPlacement(t *testing.T) {
	// Arrange
	w := twoYards(t)
	first := w.hold("transport", 3, germany)
	second := w.hold("transport", 2, germany)
	e := w.engine()
	require.NoError(t, e.Place(context.Background(), first, "North Sea"))
	firstID := e.Records()[0].ID
	regionsBefore := snapshotUnits(w.board)
	heldBefore := w.board.Held(germany)
	require.NoError(t, e.Place(context.Background(), second, "Baltic Sea"))
	require.Equal(t, 3, e.PlacementsMade())

	// Act
	require.NoError(t, e.Undo(2))

	// Assert
	records := e.Records()
	require.Len(t, records, 1)
	assert.Equal(t, firstID, records[0].ID)
	assert.Equal(t, 0, records[0].Index)
	assert.Equal(t, "Western Germany", records[0].Producer)
	assert.ElementsMatch(t, first, records[0].Units)
	assert.ElementsMatch(t, first, e.State().Produced("Western Germany"))
	assert.Empty(t, e.State().Produced("Denmark"))
	assert.Equal(t, 3, w.count("North Sea", "transport"))
	assert.Equal(t, 0, w.count("Baltic Sea", "transport"))
	assertSameUnits(t, regionsBefore, snapshotUnits(w.board))
	assert.ElementsMatch(t, heldBefore, w.board.Held(germany))

	// Act - the rejoined record undoes like any other
	require.NoError(t, e.Undo(0))

	// Assert
	assert.Equal(t, 0, e.PlacementsMade())
	assert.Empty(t, e.State().Producers())
	assert.Equal(t, 0, w.count("North Sea", "transport"))
}

func TestLaw_UndoLeavesReallocationWhenPartsWereUndone(t *testing.T) {
	// Arrange
	w := twoYards(t)
	first := w.hold("transport", 3, germany)
	second := w.hold("transport", 2, germany)
	e := w.engine()
	require.NoError(t, e.Place(context.Background(), first, "North Sea"))
	require.NoError(t, e.Place(context.Background(), second, "Baltic Sea"))
	require.NoError(t, e.Undo(0))

	// Act
	require.NoError(t, e.Undo(e.PlacementsMade()-1))

	// Assert
	records := e.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "Western Germany", records[0].Producer)
	assert.Len(t, records[0].Units, 1)
	assert.Empty(t, e.State().Produced("Denmark"))
	assert.Equal(t, 1, w.count("North Sea", "transport"))
	assert.Equal(t, 0, w.count("Baltic Sea", "transport"))
}

func TestLaw_PlacedUnitsComeFromHeldPool(t *testing.T) {
	// Arrange
	w := newWorld(t)
	w.land("Germany", germany, 10)
	w.factory("Germany", germany, true)
	w.sea("Baltic Sea")
	w.connect("Germany", "Baltic Sea")
	infantry := w.hold("infantry", 3, germany)
	transports := w.hold("transport", 2, germany)
	e := w.engine()

	requests := []struct {
		units []*unit.Unit
		to    string
	}{
		{infantry[:2], "Germany"},
		{transports, "Baltic Sea"},
		{infantry[2:], "Germany"},
	}

	for _, req := range requests {
		heldBefore := w.board.Held(germany)

		// Act
		require.NoError(t, e.Place(context.Background(), req.units, req.to))

		// Assert
		records := e.Records()
		last := records[len(records)-1]
		assert.True(t, unit.ContainsAll(heldBefore, last.Units))
		assert.ElementsMatch(t, req.units, last.Units)
	}
}

func TestLaw_UnlimitedOnlyForOwnedOriginalFactories(t *testing.T) {
	tests := []struct {
		name     string
		original bool
		builtBy  string
		cap      int
		conquer  bool
		expected placement.Capacity
	}{
		{name: "owned original factory", original: true, builtBy: "Germany", cap: rules.Unlimited, expected: placement.Unlimited},
		{name: "per territory cap", original: true, builtBy: "Germany", cap: 5, expected: 5},
		{name: "conquered this turn", original: true, builtBy: "Germany", cap: rules.Unlimited, conquer: true, expected: 3},
		{name: "captured enemy factory", original: true, builtBy: "Russia", cap: rules.Unlimited, expected: 3},
		{name: "factory built later", original: false, builtBy: "Germany", cap: rules.Unlimited, expected: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			w := newWorld(t)
			r := w.land("Germany", germany, 3)
			w.factory("Germany", germany, tt.original)
			for _, f := range r.UnitsMatching(unit.IsFactory) {
				if tt.builtBy == "Russia" {
					f.OriginalOwner = russia
				}
			}
			r.Conquered = tt.conquer
			pr := rules.DefaultPlayerRules()
			pr.MaxPlacePerTerritory = tt.cap
			pr.PlacementCapturedTerritory = true
			w.rules.SetPlayer(germany, pr)
			units := w.hold("infantry", 1, germany)
			e := w.engine()

			// Act
			capacity := e.Allocator().MaxFrom(r, units, r, germany, true, nil)

			// Assert
			assert.Equal(t, tt.expected, capacity)
		})
	}
}

func TestLaw_StackingLimitRejectsExcess(t *testing.T) {
	// Arrange
	w := newWorld(t)
	w.types["armour"].StackingLimit = &unit.StackingLimit{Max: 3, Scope: unit.StackingOwned}
	w.land("Germany", germany, 10)
	w.factory("Germany", germany, true)
	w.put("Germany", "armour", 2, germany)
	held := w.hold("armour", 2, germany)
	e := w.engine()

	// Act
	err := e.Place(context.Background(), held, "Germany")

	// Assert
	rejected := rejection(t, err)
	assert.Equal(t, "UnitType armour is over stacking limit of 1", rejected.Reason)
	assert.Equal(t, 2, w.count("Germany", "armour"))

	// Act
	require.NoError(t, e.Place(context.Background(), held[:1], "Germany"))

	// Assert
	assert.Equal(t, 3, w.count("Germany", "armour"))
	placeable, err := e.PlaceableUnits(held[1:], "Germany")
	require.NoError(t, err)
	assert.Empty(t, placeable.Units)
}

func TestLaw_PlayerStackingLimitCountsEveryOwnerForTotalScope(t *testing.T) {
	// Arrange
	w := newWorld(t)
	w.land("Germany", germany, 10)
	w.factory("Germany", germany, true)
	w.put("Germany", "infantry", 2, germany)
	w.put("Germany", "infantry", 1, russia)
	pr := rules.DefaultPlayerRules()
	pr.StackingLimits = []rules.PlayerStackingLimit{{Max: 4, Scope: unit.StackingTotal, UnitTypes: []string{"infantry"}}}
	w.rules.SetPlayer(germany, pr)
	held := w.hold("infantry", 2, germany)
	e := w.engine()

	// Act
	err := e.Place(context.Background(), held, "Germany")

	// Assert
	assert.Equal(t, "Units Can Not Go Over Stacking Limit", rejection(t, err).Reason)
	require.NoError(t, e.Place(context.Background(), held[:1], "Germany"))
}

func TestLaw_FailedCommandRollsBackEverything(t *testing.T) {
	// Arrange
	w := newWorld(t)
	w.land("Poland", germany, 2)
	w.factory("Poland", germany, false)
	held := w.hold("infantry", 3, germany)
	e := w.engine(placement.WithSteps())
	regionsBefore := snapshotUnits(w.board)

	// Act
	err := e.Place(context.Background(), held, "Poland")

	// Assert
	var violation *placement.InvariantViolationError
	require.ErrorAs(t, err, &violation)
	assertSameUnits(t, regionsBefore, snapshotUnits(w.board))
	assert.ElementsMatch(t, held, w.board.Held(germany))
	assert.Empty(t, e.State().Producers())
	assert.Equal(t, 0, e.PlacementsMade())
	assert.Equal(t, 0, w.journal.Len())
}

func TestLaw_JournalOnlyReceivesCommittedEvents(t *testing.T) {
	// Arrange
	w := newWorld(t)
	w.land("Poland", germany, 1)
	w.factory("Poland", germany, false)
	held := w.hold("infantry", 2, germany)
	e := w.engine()

	// Act
	err := e.Place(context.Background(), held, "Poland")

	// Assert
	require.Error(t, err)
	assert.Equal(t, 0, w.journal.Len())

	// Act
	require.NoError(t, e.Place(context.Background(), held[:1], "Poland"))

	// Assert
	events := w.journal.Events()
	require.Len(t, events, 1)
	assert.Equal(t, history.EventTypePlacement, events[0].Type())
	assert.Equal(t, "1 infantry placed in Poland", events[0].Description())
	assert.Equal(t, w.clock.Now(), events[0].Timestamp())
}
