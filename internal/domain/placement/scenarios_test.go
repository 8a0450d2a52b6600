package placement_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/placement-go/internal/domain/placement"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
)

func TestPlace_OriginalFactoryHasUnlimitedProduction(t *testing.T) {
	// Arrange
	w := newWorld(t)
	w.land("Germany", germany, 3)
	w.factory("Germany", germany, true)
	held := w.hold("infantry", 4, germany)
	e := w.engine()

	// Act
	ev, err := e.Evaluate(germany, held, "Germany")
	require.NoError(t, err)
	err = e.Place(context.Background(), held, "Germany")

	// Assert
	require.NoError(t, err)
	assert.True(t, ev.Accepted)
	assert.Equal(t, placement.Unlimited, ev.Max)
	assert.Equal(t, 4, w.count("Germany", "infantry"))
	assert.Len(t, e.State().Produced("Germany"), 4)
	assert.Empty(t, w.board.Held(germany))
	assert.Equal(t, 1, e.PlacementsMade())
}

func TestPlace_NonOriginalFactoryRejectsOverCapacity(t *testing.T) {
	// Arrange
	w := newWorld(t)
	w.land("Poland", germany, 2)
	w.factory("Poland", germany, false)
	held := w.hold("infantry", 3, germany)
	e := w.engine()
	require.NoError(t, e.Place(context.Background(), held[:1], "Poland"))
	poland := w.region("Poland")

	// Act
	capacity := e.Allocator().MaxFrom(poland, held[1:], poland, germany, true, nil)
	err := e.Place(context.Background(), held[1:], "Poland")

	// Assert
	assert.Equal(t, placement.Capacity(1), capacity)
	rejected := rejection(t, err)
	assert.Equal(t, placement.StepProduction, rejected.Step)
	assert.Equal(t, "Cannot place 2 more units in Poland", rejected.Reason)
	assert.Len(t, e.State().Produced("Poland"), 1)
	assert.Equal(t, 1, w.count("Poland", "infantry"))
	assert.Len(t, w.board.Held(germany), 2)
	assert.Equal(t, 1, e.PlacementsMade())
}

func TestPlace_ReallocatesSeaZonePlacementToAlternativeProducer(t *testing.T) {
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
	require.ElementsMatch(t, first, e.State().Produced("Western Germany"))

	// Act
	err := e.Place(context.Background(), second, "Baltic Sea")

	// Assert
	require.NoError(t, err)
	assert.ElementsMatch(t, second, e.State().Produced("Western Germany"))
	assert.ElementsMatch(t, first, e.State().Produced("Denmark"))
	records := e.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "Denmark", records[0].Producer)
	assert.Equal(t, "North Sea", records[0].Destination)
	assert.Equal(t, "Western Germany", records[1].Producer)
	assert.Equal(t, 2, w.count("North Sea", "transport"))
	assert.Equal(t, 3, w.count("Baltic Sea", "transport"))
}

func TestPlace_ConsumesUnitsPresentAtStartOfStep(t *testing.T) {
	// Arrange
	w := newWorld(t)
	w.defineType("elite", unit.ClassLand, func(t *unit.Type) {
		t.ConsumesUnits = map[string]int{"infantry": 2}
	})
	w.land("Germany", germany, 10)
	w.factory("Germany", germany, true)
	w.put("Germany", "infantry", 2, germany)
	elite := w.hold("elite", 2, germany)
	e := w.engine()

	// Act
	err := e.Place(context.Background(), elite[:1], "Germany")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 0, w.count("Germany", "infantry"))
	assert.Equal(t, 1, w.count("Germany", "elite"))

	// Act - nothing left to consume
	err = e.Place(context.Background(), elite[1:], "Germany")

	// Assert
	rejected := rejection(t, err)
	assert.Equal(t, placement.StepLegality, rejected.Step)
	assert.Equal(t, "Not Enough Units To Upgrade or Be Consumed", rejected.Reason)
	assert.Equal(t, 1, w.count("Germany", "elite"))
}

func TestPlace_ConsumptionIgnoresUnitsPlacedThisStep(t *testing.T) {
	// Arrange
	w := newWorld(t)
	w.defineType("elite", unit.ClassLand, func(t *unit.Type) {
		t.ConsumesUnits = map[string]int{"infantry": 2}
	})
	w.land("Germany", germany, 10)
	w.factory("Germany", germany, true)
	infantry := w.hold("infantry", 2, germany)
	elite := w.hold("elite", 1, germany)
	e := w.engine()
	require.NoError(t, e.Place(context.Background(), infantry, "Germany"))

	// Act
	err := e.Place(context.Background(), elite, "Germany")

	// Assert
	assert.Equal(t, "Not Enough Units To Upgrade or Be Consumed", rejection(t, err).Reason)
	assert.Equal(t, 2, w.count("Germany", "infantry"))
}

func TestPlace_ConsumptionSkipsDamagedUnits(t *testing.T) {
	// Arrange
	w := newWorld(t)
	w.defineType("elite", unit.ClassLand, func(t *unit.Type) {
		t.ConsumesUnits = map[string]int{"infantry": 2}
	})
	w.land("Germany", germany, 10)
	w.factory("Germany", germany, true)
	present := w.put("Germany", "infantry", 2, germany)
	present[1].Damage = 1
	elite := w.hold("elite", 1, germany)
	e := w.engine()

	// Act
	err := e.Place(context.Background(), elite, "Germany")

	// Assert
	assert.Equal(t, "Not Enough Units To Upgrade or Be Consumed", rejection(t, err).Reason)
}
