package placement_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/placement-go/internal/domain/placement"
)

// twoYards builds Western Germany (production 3) and Denmark (production 2),
// both with factories built after the game started. The North Sea touches
// both; the Baltic Sea only touches Western Germany.
func twoYards(t *testing.T) *world {
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
	return w
}

func TestPlace_SplitsEarlierPlacementToFreeCapacity(t *testing.T) {
	// Arrange
	w := twoYards(t)
	first := w.hold("transport", 3, germany)
	second := w.hold("transport", 2, germany)
	e := w.engine()
	require.NoError(t, e.Place(context.Background(), first, "North Sea"))
	require.ElementsMatch(t, first, e.State().Produced("Western Germany"))

	// Act
	err := e.Place(context.Background(), second, "Baltic Sea")

	// Assert
	require.NoError(t, err)
	assert.ElementsMatch(t, first[:2], e.State().Produced("Denmark"))
	assert.ElementsMatch(t, append(first[2:3:3], second...), e.State().Produced("Western Germany"))

	records := e.Records()
	require.Len(t, records, 3)
	assert.Equal(t, "Denmark", records[0].Producer)
	assert.Equal(t, "North Sea", records[0].Destination)
	assert.Len(t, records[0].Units, 2)
	assert.Equal(t, "Western Germany", records[1].Producer)
	assert.Equal(t, "North Sea", records[1].Destination)
	assert.Len(t, records[1].Units, 1)
	assert.Equal(t, "Western Germany", records[2].Producer)
	assert.Equal(t, "Baltic Sea", records[2].Destination)

	assert.Equal(t, 3, w.count("North Sea", "transport"))
	assert.Equal(t, 2, w.count("Baltic Sea", "transport"))
	assert.Empty(t, w.board.Held(germany))
}

func TestPlace_ReallocationCannotExceedAlternatives(t *testing.T) {
	// Arrange
	w := twoYards(t)
	first := w.hold("transport", 3, germany)
	second := w.hold("transport", 3, germany)
	e := w.engine()
	require.NoError(t, e.Place(context.Background(), first, "North Sea"))

	// Act
	err := e.Place(context.Background(), second, "Baltic Sea")

	// Assert
	rejected := rejection(t, err)
	assert.Equal(t, placement.StepProduction, rejected.Step)
	assert.Equal(t, "Cannot place 3 more units in Western Germany", rejected.Reason)
	assert.ElementsMatch(t, first, e.State().Produced("Western Germany"))
	assert.Equal(t, 1, e.PlacementsMade())
}

func TestRankProducers_CreditsReclaimableCapacity(t *testing.T) {
	// Arrange
	w := twoYards(t)
	first := w.hold("transport", 3, germany)
	e := w.engine()
	require.NoError(t, e.Place(context.Background(), first, "North Sea"))
	baltic := w.region("Baltic Sea")
	westernGermany := w.region("Western Germany")
	units := w.hold("transport", 1, germany)

	// Act
	plain := e.Allocator().MaxFrom(westernGermany, units, baltic, germany, false, nil)
	switching := e.Allocator().MaxFrom(westernGermany, units, baltic, germany, true, nil)
	total := e.Allocator().MaxUnitsToBePlaced(units, baltic, germany, true)

	// Assert
	assert.Equal(t, placement.Capacity(0), plain)
	assert.Equal(t, placement.Capacity(2), switching)
	assert.Equal(t, placement.Capacity(2), total)
}

func TestPlace_SeaZoneFillsBestProducerFirst(t *testing.T) {
	// Arrange
	w := twoYards(t)
	transports := w.hold("transport", 5, germany)
	e := w.engine()

	// Act
	err := e.Place(context.Background(), transports, "North Sea")

	// Assert
	require.NoError(t, err)
	assert.ElementsMatch(t, transports[:3], e.State().Produced("Western Germany"))
	assert.ElementsMatch(t, transports[3:], e.State().Produced("Denmark"))
	records := e.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "Western Germany", records[0].Producer)
	assert.Equal(t, "Denmark", records[1].Producer)
}
