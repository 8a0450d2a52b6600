package placement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/placement-go/internal/domain/placement"
	"github.com/andrescamacho/placement-go/internal/domain/rules"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
)

func TestEvaluate_UnitPlacementRestrictions(t *testing.T) {
	tests := []struct {
		name        string
		disabled    bool
		setup       func(w *world) []*unit.Unit
		destination string
		reason      string
	}{
		{
			name: "denied territory",
			setup: func(w *world) []*unit.Unit {
				w.types["infantry"].PlacementRestrictions = []string{"Germany"}
				return w.hold("infantry", 1, germany)
			},
			destination: "Germany",
			reason:      "Cannot place these units in Germany due to Unit Placement Restrictions",
		},
		{
			name: "denied territory ignored when restrictions are off",
			setup: func(w *world) []*unit.Unit {
				w.types["infantry"].PlacementRestrictions = []string{"Germany"}
				return w.hold("infantry", 1, germany)
			},
			disabled:    true,
			destination: "Germany",
		},
		{
			name: "territory missing from allow list",
			setup: func(w *world) []*unit.Unit {
				w.types["infantry"].PlacementAllowedIn = []string{"Poland"}
				return w.hold("infantry", 1, germany)
			},
			destination: "Germany",
			reason:      "Cannot place these units in Germany due to Unit Placement Restrictions",
		},
		{
			name: "territory on allow list",
			setup: func(w *world) []*unit.Unit {
				w.types["infantry"].PlacementAllowedIn = []string{"Poland", "Germany"}
				return w.hold("infantry", 1, germany)
			},
			destination: "Germany",
		},
		{
			name: "territory worth less than the value gate",
			setup: func(w *world) []*unit.Unit {
				w.types["armour"].CanOnlyBePlacedInTerritoryValuedAtX = 12
				return w.hold("armour", 1, germany)
			},
			destination: "Germany",
			reason:      "Cannot place these units in Germany due to Unit Placement Restrictions on Territory Value",
		},
		{
			name: "territory worth exactly the value gate",
			setup: func(w *world) []*unit.Unit {
				w.types["armour"].CanOnlyBePlacedInTerritoryValuedAtX = 10
				return w.hold("armour", 1, germany)
			},
			destination: "Germany",
		},
		{
			name: "required units absent",
			setup: func(w *world) []*unit.Unit {
				w.types["armour"].RequiresUnits = [][]string{{"infantry", "infantry"}}
				w.put("Germany", "infantry", 1, germany)
				return w.hold("armour", 1, germany)
			},
			destination: "Germany",
			reason:      "Cannot place these units in Germany as territory does not contain required units at start of turn",
		},
		{
			name: "required units owned by someone else",
			setup: func(w *world) []*unit.Unit {
				w.types["armour"].RequiresUnits = [][]string{{"infantry"}}
				w.put("Germany", "infantry", 1, russia)
				return w.hold("armour", 1, germany)
			},
			destination: "Germany",
			reason:      "Cannot place these units in Germany as territory does not contain required units at start of turn",
		},
		{
			name: "second required combination present",
			setup: func(w *world) []*unit.Unit {
				w.types["armour"].RequiresUnits = [][]string{{"fighter"}, {"infantry", "infantry"}}
				w.put("Germany", "infantry", 2, germany)
				return w.hold("armour", 1, germany)
			},
			destination: "Germany",
		},
		{
			name: "sea unit finds required units on adjacent land",
			setup: func(w *world) []*unit.Unit {
				w.types["transport"].RequiresUnits = [][]string{{"infantry"}}
				w.put("Germany", "infantry", 1, germany)
				return w.hold("transport", 1, germany)
			},
			destination: "Baltic Sea",
		},
		{
			name: "sea unit does not look past adjacent land",
			setup: func(w *world) []*unit.Unit {
				w.types["transport"].RequiresUnits = [][]string{{"infantry"}}
				w.put("Poland", "infantry", 1, germany)
				return w.hold("transport", 1, germany)
			},
			destination: "Baltic Sea",
			reason:      "Cannot place these units in Baltic Sea as territory does not contain required units at start of turn",
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
			w.connect("Germany", "Poland")
			w.rules.Properties.UnitPlacementRestrictions = !tt.disabled
			units := tt.setup(w)
			e := w.engine()

			// Act
			ev, err := e.Evaluate(germany, units, tt.destination)

			// Assert
			require.NoError(t, err)
			if tt.reason == "" {
				assert.True(t, ev.Accepted, ev.Reason)
				return
			}
			assert.False(t, ev.Accepted)
			assert.Equal(t, placement.StepLegality, ev.Step)
			assert.Equal(t, tt.reason, ev.Reason)
		})
	}
}

func TestPlaceableUnits_DropsRestrictedUnits(t *testing.T) {
	// Arrange
	w := newWorld(t)
	w.land("Germany", germany, 10)
	w.factory("Germany", germany, true)
	w.rules.Properties.UnitPlacementRestrictions = true
	w.types["armour"].PlacementRestrictions = []string{"Germany"}
	infantry := w.hold("infantry", 2, germany)
	armour := w.hold("armour", 1, germany)
	e := w.engine()

	// Act
	placeable, err := e.PlaceableUnits(append(unit.Copy(infantry), armour...), "Germany")

	// Assert
	require.NoError(t, err)
	assert.ElementsMatch(t, infantry, placeable.Units)
}

func TestMaxFrom_PlacementPerTerritory(t *testing.T) {
	tests := []struct {
		name       string
		restricted bool
		perRegion  int
		cap        int
		present    int
		expected   placement.Capacity
	}{
		{name: "restriction off counts production", restricted: false, perRegion: 2, cap: rules.Unlimited, expected: 2},
		{name: "room left and no cap", restricted: true, perRegion: 2, cap: rules.Unlimited, expected: placement.Unlimited},
		{name: "territory already holds enough units", restricted: true, perRegion: 2, cap: rules.Unlimited, present: 1, expected: 0},
		{name: "per territory cap still applies", restricted: true, perRegion: 3, cap: 5, expected: 5},
		{name: "zero means no per territory rule", restricted: true, perRegion: 0, cap: rules.Unlimited, expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange - the factory counts as one owned unit
			w := newWorld(t)
			r := w.land("Poland", germany, 2)
			w.factory("Poland", germany, false)
			if tt.present > 0 {
				w.put("Poland", "infantry", tt.present, germany)
			}
			w.rules.Properties.UnitPlacementPerTerritoryRestricted = tt.restricted
			pr := rules.DefaultPlayerRules()
			pr.PlacementPerTerritory = tt.perRegion
			pr.MaxPlacePerTerritory = tt.cap
			w.rules.SetPlayer(germany, pr)
			units := w.hold("infantry", 1, germany)
			e := w.engine()

			// Act
			capacity := e.Allocator().MaxFrom(r, units, r, germany, false, nil)

			// Assert
			assert.Equal(t, tt.expected, capacity)
		})
	}
}
