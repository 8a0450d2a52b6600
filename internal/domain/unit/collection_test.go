package unit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/placement-go/internal/domain/shared"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
)

var germany = shared.MustNewPlayerID("Germany")

func mustType(t *testing.T, name string, class unit.Class) *unit.Type {
	t.Helper()
	ut, err := unit.NewType(name, class)
	require.NoError(t, err)
	return ut
}

func mustUnit(t *testing.T, id string, ut *unit.Type) *unit.Unit {
	t.Helper()
	u, err := unit.New(id, ut, germany)
	require.NoError(t, err)
	return u
}

func TestNewType_Validation(t *testing.T) {
	_, err := unit.NewType(" ", unit.ClassLand)
	assert.Error(t, err)

	_, err = unit.NewType("zeppelin", unit.Class("balloon"))
	assert.Error(t, err)

	ut, err := unit.NewType("infantry", unit.ClassLand)
	require.NoError(t, err)
	assert.Equal(t, -1, ut.CanProduceXUnits)
	assert.Equal(t, unit.NoValueGate, ut.CanOnlyBePlacedInTerritoryValuedAtX)
}

func TestType_Category(t *testing.T) {
	factory := mustType(t, "factory", unit.ClassLand)
	factory.IsFactory = true
	aa := mustType(t, "aa_gun", unit.ClassLand)
	aa.IsConstruction = true
	aa.ConstructionType = "aa"

	assert.Equal(t, unit.FactoryCategory, factory.Category())
	assert.Equal(t, "aa", aa.Category())
}

func TestCollections(t *testing.T) {
	infantry := mustType(t, "infantry", unit.ClassLand)
	fighter := mustType(t, "fighter", unit.ClassAir)
	fighter.CarrierCost = 1
	carrier := mustType(t, "carrier", unit.ClassSea)
	carrier.CarrierCapacity = 2

	i1 := mustUnit(t, "b", infantry)
	i2 := mustUnit(t, "a", infantry)
	f1 := mustUnit(t, "c", fighter)
	c1 := mustUnit(t, "d", carrier)
	all := []*unit.Unit{i1, f1, i2, c1}

	assert.Equal(t, []*unit.Unit{i1, i2}, unit.Filter(all, unit.IsLand))
	assert.Equal(t, []*unit.Unit{i1}, unit.FirstN(all, 1, unit.IsLand))
	assert.Empty(t, unit.FirstN(all, 0, unit.IsLand))
	assert.Equal(t, 2, unit.Count(all, unit.OfTypeName("infantry")))
	assert.True(t, unit.Any(all, unit.IsCarrier))
	assert.False(t, unit.All(all, unit.IsLand))
	assert.True(t, unit.ContainsAll(all, []*unit.Unit{c1, i2}))
	assert.False(t, unit.HasDuplicates(all))
	assert.True(t, unit.HasDuplicates([]*unit.Unit{i1, f1, i1}))
	assert.Equal(t, []*unit.Unit{f1, c1}, unit.Minus(all, []*unit.Unit{i1, i2}))
	assert.Equal(t, []*unit.Type{infantry, fighter, carrier}, unit.DistinctTypes(all))
	assert.Equal(t, 2, unit.CarrierCapacity(all))
	assert.Equal(t, 1, unit.CarrierCost(all))
	assert.Equal(t, "2 infantry, 1 fighter, 1 carrier", unit.Describe(all))
	assert.Equal(t, "nothing", unit.Describe(nil))

	sorted := unit.Copy(all)
	unit.SortByID(sorted)
	assert.Equal(t, []string{"a", "b", "c", "d"}, unit.IDs(sorted))
	assert.Equal(t, []string{"b", "c", "a", "d"}, unit.IDs(all))
}

func TestPredicates(t *testing.T) {
	infantry := mustType(t, "infantry", unit.ClassLand)
	healthy := mustUnit(t, "1", infantry)
	damaged := mustUnit(t, "2", infantry)
	damaged.Damage = 1
	disabled := mustUnit(t, "3", infantry)
	disabled.Disabled = true

	assert.True(t, unit.IsIntact(healthy))
	assert.False(t, unit.IsIntact(damaged))
	assert.False(t, unit.IsIntact(disabled))
	assert.True(t, unit.And(unit.IsLand, unit.OwnedBy(germany))(healthy))
	assert.False(t, unit.Or(unit.IsSea, unit.IsAir)(healthy))
	assert.True(t, unit.Not(unit.IsSea)(healthy))
	assert.True(t, unit.OfType(infantry)(healthy))
}
