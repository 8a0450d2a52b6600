package board

import (
	"fmt"

	"github.com/andrescamacho/placement-go/internal/domain/shared"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
)

// Region is a territory or sea zone on the map.
//
// Units holds the units physically present, in arrival order. It is only
// mutated through Change values applied by the Board.
type Region struct {
	Name            string
	Water           bool
	Owner           shared.PlayerID
	OriginalOwner   shared.PlayerID
	Production      int
	OriginalFactory bool
	CapitalOf       shared.PlayerID
	Conquered       bool
	Units           []*unit.Unit
}

// NewLandRegion creates a land territory owned by owner
func NewLandRegion(name string, owner shared.PlayerID, production int) (*Region, error) {
	if name == "" {
		return nil, fmt.Errorf("region name cannot be empty")
	}
	if production < 0 {
		return nil, fmt.Errorf("region %s: production cannot be negative", name)
	}
	return &Region{
		Name:          name,
		Owner:         owner,
		OriginalOwner: owner,
		Production:    production,
	}, nil
}

// NewSeaZone creates an unowned water region
func NewSeaZone(name string) (*Region, error) {
	if name == "" {
		return nil, fmt.Errorf("region name cannot be empty")
	}
	return &Region{Name: name, Water: true}, nil
}

// IsLand returns true for territories that are not water
func (r *Region) IsLand() bool {
	return !r.Water
}

// IsCapitalOf returns true if the region is a capital of player and player still holds it
func (r *Region) IsCapitalOf(player shared.PlayerID) bool {
	return !r.CapitalOf.IsZero() && r.CapitalOf.Equals(player) && r.Owner.Equals(player)
}

// IsOriginallyOwnedBy returns true if player owned the region at scenario start
func (r *Region) IsOriginallyOwnedBy(player shared.PlayerID) bool {
	return r.OriginalOwner.Equals(player)
}

// UnitsMatching returns the present units matching pred
func (r *Region) UnitsMatching(pred unit.Predicate) []*unit.Unit {
	return unit.Filter(r.Units, pred)
}

// AnyUnit returns true if some present unit matches pred
func (r *Region) AnyUnit(pred unit.Predicate) bool {
	return unit.Any(r.Units, pred)
}

func (r *Region) String() string {
	return r.Name
}

func (r *Region) addUnits(units []*unit.Unit) {
	r.Units = append(r.Units, units...)
}

func (r *Region) removeUnits(units []*unit.Unit) error {
	if !unit.ContainsAll(r.Units, units) {
		return fmt.Errorf("region %s does not contain all of %v", r.Name, unit.IDs(units))
	}
	r.Units = unit.Minus(r.Units, units)
	return nil
}
