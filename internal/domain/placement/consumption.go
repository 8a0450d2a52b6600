package placement

import (
	"sort"

	"github.com/andrescamacho/placement-go/internal/domain/board"
	"github.com/andrescamacho/placement-go/internal/domain/shared"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
)

// poolEntry is a unit that may be consumed, together with where it stands
type poolEntry struct {
	unit   *unit.Unit
	region *board.Region
}

// consumptionPool lists the units present at start of step in dest, followed
// by those of adjacent land when dest is water
func (a *Allocator) consumptionPool(dest *board.Region, player shared.PlayerID) []poolEntry {
	var pool []poolEntry
	for _, u := range a.UnitsAtStartOfStep(dest, player) {
		pool = append(pool, poolEntry{unit: u, region: dest})
	}
	if dest.Water {
		for _, n := range a.board.Neighbors(dest.Name) {
			if n.Water {
				continue
			}
			for _, u := range a.landStartOfStep(n) {
				pool = append(pool, poolEntry{unit: u, region: n})
			}
		}
	}
	return pool
}

// reachable returns true if consumer may use a pool entry. Sea consumers
// placed at sea may reach adjacent land; everything else consumes in place.
func reachable(consumer *unit.Unit, dest *board.Region, e poolEntry) bool {
	if e.region == dest {
		return true
	}
	return dest.Water && consumer.Type.IsSea()
}

func consumable(consumer *unit.Unit, typeName string) unit.Predicate {
	return unit.And(unit.OwnedBy(consumer.Owner), unit.OfTypeName(typeName), unit.IsIntact)
}

func (a *Allocator) consumerHasRequiredUnits(consumer *unit.Unit, dest *board.Region, pool []poolEntry, spent map[*unit.Unit]bool) bool {
	for typeName, need := range consumer.Type.ConsumesUnits {
		match := consumable(consumer, typeName)
		have := 0
		for _, e := range pool {
			if spent[e.unit] || !reachable(consumer, dest, e) || !match(e.unit) {
				continue
			}
			have++
		}
		if have < need {
			return false
		}
	}
	return true
}

// CanConsume checks that every consuming unit among units finds the units it
// consumes. With commit, the removals are returned as a change together with
// the consumed units. Units spent by one consumer are unavailable to the next.
func (a *Allocator) CanConsume(units []*unit.Unit, dest *board.Region, player shared.PlayerID, commit bool) (bool, board.Change, []*unit.Unit) {
	consumers := unit.Filter(units, unit.ConsumesOnCreation)
	if len(consumers) == 0 {
		return true, nil, nil
	}

	pool := a.consumptionPool(dest, player)
	spent := make(map[*unit.Unit]bool)
	var consumed []*unit.Unit
	byRegion := make(map[*board.Region][]*unit.Unit)
	var regions []*board.Region

	for _, consumer := range consumers {
		if !a.consumerHasRequiredUnits(consumer, dest, pool, spent) {
			return false, nil, nil
		}
		typeNames := make([]string, 0, len(consumer.Type.ConsumesUnits))
		for name := range consumer.Type.ConsumesUnits {
			typeNames = append(typeNames, name)
		}
		sort.Strings(typeNames)
		for _, name := range typeNames {
			need := consumer.Type.ConsumesUnits[name]
			match := consumable(consumer, name)
			for _, e := range pool {
				if need == 0 {
					break
				}
				if spent[e.unit] || !reachable(consumer, dest, e) || !match(e.unit) {
					continue
				}
				spent[e.unit] = true
				need--
				consumed = append(consumed, e.unit)
				if _, ok := byRegion[e.region]; !ok {
					regions = append(regions, e.region)
				}
				byRegion[e.region] = append(byRegion[e.region], e.unit)
			}
		}
	}

	if !commit {
		return true, nil, nil
	}
	change := board.NewComposite()
	for _, r := range regions {
		change.Add(&board.RemoveUnits{Region: r.Name, Units: byRegion[r]})
	}
	return true, change, consumed
}
