package placement

import (
	"sort"

	"github.com/andrescamacho/placement-go/internal/domain/board"
	"github.com/andrescamacho/placement-go/internal/domain/rules"
	"github.com/andrescamacho/placement-go/internal/domain/shared"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
)

// Allocator answers the capacity and legality questions of one placement
// step. It reads the board and rules and the engine's TurnState; it never
// mutates them.
type Allocator struct {
	board *board.Board
	rules *rules.Config
	state *TurnState
}

// NewAllocator creates an allocator over the given step state
func NewAllocator(b *board.Board, cfg *rules.Config, state *TurnState) *Allocator {
	return &Allocator{board: b, rules: cfg, state: state}
}

// Board returns the board the allocator reads
func (a *Allocator) Board() *board.Board { return a.board }

// Rules returns the rule set the allocator reads
func (a *Allocator) Rules() *rules.Config { return a.rules }

// Produced returns the units charged to producer this step
func (a *Allocator) Produced(producer string) []*unit.Unit {
	return a.state.ledger[producer]
}

// UnitsAtStartOfStep returns the units that were in r before this step's
// placements. For water, units charged to any of r's producers are excluded
// as well.
func (a *Allocator) UnitsAtStartOfStep(r *board.Region, player shared.PlayerID) []*unit.Unit {
	placed := unit.Copy(a.state.ledger[r.Name])
	if r.Water {
		for _, p := range a.Producers(r, player) {
			placed = append(placed, a.state.ledger[p.Name]...)
		}
	}
	return unit.Minus(r.Units, placed)
}

// PlacedSoFar returns the units placed into r during this step
func (a *Allocator) PlacedSoFar(r *board.Region, player shared.PlayerID) []*unit.Unit {
	return unit.Minus(r.Units, a.UnitsAtStartOfStep(r, player))
}

// WasFactoryAtStart returns true if player owned a producing unit in r at start of step
func (a *Allocator) WasFactoryAtStart(r *board.Region, player shared.PlayerID) bool {
	return unit.Any(a.UnitsAtStartOfStep(r, player), unit.And(unit.OwnedBy(player), unit.IsFactoryOrCanProduce))
}

func (a *Allocator) landStartOfStep(r *board.Region) []*unit.Unit {
	return unit.Minus(r.Units, a.state.ledger[r.Name])
}

// Producers returns the regions whose capacity may be charged for placing into dest.
// A land region produces for itself; a sea zone is served by adjacent owned land
// that had a producing unit at start of step.
func (a *Allocator) Producers(dest *board.Region, player shared.PlayerID) []*board.Region {
	if !dest.Water {
		return []*board.Region{dest}
	}
	anySeaZone := a.rules.PlaceInAnySeaZoneByOwnedLand(player)
	var out []*board.Region
	for _, n := range a.board.Neighbors(dest.Name) {
		if n.Water || !n.Owner.Equals(player) {
			continue
		}
		owned := unit.Filter(a.landStartOfStep(n), unit.OwnedBy(player))
		if anySeaZone || unit.Any(owned, unit.IsFactoryOrCanProduce) {
			out = append(out, n)
		}
	}
	return out
}

// RankProducers orders dest's producers by descending capacity, Unlimited
// first, keeping discovery order between equals. With countSwitching each
// producer is credited with the capacity it could reclaim from its own sea
// zone placements.
func (a *Allocator) RankProducers(dest *board.Region, units []*unit.Unit, player shared.PlayerID, countSwitching bool) []*board.Region {
	producers := a.Producers(dest, player)
	caps := make(map[string]Capacity, len(producers))
	for _, p := range producers {
		caps[p.Name] = a.MaxFrom(p, units, dest, player, countSwitching, map[string]bool{p.Name: true})
	}
	sort.SliceStable(producers, func(i, j int) bool {
		return caps[producers[j].Name].Less(caps[producers[i].Name])
	})
	return producers
}

// MaxUnitsToBePlaced sums the capacity of every producer of dest
func (a *Allocator) MaxUnitsToBePlaced(units []*unit.Unit, dest *board.Region, player shared.PlayerID, countSwitching bool) Capacity {
	producers := a.RankProducers(dest, units, player, countSwitching)
	if len(producers) == 0 {
		return 0
	}
	excluded := make(map[string]bool, len(producers))
	for _, p := range producers {
		excluded[p.Name] = true
	}
	total := Capacity(0)
	for _, p := range producers {
		c := a.MaxFrom(p, units, dest, player, countSwitching, excluded)
		if c.IsUnlimited() {
			return Unlimited
		}
		total = total.Plus(c)
	}
	return total
}

// HasUnlimitedProduction returns true if producer holds an original factory
// that player originally owned and still controls
func (a *Allocator) HasUnlimitedProduction(producer *board.Region, player shared.PlayerID) bool {
	if !producer.OriginalFactory || producer.Water || producer.Conquered || !producer.Owner.Equals(player) {
		return false
	}
	if !producer.AnyUnit(unit.And(unit.OwnedBy(player), unit.IsFactoryOrCanProduce)) {
		return false
	}
	return a.originalFactoryOwner(producer, player).Equals(player)
}

// originalFactoryOwner prefers a factory originally owned by player, falling
// back to the first factory in the region
func (a *Allocator) originalFactoryOwner(producer *board.Region, player shared.PlayerID) shared.PlayerID {
	factories := producer.UnitsMatching(unit.IsFactoryOrCanProduce)
	for _, f := range factories {
		if f.OriginalOwner.Equals(player) {
			return player
		}
	}
	if len(factories) == 0 {
		return shared.Neutral
	}
	return factories[0].OriginalOwner
}

// MaxFrom returns how many of units producer can still place into dest.
//
// excluded lists producers that may not take over this producer's earlier
// sea zone placements; it is extended as alternatives are counted so no
// alternative is credited twice.
func (a *Allocator) MaxFrom(producer *board.Region, units []*unit.Unit, dest *board.Region, player shared.PlayerID, countSwitching bool, excluded map[string]bool) Capacity {
	pr := a.rules.ForPlayer(player)
	already := a.state.ledger[producer.Name]
	alreadyCount := len(already)

	if a.HasUnlimitedProduction(producer, player) {
		if pr.HasPlacementCap() {
			return Finite(pr.MaxPlacePerTerritory - alreadyCount)
		}
		return Unlimited
	}

	if a.rules.Properties.UnitPlacementPerTerritoryRestricted && pr.PlacementPerTerritory > 0 {
		owned := unit.Count(dest.Units, unit.OwnedBy(player))
		if owned >= pr.PlacementPerTerritory {
			return 0
		}
		if !pr.HasPlacementCap() {
			return Unlimited
		}
		return Finite(pr.MaxPlacePerTerritory - alreadyCount)
	}

	maxConstructions := total(a.ConstructionAllowance(dest, units, player))
	if !a.WasFactoryAtStart(producer, player) {
		if pr.MaxPlacePerTerritory > 0 {
			return Finite(min(maxConstructions, pr.MaxPlacePerTerritory-alreadyCount))
		}
		return Finite(maxConstructions)
	}

	production := a.productionPotential(producer, player)
	if maxConstructions > 0 {
		production += maxConstructions
	}
	if production < 0 {
		return 0
	}
	production += unit.Count(already, unit.IsFactoryOrConstruction)

	haveTo := alreadyCount
	if countSwitching && alreadyCount > 0 {
		if excluded == nil {
			excluded = map[string]bool{producer.Name: true}
		}
		haveTo = max(0, alreadyCount-a.reclaimable(producer, player, alreadyCount, excluded))
	}

	if pr.MaxPlacePerTerritory > 0 {
		return Finite(min(production-haveTo, pr.MaxPlacePerTerritory-haveTo))
	}
	return Finite(production - haveTo)
}

// reclaimable counts how much of producer's earlier sea zone production
// alternative producers could take over, stopping once need is covered
func (a *Allocator) reclaimable(producer *board.Region, player shared.PlayerID, need int, excluded map[string]bool) int {
	reclaimed := 0
	for _, rec := range a.state.log {
		if rec.Producer != producer.Name {
			continue
		}
		target, err := a.board.Region(rec.Destination)
		if err != nil || !target.Water {
			continue
		}
		var alternatives []*board.Region
		for _, alt := range a.Producers(target, player) {
			if !excluded[alt.Name] {
				alternatives = append(alternatives, alt)
			}
		}
		placed := a.PlacedSoFar(target, player)
		for _, alt := range alternatives {
			c := a.MaxFrom(alt, placed, target, player, false, nil)
			if c.IsUnlimited() {
				return need
			}
			reclaimed += int(c)
		}
		for _, alt := range alternatives {
			excluded[alt.Name] = true
		}
		if reclaimed >= need {
			break
		}
	}
	return reclaimed
}

// productionPotential is the best production of player's producing units
// present at start of step, reduced by their damage
func (a *Allocator) productionPotential(producer *board.Region, player shared.PlayerID) int {
	best := 0
	for _, f := range unit.Filter(a.UnitsAtStartOfStep(producer, player), unit.And(unit.OwnedBy(player), unit.IsFactoryOrCanProduce)) {
		p := producer.Production
		if f.Type.CanProduceXUnits >= 0 {
			p = f.Type.CanProduceXUnits
		}
		p -= f.Damage
		if p > best {
			best = p
		}
	}
	return best
}

func total(m map[string]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}
