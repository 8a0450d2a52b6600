package placement

import (
	"fmt"
	"math"
	"strings"

	"github.com/andrescamacho/placement-go/internal/domain/board"
	"github.com/andrescamacho/placement-go/internal/domain/shared"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
)

// CanProduce checks that dest has at least one producer able to produce.
// It returns the rejection reason, or "" when some producer can.
func (a *Allocator) CanProduce(dest *board.Region, units []*unit.Unit, player shared.PlayerID) string {
	producers := a.Producers(dest, player)
	if len(producers) == 0 {
		return fmt.Sprintf("No factory adjacent to %s", dest.Name)
	}
	if len(producers) == 1 {
		return a.canProduceFrom(producers[0], dest, units, player)
	}
	var failures []string
	for _, p := range producers {
		if reason := a.canProduceFrom(p, dest, units, player); reason != "" {
			failures = append(failures, reason)
		}
	}
	if len(failures) == len(producers) {
		return fmt.Sprintf("Adjacent factories to %s cannot produce, due to: \n %s", dest.Name, strings.Join(failures, ", "))
	}
	return ""
}

func (a *Allocator) canProduceFrom(producer, dest *board.Region, units []*unit.Unit, player shared.PlayerID) string {
	if producer.Conquered && !a.rules.ForPlayer(player).PlacementCapturedTerritory {
		return fmt.Sprintf("%s was conquered this turn and cannot produce till next turn", producer.Name)
	}
	if a.rules.PlaceInAnyOwnedLand(player) {
		return ""
	}
	if !producer.AnyUnit(unit.IsFactoryOrCanProduce) {
		if unit.Any(units, unit.IsFactory) {
			return ""
		}
		if unit.Any(units, unit.IsConstruction) {
			if total(a.ConstructionAllowance(dest, units, player)) > 0 {
				return ""
			}
			return fmt.Sprintf("No more Constructions Allowed in %s", producer.Name)
		}
		return fmt.Sprintf("No Factory in %s", producer.Name)
	}
	if unit.Any(a.state.ledger[dest.Name], unit.IsFactoryOrCanProduce) {
		if unit.Any(units, unit.IsConstruction) && total(a.ConstructionAllowance(dest, units, player)) > 0 {
			return ""
		}
		return fmt.Sprintf("Factory in %s cant produce until 1 turn after it is created", producer.Name)
	}
	if dest.Water && !a.rules.Properties.UnitPlacementInEnemySeas && dest.AnyUnit(a.board.IsEnemyUnit(player)) {
		return "Cannot place sea units with enemy naval units"
	}
	return ""
}

// CheckProduction checks that dest's producers have room for every unit requested
func (a *Allocator) CheckProduction(dest *board.Region, units []*unit.Unit, player shared.PlayerID) string {
	ranked := a.RankProducers(dest, units, player, true)
	if len(ranked) == 0 {
		return fmt.Sprintf("No factory adjacent to %s", dest.Name)
	}
	best := ranked[0]
	if a.rules.Properties.NoFactoryInZeroProductionRegion && best.Production == 0 &&
		unit.Any(units, unit.And(unit.IsFactory, unit.Not(unit.IsConstruction))) {
		return "Cannot place factory, that territory cant produce any units"
	}
	if maxUnits := a.MaxUnitsToBePlaced(units, dest, player, true); !maxUnits.Covers(len(units)) {
		return fmt.Sprintf("Cannot place %d more units in %s", len(units), best.Name)
	}
	return ""
}

// CanUnitsBePlaced checks that the units may legally stand in dest
func (a *Allocator) CanUnitsBePlaced(dest *board.Region, units []*unit.Unit, player shared.PlayerID) string {
	if dest.IsLand() {
		if unit.Any(units, unit.IsSea) {
			return "Cant place sea units on land"
		}
		if !dest.Owner.Equals(player) {
			return fmt.Sprintf("You don't own %s", dest.Name)
		}
	}
	if a.rules.ForPlayer(player).PlacementInCapitalRestricted && !dest.IsCapitalOf(player) {
		return "Cannot place these units outside of the capital"
	}
	if ok, _, _ := a.CanConsume(units, dest, player, false); !ok {
		return "Not Enough Units To Upgrade or Be Consumed"
	}
	for _, t := range unit.DistinctTypes(units) {
		limit := a.MaxForStackingLimit(t, dest, player)
		if unit.Count(units, unit.OfType(t)) > limit {
			return fmt.Sprintf("UnitType %s is over stacking limit of %d", t.Name, limit)
		}
	}
	if !a.withinPlayerStackingLimits(units, dest, player) {
		return "Units Can Not Go Over Stacking Limit"
	}
	if a.rules.Properties.UnitPlacementRestrictions {
		for _, u := range units {
			if reason := a.restrictionReason(u, dest, player); reason != "" {
				return reason
			}
		}
	}
	placeable, ok := a.UnitsToBePlaced(dest, units, player)
	if !ok || !unit.ContainsAll(placeable, units) {
		return fmt.Sprintf("Cannot place these units in %s", dest.Name)
	}
	allowance := a.ConstructionAllowance(dest, units, player)
	for _, u := range unit.Filter(units, unit.IsFactoryOrConstruction) {
		allowance[u.Type.Category()]--
	}
	for _, left := range allowance {
		if left < 0 {
			return fmt.Sprintf("Too many constructions in %s", dest.Name)
		}
	}
	return ""
}

// CheckCarriers checks that air placed at sea has room on carriers
func (a *Allocator) CheckCarriers(dest *board.Region, units []*unit.Unit, player shared.PlayerID) string {
	if !dest.Water || !unit.Any(units, unit.IsAir) {
		return ""
	}
	allied := a.board.IsAlliedUnit(player)
	capacity := unit.CarrierCapacity(units) +
		unit.CarrierCapacity(dest.UnitsMatching(unit.And(allied, unit.IsCarrier))) -
		unit.CarrierCost(dest.UnitsMatching(unit.And(allied, unit.CanLandOnCarrier)))
	if unit.CarrierCost(units) > capacity {
		return "Not enough new carriers to land all the fighters"
	}
	return ""
}

// UnitsToBePlaced returns the subset of units dest may accept. ok is false
// when nothing at all may be placed (enemy ships in the zone).
func (a *Allocator) UnitsToBePlaced(dest *board.Region, units []*unit.Unit, player shared.PlayerID) ([]*unit.Unit, bool) {
	if dest.Water {
		return a.unitsToBePlacedSea(dest, units, player)
	}
	return a.unitsToBePlacedLand(dest, units, player), true
}

func (a *Allocator) unitsToBePlacedSea(dest *board.Region, units []*unit.Unit, player shared.PlayerID) ([]*unit.Unit, bool) {
	props := a.rules.Properties
	placeable := unit.Filter(units, unit.IsSea)

	newUnits := append(unit.Copy(units), a.PlacedSoFar(dest, player)...)
	onNew := (props.ProduceFightersOnCarriers || props.LHTRCarrierProduction) && unit.Any(newUnits, unit.IsCarrier)
	onOld := (props.ProduceNewFightersOnOldCarriers || props.LHTRCarrierProduction) && dest.AnyUnit(unit.IsCarrier)
	if onNew || onOld {
		placeable = append(placeable, unit.Filter(units, unit.And(unit.IsAir, unit.CanLandOnCarrier))...)
	}

	if !props.UnitPlacementInEnemySeas && dest.AnyUnit(a.board.IsEnemyUnit(player)) {
		return nil, false
	}

	placeable = a.withoutUnfedConsumers(placeable, dest, player)
	if !props.UnitPlacementRestrictions {
		return placeable, true
	}
	return a.withoutRestricted(placeable, dest, player), true
}

func (a *Allocator) unitsToBePlacedLand(dest *board.Region, units []*unit.Unit, player shared.PlayerID) []*unit.Unit {
	var placeable []*unit.Unit
	if a.WasFactoryAtStart(dest, player) || a.rules.PlaceInAnyOwnedLand(player) {
		placeable = append(placeable, unit.Filter(units, unit.And(unit.Or(unit.IsLand, unit.IsAir), unit.Not(unit.IsFactoryOrConstruction)))...)
	}

	if unit.Any(units, unit.IsFactoryOrConstruction) {
		allowance := a.ConstructionAllowance(dest, units, player)
		done := make(map[*unit.Type]bool)
		for _, u := range unit.Filter(units, unit.IsFactoryOrConstruction) {
			if done[u.Type] {
				continue
			}
			if n := constructionSlots(u, allowance); n > 0 {
				placeable = append(placeable, unit.FirstN(units, n, unit.OfType(u.Type))...)
				done[u.Type] = true
			}
		}
	}

	placeable = a.withoutUnfedConsumers(placeable, dest, player)

	var stacked []*unit.Unit
	for _, t := range unit.DistinctTypes(placeable) {
		stacked = append(stacked, unit.FirstN(placeable, a.MaxForStackingLimit(t, dest, player), unit.OfType(t))...)
	}

	if !a.rules.Properties.UnitPlacementRestrictions {
		return stacked
	}
	return a.withoutRestricted(stacked, dest, player)
}

func (a *Allocator) withoutUnfedConsumers(units []*unit.Unit, dest *board.Region, player shared.PlayerID) []*unit.Unit {
	if !unit.Any(units, unit.ConsumesOnCreation) {
		return units
	}
	pool := a.consumptionPool(dest, player)
	return unit.Filter(units, func(u *unit.Unit) bool {
		return !u.Type.ConsumesOnCreation() || a.consumerHasRequiredUnits(u, dest, pool, nil)
	})
}

func (a *Allocator) withoutRestricted(units []*unit.Unit, dest *board.Region, player shared.PlayerID) []*unit.Unit {
	return unit.Filter(units, func(u *unit.Unit) bool {
		return a.restrictionReason(u, dest, player) == ""
	})
}

// restrictionReason explains why u may not be placed in dest under unit
// placement restrictions, or returns "" if it may
func (a *Allocator) restrictionReason(u *unit.Unit, dest *board.Region, player shared.PlayerID) string {
	t := u.Type
	if t.CanOnlyBePlacedInTerritoryValuedAtX != unit.NoValueGate && t.CanOnlyBePlacedInTerritoryValuedAtX > dest.Production {
		return fmt.Sprintf("Cannot place these units in %s due to Unit Placement Restrictions on Territory Value", dest.Name)
	}
	if containsName(t.PlacementRestrictions, dest.Name) {
		return fmt.Sprintf("Cannot place these units in %s due to Unit Placement Restrictions", dest.Name)
	}
	if len(t.PlacementAllowedIn) > 0 && !containsName(t.PlacementAllowedIn, dest.Name) {
		return fmt.Sprintf("Cannot place these units in %s due to Unit Placement Restrictions", dest.Name)
	}
	if !a.hasRequiredUnits(u, dest, player) {
		return fmt.Sprintf("Cannot place these units in %s as territory does not contain required units at start of turn", dest.Name)
	}
	if t.CanOnlyPlaceInOriginalTerritories && !dest.IsOriginallyOwnedBy(player) {
		return fmt.Sprintf("Cannot place these units in %s as territory is not originally owned", dest.Name)
	}
	return ""
}

// hasRequiredUnits checks u's required unit combos against dest's start of
// step units and, for sea units, against adjacent land
func (a *Allocator) hasRequiredUnits(u *unit.Unit, dest *board.Region, player shared.PlayerID) bool {
	if !u.Type.RequiresUnitsOnCreation() {
		return true
	}
	if satisfiesCombo(u, a.UnitsAtStartOfStep(dest, player)) {
		return true
	}
	if u.Type.IsSea() {
		for _, n := range a.board.Neighbors(dest.Name) {
			if n.Water {
				continue
			}
			if satisfiesCombo(u, a.landStartOfStep(n)) {
				return true
			}
		}
	}
	return false
}

func satisfiesCombo(u *unit.Unit, present []*unit.Unit) bool {
	owned := unit.Filter(present, unit.OwnedBy(u.Owner))
	for _, combo := range u.Type.RequiresUnits {
		need := make(map[string]int)
		for _, name := range combo {
			need[name]++
		}
		ok := true
		for name, n := range need {
			if unit.Count(owned, unit.OfTypeName(name)) < n {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// MaxForStackingLimit returns how many more units of t may enter dest
func (a *Allocator) MaxForStackingLimit(t *unit.Type, dest *board.Region, player shared.PlayerID) int {
	if t.StackingLimit == nil {
		return math.MaxInt32
	}
	present := unit.Count(dest.Units, unit.And(unit.OfType(t), a.scope(t.StackingLimit.Scope, player)))
	return max(0, t.StackingLimit.Max-present)
}

func (a *Allocator) withinPlayerStackingLimits(units []*unit.Unit, dest *board.Region, player shared.PlayerID) bool {
	for _, limit := range a.rules.ForPlayer(player).StackingLimits {
		covered := func(u *unit.Unit) bool { return limit.Applies(u.Type) }
		present := unit.Count(dest.Units, unit.And(covered, a.scope(limit.Scope, player)))
		if present+unit.Count(units, covered) > limit.Max {
			return false
		}
	}
	return true
}

func (a *Allocator) scope(s unit.StackingScope, player shared.PlayerID) unit.Predicate {
	switch s {
	case unit.StackingAllied:
		return a.board.IsAlliedUnit(player)
	case unit.StackingTotal:
		return func(*unit.Unit) bool { return true }
	default:
		return unit.OwnedBy(player)
	}
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
