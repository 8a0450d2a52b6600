package placement

import (
	"strings"

	"github.com/andrescamacho/placement-go/internal/domain/board"
	"github.com/andrescamacho/placement-go/internal/domain/shared"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
)

// unlimitedConstructions is the per-region cap used when constructions are unlimited
const unlimitedConstructions = 10000

// structureSuffix marks construction categories that never receive bonus slots
const structureSuffix = "structure"

// ConstructionAllowance returns, per construction category, how many of the
// requested factory and construction units dest may still accept this step.
// Categories with nothing left are omitted; the map is empty when units hold
// no factory or construction.
func (a *Allocator) ConstructionAllowance(dest *board.Region, units []*unit.Unit, player shared.PlayerID) map[string]int {
	allowed := make(map[string]int)
	candidates := unit.Filter(units, unit.IsFactoryOrConstruction)
	if len(candidates) == 0 {
		return allowed
	}

	props := a.rules.Properties
	held := make(map[string]int)
	maxPerRegion := make(map[string]int)
	perTurn := make(map[string]int)
	var order []string

	for _, u := range candidates {
		if props.UnitPlacementRestrictions && a.restrictionReason(u, dest, player) != "" {
			continue
		}
		if u.Type.ConsumesOnCreation() && !a.consumerHasRequiredUnits(u, dest, a.consumptionPool(dest, player), nil) {
			continue
		}
		cat := u.Type.Category()
		if _, seen := held[cat]; !seen {
			order = append(order, cat)
		}
		held[cat]++
		if cat == unit.FactoryCategory {
			maxPerRegion[cat] = props.FactoriesPerCountry
			perTurn[cat] = 1
		} else {
			maxPerRegion[cat] = u.Type.MaxConstructionsPerTypePerTerritory
			perTurn[cat] = u.Type.ConstructionsPerTerritoryPerTypePerTurn
		}
	}

	wasFactory := a.WasFactoryAtStart(dest, player)
	present := make(map[string]int)
	for _, u := range dest.UnitsMatching(unit.IsFactoryOrConstruction) {
		present[u.Type.Category()]++
	}
	for _, cat := range order {
		limit := maxPerRegion[cat]
		if cat != unit.FactoryCategory && !strings.HasSuffix(cat, structureSuffix) {
			if (wasFactory && props.MoreConstructionsWithFactory) || (!wasFactory && props.MoreConstructionsWithoutFactory) {
				limit = max(limit, dest.Production)
			}
			if props.UnlimitedConstructions {
				limit = max(limit, unlimitedConstructions)
			}
		}
		held[cat] = max(0, min(limit-present[cat], held[cat]))
	}

	for _, u := range unit.Filter(a.placedForQuota(dest, player), unit.IsFactoryOrConstruction) {
		perTurn[u.Type.Category()]--
	}

	for _, cat := range order {
		if n := max(0, min(perTurn[cat], held[cat])); n > 0 {
			allowed[cat] = n
		}
	}
	return allowed
}

// placedForQuota returns the units produced this step that count against
// dest's per-turn construction quota
func (a *Allocator) placedForQuota(dest *board.Region, player shared.PlayerID) []*unit.Unit {
	placed := unit.Copy(a.state.ledger[dest.Name])
	if dest.Water {
		for _, p := range a.Producers(dest, player) {
			placed = append(placed, a.state.ledger[p.Name]...)
		}
	}
	return placed
}

// constructionSlots returns how many units of u's type the allowance admits
func constructionSlots(u *unit.Unit, allowance map[string]int) int {
	t := u.Type
	if !t.IsFactory && (!t.IsConstruction ||
		t.ConstructionsPerTerritoryPerTypePerTurn < 1 ||
		t.MaxConstructionsPerTypePerTerritory < 1 ||
		allowance[t.ConstructionType] == 0) {
		return 0
	}
	return allowance[t.Category()]
}
