package placement

import (
	"context"

	"github.com/andrescamacho/placement-go/internal/domain/board"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
)

// RelocationChooser lets the player pick which fighters in from move onto
// the carriers just placed in to. Candidates are sorted by id. Returning an
// error or an invalid choice falls back to the default pick.
type RelocationChooser interface {
	ChooseUnitsToRelocate(ctx context.Context, candidates []*unit.Unit, from, to *board.Region, spareLift int) ([]*unit.Unit, error)
}

// ChooserFunc adapts a function to RelocationChooser
type ChooserFunc func(ctx context.Context, candidates []*unit.Unit, from, to *board.Region, spareLift int) ([]*unit.Unit, error)

func (f ChooserFunc) ChooseUnitsToRelocate(ctx context.Context, candidates []*unit.Unit, from, to *board.Region, spareLift int) ([]*unit.Unit, error) {
	return f(ctx, candidates, from, to, spareLift)
}

type relocation struct {
	from   *board.Region
	units  []*unit.Unit
	change board.Change
}

// moveAirOntoNewCarriers moves fighters from one neighbouring factory
// territory onto carriers being placed at sea. Only the first qualifying
// neighbour contributes.
func (e *Engine) moveAirOntoNewCarriers(ctx context.Context, dest *board.Region, placed []*unit.Unit) *relocation {
	props := e.rules.Properties
	if !dest.Water || !props.MoveExistingFightersToNewCarriers || props.LHTRCarrierProduction {
		return nil
	}
	if !unit.Any(placed, unit.IsCarrier) {
		return nil
	}
	spare := unit.CarrierCapacity(placed) - unit.CarrierCost(placed)
	if spare <= 0 {
		return nil
	}

	eligible := unit.And(unit.CanLandOnCarrier, unit.OwnedBy(e.player))
	for _, n := range e.board.NeighborsWithin(dest.Name, 1) {
		if n.Water || !n.AnyUnit(unit.IsFactoryOrCanProduce) || !n.AnyUnit(eligible) || n.Conquered {
			continue
		}
		if unit.Any(e.state.ledger[n.Name], unit.IsFactoryOrCanProduce) {
			continue
		}
		candidates := n.UnitsMatching(eligible)
		unit.SortByID(candidates)
		fallback := fitLift(candidates, spare)
		if len(fallback) == 0 {
			continue
		}

		chosen := fallback
		if e.chooser != nil {
			picked, err := e.chooser.ChooseUnitsToRelocate(ctx, candidates, n, dest, spare)
			if err == nil && unit.ContainsAll(candidates, picked) && unit.CarrierCost(picked) <= spare {
				chosen = picked
			}
		}
		if len(chosen) == 0 {
			return nil
		}
		return &relocation{
			from:   n,
			units:  unit.Copy(chosen),
			change: board.MoveUnits(n.Name, dest.Name, chosen),
		}
	}
	return nil
}

// fitLift takes candidates in order while their total carrier cost fits in lift
func fitLift(candidates []*unit.Unit, lift int) []*unit.Unit {
	var out []*unit.Unit
	cost := 0
	for _, u := range candidates {
		if cost+u.Type.CarrierCost > lift {
			break
		}
		cost += u.Type.CarrierCost
		out = append(out, u)
	}
	return out
}
