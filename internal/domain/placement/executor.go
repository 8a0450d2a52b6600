package placement

import (
	"context"
	"fmt"

	"github.com/andrescamacho/placement-go/internal/domain/board"
	"github.com/andrescamacho/placement-go/internal/domain/history"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
)

// performPlace spreads units over dest's producers, best first. A producer
// that cannot take everything left, but could if its earlier sea zone
// placements moved to other producers, first hands those placements over.
func (e *Engine) performPlace(ctx context.Context, units []*unit.Unit, dest *board.Region) error {
	ranked := e.alloc.RankProducers(dest, units, e.player, true)
	remaining := units
	used := make(map[string]bool)
	var reallocated []Reallocation

	for _, producer := range ranked {
		if len(remaining) == 0 {
			break
		}
		capacity := e.alloc.MaxFrom(producer, remaining, dest, e.player, false, nil)
		if !capacity.Covers(len(remaining)) {
			switched := e.alloc.MaxFrom(producer, remaining, dest, e.player, true, map[string]bool{producer.Name: true})
			if capacity.Less(switched) {
				done, err := e.freePlacementCapacity(ctx, producer, len(remaining)-int(capacity), dest, used)
				if err != nil {
					return err
				}
				reallocated = append(reallocated, done...)
				capacity = e.alloc.MaxFrom(producer, remaining, dest, e.player, false, nil)
			}
		}
		n := capacity.Take(len(remaining))
		if n == 0 {
			continue
		}
		rec, err := e.performPlaceFrom(ctx, producer, remaining[:n], dest)
		if err != nil {
			return err
		}
		rec.Reallocations, reallocated = reallocated, nil
		remaining = remaining[n:]
		used[producer.Name] = true
	}

	if len(remaining) > 0 {
		return invariant("place", "%d units left unassigned in %s after visiting %d producers", len(remaining), dest.Name, len(ranked))
	}
	return nil
}

// performPlaceFrom commits units into dest, charged to producer, as one record
func (e *Engine) performPlaceFrom(ctx context.Context, producer *board.Region, units []*unit.Unit, dest *board.Region) (*Record, error) {
	placed := unit.Copy(units)
	change := board.NewComposite()

	ok, removal, consumed := e.alloc.CanConsume(placed, dest, e.player, true)
	if !ok {
		return nil, invariant("place", "units to consume in %s vanished after validation", dest.Name)
	}
	change.Add(removal)

	if infra := unit.Filter(placed, unit.IsFactoryOrInfrastructure); len(infra) > 0 {
		change.Add(board.NewSetOriginalOwner(infra, e.player))
	}

	relocation := e.moveAirOntoNewCarriers(ctx, dest, placed)
	if relocation != nil {
		change.Add(relocation.change)
	}

	change.Add(&board.RemoveHeld{Player: e.player, Units: placed})
	change.Add(&board.AddUnits{Region: dest.Name, Units: placed})

	if err := e.apply(change); err != nil {
		return nil, invariant("place", "applying placement into %s: %v", dest.Name, err)
	}

	rec := &Record{
		ID:          NewRecordID(),
		Player:      e.player,
		Producer:    producer.Name,
		Destination: dest.Name,
		Units:       placed,
		Change:      change,
		PlacedAt:    e.clock.Now(),
	}
	e.state.append(rec)
	e.state.charge(producer.Name, placed)

	if len(consumed) > 0 {
		desc := fmt.Sprintf("Units in %s being upgraded or consumed: %s", dest.Name, unit.Describe(consumed))
		if _, err := e.emit(history.EventTypeConsumption, dest.Name, desc, consumed, nil); err != nil {
			return nil, err
		}
	}
	parent, err := e.emit(history.EventTypePlacement, dest.Name, rec.Description(), placed, nil)
	if err != nil {
		return nil, err
	}
	if relocation != nil {
		desc := fmt.Sprintf("%s moved from %s to %s", unit.Describe(relocation.units), relocation.from.Name, dest.Name)
		if _, err := e.emit(history.EventTypeAirRelocation, dest.Name, desc, relocation.units, parent); err != nil {
			return nil, err
		}
	}
	return rec, nil
}
