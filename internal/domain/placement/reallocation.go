package placement

import (
	"context"
	"math"
	"sort"

	"github.com/andrescamacho/placement-go/internal/domain/board"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
)

type split struct {
	record      *Record
	alternative *board.Region
}

// freePlacementCapacity tries to free need units of producer's capacity by
// handing its placements into other sea zones to alternative producers.
// Whole records are handed over first; records no alternative can take whole
// are split afterwards, and only if still short. Producers in used, which
// already took part of the current request, are never alternatives. The
// returned reallocations let undo put the earlier records back.
func (e *Engine) freePlacementCapacity(ctx context.Context, producer *board.Region, need int, dest *board.Region, used map[string]bool) ([]Reallocation, error) {
	if e.alloc.MaxFrom(producer, nil, dest, e.player, false, nil).IsUnlimited() {
		return nil, invariant("free capacity", "producer %s has unlimited production", producer.Name)
	}

	var candidates []*Record
	var zones []string
	perZone := make(map[string]int)
	for _, rec := range e.state.log {
		if rec.Producer != producer.Name || rec.Destination == dest.Name {
			continue
		}
		zone, err := e.board.Region(rec.Destination)
		if err != nil || !zone.Water {
			continue
		}
		candidates = append(candidates, rec)
		if _, ok := perZone[zone.Name]; !ok {
			zones = append(zones, zone.Name)
		}
		perZone[zone.Name] += len(rec.Units)
	}

	freed := 0
	var done []Reallocation
	var splits []split
	for _, zoneName := range zones {
		zone, _ := e.board.Region(zoneName)
		placed := e.alloc.PlacedSoFar(zone, e.player)
		wanted := min(perZone[zoneName], need-freed)
		freedHere := 0

		for _, alt := range e.alloc.RankProducers(zone, placed, e.player, false) {
			if alt.Name == producer.Name || used[alt.Name] {
				continue
			}
			left := e.alloc.MaxFrom(alt, placed, zone, e.player, false, nil)
			room := int(left)
			if left.IsUnlimited() {
				room = math.MaxInt32
			}
			for _, rec := range candidates {
				if rec.Destination != zoneName || rec.Producer != producer.Name {
					continue
				}
				if len(rec.Units) <= room {
					rec.Producer = alt.Name
					e.state.discharge(producer.Name, rec.Units)
					e.state.charge(alt.Name, rec.Units)
					done = append(done, Reallocation{Kind: ReallocationHandoff, Record: rec.ID, From: producer.Name, To: alt.Name})
					freedHere += len(rec.Units)
					room -= len(rec.Units)
				} else {
					splits = append(splits, split{record: rec, alternative: alt})
				}
				if freedHere >= wanted {
					break
				}
			}
			if freedHere >= wanted {
				break
			}
		}

		freed += freedHere
		if freed >= need {
			return done, nil
		}
	}

	for _, s := range splits {
		if freed >= need {
			break
		}
		rec := s.record
		if !e.state.contains(rec) || rec.Producer != producer.Name {
			continue
		}
		zone, _ := e.board.Region(rec.Destination)
		left := e.alloc.MaxFrom(s.alternative, e.alloc.PlacedSoFar(zone, e.player), zone, e.player, false, nil)
		take := left.Take(len(rec.Units))
		if take == 0 {
			continue
		}
		toAlternative := unit.Copy(rec.Units[:take])
		toProducer := unit.Copy(rec.Units[take:])
		original := rec.clone()
		if err := e.undo(rec.Index); err != nil {
			return nil, err
		}
		part, err := e.performPlaceFrom(ctx, s.alternative, toAlternative, zone)
		if err != nil {
			return nil, err
		}
		parts := []RecordID{part.ID}
		if len(toProducer) > 0 {
			rest, err := e.performPlaceFrom(ctx, producer, toProducer, zone)
			if err != nil {
				return nil, err
			}
			parts = append(parts, rest.ID)
		}
		done = append(done, Reallocation{Kind: ReallocationSplit, From: producer.Name, To: s.alternative.Name, Original: original, Parts: parts})
		freed += take
	}
	return done, nil
}

// reverseReallocations puts back, latest first, the earlier records rec's
// placement changed. A change is left in place when the records it touched
// were undone or changed since, or when the original producer no longer has
// room for them.
func (e *Engine) reverseReallocations(rec *Record) {
	for i := len(rec.Reallocations) - 1; i >= 0; i-- {
		ra := rec.Reallocations[i]
		switch ra.Kind {
		case ReallocationHandoff:
			e.reverseHandoff(ra)
		case ReallocationSplit:
			e.reverseSplit(ra)
		}
	}
}

func (e *Engine) reverseHandoff(ra Reallocation) {
	rec := e.state.find(ra.Record)
	if rec == nil || rec.Producer != ra.To {
		return
	}
	from, err := e.board.Region(ra.From)
	if err != nil {
		return
	}
	zone, err := e.board.Region(rec.Destination)
	if err != nil {
		return
	}
	if !e.alloc.MaxFrom(from, rec.Units, zone, e.player, false, nil).Covers(len(rec.Units)) {
		return
	}
	rec.Producer = ra.From
	e.state.discharge(ra.To, rec.Units)
	e.state.charge(ra.From, rec.Units)
}

func (e *Engine) reverseSplit(ra Reallocation) {
	orig := ra.Original
	parts := make([]*Record, 0, len(ra.Parts))
	for _, id := range ra.Parts {
		part := e.state.find(id)
		if part == nil {
			return
		}
		parts = append(parts, part)
	}
	moved := 0
	for _, part := range parts {
		switch part.Producer {
		case ra.To:
			moved += len(part.Units)
		case ra.From:
		default:
			return
		}
	}
	from, err := e.board.Region(ra.From)
	if err != nil {
		return
	}
	zone, err := e.board.Region(orig.Destination)
	if err != nil {
		return
	}
	if !e.alloc.MaxFrom(from, orig.Units, zone, e.player, false, nil).Covers(moved) {
		return
	}

	sort.Slice(parts, func(i, j int) bool { return parts[i].Index > parts[j].Index })
	changes := make([]board.Change, 0, len(parts)+1)
	for _, part := range parts {
		changes = append(changes, part.Change.Invert())
	}
	changes = append(changes, orig.Change)
	if !e.applyAll(changes) {
		return
	}

	for _, part := range parts {
		e.state.discharge(part.Producer, part.Units)
		e.state.remove(part.Index)
	}
	restored := orig.clone()
	e.state.insert(orig.Index, restored)
	e.state.charge(restored.Producer, restored.Units)
}
