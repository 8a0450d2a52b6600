package board

import (
	"fmt"

	"github.com/andrescamacho/placement-go/internal/domain/shared"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
)

// OpKind identifies a primitive change in its serialized form
type OpKind string

const (
	OpAddUnits             OpKind = "ADD_UNITS"
	OpRemoveUnits          OpKind = "REMOVE_UNITS"
	OpAddHeld              OpKind = "ADD_HELD"
	OpRemoveHeld           OpKind = "REMOVE_HELD"
	OpSetOriginalOwner     OpKind = "SET_ORIGINAL_OWNER"
	OpRestoreOriginalOwner OpKind = "RESTORE_ORIGINAL_OWNER"
)

// Op is the serializable form of a primitive change. Units are referenced by id.
type Op struct {
	Kind     OpKind   `json:"kind"`
	Region   string   `json:"region,omitempty"`
	Player   string   `json:"player,omitempty"`
	Units    []string `json:"units"`
	Previous []string `json:"previous,omitempty"`
}

// Flatten converts a change into its ordered list of primitive ops
func Flatten(c Change) ([]Op, error) {
	switch ch := c.(type) {
	case *Composite:
		var ops []Op
		for _, sub := range ch.Changes {
			subOps, err := Flatten(sub)
			if err != nil {
				return nil, err
			}
			ops = append(ops, subOps...)
		}
		return ops, nil
	case *AddUnits:
		return []Op{{Kind: OpAddUnits, Region: ch.Region, Units: unit.IDs(ch.Units)}}, nil
	case *RemoveUnits:
		return []Op{{Kind: OpRemoveUnits, Region: ch.Region, Units: unit.IDs(ch.Units)}}, nil
	case *AddHeld:
		return []Op{{Kind: OpAddHeld, Player: ch.Player.Value(), Units: unit.IDs(ch.Units)}}, nil
	case *RemoveHeld:
		return []Op{{Kind: OpRemoveHeld, Player: ch.Player.Value(), Units: unit.IDs(ch.Units)}}, nil
	case *SetOriginalOwner:
		return []Op{{Kind: OpSetOriginalOwner, Player: ch.Owner.Value(), Units: unit.IDs(ch.Units), Previous: playerNames(ch.Previous)}}, nil
	case *restoreOriginalOwner:
		f := ch.forward
		return []Op{{Kind: OpRestoreOriginalOwner, Player: f.Owner.Value(), Units: unit.IDs(f.Units), Previous: playerNames(f.Previous)}}, nil
	default:
		return nil, fmt.Errorf("cannot serialize change of type %T", c)
	}
}

// Rebuild turns serialized ops back into a composite change, resolving units
// through the board's unit registry
func Rebuild(b *Board, ops []Op) (*Composite, error) {
	out := &Composite{}
	for i, op := range ops {
		units, err := b.UnitsByID(op.Units)
		if err != nil {
			return nil, fmt.Errorf("op %d (%s): %w", i, op.Kind, err)
		}
		player := playerFromName(op.Player)
		switch op.Kind {
		case OpAddUnits:
			out.Add(&AddUnits{Region: op.Region, Units: units})
		case OpRemoveUnits:
			out.Add(&RemoveUnits{Region: op.Region, Units: units})
		case OpAddHeld:
			out.Add(&AddHeld{Player: player, Units: units})
		case OpRemoveHeld:
			out.Add(&RemoveHeld{Player: player, Units: units})
		case OpSetOriginalOwner, OpRestoreOriginalOwner:
			if len(op.Previous) != len(units) {
				return nil, fmt.Errorf("op %d (%s): %d units but %d previous owners", i, op.Kind, len(units), len(op.Previous))
			}
			previous := make([]shared.PlayerID, len(op.Previous))
			for j, name := range op.Previous {
				previous[j] = playerFromName(name)
			}
			forward := &SetOriginalOwner{Units: units, Owner: player, Previous: previous}
			if op.Kind == OpSetOriginalOwner {
				out.Add(forward)
			} else {
				out.Add(forward.Invert())
			}
		default:
			return nil, fmt.Errorf("op %d: unknown kind %q", i, op.Kind)
		}
	}
	return out, nil
}

func playerNames(players []shared.PlayerID) []string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = p.Value()
	}
	return out
}

func playerFromName(name string) shared.PlayerID {
	if name == "" {
		return shared.Neutral
	}
	return shared.MustNewPlayerID(name)
}
