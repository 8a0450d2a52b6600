package board

import (
	"fmt"

	"github.com/andrescamacho/placement-go/internal/domain/shared"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
)

// Change is a reversible mutation of the board.
// Invert().Apply() exactly reverses Apply() on the same board.
type Change interface {
	Apply(b *Board) error
	Invert() Change
	IsEmpty() bool
}

// AddUnits places units into a region
type AddUnits struct {
	Region string
	Units  []*unit.Unit
}

func (c *AddUnits) Apply(b *Board) error {
	r, err := b.Region(c.Region)
	if err != nil {
		return err
	}
	for _, u := range c.Units {
		if err := b.register(u); err != nil {
			return err
		}
	}
	r.addUnits(c.Units)
	return nil
}

func (c *AddUnits) Invert() Change {
	return &RemoveUnits{Region: c.Region, Units: unit.Copy(c.Units)}
}

func (c *AddUnits) IsEmpty() bool { return len(c.Units) == 0 }

// RemoveUnits takes units out of a region
type RemoveUnits struct {
	Region string
	Units  []*unit.Unit
}

func (c *RemoveUnits) Apply(b *Board) error {
	r, err := b.Region(c.Region)
	if err != nil {
		return err
	}
	return r.removeUnits(c.Units)
}

func (c *RemoveUnits) Invert() Change {
	return &AddUnits{Region: c.Region, Units: unit.Copy(c.Units)}
}

func (c *RemoveUnits) IsEmpty() bool { return len(c.Units) == 0 }

// AddHeld returns units to a player's held pool
type AddHeld struct {
	Player shared.PlayerID
	Units  []*unit.Unit
}

func (c *AddHeld) Apply(b *Board) error {
	return b.GiveUnits(c.Player, c.Units...)
}

func (c *AddHeld) Invert() Change {
	return &RemoveHeld{Player: c.Player, Units: unit.Copy(c.Units)}
}

func (c *AddHeld) IsEmpty() bool { return len(c.Units) == 0 }

// RemoveHeld takes units out of a player's held pool
type RemoveHeld struct {
	Player shared.PlayerID
	Units  []*unit.Unit
}

func (c *RemoveHeld) Apply(b *Board) error {
	return b.removeHeld(c.Player, c.Units)
}

func (c *RemoveHeld) Invert() Change {
	return &AddHeld{Player: c.Player, Units: unit.Copy(c.Units)}
}

func (c *RemoveHeld) IsEmpty() bool { return len(c.Units) == 0 }

// SetOriginalOwner records who originally owned factory and infrastructure units.
// Previous holds the owner of each unit before the change, index-aligned with Units.
type SetOriginalOwner struct {
	Units    []*unit.Unit
	Owner    shared.PlayerID
	Previous []shared.PlayerID
}

// NewSetOriginalOwner captures the current original owners of units so the change can be inverted
func NewSetOriginalOwner(units []*unit.Unit, owner shared.PlayerID) *SetOriginalOwner {
	previous := make([]shared.PlayerID, len(units))
	for i, u := range units {
		previous[i] = u.OriginalOwner
	}
	return &SetOriginalOwner{Units: unit.Copy(units), Owner: owner, Previous: previous}
}

func (c *SetOriginalOwner) Apply(b *Board) error {
	if len(c.Previous) != len(c.Units) {
		return fmt.Errorf("original owner change: %d units but %d previous owners", len(c.Units), len(c.Previous))
	}
	for _, u := range c.Units {
		u.OriginalOwner = c.Owner
	}
	return nil
}

func (c *SetOriginalOwner) Invert() Change {
	return &restoreOriginalOwner{forward: c}
}

func (c *SetOriginalOwner) IsEmpty() bool { return len(c.Units) == 0 }

type restoreOriginalOwner struct {
	forward *SetOriginalOwner
}

func (c *restoreOriginalOwner) Apply(b *Board) error {
	if len(c.forward.Previous) != len(c.forward.Units) {
		return fmt.Errorf("original owner change: %d units but %d previous owners", len(c.forward.Units), len(c.forward.Previous))
	}
	for i, u := range c.forward.Units {
		u.OriginalOwner = c.forward.Previous[i]
	}
	return nil
}

func (c *restoreOriginalOwner) Invert() Change { return c.forward }

func (c *restoreOriginalOwner) IsEmpty() bool { return c.forward.IsEmpty() }

// Composite applies changes in order and inverts them in reverse order
type Composite struct {
	Changes []Change
}

// NewComposite creates a composite from the non-empty changes given
func NewComposite(changes ...Change) *Composite {
	c := &Composite{}
	for _, ch := range changes {
		c.Add(ch)
	}
	return c
}

// Add appends a change, skipping empty ones
func (c *Composite) Add(ch Change) {
	if ch == nil || ch.IsEmpty() {
		return
	}
	c.Changes = append(c.Changes, ch)
}

// Apply applies every change. If one fails, the ones already applied are reverted.
func (c *Composite) Apply(b *Board) error {
	for i, ch := range c.Changes {
		if err := ch.Apply(b); err != nil {
			for j := i - 1; j >= 0; j-- {
				if rerr := c.Changes[j].Invert().Apply(b); rerr != nil {
					return fmt.Errorf("%w (rollback failed: %v)", err, rerr)
				}
			}
			return err
		}
	}
	return nil
}

func (c *Composite) Invert() Change {
	inv := &Composite{Changes: make([]Change, 0, len(c.Changes))}
	for i := len(c.Changes) - 1; i >= 0; i-- {
		inv.Changes = append(inv.Changes, c.Changes[i].Invert())
	}
	return inv
}

func (c *Composite) IsEmpty() bool {
	for _, ch := range c.Changes {
		if !ch.IsEmpty() {
			return false
		}
	}
	return true
}

// MoveUnits relocates units between two regions as a single change
func MoveUnits(from, to string, units []*unit.Unit) *Composite {
	return NewComposite(
		&RemoveUnits{Region: from, Units: unit.Copy(units)},
		&AddUnits{Region: to, Units: unit.Copy(units)},
	)
}
