package unit

import (
	"fmt"

	"github.com/andrescamacho/placement-go/internal/domain/shared"
)

// Unit is a single game piece. Units are compared by identity (pointer);
// ID is stable across save/load and is used for deterministic ordering.
type Unit struct {
	ID            string          `json:"id"`
	Type          *Type           `json:"-"`
	Owner         shared.PlayerID `json:"-"`
	OriginalOwner shared.PlayerID `json:"-"`
	MovementLeft  int             `json:"movement_left"`
	Damage        int             `json:"damage"`
	Disabled      bool            `json:"disabled"`
}

// New creates a unit owned by owner
func New(id string, unitType *Type, owner shared.PlayerID) (*Unit, error) {
	if id == "" {
		return nil, fmt.Errorf("unit id cannot be empty")
	}
	if unitType == nil {
		return nil, fmt.Errorf("unit %s has no type", id)
	}
	return &Unit{
		ID:    id,
		Type:  unitType,
		Owner: owner,
	}, nil
}

// IsDamaged returns true if the unit has taken hits or bombing damage
func (u *Unit) IsDamaged() bool {
	return u.Damage > 0
}

func (u *Unit) String() string {
	return fmt.Sprintf("%s(%s)", u.Type.Name, u.ID)
}
