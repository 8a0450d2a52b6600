package helpers

import (
	"fmt"

	"github.com/andrescamacho/placement-go/internal/domain/board"
	"github.com/andrescamacho/placement-go/internal/domain/rules"
	"github.com/andrescamacho/placement-go/internal/domain/shared"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
)

// BoardBuilder assembles small maps for tests. The first error is kept and
// returned by Build; later calls become no-ops.
type BoardBuilder struct {
	board *board.Board
	rules *rules.Config
	types map[string]*unit.Type
	seq   int
	err   error
}

// NewBoardBuilder creates a builder with the classic unit types defined:
// infantry, armour, factory, fighter, bomber, transport, carrier and battleship
func NewBoardBuilder() *BoardBuilder {
	bb := &BoardBuilder{
		board: board.NewBoard(),
		rules: rules.NewConfig(),
		types: make(map[string]*unit.Type),
	}
	bb.DefineType("infantry", unit.ClassLand, nil)
	bb.DefineType("armour", unit.ClassLand, nil)
	bb.DefineType("factory", unit.ClassLand, func(t *unit.Type) {
		t.IsFactory = true
		t.IsInfrastructure = true
	})
	bb.DefineType("fighter", unit.ClassAir, func(t *unit.Type) { t.CarrierCost = 1 })
	bb.DefineType("bomber", unit.ClassAir, nil)
	bb.DefineType("transport", unit.ClassSea, nil)
	bb.DefineType("carrier", unit.ClassSea, func(t *unit.Type) { t.CarrierCapacity = 2 })
	bb.DefineType("battleship", unit.ClassSea, nil)
	return bb
}

// Rules returns the rule set under construction
func (bb *BoardBuilder) Rules() *rules.Config { return bb.rules }

// DefineType adds or replaces a unit type
func (bb *BoardBuilder) DefineType(name string, class unit.Class, configure func(t *unit.Type)) *BoardBuilder {
	if bb.err != nil {
		return bb
	}
	t, err := unit.NewType(name, class)
	if err != nil {
		bb.err = err
		return bb
	}
	if configure != nil {
		configure(t)
	}
	bb.types[name] = t
	return bb
}

// Land adds a land territory
func (bb *BoardBuilder) Land(name, owner string, production int) *BoardBuilder {
	if bb.err != nil {
		return bb
	}
	r, err := board.NewLandRegion(name, shared.MustNewPlayerID(owner), production)
	if err != nil {
		bb.err = err
		return bb
	}
	bb.err = bb.board.AddRegion(r)
	return bb
}

// Sea adds a sea zone
func (bb *BoardBuilder) Sea(name string) *BoardBuilder {
	if bb.err != nil {
		return bb
	}
	r, err := board.NewSeaZone(name)
	if err != nil {
		bb.err = err
		return bb
	}
	bb.err = bb.board.AddRegion(r)
	return bb
}

// Connect makes two regions adjacent
func (bb *BoardBuilder) Connect(a, b string) *BoardBuilder {
	if bb.err != nil {
		return bb
	}
	bb.err = bb.board.Connect(a, b)
	return bb
}

// Ally makes two players allies
func (bb *BoardBuilder) Ally(a, b string) *BoardBuilder {
	if bb.err != nil {
		return bb
	}
	bb.board.Ally(shared.MustNewPlayerID(a), shared.MustNewPlayerID(b))
	return bb
}

// Factory puts an original factory of owner in region
func (bb *BoardBuilder) Factory(region, owner string) *BoardBuilder {
	if bb.err != nil {
		return bb
	}
	r, err := bb.board.Region(region)
	if err != nil {
		bb.err = err
		return bb
	}
	r.OriginalFactory = true
	return bb.Put(region, "factory", 1, owner)
}

// Put places n units of typeName owned by owner in region, as present at start of step
func (bb *BoardBuilder) Put(region, typeName string, n int, owner string) *BoardBuilder {
	units := bb.newUnits(typeName, n, owner)
	if bb.err != nil {
		return bb
	}
	bb.err = bb.board.Apply(&board.AddUnits{Region: region, Units: units})
	return bb
}

// Hold gives owner n units of typeName to place
func (bb *BoardBuilder) Hold(typeName string, n int, owner string) *BoardBuilder {
	units := bb.newUnits(typeName, n, owner)
	if bb.err != nil {
		return bb
	}
	bb.err = bb.board.GiveUnits(shared.MustNewPlayerID(owner), units...)
	return bb
}

// Build returns the board and rule set, or the first error met while building
func (bb *BoardBuilder) Build() (*board.Board, *rules.Config, error) {
	if bb.err != nil {
		return nil, nil, bb.err
	}
	return bb.board, bb.rules, nil
}

func (bb *BoardBuilder) newUnits(typeName string, n int, owner string) []*unit.Unit {
	if bb.err != nil {
		return nil
	}
	t, ok := bb.types[typeName]
	if !ok {
		bb.err = fmt.Errorf("unknown unit type %s", typeName)
		return nil
	}
	player := shared.MustNewPlayerID(owner)
	out := make([]*unit.Unit, 0, n)
	for i := 0; i < n; i++ {
		bb.seq++
		u, err := unit.New(fmt.Sprintf("%s-%03d", typeName, bb.seq), t, player)
		if err != nil {
			bb.err = err
			return nil
		}
		u.OriginalOwner = player
		out = append(out, u)
	}
	return out
}

// HeldIDs returns the ids of the units player still has to place
func HeldIDs(b *board.Board, player string) []string {
	return unit.IDs(b.Held(shared.MustNewPlayerID(player)))
}
