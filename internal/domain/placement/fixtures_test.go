package placement_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/placement-go/internal/domain/board"
	"github.com/andrescamacho/placement-go/internal/domain/history"
	"github.com/andrescamacho/placement-go/internal/domain/placement"
	"github.com/andrescamacho/placement-go/internal/domain/rules"
	"github.com/andrescamacho/placement-go/internal/domain/shared"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
)

var (
	germany = shared.MustNewPlayerID("Germany")
	russia  = shared.MustNewPlayerID("Russia")
)

// world is a small map builder for placement tests
type world struct {
	t       *testing.T
	board   *board.Board
	rules   *rules.Config
	types   map[string]*unit.Type
	journal *history.Journal
	clock   *shared.MockClock
	seq     int
}

func newWorld(t *testing.T) *world {
	t.Helper()
	w := &world{
		t:       t,
		board:   board.NewBoard(),
		rules:   rules.NewConfig(),
		types:   make(map[string]*unit.Type),
		journal: history.NewJournal(),
		clock:   shared.NewMockClock(time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)),
	}

	w.defineType("infantry", unit.ClassLand, nil)
	w.defineType("armour", unit.ClassLand, nil)
	w.defineType("factory", unit.ClassLand, func(t *unit.Type) {
		t.IsFactory = true
		t.IsInfrastructure = true
	})
	w.defineType("fighter", unit.ClassAir, func(t *unit.Type) { t.CarrierCost = 1 })
	w.defineType("bomber", unit.ClassAir, nil)
	w.defineType("transport", unit.ClassSea, nil)
	w.defineType("carrier", unit.ClassSea, func(t *unit.Type) { t.CarrierCapacity = 2 })
	w.defineType("battleship", unit.ClassSea, nil)
	return w
}

func (w *world) defineType(name string, class unit.Class, configure func(t *unit.Type)) *unit.Type {
	t, err := unit.NewType(name, class)
	require.NoError(w.t, err)
	if configure != nil {
		configure(t)
	}
	w.types[name] = t
	return t
}

func (w *world) land(name string, owner shared.PlayerID, production int) *board.Region {
	r, err := board.NewLandRegion(name, owner, production)
	require.NoError(w.t, err)
	require.NoError(w.t, w.board.AddRegion(r))
	return r
}

func (w *world) sea(name string) *board.Region {
	r, err := board.NewSeaZone(name)
	require.NoError(w.t, err)
	require.NoError(w.t, w.board.AddRegion(r))
	return r
}

func (w *world) connect(a, b string) {
	require.NoError(w.t, w.board.Connect(a, b))
}

func (w *world) newUnits(typeName string, n int, owner shared.PlayerID) []*unit.Unit {
	t, ok := w.types[typeName]
	require.True(w.t, ok, "unknown unit type %s", typeName)
	out := make([]*unit.Unit, 0, n)
	for i := 0; i < n; i++ {
		w.seq++
		u, err := unit.New(fmt.Sprintf("%s-%03d", typeName, w.seq), t, owner)
		require.NoError(w.t, err)
		u.OriginalOwner = owner
		out = append(out, u)
	}
	return out
}

// put places units on the map as if they were there at start of step
func (w *world) put(region string, typeName string, n int, owner shared.PlayerID) []*unit.Unit {
	units := w.newUnits(typeName, n, owner)
	require.NoError(w.t, w.board.Apply(&board.AddUnits{Region: region, Units: units}))
	return units
}

// factory gives owner a factory in region; original marks it as a starting factory
func (w *world) factory(region string, owner shared.PlayerID, original bool) {
	r, err := w.board.Region(region)
	require.NoError(w.t, err)
	r.OriginalFactory = original
	w.put(region, "factory", 1, owner)
}

func (w *world) hold(typeName string, n int, owner shared.PlayerID) []*unit.Unit {
	units := w.newUnits(typeName, n, owner)
	require.NoError(w.t, w.board.GiveUnits(owner, units...))
	return units
}

func (w *world) engine(opts ...placement.Option) *placement.Engine {
	opts = append([]placement.Option{placement.WithJournal(w.journal), placement.WithClock(w.clock)}, opts...)
	e, err := placement.NewEngine(w.board, w.rules, germany, nil, opts...)
	require.NoError(w.t, err)
	return e
}

func (w *world) region(name string) *board.Region {
	r, err := w.board.Region(name)
	require.NoError(w.t, err)
	return r
}

func (w *world) count(region, typeName string) int {
	return unit.Count(w.region(region).Units, unit.OfTypeName(typeName))
}

func rejection(t *testing.T, err error) *placement.RejectedError {
	t.Helper()
	var rejected *placement.RejectedError
	require.ErrorAs(t, err, &rejected)
	return rejected
}
