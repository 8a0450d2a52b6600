package rulescript

import (
	"github.com/andrescamacho/placement-go/internal/domain/board"
	"github.com/andrescamacho/placement-go/internal/domain/placement"
	"github.com/andrescamacho/placement-go/internal/domain/shared"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
)

// Env is what a rule expression sees of one placement request. Fields are
// plain values; methods query the board and the step state.
type Env struct {
	Player      string
	Destination string
	Water       bool
	Owner       string
	Production  int
	Units       int

	alloc  *placement.Allocator
	player shared.PlayerID
	dest   *board.Region
	units  []*unit.Unit
}

func newEnv(a *placement.Allocator, req placement.Request) Env {
	return Env{
		Player:      req.Player.Value(),
		Destination: req.Destination.Name,
		Water:       req.Destination.Water,
		Owner:       req.Destination.Owner.Value(),
		Production:  req.Destination.Production,
		Units:       len(req.Units),
		alloc:       a,
		player:      req.Player,
		dest:        req.Destination,
		units:       req.Units,
	}
}

// Requested counts the requested units of a type
func (e Env) Requested(typeName string) int {
	return unit.Count(e.units, unit.OfTypeName(typeName))
}

// Present counts units of a type already in the destination, any owner
func (e Env) Present(typeName string) int {
	return unit.Count(e.dest.Units, unit.OfTypeName(typeName))
}

// PlacedThisStep counts the player's units placed into the destination this step
func (e Env) PlacedThisStep() int {
	return len(e.alloc.PlacedSoFar(e.dest, e.player))
}

// Produced counts units charged to a producer this step
func (e Env) Produced(producer string) int {
	return len(e.alloc.Produced(producer))
}

// Held counts the player's units of a type still waiting to be placed
func (e Env) Held(typeName string) int {
	return unit.Count(e.alloc.Board().Held(e.player), unit.OfTypeName(typeName))
}

// IsCapital returns true if the destination is the player's capital
func (e Env) IsCapital() bool {
	return e.dest.IsCapitalOf(e.player)
}

// IsOriginal returns true if the player owned the destination at scenario start
func (e Env) IsOriginal() bool {
	return e.dest.IsOriginallyOwnedBy(e.player)
}

// Adjacent returns true if the destination borders region
func (e Env) Adjacent(region string) bool {
	return e.alloc.Board().Adjacent(e.dest.Name, region)
}

// Allied returns true if player is the placing player or one of its allies
func (e Env) Allied(player string) bool {
	other, err := shared.NewPlayerID(player)
	if err != nil {
		return false
	}
	return e.alloc.Board().Allied(e.player, other)
}

// EnemyUnits counts units in the destination owned by the player's enemies
func (e Env) EnemyUnits() int {
	return unit.Count(e.dest.Units, e.alloc.Board().IsEnemyUnit(e.player))
}
