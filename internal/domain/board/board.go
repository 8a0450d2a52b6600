package board

import (
	"fmt"

	"github.com/andrescamacho/placement-go/internal/domain/shared"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
)

// Board is the region graph together with the players' held (bought but not
// yet placed) units. Adjacency is kept in declaration order so that producer
// discovery and neighbour scans are deterministic.
type Board struct {
	regions   map[string]*Region
	order     []string
	adjacency map[string][]string
	held      map[string][]*unit.Unit
	alliances map[string]map[string]bool
	registry  map[string]*unit.Unit
}

// NewBoard creates an empty board
func NewBoard() *Board {
	return &Board{
		regions:   make(map[string]*Region),
		adjacency: make(map[string][]string),
		held:      make(map[string][]*unit.Unit),
		alliances: make(map[string]map[string]bool),
		registry:  make(map[string]*unit.Unit),
	}
}

// AddRegion registers a region and the units already present in it
func (b *Board) AddRegion(r *Region) error {
	if r == nil {
		return fmt.Errorf("region cannot be nil")
	}
	if _, exists := b.regions[r.Name]; exists {
		return fmt.Errorf("region %s already exists", r.Name)
	}
	for _, u := range r.Units {
		if err := b.register(u); err != nil {
			return err
		}
	}
	b.regions[r.Name] = r
	b.order = append(b.order, r.Name)
	return nil
}

// Connect makes two regions adjacent to each other
func (b *Board) Connect(a, c string) error {
	if a == c {
		return fmt.Errorf("region %s cannot border itself", a)
	}
	if _, ok := b.regions[a]; !ok {
		return shared.NewNotFoundError("region", a)
	}
	if _, ok := b.regions[c]; !ok {
		return shared.NewNotFoundError("region", c)
	}
	if !contains(b.adjacency[a], c) {
		b.adjacency[a] = append(b.adjacency[a], c)
	}
	if !contains(b.adjacency[c], a) {
		b.adjacency[c] = append(b.adjacency[c], a)
	}
	return nil
}

// Region looks up a region by name
func (b *Board) Region(name string) (*Region, error) {
	r, ok := b.regions[name]
	if !ok {
		return nil, shared.NewNotFoundError("region", name)
	}
	return r, nil
}

// Regions returns all regions in declaration order
func (b *Board) Regions() []*Region {
	out := make([]*Region, 0, len(b.order))
	for _, name := range b.order {
		out = append(out, b.regions[name])
	}
	return out
}

// Neighbors returns the regions adjacent to name in adjacency order
func (b *Board) Neighbors(name string) []*Region {
	names := b.adjacency[name]
	out := make([]*Region, 0, len(names))
	for _, n := range names {
		out = append(out, b.regions[n])
	}
	return out
}

// NeighborsWithin returns every region reachable from name in at most
// distance steps, excluding name itself, in breadth-first order
func (b *Board) NeighborsWithin(name string, distance int) []*Region {
	visited := map[string]bool{name: true}
	frontier := []string{name}
	var out []*Region
	for step := 0; step < distance && len(frontier) > 0; step++ {
		var next []string
		for _, current := range frontier {
			for _, n := range b.adjacency[current] {
				if visited[n] {
					continue
				}
				visited[n] = true
				next = append(next, n)
				out = append(out, b.regions[n])
			}
		}
		frontier = next
	}
	return out
}

// Adjacent returns true if the two regions share a border
func (b *Board) Adjacent(a, c string) bool {
	return contains(b.adjacency[a], c)
}

// Held returns a copy of the units player has bought but not placed
func (b *Board) Held(player shared.PlayerID) []*unit.Unit {
	return unit.Copy(b.held[player.Value()])
}

// GiveUnits adds freshly bought units to player's held pool
func (b *Board) GiveUnits(player shared.PlayerID, units ...*unit.Unit) error {
	for _, u := range units {
		if err := b.register(u); err != nil {
			return err
		}
	}
	b.held[player.Value()] = append(b.held[player.Value()], units...)
	return nil
}

// Ally records a mutual alliance between two players
func (b *Board) Ally(a, c shared.PlayerID) {
	if b.alliances[a.Value()] == nil {
		b.alliances[a.Value()] = make(map[string]bool)
	}
	if b.alliances[c.Value()] == nil {
		b.alliances[c.Value()] = make(map[string]bool)
	}
	b.alliances[a.Value()][c.Value()] = true
	b.alliances[c.Value()][a.Value()] = true
}

// Allied returns true if the players are the same or allied
func (b *Board) Allied(a, c shared.PlayerID) bool {
	if a.Equals(c) {
		return true
	}
	return b.alliances[a.Value()][c.Value()]
}

// IsEnemyUnit returns a predicate matching units owned by players at war with player.
// Neutral units are never enemies.
func (b *Board) IsEnemyUnit(player shared.PlayerID) unit.Predicate {
	return func(u *unit.Unit) bool {
		return !u.Owner.IsZero() && !b.Allied(u.Owner, player)
	}
}

// IsAlliedUnit returns a predicate matching units owned by player or its allies
func (b *Board) IsAlliedUnit(player shared.PlayerID) unit.Predicate {
	return func(u *unit.Unit) bool {
		return b.Allied(u.Owner, player)
	}
}

// Unit looks up any unit ever registered on the board, including units that
// were consumed or discarded
func (b *Board) Unit(id string) (*unit.Unit, error) {
	u, ok := b.registry[id]
	if !ok {
		return nil, shared.NewNotFoundError("unit", id)
	}
	return u, nil
}

// UnitsByID resolves a list of unit ids
func (b *Board) UnitsByID(ids []string) ([]*unit.Unit, error) {
	out := make([]*unit.Unit, 0, len(ids))
	for _, id := range ids {
		u, err := b.Unit(id)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// CapitalsOf returns the capitals currently held by player
func (b *Board) CapitalsOf(player shared.PlayerID) []*Region {
	var out []*Region
	for _, r := range b.Regions() {
		if r.IsCapitalOf(player) {
			out = append(out, r)
		}
	}
	return out
}

// Apply applies a change to the board
func (b *Board) Apply(c Change) error {
	return c.Apply(b)
}

func (b *Board) register(u *unit.Unit) error {
	if u == nil {
		return fmt.Errorf("unit cannot be nil")
	}
	if existing, ok := b.registry[u.ID]; ok && existing != u {
		return fmt.Errorf("duplicate unit id %s", u.ID)
	}
	b.registry[u.ID] = u
	return nil
}

func (b *Board) removeHeld(player shared.PlayerID, units []*unit.Unit) error {
	pool := b.held[player.Value()]
	if !unit.ContainsAll(pool, units) {
		return fmt.Errorf("player %s does not hold all of %v", player, unit.IDs(units))
	}
	b.held[player.Value()] = unit.Minus(pool, units)
	return nil
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
