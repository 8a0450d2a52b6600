package scenario

import (
	"fmt"
	"strings"

	"github.com/andrescamacho/placement-go/internal/adapters/rulescript"
	"github.com/andrescamacho/placement-go/internal/domain/board"
	"github.com/andrescamacho/placement-go/internal/domain/placement"
	"github.com/andrescamacho/placement-go/internal/domain/rules"
	"github.com/andrescamacho/placement-go/internal/domain/shared"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
)

// World is a scenario ready to play: the board, the rule set, the placing
// player, the validation pipeline and the command script
type World struct {
	Name     string
	Board    *board.Board
	Rules    *rules.Config
	Player   shared.PlayerID
	Steps    []placement.Step
	Commands []CommandSpec
}

type builder struct {
	sc    *Scenario
	board *board.Board
	types map[string]*unit.Type
	seq   int
}

// Build turns the scenario into a World
func (sc *Scenario) Build() (*World, error) {
	player, err := shared.NewPlayerID(sc.Player)
	if err != nil {
		return nil, fmt.Errorf("player: %w", err)
	}

	b := &builder{sc: sc, board: board.NewBoard(), types: make(map[string]*unit.Type)}
	if err := b.unitTypes(); err != nil {
		return nil, err
	}
	if err := b.regions(); err != nil {
		return nil, err
	}
	for _, c := range sc.Connections {
		if len(c) != 2 {
			return nil, fmt.Errorf("connection %v: expected two regions", c)
		}
		if err := b.board.Connect(c[0], c[1]); err != nil {
			return nil, fmt.Errorf("connection %s-%s: %w", c[0], c[1], err)
		}
	}
	if err := b.alliances(); err != nil {
		return nil, err
	}
	if err := b.held(); err != nil {
		return nil, err
	}

	cfg := rules.NewConfig()
	cfg.Properties = sc.Properties
	for _, p := range sc.Players {
		id, err := shared.NewPlayerID(p.Name)
		if err != nil {
			return nil, fmt.Errorf("players: %w", err)
		}
		for i := range p.Rules.StackingLimits {
			p.Rules.StackingLimits[i].Scope = unit.StackingScope(strings.ToUpper(string(p.Rules.StackingLimits[i].Scope)))
		}
		cfg.SetPlayer(id, p.Rules)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	scripted, err := rulescript.CompileAll(sc.Rules)
	if err != nil {
		return nil, err
	}
	steps := append(placement.DefaultSteps(), scripted...)

	if err := b.commands(); err != nil {
		return nil, err
	}

	return &World{
		Name:     sc.Name,
		Board:    b.board,
		Rules:    cfg,
		Player:   player,
		Steps:    steps,
		Commands: sc.Commands,
	}, nil
}

func (b *builder) unitTypes() error {
	for _, spec := range b.sc.UnitTypes {
		if _, dup := b.types[spec.Name]; dup {
			return fmt.Errorf("unit type %s defined twice", spec.Name)
		}
		class, err := unit.ParseClass(spec.Class)
		if err != nil {
			return fmt.Errorf("unit type %s: %w", spec.Name, err)
		}
		t, err := unit.NewType(spec.Name, class)
		if err != nil {
			return err
		}
		t.IsFactory = spec.IsFactory
		t.CanProduceUnits = spec.CanProduceUnits
		if spec.CanProduceXUnits != nil {
			t.CanProduceXUnits = *spec.CanProduceXUnits
		}
		t.IsInfrastructure = spec.IsInfrastructure
		t.IsConstruction = spec.IsConstruction
		t.ConstructionType = spec.ConstructionType
		t.MaxConstructionsPerTypePerTerritory = spec.MaxConstructionsPerTypePerTerritory
		t.ConstructionsPerTerritoryPerTypePerTurn = spec.ConstructionsPerTerritoryPerTypePerTurn
		t.ConsumesUnits = spec.ConsumesUnits
		t.RequiresUnits = spec.RequiresUnits
		t.PlacementRestrictions = spec.PlacementRestrictions
		t.PlacementAllowedIn = spec.PlacementAllowedIn
		if spec.CanOnlyBePlacedInTerritoryValuedAtX != nil {
			t.CanOnlyBePlacedInTerritoryValuedAtX = *spec.CanOnlyBePlacedInTerritoryValuedAtX
		}
		t.CanOnlyPlaceInOriginalTerritories = spec.CanOnlyPlaceInOriginalTerritories
		if spec.StackingLimit != nil {
			limit := *spec.StackingLimit
			limit.Scope = unit.StackingScope(strings.ToUpper(string(limit.Scope)))
			t.StackingLimit = &limit
		}
		t.CarrierCapacity = spec.CarrierCapacity
		t.CarrierCost = spec.CarrierCost
		t.TransportCost = spec.TransportCost
		b.types[spec.Name] = t
	}

	for _, t := range b.types {
		for name := range t.ConsumesUnits {
			if _, ok := b.types[name]; !ok {
				return fmt.Errorf("unit type %s consumes unknown type %s", t.Name, name)
			}
		}
		for _, combo := range t.RequiresUnits {
			for _, name := range combo {
				if _, ok := b.types[name]; !ok {
					return fmt.Errorf("unit type %s requires unknown type %s", t.Name, name)
				}
			}
		}
	}
	return nil
}

func (b *builder) regions() error {
	for _, spec := range b.sc.Regions {
		var r *board.Region
		var err error
		if spec.Water {
			r, err = board.NewSeaZone(spec.Name)
		} else {
			r, err = board.NewLandRegion(spec.Name, optionalPlayer(spec.Owner), spec.Production)
		}
		if err != nil {
			return err
		}
		if spec.OriginalOwner != "" {
			r.OriginalOwner = optionalPlayer(spec.OriginalOwner)
		}
		r.OriginalFactory = spec.OriginalFactory
		r.CapitalOf = optionalPlayer(spec.CapitalOf)
		r.Conquered = spec.Conquered
		if err := b.board.AddRegion(r); err != nil {
			return err
		}

		for _, stack := range spec.Units {
			owner := stack.Owner
			if owner == "" {
				owner = spec.Owner
			}
			if owner == "" {
				return fmt.Errorf("region %s: %s units need an owner", spec.Name, stack.Type)
			}
			units, err := b.units(stack, owner)
			if err != nil {
				return fmt.Errorf("region %s: %w", spec.Name, err)
			}
			if err := b.board.Apply(&board.AddUnits{Region: spec.Name, Units: units}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *builder) alliances() error {
	for _, group := range b.sc.Alliances {
		for i := range group {
			for j := i + 1; j < len(group); j++ {
				a, err := shared.NewPlayerID(group[i])
				if err != nil {
					return fmt.Errorf("alliances: %w", err)
				}
				c, err := shared.NewPlayerID(group[j])
				if err != nil {
					return fmt.Errorf("alliances: %w", err)
				}
				b.board.Ally(a, c)
			}
		}
	}
	return nil
}

func (b *builder) held() error {
	for _, stack := range b.sc.Held {
		if stack.Owner == "" {
			return fmt.Errorf("held %s units need an owner", stack.Type)
		}
		units, err := b.units(stack, stack.Owner)
		if err != nil {
			return fmt.Errorf("held: %w", err)
		}
		if err := b.board.GiveUnits(shared.MustNewPlayerID(stack.Owner), units...); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) commands() error {
	for i, cmd := range b.sc.Commands {
		set := 0
		if cmd.Place != nil {
			set++
			if _, err := b.board.Region(cmd.Place.To); err != nil {
				return fmt.Errorf("command %d: %w", i, err)
			}
			for _, tc := range cmd.Place.Units {
				if _, ok := b.types[tc.Type]; !ok {
					return fmt.Errorf("command %d: unknown unit type %s", i, tc.Type)
				}
			}
		}
		if cmd.Undo != nil {
			set++
		}
		if cmd.EndStep {
			set++
		}
		if set != 1 {
			return fmt.Errorf("command %d: exactly one of place, undo or end_step must be set", i)
		}
	}
	return nil
}

func (b *builder) units(stack UnitStack, owner string) ([]*unit.Unit, error) {
	t, ok := b.types[stack.Type]
	if !ok {
		return nil, fmt.Errorf("unknown unit type %s", stack.Type)
	}
	player, err := shared.NewPlayerID(owner)
	if err != nil {
		return nil, err
	}
	original := player
	if stack.OriginalOwner != "" {
		original = shared.MustNewPlayerID(stack.OriginalOwner)
	}

	out := make([]*unit.Unit, 0, stack.count())
	for i := 0; i < stack.count(); i++ {
		b.seq++
		u, err := unit.New(fmt.Sprintf("%s-%03d", t.Name, b.seq), t, player)
		if err != nil {
			return nil, err
		}
		u.OriginalOwner = original
		u.Damage = stack.Damage
		out = append(out, u)
	}
	return out, nil
}

func optionalPlayer(name string) shared.PlayerID {
	if strings.TrimSpace(name) == "" {
		return shared.PlayerID{}
	}
	return shared.MustNewPlayerID(name)
}

// UnitIDs picks the ids of the first held units matching a place command
func (w *World) UnitIDs(spec PlaceSpec) ([]string, error) {
	held := w.Board.Held(w.Player)
	var ids []string
	for _, tc := range spec.Units {
		picked := unit.FirstN(held, tc.count(), unit.OfTypeName(tc.Type))
		if len(picked) < tc.count() {
			return nil, fmt.Errorf("only %d %s held, %d requested", len(picked), tc.Type, tc.count())
		}
		ids = append(ids, unit.IDs(picked)...)
		held = unit.Minus(held, picked)
	}
	return ids, nil
}
