// Package scenario loads placement scenarios from YAML: the map, the unit
// types, the rule set, the units waiting to be placed, optional scripted
// rules and an optional command script.
package scenario

import (
	"github.com/andrescamacho/placement-go/internal/adapters/rulescript"
	"github.com/andrescamacho/placement-go/internal/domain/rules"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
	"gopkg.in/yaml.v3"
)

// Scenario is the decoded scenario file
type Scenario struct {
	Name        string            `yaml:"name"`
	Player      string            `yaml:"player"`
	Players     []PlayerSpec      `yaml:"players"`
	Alliances   [][]string        `yaml:"alliances"`
	Properties  rules.Properties  `yaml:"properties"`
	UnitTypes   []UnitTypeSpec    `yaml:"unit_types"`
	Regions     []RegionSpec      `yaml:"regions"`
	Connections [][]string        `yaml:"connections"`
	Held        []UnitStack       `yaml:"held"`
	Rules       []rulescript.Rule `yaml:"rules"`
	Commands    []CommandSpec     `yaml:"commands"`
}

// PlayerSpec carries a player's rule overrides
type PlayerSpec struct {
	Name  string            `yaml:"name"`
	Rules rules.PlayerRules `yaml:"rules"`
}

// UnmarshalYAML starts from the default player rules so a missing
// max_place_per_territory means no cap
func (p *PlayerSpec) UnmarshalYAML(value *yaml.Node) error {
	type plain PlayerSpec
	decoded := plain{Rules: rules.DefaultPlayerRules()}
	if err := value.Decode(&decoded); err != nil {
		return err
	}
	*p = PlayerSpec(decoded)
	return nil
}

// UnitTypeSpec is the file form of unit.Type
type UnitTypeSpec struct {
	Name                                    string              `yaml:"name"`
	Class                                   string              `yaml:"class"`
	IsFactory                               bool                `yaml:"is_factory"`
	CanProduceUnits                         bool                `yaml:"can_produce_units"`
	CanProduceXUnits                        *int                `yaml:"can_produce_x_units"`
	IsInfrastructure                        bool                `yaml:"is_infrastructure"`
	IsConstruction                          bool                `yaml:"is_construction"`
	ConstructionType                        string              `yaml:"construction_type"`
	MaxConstructionsPerTypePerTerritory     int                 `yaml:"max_constructions_per_type_per_territory"`
	ConstructionsPerTerritoryPerTypePerTurn int                 `yaml:"constructions_per_territory_per_type_per_turn"`
	ConsumesUnits                           map[string]int      `yaml:"consumes_units"`
	RequiresUnits                           [][]string          `yaml:"requires_units"`
	PlacementRestrictions                   []string            `yaml:"placement_restrictions"`
	PlacementAllowedIn                      []string            `yaml:"placement_allowed_in"`
	CanOnlyBePlacedInTerritoryValuedAtX     *int                `yaml:"can_only_be_placed_in_territory_valued_at_x"`
	CanOnlyPlaceInOriginalTerritories       bool                `yaml:"can_only_place_in_original_territories"`
	StackingLimit                           *unit.StackingLimit `yaml:"stacking_limit"`
	CarrierCapacity                         int                 `yaml:"carrier_capacity"`
	CarrierCost                             int                 `yaml:"carrier_cost"`
	TransportCost                           int                 `yaml:"transport_cost"`
}

// RegionSpec describes a territory or sea zone and the units in it
type RegionSpec struct {
	Name            string      `yaml:"name"`
	Water           bool        `yaml:"water"`
	Owner           string      `yaml:"owner"`
	OriginalOwner   string      `yaml:"original_owner"`
	Production      int         `yaml:"production"`
	OriginalFactory bool        `yaml:"original_factory"`
	CapitalOf       string      `yaml:"capital_of"`
	Conquered       bool        `yaml:"conquered"`
	Units           []UnitStack `yaml:"units"`
}

// UnitStack is count units of one type. Owner defaults to the region owner
// for map units and is required for held units.
type UnitStack struct {
	Type          string `yaml:"type"`
	Owner         string `yaml:"owner"`
	OriginalOwner string `yaml:"original_owner"`
	Count         int    `yaml:"count"`
	Damage        int    `yaml:"damage"`
}

// CommandSpec is one scripted command. Exactly one field is set.
type CommandSpec struct {
	Place   *PlaceSpec `yaml:"place"`
	Undo    *int       `yaml:"undo"`
	EndStep bool       `yaml:"end_step"`
}

// PlaceSpec places the first held units of each listed type
type PlaceSpec struct {
	To    string      `yaml:"to"`
	Units []TypeCount `yaml:"units"`
}

// TypeCount is a unit type and how many of it
type TypeCount struct {
	Type  string `yaml:"type"`
	Count int    `yaml:"count"`
}

func (s UnitStack) count() int {
	if s.Count == 0 {
		return 1
	}
	return s.Count
}

func (t TypeCount) count() int {
	if t.Count == 0 {
		return 1
	}
	return t.Count
}
