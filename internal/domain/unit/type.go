package unit

import (
	"fmt"
	"strings"
)

// Class is the movement domain of a unit type
type Class string

const (
	ClassLand Class = "LAND"
	ClassSea  Class = "SEA"
	ClassAir  Class = "AIR"
)

// ParseClass parses a string into a Class
func ParseClass(s string) (Class, error) {
	c := Class(strings.ToUpper(strings.TrimSpace(s)))
	switch c {
	case ClassLand, ClassSea, ClassAir:
		return c, nil
	default:
		return "", fmt.Errorf("invalid unit class: %s", s)
	}
}

// FactoryCategory is the implicit construction category used for factories
// that are not themselves constructions
const FactoryCategory = "factory"

// NoValueGate marks a unit type that may be placed regardless of region value
const NoValueGate = -1

// StackingScope selects which units count towards a stacking limit
type StackingScope string

const (
	// StackingOwned counts only units owned by the placing player
	StackingOwned StackingScope = "OWNED"
	// StackingAllied counts units owned by the player and its allies
	StackingAllied StackingScope = "ALLIED"
	// StackingTotal counts every unit in the region
	StackingTotal StackingScope = "TOTAL"
)

// StackingLimit caps how many units of a kind may be present in one region
type StackingLimit struct {
	Max   int           `json:"max" yaml:"max"`
	Scope StackingScope `json:"scope" yaml:"scope"`
}

// Type is the capability record of a unit type. It is read-only for the placement engine.
type Type struct {
	Name  string `json:"name"`
	Class Class  `json:"class"`

	// Production
	IsFactory        bool `json:"is_factory"`
	CanProduceUnits  bool `json:"can_produce_units"`
	CanProduceXUnits int  `json:"can_produce_x_units"` // -1 = region production value
	IsInfrastructure bool `json:"is_infrastructure"`

	// Constructions
	IsConstruction                          bool   `json:"is_construction"`
	ConstructionType                        string `json:"construction_type"`
	MaxConstructionsPerTypePerTerritory     int    `json:"max_constructions_per_type_per_territory"`
	ConstructionsPerTerritoryPerTypePerTurn int    `json:"constructions_per_territory_per_type_per_turn"`

	// Upgrades and dependencies
	ConsumesUnits map[string]int `json:"consumes_units,omitempty"`
	RequiresUnits [][]string     `json:"requires_units,omitempty"`

	// Placement restrictions
	PlacementRestrictions               []string       `json:"placement_restrictions,omitempty"`
	PlacementAllowedIn                  []string       `json:"placement_allowed_in,omitempty"`
	CanOnlyBePlacedInTerritoryValuedAtX int            `json:"can_only_be_placed_in_territory_valued_at_x"`
	CanOnlyPlaceInOriginalTerritories   bool           `json:"can_only_place_in_original_territories"`
	StackingLimit                       *StackingLimit `json:"stacking_limit,omitempty"`

	// Carriers and transport
	CarrierCapacity int `json:"carrier_capacity"`
	CarrierCost     int `json:"carrier_cost"`
	TransportCost   int `json:"transport_cost"`
}

// NewType creates a unit type with the neutral defaults for optional capabilities
func NewType(name string, class Class) (*Type, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("unit type name cannot be empty")
	}
	if _, err := ParseClass(string(class)); err != nil {
		return nil, err
	}
	return &Type{
		Name:                                name,
		Class:                               class,
		CanProduceXUnits:                    -1,
		CanOnlyBePlacedInTerritoryValuedAtX: NoValueGate,
	}, nil
}

// IsSea returns true for naval unit types
func (t *Type) IsSea() bool {
	return t.Class == ClassSea
}

// IsAir returns true for air unit types
func (t *Type) IsAir() bool {
	return t.Class == ClassAir
}

// IsLand returns true for land unit types
func (t *Type) IsLand() bool {
	return t.Class == ClassLand
}

// IsFactoryOrCanProduce returns true if units of this type give their region production capacity
func (t *Type) IsFactoryOrCanProduce() bool {
	return t.IsFactory || t.CanProduceUnits
}

// IsFactoryOrConstruction returns true if this type is charged against construction quotas
func (t *Type) IsFactoryOrConstruction() bool {
	return t.IsFactory || t.IsConstruction
}

// IsCarrier returns true if air units can land on this type
func (t *Type) IsCarrier() bool {
	return t.CarrierCapacity > 0
}

// CanLandOnCarrier returns true for air units that occupy carrier space
func (t *Type) CanLandOnCarrier() bool {
	return t.IsAir() && t.CarrierCost > 0
}

// ConsumesOnCreation returns true if placing this type removes other units
func (t *Type) ConsumesOnCreation() bool {
	return len(t.ConsumesUnits) > 0
}

// RequiresUnitsOnCreation returns true if this type needs other units present at start of step
func (t *Type) RequiresUnitsOnCreation() bool {
	return len(t.RequiresUnits) > 0
}

// Category returns the construction category this type is counted under
func (t *Type) Category() string {
	if t.IsFactory && !t.IsConstruction {
		return FactoryCategory
	}
	return t.ConstructionType
}

func (t *Type) String() string {
	return t.Name
}
