package rules

import (
	"fmt"

	"github.com/andrescamacho/placement-go/internal/domain/shared"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
)

// Unlimited marks a numeric rule without a cap
const Unlimited = -1

// Properties are the game-wide placement options
type Properties struct {
	UnitPlacementRestrictions           bool `yaml:"unit_placement_restrictions" json:"unit_placement_restrictions"`
	UnitPlacementPerTerritoryRestricted bool `yaml:"unit_placement_per_territory_restricted" json:"unit_placement_per_territory_restricted"`
	PlaceInAnyTerritory                 bool `yaml:"place_in_any_territory" json:"place_in_any_territory"`
	MoreConstructionsWithFactory        bool `yaml:"more_constructions_with_factory" json:"more_constructions_with_factory"`
	MoreConstructionsWithoutFactory     bool `yaml:"more_constructions_without_factory" json:"more_constructions_without_factory"`
	UnlimitedConstructions              bool `yaml:"unlimited_constructions" json:"unlimited_constructions"`
	FactoriesPerCountry                 int  `yaml:"factories_per_country" json:"factories_per_country"`
	NoFactoryInZeroProductionRegion     bool `yaml:"no_factory_in_zero_production_region" json:"no_factory_in_zero_production_region"`
	UnitPlacementInEnemySeas            bool `yaml:"unit_placement_in_enemy_seas" json:"unit_placement_in_enemy_seas"`
	ProduceFightersOnCarriers           bool `yaml:"produce_fighters_on_carriers" json:"produce_fighters_on_carriers"`
	ProduceNewFightersOnOldCarriers     bool `yaml:"produce_new_fighters_on_old_carriers" json:"produce_new_fighters_on_old_carriers"`
	MoveExistingFightersToNewCarriers   bool `yaml:"move_existing_fighters_to_new_carriers" json:"move_existing_fighters_to_new_carriers"`
	LHTRCarrierProduction               bool `yaml:"lhtr_carrier_production" json:"lhtr_carrier_production"`
	UnplacedUnitsLive                   bool `yaml:"unplaced_units_live" json:"unplaced_units_live"`
}

// DefaultProperties returns the classic rule set
func DefaultProperties() Properties {
	return Properties{
		FactoriesPerCountry: 1,
		UnplacedUnitsLive:   true,
	}
}

// PlayerStackingLimit caps how many units of the listed types a player may
// have in one region after placement
type PlayerStackingLimit struct {
	Max       int                `yaml:"max" json:"max"`
	Scope     unit.StackingScope `yaml:"scope" json:"scope"`
	UnitTypes []string           `yaml:"unit_types" json:"unit_types"`
}

// Applies returns true if the limit covers units of the given type
func (l PlayerStackingLimit) Applies(t *unit.Type) bool {
	for _, name := range l.UnitTypes {
		if name == t.Name {
			return true
		}
	}
	return false
}

// PlayerRules are the per-player placement overrides
type PlayerRules struct {
	// MaxPlacePerTerritory caps placements per producer per turn, -1 = no cap
	MaxPlacePerTerritory         int                   `yaml:"max_place_per_territory" json:"max_place_per_territory"`
	PlacementPerTerritory        int                   `yaml:"placement_per_territory" json:"placement_per_territory"`
	PlacementAnyTerritory        bool                  `yaml:"placement_any_territory" json:"placement_any_territory"`
	PlacementAnySeaZone          bool                  `yaml:"placement_any_sea_zone" json:"placement_any_sea_zone"`
	PlacementCapturedTerritory   bool                  `yaml:"placement_captured_territory" json:"placement_captured_territory"`
	PlacementInCapitalRestricted bool                  `yaml:"placement_in_capital_restricted" json:"placement_in_capital_restricted"`
	StackingLimits               []PlayerStackingLimit `yaml:"stacking_limits" json:"stacking_limits"`
}

// DefaultPlayerRules returns rules without any override
func DefaultPlayerRules() PlayerRules {
	return PlayerRules{MaxPlacePerTerritory: Unlimited}
}

// HasPlacementCap returns true if MaxPlacePerTerritory is set
func (r PlayerRules) HasPlacementCap() bool {
	return r.MaxPlacePerTerritory != Unlimited
}

// Config is the full rule set the placement engine reads. It is read-only
// for the engine.
type Config struct {
	Properties Properties             `yaml:"properties" json:"properties"`
	Players    map[string]PlayerRules `yaml:"players" json:"players"`
}

// NewConfig creates a rule set with default properties and no player overrides
func NewConfig() *Config {
	return &Config{
		Properties: DefaultProperties(),
		Players:    make(map[string]PlayerRules),
	}
}

// ForPlayer returns the player's rules, or the defaults if none are configured
func (c *Config) ForPlayer(player shared.PlayerID) PlayerRules {
	if r, ok := c.Players[player.Value()]; ok {
		return r
	}
	return DefaultPlayerRules()
}

// SetPlayer stores rules for player
func (c *Config) SetPlayer(player shared.PlayerID, r PlayerRules) {
	if c.Players == nil {
		c.Players = make(map[string]PlayerRules)
	}
	c.Players[player.Value()] = r
}

// PlaceInAnyOwnedLand returns true if player may place in any owned land territory
func (c *Config) PlaceInAnyOwnedLand(player shared.PlayerID) bool {
	return c.Properties.PlaceInAnyTerritory && c.ForPlayer(player).PlacementAnyTerritory
}

// PlaceInAnySeaZoneByOwnedLand returns true if any owned land can produce into adjacent sea zones
func (c *Config) PlaceInAnySeaZoneByOwnedLand(player shared.PlayerID) bool {
	return c.Properties.PlaceInAnyTerritory && c.ForPlayer(player).PlacementAnySeaZone
}

// Validate checks numeric settings
func (c *Config) Validate() error {
	if c.Properties.FactoriesPerCountry < 0 {
		return shared.NewValidationError("factories_per_country", "cannot be negative")
	}
	for name, r := range c.Players {
		if r.MaxPlacePerTerritory < Unlimited {
			return shared.NewValidationError("max_place_per_territory", fmt.Sprintf("player %s: must be -1 or greater", name))
		}
		if r.PlacementPerTerritory < 0 {
			return shared.NewValidationError("placement_per_territory", fmt.Sprintf("player %s: cannot be negative", name))
		}
		for _, l := range r.StackingLimits {
			if l.Max < 0 {
				return shared.NewValidationError("stacking_limits", fmt.Sprintf("player %s: max cannot be negative", name))
			}
			switch l.Scope {
			case unit.StackingOwned, unit.StackingAllied, unit.StackingTotal:
			default:
				return shared.NewValidationError("stacking_limits", fmt.Sprintf("player %s: invalid scope %q", name, l.Scope))
			}
		}
	}
	return nil
}
