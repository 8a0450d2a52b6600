package unit

import "github.com/andrescamacho/placement-go/internal/domain/shared"

// Predicate selects units
type Predicate func(u *Unit) bool

// And matches when every predicate matches
func And(preds ...Predicate) Predicate {
	return func(u *Unit) bool {
		for _, p := range preds {
			if !p(u) {
				return false
			}
		}
		return true
	}
}

// Or matches when any predicate matches
func Or(preds ...Predicate) Predicate {
	return func(u *Unit) bool {
		for _, p := range preds {
			if p(u) {
				return true
			}
		}
		return false
	}
}

// Not inverts a predicate
func Not(p Predicate) Predicate {
	return func(u *Unit) bool { return !p(u) }
}

func OwnedBy(player shared.PlayerID) Predicate {
	return func(u *Unit) bool { return u.Owner.Equals(player) }
}

func OfType(t *Type) Predicate {
	return func(u *Unit) bool { return u.Type == t }
}

func OfTypeName(name string) Predicate {
	return func(u *Unit) bool { return u.Type.Name == name }
}

func IsSea(u *Unit) bool  { return u.Type.IsSea() }
func IsAir(u *Unit) bool  { return u.Type.IsAir() }
func IsLand(u *Unit) bool { return u.Type.IsLand() }

func IsFactory(u *Unit) bool               { return u.Type.IsFactory }
func IsConstruction(u *Unit) bool          { return u.Type.IsConstruction }
func IsFactoryOrCanProduce(u *Unit) bool   { return u.Type.IsFactoryOrCanProduce() }
func IsFactoryOrConstruction(u *Unit) bool { return u.Type.IsFactoryOrConstruction() }
func IsFactoryOrInfrastructure(u *Unit) bool {
	return u.Type.IsFactory || u.Type.IsInfrastructure
}

func IsCarrier(u *Unit) bool        { return u.Type.IsCarrier() }
func CanLandOnCarrier(u *Unit) bool { return u.Type.CanLandOnCarrier() }

func ConsumesOnCreation(u *Unit) bool { return u.Type.ConsumesOnCreation() }

// IsIntact matches units that can be consumed by an upgrade
func IsIntact(u *Unit) bool {
	return !u.IsDamaged() && !u.Disabled
}
