package unit

import (
	"sort"
	"strconv"
)

// Filter returns the units matching pred, preserving order
func Filter(units []*Unit, pred Predicate) []*Unit {
	out := make([]*Unit, 0, len(units))
	for _, u := range units {
		if pred(u) {
			out = append(out, u)
		}
	}
	return out
}

// FirstN returns up to n units matching pred, preserving order
func FirstN(units []*Unit, n int, pred Predicate) []*Unit {
	out := make([]*Unit, 0)
	if n <= 0 {
		return out
	}
	for _, u := range units {
		if pred(u) {
			out = append(out, u)
			if len(out) == n {
				break
			}
		}
	}
	return out
}

// Count returns the number of units matching pred
func Count(units []*Unit, pred Predicate) int {
	n := 0
	for _, u := range units {
		if pred(u) {
			n++
		}
	}
	return n
}

// Any returns true if some unit matches pred
func Any(units []*Unit, pred Predicate) bool {
	for _, u := range units {
		if pred(u) {
			return true
		}
	}
	return false
}

// All returns true if every unit matches pred
func All(units []*Unit, pred Predicate) bool {
	for _, u := range units {
		if !pred(u) {
			return false
		}
	}
	return true
}

// Contains returns true if u is one of units
func Contains(units []*Unit, u *Unit) bool {
	for _, x := range units {
		if x == u {
			return true
		}
	}
	return false
}

// ContainsAll returns true if every unit of subset is in units
func ContainsAll(units []*Unit, subset []*Unit) bool {
	set := toSet(units)
	for _, u := range subset {
		if _, ok := set[u]; !ok {
			return false
		}
	}
	return true
}

// HasDuplicates returns true if some unit appears more than once
func HasDuplicates(units []*Unit) bool {
	return len(toSet(units)) != len(units)
}

// Minus returns units that are not in remove, preserving order
func Minus(units []*Unit, remove []*Unit) []*Unit {
	set := toSet(remove)
	out := make([]*Unit, 0, len(units))
	for _, u := range units {
		if _, ok := set[u]; !ok {
			out = append(out, u)
		}
	}
	return out
}

// Copy returns a shallow copy of units
func Copy(units []*Unit) []*Unit {
	out := make([]*Unit, len(units))
	copy(out, units)
	return out
}

// SortByID orders units by their identifier
func SortByID(units []*Unit) {
	sort.SliceStable(units, func(i, j int) bool { return units[i].ID < units[j].ID })
}

// DistinctTypes returns unit types in first-seen order
func DistinctTypes(units []*Unit) []*Type {
	seen := make(map[*Type]struct{})
	var out []*Type
	for _, u := range units {
		if _, ok := seen[u.Type]; ok {
			continue
		}
		seen[u.Type] = struct{}{}
		out = append(out, u.Type)
	}
	return out
}

// CarrierCapacity sums the carrier capacity of units
func CarrierCapacity(units []*Unit) int {
	total := 0
	for _, u := range units {
		total += u.Type.CarrierCapacity
	}
	return total
}

// CarrierCost sums the carrier space used by air units that land on carriers
func CarrierCost(units []*Unit) int {
	total := 0
	for _, u := range units {
		if u.Type.CanLandOnCarrier() {
			total += u.Type.CarrierCost
		}
	}
	return total
}

// IDs returns the identifiers of units
func IDs(units []*Unit) []string {
	ids := make([]string, len(units))
	for i, u := range units {
		ids[i] = u.ID
	}
	return ids
}

// Describe renders units as "2 infantry, 1 tank" in first-seen type order
func Describe(units []*Unit) string {
	if len(units) == 0 {
		return "nothing"
	}
	counts := make(map[*Type]int)
	for _, u := range units {
		counts[u.Type]++
	}
	s := ""
	for i, t := range DistinctTypes(units) {
		if i > 0 {
			s += ", "
		}
		s += strconv.Itoa(counts[t]) + " " + t.Name
	}
	return s
}

func toSet(units []*Unit) map[*Unit]struct{} {
	set := make(map[*Unit]struct{}, len(units))
	for _, u := range units {
		set[u] = struct{}{}
	}
	return set
}
