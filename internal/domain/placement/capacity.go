package placement

import "strconv"

// Capacity is how many units a producer may still place. Unlimited is a
// sentinel distinct from every finite value; finite values are never negative.
type Capacity int

// Unlimited means no production limit applies
const Unlimited Capacity = -1

// Finite clamps n at zero and returns it as a Capacity
func Finite(n int) Capacity {
	if n < 0 {
		return 0
	}
	return Capacity(n)
}

// IsUnlimited returns true for the Unlimited sentinel
func (c Capacity) IsUnlimited() bool {
	return c == Unlimited
}

// Covers returns true if n units fit
func (c Capacity) Covers(n int) bool {
	return c.IsUnlimited() || int(c) >= n
}

// Plus adds two capacities; Unlimited absorbs everything
func (c Capacity) Plus(other Capacity) Capacity {
	if c.IsUnlimited() || other.IsUnlimited() {
		return Unlimited
	}
	return c + other
}

// Take returns how many of n units fit
func (c Capacity) Take(n int) int {
	if c.Covers(n) {
		return n
	}
	return int(c)
}

// Int returns the wire value, -1 for Unlimited
func (c Capacity) Int() int {
	return int(c)
}

// Less orders capacities for ranking: Unlimited is larger than any finite value
func (c Capacity) Less(other Capacity) bool {
	if c == other {
		return false
	}
	if c.IsUnlimited() {
		return false
	}
	if other.IsUnlimited() {
		return true
	}
	return c < other
}

func (c Capacity) String() string {
	if c.IsUnlimited() {
		return "unlimited"
	}
	return strconv.Itoa(int(c))
}
