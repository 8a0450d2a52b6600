package shared

import (
	"fmt"
	"strings"
)

// PlayerID is a value object identifying a player (nation/faction) by name
type PlayerID struct {
	value string
}

// Neutral is the owner of unowned regions (open sea, neutral territories)
var Neutral = PlayerID{}

// NewPlayerID creates a new PlayerID value object
func NewPlayerID(name string) (PlayerID, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return PlayerID{}, fmt.Errorf("player name cannot be empty")
	}
	return PlayerID{value: name}, nil
}

// MustNewPlayerID creates a new PlayerID value object, panicking if invalid
// Use this only when you're certain the name is valid (e.g., from a validated scenario)
func MustNewPlayerID(name string) PlayerID {
	playerID, err := NewPlayerID(name)
	if err != nil {
		panic(err)
	}
	return playerID
}

// Value returns the player name
func (p PlayerID) Value() string {
	return p.value
}

// String returns a string representation of the PlayerID
func (p PlayerID) String() string {
	if p.value == "" {
		return "Neutral"
	}
	return p.value
}

// Equals checks if two PlayerIDs are equal
func (p PlayerID) Equals(other PlayerID) bool {
	return p.value == other.value
}

// IsZero checks if the PlayerID is the zero value (neutral / unowned)
func (p PlayerID) IsZero() bool {
	return p.value == ""
}
