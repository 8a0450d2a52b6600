package placement

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/andrescamacho/placement-go/internal/domain/board"
	"github.com/andrescamacho/placement-go/internal/domain/shared"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
)

// RecordID identifies a committed placement
type RecordID struct {
	value string
}

// NewRecordID creates a new RecordID with a generated UUID
func NewRecordID() RecordID {
	return RecordID{value: uuid.New().String()}
}

// NewRecordIDFromString creates a RecordID from an existing UUID string
func NewRecordIDFromString(id string) (RecordID, error) {
	if id == "" {
		return RecordID{}, fmt.Errorf("record_id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return RecordID{}, fmt.Errorf("invalid record_id format: %w", err)
	}
	return RecordID{value: id}, nil
}

func (r RecordID) Value() string  { return r.value }
func (r RecordID) String() string { return r.value }
func (r RecordID) IsZero() bool   { return r.value == "" }

// ReallocationKind tells how an earlier record was changed to free capacity
type ReallocationKind string

const (
	ReallocationHandoff ReallocationKind = "handoff"
	ReallocationSplit   ReallocationKind = "split"
)

// Reallocation is one change made to an earlier record so that a later
// placement fits. A handoff moved Record from producer From to producer To.
// A split replaced Original with the records listed in Parts.
type Reallocation struct {
	Kind     ReallocationKind
	Record   RecordID
	From     string
	To       string
	Original *Record
	Parts    []RecordID
}

// Record is one committed placement in the undo log.
//
// Producer is the region whose capacity the units are charged against; it
// may be reassigned by capacity reallocation. Change reverses exactly what
// the placement did to the board, including consumed units and relocated air.
// Reallocations lists what this placement did to earlier records, in order.
type Record struct {
	ID            RecordID
	Index         int
	Player        shared.PlayerID
	Producer      string
	Destination   string
	Units         []*unit.Unit
	Change        board.Change
	PlacedAt      time.Time
	Reallocations []Reallocation
}

func (r *Record) clone() *Record {
	c := *r
	c.Units = unit.Copy(r.Units)
	if r.Reallocations != nil {
		c.Reallocations = make([]Reallocation, len(r.Reallocations))
		copy(c.Reallocations, r.Reallocations)
	}
	return &c
}

// Description renders the record the way it appears in the history
func (r *Record) Description() string {
	return fmt.Sprintf("%s placed in %s", unit.Describe(r.Units), r.Destination)
}

func (r *Record) String() string {
	return fmt.Sprintf("Record[%d, %s -> %s, %s]", r.Index, r.Producer, r.Destination, unit.Describe(r.Units))
}
