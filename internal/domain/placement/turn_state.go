package placement

import (
	"fmt"
	"sort"
	"time"

	"github.com/andrescamacho/placement-go/internal/domain/board"
	"github.com/andrescamacho/placement-go/internal/domain/shared"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
)

// TurnState is the production ledger and undo log of one placement step.
// It is owned by a single Engine and cleared at end of step.
type TurnState struct {
	ledger map[string][]*unit.Unit
	log    []*Record
}

// NewTurnState creates an empty turn state
func NewTurnState() *TurnState {
	return &TurnState{ledger: make(map[string][]*unit.Unit)}
}

// Produced returns the units charged to producer this turn
func (s *TurnState) Produced(producer string) []*unit.Unit {
	return unit.Copy(s.ledger[producer])
}

// Producers returns the regions with a non-empty ledger entry, sorted by name
func (s *TurnState) Producers() []string {
	names := make([]string, 0, len(s.ledger))
	for name, units := range s.ledger {
		if len(units) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Records returns the undo log in index order
func (s *TurnState) Records() []*Record {
	out := make([]*Record, len(s.log))
	copy(out, s.log)
	return out
}

// Len returns the number of committed placements
func (s *TurnState) Len() int {
	return len(s.log)
}

// Reset clears the ledger and the undo log
func (s *TurnState) Reset() {
	s.ledger = make(map[string][]*unit.Unit)
	s.log = nil
}

func (s *TurnState) charge(producer string, units []*unit.Unit) {
	s.ledger[producer] = append(s.ledger[producer], units...)
}

func (s *TurnState) discharge(producer string, units []*unit.Unit) {
	left := unit.Minus(s.ledger[producer], units)
	if len(left) == 0 {
		delete(s.ledger, producer)
		return
	}
	s.ledger[producer] = left
}

func (s *TurnState) append(r *Record) {
	r.Index = len(s.log)
	s.log = append(s.log, r)
}

func (s *TurnState) remove(index int) *Record {
	r := s.log[index]
	s.log = append(s.log[:index:index], s.log[index+1:]...)
	for i, rec := range s.log {
		rec.Index = i
	}
	return r
}

// insert puts r at index, or at the end when the log is shorter
func (s *TurnState) insert(index int, r *Record) {
	if index > len(s.log) {
		index = len(s.log)
	}
	s.log = append(s.log, nil)
	copy(s.log[index+1:], s.log[index:])
	s.log[index] = r
	for i, rec := range s.log {
		rec.Index = i
	}
}

func (s *TurnState) find(id RecordID) *Record {
	for _, r := range s.log {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (s *TurnState) contains(r *Record) bool {
	return r.Index >= 0 && r.Index < len(s.log) && s.log[r.Index] == r
}

func (s *TurnState) clone() *TurnState {
	c := &TurnState{
		ledger: make(map[string][]*unit.Unit, len(s.ledger)),
		log:    make([]*Record, len(s.log)),
	}
	for k, v := range s.ledger {
		c.ledger[k] = unit.Copy(v)
	}
	for i, r := range s.log {
		c.log[i] = r.clone()
	}
	return c
}

func (s *TurnState) restore(from *TurnState) {
	s.ledger = from.ledger
	s.log = from.log
}

// Snapshot is the serializable form of a TurnState. Units are referenced by id.
type Snapshot struct {
	Ledger  map[string][]string `json:"ledger"`
	Records []RecordSnapshot    `json:"records"`
}

// RecordSnapshot is the serializable form of a Record
type RecordSnapshot struct {
	ID            string                 `json:"id"`
	Index         int                    `json:"index"`
	Player        string                 `json:"player"`
	Producer      string                 `json:"producer"`
	Destination   string                 `json:"destination"`
	Units         []string               `json:"units"`
	Change        []board.Op             `json:"change"`
	PlacedAt      time.Time              `json:"placed_at"`
	Reallocations []ReallocationSnapshot `json:"reallocations,omitempty"`
}

// ReallocationSnapshot is the serializable form of a Reallocation
type ReallocationSnapshot struct {
	Kind     string          `json:"kind"`
	Record   string          `json:"record,omitempty"`
	From     string          `json:"from,omitempty"`
	To       string          `json:"to,omitempty"`
	Original *RecordSnapshot `json:"original,omitempty"`
	Parts    []string        `json:"parts,omitempty"`
}

// Export converts the state into a snapshot
func (s *TurnState) Export() (*Snapshot, error) {
	snap := &Snapshot{
		Ledger:  make(map[string][]string, len(s.ledger)),
		Records: make([]RecordSnapshot, 0, len(s.log)),
	}
	for region, units := range s.ledger {
		snap.Ledger[region] = unit.IDs(units)
	}
	for _, r := range s.log {
		rs, err := exportRecord(r)
		if err != nil {
			return nil, err
		}
		snap.Records = append(snap.Records, *rs)
	}
	return snap, nil
}

func exportRecord(r *Record) (*RecordSnapshot, error) {
	ops, err := board.Flatten(r.Change)
	if err != nil {
		return nil, fmt.Errorf("record %d: %w", r.Index, err)
	}
	rs := &RecordSnapshot{
		ID:          r.ID.Value(),
		Index:       r.Index,
		Player:      r.Player.Value(),
		Producer:    r.Producer,
		Destination: r.Destination,
		Units:       unit.IDs(r.Units),
		Change:      ops,
		PlacedAt:    r.PlacedAt,
	}
	for _, ra := range r.Reallocations {
		ras := ReallocationSnapshot{Kind: string(ra.Kind), From: ra.From, To: ra.To}
		if !ra.Record.IsZero() {
			ras.Record = ra.Record.Value()
		}
		if ra.Original != nil {
			orig, err := exportRecord(ra.Original)
			if err != nil {
				return nil, fmt.Errorf("record %d split: %w", r.Index, err)
			}
			ras.Original = orig
		}
		for _, id := range ra.Parts {
			ras.Parts = append(ras.Parts, id.Value())
		}
		rs.Reallocations = append(rs.Reallocations, ras)
	}
	return rs, nil
}

// ImportTurnState rebuilds a TurnState from a snapshot, resolving units on b
func ImportTurnState(b *board.Board, snap *Snapshot) (*TurnState, error) {
	s := NewTurnState()
	if snap == nil {
		return s, nil
	}
	for region, ids := range snap.Ledger {
		if _, err := b.Region(region); err != nil {
			return nil, fmt.Errorf("ledger: %w", err)
		}
		units, err := b.UnitsByID(ids)
		if err != nil {
			return nil, fmt.Errorf("ledger %s: %w", region, err)
		}
		if len(units) > 0 {
			s.ledger[region] = units
		}
	}
	records := make([]RecordSnapshot, len(snap.Records))
	copy(records, snap.Records)
	sort.SliceStable(records, func(i, j int) bool { return records[i].Index < records[j].Index })
	for i := range records {
		if records[i].Index != i {
			return nil, shared.NewValidationError("records", fmt.Sprintf("indices are not contiguous at %d", i))
		}
		r, err := importRecord(b, &records[i])
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		s.append(r)
	}
	return s, nil
}

func importRecord(b *board.Board, rs *RecordSnapshot) (*Record, error) {
	id, err := NewRecordIDFromString(rs.ID)
	if err != nil {
		return nil, err
	}
	player, err := shared.NewPlayerID(rs.Player)
	if err != nil {
		return nil, err
	}
	units, err := b.UnitsByID(rs.Units)
	if err != nil {
		return nil, err
	}
	change, err := board.Rebuild(b, rs.Change)
	if err != nil {
		return nil, err
	}
	r := &Record{
		ID:          id,
		Index:       rs.Index,
		Player:      player,
		Producer:    rs.Producer,
		Destination: rs.Destination,
		Units:       units,
		Change:      change,
		PlacedAt:    rs.PlacedAt,
	}
	for _, ras := range rs.Reallocations {
		ra := Reallocation{Kind: ReallocationKind(ras.Kind), From: ras.From, To: ras.To}
		switch ra.Kind {
		case ReallocationHandoff:
			if ra.Record, err = NewRecordIDFromString(ras.Record); err != nil {
				return nil, fmt.Errorf("handoff: %w", err)
			}
		case ReallocationSplit:
			if ras.Original == nil {
				return nil, shared.NewValidationError("reallocations", "split without original record")
			}
			if ra.Original, err = importRecord(b, ras.Original); err != nil {
				return nil, fmt.Errorf("split original: %w", err)
			}
			for _, part := range ras.Parts {
				pid, err := NewRecordIDFromString(part)
				if err != nil {
					return nil, fmt.Errorf("split part: %w", err)
				}
				ra.Parts = append(ra.Parts, pid)
			}
		default:
			return nil, shared.NewValidationError("reallocations", fmt.Sprintf("unknown kind %q", ras.Kind))
		}
		r.Reallocations = append(r.Reallocations, ra)
	}
	return r, nil
}

// Replay applies every record's change to b in index order. Use it when b is
// the board as it stood at the start of the step rather than the live board
// the snapshot was taken from.
func (s *TurnState) Replay(b *board.Board) error {
	for _, r := range s.log {
		if err := b.Apply(r.Change); err != nil {
			return fmt.Errorf("replay placement %d in %s: %w", r.Index, r.Destination, err)
		}
	}
	return nil
}
