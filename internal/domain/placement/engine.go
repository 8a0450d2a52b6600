package placement

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrescamacho/placement-go/internal/domain/board"
	"github.com/andrescamacho/placement-go/internal/domain/history"
	"github.com/andrescamacho/placement-go/internal/domain/rules"
	"github.com/andrescamacho/placement-go/internal/domain/shared"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
)

// Engine runs one player's placement step. It owns the step's TurnState and
// is not safe for concurrent use; callers serialize commands.
type Engine struct {
	board   *board.Board
	rules   *rules.Config
	player  shared.PlayerID
	state   *TurnState
	alloc   *Allocator
	steps   []Step
	chooser RelocationChooser
	journal history.Writer
	clock   shared.Clock

	// per command
	snapshot *TurnState
	applied  []board.Change
	pending  []*history.Event
}

// Option configures an Engine
type Option func(*Engine)

// WithSteps replaces the validation pipeline
func WithSteps(steps ...Step) Option {
	return func(e *Engine) { e.steps = steps }
}

// WithChooser lets the player pick which fighters move onto new carriers
func WithChooser(c RelocationChooser) Option {
	return func(e *Engine) { e.chooser = c }
}

// WithJournal sets where committed history events are written
func WithJournal(w history.Writer) Option {
	return func(e *Engine) { e.journal = w }
}

// WithClock sets the clock used for record and event timestamps
func WithClock(c shared.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// NewEngine creates an engine for player's placement step. A nil state starts a fresh step.
func NewEngine(b *board.Board, cfg *rules.Config, player shared.PlayerID, state *TurnState, opts ...Option) (*Engine, error) {
	if b == nil {
		return nil, fmt.Errorf("board cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("rules cannot be nil")
	}
	if player.IsZero() {
		return nil, fmt.Errorf("player cannot be neutral")
	}
	if state == nil {
		state = NewTurnState()
	}
	e := &Engine{
		board:  b,
		rules:  cfg,
		player: player,
		state:  state,
		steps:  DefaultSteps(),
		clock:  shared.NewRealClock(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.alloc = NewAllocator(b, cfg, state)
	return e, nil
}

func (e *Engine) Player() shared.PlayerID { return e.player }
func (e *Engine) Board() *board.Board     { return e.board }
func (e *Engine) State() *TurnState       { return e.state }
func (e *Engine) Allocator() *Allocator   { return e.alloc }
func (e *Engine) Steps() []Step           { return e.steps }

// Evaluation is the outcome of validating a placement request
type Evaluation struct {
	Accepted bool
	// Units is the subset of the request the destination accepts
	Units []*unit.Unit
	// Max is the number of units the destination's producers can still take
	Max    Capacity
	Step   string
	Reason string
}

// Evaluate runs the validation pipeline without changing anything
func (e *Engine) Evaluate(player shared.PlayerID, units []*unit.Unit, destination string) (*Evaluation, error) {
	dest, err := e.board.Region(destination)
	if err != nil {
		return nil, err
	}
	return e.evaluate(player, units, dest)
}

func (e *Engine) evaluate(player shared.PlayerID, units []*unit.Unit, dest *board.Region) (*Evaluation, error) {
	req := Request{Player: player, Units: units, Destination: dest}
	for _, step := range e.steps {
		reason, err := step.Check(e.alloc, req)
		if err != nil {
			return nil, fmt.Errorf("step %s: %w", step.Name(), err)
		}
		if reason != "" {
			return &Evaluation{Step: step.Name(), Reason: reason}, nil
		}
	}
	placeable, _ := e.alloc.UnitsToBePlaced(dest, units, player)
	return &Evaluation{
		Accepted: true,
		Units:    placeable,
		Max:      e.alloc.MaxUnitsToBePlaced(units, dest, player, true),
	}, nil
}

// Placeable is what the player may place in a destination
type Placeable struct {
	Units  []*unit.Unit
	Max    Capacity
	Reason string
}

// PlaceableUnits returns which of units the destination accepts and how many
// may be placed there in total. Max is Unlimited when no cap applies.
func (e *Engine) PlaceableUnits(units []*unit.Unit, destination string) (*Placeable, error) {
	dest, err := e.board.Region(destination)
	if err != nil {
		return nil, err
	}
	if reason := e.alloc.CanProduce(dest, units, e.player); reason != "" {
		return &Placeable{Reason: reason}, nil
	}
	placeable, _ := e.alloc.UnitsToBePlaced(dest, units, e.player)
	if placeable == nil {
		placeable = []*unit.Unit{}
	}
	return &Placeable{
		Units: placeable,
		Max:   e.alloc.MaxUnitsToBePlaced(units, dest, e.player, true),
	}, nil
}

// PlacementsMade returns the number of committed placements
func (e *Engine) PlacementsMade() int {
	return e.state.Len()
}

// Records returns the undo log
func (e *Engine) Records() []*Record {
	return e.state.Records()
}

// Undo reverts the placement at index and renumbers the ones after it
func (e *Engine) Undo(index int) error {
	if index < 0 || index >= e.state.Len() {
		return &RejectedError{Step: "undo", Reason: fmt.Sprintf("No placement with index %d", index)}
	}
	e.begin()
	rec := e.state.log[index]
	if err := e.undo(index); err != nil {
		return e.abort(err)
	}
	e.reverseReallocations(rec)
	e.commit()
	return nil
}

func (e *Engine) undo(index int) error {
	rec := e.state.log[index]
	if err := e.apply(rec.Change.Invert()); err != nil {
		return invariant("undo", "record %d: %v", index, err)
	}
	e.state.discharge(rec.Producer, rec.Units)
	e.state.remove(index)
	_, err := e.emit(history.EventTypeUndo, rec.Destination, fmt.Sprintf("Undo %s", rec.Description()), rec.Units, nil)
	return err
}

// EndOfStep discards held units that may not carry over and clears the step state
func (e *Engine) EndOfStep() error {
	e.begin()
	held := e.board.Held(e.player)
	if !e.rules.Properties.UnplacedUnitsLive && len(held) > 0 {
		if err := e.apply(&board.RemoveHeld{Player: e.player, Units: held}); err != nil {
			return e.abort(invariant("end of step", "%v", err))
		}
		desc := fmt.Sprintf("%s were produced but were not placed", unit.Describe(held))
		if _, err := e.emit(history.EventTypeUnplacedDiscard, "", desc, held, nil); err != nil {
			return e.abort(err)
		}
	}
	e.commit()
	e.state.Reset()
	return nil
}

// Place validates and commits a placement of units into destination
func (e *Engine) Place(ctx context.Context, units []*unit.Unit, destination string) error {
	if len(units) == 0 {
		return nil
	}
	dest, err := e.board.Region(destination)
	if err != nil {
		return err
	}
	ev, err := e.evaluate(e.player, units, dest)
	if err != nil {
		return err
	}
	if !ev.Accepted {
		return &RejectedError{Step: ev.Step, Reason: ev.Reason}
	}
	e.begin()
	if err := e.performPlace(ctx, unit.Copy(units), dest); err != nil {
		return e.abort(err)
	}
	e.commit()
	return nil
}

func (e *Engine) begin() {
	e.applied = nil
	e.pending = nil
	e.snapshot = e.state.clone()
}

func (e *Engine) commit() {
	if e.journal != nil {
		for _, ev := range e.pending {
			e.journal.Append(ev)
		}
	}
	e.applied = nil
	e.pending = nil
	e.snapshot = nil
}

// abort reverts every board change of the current command and restores the
// state captured when it began
func (e *Engine) abort(cause error) error {
	var rollbackErr error
	for i := len(e.applied) - 1; i >= 0; i-- {
		if err := e.applied[i].Invert().Apply(e.board); err != nil {
			rollbackErr = errors.Join(rollbackErr, err)
		}
	}
	if e.snapshot != nil {
		e.state.restore(e.snapshot)
		e.snapshot = nil
	}
	e.applied = nil
	e.pending = nil
	if rollbackErr != nil {
		return errors.Join(cause, fmt.Errorf("rollback: %w", rollbackErr))
	}
	return cause
}

func (e *Engine) apply(c board.Change) error {
	if err := c.Apply(e.board); err != nil {
		return err
	}
	e.applied = append(e.applied, c)
	return nil
}

// applyAll applies changes in order. If one fails, the ones already applied
// are inverted and false is returned.
func (e *Engine) applyAll(changes []board.Change) bool {
	mark := len(e.applied)
	for _, c := range changes {
		if err := e.apply(c); err != nil {
			for i := len(e.applied) - 1; i >= mark; i-- {
				_ = e.applied[i].Invert().Apply(e.board)
			}
			e.applied = e.applied[:mark]
			return false
		}
	}
	return true
}

func (e *Engine) emit(t history.EventType, region, description string, units []*unit.Unit, parent *history.Event) (*history.Event, error) {
	ev, err := history.NewEvent(e.player, e.clock.Now(), t, region, description, unit.IDs(units))
	if err != nil {
		return nil, err
	}
	if parent != nil {
		ev.AttachTo(parent)
	}
	e.pending = append(e.pending, ev)
	return ev, nil
}
