package placement

import (
	"context"
	"fmt"
	"sync"

	"github.com/andrescamacho/placement-go/internal/domain/board"
	"github.com/andrescamacho/placement-go/internal/domain/history"
	"github.com/andrescamacho/placement-go/internal/domain/placement"
	"github.com/andrescamacho/placement-go/internal/domain/rules"
	"github.com/andrescamacho/placement-go/internal/domain/shared"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
)

// Session owns one player's placement step: the board, the engine and the
// journal of history events not yet persisted. Commands run one at a time.
type Session struct {
	mu        sync.Mutex
	board     *board.Board
	rules     *rules.Config
	player    shared.PlayerID
	engine    *placement.Engine
	journal   *history.Journal
	events    history.EventRepository
	snapshots placement.SnapshotRepository
}

// SessionOption configures a Session
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	events     history.EventRepository
	snapshots  placement.SnapshotRepository
	engineOpts []placement.Option
	replay     bool
}

// WithEventRepository persists committed history events after every command
func WithEventRepository(repo history.EventRepository) SessionOption {
	return func(c *sessionConfig) { c.events = repo }
}

// WithSnapshotRepository saves the step after every command and resumes from it
func WithSnapshotRepository(repo placement.SnapshotRepository) SessionOption {
	return func(c *sessionConfig) { c.snapshots = repo }
}

// WithReplay marks the board as the start-of-step board: a resumed step's
// placements are applied to it again
func WithReplay() SessionOption {
	return func(c *sessionConfig) { c.replay = true }
}

// WithEngineOptions passes options through to the placement engine
func WithEngineOptions(opts ...placement.Option) SessionOption {
	return func(c *sessionConfig) { c.engineOpts = append(c.engineOpts, opts...) }
}

// NewSession starts, or resumes when a snapshot repository holds one, the
// placement step of player
func NewSession(ctx context.Context, b *board.Board, cfg *rules.Config, player shared.PlayerID, opts ...SessionOption) (*Session, error) {
	sc := &sessionConfig{}
	for _, opt := range opts {
		opt(sc)
	}

	var state *placement.TurnState
	if sc.snapshots != nil {
		snap, err := sc.snapshots.Load(ctx, player)
		if err != nil {
			return nil, fmt.Errorf("failed to load placement snapshot: %w", err)
		}
		if snap != nil {
			state, err = placement.ImportTurnState(b, snap)
			if err != nil {
				return nil, fmt.Errorf("failed to restore placement step: %w", err)
			}
			if sc.replay {
				if err := state.Replay(b); err != nil {
					return nil, fmt.Errorf("failed to restore placement step: %w", err)
				}
			}
		}
	}

	journal := history.NewJournal()
	engineOpts := append([]placement.Option{placement.WithJournal(journal)}, sc.engineOpts...)
	engine, err := placement.NewEngine(b, cfg, player, state, engineOpts...)
	if err != nil {
		return nil, err
	}

	return &Session{
		board:     b,
		rules:     cfg,
		player:    player,
		engine:    engine,
		journal:   journal,
		events:    sc.events,
		snapshots: sc.snapshots,
	}, nil
}

func (s *Session) Player() shared.PlayerID { return s.player }
func (s *Session) Board() *board.Board     { return s.board }
func (s *Session) Rules() *rules.Config    { return s.rules }

// Do runs fn against the engine and then persists what it committed. The
// error of fn is returned unwrapped so callers can inspect rejections.
func (s *Session) Do(ctx context.Context, fn func(e *placement.Engine) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	runErr := fn(s.engine)
	if err := s.flush(ctx); err != nil {
		if runErr != nil {
			return fmt.Errorf("%w (flush failed: %v)", runErr, err)
		}
		return err
	}
	return runErr
}

// View runs a read-only fn against the engine
func (s *Session) View(fn func(e *placement.Engine) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.engine)
}

// ResolveUnits looks up units by id
func (s *Session) ResolveUnits(ids []string) ([]*unit.Unit, error) {
	units, err := s.board.UnitsByID(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve units: %w", err)
	}
	return units, nil
}

func (s *Session) flush(ctx context.Context) error {
	events := s.journal.Drain()
	if s.events != nil && len(events) > 0 {
		if err := s.events.Save(ctx, events); err != nil {
			return fmt.Errorf("failed to persist history events: %w", err)
		}
	}
	if s.snapshots == nil {
		return nil
	}
	if s.engine.PlacementsMade() == 0 {
		if err := s.snapshots.Delete(ctx, s.player); err != nil {
			return fmt.Errorf("failed to clear placement snapshot: %w", err)
		}
		return nil
	}
	snap, err := s.engine.State().Export()
	if err != nil {
		return fmt.Errorf("failed to export placement step: %w", err)
	}
	if err := s.snapshots.Save(ctx, s.player, snap); err != nil {
		return fmt.Errorf("failed to save placement snapshot: %w", err)
	}
	return nil
}
