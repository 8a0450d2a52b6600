package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"gorm.io/gorm"

	"github.com/andrescamacho/placement-go/internal/adapters/persistence"
	"github.com/andrescamacho/placement-go/internal/adapters/scenario"
	"github.com/andrescamacho/placement-go/internal/adapters/snapshot"
	historyQuery "github.com/andrescamacho/placement-go/internal/application/history/queries"
	"github.com/andrescamacho/placement-go/internal/application/logging"
	"github.com/andrescamacho/placement-go/internal/application/mediator"
	placementapp "github.com/andrescamacho/placement-go/internal/application/placement"
	placementCmd "github.com/andrescamacho/placement-go/internal/application/placement/commands"
	placementQuery "github.com/andrescamacho/placement-go/internal/application/placement/queries"
	"github.com/andrescamacho/placement-go/internal/domain/board"
	"github.com/andrescamacho/placement-go/internal/domain/history"
	"github.com/andrescamacho/placement-go/internal/domain/placement"
	"github.com/andrescamacho/placement-go/internal/domain/shared"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
	"github.com/andrescamacho/placement-go/internal/infrastructure/config"
	"github.com/andrescamacho/placement-go/internal/infrastructure/database"
	"github.com/andrescamacho/placement-go/internal/infrastructure/pidfile"
)

// app is everything one CLI invocation needs: the loaded scenario, the
// resumed session and a mediator with every handler registered
type app struct {
	cfg      *config.Config
	world    *scenario.World
	session  *placementapp.Session
	mediator mediator.Mediator
	events   history.EventRepository

	ctx     context.Context
	db      *gorm.DB
	logOut  io.Closer
	metrics *metricsServer
	lock    *pidfile.PIDFile
}

type appOptions struct {
	// fresh discards any saved step before the session starts
	fresh bool
	// lock holds engine.lock_file for commands that change the step
	lock bool
}

func newApp(opts appOptions) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	a := &app{cfg: cfg}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	logger, closer, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}
	a.logOut = closer
	a.ctx = logging.WithLogger(context.Background(), logger)

	path := scenarioPath
	if path == "" {
		path = cfg.Engine.ScenarioPath
	}
	if path == "" {
		return nil, fmt.Errorf("no scenario: use --scenario or set engine.scenario_path")
	}
	sc, err := scenario.Load(path)
	if err != nil {
		return nil, err
	}
	if playerName != "" {
		sc.Player = playerName
	}
	a.world, err = sc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build scenario: %w", err)
	}

	if opts.lock && cfg.Engine.LockFile != "" {
		lock := pidfile.New(cfg.Engine.LockFile)
		if err := lock.Acquire(a.world.Player.Value()); err != nil {
			return nil, err
		}
		a.lock = lock
	}

	if !cfg.Engine.DisableHistory || cfg.Engine.SnapshotStore == "database" {
		a.db, err = database.NewConnection(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.AutoMigrate(a.db); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	sessionOpts := []placementapp.SessionOption{
		placementapp.WithEngineOptions(
			placement.WithSteps(a.world.Steps...),
			placement.WithChooser(newChooser(cfg.Engine.Relocation)),
		),
	}
	if !cfg.Engine.DisableHistory {
		a.events = persistence.NewGormEventRepository(a.db)
		sessionOpts = append(sessionOpts, placementapp.WithEventRepository(a.events))
	}
	snapshots := a.snapshotRepository()
	if snapshots != nil {
		if opts.fresh {
			if err := snapshots.Delete(a.ctx, a.world.Player); err != nil {
				return nil, fmt.Errorf("failed to discard saved step: %w", err)
			}
		}
		// The scenario file is the start-of-step board
		sessionOpts = append(sessionOpts, placementapp.WithSnapshotRepository(snapshots), placementapp.WithReplay())
	}

	a.session, err = placementapp.NewSession(a.ctx, a.world.Board, a.world.Rules, a.world.Player, sessionOpts...)
	if err != nil {
		return nil, err
	}

	a.mediator = mediator.NewMediator()
	if cfg.Metrics.Enabled {
		if a.metrics, err = startMetrics(cfg.Metrics, a.mediator); err != nil {
			return nil, err
		}
	}
	if err := a.registerHandlers(); err != nil {
		return nil, err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Scenario %q loaded, playing as %s\n", a.world.Name, a.world.Player)
	}
	ok = true
	return a, nil
}

func (a *app) snapshotRepository() placement.SnapshotRepository {
	switch a.cfg.Engine.SnapshotStore {
	case "database":
		return persistence.NewGormSnapshotRepository(a.db, shared.NewRealClock())
	case "file":
		return snapshot.NewFileStore(a.cfg.Engine.SnapshotDir, shared.NewRealClock())
	default:
		return nil
	}
}

func (a *app) registerHandlers() error {
	if err := mediator.RegisterHandler[*placementCmd.PlaceUnitsCommand](a.mediator, placementCmd.NewPlaceUnitsHandler(a.session)); err != nil {
		return fmt.Errorf("failed to register PlaceUnits handler: %w", err)
	}
	if err := mediator.RegisterHandler[*placementCmd.UndoPlacementCommand](a.mediator, placementCmd.NewUndoPlacementHandler(a.session)); err != nil {
		return fmt.Errorf("failed to register UndoPlacement handler: %w", err)
	}
	if err := mediator.RegisterHandler[*placementCmd.EndStepCommand](a.mediator, placementCmd.NewEndStepHandler(a.session)); err != nil {
		return fmt.Errorf("failed to register EndStep handler: %w", err)
	}
	if err := mediator.RegisterHandler[*placementQuery.GetPlaceableUnitsQuery](a.mediator, placementQuery.NewGetPlaceableUnitsHandler(a.session)); err != nil {
		return fmt.Errorf("failed to register GetPlaceableUnits handler: %w", err)
	}
	if err := mediator.RegisterHandler[*placementQuery.EvaluatePlacementQuery](a.mediator, placementQuery.NewEvaluatePlacementHandler(a.session)); err != nil {
		return fmt.Errorf("failed to register EvaluatePlacement handler: %w", err)
	}
	if err := mediator.RegisterHandler[*placementQuery.GetPlacementsMadeQuery](a.mediator, placementQuery.NewGetPlacementsMadeHandler(a.session)); err != nil {
		return fmt.Errorf("failed to register GetPlacementsMade handler: %w", err)
	}
	if a.events != nil {
		if err := mediator.RegisterHandler[*historyQuery.ListHistoryQuery](a.mediator, historyQuery.NewListHistoryHandler(a.events)); err != nil {
			return fmt.Errorf("failed to register ListHistory handler: %w", err)
		}
	}
	return nil
}

// unitIDs resolves --units and --type flags into held unit ids
func (a *app) unitIDs(ids []string, types []string, to string) ([]string, error) {
	if len(types) == 0 {
		return ids, nil
	}
	spec := scenario.PlaceSpec{To: to}
	for _, t := range types {
		tc, err := parseTypeCount(t)
		if err != nil {
			return nil, err
		}
		spec.Units = append(spec.Units, tc)
	}
	picked, err := a.world.UnitIDs(spec)
	if err != nil {
		return nil, err
	}
	return append(append([]string{}, ids...), picked...), nil
}

// Close stops the metrics server and releases the database, lock and log file
func (a *app) Close() {
	if a.metrics != nil {
		a.metrics.Stop()
	}
	if a.db != nil {
		database.Close(a.db)
	}
	if a.lock != nil {
		a.lock.Release()
	}
	if a.logOut != nil {
		a.logOut.Close()
	}
}

func newLogger(cfg config.LoggingConfig) (logging.ContainerLogger, io.Closer, error) {
	var w io.Writer
	var closer io.Closer
	switch cfg.Output {
	case "stdout":
		w = os.Stdout
	case "file":
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w, closer = f, f
	default:
		w = os.Stderr
	}
	level := cfg.Level
	if verbose {
		level = "debug"
	}
	return logging.NewSlogLogger(w, level, cfg.Format, cfg.IncludeCaller), closer, nil
}

// newChooser returns nil for the engine's own lowest-id pick
func newChooser(relocation string) placement.RelocationChooser {
	if relocation != config.RelocationHighestID {
		return nil
	}
	return placement.ChooserFunc(func(_ context.Context, candidates []*unit.Unit, _, _ *board.Region, spareLift int) ([]*unit.Unit, error) {
		sorted := unit.Copy(candidates)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID > sorted[j].ID })
		var chosen []*unit.Unit
		lift := 0
		for _, u := range sorted {
			if lift+u.Type.CarrierCost > spareLift {
				continue
			}
			lift += u.Type.CarrierCost
			chosen = append(chosen, u)
		}
		return chosen, nil
	})
}
