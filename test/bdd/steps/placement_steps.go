package steps

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"

	"github.com/andrescamacho/placement-go/internal/adapters/persistence"
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
	"github.com/andrescamacho/placement-go/test/helpers"
)

// placementContext holds state for placement scenarios. The board is kept as
// a list of setup steps so a restart can rebuild the start-of-step board.
type placementContext struct {
	ctx      context.Context
	setup    []func(bb *helpers.BoardBuilder)
	player   shared.PlayerID
	board    *board.Board
	session  *placementapp.Session
	mediator mediator.Mediator

	events    *persistence.GormEventRepository
	snapshots *persistence.GormSnapshotRepository

	lastEval  *placementQuery.EvaluatePlacementResponse
	lastPlace *placementCmd.PlaceUnitsResponse
	lastUndo  *placementCmd.UndoPlacementResponse
	lastEnd   *placementCmd.EndStepResponse
}

func (pc *placementContext) reset() error {
	if err := helpers.TruncateAllTables(); err != nil {
		return err
	}
	pc.ctx = logging.WithLogger(context.Background(), logging.NewSlogLogger(io.Discard, "error", "text", false))
	pc.setup = nil
	pc.player = shared.Neutral
	pc.board = nil
	pc.session = nil
	pc.mediator = nil
	pc.events = persistence.NewGormEventRepository(helpers.SharedTestDB)
	pc.snapshots = persistence.NewGormSnapshotRepository(helpers.SharedTestDB, shared.NewRealClock())
	pc.lastEval = nil
	pc.lastPlace = nil
	pc.lastUndo = nil
	pc.lastEnd = nil
	return nil
}

func (pc *placementContext) given(fn func(bb *helpers.BoardBuilder)) error {
	pc.setup = append(pc.setup, fn)
	return nil
}

// ============================================================================
// Board Steps
// ============================================================================

func (pc *placementContext) aLandRegion(name, owner string, production int) error {
	return pc.given(func(bb *helpers.BoardBuilder) { bb.Land(name, owner, production) })
}

func (pc *placementContext) aSeaZone(name string) error {
	return pc.given(func(bb *helpers.BoardBuilder) { bb.Sea(name) })
}

func (pc *placementContext) regionBorders(a, b string) error {
	return pc.given(func(bb *helpers.BoardBuilder) { bb.Connect(a, b) })
}

func (pc *placementContext) anOriginalFactory(owner, region string) error {
	return pc.given(func(bb *helpers.BoardBuilder) { bb.Factory(region, owner) })
}

func (pc *placementContext) aFactory(owner, region string) error {
	return pc.given(func(bb *helpers.BoardBuilder) { bb.Put(region, "factory", 1, owner) })
}

func (pc *placementContext) playerHasUnitsIn(owner string, n int, typeName, region string) error {
	return pc.given(func(bb *helpers.BoardBuilder) { bb.Put(region, typeName, n, owner) })
}

func (pc *placementContext) playerHolds(owner string, n int, typeName string) error {
	return pc.given(func(bb *helpers.BoardBuilder) { bb.Hold(typeName, n, owner) })
}

func (pc *placementContext) playerHoldsTable(owner string, table *godog.Table) error {
	if len(table.Rows) < 2 {
		return fmt.Errorf("holdings table needs a header and at least one row")
	}
	for _, row := range table.Rows[1:] {
		typeName := getCellValue(table, row, "type")
		n, err := strconv.Atoi(getCellValue(table, row, "count"))
		if err != nil {
			return fmt.Errorf("invalid count for %s: %w", typeName, err)
		}
		if err := pc.playerHolds(owner, n, typeName); err != nil {
			return err
		}
	}
	return nil
}

func getCellValue(table *godog.Table, row *messages.PickleTableRow, columnName string) string {
	for i, cell := range table.Rows[0].Cells {
		if cell.Value == columnName && i < len(row.Cells) {
			return row.Cells[i].Value
		}
	}
	return ""
}

func (pc *placementContext) unitTypeConsumes(name string, n int, consumed string) error {
	return pc.given(func(bb *helpers.BoardBuilder) {
		bb.DefineType(name, unit.ClassLand, func(t *unit.Type) {
			t.ConsumesUnits = map[string]int{consumed: n}
		})
	})
}

func (pc *placementContext) unplacedUnitsAreDiscarded() error {
	return pc.given(func(bb *helpers.BoardBuilder) { bb.Rules().Properties.UnplacedUnitsLive = false })
}

func (pc *placementContext) playerIsPlacingUnits(name string) error {
	player, err := shared.NewPlayerID(name)
	if err != nil {
		return err
	}
	pc.player = player
	return pc.startSession()
}

func (pc *placementContext) theSessionIsRestarted() error {
	return pc.startSession()
}

func (pc *placementContext) startSession() error {
	bb := helpers.NewBoardBuilder()
	for _, fn := range pc.setup {
		fn(bb)
	}
	b, cfg, err := bb.Build()
	if err != nil {
		return fmt.Errorf("failed to build board: %w", err)
	}

	session, err := placementapp.NewSession(pc.ctx, b, cfg, pc.player,
		placementapp.WithEventRepository(pc.events),
		placementapp.WithSnapshotRepository(pc.snapshots),
		placementapp.WithReplay(),
	)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	m := mediator.NewMediator()
	registrations := []error{
		mediator.RegisterHandler[*placementCmd.PlaceUnitsCommand](m, placementCmd.NewPlaceUnitsHandler(session)),
		mediator.RegisterHandler[*placementCmd.UndoPlacementCommand](m, placementCmd.NewUndoPlacementHandler(session)),
		mediator.RegisterHandler[*placementCmd.EndStepCommand](m, placementCmd.NewEndStepHandler(session)),
		mediator.RegisterHandler[*placementQuery.EvaluatePlacementQuery](m, placementQuery.NewEvaluatePlacementHandler(session)),
		mediator.RegisterHandler[*placementQuery.GetPlacementsMadeQuery](m, placementQuery.NewGetPlacementsMadeHandler(session)),
	}
	for _, err := range registrations {
		if err != nil {
			return err
		}
	}

	pc.board = b
	pc.session = session
	pc.mediator = m
	return nil
}

// ============================================================================
// Action Steps
// ============================================================================

func (pc *placementContext) heldIDs(n int, typeName string) ([]string, error) {
	held := pc.board.Held(pc.player)
	picked := unit.FirstN(held, n, unit.OfTypeName(typeName))
	if len(picked) < n {
		return nil, fmt.Errorf("only %d %s held, %d requested", len(picked), typeName, n)
	}
	return unit.IDs(picked), nil
}

func (pc *placementContext) iEvaluatePlacing(n int, typeName, region string) error {
	ids, err := pc.heldIDs(n, typeName)
	if err != nil {
		return err
	}
	result, err := pc.mediator.Send(pc.ctx, &placementQuery.EvaluatePlacementQuery{UnitIDs: ids, Destination: region})
	if err != nil {
		return err
	}
	pc.lastEval = result.(*placementQuery.EvaluatePlacementResponse)
	return nil
}

func (pc *placementContext) iPlace(n int, typeName, region string) error {
	ids, err := pc.heldIDs(n, typeName)
	if err != nil {
		return err
	}
	result, err := pc.mediator.Send(pc.ctx, &placementCmd.PlaceUnitsCommand{UnitIDs: ids, Destination: region})
	if err != nil {
		return err
	}
	pc.lastPlace = result.(*placementCmd.PlaceUnitsResponse)
	return nil
}

func (pc *placementContext) iUndoPlacement(index int) error {
	result, err := pc.mediator.Send(pc.ctx, &placementCmd.UndoPlacementCommand{Index: index})
	if err != nil {
		return err
	}
	pc.lastUndo = result.(*placementCmd.UndoPlacementResponse)
	return nil
}

func (pc *placementContext) iEndThePlacementStep() error {
	result, err := pc.mediator.Send(pc.ctx, &placementCmd.EndStepCommand{})
	if err != nil {
		return err
	}
	pc.lastEnd = result.(*placementCmd.EndStepResponse)
	return nil
}

// ============================================================================
// Assertion Steps
// ============================================================================

func (pc *placementContext) theEvaluationShouldBeAcceptedWithUnlimitedCapacity() error {
	if pc.lastEval == nil {
		return fmt.Errorf("no evaluation was made")
	}
	if !pc.lastEval.Accepted {
		return fmt.Errorf("expected evaluation to be accepted, got %q", pc.lastEval.Reason)
	}
	if pc.lastEval.Max != placement.Unlimited.Int() {
		return fmt.Errorf("expected unlimited capacity, got %d", pc.lastEval.Max)
	}
	return nil
}

func (pc *placementContext) theEvaluationShouldBeRejectedWithReason(reason string) error {
	if pc.lastEval == nil {
		return fmt.Errorf("no evaluation was made")
	}
	if pc.lastEval.Accepted {
		return fmt.Errorf("expected evaluation to be rejected")
	}
	if pc.lastEval.Reason != reason {
		return fmt.Errorf("expected reason %q, got %q", reason, pc.lastEval.Reason)
	}
	return nil
}

func (pc *placementContext) thePlacementShouldBeAccepted() error {
	if pc.lastPlace == nil {
		return fmt.Errorf("no placement was made")
	}
	if !pc.lastPlace.Accepted {
		return fmt.Errorf("expected placement to be accepted, got %s: %q", pc.lastPlace.Step, pc.lastPlace.Reason)
	}
	return nil
}

func (pc *placementContext) thePlacementShouldBeRejectedWithReason(reason string) error {
	if pc.lastPlace == nil {
		return fmt.Errorf("no placement was made")
	}
	if pc.lastPlace.Accepted {
		return fmt.Errorf("expected placement to be rejected")
	}
	if pc.lastPlace.Reason != reason {
		return fmt.Errorf("expected reason %q, got %q", reason, pc.lastPlace.Reason)
	}
	return nil
}

func (pc *placementContext) theUndoShouldSucceed() error {
	if pc.lastUndo == nil {
		return fmt.Errorf("no undo was made")
	}
	if !pc.lastUndo.Undone {
		return fmt.Errorf("expected undo to succeed, got %q", pc.lastUndo.Reason)
	}
	return nil
}

func (pc *placementContext) theUndoShouldFailWithReason(reason string) error {
	if pc.lastUndo == nil {
		return fmt.Errorf("no undo was made")
	}
	if pc.lastUndo.Undone {
		return fmt.Errorf("expected undo to fail")
	}
	if pc.lastUndo.Reason != reason {
		return fmt.Errorf("expected reason %q, got %q", reason, pc.lastUndo.Reason)
	}
	return nil
}

func (pc *placementContext) regionShouldContain(region string, n int, typeName string) error {
	r, err := pc.board.Region(region)
	if err != nil {
		return err
	}
	if got := len(r.UnitsMatching(unit.OfTypeName(typeName))); got != n {
		return fmt.Errorf("expected %d %s in %s, got %d", n, typeName, region, got)
	}
	return nil
}

func (pc *placementContext) placementsMade() (*placementQuery.GetPlacementsMadeResponse, error) {
	result, err := pc.mediator.Send(pc.ctx, &placementQuery.GetPlacementsMadeQuery{})
	if err != nil {
		return nil, err
	}
	return result.(*placementQuery.GetPlacementsMadeResponse), nil
}

func (pc *placementContext) regionShouldHaveProduced(region string, n int) error {
	made, err := pc.placementsMade()
	if err != nil {
		return err
	}
	if got := len(made.Produced[region]); got != n {
		return fmt.Errorf("expected %s to have produced %d units, got %d", region, n, got)
	}
	return nil
}

func (pc *placementContext) placementShouldBeProducedBy(index int, producer string) error {
	made, err := pc.placementsMade()
	if err != nil {
		return err
	}
	if index >= len(made.Records) {
		return fmt.Errorf("no placement with index %d, %d made", index, len(made.Records))
	}
	if got := made.Records[index].Producer; got != producer {
		return fmt.Errorf("expected placement %d to be produced by %s, got %s", index, producer, got)
	}
	return nil
}

func (pc *placementContext) placementsShouldHaveBeenMade(n int) error {
	made, err := pc.placementsMade()
	if err != nil {
		return err
	}
	if made.Count != n {
		return fmt.Errorf("expected %d placements, got %d", n, made.Count)
	}
	return nil
}

func (pc *placementContext) playerShouldHold(owner string, n int) error {
	player, err := shared.NewPlayerID(owner)
	if err != nil {
		return err
	}
	if got := len(pc.board.Held(player)); got != n {
		return fmt.Errorf("expected %s to hold %d units, got %d", owner, n, got)
	}
	return nil
}

func (pc *placementContext) theHistoryShouldContain(n int, eventType string) error {
	t := history.EventType(eventType)
	if !t.IsValid() {
		return fmt.Errorf("unknown event type %s", eventType)
	}
	opts := history.DefaultQueryOptions()
	opts.EventType = &t
	got, err := pc.events.CountByPlayer(pc.ctx, pc.player, opts)
	if err != nil {
		return err
	}
	if got != n {
		return fmt.Errorf("expected %d %s events, got %d", n, eventType, got)
	}
	return nil
}

func (pc *placementContext) unplacedUnitsShouldHaveBeenDiscarded(n int) error {
	if pc.lastEnd == nil {
		return fmt.Errorf("the placement step was not ended")
	}
	if pc.lastEnd.Discarded != n {
		return fmt.Errorf("expected %d units discarded, got %d", n, pc.lastEnd.Discarded)
	}
	return nil
}

func (pc *placementContext) theSavedStepShouldBeCleared() error {
	snap, err := pc.snapshots.Load(pc.ctx, pc.player)
	if err != nil {
		return err
	}
	if snap != nil {
		return fmt.Errorf("expected no saved step, found %d placements", len(snap.Records))
	}
	return nil
}

// InitializePlacementScenario registers the placement step definitions
func InitializePlacementScenario(sc *godog.ScenarioContext) {
	pc := &placementContext{}

	sc.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, pc.reset()
	})

	// Board steps
	sc.Step(`^a land region "([^"]*)" owned by "([^"]*)" with production (\d+)$`, pc.aLandRegion)
	sc.Step(`^a sea zone "([^"]*)"$`, pc.aSeaZone)
	sc.Step(`^"([^"]*)" borders "([^"]*)"$`, pc.regionBorders)
	sc.Step(`^an original factory of "([^"]*)" in "([^"]*)"$`, pc.anOriginalFactory)
	sc.Step(`^a factory of "([^"]*)" in "([^"]*)"$`, pc.aFactory)
	sc.Step(`^"([^"]*)" has (\d+) "([^"]*)" in "([^"]*)"$`, pc.playerHasUnitsIn)
	sc.Step(`^"([^"]*)" holds (\d+) "([^"]*)"$`, pc.playerHolds)
	sc.Step(`^"([^"]*)" holds:$`, pc.playerHoldsTable)
	sc.Step(`^unit type "([^"]*)" consumes (\d+) "([^"]*)"$`, pc.unitTypeConsumes)
	sc.Step(`^unplaced units are discarded at the end of the step$`, pc.unplacedUnitsAreDiscarded)
	sc.Step(`^"([^"]*)" is placing units$`, pc.playerIsPlacingUnits)
	sc.Step(`^the placement session is restarted from the start of the step$`, pc.theSessionIsRestarted)

	// Action steps
	sc.Step(`^I evaluate placing (\d+) "([^"]*)" in "([^"]*)"$`, pc.iEvaluatePlacing)
	sc.Step(`^I place (\d+) "([^"]*)" in "([^"]*)"$`, pc.iPlace)
	sc.Step(`^I undo placement (\d+)$`, pc.iUndoPlacement)
	sc.Step(`^I end the placement step$`, pc.iEndThePlacementStep)

	// Assertion steps
	sc.Step(`^the evaluation should be accepted with unlimited capacity$`, pc.theEvaluationShouldBeAcceptedWithUnlimitedCapacity)
	sc.Step(`^the evaluation should be rejected with reason "([^"]*)"$`, pc.theEvaluationShouldBeRejectedWithReason)
	sc.Step(`^the placement should be accepted$`, pc.thePlacementShouldBeAccepted)
	sc.Step(`^the placement should be rejected with reason "([^"]*)"$`, pc.thePlacementShouldBeRejectedWithReason)
	sc.Step(`^the undo should succeed$`, pc.theUndoShouldSucceed)
	sc.Step(`^the undo should fail with reason "([^"]*)"$`, pc.theUndoShouldFailWithReason)
	sc.Step(`^"([^"]*)" should contain (\d+) "([^"]*)"$`, pc.regionShouldContain)
	sc.Step(`^"([^"]*)" should have produced (\d+) units?$`, pc.regionShouldHaveProduced)
	sc.Step(`^placement (\d+) should be produced by "([^"]*)"$`, pc.placementShouldBeProducedBy)
	sc.Step(`^(\d+) placements? should have been made$`, pc.placementsShouldHaveBeenMade)
	sc.Step(`^"([^"]*)" should hold (\d+) units?$`, pc.playerShouldHold)
	sc.Step(`^the history should contain (\d+) "([^"]*)" events?$`, pc.theHistoryShouldContain)
	sc.Step(`^(\d+) unplaced units? should have been discarded$`, pc.unplacedUnitsShouldHaveBeenDiscarded)
	sc.Step(`^the saved step should be cleared$`, pc.theSavedStepShouldBeCleared)
}
