package placement

import (
	"github.com/andrescamacho/placement-go/internal/domain/board"
	"github.com/andrescamacho/placement-go/internal/domain/shared"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
)

// Step names of the default validation pipeline
const (
	StepOwnership  = "ownership"
	StepProducers  = "producers"
	StepProduction = "production"
	StepLegality   = "legality"
	StepCarriers   = "carriers"
)

// Request is a placement request as seen by validation steps
type Request struct {
	Player      shared.PlayerID
	Units       []*unit.Unit
	Destination *board.Region
}

// Step is one stage of the validation pipeline. Check returns a rejection
// reason, or "" to let the request through. An error aborts evaluation.
type Step interface {
	Name() string
	Check(a *Allocator, req Request) (string, error)
}

// DefaultSteps returns the classic pipeline, in evaluation order
func DefaultSteps() []Step {
	return []Step{
		NewOwnershipStep(),
		NewProducersStep(),
		NewProductionStep(),
		NewLegalityStep(),
		NewCarriersStep(),
	}
}

// NewOwnershipStep rejects units the player does not hold, or lists twice
func NewOwnershipStep() Step { return ownershipStep{} }

type ownershipStep struct{}

func (ownershipStep) Name() string { return StepOwnership }

func (ownershipStep) Check(a *Allocator, req Request) (string, error) {
	if unit.HasDuplicates(req.Units) || !unit.ContainsAll(a.board.Held(req.Player), req.Units) {
		return "Not enough units", nil
	}
	return "", nil
}

// NewProducersStep rejects destinations without a producer able to produce
func NewProducersStep() Step { return producersStep{} }

type producersStep struct{}

func (producersStep) Name() string { return StepProducers }

func (producersStep) Check(a *Allocator, req Request) (string, error) {
	return a.CanProduce(req.Destination, req.Units, req.Player), nil
}

// NewProductionStep rejects requests exceeding the producers' capacity
func NewProductionStep() Step { return productionStep{} }

type productionStep struct{}

func (productionStep) Name() string { return StepProduction }

func (productionStep) Check(a *Allocator, req Request) (string, error) {
	return a.CheckProduction(req.Destination, req.Units, req.Player), nil
}

// NewLegalityStep rejects units that may not stand in the destination
func NewLegalityStep() Step { return legalityStep{} }

type legalityStep struct{}

func (legalityStep) Name() string { return StepLegality }

func (legalityStep) Check(a *Allocator, req Request) (string, error) {
	return a.CanUnitsBePlaced(req.Destination, req.Units, req.Player), nil
}

// NewCarriersStep rejects air placed at sea without carrier room
func NewCarriersStep() Step { return carriersStep{} }

type carriersStep struct{}

func (carriersStep) Name() string { return StepCarriers }

func (carriersStep) Check(a *Allocator, req Request) (string, error) {
	return a.CheckCarriers(req.Destination, req.Units, req.Player), nil
}
