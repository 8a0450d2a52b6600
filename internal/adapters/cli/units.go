package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	placementCmd "github.com/andrescamacho/placement-go/internal/application/placement/commands"
	placementQuery "github.com/andrescamacho/placement-go/internal/application/placement/queries"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
)

// NewUnitsCommand creates the units command with subcommands
func NewUnitsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "units",
		Short: "Place held units on the board",
		Long: `Place, evaluate and undo placements for the scenario player.

Units are named either by id (--units infantry-006,infantry-007) or by type
and count (--type infantry:3), which picks the first held units of that type.

Examples:
  placement units held
  placement units placeable --to Germany
  placement units evaluate --to "Baltic Sea" --type carrier --type fighter
  placement units place --to Germany --units infantry-006,infantry-007
  placement units status
  placement units undo 0
  placement units end-step`,
	}

	cmd.AddCommand(newUnitsHeldCommand())
	cmd.AddCommand(newUnitsPlaceableCommand())
	cmd.AddCommand(newUnitsEvaluateCommand())
	cmd.AddCommand(newUnitsPlaceCommand())
	cmd.AddCommand(newUnitsStatusCommand())
	cmd.AddCommand(newUnitsUndoCommand())
	cmd.AddCommand(newUnitsEndStepCommand())

	return cmd
}

func addUnitFlags(cmd *cobra.Command, to *string, ids, types *[]string) {
	cmd.Flags().StringVar(to, "to", "", "Destination region (required)")
	cmd.Flags().StringSliceVar(ids, "units", nil, "Unit ids, comma separated")
	cmd.Flags().StringSliceVar(types, "type", nil, "Unit type and optional count, e.g. infantry:3")
	cmd.MarkFlagRequired("to")
}

func newUnitsHeldCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "held",
		Short: "List units waiting to be placed",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			held := a.world.Board.Held(a.world.Player)
			if len(held) == 0 {
				fmt.Printf("%s holds no units\n", a.world.Player)
				return nil
			}
			fmt.Printf("%s holds %s\n", a.world.Player, unit.Describe(held))
			displayUnitIDs(unit.IDs(held))
			return nil
		},
	}
}

func newUnitsPlaceableCommand() *cobra.Command {
	var (
		to    string
		ids   []string
		types []string
	)

	cmd := &cobra.Command{
		Use:   "placeable",
		Short: "Show which units may be placed in a region",
		Long: `Show which of the given units (all held units by default) may be placed
in the destination and how many of them at most.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			unitIDs, err := a.unitIDs(ids, types, to)
			if err != nil {
				return err
			}
			if len(unitIDs) == 0 {
				unitIDs = unit.IDs(a.world.Board.Held(a.world.Player))
			}

			result, err := a.mediator.Send(a.ctx, &placementQuery.GetPlaceableUnitsQuery{UnitIDs: unitIDs, Destination: to})
			if err != nil {
				return fmt.Errorf("failed to query placeable units: %w", err)
			}
			displayPlaceable(to, result.(*placementQuery.GetPlaceableUnitsResponse))
			return nil
		},
	}
	addUnitFlags(cmd, &to, &ids, &types)

	return cmd
}

func newUnitsEvaluateCommand() *cobra.Command {
	var (
		to    string
		ids   []string
		types []string
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Check a placement without committing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			unitIDs, err := a.unitIDs(ids, types, to)
			if err != nil {
				return err
			}
			result, err := a.mediator.Send(a.ctx, &placementQuery.EvaluatePlacementQuery{UnitIDs: unitIDs, Destination: to})
			if err != nil {
				return fmt.Errorf("failed to evaluate placement: %w", err)
			}
			displayEvaluation(to, result.(*placementQuery.EvaluatePlacementResponse))
			return nil
		},
	}
	addUnitFlags(cmd, &to, &ids, &types)

	return cmd
}

func newUnitsPlaceCommand() *cobra.Command {
	var (
		to    string
		ids   []string
		types []string
	)

	cmd := &cobra.Command{
		Use:   "place",
		Short: "Place units in a region",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(appOptions{lock: true})
			if err != nil {
				return err
			}
			defer a.Close()

			unitIDs, err := a.unitIDs(ids, types, to)
			if err != nil {
				return err
			}
			result, err := a.mediator.Send(a.ctx, &placementCmd.PlaceUnitsCommand{UnitIDs: unitIDs, Destination: to})
			if err != nil {
				return err
			}
			return displayPlaced(to, result.(*placementCmd.PlaceUnitsResponse))
		},
	}
	addUnitFlags(cmd, &to, &ids, &types)

	return cmd
}

func newUnitsStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the placements made this step",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.mediator.Send(a.ctx, &placementQuery.GetPlacementsMadeQuery{})
			if err != nil {
				return fmt.Errorf("failed to query placements: %w", err)
			}
			displayPlacements(result.(*placementQuery.GetPlacementsMadeResponse))
			return nil
		},
	}
}

func newUnitsUndoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "undo <index>",
		Short: "Undo one placement of the current step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid placement index %q", args[0])
			}

			a, err := newApp(appOptions{lock: true})
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.mediator.Send(a.ctx, &placementCmd.UndoPlacementCommand{Index: index})
			if err != nil {
				return err
			}
			return displayUndo(index, result.(*placementCmd.UndoPlacementResponse))
		},
	}
}

func newUnitsEndStepCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "end-step",
		Short: "End the placement step",
		Long: `End the placement step. Units left unplaced are kept for the next turn
unless the rule set discards them, and the saved step is cleared.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(appOptions{lock: true})
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.mediator.Send(a.ctx, &placementCmd.EndStepCommand{})
			if err != nil {
				return err
			}
			displayEndStep(result.(*placementCmd.EndStepResponse))
			return nil
		},
	}
}
