package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	placementCmd "github.com/andrescamacho/placement-go/internal/application/placement/commands"
	placementQuery "github.com/andrescamacho/placement-go/internal/application/placement/queries"
)

// NewRunCommand creates the run command which plays a scenario's command script
func NewRunCommand() *cobra.Command {
	var keepGoing bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Play the command script of a scenario",
		Long: `Play the commands listed in the scenario file from a fresh step.

Any saved step of the player is discarded first. Rejected placements are
reported and, with --keep-going, do not stop the script.

Example:
  placement --scenario classic.yaml run --keep-going`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(appOptions{fresh: true, lock: true})
			if err != nil {
				return err
			}
			defer a.Close()

			if len(a.world.Commands) == 0 {
				fmt.Println("Scenario has no commands")
				return nil
			}

			for i, c := range a.world.Commands {
				fmt.Printf("[%d] ", i)
				var stepErr error
				switch {
				case c.Place != nil:
					ids, err := a.world.UnitIDs(*c.Place)
					if err != nil {
						return fmt.Errorf("command %d: %w", i, err)
					}
					result, err := a.mediator.Send(a.ctx, &placementCmd.PlaceUnitsCommand{UnitIDs: ids, Destination: c.Place.To})
					if err != nil {
						return fmt.Errorf("command %d: %w", i, err)
					}
					stepErr = displayPlaced(c.Place.To, result.(*placementCmd.PlaceUnitsResponse))
				case c.Undo != nil:
					result, err := a.mediator.Send(a.ctx, &placementCmd.UndoPlacementCommand{Index: *c.Undo})
					if err != nil {
						return fmt.Errorf("command %d: %w", i, err)
					}
					stepErr = displayUndo(*c.Undo, result.(*placementCmd.UndoPlacementResponse))
				case c.EndStep:
					result, err := a.mediator.Send(a.ctx, &placementCmd.EndStepCommand{})
					if err != nil {
						return fmt.Errorf("command %d: %w", i, err)
					}
					displayEndStep(result.(*placementCmd.EndStepResponse))
				}
				if stepErr != nil && !keepGoing {
					return fmt.Errorf("command %d: %w", i, stepErr)
				}
			}

			result, err := a.mediator.Send(a.ctx, &placementQuery.GetPlacementsMadeQuery{})
			if err != nil {
				return fmt.Errorf("failed to query placements: %w", err)
			}
			displayPlacements(result.(*placementQuery.GetPlacementsMadeResponse))
			return nil
		},
	}

	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "Continue after a rejected command")

	return cmd
}
