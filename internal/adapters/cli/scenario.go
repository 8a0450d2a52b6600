package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/placement-go/internal/adapters/scenario"
	"github.com/andrescamacho/placement-go/internal/domain/unit"
)

// NewScenarioCommand creates the scenario command with subcommands
func NewScenarioCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Work with scenario files",
	}

	cmd.AddCommand(newScenarioValidateCommand())

	return cmd
}

func newScenarioValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a scenario file against the schema and build it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scenario.Load(args[0])
			if err != nil {
				return err
			}
			w, err := sc.Build()
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			name := w.Name
			if name == "" {
				name = args[0]
			}
			fmt.Printf("Scenario %s is valid\n", name)
			fmt.Printf("  Player:           %s\n", w.Player)
			fmt.Printf("  Regions:          %d\n", len(w.Board.Regions()))
			fmt.Printf("  Unit types:       %d\n", len(sc.UnitTypes))
			fmt.Printf("  Held:             %s\n", unit.Describe(w.Board.Held(w.Player)))
			fmt.Printf("  Validation steps: %d (%d scripted)\n", len(w.Steps), len(sc.Rules))
			fmt.Printf("  Commands:         %d\n", len(w.Commands))
			return nil
		},
	}
}
