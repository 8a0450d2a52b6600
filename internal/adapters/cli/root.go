package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath   string
	scenarioPath string
	playerName   string
	verbose      bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "placement",
		Short: "Placement engine - place newly produced units on the board",
		Long: `Placement engine validates and commits unit placements for one player's
placement step. The map, unit types and rules come from a scenario file.
The step in progress is saved between commands, so placements can be made,
inspected and undone across invocations until the step is ended.

Examples:
  placement scenario validate configs/scenarios/classic.yaml
  placement --scenario classic.yaml units placeable --to Germany
  placement --scenario classic.yaml units place --to Germany --type infantry:3
  placement --scenario classic.yaml units status
  placement --scenario classic.yaml units undo 0
  placement --scenario classic.yaml units end-step
  placement --scenario classic.yaml run
  placement history list --player Germany`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: ./config.yaml, ./configs/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&scenarioPath, "scenario", "s", "",
		"Scenario file (overrides engine.scenario_path)")
	rootCmd.PersistentFlags().StringVarP(&playerName, "player", "p", "",
		"Player placing units (overrides the scenario player)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")

	// Add command groups
	rootCmd.AddCommand(NewUnitsCommand())
	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewHistoryCommand())
	rootCmd.AddCommand(NewScenarioCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
