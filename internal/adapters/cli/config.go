package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/placement-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration settings",
		Long: `Inspect placement engine configuration.

Configuration is loaded from multiple sources with priority:
1. Environment variables (PLACEMENT_* prefix, DATABASE_URL)
2. Config file (config.yaml)
3. Default values

Examples:
  placement config show
  PLACEMENT_ENGINE_SNAPSHOT_STORE=file placement config show`,
	}

	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				fmt.Printf("Warning: Failed to load config: %v\n", err)
				fmt.Println("Using default configuration.")
				cfg = config.LoadConfigOrDefault("")
			}

			fmt.Println("Placement Engine Configuration")
			fmt.Println("==============================")

			fmt.Println("\nDatabase:")
			fmt.Printf("  Type:             %s\n", cfg.Database.Type)
			switch {
			case cfg.Database.URL != "":
				fmt.Printf("  URL:              %s\n", maskPassword(cfg.Database.URL))
			case cfg.Database.Type == "sqlite":
				fmt.Printf("  Path:             %s\n", cfg.Database.Path)
			default:
				fmt.Printf("  Host:             %s\n", cfg.Database.Host)
				fmt.Printf("  Port:             %d\n", cfg.Database.Port)
				fmt.Printf("  Database:         %s\n", cfg.Database.Name)
				fmt.Printf("  User:             %s\n", cfg.Database.User)
			}
			fmt.Printf("  Max Connections:  %d\n", cfg.Database.Pool.MaxOpen)

			fmt.Println("\nEngine:")
			scenarioFile := cfg.Engine.ScenarioPath
			if scenarioFile == "" {
				scenarioFile = "(not set)"
			}
			fmt.Printf("  Scenario:         %s\n", scenarioFile)
			fmt.Printf("  Relocation:       %s\n", cfg.Engine.Relocation)
			fmt.Printf("  Snapshot Store:   %s\n", cfg.Engine.SnapshotStore)
			if cfg.Engine.SnapshotStore == "file" {
				fmt.Printf("  Snapshot Dir:     %s\n", cfg.Engine.SnapshotDir)
			}
			fmt.Printf("  History:          %s\n", enabledText(!cfg.Engine.DisableHistory))
			if cfg.Engine.LockFile != "" {
				fmt.Printf("  Lock File:        %s\n", cfg.Engine.LockFile)
			}

			fmt.Println("\nMetrics:")
			fmt.Printf("  Enabled:          %s\n", enabledText(cfg.Metrics.Enabled))
			fmt.Printf("  Endpoint:         %s:%d%s\n", cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)

			fmt.Println("\nLogging:")
			fmt.Printf("  Level:            %s\n", cfg.Logging.Level)
			fmt.Printf("  Format:           %s\n", cfg.Logging.Format)
			fmt.Printf("  Output:           %s\n", cfg.Logging.Output)

			return nil
		},
	}
}

// maskPassword masks passwords in connection strings for display
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}

func enabledText(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}
