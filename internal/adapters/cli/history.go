package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/placement-go/internal/adapters/persistence"
	historyQuery "github.com/andrescamacho/placement-go/internal/application/history/queries"
	"github.com/andrescamacho/placement-go/internal/infrastructure/config"
	"github.com/andrescamacho/placement-go/internal/infrastructure/database"
)

// NewHistoryCommand creates the history command with subcommands
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse the placement history",
		Long: `Browse the history events written by placements, undos and the end of
placement steps.

Examples:
  placement history list --player Germany
  placement history list --player Germany --type PLACEMENT --region Germany
  placement history list --player Germany --start-date 2026-01-01 --order-by "timestamp ASC"`,
	}

	cmd.AddCommand(newHistoryListCommand())

	return cmd
}

func newHistoryListCommand() *cobra.Command {
	var (
		startDate string
		endDate   string
		eventType string
		region    string
		limit     int
		offset    int
		orderBy   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List history events",
		Long: `List history events of a player with optional filtering.

Event Types:
  PLACEMENT         - Units placed in a region
  CONSUMPTION       - Placed units consumed units already on the map
  AIR_RELOCATION    - Fighters moved onto newly placed carriers
  UNPLACED_DISCARD  - Held units discarded at the end of the step
  UNDO              - A placement was undone`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList(startDate, endDate, eventType, region, limit, offset, orderBy)
		},
	}

	cmd.Flags().StringVar(&startDate, "start-date", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end-date", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&eventType, "type", "", "Filter by event type")
	cmd.Flags().StringVar(&region, "region", "", "Filter by region")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of events to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of events to skip")
	cmd.Flags().StringVar(&orderBy, "order-by", "timestamp DESC", "Sort order")

	return cmd
}

func runHistoryList(startDate, endDate, eventType, region string, limit, offset int, orderBy string) error {
	if playerName == "" {
		return fmt.Errorf("--player flag is required")
	}

	query := &historyQuery.ListHistoryQuery{
		Player:  playerName,
		Limit:   limit,
		Offset:  offset,
		OrderBy: orderBy,
	}
	if startDate != "" {
		start, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return fmt.Errorf("invalid start date format: %w", err)
		}
		query.StartDate = &start
	}
	if endDate != "" {
		end, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return fmt.Errorf("invalid end date format: %w", err)
		}
		// Set to end of day
		end = end.Add(24*time.Hour - time.Nanosecond)
		query.EndDate = &end
	}
	if eventType != "" {
		query.EventType = &eventType
	}
	if region != "" {
		query.Region = &region
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	handler := historyQuery.NewListHistoryHandler(persistence.NewGormEventRepository(db))
	result, err := handler.Handle(context.Background(), query)
	if err != nil {
		return fmt.Errorf("failed to query history: %w", err)
	}

	displayHistory(result.(*historyQuery.ListHistoryResponse))
	return nil
}
