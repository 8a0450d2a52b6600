package cli

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/andrescamacho/placement-go/internal/adapters/scenario"
	historyQuery "github.com/andrescamacho/placement-go/internal/application/history/queries"
	placementCmd "github.com/andrescamacho/placement-go/internal/application/placement/commands"
	placementQuery "github.com/andrescamacho/placement-go/internal/application/placement/queries"
)

const rule = "─────────────────────────────────────────────────────────────────────────────"

// parseTypeCount parses "infantry" or "infantry:3"
func parseTypeCount(s string) (scenario.TypeCount, error) {
	name, count, found := strings.Cut(s, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return scenario.TypeCount{}, fmt.Errorf("invalid --type %q: missing unit type", s)
	}
	if !found {
		return scenario.TypeCount{Type: name, Count: 1}, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(count))
	if err != nil || n < 1 {
		return scenario.TypeCount{}, fmt.Errorf("invalid --type %q: count must be a positive number", s)
	}
	return scenario.TypeCount{Type: name, Count: n}, nil
}

func displayUnitIDs(ids []string) {
	fmt.Printf("  %s\n", strings.Join(ids, ", "))
}

func displayPlaceable(to string, resp *placementQuery.GetPlaceableUnitsResponse) {
	if resp.Reason != "" {
		fmt.Printf("Nothing can be placed in %s: %s\n", to, resp.Reason)
		return
	}
	limit := "no limit"
	if resp.Max >= 0 {
		limit = fmt.Sprintf("at most %d", resp.Max)
	}
	fmt.Printf("%d units may be placed in %s (%s)\n", len(resp.UnitIDs), to, limit)
	displayUnitIDs(resp.UnitIDs)
}

func displayEvaluation(to string, resp *placementQuery.EvaluatePlacementResponse) {
	if !resp.Accepted {
		fmt.Printf("✗ Rejected by %s: %s\n", resp.Step, resp.Reason)
		return
	}
	fmt.Printf("✓ %d units can be placed in %s\n", len(resp.UnitIDs), to)
}

// displayPlaced prints the outcome and returns an error for a rejection so
// the process exits non-zero
func displayPlaced(to string, resp *placementCmd.PlaceUnitsResponse) error {
	if !resp.Accepted {
		fmt.Printf("✗ Rejected by %s: %s\n", resp.Step, resp.Reason)
		return fmt.Errorf("placement in %s rejected", to)
	}
	fmt.Printf("✓ Placed %d units in %s (%d placements this step)\n", resp.Placed, to, resp.PlacementsMade)
	return nil
}

func displayUndo(index int, resp *placementCmd.UndoPlacementResponse) error {
	if !resp.Undone {
		fmt.Printf("✗ %s\n", resp.Reason)
		return fmt.Errorf("undo of placement %d failed", index)
	}
	fmt.Printf("✓ Undid placement %d (%d placements this step)\n", index, resp.PlacementsMade)
	return nil
}

func displayEndStep(resp *placementCmd.EndStepResponse) {
	fmt.Printf("✓ Step ended after %d placements", resp.Placements)
	switch {
	case resp.Discarded > 0:
		fmt.Printf(", %d unplaced units discarded\n", resp.Discarded)
	case resp.Unplaced > 0:
		fmt.Printf(", %d unplaced units kept\n", resp.Unplaced)
	default:
		fmt.Println()
	}
}

func displayPlacements(resp *placementQuery.GetPlacementsMadeResponse) {
	fmt.Printf("\nPLACEMENTS THIS STEP (%d)\n", resp.Count)
	fmt.Println(rule)
	if resp.Count == 0 {
		fmt.Println("No placements made")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tDestination\tProducer\tUnits")
	fmt.Fprintln(w, "─\t───────────\t────────\t─────")
	for _, r := range resp.Records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.Index, r.Destination, r.Producer, r.Description)
	}
	w.Flush()

	if len(resp.Produced) > 0 {
		fmt.Println("\nProduced by:")
		producers := make([]string, 0, len(resp.Produced))
		for p := range resp.Produced {
			producers = append(producers, p)
		}
		sort.Strings(producers)
		for _, p := range producers {
			fmt.Printf("  %-20s %d units\n", p+":", len(resp.Produced[p]))
		}
	}
	fmt.Println(rule)
}

func displayHistory(resp *historyQuery.ListHistoryResponse) {
	if len(resp.Events) == 0 {
		fmt.Println("No history events found")
		return
	}

	fmt.Printf("\nHISTORY (Showing %d of %d total)\n", len(resp.Events), resp.Total)
	fmt.Println(rule)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Timestamp\tType\tRegion\tDescription")
	fmt.Fprintln(w, "─────────\t────\t──────\t───────────")
	for _, e := range resp.Events {
		description := e.Description
		if e.ParentID != "" {
			description = "  └ " + description
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.Type,
			e.Region,
			description,
		)
	}
	w.Flush()

	fmt.Println(rule)
	fmt.Printf("Total: %d events\n\n", resp.Total)
}
