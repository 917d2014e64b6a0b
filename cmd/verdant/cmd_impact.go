package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/verdant-ai/verdant/internal/stats"
)

var (
	impactCarbonKg    float64
	impactPerDay      int
	impactFromHistory bool
	impactJSON        bool
)

func newImpactCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "impact",
		Short: "Project a per-request footprint to annual equivalents",
		Long: `Scale a single request's carbon cost to a year of traffic and express
it as trees needed, kilometers driven, and coal burned.

The per-request figure comes from --carbon, or from the average over the
stored history with --from-history.`,
		Args: cobra.NoArgs,
		RunE: impactCommandE,
	}

	cmd.Flags().Float64Var(&impactCarbonKg, "carbon", 0, "Carbon per request in kgCO2")
	cmd.Flags().IntVar(&impactPerDay, "per-day", 1000, "Projected requests per day")
	cmd.Flags().BoolVar(&impactFromHistory, "from-history", false, "Use the average carbon per request from the history database")
	cmd.Flags().BoolVar(&impactJSON, "json", false, "Print the projection as JSON")

	return cmd
}

func impactCommandE(_ *cobra.Command, _ []string) error {
	if impactPerDay <= 0 {
		return fmt.Errorf("--per-day must be positive, got %d", impactPerDay)
	}

	carbonKg := impactCarbonKg
	if impactFromHistory {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		history, err := a.store.ReadAll()
		if err != nil {
			return fmt.Errorf("reading history: %w", err)
		}
		if len(history) == 0 {
			return fmt.Errorf("history is empty, run an evaluation first or pass --carbon")
		}
		agg := stats.Compute(history)
		carbonKg = agg.TotalCarbonKg / float64(agg.TotalRequests)
	} else if carbonKg <= 0 {
		return fmt.Errorf("--carbon must be positive (or use --from-history)")
	}

	im := stats.ProjectImpact(carbonKg, impactPerDay)
	if impactJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(im)
	}

	printImpact(im)
	return nil
}
