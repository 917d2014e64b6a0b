package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/verdant-ai/verdant/internal/stats"
)

var statsJSON bool

func newStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate usage and footprint statistics",
		Long: `Recompute aggregate statistics over the full evaluation history:
totals for requests, energy, and carbon, plus a per-provider breakdown.`,
		Args: cobra.NoArgs,
		RunE: statsCommandE,
	}

	cmd.Flags().BoolVar(&statsJSON, "json", false, "Print statistics as JSON")

	return cmd
}

func statsCommandE(_ *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	history, err := a.store.ReadAll()
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}

	agg := stats.Compute(history)
	if statsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(agg)
	}

	printAggregate(agg)
	return nil
}
