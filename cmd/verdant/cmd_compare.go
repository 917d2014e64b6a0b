package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	compareJSON    bool
	compareVerbose bool
)

func newCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <prompt>",
		Short: "Evaluate a prompt on every provider and pick the winner",
		Long: `Evaluate a prompt on all configured providers concurrently, score each
candidate on carbon footprint and output quality, and report the winner.

The winner is the candidate with the lowest combined score, where lower
carbon and higher quality both push the score down. Every successful
candidate is appended to the local history database.`,
		Args: cobra.ExactArgs(1),
		RunE: compareCommandE,
	}

	cmd.Flags().BoolVar(&compareJSON, "json", false, "Print the full outcome as JSON")
	cmd.Flags().BoolVarP(&compareVerbose, "verbose", "v", false, "Show each candidate's response text")

	return cmd
}

func compareCommandE(cmd *cobra.Command, args []string) error {
	prompt := args[0]

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	outcome, err := a.engine.Run(cmd.Context(), prompt)
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	for i := range outcome.Scored {
		if err := a.store.Append(&outcome.Scored[i].Result); err != nil {
			return fmt.Errorf("saving result: %w", err)
		}
	}

	if compareJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(outcome); err != nil {
			return err
		}
	} else {
		printOutcome(outcome, compareVerbose)
	}

	if outcome.Winner == nil {
		return &NoCandidatesError{
			Message: fmt.Sprintf("all %d provider(s) failed, no candidate to select", len(outcome.Failures)),
		}
	}
	return nil
}
