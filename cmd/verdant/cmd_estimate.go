package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/verdant-ai/verdant/internal/evaluator"
	"github.com/verdant-ai/verdant/internal/models"
)

var (
	estimateProvider string
	estimateNoScore  bool
	estimateJSON     bool
)

func newEstimateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "estimate <prompt>",
		Short: "Evaluate a prompt on a single provider",
		Long: `Evaluate a prompt on one provider and report tokens, energy, carbon,
and quality. The result is appended to the local history database.

With no --provider flag, every configured provider is evaluated and the
result from the best-scoring one is reported.`,
		Args: cobra.ExactArgs(1),
		RunE: estimateCommandE,
	}

	cmd.Flags().StringVarP(&estimateProvider, "provider", "p", "", "Provider name from the configuration")
	cmd.Flags().BoolVar(&estimateNoScore, "no-score", false, "Skip quality scoring")
	cmd.Flags().BoolVar(&estimateJSON, "json", false, "Print the result as JSON")

	return cmd
}

func estimateCommandE(cmd *cobra.Command, args []string) error {
	prompt := args[0]

	var opts []evaluator.Option
	if estimateNoScore {
		opts = append(opts, evaluator.WithoutScoring())
	}

	a, err := loadApp(opts...)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	var result *models.CandidateResult
	if estimateProvider == "" {
		// No provider named: evaluate all of them and keep the winner.
		outcome, err := a.engine.Run(cmd.Context(), prompt)
		if err != nil {
			return fmt.Errorf("evaluation failed: %w", err)
		}
		if outcome.Winner == nil {
			return &NoCandidatesError{
				Message: fmt.Sprintf("all %d provider(s) failed, no candidate to select", len(outcome.Failures)),
			}
		}
		result = outcome.Winner
	} else {
		pcfg := a.cfg.Provider(estimateProvider)
		gen, ok := a.generators[estimateProvider]
		if pcfg == nil || !ok {
			return fmt.Errorf("unknown provider %q (configured: %v)", estimateProvider, a.cfg.ProviderNames())
		}

		ctx := cmd.Context()
		if a.cfg.TimeoutSec > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(a.cfg.TimeoutSec)*time.Second)
			defer cancel()
		}

		result, err = a.evaluator.Evaluate(ctx, gen, prompt, pcfg.EnergyPerToken)
		if err != nil {
			return fmt.Errorf("evaluation failed: %w", err)
		}
	}

	if err := a.store.Append(result); err != nil {
		return fmt.Errorf("saving result: %w", err)
	}

	if estimateJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(result)
	return nil
}
