// Package evaluator runs a single provider against a prompt and produces the
// canonical normalized result record, including the energy and carbon cost of
// the call.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verdant-ai/verdant/internal/config"
	"github.com/verdant-ai/verdant/internal/measure"
	"github.com/verdant-ai/verdant/internal/models"
	"github.com/verdant-ai/verdant/internal/providers"
	"github.com/verdant-ai/verdant/internal/scoring"
	"github.com/verdant-ai/verdant/internal/units"
)

// ErrEmptyPrompt is returned for prompts that are empty or whitespace-only.
var ErrEmptyPrompt = errors.New("prompt is empty")

// Evaluator evaluates one prompt against one provider.
type Evaluator struct {
	meter     measure.Meter
	estimator *measure.Estimator
	scorer    scoring.Scorer
	logger    *slog.Logger

	gridIntensity float64
	maxTokens     int
	runScorer     bool
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithMeter overrides the default process meter.
func WithMeter(m measure.Meter) Option {
	return func(e *Evaluator) { e.meter = m }
}

// WithScorer overrides the default heuristic scorer.
func WithScorer(s scoring.Scorer) Option {
	return func(e *Evaluator) { e.scorer = s }
}

// WithoutScoring disables accuracy scoring; results carry a nil accuracy.
func WithoutScoring() Option {
	return func(e *Evaluator) { e.runScorer = false }
}

// WithMaxTokens sets the per-call output token cap.
func WithMaxTokens(n int) Option {
	return func(e *Evaluator) { e.maxTokens = n }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) { e.logger = l }
}

// New creates an Evaluator using the carbon intensity from cfg.
func New(cfg *config.Config, opts ...Option) *Evaluator {
	e := &Evaluator{
		meter:         &measure.ProcessMeter{PowerWatts: measure.DefaultPowerWatts, GridIntensity: cfg.GridIntensity},
		estimator:     &measure.Estimator{GridIntensity: cfg.GridIntensity},
		scorer:        scoring.HeuristicScorer{},
		logger:        slog.Default(),
		gridIntensity: cfg.GridIntensity,
		maxTokens:     cfg.MaxTokens,
		runScorer:     true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs prompt through gen, measures the call, scores the response,
// and returns a fully normalized result. energyPerToken is the provider's
// per-token energy figure, used only when the live measurement is unusable.
//
// A generation error fails the evaluation. A measurement or scoring error
// does not: measurement falls back to token-based estimation, and a scoring
// error degrades the result to zero accuracy with a warning.
func (e *Evaluator) Evaluate(ctx context.Context, gen providers.Generator, prompt string, energyPerToken float64) (*models.CandidateResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	var (
		generation *providers.Generation
		genErr     error
	)

	start := time.Now()
	reading, meterErr := e.meter.Measure(ctx, func(ctx context.Context) error {
		generation, genErr = gen.Generate(ctx, prompt, e.maxTokens)
		// Generation failures are reported through genErr so that a meter
		// error stays distinguishable from a provider error.
		return nil
	})
	elapsed := time.Since(start)

	if genErr != nil {
		return nil, fmt.Errorf("provider %s: %w", gen.Name(), genErr)
	}

	result := &models.CandidateResult{
		ID:            uuid.NewString(),
		Provider:      gen.Name(),
		Prompt:        prompt,
		ResponseText:  generation.Text,
		TokensInput:   generation.TokensInput,
		TokensOutput:  generation.TokensOutput,
		TotalTokens:   generation.TotalTokens(),
		InferenceMs:   elapsed.Milliseconds(),
		Method:        models.EstimationMeasured,
		GridIntensity: e.gridIntensity,
		CreatedAt:     time.Now().UTC(),
	}

	if meterErr != nil || !reading.Reliable() {
		if meterErr != nil {
			e.logger.Warn("meter failed, falling back to token estimate",
				"provider", gen.Name(), "error", meterErr)
			result.Warnings = append(result.Warnings, "measurement failed: "+meterErr.Error())
		}
		reading = e.estimator.FromTokens(generation.TotalTokens(), energyPerToken)
		result.Method = models.EstimationEstimated
	}

	carbon, err := units.NormalizeCarbon(reading.CarbonKg, units.UnitKilograms)
	if err != nil {
		return nil, fmt.Errorf("normalizing carbon for %s: %w", gen.Name(), err)
	}
	result.EnergyKWh = reading.EnergyKWh
	result.CarbonKg = carbon

	if e.runScorer {
		e.applyScore(result, prompt, generation.Text)
	}

	e.logger.Debug("candidate evaluated",
		"provider", result.Provider,
		"tokens", result.TotalTokens,
		"carbon_kg", result.CarbonKg,
		"method", result.Method)

	return result, nil
}

func (e *Evaluator) applyScore(result *models.CandidateResult, prompt, response string) {
	score, err := safeScore(e.scorer, prompt, response)
	if err != nil {
		e.logger.Warn("scoring failed", "provider", result.Provider, "error", err)
		zero := 0.0
		result.Accuracy = &zero
		result.Warnings = append(result.Warnings, string(models.ErrScoringFailed)+": "+err.Error())
		return
	}
	acc := units.NormalizeAccuracy(score.Overall)
	result.Accuracy = &acc
}

// safeScore guards against scorer panics so that one bad response cannot
// take down a whole selection round.
func safeScore(s scoring.Scorer, prompt, response string) (result *scoring.ScoreResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scorer panic: %v", r)
		}
	}()
	result = s.Score(prompt, response)
	if result == nil {
		return nil, errors.New("scorer returned no result")
	}
	return result, nil
}
