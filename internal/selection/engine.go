// Package selection fans one prompt out to every configured provider
// concurrently, scores the successful results, and picks the winner with the
// lowest combined carbon-plus-quality score.
package selection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/verdant-ai/verdant/internal/config"
	"github.com/verdant-ai/verdant/internal/evaluator"
	"github.com/verdant-ai/verdant/internal/models"
	"github.com/verdant-ai/verdant/internal/providers"
)

// ErrNoProviders is returned when the engine has no providers to dispatch to.
var ErrNoProviders = errors.New("no providers configured")

// Engine runs selection rounds across a fixed set of providers. The provider
// order from the configuration is preserved and used as the deterministic
// tie-break when two candidates score identically.
type Engine struct {
	cfg        *config.Config
	evaluator  *evaluator.Evaluator
	generators map[string]providers.Generator
	order      []string
	timeout    time.Duration
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout sets the per-candidate deadline. Zero means no deadline.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an Engine over the providers in cfg.
func New(cfg *config.Config, ev *evaluator.Evaluator, gens map[string]providers.Generator, opts ...Option) *Engine {
	e := &Engine{
		cfg:        cfg,
		evaluator:  ev,
		generators: gens,
		order:      cfg.ProviderNames(),
		timeout:    time.Duration(cfg.TimeoutSec) * time.Second,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run evaluates prompt on every provider concurrently and returns the full
// outcome. Each provider gets its own deadline; one slow or failing provider
// never blocks or aborts the others. The returned outcome has a nil Winner
// exactly when every provider failed, which is an answer, not an error. Run
// itself only errors on a caller mistake such as an empty prompt or an empty
// provider set, or when the caller's context is cancelled before the round
// settles; a cancelled round never yields a winner.
func (e *Engine) Run(ctx context.Context, prompt string) (*models.SelectionOutcome, error) {
	start := time.Now()
	candidates, err := e.fanOut(ctx, prompt)
	if err != nil {
		return nil, err
	}

	outcome := e.assemble(prompt, candidates)
	outcome.DurationMs = time.Since(start).Milliseconds()

	if outcome.Winner != nil {
		e.logger.Info("selection complete",
			"round", outcome.RoundID,
			"winner", outcome.Winner.Provider,
			"candidates", len(outcome.Scored),
			"failures", len(outcome.Failures))
	} else {
		e.logger.Warn("selection complete with no usable candidate",
			"round", outcome.RoundID,
			"failures", len(outcome.Failures))
	}
	return outcome, nil
}

// CompareAll evaluates prompt on every provider concurrently and returns the
// raw candidates in configuration order, without ranking them or picking a
// winner. Callers that want their own ordering or presentation use this
// instead of Run.
func (e *Engine) CompareAll(ctx context.Context, prompt string) ([]models.Candidate, error) {
	return e.fanOut(ctx, prompt)
}

func (e *Engine) fanOut(ctx context.Context, prompt string) ([]models.Candidate, error) {
	if len(e.order) == 0 {
		return nil, ErrNoProviders
	}

	candidates := make([]models.Candidate, len(e.order))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range e.order {
		g.Go(func() error {
			candidates[i] = e.evaluateOne(gctx, name, prompt)
			return nil
		})
	}
	// Workers never return errors; failures are collected as candidates.
	_ = g.Wait()

	// A cancelled round must not produce a usable outcome, even if some
	// candidates finished before the cancellation landed.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// An empty prompt fails every candidate the same way before dispatch.
	// Surface it as a caller error instead of an all-failed outcome.
	for _, c := range candidates {
		if !c.OK() && c.Failure.Reason == models.ErrInvalidPrompt {
			return nil, evaluator.ErrEmptyPrompt
		}
	}
	return candidates, nil
}

func (e *Engine) evaluateOne(ctx context.Context, name, prompt string) models.Candidate {
	pcfg := e.cfg.Provider(name)
	gen, ok := e.generators[name]
	if !ok || pcfg == nil {
		return failure(name, models.ErrProviderUnavailable, "provider not initialized")
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	result, err := e.evaluator.Evaluate(ctx, gen, prompt, pcfg.EnergyPerToken)
	if err != nil {
		switch {
		case errors.Is(err, evaluator.ErrEmptyPrompt):
			return failure(name, models.ErrInvalidPrompt, err.Error())
		case errors.Is(err, context.DeadlineExceeded):
			return failure(name, models.ErrTimeout,
				fmt.Sprintf("no response within %s", e.timeout))
		default:
			return failure(name, models.ErrProviderUnavailable, err.Error())
		}
	}
	return models.Candidate{Result: result}
}

// assemble scores the successes, sorts them, and picks the winner. The sort
// is by score ascending with configuration order breaking ties, so repeated
// rounds over identical inputs always agree.
func (e *Engine) assemble(prompt string, candidates []models.Candidate) *models.SelectionOutcome {
	outcome := &models.SelectionOutcome{
		RoundID:   uuid.NewString(),
		Prompt:    prompt,
		Scored:    []models.ScoredCandidate{},
		Failures:  []models.CandidateFailure{},
		Timestamp: time.Now().UTC(),
	}

	rank := make(map[string]int, len(e.order))
	for i, name := range e.order {
		rank[name] = i
	}

	for _, c := range candidates {
		if c.OK() {
			outcome.Scored = append(outcome.Scored, models.ScoredCandidate{
				Result: *c.Result,
				Score:  c.Result.Score(),
			})
		} else {
			outcome.Failures = append(outcome.Failures, *c.Failure)
		}
	}

	sort.SliceStable(outcome.Scored, func(i, j int) bool {
		if outcome.Scored[i].Score != outcome.Scored[j].Score {
			return outcome.Scored[i].Score < outcome.Scored[j].Score
		}
		return rank[outcome.Scored[i].Result.Provider] < rank[outcome.Scored[j].Result.Provider]
	})

	if len(outcome.Scored) > 0 {
		winner := outcome.Scored[0].Result
		outcome.Winner = &winner
	}
	return outcome
}

func failure(provider string, reason models.ErrorKind, detail string) models.Candidate {
	return models.Candidate{Failure: &models.CandidateFailure{
		Provider: provider,
		Reason:   reason,
		Detail:   detail,
	}}
}
