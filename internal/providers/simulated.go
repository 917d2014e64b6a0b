package providers

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/verdant-ai/verdant/internal/config"
)

// simulatedOptions tunes the synthetic provider.
type simulatedOptions struct {
	// BaseLatencyMs is the fixed per-call latency before token scaling.
	BaseLatencyMs int `mapstructure:"base_latency_ms"`
	// Seed makes the output token count reproducible. Zero means time-seeded.
	Seed int64 `mapstructure:"seed"`
}

// simulatedGenerator synthesizes responses locally with realistic token
// counts and latency. It lets the full pipeline run without any API keys.
// One generator serves concurrent requests, so draws from rng take mu.
type simulatedGenerator struct {
	name      string
	maxTokens int
	baseMs    int

	mu  sync.Mutex
	rng *rand.Rand
}

func newSimulatedGenerator(cfg *config.ProviderConfig, opts simulatedOptions) *simulatedGenerator {
	baseMs := opts.BaseLatencyMs
	if baseMs <= 0 {
		baseMs = 150
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &simulatedGenerator{
		name:      cfg.Name,
		maxTokens: cfg.MaxTokens,
		baseMs:    baseMs,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

func (g *simulatedGenerator) Name() string {
	return g.name
}

func (g *simulatedGenerator) Generate(ctx context.Context, prompt string, maxTokens int) (*Generation, error) {
	if maxTokens <= 0 || maxTokens > g.maxTokens {
		maxTokens = g.maxTokens
	}

	tokensIn := EstimateTokens(prompt)

	g.mu.Lock()
	tokensOut := 50 + g.rng.Intn(451)
	jitter := 0.1 + g.rng.Float64()*0.4
	g.mu.Unlock()
	if tokensOut > maxTokens {
		tokensOut = maxTokens
	}

	// Latency scales with token volume, with some jitter.
	latency := time.Duration(float64(g.baseMs)+float64(tokensIn+tokensOut)*jitter) * time.Millisecond

	select {
	case <-time.After(latency):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	text := fmt.Sprintf("[simulated %s] response to: %s", g.name, truncatePrompt(prompt, 120))

	return &Generation{
		Text:         text,
		TokensInput:  tokensIn,
		TokensOutput: tokensOut,
	}, nil
}

func truncatePrompt(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

// EstimateTokens approximates a token count from text length: roughly 1.3
// tokens per word or one token per 4 characters, whichever is larger.
func EstimateTokens(text string) int {
	words := len(strings.Fields(text))
	chars := len(text)
	est := float64(words) * 1.3
	if byChars := float64(chars) / 4.0; byChars > est {
		est = byChars
	}
	return int(est)
}
