// Package providers defines the text-generation capability and the adapters
// that implement it against configured backends.
package providers

import (
	"context"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/verdant-ai/verdant/internal/config"
)

// Generation is the raw output of one provider call.
type Generation struct {
	Text         string
	TokensInput  int
	TokensOutput int
}

// TotalTokens returns the combined token count.
func (g *Generation) TotalTokens() int {
	return g.TokensInput + g.TokensOutput
}

// Generator is the interface every provider adapter implements.
type Generator interface {
	// Name returns the configured provider name.
	Name() string

	// Generate produces text for the prompt. maxTokens caps the output;
	// zero means the provider's configured limit.
	Generate(ctx context.Context, prompt string, maxTokens int) (*Generation, error)
}

// New creates a Generator for the given provider configuration. Adapter
// options come from the free-form options map and are decoded per kind.
func New(cfg *config.ProviderConfig) (Generator, error) {
	switch cfg.Kind {
	case config.KindOpenAI:
		var opts openAIOptions
		if err := mapstructure.Decode(cfg.Options, &opts); err != nil {
			return nil, fmt.Errorf("provider %q: decoding options: %w", cfg.Name, err)
		}
		return newOpenAIGenerator(cfg, opts)
	case config.KindSimulated:
		var opts simulatedOptions
		if err := mapstructure.Decode(cfg.Options, &opts); err != nil {
			return nil, fmt.Errorf("provider %q: decoding options: %w", cfg.Name, err)
		}
		return newSimulatedGenerator(cfg, opts), nil
	default:
		return nil, fmt.Errorf("provider %q: unknown kind %q", cfg.Name, cfg.Kind)
	}
}

// NewAll creates a Generator per configured provider, keyed by name.
func NewAll(cfg *config.Config) (map[string]Generator, error) {
	gens := make(map[string]Generator, len(cfg.Providers))
	for i := range cfg.Providers {
		g, err := New(&cfg.Providers[i])
		if err != nil {
			return nil, err
		}
		gens[cfg.Providers[i].Name] = g
	}
	return gens, nil
}
