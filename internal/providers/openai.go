package providers

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
	"github.com/verdant-ai/verdant/internal/config"
)

// openAIOptions holds adapter-specific settings from the provider's
// options map.
type openAIOptions struct {
	Temperature  float32 `mapstructure:"temperature"`
	SystemPrompt string  `mapstructure:"system_prompt"`
	Organization string  `mapstructure:"organization"`
}

// openAIGenerator speaks the OpenAI chat-completions dialect. With a custom
// BaseURL it covers OpenRouter, Groq, NVIDIA NIM, Ollama, and compatible
// proxies.
type openAIGenerator struct {
	name      string
	modelID   string
	maxTokens int
	opts      openAIOptions
	client    *openai.Client
}

func newOpenAIGenerator(cfg *config.ProviderConfig, opts openAIOptions) (*openAIGenerator, error) {
	apiKey := ""
	if cfg.APIKeyEnv != "" {
		apiKey = os.Getenv(cfg.APIKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("provider %q: environment variable %s is not set", cfg.Name, cfg.APIKeyEnv)
		}
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if opts.Organization != "" {
		clientCfg.OrgID = opts.Organization
	}

	return &openAIGenerator{
		name:      cfg.Name,
		modelID:   cfg.ModelID,
		maxTokens: cfg.MaxTokens,
		opts:      opts,
		client:    openai.NewClientWithConfig(clientCfg),
	}, nil
}

func (g *openAIGenerator) Name() string {
	return g.name
}

func (g *openAIGenerator) Generate(ctx context.Context, prompt string, maxTokens int) (*Generation, error) {
	if maxTokens <= 0 || maxTokens > g.maxTokens {
		maxTokens = g.maxTokens
	}

	messages := []openai.ChatCompletionMessage{}
	if g.opts.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: g.opts.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.modelID,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: g.opts.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", g.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("calling %s: response contained no choices", g.name)
	}

	gen := &Generation{
		Text:         resp.Choices[0].Message.Content,
		TokensInput:  resp.Usage.PromptTokens,
		TokensOutput: resp.Usage.CompletionTokens,
	}

	// Some OpenAI-compatible gateways omit the usage block; fall back to a
	// length-based estimate so downstream energy math still has tokens.
	if gen.TokensInput == 0 {
		gen.TokensInput = EstimateTokens(prompt)
	}
	if gen.TokensOutput == 0 && gen.Text != "" {
		gen.TokensOutput = EstimateTokens(gen.Text)
	}

	return gen, nil
}
