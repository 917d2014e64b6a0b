package providers

import (
	"context"
	"time"
)

// MockGenerator is a simple scripted implementation for testing.
type MockGenerator struct {
	ProviderName string
	Response     *Generation
	Err          error
	Delay        time.Duration

	// Calls counts Generate invocations.
	Calls int
}

// NewMockGenerator creates a mock that returns the given text with
// estimated token counts.
func NewMockGenerator(name, text string) *MockGenerator {
	return &MockGenerator{
		ProviderName: name,
		Response: &Generation{
			Text:         text,
			TokensInput:  10,
			TokensOutput: EstimateTokens(text),
		},
	}
}

func (m *MockGenerator) Name() string {
	return m.ProviderName
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string, maxTokens int) (*Generation, error) {
	m.Calls++

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.Err != nil {
		return nil, m.Err
	}
	return m.Response, nil
}
