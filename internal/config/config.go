// Package config provides the Config struct and loader for verdant.yaml
// configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default values for configuration. Load() references them and no other
// code should duplicate them.
const (
	// DefaultGridIntensity is the grid carbon intensity in kgCO2/kWh.
	// The 0.708 figure is the India national grid average.
	DefaultGridIntensity = 0.708
	DefaultCountryISO    = "IND"

	DefaultTimeoutSec = 120
	DefaultMaxTokens  = 1024

	DefaultDatabasePath = "verdant.db"

	DefaultServerPort = 3000

	// DefaultEnergyPerToken is the kWh-per-token fallback used when a
	// provider entry does not declare its own figure.
	DefaultEnergyPerToken = 0.00001
)

// ProviderKind selects the adapter used to reach a provider.
type ProviderKind string

const (
	// KindOpenAI covers every endpoint speaking the OpenAI
	// chat-completions dialect: OpenAI, OpenRouter, Groq, NVIDIA NIM,
	// Ollama, and compatible proxies.
	KindOpenAI ProviderKind = "openai"
	// KindSimulated synthesizes responses locally; useful without API keys.
	KindSimulated ProviderKind = "simulated"
)

// ProviderConfig describes one configured text-generation backend.
type ProviderConfig struct {
	Name      string       `yaml:"name"`
	Kind      ProviderKind `yaml:"kind"`
	ModelID   string       `yaml:"model"`
	BaseURL   string       `yaml:"base_url,omitempty"`
	APIKeyEnv string       `yaml:"api_key_env,omitempty"`

	// EnergyPerToken is kWh per token for the estimation fallback.
	EnergyPerToken float64 `yaml:"energy_per_token,omitempty"`
	CostPerToken   float64 `yaml:"cost_per_token,omitempty"`
	MaxTokens      int     `yaml:"max_tokens,omitempty"`

	// Options holds adapter-specific settings, decoded by the adapter.
	Options map[string]any `yaml:"options,omitempty"`
}

// HasAPIKey reports whether the provider's API key environment variable is
// set and non-empty. Providers without a key requirement always report true.
func (p *ProviderConfig) HasAPIKey() bool {
	if p.APIKeyEnv == "" {
		return true
	}
	return os.Getenv(p.APIKeyEnv) != ""
}

// Config is the top-level verdant.yaml structure.
type Config struct {
	GridIntensity float64 `yaml:"grid_intensity,omitempty"`
	CountryISO    string  `yaml:"country_iso_code,omitempty"`

	TimeoutSec int    `yaml:"timeout_seconds,omitempty"`
	MaxTokens  int    `yaml:"max_tokens,omitempty"`
	Database   string `yaml:"database,omitempty"`
	ServerPort int    `yaml:"server_port,omitempty"`

	Providers []ProviderConfig `yaml:"providers"`
}

// ErrNotFound is returned by LoadFile when the config file doesn't exist.
var ErrNotFound = errors.New("config file not found")

// Load parses and validates a config from raw YAML bytes, then applies
// defaults.
func Load(data []byte) (*Config, error) {
	if errs := ValidateBytes(data); len(errs) > 0 {
		return nil, fmt.Errorf("invalid config:\n  - %s", strings.Join(errs, "\n  - "))
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile loads a config from the given path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.GridIntensity == 0 {
		c.GridIntensity = DefaultGridIntensity
	}
	if c.CountryISO == "" {
		c.CountryISO = DefaultCountryISO
	}
	if c.TimeoutSec == 0 {
		c.TimeoutSec = DefaultTimeoutSec
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Database == "" {
		c.Database = DefaultDatabasePath
	}
	if c.ServerPort == 0 {
		c.ServerPort = DefaultServerPort
	}
	for i := range c.Providers {
		if c.Providers[i].EnergyPerToken == 0 {
			c.Providers[i].EnergyPerToken = DefaultEnergyPerToken
		}
		if c.Providers[i].MaxTokens == 0 {
			c.Providers[i].MaxTokens = c.MaxTokens
		}
	}
}

// Validate checks semantic constraints the schema cannot express.
func (c *Config) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("at least one provider must be configured")
	}
	seen := make(map[string]bool, len(c.Providers))
	for _, p := range c.Providers {
		if seen[p.Name] {
			return fmt.Errorf("duplicate provider name %q", p.Name)
		}
		seen[p.Name] = true
		switch p.Kind {
		case KindOpenAI, KindSimulated:
		default:
			return fmt.Errorf("provider %q: unknown kind %q", p.Name, p.Kind)
		}
		if p.Kind == KindOpenAI && p.ModelID == "" {
			return fmt.Errorf("provider %q: model is required for openai providers", p.Name)
		}
	}
	if c.GridIntensity < 0 {
		return fmt.Errorf("grid_intensity must be >= 0, got %g", c.GridIntensity)
	}
	return nil
}

// Provider returns the configuration for the named provider, or nil if it is
// not configured.
func (c *Config) Provider(name string) *ProviderConfig {
	for i := range c.Providers {
		if c.Providers[i].Name == name {
			return &c.Providers[i]
		}
	}
	return nil
}

// ProviderNames returns every configured provider name in declaration order.
// This order is the selection tie-break order.
func (c *Config) ProviderNames() []string {
	names := make([]string, 0, len(c.Providers))
	for _, p := range c.Providers {
		names = append(names, p.Name)
	}
	return names
}
