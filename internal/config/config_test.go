package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
grid_intensity: 0.5
providers:
  - name: sim
    kind: simulated
  - name: cloud
    kind: openai
    model: gpt-4o-mini
    api_key_env: TEST_VERDANT_KEY
    energy_per_token: 0.00002
`

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load([]byte(validYAML))
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.GridIntensity)
	assert.Equal(t, DefaultCountryISO, cfg.CountryISO)
	assert.Equal(t, DefaultTimeoutSec, cfg.TimeoutSec)
	assert.Equal(t, DefaultMaxTokens, cfg.MaxTokens)
	assert.Equal(t, DefaultDatabasePath, cfg.Database)
	assert.Equal(t, DefaultServerPort, cfg.ServerPort)

	require.Len(t, cfg.Providers, 2)
	assert.Equal(t, DefaultEnergyPerToken, cfg.Providers[0].EnergyPerToken)
	assert.Equal(t, 0.00002, cfg.Providers[1].EnergyPerToken)
	assert.Equal(t, DefaultMaxTokens, cfg.Providers[0].MaxTokens)
}

func TestLoad_ZeroGridIntensityGetsDefault(t *testing.T) {
	cfg, err := Load([]byte("providers:\n  - name: sim\n    kind: simulated\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultGridIntensity, cfg.GridIntensity)
}

func TestLoad_RejectsEmptyConfig(t *testing.T) {
	_, err := Load([]byte(""))
	require.Error(t, err)
}

func TestLoad_RejectsUnknownKind(t *testing.T) {
	yaml := "providers:\n  - name: x\n    kind: quantum\n"
	_, err := Load([]byte(yaml))
	require.Error(t, err)
}

func TestLoad_RejectsUnknownTopLevelKey(t *testing.T) {
	yaml := "grid_intensityy: 0.5\nproviders:\n  - name: sim\n    kind: simulated\n"
	_, err := Load([]byte(yaml))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestValidate_DuplicateProviderNames(t *testing.T) {
	yaml := `
providers:
  - name: same
    kind: simulated
  - name: same
    kind: simulated
`
	_, err := Load([]byte(yaml))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate provider name")
}

func TestValidate_OpenAIRequiresModel(t *testing.T) {
	yaml := "providers:\n  - name: cloud\n    kind: openai\n"
	_, err := Load([]byte(yaml))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model is required")
}

func TestValidate_NoProviders(t *testing.T) {
	_, err := Load([]byte("grid_intensity: 0.5\n"))
	require.Error(t, err)
}

func TestLoadFile_NotFound(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLoadFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verdant.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validYAML), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"sim", "cloud"}, cfg.ProviderNames())
}

func TestProvider_Lookup(t *testing.T) {
	cfg, err := Load([]byte(validYAML))
	require.NoError(t, err)

	require.NotNil(t, cfg.Provider("cloud"))
	assert.Equal(t, "gpt-4o-mini", cfg.Provider("cloud").ModelID)
	assert.Nil(t, cfg.Provider("nope"))
}

func TestHasAPIKey(t *testing.T) {
	p := ProviderConfig{Name: "x", APIKeyEnv: "TEST_VERDANT_KEY_UNSET"}
	assert.False(t, p.HasAPIKey())

	t.Setenv("TEST_VERDANT_KEY_UNSET", "secret")
	assert.True(t, p.HasAPIKey())

	noKey := ProviderConfig{Name: "sim"}
	assert.True(t, noKey.HasAPIKey())
}

func TestValidateBytes_ReportsEveryProblem(t *testing.T) {
	yaml := `
server_port: 99999
providers:
  - kind: simulated
`
	errs := ValidateBytes([]byte(yaml))
	require.NotEmpty(t, errs)
	joined := strings.Join(errs, "\n")
	assert.Contains(t, joined, "server_port")
}
