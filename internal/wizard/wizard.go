// Package wizard collects a starter configuration interactively.
package wizard

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/template"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/verdant-ai/verdant/internal/config"
)

// Answers holds all fields collected during the interactive wizard.
type Answers struct {
	ProviderName  string
	Kind          string
	Model         string
	BaseURL       string
	APIKeyEnv     string
	GridIntensity float64
	Database      string
}

const configTemplate = `grid_intensity: {{ .GridIntensity }}
database: {{ .Database }}

providers:
  - name: {{ .ProviderName }}
    kind: {{ .Kind }}
{{- if .Model }}
    model: {{ .Model }}
{{- end }}
{{- if .BaseURL }}
    base_url: {{ .BaseURL }}
{{- end }}
{{- if .APIKeyEnv }}
    api_key_env: {{ .APIKeyEnv }}
{{- end }}
`

// Run drives an interactive huh form and returns the collected answers.
func Run(in io.Reader, out io.Writer) (*Answers, error) {
	var (
		providerName = "primary"
		kind         = string(config.KindSimulated)
		model        string
		baseURL      string
		apiKeyEnv    string
		gridRaw      = strconv.FormatFloat(config.DefaultGridIntensity, 'f', -1, 64)
		database     = config.DefaultDatabasePath
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Provider name").
				Description("A short label for this provider").
				Placeholder("primary").
				Value(&providerName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Provider kind").
				Options(
					huh.NewOption("simulated (no API key needed)", string(config.KindSimulated)),
					huh.NewOption("openai-compatible API", string(config.KindOpenAI)),
				).
				Value(&kind),
			huh.NewInput().
				Title("Model").
				Description("Model identifier, required for openai-compatible providers").
				Placeholder("gpt-4o-mini").
				Value(&model),
			huh.NewInput().
				Title("Base URL").
				Description("Leave empty for the provider default").
				Placeholder("https://openrouter.ai/api/v1").
				Value(&baseURL),
			huh.NewInput().
				Title("API key environment variable").
				Placeholder("OPENAI_API_KEY").
				Value(&apiKeyEnv),
			huh.NewInput().
				Title("Grid carbon intensity (kgCO2/kWh)").
				Value(&gridRaw).
				Validate(func(s string) error {
					v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
					if err != nil || v < 0 {
						return fmt.Errorf("must be a non-negative number")
					}
					return nil
				}),
			huh.NewInput().
				Title("Database path").
				Value(&database),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	grid, _ := strconv.ParseFloat(strings.TrimSpace(gridRaw), 64)
	return &Answers{
		ProviderName:  strings.TrimSpace(providerName),
		Kind:          kind,
		Model:         strings.TrimSpace(model),
		BaseURL:       strings.TrimSpace(baseURL),
		APIKeyEnv:     strings.TrimSpace(apiKeyEnv),
		GridIntensity: grid,
		Database:      strings.TrimSpace(database),
	}, nil
}

// GenerateConfig renders a starter YAML configuration from the answers.
func GenerateConfig(a *Answers) (string, error) {
	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, a); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}
