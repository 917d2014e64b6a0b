package webserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdant-ai/verdant/internal/config"
	"github.com/verdant-ai/verdant/internal/evaluator"
	"github.com/verdant-ai/verdant/internal/models"
	"github.com/verdant-ai/verdant/internal/providers"
	"github.com/verdant-ai/verdant/internal/webapi"
)

type nopStore struct{}

func (nopStore) Append(*models.CandidateResult) error        { return nil }
func (nopStore) ReadAll() ([]models.CandidateResult, error)  { return nil, nil }
func (nopStore) Get(string) (*models.CandidateResult, error) { return nil, nil }

func testHandlers() *webapi.Handlers {
	cfg := &config.Config{
		GridIntensity: 0.7,
		Providers: []config.ProviderConfig{
			{Name: "mock", Kind: config.KindSimulated},
		},
	}
	ev := evaluator.New(cfg)
	gens := map[string]providers.Generator{"mock": providers.NewMockGenerator("mock", "hi")}
	return webapi.NewHandlers(cfg, nopStore{}, nil, ev, gens)
}

func TestNew_RequiresHandlers(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestNew_ServesRegisteredRoutes(t *testing.T) {
	srv, err := New(Config{Handlers: testHandlers()})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNew_AppliesCORS(t *testing.T) {
	srv, err := New(Config{
		Handlers:       testHandlers(),
		AllowedOrigins: []string{"http://localhost:5173"},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
