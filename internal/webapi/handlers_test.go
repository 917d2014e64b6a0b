package webapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdant-ai/verdant/internal/config"
	"github.com/verdant-ai/verdant/internal/evaluator"
	"github.com/verdant-ai/verdant/internal/measure"
	"github.com/verdant-ai/verdant/internal/models"
	"github.com/verdant-ai/verdant/internal/providers"
	"github.com/verdant-ai/verdant/internal/store"
)

// memStore is an in-memory ResultStore.
type memStore struct {
	results []models.CandidateResult
	failErr error
}

func (m *memStore) Append(r *models.CandidateResult) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.results = append(m.results, *r)
	return nil
}

func (m *memStore) ReadAll() ([]models.CandidateResult, error) {
	if m.failErr != nil {
		return nil, m.failErr
	}
	return m.results, nil
}

func (m *memStore) Get(id string) (*models.CandidateResult, error) {
	for i := range m.results {
		if m.results[i].ID == id {
			return &m.results[i], nil
		}
	}
	return nil, fmt.Errorf("result %s: %w", id, store.ErrNotFound)
}

// stubSelector returns a scripted outcome.
type stubSelector struct {
	outcome *models.SelectionOutcome
	err     error
}

func (s *stubSelector) Run(ctx context.Context, prompt string) (*models.SelectionOutcome, error) {
	return s.outcome, s.err
}

// flatMeter gives every call the same reading.
type flatMeter struct{}

func (flatMeter) Measure(ctx context.Context, work func(context.Context) error) (measure.Reading, error) {
	if err := work(ctx); err != nil {
		return measure.Reading{}, err
	}
	return measure.Reading{EnergyKWh: 0.001, CarbonKg: 0.0007}, nil
}

func testServer(t *testing.T, st *memStore, sel Selector) http.Handler {
	t.Helper()

	cfg := &config.Config{
		GridIntensity: 0.7,
		TimeoutSec:    5,
		MaxTokens:     256,
		Providers: []config.ProviderConfig{
			{Name: "mock", Kind: config.KindSimulated, EnergyPerToken: 1e-5},
		},
	}
	ev := evaluator.New(cfg, evaluator.WithMeter(flatMeter{}))
	gens := map[string]providers.Generator{
		"mock": providers.NewMockGenerator("mock", "a scripted response with enough length"),
	}

	mux := http.NewServeMux()
	NewHandlers(cfg, st, sel, ev, gens).RegisterRoutes(mux)
	return mux
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	h := testServer(t, &memStore{}, &stubSelector{})

	rec := doJSON(t, h, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHandleEstimate(t *testing.T) {
	st := &memStore{}
	h := testServer(t, st, &stubSelector{})

	rec := doJSON(t, h, http.MethodPost, "/api/estimate", EstimateRequest{Prompt: "write a poem", Provider: "mock"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result models.CandidateResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "mock", result.Provider)
	assert.Equal(t, 0.0007, result.CarbonKg)
	assert.Len(t, st.results, 1, "estimate must persist its result")
}

func TestHandleEstimate_NoProviderPicksWinner(t *testing.T) {
	winner := models.CandidateResult{ID: "w-1", Provider: "mock", CarbonKg: 0.0002}
	sel := &stubSelector{outcome: &models.SelectionOutcome{
		Winner: &winner,
		Scored: []models.ScoredCandidate{{Result: winner, Score: winner.Score()}},
	}}
	st := &memStore{}
	h := testServer(t, st, sel)

	rec := doJSON(t, h, http.MethodPost, "/api/estimate", EstimateRequest{Prompt: "write a poem"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result models.CandidateResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "w-1", result.ID)
	assert.Len(t, st.results, 1, "the winner must be persisted")
}

func TestHandleEstimate_NoProviderAllFailed(t *testing.T) {
	sel := &stubSelector{outcome: &models.SelectionOutcome{
		Failures: []models.CandidateFailure{{Provider: "mock", Reason: models.ErrProviderUnavailable}},
	}}
	h := testServer(t, &memStore{}, sel)

	rec := doJSON(t, h, http.MethodPost, "/api/estimate", EstimateRequest{Prompt: "write a poem"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleEstimate_EmptyPrompt(t *testing.T) {
	h := testServer(t, &memStore{}, &stubSelector{})
	rec := doJSON(t, h, http.MethodPost, "/api/estimate", EstimateRequest{Prompt: "  ", Provider: "mock"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleEstimate_UnknownProvider(t *testing.T) {
	h := testServer(t, &memStore{}, &stubSelector{})
	rec := doJSON(t, h, http.MethodPost, "/api/estimate", EstimateRequest{Prompt: "hi", Provider: "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleCompare_PersistsAllScored(t *testing.T) {
	acc := 70.0
	winner := models.CandidateResult{ID: "r1", Provider: "mock", CarbonKg: 0.0001, Accuracy: &acc}
	st := &memStore{}
	sel := &stubSelector{outcome: &models.SelectionOutcome{
		RoundID: "round-1",
		Winner:  &winner,
		Scored: []models.ScoredCandidate{
			{Result: winner, Score: winner.Score()},
		},
		Failures: []models.CandidateFailure{
			{Provider: "ghost", Reason: models.ErrProviderUnavailable, Detail: "503"},
		},
	}}
	h := testServer(t, st, sel)

	rec := doJSON(t, h, http.MethodPost, "/api/compare", CompareRequest{Prompt: "compare this"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var outcome models.SelectionOutcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
	require.NotNil(t, outcome.Winner)
	assert.Equal(t, "mock", outcome.Winner.Provider)
	assert.Len(t, outcome.Failures, 1)
	assert.Len(t, st.results, 1)
}

func TestHandleCompare_AllFailedStillOK(t *testing.T) {
	sel := &stubSelector{outcome: &models.SelectionOutcome{
		RoundID: "round-2",
		Failures: []models.CandidateFailure{
			{Provider: "a", Reason: models.ErrTimeout},
			{Provider: "b", Reason: models.ErrProviderUnavailable},
		},
	}}
	h := testServer(t, &memStore{}, sel)

	rec := doJSON(t, h, http.MethodPost, "/api/compare", CompareRequest{Prompt: "doomed"})
	require.Equal(t, http.StatusOK, rec.Code)

	var outcome models.SelectionOutcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
	assert.Nil(t, outcome.Winner)
	assert.Len(t, outcome.Failures, 2)
}

func TestHandleCompare_EmptyPrompt(t *testing.T) {
	sel := &stubSelector{err: evaluator.ErrEmptyPrompt}
	h := testServer(t, &memStore{}, sel)

	rec := doJSON(t, h, http.MethodPost, "/api/compare", CompareRequest{Prompt: ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleStats(t *testing.T) {
	acc := 80.0
	st := &memStore{results: []models.CandidateResult{
		{ID: "r1", Provider: "mock", CarbonKg: 0.001, Accuracy: &acc},
		{ID: "r2", Provider: "mock", CarbonKg: 0.002},
	}}
	h := testServer(t, st, &stubSelector{})

	rec := doJSON(t, h, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 2, body["total_requests"])
	assert.EqualValues(t, 1, body["accuracy_count"])
}

func TestHandleStats_StoreError(t *testing.T) {
	st := &memStore{failErr: errors.New("disk on fire")}
	h := testServer(t, st, &stubSelector{})

	rec := doJSON(t, h, http.MethodGet, "/api/stats", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleModels(t *testing.T) {
	h := testServer(t, &memStore{}, &stubSelector{})

	rec := doJSON(t, h, http.MethodGet, "/api/models", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var infos []ModelInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "mock", infos[0].Name)
	assert.Equal(t, "simulated", infos[0].Kind)
}

func TestHandleResults_EmptyIsArray(t *testing.T) {
	h := testServer(t, &memStore{}, &stubSelector{})

	rec := doJSON(t, h, http.MethodGet, "/api/results", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestHandleResultDetail(t *testing.T) {
	st := &memStore{results: []models.CandidateResult{{ID: "r1", Provider: "mock"}}}
	h := testServer(t, st, &stubSelector{})

	rec := doJSON(t, h, http.MethodGet, "/api/results/r1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/results/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleImpact(t *testing.T) {
	h := testServer(t, &memStore{}, &stubSelector{})

	rec := doJSON(t, h, http.MethodPost, "/api/impact", ImpactRequest{CarbonKg: 0.001, RequestsPerDay: 100})
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.InDelta(t, 0.001*365*100, body["annual_kgco2"].(float64), 1e-9)
}

func TestHandleImpact_NegativeRejected(t *testing.T) {
	h := testServer(t, &memStore{}, &stubSelector{})
	rec := doJSON(t, h, http.MethodPost, "/api/impact", ImpactRequest{CarbonKg: -1, RequestsPerDay: 100})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := CORSMiddleware(next, "http://localhost:5173")

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
