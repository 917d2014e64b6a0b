// Package webapi exposes the evaluation engine over HTTP.
package webapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/verdant-ai/verdant/internal/config"
	"github.com/verdant-ai/verdant/internal/evaluator"
	"github.com/verdant-ai/verdant/internal/models"
	"github.com/verdant-ai/verdant/internal/providers"
	"github.com/verdant-ai/verdant/internal/selection"
	"github.com/verdant-ai/verdant/internal/stats"
	"github.com/verdant-ai/verdant/internal/store"
)

// Version is set at build time or defaults to dev.
var Version = "0.1.0-dev"

// ResultStore is the persistence surface the API needs.
type ResultStore interface {
	Append(*models.CandidateResult) error
	ReadAll() ([]models.CandidateResult, error)
	Get(id string) (*models.CandidateResult, error)
}

// Selector runs a full comparison round.
type Selector interface {
	Run(ctx context.Context, prompt string) (*models.SelectionOutcome, error)
}

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	cfg        *config.Config
	store      ResultStore
	selector   Selector
	evaluator  *evaluator.Evaluator
	generators map[string]providers.Generator
}

// NewHandlers creates a Handlers over the given engine pieces.
func NewHandlers(cfg *config.Config, store ResultStore, sel Selector, ev *evaluator.Evaluator, gens map[string]providers.Generator) *Handlers {
	return &Handlers{cfg: cfg, store: store, selector: sel, evaluator: ev, generators: gens}
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// HandleEstimate evaluates a prompt on one provider and persists the result.
// With no provider named, every configured provider is evaluated and the
// best-scoring result is returned.
func (h *Handlers) HandleEstimate(w http.ResponseWriter, r *http.Request) {
	var req EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if req.Provider == "" {
		h.estimateAcrossAll(w, r, req.Prompt)
		return
	}

	pcfg := h.cfg.Provider(req.Provider)
	gen, ok := h.generators[req.Provider]
	if pcfg == nil || !ok {
		writeError(w, http.StatusNotFound, "unknown provider: "+req.Provider)
		return
	}

	ctx := r.Context()
	if h.cfg.TimeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(h.cfg.TimeoutSec)*time.Second)
		defer cancel()
	}

	result, err := h.evaluator.Evaluate(ctx, gen, req.Prompt, pcfg.EnergyPerToken)
	if err != nil {
		if errors.Is(err, evaluator.ErrEmptyPrompt) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	if err := h.store.Append(result); err != nil {
		writeError(w, http.StatusInternalServerError, "storing result: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// estimateAcrossAll runs a selection round and returns only the winner.
func (h *Handlers) estimateAcrossAll(w http.ResponseWriter, r *http.Request, prompt string) {
	outcome, err := h.selector.Run(r.Context(), prompt)
	if err != nil {
		if errors.Is(err, evaluator.ErrEmptyPrompt) || errors.Is(err, selection.ErrNoProviders) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if outcome.Winner == nil {
		writeError(w, http.StatusBadGateway, "all providers failed")
		return
	}

	if err := h.store.Append(outcome.Winner); err != nil {
		writeError(w, http.StatusInternalServerError, "storing result: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, outcome.Winner)
}

// HandleCompare runs a full selection round and persists every successful
// candidate. A round where all providers failed still returns 200: the nil
// winner and the failure list are the answer.
func (h *Handlers) HandleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	outcome, err := h.selector.Run(r.Context(), req.Prompt)
	if err != nil {
		if errors.Is(err, evaluator.ErrEmptyPrompt) || errors.Is(err, selection.ErrNoProviders) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	for i := range outcome.Scored {
		if err := h.store.Append(&outcome.Scored[i].Result); err != nil {
			writeError(w, http.StatusInternalServerError, "storing result: "+err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, outcome)
}

// HandleStats returns the whole-history aggregate.
func (h *Handlers) HandleStats(w http.ResponseWriter, _ *http.Request) {
	history, err := h.store.ReadAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats.Compute(history))
}

// HandleProviderStats returns providers ranked by request count.
func (h *Handlers) HandleProviderStats(w http.ResponseWriter, r *http.Request) {
	history, err := h.store.ReadAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit: "+s)
			return
		}
	}
	writeJSON(w, http.StatusOK, stats.Compute(history).TopProviders(limit))
}

// HandleModels lists the configured providers.
func (h *Handlers) HandleModels(w http.ResponseWriter, _ *http.Request) {
	infos := make([]ModelInfo, 0, len(h.cfg.Providers))
	for _, p := range h.cfg.Providers {
		infos = append(infos, ModelInfo{
			Name:           p.Name,
			Kind:           string(p.Kind),
			Model:          p.ModelID,
			EnergyPerToken: p.EnergyPerToken,
			HasAPIKey:      p.HasAPIKey(),
		})
	}
	writeJSON(w, http.StatusOK, infos)
}

// HandleResults returns the stored result history.
func (h *Handlers) HandleResults(w http.ResponseWriter, _ *http.Request) {
	history, err := h.store.ReadAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if history == nil {
		history = []models.CandidateResult{}
	}
	writeJSON(w, http.StatusOK, history)
}

// HandleResultDetail returns one stored result by ID.
func (h *Handlers) HandleResultDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "result id is required")
		return
	}
	result, err := h.store.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "result not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleImpact computes annual-footprint equivalents for a per-request cost.
func (h *Handlers) HandleImpact(w http.ResponseWriter, r *http.Request) {
	var req ImpactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.CarbonKg < 0 || req.RequestsPerDay < 0 {
		writeError(w, http.StatusBadRequest, "carbon and request volume must be non-negative")
		return
	}
	if req.RequestsPerDay == 0 {
		req.RequestsPerDay = 1
	}
	writeJSON(w, http.StatusOK, stats.ProjectImpact(req.CarbonKg, req.RequestsPerDay))
}

// RegisterRoutes registers all web API routes on the given mux.
func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", h.HandleHealth)
	mux.HandleFunc("POST /api/estimate", h.HandleEstimate)
	mux.HandleFunc("POST /api/compare", h.HandleCompare)
	mux.HandleFunc("GET /api/stats", h.HandleStats)
	mux.HandleFunc("GET /api/stats/providers", h.HandleProviderStats)
	mux.HandleFunc("GET /api/models", h.HandleModels)
	mux.HandleFunc("GET /api/results", h.HandleResults)
	mux.HandleFunc("GET /api/results/{id}", h.HandleResultDetail)
	mux.HandleFunc("POST /api/impact", h.HandleImpact)
}

// CORSMiddleware wraps a handler with CORS headers.
// If allowedOrigins is empty, no CORS header is set (same-origin only).
func CORSMiddleware(next http.Handler, allowedOrigins ...string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if len(allowedOrigins) > 0 && origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Code: code})
}
