// Package stats computes aggregate figures over the full history of stored
// evaluation results. Every aggregate is recomputed from scratch on each
// call; there is no incremental state to drift.
package stats

import (
	"sort"

	"github.com/verdant-ai/verdant/internal/models"
)

// ProviderStats is the per-provider slice of an aggregate.
type ProviderStats struct {
	Provider string `json:"provider"`

	Count       int     `json:"count"`
	TotalCarbon float64 `json:"total_carbon_kgco2"`
	TotalEnergy float64 `json:"total_energy_kwh"`

	// CarbonPerRequest is TotalCarbon averaged over Count.
	CarbonPerRequest float64 `json:"carbon_per_request_kgco2"`

	// AvgAccuracy averages only the results that were actually scored;
	// AccuracyCount says how many that was. AccuracyCount is always at
	// most Count.
	AvgAccuracy   float64 `json:"avg_accuracy"`
	AccuracyCount int     `json:"accuracy_count"`

	AvgInferenceMs float64 `json:"avg_inference_ms"`
}

// Aggregate is the whole-history rollup.
type Aggregate struct {
	TotalRequests int     `json:"total_requests"`
	TotalCarbonKg float64 `json:"total_carbon_kgco2"`
	TotalEnergy   float64 `json:"total_energy_kwh"`

	// AvgAccuracy covers only scored results across all providers.
	AvgAccuracy   float64 `json:"avg_accuracy"`
	AccuracyCount int     `json:"accuracy_count"`

	Providers map[string]*ProviderStats `json:"providers"`
}

// Compute builds the aggregate from a result history. The input order does
// not matter. An empty history yields an all-zero aggregate.
func Compute(history []models.CandidateResult) *Aggregate {
	agg := &Aggregate{Providers: map[string]*ProviderStats{}}

	var accSum float64
	type running struct {
		accSum      float64
		inferenceMs int64
	}
	perProv := map[string]*running{}

	for _, r := range history {
		agg.TotalRequests++
		agg.TotalCarbonKg += r.CarbonKg
		agg.TotalEnergy += r.EnergyKWh

		ps := agg.Providers[r.Provider]
		if ps == nil {
			ps = &ProviderStats{Provider: r.Provider}
			agg.Providers[r.Provider] = ps
			perProv[r.Provider] = &running{}
		}
		run := perProv[r.Provider]

		ps.Count++
		ps.TotalCarbon += r.CarbonKg
		ps.TotalEnergy += r.EnergyKWh
		run.inferenceMs += r.InferenceMs

		if r.Accuracy != nil {
			agg.AccuracyCount++
			accSum += *r.Accuracy
			ps.AccuracyCount++
			run.accSum += *r.Accuracy
		}
	}

	if agg.AccuracyCount > 0 {
		agg.AvgAccuracy = accSum / float64(agg.AccuracyCount)
	}
	for name, ps := range agg.Providers {
		run := perProv[name]
		if ps.AccuracyCount > 0 {
			ps.AvgAccuracy = run.accSum / float64(ps.AccuracyCount)
		}
		if ps.Count > 0 {
			ps.CarbonPerRequest = ps.TotalCarbon / float64(ps.Count)
			ps.AvgInferenceMs = float64(run.inferenceMs) / float64(ps.Count)
		}
	}
	return agg
}

// TopProviders returns up to limit providers ordered by request count
// descending, with name as the deterministic tie-break.
func (a *Aggregate) TopProviders(limit int) []*ProviderStats {
	ranked := make([]*ProviderStats, 0, len(a.Providers))
	for _, ps := range a.Providers {
		ranked = append(ranked, ps)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Provider < ranked[j].Provider
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
