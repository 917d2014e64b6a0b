package stats

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdant-ai/verdant/internal/models"
)

func ptr(v float64) *float64 { return &v }

func sampleHistory() []models.CandidateResult {
	return []models.CandidateResult{
		{Provider: "alpha", CarbonKg: 0.001, EnergyKWh: 0.002, InferenceMs: 100, Accuracy: ptr(80)},
		{Provider: "alpha", CarbonKg: 0.003, EnergyKWh: 0.004, InferenceMs: 300, Accuracy: nil},
		{Provider: "beta", CarbonKg: 0.002, EnergyKWh: 0.003, InferenceMs: 200, Accuracy: ptr(60)},
		{Provider: "alpha", CarbonKg: 0.002, EnergyKWh: 0.002, InferenceMs: 200, Accuracy: ptr(70)},
	}
}

func TestCompute_EmptyHistory(t *testing.T) {
	agg := Compute(nil)

	assert.Zero(t, agg.TotalRequests)
	assert.Zero(t, agg.TotalCarbonKg)
	assert.Zero(t, agg.TotalEnergy)
	assert.Zero(t, agg.AvgAccuracy)
	assert.Zero(t, agg.AccuracyCount)
	assert.Empty(t, agg.Providers)
	assert.Empty(t, agg.TopProviders(5))
}

func TestCompute_Totals(t *testing.T) {
	agg := Compute(sampleHistory())

	assert.Equal(t, 4, agg.TotalRequests)
	assert.InDelta(t, 0.008, agg.TotalCarbonKg, 1e-12)
	assert.InDelta(t, 0.011, agg.TotalEnergy, 1e-12)

	// Only three of four results were scored.
	assert.Equal(t, 3, agg.AccuracyCount)
	assert.InDelta(t, 70.0, agg.AvgAccuracy, 1e-9)
}

func TestCompute_CarbonPerRequest(t *testing.T) {
	agg := Compute(sampleHistory())

	alpha := agg.Providers["alpha"]
	require.NotNil(t, alpha)
	assert.InDelta(t, 0.002, alpha.CarbonPerRequest, 1e-12, "0.006 kg over 3 requests")

	beta := agg.Providers["beta"]
	require.NotNil(t, beta)
	assert.InDelta(t, 0.002, beta.CarbonPerRequest, 1e-12)
}

func TestCompute_UnscoredResultsAreExcludedNotZeroed(t *testing.T) {
	history := []models.CandidateResult{
		{Provider: "alpha", Accuracy: ptr(90)},
		{Provider: "alpha", Accuracy: nil},
	}
	agg := Compute(history)

	ps := agg.Providers["alpha"]
	require.NotNil(t, ps)
	assert.Equal(t, 2, ps.Count)
	assert.Equal(t, 1, ps.AccuracyCount)
	// Coercing nil to zero would have averaged 45 here.
	assert.InDelta(t, 90.0, ps.AvgAccuracy, 1e-9)
}

func TestCompute_AccuracyCountNeverExceedsCount(t *testing.T) {
	agg := Compute(sampleHistory())
	for name, ps := range agg.Providers {
		assert.LessOrEqual(t, ps.AccuracyCount, ps.Count, "provider %s", name)
	}
	assert.LessOrEqual(t, agg.AccuracyCount, agg.TotalRequests)
}

func TestCompute_OrderIndependent(t *testing.T) {
	history := sampleHistory()
	agg1 := Compute(history)

	shuffled := make([]models.CandidateResult, len(history))
	copy(shuffled, history)
	rng := rand.New(rand.NewSource(42))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	agg2 := Compute(shuffled)

	assert.Equal(t, agg1.TotalRequests, agg2.TotalRequests)
	assert.InDelta(t, agg1.TotalCarbonKg, agg2.TotalCarbonKg, 1e-12)
	assert.InDelta(t, agg1.AvgAccuracy, agg2.AvgAccuracy, 1e-9)
	assert.Equal(t, len(agg1.Providers), len(agg2.Providers))
	for name, ps1 := range agg1.Providers {
		ps2 := agg2.Providers[name]
		require.NotNil(t, ps2)
		assert.Equal(t, ps1.Count, ps2.Count)
		assert.InDelta(t, ps1.AvgAccuracy, ps2.AvgAccuracy, 1e-9)
	}
}

func TestTopProviders_RankedByCount(t *testing.T) {
	agg := Compute(sampleHistory())

	top := agg.TopProviders(0)
	require.Len(t, top, 2)
	assert.Equal(t, "alpha", top[0].Provider)
	assert.Equal(t, 3, top[0].Count)
	assert.Equal(t, "beta", top[1].Provider)

	limited := agg.TopProviders(1)
	require.Len(t, limited, 1)
	assert.Equal(t, "alpha", limited[0].Provider)
}

func TestTopProviders_NameBreaksCountTies(t *testing.T) {
	history := []models.CandidateResult{
		{Provider: "zeta"},
		{Provider: "alpha"},
	}
	top := Compute(history).TopProviders(0)
	require.Len(t, top, 2)
	assert.Equal(t, "alpha", top[0].Provider)
	assert.Equal(t, "zeta", top[1].Provider)
}

func TestProjectImpact(t *testing.T) {
	im := ProjectImpact(0.001, 1000)

	assert.InDelta(t, 0.001*365*1000, im.AnnualKg, 1e-9)
	assert.InDelta(t, im.AnnualKg/TreeAbsorptionKgPerYear, im.TreesNeeded, 1e-9)
	assert.InDelta(t, im.AnnualKg/CarKgPerKm, im.KmByCar, 1e-9)
	assert.InDelta(t, im.AnnualKg/CoalKgPerKgCO2, im.KgCoal, 1e-9)
}

func TestProjectImpact_ZeroCarbon(t *testing.T) {
	im := ProjectImpact(0, 500)
	assert.Zero(t, im.AnnualKg)
	assert.Zero(t, im.TreesNeeded)
}
