// Package measure provides the energy/carbon measurement capability and the
// token-based estimation fallback used when a live reading is unusable.
package measure

import (
	"context"
	"math"
	"time"
)

// ReliabilityThresholdKg is the smallest carbon reading treated as a real
// measurement. Below one nanogram the meter is considered to have measured
// nothing, and the token-based estimate wins.
const ReliabilityThresholdKg = 1e-9

// DefaultPowerWatts is the assumed average draw of the hardware serving an
// inference when no better figure is available.
const DefaultPowerWatts = 200.0

// Reading is one energy/carbon measurement in canonical units.
type Reading struct {
	EnergyKWh float64
	CarbonKg  float64
}

// Reliable reports whether the reading can be trusted: both values finite,
// non-negative, and the carbon figure above the noise floor.
func (r Reading) Reliable() bool {
	for _, v := range []float64{r.EnergyKWh, r.CarbonKg} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	return r.CarbonKg >= ReliabilityThresholdKg
}

// Meter measures the energy and carbon cost of a unit of work. The work
// function runs while the meter is active; a meter error or garbage reading
// is recoverable and callers fall back to estimation.
type Meter interface {
	Measure(ctx context.Context, work func(context.Context) error) (Reading, error)
}

// ProcessMeter derives energy from wall-clock duration and an average power
// model, and carbon from the configured grid intensity. It is the
// measurement stand-in for hosts without hardware energy counters.
type ProcessMeter struct {
	// PowerWatts is the assumed average draw. Zero means DefaultPowerWatts.
	PowerWatts float64
	// GridIntensity is kgCO2 per kWh.
	GridIntensity float64
}

func (m *ProcessMeter) Measure(ctx context.Context, work func(context.Context) error) (Reading, error) {
	watts := m.PowerWatts
	if watts <= 0 {
		watts = DefaultPowerWatts
	}

	start := time.Now()
	if err := work(ctx); err != nil {
		return Reading{}, err
	}
	elapsed := time.Since(start)

	hours := elapsed.Hours()
	energyKWh := watts * hours / 1000.0

	return Reading{
		EnergyKWh: energyKWh,
		CarbonKg:  energyKWh * m.GridIntensity,
	}, nil
}

// Estimator computes the token-based fallback reading.
type Estimator struct {
	// GridIntensity is kgCO2 per kWh.
	GridIntensity float64
}

// FromTokens estimates energy and carbon from a token count and the
// provider's kWh-per-token figure.
func (e *Estimator) FromTokens(totalTokens int, energyPerToken float64) Reading {
	if totalTokens < 0 {
		totalTokens = 0
	}
	energyKWh := float64(totalTokens) * energyPerToken
	return Reading{
		EnergyKWh: energyKWh,
		CarbonKg:  energyKWh * e.GridIntensity,
	}
}
