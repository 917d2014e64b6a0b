// Package units converts the heterogeneous metric shapes reported by meters
// and scorers into one canonical system: kilograms CO2 for carbon and a
// 0-100 percentage for accuracy. All functions are pure.
package units

import (
	"fmt"
	"math"
	"strings"
)

// CarbonUnit tags a raw carbon value with the unit it was reported in.
type CarbonUnit string

const (
	// UnitUnspecified is treated as kilograms, the canonical unit.
	UnitUnspecified CarbonUnit = ""
	UnitKilograms   CarbonUnit = "kg"
	UnitGrams       CarbonUnit = "g"
	UnitMilligrams  CarbonUnit = "mg"
	UnitMicrograms  CarbonUnit = "ug"
)

// ParseCarbonUnit maps a unit label to a CarbonUnit. Accepts a few common
// spellings per unit ("kgco2", "grams", "µg").
func ParseCarbonUnit(s string) (CarbonUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return UnitUnspecified, nil
	case "kg", "kgco2", "kilograms":
		return UnitKilograms, nil
	case "g", "gco2", "grams":
		return UnitGrams, nil
	case "mg", "milligrams":
		return UnitMilligrams, nil
	case "ug", "µg", "micrograms":
		return UnitMicrograms, nil
	default:
		return UnitUnspecified, fmt.Errorf("unknown carbon unit %q", s)
	}
}

// NormalizeCarbon converts a tagged carbon value to kilograms CO2.
// Unit-less values are assumed to already be kilograms. Non-finite or
// negative inputs normalize to zero: a meter that reports them is broken,
// and a zero reading is what triggers the estimation fallback upstream.
func NormalizeCarbon(value float64, unit CarbonUnit) (float64, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0, nil
	}

	switch unit {
	case UnitUnspecified, UnitKilograms:
		return value, nil
	case UnitGrams:
		return value / 1e3, nil
	case UnitMilligrams:
		return value / 1e6, nil
	case UnitMicrograms:
		return value / 1e9, nil
	default:
		return 0, fmt.Errorf("unknown carbon unit %q", unit)
	}
}

// NormalizeAccuracy converts a raw accuracy value to a percentage in [0,100].
// Values above 1 are taken as already being percentages; values at or below 1
// are taken as fractions and scaled by 100. Results are clamped to [0,100].
//
// The rule is lossy at exactly 1.0: "1%" and "100%" both arrive as 1 and both
// normalize to 100. The scorers in this repository always emit 0-100, so the
// ambiguous value never occurs in practice; callers integrating an external
// fraction-emitting scorer should rescale before calling.
func NormalizeAccuracy(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	if value <= 1 {
		value *= 100
	}
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
