package stats

// Carbon equivalence factors. Trees is the annual sequestration of one
// mature tree in kg CO2, car travel is kg CO2 per km for an average
// passenger car, and coal is kg CO2 released per kg burned.
const (
	TreeAbsorptionKgPerYear = 20.0
	CarKgPerKm              = 0.120
	CoalKgPerKgCO2          = 2.4
)

// Impact projects a single-request footprint to an annual figure and
// expresses it in everyday equivalents.
type Impact struct {
	PerRequestKg   float64 `json:"per_request_kgco2"`
	RequestsPerDay int     `json:"requests_per_day"`
	AnnualKg       float64 `json:"annual_kgco2"`

	TreesNeeded float64 `json:"trees_needed"`
	KmByCar     float64 `json:"km_by_car"`
	KgCoal      float64 `json:"kg_coal"`
}

// ProjectImpact scales one request's carbon cost to a year of traffic at
// requestsPerDay and computes the equivalents.
func ProjectImpact(perRequestKg float64, requestsPerDay int) Impact {
	annual := perRequestKg * 365 * float64(requestsPerDay)
	return Impact{
		PerRequestKg:   perRequestKg,
		RequestsPerDay: requestsPerDay,
		AnnualKg:       annual,
		TreesNeeded:    annual / TreeAbsorptionKgPerYear,
		KmByCar:        annual / CarKgPerKm,
		KgCoal:         annual / CoalKgPerKgCO2,
	}
}
