package webapi

// EstimateRequest asks for a single-provider evaluation.
type EstimateRequest struct {
	Prompt   string `json:"prompt"`
	Provider string `json:"provider,omitempty"`
}

// CompareRequest asks for a full selection round across all providers.
type CompareRequest struct {
	Prompt string `json:"prompt"`
}

// ImpactRequest projects a per-request footprint to annual equivalents.
type ImpactRequest struct {
	CarbonKg       float64 `json:"carbon_kgco2"`
	RequestsPerDay int     `json:"requests_per_day"`
}

// ModelInfo describes one configured provider.
type ModelInfo struct {
	Name           string  `json:"name"`
	Kind           string  `json:"kind"`
	Model          string  `json:"model,omitempty"`
	EnergyPerToken float64 `json:"energy_per_token"`
	HasAPIKey      bool    `json:"has_api_key"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is returned for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
