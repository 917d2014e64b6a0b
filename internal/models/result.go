package models

import (
	"time"
)

// EstimationMethod records how a result's energy/carbon figures were obtained.
type EstimationMethod string

const (
	// EstimationMeasured means the figures came from a live meter reading
	// taken while the provider call executed.
	EstimationMeasured EstimationMethod = "measured"
	// EstimationEstimated means the meter reading was unusable and the
	// figures were derived from token counts instead.
	EstimationEstimated EstimationMethod = "estimated"
)

// ErrorKind classifies a per-candidate failure.
type ErrorKind string

const (
	// ErrProviderUnavailable covers network, auth, and upstream errors from
	// the provider itself.
	ErrProviderUnavailable ErrorKind = "provider_unavailable"
	// ErrInvalidPrompt is a caller error caught before dispatch.
	ErrInvalidPrompt ErrorKind = "invalid_prompt"
	// ErrScoringFailed is attached as a warning when accuracy scoring fails;
	// it never fails the candidate on its own.
	ErrScoringFailed ErrorKind = "scoring_failed"
	// ErrTimeout marks a candidate that exceeded the per-call deadline.
	ErrTimeout ErrorKind = "timeout"
)

// CandidateResult is the canonical, normalized record of one successful
// provider evaluation. It is produced once at the evaluator boundary and
// immutable afterward; every downstream consumer reads this shape and only
// this shape.
type CandidateResult struct {
	ID           string `json:"id,omitempty"`
	Provider     string `json:"provider"`
	Prompt       string `json:"prompt,omitempty"`
	ResponseText string `json:"response_text"`

	TokensInput  int `json:"tokens_input"`
	TokensOutput int `json:"tokens_output"`
	TotalTokens  int `json:"total_tokens"`

	InferenceMs int64 `json:"inference_time_ms"`

	// EnergyKWh and CarbonKg are always in canonical units
	// (kilowatt-hours, kilograms CO2).
	EnergyKWh float64 `json:"energy_consumed_kwh"`
	CarbonKg  float64 `json:"carbon_emitted_kgco2"`

	// Accuracy is a percentage in [0,100]. Nil means scoring was not run;
	// nil is excluded from averages, never coerced to zero.
	Accuracy *float64 `json:"accuracy,omitempty"`

	Method   EstimationMethod `json:"estimation_method"`
	Warnings []string         `json:"warnings,omitempty"`

	GridIntensity float64   `json:"grid_intensity,omitempty"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}

// Score returns the comparison score: carbon_kgco2 + (1 - accuracy/100).
// Lower is strictly better. A result with no accuracy scores as if accuracy
// were zero, which ranks it below any scored result with the same footprint.
func (r *CandidateResult) Score() float64 {
	acc := 0.0
	if r.Accuracy != nil {
		acc = *r.Accuracy
	}
	return r.CarbonKg + (1.0 - acc/100.0)
}

// CandidateFailure records a provider that could not produce a result in a
// selection round. Failures are data, not errors: they ride alongside
// successes in the outcome and never abort the round.
type CandidateFailure struct {
	Provider string    `json:"provider"`
	Reason   ErrorKind `json:"reason"`
	Detail   string    `json:"detail,omitempty"`
}

// Candidate is the union of the two possible per-provider outcomes of a
// round. Exactly one of Result or Failure is set.
type Candidate struct {
	Result  *CandidateResult  `json:"result,omitempty"`
	Failure *CandidateFailure `json:"failure,omitempty"`
}

// OK reports whether the candidate succeeded.
func (c Candidate) OK() bool {
	return c.Result != nil
}

// ScoredCandidate pairs a successful result with its comparison score.
// Derived per round, never stored.
type ScoredCandidate struct {
	Result CandidateResult `json:"result"`
	Score  float64         `json:"score"`
}

// SelectionOutcome is the complete result of one fan-out-and-join round.
// Winner is nil if and only if every provider failed.
type SelectionOutcome struct {
	RoundID  string             `json:"round_id"`
	Prompt   string             `json:"prompt"`
	Winner   *CandidateResult   `json:"winner,omitempty"`
	Scored   []ScoredCandidate  `json:"all_scored"`
	Failures []CandidateFailure `json:"failures"`

	DurationMs int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}
