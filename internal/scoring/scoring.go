package scoring

import (
	"math"
	"regexp"
	"strings"
)

// Factor weights for the overall quality score. They sum to 1.0.
const (
	WeightCompleteness  = 0.25
	WeightCodeQuality   = 0.25
	WeightFunctionality = 0.30
	WeightEfficiency    = 0.10
	WeightDocumentation = 0.10

	// Responses shorter than this are treated as effectively empty and
	// pinned to a floor score rather than run through the heuristics.
	minResponseChars = 10
	floorScore       = 10.0
)

// FactorScores holds the per-dimension breakdown of a quality evaluation,
// each on a 0-100 scale.
type FactorScores struct {
	Completeness  float64 `json:"completeness"`
	CodeQuality   float64 `json:"code_quality"`
	Functionality float64 `json:"functionality"`
	Efficiency    float64 `json:"efficiency"`
	Documentation float64 `json:"documentation"`
}

// ScoreResult is the complete output of scoring one response against its
// prompt.
type ScoreResult struct {
	Overall float64      `json:"overall"`
	Factors FactorScores `json:"factors"`
}

// Scorer evaluates how well a response answers a prompt.
type Scorer interface {
	Score(prompt, response string) *ScoreResult
}

// HeuristicScorer scores responses with pattern-matching heuristics. It needs
// no model calls, so scoring never adds to a candidate's footprint.
type HeuristicScorer struct{}

var (
	commentLinePattern = regexp.MustCompile(`(?m)^\s*(//|#|/\*|\*|--)`)
	errHandlingPattern = regexp.MustCompile(`(?i)\b(try|except|catch|if err|error|raise|panic|recover)\b`)
	structurePattern   = regexp.MustCompile(`(?m)\b(func|def|class|struct|interface|type|function)\b`)
)

func (HeuristicScorer) Score(prompt, response string) *ScoreResult {
	trimmed := strings.TrimSpace(response)
	if len(trimmed) < minResponseChars {
		return &ScoreResult{Overall: floorScore}
	}

	code := ExtractCode(trimmed)

	factors := FactorScores{
		Completeness:  scoreCompleteness(prompt, trimmed),
		CodeQuality:   scoreCodeQuality(code, trimmed),
		Functionality: scoreFunctionality(code, trimmed),
		Efficiency:    scoreEfficiency(trimmed),
		Documentation: scoreDocumentation(code, trimmed),
	}

	overall := factors.Completeness*WeightCompleteness +
		factors.CodeQuality*WeightCodeQuality +
		factors.Functionality*WeightFunctionality +
		factors.Efficiency*WeightEfficiency +
		factors.Documentation*WeightDocumentation

	return &ScoreResult{
		Overall: clamp(overall),
		Factors: factors,
	}
}

// scoreCompleteness measures how many significant terms from the prompt the
// response actually addresses.
func scoreCompleteness(prompt, response string) float64 {
	terms := significantTerms(prompt)
	if len(terms) == 0 {
		return 70
	}
	lower := strings.ToLower(response)
	hit := 0
	for _, t := range terms {
		if strings.Contains(lower, t) {
			hit++
		}
	}
	return clamp(float64(hit) / float64(len(terms)) * 100)
}

func scoreCodeQuality(code, response string) float64 {
	if code == "" {
		// Prose-only answers get a neutral baseline scaled by length.
		return clamp(50 + math.Min(float64(len(response))/40, 25))
	}
	score := 50.0
	if errHandlingPattern.MatchString(code) {
		score += 20
	}
	if structurePattern.MatchString(code) {
		score += 15
	}
	lines := strings.Count(code, "\n") + 1
	if lines >= 5 {
		score += 10
	}
	return clamp(score)
}

func scoreFunctionality(code, response string) float64 {
	score := 40.0
	if code != "" {
		score += 25
		if structurePattern.MatchString(code) {
			score += 15
		}
	}
	// Longer responses tend to cover more of the asked behavior, with fast
	// diminishing returns.
	score += math.Min(float64(len(response))/100, 20)
	return clamp(score)
}

func scoreEfficiency(response string) float64 {
	n := len(response)
	switch {
	case n < 200:
		return 90
	case n < 1000:
		return 80
	case n < 3000:
		return 65
	default:
		return 50
	}
}

func scoreDocumentation(code, response string) float64 {
	score := 30.0
	if commentLinePattern.MatchString(code) {
		score += 35
	}
	// Prose surrounding the code counts as documentation too.
	prose := len(response) - len(code)
	score += math.Min(float64(prose)/30, 35)
	return clamp(score)
}

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "how": true, "in": true,
	"is": true, "it": true, "of": true, "on": true, "or": true, "that": true,
	"the": true, "this": true, "to": true, "what": true, "which": true,
	"with": true, "write": true, "me": true, "please": true, "can": true,
	"you": true, "i": true, "my": true, "do": true,
}

func significantTerms(prompt string) []string {
	words := strings.FieldsFunc(strings.ToLower(prompt), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	var terms []string
	seen := map[string]bool{}
	for _, w := range words {
		if len(w) < 3 || stopWords[w] || seen[w] {
			continue
		}
		seen[w] = true
		terms = append(terms, w)
	}
	return terms
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
