package scoring

import (
	"time"

	"github.com/mindforge/focusd/internal/health"
)

// ScoreResult is the output of one scoring call. Scores are reported on the
// 0-100 scale; callers that aggregate convert to the unit scale themselves.
type ScoreResult struct {
	ConcentrationScore float64   `json:"concentration_score"`
	Confidence         float64   `json:"confidence"`
	Recommendations    []string  `json:"recommendations"`
	GeneratedAt        time.Time `json:"generated_at"`
}

// Backend turns one sample's features into a concentration score. Every
// implementation has a guaranteed-success contract: it returns a structurally
// valid result for any input and never panics or errors out to the caller.
type Backend interface {
	Score(features health.FeatureSet) ScoreResult
}

// Degraded fallback values, returned when a backend cannot compute a real
// score. Callers cannot distinguish these from a computed result except by
// inspecting confidence and recommendations.
const (
	defaultScore      = 65.0
	defaultConfidence = 0.7
	neutralUnitScore  = 0.5
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
