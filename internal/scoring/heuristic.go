package scoring

import (
	"time"

	"go.uber.org/zap"

	"github.com/mindforge/focusd/internal/health"
)

// Heuristic is the deterministic rule-based scorer. It is always available
// and serves as the fallback for every other backend.
type Heuristic struct {
	logger *zap.Logger
}

// NewHeuristic creates the heuristic backend.
func NewHeuristic(logger *zap.Logger) *Heuristic {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Heuristic{logger: logger}
}

// Score computes a weighted combination of heart rate, sleep and activity.
// Resting heart rate near 60 bpm, sleep quality near 10 and high step counts
// all push the score up. Missing features were already defaulted to zero by
// the FeatureSet resolution, so this is a total function.
func (h *Heuristic) Score(features health.FeatureSet) (result ScoreResult) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("heuristic scoring panicked, returning default",
				zap.Any("panic", r))
			result = DefaultResult()
		}
	}()

	heartRateScore := clamp(100-(features.HeartRate-60)*1.5, 0, 100)
	sleepScore := clamp(features.SleepQuality*10, 0, 100)
	activityScore := clamp(features.Steps/100, 0, 100)

	final := 0.4*heartRateScore + 0.4*sleepScore + 0.2*activityScore

	return ScoreResult{
		ConcentrationScore: final,
		Confidence:         0.8,
		Recommendations:    Recommendations(final, features),
		GeneratedAt:        time.Now(),
	}
}

// DefaultResult is the fixed degraded output used when scoring fails
// entirely: a conservative mid-range score with a single generic advisory.
func DefaultResult() ScoreResult {
	return ScoreResult{
		ConcentrationScore: defaultScore,
		Confidence:         defaultConfidence,
		Recommendations:    []string{"Not enough signal to personalize advice; keep logging your activity."},
		GeneratedAt:        time.Now(),
	}
}
