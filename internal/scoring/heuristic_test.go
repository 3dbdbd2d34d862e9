package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindforge/focusd/internal/health"
)

func TestHeuristic_Score(t *testing.T) {
	backend := NewHeuristic(nil)

	t.Run("weighted combination", func(t *testing.T) {
		// heart_rate=70 -> 85, sleep_quality=7 -> 70, steps=6000 -> 60
		// 0.4*85 + 0.4*70 + 0.2*60 = 74.0
		f := health.FeatureSet{HeartRate: 70, Steps: 6000, SleepQuality: 7}

		result := backend.Score(f)

		assert.InDelta(t, 74.0, result.ConcentrationScore, 1e-9)
		assert.Equal(t, 0.8, result.Confidence)
		assert.NotEmpty(t, result.Recommendations)
		assert.False(t, result.GeneratedAt.IsZero())
	})

	t.Run("empty features stay in range", func(t *testing.T) {
		result := backend.Score(health.FeatureSet{})

		assert.GreaterOrEqual(t, result.ConcentrationScore, 0.0)
		assert.LessOrEqual(t, result.ConcentrationScore, 100.0)
		assert.GreaterOrEqual(t, result.Confidence, 0.0)
		assert.NotEmpty(t, result.Recommendations)
	})

	t.Run("extreme values are clamped", func(t *testing.T) {
		f := health.FeatureSet{HeartRate: 200, Steps: 100000, SleepQuality: 20}

		result := backend.Score(f)

		// heart rate contribution clamps to 0, sleep and activity to 100
		assert.InDelta(t, 60.0, result.ConcentrationScore, 1e-9)
	})

	t.Run("very low heart rate clamps high", func(t *testing.T) {
		f := health.FeatureSet{HeartRate: 0, Steps: 0, SleepQuality: 0}

		result := backend.Score(f)

		// heart_rate_score = clamp(100 - (0-60)*1.5) = 100
		assert.InDelta(t, 40.0, result.ConcentrationScore, 1e-9)
	})
}

func TestDefaultResult(t *testing.T) {
	result := DefaultResult()

	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, 65.0, result.ConcentrationScore)
	assert.Equal(t, 0.7, result.Confidence)
}
