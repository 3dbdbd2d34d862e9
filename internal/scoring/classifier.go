package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/mindforge/focusd/internal/health"
)

// artifactSchema validates the trained-model artifact before unmarshalling.
// The artifact is a linear softmax classifier over standardized features
// [heart_rate, steps, sleep_hours, stress_level] with 3 ordinal classes.
const artifactSchema = `{
	"type": "object",
	"required": ["version", "classes", "weights", "bias", "feature_means", "feature_scales"],
	"properties": {
		"version": {"type": "integer", "minimum": 1},
		"classes": {"type": "array", "items": {"type": "string"}, "minItems": 3, "maxItems": 3},
		"weights": {
			"type": "array", "minItems": 3, "maxItems": 3,
			"items": {"type": "array", "items": {"type": "number"}, "minItems": 4, "maxItems": 4}
		},
		"bias": {"type": "array", "items": {"type": "number"}, "minItems": 3, "maxItems": 3},
		"feature_means": {"type": "array", "items": {"type": "number"}, "minItems": 4, "maxItems": 4},
		"feature_scales": {"type": "array", "items": {"type": "number"}, "minItems": 4, "maxItems": 4}
	}
}`

// modelArtifact is the on-disk representation of a trained classifier.
type modelArtifact struct {
	Version       int          `json:"version"`
	Classes       []string     `json:"classes"`
	Weights       [][4]float64 `json:"weights"`
	Bias          []float64    `json:"bias"`
	FeatureMeans  []float64    `json:"feature_means"`
	FeatureScales []float64    `json:"feature_scales"`
}

// Classifier scores samples with a trained artifact. Class probabilities
// over {low, medium, high} are collapsed to a single score by the weighted
// sum 0*P(low) + 0.5*P(medium) + 1.0*P(high). Once loaded the artifact is
// immutable and safe for concurrent use.
type Classifier struct {
	artifact *modelArtifact
	logger   *zap.Logger
}

// LoadClassifier reads and validates a model artifact from disk. A missing
// or malformed artifact is an error for the caller to log; it must never be
// fatal to process startup.
func LoadClassifier(path string, logger *zap.Logger) (*Classifier, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(artifactSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("validate model artifact: %w", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("model artifact %s does not match schema: %v", path, result.Errors())
	}

	var artifact modelArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("parse model artifact: %w", err)
	}

	logger.Info("classifier artifact loaded",
		zap.String("path", path),
		zap.Int("version", artifact.Version))

	return &Classifier{artifact: &artifact, logger: logger}, nil
}

// Score runs inference over the feature vector. Any failure falls back to
// the fixed neutral score; inference errors never reach the caller.
func (c *Classifier) Score(features health.FeatureSet) (result ScoreResult) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("classifier inference panicked, returning neutral score",
				zap.Any("panic", r))
			result = neutralResult(features)
		}
	}()

	if c.artifact == nil {
		return neutralResult(features)
	}

	vector := [4]float64{features.HeartRate, features.Steps, features.SleepHours, features.StressLevel}
	probs, err := c.artifact.probabilities(vector)
	if err != nil {
		c.logger.Warn("classifier inference failed, returning neutral score", zap.Error(err))
		return neutralResult(features)
	}

	// Collapse ordinal class probabilities to a unit score, then report on
	// the 0-100 scale like every other backend.
	unit := 0.5*probs[1] + 1.0*probs[2]
	score := clamp(unit*100, 0, 100)

	confidence := probs[0]
	for _, p := range probs[1:] {
		if p > confidence {
			confidence = p
		}
	}

	return ScoreResult{
		ConcentrationScore: score,
		Confidence:         confidence,
		Recommendations:    Recommendations(score, features),
		GeneratedAt:        time.Now(),
	}
}

// probabilities computes softmax class probabilities for a raw feature vector.
func (m *modelArtifact) probabilities(vector [4]float64) ([3]float64, error) {
	var probs [3]float64

	if len(m.Weights) != 3 || len(m.Bias) != 3 ||
		len(m.FeatureMeans) != 4 || len(m.FeatureScales) != 4 {
		return probs, fmt.Errorf("artifact dimensions invalid: %d classes, %d bias terms",
			len(m.Weights), len(m.Bias))
	}

	var standardized [4]float64
	for i, v := range vector {
		scale := m.FeatureScales[i]
		if scale == 0 {
			scale = 1
		}
		standardized[i] = (v - m.FeatureMeans[i]) / scale
	}

	var logits [3]float64
	maxLogit := math.Inf(-1)
	for class := 0; class < 3; class++ {
		sum := m.Bias[class]
		for i, v := range standardized {
			sum += m.Weights[class][i] * v
		}
		logits[class] = sum
		if sum > maxLogit {
			maxLogit = sum
		}
	}

	var total float64
	for class, logit := range logits {
		probs[class] = math.Exp(logit - maxLogit)
		total += probs[class]
	}
	if total == 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return probs, fmt.Errorf("softmax degenerate for vector %v", vector)
	}
	for class := range probs {
		probs[class] /= total
	}

	return probs, nil
}

// neutralResult is the per-sample fallback when classifier inference cannot
// produce a real probability distribution.
func neutralResult(features health.FeatureSet) ScoreResult {
	return ScoreResult{
		ConcentrationScore: neutralUnitScore * 100,
		Confidence:         defaultConfidence,
		Recommendations:    Recommendations(neutralUnitScore*100, features),
		GeneratedAt:        time.Now(),
	}
}
