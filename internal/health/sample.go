package health

import (
	"time"
)

// Sample is one timestamped physiological/behavioral observation for a user.
// Samples are created by the ingestion boundary and are read-only to the
// scoring and aggregation paths; a derived score may be attached in memory
// but is never written back to the store.
type Sample struct {
	UserID             string    `json:"user_id"`
	RecordedAt         time.Time `json:"timestamp"`
	HeartRate          float64   `json:"heart_rate"`
	HeartRateAvg       float64   `json:"heart_rate_avg,omitempty"`
	Steps              int64     `json:"steps"`
	StepsCount         int64     `json:"steps_count,omitempty"`
	SleepHours         float64   `json:"sleep_hours"`
	SleepDuration      float64   `json:"sleep_duration,omitempty"`
	SleepQuality       float64   `json:"sleep_quality,omitempty"`
	StressLevel        float64   `json:"stress_level"`
	ConcentrationScore *float64  `json:"concentration_score,omitempty"`
}

// HasTimestamp reports whether the sample carries a usable timestamp.
// Samples without one still contribute to scoring but are excluded from
// date and hour-of-day bucketing.
func (s *Sample) HasTimestamp() bool {
	return !s.RecordedAt.IsZero()
}

// FeatureSet is the resolved, total input to the scoring backend. Alternate
// field spellings (steps_count, sleep_duration) and missing values are
// resolved here so scoring operates on a typed, fully-populated structure.
type FeatureSet struct {
	HeartRate    float64
	Steps        float64
	SleepHours   float64
	SleepQuality float64
	StressLevel  float64
}

// Features resolves the sample's raw fields into a FeatureSet. Missing
// fields default to zero; alternate spellings win only when the primary
// field is unset. If sleep quality is absent, a duration-based proxy is
// substituted (8h of sleep maps to quality 10).
func (s *Sample) Features() FeatureSet {
	f := FeatureSet{
		HeartRate:    s.HeartRate,
		Steps:        float64(s.Steps),
		SleepHours:   s.SleepHours,
		SleepQuality: s.SleepQuality,
		StressLevel:  s.StressLevel,
	}

	if f.HeartRate == 0 {
		f.HeartRate = s.HeartRateAvg
	}
	if f.Steps == 0 {
		f.Steps = float64(s.StepsCount)
	}
	if f.SleepHours == 0 {
		f.SleepHours = s.SleepDuration
	}
	if f.SleepQuality == 0 && f.SleepHours > 0 {
		f.SleepQuality = clamp(f.SleepHours*1.25, 0, 10)
	}

	return f
}

// UserProfile is the cached per-user profile record.
type UserProfile struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
