package scoring

import "github.com/mindforge/focusd/internal/health"

// Fixed advisory thresholds. These mirror the ranges clinicians use for
// resting heart rate, adult sleep duration and daily step targets.
const (
	highHeartRate = 90
	lowHeartRate  = 50
	shortSleep    = 6
	longSleep     = 9
	lowSteps      = 5000
)

// Recommendations produces the ordered advisory list for a score and its
// originating features. The list is never empty: if no threshold triggers,
// a default "maintain current habits" pair is returned.
func Recommendations(score float64, features health.FeatureSet) []string {
	recs := make([]string, 0, 4)

	if features.HeartRate > highHeartRate {
		recs = append(recs, "Your average heart rate is elevated. Take time to rest and recover.")
	} else if features.HeartRate < lowHeartRate {
		recs = append(recs, "Your average heart rate is low. Consider increasing daily activity.")
	}

	if features.SleepHours < shortSleep {
		recs = append(recs, "You are sleeping less than 6 hours. Aim for 7-8 hours per night.")
	} else if features.SleepHours > longSleep {
		recs = append(recs, "You are sleeping more than 9 hours. Optimal sleep is 7-8 hours.")
	}

	if features.Steps < lowSteps {
		recs = append(recs, "Your activity level is low. Aim for 8,000-10,000 steps per day.")
	}

	if len(recs) == 0 {
		recs = append(recs,
			"Your health indicators look good. Maintain your current habits.",
			"Keep up regular exercise and a balanced diet.")
	}

	return recs
}
