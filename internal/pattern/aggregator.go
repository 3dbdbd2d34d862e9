package pattern

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/mindforge/focusd/internal/health"
	"github.com/mindforge/focusd/internal/scoring"
)

// Report is the aggregated focus-pattern summary for a user over a date
// range. All numeric fields are on the unit [0,1] scale; sequence fields are
// empty, never nil, when there is nothing to report.
type Report struct {
	DailyAverage     float64   `json:"daily_average"`
	WeeklyTrend      []float64 `json:"weekly_trend"`
	PeakHours        []int     `json:"peak_hours"`
	ImprovementAreas []string  `json:"improvement_areas"`
	Recommendations  []string  `json:"recommendations"`
}

// Per-date means below this value flag the date as an improvement area; a
// daily average below it triggers the raise-focus advisory.
const lowFocusThreshold = 0.5

const maxPeakHours = 3

// Analyzer computes focus-pattern reports from sample collections. Samples
// without an attached concentration score are scored through the backend
// first.
type Analyzer struct {
	backend scoring.Backend
	logger  *zap.Logger
}

// NewAnalyzer creates an analyzer backed by the given scoring backend.
func NewAnalyzer(backend scoring.Backend, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{backend: backend, logger: logger}
}

// Analyze produces the focus-pattern report for a sample collection. It
// never fails: an empty collection short-circuits to the zero report, and
// any unexpected error during aggregation degrades to the same zero report
// so the caller always receives a well-formed payload.
func (a *Analyzer) Analyze(samples []health.Sample) (report Report) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("pattern analysis panicked, returning empty report",
				zap.Any("panic", r))
			report = emptyReport()
		}
	}()

	if len(samples) == 0 {
		return emptyReport()
	}

	scores := a.unitScores(samples)

	dates, dateMeans := bucketByDate(samples, scores)
	trend := make([]float64, 0, len(dates))
	var trendSum float64
	for _, date := range dates {
		trend = append(trend, dateMeans[date])
		trendSum += dateMeans[date]
	}

	// Average of per-date averages: every date weighs equally regardless of
	// how many samples landed on it.
	var dailyAverage float64
	if len(dates) > 0 {
		dailyAverage = trendSum / float64(len(dates))
	}

	improvements := make([]string, 0)
	for _, date := range dates {
		if dateMeans[date] < lowFocusThreshold {
			improvements = append(improvements, date)
		}
	}

	return Report{
		DailyAverage:     dailyAverage,
		WeeklyTrend:      trend,
		PeakHours:        peakHours(samples, scores),
		ImprovementAreas: improvements,
		Recommendations:  a.recommendations(dailyAverage, samples),
	}
}

// unitScores returns the per-sample concentration scores on the unit scale,
// delegating to the scoring backend for samples without an attached score.
func (a *Analyzer) unitScores(samples []health.Sample) []float64 {
	scores := make([]float64, len(samples))
	for i := range samples {
		if samples[i].ConcentrationScore != nil {
			scores[i] = *samples[i].ConcentrationScore
			continue
		}
		result := a.backend.Score(samples[i].Features())
		scores[i] = result.ConcentrationScore / 100
	}
	return scores
}

// bucketByDate groups samples into calendar-date buckets and returns the
// ascending-sorted date keys with each bucket's mean score. Samples without
// a timestamp are excluded.
func bucketByDate(samples []health.Sample, scores []float64) ([]string, map[string]float64) {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i := range samples {
		if !samples[i].HasTimestamp() {
			continue
		}
		date := samples[i].RecordedAt.Format(time.DateOnly)
		sums[date] += scores[i]
		counts[date]++
	}

	dates := make([]string, 0, len(sums))
	for date := range sums {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	means := make(map[string]float64, len(sums))
	for date, sum := range sums {
		means[date] = sum / float64(counts[date])
	}
	return dates, means
}

// peakHours returns up to 3 hour-of-day buckets with the highest mean score,
// descending. Ties keep the hour that appeared first in the input.
func peakHours(samples []health.Sample, scores []float64) []int {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	order := make([]int, 0, 24)
	for i := range samples {
		if !samples[i].HasTimestamp() {
			continue
		}
		hour := samples[i].RecordedAt.Hour()
		if counts[hour] == 0 {
			order = append(order, hour)
		}
		sums[hour] += scores[i]
		counts[hour]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return sums[order[i]]/float64(counts[order[i]]) > sums[order[j]]/float64(counts[order[j]])
	})

	if len(order) > maxPeakHours {
		order = order[:maxPeakHours]
	}
	return order
}

// recommendations derives the report's advisory list from the daily average
// and the raw sample set.
func (a *Analyzer) recommendations(dailyAverage float64, samples []health.Sample) []string {
	recs := make([]string, 0, 3)

	if dailyAverage < lowFocusThreshold {
		recs = append(recs, "Your overall focus is below average. Build in regular breaks and reduce distractions.")
	}

	var shortSleep, highStress bool
	for i := range samples {
		f := samples[i].Features()
		if f.SleepHours > 0 && f.SleepHours < 6 {
			shortSleep = true
		}
		if f.StressLevel > 7 {
			highStress = true
		}
	}
	if shortSleep {
		recs = append(recs, "Several days show under 6 hours of sleep. Aim for 7-8 hours per night.")
	}
	if highStress {
		recs = append(recs, "High stress levels detected. Try relaxation techniques or light exercise.")
	}

	if len(recs) == 0 {
		recs = append(recs, "Your focus pattern looks healthy. Keep up your current routine.")
	}
	return recs
}

// emptyReport is the all-zero, all-empty report returned for empty input or
// on unexpected failure. Slices are allocated so consumers never see null.
func emptyReport() Report {
	return Report{
		WeeklyTrend:      []float64{},
		PeakHours:        []int{},
		ImprovementAreas: []string{},
		Recommendations:  []string{},
	}
}
