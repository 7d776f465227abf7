// Package metrics computes the per-client derived metrics consumed by the
// coach dashboard and the scheduled reminder scans: "days since X last
// happened" counters over a client's recent daily records, plus the fixed
// threshold predicates built on top of them.
package metrics

import (
	"time"

	"coachtrack/internal/domain"
)

// NoRecord is the "not found in the supplied window" sentinel. A lapse
// predicate treats it as a lapse only when the window is wide enough to
// prove one; a short window proves nothing.
const NoRecord = -1

const (
	// DefaultWaterTargetLiters applies when the user has no explicit target
	// and no record in the window carries a numeric body weight.
	DefaultWaterTargetLiters = 3.0

	// WaterTargetWeightFraction derives the hydration target from the most
	// recent recorded body weight (liters = kg * fraction).
	WaterTargetWeightFraction = 0.05

	InactiveThresholdDays       = 4
	WorkoutLapseThresholdDays   = 5
	DietLapseThresholdDays      = 5
	HydrationLapseThresholdDays = 3
)

// Snapshot holds the derived metrics for one client at one instant.
type Snapshot struct {
	DaysSinceLastRecord        int `json:"daysSinceLastRecord"`
	DaysSinceLastWorkout       int `json:"daysSinceLastWorkout"`
	DaysSinceLastCompliantDiet int `json:"daysSinceLastCompliantDiet"`
	DaysSinceWaterTargetMet    int `json:"daysSinceWaterTargetMet"`

	// DaysSinceOldestRecord is the age of the oldest valid record; together
	// with "today" it bounds how many civil days the window actually covers.
	DaysSinceOldestRecord int `json:"daysSinceOldestRecord"`

	WaterTargetLiters float64 `json:"waterTargetLiters"`
}

// Compute derives a Snapshot from a client's recent daily records.
//
// Records must be ordered most-recent-first (the repository query guarantees
// this). The scan is a single pass; each metric keeps its first match. Records
// with an unparseable date are skipped entirely; records missing the value a
// given metric needs are excluded from that metric only. Compute is pure and
// never panics on malformed input.
func Compute(records []domain.DailyRecord, waterTargetOverride *float64, now time.Time, loc *time.Location) Snapshot {
	s := Snapshot{
		DaysSinceLastRecord:        NoRecord,
		DaysSinceLastWorkout:       NoRecord,
		DaysSinceLastCompliantDiet: NoRecord,
		DaysSinceWaterTargetMet:    NoRecord,
		DaysSinceOldestRecord:      NoRecord,
	}
	s.WaterTargetLiters = waterTarget(records, waterTargetOverride)

	for i := range records {
		rec := &records[i]
		day, err := domain.ParseDateKey(rec.Date, loc)
		if err != nil {
			continue
		}
		days := domain.CivilDaysBetween(now, day, loc)

		if s.DaysSinceLastRecord == NoRecord {
			s.DaysSinceLastRecord = days
		}
		// Records arrive most-recent-first, so the last valid one is the oldest.
		s.DaysSinceOldestRecord = days
		if s.DaysSinceLastWorkout == NoRecord && rec.Workout != nil && *rec.Workout {
			s.DaysSinceLastWorkout = days
		}
		if s.DaysSinceLastCompliantDiet == NoRecord && rec.DietCompliant != nil && *rec.DietCompliant {
			s.DaysSinceLastCompliantDiet = days
		}
		if s.DaysSinceWaterTargetMet == NoRecord && rec.WaterLiters != nil && *rec.WaterLiters >= s.WaterTargetLiters {
			s.DaysSinceWaterTargetMet = days
		}
	}
	return s
}

// waterTarget resolves the hydration target: explicit user override first,
// then 5% of the most recent recorded body weight, then the fixed default.
func waterTarget(records []domain.DailyRecord, override *float64) float64 {
	if override != nil && *override > 0 {
		return *override
	}
	for i := range records {
		if w := records[i].Weight; w != nil && *w > 0 {
			return *w * WaterTargetWeightFraction
		}
	}
	return DefaultWaterTargetLiters
}

// Empty reports whether the snapshot was computed over empty history.
// No predicate fires on an empty snapshot; scans skip such users.
func (s Snapshot) Empty() bool {
	return s.DaysSinceLastRecord == NoRecord
}

// Inactive reports whether the client has not filed a daily record recently.
func (s Snapshot) Inactive() bool {
	return !s.Empty() && s.DaysSinceLastRecord >= InactiveThresholdDays
}

// windowSpansDays reports whether the observed window covers at least n civil
// days (today through the oldest valid record, inclusive).
func (s Snapshot) windowSpansDays(n int) bool {
	return s.DaysSinceOldestRecord != NoRecord && s.DaysSinceOldestRecord+1 >= n
}

// For the lapse predicates, "no match in the window" counts as a lapse only
// when the window itself spans the threshold; a shorter window cannot prove
// the client lapsed.
func (s Snapshot) WorkoutLapsed() bool {
	if s.DaysSinceLastWorkout == NoRecord {
		return s.windowSpansDays(WorkoutLapseThresholdDays)
	}
	return s.DaysSinceLastWorkout >= WorkoutLapseThresholdDays
}

func (s Snapshot) DietLapsed() bool {
	if s.DaysSinceLastCompliantDiet == NoRecord {
		return s.windowSpansDays(DietLapseThresholdDays)
	}
	return s.DaysSinceLastCompliantDiet >= DietLapseThresholdDays
}

func (s Snapshot) HydrationLapsed() bool {
	if s.DaysSinceWaterTargetMet == NoRecord {
		return s.windowSpansDays(HydrationLapseThresholdDays)
	}
	return s.DaysSinceWaterTargetMet >= HydrationLapseThresholdDays
}
