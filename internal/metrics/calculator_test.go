package metrics

import (
	"testing"
	"time"

	"coachtrack/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLoc = time.UTC

// now is fixed so that "today" is 2026-08-28 in every test.
var testNow = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func boolPtr(b bool) *bool        { return &b }
func floatPtr(f float64) *float64 { return &f }

// record builds a daily record dated daysAgo civil days before testNow.
func record(daysAgo int, mutate func(*domain.DailyRecord)) domain.DailyRecord {
	day := testNow.AddDate(0, 0, -daysAgo)
	r := domain.DailyRecord{Date: domain.DateKey(day, testLoc)}
	if mutate != nil {
		mutate(&r)
	}
	return r
}

func TestComputeEmptyHistory(t *testing.T) {
	s := Compute(nil, nil, testNow, testLoc)

	assert.Equal(t, NoRecord, s.DaysSinceLastRecord)
	assert.Equal(t, NoRecord, s.DaysSinceLastWorkout)
	assert.Equal(t, NoRecord, s.DaysSinceLastCompliantDiet)
	assert.Equal(t, NoRecord, s.DaysSinceWaterTargetMet)

	assert.True(t, s.Empty())
	assert.False(t, s.Inactive())
	assert.False(t, s.WorkoutLapsed())
	assert.False(t, s.DietLapsed())
	assert.False(t, s.HydrationLapsed())
}

func TestComputeMostRecentIsToday(t *testing.T) {
	s := Compute([]domain.DailyRecord{record(0, nil)}, nil, testNow, testLoc)
	assert.Equal(t, 0, s.DaysSinceLastRecord)
	assert.False(t, s.Inactive())
}

func TestComputeWorkoutDays(t *testing.T) {
	records := []domain.DailyRecord{
		record(0, func(r *domain.DailyRecord) { r.Workout = boolPtr(false) }),
		record(1, func(r *domain.DailyRecord) { r.Workout = boolPtr(true) }),
		record(2, func(r *domain.DailyRecord) { r.Workout = boolPtr(false) }),
	}
	s := Compute(records, nil, testNow, testLoc)
	assert.Equal(t, 0, s.DaysSinceLastRecord)
	assert.Equal(t, 1, s.DaysSinceLastWorkout)
}

// allFalseWindow builds n consecutive records ending today, every one with
// workout explicitly false.
func allFalseWindow(n int) []domain.DailyRecord {
	records := make([]domain.DailyRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, record(i, func(r *domain.DailyRecord) { r.Workout = boolPtr(false) }))
	}
	return records
}

func TestShortAllFalseWindowDoesNotFireWorkoutLapse(t *testing.T) {
	// Three days of "no workout" only prove a 3-day gap; the 5-day
	// threshold cannot be met by a window this narrow.
	s := Compute(allFalseWindow(3), nil, testNow, testLoc)
	assert.Equal(t, NoRecord, s.DaysSinceLastWorkout)
	assert.Equal(t, 2, s.DaysSinceOldestRecord)
	assert.False(t, s.WorkoutLapsed())
}

func TestFiveDayAllFalseWindowFiresWorkoutLapse(t *testing.T) {
	s := Compute(allFalseWindow(5), nil, testNow, testLoc)
	assert.Equal(t, NoRecord, s.DaysSinceLastWorkout)
	assert.Equal(t, 4, s.DaysSinceOldestRecord)
	assert.True(t, s.WorkoutLapsed())
}

func TestComputeMonotonicity(t *testing.T) {
	older := []domain.DailyRecord{
		record(3, func(r *domain.DailyRecord) { r.Workout = boolPtr(true) }),
	}
	before := Compute(older, nil, testNow, testLoc)

	// Prepending a more recent matching record can only decrease the metric.
	newer := append([]domain.DailyRecord{
		record(1, func(r *domain.DailyRecord) { r.Workout = boolPtr(true) }),
	}, older...)
	after := Compute(newer, nil, testNow, testLoc)

	assert.LessOrEqual(t, after.DaysSinceLastWorkout, before.DaysSinceLastWorkout)
	assert.Equal(t, 1, after.DaysSinceLastWorkout)
}

func TestWaterTargetFallback(t *testing.T) {
	// No weight anywhere in the window: fixed default applies.
	records := []domain.DailyRecord{record(0, nil), record(1, nil)}
	s := Compute(records, nil, testNow, testLoc)
	assert.InDelta(t, DefaultWaterTargetLiters, s.WaterTargetLiters, 1e-9)
}

func TestWaterTargetFromMostRecentWeight(t *testing.T) {
	records := []domain.DailyRecord{
		record(0, nil),
		record(1, func(r *domain.DailyRecord) { r.Weight = floatPtr(80) }),
		record(2, func(r *domain.DailyRecord) { r.Weight = floatPtr(100) }),
	}
	s := Compute(records, nil, testNow, testLoc)
	// 5% of the most recent weight (80), older weights are irrelevant.
	assert.InDelta(t, 4.0, s.WaterTargetLiters, 1e-9)
}

func TestWaterTargetOverrideWins(t *testing.T) {
	records := []domain.DailyRecord{
		record(0, func(r *domain.DailyRecord) { r.Weight = floatPtr(80) }),
	}
	s := Compute(records, floatPtr(2.5), testNow, testLoc)
	assert.InDelta(t, 2.5, s.WaterTargetLiters, 1e-9)
}

func TestWaterTargetMetDays(t *testing.T) {
	records := []domain.DailyRecord{
		record(0, func(r *domain.DailyRecord) { r.WaterLiters = floatPtr(1.0) }),
		record(2, func(r *domain.DailyRecord) { r.WaterLiters = floatPtr(3.5) }),
	}
	s := Compute(records, nil, testNow, testLoc)
	// Default target 3.0: only the 2-days-ago record meets it.
	assert.Equal(t, 2, s.DaysSinceWaterTargetMet)
	assert.False(t, s.HydrationLapsed())
}

func TestComputeSkipsMalformedRecords(t *testing.T) {
	records := []domain.DailyRecord{
		{Date: "not-a-date", Workout: boolPtr(true)},
		record(1, func(r *domain.DailyRecord) { r.Workout = boolPtr(true) }),
		// Missing flags are "no data", never false.
		record(0, nil),
	}
	require.NotPanics(t, func() {
		s := Compute(records, nil, testNow, testLoc)
		assert.Equal(t, 1, s.DaysSinceLastWorkout)
	})
}

func TestComputeIsPure(t *testing.T) {
	records := []domain.DailyRecord{
		record(0, func(r *domain.DailyRecord) {
			r.Workout = boolPtr(true)
			r.DietCompliant = boolPtr(true)
			r.Weight = floatPtr(90)
			r.WaterLiters = floatPtr(5)
		}),
		record(4, nil),
	}
	first := Compute(records, nil, testNow, testLoc)
	second := Compute(records, nil, testNow, testLoc)
	assert.Equal(t, first, second)
}

func TestThresholdPredicates(t *testing.T) {
	s := Snapshot{
		DaysSinceLastRecord:        4,
		DaysSinceLastWorkout:       5,
		DaysSinceLastCompliantDiet: 4,
		DaysSinceWaterTargetMet:    3,
	}
	assert.True(t, s.Inactive())
	assert.True(t, s.WorkoutLapsed())
	assert.False(t, s.DietLapsed())
	assert.True(t, s.HydrationLapsed())
}
