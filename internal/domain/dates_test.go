package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekKeyISOBoundaries(t *testing.T) {
	// Jan 1st 2027 is a Friday and belongs to ISO week 53 of 2026.
	jan1 := time.Date(2027, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-W53", WeekKey(jan1, time.UTC))

	// Monday starts a new ISO week.
	mon := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	sun := mon.AddDate(0, 0, -1)
	assert.NotEqual(t, WeekKey(sun, time.UTC), WeekKey(mon, time.UTC))
	assert.Equal(t, WeekKey(mon, time.UTC), WeekKey(mon.AddDate(0, 0, 6), time.UTC))
}

func TestCivilDaysBetweenCrossesMidnightNotHours(t *testing.T) {
	loc := time.UTC
	lateEvening := time.Date(2026, 8, 27, 23, 30, 0, 0, loc)
	earlyMorning := time.Date(2026, 8, 28, 0, 30, 0, 0, loc)

	// One hour apart but on different civil days.
	assert.Equal(t, 1, CivilDaysBetween(earlyMorning, lateEvening, loc))
	assert.Equal(t, -1, CivilDaysBetween(lateEvening, earlyMorning, loc))
	assert.Equal(t, 0, CivilDaysBetween(lateEvening, lateEvening.Add(-12*time.Hour), loc))
}

func TestCivilDaysBetweenAcrossDSTTransition(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Kyiv")
	require.NoError(t, err)

	// The last Sunday of March 2026 is a 23-hour day in Kyiv.
	before := time.Date(2026, 3, 28, 12, 0, 0, 0, loc)
	after := time.Date(2026, 3, 30, 12, 0, 0, 0, loc)
	assert.Equal(t, 2, CivilDaysBetween(after, before, loc))
}

func TestParseDateKeyRoundTrips(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Kyiv")
	require.NoError(t, err)

	day, err := ParseDateKey("2026-08-28", loc)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-28", DateKey(day, loc))

	_, err = ParseDateKey("28/08/2026", loc)
	assert.Error(t, err)
}
