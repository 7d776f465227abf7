package domain

import (
	"fmt"
	"math"
	"time"
)

// DateLayout is the document key format for daily records.
const DateLayout = "2006-01-02"

// DateKey formats an instant as a civil-day key in the given location.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// WeekKey formats an instant as an ISO-week key ("2026-W35") in the given
// location. Week keys are the document keys for weekly records and photo sets.
func WeekKey(t time.Time, loc *time.Location) string {
	year, week := t.In(loc).ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// ParseDateKey parses a YYYY-MM-DD key as midnight in the given location.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, key, loc)
}

// CivilDaysBetween returns the whole-calendar-day difference between two
// instants in the given location (positive when a is later than b).
// Rounding absorbs DST transitions.
func CivilDaysBetween(a, b time.Time, loc *time.Location) int {
	da := midnight(a, loc)
	db := midnight(b, loc)
	return int(math.Round(da.Sub(db).Hours() / 24))
}

func midnight(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}
