package plan

import "time"

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfMonth returns the first day of t's month at 00:00:00.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth returns the last day of t's month at 00:00:00.
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, -1)
}

// StartOfPreviousMonth returns the first day of the month before t's month.
func StartOfPreviousMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, -1, 0)
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Workdays returns every day in [start, end] (inclusive, time-of-day ignored)
// that is not a Saturday or Sunday, in ascending order. A start after end
// yields an empty slice.
func Workdays(start, end time.Time) []time.Time {
	var days []time.Time
	last := StartOfDay(end)
	for d := StartOfDay(start); !d.After(last); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days = append(days, d)
		}
	}
	return days
}

// RemainingWorkdays counts the workdays from now through the end of now's month.
func RemainingWorkdays(now time.Time) int {
	return len(Workdays(now, EndOfMonth(now)))
}

// AvailableHours returns the schedulable hours left in now's month, assuming
// every remaining workday can take MaxHoursPerDay.
func AvailableHours(now time.Time) float64 {
	return float64(RemainingWorkdays(now)) * MaxHoursPerDay
}
