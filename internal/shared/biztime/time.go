// Package biztime centralizes clock access. Everything is stored and
// compared in UTC; calendar month boundaries are computed in UTC too.
package biztime

import "time"

// NowFunc is swapped by tests that need a fixed clock.
var NowFunc = func() time.Time { return time.Now() }

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return NowFunc().UTC()
}

// StartOfMonthUTC returns midnight on the first day of t's month.
func StartOfMonthUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// StartOfNextMonthUTC returns midnight on the first day of the month after t.
func StartOfNextMonthUTC(t time.Time) time.Time {
	return StartOfMonthUTC(t).AddDate(0, 1, 0)
}

// FromUnix converts provider epoch seconds. Zero maps to the zero time.
func FromUnix(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
