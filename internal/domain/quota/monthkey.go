package quota

import (
	"fmt"
	"time"
)

// MonthKey identifies a calendar month in UTC.
type MonthKey struct {
	Year  int
	Month time.Month
}

// MonthKeyOf is a pure function of t; it never mutates its input.
func MonthKeyOf(t time.Time) MonthKey {
	u := t.UTC()
	return MonthKey{Year: u.Year(), Month: u.Month()}
}

// Start returns midnight UTC on the first day of the month.
func (k MonthKey) Start() time.Time {
	return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the start of the following month.
func (k MonthKey) End() time.Time {
	return k.Start().AddDate(0, 1, 0)
}

// ParseMonthKey reads the YYYY-MM form produced by String.
func ParseMonthKey(s string) (MonthKey, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return MonthKey{}, fmt.Errorf("invalid month key %q: %w", s, err)
	}
	return MonthKeyOf(t), nil
}

func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}
