package timeutil

import (
	"fmt"
	"time"
)

// Month identifies one calendar month. It is the unit the calendar grid shows.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// CurrentMonth returns the month containing the current local time.
func CurrentMonth() Month {
	return MonthOf(time.Now())
}

// Prev returns the previous month, wrapping January to December of the previous year.
func (m Month) Prev() Month {
	if m.Month == time.January {
		return Month{Year: m.Year - 1, Month: time.December}
	}
	return Month{Year: m.Year, Month: m.Month - 1}
}

// Next returns the following month, wrapping December to January of the next year.
func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	// Day 0 of the following month is the last day of this one
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Start returns the first day of the month at midnight in loc.
func (m Month) Start(loc *time.Location) time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, loc)
}

// LeadingBlanks returns how many empty cells precede day 1 in a week row
// starting on weekStart (time.Monday or time.Sunday).
func (m Month) LeadingBlanks(weekStart time.Weekday) int {
	first := m.Start(time.UTC).Weekday()
	return (int(first) - int(weekStart) + 7) % 7
}

// Key returns the date key of the given day of the month.
func (m Month) Key(day int) string {
	return Key(m.Year, m.Month, day)
}

// Contains reports whether the date key falls in the month.
func (m Month) Contains(key string) bool {
	t, err := ParseKey(key)
	if err != nil {
		return false
	}
	return t.Year() == m.Year && t.Month() == m.Month
}

// String returns the month as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Label returns a human-readable label, e.g. "March 2025".
func (m Month) Label() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}
