package timeutil

import (
	"fmt"
	"time"
)

// ParseDateRangeFlags parses --from/--to flags and returns start/end times.
// An omitted --from leaves the start open; an omitted --to leaves the end open.
// A --month flag selects a whole month and cannot be combined with --from or --to.
func ParseDateRangeFlags(fromStr, toStr, monthStr string) (start, end time.Time, err error) {
	if monthStr != "" && (fromStr != "" || toStr != "") {
		return time.Time{}, time.Time{}, fmt.Errorf("cannot use --month with --from or --to")
	}

	if monthStr != "" {
		m, err := ParseMonth(monthStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --month: %w", err)
		}
		start = m.Start(time.Local)
		return start, EndOfMonth(start), nil
	}

	if fromStr != "" {
		start, err = ParseDate(fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from date: %w", err)
		}
	}

	if toStr != "" {
		toDate, err := ParseDate(toStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to date: %w", err)
		}
		end = EndOfDay(toDate)
	}

	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("--from date (%s) is after --to date (%s)",
			start.Format(KeyLayout), end.Format(KeyLayout))
	}

	return start, end, nil
}
