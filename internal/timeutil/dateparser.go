package timeutil

import (
	"fmt"
	"regexp"
	"time"
)

// KeyLayout is the layout of a date key (YYYY-MM-DD)
const KeyLayout = "2006-01-02"

// Key returns the canonical date key for a calendar day.
func Key(year int, month time.Month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

// KeyOf returns the date key of t in its own location.
func KeyOf(t time.Time) string {
	return Key(t.Year(), t.Month(), t.Day())
}

// ParseKey parses a canonical date key. Unlike ParseDate it accepts only the
// canonical form, so it can validate keys read from storage.
func ParseKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(KeyLayout, key, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key '%s' (expected YYYY-MM-DD)", key)
	}
	if KeyOf(t) != key {
		return time.Time{}, fmt.Errorf("invalid date key '%s' (expected YYYY-MM-DD)", key)
	}
	return t, nil
}

// ParseDate parses a date string in YYYY-MM-DD or DD/MM/YYYY format.
// Returns the parsed date at midnight (start of day) in local timezone.
// For ambiguous dates (like 05/06/2024), ISO format (YYYY-MM-DD) is preferred.
//
// The words "today" and "yesterday" are accepted too.
func ParseDate(input string) (time.Time, error) {
	if input == "" {
		return time.Time{}, fmt.Errorf("date cannot be empty (use format YYYY-MM-DD or DD/MM/YYYY, e.g., 2024-01-15 or 15/01/2024)")
	}

	switch input {
	case "today":
		return StartOfDay(time.Now()), nil
	case "yesterday":
		return StartOfDay(time.Now().AddDate(0, 0, -1)), nil
	}

	// Try ISO format first (YYYY-MM-DD) - preferred for ambiguous dates
	t, err := time.ParseInLocation(KeyLayout, input, time.Local)
	if err == nil {
		return StartOfDay(t), nil
	}

	// Try European format (DD/MM/YYYY)
	t, err = time.ParseInLocation("02/01/2006", input, time.Local)
	if err == nil {
		return StartOfDay(t), nil
	}

	return time.Time{}, buildDateParseError(input)
}

// buildDateParseError creates a helpful error message based on the input pattern
func buildDateParseError(input string) error {
	isoPartialRe := regexp.MustCompile(`^\d{4}-\d{1,2}$`)      // YYYY-MM (missing day)
	yearOnlyRe := regexp.MustCompile(`^\d{4}$`)                // YYYY (year only)
	isoPartialDayRe := regexp.MustCompile(`^\d{1,2}-\d{1,2}$`) // MM-DD or DD-MM (missing year)
	euroPartialRe := regexp.MustCompile(`^\d{1,2}/\d{1,2}$`)   // DD/MM (missing year)

	switch {
	case yearOnlyRe.MatchString(input):
		return fmt.Errorf("incomplete date '%s': missing month and day (use format YYYY-MM-DD, e.g., %s-01-15)", input, input)
	case isoPartialRe.MatchString(input):
		return fmt.Errorf("incomplete date '%s': missing day (use format YYYY-MM-DD, e.g., %s-15)", input, input)
	case isoPartialDayRe.MatchString(input):
		return fmt.Errorf("incomplete date '%s': missing year (use format YYYY-MM-DD or DD/MM/YYYY, e.g., 2024-%s)", input, input)
	case euroPartialRe.MatchString(input):
		return fmt.Errorf("incomplete date '%s': missing year (use format DD/MM/YYYY, e.g., %s/2024)", input, input)
	default:
		return fmt.Errorf("invalid date format '%s' (use YYYY-MM-DD or DD/MM/YYYY, e.g., 2024-01-15 or 15/01/2024)", input)
	}
}

// ParseMonth parses a month in YYYY-MM or MM/YYYY format.
func ParseMonth(input string) (Month, error) {
	if input == "" {
		return Month{}, fmt.Errorf("month cannot be empty (use format YYYY-MM or MM/YYYY, e.g., 2025-03 or 03/2025)")
	}

	for _, layout := range []string{"2006-01", "01/2006"} {
		if t, err := time.Parse(layout, input); err == nil {
			return MonthOf(t), nil
		}
	}

	return Month{}, fmt.Errorf("invalid month format '%s' (use YYYY-MM or MM/YYYY, e.g., 2025-03 or 03/2025)", input)
}
