package timeutil

import (
	"strings"
	"testing"
	"time"
)

func TestParseDateRangeFlags(t *testing.T) {
	tests := []struct {
		name      string
		from      string
		to        string
		month     string
		wantStart string
		wantEnd   string
		openStart bool
		openEnd   bool
	}{
		{name: "no flags", openStart: true, openEnd: true},
		{name: "from only", from: "2025-03-01", wantStart: "2025-03-01", openEnd: true},
		{name: "to only", to: "2025-03-31", openStart: true, wantEnd: "2025-03-31"},
		{name: "both", from: "2025-03-01", to: "2025-03-15", wantStart: "2025-03-01", wantEnd: "2025-03-15"},
		{name: "month", month: "2025-02", wantStart: "2025-02-01", wantEnd: "2025-02-28"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := ParseDateRangeFlags(tt.from, tt.to, tt.month)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.openStart != start.IsZero() {
				t.Errorf("start = %v, open expected %v", start, tt.openStart)
			}
			if !tt.openStart && KeyOf(start) != tt.wantStart {
				t.Errorf("start = %s, expected %s", KeyOf(start), tt.wantStart)
			}
			if tt.openEnd != end.IsZero() {
				t.Errorf("end = %v, open expected %v", end, tt.openEnd)
			}
			if !tt.openEnd && KeyOf(end) != tt.wantEnd {
				t.Errorf("end = %s, expected %s", KeyOf(end), tt.wantEnd)
			}
		})
	}
}

func TestParseDateRangeFlags_Errors(t *testing.T) {
	tests := []struct {
		name        string
		from, to    string
		month       string
		errContains string
	}{
		{"month with from", "2025-03-01", "", "2025-03", "cannot use --month"},
		{"bad from", "nope", "", "", "invalid --from date"},
		{"bad to", "", "nope", "", "invalid --to date"},
		{"bad month", "", "", "march", "invalid --month"},
		{"inverted", "2025-03-10", "2025-03-01", "", "is after"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseDateRangeFlags(tt.from, tt.to, tt.month)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("error = %q, expected to contain %q", err, tt.errContains)
			}
		})
	}
}

func TestIsInRange_OpenBounds(t *testing.T) {
	day := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.Local)
	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.Local)
	end := EndOfDay(time.Date(2025, time.March, 10, 0, 0, 0, 0, time.Local))

	if !IsInRange(day, time.Time{}, time.Time{}) {
		t.Error("open range should contain every time")
	}
	if !IsInRange(day, start, end) {
		t.Error("expected day within closed range")
	}
	if IsInRange(day.AddDate(0, 0, 1), start, end) {
		t.Error("expected day after end to be outside")
	}
	if !IsInRange(start, start, time.Time{}) {
		t.Error("start bound should be inclusive")
	}
}
