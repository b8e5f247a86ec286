package timeutil

import (
	"testing"
	"time"
)

func TestMonth_PrevNext(t *testing.T) {
	tests := []struct {
		name string
		m    Month
		prev Month
		next Month
	}{
		{"mid year", Month{2025, time.June}, Month{2025, time.May}, Month{2025, time.July}},
		{"january wraps back", Month{2025, time.January}, Month{2024, time.December}, Month{2025, time.February}},
		{"december wraps forward", Month{2025, time.December}, Month{2025, time.November}, Month{2026, time.January}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.Prev(); got != tt.prev {
				t.Errorf("Prev() = %v, expected %v", got, tt.prev)
			}
			if got := tt.m.Next(); got != tt.next {
				t.Errorf("Next() = %v, expected %v", got, tt.next)
			}
		})
	}
}

func TestMonth_Days(t *testing.T) {
	tests := []struct {
		m    Month
		days int
	}{
		{Month{2025, time.January}, 31},
		{Month{2025, time.February}, 28},
		{Month{2024, time.February}, 29},
		{Month{1900, time.February}, 28},
		{Month{2000, time.February}, 29},
		{Month{2025, time.April}, 30},
		{Month{2025, time.December}, 31},
	}

	for _, tt := range tests {
		t.Run(tt.m.String(), func(t *testing.T) {
			if got := tt.m.Days(); got != tt.days {
				t.Errorf("Days() = %d, expected %d", got, tt.days)
			}
		})
	}
}

func TestMonth_LeadingBlanks(t *testing.T) {
	tests := []struct {
		name      string
		m         Month
		weekStart time.Weekday
		expected  int
	}{
		// 2025-03-01 is a Saturday
		{"saturday monday-start", Month{2025, time.March}, time.Monday, 5},
		{"saturday sunday-start", Month{2025, time.March}, time.Sunday, 6},
		// 2025-09-01 is a Monday
		{"monday monday-start", Month{2025, time.September}, time.Monday, 0},
		// 2025-06-01 is a Sunday
		{"sunday monday-start", Month{2025, time.June}, time.Monday, 6},
		{"sunday sunday-start", Month{2025, time.June}, time.Sunday, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.LeadingBlanks(tt.weekStart); got != tt.expected {
				t.Errorf("LeadingBlanks(%v) = %d, expected %d", tt.weekStart, got, tt.expected)
			}
		})
	}
}

func TestMonth_KeyAndContains(t *testing.T) {
	m := Month{2025, time.March}
	if got := m.Key(1); got != "2025-03-01" {
		t.Errorf("Key(1) = %q", got)
	}
	if !m.Contains("2025-03-31") {
		t.Error("expected March to contain 2025-03-31")
	}
	if m.Contains("2025-04-01") {
		t.Error("expected March not to contain 2025-04-01")
	}
	if m.Contains("2024-03-01") {
		t.Error("expected March 2025 not to contain 2024-03-01")
	}
	if m.Contains("garbage") {
		t.Error("expected invalid key not to be contained")
	}
	if got := m.String(); got != "2025-03" {
		t.Errorf("String() = %q", got)
	}
	if got := m.Label(); got != "March 2025" {
		t.Errorf("Label() = %q", got)
	}
}
