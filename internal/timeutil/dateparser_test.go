package timeutil

import (
	"strings"
	"testing"
	"time"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		key     string
		wantErr bool
	}{
		{"2025-03-01", false},
		{"2024-02-29", false},
		{"2025-02-29", true},
		{"2025-3-1", true},
		{"01/03/2025", true},
		{"", true},
		{"2025-03-01T00:00:00Z", true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := ParseKey(tt.key)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseKey(%q) expected error, got %v", tt.key, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseKey(%q) unexpected error: %v", tt.key, err)
			}
			if KeyOf(got) != tt.key {
				t.Errorf("KeyOf(ParseKey(%q)) = %q", tt.key, KeyOf(got))
			}
		})
	}
}

func TestKey(t *testing.T) {
	if got := Key(2025, time.March, 7); got != "2025-03-07" {
		t.Errorf("Key() = %q, expected 2025-03-07", got)
	}
	if got := KeyOf(time.Date(2024, time.December, 25, 18, 30, 0, 0, time.UTC)); got != "2024-12-25" {
		t.Errorf("KeyOf() = %q, expected 2024-12-25", got)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"iso", "2024-01-15", "2024-01-15"},
		{"european", "15/01/2024", "2024-01-15"},
		{"leap day", "29/02/2024", "2024-02-29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if err != nil {
				t.Fatalf("ParseDate(%q) unexpected error: %v", tt.input, err)
			}
			if KeyOf(got) != tt.expected {
				t.Errorf("ParseDate(%q) = %s, expected %s", tt.input, KeyOf(got), tt.expected)
			}
			if got.Hour() != 0 || got.Minute() != 0 {
				t.Errorf("ParseDate(%q) should return start of day, got %v", tt.input, got)
			}
		})
	}
}

func TestParseDate_Relative(t *testing.T) {
	today, err := ParseDate("today")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if KeyOf(today) != KeyOf(time.Now()) {
		t.Errorf("today = %s, expected %s", KeyOf(today), KeyOf(time.Now()))
	}

	yesterday, err := ParseDate("yesterday")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if KeyOf(yesterday) != KeyOf(time.Now().AddDate(0, 0, -1)) {
		t.Errorf("yesterday = %s", KeyOf(yesterday))
	}
}

func TestParseDate_Errors(t *testing.T) {
	tests := []struct {
		input       string
		errContains string
	}{
		{"", "cannot be empty"},
		{"2024", "missing month and day"},
		{"2024-01", "missing day"},
		{"01-15", "missing year"},
		{"15/01", "missing year"},
		{"next tuesday", "invalid date format"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseDate(tt.input)
			if err == nil {
				t.Fatalf("ParseDate(%q) expected error", tt.input)
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("ParseDate(%q) error = %q, expected to contain %q", tt.input, err, tt.errContains)
			}
		})
	}
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		input    string
		expected Month
		wantErr  bool
	}{
		{"2025-03", Month{2025, time.March}, false},
		{"03/2025", Month{2025, time.March}, false},
		{"2025-13", Month{}, true},
		{"2025", Month{}, true},
		{"", Month{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMonth(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseMonth(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMonth(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseMonth(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}
