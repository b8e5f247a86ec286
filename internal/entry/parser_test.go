package entry

import (
	"strings"
	"testing"
)

func TestParse_Hours(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{"bare number", "8", 8},
		{"with suffix", "8h", 8},
		{"upper suffix", "6H", 6},
		{"surrounding spaces", "  4h ", 4},
		{"max", "24", 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) returned unexpected error: %v", tt.input, err)
			}
			if e == nil {
				t.Fatalf("Parse(%q) returned nil entry", tt.input)
			}
			if *e != Hours(tt.expected) {
				t.Errorf("Parse(%q) = %+v, expected Hours(%d)", tt.input, *e, tt.expected)
			}
		})
	}
}

func TestParse_Kinds(t *testing.T) {
	tests := []struct {
		input    string
		expected Kind
	}{
		{"ferie", KindVacation},
		{"Vacation", KindVacation},
		{"v", KindVacation},
		{"permesso", KindLeave},
		{"LEAVE", KindLeave},
		{"p", KindLeave},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) returned unexpected error: %v", tt.input, err)
			}
			if e == nil || e.Kind != tt.expected {
				t.Errorf("Parse(%q) = %+v, expected kind %q", tt.input, e, tt.expected)
			}
		})
	}
}

func TestParse_Clear(t *testing.T) {
	for _, input := range []string{"none", "clear", "-", "0", "0h"} {
		t.Run(input, func(t *testing.T) {
			e, err := Parse(input)
			if err != nil {
				t.Fatalf("Parse(%q) returned unexpected error: %v", input, err)
			}
			if e != nil {
				t.Errorf("Parse(%q) = %+v, expected nil", input, *e)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		errContains string
	}{
		{"empty", "", "cannot be empty"},
		{"whitespace", "   ", "cannot be empty"},
		{"minutes", "30m", "invalid entry"},
		{"negative", "-3", "invalid entry"},
		{"decimal", "7.5", "invalid entry"},
		{"too many hours", "25", "exceeds maximum"},
		{"word", "holiday", "invalid entry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("Parse(%q) expected error, got nil", tt.input)
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("Parse(%q) error = %q, expected to contain %q", tt.input, err.Error(), tt.errContains)
			}
		})
	}
}
