// Package entry defines the per-day entry stored in the calendar.
package entry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies which variant an Entry holds.
// The string values are the ones found in the storage record.
type Kind string

const (
	KindHours    Kind = "hours"
	KindVacation Kind = "ferie"
	KindLeave    Kind = "permesso"
)

// Entry is the state attached to one calendar date: worked hours, vacation or leave.
// Absence of an entry is represented by the absence of the key, never by a zero Entry.
type Entry struct {
	Kind  Kind `json:"kind"`
	Value int  `json:"value,omitempty"` // only meaningful for KindHours
}

// Hours returns an hours entry. Negative values are clamped to zero.
func Hours(v int) Entry {
	if v < 0 {
		v = 0
	}
	return Entry{Kind: KindHours, Value: v}
}

// Vacation returns a vacation entry.
func Vacation() Entry { return Entry{Kind: KindVacation} }

// Leave returns a leave entry.
func Leave() Entry { return Entry{Kind: KindLeave} }

// IsHours reports whether e is an hours entry.
func (e Entry) IsHours() bool { return e.Kind == KindHours }

// IsZero reports whether e carries no information and must not be persisted.
// That is the case for Hours(0) and for the zero value.
func (e Entry) IsZero() bool {
	return e.Kind == "" || (e.Kind == KindHours && e.Value <= 0)
}

// String returns a short label, e.g. "8h", "Ferie", "Permes.".
func (e Entry) String() string {
	switch e.Kind {
	case KindHours:
		return fmt.Sprintf("%dh", e.Value)
	case KindVacation:
		return "Ferie"
	case KindLeave:
		return "Permes."
	}
	return ""
}

// MarshalJSON always writes the structured form. Vacation and leave carry no value.
func (e Entry) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case KindHours:
		return []byte(fmt.Sprintf(`{"kind":%q,"value":%d}`, KindHours, e.Value)), nil
	case KindVacation, KindLeave:
		return []byte(fmt.Sprintf(`{"kind":%q}`, e.Kind)), nil
	}
	return nil, fmt.Errorf("cannot marshal entry with kind %q", e.Kind)
}

// UnmarshalJSON accepts both the structured and the legacy bare-number form.
func (e *Entry) UnmarshalJSON(data []byte) error {
	n, ok := Normalize(data)
	if !ok {
		return fmt.Errorf("unrecognized entry payload: %s", truncate(string(data), 40))
	}
	*e = n
	return nil
}

// Normalize converts a raw storage payload into an Entry.
//
// A bare number is the legacy encoding of Hours(value). Structured hours coerce their
// value: numbers are truncated, numeric strings parsed, true counts as 1 and anything
// else becomes 0. ok is false for null, unknown kinds and any other shape.
func Normalize(raw json.RawMessage) (e Entry, ok bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Entry{}, false
	}

	switch raw[0] {
	case '{':
		var obj struct {
			Kind  Kind            `json:"kind"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return Entry{}, false
		}
		switch obj.Kind {
		case KindHours:
			return Hours(coerceHours(obj.Value)), true
		case KindVacation:
			return Vacation(), true
		case KindLeave:
			return Leave(), true
		}
		return Entry{}, false
	case '"', '[', 't', 'f':
		return Entry{}, false
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return Entry{}, false
	}
	return Hours(truncateFloat(f)), true
}

// coerceHours turns the value field of a structured hours entry into an int.
func coerceHours(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	switch {
	case bytes.Equal(raw, []byte("true")):
		return 1
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return truncateFloat(f)
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0
	}
	return truncateFloat(f)
}

func truncateFloat(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Trunc(f))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
