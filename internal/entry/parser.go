package entry

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// hoursPattern matches an hours value with an optional "h" suffix (e.g., "8", "8h")
var hoursPattern = regexp.MustCompile(`^(\d+)h?$`)

// MaxHours is the largest hours value accepted from user input
const MaxHours = 24

// Parse parses user input into an entry.
// Returns (nil, nil) when the input clears the day.
//
// Valid inputs:
//   - "8", "8h"                       Hours(8)
//   - "ferie", "vacation", "v"        Vacation
//   - "permesso", "leave", "p"        Leave
//   - "none", "clear", "-", "0", "0h" no entry
func Parse(input string) (*Entry, error) {
	s := strings.ToLower(strings.TrimSpace(input))

	switch s {
	case "":
		return nil, fmt.Errorf("entry cannot be empty (use hours like 8 or 8h, ferie, permesso or none)")
	case "none", "clear", "-":
		return nil, nil
	case "ferie", "vacation", "v":
		e := Vacation()
		return &e, nil
	case "permesso", "leave", "p":
		e := Leave()
		return &e, nil
	}

	matches := hoursPattern.FindStringSubmatch(s)
	if matches == nil {
		return nil, fmt.Errorf("invalid entry %q: expected hours (e.g., 8 or 8h), ferie, permesso or none", input)
	}

	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return nil, fmt.Errorf("invalid hours %q: %w", input, err)
	}

	if value > MaxHours {
		return nil, fmt.Errorf("invalid hours: exceeds maximum of %d", MaxHours)
	}

	if value == 0 {
		return nil, nil
	}

	e := Hours(value)
	return &e, nil
}
