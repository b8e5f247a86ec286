// Package gesture turns pointer press and release events into short and long
// presses on calendar days and applies them to the entry store.
package gesture

import "time"

// DefaultThreshold is how long a press must be held to count as a long press
const DefaultThreshold = 550 * time.Millisecond

// State is the phase of the press machine.
type State int

const (
	Idle State = iota
	Pressing
	LongFired
)

func (s State) String() string {
	switch s {
	case Pressing:
		return "pressing"
	case LongFired:
		return "long-fired"
	}
	return "idle"
}

// Press tracks a single pointer. The host schedules one timer per Down and passes
// the returned generation back to Elapsed; any generation other than the current
// one is stale, which is how a pending timer gets cancelled.
type Press struct {
	state State
	date  string
	gen   uint64
}

// State returns the current phase.
func (p *Press) State() State { return p.state }

// Date returns the date under the pointer while a press is in progress.
func (p *Press) Date() string { return p.date }

// Down starts a press on date and returns the generation for the threshold timer.
func (p *Press) Down(date string) uint64 {
	p.gen++
	p.state = Pressing
	p.date = date
	return p.gen
}

// Elapsed reports a long press when the timer for gen fires while the same press is held.
func (p *Press) Elapsed(gen uint64) (date string, long bool) {
	if p.state != Pressing || gen != p.gen {
		return "", false
	}
	p.state = LongFired
	return p.date, true
}

// Up ends the press. It reports a short press only if the long press never fired.
func (p *Press) Up() (date string, short bool) {
	state, date := p.state, p.date
	p.reset()
	if state == Pressing {
		return date, true
	}
	return "", false
}

// Leave abandons the press without any action, e.g. when the pointer leaves the cell.
func (p *Press) Leave() {
	p.reset()
}

// Cancel is Leave for a cancelled pointer.
func (p *Press) Cancel() {
	p.reset()
}

func (p *Press) reset() {
	p.gen++
	p.state = Idle
	p.date = ""
}
