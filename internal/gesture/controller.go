package gesture

import (
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xolan/hourcal/internal/entry"
	"github.com/xolan/hourcal/internal/storage"
)

const (
	// DefaultHours is what a short press on an empty day records
	DefaultHours = 8
	// MaxHours is the upper bound of the prompt value
	MaxHours = 24
)

// ErrNoPrompt is returned by prompt operations when no prompt is open.
var ErrNoPrompt = errors.New("no prompt open")

// EntryStore is the part of the entry store the controller mutates.
type EntryStore interface {
	Get(date string) (entry.Entry, bool)
	Set(date string, e *entry.Entry) error
}

// Prompt is the editable hours value for one date.
type Prompt struct {
	Date  string
	Value int
}

// Options configures a Controller. Zero fields take the defaults.
type Options struct {
	DefaultHours int
	MaxHours     int
	Threshold    time.Duration
	Logger       logrus.FieldLogger
	// OnChange is called with the date after every store mutation. A date the
	// store rejects as invalid is not a mutation.
	OnChange func(date string)
}

// Controller applies press gestures and prompt edits to an EntryStore.
// At most one date is being edited at a time.
type Controller struct {
	store        EntryStore
	press        Press
	prompt       *Prompt
	defaultHours int
	maxHours     int
	threshold    time.Duration
	log          logrus.FieldLogger
	onChange     func(string)
}

// NewController creates a controller over store.
func NewController(store EntryStore, opts Options) *Controller {
	c := &Controller{
		store:        store,
		defaultHours: opts.DefaultHours,
		maxHours:     opts.MaxHours,
		threshold:    opts.Threshold,
		log:          opts.Logger,
		onChange:     opts.OnChange,
	}
	if c.defaultHours <= 0 {
		c.defaultHours = DefaultHours
	}
	if c.maxHours <= 0 {
		c.maxHours = MaxHours
	}
	if c.threshold <= 0 {
		c.threshold = DefaultThreshold
	}
	if c.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.log = l
	}
	return c
}

// Threshold returns the long-press threshold the host should schedule timers with.
func (c *Controller) Threshold() time.Duration { return c.threshold }

// Down starts a press on date. The host must call Elapsed with the returned
// generation once Threshold has passed.
func (c *Controller) Down(date string) uint64 {
	return c.press.Down(date)
}

// Elapsed applies a long press if gen is still the press being held.
func (c *Controller) Elapsed(gen uint64) error {
	date, long := c.press.Elapsed(gen)
	if !long {
		return nil
	}
	return c.LongPress(date)
}

// Up ends the press and applies a short press if the long press did not fire.
func (c *Controller) Up() error {
	date, short := c.press.Up()
	if !short {
		return nil
	}
	return c.ShortPress(date)
}

// Leave abandons the current press without any action.
func (c *Controller) Leave() { c.press.Leave() }

// Cancel abandons the current press without any action.
func (c *Controller) Cancel() { c.press.Cancel() }

// ShortPress records the default hours on an empty, vacation or leave day.
// On a day with hours it opens the prompt seeded with the current value instead.
func (c *Controller) ShortPress(date string) error {
	cur, ok := c.store.Get(date)
	if ok && cur.IsHours() && cur.Value > 0 {
		c.prompt = &Prompt{Date: date, Value: cur.Value}
		return nil
	}
	e := entry.Hours(c.defaultHours)
	return c.set(date, &e, "short")
}

// LongPress cycles empty -> vacation -> leave -> empty. Hours become vacation.
func (c *Controller) LongPress(date string) error {
	cur, ok := c.store.Get(date)

	var next *entry.Entry
	switch {
	case !ok:
		e := entry.Vacation()
		next = &e
	case cur.Kind == entry.KindVacation:
		e := entry.Leave()
		next = &e
	case cur.Kind == entry.KindLeave:
		next = nil
	default:
		e := entry.Vacation()
		next = &e
	}
	return c.set(date, next, "long")
}

// Prompt returns the open prompt, if any.
func (c *Controller) Prompt() (Prompt, bool) {
	if c.prompt == nil {
		return Prompt{}, false
	}
	return *c.prompt, true
}

// OpenPrompt opens the prompt for date seeded with its current hours (0 if none).
// Any prompt open for another date is abandoned.
func (c *Controller) OpenPrompt(date string) {
	value := 0
	if cur, ok := c.store.Get(date); ok && cur.IsHours() {
		value = cur.Value
	}
	c.prompt = &Prompt{Date: date, Value: value}
}

// Increment raises the prompt value by one, up to the maximum.
func (c *Controller) Increment() error {
	if c.prompt == nil {
		return ErrNoPrompt
	}
	if c.prompt.Value < c.maxHours {
		c.prompt.Value++
	}
	return nil
}

// Decrement lowers the prompt value by one, not below zero.
func (c *Controller) Decrement() error {
	if c.prompt == nil {
		return ErrNoPrompt
	}
	if c.prompt.Value > 0 {
		c.prompt.Value--
	}
	return nil
}

// SetValue replaces the prompt value, clamped to [0, max].
func (c *Controller) SetValue(v int) error {
	if c.prompt == nil {
		return ErrNoPrompt
	}
	switch {
	case v < 0:
		v = 0
	case v > c.maxHours:
		v = c.maxHours
	}
	c.prompt.Value = v
	return nil
}

// Confirm writes the prompt value and closes the prompt. Zero clears the day.
func (c *Controller) Confirm() error {
	if c.prompt == nil {
		return ErrNoPrompt
	}
	p := *c.prompt
	c.prompt = nil

	if p.Value <= 0 {
		return c.set(p.Date, nil, "prompt")
	}
	e := entry.Hours(p.Value)
	return c.set(p.Date, &e, "prompt")
}

// CancelPrompt closes the prompt without changing anything.
func (c *Controller) CancelPrompt() {
	c.prompt = nil
}

func (c *Controller) set(date string, e *entry.Entry, gesture string) error {
	err := c.store.Set(date, e)

	fields := logrus.Fields{"date": date, "gesture": gesture}
	if e != nil {
		fields["entry"] = e.String()
	} else {
		fields["entry"] = "none"
	}
	if err != nil {
		c.log.WithFields(fields).WithError(err).Error("entry change not persisted")
	} else {
		c.log.WithFields(fields).Debug("entry changed")
	}

	if c.onChange != nil && !errors.Is(err, storage.ErrInvalidDate) {
		c.onChange(date)
	}
	return err
}
