package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xolan/hourcal/internal/config"
	"github.com/xolan/hourcal/internal/entry"
	"github.com/xolan/hourcal/internal/gesture"
	"github.com/xolan/hourcal/internal/holiday"
	"github.com/xolan/hourcal/internal/storage"
	"github.com/xolan/hourcal/internal/timeutil"
)

// ErrInvalidValue is returned for an hours value outside [0, max_hours].
var ErrInvalidValue = errors.New("invalid hours value")

// DayView is one cell of the month grid.
type DayView struct {
	Date    string       `json:"date"`
	Day     int          `json:"day"`
	Weekday string       `json:"weekday"`
	Entry   *entry.Entry `json:"entry,omitempty"`
	Label   string       `json:"label,omitempty"`
	Holiday string       `json:"holiday,omitempty"`
	Weekend bool         `json:"weekend,omitempty"`
	Today   bool         `json:"today,omitempty"`
}

// MonthView is everything a renderer needs for one month.
type MonthView struct {
	Month         string    `json:"month"`
	Label         string    `json:"label"`
	LeadingBlanks int       `json:"leading_blanks"`
	Days          []DayView `json:"days"`
	TotalHours    int       `json:"total_hours"`
	VacationDays  int       `json:"vacation_days"`
	LeaveDays     int       `json:"leave_days"`
	LongPressMS   int       `json:"long_press_ms"`
	MaxHours      int       `json:"max_hours"`
}

// CalendarService owns the entry store, the gesture controller and the month
// being viewed. Every method is serialized, so HTTP and TUI hosts can share it.
type CalendarService struct {
	mu        sync.Mutex
	store     *storage.Store
	ctrl      *gesture.Controller
	cfg       config.Config
	log       logrus.FieldLogger
	month     timeutil.Month
	listeners []func(date string)
	now       func() time.Time
}

// NewCalendarService creates the service over an opened store.
func NewCalendarService(store *storage.Store, cfg config.Config, log logrus.FieldLogger) *CalendarService {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	s := &CalendarService{
		store: store,
		cfg:   cfg,
		log:   log,
		month: timeutil.CurrentMonth(),
		now:   time.Now,
	}
	s.ctrl = gesture.NewController(store, gesture.Options{
		DefaultHours: cfg.Calendar.DefaultHours,
		MaxHours:     cfg.Calendar.MaxHours,
		Threshold:    cfg.LongPress(),
		Logger:       log,
		OnChange:     s.notify,
	})
	return s
}

// OnChange registers fn to be called with the date after every mutation.
// Callbacks run with the service lock held and must not call back into it.
func (s *CalendarService) OnChange(fn func(date string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *CalendarService) notify(date string) {
	for _, fn := range s.listeners {
		fn(date)
	}
}

// Threshold returns the long-press threshold.
func (s *CalendarService) Threshold() time.Duration {
	return s.ctrl.Threshold()
}

// Month returns the month being viewed.
func (s *CalendarService) Month() timeutil.Month {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.month
}

// SetMonth changes the month being viewed.
func (s *CalendarService) SetMonth(m timeutil.Month) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.month = m
}

// PrevMonth moves the view one month back and returns it.
func (s *CalendarService) PrevMonth() timeutil.Month {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.month = s.month.Prev()
	return s.month
}

// NextMonth moves the view one month forward and returns it.
func (s *CalendarService) NextMonth() timeutil.Month {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.month = s.month.Next()
	return s.month
}

// Today moves the view to the current month and returns it.
func (s *CalendarService) Today() timeutil.Month {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.month = timeutil.MonthOf(s.now())
	return s.month
}

// View builds the grid for m.
func (s *CalendarService) View(m timeutil.Month) MonthView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(m)
}

func (s *CalendarService) viewLocked(m timeutil.Month) MonthView {
	today := timeutil.KeyOf(s.now())
	holidays := holiday.ForMonth(m)

	v := MonthView{
		Month:         m.String(),
		Label:         m.Label(),
		LeadingBlanks: m.LeadingBlanks(s.cfg.WeekStart()),
		TotalHours:    s.store.TotalHoursForMonth(m.Year, m.Month),
		LongPressMS:   int(s.ctrl.Threshold() / time.Millisecond),
		MaxHours:      s.cfg.Calendar.MaxHours,
	}
	for d := 1; d <= m.Days(); d++ {
		date := m.Key(d)
		wd := time.Date(m.Year, m.Month, d, 0, 0, 0, 0, time.UTC).Weekday()
		day := DayView{
			Date:    date,
			Day:     d,
			Weekday: wd.String()[:3],
			Holiday: holidays[date],
			Weekend: wd == time.Saturday || wd == time.Sunday,
			Today:   date == today,
		}
		if e, ok := s.store.Get(date); ok {
			e := e
			day.Entry = &e
			day.Label = e.String()
			switch e.Kind {
			case entry.KindVacation:
				v.VacationDays++
			case entry.KindLeave:
				v.LeaveDays++
			}
		}
		v.Days = append(v.Days, day)
	}
	return v
}

// Get returns the entry for date.
func (s *CalendarService) Get(date string) (entry.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Get(date)
}

// Set stores or clears the entry for date.
func (s *CalendarService) Set(date string, e *entry.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(date, e)
}

func (s *CalendarService) setLocked(date string, e *entry.Entry) error {
	if e != nil && e.IsHours() && e.Value > s.cfg.Calendar.MaxHours {
		return fmt.Errorf("%w: %d exceeds max_hours (%d)", ErrInvalidValue, e.Value, s.cfg.Calendar.MaxHours)
	}
	err := s.store.Set(date, e)
	if err == nil || !errors.Is(err, storage.ErrInvalidDate) {
		s.notify(date)
	}
	return err
}

// SetInput parses input ("8", "8h", "ferie", "permesso", "none") and stores it for date.
// It returns the stored entry, or nil when the day was cleared.
func (s *CalendarService) SetInput(date, input string) (*entry.Entry, error) {
	e, err := entry.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	if err := s.Set(date, e); err != nil {
		return nil, err
	}
	if e == nil || e.IsZero() {
		return nil, nil
	}
	return e, nil
}

// Press applies a complete short or long press to date.
func (s *CalendarService) Press(date string, long bool) error {
	if _, err := timeutil.ParseKey(date); err != nil {
		return fmt.Errorf("%w: %q", storage.ErrInvalidDate, date)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if long {
		return s.ctrl.LongPress(date)
	}
	return s.ctrl.ShortPress(date)
}

// Down starts a press and returns the timer generation.
func (s *CalendarService) Down(date string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Down(date)
}

// Elapsed delivers the threshold timer for gen.
func (s *CalendarService) Elapsed(gen uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Elapsed(gen)
}

// Up ends the press.
func (s *CalendarService) Up() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Up()
}

// Leave abandons the press.
func (s *CalendarService) Leave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.Leave()
}

// Prompt returns the open prompt, if any.
func (s *CalendarService) Prompt() (gesture.Prompt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Prompt()
}

// OpenPrompt opens the hours prompt for date.
func (s *CalendarService) OpenPrompt(date string) error {
	if _, err := timeutil.ParseKey(date); err != nil {
		return fmt.Errorf("%w: %q", storage.ErrInvalidDate, date)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.OpenPrompt(date)
	return nil
}

// PromptAction names an operation on the open prompt.
type PromptAction string

const (
	PromptIncrement PromptAction = "increment"
	PromptDecrement PromptAction = "decrement"
	PromptSet       PromptAction = "set"
	PromptConfirm   PromptAction = "confirm"
	PromptCancel    PromptAction = "cancel"
)

// ApplyPrompt performs action on the open prompt. value is used by PromptSet.
func (s *CalendarService) ApplyPrompt(action PromptAction, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch action {
	case PromptIncrement:
		return s.ctrl.Increment()
	case PromptDecrement:
		return s.ctrl.Decrement()
	case PromptSet:
		return s.ctrl.SetValue(value)
	case PromptConfirm:
		return s.ctrl.Confirm()
	case PromptCancel:
		if _, open := s.ctrl.Prompt(); !open {
			return gesture.ErrNoPrompt
		}
		s.ctrl.CancelPrompt()
		return nil
	}
	return fmt.Errorf("unknown prompt action %q", action)
}

// TotalHours returns the hours recorded in m.
func (s *CalendarService) TotalHours(m timeutil.Month) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.TotalHoursForMonth(m.Year, m.Month)
}

// Snapshot returns a copy of every stored entry.
func (s *CalendarService) Snapshot() map[string]entry.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Snapshot()
}

// Dates returns the stored dates in ascending order.
func (s *CalendarService) Dates() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Dates()
}

// Health returns the store's load summary.
func (s *CalendarService) Health() storage.Health {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Health()
}

// Backups lists the rotating backups of the entry store.
func (s *CalendarService) Backups() ([]storage.BackupInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return storage.ListBackups(s.store.Slot(), s.store.Key())
}

// Restore replaces the entry store with backup n.
func (s *CalendarService) Restore(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Restore(n); err != nil {
		return err
	}
	s.log.WithField("backup", n).Info("entry store restored")
	s.notify("")
	return nil
}
