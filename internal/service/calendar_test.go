package service

import (
	"errors"
	"testing"
	"time"

	"github.com/xolan/hourcal/internal/entry"
	"github.com/xolan/hourcal/internal/gesture"
	"github.com/xolan/hourcal/internal/storage"
	"github.com/xolan/hourcal/internal/timeutil"
)

func TestCalendar_View(t *testing.T) {
	svc, _ := newTestServices(t)
	cal := svc.Calendar
	cal.now = func() time.Time { return time.Date(2025, time.March, 5, 10, 0, 0, 0, time.Local) }

	_ = cal.Set("2025-03-01", ptrEntry(entry.Hours(8)))
	_ = cal.Set("2025-03-02", ptrEntry(entry.Vacation()))
	_ = cal.Set("2025-03-03", ptrEntry(entry.Leave()))
	_ = cal.Set("2025-04-01", ptrEntry(entry.Hours(8)))

	v := cal.View(timeutil.Month{Year: 2025, Month: time.March})
	if v.Month != "2025-03" || v.Label != "March 2025" {
		t.Errorf("unexpected header: %q %q", v.Month, v.Label)
	}
	if len(v.Days) != 31 {
		t.Fatalf("expected 31 days, got %d", len(v.Days))
	}
	// 2025-03-01 is a Saturday; Monday-first grid has 5 blanks
	if v.LeadingBlanks != 5 {
		t.Errorf("LeadingBlanks = %d, expected 5", v.LeadingBlanks)
	}
	if v.TotalHours != 8 || v.VacationDays != 1 || v.LeaveDays != 1 {
		t.Errorf("unexpected totals: %+v", v)
	}
	if v.Days[0].Label != "8h" || !v.Days[0].Weekend || v.Days[0].Weekday != "Sat" {
		t.Errorf("unexpected first day: %+v", v.Days[0])
	}
	if !v.Days[4].Today {
		t.Error("2025-03-05 should be today")
	}
	if v.Days[3].Entry != nil {
		t.Error("empty day should have no entry")
	}
}

func TestCalendar_ViewHolidays(t *testing.T) {
	svc, _ := newTestServices(t)
	v := svc.Calendar.View(timeutil.Month{Year: 2025, Month: time.April})
	if v.Days[20].Holiday == "" { // 2025-04-21, Easter Monday
		t.Error("Easter Monday 2025 should be labelled")
	}
	if v.Days[24].Holiday == "" { // 2025-04-25
		t.Error("25 April should be labelled")
	}
}

func TestCalendar_SetRejectsAboveMax(t *testing.T) {
	svc, _ := newTestServices(t)
	err := svc.Calendar.Set("2025-03-01", ptrEntry(entry.Hours(30)))
	if !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}
}

func TestCalendar_SetInput(t *testing.T) {
	svc, _ := newTestServices(t)
	cal := svc.Calendar

	tests := []struct {
		input    string
		expected *entry.Entry
	}{
		{"6", ptrEntry(entry.Hours(6))},
		{"ferie", ptrEntry(entry.Vacation())},
		{"permesso", ptrEntry(entry.Leave())},
		{"none", nil},
	}
	for _, tt := range tests {
		got, err := cal.SetInput("2025-03-01", tt.input)
		if err != nil {
			t.Fatalf("SetInput(%q) returned unexpected error: %v", tt.input, err)
		}
		if (got == nil) != (tt.expected == nil) || (got != nil && *got != *tt.expected) {
			t.Errorf("SetInput(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}

	if _, err := cal.SetInput("2025-03-01", "lots"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}
	if _, err := cal.SetInput("03/01", "8"); !errors.Is(err, storage.ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}

func TestCalendar_PressAndPrompt(t *testing.T) {
	svc, _ := newTestServices(t)
	cal := svc.Calendar

	var changes int
	cal.OnChange(func(string) { changes++ })

	if err := cal.Press("2025-03-01", false); err != nil {
		t.Fatalf("Press() returned unexpected error: %v", err)
	}
	if got, _ := cal.Get("2025-03-01"); got != entry.Hours(8) {
		t.Errorf("expected Hours(8), got %+v", got)
	}

	_ = cal.Press("2025-03-01", false)
	p, open := cal.Prompt()
	if !open || p.Value != 8 {
		t.Fatalf("expected prompt seeded 8, got %+v %v", p, open)
	}
	_ = cal.ApplyPrompt(PromptDecrement, 0)
	_ = cal.ApplyPrompt(PromptDecrement, 0)
	if err := cal.ApplyPrompt(PromptConfirm, 0); err != nil {
		t.Fatalf("confirm returned unexpected error: %v", err)
	}
	if got, _ := cal.Get("2025-03-01"); got != entry.Hours(6) {
		t.Errorf("expected Hours(6), got %+v", got)
	}

	if err := cal.ApplyPrompt(PromptCancel, 0); !errors.Is(err, gesture.ErrNoPrompt) {
		t.Errorf("expected ErrNoPrompt, got %v", err)
	}
	if err := cal.ApplyPrompt("explode", 0); err == nil {
		t.Error("expected error for unknown action")
	}

	_ = cal.Press("2025-03-01", true)
	if got, _ := cal.Get("2025-03-01"); got != entry.Vacation() {
		t.Errorf("long press should give Vacation, got %+v", got)
	}
	if changes != 3 {
		t.Errorf("expected 3 change notifications, got %d", changes)
	}

	if err := cal.Press("tomorrow", false); !errors.Is(err, storage.ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}

func TestCalendar_TimedGesture(t *testing.T) {
	svc, _ := newTestServices(t)
	cal := svc.Calendar

	gen := cal.Down("2025-03-01")
	if err := cal.Elapsed(gen); err != nil {
		t.Fatalf("Elapsed() returned unexpected error: %v", err)
	}
	_ = cal.Up()
	if got, _ := cal.Get("2025-03-01"); got != entry.Vacation() {
		t.Errorf("held press should give Vacation, got %+v", got)
	}

	gen = cal.Down("2025-03-02")
	cal.Leave()
	_ = cal.Elapsed(gen)
	if _, ok := cal.Get("2025-03-02"); ok {
		t.Error("left press must not change anything")
	}
}

func TestCalendar_MonthNavigation(t *testing.T) {
	svc, _ := newTestServices(t)
	cal := svc.Calendar
	cal.SetMonth(timeutil.Month{Year: 2025, Month: time.January})

	if m := cal.PrevMonth(); m != (timeutil.Month{Year: 2024, Month: time.December}) {
		t.Errorf("PrevMonth() = %v", m)
	}
	cal.NextMonth()
	if m := cal.NextMonth(); m != (timeutil.Month{Year: 2025, Month: time.February}) {
		t.Errorf("NextMonth() = %v", m)
	}

	cal.now = func() time.Time { return time.Date(2026, time.October, 19, 0, 0, 0, 0, time.Local) }
	if m := cal.Today(); m != (timeutil.Month{Year: 2026, Month: time.October}) {
		t.Errorf("Today() = %v", m)
	}
}

func TestCalendar_BackupsAndRestore(t *testing.T) {
	svc, slot := newTestServices(t)
	cal := svc.Calendar

	_ = cal.Set("2025-03-01", ptrEntry(entry.Hours(8)))
	if err := storage.CreateBackup(slot, storage.DefaultKey); err != nil {
		t.Fatal(err)
	}
	_ = cal.Set("2025-03-01", nil)

	backups, err := cal.Backups()
	if err != nil || len(backups) != 1 {
		t.Fatalf("Backups() = %v, %v", backups, err)
	}
	if err := cal.Restore(1); err != nil {
		t.Fatalf("Restore() returned unexpected error: %v", err)
	}
	if got, ok := cal.Get("2025-03-01"); !ok || got != entry.Hours(8) {
		t.Errorf("after restore Get() = %+v %v", got, ok)
	}
	if cal.Health().Loaded != 1 {
		t.Errorf("unexpected health after restore: %+v", cal.Health())
	}
}

func ptrEntry(e entry.Entry) *entry.Entry { return &e }
