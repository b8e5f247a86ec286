package storage

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/xolan/hourcal/internal/entry"
)

func hoursEntry(v int) entry.Entry { return entry.Hours(v) }

func ptr(e entry.Entry) *entry.Entry { return &e }

func TestStore_SetGetHours(t *testing.T) {
	for v := 1; v <= 24; v++ {
		s := Open(NewMemorySlot(), DefaultKey)
		if err := s.Set("2025-03-01", ptr(entry.Hours(v))); err != nil {
			t.Fatalf("Set(Hours(%d)) returned unexpected error: %v", v, err)
		}
		got, ok := s.Get("2025-03-01")
		if !ok || got != entry.Hours(v) {
			t.Errorf("Get() = %+v, %v; expected Hours(%d)", got, ok, v)
		}

		if err := s.Set("2025-03-01", ptr(entry.Hours(0))); err != nil {
			t.Fatalf("Set(Hours(0)) returned unexpected error: %v", err)
		}
		if _, ok := s.Get("2025-03-01"); ok {
			t.Errorf("Hours(0) should read as absent (v=%d)", v)
		}
	}
}

func TestStore_SetNilDeletes(t *testing.T) {
	slot := NewMemorySlot()
	s := Open(slot, DefaultKey)
	_ = s.Set("2025-03-01", ptr(entry.Vacation()))
	if err := s.Set("2025-03-01", nil); err != nil {
		t.Fatalf("Set(nil) returned unexpected error: %v", err)
	}
	if _, ok := s.Get("2025-03-01"); ok {
		t.Error("entry should be removed")
	}

	data, _ := slot.Read(DefaultKey)
	if string(data) != "{}" {
		t.Errorf("persisted value = %s, expected {}", data)
	}
}

func TestStore_PersistsStructuredForm(t *testing.T) {
	slot := NewMemorySlot()
	s := Open(slot, DefaultKey)
	_ = s.Set("2025-03-02", ptr(entry.Leave()))
	_ = s.Set("2025-03-01", ptr(entry.Hours(8)))

	data, err := slot.Read(DefaultKey)
	if err != nil {
		t.Fatalf("nothing persisted: %v", err)
	}
	expected := `{"2025-03-01":{"kind":"hours","value":8},"2025-03-02":{"kind":"permesso"}}`
	if string(data) != expected {
		t.Errorf("persisted = %s\nexpected  %s", data, expected)
	}
}

func TestStore_InvalidDate(t *testing.T) {
	s := Open(NewMemorySlot(), DefaultKey)
	for _, date := range []string{"", "2025-3-1", "2025-02-30", "01/03/2025", "today"} {
		err := s.Set(date, ptr(entry.Hours(8)))
		if !errors.Is(err, ErrInvalidDate) {
			t.Errorf("Set(%q) error = %v, expected ErrInvalidDate", date, err)
		}
	}
	if s.Len() != 0 {
		t.Error("invalid dates must not be stored")
	}
}

func TestStore_RoundTripAndLegacy(t *testing.T) {
	slot := NewMemorySlot()
	stored := `{
		"2025-03-01": 8,
		"2025-03-02": {"kind":"ferie"},
		"2025-03-03": {"kind":"permesso"},
		"2025-03-04": {"kind":"hours","value":"6"},
		"2025-03-05": 0,
		"2025-03-06": {"kind":"sick"},
		"bogus": 4
	}`
	_ = slot.Write(DefaultKey, []byte(stored))

	s := Open(slot, DefaultKey)
	expected := map[string]entry.Entry{
		"2025-03-01": entry.Hours(8),
		"2025-03-02": entry.Vacation(),
		"2025-03-03": entry.Leave(),
		"2025-03-04": entry.Hours(6),
	}
	if got := s.Snapshot(); !reflect.DeepEqual(got, expected) {
		t.Fatalf("Snapshot() = %+v\nexpected %+v", got, expected)
	}

	h := s.Health()
	if h.Loaded != 4 || h.Legacy != 2 || h.Dropped != 2 || h.Corrupt {
		t.Errorf("unexpected health: %+v", h)
	}

	// The first write keeps the original payload as a backup and rewrites the rest
	_ = s.Set("2025-03-10", ptr(entry.Hours(4)))
	backup, err := slot.Read(BackupKey(DefaultKey, 1))
	if err != nil || string(backup) != stored {
		t.Errorf("expected original payload in backup, got %q (err=%v)", backup, err)
	}

	reloaded := Open(slot, DefaultKey)
	expected["2025-03-10"] = entry.Hours(4)
	if got := reloaded.Snapshot(); !reflect.DeepEqual(got, expected) {
		t.Errorf("after reload = %+v\nexpected %+v", got, expected)
	}
	if reloaded.Health().NeedsRewrite() {
		t.Errorf("rewritten store should be clean, got %+v", reloaded.Health())
	}

	var raw map[string]json.RawMessage
	data, _ := slot.Read(DefaultKey)
	_ = json.Unmarshal(data, &raw)
	if string(raw["2025-03-01"]) != `{"kind":"hours","value":8}` {
		t.Errorf("legacy entry not rewritten: %s", raw["2025-03-01"])
	}
}

func TestStore_CorruptStartsEmpty(t *testing.T) {
	slot := NewMemorySlot()
	_ = slot.Write(DefaultKey, []byte("not json"))

	s := Open(slot, DefaultKey)
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d entries", s.Len())
	}
	if !s.Health().Corrupt {
		t.Error("expected Corrupt health")
	}

	_ = s.Set("2025-03-01", ptr(entry.Hours(8)))
	backup, _ := slot.Read(BackupKey(DefaultKey, 1))
	if string(backup) != "not json" {
		t.Errorf("corrupt payload should be backed up, got %q", backup)
	}
}

func TestStore_WriteFailureKeepsMutation(t *testing.T) {
	slot := NewMemorySlot()
	s := Open(slot, DefaultKey)
	slot.FailWrites = errors.New("quota exceeded")

	if err := s.Set("2025-03-01", ptr(entry.Hours(8))); err == nil {
		t.Fatal("expected write error")
	}
	if got, ok := s.Get("2025-03-01"); !ok || got != entry.Hours(8) {
		t.Error("in-memory mutation should survive a failed write")
	}

	slot.FailWrites = nil
	if err := s.Set("2025-03-02", ptr(entry.Vacation())); err != nil {
		t.Fatalf("Set() returned unexpected error: %v", err)
	}
	if got := Open(slot, DefaultKey).Len(); got != 2 {
		t.Errorf("next successful write should flush both entries, got %d", got)
	}
}

func TestStore_TotalHoursForMonth(t *testing.T) {
	slot := NewMemorySlot()
	_ = slot.Write(DefaultKey, []byte(`{"2025-03-01":{"kind":"hours","value":8},"2025-03-02":{"kind":"ferie"},"2025-04-01":{"kind":"hours","value":4}}`))
	s := Open(slot, DefaultKey)

	tests := []struct {
		year     int
		month    time.Month
		expected int
	}{
		{2025, time.March, 8},
		{2025, time.April, 4},
		{2025, time.May, 0},
		{2024, time.March, 0},
	}
	for _, tt := range tests {
		if got := s.TotalHoursForMonth(tt.year, tt.month); got != tt.expected {
			t.Errorf("TotalHoursForMonth(%d, %s) = %d, expected %d", tt.year, tt.month, got, tt.expected)
		}
	}
}

func TestStore_DatesSorted(t *testing.T) {
	s := Open(NewMemorySlot(), DefaultKey)
	for _, d := range []string{"2025-03-10", "2024-12-31", "2025-03-02"} {
		_ = s.Set(d, ptr(entry.Leave()))
	}
	expected := []string{"2024-12-31", "2025-03-02", "2025-03-10"}
	if got := s.Dates(); !reflect.DeepEqual(got, expected) {
		t.Errorf("Dates() = %v, expected %v", got, expected)
	}
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	s := Open(NewMemorySlot(), DefaultKey)
	_ = s.Set("2025-03-01", ptr(entry.Hours(8)))
	snap := s.Snapshot()
	delete(snap, "2025-03-01")
	if _, ok := s.Get("2025-03-01"); !ok {
		t.Error("mutating a snapshot must not affect the store")
	}
}

func TestStore_Restore(t *testing.T) {
	slot := NewMemorySlot()
	s := Open(slot, DefaultKey)
	_ = s.Set("2025-03-01", ptr(entry.Hours(8)))
	if err := CreateBackup(slot, DefaultKey); err != nil {
		t.Fatalf("CreateBackup() failed: %v", err)
	}
	_ = s.Set("2025-03-01", nil)

	if err := s.Restore(1); err != nil {
		t.Fatalf("Restore() returned unexpected error: %v", err)
	}
	if got, ok := s.Get("2025-03-01"); !ok || got != entry.Hours(8) {
		t.Errorf("after restore Get() = %+v, %v", got, ok)
	}
}

func TestStore_FileSlotReload(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "hourcal")
	slot, err := NewFileSlot(dir)
	if err != nil {
		t.Fatalf("NewFileSlot() failed: %v", err)
	}
	s := Open(slot, "")
	_ = s.Set("2025-03-01", ptr(entry.Hours(7)))

	if s.Key() != DefaultKey {
		t.Errorf("Key() = %q, expected default", s.Key())
	}
	got, ok := Open(slot, DefaultKey).Get("2025-03-01")
	if !ok || got != entry.Hours(7) {
		t.Errorf("reloaded Get() = %+v, %v", got, ok)
	}
}
