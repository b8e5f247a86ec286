package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xolan/hourcal/internal/entry"
	"github.com/xolan/hourcal/internal/timeutil"
)

// ErrInvalidDate is returned when a date key is not a canonical YYYY-MM-DD date.
var ErrInvalidDate = errors.New("invalid date key")

// Health summarizes what happened when the stored map was loaded.
type Health struct {
	Loaded  int  // entries kept
	Legacy  int  // bare-number payloads migrated to the structured form
	Dropped int  // payloads or keys that could not be understood
	Corrupt bool // the stored value was not a JSON object at all
}

// NeedsRewrite reports whether the stored form differs from what the store will write.
func (h Health) NeedsRewrite() bool {
	return h.Legacy > 0 || h.Dropped > 0 || h.Corrupt
}

// Store is the in-memory map of date key to entry, persisted as a whole under one slot key.
// Every mutation rewrites the slot before returning. Store is not safe for concurrent use.
type Store struct {
	slot    Slot
	key     string
	log     logrus.FieldLogger
	entries map[string]entry.Entry
	health  Health
	backup  bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load and write failures.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) { s.log = l }
}

// Open loads the store from slot under key. It never fails: unreadable or
// unparseable state yields an empty store and a log line.
func Open(slot Slot, key string, opts ...Option) *Store {
	if key == "" {
		key = DefaultKey
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Store{slot: slot, key: key, log: discard}
	for _, opt := range opts {
		opt(s)
	}
	s.load()
	return s
}

func (s *Store) load() {
	s.entries = make(map[string]entry.Entry)
	s.health = Health{}
	s.backup = false

	data, err := s.slot.Read(s.key)
	if errors.Is(err, ErrNotFound) {
		return
	}
	if err != nil {
		s.log.WithError(err).WithField("key", s.key).Warn("could not read entry store, starting empty")
		return
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.log.WithError(err).WithField("key", s.key).Warn("entry store is not a JSON object, starting empty")
		s.health.Corrupt = true
		s.backup = true
		return
	}

	for date, payload := range raw {
		if _, err := timeutil.ParseKey(date); err != nil {
			s.health.Dropped++
			s.log.WithField("date", date).Warn("dropping entry with invalid date key")
			continue
		}
		e, ok := entry.Normalize(payload)
		if !ok {
			s.health.Dropped++
			s.log.WithField("date", date).Warn("dropping unrecognized entry payload")
			continue
		}
		if isLegacy(payload) {
			s.health.Legacy++
		}
		if e.IsZero() {
			continue
		}
		s.entries[date] = e
	}
	s.health.Loaded = len(s.entries)
	s.backup = s.health.NeedsRewrite()

	if s.backup {
		s.log.WithFields(logrus.Fields{
			"loaded":  s.health.Loaded,
			"legacy":  s.health.Legacy,
			"dropped": s.health.Dropped,
		}).Info("entry store will be rewritten in the structured form on next change")
	}
}

func isLegacy(payload json.RawMessage) bool {
	for _, c := range payload {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		case '{':
			return false
		}
		return true
	}
	return false
}

// Reload discards the in-memory map and loads the slot again.
func (s *Store) Reload() {
	s.load()
}

// Key returns the slot key the store persists under.
func (s *Store) Key() string { return s.key }

// Slot returns the slot backing the store.
func (s *Store) Slot() Slot { return s.slot }

// Health returns the load summary.
func (s *Store) Health() Health { return s.health }

// Get returns the entry for date. Hours(0) is never stored, so it reads as absent.
func (s *Store) Get(date string) (entry.Entry, bool) {
	e, ok := s.entries[date]
	return e, ok
}

// Set stores e for date, or removes the entry when e is nil or Hours(0), then
// persists the whole map. If the write fails the in-memory change is kept and
// the error is returned; the next successful write flushes it.
func (s *Store) Set(date string, e *entry.Entry) error {
	if _, err := timeutil.ParseKey(date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	if e == nil || e.IsZero() {
		delete(s.entries, date)
	} else {
		s.entries[date] = *e
	}

	if err := s.persist(); err != nil {
		s.log.WithError(err).WithField("date", date).Error("failed to persist entry store")
		return err
	}
	return nil
}

func (s *Store) persist() error {
	if s.backup {
		if err := CreateBackup(s.slot, s.key); err != nil {
			s.log.WithError(err).Warn("failed to back up entry store before rewrite")
		} else {
			s.backup = false
		}
	}

	data, err := json.Marshal(s.entries)
	if err != nil {
		return err
	}
	return s.slot.Write(s.key, data)
}

// Restore replaces the stored map with backup n and reloads it.
func (s *Store) Restore(n int) error {
	if err := RestoreBackup(s.slot, s.key, n); err != nil {
		return err
	}
	s.load()
	return nil
}

// TotalHoursForMonth sums the hours entries dated in the given month.
// Vacation and leave count zero.
func (s *Store) TotalHoursForMonth(year int, month time.Month) int {
	m := timeutil.Month{Year: year, Month: month}
	total := 0
	for date, e := range s.entries {
		if e.IsHours() && m.Contains(date) {
			total += e.Value
		}
	}
	return total
}

// Snapshot returns a copy of the map for renderers and exporters.
func (s *Store) Snapshot() map[string]entry.Entry {
	out := make(map[string]entry.Entry, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

// Dates returns the stored date keys in ascending order.
func (s *Store) Dates() []string {
	dates := make([]string, 0, len(s.entries))
	for k := range s.entries {
		dates = append(dates, k)
	}
	sort.Strings(dates)
	return dates
}

// Len returns the number of stored entries.
func (s *Store) Len() int { return len(s.entries) }
