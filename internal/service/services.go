// Package service is the application layer shared by the CLI, the TUI and the
// HTTP server. It owns the entry store and the gesture controller and keeps
// configuration access in one place.
package service

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/xolan/hourcal/internal/config"
	"github.com/xolan/hourcal/internal/storage"
)

// DatabaseFile is the SQLite database name used by the sqlite backend
const DatabaseFile = "hourcal.db"

// Services holds all service instances used by the application
type Services struct {
	Calendar *CalendarService
	Config   *ConfigService

	closer io.Closer
}

// Close releases the storage backend.
func (s *Services) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// NewServices loads the config at configPath and opens the configured storage backend.
func NewServices(configPath string, log logrus.FieldLogger) (*Services, error) {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return nil, err
	}
	return NewServicesWithConfig(configPath, cfg, log)
}

// NewServicesWithConfig opens the storage backend named by cfg.
func NewServicesWithConfig(configPath string, cfg config.Config, log logrus.FieldLogger) (*Services, error) {
	slot, closer, err := OpenSlot(cfg)
	if err != nil {
		return nil, err
	}
	svc := NewServicesWithSlot(configPath, cfg, slot, log)
	svc.closer = closer
	return svc, nil
}

// NewServicesWithSlot creates services over an already opened slot (useful for testing)
func NewServicesWithSlot(configPath string, cfg config.Config, slot storage.Slot, log logrus.FieldLogger) *Services {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	store := storage.Open(slot, cfg.Storage.Key, storage.WithLogger(log))
	return &Services{
		Calendar: NewCalendarService(store, cfg, log),
		Config:   NewConfigService(configPath, cfg),
	}
}

// OpenSlot opens the slot of the configured backend. The closer is nil for the file backend.
func OpenSlot(cfg config.Config) (storage.Slot, io.Closer, error) {
	dir, err := cfg.DataDir()
	if err != nil {
		return nil, nil, err
	}

	switch cfg.Storage.Backend {
	case "", "file":
		slot, err := storage.NewFileSlot(dir)
		if err != nil {
			return nil, nil, err
		}
		return slot, nil, nil
	case "sqlite":
		slot, err := storage.OpenSQLiteSlot(filepath.Join(dir, DatabaseFile))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		return slot, slot, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}
