package service

import (
	"path/filepath"
	"testing"

	"github.com/xolan/hourcal/internal/config"
	"github.com/xolan/hourcal/internal/entry"
	"github.com/xolan/hourcal/internal/storage"
)

func TestNewServicesWithConfig_Backends(t *testing.T) {
	for _, backend := range []string{"file", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()
			cfg := config.DefaultConfig()
			cfg.Storage.Backend = backend
			cfg.Storage.Dir = dir

			svc, err := NewServicesWithConfig(filepath.Join(dir, "config.toml"), cfg, nil)
			if err != nil {
				t.Fatalf("NewServicesWithConfig() returned unexpected error: %v", err)
			}
			if svc.Calendar == nil || svc.Config == nil {
				t.Fatal("expected non-nil services")
			}
			e := entry.Hours(8)
			if err := svc.Calendar.Set("2025-03-01", &e); err != nil {
				t.Fatalf("Set() returned unexpected error: %v", err)
			}
			if err := svc.Close(); err != nil {
				t.Fatalf("Close() returned unexpected error: %v", err)
			}

			reopened, err := NewServicesWithConfig(filepath.Join(dir, "config.toml"), cfg, nil)
			if err != nil {
				t.Fatalf("reopen failed: %v", err)
			}
			defer reopened.Close()
			if got, ok := reopened.Calendar.Get("2025-03-01"); !ok || got != e {
				t.Errorf("entry lost across reopen: %+v %v", got, ok)
			}
		})
	}
}

func TestOpenSlot_UnknownBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.Backend = "redis"
	cfg.Storage.Dir = t.TempDir()
	if _, _, err := OpenSlot(cfg); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestNewServices_MissingConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOURCAL_STORAGE_DIR", dir)

	svc, err := NewServices(filepath.Join(dir, "config.toml"), nil)
	if err != nil {
		t.Fatalf("NewServices() returned unexpected error: %v", err)
	}
	defer svc.Close()

	if svc.Config.Get().Storage.Dir != dir {
		t.Errorf("environment override not applied: %q", svc.Config.Get().Storage.Dir)
	}
}

func newTestServices(t *testing.T) (*Services, *storage.MemorySlot) {
	t.Helper()
	slot := storage.NewMemorySlot()
	return NewServicesWithSlot("", config.DefaultConfig(), slot, nil), slot
}
