package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/xolan/hourcal/internal/config"
)

// ConfigService holds the effective settings and edits the config file.
// The effective settings may carry HOURCAL_* overrides; edits are applied to
// what the file holds, so overrides are never written back.
type ConfigService struct {
	mu   sync.Mutex
	path string
	cfg  config.Config
}

func NewConfigService(path string, cfg config.Config) *ConfigService {
	return &ConfigService{path: path, cfg: cfg}
}

// Get returns the effective settings.
func (s *ConfigService) Get() config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func (s *ConfigService) Path() string { return s.path }

// Exists reports whether the config file exists.
func (s *ConfigService) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// SetTheme records the TUI theme in the config file.
func (s *ConfigService) SetTheme(name string) error {
	return s.edit(func(c *config.Config) { c.Theme = name })
}

// edit applies fn to the file contents (or the defaults when there is no
// file), validates and saves the result, then applies fn to the effective settings.
func (s *ConfigService) edit(fn func(c *config.Config)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	onDisk, err := config.LoadOrDefault(s.path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	fn(&onDisk)
	onDisk.Normalize()
	if err := onDisk.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := config.Save(s.path, onDisk); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fn(&s.cfg)
	return nil
}

// Init writes the commented sample config. An existing file is never replaced.
func (s *ConfigService) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("config file already exists at %s", s.path)
	}
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if _, err := f.WriteString(config.GenerateSampleConfig()); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return f.Close()
}
