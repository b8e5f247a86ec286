package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xolan/hourcal/internal/osutil"
)

// Helper to create a temporary config file
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), ConfigFile)
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}
	return tmpFile
}

type mockPathProvider struct {
	userConfigDirFn func() (string, error)
	mkdirAllFn      func(string, os.FileMode) error
}

func (m *mockPathProvider) UserConfigDir() (string, error) {
	if m.userConfigDirFn != nil {
		return m.userConfigDirFn()
	}
	return "", nil
}

func (m *mockPathProvider) MkdirAll(path string, perm os.FileMode) error {
	if m.mkdirAllFn != nil {
		return m.mkdirAllFn(path, perm)
	}
	return nil
}

func (m *mockPathProvider) Expand(path string) (string, error) { return path, nil }

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Calendar.DefaultHours != 8 || cfg.Calendar.MaxHours != 24 || cfg.Calendar.LongPressMS != 550 {
		t.Errorf("unexpected calendar defaults: %+v", cfg.Calendar)
	}
	if cfg.Storage.Backend != "file" || cfg.Storage.Key != "villani_hours_v2" {
		t.Errorf("unexpected storage defaults: %+v", cfg.Storage)
	}
	if !cfg.Offline.Enabled || cfg.Offline.Version != "hourcal-v50" || cfg.Offline.AutoActivate {
		t.Errorf("unexpected offline defaults: %+v", cfg.Offline)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig() should be valid, got %v", err)
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, cfg Config)
	}{
		{
			name: "calendar section",
			content: `[calendar]
default_hours = 7
long_press_ms = 600
week_start_day = "Sunday"`,
			check: func(t *testing.T, cfg Config) {
				if cfg.Calendar.DefaultHours != 7 {
					t.Errorf("DefaultHours = %d", cfg.Calendar.DefaultHours)
				}
				if cfg.LongPress() != 600*time.Millisecond {
					t.Errorf("LongPress() = %v", cfg.LongPress())
				}
				if cfg.WeekStart() != time.Sunday {
					t.Errorf("WeekStart() = %v", cfg.WeekStart())
				}
				if cfg.Calendar.MaxHours != 24 {
					t.Errorf("unset MaxHours should keep default, got %d", cfg.Calendar.MaxHours)
				}
			},
		},
		{
			name: "storage and server",
			content: `[storage]
backend = "SQLITE"
dir = "/tmp/hourcal"

[server]
listen = ":9000"
origin = "http://localhost:8080"`,
			check: func(t *testing.T, cfg Config) {
				if cfg.Storage.Backend != "sqlite" || cfg.Storage.Dir != "/tmp/hourcal" {
					t.Errorf("unexpected storage: %+v", cfg.Storage)
				}
				if cfg.Server.Listen != ":9000" || cfg.Server.Origin != "http://localhost:8080" {
					t.Errorf("unexpected server: %+v", cfg.Server)
				}
			},
		},
		{
			name: "offline manifest",
			content: `[offline]
version = "hourcal-v51"
auto_activate = true
assets = ["./", "./index.html"]`,
			check: func(t *testing.T, cfg Config) {
				m := cfg.Manifest()
				if m.Version != "hourcal-v51" || len(m.Assets) != 2 || m.Shell != "./index.html" {
					t.Errorf("unexpected manifest: %+v", m)
				}
				if !cfg.Offline.AutoActivate || !cfg.Offline.Enabled {
					t.Errorf("unexpected offline: %+v", cfg.Offline)
				}
			},
		},
		{
			name:    "theme only",
			content: `theme = "dracula"`,
			check: func(t *testing.T, cfg Config) {
				if cfg.Theme != "dracula" {
					t.Errorf("Theme = %q", cfg.Theme)
				}
			},
		},
		{
			name:    "empty file",
			content: ``,
			check: func(t *testing.T, cfg Config) {
				if cfg.Calendar.DefaultHours != 8 {
					t.Errorf("empty file should give defaults, got %+v", cfg.Calendar)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(createTempConfigFile(t, tt.content))
			if err != nil {
				t.Fatalf("Load() returned unexpected error: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "does_not_exist.toml")); err == nil {
		t.Error("Load() should return error for non-existent file")
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed TOML", `theme = "dracula`},
		{"invalid syntax", `this is not valid TOML at all`},
		{"unclosed brackets", "[calendar\ndefault_hours = 8"},
		{"wrong type", "[calendar]\ndefault_hours = \"eight\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(createTempConfigFile(t, tt.content))
			if err == nil {
				t.Fatal("Load() should return error for invalid TOML")
			}
			if !strings.Contains(err.Error(), "failed to parse config file") {
				t.Errorf("Error message should mention parsing failure, got: %v", err)
			}
		})
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name           string
		edit           func(c *Config)
		errorSubstring string
	}{
		{"week start", func(c *Config) { c.Calendar.WeekStartDay = "tuesday" }, "invalid week_start_day"},
		{"max hours", func(c *Config) { c.Calendar.MaxHours = 25 }, "invalid max_hours"},
		{"default above max", func(c *Config) { c.Calendar.MaxHours = 6 }, "invalid default_hours"},
		{"default zero", func(c *Config) { c.Calendar.DefaultHours = 0 }, "invalid default_hours"},
		{"long press", func(c *Config) { c.Calendar.LongPressMS = 10 }, "invalid long_press_ms"},
		{"long press below tap range", func(c *Config) { c.Calendar.LongPressMS = 499 }, "between 500 and 5000"},
		{"backend", func(c *Config) { c.Storage.Backend = "redis" }, "invalid storage backend"},
		{"key", func(c *Config) { c.Storage.Key = "a/b" }, "invalid storage key"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "invalid log level"},
		{"offline version", func(c *Config) { c.Offline.Version = "" }, "invalid offline settings"},
		{"install retry", func(c *Config) { c.Offline.InstallRetry = "sometimes" }, "invalid install_retry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() should return error")
			}
			if !strings.Contains(err.Error(), tt.errorSubstring) {
				t.Errorf("error %q should contain %q", err, tt.errorSubstring)
			}
		})
	}
}

func TestValidate_OfflineDisabledSkipsManifest(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Offline.Enabled = false
	cfg.Offline.Version = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled offline settings should not be validated, got %v", err)
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() returned unexpected error: %v", err)
	}
	if cfg.Calendar.DefaultHours != 8 {
		t.Error("missing file should give defaults")
	}

	if _, err := LoadOrDefault(createTempConfigFile(t, "[calendar]\nweek_start_day = \"friday\"")); err == nil {
		t.Error("invalid existing file should return error")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ConfigFile)
	cfg := DefaultConfig()
	cfg.Calendar.DefaultHours = 6
	cfg.Storage.Backend = "sqlite"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() returned unexpected error: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if loaded.Calendar.DefaultHours != 6 || loaded.Storage.Backend != "sqlite" {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"HOURCAL_STORAGE_DIR":       "/data/hourcal",
		"HOURCAL_LISTEN":            ":9999",
		"HOURCAL_DEFAULT_HOURS":     "6",
		"HOURCAL_OFFLINE_ENABLED":   "false",
		"HOURCAL_LOG_LEVEL":         "DEBUG",
		"HOURCAL_STORAGE_BACKEND":   "sqlite",
		"HOURCAL_OFFLINE_CACHE_DIR": "/data/cache",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv() returned unexpected error: %v", err)
	}
	if cfg.Storage.Dir != "/data/hourcal" || cfg.Server.Listen != ":9999" || cfg.Calendar.DefaultHours != 6 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Offline.Enabled || cfg.Log.Level != "debug" || cfg.Storage.Backend != "sqlite" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if dir, _ := cfg.CacheDir(); dir != "/data/cache" {
		t.Errorf("CacheDir() = %q", dir)
	}
}

func TestApplyEnv_Invalid(t *testing.T) {
	tests := map[string]string{
		"HOURCAL_DEFAULT_HOURS":   "many",
		"HOURCAL_OFFLINE_ENABLED": "perhaps",
		"HOURCAL_STORAGE_BACKEND": "redis",
	}
	for k, v := range tests {
		cfg := DefaultConfig()
		err := cfg.ApplyEnv(func(name string) (string, bool) {
			if name == k {
				return v, true
			}
			return "", false
		})
		if err == nil {
			t.Errorf("%s=%s should fail", k, v)
		}
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	if err := LoadEnvFile(filepath.Join(dir, EnvFile)); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}

	path := filepath.Join(dir, EnvFile)
	if err := os.WriteFile(path, []byte("HOURCAL_TEST_ONLY_VALUE=from-dotenv\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("HOURCAL_TEST_ONLY_VALUE") })

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile() returned unexpected error: %v", err)
	}
	if got := os.Getenv("HOURCAL_TEST_ONLY_VALUE"); got != "from-dotenv" {
		t.Errorf("dotenv value not loaded, got %q", got)
	}
}

func TestLoadWithEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFile)
	_ = os.WriteFile(path, []byte("[calendar]\ndefault_hours = 7\n"), 0644)
	_ = os.WriteFile(filepath.Join(dir, EnvFile), []byte("HOURCAL_LONG_PRESS_MS=700\n"), 0644)
	t.Cleanup(func() { os.Unsetenv("HOURCAL_LONG_PRESS_MS") })

	cfg, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("LoadWithEnv() returned unexpected error: %v", err)
	}
	if cfg.Calendar.DefaultHours != 7 || cfg.Calendar.LongPressMS != 700 {
		t.Errorf("unexpected calendar: %+v", cfg.Calendar)
	}
}

func TestDataDir(t *testing.T) {
	defer osutil.ResetProvider()
	tmp := t.TempDir()
	osutil.SetProvider(&mockPathProvider{
		userConfigDirFn: func() (string, error) { return tmp, nil },
		mkdirAllFn:      os.MkdirAll,
	})

	cfg := DefaultConfig()
	dir, err := cfg.DataDir()
	if err != nil {
		t.Fatalf("DataDir() returned unexpected error: %v", err)
	}
	if dir != filepath.Join(tmp, osutil.AppName) {
		t.Errorf("DataDir() = %q", dir)
	}
	cache, _ := cfg.CacheDir()
	if cache != filepath.Join(tmp, osutil.AppName, "offline-cache") {
		t.Errorf("CacheDir() = %q", cache)
	}
}

func TestGetConfigPath(t *testing.T) {
	defer osutil.ResetProvider()
	tmp := t.TempDir()
	osutil.SetProvider(&mockPathProvider{
		userConfigDirFn: func() (string, error) { return tmp, nil },
		mkdirAllFn:      os.MkdirAll,
	})

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() returned unexpected error: %v", err)
	}
	if filepath.Base(path) != ConfigFile {
		t.Errorf("GetConfigPath() = %q", path)
	}
}

func TestGetConfigPath_UserConfigDirError(t *testing.T) {
	defer osutil.ResetProvider()
	osutil.SetProvider(&mockPathProvider{
		userConfigDirFn: func() (string, error) { return "", os.ErrPermission },
	})

	if _, err := GetConfigPath(); !errors.Is(err, os.ErrPermission) {
		t.Errorf("GetConfigPath() should return the UserConfigDir error, got %v", err)
	}
}

func TestGenerateSampleConfig(t *testing.T) {
	content := GenerateSampleConfig()

	for _, expected := range []string{
		"# hourcal configuration file",
		"[calendar]", "[storage]", "[server]", "[offline]", "[log]",
		"# default_hours = 8",
		"# long_press_ms = 550",
		"# week_start_day",
		"# install_retry",
		"HOURCAL_STORAGE_DIR",
	} {
		if !strings.Contains(content, expected) {
			t.Errorf("GenerateSampleConfig() missing expected content: %q", expected)
		}
	}

	// The sample must itself be loadable
	cfg, err := Load(createTempConfigFile(t, content))
	if err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if cfg.Calendar.DefaultHours != 8 {
		t.Error("sample config should load to defaults")
	}
}
