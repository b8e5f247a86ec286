package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/xolan/hourcal/internal/offline"
	"github.com/xolan/hourcal/internal/osutil"
)

const (
	// ConfigFile is the name of the TOML configuration file
	ConfigFile = "config.toml"
	// EnvFile is the optional dotenv file read from the config directory
	EnvFile = ".env"
	// EnvPrefix prefixes every environment override
	EnvPrefix = "HOURCAL_"
	// MinLongPressMS is the shortest accepted long_press_ms
	MinLongPressMS = 500
)

// Config represents the application configuration
type Config struct {
	// Theme is the TUI color theme ID
	Theme    string         `toml:"theme"`
	Calendar CalendarConfig `toml:"calendar"`
	Storage  StorageConfig  `toml:"storage"`
	Server   ServerConfig   `toml:"server"`
	Offline  OfflineConfig  `toml:"offline"`
	Log      LogConfig      `toml:"log"`
}

// CalendarConfig controls gestures and the month grid.
type CalendarConfig struct {
	// DefaultHours is recorded by a short press on an empty day
	DefaultHours int `toml:"default_hours"`
	// MaxHours caps the prompt value
	MaxHours int `toml:"max_hours"`
	// LongPressMS is the hold time in milliseconds before a press counts as long
	LongPressMS int `toml:"long_press_ms"`
	// WeekStartDay defines which day starts the week (monday or sunday)
	WeekStartDay string `toml:"week_start_day"`
}

// StorageConfig selects where entries are kept.
type StorageConfig struct {
	// Backend is "file" (one JSON file per slot key) or "sqlite"
	Backend string `toml:"backend"`
	// Dir holds the slot files or the database; empty means the app config directory
	Dir string `toml:"dir"`
	// Key is the slot key of the entry map
	Key string `toml:"key"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Listen string `toml:"listen"`
	// Origin is a remote web origin to proxy; empty serves the bundled web app in-process
	Origin string `toml:"origin"`
	// Scope is the base path the app is served under
	Scope string `toml:"scope"`
}

// OfflineConfig controls the offline cache in front of the web app.
type OfflineConfig struct {
	Enabled      bool     `toml:"enabled"`
	Version      string   `toml:"version"`
	CacheDir     string   `toml:"cache_dir"`
	AutoActivate bool     `toml:"auto_activate"`
	InstallRetry string   `toml:"install_retry"`
	Assets       []string `toml:"assets"`
	Shell        string   `toml:"shell"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DefaultConfig returns a Config with the defaults used when no file exists.
func DefaultConfig() Config {
	return Config{
		Theme: "default",
		Calendar: CalendarConfig{
			DefaultHours: 8,
			MaxHours:     24,
			LongPressMS:  550,
			WeekStartDay: "monday",
		},
		Storage: StorageConfig{
			Backend: "file",
			Key:     "villani_hours_v2",
		},
		Server: ServerConfig{
			Listen: "127.0.0.1:8080",
			Scope:  "/",
		},
		Offline: OfflineConfig{
			Enabled:      true,
			Version:      offline.DefaultVersion,
			InstallRetry: offline.DefaultInstallRetry,
			Assets:       append([]string(nil), offline.DefaultAssets...),
			Shell:        offline.DefaultShell,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// GetConfigPath returns the path to the config file.
// Uses the per-user config directory and creates it if it doesn't exist.
func GetConfigPath() (string, error) {
	appDir, err := osutil.AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(appDir, ConfigFile), nil
}

// Load reads, normalizes and validates the config file at path.
// Fields missing from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if err := cfg.ExpandPaths(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadOrDefault loads path, falling back to DefaultConfig when the file does not exist.
func LoadOrDefault(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return DefaultConfig(), fmt.Errorf("failed to access config file: %w", err)
	}
	return Load(path)
}

// Save writes cfg to path as TOML.
func Save(path string, cfg Config) error {
	var buf bytes.Buffer
	buf.WriteString("# hourcal configuration file\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Normalize lowercases enumerated values and trims whitespace.
func (c *Config) Normalize() {
	c.Theme = strings.TrimSpace(c.Theme)
	c.Calendar.WeekStartDay = strings.ToLower(strings.TrimSpace(c.Calendar.WeekStartDay))
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	c.Storage.Key = strings.TrimSpace(c.Storage.Key)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Server.Scope == "" {
		c.Server.Scope = "/"
	}
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.Calendar.WeekStartDay != "monday" && c.Calendar.WeekStartDay != "sunday" {
		return fmt.Errorf("invalid week_start_day %q: must be \"monday\" or \"sunday\"", c.Calendar.WeekStartDay)
	}
	if c.Calendar.MaxHours < 1 || c.Calendar.MaxHours > 24 {
		return fmt.Errorf("invalid max_hours %d: must be between 1 and 24", c.Calendar.MaxHours)
	}
	if c.Calendar.DefaultHours < 1 || c.Calendar.DefaultHours > c.Calendar.MaxHours {
		return fmt.Errorf("invalid default_hours %d: must be between 1 and max_hours (%d)", c.Calendar.DefaultHours, c.Calendar.MaxHours)
	}
	if c.Calendar.LongPressMS < MinLongPressMS || c.Calendar.LongPressMS > 5000 {
		return fmt.Errorf("invalid long_press_ms %d: must be between %d and 5000", c.Calendar.LongPressMS, MinLongPressMS)
	}

	switch c.Storage.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("invalid storage backend %q: must be \"file\" or \"sqlite\"", c.Storage.Backend)
	}
	if c.Storage.Key == "" || strings.ContainsAny(c.Storage.Key, `/\`) {
		return fmt.Errorf("invalid storage key %q", c.Storage.Key)
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}

	if c.Offline.Enabled {
		m := offline.Manifest{Version: c.Offline.Version, Assets: c.Offline.Assets, Shell: c.Offline.Shell}
		if err := m.Validate(); err != nil {
			return fmt.Errorf("invalid offline settings: %w", err)
		}
		if err := offline.ValidateSchedule(c.Offline.InstallRetry); err != nil {
			return fmt.Errorf("invalid install_retry %q: %w", c.Offline.InstallRetry, err)
		}
	}
	return nil
}

// ExpandPaths expands ~ in every path setting.
func (c *Config) ExpandPaths() error {
	for _, p := range []*string{&c.Storage.Dir, &c.Offline.CacheDir, &c.Log.File} {
		expanded, err := osutil.ExpandPath(*p)
		if err != nil {
			return fmt.Errorf("failed to expand path %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// WeekStart returns the configured first day of the week.
func (c Config) WeekStart() time.Weekday {
	if c.Calendar.WeekStartDay == "sunday" {
		return time.Sunday
	}
	return time.Monday
}

// LongPress returns the long-press threshold.
func (c Config) LongPress() time.Duration {
	return time.Duration(c.Calendar.LongPressMS) * time.Millisecond
}

// DataDir returns the storage directory, defaulting to the app config directory.
func (c Config) DataDir() (string, error) {
	if c.Storage.Dir != "" {
		return c.Storage.Dir, nil
	}
	return osutil.AppDir()
}

// CacheDir returns the offline cache directory, defaulting to a folder in DataDir.
func (c Config) CacheDir() (string, error) {
	if c.Offline.CacheDir != "" {
		return c.Offline.CacheDir, nil
	}
	dir, err := c.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "offline-cache"), nil
}

// Manifest returns the offline cache manifest.
func (c Config) Manifest() offline.Manifest {
	return offline.Manifest{
		Version: c.Offline.Version,
		Assets:  append([]string(nil), c.Offline.Assets...),
		Shell:   c.Offline.Shell,
	}
}

// LoadEnvFile loads KEY=value pairs from the dotenv file into the process
// environment without overriding variables that are already set. A missing
// file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides settings from HOURCAL_* variables, e.g. HOURCAL_STORAGE_DIR.
// lookup is normally os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s%s %q: %w", EnvPrefix, name, v, err)
		}
		*dst = n
		return nil
	}
	flag := func(name string, dst *bool) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s%s %q: %w", EnvPrefix, name, v, err)
		}
		*dst = b
		return nil
	}

	str("THEME", &c.Theme)
	str("STORAGE_BACKEND", &c.Storage.Backend)
	str("STORAGE_DIR", &c.Storage.Dir)
	str("STORAGE_KEY", &c.Storage.Key)
	str("LISTEN", &c.Server.Listen)
	str("ORIGIN", &c.Server.Origin)
	str("OFFLINE_VERSION", &c.Offline.Version)
	str("OFFLINE_CACHE_DIR", &c.Offline.CacheDir)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FILE", &c.Log.File)
	if err := num("DEFAULT_HOURS", &c.Calendar.DefaultHours); err != nil {
		return err
	}
	if err := num("LONG_PRESS_MS", &c.Calendar.LongPressMS); err != nil {
		return err
	}
	if err := flag("OFFLINE_ENABLED", &c.Offline.Enabled); err != nil {
		return err
	}
	if err := flag("OFFLINE_AUTO_ACTIVATE", &c.Offline.AutoActivate); err != nil {
		return err
	}

	c.Normalize()
	if err := c.Validate(); err != nil {
		return err
	}
	return c.ExpandPaths()
}

// LoadWithEnv loads the config at path, then the dotenv file next to it, then
// applies HOURCAL_* overrides from the environment.
func LoadWithEnv(path string) (Config, error) {
	cfg, err := LoadOrDefault(path)
	if err != nil {
		return cfg, err
	}
	if err := LoadEnvFile(filepath.Join(filepath.Dir(path), EnvFile)); err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// GenerateSampleConfig returns a commented sample configuration file.
func GenerateSampleConfig() string {
	return `# hourcal configuration file
# Uncomment and edit the settings you want to change.

# TUI color theme ID (see "hourcal tui --list-themes")
# theme = "default"

[calendar]
# Hours recorded by a short press on an empty day
# default_hours = 8

# Upper bound of the hours prompt
# max_hours = 24

# Hold time in milliseconds before a press counts as a long press (500-5000)
# long_press_ms = 550

# Week start day: "monday" or "sunday"
# week_start_day = "monday"

[storage]
# Backend: "file" or "sqlite"
# backend = "file"

# Directory for the entry store (default: the hourcal config directory)
# dir = "~/.local/share/hourcal"

# Slot key of the entry map
# key = "villani_hours_v2"

[server]
# Address the HTTP server listens on
# listen = "127.0.0.1:8080"

# Remote web origin to put the offline cache in front of (default: bundled app)
# origin = "https://example.com/hourcal/"

# Base path the app is served under
# scope = "/"

[offline]
# enabled = true

# Cache bucket name; bump it together with the asset query strings
# version = "hourcal-v50"

# Directory for the persistent offline cache
# cache_dir = "~/.config/hourcal/offline-cache"

# Activate a new version immediately instead of waiting for "skipWaiting"
# auto_activate = false

# Cron schedule for retrying a failed install
# install_retry = "@every 1m"

# Precached assets, relative to the scope
# assets = ["./", "./index.html", "./style.css?v=50", "./app.js?v=50", "./manifest.json", "./icon/icon-192.svg", "./icon/icon-512.svg"]
# shell = "./index.html"

[log]
# Level: "debug", "info", "warn" or "error"
# level = "info"

# Log file (the TUI always logs to a file)
# file = "~/.config/hourcal/hourcal.log"

# Environment overrides (also read from a .env file next to this one):
# HOURCAL_STORAGE_DIR, HOURCAL_STORAGE_BACKEND, HOURCAL_LISTEN, HOURCAL_ORIGIN,
# HOURCAL_LOG_LEVEL, HOURCAL_DEFAULT_HOURS, HOURCAL_OFFLINE_ENABLED, ...
`
}
