package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/xolan/hourcal/internal/config"
	"github.com/xolan/hourcal/internal/logging"
	"github.com/xolan/hourcal/internal/service"
)

// DefaultLogFile is where the TUI logs when no log file is configured
const DefaultLogFile = "hourcal.log"

// session is what a command needs after startup: the loaded config, a
// logger and the services over the configured entry store.
type session struct {
	configPath string
	cfg        config.Config
	log        *logrus.Logger
	services   *service.Services
	closers    []io.Closer
}

// Close releases the entry store and the log file.
func (s *session) Close() {
	if err := s.services.Close(); err != nil {
		s.log.WithError(err).Warn("failed to close entry store")
	}
	for _, c := range s.closers {
		_ = c.Close()
	}
}

// openSession loads the config and opens the entry store. Logs go to logOut
// unless the config names a log file; a nil logOut logs to DefaultLogFile next
// to the config file. On failure the error is reported and deps.Exit called;
// the caller must return when ok is false.
func openSession(logOut io.Writer) (s *session, ok bool) {
	configPath, err := deps.ConfigPath()
	if err != nil {
		fail("Failed to determine config file location", err, "Check that your home directory is accessible")
		return nil, false
	}

	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		fail("Failed to load configuration", err,
			fmt.Sprintf("Check that your config file is valid TOML format: %s", configPath))
		return nil, false
	}

	logFile := cfg.Log.File
	if logOut == nil && logFile == "" {
		logFile = filepath.Join(filepath.Dir(configPath), DefaultLogFile)
	}
	log, logCloser, err := logging.New(logging.Options{Level: cfg.Log.Level, File: logFile, Output: logOut})
	if err != nil {
		fail("Failed to set up logging", err, "Check the [log] settings in your config file")
		return nil, false
	}

	services, err := service.NewServicesWithConfig(configPath, cfg, log)
	if err != nil {
		_ = logCloser.Close()
		dir, _ := cfg.DataDir()
		fail("Failed to open entry store", err,
			fmt.Sprintf("Check that the storage directory exists and is writable: %s", dir))
		return nil, false
	}

	return &session{
		configPath: configPath,
		cfg:        cfg,
		log:        log,
		services:   services,
		closers:    []io.Closer{logCloser},
	}, true
}

// fail prints a user-facing error and exits with status 1.
func fail(msg string, err error, hint string) {
	_, _ = fmt.Fprintf(deps.Stderr, "Error: %s\n", msg)
	if err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Details: %v\n", err)
	}
	if hint != "" {
		_, _ = fmt.Fprintf(deps.Stderr, "Hint: %s\n", hint)
	}
	deps.Exit(1)
}
