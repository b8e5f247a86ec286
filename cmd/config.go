package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xolan/hourcal/internal/config"
	"github.com/xolan/hourcal/internal/service"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display or manage configuration settings",
	Long: `Display the current effective configuration settings for hourcal.

Shows the configuration file location, whether it exists, and all current settings.
Values are merged from defaults, the config file, a .env file next to it and
HOURCAL_* environment variables, in that order.

Examples:
  hourcal config                   Show all current settings
  hourcal config init              Write a commented sample config file

Configuration file location:
  ~/.config/hourcal/config.toml          Linux/macOS
  %APPDATA%\hourcal\config.toml          Windows`,
	Run: func(cmd *cobra.Command, args []string) {
		showConfig()
	},
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a sample config file",
	Run: func(cmd *cobra.Command, args []string) {
		initConfig()
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
}

// showConfig displays the current effective configuration
func showConfig() {
	configPath, err := deps.ConfigPath()
	if err != nil {
		fail("Failed to determine config file location", err, "Check that your home directory is accessible")
		return
	}

	fileExists := false
	if _, err := os.Stat(configPath); err == nil {
		fileExists = true
	}

	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		_, _ = fmt.Fprintln(deps.Stderr, "Error: Failed to load configuration")
		_, _ = fmt.Fprintf(deps.Stderr, "Details: %v\n", err)
		_, _ = fmt.Fprintln(deps.Stderr)
		_, _ = fmt.Fprintf(deps.Stderr, "Hint: Check that your config file is valid TOML format: %s\n", configPath)
		_, _ = fmt.Fprintln(deps.Stderr, "Valid week_start_day values: monday, sunday")
		_, _ = fmt.Fprintln(deps.Stderr, "Valid storage backends: file, sqlite")
		deps.Exit(1)
		return
	}

	_, _ = fmt.Fprintln(deps.Stdout, "Configuration for hourcal")
	_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("=", 60))
	_, _ = fmt.Fprintln(deps.Stdout)

	_, _ = fmt.Fprintf(deps.Stdout, "Config file:     %s\n", configPath)
	if fileExists {
		_, _ = fmt.Fprintln(deps.Stdout, "Status:          File exists (using custom configuration)")
	} else {
		_, _ = fmt.Fprintln(deps.Stdout, "Status:          No config file (using defaults)")
	}
	_, _ = fmt.Fprintln(deps.Stdout)

	dataDir, _ := cfg.DataDir()
	_, _ = fmt.Fprintln(deps.Stdout, "Current Settings:")
	_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("-", 60))
	_, _ = fmt.Fprintf(deps.Stdout, "Theme:           %s\n", cfg.Theme)
	_, _ = fmt.Fprintf(deps.Stdout, "Default Hours:   %d\n", cfg.Calendar.DefaultHours)
	_, _ = fmt.Fprintf(deps.Stdout, "Max Hours:       %d\n", cfg.Calendar.MaxHours)
	_, _ = fmt.Fprintf(deps.Stdout, "Long Press:      %s\n", cfg.LongPress())
	_, _ = fmt.Fprintf(deps.Stdout, "Week Start Day:  %s\n", cfg.Calendar.WeekStartDay)
	_, _ = fmt.Fprintf(deps.Stdout, "Storage:         %s in %s (key %s)\n", cfg.Storage.Backend, dataDir, cfg.Storage.Key)
	_, _ = fmt.Fprintf(deps.Stdout, "Listen:          %s\n", cfg.Server.Listen)
	if cfg.Server.Origin == "" {
		_, _ = fmt.Fprintln(deps.Stdout, "Origin:          (bundled web app)")
	} else {
		_, _ = fmt.Fprintf(deps.Stdout, "Origin:          %s\n", cfg.Server.Origin)
	}
	if cfg.Offline.Enabled {
		_, _ = fmt.Fprintf(deps.Stdout, "Offline Cache:   %s (%d assets)\n", cfg.Offline.Version, len(cfg.Offline.Assets))
	} else {
		_, _ = fmt.Fprintln(deps.Stdout, "Offline Cache:   disabled")
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Log Level:       %s\n", cfg.Log.Level)
	_, _ = fmt.Fprintln(deps.Stdout)

	if !fileExists {
		_, _ = fmt.Fprintln(deps.Stdout, "Tip: Run 'hourcal config init' to create a config file with every option.")
		_, _ = fmt.Fprintln(deps.Stdout)
	}
}

// initConfig writes the sample config file
func initConfig() {
	configPath, err := deps.ConfigPath()
	if err != nil {
		fail("Failed to determine config file location", err, "Check that your home directory is accessible")
		return
	}

	svc := service.NewConfigService(configPath, config.DefaultConfig())
	if err := svc.Init(); err != nil {
		fail("Failed to create config file", err, "Edit the existing file or remove it first")
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Created config file: %s\n", configPath)
}
