package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xolan/hourcal/internal/config"
	"github.com/xolan/hourcal/internal/service"
	"github.com/xolan/hourcal/internal/tui/ui"
)

// maxVisibleThemes is the height of the theme list
const maxVisibleThemes = 10

// ConfigModel shows the effective configuration and lets the user pick a theme
type ConfigModel struct {
	cfgService    *service.ConfigService
	themeProvider *ui.ThemeProvider
	styles        ui.Styles
	keys          ui.KeyMap

	width     int
	height    int
	config    config.Config
	path      string
	exists    bool
	themeName string

	selectingTheme bool
	themes         []string
	themeCursor    int
	themeOffset    int
}

// NewConfigModel creates a new config view model
func NewConfigModel(cfgService *service.ConfigService, themeProvider *ui.ThemeProvider, styles ui.Styles, keys ui.KeyMap) ConfigModel {
	m := ConfigModel{
		cfgService:    cfgService,
		themeProvider: themeProvider,
		styles:        styles,
		keys:          keys,
		themes:        themeProvider.AvailableThemes(),
		themeName:     themeProvider.CurrentName(),
	}
	m.resetCursor()
	return m
}

// configLoadedMsg is sent when config is loaded
type configLoadedMsg struct {
	config config.Config
	path   string
	exists bool
}

// Init implements tea.Model
func (m ConfigModel) Init() tea.Cmd {
	return func() tea.Msg {
		return configLoadedMsg{
			config: m.cfgService.Get(),
			path:   m.cfgService.Path(),
			exists: m.cfgService.Exists(),
		}
	}
}

// Update implements tea.Model
func (m ConfigModel) Update(msg tea.Msg) (ConfigModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.selectingTheme {
			return m.handleThemeSelection(msg)
		}
		if key.Matches(msg, m.keys.Select) || msg.String() == "t" {
			m.selectingTheme = true
			m.scrollToCursor()
		}
		return m, nil

	case configLoadedMsg:
		m.config = msg.config
		m.path = msg.path
		m.exists = msg.exists
		if msg.config.Theme != "" {
			m.themeName = msg.config.Theme
		}
		m.resetCursor()

	case ui.ThemeChangedMsg:
		m.styles = msg.Styles
		m.themeName = msg.ThemeName
		m.config.Theme = msg.ThemeName
	}

	return m, nil
}

func (m ConfigModel) handleThemeSelection(msg tea.KeyMsg) (ConfigModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.themeCursor > 0 {
			m.themeCursor--
			m.scrollToCursor()
		}
	case key.Matches(msg, m.keys.Down):
		if m.themeCursor < len(m.themes)-1 {
			m.themeCursor++
			m.scrollToCursor()
		}
	case key.Matches(msg, m.keys.Select):
		m.selectingTheme = false
		name := m.themes[m.themeCursor]
		return m, func() tea.Msg {
			return ui.ThemeChangeRequestMsg{ThemeName: name}
		}
	case key.Matches(msg, m.keys.Back):
		m.selectingTheme = false
		m.resetCursor()
	}
	return m, nil
}

// resetCursor points the theme cursor at the current theme
func (m *ConfigModel) resetCursor() {
	for i, t := range m.themes {
		if t == m.themeName {
			m.themeCursor = i
			break
		}
	}
}

// scrollToCursor keeps the cursor inside the visible window
func (m *ConfigModel) scrollToCursor() {
	switch {
	case m.themeCursor < m.themeOffset:
		m.themeOffset = m.themeCursor
	case m.themeCursor >= m.themeOffset+maxVisibleThemes:
		m.themeOffset = m.themeCursor - maxVisibleThemes + 1
	}
}

// IsInputMode reports whether the theme list is capturing keys.
func (m ConfigModel) IsInputMode() bool {
	return m.selectingTheme
}

// View implements tea.Model
func (m ConfigModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.ViewTitle.Render("Configuration"))
	b.WriteString("\n\n")

	b.WriteString(renderStatLine(m.styles, "Config file:", m.path))
	if m.exists {
		b.WriteString(m.styles.StatLabel.Render("Status:") + " " + m.styles.Success.Render("File exists") + "\n")
	} else {
		b.WriteString(m.styles.StatLabel.Render("Status:") + " " + m.styles.Warning.Render("Using defaults (no config file)") + "\n")
	}
	b.WriteString("\n")

	c := m.config
	b.WriteString(renderStatLine(m.styles, "default_hours:", fmt.Sprintf("%d", c.Calendar.DefaultHours)))
	b.WriteString(renderStatLine(m.styles, "max_hours:", fmt.Sprintf("%d", c.Calendar.MaxHours)))
	b.WriteString(renderStatLine(m.styles, "long_press_ms:", fmt.Sprintf("%d", c.Calendar.LongPressMS)))
	b.WriteString(renderStatLine(m.styles, "week_start_day:", c.Calendar.WeekStartDay))
	b.WriteString(renderStatLine(m.styles, "storage.backend:", c.Storage.Backend))
	b.WriteString(renderStatLine(m.styles, "storage.key:", c.Storage.Key))
	b.WriteString(renderStatLine(m.styles, "offline.version:", c.Offline.Version))
	b.WriteString("\n")

	if m.selectingTheme {
		b.WriteString(m.renderThemeSelector())
	} else {
		b.WriteString(renderStatLine(m.styles, "theme:", m.themeName))
		b.WriteString("\n")
		b.WriteString(m.styles.StatusHelp.Render("Press Enter or 't' to change theme"))
	}
	return b.String()
}

func (m ConfigModel) renderThemeSelector() string {
	var b strings.Builder

	end := min(m.themeOffset+maxVisibleThemes, len(m.themes))
	if m.themeOffset > 0 {
		b.WriteString(m.styles.StatusHelp.Render("  ↑ more"))
		b.WriteString("\n")
	}
	for i := m.themeOffset; i < end; i++ {
		name := m.themes[i]
		if name == m.themeName {
			name += " (current)"
		}
		if i == m.themeCursor {
			b.WriteString(m.styles.Selected.Render("▸ " + name))
		} else {
			b.WriteString("  " + name)
		}
		b.WriteString("\n")
	}
	if end < len(m.themes) {
		b.WriteString(m.styles.StatusHelp.Render("  ↓ more"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.StatusHelp.Render("↑/↓ navigate  Enter select  Esc cancel"))
	return b.String()
}

// SetSize sets the view dimensions
func (m *ConfigModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}
