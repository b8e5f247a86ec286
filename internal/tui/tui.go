// Package tui provides the terminal calendar of the hourcal application.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/xolan/hourcal/internal/service"
	"github.com/xolan/hourcal/internal/tui/ui"
	"github.com/xolan/hourcal/internal/tui/views"
)

// Tab represents a view tab
type Tab int

const (
	TabCalendar Tab = iota
	TabSummary
	TabConfig
)

var tabNames = []string{"Calendar", "Summary", "Config"}

// Model is the root TUI model
type Model struct {
	services *service.Services
	log      logrus.FieldLogger

	activeTab Tab
	width     int
	height    int
	showHelp  bool

	calendarView views.CalendarModel
	summaryView  views.SummaryModel
	configView   views.ConfigModel

	themeProvider *ui.ThemeProvider
	styles        ui.Styles
	keys          ui.KeyMap
}

// New creates a new TUI model
func New(services *service.Services, log logrus.FieldLogger) Model {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	themeProvider := ui.NewThemeProvider(services.Config.Get().Theme)
	styles := themeProvider.Styles()
	keys := ui.DefaultKeyMap()

	m := Model{
		services:      services,
		log:           log,
		activeTab:     TabCalendar,
		themeProvider: themeProvider,
		styles:        styles,
		keys:          keys,
		calendarView:  views.NewCalendarModel(services.Calendar, styles, keys),
		summaryView:   views.NewSummaryModel(services.Calendar, styles, keys),
		configView:    views.NewConfigModel(services.Config, themeProvider, styles, keys),
	}
	m.calendarView.SetOrigin(m.contentOrigin())
	return m
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.calendarView.Init(),
		m.summaryView.Init(),
		m.configView.Init(),
	)
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// While a view captures keys only ctrl+c gets through
		if m.isModalInputMode() {
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			break
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, m.keys.NextTab):
			m.activeTab = Tab((int(m.activeTab) + 1) % len(tabNames))
			return m, m.initCurrentView()

		case key.Matches(msg, m.keys.PrevTab):
			m.activeTab = Tab((int(m.activeTab) - 1 + len(tabNames)) % len(tabNames))
			return m, m.initCurrentView()

		case key.Matches(msg, m.keys.Tab1):
			m.activeTab = TabCalendar
			return m, m.initCurrentView()

		case key.Matches(msg, m.keys.Tab2):
			m.activeTab = TabSummary
			return m, m.initCurrentView()

		case key.Matches(msg, m.keys.Tab3):
			m.activeTab = TabConfig
			return m, m.initCurrentView()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		contentHeight := m.height - 4 // tabs and status bar
		m.calendarView.SetSize(m.width, contentHeight)
		m.summaryView.SetSize(m.width, contentHeight)
		m.configView.SetSize(m.width, contentHeight)
		m.calendarView.SetOrigin(m.contentOrigin())
		return m, nil

	case tea.MouseMsg:
		if m.activeTab != TabCalendar || m.showHelp {
			return m, nil
		}

	case ui.EntryChangedMsg:
		// Changes can come from the HTTP server sharing the service
		var cmds []tea.Cmd
		m.calendarView, cmd = m.calendarView.Update(msg)
		cmds = append(cmds, cmd)
		m.summaryView, cmd = m.summaryView.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	case ui.ThemeChangeRequestMsg:
		m.themeProvider.SetTheme(msg.ThemeName)
		newTheme := m.themeProvider.CurrentName()
		m.styles = m.themeProvider.Styles()

		themeMsg := ui.ThemeChangedMsg{ThemeName: newTheme, Styles: m.styles}
		m.calendarView, _ = m.calendarView.Update(themeMsg)
		m.summaryView, _ = m.summaryView.Update(themeMsg)
		m.configView, _ = m.configView.Update(themeMsg)
		return m, m.saveThemeConfig(newTheme)
	}

	switch m.activeTab {
	case TabCalendar:
		m.calendarView, cmd = m.calendarView.Update(msg)
	case TabSummary:
		m.summaryView, cmd = m.summaryView.Update(msg)
	case TabConfig:
		m.configView, cmd = m.configView.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return m.styles.App.Render(m.renderHelp())
	}

	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	switch m.activeTab {
	case TabCalendar:
		b.WriteString(m.calendarView.View())
	case TabSummary:
		b.WriteString(m.summaryView.View())
	case TabConfig:
		b.WriteString(m.configView.View())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return m.styles.App.Render(b.String())
}

// contentOrigin is the screen position of the first row of the active view.
func (m Model) contentOrigin() (x, y int) {
	return m.styles.App.GetPaddingLeft(), m.styles.App.GetPaddingTop() + lipgloss.Height(m.renderTabs())
}

func (m Model) renderTabs() string {
	var tabs []string
	for i, name := range tabNames {
		if Tab(i) == m.activeTab {
			tabs = append(tabs, m.styles.TabActive.Render(name))
		} else {
			tabs = append(tabs, m.styles.TabInactive.Render(name))
		}
	}
	return m.styles.TabBar.Render(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

func (m Model) renderStatusBar() string {
	var parts []string

	if m.isModalInputMode() {
		switch m.activeTab {
		case TabCalendar:
			parts = append(parts, m.renderKeyHelp("+/-", "adjust"))
			parts = append(parts, m.renderKeyHelp("0-9", "type"))
		case TabConfig:
			parts = append(parts, m.renderKeyHelp("↑/↓", "navigate"))
		}
		parts = append(parts, m.renderKeyHelp("Enter", "ok"))
		parts = append(parts, m.renderKeyHelp("Esc", "cancel"))
	} else {
		switch m.activeTab {
		case TabCalendar:
			parts = append(parts, m.renderKeyHelp("enter", "tap"))
			parts = append(parts, m.renderKeyHelp("space", "hold"))
			parts = append(parts, m.renderKeyHelp("e", "edit"))
			parts = append(parts, m.renderKeyHelp("d", "clear"))
			parts = append(parts, m.renderKeyHelp("[ ]", "month"))
		case TabSummary:
			parts = append(parts, m.renderKeyHelp("[ ]", "month"))
			parts = append(parts, m.renderKeyHelp("t", "today"))
		case TabConfig:
			parts = append(parts, m.renderKeyHelp("t", "themes"))
		}
		parts = append(parts, m.renderKeyHelp("1-3", "views"))
		parts = append(parts, m.renderKeyHelp("?", "help"))
		parts = append(parts, m.renderKeyHelp("q", "quit"))
	}

	content := strings.Join(parts, "  ")
	if padding := m.width - lipgloss.Width(content); padding > 0 {
		content += strings.Repeat(" ", padding)
	}
	return m.styles.StatusBar.Render(content)
}

func (m Model) renderKeyHelp(key, desc string) string {
	return fmt.Sprintf("%s %s", m.styles.StatusKey.Render(key), m.styles.StatusHelp.Render(desc))
}

// isModalInputMode reports whether the active view is capturing every key
func (m Model) isModalInputMode() bool {
	switch m.activeTab {
	case TabCalendar:
		return m.calendarView.IsInputMode()
	case TabConfig:
		return m.configView.IsInputMode()
	}
	return false
}

func (m Model) initCurrentView() tea.Cmd {
	switch m.activeTab {
	case TabCalendar:
		return m.calendarView.Init()
	case TabSummary:
		return m.summaryView.Init()
	case TabConfig:
		return m.configView.Init()
	}
	return nil
}

// saveThemeConfig writes the chosen theme to the config file
func (m Model) saveThemeConfig(themeName string) tea.Cmd {
	return func() tea.Msg {
		if err := m.services.Config.SetTheme(themeName); err != nil {
			m.log.WithError(err).Warn("failed to save theme")
		}
		return nil
	}
}

func (m Model) renderHelp() string {
	var help strings.Builder

	help.WriteString(m.styles.ViewTitle.Render("Keyboard Shortcuts"))
	help.WriteString("\n\n")
	help.WriteString(m.styles.StatLabel.Render("Calendar:"))
	help.WriteString("\n")
	help.WriteString("  ←↓↑→/hjkl  Move selection\n")
	help.WriteString("  enter      Tap: record hours or edit them\n")
	help.WriteString("  space      Hold: ferie → permesso → empty\n")
	help.WriteString("  e          Edit hours\n")
	help.WriteString("  d          Clear day\n")
	help.WriteString("  [ ]        Previous/next month\n")
	help.WriteString("  t          Today\n")
	help.WriteString("\n")
	help.WriteString(m.styles.StatLabel.Render("Mouse:"))
	help.WriteString("\n")
	help.WriteString(fmt.Sprintf("  click a day to tap it, hold it %dms for a long press\n", m.services.Calendar.Threshold().Milliseconds()))
	help.WriteString("\n")
	help.WriteString(m.styles.StatLabel.Render("Global:"))
	help.WriteString("\n")
	help.WriteString("  Tab/1-3    Switch views\n")
	help.WriteString("  ?          Toggle help\n")
	help.WriteString("  q          Quit\n")
	help.WriteString("\n")
	help.WriteString(m.styles.StatusHelp.Render("Press ? to close"))

	return m.styles.Dialog.Width(60).Render(help.String())
}

// Run starts the TUI. Changes made by other clients of the same service are
// pushed to the program as they happen.
func Run(services *service.Services, log logrus.FieldLogger) error {
	p := tea.NewProgram(New(services, log), tea.WithAltScreen(), tea.WithMouseCellMotion())
	services.Calendar.OnChange(func(date string) {
		go p.Send(ui.EntryChangedMsg{Date: date})
	})
	_, err := p.Run()
	return err
}
