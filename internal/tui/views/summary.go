package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xolan/hourcal/internal/service"
	"github.com/xolan/hourcal/internal/tui/ui"
)

// SummaryModel shows the totals of the month being viewed
type SummaryModel struct {
	cal    *service.CalendarService
	styles ui.Styles
	keys   ui.KeyMap

	width   int
	height  int
	label   string
	summary service.MonthSummary
	loaded  bool
}

// NewSummaryModel creates a new summary view model
func NewSummaryModel(cal *service.CalendarService, styles ui.Styles, keys ui.KeyMap) SummaryModel {
	return SummaryModel{
		cal:    cal,
		styles: styles,
		keys:   keys,
	}
}

// summaryLoadedMsg is sent when the summary is computed
type summaryLoadedMsg struct {
	label   string
	summary service.MonthSummary
}

// Init implements tea.Model
func (m SummaryModel) Init() tea.Cmd {
	return m.loadSummary()
}

// Update implements tea.Model
func (m SummaryModel) Update(msg tea.Msg) (SummaryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.PrevMonth):
			m.cal.PrevMonth()
			return m, m.loadSummary()
		case key.Matches(msg, m.keys.NextMonth):
			m.cal.NextMonth()
			return m, m.loadSummary()
		case key.Matches(msg, m.keys.Today):
			m.cal.Today()
			return m, m.loadSummary()
		case key.Matches(msg, m.keys.Refresh):
			return m, m.loadSummary()
		}

	case summaryLoadedMsg:
		m.label = msg.label
		m.summary = msg.summary
		m.loaded = true

	case ui.EntryChangedMsg:
		return m, m.loadSummary()

	case ui.ThemeChangedMsg:
		m.styles = msg.Styles
		return m, nil
	}

	return m, nil
}

// View implements tea.Model
func (m SummaryModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.ViewTitle.Render("Summary " + m.label))
	b.WriteString("\n\n")

	if !m.loaded {
		b.WriteString("Loading...")
		return b.String()
	}

	s := m.summary
	b.WriteString(renderStatLine(m.styles, "Total hours:", fmt.Sprintf("%dh", s.TotalHours)))
	b.WriteString(renderStatLine(m.styles, "Days worked:", fmt.Sprintf("%d %s", s.WorkedDays, pluralize("day", s.WorkedDays))))
	b.WriteString(renderStatLine(m.styles, "Average per day:", fmt.Sprintf("%.1fh", s.AverageHours)))
	b.WriteString(renderStatLine(m.styles, "Ferie:", fmt.Sprintf("%d %s", s.VacationDays, pluralize("day", s.VacationDays))))
	b.WriteString(renderStatLine(m.styles, "Permessi:", fmt.Sprintf("%d %s", s.LeaveDays, pluralize("day", s.LeaveDays))))
	b.WriteString(renderStatLine(m.styles, "Working days:", fmt.Sprintf("%d", s.WorkingDays)))

	if len(s.Weeks) > 0 {
		b.WriteString("\n")
		b.WriteString(m.styles.ViewTitle.Render("By Week"))
		b.WriteString("\n")
		for _, w := range s.Weeks {
			b.WriteString(fmt.Sprintf("  W%02d %6dh\n", w.Week, w.Hours))
		}
	}

	if len(s.Holidays) > 0 {
		b.WriteString("\n")
		b.WriteString(m.styles.ViewTitle.Render("Holidays"))
		b.WriteString("\n")
		for _, d := range s.Holidays {
			b.WriteString("  ")
			b.WriteString(d.Date)
			b.WriteString("  ")
			b.WriteString(m.styles.HolidayName.Render(d.Holiday))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// SetSize sets the view dimensions
func (m *SummaryModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// loadSummary creates a command to summarize the month being viewed
func (m SummaryModel) loadSummary() tea.Cmd {
	return func() tea.Msg {
		month := m.cal.Month()
		return summaryLoadedMsg{label: month.Label(), summary: m.cal.Summary(month)}
	}
}
