package ui

import (
	"github.com/charmbracelet/lipgloss"
	tint "github.com/lrstanley/bubbletint"

	"github.com/xolan/hourcal/internal/entry"
)

// CellWidth is the rendered width of one day cell, borders excluded.
const CellWidth = 9

// CellHeight is the number of terminal rows one day cell occupies.
const CellHeight = 2

// Styles contains all the styles used in the TUI
type Styles struct {
	App lipgloss.Style

	// Tab bar
	TabBar      lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style

	ViewTitle lipgloss.Style
	Subtitle  lipgloss.Style

	// Status bar
	StatusBar  lipgloss.Style
	StatusKey  lipgloss.Style
	StatusHelp lipgloss.Style

	// Month grid
	Weekday       lipgloss.Style
	Day           lipgloss.Style
	DaySelected   lipgloss.Style
	DayToday      lipgloss.Style
	DayWeekend    lipgloss.Style
	DayPressing   lipgloss.Style
	HolidayName   lipgloss.Style
	HoursLabel    lipgloss.Style
	FerieLabel    lipgloss.Style
	PermessoLabel lipgloss.Style

	// Summary and config
	StatLabel lipgloss.Style
	StatValue lipgloss.Style
	Selected  lipgloss.Style

	// Dialog
	Dialog      lipgloss.Style
	DialogTitle lipgloss.Style
	PromptValue lipgloss.Style

	Error   lipgloss.Style
	Warning lipgloss.Style
	Success lipgloss.Style
}

// DefaultStyles returns the styles of the default theme
func DefaultStyles() Styles {
	return NewThemeProvider("").Styles()
}

// palette names the semantic colors the styles are built from
type palette struct {
	primary, secondary, accent, muted lipgloss.TerminalColor
	success, warning, errorColor     lipgloss.TerminalColor
	fg, bg                           lipgloss.TerminalColor
}

func paletteFromRegistry(r *tint.Registry) palette {
	return palette{
		primary:    r.Purple(),
		secondary:  r.Cyan(),
		accent:     r.BrightPurple(),
		muted:      r.BrightBlack(),
		success:    r.Green(),
		warning:    r.Yellow(),
		errorColor: r.Red(),
		fg:         r.Fg(),
		bg:         r.Bg(),
	}
}

// NewStylesFromRegistry creates a Styles struct using colors from a bubbletint registry.
// Hours are green, ferie cyan and permesso yellow; weekends and holidays use the red slot.
func NewStylesFromRegistry(r *tint.Registry) Styles {
	p := paletteFromRegistry(r)

	cell := lipgloss.NewStyle().Width(CellWidth).Height(CellHeight).Padding(0, 1)

	return Styles{
		App: lipgloss.NewStyle().Padding(1, 2),

		TabBar: lipgloss.NewStyle().
			MarginBottom(1).
			BorderBottom(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(p.muted),
		TabActive: lipgloss.NewStyle().
			Foreground(p.primary).
			Bold(true).
			Padding(0, 2),
		TabInactive: lipgloss.NewStyle().
			Foreground(p.muted).
			Padding(0, 2),

		ViewTitle: lipgloss.NewStyle().
			Foreground(p.primary).
			Bold(true),
		Subtitle: lipgloss.NewStyle().
			Foreground(p.accent),

		StatusBar: lipgloss.NewStyle().
			Foreground(p.fg).
			Background(p.bg).
			Padding(0, 1),
		StatusKey: lipgloss.NewStyle().
			Foreground(p.secondary).
			Bold(true),
		StatusHelp: lipgloss.NewStyle().
			Foreground(p.muted),

		Weekday: lipgloss.NewStyle().
			Width(CellWidth).
			Padding(0, 1).
			Foreground(p.muted).
			Bold(true),
		Day: cell.Foreground(p.fg),
		DaySelected: cell.
			Foreground(p.fg).
			Background(p.muted).
			Bold(true),
		DayToday: cell.
			Foreground(p.primary).
			Underline(true),
		DayWeekend: cell.Foreground(p.errorColor),
		DayPressing: cell.
			Foreground(p.bg).
			Background(p.accent),
		HolidayName: lipgloss.NewStyle().
			Foreground(p.errorColor).
			Italic(true),
		HoursLabel: lipgloss.NewStyle().
			Foreground(p.success).
			Bold(true),
		FerieLabel: lipgloss.NewStyle().
			Foreground(p.secondary).
			Bold(true),
		PermessoLabel: lipgloss.NewStyle().
			Foreground(p.warning).
			Bold(true),

		StatLabel: lipgloss.NewStyle().
			Foreground(p.muted).
			Width(20),
		StatValue: lipgloss.NewStyle().
			Foreground(p.fg).
			Bold(true),
		Selected: lipgloss.NewStyle().
			Background(p.muted).
			Bold(true),

		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.primary).
			Padding(1, 2).
			Width(36),
		DialogTitle: lipgloss.NewStyle().
			Foreground(p.primary).
			Bold(true).
			MarginBottom(1),
		PromptValue: lipgloss.NewStyle().
			Foreground(p.success).
			Bold(true).
			Padding(0, 2),

		Error: lipgloss.NewStyle().
			Foreground(p.errorColor),
		Warning: lipgloss.NewStyle().
			Foreground(p.warning),
		Success: lipgloss.NewStyle().
			Foreground(p.success),
	}
}

// EntryLabel renders the short label of e in the color of its kind.
func (s Styles) EntryLabel(e entry.Entry) string {
	switch e.Kind {
	case entry.KindHours:
		return s.HoursLabel.Render(e.String())
	case entry.KindVacation:
		return s.FerieLabel.Render(e.String())
	case entry.KindLeave:
		return s.PermessoLabel.Render(e.String())
	}
	return ""
}
