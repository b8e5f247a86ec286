package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/xolan/hourcal/internal/entry"
)

func TestDefaultStyles(t *testing.T) {
	styles := DefaultStyles()

	tests := []struct {
		name  string
		style lipgloss.Style
	}{
		{"App", styles.App},
		{"TabActive", styles.TabActive},
		{"ViewTitle", styles.ViewTitle},
		{"Weekday", styles.Weekday},
		{"Day", styles.Day},
		{"DaySelected", styles.DaySelected},
		{"DayToday", styles.DayToday},
		{"DayWeekend", styles.DayWeekend},
		{"DayPressing", styles.DayPressing},
		{"Dialog", styles.Dialog},
		{"PromptValue", styles.PromptValue},
		{"Error", styles.Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.style.Render("12"), "12") {
				t.Errorf("style %s lost its content", tt.name)
			}
		})
	}

	if styles.App.GetPaddingTop() == 0 {
		t.Error("expected App style to have padding")
	}
}

func TestDayCellSize(t *testing.T) {
	styles := DefaultStyles()

	for name, style := range map[string]lipgloss.Style{
		"Day":         styles.Day,
		"DaySelected": styles.DaySelected,
		"DayWeekend":  styles.DayWeekend,
	} {
		cell := style.Render("1\nPermes.")
		if w := lipgloss.Width(cell); w != CellWidth {
			t.Errorf("%s width = %d, expected %d", name, w, CellWidth)
		}
		if h := lipgloss.Height(cell); h != CellHeight {
			t.Errorf("%s height = %d, expected %d", name, h, CellHeight)
		}
	}
}

func TestEntryLabel(t *testing.T) {
	styles := DefaultStyles()

	tests := []struct {
		entry    entry.Entry
		expected string
	}{
		{entry.Hours(8), "8h"},
		{entry.Vacation(), "Ferie"},
		{entry.Leave(), "Permes."},
		{entry.Entry{}, ""},
	}
	for _, tt := range tests {
		got := styles.EntryLabel(tt.entry)
		if !strings.Contains(got, tt.expected) {
			t.Errorf("EntryLabel(%+v) = %q, expected it to contain %q", tt.entry, got, tt.expected)
		}
	}
}
