package ui

// ThemeChangeRequestMsg is sent when a theme change is requested.
type ThemeChangeRequestMsg struct {
	ThemeName string
}

// ThemeChangedMsg is broadcast to all views when the theme changes.
type ThemeChangedMsg struct {
	ThemeName string
	Styles    Styles
}

// EntryChangedMsg is broadcast after a day of the calendar changed.
// Date is empty when the whole store was replaced.
type EntryChangedMsg struct {
	Date string
}

// MonthChangedMsg is broadcast when the calendar moves to another month.
type MonthChangedMsg struct{}
