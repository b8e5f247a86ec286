package views

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xolan/hourcal/internal/service"
	"github.com/xolan/hourcal/internal/timeutil"
	"github.com/xolan/hourcal/internal/tui/ui"
)

// gridTopRow is the number of rows the title and weekday header take above the grid
const gridTopRow = 3

// CalendarModel is the month grid. The selected day is driven by the keyboard
// or by the mouse, whose press and release feed the long-press detector.
type CalendarModel struct {
	cal    *service.CalendarService
	styles ui.Styles
	keys   ui.KeyMap

	width   int
	height  int
	originX int
	originY int

	view   service.MonthView
	cursor int // index into view.Days
	err    error

	// Mouse press in progress
	pressing string
	pressGen uint64

	// Hours prompt
	prompting bool
	input     textinput.Model
}

// NewCalendarModel creates a new calendar view model
func NewCalendarModel(cal *service.CalendarService, styles ui.Styles, keys ui.KeyMap) CalendarModel {
	input := textinput.New()
	input.Placeholder = "0"
	input.CharLimit = 2
	input.Width = 4

	m := CalendarModel{
		cal:    cal,
		styles: styles,
		keys:   keys,
		input:  input,
	}
	m.refresh()
	m.cursor = m.todayIndex()
	return m
}

// pressElapsedMsg is delivered when the long-press threshold of press gen passes
type pressElapsedMsg struct {
	gen uint64
}

// monthLoadedMsg carries a freshly built month grid
type monthLoadedMsg struct {
	view service.MonthView
}

// Init implements tea.Model
func (m CalendarModel) Init() tea.Cmd {
	return m.loadMonth()
}

func (m CalendarModel) loadMonth() tea.Cmd {
	return func() tea.Msg {
		return monthLoadedMsg{view: m.cal.View(m.cal.Month())}
	}
}

// Update implements tea.Model
func (m CalendarModel) Update(msg tea.Msg) (CalendarModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.prompting {
			return m.handlePromptKeys(msg)
		}
		return m.handleKeys(msg)

	case tea.MouseMsg:
		if m.prompting {
			return m, nil
		}
		return m.handleMouse(msg)

	case pressElapsedMsg:
		m.err = m.cal.Elapsed(msg.gen)
		m.refresh()
		return m, nil

	case monthLoadedMsg:
		m.setView(msg.view)
		return m, nil

	case ui.EntryChangedMsg:
		m.refresh()
		return m, nil

	case ui.ThemeChangedMsg:
		m.styles = msg.Styles
		return m, nil
	}

	return m, nil
}

func (m CalendarModel) handleKeys(msg tea.KeyMsg) (CalendarModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Left):
		m.move(-1)
	case key.Matches(msg, m.keys.Right):
		m.move(1)
	case key.Matches(msg, m.keys.Up):
		m.move(-7)
	case key.Matches(msg, m.keys.Down):
		m.move(7)

	case key.Matches(msg, m.keys.PrevMonth):
		m.cal.PrevMonth()
		m.refresh()
	case key.Matches(msg, m.keys.NextMonth):
		m.cal.NextMonth()
		m.refresh()
	case key.Matches(msg, m.keys.Today):
		m.cal.Today()
		m.refresh()
		m.cursor = m.todayIndex()

	case key.Matches(msg, m.keys.ShortPress):
		if date := m.SelectedDate(); date != "" {
			m.err = m.cal.Press(date, false)
			m.afterGesture()
		}
	case key.Matches(msg, m.keys.LongPress):
		if date := m.SelectedDate(); date != "" {
			m.err = m.cal.Press(date, true)
			m.afterGesture()
		}
	case key.Matches(msg, m.keys.Edit):
		if date := m.SelectedDate(); date != "" {
			m.err = m.cal.OpenPrompt(date)
			m.afterGesture()
		}
	case key.Matches(msg, m.keys.Clear):
		if date := m.SelectedDate(); date != "" {
			m.err = m.cal.Set(date, nil)
			m.refresh()
		}
	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadMonth()
	}
	return m, nil
}

// move shifts the selection by delta days, crossing into the adjacent month when needed.
func (m *CalendarModel) move(delta int) {
	next := m.cursor + delta
	switch {
	case next < 0:
		m.cal.PrevMonth()
		m.refresh()
		m.cursor = len(m.view.Days) + next
	case next >= len(m.view.Days):
		overflow := next - len(m.view.Days)
		m.cal.NextMonth()
		m.refresh()
		m.cursor = overflow
	default:
		m.cursor = next
	}
	m.clampCursor()
}

func (m CalendarModel) handleMouse(msg tea.MouseMsg) (CalendarModel, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		idx := m.dayAt(msg.X, msg.Y)
		if idx < 0 {
			return m, nil
		}
		m.cursor = idx
		m.pressing = m.view.Days[idx].Date
		m.pressGen = m.cal.Down(m.pressing)
		gen := m.pressGen
		return m, tea.Tick(m.cal.Threshold(), func(time.Time) tea.Msg {
			return pressElapsedMsg{gen: gen}
		})

	case tea.MouseActionMotion:
		if m.pressing == "" {
			return m, nil
		}
		if idx := m.dayAt(msg.X, msg.Y); idx < 0 || m.view.Days[idx].Date != m.pressing {
			m.cal.Leave()
			m.pressing = ""
		}

	case tea.MouseActionRelease:
		if m.pressing == "" {
			return m, nil
		}
		m.pressing = ""
		m.err = m.cal.Up()
		m.afterGesture()
	}
	return m, nil
}

func (m CalendarModel) handlePromptKeys(msg tea.KeyMsg) (CalendarModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		m.err = m.cal.ApplyPrompt(service.PromptConfirm, 0)
		m.closePrompt()
		return m, nil
	case key.Matches(msg, m.keys.Back):
		m.err = m.cal.ApplyPrompt(service.PromptCancel, 0)
		m.closePrompt()
		return m, nil
	case key.Matches(msg, m.keys.Increment):
		m.err = m.cal.ApplyPrompt(service.PromptIncrement, 0)
		m.syncInput()
		return m, nil
	case key.Matches(msg, m.keys.Decrement):
		m.err = m.cal.ApplyPrompt(service.PromptDecrement, 0)
		m.syncInput()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		m.err = m.cal.ApplyPrompt(service.PromptSet, 0)
		return m, cmd
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		m.syncInput()
		return m, cmd
	}
	m.err = m.cal.ApplyPrompt(service.PromptSet, v)
	if p, ok := m.cal.Prompt(); ok && p.Value != v {
		m.syncInput()
	}
	return m, cmd
}

// afterGesture refreshes the grid and opens the prompt when the gesture asked for one.
func (m *CalendarModel) afterGesture() {
	m.refresh()
	if p, ok := m.cal.Prompt(); ok {
		m.prompting = true
		m.input.SetValue(strconv.Itoa(p.Value))
		m.input.CursorEnd()
		m.input.Focus()
	}
}

func (m *CalendarModel) syncInput() {
	if p, ok := m.cal.Prompt(); ok {
		m.input.SetValue(strconv.Itoa(p.Value))
		m.input.CursorEnd()
	}
}

func (m *CalendarModel) closePrompt() {
	m.prompting = false
	m.input.Blur()
	m.input.SetValue("")
	m.refresh()
}

func (m *CalendarModel) refresh() {
	m.setView(m.cal.View(m.cal.Month()))
}

func (m *CalendarModel) setView(v service.MonthView) {
	m.view = v
	m.clampCursor()
}

func (m *CalendarModel) clampCursor() {
	m.cursor = max(0, min(m.cursor, len(m.view.Days)-1))
}

func (m CalendarModel) todayIndex() int {
	for i, d := range m.view.Days {
		if d.Today {
			return i
		}
	}
	return 0
}

// dayAt returns the index of the day drawn at screen position (x, y), or -1.
func (m CalendarModel) dayAt(x, y int) int {
	x -= m.originX
	y -= m.originY + gridTopRow
	if x < 0 || y < 0 {
		return -1
	}
	col, row := x/ui.CellWidth, y/ui.CellHeight
	if col > 6 {
		return -1
	}
	idx := row*7 + col - m.view.LeadingBlanks
	if idx < 0 || idx >= len(m.view.Days) {
		return -1
	}
	return idx
}

// SelectedDate returns the date key of the selected day.
func (m CalendarModel) SelectedDate() string {
	if m.cursor < 0 || m.cursor >= len(m.view.Days) {
		return ""
	}
	return m.view.Days[m.cursor].Date
}

// IsInputMode reports whether the hours prompt is capturing keys.
func (m CalendarModel) IsInputMode() bool {
	return m.prompting
}

// SetSize sets the view dimensions
func (m *CalendarModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetOrigin tells the view where its first row is drawn on screen, for mouse hit testing.
func (m *CalendarModel) SetOrigin(x, y int) {
	m.originX = x
	m.originY = y
}

// View implements tea.Model
func (m CalendarModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.ViewTitle.Render(m.view.Label))
	b.WriteString("  ")
	b.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("Totale: %dh", m.view.TotalHours)))
	b.WriteString("\n\n")
	b.WriteString(m.renderWeekdays())
	b.WriteString("\n")
	b.WriteString(m.renderGrid())
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(m.styles.Error.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}
	if m.prompting {
		b.WriteString("\n")
		b.WriteString(m.renderPrompt())
	}
	return b.String()
}

func (m CalendarModel) renderWeekdays() string {
	first := time.Monday
	if len(m.view.Days) > 0 {
		first = weekStartOf(m.view)
	}
	cols := make([]string, 7)
	for i := range cols {
		wd := (first + time.Weekday(i)) % 7
		cols[i] = m.styles.Weekday.Render(wd.String()[:3])
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m CalendarModel) renderGrid() string {
	var cells []string
	for i := 0; i < m.view.LeadingBlanks; i++ {
		cells = append(cells, m.styles.Day.Render(""))
	}
	for i, d := range m.view.Days {
		cells = append(cells, m.renderDay(i, d))
	}

	var rows []string
	for start := 0; start < len(cells); start += 7 {
		end := min(start+7, len(cells))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells[start:end]...))
	}
	return strings.Join(rows, "\n")
}

func (m CalendarModel) renderDay(i int, d service.DayView) string {
	num := strconv.Itoa(d.Day)
	if d.Holiday != "" {
		num += "*"
	}

	var label string
	switch {
	case d.Entry != nil:
		label = m.styles.EntryLabel(*d.Entry)
	case d.Holiday != "":
		label = m.styles.HolidayName.Render(truncate(d.Holiday, ui.CellWidth-2))
	}

	style := m.styles.Day
	switch {
	case d.Date == m.pressing:
		style = m.styles.DayPressing
	case i == m.cursor:
		style = m.styles.DaySelected
	case d.Today:
		style = m.styles.DayToday
	case d.Weekend || d.Holiday != "":
		style = m.styles.DayWeekend
	}
	return style.Render(num + "\n" + label)
}

func (m CalendarModel) renderPrompt() string {
	p, _ := m.cal.Prompt()

	var b strings.Builder
	b.WriteString(m.styles.DialogTitle.Render("Ore " + p.Date))
	b.WriteString("\n")
	b.WriteString("−")
	b.WriteString(m.styles.PromptValue.Render(m.input.View()))
	b.WriteString("+")
	b.WriteString("\n\n")
	b.WriteString(m.styles.StatusHelp.Render("+/- adjust  enter ok  esc cancel"))
	return m.styles.Dialog.Render(b.String())
}

// weekStartOf recovers the first column's weekday from the grid layout.
func weekStartOf(v service.MonthView) time.Weekday {
	t, err := timeutil.ParseKey(v.Days[0].Date)
	if err != nil {
		return time.Monday
	}
	return (t.Weekday() - time.Weekday(v.LeadingBlanks) + 7) % 7
}
