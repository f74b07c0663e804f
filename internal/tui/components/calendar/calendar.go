package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/bookly/internal/constants"
	"github.com/julianstephens/bookly/internal/dates"
	"github.com/julianstephens/bookly/internal/models"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	weekdayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Width(5).
			Align(lipgloss.Center)

	cellStyle = lipgloss.NewStyle().
			Width(5).
			Align(lipgloss.Center)

	selectableStyle = cellStyle.
			Foreground(lipgloss.Color("252")).
			Bold(true)

	closedStyle = cellStyle.
			Foreground(lipgloss.Color("238"))

	cursorStyle = cellStyle.
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("205")).
			Bold(true)

	cursorClosedStyle = cellStyle.
				Foreground(lipgloss.Color("240")).
				Background(lipgloss.Color("236"))

	todayMark = lipgloss.NewStyle().Underline(true)
)

// PrevMonthMsg and NextMonthMsg ask the parent to load a neighbouring month.
type PrevMonthMsg struct{}

type NextMonthMsg struct{}

// DaySelectedMsg is emitted when enter is pressed on a selectable day.
type DaySelectedMsg struct {
	Date dates.Date
}

type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Select    key.Binding
	PrevMonth key.Binding
	NextMonth key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "prev week")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "next week")),
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev day")),
		Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next day")),
		Select:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "pick day")),
		PrevMonth: key.NewBinding(key.WithKeys("[", "pgup"), key.WithHelp("[", "prev month")),
		NextMonth: key.NewBinding(key.WithKeys("]", "pgdown"), key.WithHelp("]", "next month")),
	}
}

// Model is a 6x7 month grid with a cursor. The cursor can rest on any cell
// but only selectable days can be picked.
type Model struct {
	Month     dates.Date
	Days      []models.CalendarDay
	Cursor    int
	WeekStart time.Weekday
	Today     dates.Date
	keys      KeyMap
}

func New(weekStart time.Weekday, today dates.Date) Model {
	return Model{
		Month:     today.FirstOfMonth(),
		WeekStart: weekStart,
		Today:     today,
		keys:      DefaultKeyMap(),
	}
}

// SetMonth installs a new grid and parks the cursor on the first selectable
// day, or on the 1st when nothing can be booked.
func (m *Model) SetMonth(month dates.Date, days []models.CalendarDay) {
	m.Month = month.FirstOfMonth()
	m.Days = days
	m.Cursor = 0

	first := -1
	for i, d := range days {
		if d.IsSelectable {
			m.Cursor = i
			return
		}
		if first < 0 && d.IsCurrentMonth {
			first = i
		}
	}
	if first >= 0 {
		m.Cursor = first
	}
}

// Move shifts the cursor by delta cells, clamped to the grid.
func (m *Model) Move(delta int) {
	if len(m.Days) == 0 {
		return
	}
	c := m.Cursor + delta
	if c < 0 {
		c = 0
	}
	if c >= len(m.Days) {
		c = len(m.Days) - 1
	}
	m.Cursor = c
}

// Selected returns the day under the cursor when it can be booked.
func (m Model) Selected() (models.CalendarDay, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Days) {
		return models.CalendarDay{}, false
	}
	d := m.Days[m.Cursor]
	return d, d.IsSelectable
}

// HasSelectable reports whether any day in the month can be booked.
func (m Model) HasSelectable() bool {
	for _, d := range m.Days {
		if d.IsSelectable {
			return true
		}
	}
	return false
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Left):
		m.Move(-1)
	case key.Matches(keyMsg, m.keys.Right):
		m.Move(1)
	case key.Matches(keyMsg, m.keys.Up):
		m.Move(-constants.GridColumns)
	case key.Matches(keyMsg, m.keys.Down):
		m.Move(constants.GridColumns)
	case key.Matches(keyMsg, m.keys.PrevMonth):
		return m, func() tea.Msg { return PrevMonthMsg{} }
	case key.Matches(keyMsg, m.keys.NextMonth):
		return m, func() tea.Msg { return NextMonthMsg{} }
	case key.Matches(keyMsg, m.keys.Select):
		if day, ok := m.Selected(); ok {
			date := day.Date()
			return m, func() tea.Msg { return DaySelectedMsg{Date: date} }
		}
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("%s %d", m.Month.Month, m.Month.Year)))
	b.WriteString("\n\n")

	var names []string
	for i := 0; i < constants.GridColumns; i++ {
		wd := time.Weekday((int(m.WeekStart) + i) % 7)
		names = append(names, weekdayStyle.Render(wd.String()[:2]))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, names...))
	b.WriteString("\n")

	for row := 0; row < constants.GridWeeks; row++ {
		var cells []string
		for col := 0; col < constants.GridColumns; col++ {
			i := row*constants.GridColumns + col
			if i >= len(m.Days) {
				cells = append(cells, cellStyle.Render(""))
				continue
			}
			cells = append(cells, m.renderCell(i))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}

	if !m.HasSelectable() {
		b.WriteString("\nNo bookable days this month\n")
	}
	return b.String()
}

func (m Model) renderCell(i int) string {
	d := m.Days[i]
	label := ""
	if d.IsCurrentMonth {
		label = fmt.Sprintf("%2d", d.Day)
		if d.Date().Equal(m.Today) {
			label = todayMark.Render(label)
		}
	}

	switch {
	case i == m.Cursor && d.IsSelectable:
		return cursorStyle.Render(label)
	case i == m.Cursor:
		return cursorClosedStyle.Render(label)
	case d.IsSelectable:
		return selectableStyle.Render(label)
	default:
		return closedStyle.Render(label)
	}
}
