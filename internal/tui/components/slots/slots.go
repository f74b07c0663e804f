package slots

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/bookly/internal/dates"
)

const perRow = 6

var (
	buttonStyle = lipgloss.NewStyle().
			Padding(0, 1).
			MarginRight(1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))

	activeButtonStyle = buttonStyle.
				BorderForeground(lipgloss.Color("205")).
				Foreground(lipgloss.Color("205")).
				Bold(true)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)
)

// SlotSelectedMsg carries the chosen HH:MM start.
type SlotSelectedMsg struct {
	Date dates.Date
	Slot string
}

type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Select key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k")),
		Down:   key.NewBinding(key.WithKeys("down", "j")),
		Left:   key.NewBinding(key.WithKeys("left", "h")),
		Right:  key.NewBinding(key.WithKeys("right", "l")),
		Select: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "pick time")),
	}
}

// Model lays the day's start times out as a grid of buttons.
type Model struct {
	Date   dates.Date
	Slots  []string
	Cursor int
	keys   KeyMap
}

func New(date dates.Date, slots []string) Model {
	return Model{Date: date, Slots: slots, keys: DefaultKeyMap()}
}

func (m *Model) move(delta int) {
	c := m.Cursor + delta
	if c < 0 || c >= len(m.Slots) {
		return
	}
	m.Cursor = c
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.Slots) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Left):
		m.move(-1)
	case key.Matches(keyMsg, m.keys.Right):
		m.move(1)
	case key.Matches(keyMsg, m.keys.Up):
		m.move(-perRow)
	case key.Matches(keyMsg, m.keys.Down):
		m.move(perRow)
	case key.Matches(keyMsg, m.keys.Select):
		sel := SlotSelectedMsg{Date: m.Date, Slot: m.Slots[m.Cursor]}
		return m, func() tea.Msg { return sel }
	}
	return m, nil
}

func (m Model) View() string {
	if len(m.Slots) == 0 {
		return emptyStyle.Render("No available times")
	}

	var rows []string
	for start := 0; start < len(m.Slots); start += perRow {
		end := start + perRow
		if end > len(m.Slots) {
			end = len(m.Slots)
		}
		var buttons []string
		for i := start; i < end; i++ {
			style := buttonStyle
			if i == m.Cursor {
				style = activeButtonStyle
			}
			buttons = append(buttons, style.Render(m.Slots[i]))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, buttons...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
