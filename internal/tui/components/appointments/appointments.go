package appointments

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/bookly/internal/models"
)

type CancelAppointmentMsg struct {
	ID string
}

type Item struct {
	Appointment models.Appointment
	loc         *time.Location
}

func (i Item) Title() string {
	a := i.Appointment
	name := a.BusinessID
	if a.Business != nil && a.Business.Name != "" {
		name = a.Business.Name
	}
	return fmt.Sprintf("%s · %s", name, a.Status.Label())
}

func (i Item) Description() string {
	a := i.Appointment
	when := "unscheduled"
	if !a.AppointmentTime.IsZero() {
		when = a.AppointmentTime.In(i.loc).Format("Mon Jan 2 15:04")
	}
	var names []string
	for _, s := range a.Services {
		if s.Name != "" {
			names = append(names, s.Name)
		}
	}
	desc := fmt.Sprintf("%s · $%.2f", when, a.TotalPrice)
	if len(names) > 0 {
		desc += " · " + strings.Join(names, ", ")
	}
	return desc
}

func (i Item) FilterValue() string { return i.Title() }

type KeyMap struct {
	Cancel key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Cancel: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "cancel appointment"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
	loc  *time.Location
}

func New(appts []models.Appointment, loc *time.Location, width, height int) Model {
	m := Model{keys: DefaultKeyMap(), loc: loc}
	l := list.New(m.toItems(appts), list.NewDefaultDelegate(), width, height)
	l.Title = "My appointments"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	keys := m.keys
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Cancel}
	}
	m.list = l
	return m
}

func (m Model) toItems(appts []models.Appointment) []list.Item {
	items := make([]list.Item, len(appts))
	for i, a := range appts {
		items[i] = Item{Appointment: a, loc: m.loc}
	}
	return items
}

func (m *Model) SetAppointments(appts []models.Appointment) {
	m.list.SetItems(m.toItems(appts))
}

func (m Model) Len() int {
	return len(m.list.Items())
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, m.keys.Cancel) {
		if item, ok := m.list.SelectedItem().(Item); ok && !item.Appointment.Status.Terminal() {
			id := item.Appointment.ID
			return m, func() tea.Msg { return CancelAppointmentMsg{ID: id} }
		}
		return m, nil
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.Len() == 0 {
		return "No appointments yet"
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
