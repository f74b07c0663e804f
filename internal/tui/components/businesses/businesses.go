package businesses

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/bookly/internal/models"
)

type SelectBusinessMsg struct {
	Business models.Business
}

type Item struct {
	Business models.Business
}

func (i Item) Title() string {
	return i.Business.Name
}

func (i Item) Description() string {
	rating := "no reviews"
	if i.Business.ReviewCount > 0 {
		rating = fmt.Sprintf("★ %.1f (%d)", i.Business.Rating, i.Business.ReviewCount)
	}
	if addr := i.Business.Address.Format(); addr != "" {
		return rating + " · " + addr
	}
	return rating
}

func (i Item) FilterValue() string {
	return i.Business.Name + " " + i.Business.Category + " " + i.Business.Address.Format()
}

type KeyMap struct {
	Select key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "book here"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(items []models.Business, width, height int) Model {
	l := list.New(toItems(items), list.NewDefaultDelegate(), width, height)
	l.Title = "Businesses"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetStatusBarItemName("business", "businesses")

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Select}
	}

	return Model{list: l, keys: keys}
}

func toItems(bs []models.Business) []list.Item {
	items := make([]list.Item, len(bs))
	for i, b := range bs {
		items[i] = Item{Business: b}
	}
	return items
}

func (m *Model) SetBusinesses(bs []models.Business) {
	m.list.SetItems(toItems(bs))
}

// Filtering reports whether the filter prompt has focus, in which case
// single-letter shortcuts belong to the prompt.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Len() int {
	return len(m.list.Items())
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if keyMsg, ok := msg.(tea.KeyMsg); ok && !m.Filtering() {
		if key.Matches(keyMsg, m.keys.Select) {
			if item, ok := m.list.SelectedItem().(Item); ok {
				b := item.Business
				return m, func() tea.Msg { return SelectBusinessMsg{Business: b} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.Len() == 0 {
		return "No businesses found"
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
