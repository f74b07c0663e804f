package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/bookly/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateLogin:
		content = m.viewLogin()
	case constants.StateBusinesses:
		content = m.businessList.View()
	case constants.StateBusiness:
		content = m.viewForm()
	case constants.StateCalendar:
		content = m.calendar.View()
	case constants.StateSlots:
		content = m.viewSlots()
	case constants.StateConfirm:
		content = m.viewConfirm()
	case constants.StateAppointments:
		content = m.apptList.View()
	}

	parts := []string{m.viewHeader(), docStyle.Render(content), m.viewStatus()}
	// Forms render their own key help.
	if !m.usesForm() {
		parts = append(parts, m.help.View(m))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewHeader() string {
	var crumbs []string
	switch m.state {
	case constants.StateLogin:
		crumbs = []string{"Log in"}
	case constants.StateBusinesses:
		crumbs = []string{"Businesses"}
	case constants.StateAppointments:
		crumbs = []string{"My appointments"}
	case constants.StateBusiness:
		crumbs = []string{"Businesses", m.business.Name}
	case constants.StateCalendar:
		crumbs = []string{"Businesses", m.business.Name, "Pick a day"}
	case constants.StateSlots:
		crumbs = []string{"Businesses", m.business.Name, m.slots.Date.String()}
	case constants.StateConfirm:
		crumbs = []string{"Businesses", m.business.Name, "Confirm"}
	}
	return titleStyle.Render(constants.AppName) + " " + subtleStyle.Render(strings.Join(crumbs, " › "))
}

func (m Model) viewStatus() string {
	switch {
	case m.errMsg != "":
		return dangerStyle.Render(m.errMsg)
	case m.loading:
		return warningStyle.Render("Loading…")
	case m.status != "":
		return successStyle.Render(m.status)
	}
	return ""
}

func (m Model) viewLogin() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		"Sign in to book appointments.",
		"",
		m.viewForm(),
	)
}

func (m Model) viewForm() string {
	if m.form == nil {
		return ""
	}
	return m.form.View()
}

func (m Model) viewSlots() string {
	day := m.slots.Date.In(m.flows.Location()).Format("Monday, January 2")
	return lipgloss.JoinVertical(lipgloss.Left,
		"Available times on "+day,
		"",
		m.slots.View(),
	)
}

func (m Model) viewConfirm() string {
	if m.quote == nil {
		return m.viewForm()
	}
	q := m.quote

	lines := []string{
		m.business.Name,
		fmt.Sprintf("%s at %s", q.Request.Date.In(m.flows.Location()).Format("Mon Jan 2, 2006"), q.Start),
		"",
	}
	for _, s := range q.Services {
		lines = append(lines, fmt.Sprintf("%-24s $%.2f", s.Name, s.Price))
	}
	lines = append(lines, "", fmt.Sprintf("%-24s $%.2f", "Total", q.Total))
	if q.Minutes > 0 {
		lines = append(lines, subtleStyle.Render(fmt.Sprintf("About %d minutes", q.Minutes)))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		summaryStyle.Render(strings.Join(lines, "\n")),
		"",
		m.viewForm(),
	)
}
