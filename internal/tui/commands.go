package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/bookly/internal/booking"
	"github.com/julianstephens/bookly/internal/dates"
	"github.com/julianstephens/bookly/internal/models"
)

type loginResultMsg struct {
	err error
}

type loggedOutMsg struct {
	err error
}

type businessesMsg struct {
	businesses []models.Business
	err        error
}

type servicesMsg struct {
	business models.Business
	services []models.Service
	err      error
}

type calendarMsg struct {
	businessID string
	month      dates.Date
	days       []models.CalendarDay
	err        error
}

type slotsMsg struct {
	businessID string
	date       dates.Date
	slots      []string
	err        error
}

type quoteMsg struct {
	quote *booking.Quote
	err   error
}

type bookedMsg struct {
	appt *models.Appointment
	err  error
}

type appointmentsMsg struct {
	appts []models.Appointment
	err   error
}

type cancelledMsg struct {
	appt *models.Appointment
	err  error
}

func (m Model) login(creds models.Credentials) tea.Cmd {
	ctx, auth, sess := m.ctx, m.auth, m.session
	return func() tea.Msg {
		resp, err := auth.Login(ctx, creds)
		if err != nil {
			return loginResultMsg{err: err}
		}
		return loginResultMsg{err: sess.Login(ctx, *resp)}
	}
}

func (m Model) logout() tea.Cmd {
	ctx, sess := m.ctx, m.session
	return func() tea.Msg {
		return loggedOutMsg{err: sess.Logout(ctx)}
	}
}

func (m Model) loadBusinesses() tea.Cmd {
	ctx, flows := m.ctx, m.flows
	return func() tea.Msg {
		list, err := flows.ListBusinesses(ctx)
		return businessesMsg{businesses: list, err: err}
	}
}

func (m Model) loadServices(b models.Business) tea.Cmd {
	ctx, flows := m.ctx, m.flows
	return func() tea.Msg {
		services, err := flows.ActiveServices(ctx, b.ID)
		return servicesMsg{business: b, services: services, err: err}
	}
}

func (m Model) loadCalendar(businessID string, month dates.Date) tea.Cmd {
	ctx, flows := m.ctx, m.flows
	return func() tea.Msg {
		days, err := flows.MonthCalendar(ctx, businessID, month)
		return calendarMsg{businessID: businessID, month: month, days: days, err: err}
	}
}

func (m Model) loadSlots(businessID string, date dates.Date) tea.Cmd {
	ctx, flows := m.ctx, m.flows
	return func() tea.Msg {
		s, err := flows.AvailableSlots(ctx, businessID, date)
		return slotsMsg{businessID: businessID, date: date, slots: s, err: err}
	}
}

func (m Model) prepare(req booking.BookingRequest) tea.Cmd {
	ctx, flows := m.ctx, m.flows
	return func() tea.Msg {
		q, err := flows.Prepare(ctx, req)
		return quoteMsg{quote: q, err: err}
	}
}

func (m Model) confirm(q *booking.Quote) tea.Cmd {
	ctx, flows := m.ctx, m.flows
	return func() tea.Msg {
		appt, err := flows.Confirm(ctx, q)
		return bookedMsg{appt: appt, err: err}
	}
}

func (m Model) loadAppointments() tea.Cmd {
	ctx, flows := m.ctx, m.flows
	return func() tea.Msg {
		appts, err := flows.MyAppointments(ctx)
		return appointmentsMsg{appts: appts, err: err}
	}
}

func (m Model) cancel(id string) tea.Cmd {
	ctx, flows := m.ctx, m.flows
	return func() tea.Msg {
		appt, err := flows.Cancel(ctx, id)
		return cancelledMsg{appt: appt, err: err}
	}
}
