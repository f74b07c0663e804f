package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/bookly/internal/api"
	"github.com/julianstephens/bookly/internal/booking"
	"github.com/julianstephens/bookly/internal/cache"
	"github.com/julianstephens/bookly/internal/constants"
	"github.com/julianstephens/bookly/internal/dates"
	apperrors "github.com/julianstephens/bookly/internal/errors"
	"github.com/julianstephens/bookly/internal/models"
	"github.com/julianstephens/bookly/internal/tui/components/appointments"
	"github.com/julianstephens/bookly/internal/tui/components/businesses"
	"github.com/julianstephens/bookly/internal/tui/components/calendar"
	"github.com/julianstephens/bookly/internal/tui/components/slots"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		m.errMsg = ""

	case loginResultMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = loginError(msg.err)
			m.form = m.newLoginForm(m.loginForm.Email)
			return m, m.form.Init()
		}
		m.status = ""
		m.form = nil
		m.state = constants.StateBusinesses
		m.loading = true
		return m, m.loadBusinesses()

	case loggedOutMsg:
		if msg.err != nil {
			m.errMsg = apperrors.UserMessage(msg.err)
		}
		cmd := m.showLogin()
		return m, cmd

	case businessesMsg:
		m.loading = false
		if msg.err != nil {
			cmd := m.fail(msg.err)
			return m, cmd
		}
		m.businessList.SetBusinesses(msg.businesses)
		return m, nil

	case businesses.SelectBusinessMsg:
		m.business = msg.Business
		m.loading = true
		return m, m.loadServices(msg.Business)

	case servicesMsg:
		m.loading = false
		if msg.err != nil {
			cmd := m.fail(msg.err)
			return m, cmd
		}
		if msg.business.ID != m.business.ID || m.state != constants.StateBusinesses {
			return m, nil
		}
		if len(msg.services) == 0 {
			m.errMsg = fmt.Sprintf("%s has no services available", msg.business.Name)
			return m, nil
		}
		m.services = msg.services
		m.state = constants.StateBusiness
		m.form = m.newServiceForm(nil)
		return m, m.form.Init()

	case calendarMsg:
		m.loading = false
		if msg.err != nil {
			cmd := m.fail(msg.err)
			return m, cmd
		}
		if msg.businessID == m.business.ID && m.state == constants.StateCalendar {
			m.calendar.SetMonth(msg.month, msg.days)
		}
		return m, nil

	case calendar.PrevMonthMsg:
		prev := m.calendar.Month.AddMonths(-1)
		if prev.Before(m.calendar.Today.FirstOfMonth()) {
			return m, nil
		}
		m.loading = true
		return m, m.loadCalendar(m.business.ID, prev)

	case calendar.NextMonthMsg:
		m.loading = true
		return m, m.loadCalendar(m.business.ID, m.calendar.Month.AddMonths(1))

	case calendar.DaySelectedMsg:
		m.loading = true
		return m, m.loadSlots(m.business.ID, msg.Date)

	case slotsMsg:
		m.loading = false
		if msg.err != nil {
			cmd := m.fail(msg.err)
			return m, cmd
		}
		if msg.businessID == m.business.ID && m.state == constants.StateCalendar {
			m.slots = slots.New(msg.date, msg.slots)
			m.state = constants.StateSlots
		}
		return m, nil

	case slots.SlotSelectedMsg:
		m.loading = true
		return m, m.prepare(booking.BookingRequest{
			BusinessID: m.business.ID,
			ServiceIDs: m.serviceForm.IDs,
			Date:       msg.Date,
			Slot:       msg.Slot,
		})

	case quoteMsg:
		m.loading = false
		if msg.err != nil {
			cmd := m.fail(msg.err)
			return m, cmd
		}
		if m.state != constants.StateSlots {
			return m, nil
		}
		m.quote = msg.quote
		m.state = constants.StateConfirm
		m.form = m.newConfirmForm()
		return m, m.form.Init()

	case bookedMsg:
		m.loading = false
		if msg.err != nil {
			m.state = constants.StateSlots
			m.form = nil
			cmd := m.fail(msg.err)
			return m, cmd
		}
		m.status = "✓ Appointment booked"
		m.quote = nil
		m.form = nil
		m.state = constants.StateAppointments
		m.loading = true
		return m, m.loadAppointments()

	case appointmentsMsg:
		m.loading = false
		if msg.err != nil {
			cmd := m.fail(msg.err)
			return m, cmd
		}
		m.apptList.SetAppointments(msg.appts)
		return m, nil

	case appointments.CancelAppointmentMsg:
		m.loading = true
		return m, m.cancel(msg.ID)

	case cancelledMsg:
		m.loading = false
		if msg.err != nil {
			cmd := m.fail(msg.err)
			return m, cmd
		}
		m.status = "✓ Appointment cancelled"
		m.loading = true
		return m, m.loadAppointments()
	}

	switch m.state {
	case constants.StateLogin:
		return m.updateLogin(msg)
	case constants.StateBusinesses:
		return m.updateBusinesses(msg)
	case constants.StateBusiness:
		return m.updateServices(msg)
	case constants.StateCalendar:
		return m.updateCalendar(msg)
	case constants.StateSlots:
		return m.updateSlots(msg)
	case constants.StateConfirm:
		return m.updateConfirm(msg)
	case constants.StateAppointments:
		return m.updateAppointments(msg)
	}
	return m, nil
}

// fail reports err on the status line. An expired or missing session sends
// the user back to the login screen.
func (m *Model) fail(err error) tea.Cmd {
	m.loading = false
	m.errMsg = apperrors.UserMessage(err)
	if errors.Is(err, api.ErrUnauthorized) || errors.Is(err, api.ErrNoSession) {
		return m.showLogin()
	}
	return nil
}

func (m *Model) showLogin() tea.Cmd {
	email := ""
	if m.loginForm != nil {
		email = m.loginForm.Email
	}
	m.state = constants.StateLogin
	m.loading = false
	m.status = ""
	m.form = m.newLoginForm(email)
	return m.form.Init()
}

func loginError(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Status == 401 {
		return "Invalid email or password"
	}
	return apperrors.UserMessage(err)
}

func (m *Model) resize() {
	w := m.width - 4
	h := m.height - 6
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	m.businessList.SetSize(w, h)
	m.apptList.SetSize(w, h)
	m.help.Width = m.width
}

func (m *Model) updateForm(msg tea.Msg) tea.Cmd {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	return cmd
}

func (m Model) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.loading || m.form == nil {
		return m, nil
	}

	cmd := m.updateForm(msg)
	switch m.form.State {
	case huh.StateCompleted:
		m.loading = true
		m.status = "Signing in…"
		creds := models.Credentials{
			Email:    strings.TrimSpace(m.loginForm.Email),
			Password: m.loginForm.Password,
		}
		return m, tea.Batch(cmd, m.login(creds))
	case huh.StateAborted:
		m.quitting = true
		return m, tea.Quit
	}
	return m, cmd
}

func (m Model) updateBusinesses(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && !m.businessList.Filtering() {
		switch {
		case key.Matches(keyMsg, m.keys.Appointments):
			m.state = constants.StateAppointments
			m.status = ""
			m.loading = true
			return m, m.loadAppointments()
		case key.Matches(keyMsg, m.keys.Refresh):
			m.session.InvalidateKind(m.ctx, cache.KindBusinessList, cache.KindReviews)
			m.loading = true
			return m, m.loadBusinesses()
		case key.Matches(keyMsg, m.keys.Logout):
			return m, m.logout()
		case key.Matches(keyMsg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}
	if m.loading {
		return m, nil
	}

	var cmd tea.Cmd
	m.businessList, cmd = m.businessList.Update(msg)
	return m, cmd
}

func (m Model) updateServices(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = constants.StateBusinesses
		m.form = nil
		return m, nil
	}

	cmd := m.updateForm(msg)
	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		m.state = constants.StateCalendar
		today := dates.DateOf(m.flows.Now())
		m.calendar = calendar.New(m.flows.WeekStart(), today)
		m.loading = true
		return m, tea.Batch(cmd, m.loadCalendar(m.business.ID, today.FirstOfMonth()))
	case huh.StateAborted:
		m.state = constants.StateBusinesses
		m.form = nil
	}
	return m, cmd
}

func (m Model) updateCalendar(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case keyMsg.Type == tea.KeyEsc:
			m.state = constants.StateBusiness
			m.form = m.newServiceForm(m.serviceForm.IDs)
			return m, m.form.Init()
		case key.Matches(keyMsg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}
	if m.loading {
		return m, nil
	}

	var cmd tea.Cmd
	m.calendar, cmd = m.calendar.Update(msg)
	return m, cmd
}

func (m Model) updateSlots(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = constants.StateCalendar
		return m, nil
	}
	if m.loading {
		return m, nil
	}

	var cmd tea.Cmd
	m.slots, cmd = m.slots.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.loading || m.form == nil {
		return m, nil
	}
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = constants.StateSlots
		m.form = nil
		return m, nil
	}

	cmd := m.updateForm(msg)
	switch m.form.State {
	case huh.StateCompleted:
		if !m.confirmForm.Book {
			m.state = constants.StateSlots
			m.form = nil
			return m, cmd
		}
		m.loading = true
		m.status = "Booking…"
		return m, tea.Batch(cmd, m.confirm(m.quote))
	case huh.StateAborted:
		m.state = constants.StateSlots
		m.form = nil
	}
	return m, cmd
}

func (m Model) updateAppointments(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case keyMsg.Type == tea.KeyEsc:
			m.state = constants.StateBusinesses
			m.status = ""
			return m, nil
		case key.Matches(keyMsg, m.keys.Refresh):
			m.session.InvalidateKind(m.ctx, cache.KindAppointments)
			m.loading = true
			return m, m.loadAppointments()
		case key.Matches(keyMsg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}
	if m.loading {
		return m, nil
	}

	var cmd tea.Cmd
	m.apptList, cmd = m.apptList.Update(msg)
	return m, cmd
}
