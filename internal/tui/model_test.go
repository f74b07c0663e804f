package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/bookly/internal/api"
	"github.com/julianstephens/bookly/internal/availability"
	"github.com/julianstephens/bookly/internal/booking"
	"github.com/julianstephens/bookly/internal/cache"
	"github.com/julianstephens/bookly/internal/constants"
	"github.com/julianstephens/bookly/internal/dates"
	"github.com/julianstephens/bookly/internal/models"
	"github.com/julianstephens/bookly/internal/tui/components/appointments"
	"github.com/julianstephens/bookly/internal/tui/components/businesses"
	"github.com/julianstephens/bookly/internal/tui/components/calendar"
	"github.com/julianstephens/bookly/internal/tui/components/slots"
)

var fixedNow = time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

type stubFlows struct {
	businesses    []models.Business
	businessesErr error
	services      []models.Service
	shifts        []models.Shift
	slots         []string
	appts         []models.Appointment
	confirmed     []*booking.Quote
	cancelled     []string
}

func (s *stubFlows) ListBusinesses(context.Context) ([]models.Business, error) {
	return s.businesses, s.businessesErr
}

func (s *stubFlows) ActiveServices(context.Context, string) ([]models.Service, error) {
	return s.services, nil
}

func (s *stubFlows) MonthCalendar(_ context.Context, _ string, ref dates.Date) ([]models.CalendarDay, error) {
	return availability.BuildMonthGrid(s.shifts, ref, dates.DateOf(fixedNow), time.Monday), nil
}

func (s *stubFlows) AvailableSlots(context.Context, string, dates.Date) ([]string, error) {
	return s.slots, nil
}

func (s *stubFlows) Prepare(_ context.Context, req booking.BookingRequest) (*booking.Quote, error) {
	if len(req.ServiceIDs) == 0 {
		return nil, booking.ErrNoServices
	}
	start, err := dates.ParseTimeOfDay(req.Slot)
	if err != nil {
		return nil, err
	}
	return &booking.Quote{Request: req, Start: start, Total: 25}, nil
}

func (s *stubFlows) Confirm(_ context.Context, q *booking.Quote) (*models.Appointment, error) {
	s.confirmed = append(s.confirmed, q)
	return &models.Appointment{ID: "a-new", Status: models.StatusPending}, nil
}

func (s *stubFlows) MyAppointments(context.Context) ([]models.Appointment, error) {
	return s.appts, nil
}

func (s *stubFlows) Cancel(_ context.Context, id string) (*models.Appointment, error) {
	s.cancelled = append(s.cancelled, id)
	return &models.Appointment{ID: id, Status: models.StatusCancelled}, nil
}

func (s *stubFlows) Location() *time.Location { return time.UTC }
func (s *stubFlows) WeekStart() time.Weekday  { return time.Monday }
func (s *stubFlows) Now() time.Time           { return fixedNow }

type stubAuth struct {
	err error
}

func (a *stubAuth) Login(_ context.Context, creds models.Credentials) (*models.AuthResponse, error) {
	if a.err != nil {
		return nil, a.err
	}
	return &models.AuthResponse{Token: "tok", User: models.User{Email: creds.Email}}, nil
}

type stubSession struct {
	loggedIn    bool
	logins      int
	logouts     int
	invalidated []cache.Kind
}

func (s *stubSession) Login(context.Context, models.AuthResponse) error {
	s.logins++
	s.loggedIn = true
	return nil
}

func (s *stubSession) Logout(context.Context) error {
	s.logouts++
	s.loggedIn = false
	return nil
}

func (s *stubSession) LoggedIn(context.Context) bool { return s.loggedIn }

func (s *stubSession) InvalidateKind(_ context.Context, kinds ...cache.Kind) {
	s.invalidated = append(s.invalidated, kinds...)
}

func newTestModel(loggedIn bool) (Model, *stubFlows, *stubSession) {
	flows := &stubFlows{
		businesses: []models.Business{{ID: "b1", Name: "Fade Factory"}},
		services:   []models.Service{{ID: "s1", BusinessID: "b1", Name: "Cut", Price: 25, DurationMinutes: 30, IsActive: true}},
		shifts:     []models.Shift{{ID: "sh1", DayOfWeek: 1, IsActive: true, StartTime: "09:00", EndTime: "18:00"}},
		slots:      []string{"09:00", "09:30"},
	}
	sess := &stubSession{loggedIn: loggedIn}
	m := NewModel(Deps{Ctx: context.Background(), Flows: flows, Auth: &stubAuth{}, Session: sess})
	return m, flows, sess
}

// run feeds msg through Update and returns the resulting model.
func run(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm, cmd
}

func TestNewModel_StartScreen(t *testing.T) {
	m, _, _ := newTestModel(false)
	if m.state != constants.StateLogin || m.form == nil {
		t.Errorf("logged-out start: state %v, form %v", m.state, m.form)
	}

	m, _, _ = newTestModel(true)
	if m.state != constants.StateBusinesses || !m.loading {
		t.Errorf("logged-in start: state %v, loading %v", m.state, m.loading)
	}
	msg := m.Init()()
	got, ok := msg.(businessesMsg)
	if !ok || len(got.businesses) != 1 {
		t.Errorf("Init() produced %#v", msg)
	}
}

func TestLogin_SuccessLoadsBusinesses(t *testing.T) {
	m, _, sess := newTestModel(false)

	cmd := m.login(models.Credentials{Email: "ana@example.com", Password: "pw"})
	result, ok := cmd().(loginResultMsg)
	if !ok || result.err != nil {
		t.Fatalf("login cmd = %#v", result)
	}
	if sess.logins != 1 {
		t.Errorf("session logins = %d", sess.logins)
	}

	m, next := run(t, m, result)
	if m.state != constants.StateBusinesses || next == nil {
		t.Fatalf("state after login = %v", m.state)
	}
	m, _ = run(t, m, next())
	if m.businessList.Len() != 1 || m.loading {
		t.Errorf("businesses not loaded: len %d, loading %v", m.businessList.Len(), m.loading)
	}
}

func TestLogin_BadCredentialsStayOnForm(t *testing.T) {
	m, _, _ := newTestModel(false)
	m.loginForm.Email = "ana@example.com"

	m, _ = run(t, m, loginResultMsg{err: &api.APIError{Status: 401, Message: "Invalid credentials"}})
	if m.state != constants.StateLogin {
		t.Errorf("state = %v, want login", m.state)
	}
	if m.errMsg != "Invalid email or password" {
		t.Errorf("errMsg = %q", m.errMsg)
	}
	if m.loginForm.Email != "ana@example.com" {
		t.Errorf("email not kept: %q", m.loginForm.Email)
	}
}

func TestUnauthorizedRoutesToLogin(t *testing.T) {
	for _, err := range []error{api.ErrUnauthorized, api.ErrNoSession, errors.Join(errors.New("wrapped"), api.ErrUnauthorized)} {
		m, _, _ := newTestModel(true)
		m, _ = run(t, m, businessesMsg{err: err})
		if m.state != constants.StateLogin {
			t.Errorf("%v: state = %v, want login", err, m.state)
		}
		if !strings.Contains(m.errMsg, "session has expired") {
			t.Errorf("%v: errMsg = %q", err, m.errMsg)
		}
	}
}

func TestEveryFailedResultReturnsToLogin(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.Msg
	}{
		{"businesses", businessesMsg{err: api.ErrUnauthorized}},
		{"services", servicesMsg{err: api.ErrUnauthorized}},
		{"calendar", calendarMsg{err: api.ErrUnauthorized}},
		{"slots", slotsMsg{err: api.ErrUnauthorized}},
		{"quote", quoteMsg{err: api.ErrUnauthorized}},
		{"booked", bookedMsg{err: api.ErrUnauthorized}},
		{"appointments", appointmentsMsg{err: api.ErrUnauthorized}},
		{"cancelled", cancelledMsg{err: api.ErrUnauthorized}},
		{"logged out", loggedOutMsg{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, _ := newTestModel(true)
			m, _ = run(t, m, tt.msg)
			if m.state != constants.StateLogin || m.form == nil || m.loading {
				t.Errorf("state %v, form %v, loading %v; want login form", m.state, m.form, m.loading)
			}
		})
	}
}

func TestOtherErrorsStayOnScreen(t *testing.T) {
	m, _, _ := newTestModel(true)
	m, _ = run(t, m, businessesMsg{err: &api.APIError{Status: 500, Message: "Database unavailable"}})
	if m.state != constants.StateBusinesses {
		t.Errorf("state = %v", m.state)
	}
	if m.errMsg != "Database unavailable" {
		t.Errorf("errMsg = %q", m.errMsg)
	}
}

func TestBookingFlow(t *testing.T) {
	m, flows, _ := newTestModel(true)
	m, _ = run(t, m, businessesMsg{businesses: flows.businesses})

	m, cmd := run(t, m, businesses.SelectBusinessMsg{Business: flows.businesses[0]})
	m, _ = run(t, m, cmd())
	if m.state != constants.StateBusiness || m.form == nil {
		t.Fatalf("state after choosing business = %v", m.state)
	}

	// Simulate the multi-select completing with the one service chosen.
	m.serviceForm.IDs = []string{"s1"}
	m.state = constants.StateCalendar
	m.form = nil
	m, _ = run(t, m, m.loadCalendar("b1", dates.DateOf(fixedNow).FirstOfMonth())())
	if len(m.calendar.Days) != constants.GridCells {
		t.Fatalf("calendar has %d cells", len(m.calendar.Days))
	}
	day, ok := m.calendar.Selected()
	if !ok || day.Date().Weekday() != time.Monday {
		t.Fatalf("cursor parked on %+v (selectable %v), want the first open Monday", day, ok)
	}

	m, cmd = run(t, m, calendar.DaySelectedMsg{Date: day.Date()})
	m, _ = run(t, m, cmd())
	if m.state != constants.StateSlots || len(m.slots.Slots) != 2 {
		t.Fatalf("slots screen: state %v, slots %v", m.state, m.slots.Slots)
	}

	m, cmd = run(t, m, slots.SlotSelectedMsg{Date: day.Date(), Slot: "09:30"})
	m, _ = run(t, m, cmd())
	if m.state != constants.StateConfirm || m.quote == nil {
		t.Fatalf("confirm screen: state %v", m.state)
	}
	if !strings.Contains(m.View(), "$25.00") {
		t.Errorf("confirm view lacks the total:\n%s", m.View())
	}

	m, cmd = run(t, m, m.confirm(m.quote)())
	if m.state != constants.StateAppointments || m.status == "" {
		t.Fatalf("after booking: state %v, status %q", m.state, m.status)
	}
	if len(flows.confirmed) != 1 || flows.confirmed[0].Request.Slot != "09:30" {
		t.Errorf("confirmed quotes = %+v", flows.confirmed)
	}
	if _, ok := cmd().(appointmentsMsg); !ok {
		t.Error("booking should reload appointments")
	}
}

func TestSlotsScreen_EmptyDay(t *testing.T) {
	m, _, _ := newTestModel(true)
	m.business = models.Business{ID: "b1", Name: "Fade Factory"}
	m.state = constants.StateCalendar

	m, _ = run(t, m, slotsMsg{businessID: "b1", date: dates.DateOf(fixedNow)})
	if m.state != constants.StateSlots {
		t.Fatalf("state = %v", m.state)
	}
	if !strings.Contains(m.View(), "No available times") {
		t.Errorf("empty slots view:\n%s", m.View())
	}
}

func TestStaleResultsIgnored(t *testing.T) {
	m, _, _ := newTestModel(true)
	m.business = models.Business{ID: "b1"}
	m.state = constants.StateBusinesses

	m, _ = run(t, m, slotsMsg{businessID: "b1", date: dates.DateOf(fixedNow), slots: []string{"09:00"}})
	if m.state != constants.StateBusinesses {
		t.Errorf("late slots result moved the user to %v", m.state)
	}
}

func TestPrevMonthStopsAtCurrentMonth(t *testing.T) {
	m, _, _ := newTestModel(true)
	m.state = constants.StateCalendar
	m.calendar = calendar.New(time.Monday, dates.DateOf(fixedNow))

	_, cmd := run(t, m, calendar.PrevMonthMsg{})
	if cmd != nil {
		t.Error("paging before the current month should do nothing")
	}
	_, cmd = run(t, m, calendar.NextMonthMsg{})
	if cmd == nil {
		t.Fatal("paging forward should load the next month")
	}
	if got := cmd().(calendarMsg); got.month.Month != time.November {
		t.Errorf("loaded %v, want November", got.month)
	}
}

func TestCancelAppointment(t *testing.T) {
	m, flows, _ := newTestModel(true)
	m.state = constants.StateAppointments

	m, cmd := run(t, m, appointments.CancelAppointmentMsg{ID: "a1"})
	m, next := run(t, m, cmd())
	if len(flows.cancelled) != 1 || flows.cancelled[0] != "a1" {
		t.Errorf("cancelled = %v", flows.cancelled)
	}
	if m.status == "" || next == nil {
		t.Errorf("cancel should report and reload, status %q", m.status)
	}
}

func TestRefreshInvalidatesBusinessList(t *testing.T) {
	m, _, sess := newTestModel(true)
	m.loading = false

	_, cmd := run(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if cmd == nil {
		t.Fatal("refresh should reload")
	}
	if len(sess.invalidated) != 2 || sess.invalidated[0] != cache.KindBusinessList {
		t.Errorf("invalidated = %v", sess.invalidated)
	}
}

func TestLogoutReturnsToLogin(t *testing.T) {
	m, _, sess := newTestModel(true)
	m, _ = run(t, m, m.logout()())
	if sess.logouts != 1 {
		t.Errorf("logouts = %d", sess.logouts)
	}
	if m.state != constants.StateLogin {
		t.Errorf("state = %v", m.state)
	}
}
