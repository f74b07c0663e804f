package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

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

// Flows is what the screens need from the booking service.
type Flows interface {
	ListBusinesses(ctx context.Context) ([]models.Business, error)
	ActiveServices(ctx context.Context, businessID string) ([]models.Service, error)
	MonthCalendar(ctx context.Context, businessID string, reference dates.Date) ([]models.CalendarDay, error)
	AvailableSlots(ctx context.Context, businessID string, date dates.Date) ([]string, error)
	Prepare(ctx context.Context, req booking.BookingRequest) (*booking.Quote, error)
	Confirm(ctx context.Context, q *booking.Quote) (*models.Appointment, error)
	MyAppointments(ctx context.Context) ([]models.Appointment, error)
	Cancel(ctx context.Context, appointmentID string) (*models.Appointment, error)
	Location() *time.Location
	WeekStart() time.Weekday
	Now() time.Time
}

type Authenticator interface {
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error)
}

type Session interface {
	Login(ctx context.Context, resp models.AuthResponse) error
	Logout(ctx context.Context) error
	LoggedIn(ctx context.Context) bool
	InvalidateKind(ctx context.Context, kinds ...cache.Kind)
}

type Deps struct {
	Ctx     context.Context
	Flows   Flows
	Auth    Authenticator
	Session Session
}

type LoginFormModel struct {
	Email    string
	Password string
}

type ServiceFormModel struct {
	IDs []string
}

type ConfirmFormModel struct {
	Book bool
}

type Model struct {
	ctx     context.Context
	flows   Flows
	auth    Authenticator
	session Session

	state  constants.SessionState
	keys   KeyMap
	help   help.Model
	width  int
	height int

	form        *huh.Form
	loginForm   *LoginFormModel
	serviceForm *ServiceFormModel
	confirmForm *ConfirmFormModel

	businessList businesses.Model
	business     models.Business
	services     []models.Service
	calendar     calendar.Model
	slots        slots.Model
	quote        *booking.Quote
	apptList     appointments.Model

	loading  bool
	status   string
	errMsg   string
	quitting bool
}

func NewModel(deps Deps) Model {
	ctx := deps.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	m := Model{
		ctx:          ctx,
		flows:        deps.Flows,
		auth:         deps.Auth,
		session:      deps.Session,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		businessList: businesses.New(nil, 0, 0),
		apptList:     appointments.New(nil, deps.Flows.Location(), 0, 0),
		calendar:     calendar.New(deps.Flows.WeekStart(), dates.DateOf(deps.Flows.Now())),
	}

	if m.session.LoggedIn(ctx) {
		m.state = constants.StateBusinesses
		m.loading = true
	} else {
		m.state = constants.StateLogin
		m.form = m.newLoginForm("")
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if m.state == constants.StateLogin {
		return m.form.Init()
	}
	return m.loadBusinesses()
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Quit, m.keys.Help}
	switch m.state {
	case constants.StateBusinesses:
		keys = append(keys, m.keys.Enter, m.keys.Appointments, m.keys.Refresh)
	case constants.StateCalendar:
		keys = append(keys, m.keys.Enter, m.keys.PrevMonth, m.keys.NextMonth, m.keys.Back)
	case constants.StateSlots:
		keys = append(keys, m.keys.Enter, m.keys.Back)
	case constants.StateAppointments:
		keys = append(keys, m.keys.Refresh, m.keys.Back)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Quit, m.keys.Help, m.keys.Logout}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Left, m.keys.Right, m.keys.Enter, m.keys.Back}

	var actions []key.Binding
	switch m.state {
	case constants.StateBusinesses:
		actions = []key.Binding{m.keys.Appointments, m.keys.Refresh}
	case constants.StateCalendar:
		actions = []key.Binding{m.keys.PrevMonth, m.keys.NextMonth}
	case constants.StateAppointments:
		actions = []key.Binding{m.keys.Refresh}
	}
	return [][]key.Binding{global, navigation, actions}
}

// usesForm reports whether the current screen is a huh form, which owns
// every key press.
func (m Model) usesForm() bool {
	switch m.state {
	case constants.StateLogin, constants.StateBusiness, constants.StateConfirm:
		return m.form != nil
	}
	return false
}
