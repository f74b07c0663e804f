package booking

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/bookly/internal/availability"
	"github.com/julianstephens/bookly/internal/cache"
	"github.com/julianstephens/bookly/internal/dates"
	"github.com/julianstephens/bookly/internal/logger"
	"github.com/julianstephens/bookly/internal/models"
)

// MonthCalendar returns the 42-cell grid for the month containing reference.
func (s *Service) MonthCalendar(ctx context.Context, businessID string, reference dates.Date) ([]models.CalendarDay, error) {
	shifts, err := s.Shifts(ctx, businessID)
	if err != nil {
		return nil, err
	}
	today := dates.DateOf(s.Now())
	return availability.BuildMonthGrid(shifts, reference, today, s.weekStart), nil
}

// AvailableSlots returns the bookable HH:MM starts on date.
func (s *Service) AvailableSlots(ctx context.Context, businessID string, date dates.Date) ([]string, error) {
	shifts, err := s.Shifts(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return availability.SlotsForDate(shifts, date, s.Now()), nil
}

type BookingRequest struct {
	BusinessID string
	ServiceIDs []string
	WorkerID   string
	Date       dates.Date
	Slot       string
	Notes      string
}

// Quote is a validated booking that has not been sent yet.
type Quote struct {
	Request  BookingRequest
	Start    dates.TimeOfDay
	Services []models.AppointmentService
	Total    float64
	Minutes  int
}

// Prepare validates req against the business's shifts and services and
// prices it. Nothing is sent to the server.
func (s *Service) Prepare(ctx context.Context, req BookingRequest) (*Quote, error) {
	if len(req.ServiceIDs) == 0 {
		return nil, ErrNoServices
	}

	shifts, err := s.Shifts(ctx, req.BusinessID)
	if err != nil {
		return nil, err
	}
	if err := availability.ValidateSelection(shifts, req.Date, req.Slot, s.Now()); err != nil {
		return nil, err
	}
	start, err := dates.ParseTimeOfDay(req.Slot)
	if err != nil {
		return nil, err
	}

	offered, err := s.ActiveServices(ctx, req.BusinessID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Service, len(offered))
	for _, svc := range offered {
		byID[svc.ID] = svc
	}

	seen := make(map[string]bool, len(req.ServiceIDs))
	var selected []models.AppointmentService
	for _, id := range req.ServiceIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		svc, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%s: %w", id, ErrUnknownService)
		}
		selected = append(selected, models.AppointmentService{
			ServiceID:       svc.ID,
			Name:            svc.Name,
			Price:           svc.Price,
			DurationMinutes: svc.DurationMinutes,
		})
	}

	return &Quote{
		Request:  req,
		Start:    start,
		Services: selected,
		Total:    models.TotalPrice(selected),
		Minutes:  models.TotalDuration(selected),
	}, nil
}

// Book validates and submits a booking. Each call carries a fresh
// idempotency key.
func (s *Service) Book(ctx context.Context, req BookingRequest) (*models.Appointment, error) {
	q, err := s.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.Confirm(ctx, q)
}

// Confirm submits a prepared quote.
func (s *Service) Confirm(ctx context.Context, q *Quote) (*models.Appointment, error) {
	at := dates.Combine(q.Request.Date, q.Start, s.loc)
	body := models.NewAppointmentRequest{
		BusinessID:      q.Request.BusinessID,
		WorkerID:        q.Request.WorkerID,
		AppointmentTime: dates.FormatTimestamp(at),
		TotalPrice:      q.Total,
		Services:        q.Services,
		Notes:           strings.TrimSpace(q.Request.Notes),
	}

	key := s.newKey()
	logger.Info("Booking appointment", "business", body.BusinessID, "at", body.AppointmentTime, "idempotency_key", key)
	appt, err := s.backend.CreateAppointment(ctx, body, key)
	if err != nil {
		return nil, err
	}
	s.localize(appt)
	s.invalidate(ctx, cache.AppointmentsKey(s.owner()), cache.BusinessAppointmentsKey(s.owner(), body.BusinessID))
	return appt, nil
}

// Reschedule moves an appointment to a new slot after validating it against
// the business's shifts.
func (s *Service) Reschedule(ctx context.Context, appointmentID string, date dates.Date, slot, workerID string) (*models.Appointment, error) {
	current, err := s.Appointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if current.Status.Terminal() {
		return nil, fmt.Errorf("appointment is %s and cannot be rescheduled", current.Status.Label())
	}

	shifts, err := s.Shifts(ctx, current.BusinessID)
	if err != nil {
		return nil, err
	}
	if err := availability.ValidateSelection(shifts, date, slot, s.Now()); err != nil {
		return nil, err
	}
	start, err := dates.ParseTimeOfDay(slot)
	if err != nil {
		return nil, err
	}

	updated, err := s.backend.RescheduleAppointment(ctx, appointmentID, models.RescheduleRequest{
		AppointmentTime: dates.FormatTimestamp(dates.Combine(date, start, s.loc)),
		WorkerID:        workerID,
	})
	if err != nil {
		return nil, err
	}
	s.localize(updated)
	s.invalidate(ctx, cache.AppointmentsKey(s.owner()), cache.BusinessAppointmentsKey(s.owner(), current.BusinessID))
	return updated, nil
}

// UpdateStatus sends one of the enumerated statuses. Whether the transition
// is allowed is decided by the server.
func (s *Service) UpdateStatus(ctx context.Context, appointmentID string, status models.AppointmentStatus) (*models.Appointment, error) {
	if !status.Known() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	updated, err := s.backend.UpdateAppointmentStatus(ctx, appointmentID, status)
	if err != nil {
		return nil, err
	}
	s.localize(updated)
	s.invalidateKind(ctx, cache.KindAppointments, cache.KindBusinessAppointments)
	return updated, nil
}

func (s *Service) Cancel(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	return s.UpdateStatus(ctx, appointmentID, models.StatusCancelled)
}

// MyAppointments lists the signed-in customer's appointments, soonest first.
func (s *Service) MyAppointments(ctx context.Context) ([]models.Appointment, error) {
	appts, err := cached(ctx, s, cache.AppointmentsKey(s.owner()), func() ([]models.Appointment, error) {
		return s.backend.MyAppointments(ctx)
	})
	if err != nil {
		return nil, err
	}
	for i := range appts {
		s.localize(&appts[i])
	}
	sortByTime(appts)
	return appts, nil
}

func (s *Service) BusinessAppointments(ctx context.Context, businessID string) ([]models.Appointment, error) {
	appts, err := cached(ctx, s, cache.BusinessAppointmentsKey(s.owner(), businessID), func() ([]models.Appointment, error) {
		return s.backend.BusinessAppointments(ctx, businessID)
	})
	if err != nil {
		return nil, err
	}
	for i := range appts {
		s.localize(&appts[i])
	}
	sortByTime(appts)
	return appts, nil
}

func (s *Service) Appointment(ctx context.Context, id string) (*models.Appointment, error) {
	a, err := s.backend.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	s.localize(a)
	return a, nil
}

// localize reads zone-less backend times in the configured timezone. An
// unreadable time is logged and left zero.
func (s *Service) localize(appts ...*models.Appointment) {
	for _, a := range appts {
		if a == nil {
			continue
		}
		if err := a.Localize(s.loc); err != nil {
			logger.Warn("Unreadable appointment time", "error", err)
		}
	}
}

// Dashboard summarises a business's appointments for an owner.
type Dashboard struct {
	Counts   map[models.AppointmentStatus]int
	Unknown  int
	Today    []models.Appointment
	Upcoming int
	Revenue  float64
}

func (s *Service) Dashboard(ctx context.Context, businessID string, today dates.Date) (*Dashboard, error) {
	appts, err := s.BusinessAppointments(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return Summarize(appts, today, s.loc), nil
}

// Summarize counts appointments per status, collects the ones on today
// (ordered by time) and sums the price of completed ones. Unknown statuses
// are listed but counted only under Unknown.
func Summarize(appts []models.Appointment, today dates.Date, loc *time.Location) *Dashboard {
	d := &Dashboard{Counts: make(map[models.AppointmentStatus]int)}
	for _, a := range appts {
		day := dates.DateOf(a.AppointmentTime.In(loc))
		if day.Equal(today) {
			d.Today = append(d.Today, a)
		}
		if !a.Status.Known() {
			d.Unknown++
			continue
		}
		d.Counts[a.Status]++

		if day.After(today) && !a.Status.Terminal() {
			d.Upcoming++
		}
		if a.Status == models.StatusCompleted {
			d.Revenue += a.TotalPrice
		}
	}
	sortByTime(d.Today)
	return d
}

func sortByTime(appts []models.Appointment) {
	sort.SliceStable(appts, func(i, j int) bool {
		return appts[i].AppointmentTime.Before(appts[j].AppointmentTime)
	})
}
