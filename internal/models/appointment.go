package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/bookly/internal/dates"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// AppointmentStatuses lists the only values the client ever sends.
var AppointmentStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
	StatusCancelled,
	StatusCompleted,
}

// ParseAppointmentStatus accepts one of the four enumerated values,
// case-insensitively. The American "canceled" spelling maps to cancelled.
func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	v := AppointmentStatus(strings.ToLower(strings.TrimSpace(s)))
	if v == "canceled" {
		v = StatusCancelled
	}
	if !v.Known() {
		return "", fmt.Errorf("unknown appointment status %q (expected pending|confirmed|cancelled|completed)", s)
	}
	return v, nil
}

// Known reports whether s is one of the enumerated statuses. Statuses read
// from the server are kept verbatim even when unknown.
func (s AppointmentStatus) Known() bool {
	for _, v := range AppointmentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s AppointmentStatus) Label() string {
	if s.Known() {
		return string(s)
	}
	if s == "" {
		return "unknown"
	}
	return fmt.Sprintf("unknown (%s)", string(s))
}

// Terminal reports whether no further transitions are expected.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

type AppointmentService struct {
	ServiceID       string  `json:"serviceId"`
	Name            string  `json:"name,omitempty"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"duration"`
}

type Appointment struct {
	ID              string               `json:"id"`
	BusinessID      string               `json:"businessId"`
	WorkerID        string               `json:"workerId,omitempty"`
	CustomerID      string               `json:"customerId"`
	AppointmentTime time.Time            `json:"-"`
	TotalPrice      float64              `json:"totalPrice"`
	Status          AppointmentStatus    `json:"status"`
	Services        []AppointmentService `json:"services"`
	Notes           string               `json:"notes,omitempty"`
	Business        *Business            `json:"business,omitempty"`
	Worker          *Worker              `json:"worker,omitempty"`

	// rawTime holds a zone-less or unreadable wire time until Localize.
	rawTime string
}

type appointmentAlias Appointment

type appointmentWire struct {
	appointmentAlias
	AppointmentTime string `json:"appointmentTime"`
}

// UnmarshalJSON keeps zone-less times for Localize, which reads them in the
// configured timezone. An unreadable time leaves AppointmentTime zero rather
// than failing the whole list.
func (a *Appointment) UnmarshalJSON(data []byte) error {
	var w appointmentWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*a = Appointment(w.appointmentAlias)
	a.rawTime = ""
	if w.AppointmentTime == "" {
		return nil
	}
	if t, err := dates.ParseZonedTimestamp(w.AppointmentTime); err == nil {
		a.AppointmentTime = t
		return nil
	}
	a.rawTime = w.AppointmentTime
	return nil
}

// Localize resolves a zone-less wire time in loc. It fails only when the
// server sent a time that cannot be read; AppointmentTime then stays zero.
func (a *Appointment) Localize(loc *time.Location) error {
	if a.rawTime == "" {
		return nil
	}
	t, err := dates.ParseTimestamp(a.rawTime, loc)
	if err != nil {
		return fmt.Errorf("appointment %s: %w", a.ID, err)
	}
	a.AppointmentTime = t
	a.rawTime = ""
	return nil
}

func (a Appointment) MarshalJSON() ([]byte, error) {
	w := appointmentWire{appointmentAlias: appointmentAlias(a)}
	switch {
	case !a.AppointmentTime.IsZero():
		w.AppointmentTime = dates.FormatTimestamp(a.AppointmentTime)
	case a.rawTime != "":
		w.AppointmentTime = a.rawTime
	}
	return json.Marshal(w)
}

// Duration returns the sum of the service durations.
func (a Appointment) Duration() time.Duration {
	return time.Duration(TotalDuration(a.Services)) * time.Minute
}

// TotalPrice sums the service prices.
func TotalPrice(services []AppointmentService) float64 {
	total := 0.0
	for _, s := range services {
		total += s.Price
	}
	return total
}

// TotalDuration sums the service durations in minutes.
func TotalDuration(services []AppointmentService) int {
	total := 0
	for _, s := range services {
		total += s.DurationMinutes
	}
	return total
}

// NewAppointmentRequest is the body of POST /appointments.
type NewAppointmentRequest struct {
	BusinessID      string               `json:"businessId"`
	WorkerID        string               `json:"workerId,omitempty"`
	AppointmentTime string               `json:"appointmentTime"`
	TotalPrice      float64              `json:"totalPrice"`
	Services        []AppointmentService `json:"services"`
	Notes           string               `json:"notes,omitempty"`
}

type StatusUpdateRequest struct {
	Status AppointmentStatus `json:"status"`
}

type RescheduleRequest struct {
	AppointmentTime string `json:"appointmentTime"`
	WorkerID        string `json:"workerId,omitempty"`
}
