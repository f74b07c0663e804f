package availability

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/julianstephens/bookly/internal/constants"
	"github.com/julianstephens/bookly/internal/dates"
	"github.com/julianstephens/bookly/internal/models"
)

var (
	ErrDateInPast      = errors.New("date is in the past")
	ErrClosed          = errors.New("business is closed on this day")
	ErrSlotUnavailable = errors.New("time slot is not available")
)

// ExpandShift returns HH:MM slot starts from start (inclusive) to end
// (exclusive) every step minutes. When start is after end the shift runs
// past midnight and the slots continue from 00:00 up to end. Equal start and
// end yield no slots.
func ExpandShift(start, end dates.TimeOfDay, step int) []string {
	if step <= 0 || start == end {
		return nil
	}

	var slots []string
	if start < end {
		for t := start; t < end; t += dates.TimeOfDay(step) {
			slots = append(slots, t.String())
		}
		return slots
	}

	for t := start; t < dates.TimeOfDay(constants.MinutesPerDay); t += dates.TimeOfDay(step) {
		slots = append(slots, t.String())
	}
	for t := dates.TimeOfDay(0); t < end; t += dates.TimeOfDay(step) {
		slots = append(slots, t.String())
	}
	return slots
}

// ExpandSlots is the union of every active shift's slots, deduplicated and
// sorted. Zero-padded 24h strings sort chronologically. Shifts whose times
// cannot be parsed contribute nothing.
func ExpandSlots(shifts []models.Shift) []string {
	seen := make(map[string]struct{})
	var slots []string
	for _, s := range shifts {
		if !s.IsActive {
			continue
		}
		start, end, err := s.Window()
		if err != nil {
			continue
		}
		for _, slot := range ExpandShift(start, end, constants.SlotStepMin) {
			if _, ok := seen[slot]; ok {
				continue
			}
			seen[slot] = struct{}{}
			slots = append(slots, slot)
		}
	}
	sort.Strings(slots)
	return slots
}

// ActiveShift returns the first active shift for the ISO weekday (1..7).
func ActiveShift(shifts []models.Shift, isoWeekday int) (models.Shift, bool) {
	for _, s := range shifts {
		if s.IsActive && s.DayOfWeek == isoWeekday {
			return s, true
		}
	}
	return models.Shift{}, false
}

// InWindow reports whether t falls in [start, end). Overnight windows
// (start > end) wrap, so t matches when t >= start or t < end.
func InWindow(t, start, end dates.TimeOfDay) bool {
	if start <= end {
		return t >= start && t < end
	}
	return t >= start || t < end
}

// SlotsForDate restricts the business-wide slot list to the window of the
// active shift for date's weekday. Past dates and closed days yield nil.
// On the current day, slots that have already started are dropped.
func SlotsForDate(shifts []models.Shift, date dates.Date, now time.Time) []string {
	today := dates.DateOf(now)
	if date.Before(today) {
		return nil
	}

	shift, ok := ActiveShift(shifts, date.ISOWeekday())
	if !ok {
		return nil
	}
	start, end, err := shift.Window()
	if err != nil {
		return nil
	}

	nowTOD := dates.TimeOfDayOf(now)
	var slots []string
	for _, slot := range ExpandSlots(shifts) {
		t, err := dates.ParseTimeOfDay(slot)
		if err != nil {
			continue
		}
		if !InWindow(t, start, end) {
			continue
		}
		if date.Equal(today) && t <= nowTOD {
			continue
		}
		slots = append(slots, slot)
	}
	return slots
}

// ValidateSelection checks that slot is bookable on date. It is the only
// place the client enforces that an appointment falls inside a shift.
func ValidateSelection(shifts []models.Shift, date dates.Date, slot string, now time.Time) error {
	if date.Before(dates.DateOf(now)) {
		return fmt.Errorf("%s: %w", date, ErrDateInPast)
	}
	if _, ok := ActiveShift(shifts, date.ISOWeekday()); !ok {
		return fmt.Errorf("%s (%s): %w", date, date.Weekday(), ErrClosed)
	}
	t, err := dates.ParseTimeOfDay(slot)
	if err != nil {
		return err
	}
	for _, s := range SlotsForDate(shifts, date, now) {
		if s == t.String() {
			return nil
		}
	}
	return fmt.Errorf("%s at %s: %w", date, t, ErrSlotUnavailable)
}
