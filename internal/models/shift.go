package models

import (
	"fmt"
	"time"

	"github.com/julianstephens/bookly/internal/dates"
)

// ShiftTime is a reusable open/close pair referenced by shifts.
type ShiftTime struct {
	ID        string `json:"id"`
	StartTime string `json:"startTime"` // HH:MM or HH:MM:SS
	EndTime   string `json:"endTime"`   // HH:MM or HH:MM:SS
}

// Shift is a business's declared open hours for one weekday.
type Shift struct {
	ID          string     `json:"id"`
	BusinessID  string     `json:"businessId"`
	DayOfWeek   int        `json:"dayOfWeek"` // 1 (Monday) through 7 (Sunday)
	IsActive    bool       `json:"isActive"`
	StartTime   string     `json:"startTime,omitempty"`
	EndTime     string     `json:"endTime,omitempty"`
	ShiftTimeID string     `json:"shiftTimeId,omitempty"`
	ShiftTime   *ShiftTime `json:"shiftTime,omitempty"`
}

// Window returns the shift's start and end, falling back to the referenced
// ShiftTime when the shift carries no times of its own.
func (s Shift) Window() (dates.TimeOfDay, dates.TimeOfDay, error) {
	startStr, endStr := s.StartTime, s.EndTime
	if (startStr == "" || endStr == "") && s.ShiftTime != nil {
		startStr, endStr = s.ShiftTime.StartTime, s.ShiftTime.EndTime
	}
	start, err := dates.ParseTimeOfDay(startStr)
	if err != nil {
		return 0, 0, fmt.Errorf("shift %s start: %w", s.ID, err)
	}
	end, err := dates.ParseTimeOfDay(endStr)
	if err != nil {
		return 0, 0, fmt.Errorf("shift %s end: %w", s.ID, err)
	}
	return start, end, nil
}

// Wraps reports whether the shift runs past midnight.
func (s Shift) Wraps() bool {
	start, end, err := s.Window()
	return err == nil && start > end
}

type ShiftInput struct {
	BusinessID  string `json:"businessId"`
	DayOfWeek   int    `json:"dayOfWeek"`
	IsActive    bool   `json:"isActive"`
	StartTime   string `json:"startTime,omitempty"`
	EndTime     string `json:"endTime,omitempty"`
	ShiftTimeID string `json:"shiftTimeId,omitempty"`
}

// CalendarDay is one cell of a month grid.
type CalendarDay struct {
	Day            int
	Month          int
	Year           int
	IsCurrentMonth bool
	IsSelectable   bool
}

func (c CalendarDay) Date() dates.Date {
	return dates.NewDate(c.Year, time.Month(c.Month), c.Day)
}
