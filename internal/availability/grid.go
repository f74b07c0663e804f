package availability

import (
	"time"

	"github.com/julianstephens/bookly/internal/constants"
	"github.com/julianstephens/bookly/internal/dates"
	"github.com/julianstephens/bookly/internal/models"
)

// BuildMonthGrid lays out the month containing reference as 6 weeks of 7
// days starting on weekStart. Overflow days from the neighbouring months are
// never selectable. A day of the month is selectable when its weekday has an
// active shift and it is not before today.
func BuildMonthGrid(shifts []models.Shift, reference, today dates.Date, weekStart time.Weekday) []models.CalendarDay {
	first := reference.FirstOfMonth()
	leading := (int(first.Weekday()) - int(weekStart) + 7) % 7

	open := make(map[int]bool)
	for _, s := range shifts {
		if s.IsActive {
			open[s.DayOfWeek] = true
		}
	}

	grid := make([]models.CalendarDay, 0, constants.GridCells)

	for i := leading; i > 0; i-- {
		grid = append(grid, cell(first.AddDays(-i), false, false))
	}

	days := dates.DaysIn(first.Year, first.Month)
	for day := 1; day <= days; day++ {
		d := dates.Date{Year: first.Year, Month: first.Month, Day: day}
		selectable := open[d.ISOWeekday()] && !d.Before(today)
		grid = append(grid, cell(d, true, selectable))
	}

	next := first.AddMonths(1)
	for i := 0; len(grid) < constants.GridCells; i++ {
		grid = append(grid, cell(next.AddDays(i), false, false))
	}

	return grid
}

func cell(d dates.Date, current, selectable bool) models.CalendarDay {
	return models.CalendarDay{
		Day:            d.Day,
		Month:          int(d.Month),
		Year:           d.Year,
		IsCurrentMonth: current,
		IsSelectable:   selectable,
	}
}

// ParseWeekStart maps a config value to the first column of the grid.
func ParseWeekStart(s string) time.Weekday {
	switch s {
	case "sunday", "sun":
		return time.Sunday
	default:
		return time.Monday
	}
}
