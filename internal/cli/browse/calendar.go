package browse

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/bookly/internal/cli"
	"github.com/julianstephens/bookly/internal/constants"
	"github.com/julianstephens/bookly/internal/dates"
	"github.com/julianstephens/bookly/internal/models"
)

type CalendarCmd struct {
	ID    string `arg:"" help:"Business ID."`
	Month string `help:"Month to show (YYYY-MM). Defaults to the current month."`
}

func (c *CalendarCmd) Run(ctx *cli.Context) error {
	ref, err := ctx.ParseMonth(c.Month)
	if err != nil {
		return err
	}
	grid, err := ctx.Booking.MonthCalendar(ctx.Ctx, c.ID, ref)
	if err != nil {
		return err
	}

	ctx.Print(RenderMonth(grid, ref, ctx.Booking.WeekStart()))
	ctx.Println("\nDays marked * can be booked.")
	return nil
}

// RenderMonth draws a 6x7 grid as text. Overflow days are left blank and
// selectable days carry a trailing *.
func RenderMonth(grid []models.CalendarDay, ref dates.Date, weekStart time.Weekday) string {
	var b strings.Builder

	title := fmt.Sprintf("%s %d", ref.Month, ref.Year)
	width := constants.GridColumns * 4
	pad := (width - len(title)) / 2
	if pad < 0 {
		pad = 0
	}
	b.WriteString(strings.Repeat(" ", pad) + title + "\n")

	for i := 0; i < constants.GridColumns; i++ {
		wd := time.Weekday((int(weekStart) + i) % 7)
		fmt.Fprintf(&b, " %-3s", wd.String()[:2])
	}
	b.WriteString("\n")

	for i, cell := range grid {
		switch {
		case !cell.IsCurrentMonth:
			b.WriteString("    ")
		case cell.IsSelectable:
			fmt.Fprintf(&b, " %2d*", cell.Day)
		default:
			fmt.Fprintf(&b, " %2d ", cell.Day)
		}
		if (i+1)%constants.GridColumns == 0 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

type SlotsCmd struct {
	ID   string `arg:"" help:"Business ID."`
	Date string `arg:"" optional:"" help:"Date (YYYY-MM-DD, today, tomorrow). Defaults to today."`
}

func (c *SlotsCmd) Run(ctx *cli.Context) error {
	date, err := ctx.ParseDate(c.Date)
	if err != nil {
		return err
	}
	slots, err := ctx.Booking.AvailableSlots(ctx.Ctx, c.ID, date)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		ctx.Println("No available times")
		return nil
	}

	ctx.Printf("Available times on %s:\n", date.In(ctx.Booking.Location()).Format("Mon Jan 2, 2006"))
	for i := 0; i < len(slots); i += 6 {
		end := i + 6
		if end > len(slots) {
			end = len(slots)
		}
		ctx.Printf("  %s\n", strings.Join(slots[i:end], "  "))
	}
	return nil
}

func printShifts(ctx *cli.Context, shifts []models.Shift) {
	active := make([]models.Shift, 0, len(shifts))
	for _, s := range shifts {
		if s.IsActive {
			active = append(active, s)
		}
	}
	if len(active) == 0 {
		ctx.Println("  No opening hours published")
		return
	}
	sort.Slice(active, func(i, j int) bool { return active[i].DayOfWeek < active[j].DayOfWeek })

	for _, s := range active {
		start, end, err := s.Window()
		if err != nil {
			ctx.Printf("  %-9s  (invalid hours)\n", cli.ISOWeekdayName(s.DayOfWeek))
			continue
		}
		ctx.Printf("  %-9s  %s - %s\n", cli.ISOWeekdayName(s.DayOfWeek), start, end)
	}
}
