package browse

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/bookly/internal/booking"
	"github.com/julianstephens/bookly/internal/cli"
)

type BookCmd struct {
	ID       string   `arg:"" help:"Business ID."`
	Date     string   `arg:"" help:"Date (YYYY-MM-DD, today, tomorrow)."`
	Time     string   `arg:"" help:"Start time (HH:MM), one of the listed slots."`
	Services []string `help:"Service IDs to book." short:"s" required:"" sep:","`
	Worker   string   `help:"Preferred staff member ID."`
	Notes    string   `help:"Notes for the business."`
	Yes      bool     `help:"Skip the confirmation prompt." short:"y"`
}

func (c *BookCmd) Validate() error {
	if len(c.Services) == 0 {
		return errors.New("select at least one service with --services")
	}
	return nil
}

func (c *BookCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.Session.User(); err != nil {
		return err
	}

	date, err := ctx.ParseDate(c.Date)
	if err != nil {
		return err
	}

	quote, err := ctx.Booking.Prepare(ctx.Ctx, booking.BookingRequest{
		BusinessID: c.ID,
		ServiceIDs: c.Services,
		WorkerID:   c.Worker,
		Date:       date,
		Slot:       strings.TrimSpace(c.Time),
		Notes:      c.Notes,
	})
	if err != nil {
		return err
	}

	ctx.Println(FormatQuote(quote, ctx.Booking.Location()))

	if !c.Yes {
		ok, err := cli.Confirm("Book this appointment?")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("ℹ Booking cancelled")
			return nil
		}
	}

	appt, err := ctx.Booking.Confirm(ctx.Ctx, quote)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Booked (ID: %s), status %s\n", appt.ID, appt.Status.Label())
	return nil
}

// FormatQuote renders the summary shown before a booking is confirmed.
func FormatQuote(q *booking.Quote, loc *time.Location) string {
	var b strings.Builder
	when := q.Request.Date.In(loc).Format("Mon Jan 2, 2006")
	b.WriteString("Booking summary:\n")
	b.WriteString("  When:     " + when + " at " + q.Start.String() + "\n")
	for _, s := range q.Services {
		b.WriteString("  Service:  " + s.Name + " (" + cli.FormatPrice(s.Price) + ")\n")
	}
	b.WriteString("  Total:    " + cli.FormatPrice(q.Total))
	if q.Minutes > 0 {
		b.WriteString(", about " + formatMinutes(q.Minutes))
	}
	return b.String()
}

func formatMinutes(m int) string {
	h, rem := m/60, m%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", rem)
	case rem == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%02dm", h, rem)
	}
}
