package appointments

import (
	"strings"

	"github.com/julianstephens/bookly/internal/cli"
	"github.com/julianstephens/bookly/internal/dates"
	"github.com/julianstephens/bookly/internal/models"
)

type AppointmentsCmd struct {
	List       ListCmd       `cmd:"" help:"List your appointments." default:"1"`
	Show       ShowCmd       `cmd:"" help:"Show one appointment."`
	Cancel     CancelCmd     `cmd:"" help:"Cancel an appointment."`
	Reschedule RescheduleCmd `cmd:"" help:"Move an appointment to another slot."`
}

type ListCmd struct {
	Past    bool `help:"Include past and closed appointments."`
	ShowIDs bool `help:"Show appointment IDs." name:"show-ids"`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	appts, err := ctx.Booking.MyAppointments(ctx.Ctx)
	if err != nil {
		return err
	}

	now := ctx.Booking.Now()
	loc := ctx.Booking.Location()
	shown := 0
	for _, a := range appts {
		if !c.Past && (a.Status.Terminal() || a.AppointmentTime.Before(now)) {
			continue
		}
		if shown == 0 {
			ctx.Println("Appointments:")
		}
		shown++

		line := cli.FormatAppointment(a, loc)
		if c.ShowIDs {
			line += "  (ID: " + a.ID + ")"
		}
		ctx.Printf("  %s\n", line)
	}

	if shown == 0 {
		if c.Past {
			ctx.Println("No appointments found")
		} else {
			ctx.Println("No upcoming appointments")
		}
	}
	return nil
}

type ShowCmd struct {
	ID string `arg:"" help:"Appointment ID."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	a, err := ctx.Booking.Appointment(ctx.Ctx, c.ID)
	if err != nil {
		return err
	}
	PrintDetail(ctx, *a)
	return nil
}

// PrintDetail writes the multi-line view of an appointment.
func PrintDetail(ctx *cli.Context, a models.Appointment) {
	loc := ctx.Booking.Location()
	ctx.Printf("Appointment %s\n", a.ID)
	if a.Business != nil && a.Business.Name != "" {
		ctx.Printf("  Business: %s\n", a.Business.Name)
	} else {
		ctx.Printf("  Business: %s\n", a.BusinessID)
	}
	if !a.AppointmentTime.IsZero() {
		ctx.Printf("  When:     %s\n", a.AppointmentTime.In(loc).Format("Mon Jan 2, 2006 15:04"))
	}
	ctx.Printf("  Status:   %s\n", a.Status.Label())
	if a.Worker != nil && a.Worker.Name != "" {
		ctx.Printf("  With:     %s\n", a.Worker.Name)
	}
	for _, s := range a.Services {
		name := s.Name
		if name == "" {
			name = s.ServiceID
		}
		ctx.Printf("  Service:  %s (%s, %dm)\n", name, cli.FormatPrice(s.Price), s.DurationMinutes)
	}
	ctx.Printf("  Total:    %s\n", cli.FormatPrice(a.TotalPrice))
	if a.Notes != "" {
		ctx.Printf("  Notes:    %s\n", a.Notes)
	}
}

type CancelCmd struct {
	ID  string `arg:"" help:"Appointment ID."`
	Yes bool   `help:"Skip the confirmation prompt." short:"y"`
}

func (c *CancelCmd) Run(ctx *cli.Context) error {
	if !c.Yes {
		ok, err := cli.Confirm("Cancel this appointment?")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("ℹ Nothing changed")
			return nil
		}
	}

	a, err := ctx.Booking.Cancel(ctx.Ctx, c.ID)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Appointment %s is now %s\n", a.ID, a.Status.Label())
	return nil
}

type RescheduleCmd struct {
	ID     string `arg:"" help:"Appointment ID."`
	Date   string `arg:"" help:"New date (YYYY-MM-DD, today, tomorrow)."`
	Time   string `arg:"" help:"New start time (HH:MM)."`
	Worker string `help:"Assign a different staff member."`
}

func (c *RescheduleCmd) Run(ctx *cli.Context) error {
	date, err := ctx.ParseDate(c.Date)
	if err != nil {
		return err
	}
	a, err := ctx.Booking.Reschedule(ctx.Ctx, c.ID, date, strings.TrimSpace(c.Time), c.Worker)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Rescheduled to %s\n", describeTime(a, date, c.Time, ctx))
	return nil
}

func describeTime(a *models.Appointment, date dates.Date, slot string, ctx *cli.Context) string {
	if a != nil && !a.AppointmentTime.IsZero() {
		return a.AppointmentTime.In(ctx.Booking.Location()).Format("Mon Jan 2, 2006 15:04")
	}
	return date.String() + " " + slot
}
