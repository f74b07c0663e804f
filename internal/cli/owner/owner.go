package owner

import (
	"fmt"

	"github.com/julianstephens/bookly/internal/cli"
	"github.com/julianstephens/bookly/internal/dates"
	"github.com/julianstephens/bookly/internal/models"
)

// BusinessFlag selects the business an owner command acts on.
type BusinessFlag struct {
	Business string `help:"Business ID." env:"BOOKLY_BUSINESS" short:"b" required:""`
}

type OwnerCmd struct {
	Dashboard    DashboardCmd    `cmd:"" help:"Summary of today's appointments." default:"1"`
	Appointments AppointmentsCmd `cmd:"" help:"List the business's appointments."`
	Status       StatusCmd       `cmd:"" help:"Change an appointment's status."`
	Service      ServiceCmd      `cmd:"" help:"Manage services."`
	Staff        StaffCmd        `cmd:"" help:"Manage staff."`
	Shifts       ShiftsCmd       `cmd:"" help:"Manage opening hours."`
}

type DashboardCmd struct {
	BusinessFlag `embed:""`
}

func (c *DashboardCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.RequireOwner(); err != nil {
		return err
	}

	today := dates.DateOf(ctx.Booking.Now())
	d, err := ctx.Booking.Dashboard(ctx.Ctx, c.Business, today)
	if err != nil {
		return err
	}

	ctx.Printf("Dashboard for %s\n\n", today.In(ctx.Booking.Location()).Format("Monday, January 2"))
	for _, st := range models.AppointmentStatuses {
		ctx.Printf("  %-10s %d\n", st, d.Counts[st])
	}
	if d.Unknown > 0 {
		ctx.Printf("  %-10s %d\n", "unknown", d.Unknown)
	}
	ctx.Printf("\n  Upcoming:  %d\n", d.Upcoming)
	ctx.Printf("  Revenue:   %s\n", cli.FormatPrice(d.Revenue))

	ctx.Println("\nToday:")
	if len(d.Today) == 0 {
		ctx.Println("  Nothing booked")
		return nil
	}
	loc := ctx.Booking.Location()
	for _, a := range d.Today {
		ctx.Printf("  %s  (ID: %s)\n", cli.FormatAppointment(a, loc), a.ID)
	}
	return nil
}

type AppointmentsCmd struct {
	BusinessFlag `embed:""`
	Status       string `help:"Only show appointments with this status."`
	Date         string `help:"Only show appointments on this date (YYYY-MM-DD, today, tomorrow)."`
}

func (c *AppointmentsCmd) Validate() error {
	if c.Status != "" {
		if _, err := models.ParseAppointmentStatus(c.Status); err != nil {
			return err
		}
	}
	return nil
}

func (c *AppointmentsCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.RequireOwner(); err != nil {
		return err
	}

	var status models.AppointmentStatus
	if c.Status != "" {
		status, _ = models.ParseAppointmentStatus(c.Status)
	}
	var day dates.Date
	if c.Date != "" {
		d, err := ctx.ParseDate(c.Date)
		if err != nil {
			return err
		}
		day = d
	}

	appts, err := ctx.Booking.BusinessAppointments(ctx.Ctx, c.Business)
	if err != nil {
		return err
	}

	loc := ctx.Booking.Location()
	shown := 0
	for _, a := range appts {
		if status != "" && a.Status != status {
			continue
		}
		if !day.IsZero() && !dates.DateOf(a.AppointmentTime.In(loc)).Equal(day) {
			continue
		}
		if shown == 0 {
			ctx.Println("Appointments:")
		}
		shown++
		ctx.Printf("  %s  (ID: %s)\n", cli.FormatAppointment(a, loc), a.ID)
	}
	if shown == 0 {
		ctx.Println("No appointments found")
	}
	return nil
}

type StatusCmd struct {
	ID     string `arg:"" help:"Appointment ID."`
	Status string `arg:"" help:"New status: pending, confirmed, cancelled or completed."`
}

func (c *StatusCmd) Validate() error {
	_, err := models.ParseAppointmentStatus(c.Status)
	return err
}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.RequireOwner(); err != nil {
		return err
	}
	status, err := models.ParseAppointmentStatus(c.Status)
	if err != nil {
		return err
	}

	a, err := ctx.Booking.UpdateStatus(ctx.Ctx, c.ID, status)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	ctx.Printf("✓ Appointment %s is now %s\n", a.ID, a.Status.Label())
	return nil
}
