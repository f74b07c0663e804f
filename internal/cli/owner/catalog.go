package owner

import (
	"errors"
	"fmt"
	"sort"

	"github.com/julianstephens/bookly/internal/booking"
	"github.com/julianstephens/bookly/internal/cli"
	"github.com/julianstephens/bookly/internal/models"
)

type ServiceCmd struct {
	Add    ServiceAddCmd    `cmd:"" help:"Add a service."`
	Update ServiceUpdateCmd `cmd:"" help:"Change a service."`
	Delete ServiceDeleteCmd `cmd:"" help:"Delete a service."`
}

type ServiceAddCmd struct {
	BusinessFlag `embed:""`
	Name         string  `arg:"" help:"Service name."`
	Price        float64 `help:"Price." required:""`
	Duration     int     `help:"Duration in minutes." required:""`
	Description  string  `help:"Description."`
	Category     string  `help:"Category."`
	Inactive     bool    `help:"Create the service hidden from customers."`
}

func (c *ServiceAddCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.RequireOwner(); err != nil {
		return err
	}
	svc, err := ctx.Booking.CreateService(ctx.Ctx, models.ServiceInput{
		BusinessID:      c.Business,
		Name:            c.Name,
		Description:     c.Description,
		Category:        c.Category,
		Price:           c.Price,
		DurationMinutes: c.Duration,
		IsActive:        !c.Inactive,
	})
	if err != nil {
		return err
	}
	ctx.Printf("✓ Added service %s (ID: %s)\n", svc.Name, svc.ID)
	return nil
}

type ServiceUpdateCmd struct {
	BusinessFlag `embed:""`
	ID           string   `arg:"" help:"Service ID."`
	Name         *string  `help:"New name."`
	Price        *float64 `help:"New price."`
	Duration     *int     `help:"New duration in minutes."`
	Description  *string  `help:"New description."`
	Category     *string  `help:"New category."`
	Show         bool     `help:"Offer the service to customers again." xor:"visibility"`
	Hide         bool     `help:"Stop offering the service." xor:"visibility"`
}

func (c *ServiceUpdateCmd) Validate() error {
	if c.Name == nil && c.Price == nil && c.Duration == nil && c.Description == nil && c.Category == nil && !c.Show && !c.Hide {
		return errors.New("nothing to update")
	}
	return nil
}

func (c *ServiceUpdateCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.RequireOwner(); err != nil {
		return err
	}

	services, err := ctx.Booking.Services(ctx.Ctx, c.Business)
	if err != nil {
		return err
	}
	var current *models.Service
	for i := range services {
		if services[i].ID == c.ID {
			current = &services[i]
			break
		}
	}
	if current == nil {
		return fmt.Errorf("service %s not found for business %s", c.ID, c.Business)
	}

	in := ApplyServiceUpdate(*current, c)
	svc, err := ctx.Booking.UpdateService(ctx.Ctx, c.ID, in)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Updated service %s\n", svc.Name)
	return nil
}

// ApplyServiceUpdate overlays the flags that were set onto the current service.
func ApplyServiceUpdate(current models.Service, c *ServiceUpdateCmd) models.ServiceInput {
	in := models.ServiceInput{
		BusinessID:      current.BusinessID,
		Name:            current.Name,
		Description:     current.Description,
		Category:        current.Category,
		Price:           current.Price,
		DurationMinutes: current.DurationMinutes,
		IsActive:        current.IsActive,
	}
	if in.BusinessID == "" {
		in.BusinessID = c.Business
	}
	if c.Name != nil {
		in.Name = *c.Name
	}
	if c.Price != nil {
		in.Price = *c.Price
	}
	if c.Duration != nil {
		in.DurationMinutes = *c.Duration
	}
	if c.Description != nil {
		in.Description = *c.Description
	}
	if c.Category != nil {
		in.Category = *c.Category
	}
	switch {
	case c.Show:
		in.IsActive = true
	case c.Hide:
		in.IsActive = false
	}
	return in
}

type ServiceDeleteCmd struct {
	BusinessFlag `embed:""`
	ID           string `arg:"" help:"Service ID."`
	Yes          bool   `help:"Skip the confirmation prompt." short:"y"`
}

func (c *ServiceDeleteCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.RequireOwner(); err != nil {
		return err
	}
	if !c.Yes {
		ok, err := cli.Confirm("Delete this service?")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("ℹ Nothing changed")
			return nil
		}
	}
	if err := ctx.Booking.DeleteService(ctx.Ctx, c.Business, c.ID); err != nil {
		return err
	}
	ctx.Println("✓ Service deleted")
	return nil
}

type StaffCmd struct {
	List   StaffListCmd   `cmd:"" help:"List staff." default:"1"`
	Add    StaffAddCmd    `cmd:"" help:"Add a staff member."`
	Remove StaffRemoveCmd `cmd:"" help:"Remove a staff member."`
}

type StaffListCmd struct {
	BusinessFlag `embed:""`
}

func (c *StaffListCmd) Run(ctx *cli.Context) error {
	workers, err := ctx.Booking.Workers(ctx.Ctx, c.Business)
	if err != nil {
		return err
	}
	if len(workers) == 0 {
		ctx.Println("No staff yet")
		return nil
	}
	ctx.Println("Staff:")
	for _, w := range workers {
		role := ""
		if w.Role != "" {
			role = " - " + w.Role
		}
		ctx.Printf("  %s (ID: %s)%s\n", w.Name, w.ID, role)
	}
	return nil
}

type StaffAddCmd struct {
	BusinessFlag `embed:""`
	Name         string `arg:"" help:"Staff member's name."`
	Role         string `help:"Job title."`
	Phone        string `help:"Phone number."`
	Email        string `help:"Email address."`
}

func (c *StaffAddCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.RequireOwner(); err != nil {
		return err
	}
	w, err := ctx.Booking.AddWorker(ctx.Ctx, models.WorkerInput{
		BusinessID: c.Business,
		Name:       c.Name,
		Role:       c.Role,
		Phone:      c.Phone,
		Email:      c.Email,
	})
	if err != nil {
		return err
	}
	ctx.Printf("✓ Added %s (ID: %s)\n", w.Name, w.ID)
	return nil
}

type StaffRemoveCmd struct {
	BusinessFlag `embed:""`
	ID           string `arg:"" help:"Staff member ID."`
}

func (c *StaffRemoveCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.RequireOwner(); err != nil {
		return err
	}
	if err := ctx.Booking.RemoveWorker(ctx.Ctx, c.Business, c.ID); err != nil {
		return err
	}
	ctx.Println("✓ Staff member removed")
	return nil
}

type ShiftsCmd struct {
	List ShiftsListCmd `cmd:"" help:"Show opening hours." default:"1"`
	Set  ShiftsSetCmd  `cmd:"" help:"Set the hours for one weekday."`
}

type ShiftsListCmd struct {
	BusinessFlag `embed:""`
}

func (c *ShiftsListCmd) Run(ctx *cli.Context) error {
	shifts, err := ctx.Booking.Shifts(ctx.Ctx, c.Business)
	if err != nil {
		return err
	}
	if len(shifts) == 0 {
		ctx.Println("No shifts configured")
		return nil
	}

	sorted := append([]models.Shift(nil), shifts...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].DayOfWeek < sorted[j].DayOfWeek })

	ctx.Println("Shifts:")
	for _, s := range sorted {
		status := "open"
		if !s.IsActive {
			status = "closed"
		}
		start, end, err := s.Window()
		if err != nil {
			ctx.Printf("  %-9s  [%s] invalid hours\n", cli.ISOWeekdayName(s.DayOfWeek), status)
			continue
		}
		overnight := ""
		if s.Wraps() {
			overnight = " (overnight)"
		}
		ctx.Printf("  %-9s  [%s] %s - %s%s\n", cli.ISOWeekdayName(s.DayOfWeek), status, start, end, overnight)
	}
	return nil
}

type ShiftsSetCmd struct {
	BusinessFlag `embed:""`
	Day          string `arg:"" help:"Weekday name or 1 (Monday) to 7 (Sunday)."`
	Start        string `arg:"" help:"Opening time (HH:MM)."`
	End          string `arg:"" help:"Closing time (HH:MM). Earlier than start for overnight hours."`
	Closed       bool   `help:"Keep the hours but mark the day closed."`
}

func (c *ShiftsSetCmd) Validate() error {
	_, err := cli.ParseISOWeekday(c.Day)
	return err
}

func (c *ShiftsSetCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.RequireOwner(); err != nil {
		return err
	}
	day, err := cli.ParseISOWeekday(c.Day)
	if err != nil {
		return err
	}

	shift, err := ctx.Booking.SetShift(ctx.Ctx, booking.ShiftChange{
		BusinessID: c.Business,
		DayOfWeek:  day,
		Start:      c.Start,
		End:        c.End,
		Active:     !c.Closed,
	})
	if err != nil {
		return err
	}
	ctx.Printf("✓ %s set to %s - %s\n", cli.ISOWeekdayName(shift.DayOfWeek), shift.StartTime, shift.EndTime)
	return nil
}
