package browse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/bookly/internal/cli"
)

type BusinessCmd struct {
	List     BusinessListCmd     `cmd:"" help:"List businesses." default:"1"`
	Show     BusinessShowCmd     `cmd:"" help:"Show one business."`
	Services BusinessServicesCmd `cmd:"" help:"List the services a business offers."`
	Reviews  BusinessReviewsCmd  `cmd:"" help:"List or add reviews."`
}

type BusinessListCmd struct {
	Category string `help:"Only show businesses in this category."`
	Search   string `help:"Case-insensitive match on name or address."`
	ShowIDs  bool   `help:"Show business IDs." name:"show-ids"`
}

func (c *BusinessListCmd) Run(ctx *cli.Context) error {
	list, err := ctx.Booking.ListBusinesses(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("failed to list businesses: %w", err)
	}

	search := strings.ToLower(strings.TrimSpace(c.Search))
	shown := 0
	for _, b := range list {
		if c.Category != "" && !strings.EqualFold(b.Category, c.Category) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(b.Name), search) &&
			!strings.Contains(strings.ToLower(b.Address.Format()), search) {
			continue
		}
		if shown == 0 {
			ctx.Println("Businesses:")
		}
		shown++

		idStr := ""
		if c.ShowIDs {
			idStr = fmt.Sprintf(" (ID: %s)", b.ID)
		}
		ctx.Printf("  %s%s - %s\n", b.Name, idStr, cli.FormatRating(b))
		if addr := b.Address.Format(); addr != "" {
			ctx.Printf("      %s\n", addr)
		}
	}

	if shown == 0 {
		ctx.Println("No businesses found")
	}
	return nil
}

type BusinessShowCmd struct {
	ID string `arg:"" help:"Business ID."`
}

func (c *BusinessShowCmd) Run(ctx *cli.Context) error {
	b, err := ctx.Booking.Business(ctx.Ctx, c.ID)
	if err != nil {
		return err
	}

	ctx.Printf("%s (%s)\n", b.Name, cli.FormatRating(*b))
	if b.Category != "" {
		ctx.Printf("  Category: %s\n", b.Category)
	}
	if addr := b.Address.Format(); addr != "" {
		ctx.Printf("  Address:  %s\n", addr)
	}
	if b.Phone != "" {
		ctx.Printf("  Phone:    %s\n", b.Phone)
	}
	if b.Description != "" {
		ctx.Printf("\n  %s\n", b.Description)
	}

	shifts, err := ctx.Booking.Shifts(ctx.Ctx, c.ID)
	if err != nil {
		return err
	}
	ctx.Println("\nOpening hours:")
	printShifts(ctx, shifts)
	return nil
}

type BusinessServicesCmd struct {
	ID  string `arg:"" help:"Business ID."`
	All bool   `help:"Include inactive services."`
}

func (c *BusinessServicesCmd) Run(ctx *cli.Context) error {
	services, err := ctx.Booking.Services(ctx.Ctx, c.ID)
	if err != nil {
		return err
	}

	shown := 0
	for _, s := range services {
		if !c.All && !s.IsActive {
			continue
		}
		if shown == 0 {
			ctx.Println("Services:")
		}
		shown++

		status := ""
		if !s.IsActive {
			status = " [inactive]"
		}
		ctx.Printf("  %s (ID: %s)%s - %s, %dm\n", s.Name, s.ID, status, cli.FormatPrice(s.Price), s.DurationMinutes)
		if s.Description != "" {
			ctx.Printf("      %s\n", s.Description)
		}
	}
	if shown == 0 {
		ctx.Println("No services offered")
	}
	return nil
}

type BusinessReviewsCmd struct {
	ID      string `arg:"" help:"Business ID."`
	Rate    int    `help:"Leave a review with this rating (1-5)."`
	Comment string `help:"Review text, used with --rate."`
}

func (c *BusinessReviewsCmd) Validate() error {
	if c.Comment != "" && c.Rate == 0 {
		return errors.New("--comment requires --rate")
	}
	if c.Rate != 0 && (c.Rate < 1 || c.Rate > 5) {
		return fmt.Errorf("rating must be between 1 and 5, got %d", c.Rate)
	}
	return nil
}

func (c *BusinessReviewsCmd) Run(ctx *cli.Context) error {
	if c.Rate != 0 {
		if _, err := ctx.Booking.AddReview(ctx.Ctx, c.ID, c.Rate, c.Comment); err != nil {
			return err
		}
		ctx.Println("✓ Review posted")
	}

	reviews, err := ctx.Booking.Reviews(ctx.Ctx, c.ID)
	if err != nil {
		return err
	}
	if len(reviews) == 0 {
		ctx.Println("No reviews yet")
		return nil
	}

	ctx.Println("Reviews:")
	for _, r := range reviews {
		n := clamp(r.Rating, 0, 5)
		stars := strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
		ctx.Printf("  %s", stars)
		if r.Comment != "" {
			ctx.Printf("  %s", r.Comment)
		}
		ctx.Println()
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
