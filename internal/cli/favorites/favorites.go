package favorites

import (
	"github.com/julianstephens/bookly/internal/cli"
)

type FavoritesCmd struct {
	List   ListCmd   `cmd:"" help:"List favorite businesses." default:"1"`
	Add    AddCmd    `cmd:"" help:"Add a business to favorites."`
	Remove RemoveCmd `cmd:"" help:"Remove a business from favorites."`
	Toggle ToggleCmd `cmd:"" help:"Add or remove a business, whichever applies."`
}

type ListCmd struct{}

func (c *ListCmd) Run(ctx *cli.Context) error {
	favs, err := ctx.Booking.Favorites(ctx.Ctx)
	if err != nil {
		return err
	}
	if len(favs) == 0 {
		ctx.Println("No favorites yet")
		return nil
	}

	ctx.Println("Favorites:")
	for _, f := range favs {
		name := f.BusinessID
		if f.Business != nil && f.Business.Name != "" {
			name = f.Business.Name
		}
		ctx.Printf("  %s (ID: %s)\n", name, f.BusinessID)
	}
	return nil
}

type AddCmd struct {
	ID string `arg:"" help:"Business ID."`
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	changed, err := ctx.Booking.SetFavorite(ctx.Ctx, c.ID, true)
	if err != nil {
		return err
	}
	if !changed {
		ctx.Println("ℹ Already a favorite")
		return nil
	}
	ctx.Println("✓ Added to favorites")
	return nil
}

type RemoveCmd struct {
	ID string `arg:"" help:"Business ID."`
}

func (c *RemoveCmd) Run(ctx *cli.Context) error {
	changed, err := ctx.Booking.SetFavorite(ctx.Ctx, c.ID, false)
	if err != nil {
		return err
	}
	if !changed {
		ctx.Println("ℹ Not a favorite")
		return nil
	}
	ctx.Println("✓ Removed from favorites")
	return nil
}

type ToggleCmd struct {
	ID string `arg:"" help:"Business ID."`
}

func (c *ToggleCmd) Run(ctx *cli.Context) error {
	added, err := ctx.Booking.ToggleFavorite(ctx.Ctx, c.ID)
	if err != nil {
		return err
	}
	if added {
		ctx.Println("✓ Added to favorites")
	} else {
		ctx.Println("✓ Removed from favorites")
	}
	return nil
}
