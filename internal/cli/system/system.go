package system

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/bookly/internal/cli"
	"github.com/julianstephens/bookly/internal/keyring"
	"github.com/julianstephens/bookly/internal/tui"
)

type KeyringCmd struct {
	Status KeyringStatusCmd `cmd:"" help:"Check the OS keyring and stored session." default:"1"`
}

// KeyringStatusCmd checks the availability of the OS keyring
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		ctx.Println("❌ OS keyring is not available on this system")
		return errors.New("keyring unavailable")
	}
	ctx.Println("✓ OS keyring is available")

	if ctx.Session.LoggedIn(ctx.Ctx) {
		ctx.Println("✓ Session token is stored in keyring")
	} else {
		ctx.Println("ℹ No session stored in keyring")
	}
	return nil
}

type CacheCmd struct {
	Clear CacheClearCmd `cmd:"" help:"Drop every cached response."`
}

type CacheClearCmd struct{}

func (cmd *CacheClearCmd) Run(ctx *cli.Context) error {
	if err := ctx.Cache.Clear(ctx.Ctx); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	ctx.Printf("✓ Cache cleared (%s)\n", ctx.Config.CacheBackend)
	return nil
}

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	m := tui.NewModel(tui.Deps{
		Ctx:     ctx.Ctx,
		Flows:   ctx.Booking,
		Auth:    ctx.Client,
		Session: ctx.Session,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx.Ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("interactive session failed: %w", err)
	}
	return nil
}
