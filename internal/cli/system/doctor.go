package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/bookly/internal/cache"
	"github.com/julianstephens/bookly/internal/cli"
	"github.com/julianstephens/bookly/internal/constants"
	"github.com/julianstephens/bookly/internal/keyring"
)

type DoctorCmd struct {
	Offline bool `help:"Skip the backend check."`
}

type check struct {
	name string
	// skip, when non-empty, is why the check did not run.
	skip string
	run  func(ctx *cli.Context) error
	warn bool
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	loggedIn := ctx.Session.LoggedIn(ctx.Ctx)
	checks := []check{
		{name: "Configuration", run: func(ctx *cli.Context) error { return ctx.Config.Validate() }},
		{name: "Clock/timezone", run: checkClock},
		{name: "OS keyring", run: checkKeyring},
		{name: "Session", run: checkSession, warn: true},
		{name: "Cache", run: checkCache},
		{name: "Backend reachable", run: checkBackend},
	}
	if cmd.Offline {
		checks[len(checks)-1].skip = "--offline"
	} else if !loggedIn {
		checks[len(checks)-1].skip = "not logged in"
	}

	failed := false
	for _, c := range checks {
		if c.skip != "" {
			ctx.Printf("⊘ %s: SKIPPED (%s)\n", c.name, c.skip)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warn:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			failed = true
		}
	}

	ctx.Println()
	if failed {
		return errors.New("one or more checks failed")
	}
	ctx.Println("All checks passed")
	return nil
}

func checkClock(ctx *cli.Context) error {
	now := ctx.Booking.Now()
	if now.Year() < 2000 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	_, offset := now.Zone()
	if offset%(15*60) != 0 {
		return fmt.Errorf("unusual UTC offset %ds for %s", offset, ctx.Config.Timezone)
	}
	return nil
}

func checkKeyring(_ *cli.Context) error {
	if !keyring.IsAvailable() {
		return errors.New("OS keyring is not available; sessions cannot be stored")
	}
	return nil
}

func checkSession(ctx *cli.Context) error {
	if !ctx.Session.LoggedIn(ctx.Ctx) {
		return fmt.Errorf("not logged in; run '%s login'", constants.AppName)
	}
	if _, err := ctx.Session.User(); err != nil {
		return fmt.Errorf("stored profile unreadable: %w", err)
	}
	return nil
}

func checkCache(ctx *cli.Context) error {
	c, ok := ctx.Cache.(cache.Checker)
	if !ok {
		return nil
	}
	cctx, cancel := context.WithTimeout(ctx.Ctx, 5*time.Second)
	defer cancel()
	return c.Check(cctx)
}

func checkBackend(ctx *cli.Context) error {
	cctx, cancel := context.WithTimeout(ctx.Ctx, ctx.Config.RequestTimeout)
	defer cancel()
	if _, err := ctx.Client.GetProfile(cctx); err != nil {
		return fmt.Errorf("%s: %w", ctx.Config.APIBaseURL, err)
	}
	return nil
}
