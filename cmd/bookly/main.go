package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/bookly/internal/cli"
	"github.com/julianstephens/bookly/internal/cli/appointments"
	"github.com/julianstephens/bookly/internal/cli/auth"
	"github.com/julianstephens/bookly/internal/cli/browse"
	"github.com/julianstephens/bookly/internal/cli/favorites"
	"github.com/julianstephens/bookly/internal/cli/owner"
	"github.com/julianstephens/bookly/internal/cli/system"
	"github.com/julianstephens/bookly/internal/config"
	"github.com/julianstephens/bookly/internal/constants"
	apperrors "github.com/julianstephens/bookly/internal/errors"
	"github.com/julianstephens/bookly/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"path" env:"BOOKLY_CONFIG"`
	EnvFile string `help:"Dotenv file to load before reading the environment." type:"path" name:"env-file"`
	Debug   bool   `help:"Log debug output to stderr and the log file."`

	Tui      system.TuiCmd      `cmd:"" help:"Launch the interactive booking UI." default:"1"`
	Login    auth.LoginCmd      `cmd:"" help:"Log in and store the session in the OS keyring."`
	Register auth.RegisterCmd   `cmd:"" help:"Create an account and log in."`
	Logout   auth.LogoutCmd     `cmd:"" help:"Log out and forget the stored session."`
	Whoami   auth.WhoamiCmd     `cmd:"" help:"Show the logged in user."`
	Profile  auth.ProfileCmd    `cmd:"" help:"Update your name or phone number."`
	Password auth.PasswordCmd   `cmd:"" help:"Recover a forgotten password."`

	Business     browse.BusinessCmd           `cmd:"" help:"Browse businesses, services and reviews."`
	Calendar     browse.CalendarCmd           `cmd:"" help:"Show the bookable days of a month."`
	Slots        browse.SlotsCmd              `cmd:"" help:"Show available start times for a day."`
	Book         browse.BookCmd               `cmd:"" help:"Book an appointment."`
	Appointments appointments.AppointmentsCmd `cmd:"" help:"Manage your appointments." aliases:"appts"`
	Favorites    favorites.FavoritesCmd       `cmd:"" help:"Manage favorite businesses." aliases:"favs"`
	Owner        owner.OwnerCmd               `cmd:"" help:"Run a business you own."`

	Keyring system.KeyringCmd `cmd:"" help:"Inspect the OS keyring."`
	Cache   system.CacheCmd   `cmd:"" help:"Manage the local response cache."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks on the local setup and backend."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Book salon and barber appointments from the terminal"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.Load(config.Options{ConfigFile: CLI.Config, EnvFile: CLI.EnvFile})
	apperrors.Fatal(err)
	if CLI.Debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		apperrors.Fatalf("invalid configuration: %v", err)
	}

	if err := logger.Init(logger.Config{
		Debug:       cfg.Debug,
		ConfigDir:   cfg.ConfigDir,
		Interactive: ctx.Command() == "tui",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx, err := cli.NewContext(sigCtx, cfg)
	apperrors.Fatal(err)

	err = ctx.Run(appCtx)
	appCtx.Close()
	if err != nil {
		logger.Error("command failed", "command", ctx.Command(), "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s\n", apperrors.CommandMessage(err))
		os.Exit(1)
	}
}
