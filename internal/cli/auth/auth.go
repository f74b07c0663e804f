package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/bookly/internal/api"
	"github.com/julianstephens/bookly/internal/cli"
	"github.com/julianstephens/bookly/internal/models"
)

type LoginCmd struct {
	Email    string `arg:"" help:"Account email."`
	Password string `help:"Account password. Prompted when omitted." env:"BOOKLY_PASSWORD"`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	password := c.Password
	if password == "" {
		p, err := cli.PromptPassword("Password")
		if err != nil {
			return err
		}
		password = p
	}

	resp, err := ctx.Client.Login(ctx.Ctx, models.Credentials{
		Email:    strings.TrimSpace(c.Email),
		Password: password,
	})
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.Status == 401 {
			return errors.New("invalid email or password")
		}
		return err
	}
	if err := ctx.Session.Login(ctx.Ctx, *resp); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	ctx.Printf("✓ Logged in as %s\n", displayName(resp.User))
	return nil
}

type RegisterCmd struct {
	Email    string `arg:"" help:"Account email."`
	Name     string `help:"Full name." required:""`
	Phone    string `help:"Phone number."`
	Owner    bool   `help:"Register as a business owner."`
	Password string `help:"Account password. Prompted when omitted." env:"BOOKLY_PASSWORD"`
}

func (c *RegisterCmd) Validate() error {
	if !strings.Contains(c.Email, "@") {
		return fmt.Errorf("invalid email: %s", c.Email)
	}
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("name cannot be empty")
	}
	return nil
}

func (c *RegisterCmd) Run(ctx *cli.Context) error {
	password := c.Password
	if password == "" {
		p, err := cli.PromptPassword("Choose a password")
		if err != nil {
			return err
		}
		again, err := cli.PromptPassword("Repeat password")
		if err != nil {
			return err
		}
		if p != again {
			return errors.New("passwords do not match")
		}
		password = p
	}

	role := models.RoleCustomer
	if c.Owner {
		role = models.RoleOwner
	}

	resp, err := ctx.Client.Register(ctx.Ctx, models.Registration{
		Email:    strings.TrimSpace(c.Email),
		Password: password,
		FullName: strings.TrimSpace(c.Name),
		Phone:    c.Phone,
		Role:     role,
	})
	if err != nil {
		return err
	}
	if err := ctx.Session.Login(ctx.Ctx, *resp); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	ctx.Printf("✓ Account created. Logged in as %s\n", displayName(resp.User))
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cli.Context) error {
	if err := ctx.Session.Logout(ctx.Ctx); err != nil {
		return err
	}
	ctx.Println("✓ Logged out")
	return nil
}

type WhoamiCmd struct {
	Refresh bool `help:"Fetch the profile from the server instead of the stored copy."`
}

func (c *WhoamiCmd) Run(ctx *cli.Context) error {
	if !ctx.Session.LoggedIn(ctx.Ctx) {
		ctx.Println("ℹ Not logged in")
		return nil
	}

	u, err := ctx.Session.User()
	if c.Refresh || err != nil {
		p, perr := ctx.Booking.Profile(ctx.Ctx)
		if perr != nil {
			return perr
		}
		u = *p
		if err := ctx.Session.SetUser(u); err != nil {
			return err
		}
	}

	ctx.Printf("%s <%s>\n", u.FullName, u.Email)
	if u.Phone != "" {
		ctx.Printf("  Phone: %s\n", u.Phone)
	}
	role := "customer"
	if u.IsOwner() {
		role = "business owner"
	}
	ctx.Printf("  Role:  %s\n", role)
	return nil
}

type ProfileCmd struct {
	Name  string `help:"New full name."`
	Phone string `help:"New phone number."`
}

func (c *ProfileCmd) Validate() error {
	if c.Name == "" && c.Phone == "" {
		return errors.New("nothing to update: pass --name or --phone")
	}
	return nil
}

func (c *ProfileCmd) Run(ctx *cli.Context) error {
	var update models.ProfileUpdate
	if c.Name != "" {
		update.FullName = &c.Name
	}
	if c.Phone != "" {
		update.Phone = &c.Phone
	}

	u, err := ctx.Booking.UpdateProfile(ctx.Ctx, update)
	if err != nil {
		return err
	}
	if err := ctx.Session.SetUser(*u); err != nil {
		return err
	}
	ctx.Println("✓ Profile updated")
	return nil
}

type PasswordCmd struct {
	Forgot ForgotPasswordCmd `cmd:"" help:"Email a password reset code."`
	Reset  ResetPasswordCmd  `cmd:"" help:"Set a new password with a reset code."`
}

type ForgotPasswordCmd struct {
	Email string `arg:"" help:"Account email."`
}

func (c *ForgotPasswordCmd) Run(ctx *cli.Context) error {
	if err := ctx.Client.ForgotPassword(ctx.Ctx, strings.TrimSpace(c.Email)); err != nil {
		return err
	}
	ctx.Println("✓ If the account exists, a reset code is on its way")
	return nil
}

type ResetPasswordCmd struct {
	Email    string `arg:"" help:"Account email."`
	Code     string `help:"Reset code from the email." required:""`
	Password string `help:"New password. Prompted when omitted." env:"BOOKLY_PASSWORD"`
}

func (c *ResetPasswordCmd) Run(ctx *cli.Context) error {
	password := c.Password
	if password == "" {
		p, err := cli.PromptPassword("New password")
		if err != nil {
			return err
		}
		password = p
	}

	err := ctx.Client.ResetPassword(ctx.Ctx, models.PasswordReset{
		Email:       strings.TrimSpace(c.Email),
		Code:        strings.TrimSpace(c.Code),
		NewPassword: password,
	})
	if err != nil {
		return err
	}
	ctx.Println("✓ Password reset. Log in with the new password")
	return nil
}

func displayName(u models.User) string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}
