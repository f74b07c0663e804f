package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

func (m *Model) newLoginForm(email string) *huh.Form {
	m.loginForm = &LoginFormModel{Email: email}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&m.loginForm.Email).
				Validate(required),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.loginForm.Password).
				Validate(required),
		),
	).WithTheme(huh.ThemeDracula())
}

// newServiceForm offers the business's active services. Previously chosen
// IDs stay selected when returning from the calendar.
func (m *Model) newServiceForm(selected []string) *huh.Form {
	m.serviceForm = &ServiceFormModel{IDs: selected}

	chosen := make(map[string]bool, len(selected))
	for _, id := range selected {
		chosen[id] = true
	}
	options := make([]huh.Option[string], 0, len(m.services))
	for _, s := range m.services {
		label := fmt.Sprintf("%s · $%.2f · %dm", s.Name, s.Price, s.DurationMinutes)
		options = append(options, huh.NewOption(label, s.ID).Selected(chosen[s.ID]))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title(m.business.Name).
				Description("Choose one or more services").
				Options(options...).
				Value(&m.serviceForm.IDs).
				Validate(func(ids []string) error {
					if len(ids) == 0 {
						return errors.New("select at least one service")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

func (m *Model) newConfirmForm() *huh.Form {
	m.confirmForm = &ConfirmFormModel{}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Book this appointment?").
				Affirmative("Book").
				Negative("Back").
				Value(&m.confirmForm.Book),
		),
	).WithTheme(huh.ThemeDracula())
}
