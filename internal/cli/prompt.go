package cli

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
)

// PromptPassword asks for a secret on the terminal with masked input.
func PromptPassword(title string) (string, error) {
	var value string
	err := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("required")
			}
			return nil
		}).
		Value(&value).
		Run()
	if err != nil {
		return "", err
	}
	return value, nil
}

// Confirm asks a yes/no question. Aborting the prompt counts as no.
func Confirm(title string) (bool, error) {
	ok := false
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}
