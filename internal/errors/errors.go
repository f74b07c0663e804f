package errors

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/julianstephens/bookly/internal/api"
	"github.com/julianstephens/bookly/internal/constants"
	"github.com/julianstephens/bookly/internal/logger"
)

const (
	msgSessionExpired = "Your session has expired. Please log in again."
	msgGeneric        = "Something went wrong. Please try again."
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// UserMessage reduces err to the single line shown to the user. Auth
// failures become a login prompt, API errors keep the server's message and
// anything else is logged and replaced by a generic line.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, api.ErrUnauthorized) || errors.Is(err, api.ErrNoSession) {
		return msgSessionExpired
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	logger.Error("Unexpected failure", "error", err)
	return msgGeneric
}

// CommandMessage is UserMessage for the command line. Local failures such
// as a malformed date are shown as they are; server and network failures
// are reduced the same way the interactive UI reduces them.
func CommandMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, api.ErrUnauthorized) || errors.Is(err, api.ErrNoSession) {
		return fmt.Sprintf("%s Run '%s login'.", msgSessionExpired, constants.AppName)
	}
	var apiErr *api.APIError
	var urlErr *url.Error
	if errors.As(err, &apiErr) || errors.As(err, &urlErr) {
		return UserMessage(err)
	}
	return err.Error()
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
