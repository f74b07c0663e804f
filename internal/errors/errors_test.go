package errors

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/julianstephens/bookly/internal/api"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "simple error", err: errors.New("something went wrong"), expected: "Error: something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := Format(tt.err); result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	got := Formatf("failed to load %s", "business")
	if got != "Error: failed to load business" {
		t.Errorf("Formatf() = %q", got)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "unauthorized", err: fmt.Errorf("get /favorites: %w", api.ErrUnauthorized), want: msgSessionExpired},
		{name: "no session", err: api.ErrNoSession, want: msgSessionExpired},
		{
			name: "api message",
			err:  fmt.Errorf("book: %w", &api.APIError{Status: 409, Message: "Slot already taken", Path: "/appointments"}),
			want: "Slot already taken",
		},
		{name: "api without message", err: &api.APIError{Status: 500, Path: "/business"}, want: msgGeneric},
		{name: "transport", err: errors.New("dial tcp: connection refused"), want: msgGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCommandMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "no session", err: api.ErrNoSession, want: msgSessionExpired + " Run 'bookly login'."},
		{name: "api message", err: &api.APIError{Status: 400, Message: "Shift overlaps", Path: "/business-shifts"}, want: "Shift overlaps"},
		{
			name: "network",
			err:  fmt.Errorf("GET /business: %w", &url.Error{Op: "Get", URL: "http://localhost:3000/api/business", Err: errors.New("connection refused")}),
			want: msgGeneric,
		},
		{name: "local", err: errors.New(`invalid month "2026-13"`), want: `invalid month "2026-13"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CommandMessage(tt.err); got != tt.want {
				t.Errorf("CommandMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestFatal tests the Fatal function using exec helper process
func TestFatal(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL") == "1" {
		Fatal(errors.New("test error"))
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestFatal$")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if e, ok := err.(*exec.ExitError); ok && !e.Success() {
		if e.ExitCode() != 1 {
			t.Errorf("Fatal() exit code = %d, want 1", e.ExitCode())
		}
		if !strings.Contains(stderr.String(), "Error: test error") {
			t.Errorf("Fatal() stderr = %q, want to contain %q", stderr.String(), "Error: test error")
		}
	} else {
		t.Errorf("Fatal() did not exit with error: %v", err)
	}
}

// TestFatal_NilError tests that Fatal does nothing when passed a nil error
func TestFatal_NilError(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL_NIL") == "1" {
		Fatal(nil)
		os.Exit(0)
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestFatal_NilError$")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL_NIL=1")

	if err := cmd.Run(); err != nil {
		t.Errorf("Fatal(nil) should not exit, but got error: %v", err)
	}
}
