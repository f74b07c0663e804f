// Package clitest runs commands against an in-process backend.
package clitest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/bookly/internal/cli"
	"github.com/julianstephens/bookly/internal/config"
	"github.com/julianstephens/bookly/internal/constants"
	"github.com/julianstephens/bookly/internal/models"
)

type Env struct {
	*cli.Context
	Server *httptest.Server
	Output *bytes.Buffer
}

// New starts h as the backend and returns a context wired to it with a
// mocked keyring and a throwaway sqlite cache.
func New(t *testing.T, h http.Handler) *Env {
	t.Helper()
	gokeyring.MockInit()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		APIBaseURL:     srv.URL,
		RequestTimeout: 5 * time.Second,
		RateLimitRPS:   1000,
		RateLimitBurst: 100,
		CacheBackend:   constants.CacheBackendSQLite,
		CachePath:      filepath.Join(t.TempDir(), "cache.db"),
		CacheTTL:       time.Minute,
		Timezone:       "UTC",
		WeekStart:      "monday",
		ConfigDir:      t.TempDir(),
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("invalid test config: %v", err)
	}

	ctx, err := cli.NewContext(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewContext() failed: %v", err)
	}
	t.Cleanup(func() { ctx.Close() })

	// Leftovers from another test sharing the mock keyring.
	_ = ctx.Session.Logout(ctx.Ctx)

	out := &bytes.Buffer{}
	ctx.Out = out
	return &Env{Context: ctx, Server: srv, Output: out}
}

// Login stores a session for u without talking to the backend.
func (e *Env) Login(t *testing.T, u models.User) {
	t.Helper()
	if err := e.Session.Login(e.Ctx, models.AuthResponse{Token: "test-token", User: u}); err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
