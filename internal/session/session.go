package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/bookly/internal/api"
	"github.com/julianstephens/bookly/internal/cache"
	"github.com/julianstephens/bookly/internal/constants"
	"github.com/julianstephens/bookly/internal/keyring"
	"github.com/julianstephens/bookly/internal/logger"
	"github.com/julianstephens/bookly/internal/models"
)

// CredentialStore is the secure storage a session persists into.
type CredentialStore interface {
	GetToken() (string, error)
	SaveToken(token string) error
	GetUser() (models.User, error)
	SaveUser(u models.User) error
	Purge() error
}

// Session owns the signed-in user's credentials and query cache.
type Session struct {
	creds CredentialStore
	cache cache.Cache
	now   func() time.Time

	mu       sync.Mutex
	onLogout []func()
}

func New(creds CredentialStore, c cache.Cache) *Session {
	return &Session{creds: creds, cache: c, now: time.Now}
}

// OnLogout registers fn to run after credentials are purged.
func (s *Session) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}

// Token returns the stored bearer token. A missing token, or one whose exp
// has passed, yields api.ErrNoSession; an expired token is purged first.
func (s *Session) Token(ctx context.Context) (string, error) {
	token, err := s.creds.GetToken()
	if errors.Is(err, keyring.ErrNotFound) {
		return "", api.ErrNoSession
	}
	if err != nil {
		return "", err
	}
	if keyring.TokenExpired(token, s.now(), constants.TokenExpiryLeeway) {
		logger.Info("Stored token has expired")
		if err := s.Logout(ctx); err != nil {
			logger.Warn("Failed to clear expired session", "error", err)
		}
		return "", api.ErrNoSession
	}
	return token, nil
}

func (s *Session) LoggedIn(ctx context.Context) bool {
	_, err := s.Token(ctx)
	return err == nil
}

// Login stores the credentials from a successful auth response.
func (s *Session) Login(ctx context.Context, resp models.AuthResponse) error {
	if resp.Token == "" {
		return errors.New("server returned no token")
	}
	if err := s.creds.SaveToken(resp.Token); err != nil {
		return err
	}
	if err := s.creds.SaveUser(resp.User); err != nil {
		return err
	}
	if err := s.cache.DeleteOwner(ctx, resp.User.ID); err != nil {
		logger.Warn("Failed to drop cached user data", "error", err)
	}
	logger.Info("Logged in", "user", resp.User.ID, "role", resp.User.Role)
	return nil
}

// Logout purges secure storage and the signed-out user's cached data.
// Shared catalog entries and other users' entries stay.
func (s *Session) Logout(ctx context.Context) error {
	u, _ := s.creds.GetUser()
	if err := s.creds.Purge(); err != nil {
		return fmt.Errorf("failed to purge credentials: %w", err)
	}
	if err := s.cache.DeleteOwner(ctx, u.ID); err != nil {
		logger.Warn("Failed to drop cached user data on logout", "error", err)
	}

	s.mu.Lock()
	hooks := append([]func(){}, s.onLogout...)
	s.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
	return nil
}

// User returns the profile saved at login.
func (s *Session) User() (models.User, error) {
	u, err := s.creds.GetUser()
	if errors.Is(err, keyring.ErrNotFound) {
		return models.User{}, api.ErrNoSession
	}
	return u, err
}

// SetUser replaces the stored profile after an update.
func (s *Session) SetUser(u models.User) error {
	return s.creds.SaveUser(u)
}

func (s *Session) Cache() cache.Cache {
	return s.cache
}

func (s *Session) Invalidate(ctx context.Context, keys ...cache.Key) {
	if err := s.cache.Delete(ctx, keys...); err != nil {
		logger.Warn("Failed to invalidate cache", "error", err)
	}
}

func (s *Session) InvalidateKind(ctx context.Context, kinds ...cache.Kind) {
	if err := s.cache.DeleteKind(ctx, kinds...); err != nil {
		logger.Warn("Failed to invalidate cache", "error", err)
	}
}

// HandleUnauthorized is wired into the API client and runs on every 401.
func (s *Session) HandleUnauthorized(ctx context.Context) {
	logger.Warn("Server rejected the session, logging out")
	if err := s.Logout(ctx); err != nil {
		logger.Error("Failed to purge session after 401", "error", err)
	}
}
