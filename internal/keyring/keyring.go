package keyring

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/zalando/go-keyring"

	"github.com/julianstephens/bookly/internal/constants"
	"github.com/julianstephens/bookly/internal/models"
)

var (
	// ErrNotFound is returned when no credentials are found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Store keeps the session credentials in the OS keyring under fixed keys.
type Store struct {
	service string
}

func New() *Store {
	return &Store{service: constants.AppName}
}

func (s *Store) get(user string) (string, error) {
	v, err := keyring.Get(s.service, user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		// Wrap other keyring errors as unavailable
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return v, nil
}

func (s *Store) delete(user string) error {
	err := keyring.Delete(s.service, user)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete %s from keyring: %w", user, err)
	}
	return nil
}

// GetToken retrieves the bearer token.
// Returns ErrNotFound if no token is stored.
func (s *Store) GetToken() (string, error) {
	return s.get(constants.KeyringUserAccessToken)
}

func (s *Store) SaveToken(token string) error {
	if token == "" {
		return errors.New("token cannot be empty")
	}
	if err := keyring.Set(s.service, constants.KeyringUserAccessToken, token); err != nil {
		return fmt.Errorf("failed to store token in keyring: %w", err)
	}
	return nil
}

func (s *Store) DeleteToken() error {
	return s.delete(constants.KeyringUserAccessToken)
}

// GetUser returns the profile cached alongside the token.
func (s *Store) GetUser() (models.User, error) {
	raw, err := s.get(constants.KeyringUserProfile)
	if err != nil {
		return models.User{}, err
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return models.User{}, fmt.Errorf("stored profile is corrupt: %w", err)
	}
	return u, nil
}

func (s *Store) SaveUser(u models.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := keyring.Set(s.service, constants.KeyringUserProfile, string(data)); err != nil {
		return fmt.Errorf("failed to store profile in keyring: %w", err)
	}
	return nil
}

// Purge removes every credential this application stored. Missing entries
// are not an error.
func (s *Store) Purge() error {
	return errors.Join(s.DeleteToken(), s.delete(constants.KeyringUserProfile))
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	// If the error is ErrNotFound, the keyring is available but empty
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

// TokenExpired reads the exp claim without verifying the signature; the
// server is the one that verifies. Tokens that are not JWTs or carry no exp
// are reported as not expired.
func TokenExpired(token string, now time.Time, leeway time.Duration) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Add(leeway).Before(exp.Time)
}
