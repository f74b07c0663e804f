package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthorized is returned when the server rejects the bearer token.
	// Stored credentials have already been purged when it is returned.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNoSession is returned before any request is sent when no usable
	// token is stored.
	ErrNoSession = errors.New("not logged in")
)

// APIError is a non-2xx response other than an authenticated 401.
type APIError struct {
	Status    int
	Message   string
	Path      string
	RequestID string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s returned %d", e.Path, e.Status)
	}
	return fmt.Sprintf("%s returned %d: %s", e.Path, e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 404
}

// errorBody covers the shapes the backend uses: {"message": "..."},
// {"message": ["...", "..."]} for validation failures, and {"error": "..."}.
type errorBody struct {
	Message json.RawMessage `json:"message"`
	Error   string          `json:"error"`
}

func parseErrorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return strings.TrimSpace(string(body))
	}

	if len(eb.Message) > 0 {
		var single string
		if err := json.Unmarshal(eb.Message, &single); err == nil && single != "" {
			return single
		}
		var many []string
		if err := json.Unmarshal(eb.Message, &many); err == nil && len(many) > 0 {
			return strings.Join(many, "; ")
		}
	}
	return eb.Error
}
