package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/julianstephens/bookly/internal/constants"
	"github.com/julianstephens/bookly/internal/logger"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// TokenSource supplies the bearer token for authenticated requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type Options struct {
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

// Client is a thin JSON client for the booking backend.
type Client struct {
	baseURL        string
	http           *http.Client
	tokens         TokenSource
	limiter        *rate.Limiter
	maxRetries     int
	retryDelay     time.Duration
	onUnauthorized func(context.Context)
}

type Option func(*Client)

// WithHTTPClient replaces the default traced client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithUnauthorizedHandler registers fn to run when an authenticated request
// comes back 401.
func WithUnauthorizedHandler(fn func(context.Context)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func NewClient(opts Options, tokens TokenSource, options ...Option) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultRequestTimeout
	}
	limit := rate.Inf
	if opts.RateLimitRPS > 0 {
		limit = rate.Limit(opts.RateLimitRPS)
	}
	burst := opts.RateLimitBurst
	if burst < 1 {
		burst = 1
	}

	c := &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tokens:     tokens,
		limiter:    rate.NewLimiter(limit, burst),
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
	}
	for _, o := range options {
		o(c)
	}
	return c
}

// IsPublic reports whether path is sent without credentials.
func IsPublic(path string) bool {
	for _, p := range constants.PublicEndpoints {
		if path == p {
			return true
		}
	}
	return false
}

type request struct {
	method  string
	path    string
	body    any
	out     any
	headers http.Header
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, request{method: http.MethodGet, path: path, out: out})
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	return c.do(ctx, request{method: method, path: path, body: body, out: out})
}

// do sends r. GETs are retried up to maxRetries times, with a fixed delay,
// on transport errors and 5xx responses. Nothing else is retried.
func (c *Client) do(ctx context.Context, r request) error {
	var payload []byte
	if r.body != nil {
		var err error
		if payload, err = json.Marshal(r.body); err != nil {
			return fmt.Errorf("encode %s %s: %w", r.method, r.path, err)
		}
	}

	attempts := 1
	if r.method == http.MethodGet {
		attempts += c.maxRetries
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		retry, err := c.attempt(ctx, r, payload, attempt)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			return err
		}
		logger.Warn("Retrying request", "method", r.method, "path", r.path, "attempt", attempt, "error", err)
	}
	return lastErr
}

// attempt performs one round trip and reports whether a failure may be retried.
func (c *Client) attempt(ctx context.Context, r request, payload []byte, n int) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, err
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, body)
	if err != nil {
		return false, fmt.Errorf("build %s %s: %w", r.method, r.path, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(constants.RequestIDHeader, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range r.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	public := IsPublic(r.path)
	if !public {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return false, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Debug("API request failed", "method", r.method, "path", r.path, "attempt", n, "request_id", requestID, "error", err)
		return true, fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	logger.Debug("API request",
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"attempt", n,
		"duration", time.Since(start),
		"request_id", requestID,
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if r.out == nil || resp.StatusCode == http.StatusNoContent {
			_, _ = io.Copy(io.Discard, resp.Body)
			return false, nil
		}
		if err := json.NewDecoder(resp.Body).Decode(r.out); err != nil {
			if errors.Is(err, io.EOF) {
				return false, nil
			}
			return false, fmt.Errorf("decode %s %s: %w", r.method, r.path, err)
		}
		return false, nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode == http.StatusUnauthorized && !public {
		logger.Warn("Session rejected by server", "path", r.path, "request_id", requestID)
		if c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return false, fmt.Errorf("%s %s: %w", r.method, r.path, ErrUnauthorized)
	}

	apiErr := &APIError{
		Status:    resp.StatusCode,
		Message:   parseErrorMessage(raw),
		Path:      r.path,
		RequestID: requestID,
	}
	if resp.StatusCode >= 500 {
		logger.Error("API server error", "path", r.path, "status", resp.StatusCode, "request_id", requestID)
		return true, apiErr
	}
	return false, apiErr
}

func escape(id string) string {
	return url.PathEscape(id)
}
