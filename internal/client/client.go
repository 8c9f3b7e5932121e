package client

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
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/authfront/internal/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxBodyBytes = 1 << 20

// Endpoint paths on the auth server.
const (
	PathLogin    = "/login"
	PathRegister = "/register"
	PathMe       = "/me"
	PathRefresh  = "/refresh"
)

// Config holds common client configuration
type Config struct {
	ServerURL string
	Timeout   time.Duration
	UserAgent string
	Debug     bool
}

// DefaultConfig returns a default client configuration
func DefaultConfig() Config {
	return Config{
		ServerURL: "http://localhost:3000",
		Timeout:   10 * time.Second,
		UserAgent: "authfront/dev",
	}
}

// Client talks to the auth API over JSON/HTTP.
type Client struct {
	baseURL   *url.URL
	timeout   time.Duration
	userAgent string
	transport http.RoundTripper
}

// Option customises a Client.
type Option func(*Client)

// WithTransport replaces the base transport (default http.DefaultTransport).
// Logging and tracing are layered on top of it.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = rt
	}
}

// New creates a Client from config.
func New(config Config, opts ...Option) (*Client, error) {
	if config.ServerURL == "" {
		return nil, errors.New("server URL is required")
	}

	base, err := url.Parse(strings.TrimRight(config.ServerURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", config.ServerURL)
	}

	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultConfig().UserAgent
	}

	c := &Client{
		baseURL:   base,
		timeout:   config.Timeout,
		userAgent: config.UserAgent,
		transport: http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.transport = otelhttp.NewTransport(logger.NewRequestLogger(log.Logger, c.transport))

	return c, nil
}

// httpClient returns an http.Client over rt with the configured timeout.
func (c *Client) httpClient(rt http.RoundTripper) *http.Client {
	return &http.Client{
		Transport: rt,
		Timeout:   c.timeout,
	}
}

func (c *Client) endpoint(path string) string {
	u := *c.baseURL
	u.Path = u.Path + path
	return u.String()
}

// newRequest builds a request with JSON body (if any), user agent and request id.
func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), rdr)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	if id, err := uuid.NewV7(); err == nil {
		req.Header.Set(logger.RequestIDHeader, id.String())
	}

	return req, nil
}

// do sends req and decodes a 2xx JSON reply into out (unless out is nil).
// Transport and decode failures wrap ErrNetwork; non-2xx replies wrap
// ErrUnauthorized around a *StatusError.
func (c *Client) do(hc *http.Client, req *http.Request, out any) error {
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %w", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %w", ErrUnauthorized, &StatusError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
		})
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %w", ErrNetwork, err)
	}

	return nil
}

// errorMessage extracts {"error": "..."} from an error body.
func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil {
		return e.Error
	}
	return ""
}
