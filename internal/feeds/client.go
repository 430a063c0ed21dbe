// Package feeds fetches the third-party data shown on the dashboard pages:
// news headlines, daily stock prices and today's football fixtures.
//
// Every client checks its API key before sending anything and reports
// failures as values, never panics:
//
//   - missing key        -> ErrMissingCredentials
//   - non-2xx response   -> *StatusError
//   - unreadable payload -> error wrapping ErrMalformedResponse
package feeds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

var (
	// ErrMissingCredentials is returned before any request when the client
	// has no API key.
	ErrMissingCredentials = errors.New("feeds: api key not configured")

	// ErrMalformedResponse is returned when a 2xx body cannot be understood.
	ErrMalformedResponse = errors.New("feeds: malformed response")
)

// StatusError is returned for any non-2xx HTTP response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("feeds: request failed with status %d", e.Code)
	}
	return fmt.Sprintf("feeds: request failed (%d): %s", e.Code, e.Body)
}

// Option customises client instantiation.
type Option func(*client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithBaseURL points the client at a different endpoint, e.g. a test server.
func WithBaseURL(base string) Option {
	return func(c *client) {
		if trimmed := strings.TrimSpace(base); trimmed != "" {
			c.baseURL = strings.TrimRight(trimmed, "/")
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d, Transport: c.httpClient.Transport}
		}
	}
}

// client is the shared transport for all feeds.
type client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func newClient(defaultBase, apiKey string, opts []Option) client {
	c := client{
		baseURL:    defaultBase,
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Configured reports whether an API key is set.
func (c client) Configured() bool {
	return c.apiKey != ""
}

// getJSON performs a GET and decodes the JSON body into v.
func (c client) getJSON(ctx context.Context, path string, query url.Values, header http.Header, v any) error {
	if !c.Configured() {
		return ErrMissingCredentials
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, vals := range header {
		for _, val := range vals {
			req.Header.Add(k, val)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Body: extractError(resp.Body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// extractError pulls a "message" or "error" field out of an error body,
// falling back to the trimmed body text.
func extractError(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return strings.TrimSpace(string(data))
	}
	if payload.Message != "" {
		return strings.TrimSpace(payload.Message)
	}
	if payload.Error != "" {
		return strings.TrimSpace(payload.Error)
	}
	return strings.TrimSpace(string(data))
}
