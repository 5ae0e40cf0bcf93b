// ABOUTME: HTTP client for the kudo backend with envelope unwrapping and bearer auth.
// ABOUTME: Every response passes through exactly one success/data/error envelope boundary.
package api

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"
)

const defaultTimeout = 30 * time.Second

// TokenSource supplies the current bearer token, or "" when the client holds
// no authenticated identity. It is consulted per request, never cached, so a
// login or logout between requests takes effect immediately.
type TokenSource func() string

// envelope is the backend's response wrapper. Data is unwrapped here and
// nowhere else; callers never see the wrapper.
type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Error      *envelopeError  `json:"error"`
	Pagination *Pagination     `json:"pagination"`
}

type envelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Pagination describes a paged list response.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	TotalPages int `json:"totalPages"`
}

// Client talks HTTP+JSON to the kudo backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPTimeout sets the per-request timeout.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithTokenSource attaches a bearer token source for authenticated requests.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a Client for the backend at baseURL (for example
// "https://boards.example.com/api/v1").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  "kudo-client",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Authenticated reports whether the client currently holds an identity token.
func (c *Client) Authenticated() bool {
	return c.tokens != nil && c.tokens() != ""
}

// do executes one request and returns the unwrapped data payload. withAuth
// controls whether the bearer token is attached; the anonymous create path
// must not carry one.
func (c *Client) do(ctx context.Context, method, path string, body any, withAuth bool) (json.RawMessage, *Pagination, error) {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", newRequestID())
	if withAuth && c.tokens != nil {
		if token := c.tokens(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, &NetworkError{APIError{Message: method + " " + path, Cause: err}}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &NetworkError{APIError{Message: "reading response body", Cause: err}}
	}

	var env envelope
	if len(raw) > 0 {
		// A non-JSON body on an error status still maps into the taxonomy
		// below; on a success status it is a malformed response.
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 400 {
			return nil, nil, fmt.Errorf("decoding response envelope: %w", err)
		}
	}

	code, message := "", ""
	if env.Error != nil {
		code, message = env.Error.Code, env.Error.Message
	}

	if resp.StatusCode >= 400 {
		return nil, nil, errorFromStatus(resp.StatusCode, code, message, raw)
	}

	// The backend sometimes reports failure inside a 200 envelope. That is
	// still a failure.
	if len(raw) > 0 && !env.Success && env.Error != nil {
		return nil, nil, errorFromStatus(resp.StatusCode, code, message, raw)
	}

	return env.Data, env.Pagination, nil
}

func newRequestID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
