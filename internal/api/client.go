package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenSource supplies the current session credential. An empty token means
// unauthenticated, in which case the Token header is omitted entirely.
type TokenSource interface {
	Token() string
}

// TransportError is a failure of the HTTP layer itself: a non-2xx status or
// a network-level error. It is always distinct from a business error carried
// inside a decoded envelope.
type TransportError struct {
	Status int
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("network response was not ok: %d from %s", e.Status, e.URL)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client issues envelope-carrying requests against the remote API. It owns
// nothing but transport concerns: URL assembly, the fixed header set, and the
// transport/envelope split of the error taxonomy.
type Client struct {
	baseURL string
	origin  string
	http    *http.Client
	tokens  TokenSource
	langFn  func() string
	logger  *slog.Logger
}

// NewClient builds a client for the given base URL. langFn resolves the Lang
// header per request so a preference change takes effect without rebuilding
// the client.
func NewClient(baseURL string, tokens TokenSource, langFn func() string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		origin:  originOf(baseURL),
		http:    &http.Client{Timeout: 30 * time.Second},
		tokens:  tokens,
		langFn:  langFn,
		logger:  logger.With("component", "api"),
	}
}

// BaseURL returns the configured API base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// Do issues one request and decodes the response envelope. body, when
// non-nil, is JSON-encoded. A nil error guarantees a 2xx status and a parsed
// envelope; interpreting the envelope code is the caller's job.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Envelope, error) {
	reqURL := c.baseURL + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Domain", c.origin)
	req.Header.Set("Lang", c.langFn())
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Token", token)
	}

	c.logger.Debug("issuing request", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{Status: resp.StatusCode, URL: reqURL}
	}

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decoding response envelope: %w", err)
	}

	c.logger.Debug("received envelope", "path", path, "code", env.Code)
	return &env, nil
}

// originOf reduces a URL to its scheme://host origin, the value the server
// expects in the Domain header.
func originOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return strings.TrimRight(rawURL, "/")
	}
	return u.Scheme + "://" + u.Host
}
