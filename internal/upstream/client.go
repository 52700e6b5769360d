// Package upstream is the JSON-over-POST transport shared by the schedule
// reads and the booking write. Every call is bounded by a fixed timeout and
// reports its duration and outcome to an optional Observer.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wolfman30/booking-engine/pkg/logging"
)

const (
	DefaultTimeout = 10 * time.Second

	maxBodyBytes = 1 << 20
)

// ErrMalformedBody is returned when a 2xx response cannot be decoded.
var ErrMalformedBody = errors.New("upstream: malformed response body")

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream: status %d: %s", e.Code, e.Body)
}

// Observer receives one event per upstream call.
type Observer interface {
	ObserveUpstreamCall(op, status string, seconds float64)
}

// Client posts operation payloads to upstream endpoints.
type Client struct {
	httpClient *http.Client
	logger     *logging.Logger
	observer   Observer
}

// Option configures a Client.
type Option func(*Client)

// WithObserver attaches an instrumentation hook.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// WithHTTPClient replaces the underlying http.Client. Its Timeout is kept as-is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a transport whose every request is bounded by timeout.
func New(timeout time.Duration, logger *logging.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Timeout returns the per-call budget.
func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}

// Post sends payload as JSON to url and decodes the response into out.
// op labels the call for logs and the observer.
func (c *Client) Post(ctx context.Context, op, url string, payload, out any) error {
	start := time.Now()
	err := c.post(ctx, url, payload, out)

	status := "ok"
	if err != nil {
		status = Classify(err)
		c.logger.Warn("upstream call failed",
			"op", op,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
	} else {
		c.logger.Debug("upstream call completed",
			"op", op,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	if c.observer != nil {
		c.observer.ObserveUpstreamCall(op, status, time.Since(start).Seconds())
	}
	return err
}

func (c *Client) post(ctx context.Context, url string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("upstream: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("upstream: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upstream: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("upstream: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(respBody)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		return &StatusError{Code: resp.StatusCode, Body: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	return nil
}

// Flag encodes a policy boolean the way the upstream expects it.
func Flag(b bool) int {
	if b {
		return 1
	}
	return 0
}
