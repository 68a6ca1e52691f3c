// Package sheet is the HTTP client for the spreadsheet-backed record store.
//
// The store exposes a single endpoint:
//
//	GET  <endpoint>  -> JSON array of records
//	POST <endpoint>  {"rowIndex": n, "newStatus": "Open"|"Reserved"}
//
// rowIndex is zero-based into the most recently fetched sequence. Any
// non-2xx response is a failure; POST response bodies are not interpreted.
package sheet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/roach88/numberdesk/internal/record"
)

// Store is the record store consumed by the host.
type Store interface {
	Fetch(ctx context.Context) ([]record.Record, error)
	UpdateStatus(ctx context.Context, rowIndex int, status record.Status) error
}

// UpdateRequest is the POST body.
type UpdateRequest struct {
	RowIndex  int           `json:"rowIndex"`
	NewStatus record.Status `json:"newStatus"`
}

// DefaultTimeout bounds a single request when no timeout is configured.
const DefaultTimeout = 20 * time.Second

// maxBody caps how much of a response body is read.
const maxBody = 32 << 20

// Client talks to one record store endpoint.
// Client is safe for concurrent use.
type Client struct {
	endpoint string
	http     *http.Client
	limiter  *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithRateLimit throttles outbound requests to perMinute with the given
// burst. A non-positive perMinute disables throttling.
func WithRateLimit(perMinute, burst int) Option {
	return func(c *Client) {
		if perMinute <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), max(burst, 1))
	}
}

// NewClient creates a client for endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the configured endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Fetch loads the full record sequence.
// The sequence is decoded in full before it is returned; a malformed record
// fails the whole fetch.
func (c *Client) Fetch(ctx context.Context) ([]record.Record, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fetchError(0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fetchError(0, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fetchError(0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fetchError(resp.StatusCode, fmt.Errorf("read body: %w", err))
	}
	if !ok(resp.StatusCode) {
		return nil, fetchError(resp.StatusCode, nil)
	}

	var records []record.Record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fetchError(resp.StatusCode, fmt.Errorf("decode records: %w", err))
	}

	slog.Debug("fetched records",
		"rows", len(records),
		"duration", time.Since(start),
	)
	return records, nil
}

// UpdateStatus persists a new call-center status for the row at rowIndex.
//
// The body is sent as text/plain, matching what browsers send to the
// script endpoint without triggering a CORS preflight.
func (c *Client) UpdateStatus(ctx context.Context, rowIndex int, status record.Status) error {
	if !status.Valid() {
		return updateError(0, fmt.Errorf("invalid status %q", status))
	}
	if rowIndex < 0 {
		return updateError(0, fmt.Errorf("invalid row index %d", rowIndex))
	}

	payload, err := json.Marshal(UpdateRequest{RowIndex: rowIndex, NewStatus: status})
	if err != nil {
		return updateError(0, err)
	}

	if err := c.wait(ctx); err != nil {
		return updateError(0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return updateError(0, err)
	}
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return updateError(0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return updateError(resp.StatusCode, fmt.Errorf("read body: %w", err))
	}
	if !ok(resp.StatusCode) {
		return updateError(resp.StatusCode, nil)
	}
	if len(bytes.TrimSpace(body)) > 0 && !json.Valid(body) {
		return updateError(resp.StatusCode, fmt.Errorf("response is not JSON"))
	}

	slog.Debug("status updated", "row", rowIndex, "status", status)
	return nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func ok(status int) bool {
	return status >= 200 && status < 300
}
