// Package feed implements model.FeedSource over the backend's HTTP JSON API.
package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v5"

	"github.com/tinytelemetry/soclens/internal/model"
	"github.com/tinytelemetry/soclens/internal/projector"
)

const (
	alertsPath = "/api/alerts"
	statsPath  = "/api/stats"
	healthPath = "/api/health"

	// maxBodySize caps how much of a response body is read.
	maxBodySize = 4 << 20
)

// Client fetches the alert and stats feeds from a backend base URL.
type Client struct {
	base       string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient validates baseURL and returns a Client for it. Per-request
// deadlines come from the caller's context.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("feed: parse backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("feed: backend url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("feed: backend url %q: missing host", baseURL)
	}

	c := &Client{
		base:       strings.TrimRight(u.String(), "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized backend base URL.
func (c *Client) BaseURL() string {
	return c.base
}

// FetchAlerts fetches and decodes the alert feed.
func (c *Client) FetchAlerts(ctx context.Context) ([]model.AlertPayload, error) {
	body, err := c.get(ctx, alertsPath)
	if err != nil {
		return nil, err
	}
	return projector.DecodeAlerts(body)
}

// FetchStats fetches and decodes the stats feed.
func (c *Client) FetchStats(ctx context.Context) (model.StatsPayload, error) {
	body, err := c.get(ctx, statsPath)
	if err != nil {
		return model.StatsPayload{}, err
	}
	return projector.DecodeStats(body)
}

// Probe checks that the backend answers its health endpoint, retrying with
// backoff up to attempts times. It is only used before polling starts.
func (c *Client) Probe(ctx context.Context, attempts uint) error {
	if attempts == 0 {
		attempts = 1
	}
	r := retry.New(
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.DelayType(retry.BackOffDelay),
	)
	return r.Do(func() error {
		tCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		_, err := c.get(tCtx, healthPath)
		return err
	})
}

// get performs a GET and returns the body of a 2xx response. Every failure
// is wrapped with model.ErrTransport.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, fmt.Errorf("feed: build request %s: %w: %v", path, model.ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed: GET %s: %w: %v", path, model.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, fmt.Errorf("feed: GET %s: %w: status %d", path, model.ErrTransport, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("feed: read %s: %w: %v", path, model.ErrTransport, err)
	}
	return body, nil
}
