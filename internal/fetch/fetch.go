// Package fetch retrieves monitored resources over HTTP. Transport
// failures, non-success statuses and timeouts all surface as ordinary
// errors; the scan loop isolates them per resource.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single fetch, headers through body.
const DefaultTimeout = 30 * time.Second

const userAgent = "jsmon/1.0 (+https://github.com/jsmon)"

// Client fetches raw resource bytes.
type Client struct {
	hc *http.Client
}

// NewClient returns a Client with the given per-request timeout.
// timeout <= 0 falls back to DefaultTimeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		hc: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads url and returns the exact response bytes. A non-2xx
// status is an error; the body is always fully read or not returned at all.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", url, err)
	}
	return body, nil
}
