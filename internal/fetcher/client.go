package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/yendo/webmirror/internal/console"
)

// Client fetches pages and assets over HTTP(S).
//
// Design decision: One Client is shared by all workers because
// http.Client is safe for concurrent use and sharing it reuses
// connections across the many requests a single page can trigger.
type Client struct {
	// httpClient performs the requests. Redirects follow the default
	// policy; no cookies or authentication are configured.
	httpClient *http.Client

	// userAgent is the User-Agent header sent with every request.
	userAgent string

	// maxBodySize limits how many response bytes are read.
	maxBodySize int64

	// console receives the error line for every failed fetch.
	console *console.Console
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) Option {
	return func(c *Client) {
		c.maxBodySize = size
	}
}

// WithConsole sets the console handle used for fetch error reporting.
func WithConsole(out *console.Console) Option {
	return func(c *Client) {
		c.console = out
	}
}

// WithHTTPClient replaces the underlying http.Client.
// Used by tests to point the fetcher at an httptest server.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a Client with default settings.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		userAgent:   "webmirror/1.0 (+https://github.com/yendo/webmirror)",
		maxBodySize: 10 * 1024 * 1024, // 10MB
		console:     console.New(nil),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchText fetches a URL and returns the body as text, decoded
// according to the response's declared or sniffed character encoding.
func (c *Client) FetchText(ctx context.Context, url string) (string, error) {
	body, contentType, err := c.fetch(ctx, url)
	if err != nil {
		return "", err
	}
	defer body.Close()

	reader, err := charset.NewReader(body, contentType)
	if err != nil {
		// Undecodable charset declarations fall back to the raw bytes.
		reader = body
	}

	text, err := io.ReadAll(reader)
	if err != nil {
		c.report(url, err)
		return "", fmt.Errorf("failed to read body of %s: %w", url, err)
	}

	return string(text), nil
}

// FetchBytes fetches a URL and returns the raw response body.
func (c *Client) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	body, _, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		c.report(url, err)
		return nil, fmt.Errorf("failed to read body of %s: %w", url, err)
	}

	return data, nil
}

// fetch issues the GET request and returns the size-limited body along
// with the Content-Type header. Transport errors and non-2xx statuses
// are reported to the console before being returned.
func (c *Client) fetch(ctx context.Context, url string) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.report(url, err)
		return nil, "", fmt.Errorf("invalid request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.report(url, err)
		return nil, "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		err := fmt.Errorf("unexpected status %s", resp.Status)
		c.report(url, err)
		return nil, "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	limited := struct {
		io.Reader
		io.Closer
	}{
		Reader: io.LimitReader(resp.Body, c.maxBodySize),
		Closer: resp.Body,
	}

	return limited, resp.Header.Get("Content-Type"), nil
}

// report prints a fetch failure with the offending URL.
// Callers that receive the error skip the unit of work without
// reporting again.
func (c *Client) report(url string, err error) {
	c.console.Printf("Error fetching %s: %v\n", url, err)
}
