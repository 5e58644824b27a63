// Package fetch provides the shared HTTP client for the bot's read-only JSON
// APIs (scoreboard, news, odds, video search). It bounds every request with
// a timeout and retries transient failures with exponential backoff.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/corpix/uarand"
	domerrors "github.com/sourcehf/convo/internal/errors"
	"github.com/sourcehf/convo/internal/metrics"
)

// Client is an HTTP client for JSON APIs with bounded timeouts and retries.
type Client struct {
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	metrics    *metrics.Metrics
}

// NewClient creates a fetch client. timeout bounds a single request attempt;
// maxRetries is the number of retry attempts after the first try.
func NewClient(timeout time.Duration, maxRetries int) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		maxRetries: maxRetries,
		retryDelay: time.Second,
	}
}

// SetMetrics enables per-request instrumentation labeled by upstream host.
func (c *Client) SetMetrics(m *metrics.Metrics) {
	c.metrics = m
}

// GetJSON performs a GET request and decodes the JSON response body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	body, err := c.get(ctx, url)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return domerrors.NewFetchError(url, 0, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// get performs a GET request with retries and returns the response body.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	var body []byte
	start := time.Now()

	err := RetryWithBackoff(ctx, c.maxRetries, c.retryDelay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", uarand.GetRandom())
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return domerrors.NewFetchError(rawURL, 0, err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			ferr := domerrors.NewFetchError(rawURL, resp.StatusCode, fmt.Errorf("unexpected status"))
			switch resp.StatusCode {
			case http.StatusTooManyRequests,
				http.StatusBadGateway,
				http.StatusServiceUnavailable,
				http.StatusGatewayTimeout:
				return ferr // retryable
			default:
				return Permanent(ferr) // 4xx and the rest: retrying will not help
			}
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return domerrors.NewFetchError(rawURL, resp.StatusCode, fmt.Errorf("read body: %w", err))
		}
		return nil
	})

	status := "success"
	if err != nil {
		status = "error"
	}
	c.metrics.RecordFetch(hostLabel(rawURL), status, time.Since(start).Seconds())

	if err != nil {
		return nil, err
	}
	return body, nil
}

// hostLabel reduces a request URL to its host for metric labels.
func hostLabel(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}
