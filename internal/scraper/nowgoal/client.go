package nowgoal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/dgb173/Masivo/internal/pkg/config"
)

// StatusError is a non-200 answer from the site.
type StatusError struct {
	URL  string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s: %s", e.Code, e.URL, e.Body)
}

// Temporary reports whether the request is worth retrying.
func (e *StatusError) Temporary() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

// Client fetches plain pages (no JavaScript) with timeouts, pacing and bounded retries.
type Client struct {
	httpClient     *http.Client
	limiter        *rate.Limiter
	userAgent      string
	headers        map[string]string
	maxRetries     int
	backoffInitial time.Duration
	backoffMax     time.Duration
}

// NewClient builds the plain page client. A zero fetch.Timeout means 10s, and a zero
// RequestsPerSecond disables pacing.
func NewClient(site config.SiteConfig, fetch config.FetchConfig) *Client {
	timeout := fetch.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &Client{
		httpClient:     &http.Client{Timeout: timeout, Transport: transport},
		limiter:        newLimiter(fetch.RequestsPerSecond, fetch.Burst),
		userAgent:      site.UserAgent,
		headers:        fetch.Headers,
		maxRetries:     fetch.MaxRetries,
		backoffInitial: fetch.BackoffInitial,
		backoffMax:     fetch.BackoffMax,
	}
}

func newLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// Get downloads url. Connection errors, 5xx and 429 answers are retried with exponential
// backoff; any other status fails at once with a *StatusError.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	attempt := 0
	op := func() error {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		b, err := c.doRequest(ctx, url)
		if err == nil {
			body = b
			return nil
		}
		var se *StatusError
		if ctx.Err() != nil || (errors.As(err, &se) && !se.Temporary()) {
			return backoff.Permanent(err)
		}
		return err
	}

	err := backoff.RetryNotify(op, c.policy(ctx), func(err error, wait time.Duration) {
		slog.Debug("Retrying page fetch", "url", url, "attempt", attempt, "wait", wait, "error", err)
	})
	if err != nil {
		return nil, fmt.Errorf("get %s after %d attempt(s): %w", url, attempt, err)
	}
	return body, nil
}

func (c *Client) policy(ctx context.Context) backoff.BackOff {
	return retryPolicy(ctx, c.backoffInitial, c.backoffMax, c.maxRetries)
}

// retryPolicy allows at most retries retries after the first attempt and stops when ctx ends.
func retryPolicy(ctx context.Context, initial, maxInterval time.Duration, retries int) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if initial > 0 {
		b.InitialInterval = initial
	}
	if maxInterval > 0 {
		b.MaxInterval = maxInterval
	}
	b.MaxElapsedTime = 0
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

func (c *Client) doRequest(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, &StatusError{URL: url, Code: resp.StatusCode, Body: string(b)}
	}
	return io.ReadAll(resp.Body)
}
