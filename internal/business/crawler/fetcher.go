package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"
)

// HTMLFetcher abstracts how pages are fetched so parsers and the scrape
// pipeline can be tested without network calls.
type HTMLFetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// Fetch error classes. Blocked and not-found responses are not retried.
var (
	ErrNotFound = errors.New("page not found")
	ErrBlocked  = errors.New("request blocked by site")
)

// RetryConfig controls exponential backoff for transient fetch failures.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetry matches the politeness the sites tolerate.
var DefaultRetry = RetryConfig{MaxAttempts: 3, BaseDelay: 2 * time.Second, MaxDelay: 30 * time.Second}

// HTTPFetcher fetches pages over HTTP with browser-like headers and retries.
type HTTPFetcher struct {
	client    *http.Client
	retry     RetryConfig
	userAgent string
}

// NewHTTPFetcher creates a fetcher with a sane timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client:    &http.Client{Timeout: 20 * time.Second},
		retry:     DefaultRetry,
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
	}
}

// NewHTTPFetcherWithRetry overrides the retry policy.
func NewHTTPFetcherWithRetry(retry RetryConfig) *HTTPFetcher {
	f := NewHTTPFetcher()
	f.retry = retry
	return f
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	var lastErr error
	attempts := f.retry.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(f.retry, attempt)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		body, err := f.fetchOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		// Permanent failures are not worth repeating.
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrBlocked) || errors.Is(err, context.Canceled) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "az,ru;q=0.8,en;q=0.6")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch url %s: %w", url, err)
	}
	switch {
	case resp.StatusCode == http.StatusOK:
		return resp.Body, nil
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", url, ErrNotFound)
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		resp.Body.Close()
		return nil, fmt.Errorf("%s status %d: %w", url, resp.StatusCode, ErrBlocked)
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}
}

// backoffDelay grows exponentially with jitter so concurrent workers do not
// hammer a recovering site in lockstep.
func backoffDelay(cfg RetryConfig, attempt int) time.Duration {
	delay := cfg.BaseDelay << (attempt - 1)
	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(delay)/2 + 1))
	return delay + jitter
}
