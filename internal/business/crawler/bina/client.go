package bina

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserClient fetches bina.az pages through a headless browser so the
// anti-bot interstitial resolves before we read the DOM. It satisfies
// crawler.HTMLFetcher and is shared by every request of one crawl run.
// All navigation goes through one tab, so Fetch is serialized by a mutex:
// concurrent callers would otherwise read each other's pages.
type BrowserClient struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	warmed bool
}

// NewBrowserClient starts a browser context with a session-long timeout.
func NewBrowserClient() (*BrowserClient, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	ctx, timeoutCancel := context.WithTimeout(ctx, 30*time.Minute)
	return &BrowserClient{
		ctx: ctx,
		cancel: func() {
			timeoutCancel()
			cancel()
		},
	}, nil
}

// Close releases browser resources.
func (c *BrowserClient) Close() {
	if c.cancel != nil {
		c.cancel()
	}
}

// Fetch navigates to url and returns the rendered document HTML.
func (c *BrowserClient) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.warmUp(); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	var html string
	var runErr error
	go func() {
		defer close(done)
		runErr = chromedp.Run(c.ctx,
			chromedp.Navigate(url),
			chromedp.Sleep(2*time.Second),
			chromedp.OuterHTML("html", &html),
		)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if runErr != nil {
		return nil, fmt.Errorf("browser fetch %s: %w", url, runErr)
	}
	return io.NopCloser(strings.NewReader(html)), nil
}

// warmUp visits the homepage once so the anti-bot check completes and its
// cookies stick to the browser session. Caller holds c.mu.
func (c *BrowserClient) warmUp() error {
	if c.warmed {
		return nil
	}
	if err := chromedp.Run(c.ctx,
		chromedp.Navigate("https://bina.az"),
		chromedp.Sleep(3*time.Second),
	); err != nil {
		return fmt.Errorf("warm up browser session: %w", err)
	}
	c.warmed = true
	return nil
}
