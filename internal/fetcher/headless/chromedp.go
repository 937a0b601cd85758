// Package headless renders pages in headless Chrome so links injected by scripts can be extracted.
package headless

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/JakeFAU/linkdiff/internal/fetcher"
)

const (
	defaultNavigationTimeout = 25 * time.Second
	defaultSettleWindow      = 3 * time.Second
	defaultPollInterval      = 250 * time.Millisecond
)

const anchorCountJS = `document.querySelectorAll('a[href]').length`

// Config controls the behavior of the headless fetcher.
type Config struct {
	// MaxParallel caps concurrent tabs. Zero means one.
	MaxParallel       int
	UserAgent         string
	NavigationTimeout time.Duration
	// SettleWindow bounds how long a page may keep adding anchors once its body is ready.
	SettleWindow time.Duration
	// PollInterval is the gap between anchor counts while waiting for the page to settle.
	PollInterval time.Duration
}

// Fetcher implements fetcher.Fetcher using chromedp.
type Fetcher struct {
	cfg          Config
	slots        chan struct{}
	browser      context.Context
	closeBrowser context.CancelFunc
}

// NewChromedp creates a headless fetcher. Chrome itself is started lazily on the first Fetch.
func NewChromedp(cfg Config) (*Fetcher, error) {
	if cfg.MaxParallel < 0 {
		return nil, fmt.Errorf("max parallel must be >= 0")
	}
	if cfg.MaxParallel == 0 {
		cfg.MaxParallel = 1
	}
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = defaultNavigationTimeout
	}
	if cfg.SettleWindow <= 0 {
		cfg.SettleWindow = defaultSettleWindow
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("enable-automation", false),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	browser, closeBrowser := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Fetcher{
		cfg:          cfg,
		slots:        make(chan struct{}, cfg.MaxParallel),
		browser:      browser,
		closeBrowser: closeBrowser,
	}, nil
}

// Close shuts down the browser.
func (f *Fetcher) Close() {
	f.closeBrowser()
}

// Fetch opens the page in a new tab, waits for its anchors to stop changing, and
// returns the rendered DOM as the body.
func (f *Fetcher) Fetch(ctx context.Context, request fetcher.Request) (fetcher.Response, error) {
	select {
	case f.slots <- struct{}{}:
	case <-ctx.Done():
		return fetcher.Response{}, fmt.Errorf("wait for headless slot: %w", ctx.Err())
	}
	defer func() { <-f.slots }()

	tabCtx, closeTab := chromedp.NewContext(f.browser)
	defer closeTab()
	stop := context.AfterFunc(ctx, closeTab)
	defer stop()

	tabCtx, cancel := context.WithTimeout(tabCtx, f.cfg.NavigationTimeout)
	defer cancel()

	doc := &documentStatus{}
	chromedp.ListenTarget(tabCtx, doc.observe)

	var (
		html     string
		finalURL string
		anchors  int
	)
	start := time.Now()
	err := chromedp.Run(tabCtx,
		network.Enable(),
		chromedp.Navigate(request.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		f.waitForLinks(&anchors),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return fetcher.Response{}, fmt.Errorf("render %s: %w", request.URL, err)
	}

	if finalURL == "" {
		finalURL = request.URL
	}
	status := doc.code()
	if !fetcher.Successful(status) {
		return fetcher.Response{}, &fetcher.StatusError{URL: finalURL, StatusCode: status}
	}

	return fetcher.Response{
		URL:          finalURL,
		StatusCode:   status,
		Headers:      http.Header{},
		Body:         []byte(html),
		Duration:     time.Since(start),
		UsedHeadless: true,
	}, nil
}

// waitForLinks polls the number of anchors in the DOM until two readings agree on
// a non-zero count or the settle window closes.
func (f *Fetcher) waitForLinks(count *int) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		window := time.NewTimer(f.cfg.SettleWindow)
		defer window.Stop()
		tick := time.NewTicker(f.cfg.PollInterval)
		defer tick.Stop()

		last := -1
		for {
			var n int
			if err := chromedp.Evaluate(anchorCountJS, &n).Do(ctx); err != nil {
				return fmt.Errorf("count anchors: %w", err)
			}
			*count = n
			if linksSettled(last, n) {
				return nil
			}
			last = n

			select {
			case <-ctx.Done():
				return fmt.Errorf("wait for links: %w", ctx.Err())
			case <-window.C:
				return nil
			case <-tick.C:
			}
		}
	})
}

func linksSettled(prev, cur int) bool {
	return cur > 0 && cur == prev
}

// documentStatus keeps the status of the first document response a tab receives.
// Frames load documents too; the top-level page always arrives first.
type documentStatus struct {
	mu     sync.Mutex
	status int
}

func (d *documentStatus) observe(ev any) {
	resp, ok := ev.(*network.EventResponseReceived)
	if !ok || resp.Type != network.ResourceTypeDocument || resp.Response == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.status == 0 {
		d.status = int(resp.Response.Status)
	}
}

// code returns the captured status, or 200 when Chrome reported none (for example
// pages served from cache).
func (d *documentStatus) code() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.status == 0 {
		return http.StatusOK
	}
	return d.status
}
