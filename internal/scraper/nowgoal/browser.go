package nowgoal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"golang.org/x/time/rate"

	"github.com/dgb173/Masivo/internal/pkg/config"
)

// PageRequest describes a page that needs JavaScript to render.
type PageRequest struct {
	URL string
	// WaitFor is a CSS selector that must be ready before the page is read.
	WaitFor string
	// Selects are <select> element ids set to SelectValue after load, each dispatching a
	// change event so the page re-renders its tables.
	Selects     []string
	SelectValue string
}

// Renderer returns the rendered HTML of a page.
type Renderer interface {
	Render(ctx context.Context, req PageRequest) (string, error)
}

// Browser renders pages in one headless Chrome. Tabs are used one at a time.
type Browser struct {
	cfg       config.BrowserConfig
	userAgent string
	limiter   *rate.Limiter

	mu          sync.Mutex // serializes all Chrome usage
	allocCtx    context.Context
	allocCancel context.CancelFunc
	userDataDir string
}

func NewBrowser(cfg config.BrowserConfig, site config.SiteConfig, fetch config.FetchConfig) *Browser {
	return &Browser{
		cfg:       cfg,
		userAgent: site.UserAgent,
		limiter:   newLimiter(fetch.RequestsPerSecond, fetch.Burst),
	}
}

func (b *Browser) ensureAllocator() error {
	if b.allocCtx != nil {
		return nil
	}
	dir, err := os.MkdirTemp("", "nowgoal_chrome_")
	if err != nil {
		return fmt.Errorf("create chrome temp dir: %w", err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserDataDir(dir),
	)
	if b.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(b.userAgent))
	}
	if b.cfg.DisableImages {
		opts = append(opts, chromedp.Flag("blink-settings", "imagesEnabled=false"))
	}
	if b.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(b.cfg.ExecPath))
	}

	b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	b.userDataDir = dir
	return nil
}

// Render opens req.URL in a new tab and returns the document's outer HTML.
func (b *Browser) Render(ctx context.Context, req PageRequest) (string, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureAllocator(); err != nil {
		return "", err
	}

	tabCtx, cancelTab := chromedp.NewContext(b.allocCtx, chromedp.WithLogf(func(format string, v ...interface{}) {
		slog.Debug("chromedp", "message", fmt.Sprintf(format, v...))
	}))
	defer cancelTab()

	// Stop the tab when either the caller gives up or the navigation budget runs out.
	timeout := b.cfg.NavigationTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, timeout)
	defer cancelTimeout()
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	actions := []chromedp.Action{chromedp.Navigate(req.URL)}
	if req.WaitFor != "" {
		actions = append(actions, chromedp.WaitReady(req.WaitFor, chromedp.ByQuery))
	}
	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return "", fmt.Errorf("chromedp navigation %s: %w", req.URL, err)
	}

	for _, id := range req.Selects {
		b.selectOption(tabCtx, id, req.SelectValue)
	}

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("chromedp read %s: %w", req.URL, err)
	}
	return html, nil
}

// selectOption waits briefly for the select and changes its value. A missing select is not an
// error: some fixtures have fewer tables.
func (b *Browser) selectOption(ctx context.Context, id, value string) {
	wait := b.cfg.SelectTimeout
	if wait <= 0 {
		wait = 2 * time.Second
	}
	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	if err := chromedp.Run(waitCtx, chromedp.WaitReady("#"+id, chromedp.ByQuery)); err != nil {
		slog.Debug("Select not found", "select", id, "error", err)
		return
	}

	script := fmt.Sprintf(`(function(){var s=document.getElementById(%q);if(!s){return 0;}s.value=%q;s.dispatchEvent(new Event('change',{bubbles:true}));return 1;})()`, id, value)
	var changed int
	if err := chromedp.Run(ctx, chromedp.Evaluate(script, &changed), chromedp.Sleep(100*time.Millisecond)); err != nil {
		slog.Debug("Select change failed", "select", id, "error", err)
	}
}

// Close shuts Chrome down.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.allocCancel != nil {
		b.allocCancel()
		b.allocCancel = nil
		b.allocCtx = nil
	}
	if b.userDataDir != "" {
		dir := b.userDataDir
		b.userDataDir = ""
		return os.RemoveAll(dir)
	}
	return nil
}
