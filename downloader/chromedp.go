package downloader

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"article2pdf/config"
	"article2pdf/logging"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

// BrowserSession manages a chromedp browser context for one run
type BrowserSession struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    *config.Config
	log    zerolog.Logger

	mu     sync.Mutex
	closed bool
}

// NewBrowserSession launches a browser and returns a session bound to its
// first tab. Launch failures are reported here rather than on first use.
func NewBrowserSession(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*BrowserSession, error) {
	log := logging.Component(logger, "browser")

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.NoSandbox,
		chromedp.WindowSize(cfg.ViewportWidth, cfg.ViewportHeight),
	)
	if path := ResolveChromePath(cfg.ChromePath); path != "" {
		log.Debug().Str("path", path).Msg("using chrome binary")
		opts = append(opts, chromedp.ExecPath(path))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	bs := &BrowserSession{
		ctx:    browserCtx,
		cancel: func() { cancelBrowser(); cancelAlloc() },
		cfg:    cfg,
		log:    log,
	}

	// The first Run starts the browser. It must use browserCtx itself, not a
	// derived timeout context, or the browser dies with that context.
	err := chromedp.Run(browserCtx,
		emulation.SetDeviceMetricsOverride(int64(cfg.ViewportWidth), int64(cfg.ViewportHeight), 1, false),
	)
	if err != nil {
		bs.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	log.Debug().Int("width", cfg.ViewportWidth).Int("height", cfg.ViewportHeight).Msg("browser started")
	return bs, nil
}

// OpenBrowserPage is the PageFactory used outside of tests.
func OpenBrowserPage(cfg *config.Config, logger zerolog.Logger) PageFactory {
	return func(ctx context.Context) (Page, error) {
		return NewBrowserSession(ctx, cfg, logger)
	}
}

// run executes actions bounded by timeout and by the caller's ctx.
func (bs *BrowserSession) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	bs.mu.Lock()
	closed := bs.closed
	bs.mu.Unlock()
	if closed {
		return ErrClosed
	}

	runCtx, cancel := context.WithTimeout(bs.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// Navigate navigates to a URL and waits for the body to be ready
func (bs *BrowserSession) Navigate(ctx context.Context, url string) error {
	err := bs.run(ctx, bs.cfg.NavigationTimeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}

	bs.log.Info().Str("url", url).Msg("navigation successful")
	return nil
}

// Evaluate runs JavaScript and decodes the result into res
func (bs *BrowserSession) Evaluate(ctx context.Context, js string, res any) error {
	return bs.run(ctx, bs.cfg.EvalTimeout, chromedp.Evaluate(js, res))
}

// CaptureViewport takes a PNG screenshot of the visible viewport
func (bs *BrowserSession) CaptureViewport(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := bs.run(ctx, bs.cfg.EvalTimeout, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return buf, nil
}

// HTML returns the page HTML
func (bs *BrowserSession) HTML(ctx context.Context) (string, error) {
	var html string
	err := bs.run(ctx, bs.cfg.EvalTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

// Cookies exports the browser cookies for urls so plain HTTP requests can
// reuse the session.
func (bs *BrowserSession) Cookies(ctx context.Context, urls ...string) ([]*http.Cookie, error) {
	var raw []*network.Cookie
	err := bs.run(ctx, bs.cfg.EvalTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		raw, err = network.GetCookies().WithUrls(urls).Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}

	cookies := make([]*http.Cookie, 0, len(raw))
	for _, c := range raw {
		hc := &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		}
		if c.Expires > 0 {
			hc.Expires = time.Unix(int64(c.Expires), 0)
		}
		cookies = append(cookies, hc)
	}
	return cookies, nil
}

// Close closes the browser session. It is safe to call more than once.
func (bs *BrowserSession) Close() {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	if bs.closed {
		return
	}
	bs.closed = true
	if bs.cancel != nil {
		bs.cancel()
	}
	bs.log.Debug().Msg("browser closed")
}
