package render

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// Page is a single browser tab.
type Page interface {
	SetHeaders(headers map[string]string) error
	Goto(url string, timeout time.Duration) error
	WaitFor(selector string, timeout time.Duration) error
	QueryAllText(selector string) ([]string, error)
	Close() error
}

type Options struct {
	Headless   bool
	ChromePath string
	UserAgent  string
}

type Browser struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	logger   *slog.Logger
}

func NewBrowser(opts Options, logger *slog.Logger) *Browser {
	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ChromePath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	return &Browser{
		allocCtx: allocCtx,
		cancel:   cancel,
		logger:   logger.With("component", "browser"),
	}
}

// Open starts a new tab. The tab is closed by Page.Close or when ctx ends.
func (b *Browser) Open(ctx context.Context) (Page, error) {
	tabCtx, cancel := chromedp.NewContext(b.allocCtx)

	// The first Run binds the tab to tabCtx; later timeouts on derived
	// contexts must not tear it down.
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("open tab: %w", err)
	}

	stop := context.AfterFunc(ctx, cancel)

	return &chromePage{ctx: tabCtx, cancel: cancel, stop: stop}, nil
}

func (b *Browser) Close() {
	b.cancel()
	b.logger.Debug("browser closed")
}

type chromePage struct {
	ctx    context.Context
	cancel context.CancelFunc
	stop   func() bool
}

func (p *chromePage) SetHeaders(headers map[string]string) error {
	h := make(network.Headers, len(headers))
	for k, v := range headers {
		h[k] = v
	}
	if err := chromedp.Run(p.ctx, network.Enable(), network.SetExtraHTTPHeaders(h)); err != nil {
		return fmt.Errorf("set headers: %w", err)
	}
	return nil
}

func (p *chromePage) Goto(url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()

	if err := chromedp.Run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (p *chromePage) WaitFor(selector string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()

	if err := chromedp.Run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("wait for %q: %w", selector, err)
	}
	return nil
}

func (p *chromePage) QueryAllText(selector string) ([]string, error) {
	var html string
	if err := chromedp.Run(p.ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return CellTexts(html, selector)
}

func (p *chromePage) Close() error {
	p.stop()
	p.cancel()
	return nil
}
