// Package rendertest provides a scripted in-memory browser for tests.
package rendertest

import (
	"context"
	"errors"
	"sync"
	"time"

	"draw_fetcher/internal/render"
)

var ErrNavigation = errors.New("net::ERR_CONNECTION_RESET")

// Browser returns a fresh Page per Open call, all sharing the same script.
type Browser struct {
	mu sync.Mutex

	// GotoFailures is how many Goto calls fail before they start succeeding.
	GotoFailures int
	// WaitErr, when set, is returned by every WaitFor call.
	WaitErr error
	// Cells is what QueryAllText returns.
	Cells []string
	// OpenErr, when set, is returned by Open.
	OpenErr error

	GotoCalls  int
	Opened     int
	Closed     int
	LastHeader map[string]string
	Timeouts   []time.Duration
}

func (b *Browser) Open(ctx context.Context) (render.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.OpenErr != nil {
		return nil, b.OpenErr
	}
	b.Opened++
	return &page{browser: b}, nil
}

// Calls returns the number of Goto calls so far.
func (b *Browser) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.GotoCalls
}

type page struct {
	browser *Browser
	closed  bool
}

func (p *page) SetHeaders(headers map[string]string) error {
	p.browser.mu.Lock()
	defer p.browser.mu.Unlock()
	p.browser.LastHeader = headers
	return nil
}

func (p *page) Goto(url string, timeout time.Duration) error {
	p.browser.mu.Lock()
	defer p.browser.mu.Unlock()

	p.browser.GotoCalls++
	p.browser.Timeouts = append(p.browser.Timeouts, timeout)
	if p.browser.GotoCalls <= p.browser.GotoFailures {
		return ErrNavigation
	}
	return nil
}

func (p *page) WaitFor(selector string, timeout time.Duration) error {
	p.browser.mu.Lock()
	defer p.browser.mu.Unlock()
	return p.browser.WaitErr
}

func (p *page) QueryAllText(selector string) ([]string, error) {
	p.browser.mu.Lock()
	defer p.browser.mu.Unlock()

	out := make([]string, len(p.browser.Cells))
	copy(out, p.browser.Cells)
	return out, nil
}

func (p *page) Close() error {
	p.browser.mu.Lock()
	defer p.browser.mu.Unlock()

	if !p.closed {
		p.closed = true
		p.browser.Closed++
	}
	return nil
}
