package wingo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"draw_fetcher/internal/domain"
	"draw_fetcher/internal/metrics"
	"draw_fetcher/internal/render"
)

const (
	SourceID   = "wingo"
	SourceName = "Wingo draw history"

	rowWidth = len(domain.RawRow{})
)

// Browser hands out isolated pages; render.Browser is the production one.
type Browser interface {
	Open(ctx context.Context) (render.Page, error)
}

// Config holds wingo source configuration.
type Config struct {
	URL          string
	Headers      map[string]string
	CellSelector string
	NavTimeout   time.Duration
	MaxAttempts  int
	Backoff      time.Duration
	ReadyTimeout time.Duration
	HeaderCells  int
}

// Source implements service.Source by scraping the rendered draw history page.
type Source struct {
	browser      Browser
	url          string
	headers      map[string]string
	cellSelector string
	navTimeout   time.Duration
	maxAttempts  int
	backoff      time.Duration
	readyTimeout time.Duration
	headerCells  int
	metrics      *metrics.Metrics
	logger       *slog.Logger
	sleep        func(time.Duration)
}

// New creates a new wingo source.
func New(cfg Config, browser Browser, m *metrics.Metrics, logger *slog.Logger) *Source {
	return &Source{
		browser:      browser,
		url:          cfg.URL,
		headers:      cfg.Headers,
		cellSelector: cfg.CellSelector,
		navTimeout:   cfg.NavTimeout,
		maxAttempts:  cfg.MaxAttempts,
		backoff:      cfg.Backoff,
		readyTimeout: cfg.ReadyTimeout,
		headerCells:  cfg.HeaderCells,
		metrics:      m,
		logger:       logger.With("source", SourceID),
		sleep:        time.Sleep,
	}
}

// ID returns the source identifier.
func (s *Source) ID() string {
	return SourceID
}

// Name returns human-readable name.
func (s *Source) Name() string {
	return SourceName
}

// FetchRows loads the page and returns its draw rows in page order, header row dropped.
func (s *Source) FetchRows(ctx context.Context) ([]domain.RawRow, error) {
	page, err := s.browser.Open(ctx)
	if err != nil {
		s.logger.Error("failed to open page", "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrLoadFailed, err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			s.logger.Warn("failed to close page", "error", err)
		}
	}()

	if len(s.headers) > 0 {
		if err := page.SetHeaders(s.headers); err != nil {
			s.logger.Error("failed to set request headers", "error", err)
			return nil, fmt.Errorf("%w: %w", domain.ErrLoadFailed, err)
		}
	}

	if err := s.navigate(page); err != nil {
		return nil, err
	}

	if err := page.WaitFor(s.cellSelector, s.readyTimeout); err != nil {
		s.logger.Error("draw cells never appeared",
			"selector", s.cellSelector,
			"timeout", s.readyTimeout,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %w", domain.ErrSelectorTimeout, err)
	}

	cells, err := page.QueryAllText(s.cellSelector)
	if err != nil {
		s.logger.Error("failed to read draw cells", "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrSelectorTimeout, err)
	}

	return Rows(cells, s.headerCells), nil
}

// navigate is the only retried step: maxAttempts tries, fixed backoff between them.
func (s *Source) navigate(page render.Page) error {
	var err error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		err = page.Goto(s.url, s.navTimeout)
		s.metrics.NavigationAttempt(err == nil)
		if err == nil {
			return nil
		}

		if attempt == s.maxAttempts {
			break
		}

		s.logger.Warn("navigation failed, retrying",
			"attempt", attempt,
			"backoff", s.backoff,
			"error", err,
		)
		s.sleep(s.backoff)
	}

	s.logger.Error("page load failed", "attempts", s.maxAttempts, "error", err)
	return fmt.Errorf("%w: after %d attempts: %w", domain.ErrLoadFailed, s.maxAttempts, err)
}

// Rows drops the first offset cells and groups the rest into rows of four.
// A trailing partial row is discarded.
func Rows(cells []string, offset int) []domain.RawRow {
	if offset < 0 || offset >= len(cells) {
		return nil
	}
	cells = cells[offset:]

	rows := make([]domain.RawRow, 0, len(cells)/rowWidth)
	for i := 0; i+rowWidth <= len(cells); i += rowWidth {
		var row domain.RawRow
		copy(row[:], cells[i:])
		rows = append(rows, row)
	}
	return rows
}
