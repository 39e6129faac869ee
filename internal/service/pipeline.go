package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"draw_fetcher/internal/domain"
	"draw_fetcher/internal/metrics"
)

// Pipeline runs one fetch-select-persist cycle. The scheduler and the HTTP
// handler share a single Pipeline and call Run the same way.
type Pipeline struct {
	source    Source
	persister *Persister
	syncState SyncStateStore
	publisher Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewPipeline(
	source Source,
	persister *Persister,
	syncState SyncStateStore,
	publisher Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		source:    source,
		persister: persister,
		syncState: syncState,
		publisher: publisher,
		metrics:   m,
		logger:    logger.With("source", source.ID()),
	}
}

// Run never panics: a panic anywhere in the cycle comes back as an error
// wrapping domain.ErrUnexpected.
func (p *Pipeline) Run(ctx context.Context) (result *domain.CycleResult, err error) {
	startTime := time.Now()
	cycleID := uuid.NewString()
	logger := p.logger.With("cycle_id", cycleID)

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: panic: %v", domain.ErrUnexpected, r)
		}
		p.metrics.ObserveCycle(domain.Kind(err), time.Since(startTime))
		p.updateSyncState(ctx, logger, result, err)
	}()

	rows, err := p.source.FetchRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch rows: %w", err)
	}

	draw := domain.SelectRow(rows).Draw()
	if draw.IsSentinel() {
		logger.Info("no complete row on page", "rows", len(rows))
	}

	inserted, err := p.persister.Persist(ctx, &draw)
	if err != nil {
		return nil, err
	}

	result = &domain.CycleResult{
		CycleID:  cycleID,
		Draw:     draw,
		Inserted: inserted,
	}

	if inserted {
		p.metrics.DrawInserted()
		result.Published = p.publish(ctx, logger, &draw)
	}

	result.Duration = time.Since(startTime)

	logger.Debug("cycle completed",
		"draw_number", draw.DrawNumber,
		"inserted", inserted,
		"published", result.Published,
		"duration", result.Duration,
	)

	return result, nil
}

func (p *Pipeline) publish(ctx context.Context, logger *slog.Logger, draw *domain.Draw) bool {
	if p.publisher == nil {
		return false
	}
	if err := p.publisher.Publish(ctx, draw); err != nil {
		p.metrics.PublishFailed()
		logger.Warn("failed to publish draw", "draw_number", draw.DrawNumber, "error", err)
		return false
	}
	return true
}

func (p *Pipeline) updateSyncState(ctx context.Context, logger *slog.Logger, result *domain.CycleResult, cycleErr error) {
	if p.syncState == nil {
		return
	}

	state, err := p.syncState.Get(ctx, p.source.ID())
	if err != nil {
		logger.Warn("failed to load sync state", "error", err)
		return
	}

	state.SourceID = p.source.ID()
	state.LastSyncedAt = time.Now()
	state.LastError = ""
	if cycleErr != nil {
		state.LastError = cycleErr.Error()
	}
	if result != nil && !result.Draw.IsSentinel() {
		state.LastDrawNumber = result.Draw.DrawNumber
	}
	if result != nil && result.Inserted {
		state.TotalInserted++
	}

	if err := p.syncState.Update(ctx, state); err != nil {
		logger.Warn("failed to update sync state", "error", err)
	}
}
