package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"draw_fetcher/internal/domain"
)

// Persister writes each draw number at most once.
type Persister struct {
	draws     DrawStore
	txManager TransactionManager
	logger    *slog.Logger
	now       func() time.Time
}

func NewPersister(draws DrawStore, txManager TransactionManager, logger *slog.Logger) *Persister {
	return &Persister{
		draws:     draws,
		txManager: txManager,
		logger:    logger.With("component", "persister"),
		now:       time.Now,
	}
}

// Persist reports whether a new row was written. The sentinel draw is never
// written. Check and insert share one transaction, serialized per draw number;
// the unique index on draw_number backs that up.
func (p *Persister) Persist(ctx context.Context, draw *domain.Draw) (bool, error) {
	if draw.IsSentinel() {
		return false, nil
	}
	if err := draw.Validate(); err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrPersist, err)
	}

	var inserted bool
	err := p.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := p.draws.LockDrawNumber(txCtx, draw.DrawNumber); err != nil {
			return fmt.Errorf("lock draw number: %w", err)
		}

		count, err := p.draws.CountByDrawNumber(txCtx, draw.DrawNumber)
		if err != nil {
			return fmt.Errorf("count draws: %w", err)
		}
		if count > 0 {
			return nil
		}

		draw.CreatedAt = p.now()
		inserted, err = p.draws.Insert(txCtx, draw)
		if err != nil {
			return fmt.Errorf("insert draw: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrPersist, err)
	}

	if inserted {
		p.logger.Info("stored new draw", "draw_number", draw.DrawNumber)
	} else {
		p.logger.Debug("draw already stored", "draw_number", draw.DrawNumber)
	}

	return inserted, nil
}
