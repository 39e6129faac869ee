package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"draw_fetcher/internal/domain"
	"draw_fetcher/internal/logging"
)

// Runner runs one pipeline cycle.
type Runner interface {
	Run(ctx context.Context) (*domain.CycleResult, error)
}

// Scheduler runs cycles back to back, each one starting on a wall-clock
// boundary (the top of the minute by default). A cycle never overlaps the
// previous one and no cycle failure stops the loop.
type Scheduler struct {
	runner Runner
	align  time.Duration
	logger *slog.Logger
	now    func() time.Time
	after  func(time.Duration) <-chan time.Time
}

func NewScheduler(runner Runner, align time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner: runner,
		align:  align,
		logger: logger.With("component", "scheduler"),
		now:    time.Now,
		after:  time.After,
	}
}

// NextBoundary returns the first multiple of align strictly after t.
func NextBoundary(t time.Time, align time.Duration) time.Time {
	return t.Truncate(align).Add(align)
}

// Start blocks until ctx is done. The first cycle runs immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "align", s.align)

	for {
		s.runCycle(ctx)

		now := s.now()
		next := NextBoundary(now, s.align)
		s.logger.Debug("waiting for next cycle", "next", next)

		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-s.after(next.Sub(now)):
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logging.Critical(ctx, s.logger, "cycle panicked", "panic", fmt.Sprint(r))
		}
	}()

	result, err := s.runner.Run(ctx)
	switch {
	case err == nil:
		s.logger.Info("cycle succeeded",
			"cycle_id", result.CycleID,
			"draw_number", result.Draw.DrawNumber,
			"result_number", result.Draw.ResultNumber,
			"size", result.Draw.Size,
			"color", result.Draw.Color,
			"inserted", result.Inserted,
			"duration", result.Duration,
		)
	case domain.Expected(err):
		s.logger.Error("cycle failed", "kind", domain.Kind(err), "error", err)
	default:
		logging.Critical(ctx, s.logger, "cycle failed unexpectedly", "error", err)
	}
}
