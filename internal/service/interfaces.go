package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"draw_fetcher/internal/domain"
)

type DrawStore interface {
	LockDrawNumber(ctx context.Context, drawNumber string) error
	CountByDrawNumber(ctx context.Context, drawNumber string) (int, error)
	Insert(ctx context.Context, draw *domain.Draw) (bool, error)
}

type SyncStateStore interface {
	Get(ctx context.Context, sourceID string) (*domain.SyncState, error)
	Update(ctx context.Context, state *domain.SyncState) error
}

type Source interface {
	ID() string
	Name() string
	FetchRows(ctx context.Context) ([]domain.RawRow, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(ctx context.Context, draw *domain.Draw) error
	Close() error
}
