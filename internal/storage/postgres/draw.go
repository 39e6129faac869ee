package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"draw_fetcher/internal/domain"
)

type DrawStore struct {
	db *sqlx.DB
}

func NewDrawStore(db *sqlx.DB) *DrawStore {
	return &DrawStore{db: db}
}

// LockDrawNumber takes a transaction-scoped advisory lock on the draw number.
// Outside a transaction the lock is released as soon as the statement ends.
func (s *DrawStore) LockDrawNumber(ctx context.Context, drawNumber string) error {
	_, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		"SELECT pg_advisory_xact_lock(hashtext($1))",
		drawNumber,
	)
	return err
}

func (s *DrawStore) CountByDrawNumber(ctx context.Context, drawNumber string) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &count,
		"SELECT COUNT(*) FROM results WHERE draw_number = $1",
		drawNumber,
	)
	return count, err
}

// Insert writes the draw and reports false when the unique index already
// holds this draw number.
func (s *DrawStore) Insert(ctx context.Context, draw *domain.Draw) (bool, error) {
	query := `
		INSERT INTO results (draw_number, result_number, size, color, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (draw_number) DO NOTHING`

	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		draw.DrawNumber,
		draw.ResultNumber,
		draw.Size,
		draw.Color,
		draw.CreatedAt,
	)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Recent returns up to limit draws, newest first.
func (s *DrawStore) Recent(ctx context.Context, limit int) ([]domain.Draw, error) {
	query := `
		SELECT id, draw_number, result_number, size, color, created_at
		FROM results
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	draws := []domain.Draw{}
	err := s.db.SelectContext(ctx, &draws, query, limit)
	return draws, err
}
