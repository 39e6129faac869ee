package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"draw_fetcher/internal/domain"
)

type SyncStateStore struct {
	db *sqlx.DB
}

func NewSyncStateStore(db *sqlx.DB) *SyncStateStore {
	return &SyncStateStore{db: db}
}

func (s *SyncStateStore) Get(ctx context.Context, sourceID string) (*domain.SyncState, error) {
	var state domain.SyncState
	query := `
		SELECT id, source_id, last_synced_at, last_draw_number, total_inserted, last_error
		FROM sync_state
		WHERE source_id = $1`

	err := s.db.GetContext(ctx, &state, query, sourceID)
	if errors.Is(err, sql.ErrNoRows) {
		// Return empty state for new sources
		return &domain.SyncState{
			SourceID:     sourceID,
			LastSyncedAt: time.Time{},
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// Update upserts the state. total_inserted is taken as given; callers add to
// the value they read.
func (s *SyncStateStore) Update(ctx context.Context, state *domain.SyncState) error {
	query := `
		INSERT INTO sync_state (source_id, last_synced_at, last_draw_number, total_inserted, last_error)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (source_id) DO UPDATE SET
			last_synced_at = EXCLUDED.last_synced_at,
			last_draw_number = EXCLUDED.last_draw_number,
			total_inserted = GREATEST(sync_state.total_inserted, EXCLUDED.total_inserted),
			last_error = EXCLUDED.last_error`

	_, err := s.db.ExecContext(ctx, query,
		state.SourceID,
		state.LastSyncedAt,
		state.LastDrawNumber,
		state.TotalInserted,
		state.LastError,
	)
	return err
}
