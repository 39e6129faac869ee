package domain

import "time"

// CycleResult is the outcome of one fetch-select-persist run.
type CycleResult struct {
	CycleID   string
	Draw      Draw
	Inserted  bool
	Published bool
	Duration  time.Duration
}

type SyncState struct {
	ID             int64     `db:"id" json:"-"`
	SourceID       string    `db:"source_id" json:"source_id"`
	LastSyncedAt   time.Time `db:"last_synced_at" json:"last_synced_at"`
	LastDrawNumber string    `db:"last_draw_number" json:"last_draw_number"`
	TotalInserted  int64     `db:"total_inserted" json:"total_inserted"`
	LastError      string    `db:"last_error" json:"last_error,omitempty"`
}
