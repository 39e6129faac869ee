package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectRow(t *testing.T) {
	tests := []struct {
		name string
		rows []RawRow
		want RawRow
	}{
		{
			name: "skips pending row",
			rows: []RawRow{
				{"1", "pending", "pending", "pending"},
				{"2", "5", "Big", "Red"},
			},
			want: RawRow{"2", "5", "Big", "Red"},
		},
		{
			name: "all pending",
			rows: []RawRow{
				{"1", "pending", "pending", "pending"},
				{"2", "Pending", "PENDING", "pending"},
			},
			want: SentinelRow,
		},
		{
			name: "one pending field is enough to skip",
			rows: []RawRow{
				{"1", "3", "Small", " Pending "},
				{"2", "7", "Big", "Green"},
			},
			want: RawRow{"2", "7", "Big", "Green"},
		},
		{
			name: "first match wins",
			rows: []RawRow{
				{"9", "1", "Small", "Green"},
				{"8", "6", "Big", "Red"},
			},
			want: RawRow{"9", "1", "Small", "Green"},
		},
		{
			name: "draw number is not checked",
			rows: []RawRow{{"pending", "4", "Small", "Red"}},
			want: RawRow{"pending", "4", "Small", "Red"},
		},
		{
			name: "no rows",
			rows: nil,
			want: SentinelRow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectRow(tt.rows))
		})
	}
}

func TestRawRow_Draw(t *testing.T) {
	d := RawRow{"0042", "10", "Small", "Green"}.Draw()

	assert.Equal(t, "0042", d.DrawNumber)
	assert.Equal(t, "10", d.ResultNumber)
	assert.Equal(t, "Small", d.Size)
	assert.Equal(t, "Green", d.Color)
	assert.False(t, d.IsSentinel())
	assert.True(t, SentinelRow.Draw().IsSentinel())
	assert.Equal(t, SentinelDraw(), SentinelRow.Draw())
}

func TestDraw_Validate(t *testing.T) {
	assert.NoError(t, Draw{DrawNumber: "1", ResultNumber: "2", Size: "Small", Color: "Red"}.Validate())

	err := Draw{DrawNumber: "1", ResultNumber: "2", Size: " ", Color: "Red"}.Validate()
	assert.ErrorIs(t, err, ErrMalformedDraw)
	assert.Contains(t, err.Error(), "size")
}

func TestKind(t *testing.T) {
	assert.Equal(t, "ok", Kind(nil))
	assert.Equal(t, "load_failed", Kind(fmt.Errorf("after 3 attempts: %w", ErrLoadFailed)))
	assert.Equal(t, "selector_timeout", Kind(ErrSelectorTimeout))
	assert.Equal(t, "persist_error", Kind(fmt.Errorf("%w: %w", ErrPersist, ErrMalformedDraw)))
	assert.Equal(t, "unexpected", Kind(errors.New("boom")))

	assert.True(t, Expected(fmt.Errorf("x: %w", ErrPersist)))
	assert.False(t, Expected(ErrUnexpected))
}
