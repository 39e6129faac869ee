package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// NotAvailable fills every field of the sentinel draw.
	NotAvailable = "N/A"

	// PendingMarker is what upstream shows in a row whose draw is still running.
	PendingMarker = "pending"
)

// Draw is one persisted outcome of the upstream feed. DrawNumber is the natural key.
type Draw struct {
	ID           int64     `db:"id" json:"-"`
	DrawNumber   string    `db:"draw_number" json:"draw_number"`
	ResultNumber string    `db:"result_number" json:"result_number"`
	Size         string    `db:"size" json:"size"`
	Color        string    `db:"color" json:"color"`
	CreatedAt    time.Time `db:"created_at" json:"-"`
}

// SentinelDraw stands for "no complete row this cycle". It is never stored.
func SentinelDraw() Draw {
	return Draw{
		DrawNumber:   NotAvailable,
		ResultNumber: NotAvailable,
		Size:         NotAvailable,
		Color:        NotAvailable,
	}
}

func (d Draw) IsSentinel() bool {
	return d.DrawNumber == NotAvailable
}

// Validate reports a missing field as ErrMalformedDraw.
func (d Draw) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"draw_number", d.DrawNumber},
		{"result_number", d.ResultNumber},
		{"size", d.Size},
		{"color", d.Color},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: missing %s", ErrMalformedDraw, f.name)
		}
	}
	return nil
}

// RawRow is one row of upstream cells: draw number, result number, size, color.
type RawRow [4]string

// SentinelRow is returned by SelectRow when no row is complete.
var SentinelRow = RawRow{NotAvailable, NotAvailable, NotAvailable, NotAvailable}

// Complete reports whether none of the result cells hold the pending marker.
func (r RawRow) Complete() bool {
	for _, cell := range r[1:] {
		if strings.EqualFold(strings.TrimSpace(cell), PendingMarker) {
			return false
		}
	}
	return true
}

func (r RawRow) Draw() Draw {
	return Draw{
		DrawNumber:   r[0],
		ResultNumber: r[1],
		Size:         r[2],
		Color:        r[3],
	}
}

// SelectRow returns the first complete row in upstream order, or SentinelRow.
func SelectRow(rows []RawRow) RawRow {
	for _, row := range rows {
		if row.Complete() {
			return row
		}
	}
	return SentinelRow
}
