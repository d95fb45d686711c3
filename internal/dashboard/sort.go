package dashboard

import (
	"sort"
	"strings"

	"finboard/internal/core"
)

// Column identifies a sortable transaction column. ColumnNone keeps the
// collection in insertion order.
type Column string

const (
	ColumnNone   Column = ""
	ColumnTitle  Column = "title"
	ColumnAmount Column = "amount"
	ColumnStatus Column = "status"
	ColumnDate   Column = "date"
)

// ParseColumn maps a raw form value onto a known column; anything else
// falls back to ColumnNone.
func ParseColumn(s string) Column {
	switch Column(s) {
	case ColumnTitle, ColumnAmount, ColumnStatus, ColumnDate:
		return Column(s)
	default:
		return ColumnNone
	}
}

// SortState is the single active sort column plus direction.
type SortState struct {
	Column     Column
	Descending bool
}

// Toggle sets the sort column; selecting the already-active column flips
// the direction, selecting a new one starts ascending.
func (ss *SortState) Toggle(col Column) {
	if ss.Column == col {
		ss.Descending = !ss.Descending
		return
	}
	ss.Column = col
	ss.Descending = false
}

// Apply returns the rows totally ordered by the active column, ties
// broken by id ascending for determinism. With no column set the input
// order is preserved.
func (ss SortState) Apply(rows []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(rows))
	copy(out, rows)
	if ss.Column == ColumnNone {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if ss.Descending {
			a, b = b, a
		}
		switch ss.Column {
		case ColumnTitle:
			if ta, tb := strings.ToLower(a.Title), strings.ToLower(b.Title); ta != tb {
				return ta < tb
			}
		case ColumnAmount:
			if a.Amount.Cents != b.Amount.Cents {
				return a.Amount.Cents < b.Amount.Cents
			}
		case ColumnStatus:
			if ra, rb := a.Status.Rank(), b.Status.Rank(); ra != rb {
				return ra < rb
			}
		case ColumnDate:
			if !a.Date.Equal(b.Date.Time) {
				return a.Date.Before(b.Date.Time)
			}
		}
		// Tiebreak on id ascending regardless of direction.
		return out[i].ID < out[j].ID
	})
	return out
}
