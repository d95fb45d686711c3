// Package dashboard implements the transaction table behind the main
// view: filtering, sorting, pagination, bulk selection and the
// per-interaction row cache, composed by a Controller.
package dashboard

import (
	"strings"

	"finboard/internal/core"
)

// FilterState is the set of active row constraints. Nil/empty fields
// impose no constraint; with every field absent the filter matches all
// rows.
type FilterState struct {
	Search    string
	Status    *core.Status
	AmountMin *int64 // cents, inclusive
	AmountMax *int64 // cents, inclusive
	DateMin   *core.Date // inclusive
	DateMax   *core.Date // inclusive
}

// FilterInput carries raw form values for the filter panel. Building a
// FilterState from it never fails: malformed bounds are treated as
// absent rather than rejected.
type FilterInput struct {
	Search    string
	Status    string
	AmountMin string
	AmountMax string
	DateMin   string
	DateMax   string
}

// State parses the raw input into a FilterState.
func (in FilterInput) State() FilterState {
	fs := FilterState{Search: strings.TrimSpace(in.Search)}
	if st, err := core.ParseStatus(strings.TrimSpace(in.Status)); err == nil {
		fs.Status = &st
	}
	if cents, err := core.ParseDecimalToCents(in.AmountMin); err == nil {
		fs.AmountMin = &cents
	}
	if cents, err := core.ParseDecimalToCents(in.AmountMax); err == nil {
		fs.AmountMax = &cents
	}
	if d, err := core.ParseDate(in.DateMin); err == nil {
		fs.DateMin = &d
	}
	if d, err := core.ParseDate(in.DateMax); err == nil {
		fs.DateMax = &d
	}
	return fs
}

// Match reports whether a transaction satisfies every present
// constraint. Constraints combine with logical AND; bounds are
// inclusive; the title search is a case-insensitive substring match.
func (fs FilterState) Match(t core.Transaction) bool {
	if fs.Search != "" &&
		!strings.Contains(strings.ToLower(t.Title), strings.ToLower(fs.Search)) {
		return false
	}
	if fs.Status != nil && t.Status != *fs.Status {
		return false
	}
	if fs.AmountMin != nil && t.Amount.Cents < *fs.AmountMin {
		return false
	}
	if fs.AmountMax != nil && t.Amount.Cents > *fs.AmountMax {
		return false
	}
	if fs.DateMin != nil && t.Date.Before(fs.DateMin.Time) {
		return false
	}
	if fs.DateMax != nil && t.Date.After(fs.DateMax.Time) {
		return false
	}
	return true
}

// Apply returns the subset of rows matching the filter, preserving
// input order.
func (fs FilterState) Apply(rows []core.Transaction) []core.Transaction {
	if fs.IsZero() {
		out := make([]core.Transaction, len(rows))
		copy(out, rows)
		return out
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, t := range rows {
		if fs.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// IsZero reports whether no constraint is set.
func (fs FilterState) IsZero() bool {
	return fs.Search == "" && fs.Status == nil &&
		fs.AmountMin == nil && fs.AmountMax == nil &&
		fs.DateMin == nil && fs.DateMax == nil
}

// Equal compares two filter states field by field. The controller uses
// it to detect filter changes, which clear the selection and reset the
// page.
func (fs FilterState) Equal(other FilterState) bool {
	return fs.Search == other.Search &&
		eqStatus(fs.Status, other.Status) &&
		eqInt64(fs.AmountMin, other.AmountMin) &&
		eqInt64(fs.AmountMax, other.AmountMax) &&
		eqDate(fs.DateMin, other.DateMin) &&
		eqDate(fs.DateMax, other.DateMax)
}

func eqStatus(a, b *core.Status) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqInt64(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqDate(a, b *core.Date) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(b.Time)
}
