package dashboard

import "finboard/internal/core"

// DefaultPageSize is used whenever a requested page size is missing or
// invalid.
const DefaultPageSize = 10

// PageSizes are the per-page options the dashboard exposes.
var PageSizes = []int{10, 25, 50}

// PageState is the current pagination window. Page is 1-based and
// clamped to the valid range before slicing, so a stale page number
// after deletions never yields an empty screen.
type PageState struct {
	Page int
	Size int
}

// NewPageState returns the first page at the default size.
func NewPageState() PageState {
	return PageState{Page: 1, Size: DefaultPageSize}
}

// SetSize applies a new page size, falling back to the default for
// non-positive values, and returns to the first page.
func (ps *PageState) SetSize(size int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	ps.Size = size
	ps.Page = 1
}

// Clamp forces Page into [1, PageCount(total)].
func (ps *PageState) Clamp(total int) {
	if ps.Page < 1 {
		ps.Page = 1
	}
	if max := ps.PageCount(total); ps.Page > max {
		ps.Page = max
	}
}

// PageCount returns the number of pages for total rows, at least 1.
func (ps PageState) PageCount(total int) int {
	size := ps.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	return pages
}

// Slice returns the window [(Page-1)*Size, Page*Size) clamped to the
// bounds of rows. A page beyond the end yields an empty slice.
func (ps PageState) Slice(rows []core.Transaction) []core.Transaction {
	size := ps.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	start := (ps.Page - 1) * size
	if start < 0 {
		start = 0
	}
	if start >= len(rows) {
		return []core.Transaction{}
	}
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}
