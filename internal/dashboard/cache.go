package dashboard

import "finboard/internal/core"

// rowCache memoizes the computed page of rows for the duration of one
// render cycle. Any mutation to filter, sort, page or the underlying
// store invalidates it immediately, so a render never sees stale rows.
// It is not a cross-request cache: each interaction recomputes from the
// current store state.
type rowCache struct {
	valid bool
	page  Page
}

// Page is one rendered window of the filtered, sorted collection plus
// the metadata the table needs.
type Page struct {
	Rows      []core.Transaction
	Number    int // clamped page number actually rendered
	Size      int
	PageCount int
	Total     int // rows matching the filter
}

func (c *rowCache) get() (Page, bool) {
	return c.page, c.valid
}

func (c *rowCache) set(p Page) {
	c.page = p
	c.valid = true
}

func (c *rowCache) invalidate() {
	c.valid = false
	c.page = Page{}
}
