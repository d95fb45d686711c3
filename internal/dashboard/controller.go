package dashboard

import (
	"context"
	"fmt"
	"sync"

	"finboard/internal/core"
)

// Store is the record-store port the controller composes over. The
// concrete implementations live in internal/storage.
type Store interface {
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) error
	DeleteTransactions(ctx context.Context, ids []int64) (int64, error)
}

// ViewState is the dashboard's modal state machine. There is no terminal
// state; validation failures keep the current state and surface field
// errors instead of transitioning.
type ViewState int

const (
	Viewing ViewState = iota
	Editing
	ConfirmingDelete
)

// Controller holds the per-session dashboard state: filter, sort, page,
// selection, the edit modal and the row cache, composed as an explicit
// pipeline over the record store. Every exported method is one
// synchronous unit of work; the mutex serializes overlapping partial
// requests from the same session.
type Controller struct {
	mu    sync.Mutex
	store Store

	filterIn FilterInput
	filter   FilterState
	sort     SortState
	page     PageState
	sel      *Selection
	cache    rowCache

	state   ViewState
	editing core.Transaction
}

func NewController(store Store) *Controller {
	return &Controller{
		store: store,
		page:  NewPageState(),
		sel:   NewSelection(),
	}
}

// Refresh drops the cached page so the next render recomputes from the
// current store state. Handlers call it once at the start of each user
// interaction; the cache only spans the render cycle of that
// interaction.
func (c *Controller) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.invalidate()
}

// Rows returns the current page of the filtered, sorted collection,
// clamping the page number server-side before slicing. The result is
// memoized until the next mutation or Refresh.
func (c *Controller) Rows(ctx context.Context) (Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rowsLocked(ctx)
}

func (c *Controller) rowsLocked(ctx context.Context) (Page, error) {
	if p, ok := c.cache.get(); ok {
		return p, nil
	}
	filtered, err := c.filteredLocked(ctx)
	if err != nil {
		return Page{}, err
	}
	sorted := c.sort.Apply(filtered)
	c.page.Clamp(len(sorted))
	p := Page{
		Rows:      c.page.Slice(sorted),
		Number:    c.page.Page,
		Size:      c.page.Size,
		PageCount: c.page.PageCount(len(sorted)),
		Total:     len(sorted),
	}
	c.cache.set(p)
	return p, nil
}

func (c *Controller) filteredLocked(ctx context.Context) ([]core.Transaction, error) {
	rows, err := c.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return c.filter.Apply(rows), nil
}

// SetFilters applies the filter panel input. Any change to the filter
// clears the selection (it is defined relative to one filter context)
// and resets pagination to the first page.
func (c *Controller) SetFilters(in FilterInput) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := in.State()
	if c.filter.Equal(next) {
		return
	}
	c.filterIn = in
	c.filter = next
	c.sel.Clear()
	c.page.Page = 1
	c.cache.invalidate()
}

// ResetFilters clears every constraint.
func (c *Controller) ResetFilters() {
	c.SetFilters(FilterInput{})
}

// Filters returns the raw filter input for re-rendering the panel.
func (c *Controller) Filters() FilterInput {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filterIn
}

// SortBy toggles sorting on the named column: a new column sorts
// ascending, the active one flips direction.
func (c *Controller) SortBy(raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	col := ParseColumn(raw)
	if col == ColumnNone {
		return
	}
	c.sort.Toggle(col)
	c.cache.invalidate()
}

// Sort returns the active sort state for header rendering.
func (c *Controller) Sort() SortState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sort
}

// SetPage moves to the requested page; the value is clamped at render
// time against the current filtered count.
func (c *Controller) SetPage(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n < 1 {
		n = 1
	}
	c.page.Page = n
	c.cache.invalidate()
}

// SetPageSize changes the window size, falling back to the default for
// invalid values, and returns to the first page.
func (c *Controller) SetPageSize(size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	allowed := false
	for _, s := range PageSizes {
		if s == size {
			allowed = true
			break
		}
	}
	if !allowed {
		size = DefaultPageSize
	}
	c.page.SetSize(size)
	c.cache.invalidate()
}

// ToggleSelect flips one row's membership in the bulk selection.
func (c *Controller) ToggleSelect(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel.Toggle(id)
	c.cache.invalidate()
}

// SelectCurrentPage selects every row on the rendered page.
func (c *Controller) SelectCurrentPage(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := c.rowsLocked(ctx)
	if err != nil {
		return err
	}
	ids := make([]int64, len(p.Rows))
	for i, t := range p.Rows {
		ids[i] = t.ID
	}
	c.sel.SelectPage(ids)
	c.cache.invalidate()
	return nil
}

// SelectAllMatchingFilter selects the whole filtered set by contract:
// the ids are resolved against the filter predicate when the bulk
// action runs, not now.
func (c *Controller) SelectAllMatchingFilter() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel.SelectAllMatchingFilter()
	c.cache.invalidate()
}

// ClearSelection empties the bulk selection.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel.Clear()
	c.cache.invalidate()
}

// IsSelected reports one row's selection state for checkbox rendering.
func (c *Controller) IsSelected(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel.IsSelected(id)
}

// SelectionEmpty reports whether a bulk action has any possible target.
func (c *Controller) SelectionEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel.Empty()
}

// SelectionAll reports whether the selection covers all filtered rows.
func (c *Controller) SelectionAll() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel.All()
}

// ResolveSelection evaluates the selection against the filtered set as
// it exists right now, for export and delete.
func (c *Controller) ResolveSelection(ctx context.Context) ([]core.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolveLocked(ctx)
}

func (c *Controller) resolveLocked(ctx context.Context) ([]core.Transaction, error) {
	filtered, err := c.filteredLocked(ctx)
	if err != nil {
		return nil, err
	}
	return c.sel.Resolve(filtered), nil
}

// ResolveForExport returns the rows an export should contain: the
// resolved selection, or the whole filtered set when nothing is
// selected. An export is a read, the selection is left untouched.
func (c *Controller) ResolveForExport(ctx context.Context) ([]core.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sel.Empty() {
		return c.filteredLocked(ctx)
	}
	return c.resolveLocked(ctx)
}

// Create opens the edit modal on a blank transaction.
func (c *Controller) Create() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editing.ID != 0 {
		c.editing = core.BlankTransaction()
	}
	c.state = Editing
}

// Edit loads a stored record into the edit modal. Re-opening the record
// already being edited keeps any in-progress form state.
func (c *Controller) Edit(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editing.ID != id {
		t, err := c.store.GetTransaction(ctx, id)
		if err != nil {
			return fmt.Errorf("load transaction %d: %w", id, err)
		}
		c.editing = t
	}
	c.state = Editing
	return nil
}

// CancelEdit closes the modal without saving.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Viewing
}

// Editing returns the record currently in the edit modal.
func (c *Controller) Editing() core.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editing.ID == 0 && c.editing.Status == "" {
		return core.BlankTransaction()
	}
	return c.editing
}

// Save validates the edit form and persists it, creating or updating
// depending on whether the modal holds a stored record. On validation
// failure the modal stays open, the record is unchanged and the field
// errors are returned.
func (c *Controller) Save(ctx context.Context, form core.TransactionForm) (core.FieldErrors, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tx, fieldErrs := form.Validate()
	if !fieldErrs.Empty() {
		return fieldErrs, nil
	}
	tx.ID = c.editing.ID
	if tx.ID == 0 {
		created, err := c.store.CreateTransaction(ctx, tx)
		if err != nil {
			return nil, fmt.Errorf("create transaction: %w", err)
		}
		c.editing = created
	} else {
		if err := c.store.UpdateTransaction(ctx, tx); err != nil {
			return nil, fmt.Errorf("update transaction %d: %w", tx.ID, err)
		}
		c.editing = tx
	}
	c.state = Viewing
	c.cache.invalidate()
	return nil, nil
}

// ConfirmDelete opens the delete confirmation for the current selection.
func (c *Controller) ConfirmDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sel.Empty() {
		return
	}
	c.state = ConfirmingDelete
}

// CancelDelete closes the confirmation without deleting.
func (c *Controller) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Viewing
}

// DeleteSelected removes the resolved selection from the store, clears
// the selection and closes the confirmation. The filter predicate is
// re-applied now, so the deleted set reflects the store at action time.
// The returned ids are the ones handed to the store, resolved under the
// same lock as the delete.
func (c *Controller) DeleteSelected(ctx context.Context) ([]int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows, err := c.resolveLocked(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(rows))
	for i, t := range rows {
		ids[i] = t.ID
	}
	if _, err := c.store.DeleteTransactions(ctx, ids); err != nil {
		return nil, fmt.Errorf("bulk delete: %w", err)
	}
	c.sel.Clear()
	c.state = Viewing
	c.cache.invalidate()
	return ids, nil
}

// State returns the current modal state.
func (c *Controller) State() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
