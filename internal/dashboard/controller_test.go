package dashboard

import (
	"context"
	"testing"

	"finboard/internal/core"
)

// fakeStore is a minimal in-memory Store for controller tests.
type fakeStore struct {
	rows   []core.Transaction
	nextID int64
	lists  int
}

func newFakeStore(rows ...core.Transaction) *fakeStore {
	var max int64
	for _, t := range rows {
		if t.ID > max {
			max = t.ID
		}
	}
	return &fakeStore{rows: rows, nextID: max + 1}
}

func (f *fakeStore) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	f.lists++
	out := make([]core.Transaction, len(f.rows))
	copy(out, f.rows)
	return out, nil
}

func (f *fakeStore) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	for _, t := range f.rows {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

func (f *fakeStore) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = f.nextID
	f.nextID++
	f.rows = append(f.rows, t)
	return t, nil
}

func (f *fakeStore) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	for i := range f.rows {
		if f.rows[i].ID == t.ID {
			f.rows[i] = t
			return nil
		}
	}
	return core.ErrNotFound
}

func (f *fakeStore) DeleteTransactions(ctx context.Context, ids []int64) (int64, error) {
	drop := make(map[int64]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := f.rows[:0]
	var n int64
	for _, t := range f.rows {
		if drop[t.ID] {
			n++
			continue
		}
		kept = append(kept, t)
	}
	f.rows = kept
	return n, nil
}

func TestControllerRowsComposition(t *testing.T) {
	ctx := context.Background()
	c := NewController(newFakeStore(sampleRows()...))
	c.SetFilters(FilterInput{Search: "payment"})
	c.SortBy("amount")

	p, err := c.Rows(ctx)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if p.Total != 3 {
		t.Fatalf("filtered total = %d, want 3", p.Total)
	}
	want := []int64{1, 2, 4}
	for i, tx := range p.Rows {
		if tx.ID != want[i] {
			t.Fatalf("pos %d: id %d, want %d", i, tx.ID, want[i])
		}
	}
}

func TestControllerRowsCachedWithinInteraction(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(sampleRows()...)
	c := NewController(store)

	if _, err := c.Rows(ctx); err != nil {
		t.Fatalf("rows: %v", err)
	}
	listsAfterFirst := store.lists
	if _, err := c.Rows(ctx); err != nil {
		t.Fatalf("rows: %v", err)
	}
	if store.lists != listsAfterFirst {
		t.Fatalf("second render within interaction hit the store")
	}

	// A new interaction recomputes from the current store state.
	store.rows = store.rows[:2]
	c.Refresh()
	p, err := c.Rows(ctx)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if p.Total != 2 {
		t.Fatalf("refresh did not pick up store change, total=%d", p.Total)
	}
}

func TestControllerFilterChangeResetsPageAndSelection(t *testing.T) {
	ctx := context.Background()
	c := NewController(newFakeStore(makeRows(30)...))
	c.SetPage(3)
	c.ToggleSelect(1)
	c.ToggleSelect(2)

	c.SetFilters(FilterInput{Search: "row"})

	p, err := c.Rows(ctx)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if p.Number != 1 {
		t.Fatalf("filter change should reset to page 1, got %d", p.Number)
	}
	if !c.SelectionEmpty() {
		t.Fatalf("filter change should clear the selection")
	}

	// Re-applying the identical filter is not a change.
	c.SetPage(2)
	c.ToggleSelect(1)
	c.SetFilters(FilterInput{Search: "row"})
	if c.SelectionEmpty() {
		t.Fatalf("identical filter cleared the selection")
	}
}

func TestControllerPageClampedAfterShrink(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(makeRows(21)...)
	c := NewController(store)
	c.SetPage(3)

	p, err := c.Rows(ctx)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if p.Number != 3 || len(p.Rows) != 1 {
		t.Fatalf("expected short page 3, got page %d with %d rows", p.Number, len(p.Rows))
	}

	store.rows = store.rows[:10]
	c.Refresh()
	p, err = c.Rows(ctx)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if p.Number != 1 || len(p.Rows) != 10 {
		t.Fatalf("page not clamped after shrink: page %d, %d rows", p.Number, len(p.Rows))
	}
}

func TestControllerSaveCreateAndEdit(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(sampleRows()...)
	c := NewController(store)

	c.Create()
	if c.State() != Editing {
		t.Fatalf("create should open the edit modal")
	}
	fieldErrs, err := c.Save(ctx, core.TransactionForm{
		Title: "Payment to Dana", Amount: "42.50", Status: "processing", Date: "2025-04-01",
	})
	if err != nil || !fieldErrs.Empty() {
		t.Fatalf("save: errs=%v err=%v", fieldErrs, err)
	}
	if c.State() != Viewing {
		t.Fatalf("successful save should return to viewing")
	}
	if len(store.rows) != 5 {
		t.Fatalf("record not created")
	}

	if err := c.Edit(ctx, 1); err != nil {
		t.Fatalf("edit: %v", err)
	}
	fieldErrs, err = c.Save(ctx, core.TransactionForm{
		Title: "Payment to Alice (fixed)", Amount: "50.00", Status: "failed", Date: "2025-01-10",
	})
	if err != nil || !fieldErrs.Empty() {
		t.Fatalf("save edit: errs=%v err=%v", fieldErrs, err)
	}
	got, _ := store.GetTransaction(ctx, 1)
	if got.Status != core.StatusFailed {
		t.Fatalf("edit not persisted: %+v", got)
	}
}

// An invalid status fails validation with editing.status: in, keeps the
// modal open and leaves the record unchanged.
func TestControllerSaveInvalidStatus(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(sampleRows()...)
	c := NewController(store)

	if err := c.Edit(ctx, 1); err != nil {
		t.Fatalf("edit: %v", err)
	}
	before, _ := store.GetTransaction(ctx, 1)

	fieldErrs, err := c.Save(ctx, core.TransactionForm{
		Title: "Payment to Alice", Amount: "50.00", Status: "cancelled", Date: "2025-01-10",
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if fieldErrs["editing.status"] != core.RuleIn {
		t.Fatalf("want editing.status: in, got %v", fieldErrs)
	}
	if c.State() != Editing {
		t.Fatalf("validation failure must not transition state")
	}
	after, _ := store.GetTransaction(ctx, 1)
	if after != before {
		t.Fatalf("record changed despite validation failure")
	}
}

// Deleting the bulk selection removes exactly the resolved ids and
// closes the confirmation.
func TestControllerDeleteSelected(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(sampleRows()...)
	c := NewController(store)

	c.SetFilters(FilterInput{Status: "success"}) // rows 1 and 4
	c.SelectAllMatchingFilter()
	c.ToggleSelect(4) // exclude
	c.ConfirmDelete()
	if c.State() != ConfirmingDelete {
		t.Fatalf("confirm state not entered")
	}

	ids, err := c.DeleteSelected(ctx)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("deleted ids = %v, want [1]", ids)
	}
	if c.State() != Viewing {
		t.Fatalf("delete should close the confirmation")
	}
	if !c.SelectionEmpty() {
		t.Fatalf("delete should clear the selection")
	}
	if _, err := store.GetTransaction(ctx, 1); err == nil {
		t.Fatalf("row 1 should be gone")
	}
	for _, id := range []int64{2, 3, 4} {
		if _, err := store.GetTransaction(ctx, id); err != nil {
			t.Fatalf("row %d should survive", id)
		}
	}
}

func TestControllerSelectCurrentPage(t *testing.T) {
	ctx := context.Background()
	c := NewController(newFakeStore(makeRows(15)...))
	if err := c.SelectCurrentPage(ctx); err != nil {
		t.Fatalf("select page: %v", err)
	}
	for id := int64(1); id <= 10; id++ {
		if !c.IsSelected(id) {
			t.Fatalf("page row %d not selected", id)
		}
	}
	if c.IsSelected(11) {
		t.Fatalf("row beyond the page selected")
	}
}

// Exporting must never disturb the session's selection, not even
// transiently when nothing is selected and the whole filtered set goes
// out.
func TestControllerResolveForExport(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(sampleRows()...)
	c := NewController(store)
	c.SetFilters(FilterInput{Status: "success"}) // rows 1 and 4

	rows, err := c.ResolveForExport(ctx)
	if err != nil {
		t.Fatalf("resolve for export: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("empty selection should export the filtered set, got %d rows", len(rows))
	}
	if !c.SelectionEmpty() || c.SelectionAll() {
		t.Fatalf("export must leave the selection untouched")
	}

	c.ToggleSelect(4)
	rows, err = c.ResolveForExport(ctx)
	if err != nil {
		t.Fatalf("resolve for export: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != 4 {
		t.Fatalf("explicit selection should export only its rows, got %v", rows)
	}
	if !c.IsSelected(4) {
		t.Fatalf("export must leave the selection untouched")
	}
}

func TestControllerResolveSelectionAtActionTime(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(sampleRows()...)
	c := NewController(store)
	c.SetFilters(FilterInput{Search: "payment"})
	c.SelectAllMatchingFilter()

	// A matching record created after selection is part of the action.
	store.rows = append(store.rows, core.Transaction{
		ID: 50, Title: "Payment to Eve", Amount: core.Money{Cents: 700},
		Status: core.StatusSuccess, Date: core.NewDate(2025, 5, 1),
	})
	rows, err := c.ResolveSelection(ctx)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("resolved %d rows, want 4 including the late one", len(rows))
	}
}
