package dashboard

import (
	"testing"

	"finboard/internal/core"
)

func TestSelectionToggleExplicit(t *testing.T) {
	s := NewSelection()
	if !s.Empty() {
		t.Fatalf("new selection should be empty")
	}
	s.Toggle(7)
	if !s.IsSelected(7) || s.Empty() {
		t.Fatalf("toggle on failed")
	}
	s.Toggle(7)
	if s.IsSelected(7) || !s.Empty() {
		t.Fatalf("toggle off failed")
	}
}

func TestSelectionSelectPage(t *testing.T) {
	s := NewSelection()
	s.SelectPage([]int64{1, 2, 3})
	for _, id := range []int64{1, 2, 3} {
		if !s.IsSelected(id) {
			t.Fatalf("page id %d not selected", id)
		}
	}
	if s.IsSelected(4) {
		t.Fatalf("id outside page selected")
	}
}

// Select all, deselect one: resolution excludes exactly that id from the
// filtered set at resolution time.
func TestSelectAllThenExcludeOne(t *testing.T) {
	s := NewSelection()
	s.SelectAllMatchingFilter()
	s.Toggle(2)

	rows := sampleRows()
	got := s.Resolve(rows)
	if len(got) != len(rows)-1 {
		t.Fatalf("got %d rows, want %d", len(got), len(rows)-1)
	}
	for _, tx := range got {
		if tx.ID == 2 {
			t.Fatalf("excluded id 2 still resolved")
		}
	}
	if s.IsSelected(2) {
		t.Fatalf("excluded id reported as selected")
	}

	// Re-toggling clears the exclusion.
	s.Toggle(2)
	if len(s.Resolve(rows)) != len(rows) {
		t.Fatalf("exclusion not cleared by second toggle")
	}
}

// All mode resolves against the filtered set as it exists now: a record
// added to the matching set after selection is included.
func TestSelectAllIsLive(t *testing.T) {
	s := NewSelection()
	s.SelectAllMatchingFilter()

	rows := sampleRows()
	before := s.Resolve(rows)
	if len(before) != len(rows) {
		t.Fatalf("all mode should resolve every filtered row")
	}

	grown := append(rows, core.Transaction{ID: 99, Title: "late arrival", Amount: core.Money{Cents: 100}})
	after := s.Resolve(grown)
	if len(after) != len(grown) {
		t.Fatalf("record added before action should be included, got %d of %d", len(after), len(grown))
	}
}

func TestSelectPageInAllModeClearsExclusions(t *testing.T) {
	s := NewSelection()
	s.SelectAllMatchingFilter()
	s.Toggle(1)
	s.Toggle(2)
	s.SelectPage([]int64{1, 3})
	if !s.IsSelected(1) {
		t.Fatalf("select page should re-include excluded page row")
	}
	if s.IsSelected(2) {
		t.Fatalf("exclusion off the page should survive")
	}
}

func TestSelectionClear(t *testing.T) {
	s := NewSelection()
	s.SelectAllMatchingFilter()
	s.Toggle(5)
	s.Clear()
	if s.All() || !s.Empty() || s.IsSelected(5) {
		t.Fatalf("clear did not reset selection: %+v", s)
	}
}

func TestResolveIDs(t *testing.T) {
	s := NewSelection()
	s.Toggle(3)
	s.Toggle(1)
	got := s.ResolveIDs(sampleRows())
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("resolved ids %v, want [1 3] in input order", got)
	}
}
