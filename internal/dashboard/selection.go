package dashboard

import "finboard/internal/core"

// Selection tracks which record ids a bulk action (delete, export)
// targets. Two modes:
//
//   - explicit: ids holds the selected records.
//   - all-matching-filter: ids holds *exclusions* from the full filtered
//     set, so "select all, then deselect a few" never materializes every
//     id.
//
// In all mode the selection is defined by the filter predicate at
// *action* time, not a frozen id list: records entering the matching set
// between selection and action are included. That race is accepted, the
// operation is filter-defined.
type Selection struct {
	all bool
	ids map[int64]struct{}
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: make(map[int64]struct{})}
}

// Toggle flips the selected state of one record. In all mode this adds
// or removes an exclusion.
func (s *Selection) Toggle(id int64) {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

// SelectPage adds the visible page's ids to an explicit selection. In
// all mode every row is already covered, so page ids only clear their
// exclusions.
func (s *Selection) SelectPage(ids []int64) {
	for _, id := range ids {
		if s.all {
			delete(s.ids, id)
		} else {
			s.ids[id] = struct{}{}
		}
	}
}

// SelectAllMatchingFilter switches to all mode with no exclusions.
func (s *Selection) SelectAllMatchingFilter() {
	s.all = true
	s.ids = make(map[int64]struct{})
}

// Clear resets to an empty explicit selection.
func (s *Selection) Clear() {
	s.all = false
	s.ids = make(map[int64]struct{})
}

// IsSelected reports whether one record is currently selected.
func (s *Selection) IsSelected(id int64) bool {
	_, ok := s.ids[id]
	if s.all {
		return !ok
	}
	return ok
}

// All reports whether the selection is in all-matching-filter mode.
func (s *Selection) All() bool {
	return s.all
}

// Empty reports whether no record can be selected: explicit mode with no
// ids. All mode is never empty here even with exclusions, since the
// filtered set is unknown until resolution.
func (s *Selection) Empty() bool {
	return !s.all && len(s.ids) == 0
}

// Resolve applies the selection to the filtered set as it exists now,
// returning the targeted records in input order. Explicit mode keeps
// rows whose id is selected; all mode keeps everything minus exclusions.
func (s *Selection) Resolve(filtered []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, 0, len(filtered))
	for _, t := range filtered {
		if s.IsSelected(t.ID) {
			out = append(out, t)
		}
	}
	return out
}

// ResolveIDs is Resolve returning only the record ids.
func (s *Selection) ResolveIDs(filtered []core.Transaction) []int64 {
	rows := s.Resolve(filtered)
	ids := make([]int64, len(rows))
	for i, t := range rows {
		ids[i] = t.ID
	}
	return ids
}
