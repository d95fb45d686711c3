package dashboard

import (
	"testing"

	"finboard/internal/core"
)

func sampleRows() []core.Transaction {
	return []core.Transaction{
		{ID: 1, Title: "Payment to Alice", Amount: core.Money{Cents: 5000}, Status: core.StatusSuccess, Date: core.NewDate(2025, 1, 10)},
		{ID: 2, Title: "Payment to Bob", Amount: core.Money{Cents: 12500}, Status: core.StatusProcessing, Date: core.NewDate(2025, 2, 5)},
		{ID: 3, Title: "Refund from Carol", Amount: core.Money{Cents: 9900}, Status: core.StatusFailed, Date: core.NewDate(2025, 3, 1)},
		{ID: 4, Title: "payment to alice", Amount: core.Money{Cents: 20000}, Status: core.StatusSuccess, Date: core.NewDate(2025, 3, 15)},
	}
}

func TestFilterEmptyMatchesAll(t *testing.T) {
	rows := sampleRows()
	got := FilterState{}.Apply(rows)
	if len(got) != len(rows) {
		t.Fatalf("empty filter returned %d of %d rows", len(got), len(rows))
	}
}

func TestFilterSearchCaseInsensitiveSubstring(t *testing.T) {
	got := FilterInput{Search: "ALICE"}.State().Apply(sampleRows())
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	for _, tx := range got {
		if tx.ID != 1 && tx.ID != 4 {
			t.Fatalf("unexpected row %d", tx.ID)
		}
	}
}

func TestFilterAmountBoundsInclusive(t *testing.T) {
	cases := []struct {
		name string
		in   FilterInput
		want []int64
	}{
		{"min only", FilterInput{AmountMin: "99"}, []int64{2, 3, 4}},
		{"max only", FilterInput{AmountMax: "99"}, []int64{1, 3}},
		{"min excludes below", FilterInput{AmountMin: "100"}, []int64{2, 4}},
		{"band", FilterInput{AmountMin: "50", AmountMax: "125"}, []int64{1, 2, 3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.State().Apply(sampleRows())
			if len(got) != len(tc.want) {
				t.Fatalf("got %d rows, want %d", len(got), len(tc.want))
			}
			for i, tx := range got {
				if tx.ID != tc.want[i] {
					t.Fatalf("row %d: got id %d, want %d", i, tx.ID, tc.want[i])
				}
			}
		})
	}
}

// A record with amount 50 must be excluded when the minimum is 100.
func TestFilterAmountMinExcludesSmaller(t *testing.T) {
	rows := []core.Transaction{{ID: 1, Title: "small", Amount: core.Money{Cents: 5000}}}
	got := FilterInput{AmountMin: "100"}.State().Apply(rows)
	if len(got) != 0 {
		t.Fatalf("amount 50 should be excluded by min 100, got %d rows", len(got))
	}
}

func TestFilterStatusAndDates(t *testing.T) {
	got := FilterInput{Status: "success"}.State().Apply(sampleRows())
	if len(got) != 2 {
		t.Fatalf("status filter: got %d rows", len(got))
	}

	got = FilterInput{DateMin: "2025-02-05", DateMax: "2025-03-01"}.State().Apply(sampleRows())
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 3 {
		t.Fatalf("date band: got %v", got)
	}
}

func TestFilterMalformedBoundsIgnored(t *testing.T) {
	in := FilterInput{AmountMin: "abc", AmountMax: "-5", DateMin: "not-a-date", Status: "bogus"}
	fs := in.State()
	if !fs.IsZero() {
		t.Fatalf("malformed bounds should leave the filter empty: %+v", fs)
	}
	if got := fs.Apply(sampleRows()); len(got) != 4 {
		t.Fatalf("malformed filter excluded rows: %d", len(got))
	}
}

// Every returned row satisfies all present constraints, and rows
// violating none are never dropped.
func TestFilterSubsetProperty(t *testing.T) {
	rows := sampleRows()
	inputs := []FilterInput{
		{},
		{Search: "payment"},
		{Status: "failed"},
		{AmountMin: "60", DateMax: "2025-03-01"},
		{Search: "to", AmountMin: "50", AmountMax: "200", DateMin: "2025-01-01", DateMax: "2025-12-31"},
	}
	for _, in := range inputs {
		fs := in.State()
		got := fs.Apply(rows)
		seen := make(map[int64]bool)
		for _, tx := range got {
			if !fs.Match(tx) {
				t.Fatalf("filter %+v returned non-matching row %d", in, tx.ID)
			}
			seen[tx.ID] = true
		}
		for _, tx := range rows {
			if fs.Match(tx) && !seen[tx.ID] {
				t.Fatalf("filter %+v dropped matching row %d", in, tx.ID)
			}
		}
	}
}

func TestFilterEqualDetectsChange(t *testing.T) {
	a := FilterInput{Search: "x", AmountMin: "1"}.State()
	b := FilterInput{Search: "x", AmountMin: "1"}.State()
	if !a.Equal(b) {
		t.Fatalf("identical filters reported unequal")
	}
	c := FilterInput{Search: "x", AmountMin: "2"}.State()
	if a.Equal(c) {
		t.Fatalf("different bounds reported equal")
	}
}
