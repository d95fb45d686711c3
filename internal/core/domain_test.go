package core

import (
	"errors"
	"testing"
)

func TestParseStatus(t *testing.T) {
	for _, st := range Statuses {
		got, err := ParseStatus(string(st))
		if err != nil || got != st {
			t.Errorf("ParseStatus(%q) = %v, %v", st, got, err)
		}
	}

	for _, bad := range []string{"", "cancelled", "SUCCESS", "done"} {
		if _, err := ParseStatus(bad); !errors.Is(err, ErrInvalidStatus) {
			t.Errorf("ParseStatus(%q) error = %v, want ErrInvalidStatus", bad, err)
		}
	}
}

func TestStatusRankOrder(t *testing.T) {
	if StatusSuccess.Rank() != 0 || StatusProcessing.Rank() != 1 || StatusFailed.Rank() != 2 {
		t.Errorf("ranks = %d %d %d, want 0 1 2",
			StatusSuccess.Rank(), StatusProcessing.Rank(), StatusFailed.Rank())
	}
	if Status("bogus").Rank() != len(Statuses) {
		t.Errorf("unknown status should rank last")
	}
}

func TestDateParseAndFormat(t *testing.T) {
	d, err := ParseDate("2025-01-10")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if d.ISO() != "2025-01-10" {
		t.Errorf("ISO() = %q", d.ISO())
	}
	if d.IsEmpty() {
		t.Error("parsed date reported empty")
	}
	if !(Date{}).IsEmpty() {
		t.Error("zero date not reported empty")
	}

	for _, bad := range []string{"", "10/01/2025", "2025-13-01", "yesterday"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q) accepted invalid input", bad)
		}
	}
}

func TestBlankTransactionDefaults(t *testing.T) {
	b := BlankTransaction()
	if b.ID != 0 {
		t.Errorf("blank ID = %d, want 0", b.ID)
	}
	if b.Status != StatusSuccess {
		t.Errorf("blank Status = %q, want success", b.Status)
	}
	if !b.Date.Equal(Today().Time) {
		t.Errorf("blank Date = %v, want today", b.Date)
	}
}
