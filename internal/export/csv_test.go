package export

import (
	"strings"
	"testing"

	"finboard/internal/core"
)

func TestWriteCSV(t *testing.T) {
	rows := []core.Transaction{
		{ID: 1, Title: "Payment to Alice", Amount: core.Money{Cents: 5000}, Status: core.StatusSuccess, Date: core.NewDate(2025, 1, 10)},
		{ID: 2, Title: `Payment, with "quotes"`, Amount: core.Money{Cents: 99}, Status: core.StatusFailed, Date: core.NewDate(2025, 2, 5)},
	}

	var sb strings.Builder
	if err := WriteCSV(&sb, rows); err != nil {
		t.Fatalf("write: %v", err)
	}

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2 rows: %q", len(lines), sb.String())
	}
	if lines[0] != "id,title,amount,status,date" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != "1,Payment to Alice,50.00,success,2025-01-10" {
		t.Fatalf("row 1 = %q", lines[1])
	}
	if !strings.Contains(lines[2], `"Payment, with ""quotes"""`) {
		t.Fatalf("row 2 not quoted: %q", lines[2])
	}
}

func TestWriteCSVEmptySelection(t *testing.T) {
	var sb strings.Builder
	if err := WriteCSV(&sb, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	if strings.TrimRight(sb.String(), "\n") != "id,title,amount,status,date" {
		t.Fatalf("empty export should still carry the header: %q", sb.String())
	}
}
