package core

import (
	"errors"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"simple decimal", "12.34", 1234, false},
		{"comma separator", "12,34", 1234, false},
		{"whole number", "50", 5000, false},
		{"single fractional digit", "12.3", 1230, false},
		{"third digit rounds down", "12.344", 1234, false},
		{"third digit rounds up", "12.345", 1235, false},
		{"leading dot", ".50", 50, false},
		{"whitespace trimmed", "  9.99  ", 999, false},
		{"empty", "", 0, true},
		{"zero", "0", 0, true},
		{"zero decimal", "0.00", 0, true},
		{"negative", "-5.00", 0, true},
		{"explicit plus", "+5.00", 0, true},
		{"letters", "abc", 0, true},
		{"two dots", "1.2.3", 0, true},
		{"digits with letters", "12a.50", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAmount) {
					t.Errorf("ParseDecimalToCents(%q) error = %v, want ErrInvalidAmount", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDecimalToCents(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestMoneyDecimal(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{1234, "12.34"},
		{50, "0.50"},
		{5, "0.05"},
		{100000, "1000.00"},
		{-250, "-2.50"},
	}
	for _, tt := range tests {
		if got := (Money{Cents: tt.cents}).Decimal(); got != tt.want {
			t.Errorf("Money{%d}.Decimal() = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestParseDecimalRoundTrip(t *testing.T) {
	m := Money{Cents: 7550}
	got, err := ParseDecimalToCents(m.Decimal())
	if err != nil || got != m.Cents {
		t.Errorf("round trip = %d, %v, want %d", got, err, m.Cents)
	}
}
