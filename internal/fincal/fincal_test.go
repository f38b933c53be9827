package fincal

import (
	"testing"
	"time"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		year, month int
		want        string
	}{
		{2024, 1, "2023-2024"},
		{2024, 2, "2023-2024"},
		{2024, 3, "2023-2024"},
		{2024, 4, "2024-2025"},
		{2024, 9, "2024-2025"},
		{2024, 12, "2024-2025"},
		{1999, 3, "1998-1999"},
		{1999, 4, "1999-2000"},
	}
	for _, tt := range tests {
		if got := Compute(tt.year, tt.month); got != tt.want {
			t.Errorf("Compute(%d, %d) = %q, want %q", tt.year, tt.month, got, tt.want)
		}
	}
}

func TestCurrent(t *testing.T) {
	now := time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC)
	if got := Current(now); got != "2024-2025" {
		t.Errorf("Current(feb 2025) = %q, want 2024-2025", got)
	}
	now = time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	if got := Current(now); got != "2025-2026" {
		t.Errorf("Current(apr 2025) = %q, want 2025-2026", got)
	}
}

func TestParse(t *testing.T) {
	start, end, err := Parse("2024-2025")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if start != 2024 || end != 2025 {
		t.Errorf("Parse(2024-2025) = (%d, %d)", start, end)
	}
	for _, bad := range []string{"2024", "2024-2026", "abcd-efgh", ""} {
		if _, _, err := Parse(bad); err == nil {
			t.Errorf("Parse(%q) expected error", bad)
		}
	}
}

func TestMonths(t *testing.T) {
	months, err := Months("2024-2025")
	if err != nil {
		t.Fatalf("Months: %v", err)
	}
	if len(months) != 12 {
		t.Fatalf("got %d months, want 12", len(months))
	}
	if months[0] != (YearMonth{2024, 4}) {
		t.Errorf("first month = %v, want April 2024", months[0])
	}
	if months[8] != (YearMonth{2024, 12}) {
		t.Errorf("ninth month = %v, want December 2024", months[8])
	}
	if months[11] != (YearMonth{2025, 3}) {
		t.Errorf("last month = %v, want March 2025", months[11])
	}
}

func TestMonthsThrough(t *testing.T) {
	now := time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC)

	// Current FY truncates at now's month.
	months, err := MonthsThrough("2024-2025", now)
	if err != nil {
		t.Fatalf("MonthsThrough: %v", err)
	}
	if len(months) != 4 {
		t.Fatalf("got %d months, want 4 (Apr..Jul)", len(months))
	}
	if months[3] != (YearMonth{2024, 7}) {
		t.Errorf("last month = %v, want July 2024", months[3])
	}

	// Past FY keeps all twelve.
	months, err = MonthsThrough("2022-2023", now)
	if err != nil {
		t.Fatalf("MonthsThrough: %v", err)
	}
	if len(months) != 12 {
		t.Errorf("got %d months for past FY, want 12", len(months))
	}

	// Current FY in its Jan-Mar tail wraps into the end year.
	now = time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	months, err = MonthsThrough("2024-2025", now)
	if err != nil {
		t.Fatalf("MonthsThrough: %v", err)
	}
	if len(months) != 11 {
		t.Fatalf("got %d months, want 11 (Apr..Feb)", len(months))
	}
	if months[10] != (YearMonth{2025, 2}) {
		t.Errorf("last month = %v, want February 2025", months[10])
	}
}
