// Package fincal implements the April-March financial calendar used across
// the ledger. A financial year is labeled "startYear-endYear", e.g. "2024-2025"
// covers April 2024 through March 2025.
package fincal

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// YearMonth identifies one calendar month.
type YearMonth struct {
	Year  int
	Month int
}

// Compute returns the financial-year label for a calendar year and month.
func Compute(year, month int) string {
	if month >= 4 {
		return fmt.Sprintf("%d-%d", year, year+1)
	}
	return fmt.Sprintf("%d-%d", year-1, year)
}

// Current returns the financial-year label containing the given instant.
func Current(now time.Time) string {
	return Compute(now.Year(), int(now.Month()))
}

// Parse returns the start and end calendar years of a financial-year label.
func Parse(fy string) (start, end int, err error) {
	parts := strings.Split(fy, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid financial year %q, want \"YYYY-YYYY\"", fy)
	}
	start, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid financial year %q: %w", fy, err)
	}
	end, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid financial year %q: %w", fy, err)
	}
	if end != start+1 {
		return 0, 0, fmt.Errorf("invalid financial year %q: end year must be start year + 1", fy)
	}
	return start, end, nil
}

// Months returns the twelve months of a financial year in order, April first.
func Months(fy string) ([]YearMonth, error) {
	start, end, err := Parse(fy)
	if err != nil {
		return nil, err
	}
	months := make([]YearMonth, 0, 12)
	for m := 4; m <= 12; m++ {
		months = append(months, YearMonth{Year: start, Month: m})
	}
	for m := 1; m <= 3; m++ {
		months = append(months, YearMonth{Year: end, Month: m})
	}
	return months, nil
}

// MonthsThrough returns the months of a financial year truncated at now's
// month when fy is the current financial year; otherwise all twelve months.
func MonthsThrough(fy string, now time.Time) ([]YearMonth, error) {
	months, err := Months(fy)
	if err != nil {
		return nil, err
	}
	if fy != Current(now) {
		return months, nil
	}
	cutoff := YearMonth{Year: now.Year(), Month: int(now.Month())}
	out := make([]YearMonth, 0, 12)
	for _, ym := range months {
		out = append(out, ym)
		if ym == cutoff {
			break
		}
	}
	return out, nil
}
