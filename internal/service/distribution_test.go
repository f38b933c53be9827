package service

import (
	"fmt"
	"testing"

	"github.com/paisaledger/fintrack/internal/models"
)

func TestRebuildMonthlyBankInvariant(t *testing.T) {
	svc, store := newTestService()
	const user = "u1"
	const fy = "2024-2025"

	store.InsertIncome(&models.Income{UserID: user, FinancialYear: fy, Year: 2024, Month: 5, Day: 1, Salary: dec("100000"), Tax: dec("10000")})
	store.InsertExpense(&models.Expense{UserID: user, FinancialYear: fy, Year: 2024, Month: 5, Day: 3, Type: "PERSONAL", Category: "GROCERY", Cost: dec("20000")})
	store.InsertInvest(&models.Invest{UserID: user, FinancialYear: fy, Year: 2024, Month: 5, Day: 5, Type: "MUTUALFUND", Name: "BLUECHIP", Order: models.OrderBuy, Units: dec("100"), NAV: dec("150"), Cost: dec("15000")})
	store.InsertInvest(&models.Invest{UserID: user, FinancialYear: fy, Year: 2024, Month: 5, Day: 9, Type: "MUTUALFUND", Name: "BLUECHIP", Order: models.OrderSell, Units: dec("30"), NAV: dec("166.67"), Cost: dec("5000")})
	store.InsertInterest(&models.Interest{UserID: user, FinancialYear: fy, Year: 2024, Month: 5, Day: 10, Type: "BANK", Name: "HDFC", CostIn: dec("500"), CostOut: dec("100")})
	store.InsertInterest(&models.Interest{UserID: user, FinancialYear: fy, Year: 2024, Month: 5, Day: 12, Type: "PF", Name: "EPF", CostIn: dec("300")})
	store.InsertLoan(&models.Loan{UserID: user, FinancialYear: fy, Year: 2024, Month: 5, Day: 15, Type: "HOME", Name: "HOMELOAN", LoanRepayment: dec("2000")})

	if err := svc.RebuildMonthly(user, fy); err != nil {
		t.Fatalf("RebuildMonthly: %v", err)
	}

	rows, err := store.MonthlyDistributions(user, fy)
	if err != nil {
		t.Fatalf("MonthlyDistributions: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d monthly rows, want 1", len(rows))
	}
	m := rows[0]
	if m.Year != 2024 || m.Month != 5 {
		t.Fatalf("got row for %d-%d, want 2024-5", m.Year, m.Month)
	}
	// PF interest counts in interest_in but not in the bank delta.
	if !m.InterestIn.Equal(dec("800")) {
		t.Errorf("interest_in = %s, want 800", m.InterestIn)
	}
	wantBank := dec("100000").Add(dec("5000")).Add(dec("500")).
		Sub(dec("15000")).Sub(dec("20000")).Sub(dec("2000")).Sub(dec("100")).Sub(dec("10000"))
	if !m.Bank.Equal(wantBank) {
		t.Errorf("bank = %s, want %s", m.Bank, wantBank)
	}
}

func TestRebuildMonthlyIdempotent(t *testing.T) {
	svc, store := newTestService()
	const user = "u1"
	const fy = "2024-2025"

	store.InsertIncome(&models.Income{UserID: user, FinancialYear: fy, Year: 2024, Month: 4, Day: 1, Salary: dec("50000"), Tax: dec("5000")})
	store.InsertExpense(&models.Expense{UserID: user, FinancialYear: fy, Year: 2024, Month: 7, Day: 2, Type: "PERSONAL", Category: "RENT", Cost: dec("18000")})

	if err := svc.RebuildMonthly(user, fy); err != nil {
		t.Fatalf("first RebuildMonthly: %v", err)
	}
	first, _ := store.MonthlyDistributions(user, fy)

	if err := svc.RebuildMonthly(user, fy); err != nil {
		t.Fatalf("second RebuildMonthly: %v", err)
	}
	second, _ := store.MonthlyDistributions(user, fy)

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("got %d then %d rows, want 2 both times", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		a.ID, b.ID = 0, 0
		if fmt.Sprintf("%+v", a) != fmt.Sprintf("%+v", b) {
			t.Errorf("row %d changed on rerun: %+v vs %+v", i, a, b)
		}
	}
}

func TestRebuildMonthlySkipsEmptyMonths(t *testing.T) {
	svc, store := newTestService()
	const user = "u1"
	const fy = "2024-2025"

	store.InsertExpense(&models.Expense{UserID: user, FinancialYear: fy, Year: 2024, Month: 11, Day: 20, Type: "PERSONAL", Category: "TRAVEL", Cost: dec("9000")})

	if err := svc.RebuildMonthly(user, fy); err != nil {
		t.Fatalf("RebuildMonthly: %v", err)
	}
	rows, _ := store.MonthlyDistributions(user, fy)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1 (empty months emit no row)", len(rows))
	}
}

func TestRebuildYearlySumsMonthly(t *testing.T) {
	svc, store := newTestService()
	const user = "u1"
	const fy = "2024-2025"

	store.InsertIncome(&models.Income{UserID: user, FinancialYear: fy, Year: 2024, Month: 4, Day: 1, Salary: dec("50000"), Tax: dec("5000")})
	store.InsertIncome(&models.Income{UserID: user, FinancialYear: fy, Year: 2024, Month: 5, Day: 1, Salary: dec("50000"), Tax: dec("5000")})
	store.InsertExpense(&models.Expense{UserID: user, FinancialYear: fy, Year: 2024, Month: 5, Day: 7, Type: "PERSONAL", Category: "RENT", Cost: dec("18000")})

	if err := svc.RebuildMonthly(user, fy); err != nil {
		t.Fatalf("RebuildMonthly: %v", err)
	}
	if err := svc.RebuildYearly(user, fy); err != nil {
		t.Fatalf("RebuildYearly: %v", err)
	}

	rows, err := store.YearlyDistributions(user, fy)
	if err != nil {
		t.Fatalf("YearlyDistributions: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d yearly rows, want 1", len(rows))
	}
	y := rows[0]
	if !y.Income.Equal(dec("100000")) || !y.Tax.Equal(dec("10000")) || !y.Expenses.Equal(dec("18000")) {
		t.Errorf("yearly sums wrong: income %s tax %s expenses %s", y.Income, y.Tax, y.Expenses)
	}
	if !y.Bank.Equal(dec("72000")) {
		t.Errorf("yearly bank = %s, want 72000", y.Bank)
	}
}
