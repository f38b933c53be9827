package service

import (
	"testing"
	"time"

	"github.com/paisaledger/fintrack/internal/models"
)

func TestRecordExpenseRunsChainWithoutBalance(t *testing.T) {
	svc, store := newTestService()
	const user = "u1"

	err := svc.RecordExpense(&models.Expense{
		UserID: user, Year: 2024, Month: 6, Day: 12,
		Type: "PERSONAL", Category: "GROCERY", Cost: dec("2500"),
	})
	if err != nil {
		t.Fatalf("RecordExpense: %v", err)
	}

	monthly, _ := store.MonthlyDistributions(user, "2024-2025")
	if len(monthly) != 1 || !monthly[0].Expenses.Equal(dec("2500")) {
		t.Fatalf("monthly rows = %+v, want one June row with expenses 2500", monthly)
	}
	yearly, _ := store.YearlyDistributions(user, "2024-2025")
	if len(yearly) != 1 || !yearly[0].Bank.Equal(dec("-2500")) {
		t.Fatalf("yearly rows = %+v, want one row with bank -2500", yearly)
	}
}

func TestRecordIncomeStampsFinancialYear(t *testing.T) {
	svc, store := newTestService()
	const user = "u1"

	// January belongs to the financial year that started the previous April.
	err := svc.RecordIncome(&models.Income{UserID: user, Year: 2025, Month: 1, Day: 31, Salary: dec("60000"), Tax: dec("6000")})
	if err != nil {
		t.Fatalf("RecordIncome: %v", err)
	}
	rows, _ := store.IncomesByYear(user, "2024-2025")
	if len(rows) != 1 {
		t.Fatalf("income not stamped into 2024-2025: %+v", rows)
	}
}

func TestRecordIncomeBooksAdjustmentAgainstDeclaredBalance(t *testing.T) {
	svc, store := newTestService()
	const user = "u1"
	const fy = "2024-2025"

	declareBalance(t, svc, user, fy, "0")
	err := svc.RecordIncome(&models.Income{UserID: user, Year: 2024, Month: 5, Day: 1, Salary: dec("1200")})
	if err != nil {
		t.Fatalf("RecordIncome: %v", err)
	}

	// The 1200 the declared balance cannot account for is absorbed as
	// ADJUSTED expense, so the computed balance lands on the declared one.
	if total := adjustedTotal(t, svc, user, fy); !total.Equal(dec("1200")) {
		t.Errorf("adjusted total = %s, want 1200", total)
	}
	computed, _ := store.SumBankThroughYear(user, 2024)
	if !computed.Equal(dec("0")) {
		t.Errorf("computed balance = %s, want 0", computed)
	}
}

func TestImportTransactionsWatermark(t *testing.T) {
	svc, store := newTestService()
	const user = "u1"

	if _, err := svc.UpdateWatermark(user, WatermarkExpense, time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("UpdateWatermark: %v", err)
	}

	batch := ImportBatch{Expenses: []models.Expense{
		{Year: 2024, Month: 6, Day: 15, Type: "PERSONAL", Category: "FUEL", Cost: dec("900")},
		{Year: 2024, Month: 7, Day: 10, Type: "PERSONAL", Category: "FUEL", Cost: dec("1100")},
	}}

	fys, err := svc.ImportTransactions(user, batch)
	if err != nil {
		t.Fatalf("ImportTransactions: %v", err)
	}
	if len(fys) != 1 || fys[0] != "2024-2025" {
		t.Fatalf("affected years = %v, want [2024-2025]", fys)
	}
	rows, _ := store.ExpensesByYear(user, "2024-2025")
	if len(rows) != 1 || rows[0].Month != 7 {
		t.Fatalf("expenses = %+v, want only the July row past the watermark", rows)
	}

	cfg, _ := store.UserConfig(user)
	if want := time.Date(2024, time.July, 10, 0, 0, 0, 0, time.UTC); !cfg.ExpenseLastUpdatedDate.Equal(want) {
		t.Errorf("expense watermark = %s, want %s", cfg.ExpenseLastUpdatedDate, want)
	}

	// Replaying the same batch is a no-op.
	fys, err = svc.ImportTransactions(user, batch)
	if err != nil {
		t.Fatalf("replay ImportTransactions: %v", err)
	}
	if len(fys) != 0 {
		t.Errorf("replay affected years = %v, want none", fys)
	}
	rows, _ = store.ExpensesByYear(user, "2024-2025")
	if len(rows) != 1 {
		t.Errorf("replay inserted rows, got %d expenses", len(rows))
	}
}

func TestImportTransactionsMultipleYears(t *testing.T) {
	svc, store := newTestService()
	const user = "u1"

	batch := ImportBatch{Incomes: []models.Income{
		{Year: 2024, Month: 3, Day: 31, Salary: dec("50000"), Tax: dec("5000")},
		{Year: 2024, Month: 4, Day: 30, Salary: dec("52000"), Tax: dec("5200")},
	}}
	fys, err := svc.ImportTransactions(user, batch)
	if err != nil {
		t.Fatalf("ImportTransactions: %v", err)
	}
	if len(fys) != 2 || fys[0] != "2023-2024" || fys[1] != "2024-2025" {
		t.Fatalf("affected years = %v, want sorted [2023-2024 2024-2025]", fys)
	}
	for _, fy := range fys {
		yearly, _ := store.YearlyDistributions(user, fy)
		if len(yearly) != 1 {
			t.Errorf("FY %s: got %d yearly rows, want 1", fy, len(yearly))
		}
	}
}
