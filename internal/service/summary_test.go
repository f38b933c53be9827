package service

import (
	"strings"
	"testing"

	"github.com/paisaledger/fintrack/internal/models"
)

func seedSummaryData(t *testing.T, svc *Service, user string) {
	t.Helper()
	store := svc.store

	err := store.ReplaceMonthlyDistributions(user, "2024-2025", []models.MonthlyDistribution{
		{UserID: user, FinancialYear: "2024-2025", Year: 2024, Month: 4, Expenses: dec("10000")},
		{UserID: user, FinancialYear: "2024-2025", Year: 2024, Month: 5, Expenses: dec("30000")},
		{UserID: user, FinancialYear: "2024-2025", Year: 2024, Month: 6, Expenses: dec("20000")},
	})
	if err != nil {
		t.Fatalf("ReplaceMonthlyDistributions: %v", err)
	}

	err = store.ReplaceSavings(user, []models.Savings{
		{UserID: user, Type: "BANK", Name: "HDFC", CurrentInvested: dec("40000"), CurrentValue: dec("40000"), ProfitBooked: dec("500")},
		{UserID: user, Type: "MUTUALFUND", Name: "BLUECHIP", CurrentInvested: dec("100000"), CurrentValue: dec("120000"), ProfitLoss: dec("20000"), ReturnPercentage: dec("20")},
		{UserID: user, Type: "PF", Name: "EPF", CurrentInvested: dec("50000"), CurrentValue: dec("55000"), ProfitLoss: dec("5000"), ReturnPercentage: dec("10")},
	})
	if err != nil {
		t.Fatalf("ReplaceSavings: %v", err)
	}
}

func TestSummarize(t *testing.T) {
	svc, store := newTestService()
	const user = "u1"
	seedSummaryData(t, svc, user)
	declareBalance(t, svc, user, "2024-2025", "40000")

	err := store.ReplaceYearlyDistribution(user, "2024-2025", models.YearlyDistribution{
		UserID: user, FinancialYear: "2024-2025",
		Expenses: dec("60000"), LoanAmount: dec("500000"), LoanRepayment: dec("100000"),
	})
	if err != nil {
		t.Fatalf("ReplaceYearlyDistribution: %v", err)
	}

	sum, err := svc.Summarize(user)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if !sum.TotalExpenses.Equal(dec("60000")) {
		t.Errorf("total expenses = %s, want 60000", sum.TotalExpenses)
	}
	if !sum.AvgMonthlyExpense.Equal(dec("20000")) {
		t.Errorf("avg monthly expense = %s, want 20000", sum.AvgMonthlyExpense)
	}
	if sum.HighestExpenseMonth != "May 2024" {
		t.Errorf("highest expense month = %q, want May 2024", sum.HighestExpenseMonth)
	}
	if sum.LowestExpenseMonth != "Apr 2024" {
		t.Errorf("lowest expense month = %q, want Apr 2024", sum.LowestExpenseMonth)
	}
	// The bank row stays out of the invested/value totals.
	if !sum.TotalInvested.Equal(dec("150000")) || !sum.TotalValue.Equal(dec("175000")) {
		t.Errorf("invested/value = %s/%s, want 150000/175000", sum.TotalInvested, sum.TotalValue)
	}
	if !sum.TotalProfitLoss.Equal(dec("25000")) {
		t.Errorf("profit/loss = %s, want 25000", sum.TotalProfitLoss)
	}
	if !sum.WeightedReturn.Equal(dec("16.67")) {
		t.Errorf("weighted return = %s, want 16.67", sum.WeightedReturn)
	}
	if !sum.TotalWealth.Equal(dec("215000")) {
		t.Errorf("total wealth = %s, want 215000 (incl bank)", sum.TotalWealth)
	}
	// Liquid: bank and mutual fund, not PF.
	if !sum.LiquidWealth.Equal(dec("160000")) {
		t.Errorf("liquid wealth = %s, want 160000", sum.LiquidWealth)
	}
	if !sum.TotalLoans.Equal(dec("400000")) {
		t.Errorf("total loans = %s, want 400000", sum.TotalLoans)
	}
	if sum.BankBalance == nil || !sum.BankBalance.Equal(dec("40000")) {
		t.Errorf("bank balance = %v, want 40000", sum.BankBalance)
	}
}

func TestSummarizeWithoutBalance(t *testing.T) {
	svc, _ := newTestService()
	sum, err := svc.Summarize("u1")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sum.BankBalance != nil {
		t.Errorf("bank balance = %v, want nil when undeclared", sum.BankBalance)
	}
	if sum.HighestExpenseMonth != "" {
		t.Errorf("highest expense month = %q, want empty with no data", sum.HighestExpenseMonth)
	}
}

func TestInsights(t *testing.T) {
	svc, store := newTestService()
	const user = "u1"
	seedSummaryData(t, svc, user)

	store.InsertExpense(&models.Expense{UserID: user, FinancialYear: "2024-2025", Year: 2024, Month: 5, Day: 2, Type: "PERSONAL", Category: "RENT", Cost: dec("18000")})
	store.InsertExpense(&models.Expense{UserID: user, FinancialYear: "2024-2025", Year: 2024, Month: 5, Day: 9, Type: "FAMILY", Category: "GROCERY", Cost: dec("6000")})

	store.ReplaceYearlyDistribution(user, "2023-2024", models.YearlyDistribution{UserID: user, FinancialYear: "2023-2024", InvBuy: dec("100000")})
	store.ReplaceYearlyDistribution(user, "2024-2025", models.YearlyDistribution{UserID: user, FinancialYear: "2024-2025", InvBuy: dec("125000")})

	ins, err := svc.Insights(user)
	if err != nil {
		t.Fatalf("Insights: %v", err)
	}

	if ins.HighestCategory != "RENT" {
		t.Errorf("highest category = %q, want RENT", ins.HighestCategory)
	}
	if ins.HighestType != "PERSONAL" {
		t.Errorf("highest type = %q, want PERSONAL", ins.HighestType)
	}
	if !strings.HasPrefix(ins.TopAsset, "BLUECHIP") {
		t.Errorf("top asset = %q, want BLUECHIP", ins.TopAsset)
	}
	if !strings.HasPrefix(ins.BottomAsset, "EPF") {
		t.Errorf("bottom asset = %q, want EPF", ins.BottomAsset)
	}
	if ins.LargestHolding != "BLUECHIP" {
		t.Errorf("largest holding = %q, want BLUECHIP", ins.LargestHolding)
	}
	if ins.TopRetirementAsset != "EPF" {
		t.Errorf("top retirement asset = %q, want EPF", ins.TopRetirementAsset)
	}
	// 120000 of 175000 non-bank value.
	if !strings.Contains(ins.ConcentrationRisk, "68.6%") {
		t.Errorf("concentration risk = %q, want 68.6%% share", ins.ConcentrationRisk)
	}
	if ins.PortfolioReturn != "16.67%" {
		t.Errorf("portfolio return = %q, want 16.67%%", ins.PortfolioReturn)
	}
	if ins.RetirementReturn != "10%" {
		t.Errorf("retirement return = %q, want 10%%", ins.RetirementReturn)
	}
	if !strings.HasPrefix(ins.YoYInvestGrowth, "25%") {
		t.Errorf("yoy invest growth = %q, want 25%% growth", ins.YoYInvestGrowth)
	}
}
