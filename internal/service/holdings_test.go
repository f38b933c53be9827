package service

import (
	"errors"
	"testing"

	"github.com/paisaledger/fintrack/internal/models"
)

func TestRebuildHoldingsBankRowOnly(t *testing.T) {
	svc, store := newTestService()
	const user = "u1"

	declareBalance(t, svc, user, "2024-2025", "50000")
	store.InsertInterest(&models.Interest{UserID: user, FinancialYear: "2024-2025", Year: 2024, Month: 6, Day: 30, Type: "BANK", Name: "HDFC", CostIn: dec("1200")})

	if err := svc.RebuildHoldings(user); err != nil {
		t.Fatalf("RebuildHoldings: %v", err)
	}

	rows, _ := store.SavingsByUser(user)
	if len(rows) != 1 {
		t.Fatalf("got %d holdings, want 1 bank row", len(rows))
	}
	bank := rows[0]
	if bank.Type != "BANK" || bank.Name != "HDFC" {
		t.Errorf("bank row = %s/%s, want BANK/HDFC", bank.Type, bank.Name)
	}
	if !bank.CurrentInvested.Equal(dec("50000")) || !bank.CurrentValue.Equal(dec("50000")) {
		t.Errorf("bank invested/value = %s/%s, want 50000/50000", bank.CurrentInvested, bank.CurrentValue)
	}
	if !bank.ProfitBooked.Equal(dec("1200")) {
		t.Errorf("bank profit booked = %s, want 1200", bank.ProfitBooked)
	}
}

func TestRebuildHoldingsNoDeclaredBalanceSkipsBank(t *testing.T) {
	svc, store := newTestService()
	const user = "u1"

	nav := dec("250")
	store.UpsertNAV(&models.NAV{Type: "MUTUALFUND", FundName: "BLUECHIP", UniqueIdentifier: "MF001", Value: &nav})
	store.InsertInvest(&models.Invest{UserID: user, FinancialYear: "2024-2025", Year: 2024, Month: 4, Day: 1, Type: "MUTUALFUND", Name: "BLUECHIP", Order: models.OrderBuy, Units: dec("10"), NAV: dec("100"), Cost: dec("1000")})

	if err := svc.RebuildHoldings(user); err != nil {
		t.Fatalf("RebuildHoldings: %v", err)
	}
	rows, _ := store.SavingsByUser(user)
	if len(rows) != 1 || rows[0].Type != "MUTUALFUND" {
		t.Fatalf("got %d holdings (first %+v), want 1 fund row and no bank row", len(rows), rows)
	}
}

func TestRebuildHoldingsFIFOValuation(t *testing.T) {
	svc, store := newTestService()
	const user = "u1"
	const fy = "2024-2025"

	nav := dec("250")
	store.UpsertNAV(&models.NAV{Type: "MUTUALFUND", FundName: "BLUECHIP", UniqueIdentifier: "MF001", Value: &nav})

	store.InsertInvest(&models.Invest{UserID: user, FinancialYear: fy, Year: 2024, Month: 4, Day: 1, Type: "MUTUALFUND", Name: "BLUECHIP", Order: models.OrderBuy, Units: dec("10"), NAV: dec("100"), Cost: dec("1000")})
	store.InsertInvest(&models.Invest{UserID: user, FinancialYear: fy, Year: 2024, Month: 5, Day: 1, Type: "MUTUALFUND", Name: "BLUECHIP", Order: models.OrderBuy, Units: dec("10"), NAV: dec("200"), Cost: dec("2000")})
	store.InsertInvest(&models.Invest{UserID: user, FinancialYear: fy, Year: 2024, Month: 6, Day: 1, Type: "MUTUALFUND", Name: "BLUECHIP", Order: models.OrderSell, Units: dec("12"), NAV: dec("250"), Cost: dec("3000")})

	if err := svc.RebuildHoldings(user); err != nil {
		t.Fatalf("RebuildHoldings: %v", err)
	}

	rows, _ := store.SavingsByUser(user)
	if len(rows) != 1 {
		t.Fatalf("got %d holdings, want 1", len(rows))
	}
	h := rows[0]
	// 12 sold units drain the first lot and 2 of the second; 8 units at
	// unit cost 200 remain.
	if !h.CurrentInvested.Equal(dec("1600")) {
		t.Errorf("current invested = %s, want 1600", h.CurrentInvested)
	}
	if !h.CurrentValue.Equal(dec("2000")) {
		t.Errorf("current value = %s, want 2000 (8 units at 250)", h.CurrentValue)
	}
	if !h.ProfitLoss.Equal(dec("400")) {
		t.Errorf("profit/loss = %s, want 400", h.ProfitLoss)
	}
}

func TestRebuildHoldingsMissingNAVAborts(t *testing.T) {
	svc, store := newTestService()
	const user = "u1"

	// An existing snapshot must survive a failed rebuild.
	store.ReplaceSavings(user, []models.Savings{{UserID: user, Type: "BONDS", Name: "SGB", CurrentInvested: dec("5000"), CurrentValue: dec("5000")}})
	store.InsertInvest(&models.Invest{UserID: user, FinancialYear: "2024-2025", Year: 2024, Month: 4, Day: 1, Type: "MUTUALFUND", Name: "UNPRICED", Order: models.OrderBuy, Units: dec("10"), NAV: dec("100"), Cost: dec("1000")})

	err := svc.RebuildHoldings(user)
	if !errors.Is(err, ErrPriceNotFound) {
		t.Fatalf("got %v, want ErrPriceNotFound", err)
	}
	rows, _ := store.SavingsByUser(user)
	if len(rows) != 1 || rows[0].Name != "SGB" {
		t.Errorf("snapshot changed on failed rebuild: %+v", rows)
	}
}

func TestRebuildHoldingsSkipsUnknownType(t *testing.T) {
	svc, store := newTestService()
	const user = "u1"

	store.InsertInvest(&models.Invest{UserID: user, FinancialYear: "2024-2025", Year: 2024, Month: 4, Day: 1, Type: "CRYPTO", Name: "BTC", Order: models.OrderBuy, Units: dec("1"), Cost: dec("100000")})

	if err := svc.RebuildHoldings(user); err != nil {
		t.Fatalf("RebuildHoldings: %v", err)
	}
	rows, _ := store.SavingsByUser(user)
	if len(rows) != 0 {
		t.Errorf("got %d holdings, want 0 (unsupported type skipped)", len(rows))
	}
}

func TestRebuildHoldingsFixedDepositAccrual(t *testing.T) {
	svc, store := newTestService()
	const user = "u1"
	const name = "FD_100000_7.3_2025-01-15_2027-01-15"

	store.InsertInvest(&models.Invest{UserID: user, FinancialYear: "2024-2025", Year: 2025, Month: 1, Day: 15, Type: "FD", Name: name, Order: models.OrderBuy, Cost: dec("100000")})

	if err := svc.RebuildHoldings(user); err != nil {
		t.Fatalf("RebuildHoldings: %v", err)
	}
	rows, _ := store.SavingsByUser(user)
	if len(rows) != 1 {
		t.Fatalf("got %d holdings, want 1", len(rows))
	}
	// 181 days from 2025-01-15 to the pinned clock at 7.3% simple interest:
	// 100000 * 0.073 * 181 / 365 = 3620.
	if want := dec("103620"); !rows[0].CurrentValue.Equal(want) {
		t.Errorf("FD current value = %s, want %s", rows[0].CurrentValue, want)
	}
}
