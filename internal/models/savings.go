package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Savings is the derived valuation snapshot of one holding. The whole set for
// a user is replaced on every holdings rebuild.
type Savings struct {
	ID               int64           `json:"id"`
	UserID           string          `json:"user_id"`
	Type             string          `json:"type"`
	Name             string          `json:"name"`
	TotalBuy         decimal.Decimal `json:"t_buy"`
	TotalSell        decimal.Decimal `json:"t_sell"`
	ProfitBooked     decimal.Decimal `json:"profit_booked"`
	CurrentInvested  decimal.Decimal `json:"current_invested"`
	CurrentValue     decimal.Decimal `json:"current_value"`
	ProfitLoss       decimal.Decimal `json:"profit_loss"`
	ReturnPercentage decimal.Decimal `json:"return_percentage"`
}

// NAV is the latest known price of a fund or stock, shared across users.
type NAV struct {
	ID               int64            `json:"id"`
	Type             string           `json:"type"`
	FundName         string           `json:"fund_name"`
	UniqueIdentifier string           `json:"unique_identifier"`
	Value            *decimal.Decimal `json:"nav,omitempty"`
	LastUpdated      time.Time        `json:"last_updated"`
}

// YearlyClosingBankBalance is the user-declared bank balance at FY close.
// It is ground truth for reconciliation and never derived.
type YearlyClosingBankBalance struct {
	ID             int64           `json:"id"`
	UserID         string          `json:"user_id"`
	FinancialYear  string          `json:"financial_year"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}
