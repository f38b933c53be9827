package models

import "github.com/shopspring/decimal"

// MonthlyDistribution is the derived cash-flow roll-up for one calendar month.
// Rows are fully rebuilt per financial year, never patched in place.
// Invariant: Bank = Income + InvSell + LoanAmount + credit interest in
// − InvBuy − Expenses − LoanRepayment − InterestOut − Tax.
type MonthlyDistribution struct {
	ID            int64           `json:"id"`
	UserID        string          `json:"user_id"`
	FinancialYear string          `json:"financial_year"`
	Year          int             `json:"year"`
	Month         int             `json:"month"`
	Income        decimal.Decimal `json:"income"`
	InvBuy        decimal.Decimal `json:"inv_buy"`
	InvSell       decimal.Decimal `json:"inv_sell"`
	Expenses      decimal.Decimal `json:"expenses"`
	Bank          decimal.Decimal `json:"bank"`
	Tax           decimal.Decimal `json:"tax"`
	InterestIn    decimal.Decimal `json:"interest_in"`
	InterestOut   decimal.Decimal `json:"interest_out"`
	LoanAmount    decimal.Decimal `json:"loan_amount"`
	LoanRepayment decimal.Decimal `json:"loan_repayment"`
}

// YearlyDistribution is the column-wise sum of a financial year's monthly rows.
type YearlyDistribution struct {
	ID            int64           `json:"id"`
	UserID        string          `json:"user_id"`
	FinancialYear string          `json:"financial_year"`
	Income        decimal.Decimal `json:"income"`
	InvBuy        decimal.Decimal `json:"inv_buy"`
	InvSell       decimal.Decimal `json:"inv_sell"`
	Expenses      decimal.Decimal `json:"expenses"`
	Bank          decimal.Decimal `json:"bank"`
	Tax           decimal.Decimal `json:"tax"`
	InterestIn    decimal.Decimal `json:"interest_in"`
	InterestOut   decimal.Decimal `json:"interest_out"`
	LoanAmount    decimal.Decimal `json:"loan_amount"`
	LoanRepayment decimal.Decimal `json:"loan_repayment"`
}

// AdjustmentEntry is one month's share of a reconciliation adjustment.
type AdjustmentEntry struct {
	Year   int
	Month  int
	Amount decimal.Decimal
}
