package models

import "github.com/shopspring/decimal"

// Order side tags for investment transactions.
const (
	OrderBuy  = "BUY"
	OrderSell = "SELL"
)

// Synthetic expense tags managed by the reconciliation engine.
const (
	ExpenseTypePersonal     = "PERSONAL"
	ExpenseCategoryAdjusted = "ADJUSTED"
)

// Income represents one salary credit
type Income struct {
	ID            int64           `json:"id"`
	UserID        string          `json:"user_id"`
	FinancialYear string          `json:"financial_year"`
	Year          int             `json:"year"`
	Month         int             `json:"month"`
	Day           int             `json:"day"`
	Salary        decimal.Decimal `json:"salary"`
	Tax           decimal.Decimal `json:"tax"`
}

// Expense represents one spend entry
type Expense struct {
	ID            int64           `json:"id"`
	UserID        string          `json:"user_id"`
	FinancialYear string          `json:"financial_year"`
	Year          int             `json:"year"`
	Month         int             `json:"month"`
	Day           int             `json:"day"`
	Type          string          `json:"type"`
	Category      string          `json:"category"`
	Cost          decimal.Decimal `json:"cost"`
}

// IsAdjusted reports whether the expense is a synthetic reconciliation row.
func (e Expense) IsAdjusted() bool {
	return e.Type == ExpenseTypePersonal && e.Category == ExpenseCategoryAdjusted
}

// Invest represents one buy or sell of a holding
type Invest struct {
	ID            int64           `json:"id"`
	UserID        string          `json:"user_id"`
	FinancialYear string          `json:"financial_year"`
	Year          int             `json:"year"`
	Month         int             `json:"month"`
	Day           int             `json:"day"`
	Type          string          `json:"type"`
	FolioNumber   string          `json:"folio_number"`
	Name          string          `json:"name"`
	Order         string          `json:"type_of_order"`
	Units         decimal.Decimal `json:"units"`
	NAV           decimal.Decimal `json:"nav"`
	Cost          decimal.Decimal `json:"cost"`
}

// Interest represents interest credited to or debited from a holding
type Interest struct {
	ID            int64           `json:"id"`
	UserID        string          `json:"user_id"`
	FinancialYear string          `json:"financial_year"`
	Year          int             `json:"year"`
	Month         int             `json:"month"`
	Day           int             `json:"day"`
	Type          string          `json:"type"`
	Name          string          `json:"name"`
	CostIn        decimal.Decimal `json:"cost_in"`
	CostOut       decimal.Decimal `json:"cost_out"`
}

// Loan represents a loan disbursal or repayment entry
type Loan struct {
	ID            int64           `json:"id"`
	UserID        string          `json:"user_id"`
	FinancialYear string          `json:"financial_year"`
	Year          int             `json:"year"`
	Month         int             `json:"month"`
	Day           int             `json:"day"`
	Type          string          `json:"type"`
	Name          string          `json:"name"`
	Interest      decimal.Decimal `json:"interest"`
	LoanAmount    decimal.Decimal `json:"loan_amount"`
	LoanRepayment decimal.Decimal `json:"loan_repayment"`
	Cost          decimal.Decimal `json:"cost"`
}
