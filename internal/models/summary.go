package models

import "github.com/shopspring/decimal"

// Summary represents dashboard card figures derived from snapshots.
// BankBalance is nil when no closing balance has been declared.
type Summary struct {
	TotalExpenses       decimal.Decimal  `json:"total_expenses"`
	AvgMonthlyExpense   decimal.Decimal  `json:"avg_monthly_expense"`
	HighestExpenseMonth string           `json:"highest_expense_month"`
	LowestExpenseMonth  string           `json:"lowest_expense_month"`
	TotalInvested       decimal.Decimal  `json:"total_invested"`
	TotalValue          decimal.Decimal  `json:"total_value"`
	TotalProfitLoss     decimal.Decimal  `json:"total_pnl"`
	WeightedReturn      decimal.Decimal  `json:"weighted_return"`
	ProfitBooked        decimal.Decimal  `json:"profit_booked"`
	TotalWealth         decimal.Decimal  `json:"total_wealth"`
	LiquidWealth        decimal.Decimal  `json:"liquid_wealth"`
	TotalLoans          decimal.Decimal  `json:"total_loans"`
	BankBalance         *decimal.Decimal `json:"bank_balance,omitempty"`
}

// Insights represents derived portfolio and expense highlights.
type Insights struct {
	HighestCategory    string `json:"highest_category"`
	HighestType        string `json:"highest_type"`
	TopAsset           string `json:"top_asset"`
	BottomAsset        string `json:"bottom_asset"`
	LargestHolding     string `json:"largest_holding"`
	TopRetirementAsset string `json:"top_retirement_asset"`
	ConcentrationRisk  string `json:"concentration_risk"`
	PortfolioReturn    string `json:"portfolio_return"`
	RetirementReturn   string `json:"retirement_return"`
	YoYInvestGrowth    string `json:"yoy_invest_growth"`
}
