package models

import "time"

// UserConfig holds per-user import watermarks: the last processed date of
// each data source. Bulk imports only ingest rows newer than the watermark.
type UserConfig struct {
	ID                       int64     `json:"id"`
	UserID                   string    `json:"user_id"`
	LastUpdatedDate          time.Time `json:"last_updated_date"`
	InvestLastUpdatedDate    time.Time `json:"invest_last_updated_date"`
	ExpenseLastUpdatedDate   time.Time `json:"expense_last_updated_date"`
	FinancialLastUpdatedDate time.Time `json:"financial_last_updated_date"`
}
