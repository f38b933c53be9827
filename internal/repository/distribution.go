package repository

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/paisaledger/fintrack/internal/models"
)

// ReplaceMonthlyDistributions rewrites a financial year's monthly roll-up in
// one transaction: delete the year's rows, insert the recomputed set.
func (r *Repository) ReplaceMonthlyDistributions(userID, fy string, rows []models.MonthlyDistribution) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin monthly replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		DELETE FROM fintrack.monthly_distribution
		WHERE user_id = $1 AND financial_year = $2`, userID, fy); err != nil {
		return fmt.Errorf("failed to clear monthly distribution: %w", err)
	}
	for _, row := range rows {
		_, err := tx.Exec(`
			INSERT INTO fintrack.monthly_distribution (user_id, financial_year, year, month,
				income, inv_buy, inv_sell, expenses, bank, tax, interest_in, interest_out,
				loan_amount, loan_repayment)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			userID, fy, row.Year, row.Month, row.Income, row.InvBuy, row.InvSell,
			row.Expenses, row.Bank, row.Tax, row.InterestIn, row.InterestOut,
			row.LoanAmount, row.LoanRepayment)
		if err != nil {
			return fmt.Errorf("failed to insert monthly distribution: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit monthly replace: %w", err)
	}
	return nil
}

// MonthlyDistributions returns a user's monthly roll-up rows, optionally
// filtered to one financial year
func (r *Repository) MonthlyDistributions(userID, fy string) ([]models.MonthlyDistribution, error) {
	query := `
		SELECT id, user_id, financial_year, year, month, income, inv_buy, inv_sell,
			expenses, bank, tax, interest_in, interest_out, loan_amount, loan_repayment
		FROM fintrack.monthly_distribution
		WHERE user_id = $1`
	args := []any{userID}
	if fy != "" {
		query += ` AND financial_year = $2`
		args = append(args, fy)
	}
	query += ` ORDER BY year, month`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly distribution: %w", err)
	}
	defer rows.Close()

	var out []models.MonthlyDistribution
	for rows.Next() {
		var row models.MonthlyDistribution
		if err := rows.Scan(&row.ID, &row.UserID, &row.FinancialYear, &row.Year, &row.Month,
			&row.Income, &row.InvBuy, &row.InvSell, &row.Expenses, &row.Bank, &row.Tax,
			&row.InterestIn, &row.InterestOut, &row.LoanAmount, &row.LoanRepayment); err != nil {
			return nil, fmt.Errorf("failed to scan monthly distribution: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// SumBankThroughYear returns the cumulative bank delta over every financial
// year whose start year is at most startYear.
func (r *Repository) SumBankThroughYear(userID string, startYear int) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.QueryRow(`
		SELECT COALESCE(SUM(bank), 0)
		FROM fintrack.monthly_distribution
		WHERE user_id = $1
			AND CAST(SUBSTRING(financial_year FROM 1 FOR 4) AS INTEGER) <= $2`,
		userID, startYear).Scan(&sum)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to sum bank balance: %w", err)
	}
	return sum, nil
}

// ReplaceYearlyDistribution rewrites the yearly roll-up row for one financial
// year in a single transaction
func (r *Repository) ReplaceYearlyDistribution(userID, fy string, row models.YearlyDistribution) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin yearly replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		DELETE FROM fintrack.yearly_distribution
		WHERE user_id = $1 AND financial_year = $2`, userID, fy); err != nil {
		return fmt.Errorf("failed to clear yearly distribution: %w", err)
	}
	_, err = tx.Exec(`
		INSERT INTO fintrack.yearly_distribution (user_id, financial_year, income, inv_buy,
			inv_sell, expenses, bank, tax, interest_in, interest_out, loan_amount, loan_repayment)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		userID, fy, row.Income, row.InvBuy, row.InvSell, row.Expenses, row.Bank,
		row.Tax, row.InterestIn, row.InterestOut, row.LoanAmount, row.LoanRepayment)
	if err != nil {
		return fmt.Errorf("failed to insert yearly distribution: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit yearly replace: %w", err)
	}
	return nil
}

// YearlyDistributions returns a user's yearly roll-up rows, optionally
// filtered to one financial year
func (r *Repository) YearlyDistributions(userID, fy string) ([]models.YearlyDistribution, error) {
	query := `
		SELECT id, user_id, financial_year, income, inv_buy, inv_sell, expenses, bank,
			tax, interest_in, interest_out, loan_amount, loan_repayment
		FROM fintrack.yearly_distribution
		WHERE user_id = $1`
	args := []any{userID}
	if fy != "" {
		query += ` AND financial_year = $2`
		args = append(args, fy)
	}
	query += ` ORDER BY financial_year`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query yearly distribution: %w", err)
	}
	defer rows.Close()

	var out []models.YearlyDistribution
	for rows.Next() {
		var row models.YearlyDistribution
		if err := rows.Scan(&row.ID, &row.UserID, &row.FinancialYear, &row.Income, &row.InvBuy,
			&row.InvSell, &row.Expenses, &row.Bank, &row.Tax, &row.InterestIn,
			&row.InterestOut, &row.LoanAmount, &row.LoanRepayment); err != nil {
			return nil, fmt.Errorf("failed to scan yearly distribution: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ReplaceSavings rewrites a user's whole holdings snapshot in one transaction
func (r *Repository) ReplaceSavings(userID string, rows []models.Savings) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin savings replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM fintrack.savings WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear savings: %w", err)
	}
	for _, row := range rows {
		_, err := tx.Exec(`
			INSERT INTO fintrack.savings (user_id, type, name, t_buy, t_sell, profit_booked,
				current_invested, current_value, profit_loss, return_percentage)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			userID, row.Type, row.Name, row.TotalBuy, row.TotalSell, row.ProfitBooked,
			row.CurrentInvested, row.CurrentValue, row.ProfitLoss, row.ReturnPercentage)
		if err != nil {
			return fmt.Errorf("failed to insert savings: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit savings replace: %w", err)
	}
	return nil
}

// SavingsByUser returns a user's holdings snapshot rows
func (r *Repository) SavingsByUser(userID string) ([]models.Savings, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, type, name, t_buy, t_sell, profit_booked, current_invested,
			current_value, profit_loss, return_percentage
		FROM fintrack.savings
		WHERE user_id = $1
		ORDER BY type, name`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query savings: %w", err)
	}
	defer rows.Close()

	var out []models.Savings
	for rows.Next() {
		var row models.Savings
		if err := rows.Scan(&row.ID, &row.UserID, &row.Type, &row.Name, &row.TotalBuy,
			&row.TotalSell, &row.ProfitBooked, &row.CurrentInvested, &row.CurrentValue,
			&row.ProfitLoss, &row.ReturnPercentage); err != nil {
			return nil, fmt.Errorf("failed to scan savings: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
