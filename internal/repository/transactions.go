package repository

import (
	"fmt"

	"github.com/paisaledger/fintrack/internal/models"
)

// InsertIncome creates a new income row
func (r *Repository) InsertIncome(row *models.Income) error {
	query := `
		INSERT INTO fintrack.income (user_id, financial_year, year, month, day, salary, tax)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.db.QueryRow(query, row.UserID, row.FinancialYear, row.Year, row.Month, row.Day,
		row.Salary, row.Tax).Scan(&row.ID)
	if err != nil {
		return fmt.Errorf("failed to insert income: %w", err)
	}
	return nil
}

// InsertExpense creates a new expense row
func (r *Repository) InsertExpense(row *models.Expense) error {
	query := `
		INSERT INTO fintrack.expense (user_id, financial_year, year, month, day, type, category, cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := r.db.QueryRow(query, row.UserID, row.FinancialYear, row.Year, row.Month, row.Day,
		row.Type, row.Category, row.Cost).Scan(&row.ID)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

// InsertInvest creates a new investment row
func (r *Repository) InsertInvest(row *models.Invest) error {
	query := `
		INSERT INTO fintrack.invest (user_id, financial_year, year, month, day, type,
			folio_number, name, type_of_order, units, nav, cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	err := r.db.QueryRow(query, row.UserID, row.FinancialYear, row.Year, row.Month, row.Day,
		row.Type, row.FolioNumber, row.Name, row.Order, row.Units, row.NAV, row.Cost).Scan(&row.ID)
	if err != nil {
		return fmt.Errorf("failed to insert invest: %w", err)
	}
	return nil
}

// InsertInterest creates a new interest row
func (r *Repository) InsertInterest(row *models.Interest) error {
	query := `
		INSERT INTO fintrack.interest (user_id, financial_year, year, month, day, type, name, cost_in, cost_out)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := r.db.QueryRow(query, row.UserID, row.FinancialYear, row.Year, row.Month, row.Day,
		row.Type, row.Name, row.CostIn, row.CostOut).Scan(&row.ID)
	if err != nil {
		return fmt.Errorf("failed to insert interest: %w", err)
	}
	return nil
}

// InsertLoan creates a new loan row
func (r *Repository) InsertLoan(row *models.Loan) error {
	query := `
		INSERT INTO fintrack.loan (user_id, financial_year, year, month, day, type, name,
			interest, loan_amount, loan_repayment, cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	err := r.db.QueryRow(query, row.UserID, row.FinancialYear, row.Year, row.Month, row.Day,
		row.Type, row.Name, row.Interest, row.LoanAmount, row.LoanRepayment, row.Cost).Scan(&row.ID)
	if err != nil {
		return fmt.Errorf("failed to insert loan: %w", err)
	}
	return nil
}

func (r *Repository) queryIncomes(query string, args ...any) ([]models.Income, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query income: %w", err)
	}
	defer rows.Close()

	var out []models.Income
	for rows.Next() {
		var row models.Income
		if err := rows.Scan(&row.ID, &row.UserID, &row.FinancialYear, &row.Year, &row.Month,
			&row.Day, &row.Salary, &row.Tax); err != nil {
			return nil, fmt.Errorf("failed to scan income: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// IncomesByYear returns a user's income rows for one financial year
func (r *Repository) IncomesByYear(userID, fy string) ([]models.Income, error) {
	return r.queryIncomes(`
		SELECT id, user_id, financial_year, year, month, day, salary, tax
		FROM fintrack.income
		WHERE user_id = $1 AND financial_year = $2
		ORDER BY year, month, day, id`, userID, fy)
}

func (r *Repository) queryExpenses(query string, args ...any) ([]models.Expense, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expense: %w", err)
	}
	defer rows.Close()

	var out []models.Expense
	for rows.Next() {
		var row models.Expense
		if err := rows.Scan(&row.ID, &row.UserID, &row.FinancialYear, &row.Year, &row.Month,
			&row.Day, &row.Type, &row.Category, &row.Cost); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ExpensesByYear returns a user's expense rows for one financial year
func (r *Repository) ExpensesByYear(userID, fy string) ([]models.Expense, error) {
	return r.queryExpenses(`
		SELECT id, user_id, financial_year, year, month, day, type, category, cost
		FROM fintrack.expense
		WHERE user_id = $1 AND financial_year = $2
		ORDER BY year, month, day, id`, userID, fy)
}

// ExpensesByUser returns all of a user's expense rows
func (r *Repository) ExpensesByUser(userID string) ([]models.Expense, error) {
	return r.queryExpenses(`
		SELECT id, user_id, financial_year, year, month, day, type, category, cost
		FROM fintrack.expense
		WHERE user_id = $1
		ORDER BY year, month, day, id`, userID)
}

func (r *Repository) queryInvests(query string, args ...any) ([]models.Invest, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invest: %w", err)
	}
	defer rows.Close()

	var out []models.Invest
	for rows.Next() {
		var row models.Invest
		if err := rows.Scan(&row.ID, &row.UserID, &row.FinancialYear, &row.Year, &row.Month,
			&row.Day, &row.Type, &row.FolioNumber, &row.Name, &row.Order, &row.Units,
			&row.NAV, &row.Cost); err != nil {
			return nil, fmt.Errorf("failed to scan invest: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// InvestsByYear returns a user's investment rows for one financial year
func (r *Repository) InvestsByYear(userID, fy string) ([]models.Invest, error) {
	return r.queryInvests(`
		SELECT id, user_id, financial_year, year, month, day, type, folio_number, name,
			type_of_order, units, nav, cost
		FROM fintrack.invest
		WHERE user_id = $1 AND financial_year = $2
		ORDER BY year, month, day, id`, userID, fy)
}

// InvestsByUser returns all of a user's investment rows ordered by holding
// name then date, the order the FIFO valuation consumes them in
func (r *Repository) InvestsByUser(userID string) ([]models.Invest, error) {
	return r.queryInvests(`
		SELECT id, user_id, financial_year, year, month, day, type, folio_number, name,
			type_of_order, units, nav, cost
		FROM fintrack.invest
		WHERE user_id = $1
		ORDER BY name, year, month, day, id`, userID)
}

func (r *Repository) queryInterests(query string, args ...any) ([]models.Interest, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query interest: %w", err)
	}
	defer rows.Close()

	var out []models.Interest
	for rows.Next() {
		var row models.Interest
		if err := rows.Scan(&row.ID, &row.UserID, &row.FinancialYear, &row.Year, &row.Month,
			&row.Day, &row.Type, &row.Name, &row.CostIn, &row.CostOut); err != nil {
			return nil, fmt.Errorf("failed to scan interest: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// InterestsByYear returns a user's interest rows for one financial year
func (r *Repository) InterestsByYear(userID, fy string) ([]models.Interest, error) {
	return r.queryInterests(`
		SELECT id, user_id, financial_year, year, month, day, type, name, cost_in, cost_out
		FROM fintrack.interest
		WHERE user_id = $1 AND financial_year = $2
		ORDER BY year, month, day, id`, userID, fy)
}

// InterestsByUser returns all of a user's interest rows
func (r *Repository) InterestsByUser(userID string) ([]models.Interest, error) {
	return r.queryInterests(`
		SELECT id, user_id, financial_year, year, month, day, type, name, cost_in, cost_out
		FROM fintrack.interest
		WHERE user_id = $1
		ORDER BY year, month, day, id`, userID)
}

func (r *Repository) queryLoans(query string, args ...any) ([]models.Loan, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query loan: %w", err)
	}
	defer rows.Close()

	var out []models.Loan
	for rows.Next() {
		var row models.Loan
		if err := rows.Scan(&row.ID, &row.UserID, &row.FinancialYear, &row.Year, &row.Month,
			&row.Day, &row.Type, &row.Name, &row.Interest, &row.LoanAmount,
			&row.LoanRepayment, &row.Cost); err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// LoansByYear returns a user's loan rows for one financial year
func (r *Repository) LoansByYear(userID, fy string) ([]models.Loan, error) {
	return r.queryLoans(`
		SELECT id, user_id, financial_year, year, month, day, type, name, interest,
			loan_amount, loan_repayment, cost
		FROM fintrack.loan
		WHERE user_id = $1 AND financial_year = $2
		ORDER BY year, month, day, id`, userID, fy)
}

// LoansByUser returns all of a user's loan rows
func (r *Repository) LoansByUser(userID string) ([]models.Loan, error) {
	return r.queryLoans(`
		SELECT id, user_id, financial_year, year, month, day, type, name, interest,
			loan_amount, loan_repayment, cost
		FROM fintrack.loan
		WHERE user_id = $1
		ORDER BY year, month, day, id`, userID)
}

// AdjustedExpenses returns the synthetic PERSONAL/ADJUSTED expense rows of a
// financial year
func (r *Repository) AdjustedExpenses(userID, fy string) ([]models.Expense, error) {
	return r.queryExpenses(`
		SELECT id, user_id, financial_year, year, month, day, type, category, cost
		FROM fintrack.expense
		WHERE user_id = $1 AND financial_year = $2 AND type = $3 AND category = $4
		ORDER BY year, month, id`,
		userID, fy, models.ExpenseTypePersonal, models.ExpenseCategoryAdjusted)
}

// AddAdjustedExpenses adds each entry's amount to that month's PERSONAL/ADJUSTED
// expense, creating the row (day 1) when missing. All entries apply in one
// transaction.
func (r *Repository) AddAdjustedExpenses(userID, fy string, entries []models.AdjustmentEntry) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin adjustment: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		res, err := tx.Exec(`
			UPDATE fintrack.expense
			SET cost = cost + $1
			WHERE user_id = $2 AND financial_year = $3 AND year = $4 AND month = $5
				AND type = $6 AND category = $7`,
			e.Amount, userID, fy, e.Year, e.Month,
			models.ExpenseTypePersonal, models.ExpenseCategoryAdjusted)
		if err != nil {
			return fmt.Errorf("failed to add adjustment: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to add adjustment: %w", err)
		}
		if n == 0 {
			_, err = tx.Exec(`
				INSERT INTO fintrack.expense (user_id, financial_year, year, month, day, type, category, cost)
				VALUES ($1, $2, $3, $4, 1, $5, $6, $7)`,
				userID, fy, e.Year, e.Month,
				models.ExpenseTypePersonal, models.ExpenseCategoryAdjusted, e.Amount)
			if err != nil {
				return fmt.Errorf("failed to insert adjustment: %w", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit adjustment: %w", err)
	}
	return nil
}

// SetAdjustedExpenses overwrites each entry's month's PERSONAL/ADJUSTED cost
// with the entry amount, in one transaction. Rows must already exist.
func (r *Repository) SetAdjustedExpenses(userID, fy string, entries []models.AdjustmentEntry) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin adjustment: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		res, err := tx.Exec(`
			UPDATE fintrack.expense
			SET cost = $1
			WHERE user_id = $2 AND financial_year = $3 AND year = $4 AND month = $5
				AND type = $6 AND category = $7`,
			e.Amount, userID, fy, e.Year, e.Month,
			models.ExpenseTypePersonal, models.ExpenseCategoryAdjusted)
		if err != nil {
			return fmt.Errorf("failed to set adjustment: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to set adjustment: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("failed to set adjustment for %d-%02d: %w", e.Year, e.Month, ErrNotFound)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit adjustment: %w", err)
	}
	return nil
}
