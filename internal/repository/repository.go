package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/paisaledger/fintrack/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store is the persistence contract the service layer depends on. It is
// satisfied by the Postgres Repository and by the in-memory Memory store.
//
// The Replace* operations and the adjusted-expense writers are atomic:
// either every row of the call is applied or none is.
type Store interface {
	// Users
	CreateUser(user *models.User) error
	FindUserByUsername(username string) (*models.User, error)
	FindUserByID(id string) (*models.User, error)
	ListUserIDs() ([]string, error)

	// Transaction rows
	InsertIncome(row *models.Income) error
	InsertExpense(row *models.Expense) error
	InsertInvest(row *models.Invest) error
	InsertInterest(row *models.Interest) error
	InsertLoan(row *models.Loan) error

	IncomesByYear(userID, fy string) ([]models.Income, error)
	ExpensesByYear(userID, fy string) ([]models.Expense, error)
	InvestsByYear(userID, fy string) ([]models.Invest, error)
	InterestsByYear(userID, fy string) ([]models.Interest, error)
	LoansByYear(userID, fy string) ([]models.Loan, error)

	ExpensesByUser(userID string) ([]models.Expense, error)
	InvestsByUser(userID string) ([]models.Invest, error) // ordered by name, then date
	InterestsByUser(userID string) ([]models.Interest, error)
	LoansByUser(userID string) ([]models.Loan, error)

	// Synthetic PERSONAL/ADJUSTED expenses
	AdjustedExpenses(userID, fy string) ([]models.Expense, error)
	AddAdjustedExpenses(userID, fy string, entries []models.AdjustmentEntry) error
	SetAdjustedExpenses(userID, fy string, entries []models.AdjustmentEntry) error

	// Derived distributions
	ReplaceMonthlyDistributions(userID, fy string, rows []models.MonthlyDistribution) error
	MonthlyDistributions(userID, fy string) ([]models.MonthlyDistribution, error)
	SumBankThroughYear(userID string, startYear int) (decimal.Decimal, error)
	ReplaceYearlyDistribution(userID, fy string, row models.YearlyDistribution) error
	YearlyDistributions(userID, fy string) ([]models.YearlyDistribution, error)

	// Holdings snapshot
	ReplaceSavings(userID string, rows []models.Savings) error
	SavingsByUser(userID string) ([]models.Savings, error)

	// NAV reference
	ListNAVs() ([]models.NAV, error)
	UpsertNAV(nav *models.NAV) error

	// Declared closing balances
	ClosingBalance(userID, fy string) (*models.YearlyClosingBankBalance, error)
	UpsertClosingBalance(balance *models.YearlyClosingBankBalance) error

	// Per-user import watermarks
	UserConfig(userID string) (*models.UserConfig, error)
	SaveUserConfig(cfg *models.UserConfig) error
}

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(user *models.User) error {
	query := `
		INSERT INTO fintrack.users (id, username, email, password_hash)
		VALUES ($1, $2, $3, $4)`
	if _, err := r.db.Exec(query, user.ID, user.Username, user.Email, user.PasswordHash); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByUsername retrieves a user by username
func (r *Repository) FindUserByUsername(username string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash
		FROM fintrack.users
		WHERE username = $1`
	err := r.db.QueryRow(query, username).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// FindUserByID retrieves a user by id
func (r *Repository) FindUserByID(id string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash
		FROM fintrack.users
		WHERE id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ListUserIDs returns the ids of all registered users
func (r *Repository) ListUserIDs() ([]string, error) {
	rows, err := r.db.Query(`SELECT id FROM fintrack.users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListNAVs returns every NAV reference row
func (r *Repository) ListNAVs() ([]models.NAV, error) {
	rows, err := r.db.Query(`
		SELECT id, type, fund_name, unique_identifier, nav, last_updated
		FROM fintrack.navs
		ORDER BY fund_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list navs: %w", err)
	}
	defer rows.Close()

	var navs []models.NAV
	for rows.Next() {
		var n models.NAV
		var value decimal.NullDecimal
		if err := rows.Scan(&n.ID, &n.Type, &n.FundName, &n.UniqueIdentifier, &value, &n.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan nav: %w", err)
		}
		if value.Valid {
			v := value.Decimal
			n.Value = &v
		}
		navs = append(navs, n)
	}
	return navs, rows.Err()
}

// UpsertNAV creates or updates a NAV row keyed by unique identifier
func (r *Repository) UpsertNAV(nav *models.NAV) error {
	value := decimal.NullDecimal{}
	if nav.Value != nil {
		value = decimal.NullDecimal{Decimal: *nav.Value, Valid: true}
	}
	query := `
		INSERT INTO fintrack.navs (type, fund_name, unique_identifier, nav, last_updated)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (unique_identifier)
		DO UPDATE SET type = EXCLUDED.type, fund_name = EXCLUDED.fund_name,
			nav = EXCLUDED.nav, last_updated = EXCLUDED.last_updated
		RETURNING id`
	err := r.db.QueryRow(query, nav.Type, nav.FundName, nav.UniqueIdentifier, value, nav.LastUpdated).
		Scan(&nav.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert nav: %w", err)
	}
	return nil
}

// ClosingBalance returns the declared closing balance for a financial year,
// or the most recent one when fy is empty
func (r *Repository) ClosingBalance(userID, fy string) (*models.YearlyClosingBankBalance, error) {
	b := &models.YearlyClosingBankBalance{}
	var err error
	if fy != "" {
		err = r.db.QueryRow(`
			SELECT id, user_id, financial_year, closing_balance
			FROM fintrack.yearly_closing_bank_balance
			WHERE user_id = $1 AND financial_year = $2`, userID, fy).
			Scan(&b.ID, &b.UserID, &b.FinancialYear, &b.ClosingBalance)
	} else {
		err = r.db.QueryRow(`
			SELECT id, user_id, financial_year, closing_balance
			FROM fintrack.yearly_closing_bank_balance
			WHERE user_id = $1
			ORDER BY financial_year DESC
			LIMIT 1`, userID).
			Scan(&b.ID, &b.UserID, &b.FinancialYear, &b.ClosingBalance)
	}
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch closing balance: %w", err)
	}
	return b, nil
}

// UpsertClosingBalance creates or updates the declared closing balance
func (r *Repository) UpsertClosingBalance(balance *models.YearlyClosingBankBalance) error {
	query := `
		INSERT INTO fintrack.yearly_closing_bank_balance (user_id, financial_year, closing_balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, financial_year)
		DO UPDATE SET closing_balance = EXCLUDED.closing_balance
		RETURNING id`
	err := r.db.QueryRow(query, balance.UserID, balance.FinancialYear, balance.ClosingBalance).
		Scan(&balance.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert closing balance: %w", err)
	}
	return nil
}

// UserConfig retrieves the per-user watermark config
func (r *Repository) UserConfig(userID string) (*models.UserConfig, error) {
	cfg := &models.UserConfig{}
	err := r.db.QueryRow(`
		SELECT id, user_id, last_updated_date, invest_last_updated_date,
			expense_last_updated_date, financial_last_updated_date
		FROM fintrack.configs
		WHERE user_id = $1`, userID).
		Scan(&cfg.ID, &cfg.UserID, &cfg.LastUpdatedDate, &cfg.InvestLastUpdatedDate,
			&cfg.ExpenseLastUpdatedDate, &cfg.FinancialLastUpdatedDate)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch config: %w", err)
	}
	return cfg, nil
}

// SaveUserConfig creates or updates the per-user watermark config
func (r *Repository) SaveUserConfig(cfg *models.UserConfig) error {
	query := `
		INSERT INTO fintrack.configs (user_id, last_updated_date, invest_last_updated_date,
			expense_last_updated_date, financial_last_updated_date)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id)
		DO UPDATE SET last_updated_date = EXCLUDED.last_updated_date,
			invest_last_updated_date = EXCLUDED.invest_last_updated_date,
			expense_last_updated_date = EXCLUDED.expense_last_updated_date,
			financial_last_updated_date = EXCLUDED.financial_last_updated_date
		RETURNING id`
	err := r.db.QueryRow(query, cfg.UserID, cfg.LastUpdatedDate, cfg.InvestLastUpdatedDate,
		cfg.ExpenseLastUpdatedDate, cfg.FinancialLastUpdatedDate).
		Scan(&cfg.ID)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}
