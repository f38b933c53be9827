package repository

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/paisaledger/fintrack/internal/models"
)

// Memory is an in-memory Store. It backs the demo storage mode and the
// service tests; semantics mirror the Postgres repository, including the
// all-or-nothing behaviour of the replace and adjustment operations.
type Memory struct {
	mu     sync.RWMutex
	nextID int64

	users    map[string]*models.User // by id
	incomes  []models.Income
	expenses []models.Expense
	invests  []models.Invest
	interest []models.Interest
	loans    []models.Loan
	monthly  []models.MonthlyDistribution
	yearly   []models.YearlyDistribution
	savings  []models.Savings
	navs     map[string]models.NAV                         // by unique identifier
	balances map[string]*models.YearlyClosingBankBalance   // by user id + fy
	configs  map[string]*models.UserConfig                 // by user id
}

// NewMemory initializes an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		users:    make(map[string]*models.User),
		navs:     make(map[string]models.NAV),
		balances: make(map[string]*models.YearlyClosingBankBalance),
		configs:  make(map[string]*models.UserConfig),
	}
}

func (m *Memory) id() int64 {
	m.nextID++
	return m.nextID
}

func balanceKey(userID, fy string) string { return userID + "|" + fy }

// CreateUser stores a new user
func (m *Memory) CreateUser(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username {
			return fmt.Errorf("username %q already taken", user.Username)
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

// FindUserByUsername retrieves a user by username
func (m *Memory) FindUserByUsername(username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// FindUserByID retrieves a user by id
func (m *Memory) FindUserByID(id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// ListUserIDs returns the ids of all users
func (m *Memory) ListUserIDs() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// InsertIncome stores an income row
func (m *Memory) InsertIncome(row *models.Income) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row.ID = m.id()
	m.incomes = append(m.incomes, *row)
	return nil
}

// InsertExpense stores an expense row
func (m *Memory) InsertExpense(row *models.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row.ID = m.id()
	m.expenses = append(m.expenses, *row)
	return nil
}

// InsertInvest stores an investment row
func (m *Memory) InsertInvest(row *models.Invest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row.ID = m.id()
	m.invests = append(m.invests, *row)
	return nil
}

// InsertInterest stores an interest row
func (m *Memory) InsertInterest(row *models.Interest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row.ID = m.id()
	m.interest = append(m.interest, *row)
	return nil
}

// InsertLoan stores a loan row
func (m *Memory) InsertLoan(row *models.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row.ID = m.id()
	m.loans = append(m.loans, *row)
	return nil
}

func dateLess(y1, m1, d1 int, id1 int64, y2, m2, d2 int, id2 int64) bool {
	if y1 != y2 {
		return y1 < y2
	}
	if m1 != m2 {
		return m1 < m2
	}
	if d1 != d2 {
		return d1 < d2
	}
	return id1 < id2
}

// IncomesByYear returns a user's income rows for one financial year
func (m *Memory) IncomesByYear(userID, fy string) ([]models.Income, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Income
	for _, r := range m.incomes {
		if r.UserID == userID && r.FinancialYear == fy {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return dateLess(out[i].Year, out[i].Month, out[i].Day, out[i].ID,
			out[j].Year, out[j].Month, out[j].Day, out[j].ID)
	})
	return out, nil
}

func (m *Memory) filterExpenses(keep func(models.Expense) bool) []models.Expense {
	var out []models.Expense
	for _, r := range m.expenses {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return dateLess(out[i].Year, out[i].Month, out[i].Day, out[i].ID,
			out[j].Year, out[j].Month, out[j].Day, out[j].ID)
	})
	return out
}

// ExpensesByYear returns a user's expense rows for one financial year
func (m *Memory) ExpensesByYear(userID, fy string) ([]models.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterExpenses(func(r models.Expense) bool {
		return r.UserID == userID && r.FinancialYear == fy
	}), nil
}

// ExpensesByUser returns all of a user's expense rows
func (m *Memory) ExpensesByUser(userID string) ([]models.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterExpenses(func(r models.Expense) bool { return r.UserID == userID }), nil
}

// InvestsByYear returns a user's investment rows for one financial year
func (m *Memory) InvestsByYear(userID, fy string) ([]models.Invest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Invest
	for _, r := range m.invests {
		if r.UserID == userID && r.FinancialYear == fy {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return dateLess(out[i].Year, out[i].Month, out[i].Day, out[i].ID,
			out[j].Year, out[j].Month, out[j].Day, out[j].ID)
	})
	return out, nil
}

// InvestsByUser returns all of a user's investment rows ordered by holding
// name then date
func (m *Memory) InvestsByUser(userID string) ([]models.Invest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Invest
	for _, r := range m.invests {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return dateLess(out[i].Year, out[i].Month, out[i].Day, out[i].ID,
			out[j].Year, out[j].Month, out[j].Day, out[j].ID)
	})
	return out, nil
}

// InterestsByYear returns a user's interest rows for one financial year
func (m *Memory) InterestsByYear(userID, fy string) ([]models.Interest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Interest
	for _, r := range m.interest {
		if r.UserID == userID && r.FinancialYear == fy {
			out = append(out, r)
		}
	}
	return out, nil
}

// InterestsByUser returns all of a user's interest rows
func (m *Memory) InterestsByUser(userID string) ([]models.Interest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Interest
	for _, r := range m.interest {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

// LoansByYear returns a user's loan rows for one financial year
func (m *Memory) LoansByYear(userID, fy string) ([]models.Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Loan
	for _, r := range m.loans {
		if r.UserID == userID && r.FinancialYear == fy {
			out = append(out, r)
		}
	}
	return out, nil
}

// LoansByUser returns all of a user's loan rows
func (m *Memory) LoansByUser(userID string) ([]models.Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Loan
	for _, r := range m.loans {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

// AdjustedExpenses returns the synthetic PERSONAL/ADJUSTED expense rows of a
// financial year
func (m *Memory) AdjustedExpenses(userID, fy string) ([]models.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterExpenses(func(r models.Expense) bool {
		return r.UserID == userID && r.FinancialYear == fy && r.IsAdjusted()
	}), nil
}

func (m *Memory) findAdjusted(userID, fy string, year, month int) int {
	for i, r := range m.expenses {
		if r.UserID == userID && r.FinancialYear == fy && r.Year == year &&
			r.Month == month && r.IsAdjusted() {
			return i
		}
	}
	return -1
}

// AddAdjustedExpenses adds each entry's amount to that month's adjustment
// row, creating it when missing
func (m *Memory) AddAdjustedExpenses(userID, fy string, entries []models.AdjustmentEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		if i := m.findAdjusted(userID, fy, e.Year, e.Month); i >= 0 {
			m.expenses[i].Cost = m.expenses[i].Cost.Add(e.Amount)
			continue
		}
		m.expenses = append(m.expenses, models.Expense{
			ID:            m.id(),
			UserID:        userID,
			FinancialYear: fy,
			Year:          e.Year,
			Month:         e.Month,
			Day:           1,
			Type:          models.ExpenseTypePersonal,
			Category:      models.ExpenseCategoryAdjusted,
			Cost:          e.Amount,
		})
	}
	return nil
}

// SetAdjustedExpenses overwrites each entry's month's adjustment cost.
// Nothing is changed unless every target row exists.
func (m *Memory) SetAdjustedExpenses(userID, fy string, entries []models.AdjustmentEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	indexes := make([]int, len(entries))
	for i, e := range entries {
		idx := m.findAdjusted(userID, fy, e.Year, e.Month)
		if idx < 0 {
			return fmt.Errorf("failed to set adjustment for %d-%02d: %w", e.Year, e.Month, ErrNotFound)
		}
		indexes[i] = idx
	}
	for i, e := range entries {
		m.expenses[indexes[i]].Cost = e.Amount
	}
	return nil
}

// ReplaceMonthlyDistributions rewrites a financial year's monthly roll-up
func (m *Memory) ReplaceMonthlyDistributions(userID, fy string, rows []models.MonthlyDistribution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.monthly[:0]
	for _, r := range m.monthly {
		if !(r.UserID == userID && r.FinancialYear == fy) {
			kept = append(kept, r)
		}
	}
	m.monthly = kept
	for _, r := range rows {
		r.ID = m.id()
		r.UserID = userID
		r.FinancialYear = fy
		m.monthly = append(m.monthly, r)
	}
	return nil
}

// MonthlyDistributions returns monthly roll-up rows, optionally filtered to
// one financial year
func (m *Memory) MonthlyDistributions(userID, fy string) ([]models.MonthlyDistribution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.MonthlyDistribution
	for _, r := range m.monthly {
		if r.UserID == userID && (fy == "" || r.FinancialYear == fy) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out, nil
}

// SumBankThroughYear returns the cumulative bank delta over every financial
// year starting at or before startYear
func (m *Memory) SumBankThroughYear(userID string, startYear int) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, r := range m.monthly {
		if r.UserID != userID {
			continue
		}
		start, err := strconv.Atoi(strings.SplitN(r.FinancialYear, "-", 2)[0])
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("bad financial year %q: %w", r.FinancialYear, err)
		}
		if start <= startYear {
			sum = sum.Add(r.Bank)
		}
	}
	return sum, nil
}

// ReplaceYearlyDistribution rewrites the yearly roll-up row for one financial year
func (m *Memory) ReplaceYearlyDistribution(userID, fy string, row models.YearlyDistribution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.yearly[:0]
	for _, r := range m.yearly {
		if !(r.UserID == userID && r.FinancialYear == fy) {
			kept = append(kept, r)
		}
	}
	m.yearly = kept
	row.ID = m.id()
	row.UserID = userID
	row.FinancialYear = fy
	m.yearly = append(m.yearly, row)
	return nil
}

// YearlyDistributions returns yearly roll-up rows, optionally filtered to one
// financial year
func (m *Memory) YearlyDistributions(userID, fy string) ([]models.YearlyDistribution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.YearlyDistribution
	for _, r := range m.yearly {
		if r.UserID == userID && (fy == "" || r.FinancialYear == fy) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FinancialYear < out[j].FinancialYear })
	return out, nil
}

// ReplaceSavings rewrites a user's whole holdings snapshot
func (m *Memory) ReplaceSavings(userID string, rows []models.Savings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.savings[:0]
	for _, r := range m.savings {
		if r.UserID != userID {
			kept = append(kept, r)
		}
	}
	m.savings = kept
	for _, r := range rows {
		r.ID = m.id()
		r.UserID = userID
		m.savings = append(m.savings, r)
	}
	return nil
}

// SavingsByUser returns a user's holdings snapshot rows
func (m *Memory) SavingsByUser(userID string) ([]models.Savings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Savings
	for _, r := range m.savings {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// ListNAVs returns every NAV reference row
func (m *Memory) ListNAVs() ([]models.NAV, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.NAV, 0, len(m.navs))
	for _, n := range m.navs {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FundName < out[j].FundName })
	return out, nil
}

// UpsertNAV creates or updates a NAV row keyed by unique identifier
func (m *Memory) UpsertNAV(nav *models.NAV) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.navs[nav.UniqueIdentifier]; ok {
		nav.ID = existing.ID
	} else {
		nav.ID = m.id()
	}
	m.navs[nav.UniqueIdentifier] = *nav
	return nil
}

// ClosingBalance returns the declared closing balance for a financial year,
// or the most recent one when fy is empty
func (m *Memory) ClosingBalance(userID, fy string) (*models.YearlyClosingBankBalance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if fy != "" {
		b, ok := m.balances[balanceKey(userID, fy)]
		if !ok {
			return nil, ErrNotFound
		}
		cp := *b
		return &cp, nil
	}
	var latest *models.YearlyClosingBankBalance
	for _, b := range m.balances {
		if b.UserID != userID {
			continue
		}
		if latest == nil || b.FinancialYear > latest.FinancialYear {
			latest = b
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

// UpsertClosingBalance creates or updates the declared closing balance
func (m *Memory) UpsertClosingBalance(balance *models.YearlyClosingBankBalance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := balanceKey(balance.UserID, balance.FinancialYear)
	if existing, ok := m.balances[key]; ok {
		balance.ID = existing.ID
	} else {
		balance.ID = m.id()
	}
	cp := *balance
	m.balances[key] = &cp
	return nil
}

// UserConfig retrieves the per-user watermark config
func (m *Memory) UserConfig(userID string) (*models.UserConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg, ok := m.configs[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *cfg
	return &cp, nil
}

// SaveUserConfig creates or updates the per-user watermark config
func (m *Memory) SaveUserConfig(cfg *models.UserConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.configs[cfg.UserID]; ok {
		cfg.ID = existing.ID
	} else {
		cfg.ID = m.id()
	}
	cp := *cfg
	m.configs[cfg.UserID] = &cp
	return nil
}

var _ Store = (*Memory)(nil)
var _ Store = (*Repository)(nil)
