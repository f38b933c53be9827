package service

import (
	"errors"
	"sort"
	"time"

	"github.com/paisaledger/fintrack/internal/fincal"
	"github.com/paisaledger/fintrack/internal/models"
)

// RecordIncome stores one salary credit and reruns the write chain for its
// financial year.
func (s *Service) RecordIncome(row *models.Income) error {
	stampFY(&row.FinancialYear, row.Year, row.Month)
	if err := s.store.InsertIncome(row); err != nil {
		return err
	}
	return s.runChain(row.UserID, row.FinancialYear)
}

// RecordExpense stores one spend entry and reruns the write chain for its
// financial year.
func (s *Service) RecordExpense(row *models.Expense) error {
	stampFY(&row.FinancialYear, row.Year, row.Month)
	if err := s.store.InsertExpense(row); err != nil {
		return err
	}
	return s.runChain(row.UserID, row.FinancialYear)
}

// RecordInvest stores one buy or sell and reruns the write chain for its
// financial year.
func (s *Service) RecordInvest(row *models.Invest) error {
	stampFY(&row.FinancialYear, row.Year, row.Month)
	if err := s.store.InsertInvest(row); err != nil {
		return err
	}
	return s.runChain(row.UserID, row.FinancialYear)
}

// RecordInterest stores one interest credit/debit and reruns the write chain
// for its financial year.
func (s *Service) RecordInterest(row *models.Interest) error {
	stampFY(&row.FinancialYear, row.Year, row.Month)
	if err := s.store.InsertInterest(row); err != nil {
		return err
	}
	return s.runChain(row.UserID, row.FinancialYear)
}

// RecordLoan stores one loan disbursal or repayment and reruns the write
// chain for its financial year.
func (s *Service) RecordLoan(row *models.Loan) error {
	stampFY(&row.FinancialYear, row.Year, row.Month)
	if err := s.store.InsertLoan(row); err != nil {
		return err
	}
	return s.runChain(row.UserID, row.FinancialYear)
}

func stampFY(fy *string, year, month int) {
	if *fy == "" {
		*fy = fincal.Compute(year, month)
	}
}

// runChain is the core write path: any transaction mutation rebuilds the
// monthly distribution, reconciles the bank, rebuilds the yearly roll-up and
// finally the holdings snapshot. A missing declared closing balance only
// skips the reconciliation step; a new user must still be able to record
// transactions before declaring a balance.
func (s *Service) runChain(userID, fy string) error {
	if err := s.RebuildMonthly(userID, fy); err != nil {
		return err
	}
	if err := s.Reconcile(userID, fy, nil); err != nil {
		if !errors.Is(err, ErrBalanceNotFound) {
			return err
		}
		s.log.Warnf("Skipping reconciliation for FY %s: %v", fy, err)
	}
	if err := s.RebuildYearly(userID, fy); err != nil {
		return err
	}
	return s.RebuildHoldings(userID)
}

// ImportBatch is a bulk set of already-parsed transaction rows.
type ImportBatch struct {
	Incomes   []models.Income
	Expenses  []models.Expense
	Invests   []models.Invest
	Interests []models.Interest
	Loans     []models.Loan
}

// ImportTransactions ingests a bulk batch for the user. Per-source watermarks
// in the user's config make the import idempotent: expense rows at or before
// the expense watermark are dropped, investment rows at or before the invest
// watermark, and income/interest/loan rows at or before the financial-data
// watermark. Surviving rows are inserted, the watermarks advance to the
// newest ingested dates, the monthly/reconcile/yearly chain runs once per
// affected financial year, and the holdings snapshot is rebuilt once at the
// end. The affected financial years are returned sorted.
func (s *Service) ImportTransactions(userID string, batch ImportBatch) ([]string, error) {
	cfg, err := s.userConfig(userID)
	if err != nil {
		return nil, err
	}

	years := map[string]bool{}
	touched := false

	expenseHigh := cfg.ExpenseLastUpdatedDate
	for i := range batch.Expenses {
		row := batch.Expenses[i]
		d := rowDate(row.Year, row.Month, row.Day)
		if !d.After(cfg.ExpenseLastUpdatedDate) {
			continue
		}
		row.UserID = userID
		stampFY(&row.FinancialYear, row.Year, row.Month)
		if err := s.store.InsertExpense(&row); err != nil {
			return nil, err
		}
		years[row.FinancialYear] = true
		touched = true
		if d.After(expenseHigh) {
			expenseHigh = d
		}
	}

	investHigh := cfg.InvestLastUpdatedDate
	for i := range batch.Invests {
		row := batch.Invests[i]
		d := rowDate(row.Year, row.Month, row.Day)
		if !d.After(cfg.InvestLastUpdatedDate) {
			continue
		}
		row.UserID = userID
		stampFY(&row.FinancialYear, row.Year, row.Month)
		if err := s.store.InsertInvest(&row); err != nil {
			return nil, err
		}
		years[row.FinancialYear] = true
		touched = true
		if d.After(investHigh) {
			investHigh = d
		}
	}

	financialHigh := cfg.FinancialLastUpdatedDate
	for i := range batch.Incomes {
		row := batch.Incomes[i]
		d := rowDate(row.Year, row.Month, row.Day)
		if !d.After(cfg.FinancialLastUpdatedDate) {
			continue
		}
		row.UserID = userID
		stampFY(&row.FinancialYear, row.Year, row.Month)
		if err := s.store.InsertIncome(&row); err != nil {
			return nil, err
		}
		years[row.FinancialYear] = true
		touched = true
		if d.After(financialHigh) {
			financialHigh = d
		}
	}
	for i := range batch.Interests {
		row := batch.Interests[i]
		d := rowDate(row.Year, row.Month, row.Day)
		if !d.After(cfg.FinancialLastUpdatedDate) {
			continue
		}
		row.UserID = userID
		stampFY(&row.FinancialYear, row.Year, row.Month)
		if err := s.store.InsertInterest(&row); err != nil {
			return nil, err
		}
		years[row.FinancialYear] = true
		touched = true
		if d.After(financialHigh) {
			financialHigh = d
		}
	}
	for i := range batch.Loans {
		row := batch.Loans[i]
		d := rowDate(row.Year, row.Month, row.Day)
		if !d.After(cfg.FinancialLastUpdatedDate) {
			continue
		}
		row.UserID = userID
		stampFY(&row.FinancialYear, row.Year, row.Month)
		if err := s.store.InsertLoan(&row); err != nil {
			return nil, err
		}
		years[row.FinancialYear] = true
		touched = true
		if d.After(financialHigh) {
			financialHigh = d
		}
	}

	fys := make([]string, 0, len(years))
	for fy := range years {
		fys = append(fys, fy)
	}
	sort.Strings(fys)

	for _, fy := range fys {
		if err := s.RebuildMonthly(userID, fy); err != nil {
			return nil, err
		}
		if err := s.Reconcile(userID, fy, nil); err != nil {
			if !errors.Is(err, ErrBalanceNotFound) {
				return nil, err
			}
			s.log.Warnf("Skipping reconciliation for FY %s: %v", fy, err)
		}
		if err := s.RebuildYearly(userID, fy); err != nil {
			return nil, err
		}
	}
	if touched {
		if err := s.RebuildHoldings(userID); err != nil {
			return nil, err
		}
	}

	cfg.ExpenseLastUpdatedDate = expenseHigh
	cfg.InvestLastUpdatedDate = investHigh
	cfg.FinancialLastUpdatedDate = financialHigh
	cfg.LastUpdatedDate = s.now()
	if err := s.store.SaveUserConfig(cfg); err != nil {
		return nil, err
	}

	s.log.Infof("Imported transactions for user %s across %d financial year(s)", userID, len(fys))
	return fys, nil
}

func rowDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
