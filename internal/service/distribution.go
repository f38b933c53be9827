package service

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/paisaledger/fintrack/internal/fincal"
	"github.com/paisaledger/fintrack/internal/models"
)

// monthAgg accumulates one calendar month's contributions while rebuilding
// the monthly distribution.
type monthAgg struct {
	income, tax            decimal.Decimal
	invBuy, invSell        decimal.Decimal
	expenses               decimal.Decimal
	interestIn, interestOut decimal.Decimal
	creditIn               decimal.Decimal
	loanAmount, loanRepayment decimal.Decimal
}

// RebuildMonthly recomputes the monthly distribution of one financial year
// from the raw transaction tables and atomically replaces the year's rows.
// Months with no contributing data produce no row. The operation is
// idempotent: rerunning it with unchanged data yields identical rows.
func (s *Service) RebuildMonthly(userID, fy string) error {
	s.log.Infof("Recomputing monthly distribution for user %s FY %s", userID, fy)

	invests, err := s.store.InvestsByYear(userID, fy)
	if err != nil {
		return err
	}
	incomes, err := s.store.IncomesByYear(userID, fy)
	if err != nil {
		return err
	}
	expenses, err := s.store.ExpensesByYear(userID, fy)
	if err != nil {
		return err
	}
	interests, err := s.store.InterestsByYear(userID, fy)
	if err != nil {
		return err
	}
	loans, err := s.store.LoansByYear(userID, fy)
	if err != nil {
		return err
	}

	months := map[fincal.YearMonth]*monthAgg{}
	at := func(year, month int) *monthAgg {
		key := fincal.YearMonth{Year: year, Month: month}
		agg, ok := months[key]
		if !ok {
			agg = &monthAgg{}
			months[key] = agg
		}
		return agg
	}

	for _, r := range invests {
		agg := at(r.Year, r.Month)
		switch r.Order {
		case models.OrderBuy:
			agg.invBuy = agg.invBuy.Add(r.Cost)
		case models.OrderSell:
			agg.invSell = agg.invSell.Add(r.Cost)
		}
	}
	for _, r := range incomes {
		agg := at(r.Year, r.Month)
		agg.income = agg.income.Add(r.Salary)
		agg.tax = agg.tax.Add(r.Tax)
	}
	for _, r := range expenses {
		agg := at(r.Year, r.Month)
		agg.expenses = agg.expenses.Add(r.Cost)
	}
	for _, r := range interests {
		agg := at(r.Year, r.Month)
		agg.interestIn = agg.interestIn.Add(r.CostIn)
		agg.interestOut = agg.interestOut.Add(r.CostOut)
		if member(s.class.CreditInterestTypes, r.Type) {
			agg.creditIn = agg.creditIn.Add(r.CostIn)
		}
	}
	for _, r := range loans {
		agg := at(r.Year, r.Month)
		agg.loanAmount = agg.loanAmount.Add(r.LoanAmount)
		agg.loanRepayment = agg.loanRepayment.Add(r.LoanRepayment)
	}

	keys := make([]fincal.YearMonth, 0, len(months))
	for key := range months {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Year != keys[j].Year {
			return keys[i].Year < keys[j].Year
		}
		return keys[i].Month < keys[j].Month
	})

	rows := make([]models.MonthlyDistribution, 0, len(keys))
	for _, key := range keys {
		agg := months[key]
		// bank = inflows - outflows; only bank/bond interest is an inflow.
		bank := agg.income.
			Add(agg.invSell).
			Add(agg.loanAmount).
			Add(agg.creditIn).
			Sub(agg.invBuy).
			Sub(agg.expenses).
			Sub(agg.loanRepayment).
			Sub(agg.interestOut).
			Sub(agg.tax)
		rows = append(rows, models.MonthlyDistribution{
			UserID:        userID,
			FinancialYear: fy,
			Year:          key.Year,
			Month:         key.Month,
			Income:        agg.income,
			InvBuy:        agg.invBuy,
			InvSell:       agg.invSell,
			Expenses:      agg.expenses,
			Bank:          bank,
			Tax:           agg.tax,
			InterestIn:    agg.interestIn,
			InterestOut:   agg.interestOut,
			LoanAmount:    agg.loanAmount,
			LoanRepayment: agg.loanRepayment,
		})
	}

	if err := s.store.ReplaceMonthlyDistributions(userID, fy, rows); err != nil {
		return fmt.Errorf("failed to replace monthly distribution: %w", err)
	}
	s.log.Infof("Monthly distribution updated for FY %s: %d months", fy, len(rows))
	return nil
}

// RebuildYearly recomputes the yearly distribution row of one financial year
// as the column-wise sum of its monthly rows. Always call it after
// RebuildMonthly for the same year.
func (s *Service) RebuildYearly(userID, fy string) error {
	s.log.Infof("Recomputing yearly distribution for user %s FY %s", userID, fy)

	monthly, err := s.store.MonthlyDistributions(userID, fy)
	if err != nil {
		return err
	}

	row := models.YearlyDistribution{UserID: userID, FinancialYear: fy}
	for _, m := range monthly {
		row.Income = row.Income.Add(m.Income)
		row.InvBuy = row.InvBuy.Add(m.InvBuy)
		row.InvSell = row.InvSell.Add(m.InvSell)
		row.Expenses = row.Expenses.Add(m.Expenses)
		row.Bank = row.Bank.Add(m.Bank)
		row.Tax = row.Tax.Add(m.Tax)
		row.InterestIn = row.InterestIn.Add(m.InterestIn)
		row.InterestOut = row.InterestOut.Add(m.InterestOut)
		row.LoanAmount = row.LoanAmount.Add(m.LoanAmount)
		row.LoanRepayment = row.LoanRepayment.Add(m.LoanRepayment)
	}

	if err := s.store.ReplaceYearlyDistribution(userID, fy, row); err != nil {
		return fmt.Errorf("failed to replace yearly distribution: %w", err)
	}
	s.log.Infof("Yearly distribution updated for FY %s", fy)
	return nil
}

// FetchMonthly returns the monthly distribution rows of a user, optionally
// filtered to one financial year.
func (s *Service) FetchMonthly(userID, fy string) ([]models.MonthlyDistribution, error) {
	return s.store.MonthlyDistributions(userID, fy)
}

// FetchYearly returns the yearly distribution rows of a user, optionally
// filtered to one financial year.
func (s *Service) FetchYearly(userID, fy string) ([]models.YearlyDistribution, error) {
	return s.store.YearlyDistributions(userID, fy)
}
