package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paisaledger/fintrack/internal/models"
	"github.com/paisaledger/fintrack/internal/repository"
)

// Summarize builds the dashboard card figures for a user from the derived
// snapshots only; it never re-reads raw transactions. The bank balance is
// left nil when the user has not declared one yet.
func (s *Service) Summarize(userID string) (*models.Summary, error) {
	monthly, err := s.store.MonthlyDistributions(userID, "")
	if err != nil {
		return nil, err
	}
	holdings, err := s.store.SavingsByUser(userID)
	if err != nil {
		return nil, err
	}
	yearly, err := s.store.YearlyDistributions(userID, "")
	if err != nil {
		return nil, err
	}

	sum := &models.Summary{}

	var highest, lowest *models.MonthlyDistribution
	for i := range monthly {
		m := &monthly[i]
		sum.TotalExpenses = sum.TotalExpenses.Add(m.Expenses)
		if highest == nil || m.Expenses.GreaterThan(highest.Expenses) {
			highest = m
		}
		if lowest == nil || m.Expenses.LessThan(lowest.Expenses) {
			lowest = m
		}
	}
	if n := len(monthly); n > 0 {
		sum.AvgMonthlyExpense = sum.TotalExpenses.Div(decimal.NewFromInt(int64(n))).Round(2)
		sum.HighestExpenseMonth = monthLabel(highest.Year, highest.Month)
		sum.LowestExpenseMonth = monthLabel(lowest.Year, lowest.Month)
	}

	bankType := s.class.BankType
	for _, h := range holdings {
		sum.ProfitBooked = sum.ProfitBooked.Add(h.ProfitBooked)
		sum.TotalWealth = sum.TotalWealth.Add(h.CurrentValue)
		if member(s.class.LiquidTypes, h.Type) {
			sum.LiquidWealth = sum.LiquidWealth.Add(h.CurrentValue)
		}
		if member([]string{bankType}, h.Type) {
			continue
		}
		sum.TotalInvested = sum.TotalInvested.Add(h.CurrentInvested)
		sum.TotalValue = sum.TotalValue.Add(h.CurrentValue)
		sum.TotalProfitLoss = sum.TotalProfitLoss.Add(h.ProfitLoss)
	}
	if !sum.TotalInvested.IsZero() {
		sum.WeightedReturn = sum.TotalProfitLoss.Div(sum.TotalInvested).Mul(hundred).Round(2)
	}

	for _, y := range yearly {
		sum.TotalLoans = sum.TotalLoans.Add(y.LoanAmount).Sub(y.LoanRepayment)
	}

	balance, err := s.store.ClosingBalance(userID, "")
	switch {
	case err == nil:
		b := balance.ClosingBalance
		sum.BankBalance = &b
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	return sum, nil
}

var hundred = decimal.NewFromInt(100)

// Insights derives portfolio and expense highlights for a user. Every field
// degrades to the empty string when the underlying data is missing instead
// of erroring, since the dashboard renders whatever is available.
func (s *Service) Insights(userID string) (*models.Insights, error) {
	expenses, err := s.store.ExpensesByUser(userID)
	if err != nil {
		return nil, err
	}
	holdings, err := s.store.SavingsByUser(userID)
	if err != nil {
		return nil, err
	}
	yearly, err := s.store.YearlyDistributions(userID, "")
	if err != nil {
		return nil, err
	}

	ins := &models.Insights{}

	byCategory := map[string]decimal.Decimal{}
	byType := map[string]decimal.Decimal{}
	for _, e := range expenses {
		byCategory[e.Category] = byCategory[e.Category].Add(e.Cost)
		byType[e.Type] = byType[e.Type].Add(e.Cost)
	}
	ins.HighestCategory = maxKey(byCategory)
	ins.HighestType = maxKey(byType)

	var (
		top, bottom, largest, topRetirement *models.Savings
		invested, profitLoss                decimal.Decimal
		retInvested, retProfitLoss          decimal.Decimal
		totalValue                          decimal.Decimal
	)
	for i := range holdings {
		h := &holdings[i]
		if member([]string{s.class.BankType}, h.Type) {
			continue
		}
		totalValue = totalValue.Add(h.CurrentValue)
		invested = invested.Add(h.CurrentInvested)
		profitLoss = profitLoss.Add(h.ProfitLoss)
		if top == nil || h.ReturnPercentage.GreaterThan(top.ReturnPercentage) {
			top = h
		}
		if bottom == nil || h.ReturnPercentage.LessThan(bottom.ReturnPercentage) {
			bottom = h
		}
		if largest == nil || h.CurrentValue.GreaterThan(largest.CurrentValue) {
			largest = h
		}
		if member(s.class.RetirementTypes, h.Type) {
			retInvested = retInvested.Add(h.CurrentInvested)
			retProfitLoss = retProfitLoss.Add(h.ProfitLoss)
			if topRetirement == nil || h.CurrentValue.GreaterThan(topRetirement.CurrentValue) {
				topRetirement = h
			}
		}
	}
	if top != nil {
		ins.TopAsset = fmt.Sprintf("%s (%s%%)", top.Name, top.ReturnPercentage)
	}
	if bottom != nil {
		ins.BottomAsset = fmt.Sprintf("%s (%s%%)", bottom.Name, bottom.ReturnPercentage)
	}
	if largest != nil {
		ins.LargestHolding = largest.Name
		if !totalValue.IsZero() {
			share := largest.CurrentValue.Div(totalValue).Mul(hundred).Round(1)
			ins.ConcentrationRisk = fmt.Sprintf("%s holds %s%% of portfolio value", largest.Name, share)
		}
	}
	if topRetirement != nil {
		ins.TopRetirementAsset = topRetirement.Name
	}
	if !invested.IsZero() {
		ins.PortfolioReturn = fmt.Sprintf("%s%%", profitLoss.Div(invested).Mul(hundred).Round(2))
	}
	if !retInvested.IsZero() {
		ins.RetirementReturn = fmt.Sprintf("%s%%", retProfitLoss.Div(retInvested).Mul(hundred).Round(2))
	}

	// YearlyDistributions arrive ordered by financial year, so the last two
	// rows are the most recent years.
	if n := len(yearly); n >= 2 {
		prev, last := yearly[n-2], yearly[n-1]
		if !prev.InvBuy.IsZero() {
			growth := last.InvBuy.Sub(prev.InvBuy).Div(prev.InvBuy).Mul(hundred).Round(2)
			ins.YoYInvestGrowth = fmt.Sprintf("%s%% vs %s", growth, prev.FinancialYear)
		}
	}

	return ins, nil
}

func monthLabel(year, month int) string {
	return fmt.Sprintf("%s %d", time.Month(month).String()[:3], year)
}

func maxKey(totals map[string]decimal.Decimal) string {
	best := ""
	var bestV decimal.Decimal
	for k, v := range totals {
		if best == "" || v.GreaterThan(bestV) || (v.Equal(bestV) && k < best) {
			best = k
			bestV = v
		}
	}
	return best
}
