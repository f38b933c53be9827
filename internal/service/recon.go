package service

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paisaledger/fintrack/internal/fincal"
	"github.com/paisaledger/fintrack/internal/models"
	"github.com/paisaledger/fintrack/internal/repository"
)

// Reconcile compares the declared closing bank balance of a financial year
// against the cumulative computed bank balance and books a synthetic
// PERSONAL/ADJUSTED expense (or retracts previously booked ones) until the
// two agree. The computed side deliberately accumulates across every
// financial year up to and including the target one.
//
// exactDate, when given, pins a positive adjustment to that date's month and
// starts a negative retraction there; otherwise amounts spread across the
// year's months. After any adjustment the monthly distribution of fy is
// rebuilt so its bank invariant stays true.
func (s *Service) Reconcile(userID, fy string, exactDate *time.Time) error {
	if fy == "" && exactDate != nil {
		fy = fincal.Compute(exactDate.Year(), int(exactDate.Month()))
	}
	if fy == "" {
		return fmt.Errorf("reconcile: financial year or exact date required")
	}

	declared, err := s.store.ClosingBalance(userID, fy)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w for %s", ErrBalanceNotFound, fy)
		}
		return err
	}

	startYear, _, err := fincal.Parse(fy)
	if err != nil {
		return err
	}
	computed, err := s.store.SumBankThroughYear(userID, startYear)
	if err != nil {
		return err
	}
	s.log.Infof("Reconciling %s FY %s: declared %s, computed %s",
		userID, fy, declared.ClosingBalance, computed)

	diff := computed.Sub(declared.ClosingBalance)
	switch {
	case diff.IsZero():
		s.log.Infof("Reconciliation passed for FY %s, no adjustment needed", fy)
		return nil
	case diff.IsPositive():
		if err := s.bookAdjustment(userID, fy, diff, exactDate); err != nil {
			return err
		}
	default:
		if err := s.retractAdjustment(userID, fy, diff.Abs(), exactDate); err != nil {
			return err
		}
	}

	if err := s.RebuildMonthly(userID, fy); err != nil {
		return err
	}
	s.notifyAdjustment(userID, fy, diff)
	s.log.Infof("Bank reconciliation completed for FY %s", fy)
	return nil
}

// bookAdjustment books amount as additional ADJUSTED expense. With an exact
// date the whole amount lands in that date's month; otherwise it spreads
// evenly across the year's months (only the elapsed months for the current
// financial year).
func (s *Service) bookAdjustment(userID, fy string, amount decimal.Decimal, exactDate *time.Time) error {
	var entries []models.AdjustmentEntry
	if exactDate != nil {
		entries = []models.AdjustmentEntry{{
			Year:   exactDate.Year(),
			Month:  int(exactDate.Month()),
			Amount: amount,
		}}
	} else {
		months, err := fincal.MonthsThrough(fy, s.now())
		if err != nil {
			return err
		}
		entries = spreadEven(amount, months)
	}
	if err := s.store.AddAdjustedExpenses(userID, fy, entries); err != nil {
		return err
	}
	s.log.Infof("Booked adjustment expense of %s across %d month(s) in FY %s",
		amount, len(entries), fy)
	return nil
}

// spreadEven splits amount over months, rounding each share to four decimal
// places and giving the remainder to the last month so the shares add up to
// amount exactly.
func spreadEven(amount decimal.Decimal, months []fincal.YearMonth) []models.AdjustmentEntry {
	n := int64(len(months))
	per := amount.Div(decimal.NewFromInt(n)).Round(4)
	entries := make([]models.AdjustmentEntry, 0, n)
	allocated := decimal.Zero
	for i, ym := range months {
		share := per
		if i == len(months)-1 {
			share = amount.Sub(allocated)
		}
		entries = append(entries, models.AdjustmentEntry{Year: ym.Year, Month: ym.Month, Amount: share})
		allocated = allocated.Add(share)
	}
	return entries
}

// retractAdjustment removes amount from the financial year's existing
// ADJUSTED expenses. It validates the available total up front and then
// either draws down greedily starting at exactDate's month (wrapping through
// the year) or equalizes the deduction across all months that still hold a
// positive balance.
func (s *Service) retractAdjustment(userID, fy string, amount decimal.Decimal, exactDate *time.Time) error {
	rows, err := s.store.AdjustedExpenses(userID, fy)
	if err != nil {
		return err
	}

	available := map[fincal.YearMonth]decimal.Decimal{}
	total := decimal.Zero
	for _, r := range rows {
		key := fincal.YearMonth{Year: r.Year, Month: r.Month}
		available[key] = available[key].Add(r.Cost)
		total = total.Add(r.Cost)
	}
	if amount.GreaterThan(total) {
		return fmt.Errorf("%w in %s: available %s, required %s",
			ErrInsufficientAdjusted, fy, total, amount)
	}

	var order []fincal.YearMonth
	greedy := exactDate != nil
	if greedy {
		if fincal.Compute(exactDate.Year(), int(exactDate.Month())) != fy {
			return fmt.Errorf("%w: %s not in %s", ErrDateOutsideYear, exactDate.Format("2006-01-02"), fy)
		}
		months, err := fincal.Months(fy)
		if err != nil {
			return err
		}
		start := fincal.YearMonth{Year: exactDate.Year(), Month: int(exactDate.Month())}
		idx := 0
		for i, ym := range months {
			if ym == start {
				idx = i
				break
			}
		}
		order = append(months[idx:], months[:idx]...)
	} else {
		order, err = fincal.MonthsThrough(fy, s.now())
		if err != nil {
			return err
		}
	}

	remaining := amount
	changed := map[fincal.YearMonth]decimal.Decimal{}

	if greedy {
		for _, ym := range order {
			if !remaining.IsPositive() {
				break
			}
			avail, ok := available[ym]
			if !ok || !avail.IsPositive() {
				continue
			}
			take := decimalMin(avail, remaining)
			changed[ym] = avail.Sub(take).Round(4)
			remaining = remaining.Sub(take)
		}
	} else {
		type poolEntry struct {
			ym    fincal.YearMonth
			avail decimal.Decimal
		}
		var pool []poolEntry
		for _, ym := range order {
			if avail, ok := available[ym]; ok && avail.IsPositive() {
				pool = append(pool, poolEntry{ym: ym, avail: avail})
			}
		}

		// Equalize the deduction over the pool; months that hit zero drop
		// out and the remainder redistributes over the rest.
		for remaining.IsPositive() && len(pool) > 0 {
			per := remaining.Div(decimal.NewFromInt(int64(len(pool)))).Round(4)
			if per.IsZero() {
				// avoid getting stuck on rounding
				per = remaining.Div(decimal.NewFromInt(int64(len(pool))))
			}
			next := pool[:0]
			for _, e := range pool {
				take := decimalMin(e.avail, decimalMin(per, remaining))
				e.avail = e.avail.Sub(take)
				changed[e.ym] = e.avail.Round(4)
				remaining = remaining.Sub(take)
				if e.avail.IsPositive() {
					next = append(next, e)
				}
			}
			pool = next
		}

		// Sweep rounding dust from the first month still in the pool.
		if remaining.IsPositive() && len(pool) > 0 {
			take := decimalMin(pool[0].avail, remaining)
			changed[pool[0].ym] = pool[0].avail.Sub(take).Round(4)
			remaining = remaining.Sub(take)
		}
	}

	if remaining.IsPositive() {
		// The up-front total check passed, so only a concurrent write can
		// leave us short here.
		return fmt.Errorf("%w: remaining %s in %s", ErrAllocationFailed, remaining, fy)
	}

	keys := make([]fincal.YearMonth, 0, len(changed))
	for ym := range changed {
		keys = append(keys, ym)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Year != keys[j].Year {
			return keys[i].Year < keys[j].Year
		}
		return keys[i].Month < keys[j].Month
	})
	entries := make([]models.AdjustmentEntry, 0, len(keys))
	for _, ym := range keys {
		entries = append(entries, models.AdjustmentEntry{Year: ym.Year, Month: ym.Month, Amount: changed[ym]})
	}
	if err := s.store.SetAdjustedExpenses(userID, fy, entries); err != nil {
		return err
	}
	s.log.Infof("Retracted adjustment expense of %s across %d month(s) in FY %s",
		amount, len(entries), fy)
	return nil
}

// notifyAdjustment emails the user about a booked or retracted adjustment.
// Delivery is best effort; failures are logged, never propagated.
func (s *Service) notifyAdjustment(userID, fy string, diff decimal.Decimal) {
	if s.mailer == nil {
		return
	}
	user, err := s.store.FindUserByID(userID)
	if err != nil || user.Email == "" {
		return
	}
	if err := s.mailer.SendAdjustmentNotice(user.Email, user.Username, fy, diff.Abs(), diff.IsNegative()); err != nil {
		s.log.Warnf("Failed to send adjustment notice to %s: %v", user.Email, err)
	}
}

func decimalMin(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
