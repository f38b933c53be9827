package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/paisaledger/fintrack/internal/models"
	"github.com/paisaledger/fintrack/internal/repository"
	"github.com/paisaledger/fintrack/internal/valuation"
)

// holdingKey identifies one holding within a user's portfolio.
type holdingKey struct {
	typ  string
	name string
}

// RebuildHoldings recomputes the user's entire holdings snapshot and replaces
// it atomically. Investment and interest transactions are grouped by
// (type, name) and each group is valued by the calculator matching its type
// tag; the bank account is valued first from the latest declared closing
// balance. A tradable holding without a price reference aborts the whole
// rebuild so a stale snapshot is never overwritten with a wrong one.
func (s *Service) RebuildHoldings(userID string) error {
	invests, err := s.store.InvestsByUser(userID)
	if err != nil {
		return err
	}
	interests, err := s.store.InterestsByUser(userID)
	if err != nil {
		return err
	}
	navs, err := s.store.ListNAVs()
	if err != nil {
		return err
	}

	prices := make(map[string]decimal.Decimal, len(navs))
	for _, n := range navs {
		if n.Value != nil {
			prices[n.FundName] = *n.Value
		}
	}

	trades := map[holdingKey][]valuation.Trade{}
	interestIn := map[holdingKey]decimal.Decimal{}
	interestOut := map[holdingKey]decimal.Decimal{}

	// InvestsByUser is ordered by name then date, so each group's trades
	// arrive in transaction order as the FIFO calculator expects.
	for _, inv := range invests {
		key := holdingKey{typ: strings.ToUpper(inv.Type), name: inv.Name}
		trades[key] = append(trades[key], valuation.Trade{
			Order: inv.Order,
			Units: inv.Units,
			Cost:  inv.Cost,
		})
	}
	for _, in := range interests {
		key := holdingKey{typ: strings.ToUpper(in.Type), name: in.Name}
		interestIn[key] = interestIn[key].Add(in.CostIn)
		interestOut[key] = interestOut[key].Add(in.CostOut)
	}

	var rows []models.Savings

	if bank, ok, err := s.bankHolding(userID, interestIn, interestOut); err != nil {
		return err
	} else if ok {
		rows = append(rows, bank)
	}

	keys := make([]holdingKey, 0, len(trades))
	for key := range trades {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].typ != keys[j].typ {
			return keys[i].typ < keys[j].typ
		}
		return keys[i].name < keys[j].name
	})

	for _, key := range keys {
		in := interestIn[key]
		out := interestOut[key]
		var snap valuation.Snapshot

		switch key.typ {
		case "MUTUALFUND", "STOCK", "STOCKS":
			price, ok := prices[key.name]
			if !ok {
				return fmt.Errorf("%w: %s %q", ErrPriceNotFound, key.typ, key.name)
			}
			snap = valuation.FIFO(trades[key], price, in, out)
		case "FD", "FIXEDDEPOSIT":
			snap, err = valuation.FixedDeposit(key.name, trades[key], in, out, s.now())
			if err != nil {
				return err
			}
		case "PF", "PROVIDENTFUND", "EPF", "PPF":
			snap = valuation.ProvidentFund(trades[key], in, out)
		case "RD", "LIC", "RECURRINGDEPOSIT":
			snap = valuation.RecurringDeposit(trades[key], in, out)
		case "BONDS", "BOND":
			snap = valuation.Bonds(trades[key], in, out)
		default:
			s.log.Warnf("Skipping holding %q of unsupported type %s", key.name, key.typ)
			continue
		}

		rows = append(rows, snapshotRow(userID, key, snap))
	}

	if err := s.store.ReplaceSavings(userID, rows); err != nil {
		return err
	}
	s.log.Infof("Rebuilt %d holding(s) for user %s", len(rows), userID)
	return nil
}

// bankHolding values the bank account from the latest declared closing
// balance. Without a declared balance there is nothing trustworthy to report,
// so no row is emitted.
func (s *Service) bankHolding(userID string, interestIn, interestOut map[holdingKey]decimal.Decimal) (models.Savings, bool, error) {
	balance, err := s.store.ClosingBalance(userID, "")
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warnf("No declared closing balance for user %s, skipping bank holding", userID)
			return models.Savings{}, false, nil
		}
		return models.Savings{}, false, err
	}

	in := decimal.Zero
	out := decimal.Zero
	for key, v := range interestIn {
		if key.typ == strings.ToUpper(s.class.BankType) {
			in = in.Add(v)
		}
	}
	for key, v := range interestOut {
		if key.typ == strings.ToUpper(s.class.BankType) {
			out = out.Add(v)
		}
	}

	snap := valuation.Bank(balance.ClosingBalance, in, out)
	key := holdingKey{typ: strings.ToUpper(s.class.BankType), name: s.class.BankName}
	return snapshotRow(userID, key, snap), true, nil
}

func snapshotRow(userID string, key holdingKey, snap valuation.Snapshot) models.Savings {
	return models.Savings{
		UserID:           userID,
		Type:             key.typ,
		Name:             key.name,
		TotalBuy:         snap.TotalBuy,
		TotalSell:        snap.TotalSell,
		ProfitBooked:     snap.ProfitBooked,
		CurrentInvested:  snap.CurrentInvested,
		CurrentValue:     snap.CurrentValue,
		ProfitLoss:       snap.ProfitLoss,
		ReturnPercentage: snap.ReturnPercentage,
	}
}

// FetchHoldings returns the user's current holdings snapshot.
func (s *Service) FetchHoldings(userID string) ([]models.Savings, error) {
	return s.store.SavingsByUser(userID)
}
