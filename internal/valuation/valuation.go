// Package valuation turns a holding's transaction history into a snapshot of
// its current worth. Every calculator is a stateless function; the caller
// supplies everything time- or market-dependent (current price, today's date).
package valuation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidDepositName indicates a fixed-deposit holding whose name does not
// carry the expected embedded metadata.
var ErrInvalidDepositName = errors.New("invalid fixed deposit name")

// Trade is one buy or sell of a holding, in transaction order.
type Trade struct {
	Order string // BUY or SELL
	Units decimal.Decimal
	Cost  decimal.Decimal
}

// Snapshot is the result of valuing one holding.
type Snapshot struct {
	TotalBuy         decimal.Decimal
	TotalSell        decimal.Decimal
	ProfitBooked     decimal.Decimal
	CurrentInvested  decimal.Decimal
	CurrentValue     decimal.Decimal
	ProfitLoss       decimal.Decimal
	ReturnPercentage decimal.Decimal
	RemainingUnits   decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// lot is an open purchase batch consumed oldest-first on sale.
type lot struct {
	units     decimal.Decimal
	unitPrice decimal.Decimal
}

// FIFO values a tradable holding (mutual fund or stock). Sells consume open
// lots oldest-first; a partially sold lot is split in place. The remaining
// lots' cost is the current investment, and the remaining units are marked to
// the supplied price.
func FIFO(trades []Trade, price, interestIn, interestOut decimal.Decimal) Snapshot {
	var (
		totalBuy, totalSell decimal.Decimal
		remainingUnits      decimal.Decimal
		queue               []lot
	)

	for _, t := range trades {
		switch strings.ToUpper(t.Order) {
		case "BUY":
			unitPrice := decimal.Zero
			if !t.Units.IsZero() {
				unitPrice = t.Cost.Div(t.Units)
			}
			queue = append(queue, lot{units: t.Units, unitPrice: unitPrice})
			totalBuy = totalBuy.Add(t.Cost)
			remainingUnits = remainingUnits.Add(t.Units)

		case "SELL":
			totalSell = totalSell.Add(t.Cost)
			remainingUnits = remainingUnits.Sub(t.Units)
			sellUnits := t.Units
			for sellUnits.IsPositive() && len(queue) > 0 {
				head := queue[0]
				if head.units.LessThanOrEqual(sellUnits) {
					sellUnits = sellUnits.Sub(head.units)
					queue = queue[1:]
				} else {
					queue[0].units = head.units.Sub(sellUnits)
					sellUnits = decimal.Zero
				}
			}
		}
	}

	currentInvested := decimal.Zero
	for _, l := range queue {
		currentInvested = currentInvested.Add(l.units.Mul(l.unitPrice))
	}
	currentInvested = currentInvested.Round(2)
	currentValue := remainingUnits.Mul(price).Round(2)
	profitLoss := currentValue.Sub(currentInvested)

	return Snapshot{
		TotalBuy:         totalBuy,
		TotalSell:        totalSell,
		ProfitBooked:     interestIn.Sub(interestOut),
		CurrentInvested:  currentInvested,
		CurrentValue:     currentValue,
		ProfitLoss:       profitLoss,
		ReturnPercentage: returnPct(profitLoss, currentInvested),
		RemainingUnits:   remainingUnits,
	}
}

// FixedDeposit values a fixed deposit. An open deposit accrues simple
// interest linearly from its start date; the terms are embedded in the
// holding name as "LABEL_principal_rate_start_maturity" with ISO dates.
// Any sell closes the deposit and stops the valuation at recorded flows.
func FixedDeposit(name string, trades []Trade, interestIn, interestOut decimal.Decimal, today time.Time) (Snapshot, error) {
	var totalBuy, totalSell decimal.Decimal
	open := true
	for _, t := range trades {
		switch strings.ToUpper(t.Order) {
		case "BUY":
			totalBuy = totalBuy.Add(t.Cost)
		case "SELL":
			totalSell = totalSell.Add(t.Cost)
			open = false
		}
	}

	currentInvested := decimal.Zero
	currentValue := decimal.Zero
	if open {
		principal, rate, start, err := parseDepositName(name)
		if err != nil {
			return Snapshot{}, err
		}
		daysElapsed := int(today.Sub(start).Hours() / 24)
		accrued := principal.Mul(rate).
			Mul(decimal.NewFromInt(int64(daysElapsed))).
			Div(decimal.NewFromInt(365)).
			Round(2)
		currentInvested = totalBuy
		currentValue = currentInvested.Add(accrued)
	}

	profitLoss := currentValue.Sub(currentInvested)
	return Snapshot{
		TotalBuy:         totalBuy.Round(2),
		TotalSell:        totalSell.Round(2),
		ProfitBooked:     interestIn.Sub(interestOut).Round(2),
		CurrentInvested:  currentInvested.Round(2),
		CurrentValue:     currentValue.Round(2),
		ProfitLoss:       profitLoss.Round(2),
		ReturnPercentage: returnPct(profitLoss, currentInvested),
	}, nil
}

// parseDepositName extracts principal, annual rate and start date from a
// deposit name like "FD_100000_7.1_2024-06-01_2026-06-01".
func parseDepositName(name string) (principal, rate decimal.Decimal, start time.Time, err error) {
	parts := strings.Split(name, "_")
	if len(parts) != 5 {
		return principal, rate, start, fmt.Errorf("%w: %q, want 5 fields separated by \"_\"", ErrInvalidDepositName, name)
	}
	principal, err = decimal.NewFromString(parts[1])
	if err != nil {
		return principal, rate, start, fmt.Errorf("%w: principal in %q: %v", ErrInvalidDepositName, name, err)
	}
	rate, err = decimal.NewFromString(parts[2])
	if err != nil {
		return principal, rate, start, fmt.Errorf("%w: rate in %q: %v", ErrInvalidDepositName, name, err)
	}
	rate = rate.Div(hundred)
	start, err = time.Parse("2006-01-02", parts[3])
	if err != nil {
		return principal, rate, start, fmt.Errorf("%w: start date in %q: %v", ErrInvalidDepositName, name, err)
	}
	if _, err = time.Parse("2006-01-02", parts[4]); err != nil {
		return principal, rate, start, fmt.Errorf("%w: maturity date in %q: %v", ErrInvalidDepositName, name, err)
	}
	return principal, rate, start, nil
}

// ProvidentFund values a provident fund: net contributions are the current
// investment, and credited interest sits on top of it. When withdrawals
// exceed contributions the overshoot is profit already booked, not a
// negative investment.
func ProvidentFund(trades []Trade, interestIn, interestOut decimal.Decimal) Snapshot {
	var totalBuy, totalSell decimal.Decimal
	for _, t := range trades {
		switch strings.ToUpper(t.Order) {
		case "BUY":
			totalBuy = totalBuy.Add(t.Cost)
		case "SELL":
			totalSell = totalSell.Add(t.Cost)
		}
	}

	profitBooked := decimal.Zero
	currentInvested := decimal.Zero
	if diff := totalBuy.Sub(totalSell); diff.IsNegative() {
		profitBooked = diff.Abs()
	} else {
		currentInvested = diff
	}
	currentValue := currentInvested.Add(interestIn).Sub(interestOut)
	profitLoss := currentValue.Sub(currentInvested)

	return Snapshot{
		TotalBuy:         totalBuy.Round(2),
		TotalSell:        totalSell.Round(2),
		ProfitBooked:     profitBooked.Round(2),
		CurrentInvested:  currentInvested.Round(2),
		CurrentValue:     currentValue.Round(2),
		ProfitLoss:       profitLoss.Round(2),
		ReturnPercentage: returnPct(profitLoss, currentInvested),
	}
}

// RecurringDeposit values a recurring deposit or insurance-linked saving.
// Interest is credited to the bank rather than compounded, so while the
// holding is open its value is the cumulative principal plus net interest.
// Once sold the position collapses to zero and the net interest stands as
// booked profit.
func RecurringDeposit(trades []Trade, interestIn, interestOut decimal.Decimal) Snapshot {
	var totalBuy, totalSell decimal.Decimal
	open := true
	for _, t := range trades {
		switch strings.ToUpper(t.Order) {
		case "BUY":
			totalBuy = totalBuy.Add(t.Cost)
		case "SELL":
			totalSell = totalSell.Add(t.Cost)
			open = false
		}
	}

	netInterest := interestIn.Sub(interestOut)
	currentInvested := decimal.Zero
	currentValue := decimal.Zero
	profitBooked := netInterest
	if open {
		currentInvested = totalBuy
		currentValue = currentInvested.Add(netInterest)
		profitBooked = decimal.Zero
	}
	profitLoss := currentValue.Sub(currentInvested)

	pct := decimal.Zero
	if !currentInvested.IsZero() && !totalBuy.IsZero() {
		pct = profitBooked.Div(totalBuy).Mul(hundred).Round(2)
	}
	return Snapshot{
		TotalBuy:         totalBuy.Round(2),
		TotalSell:        totalSell.Round(2),
		ProfitBooked:     profitBooked.Round(2),
		CurrentInvested:  currentInvested.Round(2),
		CurrentValue:     currentValue.Round(2),
		ProfitLoss:       profitLoss.Round(2),
		ReturnPercentage: pct,
	}
}

// Bonds values a bond holding at cost: no growth is modeled, coupons arrive
// as interest.
func Bonds(trades []Trade, interestIn, interestOut decimal.Decimal) Snapshot {
	var totalBuy, totalSell decimal.Decimal
	for _, t := range trades {
		switch strings.ToUpper(t.Order) {
		case "BUY":
			totalBuy = totalBuy.Add(t.Cost)
		case "SELL":
			totalSell = totalSell.Add(t.Cost)
		}
	}

	currentInvested := totalBuy.Sub(totalSell)
	profitBooked := interestIn.Sub(interestOut)
	pct := decimal.Zero
	if !currentInvested.IsZero() && !totalBuy.IsZero() {
		pct = profitBooked.Div(totalBuy).Mul(hundred).Round(2)
	}
	return Snapshot{
		TotalBuy:         totalBuy.Round(2),
		TotalSell:        totalSell.Round(2),
		ProfitBooked:     profitBooked.Round(2),
		CurrentInvested:  currentInvested.Round(2),
		CurrentValue:     currentInvested.Round(2),
		ProfitLoss:       decimal.Zero,
		ReturnPercentage: pct,
	}
}

// Bank values the bank account itself: the declared closing balance is both
// the investment and the value, and account interest is booked profit.
func Bank(balance, interestIn, interestOut decimal.Decimal) Snapshot {
	return Snapshot{
		TotalBuy:        decimal.Zero,
		TotalSell:       decimal.Zero,
		ProfitBooked:    interestIn.Sub(interestOut).Round(2),
		CurrentInvested: balance.Round(2),
		CurrentValue:    balance.Round(2),
		ProfitLoss:      decimal.Zero,
	}
}

// returnPct is profit/loss over invested, with a zero investment reporting 0
// rather than failing on the division.
func returnPct(profitLoss, invested decimal.Decimal) decimal.Decimal {
	if invested.IsZero() {
		return decimal.Zero
	}
	return profitLoss.Div(invested).Mul(hundred).Round(2)
}
