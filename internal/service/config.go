package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/paisaledger/fintrack/internal/fincal"
	"github.com/paisaledger/fintrack/internal/models"
	"github.com/paisaledger/fintrack/internal/repository"
)

// Watermark field names accepted by UpdateWatermark.
const (
	WatermarkExpense   = "expense"
	WatermarkInvest    = "invest"
	WatermarkFinancial = "financial"
)

var watermarkEpoch = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// userConfig returns the user's import config, creating a default one with
// epoch watermarks on first use.
func (s *Service) userConfig(userID string) (*models.UserConfig, error) {
	cfg, err := s.store.UserConfig(userID)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	cfg = &models.UserConfig{
		UserID:                   userID,
		LastUpdatedDate:          watermarkEpoch,
		InvestLastUpdatedDate:    watermarkEpoch,
		ExpenseLastUpdatedDate:   watermarkEpoch,
		FinancialLastUpdatedDate: watermarkEpoch,
	}
	if err := s.store.SaveUserConfig(cfg); err != nil {
		return nil, err
	}
	s.log.Infof("Created default import config for user %s", userID)
	return cfg, nil
}

// Watermarks returns the user's import watermarks, creating defaults on
// first use.
func (s *Service) Watermarks(userID string) (*models.UserConfig, error) {
	return s.userConfig(userID)
}

// UpdateWatermark sets one named watermark to the given date. Only the
// expense, invest and financial fields exist; anything else is rejected.
func (s *Service) UpdateWatermark(userID, field string, date time.Time) (*models.UserConfig, error) {
	cfg, err := s.userConfig(userID)
	if err != nil {
		return nil, err
	}

	switch field {
	case WatermarkExpense:
		cfg.ExpenseLastUpdatedDate = date
	case WatermarkInvest:
		cfg.InvestLastUpdatedDate = date
	case WatermarkFinancial:
		cfg.FinancialLastUpdatedDate = date
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	cfg.LastUpdatedDate = s.now()

	if err := s.store.SaveUserConfig(cfg); err != nil {
		return nil, err
	}
	s.log.Infof("Updated %s watermark for user %s to %s", field, userID, date.Format("2006-01-02"))
	return cfg, nil
}

// SaveNAV records or refreshes the latest known price of a fund or stock.
func (s *Service) SaveNAV(nav *models.NAV) error {
	nav.LastUpdated = s.now()
	return s.store.UpsertNAV(nav)
}

// ListNAVs returns every known price reference row.
func (s *Service) ListNAVs() ([]models.NAV, error) {
	return s.store.ListNAVs()
}

// DeclareClosingBalance records the user's ground-truth bank balance at the
// close of a financial year and reconciles that year against it.
func (s *Service) DeclareClosingBalance(balance *models.YearlyClosingBankBalance) error {
	if _, _, err := fincal.Parse(balance.FinancialYear); err != nil {
		return err
	}
	if err := s.store.UpsertClosingBalance(balance); err != nil {
		return err
	}
	if err := s.Reconcile(balance.UserID, balance.FinancialYear, nil); err != nil {
		return err
	}
	if err := s.RebuildYearly(balance.UserID, balance.FinancialYear); err != nil {
		return err
	}
	return s.RebuildHoldings(balance.UserID)
}
