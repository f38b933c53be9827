package service

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/paisaledger/fintrack/internal/repository"
)

// Named failure conditions surfaced by the engine. All abort the enclosing
// operation with no partial write.
var (
	// ErrPriceNotFound means a tradable holding has no NAV reference row.
	ErrPriceNotFound = errors.New("price not found")
	// ErrInsufficientAdjusted means a negative reconciliation cannot be
	// covered by the financial year's existing ADJUSTED expenses.
	ErrInsufficientAdjusted = errors.New("insufficient adjusted expenses")
	// ErrAllocationFailed means a retraction could not be fully allocated
	// even though the up-front total check passed.
	ErrAllocationFailed = errors.New("failed to allocate full deduction")
	// ErrBalanceNotFound means no closing bank balance is declared for the
	// financial year under reconciliation.
	ErrBalanceNotFound = errors.New("closing balance not found")
	// ErrDateOutsideYear means the exact date handed to reconciliation does
	// not fall inside the target financial year.
	ErrDateOutsideYear = errors.New("date outside financial year")
	// ErrUnknownField means a watermark update named a field that does not exist.
	ErrUnknownField = errors.New("unknown config field")
)

// Mailer sends best-effort notifications about booked adjustments.
type Mailer interface {
	SendAdjustmentNotice(to, username, financialYear string, amount decimal.Decimal, retracted bool) error
}

// Classification carries the holding-type sets the engine classifies by.
// It replaces ambient lookup tables: callers construct it once and hand it in.
type Classification struct {
	// BankType and BankName identify the bank account holding itself.
	BankType string
	BankName string
	// CreditInterestTypes are interest types paid straight into the bank
	// account, counted in the monthly bank delta.
	CreditInterestTypes []string
	// RetirementTypes and LiquidTypes drive summary/insight grouping.
	RetirementTypes []string
	LiquidTypes     []string
}

// DefaultClassification returns the stock classification used by the app.
func DefaultClassification(bankName string) Classification {
	if bankName == "" {
		bankName = "HDFC"
	}
	return Classification{
		BankType:            "Bank",
		BankName:            bankName,
		CreditInterestTypes: []string{"BANK", "BONDS"},
		RetirementTypes:     []string{"PF", "PROVIDENTFUND", "LIC"},
		LiquidTypes:         []string{"BANK", "MUTUALFUND", "RD"},
	}
}

func member(set []string, v string) bool {
	for _, s := range set {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

// Service handles business logic
type Service struct {
	store     repository.Store
	log       *logrus.Logger
	class     Classification
	mailer    Mailer
	jwtSecret string
	now       func() time.Time
}

// NewService initializes a new service
func NewService(store repository.Store, log *logrus.Logger, class Classification) *Service {
	return &Service{
		store: store,
		log:   log,
		class: class,
		now:   time.Now,
	}
}

// SetMailer attaches an optional notification mailer.
func (s *Service) SetMailer(m Mailer) { s.mailer = m }
