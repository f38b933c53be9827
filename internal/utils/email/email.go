package email

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/paisaledger/fintrack/internal/config"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendAdjustmentNotice tells the user that reconciliation booked or retracted
// an adjustment expense for a financial year.
func (s *Sender) SendAdjustmentNotice(to, username, financialYear string, amount decimal.Decimal, retracted bool) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	if retracted {
		e.Subject = fmt.Sprintf("Bank Reconciliation: Adjustment Retracted for %s", financialYear)
	} else {
		e.Subject = fmt.Sprintf("Bank Reconciliation: Adjustment Booked for %s", financialYear)
	}

	body := fmt.Sprintf("Dear %s,\n\n", username)
	if retracted {
		body += fmt.Sprintf(
			"Your ledger for financial year %s showed less cash than your declared closing balance.\n"+
				"Previously booked adjustment expenses totalling %s have been retracted to match.\n",
			financialYear, amount.StringFixed(2),
		)
	} else {
		body += fmt.Sprintf(
			"Your ledger for financial year %s showed more cash than your declared closing balance.\n"+
				"An adjustment expense of %s has been booked to reconcile the difference.\n"+
				"If this amount looks wrong, please review your recorded transactions for the year.\n",
			financialYear, amount.StringFixed(2),
		)
	}
	body += "\nBest regards,\nFintrack"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
