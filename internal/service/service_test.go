package service

import (
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/paisaledger/fintrack/internal/repository"
)

// testNow pins the clock mid-July 2025, so the current financial year is
// 2025-2026 with four elapsed months (April through July).
var testNow = time.Date(2025, time.July, 15, 12, 0, 0, 0, time.UTC)

func newTestService() (*Service, *repository.Memory) {
	store := repository.NewMemory()
	log := logrus.New()
	log.SetOutput(io.Discard)
	svc := NewService(store, log, DefaultClassification(""))
	svc.now = func() time.Time { return testNow }
	return svc, store
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
