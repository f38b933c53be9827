package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/paisaledger/fintrack/internal/middleware"
	"github.com/paisaledger/fintrack/internal/models"
	"github.com/paisaledger/fintrack/internal/repository"
	"github.com/paisaledger/fintrack/internal/service"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// respondError maps the engine's named failures onto HTTP statuses.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrBalanceNotFound),
		errors.Is(err, service.ErrPriceNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrInsufficientAdjusted),
		errors.Is(err, service.ErrDateOutsideYear),
		errors.Is(err, service.ErrUnknownField):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, "username and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.svc.Register(req.Username, req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": user.ID, "username": user.Username})
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.svc.Login(req.Username, req.Password)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

// RecordTransaction stores one transaction of the kind named in the URL and
// runs the derivation chain for its financial year.
func (h *Handler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	kind := mux.Vars(r)["kind"]

	var err error
	switch kind {
	case "income":
		var row models.Income
		if err = json.NewDecoder(r.Body).Decode(&row); err == nil {
			row.UserID = userID
			err = h.svc.RecordIncome(&row)
		}
	case "expense":
		var row models.Expense
		if err = json.NewDecoder(r.Body).Decode(&row); err == nil {
			row.UserID = userID
			err = h.svc.RecordExpense(&row)
		}
	case "invest":
		var row models.Invest
		if err = json.NewDecoder(r.Body).Decode(&row); err == nil {
			row.UserID = userID
			err = h.svc.RecordInvest(&row)
		}
	case "interest":
		var row models.Interest
		if err = json.NewDecoder(r.Body).Decode(&row); err == nil {
			row.UserID = userID
			err = h.svc.RecordInterest(&row)
		}
	case "loan":
		var row models.Loan
		if err = json.NewDecoder(r.Body).Decode(&row); err == nil {
			row.UserID = userID
			err = h.svc.RecordLoan(&row)
		}
	default:
		http.Error(w, "Unknown transaction kind", http.StatusNotFound)
		return
	}

	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

// ImportTransactions ingests a bulk batch and reports the affected years.
func (h *Handler) ImportTransactions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var batch service.ImportBatch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	fys, err := h.svc.ImportTransactions(userID, batch)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"financial_years": fys})
}

// MonthlyDistributions returns monthly roll-ups, optionally for one year.
func (h *Handler) MonthlyDistributions(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.FetchMonthly(middleware.UserID(r.Context()), r.URL.Query().Get("financial_year"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// YearlyDistributions returns yearly roll-ups, optionally for one year.
func (h *Handler) YearlyDistributions(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.FetchYearly(middleware.UserID(r.Context()), r.URL.Query().Get("financial_year"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// Holdings returns the current holdings snapshot.
func (h *Handler) Holdings(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.FetchHoldings(middleware.UserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// RebuildHoldings forces a holdings snapshot rebuild.
func (h *Handler) RebuildHoldings(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RebuildHoldings(middleware.UserID(r.Context())); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "rebuilt"})
}

// Reconcile runs bank reconciliation for a financial year.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req struct {
		FinancialYear string `json:"financial_year"`
		ExactDate     string `json:"exact_date,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var exact *time.Time
	if req.ExactDate != "" {
		d, err := time.Parse("2006-01-02", req.ExactDate)
		if err != nil {
			http.Error(w, "exact_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		exact = &d
	}

	if err := h.svc.Reconcile(userID, req.FinancialYear, exact); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "reconciled"})
}

// DeclareClosingBalance records the declared FY closing balance and
// reconciles against it.
func (h *Handler) DeclareClosingBalance(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var row models.YearlyClosingBankBalance
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	row.UserID = userID

	if err := h.svc.DeclareClosingBalance(&row); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "declared"})
}

// ListNAVs returns every price reference row.
func (h *Handler) ListNAVs(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.ListNAVs()
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// SaveNAV records or refreshes a price reference row.
func (h *Handler) SaveNAV(w http.ResponseWriter, r *http.Request) {
	var row models.NAV
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if row.FundName == "" || row.UniqueIdentifier == "" {
		http.Error(w, "fund_name and unique_identifier are required", http.StatusBadRequest)
		return
	}

	if err := h.svc.SaveNAV(&row); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, row)
}

// Watermarks returns the user's import watermarks.
func (h *Handler) Watermarks(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.Watermarks(middleware.UserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// UpdateWatermark sets one named import watermark.
func (h *Handler) UpdateWatermark(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req struct {
		Field string `json:"field"`
		Date  string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	cfg, err := h.svc.UpdateWatermark(userID, req.Field, date)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// Summary returns the dashboard card figures.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.Summarize(middleware.UserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sum)
}

// Insights returns the derived portfolio and expense highlights.
func (h *Handler) Insights(w http.ResponseWriter, r *http.Request) {
	ins, err := h.svc.Insights(middleware.UserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ins)
}
