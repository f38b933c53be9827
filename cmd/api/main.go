package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/paisaledger/fintrack/internal/config"
	"github.com/paisaledger/fintrack/internal/handler"
	"github.com/paisaledger/fintrack/internal/middleware"
	"github.com/paisaledger/fintrack/internal/repository"
	"github.com/paisaledger/fintrack/internal/service"
	"github.com/paisaledger/fintrack/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize storage
	var store repository.Store
	if cfg.Storage == "memory" {
		store = repository.NewMemory()
		logger.Warn("Using in-memory storage, data will not survive a restart")
	} else {
		db, err := sql.Open("postgres", cfg.DBConn)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("Failed to ping database: %v", err)
		}
		store = repository.NewRepository(db)
	}

	// Initialize layers
	svc := service.NewService(store, logger, service.DefaultClassification(cfg.BankName))
	svc.SetJWTSecret(cfg.JWTSecret)
	if cfg.SMTPConfigured() {
		svc.SetMailer(email.NewSender(cfg, logger))
	}
	h := handler.NewHandler(svc)

	// Nightly holdings revaluation: fixed-deposit accrual moves with the
	// calendar even when no transaction is written.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.RebuildSchedule, func() {
		userIDs, err := store.ListUserIDs()
		if err != nil {
			logger.Errorf("Scheduled revaluation: failed to list users: %v", err)
			return
		}
		for _, id := range userIDs {
			if err := svc.RebuildHoldings(id); err != nil {
				logger.Errorf("Scheduled revaluation failed for user %s: %v", id, err)
			}
		}
	}); err != nil {
		logger.Fatalf("Invalid rebuild schedule %q: %v", cfg.RebuildSchedule, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/transactions/{kind}", h.RecordTransaction).Methods("POST")
	authRouter.HandleFunc("/transactions-import", h.ImportTransactions).Methods("POST")
	authRouter.HandleFunc("/distributions/monthly", h.MonthlyDistributions).Methods("GET")
	authRouter.HandleFunc("/distributions/yearly", h.YearlyDistributions).Methods("GET")
	authRouter.HandleFunc("/holdings", h.Holdings).Methods("GET")
	authRouter.HandleFunc("/holdings/rebuild", h.RebuildHoldings).Methods("POST")
	authRouter.HandleFunc("/reconcile", h.Reconcile).Methods("POST")
	authRouter.HandleFunc("/closing-balances", h.DeclareClosingBalance).Methods("POST")
	authRouter.HandleFunc("/navs", h.ListNAVs).Methods("GET")
	authRouter.HandleFunc("/navs", h.SaveNAV).Methods("POST")
	authRouter.HandleFunc("/config/watermarks", h.Watermarks).Methods("GET")
	authRouter.HandleFunc("/config/watermarks", h.UpdateWatermark).Methods("PUT")
	authRouter.HandleFunc("/summary", h.Summary).Methods("GET")
	authRouter.HandleFunc("/insights", h.Insights).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
