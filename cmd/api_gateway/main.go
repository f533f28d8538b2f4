package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/p2p-lending-ledger/internal/api_gateway"
	"github.com/p2p-lending-ledger/internal/api_gateway/service"
	"github.com/p2p-lending-ledger/internal/config"
	"github.com/p2p-lending-ledger/internal/data/mongo"
	"github.com/p2p-lending-ledger/internal/data/postgres"
	"github.com/p2p-lending-ledger/internal/lending"
	"github.com/p2p-lending-ledger/internal/logger"
	"github.com/p2p-lending-ledger/internal/platform/messaging/producers"
	"github.com/p2p-lending-ledger/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer for the wallet endpoints
	paymentProducer, err := producers.NewPaymentEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize payment event producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	accountRepo := postgres.NewAccountRepository(log, postgresDB)
	loanRepo := postgres.NewLoanRepository(log, postgresDB)
	fundingRepo := postgres.NewFundingRepository(log, postgresDB)
	repaymentRepo := postgres.NewRepaymentRepository(log, postgresDB)
	ledgerRepo := postgres.NewLedgerRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	historyRepo := mongo.NewHistoryRepository(log, mongoDB.Database())

	// Initialize the lending engine
	ledgerStore := lending.NewLedgerStore(postgresDB, accountRepo, ledgerRepo, outboxRepo, log)
	riskGate := lending.NewRiskGate(accountRepo, loanRepo, cfg.Lending, log)
	lifecycle := lending.NewLifecycleManager(postgresDB, loanRepo, accountRepo, fundingRepo, ledgerStore, riskGate, cfg.Lending, log)
	matcher := lending.NewFundingMatcher(postgresDB, loanRepo, fundingRepo, ledgerStore, log)
	repayments := lending.NewRepaymentProcessor(postgresDB, loanRepo, fundingRepo, repaymentRepo, ledgerStore, log)

	// Initialize services
	accountService := service.NewAccountService(accountRepo, ledgerStore, historyRepo, paymentProducer)
	loanService := service.NewLoanService(lifecycle, matcher, repayments, loanRepo, fundingRepo)

	// Initialize REST server
	server := api_gateway.NewServer(log, cfg, accountService, loanService)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Shutdown HTTP server
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if err = paymentProducer.Close(); err != nil {
		log.Error("Error closing payment event producer", "error", err)
	}

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
