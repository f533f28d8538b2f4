package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/p2p-lending-ledger/internal/config"
	"github.com/p2p-lending-ledger/internal/data/mongo"
	"github.com/p2p-lending-ledger/internal/data/postgres"
	"github.com/p2p-lending-ledger/internal/lending"
	"github.com/p2p-lending-ledger/internal/loan_processor/consumer"
	"github.com/p2p-lending-ledger/internal/loan_processor/outbox_poller"
	"github.com/p2p-lending-ledger/internal/loan_processor/service"
	"github.com/p2p-lending-ledger/internal/logger"
	"github.com/p2p-lending-ledger/internal/platform/messaging/consumers"
	"github.com/p2p-lending-ledger/internal/platform/messaging/producers"
	"github.com/p2p-lending-ledger/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("loan_processor")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Loan Processor",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

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

	// Initialize repositories
	accountRepo := postgres.NewAccountRepository(log, postgresDB)
	loanRepo := postgres.NewLoanRepository(log, postgresDB)
	fundingRepo := postgres.NewFundingRepository(log, postgresDB)
	ledgerRepo := postgres.NewLedgerRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	historyRepo := mongo.NewHistoryRepository(log, mongoDB.Database())

	// Initialize the engine components the processor drives
	ledgerStore := lending.NewLedgerStore(postgresDB, accountRepo, ledgerRepo, outboxRepo, log)
	riskGate := lending.NewRiskGate(accountRepo, loanRepo, cfg.Lending, log)
	lifecycle := lending.NewLifecycleManager(postgresDB, loanRepo, accountRepo, fundingRepo, ledgerStore, riskGate, cfg.Lending, log)

	// Initialize Kafka consumers, one per event stream
	paymentConsumer := consumers.NewKafkaConsumer(log, &cfg.Kafka, cfg.Kafka.PaymentTopic)
	delinquencyConsumer := consumers.NewKafkaConsumer(log, &cfg.Kafka, cfg.Kafka.DelinquencyTopic)

	// Initialize Kafka DLQ producer
	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	// dlqProducer might be nil if DLQTopic is not configured. Handlers are nil-safe.

	// Initialize event services behind the shared worker pool
	paymentService := service.NewPaymentService(log, ledgerStore)
	delinquencyService := service.NewDelinquencyService(log, lifecycle)
	pooledService, err := service.NewWorkerPoolEventService(
		paymentService,
		delinquencyService,
		service.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		log,
	)
	if err != nil {
		log.Error("Failed to initialize worker pool", "error", err)
		os.Exit(1)
	}

	// Initialize event handlers
	paymentHandler := consumer.NewPaymentEventHandler(log, pooledService, dlqProducer)
	delinquencyHandler := consumer.NewDelinquencyEventHandler(log, pooledService, dlqProducer)

	// Initialize outbox poller
	archiver := outbox_poller.NewHistoryArchiver(outboxRepo, historyRepo, log)
	poller := outbox_poller.NewPoller(&cfg.Outbox, outboxRepo, archiver, log)

	// Create error channel for service errors
	errChan := make(chan error, 2)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Start Kafka consumers
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting payment event consumer",
			"topic", cfg.Kafka.PaymentTopic,
			"group", cfg.Kafka.ConsumerGroup,
		)
		if err := paymentConsumer.Subscribe(appCtx, paymentHandler.HandleMessage); err != nil {
			errChan <- fmt.Errorf("payment consumer error: %w", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting delinquency signal consumer",
			"topic", cfg.Kafka.DelinquencyTopic,
			"group", cfg.Kafka.ConsumerGroup,
		)
		if err := delinquencyConsumer.Subscribe(appCtx, delinquencyHandler.HandleMessage); err != nil {
			errChan <- fmt.Errorf("delinquency consumer error: %w", err)
		}
	}()

	// Start outbox poller in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Outbox Poller",
			"interval", cfg.Outbox.PollingInterval.String(),
			"batch_size", cfg.Outbox.BatchSize,
		)
		poller.Start(appCtx)
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Shutdown the worker pool
	log.Info("Shutting down worker pool", "running_workers", pooledService.Running())
	pooledService.Shutdown()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Wait for all goroutines to finish
	log.Info("Waiting for services to stop...")
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("All services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	// Close DLQ Kafka producer
	if dlqProducer != nil { // dlqProducer can be nil if DLQTopic was not configured
		if err = dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
		}
	}

	// Close Kafka consumers
	if err = paymentConsumer.Close(); err != nil {
		log.Error("Error closing payment consumer", "error", err)
	}
	if err = delinquencyConsumer.Close(); err != nil {
		log.Error("Error closing delinquency consumer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Close MongoDB connection
	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serviceErr != nil {
		log.Error("Loan Processor shutdown with errors", "error", serviceErr)
	}
	if err != nil {
		log.Error("Loan Processor shutdown completed with errors")
	} else {
		log.Info("Loan Processor shutdown completed successfully")
	}
}
