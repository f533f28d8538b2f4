package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/p2p-lending-ledger/internal/domain/shared"
	"github.com/panjf2000/ants/v2"
)

// WorkerPoolEventService runs payment and delinquency event processing on a
// shared ants pool. It implements both PaymentService and DelinquencyService
// by delegating to the base services from pooled workers.
type WorkerPoolEventService struct {
	payments    PaymentService
	delinquency DelinquencyService
	pool        *ants.Pool
	logger      *slog.Logger
	// Use a mutex to protect access to the results map
	mu      sync.Mutex
	results map[string]chan error
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolEventService(
	payments PaymentService,
	delinquency DelinquencyService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolEventService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolEventService{
		payments:    payments,
		delinquency: delinquency,
		pool:        pool,
		logger:      logger,
		results:     make(map[string]chan error),
	}, nil
}

// ApplyPaymentEvent submits a payment event to the worker pool and waits
// for the result so the consumer can decide whether to commit the offset.
func (s *WorkerPoolEventService) ApplyPaymentEvent(ctx context.Context, event *shared.PaymentEvent) error {
	eventCopy := *event
	return s.submit(ctx, event.EventID.String(), func(taskCtx context.Context) error {
		return s.payments.ApplyPaymentEvent(taskCtx, &eventCopy)
	})
}

// ApplyDelinquencySignal submits a delinquency signal to the worker pool
func (s *WorkerPoolEventService) ApplyDelinquencySignal(ctx context.Context, signal *shared.DelinquencySignal) error {
	signalCopy := *signal
	return s.submit(ctx, signal.SignalID.String(), func(taskCtx context.Context) error {
		return s.delinquency.ApplyDelinquencySignal(taskCtx, &signalCopy)
	})
}

func (s *WorkerPoolEventService) submit(ctx context.Context, taskID string, task func(context.Context) error) error {
	s.logger.Debug("Submitting event to worker pool", "task_id", taskID)

	resultChan := make(chan error, 1)

	s.mu.Lock()
	s.results[taskID] = resultChan
	s.mu.Unlock()

	err := s.pool.Submit(func() {
		resultChan <- task(ctx)

		s.mu.Lock()
		delete(s.results, taskID)
		close(resultChan)
		s.mu.Unlock()
	})

	if err != nil {
		s.mu.Lock()
		delete(s.results, taskID)
		close(resultChan)
		s.mu.Unlock()

		s.logger.Error("Failed to submit event to worker pool",
			"task_id", taskID,
			"error", err,
		)
		return err
	}

	// Wait for the result from the worker
	return <-resultChan
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolEventService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolEventService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolEventService) Capacity() int {
	return s.pool.Cap()
}
