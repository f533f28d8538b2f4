package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/p2p-lending-ledger/internal/domain/shared"
	"github.com/p2p-lending-ledger/internal/lending"
)

// SchedulerDelinquencyService implements DelinquencyService against the
// loan lifecycle manager. The scheduler owns the repayment calendar; the
// engine only accrues the signalled period and compares missed payments
// against the configured default threshold.
type SchedulerDelinquencyService struct {
	lifecycle lending.LifecycleManager
	logger    *slog.Logger
}

func NewDelinquencyService(logger *slog.Logger, lifecycle lending.LifecycleManager) DelinquencyService {
	return &SchedulerDelinquencyService{
		lifecycle: lifecycle,
		logger:    logger,
	}
}

// ApplyDelinquencySignal advances the interest period when requested and
// lets the lifecycle manager decide whether the loan defaults
func (s *SchedulerDelinquencyService) ApplyDelinquencySignal(ctx context.Context, signal *shared.DelinquencySignal) error {
	logger := s.logger
	if signal.CorrelationID != "" {
		logger = s.logger.With("correlation_id", signal.CorrelationID)
	}

	if signal.AccruePeriod {
		if _, err := s.lifecycle.AccrueInterest(ctx, signal.LoanID); err != nil {
			return fmt.Errorf("failed to accrue interest for loan %s: %w", signal.LoanID, err)
		}
		logger.Info("Accrued interest period",
			"loan_id", signal.LoanID.String(),
			"signal_id", signal.SignalID.String(),
		)
	}

	l, err := s.lifecycle.MarkDefaulted(ctx, signal.LoanID, signal.MissedPayments)
	if err != nil {
		return fmt.Errorf("failed to evaluate default for loan %s: %w", signal.LoanID, err)
	}

	logger.Info("Applied delinquency signal",
		"loan_id", signal.LoanID.String(),
		"signal_id", signal.SignalID.String(),
		"missed_payments", signal.MissedPayments,
		"status", string(l.Status),
	)
	return nil
}
