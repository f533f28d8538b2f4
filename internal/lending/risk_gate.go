package lending

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/p2p-lending-ledger/internal/config"
	"github.com/p2p-lending-ledger/internal/domain/account"
	"github.com/p2p-lending-ledger/internal/domain/loan"
	"github.com/p2p-lending-ledger/internal/domain/shared"
)

// RiskGateImpl implements RiskGate from configured thresholds. It reads
// only committed state (credit score, open-loan exposure) and never
// retries: the same inputs always produce the same verdict.
type RiskGateImpl struct {
	accountRepo account.Repository
	loanRepo    loan.Repository
	policy      config.LendingConfig
	logger      *slog.Logger
}

// NewRiskGate creates a risk gate with the given policy thresholds
func NewRiskGate(accountRepo account.Repository, loanRepo loan.Repository, policy config.LendingConfig, logger *slog.Logger) RiskGate {
	return &RiskGateImpl{
		accountRepo: accountRepo,
		loanRepo:    loanRepo,
		policy:      policy,
		logger:      logger,
	}
}

// Evaluate admits or denies a loan request. A nil return admits.
func (g *RiskGateImpl) Evaluate(ctx context.Context, borrowerAccountID uuid.UUID, requestedAmount int64) error {
	if requestedAmount < g.policy.MinLoanAmount {
		return shared.ErrDenied{Reason: shared.DenialReasonAmountBelowMinimum}
	}
	if requestedAmount > g.policy.MaxLoanAmount {
		return shared.ErrDenied{Reason: shared.DenialReasonAmountAboveMaximum}
	}

	borrower, err := g.accountRepo.GetByID(ctx, borrowerAccountID)
	if err != nil {
		return fmt.Errorf("failed to load borrower %s for evaluation: %w", borrowerAccountID.String(), err)
	}
	if borrower.CreditScore < g.policy.MinCreditScore {
		g.logger.Info("Loan request denied on credit score",
			"borrower_id", borrowerAccountID.String(),
			"credit_score", borrower.CreditScore,
			"min_credit_score", g.policy.MinCreditScore,
		)
		return shared.ErrDenied{Reason: shared.DenialReasonCreditScoreTooLow}
	}

	open, err := g.loanRepo.CountOpenByBorrower(ctx, borrowerAccountID)
	if err != nil {
		return fmt.Errorf("failed to count open loans for borrower %s: %w", borrowerAccountID.String(), err)
	}
	if open >= g.policy.MaxOpenLoans {
		g.logger.Info("Loan request denied on exposure",
			"borrower_id", borrowerAccountID.String(),
			"open_loans", open,
			"max_open_loans", g.policy.MaxOpenLoans,
		)
		return shared.ErrDenied{Reason: shared.DenialReasonTooManyActiveLoans}
	}

	return nil
}
