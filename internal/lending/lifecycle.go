package lending

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/p2p-lending-ledger/internal/config"
	"github.com/p2p-lending-ledger/internal/domain/account"
	"github.com/p2p-lending-ledger/internal/domain/funding"
	"github.com/p2p-lending-ledger/internal/domain/ledger"
	"github.com/p2p-lending-ledger/internal/domain/loan"
	"github.com/p2p-lending-ledger/internal/domain/shared"
	"github.com/p2p-lending-ledger/internal/platform/persistence"
)

// LifecycleManagerImpl implements LifecycleManager. Every transition locks
// the loan row first, so a cancellation can never interleave with an
// in-flight commit and a disbursement can never race a repayment.
type LifecycleManagerImpl struct {
	txm         persistence.TxManager
	loanRepo    loan.Repository
	accountRepo account.Repository
	fundingRepo funding.Repository
	ledgerStore LedgerStore
	riskGate    RiskGate
	policy      config.LendingConfig
	logger      *slog.Logger
}

// NewLifecycleManager creates the loan lifecycle manager
func NewLifecycleManager(
	txm persistence.TxManager,
	loanRepo loan.Repository,
	accountRepo account.Repository,
	fundingRepo funding.Repository,
	ledgerStore LedgerStore,
	riskGate RiskGate,
	policy config.LendingConfig,
	logger *slog.Logger,
) LifecycleManager {
	return &LifecycleManagerImpl{
		txm:         txm,
		loanRepo:    loanRepo,
		accountRepo: accountRepo,
		fundingRepo: fundingRepo,
		ledgerStore: ledgerStore,
		riskGate:    riskGate,
		policy:      policy,
		logger:      logger,
	}
}

// CreateLoanRequest admits a borrower request through the risk gate. An
// admitted loan enters FUNDING with a fresh escrow account; a denied one is
// persisted as REJECTED for audit and the denial is returned to the caller.
func (m *LifecycleManagerImpl) CreateLoanRequest(ctx context.Context, borrowerAccountID uuid.UUID, principal int64, interestRateBps, tenureMonths int, purpose string) (*loan.Loan, error) {
	borrower, err := m.accountRepo.GetByID(ctx, borrowerAccountID)
	if err != nil {
		return nil, err
	}

	l, err := loan.NewLoan(borrowerAccountID, principal, interestRateBps, tenureMonths, purpose, borrower.CreditScore)
	if err != nil {
		return nil, err
	}

	gateErr := m.riskGate.Evaluate(ctx, borrowerAccountID, principal)
	if gateErr != nil && !errors.Is(gateErr, shared.ErrDenied{}) {
		return nil, gateErr
	}

	if gateErr != nil {
		if rejectErr := l.Reject(); rejectErr != nil {
			return nil, rejectErr
		}
		if createErr := m.loanRepo.Create(ctx, l); createErr != nil {
			return nil, createErr
		}
		m.logger.Info("Loan request rejected",
			"loan_id", l.ID.String(),
			"borrower_id", borrowerAccountID.String(),
			"reason", gateErr.Error(),
		)
		return l, gateErr
	}

	escrow := account.NewEscrowAccount(l.ID)
	if err := l.Admit(escrow.ID); err != nil {
		return nil, err
	}

	err = m.txm.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := m.accountRepo.WithTx(tx).Create(ctx, escrow); err != nil {
			return fmt.Errorf("failed to create escrow account for loan %s: %w", l.ID.String(), err)
		}
		return m.loanRepo.WithTx(tx).Create(ctx, l)
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("Loan request admitted to funding",
		"loan_id", l.ID.String(),
		"borrower_id", borrowerAccountID.String(),
		"principal", principal,
	)
	return l, nil
}

// Disburse moves a fully funded loan to ACTIVE, transferring the principal
// from escrow to the borrower in the same transaction. Irreversible.
func (m *LifecycleManagerImpl) Disburse(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error) {
	var disbursed *loan.Loan
	err := m.txm.ExecuteTx(ctx, func(tx pgx.Tx) error {
		locked, err := m.loanRepo.WithTx(tx).LockForUpdate(ctx, loanID)
		if err != nil {
			return err
		}

		if err := locked.Activate(time.Now()); err != nil {
			return err
		}

		group, err := ledger.NewGroup("",
			ledger.Entry{AccountID: locked.EscrowAccountID, Amount: -locked.Principal, Kind: ledger.KindLoanDisbursement, LoanID: &locked.ID},
			ledger.Entry{AccountID: locked.BorrowerAccountID, Amount: locked.Principal, Kind: ledger.KindLoanDisbursement, LoanID: &locked.ID},
		)
		if err != nil {
			return err
		}
		if err := m.ledgerStore.PostEntriesTx(ctx, tx, group); err != nil {
			return err
		}

		if err := m.loanRepo.WithTx(tx).Update(ctx, locked); err != nil {
			return err
		}
		disbursed = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("Loan disbursed",
		"loan_id", disbursed.ID.String(),
		"borrower_id", disbursed.BorrowerAccountID.String(),
		"principal", disbursed.Principal,
		"emi_amount", disbursed.EMIAmount,
	)
	return disbursed, nil
}

// Cancel withdraws a FUNDING loan and refunds every commitment from escrow.
// Taking the loan row lock first means no commit is in flight while the
// refund entries post.
func (m *LifecycleManagerImpl) Cancel(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error) {
	var cancelled *loan.Loan
	err := m.txm.ExecuteTx(ctx, func(tx pgx.Tx) error {
		locked, err := m.loanRepo.WithTx(tx).LockForUpdate(ctx, loanID)
		if err != nil {
			return err
		}

		if err := locked.Cancel(); err != nil {
			return err
		}

		commitments, err := m.fundingRepo.WithTx(tx).GetByLoanID(ctx, loanID)
		if err != nil {
			return err
		}
		if len(commitments) > 0 {
			entries := make([]ledger.Entry, 0, len(commitments)*2)
			for _, c := range commitments {
				entries = append(entries,
					ledger.Entry{AccountID: locked.EscrowAccountID, Amount: -c.Amount, Kind: ledger.KindFundingReturn, LoanID: &locked.ID},
					ledger.Entry{AccountID: c.LenderAccountID, Amount: c.Amount, Kind: ledger.KindFundingReturn, LoanID: &locked.ID},
				)
			}
			group, err := ledger.NewGroup("", entries...)
			if err != nil {
				return err
			}
			if err := m.ledgerStore.PostEntriesTx(ctx, tx, group); err != nil {
				return err
			}
		}

		if err := m.loanRepo.WithTx(tx).Update(ctx, locked); err != nil {
			return err
		}
		cancelled = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("Loan cancelled, commitments refunded",
		"loan_id", cancelled.ID.String(),
		"refunded_amount", cancelled.FundedAmount,
	)
	return cancelled, nil
}

// AccrueInterest advances one interest period on an active loan. Driven by
// the external scheduler; the engine runs no timers of its own.
func (m *LifecycleManagerImpl) AccrueInterest(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error) {
	var accrued *loan.Loan
	err := m.txm.ExecuteTx(ctx, func(tx pgx.Tx) error {
		locked, err := m.loanRepo.WithTx(tx).LockForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		if err := locked.AccruePeriod(); err != nil {
			return err
		}
		if err := m.loanRepo.WithTx(tx).Update(ctx, locked); err != nil {
			return err
		}
		accrued = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accrued, nil
}

// MarkDefaulted applies an externally-supplied delinquency signal. The loan
// defaults only when the observed missed payments reach the configured
// policy threshold; below it the signal is recorded and ignored.
func (m *LifecycleManagerImpl) MarkDefaulted(ctx context.Context, loanID uuid.UUID, missedPayments int) (*loan.Loan, error) {
	if missedPayments < m.policy.DefaultMissedPayments {
		m.logger.Info("Delinquency signal below policy threshold, loan unchanged",
			"loan_id", loanID.String(),
			"missed_payments", missedPayments,
			"threshold", m.policy.DefaultMissedPayments,
		)
		return m.loanRepo.GetByID(ctx, loanID)
	}

	var defaulted *loan.Loan
	err := m.txm.ExecuteTx(ctx, func(tx pgx.Tx) error {
		locked, err := m.loanRepo.WithTx(tx).LockForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		if err := locked.MarkDefaulted(missedPayments); err != nil {
			return err
		}
		if err := m.loanRepo.WithTx(tx).Update(ctx, locked); err != nil {
			return err
		}
		defaulted = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Warn("Loan defaulted",
		"loan_id", defaulted.ID.String(),
		"missed_payments", missedPayments,
		"outstanding_principal", defaulted.OutstandingPrincipal,
	)
	return defaulted, nil
}

// GetLoan returns a snapshot of the loan
func (m *LifecycleManagerImpl) GetLoan(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error) {
	return m.loanRepo.GetByID(ctx, loanID)
}
