package lending

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/p2p-lending-ledger/internal/domain/funding"
	"github.com/p2p-lending-ledger/internal/domain/ledger"
	"github.com/p2p-lending-ledger/internal/domain/loan"
	"github.com/p2p-lending-ledger/internal/domain/repayment"
	"github.com/p2p-lending-ledger/internal/platform/persistence"
)

// RepaymentProcessorImpl implements RepaymentProcessor. A repayment is one
// transaction: loan row lock, interest-first split, borrower debit, exact
// pro-rata lender credits, loan update, and closure when the outstanding
// principal reaches zero.
type RepaymentProcessorImpl struct {
	txm           persistence.TxManager
	loanRepo      loan.Repository
	fundingRepo   funding.Repository
	repaymentRepo repayment.Repository
	ledgerStore   LedgerStore
	logger        *slog.Logger
}

// NewRepaymentProcessor creates the repayment processor
func NewRepaymentProcessor(
	txm persistence.TxManager,
	loanRepo loan.Repository,
	fundingRepo funding.Repository,
	repaymentRepo repayment.Repository,
	ledgerStore LedgerStore,
	logger *slog.Logger,
) RepaymentProcessor {
	return &RepaymentProcessorImpl{
		txm:           txm,
		loanRepo:      loanRepo,
		fundingRepo:   fundingRepo,
		repaymentRepo: repaymentRepo,
		ledgerStore:   ledgerStore,
		logger:        logger,
	}
}

// ApplyRepayment applies amount to an active loan. Fails with
// ErrInvalidState outside ACTIVE and ErrOverpayment past the amount due
// (the engine rejects rather than clamps). The borrower debit and the
// per-lender credits always sum to the same value: allocation remainders
// go to the largest-share lender, so no minor unit leaks.
func (p *RepaymentProcessorImpl) ApplyRepayment(ctx context.Context, loanID uuid.UUID, amount int64) (*repayment.Event, error) {
	if amount <= 0 {
		return nil, repayment.ErrInvalidAmount
	}

	var event *repayment.Event
	err := p.txm.ExecuteTx(ctx, func(tx pgx.Tx) error {
		locked, err := p.loanRepo.WithTx(tx).LockForUpdate(ctx, loanID)
		if err != nil {
			return err
		}

		interest, principal, err := locked.ApplyRepayment(amount)
		if err != nil {
			return err
		}

		commitments, err := p.fundingRepo.WithTx(tx).GetByLoanID(ctx, loanID)
		if err != nil {
			return err
		}
		principalShares, err := repayment.Allocate(principal, commitments)
		if err != nil {
			return err
		}
		interestShares, err := repayment.Allocate(interest, commitments)
		if err != nil {
			return err
		}

		entries := make([]ledger.Entry, 0, 1+len(commitments)*2)
		entries = append(entries, ledger.Entry{
			AccountID: locked.BorrowerAccountID,
			Amount:    -amount,
			Kind:      ledger.KindLoanRepayment,
			LoanID:    &locked.ID,
		})
		for _, share := range principalShares {
			if share.Amount == 0 {
				continue
			}
			entries = append(entries, ledger.Entry{
				AccountID: share.LenderAccountID,
				Amount:    share.Amount,
				Kind:      ledger.KindFundingReturn,
				LoanID:    &locked.ID,
			})
		}
		for _, share := range interestShares {
			if share.Amount == 0 {
				continue
			}
			entries = append(entries, ledger.Entry{
				AccountID: share.LenderAccountID,
				Amount:    share.Amount,
				Kind:      ledger.KindFundingReturn,
				LoanID:    &locked.ID,
			})
		}

		group, err := ledger.NewGroup("", entries...)
		if err != nil {
			return err
		}
		if err := p.ledgerStore.PostEntriesTx(ctx, tx, group); err != nil {
			return err
		}

		event = repayment.NewEvent(loanID, interest, principal)
		if err := p.repaymentRepo.WithTx(tx).Create(ctx, event); err != nil {
			return err
		}
		return p.loanRepo.WithTx(tx).Update(ctx, locked)
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info("Repayment applied",
		"loan_id", loanID.String(),
		"amount", amount,
		"interest_component", event.InterestComponent,
		"principal_component", event.PrincipalComponent,
	)
	return event, nil
}
