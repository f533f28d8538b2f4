package lending

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/p2p-lending-ledger/internal/domain/funding"
	"github.com/p2p-lending-ledger/internal/domain/ledger"
	"github.com/p2p-lending-ledger/internal/domain/loan"
	"github.com/p2p-lending-ledger/internal/domain/shared"
	"github.com/p2p-lending-ledger/internal/platform/persistence"
)

// FundingMatcherImpl implements FundingMatcher. The loan row lock taken at
// the start of each commit is the per-loan mutual exclusion boundary: two
// concurrent commits against the same loan evaluate one at a time, so
// their sum can never exceed the principal. Reaching the principal exactly
// triggers the funded transition inside the same transaction, leaving no
// window where a fully funded loan still accepts commitments.
type FundingMatcherImpl struct {
	txm         persistence.TxManager
	loanRepo    loan.Repository
	fundingRepo funding.Repository
	ledgerStore LedgerStore
	logger      *slog.Logger
}

// NewFundingMatcher creates the funding matcher
func NewFundingMatcher(
	txm persistence.TxManager,
	loanRepo loan.Repository,
	fundingRepo funding.Repository,
	ledgerStore LedgerStore,
	logger *slog.Logger,
) FundingMatcher {
	return &FundingMatcherImpl{
		txm:         txm,
		loanRepo:    loanRepo,
		fundingRepo: fundingRepo,
		ledgerStore: ledgerStore,
		logger:      logger,
	}
}

// Commit reserves amount from the lender's wallet into the loan's escrow
// and records the commitment, all in one transaction. Fails with
// ErrInvalidState outside FUNDING, ErrOverfund past the remaining
// principal, and ErrInsufficientFunds when the lender's balance is short.
func (f *FundingMatcherImpl) Commit(ctx context.Context, loanID, lenderAccountID uuid.UUID, amount int64) (*funding.Commitment, error) {
	commitment, err := funding.NewCommitment(loanID, lenderAccountID, amount)
	if err != nil {
		return nil, err
	}

	err = f.txm.ExecuteTx(ctx, func(tx pgx.Tx) error {
		locked, err := f.loanRepo.WithTx(tx).LockForUpdate(ctx, loanID)
		if err != nil {
			return err
		}

		if locked.Status != loan.StatusFunding {
			return shared.ErrInvalidState{LoanID: loanID, Status: string(locked.Status), Operation: "commit_funding"}
		}
		if amount > locked.Remaining() {
			return shared.ErrOverfund{LoanID: loanID, Remaining: locked.Remaining()}
		}

		group, err := ledger.NewGroup("",
			ledger.Entry{AccountID: lenderAccountID, Amount: -amount, Kind: ledger.KindFundingCommitment, LoanID: &locked.ID},
			ledger.Entry{AccountID: locked.EscrowAccountID, Amount: amount, Kind: ledger.KindFundingCommitment, LoanID: &locked.ID},
		)
		if err != nil {
			return err
		}
		if err := f.ledgerStore.PostEntriesTx(ctx, tx, group); err != nil {
			return err
		}

		if err := f.fundingRepo.WithTx(tx).Create(ctx, commitment); err != nil {
			return err
		}

		// Reaching the full principal flips the loan to FUNDED here, under
		// the same lock that admitted this commitment.
		if err := locked.AddFunding(amount); err != nil {
			return err
		}
		return f.loanRepo.WithTx(tx).Update(ctx, locked)
	})
	if err != nil {
		return nil, err
	}

	f.logger.Info("Funding commitment accepted",
		"loan_id", loanID.String(),
		"lender_id", lenderAccountID.String(),
		"amount", amount,
	)
	return commitment, nil
}
