// Package lending implements the peer-to-peer lending engine: the ledger
// store, risk gate, loan lifecycle manager, funding matcher and repayment
// processor. All state-mutating operations run inside a single database
// transaction and serialize per loan through the loan row lock.
package lending

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/p2p-lending-ledger/internal/domain/funding"
	"github.com/p2p-lending-ledger/internal/domain/ledger"
	"github.com/p2p-lending-ledger/internal/domain/loan"
	"github.com/p2p-lending-ledger/internal/domain/repayment"
)

// LedgerStore posts atomic ledger entry groups and answers balance queries.
// A group either commits fully, with balances updated, or not at all.
type LedgerStore interface {
	// PostEntries posts a group in its own transaction
	PostEntries(ctx context.Context, group *ledger.Group) error

	// PostEntriesTx posts a group inside a caller-owned transaction so loan
	// state changes and their ledger effects commit together
	PostEntriesTx(ctx context.Context, tx pgx.Tx, group *ledger.Group) error

	GetBalance(ctx context.Context, accountID uuid.UUID) (int64, error)

	// Reconcile recomputes an account's balance from its entries and
	// reports the stored balance, the derived sum, and whether they match
	Reconcile(ctx context.Context, accountID uuid.UUID) (stored, derived int64, ok bool, err error)
}

// RiskGate admits or denies a loan request before it enters the funding
// pipeline. Returns nil to admit or shared.ErrDenied. Deterministic; a
// denial is final for the request.
type RiskGate interface {
	Evaluate(ctx context.Context, borrowerAccountID uuid.UUID, requestedAmount int64) error
}

// LifecycleManager owns loan status transitions. It is the only component
// that writes loan.Status.
type LifecycleManager interface {
	CreateLoanRequest(ctx context.Context, borrowerAccountID uuid.UUID, principal int64, interestRateBps, tenureMonths int, purpose string) (*loan.Loan, error)
	Disburse(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error)
	Cancel(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error)
	AccrueInterest(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error)
	MarkDefaulted(ctx context.Context, loanID uuid.UUID, missedPayments int) (*loan.Loan, error)
	GetLoan(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error)
}

// FundingMatcher allocates lender commitments against a loan's requested
// principal, never allowing the sum of commitments to exceed it.
type FundingMatcher interface {
	Commit(ctx context.Context, loanID, lenderAccountID uuid.UUID, amount int64) (*funding.Commitment, error)
}

// RepaymentProcessor applies repayments to active loans, splitting
// interest-first and distributing lender credits pro-rata. Replayed calls
// apply twice; deduplication belongs to the caller.
type RepaymentProcessor interface {
	ApplyRepayment(ctx context.Context, loanID uuid.UUID, amount int64) (*repayment.Event, error)
}
