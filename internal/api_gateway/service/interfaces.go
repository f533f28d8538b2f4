package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/p2p-lending-ledger/internal/domain/account"
	"github.com/p2p-lending-ledger/internal/domain/funding"
	"github.com/p2p-lending-ledger/internal/domain/ledger"
	"github.com/p2p-lending-ledger/internal/domain/loan"
	"github.com/p2p-lending-ledger/internal/domain/repayment"
	"github.com/p2p-lending-ledger/internal/domain/shared"
)

// AccountService defines the interface for wallet account operations
type AccountService interface {
	// CreateAccount creates a new wallet account with the given credit score
	CreateAccount(ctx context.Context, ownerName string, creditScore int) (*account.Account, error)

	// GetAccountByID retrieves an account by its ID
	// Returns ErrAccountNotFound if the account doesn't exist
	GetAccountByID(ctx context.Context, id uuid.UUID) (*account.Account, error)

	// GetBalance returns the account's current balance in minor units
	GetBalance(ctx context.Context, id uuid.UUID) (int64, error)

	// GetTransactions retrieves a paginated transaction history slice for an
	// account from the archive, plus the total entry count
	GetTransactions(ctx context.Context, accountID uuid.UUID, page, perPage int) ([]*ledger.Entry, int64, error)

	// RequestPayment publishes a deposit or withdrawal event for asynchronous
	// application to the ledger. Returns the published event.
	RequestPayment(ctx context.Context, accountID uuid.UUID, eventType shared.PaymentEventType, amount int64, correlationID string) (*shared.PaymentEvent, error)

	// Transfer moves funds between two wallet accounts synchronously as one
	// atomic debit/credit pair. Returns the committed entry group.
	Transfer(ctx context.Context, senderID, receiverID uuid.UUID, amount int64, correlationID string) (*ledger.Group, error)
}

// LoanService defines the interface for loan operations. It fronts the
// lending engine for the HTTP layer.
type LoanService interface {
	CreateLoan(ctx context.Context, borrowerAccountID uuid.UUID, principal int64, interestRateBps, tenureMonths int, purpose string) (*loan.Loan, error)
	GetLoan(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error)
	Invest(ctx context.Context, loanID, lenderAccountID uuid.UUID, amount int64) (*funding.Commitment, error)
	Repay(ctx context.Context, loanID uuid.UUID, amount int64) (*repayment.Event, error)
	Disburse(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error)
	Cancel(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error)
	Accrue(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error)
	MarkDefaulted(ctx context.Context, loanID uuid.UUID, missedPayments int) (*loan.Loan, error)

	// Opportunities lists loans open for investment, optionally bounded by
	// principal (zero bounds mean unbounded) and filtered to one risk band
	// (empty means all bands)
	Opportunities(ctx context.Context, riskLevel loan.RiskLevel, minAmount, maxAmount int64, page, perPage int) ([]*loan.Loan, error)
	LoansByBorrower(ctx context.Context, borrowerAccountID uuid.UUID) ([]*loan.Loan, error)
	InvestmentsByLender(ctx context.Context, lenderAccountID uuid.UUID) ([]*funding.Commitment, error)
}
