package loan

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines loan persistence operations
type Repository interface {
	Create(ctx context.Context, loan *Loan) error
	GetByID(ctx context.Context, id uuid.UUID) (*Loan, error)
	Update(ctx context.Context, loan *Loan) error

	// LockForUpdate acquires the loan row lock. This lock is the per-loan
	// mutual exclusion boundary for commits, repayments and transitions.
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Loan, error)

	GetByBorrower(ctx context.Context, borrowerAccountID uuid.UUID) ([]*Loan, error)
	CountOpenByBorrower(ctx context.Context, borrowerAccountID uuid.UUID) (int, error)

	// ListFunding returns loans open for investment, optionally filtered by
	// a credit score range on the score captured at request time and by
	// principal bounds (zero means unbounded).
	ListFunding(ctx context.Context, minAmount, maxAmount int64, minScore, maxScore int, limit, offset int) ([]*Loan, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrLoanNotFound indicates missing loan
type ErrLoanNotFound struct {
	LoanID uuid.UUID
}

func (e ErrLoanNotFound) Error() string {
	return "loan not found: " + e.LoanID.String()
}

// Is implements the errors.Is interface for ErrLoanNotFound
func (e ErrLoanNotFound) Is(target error) bool {
	t, ok := target.(ErrLoanNotFound)
	if !ok {
		return false
	}
	if t.LoanID == uuid.Nil {
		return true
	}
	return e.LoanID == t.LoanID
}

// ErrConcurrentModification indicates optimistic lock failure
type ErrConcurrentModification struct {
	LoanID uuid.UUID
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for loan: " + e.LoanID.String()
}
