package funding

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidAmount = errors.New("commitment amount must be positive")
)

// Commitment is a lender's pledge of capital toward a specific loan's
// principal. References loan and account by identifier only.
type Commitment struct {
	ID              uuid.UUID `json:"id"`
	LoanID          uuid.UUID `json:"loan_id"`
	LenderAccountID uuid.UUID `json:"lender_account_id"`
	Amount          int64     `json:"amount"` // Minor currency units
	CreatedAt       time.Time `json:"created_at"`
}

// NewCommitment creates a commitment record
func NewCommitment(loanID, lenderAccountID uuid.UUID, amount int64) (*Commitment, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return &Commitment{
		ID:              uuid.New(),
		LoanID:          loanID,
		LenderAccountID: lenderAccountID,
		Amount:          amount,
		CreatedAt:       time.Now(),
	}, nil
}
