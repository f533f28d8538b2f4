package repayment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidAmount = errors.New("repayment amount must be positive")
)

// Event records one applied repayment and its interest/principal split.
// InterestComponent + PrincipalComponent always equals Amount.
type Event struct {
	ID                 uuid.UUID `json:"id"`
	LoanID             uuid.UUID `json:"loan_id"`
	Amount             int64     `json:"amount"` // Minor currency units
	PrincipalComponent int64     `json:"principal_component"`
	InterestComponent  int64     `json:"interest_component"`
	AppliedAt          time.Time `json:"applied_at"`
}

// NewEvent creates a repayment event from an applied split
func NewEvent(loanID uuid.UUID, interestComponent, principalComponent int64) *Event {
	return &Event{
		ID:                 uuid.New(),
		LoanID:             loanID,
		Amount:             interestComponent + principalComponent,
		PrincipalComponent: principalComponent,
		InterestComponent:  interestComponent,
		AppliedAt:          time.Now(),
	}
}
