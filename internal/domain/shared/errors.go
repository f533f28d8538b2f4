package shared

import (
	"strconv"

	"github.com/google/uuid"
)

// ErrInsufficientFunds indicates a debit would drive an account balance negative
type ErrInsufficientFunds struct {
	AccountID uuid.UUID
}

func (e ErrInsufficientFunds) Error() string {
	return "insufficient funds on account: " + e.AccountID.String()
}

// Is implements the errors.Is interface for ErrInsufficientFunds
func (e ErrInsufficientFunds) Is(target error) bool {
	t, ok := target.(ErrInsufficientFunds)
	if !ok {
		return false
	}
	if t.AccountID == uuid.Nil {
		return true
	}
	return e.AccountID == t.AccountID
}

// ErrOverfund indicates a funding commitment exceeds the remaining unfunded principal
type ErrOverfund struct {
	LoanID    uuid.UUID
	Remaining int64
}

func (e ErrOverfund) Error() string {
	return "commitment exceeds remaining unfunded principal (" +
		strconv.FormatInt(e.Remaining, 10) + ") for loan: " + e.LoanID.String()
}

// Is implements the errors.Is interface for ErrOverfund
func (e ErrOverfund) Is(target error) bool {
	t, ok := target.(ErrOverfund)
	if !ok {
		return false
	}
	if t.LoanID == uuid.Nil {
		return true
	}
	return e.LoanID == t.LoanID
}

// ErrOverpayment indicates a repayment exceeds the amount currently due.
// The engine rejects rather than clamps; the caller decides how to retry.
type ErrOverpayment struct {
	LoanID    uuid.UUID
	AmountDue int64
}

func (e ErrOverpayment) Error() string {
	return "repayment exceeds amount due (" +
		strconv.FormatInt(e.AmountDue, 10) + ") for loan: " + e.LoanID.String()
}

// Is implements the errors.Is interface for ErrOverpayment
func (e ErrOverpayment) Is(target error) bool {
	t, ok := target.(ErrOverpayment)
	if !ok {
		return false
	}
	if t.LoanID == uuid.Nil {
		return true
	}
	return e.LoanID == t.LoanID
}

// ErrInvalidState indicates an operation attempted from a loan state that forbids it
type ErrInvalidState struct {
	LoanID    uuid.UUID
	Status    string
	Operation string
}

func (e ErrInvalidState) Error() string {
	return "operation " + e.Operation + " not allowed in state " + e.Status +
		" for loan: " + e.LoanID.String()
}

// Is implements the errors.Is interface for ErrInvalidState
func (e ErrInvalidState) Is(target error) bool {
	t, ok := target.(ErrInvalidState)
	if !ok {
		return false
	}
	if t.LoanID == uuid.Nil {
		return true
	}
	return e.LoanID == t.LoanID
}

// ErrDenied indicates a risk gate rejection. A denial is final for the
// request; a new request must be submitted to re-evaluate.
type ErrDenied struct {
	Reason DenialReason
}

func (e ErrDenied) Error() string {
	return "loan request denied: " + string(e.Reason)
}

// Is implements the errors.Is interface for ErrDenied
func (e ErrDenied) Is(target error) bool {
	t, ok := target.(ErrDenied)
	if !ok {
		return false
	}
	if t.Reason == "" {
		return true
	}
	return e.Reason == t.Reason
}

// DenialReason categorizes risk gate denials
type DenialReason string

const (
	DenialReasonCreditScoreTooLow  DenialReason = "CREDIT_SCORE_TOO_LOW"
	DenialReasonAmountBelowMinimum DenialReason = "AMOUNT_BELOW_MINIMUM"
	DenialReasonAmountAboveMaximum DenialReason = "AMOUNT_ABOVE_MAXIMUM"
	DenialReasonTooManyActiveLoans DenialReason = "TOO_MANY_ACTIVE_LOANS"
)
