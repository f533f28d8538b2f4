package loan

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/p2p-lending-ledger/internal/domain/shared"
)

// Common errors
var (
	ErrInvalidPrincipal = errors.New("principal must be positive")
	ErrInvalidRate      = errors.New("interest rate must be positive")
	ErrInvalidTenure    = errors.New("tenure must be at least one month")
	ErrEmptyPurpose     = errors.New("purpose cannot be empty")
)

// Status defines loan lifecycle states
type Status string

const (
	StatusRequested Status = "REQUESTED"
	StatusRejected  Status = "REJECTED"
	StatusFunding   Status = "FUNDING"
	StatusFunded    Status = "FUNDED"
	StatusCancelled Status = "CANCELLED"
	StatusActive    Status = "ACTIVE"
	StatusClosed    Status = "CLOSED"
	StatusDefaulted Status = "DEFAULTED"
)

// Terminal reports whether no transition leaves the state. Terminal loans
// are retained for audit, never deleted.
func (s Status) Terminal() bool {
	switch s {
	case StatusRejected, StatusCancelled, StatusClosed, StatusDefaulted:
		return true
	}
	return false
}

// transitions holds the allowed state machine edges. The lifecycle manager
// is the sole writer of Status; everything else reads.
var transitions = map[Status][]Status{
	StatusRequested: {StatusRejected, StatusFunding},
	StatusFunding:   {StatusFunded, StatusCancelled},
	StatusFunded:    {StatusActive},
	StatusActive:    {StatusClosed, StatusDefaulted},
}

// CanTransition reports whether from -> to is an allowed edge
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Loan represents a peer-to-peer loan through its whole lifecycle. Before
// disbursement only the request fields are meaningful; Activate fills the
// amortization fields.
type Loan struct {
	ID                   uuid.UUID `json:"id"`
	BorrowerAccountID    uuid.UUID `json:"borrower_account_id"`
	EscrowAccountID      uuid.UUID `json:"escrow_account_id"`
	Principal            int64     `json:"principal"` // Minor currency units
	InterestRateBps      int       `json:"interest_rate_bps"`
	TenureMonths         int       `json:"tenure_months"`
	Purpose              string    `json:"purpose"`
	CreditScoreAtRequest int       `json:"credit_score_at_request"`
	Status               Status    `json:"status"`
	FundedAmount         int64     `json:"funded_amount"`
	OutstandingPrincipal int64     `json:"outstanding_principal"`
	AccruedInterest      int64     `json:"accrued_interest"`
	EMIAmount            int64     `json:"emi_amount"`
	NextPaymentDueDate   time.Time `json:"next_payment_due_date"`
	MissedPayments       int       `json:"missed_payments"`
	Version              int       `json:"version"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// NewLoan creates a loan request in REQUESTED state
func NewLoan(borrowerAccountID uuid.UUID, principal int64, interestRateBps, tenureMonths int, purpose string, creditScore int) (*Loan, error) {
	if principal <= 0 {
		return nil, ErrInvalidPrincipal
	}
	if interestRateBps <= 0 {
		return nil, ErrInvalidRate
	}
	if tenureMonths < 1 {
		return nil, ErrInvalidTenure
	}
	if purpose == "" {
		return nil, ErrEmptyPurpose
	}

	now := time.Now()
	return &Loan{
		ID:                   uuid.New(),
		BorrowerAccountID:    borrowerAccountID,
		Principal:            principal,
		InterestRateBps:      interestRateBps,
		TenureMonths:         tenureMonths,
		Purpose:              purpose,
		CreditScoreAtRequest: creditScore,
		Status:               StatusRequested,
		Version:              1,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

// Remaining returns the unfunded portion of the principal
func (l *Loan) Remaining() int64 {
	return l.Principal - l.FundedAmount
}

// AmountDue returns the maximum repayment the loan currently accepts
func (l *Loan) AmountDue() int64 {
	return l.OutstandingPrincipal + l.AccruedInterest
}

func (l *Loan) transition(to Status, op string) error {
	if !CanTransition(l.Status, to) {
		return shared.ErrInvalidState{LoanID: l.ID, Status: string(l.Status), Operation: op}
	}
	l.Status = to
	l.touch()
	return nil
}

func (l *Loan) touch() {
	l.UpdatedAt = time.Now()
	l.Version++
}

// Admit moves an admitted request into FUNDING, attaching its escrow account
func (l *Loan) Admit(escrowAccountID uuid.UUID) error {
	if err := l.transition(StatusFunding, "admit"); err != nil {
		return err
	}
	l.EscrowAccountID = escrowAccountID
	return nil
}

// Reject moves a denied request into its terminal REJECTED state
func (l *Loan) Reject() error {
	return l.transition(StatusRejected, "reject")
}

// AddFunding registers an accepted commitment amount. The caller (funding
// matcher) holds the loan row lock and has already enforced the overfund
// check; reaching the full principal moves the loan to FUNDED.
func (l *Loan) AddFunding(amount int64) error {
	if l.Status != StatusFunding {
		return shared.ErrInvalidState{LoanID: l.ID, Status: string(l.Status), Operation: "commit_funding"}
	}
	l.FundedAmount += amount
	if l.FundedAmount == l.Principal {
		return l.transition(StatusFunded, "mark_funded")
	}
	l.touch()
	return nil
}

// Cancel withdraws a loan still gathering commitments
func (l *Loan) Cancel() error {
	return l.transition(StatusCancelled, "cancel")
}

// Activate records disbursement: the loan starts amortizing. Irreversible.
func (l *Loan) Activate(now time.Time) error {
	if err := l.transition(StatusActive, "disburse"); err != nil {
		return err
	}
	l.OutstandingPrincipal = l.Principal
	l.AccruedInterest = PeriodInterest(l.Principal, l.InterestRateBps)
	l.EMIAmount = EMI(l.Principal, l.InterestRateBps, l.TenureMonths)
	l.NextPaymentDueDate = now.AddDate(0, 1, 0)
	return nil
}

// ApplyRepayment reduces accrued interest first, then outstanding
// principal, following the standard amortized-loan convention. Returns the
// split. Outstanding reaching exactly zero closes the loan.
func (l *Loan) ApplyRepayment(amount int64) (interest, principal int64, err error) {
	if l.Status != StatusActive {
		return 0, 0, shared.ErrInvalidState{LoanID: l.ID, Status: string(l.Status), Operation: "apply_repayment"}
	}
	if amount <= 0 {
		return 0, 0, ErrInvalidPrincipal
	}
	if amount > l.AmountDue() {
		return 0, 0, shared.ErrOverpayment{LoanID: l.ID, AmountDue: l.AmountDue()}
	}

	interest = min64(amount, l.AccruedInterest)
	principal = amount - interest
	l.AccruedInterest -= interest
	l.OutstandingPrincipal -= principal

	if l.OutstandingPrincipal == 0 && l.AccruedInterest == 0 {
		return interest, principal, l.transition(StatusClosed, "close")
	}
	l.touch()
	return interest, principal, nil
}

// AccruePeriod advances one interest period on the outstanding principal
// and moves the due date forward. Driven by the external scheduler.
func (l *Loan) AccruePeriod() error {
	if l.Status != StatusActive {
		return shared.ErrInvalidState{LoanID: l.ID, Status: string(l.Status), Operation: "accrue_interest"}
	}
	l.AccruedInterest += PeriodInterest(l.OutstandingPrincipal, l.InterestRateBps)
	l.NextPaymentDueDate = l.NextPaymentDueDate.AddDate(0, 1, 0)
	l.touch()
	return nil
}

// MarkDefaulted moves an active loan to DEFAULTED. The missed-payment
// policy threshold is enforced by the lifecycle manager from config.
func (l *Loan) MarkDefaulted(missedPayments int) error {
	if err := l.transition(StatusDefaulted, "mark_defaulted"); err != nil {
		return err
	}
	l.MissedPayments = missedPayments
	return nil
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
