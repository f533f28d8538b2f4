package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrZeroAmount       = errors.New("ledger entry amount cannot be zero")
	ErrEmptyEntryGroup  = errors.New("entry group cannot be empty")
	ErrInvalidEntryKind = errors.New("invalid ledger entry kind")
)

// EntryKind categorizes the balance-affecting event an entry records
type EntryKind string

const (
	KindDeposit           EntryKind = "DEPOSIT"
	KindWithdrawal        EntryKind = "WITHDRAWAL"
	KindTransfer          EntryKind = "TRANSFER"
	KindLoanDisbursement  EntryKind = "LOAN_DISBURSEMENT"
	KindLoanRepayment     EntryKind = "LOAN_REPAYMENT"
	KindFundingCommitment EntryKind = "FUNDING_COMMITMENT"
	KindFundingReturn     EntryKind = "FUNDING_RETURN"
)

// Valid reports whether k is a known entry kind
func (k EntryKind) Valid() bool {
	switch k {
	case KindDeposit, KindWithdrawal, KindTransfer, KindLoanDisbursement,
		KindLoanRepayment, KindFundingCommitment, KindFundingReturn:
		return true
	}
	return false
}

// Entry is an immutable, append-only record of a balance-affecting event.
// SequenceNumber is assigned by the store at commit time and is strictly
// increasing across all entries.
type Entry struct {
	ID             uuid.UUID  `json:"id" bson:"id"`
	GroupID        uuid.UUID  `json:"group_id" bson:"group_id"`
	AccountID      uuid.UUID  `json:"account_id" bson:"account_id"`
	Amount         int64      `json:"amount" bson:"amount"` // Signed, minor currency units
	Kind           EntryKind  `json:"kind" bson:"kind"`
	LoanID         *uuid.UUID `json:"loan_id,omitempty" bson:"loan_id,omitempty"`
	SequenceNumber int64      `json:"sequence_number" bson:"sequence_number"`
	CorrelationID  string     `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at"`
}

// Group is the unit of atomicity for ledger posting: all entries commit
// together or none do. A repayment split across a borrower debit and
// several lender credits is one group.
type Group struct {
	ID            uuid.UUID
	Entries       []Entry
	CorrelationID string
}

// NewGroup builds an entry group, stamping the shared group ID and
// correlation ID onto every entry. Entries keep their own IDs when preset
// (payment events reuse the event ID for replay detection).
func NewGroup(correlationID string, entries ...Entry) (*Group, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyEntryGroup
	}

	groupID := uuid.New()
	now := time.Now()
	for i := range entries {
		if entries[i].Amount == 0 {
			return nil, ErrZeroAmount
		}
		if !entries[i].Kind.Valid() {
			return nil, ErrInvalidEntryKind
		}
		if entries[i].ID == uuid.Nil {
			entries[i].ID = uuid.New()
		}
		entries[i].GroupID = groupID
		entries[i].CorrelationID = correlationID
		entries[i].CreatedAt = now
	}

	return &Group{
		ID:            groupID,
		Entries:       entries,
		CorrelationID: correlationID,
	}, nil
}

// Sum returns the net signed amount of the group. A pure transfer between
// accounts nets to zero; deposits and withdrawals do not.
func (g *Group) Sum() int64 {
	var total int64
	for _, e := range g.Entries {
		total += e.Amount
	}
	return total
}
