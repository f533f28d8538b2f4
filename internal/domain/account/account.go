package account

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrSelfTransfer       = errors.New("sender and receiver must differ")
	ErrEmptyOwnerName     = errors.New("owner name cannot be empty")
	ErrInvalidCreditScore = errors.New("credit score must be between 300 and 900")
)

// Kind distinguishes user wallets from loan escrow accounts
type Kind string

const (
	KindUser   Kind = "USER"
	KindEscrow Kind = "ESCROW"
)

// Account represents a wallet holding funds in minor currency units.
// Balance never goes negative through a committed operation, and always
// equals the sum of the account's ledger entries.
type Account struct {
	ID          uuid.UUID `json:"id"`
	OwnerName   string    `json:"owner_name"`
	Kind        Kind      `json:"kind"`
	CreditScore int       `json:"credit_score"`
	Balance     int64     `json:"balance"` // Minor currency units
	Version     int       `json:"version"` // For optimistic locking
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewAccount creates a user wallet account
func NewAccount(ownerName string, creditScore int) (*Account, error) {
	if ownerName == "" {
		return nil, ErrEmptyOwnerName
	}
	if creditScore < 300 || creditScore > 900 {
		return nil, ErrInvalidCreditScore
	}

	now := time.Now()
	return &Account{
		ID:          uuid.New(),
		OwnerName:   ownerName,
		Kind:        KindUser,
		CreditScore: creditScore,
		Balance:     0,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// NewEscrowAccount creates the pooled escrow wallet that holds a loan's
// committed funds between commitment and disbursement.
func NewEscrowAccount(loanID uuid.UUID) *Account {
	now := time.Now()
	return &Account{
		ID:        uuid.New(),
		OwnerName: "escrow:" + loanID.String(),
		Kind:      KindEscrow,
		Balance:   0,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CanDebit checks whether the account holds at least amount
func (a *Account) CanDebit(amount int64) bool {
	return a.Balance >= amount
}
