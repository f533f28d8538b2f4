package repayment

import (
	"errors"
	"math/big"

	"github.com/google/uuid"
	"github.com/p2p-lending-ledger/internal/domain/funding"
)

var (
	ErrNoCommitments = errors.New("cannot allocate across zero commitments")
)

// Share is one lender's cut of a distributed amount
type Share struct {
	LenderAccountID uuid.UUID
	CommitmentID    uuid.UUID
	Amount          int64
}

// Allocate splits total across lenders in proportion to their commitment
// share. Each share is floored; the remaining minor units go to the lender
// with the largest commitment (earliest commitment on a tie), so the
// distributed amounts always sum to total exactly.
func Allocate(total int64, commitments []*funding.Commitment) ([]Share, error) {
	if len(commitments) == 0 {
		return nil, ErrNoCommitments
	}
	if total < 0 {
		return nil, ErrInvalidAmount
	}

	var committed int64
	for _, c := range commitments {
		committed += c.Amount
	}
	if committed <= 0 {
		return nil, ErrNoCommitments
	}

	shares := make([]Share, len(commitments))
	var distributed int64
	largest := 0
	for i, c := range commitments {
		// Floor division keeps every share at or below its exact cut.
		amt := mulDiv(total, c.Amount, committed)
		shares[i] = Share{
			LenderAccountID: c.LenderAccountID,
			CommitmentID:    c.ID,
			Amount:          amt,
		}
		distributed += amt
		if c.Amount > commitments[largest].Amount {
			largest = i
		}
	}

	shares[largest].Amount += total - distributed
	return shares, nil
}

// mulDiv computes total*part/whole through a wide intermediate; the raw
// int64 product overflows once total and part together approach 2^63.
func mulDiv(total, part, whole int64) int64 {
	product := new(big.Int).Mul(big.NewInt(total), big.NewInt(part))
	return product.Div(product, big.NewInt(whole)).Int64()
}
