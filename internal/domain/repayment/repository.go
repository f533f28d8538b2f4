package repayment

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines repayment event persistence operations
type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*Event, error)
	WithTx(tx pgx.Tx) Repository
}
