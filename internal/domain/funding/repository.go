package funding

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines funding commitment persistence operations
type Repository interface {
	Create(ctx context.Context, commitment *Commitment) error
	GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*Commitment, error)
	GetByLender(ctx context.Context, lenderAccountID uuid.UUID) ([]*Commitment, error)
	SumByLoanID(ctx context.Context, loanID uuid.UUID) (int64, error)
	WithTx(tx pgx.Tx) Repository
}
