package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/p2p-lending-ledger/internal/domain/funding"
	"github.com/p2p-lending-ledger/internal/platform/persistence"
)

// FundingRepository implements the funding.Repository interface for PostgreSQL
type FundingRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewFundingRepository creates a new PostgreSQL funding repository
func NewFundingRepository(logger *slog.Logger, db *persistence.PostgresDB) funding.Repository {
	return &FundingRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *FundingRepository) WithTx(tx pgx.Tx) funding.Repository {
	return &FundingRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create inserts a new commitment
func (r *FundingRepository) Create(ctx context.Context, c *funding.Commitment) error {
	query := `
		INSERT INTO funding_commitments (id, loan_id, lender_account_id, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.querier.Exec(ctx, query, c.ID, c.LoanID, c.LenderAccountID, c.Amount, c.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create commitment", "commitment_id", c.ID.String(), "error", err)
		return fmt.Errorf("failed to create commitment: %w", err)
	}

	return nil
}

// GetByLoanID retrieves a loan's commitments in commitment order. The
// order is stable so pro-rata remainder assignment is deterministic.
func (r *FundingRepository) GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*funding.Commitment, error) {
	query := `
		SELECT id, loan_id, lender_account_id, amount, created_at
		FROM funding_commitments
		WHERE loan_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.querier.Query(ctx, query, loanID)
	if err != nil {
		r.logger.Error("Failed to list loan commitments", "loan_id", loanID.String(), "error", err)
		return nil, fmt.Errorf("failed to list loan commitments: %w", err)
	}
	defer rows.Close()

	return r.scanCommitments(rows)
}

// GetByLender retrieves a lender's commitments, newest first
func (r *FundingRepository) GetByLender(ctx context.Context, lenderAccountID uuid.UUID) ([]*funding.Commitment, error) {
	query := `
		SELECT id, loan_id, lender_account_id, amount, created_at
		FROM funding_commitments
		WHERE lender_account_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.querier.Query(ctx, query, lenderAccountID)
	if err != nil {
		r.logger.Error("Failed to list lender commitments", "lender_account_id", lenderAccountID.String(), "error", err)
		return nil, fmt.Errorf("failed to list lender commitments: %w", err)
	}
	defer rows.Close()

	return r.scanCommitments(rows)
}

// SumByLoanID computes the total committed amount for one loan
func (r *FundingRepository) SumByLoanID(ctx context.Context, loanID uuid.UUID) (int64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM funding_commitments WHERE loan_id = $1`

	var sum int64
	if err := r.querier.QueryRow(ctx, query, loanID).Scan(&sum); err != nil {
		r.logger.Error("Failed to sum commitments", "loan_id", loanID.String(), "error", err)
		return 0, fmt.Errorf("failed to sum commitments: %w", err)
	}
	return sum, nil
}

func (r *FundingRepository) scanCommitments(rows pgx.Rows) ([]*funding.Commitment, error) {
	var commitments []*funding.Commitment
	for rows.Next() {
		var c funding.Commitment
		if err := rows.Scan(&c.ID, &c.LoanID, &c.LenderAccountID, &c.Amount, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan commitment: %w", err)
		}
		commitments = append(commitments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate commitments: %w", err)
	}
	return commitments, nil
}
