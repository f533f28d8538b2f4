package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/p2p-lending-ledger/internal/domain/loan"
	"github.com/p2p-lending-ledger/internal/platform/persistence"
)

const loanColumns = `id, borrower_account_id, escrow_account_id, principal, interest_rate_bps, tenure_months,
		purpose, credit_score_at_request, status, funded_amount, outstanding_principal, accrued_interest,
		emi_amount, next_payment_due_date, missed_payments, version, created_at, updated_at`

// LoanRepository implements the loan.Repository interface for PostgreSQL
type LoanRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewLoanRepository creates a new PostgreSQL loan repository
func NewLoanRepository(logger *slog.Logger, db *persistence.PostgresDB) loan.Repository {
	return &LoanRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *LoanRepository) WithTx(tx pgx.Tx) loan.Repository {
	return &LoanRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create inserts a new loan
func (r *LoanRepository) Create(ctx context.Context, l *loan.Loan) error {
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.querier.Exec(ctx, query,
		l.ID, l.BorrowerAccountID, l.EscrowAccountID, l.Principal, l.InterestRateBps, l.TenureMonths,
		l.Purpose, l.CreditScoreAtRequest, l.Status, l.FundedAmount, l.OutstandingPrincipal, l.AccruedInterest,
		l.EMIAmount, l.NextPaymentDueDate, l.MissedPayments, l.Version, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create loan", "loan_id", l.ID.String(), "error", err)
		return fmt.Errorf("failed to create loan: %w", err)
	}

	return nil
}

// GetByID retrieves a loan by its ID
func (r *LoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	l, err := r.scanLoan(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, loan.ErrLoanNotFound{LoanID: id}
		}
		r.logger.Error("Failed to get loan", "loan_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}

	return l, nil
}

// LockForUpdate retrieves a loan and acquires its row lock for the
// duration of the surrounding transaction.
func (r *LoanRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 FOR UPDATE`

	l, err := r.scanLoan(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, loan.ErrLoanNotFound{LoanID: id}
		}
		r.logger.Error("Failed to lock loan", "loan_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock loan: %w", err)
	}

	return l, nil
}

// Update persists loan changes with optimistic concurrency control. The
// entity's Version has already been bumped by the mutation, so the
// predicate matches the previous stored version.
func (r *LoanRepository) Update(ctx context.Context, l *loan.Loan) error {
	query := `
		UPDATE loans
		SET escrow_account_id = $1, status = $2, funded_amount = $3, outstanding_principal = $4,
			accrued_interest = $5, emi_amount = $6, next_payment_due_date = $7, missed_payments = $8,
			version = $9, updated_at = $10
		WHERE id = $11 AND version = $12
	`

	result, err := r.querier.Exec(ctx, query,
		l.EscrowAccountID, l.Status, l.FundedAmount, l.OutstandingPrincipal,
		l.AccruedInterest, l.EMIAmount, l.NextPaymentDueDate, l.MissedPayments,
		l.Version, l.UpdatedAt,
		l.ID, l.Version-1,
	)
	if err != nil {
		r.logger.Error("Failed to update loan", "loan_id", l.ID.String(), "error", err)
		return fmt.Errorf("failed to update loan: %w", err)
	}

	if result.RowsAffected() == 0 {
		return loan.ErrConcurrentModification{LoanID: l.ID}
	}

	return nil
}

// GetByBorrower retrieves all loans requested by a borrower, newest first
func (r *LoanRepository) GetByBorrower(ctx context.Context, borrowerAccountID uuid.UUID) ([]*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE borrower_account_id = $1 ORDER BY created_at DESC`

	rows, err := r.querier.Query(ctx, query, borrowerAccountID)
	if err != nil {
		r.logger.Error("Failed to list borrower loans", "borrower_account_id", borrowerAccountID.String(), "error", err)
		return nil, fmt.Errorf("failed to list borrower loans: %w", err)
	}
	defer rows.Close()

	return r.scanLoans(rows)
}

// CountOpenByBorrower counts the borrower's non-terminal loans, used by the
// eligibility gate's concurrent-loan cap.
func (r *LoanRepository) CountOpenByBorrower(ctx context.Context, borrowerAccountID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM loans
		WHERE borrower_account_id = $1
		AND status NOT IN ('REJECTED', 'CANCELLED', 'CLOSED', 'DEFAULTED')
	`

	var count int
	if err := r.querier.QueryRow(ctx, query, borrowerAccountID).Scan(&count); err != nil {
		r.logger.Error("Failed to count open loans", "borrower_account_id", borrowerAccountID.String(), "error", err)
		return 0, fmt.Errorf("failed to count open loans: %w", err)
	}
	return count, nil
}

// ListFunding retrieves loans currently open for investment. Zero bounds
// mean unbounded; the score range filters on the credit score captured at
// request time, which is what the risk band is derived from.
func (r *LoanRepository) ListFunding(ctx context.Context, minAmount, maxAmount int64, minScore, maxScore int, limit, offset int) ([]*loan.Loan, error) {
	query := `
		SELECT ` + loanColumns + ` FROM loans
		WHERE status = 'FUNDING'
		AND ($1 = 0 OR principal >= $1)
		AND ($2 = 0 OR principal <= $2)
		AND ($3 = 0 OR credit_score_at_request >= $3)
		AND ($4 = 0 OR credit_score_at_request <= $4)
		ORDER BY created_at DESC
		LIMIT $5 OFFSET $6
	`

	rows, err := r.querier.Query(ctx, query, minAmount, maxAmount, minScore, maxScore, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list funding loans", "error", err)
		return nil, fmt.Errorf("failed to list funding loans: %w", err)
	}
	defer rows.Close()

	return r.scanLoans(rows)
}

func (r *LoanRepository) scanLoan(row pgx.Row) (*loan.Loan, error) {
	var l loan.Loan
	err := row.Scan(
		&l.ID, &l.BorrowerAccountID, &l.EscrowAccountID, &l.Principal, &l.InterestRateBps, &l.TenureMonths,
		&l.Purpose, &l.CreditScoreAtRequest, &l.Status, &l.FundedAmount, &l.OutstandingPrincipal, &l.AccruedInterest,
		&l.EMIAmount, &l.NextPaymentDueDate, &l.MissedPayments, &l.Version, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LoanRepository) scanLoans(rows pgx.Rows) ([]*loan.Loan, error) {
	var loans []*loan.Loan
	for rows.Next() {
		l, err := r.scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate loans: %w", err)
	}
	return loans, nil
}
