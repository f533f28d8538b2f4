package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/p2p-lending-ledger/internal/domain/repayment"
	"github.com/p2p-lending-ledger/internal/platform/persistence"
)

// RepaymentRepository implements the repayment.Repository interface for PostgreSQL
type RepaymentRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewRepaymentRepository creates a new PostgreSQL repayment repository
func NewRepaymentRepository(logger *slog.Logger, db *persistence.PostgresDB) repayment.Repository {
	return &RepaymentRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *RepaymentRepository) WithTx(tx pgx.Tx) repayment.Repository {
	return &RepaymentRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create inserts a repayment event
func (r *RepaymentRepository) Create(ctx context.Context, e *repayment.Event) error {
	query := `
		INSERT INTO repayment_events (id, loan_id, amount, principal_component, interest_component, applied_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.querier.Exec(ctx, query, e.ID, e.LoanID, e.Amount, e.PrincipalComponent, e.InterestComponent, e.AppliedAt)
	if err != nil {
		r.logger.Error("Failed to create repayment event", "event_id", e.ID.String(), "error", err)
		return fmt.Errorf("failed to create repayment event: %w", err)
	}

	return nil
}

// GetByLoanID retrieves a loan's repayment history in application order
func (r *RepaymentRepository) GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*repayment.Event, error) {
	query := `
		SELECT id, loan_id, amount, principal_component, interest_component, applied_at
		FROM repayment_events
		WHERE loan_id = $1
		ORDER BY applied_at, id
	`

	rows, err := r.querier.Query(ctx, query, loanID)
	if err != nil {
		r.logger.Error("Failed to list repayment events", "loan_id", loanID.String(), "error", err)
		return nil, fmt.Errorf("failed to list repayment events: %w", err)
	}
	defer rows.Close()

	var events []*repayment.Event
	for rows.Next() {
		var e repayment.Event
		if err := rows.Scan(&e.ID, &e.LoanID, &e.Amount, &e.PrincipalComponent, &e.InterestComponent, &e.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan repayment event: %w", err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate repayment events: %w", err)
	}
	return events, nil
}
