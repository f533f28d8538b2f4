package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/p2p-lending-ledger/internal/domain/ledger"
	"github.com/p2p-lending-ledger/internal/platform/persistence"
)

// LedgerRepository implements the ledger.Repository interface for
// PostgreSQL. Entries are append-only: there is no update or delete path.
type LedgerRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewLedgerRepository creates a new PostgreSQL ledger repository
func NewLedgerRepository(logger *slog.Logger, db *persistence.PostgresDB) ledger.Repository {
	return &LedgerRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so a whole entry group
// commits atomically with the balance updates it implies.
func (r *LedgerRepository) WithTx(tx pgx.Tx) ledger.Repository {
	return &LedgerRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// CreateBatch appends an entry group and stamps each entry with the
// sequence number the database assigns, so callers see the final ordering
// key on the entries they passed in. A replayed payment event trips the
// primary key and surfaces as ErrDuplicateEntry.
func (r *LedgerRepository) CreateBatch(ctx context.Context, entries []ledger.Entry) error {
	query := `
		INSERT INTO ledger_entries (id, group_id, account_id, amount, kind, loan_id, correlation_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING sequence_number
	`

	for i := range entries {
		e := &entries[i]
		err := r.querier.QueryRow(ctx, query,
			e.ID,
			e.GroupID,
			e.AccountID,
			e.Amount,
			e.Kind,
			e.LoanID,
			e.CorrelationID,
			e.CreatedAt,
		).Scan(&e.SequenceNumber)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ledger.ErrDuplicateEntry{EntryID: e.ID}
			}
			r.logger.Error("Failed to append ledger entry", "entry_id", e.ID.String(), "error", err)
			return fmt.Errorf("failed to append ledger entry: %w", err)
		}
	}

	return nil
}

// GetByID retrieves a single entry
func (r *LedgerRepository) GetByID(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	query := `
		SELECT id, group_id, account_id, amount, kind, loan_id, sequence_number, correlation_id, created_at
		FROM ledger_entries
		WHERE id = $1
	`

	var e ledger.Entry
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.GroupID, &e.AccountID, &e.Amount, &e.Kind, &e.LoanID, &e.SequenceNumber, &e.CorrelationID, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.ErrEntryNotFound{EntryID: id}
		}
		r.logger.Error("Failed to get ledger entry", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}

	return &e, nil
}

// GetByGroupID retrieves every entry of one atomic group
func (r *LedgerRepository) GetByGroupID(ctx context.Context, groupID uuid.UUID) ([]ledger.Entry, error) {
	query := `
		SELECT id, group_id, account_id, amount, kind, loan_id, sequence_number, correlation_id, created_at
		FROM ledger_entries
		WHERE group_id = $1
		ORDER BY sequence_number
	`

	rows, err := r.querier.Query(ctx, query, groupID)
	if err != nil {
		r.logger.Error("Failed to get ledger group", "group_id", groupID.String(), "error", err)
		return nil, fmt.Errorf("failed to get ledger group: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// GetByAccountID retrieves an account's entries, newest first
func (r *LedgerRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]ledger.Entry, error) {
	query := `
		SELECT id, group_id, account_id, amount, kind, loan_id, sequence_number, correlation_id, created_at
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY sequence_number DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list ledger entries", "account_id", accountID.String(), "error", err)
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// SumByAccountID computes the reconciliation sum for an account
func (r *LedgerRepository) SumByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM ledger_entries WHERE account_id = $1`

	var sum int64
	if err := r.querier.QueryRow(ctx, query, accountID).Scan(&sum); err != nil {
		r.logger.Error("Failed to sum ledger entries", "account_id", accountID.String(), "error", err)
		return 0, fmt.Errorf("failed to sum ledger entries: %w", err)
	}
	return sum, nil
}

// SumByAccountIDAndKind computes the signed sum of one entry kind
func (r *LedgerRepository) SumByAccountIDAndKind(ctx context.Context, accountID uuid.UUID, kind ledger.EntryKind) (int64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM ledger_entries WHERE account_id = $1 AND kind = $2`

	var sum int64
	if err := r.querier.QueryRow(ctx, query, accountID, kind).Scan(&sum); err != nil {
		r.logger.Error("Failed to sum ledger entries by kind", "account_id", accountID.String(), "kind", kind, "error", err)
		return 0, fmt.Errorf("failed to sum ledger entries by kind: %w", err)
	}
	return sum, nil
}

func scanEntries(rows pgx.Rows) ([]ledger.Entry, error) {
	var entries []ledger.Entry
	for rows.Next() {
		var e ledger.Entry
		if err := rows.Scan(&e.ID, &e.GroupID, &e.AccountID, &e.Amount, &e.Kind, &e.LoanID, &e.SequenceNumber, &e.CorrelationID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}
	return entries, nil
}
