package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository manages append-only ledger entry persistence. Entries are
// never updated or deleted; the per-account sum of signed amounts is the
// reconciliation source of truth for balances.
type Repository interface {
	CreateBatch(ctx context.Context, entries []Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	GetByGroupID(ctx context.Context, groupID uuid.UUID) ([]Entry, error)
	GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Entry, error)

	// SumByAccountID computes the signed sum of all entries for an account,
	// used to reconcile against the stored balance.
	SumByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error)

	// SumByAccountIDAndKind computes the signed sum of an account's entries
	// of one kind, e.g. FUNDING_RETURN for a lender's realized returns.
	SumByAccountIDAndKind(ctx context.Context, accountID uuid.UUID, kind EntryKind) (int64, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrEntryNotFound indicates missing ledger entry
type ErrEntryNotFound struct {
	EntryID uuid.UUID
}

func (e ErrEntryNotFound) Error() string {
	return "ledger entry not found: " + e.EntryID.String()
}

// Is implements the errors.Is interface for ErrEntryNotFound
func (e ErrEntryNotFound) Is(target error) bool {
	t, ok := target.(ErrEntryNotFound)
	if !ok {
		return false
	}
	if t.EntryID == uuid.Nil {
		return true
	}
	return e.EntryID == t.EntryID
}

// ErrDuplicateEntry indicates entry ID uniqueness violation, raised when a
// replayed payment event carries an already-recorded event ID
type ErrDuplicateEntry struct {
	EntryID uuid.UUID
}

func (e ErrDuplicateEntry) Error() string {
	return "duplicate ledger entry: " + e.EntryID.String()
}

// Is implements the errors.Is interface for ErrDuplicateEntry
func (e ErrDuplicateEntry) Is(target error) bool {
	t, ok := target.(ErrDuplicateEntry)
	if !ok {
		return false
	}
	if t.EntryID == uuid.Nil {
		return true
	}
	return e.EntryID == t.EntryID
}
