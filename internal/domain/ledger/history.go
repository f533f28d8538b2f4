package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// History is the read-optimized archive of committed ledger entries. The
// outbox poller mirrors every entry group into it; paginated statement
// queries are served from here rather than the write store.
type History interface {
	// ArchiveBatch mirrors a committed entry group. Archival is idempotent:
	// entries already present are skipped, so a retried outbox message does
	// not duplicate history.
	ArchiveBatch(ctx context.Context, entries []Entry) error

	GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Entry, error)
	CountByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error)
	GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*Entry, error)
	GetByTimeRange(ctx context.Context, startTime, endTime time.Time, limit, offset int) ([]*Entry, error)
}
