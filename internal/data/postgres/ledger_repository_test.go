package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p2p-lending-ledger/internal/domain/ledger"
)

func TestLedgerRepository_CreateBatch(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &LedgerRepository{querier: mock, logger: newTestLogger()}

	groupID := uuid.New()
	now := time.Now()
	entries := []ledger.Entry{
		{ID: uuid.New(), GroupID: groupID, AccountID: uuid.New(), Amount: -5000, Kind: ledger.KindFundingCommitment, CorrelationID: "corr-1", CreatedAt: now},
		{ID: uuid.New(), GroupID: groupID, AccountID: uuid.New(), Amount: 5000, Kind: ledger.KindFundingCommitment, CorrelationID: "corr-1", CreatedAt: now},
	}

	query := `INSERT INTO ledger_entries`

	t.Run("success stamps sequence numbers", func(t *testing.T) {
		for i, e := range entries {
			mock.ExpectQuery(query).
				WithArgs(e.ID, e.GroupID, e.AccountID, e.Amount, e.Kind, e.LoanID, e.CorrelationID, e.CreatedAt).
				WillReturnRows(pgxmock.NewRows([]string{"sequence_number"}).AddRow(int64(41 + i)))
		}

		err := repo.CreateBatch(ctx, entries)
		require.NoError(t, err)
		assert.Equal(t, int64(41), entries[0].SequenceNumber)
		assert.Equal(t, int64(42), entries[1].SequenceNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate entry id", func(t *testing.T) {
		e := entries[0]
		mock.ExpectQuery(query).
			WithArgs(e.ID, e.GroupID, e.AccountID, e.Amount, e.Kind, e.LoanID, e.CorrelationID, e.CreatedAt).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := repo.CreateBatch(ctx, entries)
		assert.ErrorIs(t, err, ledger.ErrDuplicateEntry{EntryID: e.ID})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLedgerRepository_SumByAccountID(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &LedgerRepository{querier: mock, logger: newTestLogger()}
	accountID := uuid.New()

	t.Run("sum of entries", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM ledger_entries WHERE account_id = \$1`).
			WithArgs(accountID).
			WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(int64(12500)))

		sum, err := repo.SumByAccountID(ctx, accountID)
		require.NoError(t, err)
		assert.Equal(t, int64(12500), sum)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no entries sums to zero", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM ledger_entries WHERE account_id = \$1`).
			WithArgs(accountID).
			WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(int64(0)))

		sum, err := repo.SumByAccountID(ctx, accountID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), sum)
	})
}

func TestLedgerRepository_SumByAccountIDAndKind(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &LedgerRepository{querier: mock, logger: newTestLogger()}
	accountID := uuid.New()

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM ledger_entries WHERE account_id = \$1 AND kind = \$2`).
		WithArgs(accountID, ledger.KindFundingReturn).
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(int64(3000)))

	sum, err := repo.SumByAccountIDAndKind(ctx, accountID, ledger.KindFundingReturn)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), sum)
	assert.NoError(t, mock.ExpectationsWereMet())
}
