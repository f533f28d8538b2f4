package lending

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/p2p-lending-ledger/internal/domain/account"
	"github.com/p2p-lending-ledger/internal/domain/ledger"
	"github.com/p2p-lending-ledger/internal/domain/outbox"
	"github.com/p2p-lending-ledger/internal/domain/shared"
	"github.com/p2p-lending-ledger/internal/platform/persistence"
)

// exemptKinds lists entry kinds whose credits are excluded from the
// negative-balance check. The debit side of these groups is still checked:
// an escrow account only ever pays out what it was funded with, so a debit
// that would overdraw it means the group itself is wrong.
var exemptKinds = map[ledger.EntryKind]bool{
	ledger.KindLoanDisbursement: true,
	ledger.KindFundingReturn:    true,
}

// exemptFromBalanceCheck reports whether an entry may leave a balance
// negative. Only credits of the exempt kinds qualify.
func exemptFromBalanceCheck(e *ledger.Entry) bool {
	return e.Amount > 0 && exemptKinds[e.Kind]
}

// LedgerStoreImpl implements LedgerStore on PostgreSQL. Account row locks
// taken in sorted ID order keep concurrent groups touching the same
// accounts serialized without deadlocks.
type LedgerStoreImpl struct {
	txm         persistence.TxManager
	accountRepo account.Repository
	ledgerRepo  ledger.Repository
	outboxRepo  outbox.Repository
	logger      *slog.Logger
}

// NewLedgerStore creates a PostgreSQL-backed ledger store
func NewLedgerStore(
	txm persistence.TxManager,
	accountRepo account.Repository,
	ledgerRepo ledger.Repository,
	outboxRepo outbox.Repository,
	logger *slog.Logger,
) LedgerStore {
	return &LedgerStoreImpl{
		txm:         txm,
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		outboxRepo:  outboxRepo,
		logger:      logger,
	}
}

// PostEntries posts a group in its own transaction
func (s *LedgerStoreImpl) PostEntries(ctx context.Context, group *ledger.Group) error {
	return s.txm.ExecuteTx(ctx, func(tx pgx.Tx) error {
		return s.PostEntriesTx(ctx, tx, group)
	})
}

// PostEntriesTx posts a group inside a caller-owned transaction. It locks
// every touched account, verifies no debit drives a balance negative
// (exempt credits aside), appends the entries, applies the balance deltas,
// and records an outbox message for the history archive. The caller's
// commit makes all of it visible at once; any error leaves nothing behind.
func (s *LedgerStoreImpl) PostEntriesTx(ctx context.Context, tx pgx.Tx, group *ledger.Group) error {
	logger := s.logger
	if group.CorrelationID != "" {
		logger = s.logger.With("correlation_id", group.CorrelationID)
	}

	accountRepoTx := s.accountRepo.WithTx(tx)

	// Lock in sorted ID order so concurrent groups cannot deadlock.
	ids := touchedAccounts(group)
	balances := make(map[uuid.UUID]int64, len(ids))
	for _, id := range ids {
		locked, err := accountRepoTx.LockForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to lock account %s for ledger group %s: %w", id.String(), group.ID.String(), err)
		}
		balances[id] = locked.Balance
	}

	// Apply entries in order against the locked balances.
	deltas := make(map[uuid.UUID]int64, len(ids))
	for i := range group.Entries {
		entry := &group.Entries[i]
		projected := balances[entry.AccountID] + entry.Amount
		if projected < 0 && !exemptFromBalanceCheck(entry) {
			logger.Warn("Ledger group rejected: balance would go negative",
				"group_id", group.ID.String(),
				"account_id", entry.AccountID.String(),
				"kind", entry.Kind,
				"amount", entry.Amount,
			)
			return shared.ErrInsufficientFunds{AccountID: entry.AccountID}
		}
		balances[entry.AccountID] = projected
		deltas[entry.AccountID] += entry.Amount
	}

	if err := s.ledgerRepo.WithTx(tx).CreateBatch(ctx, group.Entries); err != nil {
		return fmt.Errorf("failed to append ledger group %s: %w", group.ID.String(), err)
	}

	for _, id := range ids {
		if deltas[id] == 0 {
			continue
		}
		if err := accountRepoTx.ApplyBalanceDelta(ctx, id, deltas[id]); err != nil {
			return fmt.Errorf("failed to apply balance delta for account %s: %w", id.String(), err)
		}
	}

	message, err := outbox.NewMessage(group)
	if err != nil {
		return fmt.Errorf("failed to build outbox message for ledger group %s: %w", group.ID.String(), err)
	}
	if err := s.outboxRepo.WithTx(tx).Create(ctx, message); err != nil {
		return fmt.Errorf("failed to record outbox message for ledger group %s: %w", group.ID.String(), err)
	}

	logger.Info("Ledger group posted",
		"group_id", group.ID.String(),
		"entries", len(group.Entries),
		"accounts", len(ids),
	)
	return nil
}

// GetBalance returns the committed balance of an account
func (s *LedgerStoreImpl) GetBalance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	acc, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return acc.Balance, nil
}

// Reconcile checks the stored balance against the entry sum
func (s *LedgerStoreImpl) Reconcile(ctx context.Context, accountID uuid.UUID) (int64, int64, bool, error) {
	acc, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return 0, 0, false, err
	}
	sum, err := s.ledgerRepo.SumByAccountID(ctx, accountID)
	if err != nil {
		return 0, 0, false, err
	}
	return acc.Balance, sum, acc.Balance == sum, nil
}

// touchedAccounts returns the distinct account IDs of a group in sorted order
func touchedAccounts(group *ledger.Group) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(group.Entries))
	ids := make([]uuid.UUID, 0, len(group.Entries))
	for _, e := range group.Entries {
		if !seen[e.AccountID] {
			seen[e.AccountID] = true
			ids = append(ids, e.AccountID)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}
