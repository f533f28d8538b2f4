package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/p2p-lending-ledger/internal/domain/ledger"
	"github.com/p2p-lending-ledger/internal/domain/shared"
	"github.com/p2p-lending-ledger/internal/lending"
)

// LedgerPaymentService implements PaymentService on top of the ledger store.
// The event ID becomes the ledger entry ID, so a replayed event trips the
// store's duplicate check and is treated as already applied.
type LedgerPaymentService struct {
	ledgerStore lending.LedgerStore
	logger      *slog.Logger
}

func NewPaymentService(logger *slog.Logger, ledgerStore lending.LedgerStore) PaymentService {
	return &LedgerPaymentService{
		ledgerStore: ledgerStore,
		logger:      logger,
	}
}

// ApplyPaymentEvent posts a deposit or withdrawal entry for the event
func (s *LedgerPaymentService) ApplyPaymentEvent(ctx context.Context, event *shared.PaymentEvent) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	var kind ledger.EntryKind
	var amount int64
	switch event.Type {
	case shared.PaymentEventTypeDeposit:
		kind = ledger.KindDeposit
		amount = event.Amount
	case shared.PaymentEventTypeWithdrawal:
		kind = ledger.KindWithdrawal
		amount = -event.Amount
	default:
		return fmt.Errorf("%w: %s", shared.ErrInvalidPaymentEventType, event.Type)
	}

	group, err := ledger.NewGroup(event.CorrelationID, ledger.Entry{
		ID:        event.EventID,
		AccountID: event.AccountID,
		Amount:    amount,
		Kind:      kind,
	})
	if err != nil {
		return fmt.Errorf("failed to build entry group for payment event %s: %w", event.EventID, err)
	}

	if err := s.ledgerStore.PostEntries(ctx, group); err != nil {
		if errors.Is(err, ledger.ErrDuplicateEntry{}) {
			logger.Info("Payment event already applied, skipping",
				"event_id", event.EventID.String(),
				"account_id", event.AccountID.String(),
			)
			return nil
		}
		return fmt.Errorf("failed to apply payment event %s: %w", event.EventID, err)
	}

	logger.Info("Applied payment event",
		"event_id", event.EventID.String(),
		"account_id", event.AccountID.String(),
		"type", string(event.Type),
		"amount", event.Amount,
	)
	return nil
}
