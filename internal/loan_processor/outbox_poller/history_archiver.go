package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/p2p-lending-ledger/internal/domain/ledger"
	"github.com/p2p-lending-ledger/internal/domain/outbox"
	"github.com/p2p-lending-ledger/internal/domain/shared"
)

// HistoryArchiver mirrors outbox entry groups into the history archive
type HistoryArchiver interface {
	Archive(ctx context.Context, message *outbox.Message) error
}

// HistoryArchiverImpl implements HistoryArchiver against the MongoDB archive
type HistoryArchiverImpl struct {
	outboxRepo outbox.Repository
	history    ledger.History
	logger     *slog.Logger
}

// NewHistoryArchiver creates a new archiver
func NewHistoryArchiver(
	outboxRepo outbox.Repository,
	history ledger.History,
	logger *slog.Logger,
) HistoryArchiver {
	return &HistoryArchiverImpl{
		outboxRepo: outboxRepo,
		history:    history,
		logger:     logger,
	}
}

// Archive copies the message's entry group into the archive and marks the
// message processed. Archival is idempotent, so a crash between the two
// steps only causes a harmless re-archive on the next poll.
func (a *HistoryArchiverImpl) Archive(ctx context.Context, message *outbox.Message) error {
	entries, err := message.GetEntries()
	if err != nil {
		a.logger.Error("Failed to unmarshal entry group from outbox payload",
			"outbox_id", message.ID, "group_id", message.GroupID, "error", err,
		)
		if updateErr := a.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			a.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	logger := a.logger
	if len(entries) > 0 && entries[0].CorrelationID != "" {
		logger = a.logger.With("correlation_id", entries[0].CorrelationID)
	}

	logger.Debug("Archiving outbox entry group", "outbox_id", message.ID, "group_id", message.GroupID, "entries", len(entries))

	if err := a.history.ArchiveBatch(ctx, entries); err != nil {
		logger.Error("Failed to archive entry group", "outbox_id", message.ID, "group_id", message.GroupID, "error", err)
		return fmt.Errorf("failed to archive entry group %s: %w", message.GroupID, err)
	}

	if err := a.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "group_id", message.GroupID, "error", err,
		)
		return fmt.Errorf("archive for %s OK, but failed to mark outbox %d as PROCESSED: %w", message.GroupID, message.ID, err)
	}

	logger.Info("Outbox entry group archived", "outbox_id", message.ID, "group_id", message.GroupID)
	return nil
}
