package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/p2p-lending-ledger/internal/domain/loan"
	"github.com/p2p-lending-ledger/internal/domain/shared"
	"github.com/p2p-lending-ledger/internal/loan_processor/service"
	"github.com/p2p-lending-ledger/internal/platform/messaging/producers"
)

// DelinquencyEventHandler handles incoming scheduler signals from Kafka
type DelinquencyEventHandler struct {
	delinquencyService service.DelinquencyService
	producer           producers.DeadLetterPublisher
	logger             *slog.Logger
}

// NewDelinquencyEventHandler creates a new handler
func NewDelinquencyEventHandler(
	logger *slog.Logger,
	delinquencyService service.DelinquencyService,
	producer producers.DeadLetterPublisher,
) *DelinquencyEventHandler {
	return &DelinquencyEventHandler{
		delinquencyService: delinquencyService,
		producer:           producer,
		logger:             logger,
	}
}

// HandleMessage processes Kafka messages
func (h *DelinquencyEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var signal shared.DelinquencySignal
	if err := json.Unmarshal(value, &signal); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal delinquency signal from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
			} else {
				h.logger.Info("Published unprocessable delinquency signal to DLQ", "message_key", string(key), "reason", dlqReason)
				return nil
			}
		}
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	logger := h.logger
	if signal.CorrelationID != "" {
		logger = h.logger.With("correlation_id", signal.CorrelationID)
	}

	logger.Info("Received delinquency signal for processing",
		"signal_id", signal.SignalID.String(),
		"loan_id", signal.LoanID.String(),
		"missed_payments", signal.MissedPayments,
	)

	if err := h.delinquencyService.ApplyDelinquencySignal(ctx, &signal); err != nil {
		// A signal for an unknown loan will never succeed on retry
		if errors.Is(err, loan.ErrLoanNotFound{}) {
			logger.Warn("Delinquency signal references unknown loan, dropping",
				"signal_id", signal.SignalID.String(),
				"loan_id", signal.LoanID.String(),
			)
			if h.producer != nil {
				if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, "loan not found"); dlqErr != nil {
					h.logger.Error("Failed to publish message to DLQ", "dlq_error", dlqErr, "message_key", string(key))
				}
			}
			return nil
		}
		logger.Error("Failed to apply delinquency signal",
			"signal_id", signal.SignalID.String(),
			"loan_id", signal.LoanID.String(),
			"error", err,
		)
		return fmt.Errorf("applying delinquency signal %s failed: %w", signal.SignalID.String(), err)
	}

	logger.Info("Successfully applied delinquency signal", "signal_id", signal.SignalID.String())
	return nil
}
