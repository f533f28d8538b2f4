package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/p2p-lending-ledger/internal/domain/shared"
	"github.com/p2p-lending-ledger/internal/loan_processor/service"
	"github.com/p2p-lending-ledger/internal/platform/messaging/producers"
)

// PaymentEventHandler handles incoming payment-gateway messages from Kafka
type PaymentEventHandler struct {
	paymentService service.PaymentService
	producer       producers.DeadLetterPublisher
	logger         *slog.Logger
}

// NewPaymentEventHandler creates a new handler
func NewPaymentEventHandler(
	logger *slog.Logger,
	paymentService service.PaymentService,
	producer producers.DeadLetterPublisher,
) *PaymentEventHandler {
	return &PaymentEventHandler{
		paymentService: paymentService,
		producer:       producer,
		logger:         logger,
	}
}

// HandleMessage processes Kafka messages
func (h *PaymentEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event shared.PaymentEvent
	if err := json.Unmarshal(value, &event); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal payment event from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		// Send to DLQ if available
		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
			} else {
				h.logger.Info("Published unprocessable payment event to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow Kafka retries
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Received payment event for processing",
		"event_id", event.EventID.String(),
		"account_id", event.AccountID.String(),
		"type", string(event.Type),
		"amount", event.Amount,
	)

	if err := h.paymentService.ApplyPaymentEvent(ctx, &event); err != nil {
		logger.Error("Failed to apply payment event",
			"event_id", event.EventID.String(),
			"account_id", event.AccountID.String(),
			"error", err,
		)
		return fmt.Errorf("applying payment event %s failed: %w", event.EventID.String(), err)
	}

	logger.Info("Successfully applied payment event", "event_id", event.EventID.String())
	return nil // Success, commit offset
}
