package shared

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidPaymentEventType = errors.New("invalid payment event type")
)

// PaymentEventType defines the movements the external payment gateway reports
type PaymentEventType string

const (
	PaymentEventTypeDeposit    PaymentEventType = "DEPOSIT"
	PaymentEventTypeWithdrawal PaymentEventType = "WITHDRAWAL"
)

// PaymentEvent is the Kafka message the external payment gateway publishes
// when real money enters or leaves a wallet. EventID doubles as the ledger
// entry ID so replayed events are detected.
type PaymentEvent struct {
	EventID       uuid.UUID        `json:"event_id"`
	AccountID     uuid.UUID        `json:"account_id"`
	Type          PaymentEventType `json:"type"`
	Amount        int64            `json:"amount"` // Minor currency units
	CorrelationID string           `json:"correlation_id,omitempty"`
	Timestamp     time.Time        `json:"timestamp"`
}

// DelinquencySignal is the Kafka message the external scheduler publishes
// when a loan's repayment schedule has been evaluated. The engine only
// compares MissedPayments against the configured policy threshold; the
// schedule evaluation itself happens outside the core.
type DelinquencySignal struct {
	SignalID       uuid.UUID `json:"signal_id"`
	LoanID         uuid.UUID `json:"loan_id"`
	MissedPayments int       `json:"missed_payments"`
	AccruePeriod   bool      `json:"accrue_period"` // Advance one interest period before evaluating
	CorrelationID  string    `json:"correlation_id,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
