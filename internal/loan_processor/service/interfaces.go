package service

import (
	"context"

	"github.com/p2p-lending-ledger/internal/domain/shared"
)

// PaymentService applies payment-gateway events to the ledger.
type PaymentService interface {
	ApplyPaymentEvent(ctx context.Context, event *shared.PaymentEvent) error
}

// DelinquencyService applies scheduler delinquency signals to loans.
type DelinquencyService interface {
	ApplyDelinquencySignal(ctx context.Context, signal *shared.DelinquencySignal) error
}
