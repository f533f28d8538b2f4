package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/p2p-lending-ledger/internal/domain/loan"
	"github.com/p2p-lending-ledger/internal/domain/shared"
)

type MockDelinquencyService struct {
	mock.Mock
}

func (m *MockDelinquencyService) ApplyDelinquencySignal(ctx context.Context, signal *shared.DelinquencySignal) error {
	args := m.Called(ctx, signal)
	return args.Error(0)
}

func TestDelinquencyEventHandler_HandleMessage(t *testing.T) {
	signal := &shared.DelinquencySignal{
		SignalID:       uuid.New(),
		LoanID:         uuid.New(),
		MissedPayments: 3,
		AccruePeriod:   true,
		Timestamp:      time.Now().UTC(),
	}
	value, err := json.Marshal(signal)
	require.NoError(t, err)
	key := []byte(signal.LoanID.String())

	t.Run("SuccessfulProcessing", func(t *testing.T) {
		delinquencyService := &MockDelinquencyService{}
		handler := NewDelinquencyEventHandler(slog.Default(), delinquencyService, nil)

		delinquencyService.On("ApplyDelinquencySignal", mock.Anything, mock.MatchedBy(func(s *shared.DelinquencySignal) bool {
			return s.SignalID == signal.SignalID && s.MissedPayments == 3
		})).Return(nil).Once()

		err := handler.HandleMessage(context.Background(), key, value)

		require.NoError(t, err)
		delinquencyService.AssertExpectations(t)
	})

	t.Run("UnknownLoanDroppedToDLQ", func(t *testing.T) {
		delinquencyService := &MockDelinquencyService{}
		dlq := &MockDeadLetterPublisher{}
		handler := NewDelinquencyEventHandler(slog.Default(), delinquencyService, dlq)

		delinquencyService.On("ApplyDelinquencySignal", mock.Anything, mock.Anything).
			Return(loan.ErrLoanNotFound{LoanID: signal.LoanID}).Once()
		dlq.On("PublishToDLQ", mock.Anything, string(key), value, "loan not found").Return(nil).Once()

		err := handler.HandleMessage(context.Background(), key, value)

		assert.NoError(t, err, "a signal for an unknown loan is not retried")
		dlq.AssertExpectations(t)
	})

	t.Run("TransientFailureReturnsError", func(t *testing.T) {
		delinquencyService := &MockDelinquencyService{}
		handler := NewDelinquencyEventHandler(slog.Default(), delinquencyService, nil)

		delinquencyService.On("ApplyDelinquencySignal", mock.Anything, mock.Anything).
			Return(errors.New("connection refused")).Once()

		err := handler.HandleMessage(context.Background(), key, value)

		assert.Error(t, err)
	})

	t.Run("MalformedMessageGoesToDLQ", func(t *testing.T) {
		delinquencyService := &MockDelinquencyService{}
		dlq := &MockDeadLetterPublisher{}
		handler := NewDelinquencyEventHandler(slog.Default(), delinquencyService, dlq)

		raw := []byte("garbage")
		dlq.On("PublishToDLQ", mock.Anything, "k", raw, mock.Anything).Return(nil).Once()

		err := handler.HandleMessage(context.Background(), []byte("k"), raw)

		assert.NoError(t, err)
		delinquencyService.AssertNotCalled(t, "ApplyDelinquencySignal", mock.Anything, mock.Anything)
	})
}
