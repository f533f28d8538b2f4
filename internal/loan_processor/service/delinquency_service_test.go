package service

import (
	"context"
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

type MockLifecycleManager struct {
	mock.Mock
}

func (m *MockLifecycleManager) CreateLoanRequest(ctx context.Context, borrowerAccountID uuid.UUID, principal int64, interestRateBps, tenureMonths int, purpose string) (*loan.Loan, error) {
	args := m.Called(ctx, borrowerAccountID, principal, interestRateBps, tenureMonths, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.Loan), args.Error(1)
}

func (m *MockLifecycleManager) Disburse(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.Loan), args.Error(1)
}

func (m *MockLifecycleManager) Cancel(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.Loan), args.Error(1)
}

func (m *MockLifecycleManager) AccrueInterest(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.Loan), args.Error(1)
}

func (m *MockLifecycleManager) MarkDefaulted(ctx context.Context, loanID uuid.UUID, missedPayments int) (*loan.Loan, error) {
	args := m.Called(ctx, loanID, missedPayments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.Loan), args.Error(1)
}

func (m *MockLifecycleManager) GetLoan(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.Loan), args.Error(1)
}

func testSignal(missed int, accrue bool) *shared.DelinquencySignal {
	return &shared.DelinquencySignal{
		SignalID:       uuid.New(),
		LoanID:         uuid.New(),
		MissedPayments: missed,
		AccruePeriod:   accrue,
		CorrelationID:  "corr-2",
		Timestamp:      time.Now(),
	}
}

func TestDelinquencyService_ApplyDelinquencySignal(t *testing.T) {
	activeLoan := &loan.Loan{ID: uuid.New(), Status: loan.StatusActive}
	defaultedLoan := &loan.Loan{ID: uuid.New(), Status: loan.StatusDefaulted}

	t.Run("AccrualThenDefaultEvaluation", func(t *testing.T) {
		lifecycle := &MockLifecycleManager{}
		svc := NewDelinquencyService(slog.Default(), lifecycle)
		signal := testSignal(3, true)

		lifecycle.On("AccrueInterest", mock.Anything, signal.LoanID).Return(activeLoan, nil).Once()
		lifecycle.On("MarkDefaulted", mock.Anything, signal.LoanID, 3).Return(defaultedLoan, nil).Once()

		err := svc.ApplyDelinquencySignal(context.Background(), signal)

		require.NoError(t, err)
		lifecycle.AssertExpectations(t)
	})

	t.Run("NoAccrualSkipsInterestPeriod", func(t *testing.T) {
		lifecycle := &MockLifecycleManager{}
		svc := NewDelinquencyService(slog.Default(), lifecycle)
		signal := testSignal(1, false)

		lifecycle.On("MarkDefaulted", mock.Anything, signal.LoanID, 1).Return(activeLoan, nil).Once()

		err := svc.ApplyDelinquencySignal(context.Background(), signal)

		require.NoError(t, err)
		lifecycle.AssertNotCalled(t, "AccrueInterest", mock.Anything, mock.Anything)
	})

	t.Run("UnknownLoanPropagates", func(t *testing.T) {
		lifecycle := &MockLifecycleManager{}
		svc := NewDelinquencyService(slog.Default(), lifecycle)
		signal := testSignal(3, false)

		lifecycle.On("MarkDefaulted", mock.Anything, signal.LoanID, 3).
			Return(nil, loan.ErrLoanNotFound{LoanID: signal.LoanID}).Once()

		err := svc.ApplyDelinquencySignal(context.Background(), signal)

		assert.ErrorIs(t, err, loan.ErrLoanNotFound{})
	})
}
