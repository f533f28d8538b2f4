package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/p2p-lending-ledger/internal/domain/account"
	"github.com/p2p-lending-ledger/internal/domain/ledger"
	"github.com/p2p-lending-ledger/internal/domain/shared"
	"github.com/p2p-lending-ledger/internal/lending"
	"github.com/p2p-lending-ledger/internal/platform/messaging/producers"
)

// AccountServiceImpl implements the AccountService interface
type AccountServiceImpl struct {
	accountRepo     account.Repository
	ledgerStore     lending.LedgerStore
	history         ledger.History
	paymentProducer producers.MessagePublisher
}

// NewAccountService creates a new account service
func NewAccountService(
	accountRepo account.Repository,
	ledgerStore lending.LedgerStore,
	history ledger.History,
	paymentProducer producers.MessagePublisher,
) AccountService {
	return &AccountServiceImpl{
		accountRepo:     accountRepo,
		ledgerStore:     ledgerStore,
		history:         history,
		paymentProducer: paymentProducer,
	}
}

// CreateAccount creates a new wallet account with the given credit score
func (s *AccountServiceImpl) CreateAccount(ctx context.Context, ownerName string, creditScore int) (*account.Account, error) {
	acc, err := account.NewAccount(ownerName, creditScore)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.Create(ctx, acc); err != nil {
		return nil, err
	}

	return acc, nil
}

// GetAccountByID retrieves an account by its ID, returns ErrAccountNotFound if not found
func (s *AccountServiceImpl) GetAccountByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return s.accountRepo.GetByID(ctx, id)
}

// GetBalance returns the account's current balance
func (s *AccountServiceImpl) GetBalance(ctx context.Context, id uuid.UUID) (int64, error) {
	return s.ledgerStore.GetBalance(ctx, id)
}

// GetTransactions retrieves a page of the account's archived ledger entries
func (s *AccountServiceImpl) GetTransactions(ctx context.Context, accountID uuid.UUID, page, perPage int) ([]*ledger.Entry, int64, error) {
	offset := (page - 1) * perPage

	entries, err := s.history.GetByAccountID(ctx, accountID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.history.CountByAccountID(ctx, accountID)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// RequestPayment publishes a deposit or withdrawal event to the payment
// topic. The loan processor applies it to the ledger; the event ID lets the
// caller correlate the eventual entry.
func (s *AccountServiceImpl) RequestPayment(ctx context.Context, accountID uuid.UUID, eventType shared.PaymentEventType, amount int64, correlationID string) (*shared.PaymentEvent, error) {
	if amount <= 0 {
		return nil, account.ErrInvalidAmount
	}
	if eventType != shared.PaymentEventTypeDeposit && eventType != shared.PaymentEventTypeWithdrawal {
		return nil, shared.ErrInvalidPaymentEventType
	}

	// Reject events for unknown accounts up front
	if _, err := s.accountRepo.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	event := &shared.PaymentEvent{
		EventID:       uuid.New(),
		AccountID:     accountID,
		Type:          eventType,
		Amount:        amount,
		CorrelationID: correlationID,
		Timestamp:     time.Now().UTC(),
	}

	if err := s.paymentProducer.Publish(ctx, accountID.String(), event); err != nil {
		return nil, err
	}

	return event, nil
}

// Transfer moves funds from one wallet to another as a single atomic
// debit/credit group. Unlike deposits and withdrawals it settles
// synchronously: the caller gets the committed entries or the error.
func (s *AccountServiceImpl) Transfer(ctx context.Context, senderID, receiverID uuid.UUID, amount int64, correlationID string) (*ledger.Group, error) {
	if amount <= 0 {
		return nil, account.ErrInvalidAmount
	}
	if senderID == receiverID {
		return nil, account.ErrSelfTransfer
	}

	// Resolve both sides up front so an unknown receiver surfaces as
	// not-found rather than a failed posting.
	if _, err := s.accountRepo.GetByID(ctx, senderID); err != nil {
		return nil, err
	}
	if _, err := s.accountRepo.GetByID(ctx, receiverID); err != nil {
		return nil, err
	}

	group, err := ledger.NewGroup(correlationID,
		ledger.Entry{AccountID: senderID, Amount: -amount, Kind: ledger.KindTransfer},
		ledger.Entry{AccountID: receiverID, Amount: amount, Kind: ledger.KindTransfer},
	)
	if err != nil {
		return nil, err
	}

	if err := s.ledgerStore.PostEntries(ctx, group); err != nil {
		return nil, err
	}

	return group, nil
}
