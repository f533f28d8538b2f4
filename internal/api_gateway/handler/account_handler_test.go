package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/p2p-lending-ledger/internal/api_gateway/service"
	"github.com/p2p-lending-ledger/internal/domain/account"
	"github.com/p2p-lending-ledger/internal/domain/ledger"
	"github.com/p2p-lending-ledger/internal/domain/shared"
)

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) CreateAccount(ctx context.Context, ownerName string, creditScore int) (*account.Account, error) {
	args := m.Called(ctx, ownerName, creditScore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountService) GetBalance(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountService) GetTransactions(ctx context.Context, accountID uuid.UUID, page, perPage int) ([]*ledger.Entry, int64, error) {
	args := m.Called(ctx, accountID, page, perPage)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*ledger.Entry), args.Get(1).(int64), args.Error(2)
}

func (m *MockAccountService) RequestPayment(ctx context.Context, accountID uuid.UUID, eventType shared.PaymentEventType, amount int64, correlationID string) (*shared.PaymentEvent, error) {
	args := m.Called(ctx, accountID, eventType, amount, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.PaymentEvent), args.Error(1)
}

func (m *MockAccountService) Transfer(ctx context.Context, senderID, receiverID uuid.UUID, amount int64, correlationID string) (*ledger.Group, error) {
	args := m.Called(ctx, senderID, receiverID, amount, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Group), args.Error(1)
}

var _ service.AccountService = (*MockAccountService)(nil)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	return r
}

// decodeData re-marshals the response "data" field into out
func decodeData(t *testing.T, body []byte, out interface{}) {
	t.Helper()
	var topLevel Response
	require.NoError(t, json.Unmarshal(body, &topLevel))
	require.NotNil(t, topLevel.Data, "'data' field should not be nil")
	dataBytes, err := json.Marshal(topLevel.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(dataBytes, out))
}

func decodeError(t *testing.T, body []byte) *ErrorInfo {
	t.Helper()
	var topLevel Response
	require.NoError(t, json.Unmarshal(body, &topLevel))
	require.NotNil(t, topLevel.Error, "Error field in response should not be nil")
	return topLevel.Error
}

func TestAccountHandler_Create(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		accountID := uuid.New()
		now := time.Now()
		expectedAccount := &account.Account{
			ID:          accountID,
			OwnerName:   "John Doe",
			Kind:        account.KindUser,
			CreditScore: 720,
			Balance:     0,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		mockService.On("CreateAccount", mock.Anything, "John Doe", 720).Return(expectedAccount, nil)

		router := setupTestRouter()
		router.POST("/accounts", handler.Create)

		reqBody := CreateAccountRequest{OwnerName: "John Doe", CreditScore: 720}
		jsonBody, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/accounts", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var responseBody AccountResponse
		decodeData(t, rr.Body.Bytes(), &responseBody)
		assert.Equal(t, expectedAccount.ID.String(), responseBody.ID)
		assert.Equal(t, expectedAccount.OwnerName, responseBody.OwnerName)
		assert.Equal(t, string(account.KindUser), responseBody.Kind)
		assert.Equal(t, expectedAccount.CreditScore, responseBody.CreditScore)
		assert.Equal(t, expectedAccount.Balance, responseBody.Balance)

		mockService.AssertExpectations(t)
	})

	t.Run("InvalidRequestBody", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		router := setupTestRouter()
		router.POST("/accounts", handler.Create)

		req, _ := http.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString(`{"invalid`)) // Malformed JSON
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("CreditScoreOutOfBindingRange", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		router := setupTestRouter()
		router.POST("/accounts", handler.Create)

		reqBody := CreateAccountRequest{OwnerName: "John Doe", CreditScore: 250}
		jsonBody, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/accounts", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ServiceError", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		mockService.On("CreateAccount", mock.Anything, "Jane Doe", 650).Return(nil, errors.New("service unavailable"))

		router := setupTestRouter()
		router.POST("/accounts", handler.Create)

		reqBody := CreateAccountRequest{OwnerName: "Jane Doe", CreditScore: 650}
		jsonBody, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/accounts", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestAccountHandler_GetByID(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		accountID := uuid.New()
		now := time.Now()
		expectedAccount := &account.Account{
			ID:          accountID,
			OwnerName:   "Alice Wonderland",
			Kind:        account.KindUser,
			CreditScore: 810,
			Balance:     int64(20000),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		mockService.On("GetAccountByID", mock.Anything, accountID).Return(expectedAccount, nil)

		router := setupTestRouter()
		router.GET("/accounts/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/accounts/"+accountID.String(), nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var responseBody AccountResponse
		decodeData(t, rr.Body.Bytes(), &responseBody)
		assert.Equal(t, expectedAccount.ID.String(), responseBody.ID)
		assert.Equal(t, expectedAccount.OwnerName, responseBody.OwnerName)
		assert.Equal(t, expectedAccount.Balance, responseBody.Balance)

		mockService.AssertExpectations(t)
	})

	t.Run("InvalidUUID", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		router := setupTestRouter()
		router.GET("/accounts/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/accounts/not-a-uuid", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("AccountNotFound", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		accountID := uuid.New()
		mockService.On("GetAccountByID", mock.Anything, accountID).Return(nil, account.ErrAccountNotFound{AccountID: accountID})

		router := setupTestRouter()
		router.GET("/accounts/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/accounts/"+accountID.String(), nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestAccountHandler_GetBalance(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		accountID := uuid.New()
		mockService.On("GetBalance", mock.Anything, accountID).Return(int64(150000), nil)

		router := setupTestRouter()
		router.GET("/accounts/:id/balance", handler.GetBalance)

		req, _ := http.NewRequest(http.MethodGet, "/accounts/"+accountID.String()+"/balance", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var responseBody BalanceResponse
		decodeData(t, rr.Body.Bytes(), &responseBody)
		assert.Equal(t, accountID.String(), responseBody.AccountID)
		assert.Equal(t, int64(150000), responseBody.Balance)

		mockService.AssertExpectations(t)
	})

	t.Run("AccountNotFound", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		accountID := uuid.New()
		mockService.On("GetBalance", mock.Anything, accountID).Return(int64(0), account.ErrAccountNotFound{AccountID: accountID})

		router := setupTestRouter()
		router.GET("/accounts/:id/balance", handler.GetBalance)

		req, _ := http.NewRequest(http.MethodGet, "/accounts/"+accountID.String()+"/balance", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestAccountHandler_GetTransactions(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		accountID := uuid.New()
		loanID := uuid.New()
		entries := []*ledger.Entry{
			{
				ID:             uuid.New(),
				GroupID:        uuid.New(),
				AccountID:      accountID,
				Amount:         int64(5000),
				Kind:           ledger.KindDeposit,
				SequenceNumber: 1,
				CreatedAt:      time.Now(),
			},
			{
				ID:             uuid.New(),
				GroupID:        uuid.New(),
				AccountID:      accountID,
				Amount:         int64(-2000),
				Kind:           ledger.KindFundingCommitment,
				LoanID:         &loanID,
				SequenceNumber: 2,
				CreatedAt:      time.Now(),
			},
		}
		mockService.On("GetTransactions", mock.Anything, accountID, 1, 10).Return(entries, int64(2), nil)

		router := setupTestRouter()
		router.GET("/accounts/:id/transactions", handler.GetTransactions)

		req, _ := http.NewRequest(http.MethodGet, "/accounts/"+accountID.String()+"/transactions", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var topLevel Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &topLevel))
		require.NotNil(t, topLevel.Meta)
		assert.Equal(t, 1, topLevel.Meta.Page)
		assert.Equal(t, 2, topLevel.Meta.TotalItems)

		var responseBody TransactionListResponse
		decodeData(t, rr.Body.Bytes(), &responseBody)
		require.Len(t, responseBody.Transactions, 2)
		assert.Equal(t, entries[0].ID.String(), responseBody.Transactions[0].ID)
		assert.Equal(t, string(ledger.KindDeposit), responseBody.Transactions[0].Kind)
		assert.Empty(t, responseBody.Transactions[0].LoanID)
		assert.Equal(t, loanID.String(), responseBody.Transactions[1].LoanID)

		mockService.AssertExpectations(t)
	})

	t.Run("ExplicitPagination", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		accountID := uuid.New()
		mockService.On("GetTransactions", mock.Anything, accountID, 3, 25).Return([]*ledger.Entry{}, int64(60), nil)

		router := setupTestRouter()
		router.GET("/accounts/:id/transactions", handler.GetTransactions)

		req, _ := http.NewRequest(http.MethodGet, "/accounts/"+accountID.String()+"/transactions?page=3&per_page=25", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("ServiceError", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		accountID := uuid.New()
		mockService.On("GetTransactions", mock.Anything, accountID, 1, 10).Return(nil, int64(0), errors.New("archive unavailable"))

		router := setupTestRouter()
		router.GET("/accounts/:id/transactions", handler.GetTransactions)

		req, _ := http.NewRequest(http.MethodGet, "/accounts/"+accountID.String()+"/transactions", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestAccountHandler_Payments(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("DepositAccepted", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		accountID := uuid.New()
		event := &shared.PaymentEvent{
			EventID:   uuid.New(),
			AccountID: accountID,
			Type:      shared.PaymentEventTypeDeposit,
			Amount:    int64(5000),
		}
		mockService.On("RequestPayment", mock.Anything, accountID, shared.PaymentEventTypeDeposit, int64(5000), mock.Anything).Return(event, nil)

		router := setupTestRouter()
		router.POST("/accounts/:id/deposit", handler.Deposit)

		jsonBody, _ := json.Marshal(PaymentRequest{Amount: 5000})
		req, _ := http.NewRequest(http.MethodPost, "/accounts/"+accountID.String()+"/deposit", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusAccepted, rr.Code)

		var responseBody PaymentEventResponse
		decodeData(t, rr.Body.Bytes(), &responseBody)
		assert.Equal(t, event.EventID.String(), responseBody.EventID)
		assert.Equal(t, "DEPOSIT", responseBody.Type)
		assert.Equal(t, "PENDING", responseBody.Status)

		mockService.AssertExpectations(t)
	})

	t.Run("WithdrawalAccepted", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		accountID := uuid.New()
		event := &shared.PaymentEvent{
			EventID:   uuid.New(),
			AccountID: accountID,
			Type:      shared.PaymentEventTypeWithdrawal,
			Amount:    int64(3000),
		}
		mockService.On("RequestPayment", mock.Anything, accountID, shared.PaymentEventTypeWithdrawal, int64(3000), mock.Anything).Return(event, nil)

		router := setupTestRouter()
		router.POST("/accounts/:id/withdraw", handler.Withdraw)

		jsonBody, _ := json.Marshal(PaymentRequest{Amount: 3000})
		req, _ := http.NewRequest(http.MethodPost, "/accounts/"+accountID.String()+"/withdraw", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusAccepted, rr.Code)

		var responseBody PaymentEventResponse
		decodeData(t, rr.Body.Bytes(), &responseBody)
		assert.Equal(t, "WITHDRAWAL", responseBody.Type)

		mockService.AssertExpectations(t)
	})

	t.Run("NonPositiveAmountRejected", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		accountID := uuid.New()

		router := setupTestRouter()
		router.POST("/accounts/:id/deposit", handler.Deposit)

		jsonBody, _ := json.Marshal(PaymentRequest{Amount: -100})
		req, _ := http.NewRequest(http.MethodPost, "/accounts/"+accountID.String()+"/deposit", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "RequestPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("UnknownAccount", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		accountID := uuid.New()
		mockService.On("RequestPayment", mock.Anything, accountID, shared.PaymentEventTypeDeposit, int64(5000), mock.Anything).
			Return(nil, account.ErrAccountNotFound{AccountID: accountID})

		router := setupTestRouter()
		router.POST("/accounts/:id/deposit", handler.Deposit)

		jsonBody, _ := json.Marshal(PaymentRequest{Amount: 5000})
		req, _ := http.NewRequest(http.MethodPost, "/accounts/"+accountID.String()+"/deposit", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("PublishFailure", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		accountID := uuid.New()
		mockService.On("RequestPayment", mock.Anything, accountID, shared.PaymentEventTypeWithdrawal, int64(3000), mock.Anything).
			Return(nil, errors.New("broker unreachable"))

		router := setupTestRouter()
		router.POST("/accounts/:id/withdraw", handler.Withdraw)

		jsonBody, _ := json.Marshal(PaymentRequest{Amount: 3000})
		req, _ := http.NewRequest(http.MethodPost, "/accounts/"+accountID.String()+"/withdraw", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestAccountHandler_Transfer(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Settled", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		senderID := uuid.New()
		receiverID := uuid.New()
		group, err := ledger.NewGroup("corr-1",
			ledger.Entry{AccountID: senderID, Amount: -2500, Kind: ledger.KindTransfer},
			ledger.Entry{AccountID: receiverID, Amount: 2500, Kind: ledger.KindTransfer},
		)
		require.NoError(t, err)
		mockService.On("Transfer", mock.Anything, senderID, receiverID, int64(2500), mock.Anything).Return(group, nil)

		router := setupTestRouter()
		router.POST("/accounts/:id/transfer", handler.Transfer)

		jsonBody, _ := json.Marshal(TransferRequest{ReceiverAccountID: receiverID.String(), Amount: 2500})
		req, _ := http.NewRequest(http.MethodPost, "/accounts/"+senderID.String()+"/transfer", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var responseBody TransferResponse
		decodeData(t, rr.Body.Bytes(), &responseBody)
		assert.Equal(t, group.ID.String(), responseBody.GroupID)
		assert.Equal(t, senderID.String(), responseBody.SenderAccountID)
		assert.Equal(t, receiverID.String(), responseBody.ReceiverAccountID)
		assert.Equal(t, int64(2500), responseBody.Amount)
		assert.Equal(t, "SETTLED", responseBody.Status)

		mockService.AssertExpectations(t)
	})

	t.Run("InsufficientFunds", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		senderID := uuid.New()
		receiverID := uuid.New()
		mockService.On("Transfer", mock.Anything, senderID, receiverID, int64(9999), mock.Anything).
			Return(nil, shared.ErrInsufficientFunds{AccountID: senderID})

		router := setupTestRouter()
		router.POST("/accounts/:id/transfer", handler.Transfer)

		jsonBody, _ := json.Marshal(TransferRequest{ReceiverAccountID: receiverID.String(), Amount: 9999})
		req, _ := http.NewRequest(http.MethodPost, "/accounts/"+senderID.String()+"/transfer", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		errorInfo := decodeError(t, rr.Body.Bytes())
		assert.Equal(t, "INSUFFICIENT_FUNDS", errorInfo.Code)

		mockService.AssertExpectations(t)
	})

	t.Run("UnknownReceiver", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		senderID := uuid.New()
		receiverID := uuid.New()
		mockService.On("Transfer", mock.Anything, senderID, receiverID, int64(1000), mock.Anything).
			Return(nil, account.ErrAccountNotFound{AccountID: receiverID})

		router := setupTestRouter()
		router.POST("/accounts/:id/transfer", handler.Transfer)

		jsonBody, _ := json.Marshal(TransferRequest{ReceiverAccountID: receiverID.String(), Amount: 1000})
		req, _ := http.NewRequest(http.MethodPost, "/accounts/"+senderID.String()+"/transfer", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("SelfTransferRejected", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		senderID := uuid.New()
		mockService.On("Transfer", mock.Anything, senderID, senderID, int64(1000), mock.Anything).
			Return(nil, account.ErrSelfTransfer)

		router := setupTestRouter()
		router.POST("/accounts/:id/transfer", handler.Transfer)

		jsonBody, _ := json.Marshal(TransferRequest{ReceiverAccountID: senderID.String(), Amount: 1000})
		req, _ := http.NewRequest(http.MethodPost, "/accounts/"+senderID.String()+"/transfer", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidReceiverID", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		senderID := uuid.New()

		router := setupTestRouter()
		router.POST("/accounts/:id/transfer", handler.Transfer)

		jsonBody := []byte(`{"receiver_account_id": "not-a-uuid", "amount": 1000}`)
		req, _ := http.NewRequest(http.MethodPost, "/accounts/"+senderID.String()+"/transfer", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
