package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/p2p-lending-ledger/internal/api_gateway/middleware"
	"github.com/p2p-lending-ledger/internal/api_gateway/service"
	"github.com/p2p-lending-ledger/internal/domain/account"
	"github.com/p2p-lending-ledger/internal/domain/ledger"
	"github.com/p2p-lending-ledger/internal/domain/shared"
)

// AccountHandler handles HTTP requests for wallet account operations
type AccountHandler struct {
	accountService service.AccountService
	logger         *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, accountService service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// Create handles creation of a new wallet account
func (h *AccountHandler) Create(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	acc, err := h.accountService.CreateAccount(c.Request.Context(), req.OwnerName, req.CreditScore)
	if err != nil {
		if errors.Is(err, account.ErrEmptyOwnerName) || errors.Is(err, account.ErrInvalidCreditScore) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to create account", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapAccountToResponse(acc))
}

// GetByID retrieves an account by its ID, returning 404 if not found
func (h *AccountHandler) GetByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, h.logger, "id", "account ID")
	if !ok {
		return
	}

	acc, err := h.accountService.GetAccountByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			RespondNotFound(c, "Account not found")
			return
		}
		h.logger.Error("Failed to get account", "id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// GetBalance returns the account's current balance
func (h *AccountHandler) GetBalance(c *gin.Context) {
	id, ok := parseUUIDParam(c, h.logger, "id", "account ID")
	if !ok {
		return
	}

	balance, err := h.accountService.GetBalance(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			RespondNotFound(c, "Account not found")
			return
		}
		h.logger.Error("Failed to get balance", "id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, BalanceResponse{AccountID: id.String(), Balance: balance})
}

// GetTransactions retrieves paginated transaction history for an account
func (h *AccountHandler) GetTransactions(c *gin.Context) {
	id, ok := parseUUIDParam(c, h.logger, "id", "account ID")
	if !ok {
		return
	}

	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	entries, total, err := h.accountService.GetTransactions(c.Request.Context(), id, params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to get transactions", "account_id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	response := TransactionListResponse{Transactions: make([]TransactionResponse, 0, len(entries))}
	for _, entry := range entries {
		response.Transactions = append(response.Transactions, mapEntryToResponse(entry))
	}

	RespondWithPaginatedData(c, 200, response, params.Page, params.PerPage, int(total))
}

// Deposit accepts a wallet top-up request for asynchronous processing
func (h *AccountHandler) Deposit(c *gin.Context) {
	h.requestPayment(c, shared.PaymentEventTypeDeposit)
}

// Withdraw accepts a wallet withdrawal request for asynchronous processing
func (h *AccountHandler) Withdraw(c *gin.Context) {
	h.requestPayment(c, shared.PaymentEventTypeWithdrawal)
}

func (h *AccountHandler) requestPayment(c *gin.Context, eventType shared.PaymentEventType) {
	id, ok := parseUUIDParam(c, h.logger, "id", "account ID")
	if !ok {
		return
	}

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	event, err := h.accountService.RequestPayment(c.Request.Context(), id, eventType, req.Amount, middleware.GetCorrelationID(c))
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			RespondNotFound(c, "Account not found")
			return
		}
		if errors.Is(err, account.ErrInvalidAmount) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to publish payment event", "account_id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondAccepted(c, PaymentEventResponse{
		EventID:   event.EventID.String(),
		AccountID: event.AccountID.String(),
		Type:      string(event.Type),
		Amount:    event.Amount,
		Status:    "PENDING",
	})
}

// Transfer moves funds from this account to another wallet synchronously
func (h *AccountHandler) Transfer(c *gin.Context) {
	senderID, ok := parseUUIDParam(c, h.logger, "id", "account ID")
	if !ok {
		return
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	receiverID, err := uuid.Parse(req.ReceiverAccountID)
	if err != nil {
		RespondBadRequest(c, "Invalid receiver account ID")
		return
	}

	group, err := h.accountService.Transfer(c.Request.Context(), senderID, receiverID, req.Amount, middleware.GetCorrelationID(c))
	if err != nil {
		var insufficient shared.ErrInsufficientFunds
		switch {
		case errors.Is(err, account.ErrAccountNotFound{}):
			RespondNotFound(c, "Account not found")
		case errors.Is(err, account.ErrSelfTransfer), errors.Is(err, account.ErrInvalidAmount):
			RespondBadRequest(c, err.Error())
		case errors.As(err, &insufficient):
			RespondUnprocessable(c, "INSUFFICIENT_FUNDS", insufficient.Error())
		default:
			h.logger.Error("Failed to transfer funds", "sender_id", senderID.String(), "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondCreated(c, TransferResponse{
		GroupID:           group.ID.String(),
		SenderAccountID:   senderID.String(),
		ReceiverAccountID: receiverID.String(),
		Amount:            req.Amount,
		Status:            "SETTLED",
	})
}

// parseUUIDParam parses a path parameter as a UUID, replying 400 on failure
func parseUUIDParam(c *gin.Context, logger *slog.Logger, param, label string) (uuid.UUID, bool) {
	raw := c.Param(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		logger.Error("Invalid "+label, param, raw, "error", err)
		RespondBadRequest(c, "Invalid "+label)
		return uuid.Nil, false
	}
	return id, true
}

// mapAccountToResponse maps an account entity to an account response DTO
func mapAccountToResponse(acc *account.Account) AccountResponse {
	return AccountResponse{
		ID:          acc.ID.String(),
		OwnerName:   acc.OwnerName,
		Kind:        string(acc.Kind),
		CreditScore: acc.CreditScore,
		Balance:     acc.Balance,
		CreatedAt:   acc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   acc.UpdatedAt.Format(time.RFC3339),
	}
}

// mapEntryToResponse maps a ledger entry to a transaction response DTO
func mapEntryToResponse(entry *ledger.Entry) TransactionResponse {
	resp := TransactionResponse{
		ID:             entry.ID.String(),
		GroupID:        entry.GroupID.String(),
		AccountID:      entry.AccountID.String(),
		Amount:         entry.Amount,
		Kind:           string(entry.Kind),
		SequenceNumber: entry.SequenceNumber,
		CreatedAt:      entry.CreatedAt.Format(time.RFC3339),
	}
	if entry.LoanID != nil {
		resp.LoanID = entry.LoanID.String()
	}
	return resp
}
