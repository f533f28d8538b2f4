package handler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/p2p-lending-ledger/internal/api_gateway/service"
	"github.com/p2p-lending-ledger/internal/domain/account"
	"github.com/p2p-lending-ledger/internal/domain/funding"
	"github.com/p2p-lending-ledger/internal/domain/loan"
	"github.com/p2p-lending-ledger/internal/domain/repayment"
	"github.com/p2p-lending-ledger/internal/domain/shared"
)

// LoanHandler handles HTTP requests for loan lifecycle, funding and
// repayment operations.
type LoanHandler struct {
	loanService service.LoanService
	logger      *slog.Logger
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(logger *slog.Logger, loanService service.LoanService) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
		logger:      logger,
	}
}

// Create handles a borrower's loan request. A risk-gate denial still
// records the rejected snapshot; the response carries the denial reason.
func (h *LoanHandler) Create(c *gin.Context) {
	var req CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	borrowerID, err := uuid.Parse(req.BorrowerAccountID)
	if err != nil {
		RespondBadRequest(c, "Invalid borrower account ID")
		return
	}

	l, err := h.loanService.CreateLoan(c.Request.Context(), borrowerID, req.Principal, req.InterestRateBps, req.TenureMonths, req.Purpose)
	if err != nil {
		var denied shared.ErrDenied
		if errors.As(err, &denied) {
			RespondUnprocessable(c, string(denied.Reason), denialMessage(l, denied))
			return
		}
		if errors.Is(err, account.ErrAccountNotFound{}) {
			RespondNotFound(c, "Borrower account not found")
			return
		}
		if errors.Is(err, loan.ErrInvalidPrincipal) || errors.Is(err, loan.ErrInvalidRate) ||
			errors.Is(err, loan.ErrInvalidTenure) || errors.Is(err, loan.ErrEmptyPurpose) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to create loan request", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapLoanToResponse(l))
}

// GetByID retrieves a loan state snapshot
func (h *LoanHandler) GetByID(c *gin.Context) {
	loanID, ok := parseUUIDParam(c, h.logger, "id", "loan ID")
	if !ok {
		return
	}

	l, err := h.loanService.GetLoan(c.Request.Context(), loanID)
	if err != nil {
		h.respondLoanError(c, loanID, err)
		return
	}

	RespondOK(c, mapLoanToResponse(l))
}

// Invest commits lender funds against a loan in the funding state
func (h *LoanHandler) Invest(c *gin.Context) {
	loanID, ok := parseUUIDParam(c, h.logger, "id", "loan ID")
	if !ok {
		return
	}

	var req InvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	lenderID, err := uuid.Parse(req.LenderAccountID)
	if err != nil {
		RespondBadRequest(c, "Invalid lender account ID")
		return
	}

	commitment, err := h.loanService.Invest(c.Request.Context(), loanID, lenderID, req.Amount)
	if err != nil {
		h.respondLoanError(c, loanID, err)
		return
	}

	RespondCreated(c, mapCommitmentToResponse(commitment))
}

// Repay applies a borrower repayment to an active loan
func (h *LoanHandler) Repay(c *gin.Context) {
	loanID, ok := parseUUIDParam(c, h.logger, "id", "loan ID")
	if !ok {
		return
	}

	var req RepayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	event, err := h.loanService.Repay(c.Request.Context(), loanID, req.Amount)
	if err != nil {
		if errors.Is(err, repayment.ErrInvalidAmount) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.respondLoanError(c, loanID, err)
		return
	}

	RespondOK(c, mapRepaymentToResponse(event))
}

// Disburse moves a fully funded loan into active repayment
func (h *LoanHandler) Disburse(c *gin.Context) {
	h.transition(c, h.loanService.Disburse)
}

// Cancel withdraws a loan still gathering commitments and refunds lenders
func (h *LoanHandler) Cancel(c *gin.Context) {
	h.transition(c, h.loanService.Cancel)
}

// Accrue advances one interest period on an active loan (scheduler hook)
func (h *LoanHandler) Accrue(c *gin.Context) {
	h.transition(c, h.loanService.Accrue)
}

// MarkDefaulted evaluates an active loan against the default policy
func (h *LoanHandler) MarkDefaulted(c *gin.Context) {
	loanID, ok := parseUUIDParam(c, h.logger, "id", "loan ID")
	if !ok {
		return
	}

	var req DefaultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	l, err := h.loanService.MarkDefaulted(c.Request.Context(), loanID, req.MissedPayments)
	if err != nil {
		h.respondLoanError(c, loanID, err)
		return
	}

	RespondOK(c, mapLoanToResponse(l))
}

// Opportunities lists loans open for investment
func (h *LoanHandler) Opportunities(c *gin.Context) {
	var params OpportunityParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	loans, err := h.loanService.Opportunities(c.Request.Context(), loan.RiskLevel(params.RiskLevel), params.MinAmount, params.MaxAmount, params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to list opportunities", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapLoansToResponse(loans))
}

// ListByBorrower lists a borrower's loans (query param borrower=<uuid>)
func (h *LoanHandler) ListByBorrower(c *gin.Context) {
	borrowerParam := c.Query("borrower")
	borrowerID, err := uuid.Parse(borrowerParam)
	if err != nil {
		RespondBadRequest(c, "Invalid or missing borrower account ID")
		return
	}

	loans, err := h.loanService.LoansByBorrower(c.Request.Context(), borrowerID)
	if err != nil {
		h.logger.Error("Failed to list borrower loans", "borrower_account_id", borrowerParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapLoansToResponse(loans))
}

// ListInvestments lists a lender's commitments (query param lender=<uuid>)
func (h *LoanHandler) ListInvestments(c *gin.Context) {
	lenderParam := c.Query("lender")
	lenderID, err := uuid.Parse(lenderParam)
	if err != nil {
		RespondBadRequest(c, "Invalid or missing lender account ID")
		return
	}

	commitments, err := h.loanService.InvestmentsByLender(c.Request.Context(), lenderID)
	if err != nil {
		h.logger.Error("Failed to list investments", "lender_account_id", lenderParam, "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]CommitmentResponse, 0, len(commitments))
	for _, commitment := range commitments {
		responses = append(responses, mapCommitmentToResponse(commitment))
	}
	RespondOK(c, responses)
}

func (h *LoanHandler) respondLoanError(c *gin.Context, loanID uuid.UUID, err error) {
	var invalidState shared.ErrInvalidState
	var overfund shared.ErrOverfund
	var overpayment shared.ErrOverpayment
	var insufficient shared.ErrInsufficientFunds

	switch {
	case errors.Is(err, loan.ErrLoanNotFound{}):
		RespondNotFound(c, "Loan not found")
	case errors.Is(err, account.ErrAccountNotFound{}):
		RespondNotFound(c, "Account not found")
	case errors.As(err, &invalidState):
		RespondConflict(c, "INVALID_STATE", invalidState.Error())
	case errors.As(err, &overfund):
		RespondUnprocessable(c, "OVERFUND", overfund.Error())
	case errors.As(err, &overpayment):
		RespondUnprocessable(c, "OVERPAYMENT", overpayment.Error())
	case errors.As(err, &insufficient):
		RespondUnprocessable(c, "INSUFFICIENT_FUNDS", insufficient.Error())
	default:
		h.logger.Error("Loan operation failed", "loan_id", loanID.String(), "error", err)
		RespondInternalError(c)
	}
}

func denialMessage(l *loan.Loan, denied shared.ErrDenied) string {
	msg := "loan request denied: " + string(denied.Reason)
	if l != nil {
		msg += " (recorded as " + l.ID.String() + ")"
	}
	return msg
}

// mapLoanToResponse maps a loan entity to a loan response DTO
func mapLoanToResponse(l *loan.Loan) LoanResponse {
	resp := LoanResponse{
		ID:                   l.ID.String(),
		BorrowerAccountID:    l.BorrowerAccountID.String(),
		Principal:            l.Principal,
		InterestRateBps:      l.InterestRateBps,
		TenureMonths:         l.TenureMonths,
		Purpose:              l.Purpose,
		CreditScoreAtRequest: l.CreditScoreAtRequest,
		RiskLevel:            string(loan.RiskLevelFor(l.CreditScoreAtRequest)),
		Status:               string(l.Status),
		FundedAmount:         l.FundedAmount,
		OutstandingPrincipal: l.OutstandingPrincipal,
		AccruedInterest:      l.AccruedInterest,
		EMIAmount:            l.EMIAmount,
		MissedPayments:       l.MissedPayments,
		CreatedAt:            l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            l.UpdatedAt.Format(time.RFC3339),
	}
	if l.EscrowAccountID != uuid.Nil {
		resp.EscrowAccountID = l.EscrowAccountID.String()
	}
	if !l.NextPaymentDueDate.IsZero() {
		resp.NextPaymentDueDate = l.NextPaymentDueDate.Format(time.RFC3339)
	}
	return resp
}

func mapLoansToResponse(loans []*loan.Loan) []LoanResponse {
	responses := make([]LoanResponse, 0, len(loans))
	for _, l := range loans {
		responses = append(responses, mapLoanToResponse(l))
	}
	return responses
}

// mapCommitmentToResponse maps a commitment entity to its response DTO
func mapCommitmentToResponse(commitment *funding.Commitment) CommitmentResponse {
	return CommitmentResponse{
		ID:              commitment.ID.String(),
		LoanID:          commitment.LoanID.String(),
		LenderAccountID: commitment.LenderAccountID.String(),
		Amount:          commitment.Amount,
		CreatedAt:       commitment.CreatedAt.Format(time.RFC3339),
	}
}

// mapRepaymentToResponse maps a repayment event to its response DTO
func mapRepaymentToResponse(event *repayment.Event) RepaymentResponse {
	return RepaymentResponse{
		ID:                 event.ID.String(),
		LoanID:             event.LoanID.String(),
		Amount:             event.Amount,
		PrincipalComponent: event.PrincipalComponent,
		InterestComponent:  event.InterestComponent,
		AppliedAt:          event.AppliedAt.Format(time.RFC3339),
	}
}

// transition runs a bodyless loan transition endpoint
func (h *LoanHandler) transition(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*loan.Loan, error)) {
	loanID, ok := parseUUIDParam(c, h.logger, "id", "loan ID")
	if !ok {
		return
	}

	l, err := op(c.Request.Context(), loanID)
	if err != nil {
		h.respondLoanError(c, loanID, err)
		return
	}

	RespondOK(c, mapLoanToResponse(l))
}
