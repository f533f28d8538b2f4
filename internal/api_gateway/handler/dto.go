package handler

// CreateAccountRequest represents a request to create a new wallet account
type CreateAccountRequest struct {
	OwnerName   string `json:"owner_name" binding:"required"`
	CreditScore int    `json:"credit_score" binding:"required,min=300,max=900"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID          string `json:"id"`
	OwnerName   string `json:"owner_name"`
	Kind        string `json:"kind"`
	CreditScore int    `json:"credit_score"`
	Balance     int64  `json:"balance"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// BalanceResponse represents an account balance in API responses
type BalanceResponse struct {
	AccountID string `json:"account_id"`
	Balance   int64  `json:"balance"`
}

// PaymentRequest represents a wallet deposit or withdrawal request
type PaymentRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// TransferRequest represents a wallet-to-wallet transfer request
type TransferRequest struct {
	ReceiverAccountID string `json:"receiver_account_id" binding:"required,uuid"`
	Amount            int64  `json:"amount" binding:"required,gt=0"`
}

// TransferResponse represents a settled wallet-to-wallet transfer
type TransferResponse struct {
	GroupID           string `json:"group_id"`
	SenderAccountID   string `json:"sender_account_id"`
	ReceiverAccountID string `json:"receiver_account_id"`
	Amount            int64  `json:"amount"`
	Status            string `json:"status"`
}

// PaymentEventResponse acknowledges an accepted payment request
type PaymentEventResponse struct {
	EventID   string `json:"event_id"`
	AccountID string `json:"account_id"`
	Type      string `json:"type"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

// CreateLoanRequest represents a borrower's loan request
type CreateLoanRequest struct {
	BorrowerAccountID string `json:"borrower_account_id" binding:"required,uuid"`
	Principal         int64  `json:"principal" binding:"required,gt=0"`
	InterestRateBps   int    `json:"interest_rate_bps" binding:"required,gt=0"`
	TenureMonths      int    `json:"tenure_months" binding:"required,min=1"`
	Purpose           string `json:"purpose" binding:"required"`
}

// LoanResponse represents a loan state snapshot in API responses
type LoanResponse struct {
	ID                   string `json:"id"`
	BorrowerAccountID    string `json:"borrower_account_id"`
	EscrowAccountID      string `json:"escrow_account_id,omitempty"`
	Principal            int64  `json:"principal"`
	InterestRateBps      int    `json:"interest_rate_bps"`
	TenureMonths         int    `json:"tenure_months"`
	Purpose              string `json:"purpose"`
	CreditScoreAtRequest int    `json:"credit_score_at_request"`
	RiskLevel            string `json:"risk_level"`
	Status               string `json:"status"`
	FundedAmount         int64  `json:"funded_amount"`
	OutstandingPrincipal int64  `json:"outstanding_principal"`
	AccruedInterest      int64  `json:"accrued_interest"`
	EMIAmount            int64  `json:"emi_amount"`
	NextPaymentDueDate   string `json:"next_payment_due_date,omitempty"`
	MissedPayments       int    `json:"missed_payments"`
	CreatedAt            string `json:"created_at"`
	UpdatedAt            string `json:"updated_at"`
}

// InvestRequest represents a lender commitment against a loan
type InvestRequest struct {
	LenderAccountID string `json:"lender_account_id" binding:"required,uuid"`
	Amount          int64  `json:"amount" binding:"required,gt=0"`
}

// CommitmentResponse represents a funding commitment in API responses
type CommitmentResponse struct {
	ID              string `json:"id"`
	LoanID          string `json:"loan_id"`
	LenderAccountID string `json:"lender_account_id"`
	Amount          int64  `json:"amount"`
	CreatedAt       string `json:"created_at"`
}

// RepayRequest represents a borrower repayment against an active loan
type RepayRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// RepaymentResponse represents an applied repayment in API responses
type RepaymentResponse struct {
	ID                 string `json:"id"`
	LoanID             string `json:"loan_id"`
	Amount             int64  `json:"amount"`
	PrincipalComponent int64  `json:"principal_component"`
	InterestComponent  int64  `json:"interest_component"`
	AppliedAt          string `json:"applied_at"`
}

// DefaultRequest carries the scheduler-observed missed payment count
type DefaultRequest struct {
	MissedPayments int `json:"missed_payments" binding:"required,gt=0"`
}

// TransactionResponse represents an archived ledger entry in API responses
type TransactionResponse struct {
	ID             string `json:"id"`
	GroupID        string `json:"group_id"`
	AccountID      string `json:"account_id"`
	Amount         int64  `json:"amount"`
	Kind           string `json:"kind"`
	LoanID         string `json:"loan_id,omitempty"`
	SequenceNumber int64  `json:"sequence_number"`
	CreatedAt      string `json:"created_at"`
}

// TransactionListResponse represents a list of transactions in API responses
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

// OpportunityParams represents filters for the investment opportunity list
type OpportunityParams struct {
	RiskLevel string `form:"risk_level" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	MinAmount int64  `form:"min_amount" binding:"min=0"`
	MaxAmount int64  `form:"max_amount" binding:"min=0"`
	Page      int    `form:"page,default=1" binding:"min=1"`
	PerPage   int    `form:"per_page,default=10" binding:"min=1,max=100"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}
