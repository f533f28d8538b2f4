package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/p2p-lending-ledger/internal/domain/funding"
	"github.com/p2p-lending-ledger/internal/domain/loan"
	"github.com/p2p-lending-ledger/internal/domain/repayment"
	"github.com/p2p-lending-ledger/internal/lending"
)

// LoanServiceImpl implements the LoanService interface by delegating to the
// lending engine components and the query repositories.
type LoanServiceImpl struct {
	lifecycle   lending.LifecycleManager
	matcher     lending.FundingMatcher
	repayments  lending.RepaymentProcessor
	loanRepo    loan.Repository
	fundingRepo funding.Repository
}

// NewLoanService creates a new loan service
func NewLoanService(
	lifecycle lending.LifecycleManager,
	matcher lending.FundingMatcher,
	repayments lending.RepaymentProcessor,
	loanRepo loan.Repository,
	fundingRepo funding.Repository,
) LoanService {
	return &LoanServiceImpl{
		lifecycle:   lifecycle,
		matcher:     matcher,
		repayments:  repayments,
		loanRepo:    loanRepo,
		fundingRepo: fundingRepo,
	}
}

func (s *LoanServiceImpl) CreateLoan(ctx context.Context, borrowerAccountID uuid.UUID, principal int64, interestRateBps, tenureMonths int, purpose string) (*loan.Loan, error) {
	return s.lifecycle.CreateLoanRequest(ctx, borrowerAccountID, principal, interestRateBps, tenureMonths, purpose)
}

func (s *LoanServiceImpl) GetLoan(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error) {
	return s.lifecycle.GetLoan(ctx, loanID)
}

func (s *LoanServiceImpl) Invest(ctx context.Context, loanID, lenderAccountID uuid.UUID, amount int64) (*funding.Commitment, error) {
	return s.matcher.Commit(ctx, loanID, lenderAccountID, amount)
}

func (s *LoanServiceImpl) Repay(ctx context.Context, loanID uuid.UUID, amount int64) (*repayment.Event, error) {
	return s.repayments.ApplyRepayment(ctx, loanID, amount)
}

func (s *LoanServiceImpl) Disburse(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error) {
	return s.lifecycle.Disburse(ctx, loanID)
}

func (s *LoanServiceImpl) Cancel(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error) {
	return s.lifecycle.Cancel(ctx, loanID)
}

func (s *LoanServiceImpl) Accrue(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error) {
	return s.lifecycle.AccrueInterest(ctx, loanID)
}

func (s *LoanServiceImpl) MarkDefaulted(ctx context.Context, loanID uuid.UUID, missedPayments int) (*loan.Loan, error) {
	return s.lifecycle.MarkDefaulted(ctx, loanID, missedPayments)
}

func (s *LoanServiceImpl) Opportunities(ctx context.Context, riskLevel loan.RiskLevel, minAmount, maxAmount int64, page, perPage int) ([]*loan.Loan, error) {
	var minScore, maxScore int
	if riskLevel != "" {
		if !riskLevel.Valid() {
			return nil, loan.ErrInvalidRiskLevel
		}
		minScore, maxScore = riskLevel.ScoreBounds()
	}
	offset := (page - 1) * perPage
	return s.loanRepo.ListFunding(ctx, minAmount, maxAmount, minScore, maxScore, perPage, offset)
}

func (s *LoanServiceImpl) LoansByBorrower(ctx context.Context, borrowerAccountID uuid.UUID) ([]*loan.Loan, error) {
	return s.loanRepo.GetByBorrower(ctx, borrowerAccountID)
}

func (s *LoanServiceImpl) InvestmentsByLender(ctx context.Context, lenderAccountID uuid.UUID) ([]*funding.Commitment, error) {
	return s.fundingRepo.GetByLender(ctx, lenderAccountID)
}
