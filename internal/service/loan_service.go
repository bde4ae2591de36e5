package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/sahakari/ledger-engine/internal/config"
	"github.com/sahakari/ledger-engine/internal/domain"
	"github.com/sahakari/ledger-engine/internal/repository"
	customError "github.com/sahakari/ledger-engine/pkg/errors"
	"github.com/sahakari/ledger-engine/pkg/utils"
)

// Days between EMI due dates.
const dueDateIntervalDays = 30

// LoanService drives the loan lifecycle: pending -> active -> completed, with
// pending -> rejected as the alternate terminal. Approval bakes the full
// installment schedule, interest included, into the remaining balance; each
// payment decrements it and appends the EMI passbook entry in the same
// transaction.
type LoanService struct {
	loanRepo   repository.LoanRepository
	ledgerRepo repository.LedgerRepository
	memberRepo repository.MemberRepository
	redis      *redis.Client
	config     *config.Config
}

func NewLoanService(
	loanRepo repository.LoanRepository,
	ledgerRepo repository.LedgerRepository,
	memberRepo repository.MemberRepository,
	redisClient *redis.Client,
	cfg *config.Config,
) *LoanService {
	return &LoanService{
		loanRepo:   loanRepo,
		ledgerRepo: ledgerRepo,
		memberRepo: memberRepo,
		redis:      redisClient,
		config:     cfg,
	}
}

// CreateRequest opens a pending loan. The amount may be omitted or zero;
// the final figure is decided at approval time.
func (s *LoanService) CreateRequest(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, error) {
	if _, err := s.memberRepo.GetByID(ctx, request.MemberID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapMemberNotFound(request.MemberID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	amount := request.Amount
	if amount.IsNegative() || amount.IsZero() {
		amount = decimal.Zero
	}

	now := time.Now()
	nextDue := now.AddDate(0, 0, dueDateIntervalDays)

	loan := &domain.Loan{
		ID:               uuid.New(),
		MemberID:         request.MemberID,
		LoanAmount:       utils.Round2(amount),
		InterestRate:     decimal.Zero,
		Status:           domain.LoanStatusPending,
		RemainingBalance: utils.Round2(amount),
		LoanDate:         now,
		NextDueDate:      &nextDue,
		Description:      request.Description,
	}

	if err := s.loanRepo.Create(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return loan, nil
}

// Approve activates a pending loan. The remaining balance is set to the full
// schedule total (installment x count) and a disbursement entry is appended to
// the member's passbook. The supplied installment is cross-checked against
// the reference EMI formula; a large discrepancy is flagged, not rejected.
func (s *LoanService) Approve(ctx context.Context, loanID uuid.UUID, request *domain.ApproveLoanRequest) (*domain.ApproveLoanResponse, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if loan.Status != domain.LoanStatusPending {
		return nil, customError.WrapLoanNotPending(loanID.String(), loan.Status)
	}

	if !request.LoanAmount.IsPositive() {
		return nil, customError.WrapValidation("loan amount must be positive", customError.ErrInvalidAmount)
	}
	if !request.InstallmentAmount.IsPositive() {
		return nil, customError.WrapValidation("installment amount must be positive", customError.ErrInvalidAmount)
	}

	totalPayable := utils.TotalPayable(request.InstallmentAmount, request.Installments)
	totalInterest := totalPayable.Sub(request.LoanAmount)

	referenceEMI := utils.CalculateEMI(request.LoanAmount, request.InterestRate, request.Installments)
	if referenceEMI.IsPositive() {
		deviation := request.InstallmentAmount.Sub(referenceEMI).Abs().
			Div(referenceEMI).Mul(decimal.NewFromInt(100))
		if deviation.GreaterThan(s.config.GetEMITolerance()) {
			log.Printf("loan %s: supplied installment %s deviates %s%% from reference EMI %s",
				loanID, request.InstallmentAmount, deviation.Round(2), referenceEMI)
		}
	}

	now := time.Now()
	nextDue := now.AddDate(0, 0, dueDateIntervalDays)

	loan.LoanAmount = utils.Round2(request.LoanAmount)
	loan.InterestRate = request.InterestRate
	loan.Status = domain.LoanStatusActive
	loan.RemainingBalance = totalPayable
	loan.NextDueDate = &nextDue

	entry := &domain.LedgerEntry{
		ID:              uuid.New(),
		MemberID:        loan.MemberID,
		TransactionDate: now,
		DepositAmount:   loan.LoanAmount,
		LoanInstallment: decimal.Zero,
		InterestAuto:    decimal.Zero,
		FineAuto:        decimal.Zero,
		Kind:            domain.EntryKindLoanDisbursement,
		Mode:            "Loan Approved",
		Description:     fmt.Sprintf("Loan disbursement of %s over %d installments", loan.LoanAmount, request.Installments),
		LoanID:          &loan.ID,
	}

	if err := s.loanRepo.ActivateWithDisbursement(ctx, loan, entry); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateSummary(ctx, loan.MemberID)

	return &domain.ApproveLoanResponse{
		Loan:          loan,
		TotalPayable:  totalPayable,
		TotalInterest: utils.Round2(totalInterest),
		ReferenceEMI:  referenceEMI,
	}, nil
}

// Reject moves a pending loan to its alternate terminal state.
func (s *LoanService) Reject(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if loan.Status != domain.LoanStatusPending {
		return nil, customError.WrapLoanNotPending(loanID.String(), loan.Status)
	}

	loan.Status = domain.LoanStatusRejected
	loan.NextDueDate = nil

	if err := s.loanRepo.Update(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return loan, nil
}

// RecordPayment applies an EMI payment. A flat share of the payment (1% by
// default) is booked as interest for the passbook narration; the remainder is
// principal. The balance never goes below zero and a zero balance completes
// the loan.
func (s *LoanService) RecordPayment(ctx context.Context, loanID uuid.UUID, request *domain.LoanPaymentRequest) (*domain.LoanPaymentResponse, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if loan.Status != domain.LoanStatusActive {
		return nil, customError.WrapLoanNotActive(loanID.String(), loan.Status)
	}
	if !loan.RemainingBalance.IsPositive() {
		return nil, customError.WrapLoanAlreadyPaidOff(loanID.String())
	}
	if !request.Amount.IsPositive() {
		return nil, customError.WrapValidation("payment amount must be positive", customError.ErrInvalidAmount)
	}

	amount := utils.Round2(request.Amount)
	interest := utils.PercentOf(amount, s.config.GetPaymentInterestSplit())
	principal := amount.Sub(interest)

	newRemaining := loan.RemainingBalance.Sub(amount)
	if newRemaining.LessThanOrEqual(decimal.Zero) {
		newRemaining = decimal.Zero
		loan.Status = domain.LoanStatusCompleted
		loan.NextDueDate = nil
	} else {
		var next time.Time
		if loan.NextDueDate != nil {
			next = loan.NextDueDate.AddDate(0, 0, dueDateIntervalDays)
		} else {
			next = time.Now().AddDate(0, 0, dueDateIntervalDays)
		}
		loan.NextDueDate = &next
	}
	loan.RemainingBalance = newRemaining

	mode := request.Mode
	if mode == "" {
		mode = "EMI"
	}

	entry := &domain.LedgerEntry{
		ID:              uuid.New(),
		MemberID:        loan.MemberID,
		TransactionDate: time.Now(),
		DepositAmount:   decimal.Zero,
		LoanInstallment: principal,
		InterestAuto:    interest,
		FineAuto:        decimal.Zero,
		Kind:            domain.EntryKindEmiPayment,
		Mode:            mode,
		Description:     fmt.Sprintf("EMI payment: principal %s, interest %s", principal, interest),
		LoanID:          &loan.ID,
	}

	if err := s.loanRepo.ApplyPayment(ctx, loan, entry); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateSummary(ctx, loan.MemberID)

	return &domain.LoanPaymentResponse{
		RemainingBalance: loan.RemainingBalance,
		Status:           loan.Status,
	}, nil
}

// Delete removes a loan with no payment history. The check runs again inside
// the deleting transaction, so a racing payment cannot orphan its entry.
func (s *LoanService) Delete(ctx context.Context, loanID uuid.UUID) error {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return err
	}

	deleted, err := s.loanRepo.DeleteIfNoPayments(ctx, loanID)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	if !deleted {
		return customError.WrapLoanHasPayments(loanID.String())
	}

	s.invalidateSummary(ctx, loan.MemberID)
	return nil
}

// ListByMember returns all of a member's loans.
func (s *LoanService) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Loan, error) {
	if _, err := s.memberRepo.GetByID(ctx, memberID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapMemberNotFound(memberID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	loans, err := s.loanRepo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return loans, nil
}

// ListDueWithin returns active loans whose next installment falls due within
// the given number of days. Used by the reminder job.
func (s *LoanService) ListDueWithin(ctx context.Context, days int) ([]*domain.Loan, error) {
	cutoff := time.Now().AddDate(0, 0, days)

	loans, err := s.loanRepo.ListActiveDueBefore(ctx, cutoff)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return loans, nil
}

func (s *LoanService) getLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(loanID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return loan, nil
}

func (s *LoanService) invalidateSummary(ctx context.Context, memberID uuid.UUID) {
	if s.redis == nil {
		return
	}
	s.redis.Del(ctx, summaryCacheKey(memberID))
}
