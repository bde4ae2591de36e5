package service

import (
	"context"
	"database/sql"
	"errors"
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

// LedgerService owns the passbook: appending entries, replaying the balance
// fold, and the recompute-on-edit semantics. The balance is never stored; it
// is always derived by folding the member's full entry history in canonical
// order, so edits and deletes cannot leave a stale figure behind.
type LedgerService struct {
	memberRepo repository.MemberRepository
	ledgerRepo repository.LedgerRepository
	loanRepo   repository.LoanRepository
	redis      *redis.Client
	config     *config.Config
}

func NewLedgerService(
	memberRepo repository.MemberRepository,
	ledgerRepo repository.LedgerRepository,
	loanRepo repository.LoanRepository,
	redisClient *redis.Client,
	cfg *config.Config,
) *LedgerService {
	return &LedgerService{
		memberRepo: memberRepo,
		ledgerRepo: ledgerRepo,
		loanRepo:   loanRepo,
		redis:      redisClient,
		config:     cfg,
	}
}

// Append validates and records one passbook entry, returning the entry with
// the member's recomputed balance and loan figures.
func (s *LedgerService) Append(ctx context.Context, memberID uuid.UUID, request *domain.CreateEntryRequest) (*domain.CreateEntryResponse, error) {
	if _, err := s.memberRepo.GetByID(ctx, memberID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapMemberNotFound(memberID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	txDate, err := utils.ParseDate(request.TransactionDate)
	if err != nil {
		return nil, customError.WrapInvalidDate(err)
	}

	if request.DepositAmount.IsNegative() || request.LoanInstallment.IsNegative() ||
		request.InterestAuto.IsNegative() || request.FineAuto.IsNegative() {
		return nil, customError.WrapValidation("amounts must not be negative", customError.ErrInvalidAmount)
	}

	entry := &domain.LedgerEntry{
		ID:              uuid.New(),
		MemberID:        memberID,
		TransactionDate: txDate,
		DepositAmount:   utils.Round2(request.DepositAmount),
		LoanInstallment: utils.Round2(request.LoanInstallment),
		InterestAuto:    utils.Round2(request.InterestAuto),
		FineAuto:        utils.Round2(request.FineAuto),
		Kind:            request.Kind,
		Mode:            request.Mode,
		Description:     request.Description,
		LoanID:          request.LoanID,
	}

	if entry.IsNoOp() {
		return nil, customError.WrapInvalidEntry()
	}

	if entry.Kind == "" {
		entry.Kind = deriveKind(entry)
	}

	if err := s.ledgerRepo.Append(ctx, entry); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateSummary(ctx, memberID)

	balance, err := s.Balance(ctx, memberID, nil)
	if err != nil {
		return nil, err
	}

	remainingLoan, err := s.loanRepo.SumOutstandingByMember(ctx, memberID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	loanBalance := decimal.Zero
	if entry.LoanID != nil {
		loan, err := s.loanRepo.GetByID(ctx, *entry.LoanID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapDatabaseError(err)
		}
		if loan != nil {
			loanBalance = loan.RemainingBalance
		}
	}

	return &domain.CreateEntryResponse{
		Entry:         entry,
		Balance:       balance,
		LoanBalance:   loanBalance,
		RemainingLoan: remainingLoan,
	}, nil
}

// Balance replays the member's entries in canonical order and folds them. If
// asOf is given, only entries dated on or before it are folded.
func (s *LedgerService) Balance(ctx context.Context, memberID uuid.UUID, asOf *time.Time) (decimal.Decimal, error) {
	entries, err := s.ledgerRepo.ListByMember(ctx, memberID)
	if err != nil {
		return decimal.Zero, customError.WrapDatabaseError(err)
	}

	balance := decimal.Zero
	for _, entry := range entries {
		if asOf != nil && entry.TransactionDate.After(*asOf) {
			continue
		}
		balance = balance.Add(entry.SignedAmount())
	}

	return utils.Round2(balance), nil
}

// ListWithRunningBalance folds the full history once, annotates every entry
// with its running balance, then slices the display ordering, which is
// newest-first. Display order is not fold order.
func (s *LedgerService) ListWithRunningBalance(ctx context.Context, memberID uuid.UUID, page, pageSize int, from, to *time.Time) (*domain.LedgerPage, error) {
	if _, err := s.memberRepo.GetByID(ctx, memberID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapMemberNotFound(memberID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	entries, err := s.ledgerRepo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	annotated := annotateRunningBalance(entries)

	// Date-range filter applies to the display slice only; balances keep
	// their full-history values.
	if from != nil || to != nil {
		filtered := make([]*domain.EntryWithBalance, 0, len(annotated))
		for _, e := range annotated {
			if from != nil && e.TransactionDate.Before(*from) {
				continue
			}
			if to != nil && e.TransactionDate.After(*to) {
				continue
			}
			filtered = append(filtered, e)
		}
		annotated = filtered
	}

	// Newest first for display.
	for i, j := 0, len(annotated)-1; i < j; i, j = i+1, j-1 {
		annotated[i], annotated[j] = annotated[j], annotated[i]
	}

	total := len(annotated)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	balance := decimal.Zero
	if len(entries) > 0 {
		balance = annotatedTotal(entries)
	}

	return &domain.LedgerPage{
		Entries:    annotated[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		Balance:    balance,
	}, nil
}

// UpdateEntry rewrites an entry and recomputes the owning member's balance
// from scratch. An edit to an old entry shifts every later running balance,
// so there is no incremental path.
func (s *LedgerService) UpdateEntry(ctx context.Context, entryID uuid.UUID, request *domain.UpdateEntryRequest) (*domain.UpdateEntryResponse, error) {
	entry, err := s.ledgerRepo.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapEntryNotFound(entryID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if request.TransactionDate != "" {
		txDate, err := utils.ParseDate(request.TransactionDate)
		if err != nil {
			return nil, customError.WrapInvalidDate(err)
		}
		entry.TransactionDate = txDate
	}

	entry.DepositAmount = utils.Round2(request.DepositAmount)
	entry.LoanInstallment = utils.Round2(request.LoanInstallment)
	entry.InterestAuto = utils.Round2(request.InterestAuto)
	entry.FineAuto = utils.Round2(request.FineAuto)
	if request.Mode != "" {
		entry.Mode = request.Mode
	}
	entry.Description = request.Description

	if entry.IsNoOp() {
		return nil, customError.WrapInvalidEntry()
	}

	if err := s.ledgerRepo.Update(ctx, entry); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateSummary(ctx, entry.MemberID)

	newBalance, err := s.Balance(ctx, entry.MemberID, nil)
	if err != nil {
		return nil, err
	}

	return &domain.UpdateEntryResponse{
		Entry:      entry,
		NewBalance: newBalance,
	}, nil
}

// DeleteEntry removes an entry and recomputes the member's balance.
func (s *LedgerService) DeleteEntry(ctx context.Context, entryID uuid.UUID) (*domain.DeleteEntryResponse, error) {
	entry, err := s.ledgerRepo.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapEntryNotFound(entryID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if err := s.ledgerRepo.Delete(ctx, entry); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateSummary(ctx, entry.MemberID)

	newBalance, err := s.Balance(ctx, entry.MemberID, nil)
	if err != nil {
		return nil, err
	}

	return &domain.DeleteEntryResponse{
		DeletedEntry: entry,
		NewBalance:   newBalance,
	}, nil
}

// TotalDeposits sums deposit amounts over the same canonical replay, skipping
// loan-related entries so disbursements do not inflate savings totals.
func (s *LedgerService) TotalDeposits(ctx context.Context, memberID uuid.UUID) (decimal.Decimal, error) {
	entries, err := s.ledgerRepo.ListByMember(ctx, memberID)
	if err != nil {
		return decimal.Zero, customError.WrapDatabaseError(err)
	}

	total := decimal.Zero
	for _, entry := range entries {
		if entry.IsLoanRelated() {
			continue
		}
		total = total.Add(entry.DepositAmount)
	}

	return utils.Round2(total), nil
}

func (s *LedgerService) invalidateSummary(ctx context.Context, memberID uuid.UUID) {
	if s.redis == nil {
		return
	}
	s.redis.Del(ctx, summaryCacheKey(memberID))
}

// annotateRunningBalance walks entries in canonical order and pairs each with
// the balance after applying it.
func annotateRunningBalance(entries []*domain.LedgerEntry) []*domain.EntryWithBalance {
	annotated := make([]*domain.EntryWithBalance, 0, len(entries))

	balance := decimal.Zero
	for _, entry := range entries {
		balance = balance.Add(entry.SignedAmount())
		annotated = append(annotated, &domain.EntryWithBalance{
			LedgerEntry: entry,
			Balance:     utils.Round2(balance),
		})
	}

	return annotated
}

func annotatedTotal(entries []*domain.LedgerEntry) decimal.Decimal {
	balance := decimal.Zero
	for _, entry := range entries {
		balance = balance.Add(entry.SignedAmount())
	}
	return utils.Round2(balance)
}

// deriveKind tags untyped entries from their shape, mirroring the historical
// classification so old callers keep working.
func deriveKind(entry *domain.LedgerEntry) string {
	switch {
	case entry.LoanID != nil && entry.LoanInstallment.IsPositive():
		return domain.EntryKindEmiPayment
	case entry.LoanID != nil:
		return domain.EntryKindLoanDisbursement
	case entry.DepositAmount.IsPositive():
		return domain.EntryKindDeposit
	case entry.FineAuto.IsPositive():
		return domain.EntryKindFine
	case entry.InterestAuto.IsPositive():
		return domain.EntryKindInterest
	default:
		return domain.EntryKindDeposit
	}
}
