package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/sahakari/ledger-engine/internal/config"
	"github.com/sahakari/ledger-engine/internal/domain"
	"github.com/sahakari/ledger-engine/internal/repository"
	customError "github.com/sahakari/ledger-engine/pkg/errors"
	"github.com/sahakari/ledger-engine/pkg/utils"
)

// MemberSummary is the read-only aggregation the reporting facade serves.
type MemberSummary struct {
	MemberID              uuid.UUID       `json:"member_id"`
	Balance               decimal.Decimal `json:"balance"`
	TotalDeposits         decimal.Decimal `json:"total_deposits"`
	ActiveLoans           int             `json:"active_loans"`
	OutstandingLoanAmount decimal.Decimal `json:"outstanding_loan_amount"`
	MaturityPrincipal     decimal.Decimal `json:"maturity_principal"`
	MaturityPayout        decimal.Decimal `json:"maturity_payout"`
}

// ReportService layers read-only queries over the ledger replay. It performs
// no mutation; the only state it touches is its redis cache, which the
// mutating services invalidate.
type ReportService struct {
	memberRepo   repository.MemberRepository
	ledgerRepo   repository.LedgerRepository
	loanRepo     repository.LoanRepository
	maturityRepo repository.MaturityRepository
	redis        *redis.Client
	config       *config.Config
}

func NewReportService(
	memberRepo repository.MemberRepository,
	ledgerRepo repository.LedgerRepository,
	loanRepo repository.LoanRepository,
	maturityRepo repository.MaturityRepository,
	redisClient *redis.Client,
	cfg *config.Config,
) *ReportService {
	return &ReportService{
		memberRepo:   memberRepo,
		ledgerRepo:   ledgerRepo,
		loanRepo:     loanRepo,
		maturityRepo: maturityRepo,
		redis:        redisClient,
		config:       cfg,
	}
}

func summaryCacheKey(memberID uuid.UUID) string {
	return "member:summary:" + memberID.String()
}

// MemberSummary serves the cached summary when fresh, otherwise recomputes it
// from the ledger replay and the loan/maturity tables. Cache failures fall
// through to the database.
func (s *ReportService) MemberSummary(ctx context.Context, memberID uuid.UUID) (*MemberSummary, error) {
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, summaryCacheKey(memberID)).Result()
		if err == nil {
			var summary MemberSummary
			if err := json.Unmarshal([]byte(cached), &summary); err == nil {
				return &summary, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("summary cache read failed for member %s: %v", memberID, err)
		}
	}

	summary, err := s.computeSummary(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if payload, err := json.Marshal(summary); err == nil {
			if err := s.redis.Set(ctx, summaryCacheKey(memberID), payload, s.config.GetSummaryCacheTTL()).Err(); err != nil {
				log.Printf("summary cache write failed for member %s: %v", memberID, err)
			}
		}
	}

	return summary, nil
}

// RefreshMemberSummary drops and rebuilds one member's cached summary.
func (s *ReportService) RefreshMemberSummary(ctx context.Context, memberID uuid.UUID) (*MemberSummary, error) {
	if s.redis != nil {
		s.redis.Del(ctx, summaryCacheKey(memberID))
	}
	return s.MemberSummary(ctx, memberID)
}

// RefreshAll warms the summary cache for every member. Used by the daily job.
func (s *ReportService) RefreshAll(ctx context.Context) error {
	members, err := s.memberRepo.List(ctx)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	for _, member := range members {
		if _, err := s.RefreshMemberSummary(ctx, member.ID); err != nil {
			log.Printf("summary refresh failed for member %s: %v", member.ID, err)
		}
	}

	return nil
}

func (s *ReportService) computeSummary(ctx context.Context, memberID uuid.UUID) (*MemberSummary, error) {
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

	// One replay feeds both figures, in the same canonical order the balance
	// endpoint uses.
	balance := decimal.Zero
	totalDeposits := decimal.Zero
	for _, entry := range entries {
		balance = balance.Add(entry.SignedAmount())
		if !entry.IsLoanRelated() {
			totalDeposits = totalDeposits.Add(entry.DepositAmount)
		}
	}

	loans, err := s.loanRepo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	activeLoans := 0
	outstanding := decimal.Zero
	for _, loan := range loans {
		if loan.Status == domain.LoanStatusActive {
			activeLoans++
			outstanding = outstanding.Add(loan.RemainingBalance)
		}
	}

	records, err := s.maturityRepo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	maturityPrincipal := decimal.Zero
	maturityPayout := decimal.Zero
	for _, record := range records {
		maturityPrincipal = maturityPrincipal.Add(record.PrincipalAmount)
		maturityPayout = maturityPayout.Add(record.MaturityAmount)
	}

	return &MemberSummary{
		MemberID:              memberID,
		Balance:               utils.Round2(balance),
		TotalDeposits:         utils.Round2(totalDeposits),
		ActiveLoans:           activeLoans,
		OutstandingLoanAmount: utils.Round2(outstanding),
		MaturityPrincipal:     utils.Round2(maturityPrincipal),
		MaturityPayout:        utils.Round2(maturityPayout),
	}, nil
}
