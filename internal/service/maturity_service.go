package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sahakari/ledger-engine/internal/config"
	"github.com/sahakari/ledger-engine/internal/domain"
	"github.com/sahakari/ledger-engine/internal/repository"
	customError "github.com/sahakari/ledger-engine/pkg/errors"
	"github.com/sahakari/ledger-engine/pkg/utils"
)

// The accrual read model uses a fixed 36-month term at a baked-in nominal
// rate, independent of the record's own interest rate. 0.0333333333 is
// 12% / 36 kept at historical precision.
const accrualTermMonths = 36

var (
	accrualMonthlyRate = decimal.RequireFromString("0.0333333333")
	accrualFullRate    = decimal.RequireFromString("0.12")

	// "<N> year(s)" or "<N> month(s)" anywhere inside the scheme name.
	schemeDurationPattern = regexp.MustCompile(`(?i)(\d+)\s*(year|month)s?`)
)

// MaturityService manages fixed-term deposit schemes. Two interest models
// coexist: the fixed-term snapshot computed once at enrollment, and the
// 36-month linear accrual recomputed on every read. Status is likewise
// derived from the calendar on read; only "claimed" is sticky.
type MaturityService struct {
	maturityRepo repository.MaturityRepository
	memberRepo   repository.MemberRepository
	config       *config.Config

	now func() time.Time
}

func NewMaturityService(
	maturityRepo repository.MaturityRepository,
	memberRepo repository.MemberRepository,
	cfg *config.Config,
) *MaturityService {
	return &MaturityService{
		maturityRepo: maturityRepo,
		memberRepo:   memberRepo,
		config:       cfg,
		now:          time.Now,
	}
}

// Create enrolls a member in a scheme. The maturity amount is a one-time
// snapshot: principal plus simple interest over the whole term. The term is
// parsed out of the scheme name ("Gold 2 years", "18 month saver") and
// defaults to one year.
func (s *MaturityService) Create(ctx context.Context, request *domain.CreateMaturityRequest) (*domain.CreateMaturityResponse, error) {
	if _, err := s.memberRepo.GetByID(ctx, request.MemberID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapMemberNotFound(request.MemberID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if !request.PrincipalAmount.IsPositive() {
		return nil, customError.WrapValidation("principal amount must be positive", customError.ErrInvalidAmount)
	}
	if request.InterestRate.IsNegative() {
		return nil, customError.WrapValidation("interest rate must not be negative", customError.ErrInvalidAmount)
	}

	startDate := utils.Today(s.now())
	if request.StartDate != "" {
		parsed, err := utils.ParseDate(request.StartDate)
		if err != nil {
			return nil, customError.WrapInvalidDate(err)
		}
		startDate = parsed
	}

	maturityDate := utils.AddMonthsClamped(startDate, ParseSchemeDurationMonths(request.SchemeName))

	maturityAmount := utils.Round2(request.PrincipalAmount.Add(
		utils.PercentOf(request.PrincipalAmount, request.InterestRate)))

	record := &domain.MaturityRecord{
		ID:              uuid.New(),
		MemberID:        request.MemberID,
		SchemeName:      request.SchemeName,
		PrincipalAmount: utils.Round2(request.PrincipalAmount),
		InterestRate:    request.InterestRate,
		MaturityAmount:  maturityAmount,
		StartDate:       startDate,
		MaturityDate:    maturityDate,
		Status:          domain.MaturityStatusActive,
		ManualOverride:  false,
	}

	if err := s.maturityRepo.Create(ctx, record); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.CreateMaturityResponse{
		ID:             record.ID,
		MaturityAmount: record.MaturityAmount,
		MaturityDate:   record.MaturityDate,
		DaysRemaining:  utils.DaysUntilCeil(s.now(), record.MaturityDate),
	}, nil
}

// Get returns the read model for one record.
func (s *MaturityService) Get(ctx context.Context, recordID uuid.UUID) (*domain.MaturityView, error) {
	record, err := s.getRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	return s.buildView(record), nil
}

// ListByMember returns read models for all of a member's records.
func (s *MaturityService) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.MaturityView, error) {
	if _, err := s.memberRepo.GetByID(ctx, memberID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapMemberNotFound(memberID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	records, err := s.maturityRepo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	views := make([]*domain.MaturityView, 0, len(records))
	for _, record := range records {
		views = append(views, s.buildView(record))
	}

	return views, nil
}

// SetStatus is the administrative status override. Once a record is claimed,
// the derived status stays claimed regardless of elapsed time.
func (s *MaturityService) SetStatus(ctx context.Context, recordID uuid.UUID, status string) (*domain.MaturityView, error) {
	if !domain.ValidMaturityStatus(status) {
		return nil, customError.WrapInvalidStatus(status)
	}

	record, err := s.getRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}

	if err := s.maturityRepo.UpdateStatus(ctx, recordID, status); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	record.Status = status

	return s.buildView(record), nil
}

// SetManualOverride pins the accrual model's adjusted interest to an
// administrator-supplied value. All subsequent reads use it in place of the
// formula-computed full interest until ClearOverride.
func (s *MaturityService) SetManualOverride(ctx context.Context, recordID uuid.UUID, adjustedInterest decimal.Decimal) (*domain.MaturityView, error) {
	if adjustedInterest.IsNegative() {
		return nil, customError.WrapValidation("adjusted interest must not be negative", customError.ErrInvalidAmount)
	}

	record, err := s.getRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}

	value := utils.Round2(adjustedInterest)
	if err := s.maturityRepo.SetOverride(ctx, recordID, value); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	record.ManualOverride = true
	record.AdjustedInterest = &value

	return s.buildView(record), nil
}

// ClearOverride returns a record to formula-computed interest.
func (s *MaturityService) ClearOverride(ctx context.Context, recordID uuid.UUID) (*domain.MaturityView, error) {
	record, err := s.getRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}

	if err := s.maturityRepo.ClearOverride(ctx, recordID); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	record.ManualOverride = false
	record.AdjustedInterest = nil

	return s.buildView(record), nil
}

// ListMaturingThrough returns unclaimed records maturing on or before the
// cutoff. Used by the daily sweep.
func (s *MaturityService) ListMaturingThrough(ctx context.Context, cutoff time.Time) ([]*domain.MaturityView, error) {
	records, err := s.maturityRepo.ListMaturingThrough(ctx, cutoff)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	views := make([]*domain.MaturityView, 0, len(records))
	for _, record := range records {
		views = append(views, s.buildView(record))
	}

	return views, nil
}

func (s *MaturityService) getRecord(ctx context.Context, recordID uuid.UUID) (*domain.MaturityRecord, error) {
	record, err := s.maturityRepo.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapMaturityNotFound(recordID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return record, nil
}

func (s *MaturityService) buildView(record *domain.MaturityRecord) *domain.MaturityView {
	now := s.now()

	// Elapsed months are not capped at the term; only the remaining-month
	// countdown bottoms out at zero, so accrual keeps growing past month 36.
	monthsCompleted := utils.MonthsBetween(record.StartDate, now)
	remainingMonths := accrualTermMonths - monthsCompleted
	if remainingMonths < 0 {
		remainingMonths = 0
	}

	currentInterest := utils.Round2(record.PrincipalAmount.
		Mul(accrualMonthlyRate).
		Mul(decimal.NewFromInt(int64(monthsCompleted))))
	fullInterest := utils.Round2(record.PrincipalAmount.Mul(accrualFullRate))

	effective := fullInterest
	if record.ManualOverride && record.AdjustedInterest != nil {
		effective = *record.AdjustedInterest
	}

	return &domain.MaturityView{
		MaturityRecord:    record,
		DerivedStatus:     DeriveMaturityStatus(record, now),
		MonthsCompleted:   monthsCompleted,
		RemainingMonths:   remainingMonths,
		CurrentInterest:   currentInterest,
		FullInterest:      fullInterest,
		EffectiveInterest: effective,
		CurrentAdjustment: effective.Sub(currentInterest),
	}
}

// DeriveMaturityStatus computes the calendar-derived status. Claimed is
// sticky; otherwise the record is active before its maturity date, matured on
// the day itself and overdue after.
func DeriveMaturityStatus(record *domain.MaturityRecord, now time.Time) string {
	if record.Status == domain.MaturityStatusClaimed {
		return domain.MaturityStatusClaimed
	}

	today := utils.Today(now)
	maturity := utils.Today(record.MaturityDate)

	switch {
	case today.Before(maturity):
		return domain.MaturityStatusActive
	case today.Equal(maturity):
		return domain.MaturityStatusMatured
	default:
		return domain.MaturityStatusOverdue
	}
}

// ParseSchemeDurationMonths extracts the term from a scheme name like
// "Gold Plan 2 Years" or "18 month saver". No match means a one-year term.
func ParseSchemeDurationMonths(schemeName string) int {
	match := schemeDurationPattern.FindStringSubmatch(schemeName)
	if match == nil {
		return 12
	}

	n, err := strconv.Atoi(match[1])
	if err != nil || n <= 0 {
		return 12
	}

	if strings.EqualFold(match[2], "year") {
		return n * 12
	}
	return n
}
