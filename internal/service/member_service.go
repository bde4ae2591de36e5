package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/sahakari/ledger-engine/internal/domain"
	"github.com/sahakari/ledger-engine/internal/repository"
	customError "github.com/sahakari/ledger-engine/pkg/errors"
	"github.com/sahakari/ledger-engine/pkg/utils"
)

// MemberService manages member identity. Deletion is blocked while the member
// still owns ledger entries or open loans.
type MemberService struct {
	memberRepo repository.MemberRepository
	ledgerRepo repository.LedgerRepository
	loanRepo   repository.LoanRepository
}

func NewMemberService(
	memberRepo repository.MemberRepository,
	ledgerRepo repository.LedgerRepository,
	loanRepo repository.LoanRepository,
) *MemberService {
	return &MemberService{
		memberRepo: memberRepo,
		ledgerRepo: ledgerRepo,
		loanRepo:   loanRepo,
	}
}

// Create registers a member. The phone number is the uniqueness key.
func (s *MemberService) Create(ctx context.Context, request *domain.CreateMemberRequest) (*domain.Member, error) {
	existing, err := s.memberRepo.GetByPhone(ctx, request.Phone)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}
	if existing != nil {
		return nil, customError.WrapDuplicatePhone(request.Phone)
	}

	joiningDate := utils.Today(time.Now())
	if request.JoiningDate != "" {
		parsed, err := utils.ParseDate(request.JoiningDate)
		if err != nil {
			return nil, customError.WrapInvalidDate(err)
		}
		joiningDate = parsed
	}

	member := &domain.Member{
		ID:          uuid.New(),
		Name:        request.Name,
		Phone:       request.Phone,
		Address:     request.Address,
		JoiningDate: joiningDate,
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return member, nil
}

// Get retrieves a member by id.
func (s *MemberService) Get(ctx context.Context, memberID uuid.UUID) (*domain.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapMemberNotFound(memberID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return member, nil
}

// List retrieves all members.
func (s *MemberService) List(ctx context.Context) ([]*domain.Member, error) {
	members, err := s.memberRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return members, nil
}

// Delete removes a member with no ledger entries and no open loans.
func (s *MemberService) Delete(ctx context.Context, memberID uuid.UUID) error {
	if _, err := s.Get(ctx, memberID); err != nil {
		return err
	}

	entryCount, err := s.ledgerRepo.CountByMember(ctx, memberID)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	openLoans, err := s.loanRepo.CountOpenByMember(ctx, memberID)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	if entryCount > 0 || openLoans > 0 {
		return customError.WrapMemberHasRecords(memberID.String())
	}

	if err := s.memberRepo.Delete(ctx, memberID); err != nil {
		return customError.WrapDatabaseError(err)
	}

	return nil
}
