package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sahakari/ledger-engine/internal/domain"
	"github.com/sahakari/ledger-engine/internal/mocks"
	customError "github.com/sahakari/ledger-engine/pkg/errors"
)

func TestMemberService_Create(t *testing.T) {
	memberRepo := new(mocks.MockMemberRepository)
	memberRepo.On("GetByPhone", mock.Anything, "9876543210").Return(nil, sql.ErrNoRows)
	memberRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Member")).Return(nil)

	service := NewMemberService(memberRepo, new(mocks.MockLedgerRepository), new(mocks.MockLoanRepository))

	member, err := service.Create(context.Background(), &domain.CreateMemberRequest{
		Name:        "Ramesh Kumar",
		Phone:       "9876543210",
		JoiningDate: "2024-01-15",
	})

	assert.NoError(t, err)
	assert.Equal(t, "Ramesh Kumar", member.Name)
	assert.Equal(t, 15, member.JoiningDate.Day())
	memberRepo.AssertExpectations(t)
}

func TestMemberService_Create_DuplicatePhone(t *testing.T) {
	existing := testMember()
	memberRepo := new(mocks.MockMemberRepository)
	memberRepo.On("GetByPhone", mock.Anything, existing.Phone).Return(existing, nil)

	service := NewMemberService(memberRepo, new(mocks.MockLedgerRepository), new(mocks.MockLoanRepository))

	_, err := service.Create(context.Background(), &domain.CreateMemberRequest{
		Name:  "Someone Else",
		Phone: existing.Phone,
	})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrDuplicatePhone))
	memberRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestMemberService_Delete(t *testing.T) {
	member := testMember()
	memberRepo := new(mocks.MockMemberRepository)
	memberRepo.On("GetByID", mock.Anything, member.ID).Return(member, nil)
	memberRepo.On("Delete", mock.Anything, member.ID).Return(nil)

	ledgerRepo := new(mocks.MockLedgerRepository)
	ledgerRepo.On("CountByMember", mock.Anything, member.ID).Return(0, nil)
	loanRepo := new(mocks.MockLoanRepository)
	loanRepo.On("CountOpenByMember", mock.Anything, member.ID).Return(0, nil)

	service := NewMemberService(memberRepo, ledgerRepo, loanRepo)

	assert.NoError(t, service.Delete(context.Background(), member.ID))
	memberRepo.AssertExpectations(t)
}

func TestMemberService_Delete_BlockedByRecords(t *testing.T) {
	tests := []struct {
		name       string
		entryCount int
		openLoans  int
	}{
		{name: "ledger entries remain", entryCount: 4, openLoans: 0},
		{name: "open loan remains", entryCount: 0, openLoans: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			member := testMember()
			memberRepo := new(mocks.MockMemberRepository)
			memberRepo.On("GetByID", mock.Anything, member.ID).Return(member, nil)

			ledgerRepo := new(mocks.MockLedgerRepository)
			ledgerRepo.On("CountByMember", mock.Anything, member.ID).Return(tt.entryCount, nil)
			loanRepo := new(mocks.MockLoanRepository)
			loanRepo.On("CountOpenByMember", mock.Anything, member.ID).Return(tt.openLoans, nil)

			service := NewMemberService(memberRepo, ledgerRepo, loanRepo)

			err := service.Delete(context.Background(), member.ID)

			assert.Error(t, err)
			assert.True(t, errors.Is(err, customError.ErrMemberHasRecords))
			memberRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		})
	}
}
