package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sahakari/ledger-engine/internal/domain"
	"github.com/sahakari/ledger-engine/internal/mocks"
	customError "github.com/sahakari/ledger-engine/pkg/errors"
)

func TestReportService_MemberSummary(t *testing.T) {
	member := testMember()
	loanID := uuid.New()

	deposit := testEntry(member.ID, "2024-01-01", "5000", "0")
	disbursement := testEntry(member.ID, "2024-02-01", "40000", "0")
	disbursement.Kind = domain.EntryKindLoanDisbursement
	disbursement.LoanID = &loanID
	emi := testEntry(member.ID, "2024-03-01", "0", "4000")
	emi.Kind = domain.EntryKindEmiPayment
	emi.LoanID = &loanID

	loans := []*domain.Loan{
		activeLoan(member.ID, "50000"),
		{ID: uuid.New(), MemberID: member.ID, Status: domain.LoanStatusCompleted, RemainingBalance: decimal.Zero},
	}

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	records := []*domain.MaturityRecord{
		testMaturityRecord("10000", start, start.AddDate(1, 0, 0)),
	}

	memberRepo := new(mocks.MockMemberRepository)
	memberRepo.On("GetByID", mock.Anything, member.ID).Return(member, nil)
	ledgerRepo := new(mocks.MockLedgerRepository)
	ledgerRepo.On("ListByMember", mock.Anything, member.ID).
		Return([]*domain.LedgerEntry{deposit, disbursement, emi}, nil)
	loanRepo := new(mocks.MockLoanRepository)
	loanRepo.On("ListByMember", mock.Anything, member.ID).Return(loans, nil)
	maturityRepo := new(mocks.MockMaturityRepository)
	maturityRepo.On("ListByMember", mock.Anything, member.ID).Return(records, nil)

	service := NewReportService(memberRepo, ledgerRepo, loanRepo, maturityRepo, nil, testConfig())

	summary, err := service.MemberSummary(context.Background(), member.ID)

	assert.NoError(t, err)
	// 5000 + 40000 - 4000 from the full replay.
	assert.True(t, summary.Balance.Equal(decimal.NewFromInt(41000)),
		"Expected balance 41000, got %v", summary.Balance)
	// Loan rows are excluded from the savings figure.
	assert.True(t, summary.TotalDeposits.Equal(decimal.NewFromInt(5000)),
		"Expected deposits 5000, got %v", summary.TotalDeposits)
	assert.Equal(t, 1, summary.ActiveLoans)
	assert.True(t, summary.OutstandingLoanAmount.Equal(decimal.NewFromInt(50000)))
	assert.True(t, summary.MaturityPrincipal.Equal(decimal.NewFromInt(10000)))
	assert.True(t, summary.MaturityPayout.Equal(decimal.NewFromInt(11200)))
}

func TestReportService_MemberSummary_MemberNotFound(t *testing.T) {
	memberID := uuid.New()
	memberRepo := new(mocks.MockMemberRepository)
	memberRepo.On("GetByID", mock.Anything, memberID).Return(nil, sql.ErrNoRows)

	service := NewReportService(memberRepo, new(mocks.MockLedgerRepository), new(mocks.MockLoanRepository),
		new(mocks.MockMaturityRepository), nil, testConfig())

	_, err := service.MemberSummary(context.Background(), memberID)

	assert.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrMemberNotFound))
}

func TestReportService_RefreshAll(t *testing.T) {
	member := testMember()

	memberRepo := new(mocks.MockMemberRepository)
	memberRepo.On("List", mock.Anything).Return([]*domain.Member{member}, nil)
	memberRepo.On("GetByID", mock.Anything, member.ID).Return(member, nil)
	ledgerRepo := new(mocks.MockLedgerRepository)
	ledgerRepo.On("ListByMember", mock.Anything, member.ID).Return([]*domain.LedgerEntry{}, nil)
	loanRepo := new(mocks.MockLoanRepository)
	loanRepo.On("ListByMember", mock.Anything, member.ID).Return([]*domain.Loan{}, nil)
	maturityRepo := new(mocks.MockMaturityRepository)
	maturityRepo.On("ListByMember", mock.Anything, member.ID).Return([]*domain.MaturityRecord{}, nil)

	service := NewReportService(memberRepo, ledgerRepo, loanRepo, maturityRepo, nil, testConfig())

	assert.NoError(t, service.RefreshAll(context.Background()))
	memberRepo.AssertExpectations(t)
}
