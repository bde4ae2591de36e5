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

	"github.com/sahakari/ledger-engine/internal/config"
	"github.com/sahakari/ledger-engine/internal/domain"
	"github.com/sahakari/ledger-engine/internal/mocks"
	customError "github.com/sahakari/ledger-engine/pkg/errors"
)

func testConfig() *config.Config {
	return &config.Config{
		Business: config.BusinessConfig{
			PaymentInterestSplit: "1",
			EMITolerance:         "5",
			SummaryCacheTTL:      "10m",
			DueSoonDays:          3,
		},
	}
}

func testMember() *domain.Member {
	return &domain.Member{
		ID:    uuid.New(),
		Name:  "Ramesh Kumar",
		Phone: "9876543210",
	}
}

func testEntry(memberID uuid.UUID, day string, deposit, installment string) *domain.LedgerEntry {
	txDate, _ := time.Parse("2006-01-02", day)
	return &domain.LedgerEntry{
		ID:              uuid.New(),
		MemberID:        memberID,
		TransactionDate: txDate,
		DepositAmount:   decimal.RequireFromString(deposit),
		LoanInstallment: decimal.RequireFromString(installment),
		InterestAuto:    decimal.Zero,
		FineAuto:        decimal.Zero,
		Mode:            "CASH",
	}
}

func TestLedgerService_Append_Success(t *testing.T) {
	member := testMember()
	memberRepo := new(mocks.MockMemberRepository)
	ledgerRepo := new(mocks.MockLedgerRepository)
	loanRepo := new(mocks.MockLoanRepository)

	memberRepo.On("GetByID", mock.Anything, member.ID).Return(member, nil)
	ledgerRepo.On("Append", mock.Anything, mock.AnythingOfType("*domain.LedgerEntry")).Return(nil)
	ledgerRepo.On("ListByMember", mock.Anything, member.ID).
		Return([]*domain.LedgerEntry{testEntry(member.ID, "2024-03-01", "500", "0")}, nil)
	loanRepo.On("SumOutstandingByMember", mock.Anything, member.ID).Return(decimal.Zero, nil)

	service := NewLedgerService(memberRepo, ledgerRepo, loanRepo, nil, testConfig())

	result, err := service.Append(context.Background(), member.ID, &domain.CreateEntryRequest{
		TransactionDate: "2024-03-01",
		DepositAmount:   decimal.RequireFromString("500"),
		Mode:            "CASH",
	})

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, domain.EntryKindDeposit, result.Entry.Kind)
	assert.True(t, result.Balance.Equal(decimal.NewFromInt(500)),
		"Expected balance 500, got %v", result.Balance)
	ledgerRepo.AssertExpectations(t)
}

func TestLedgerService_Append_MemberNotFound(t *testing.T) {
	memberID := uuid.New()
	memberRepo := new(mocks.MockMemberRepository)
	memberRepo.On("GetByID", mock.Anything, memberID).Return(nil, sql.ErrNoRows)

	service := NewLedgerService(memberRepo, new(mocks.MockLedgerRepository), new(mocks.MockLoanRepository), nil, testConfig())

	_, err := service.Append(context.Background(), memberID, &domain.CreateEntryRequest{
		TransactionDate: "2024-03-01",
		DepositAmount:   decimal.NewFromInt(100),
		Mode:            "CASH",
	})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrMemberNotFound))
}

func TestLedgerService_Append_RejectsNoOpEntry(t *testing.T) {
	member := testMember()
	memberRepo := new(mocks.MockMemberRepository)
	memberRepo.On("GetByID", mock.Anything, member.ID).Return(member, nil)

	ledgerRepo := new(mocks.MockLedgerRepository)
	service := NewLedgerService(memberRepo, ledgerRepo, new(mocks.MockLoanRepository), nil, testConfig())

	// Fine only: neither deposit nor installment is positive.
	_, err := service.Append(context.Background(), member.ID, &domain.CreateEntryRequest{
		TransactionDate: "2024-03-01",
		FineAuto:        decimal.NewFromInt(50),
		Mode:            "CASH",
	})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrInvalidEntry))
	ledgerRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestLedgerService_Append_RejectsNegativeAmounts(t *testing.T) {
	member := testMember()
	memberRepo := new(mocks.MockMemberRepository)
	memberRepo.On("GetByID", mock.Anything, member.ID).Return(member, nil)

	service := NewLedgerService(memberRepo, new(mocks.MockLedgerRepository), new(mocks.MockLoanRepository), nil, testConfig())

	_, err := service.Append(context.Background(), member.ID, &domain.CreateEntryRequest{
		TransactionDate: "2024-03-01",
		DepositAmount:   decimal.NewFromInt(-100),
		Mode:            "CASH",
	})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrInvalidAmount))
}

func TestLedgerService_Append_RejectsBadDate(t *testing.T) {
	member := testMember()
	memberRepo := new(mocks.MockMemberRepository)
	memberRepo.On("GetByID", mock.Anything, member.ID).Return(member, nil)

	service := NewLedgerService(memberRepo, new(mocks.MockLedgerRepository), new(mocks.MockLoanRepository), nil, testConfig())

	_, err := service.Append(context.Background(), member.ID, &domain.CreateEntryRequest{
		TransactionDate: "01-03-2024",
		DepositAmount:   decimal.NewFromInt(100),
		Mode:            "CASH",
	})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrInvalidDate))
}

func TestLedgerService_Balance_FoldsSignedAmounts(t *testing.T) {
	memberID := uuid.New()
	entries := []*domain.LedgerEntry{
		testEntry(memberID, "2024-01-01", "1000", "0"),
		testEntry(memberID, "2024-02-01", "0", "300"),
		testEntry(memberID, "2024-03-01", "500", "0"),
	}
	entries[1].InterestAuto = decimal.NewFromInt(10)
	entries[2].FineAuto = decimal.NewFromInt(5)

	ledgerRepo := new(mocks.MockLedgerRepository)
	ledgerRepo.On("ListByMember", mock.Anything, memberID).Return(entries, nil)

	service := NewLedgerService(new(mocks.MockMemberRepository), ledgerRepo, new(mocks.MockLoanRepository), nil, testConfig())

	// 1000 - 300 + 10 + 500 + 5
	balance, err := service.Balance(context.Background(), memberID, nil)
	assert.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(1215)),
		"Expected 1215, got %v", balance)

	// Replaying the same history must give the same figure.
	again, err := service.Balance(context.Background(), memberID, nil)
	assert.NoError(t, err)
	assert.True(t, balance.Equal(again))
}

func TestLedgerService_Balance_SameDayOrderDoesNotChangeTotal(t *testing.T) {
	memberID := uuid.New()
	a := testEntry(memberID, "2024-05-01", "700", "0")
	b := testEntry(memberID, "2024-05-01", "0", "200")
	c := testEntry(memberID, "2024-05-01", "100", "0")

	forward := new(mocks.MockLedgerRepository)
	forward.On("ListByMember", mock.Anything, memberID).Return([]*domain.LedgerEntry{a, b, c}, nil)

	permuted := new(mocks.MockLedgerRepository)
	permuted.On("ListByMember", mock.Anything, memberID).Return([]*domain.LedgerEntry{c, a, b}, nil)

	memberRepo := new(mocks.MockMemberRepository)
	loanRepo := new(mocks.MockLoanRepository)

	first, err := NewLedgerService(memberRepo, forward, loanRepo, nil, testConfig()).
		Balance(context.Background(), memberID, nil)
	assert.NoError(t, err)

	second, err := NewLedgerService(memberRepo, permuted, loanRepo, nil, testConfig()).
		Balance(context.Background(), memberID, nil)
	assert.NoError(t, err)

	assert.True(t, first.Equal(second),
		"Same-day entries folded in different orders gave %v and %v", first, second)
}

func TestLedgerService_Balance_AsOfFilter(t *testing.T) {
	memberID := uuid.New()
	entries := []*domain.LedgerEntry{
		testEntry(memberID, "2024-01-01", "1000", "0"),
		testEntry(memberID, "2024-06-01", "500", "0"),
	}

	ledgerRepo := new(mocks.MockLedgerRepository)
	ledgerRepo.On("ListByMember", mock.Anything, memberID).Return(entries, nil)

	service := NewLedgerService(new(mocks.MockMemberRepository), ledgerRepo, new(mocks.MockLoanRepository), nil, testConfig())

	asOf := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	balance, err := service.Balance(context.Background(), memberID, &asOf)

	assert.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(1000)),
		"Expected 1000 as of March, got %v", balance)
}

func TestLedgerService_ListWithRunningBalance(t *testing.T) {
	member := testMember()
	entries := []*domain.LedgerEntry{
		testEntry(member.ID, "2024-01-01", "100", "0"),
		testEntry(member.ID, "2024-02-01", "0", "50"),
		testEntry(member.ID, "2024-03-01", "25", "0"),
	}

	memberRepo := new(mocks.MockMemberRepository)
	memberRepo.On("GetByID", mock.Anything, member.ID).Return(member, nil)
	ledgerRepo := new(mocks.MockLedgerRepository)
	ledgerRepo.On("ListByMember", mock.Anything, member.ID).Return(entries, nil)

	service := NewLedgerService(memberRepo, ledgerRepo, new(mocks.MockLoanRepository), nil, testConfig())

	page, err := service.ListWithRunningBalance(context.Background(), member.ID, 1, 20, nil, nil)

	assert.NoError(t, err)
	assert.Equal(t, 3, page.TotalItems)
	assert.True(t, page.Balance.Equal(decimal.NewFromInt(75)))

	// Newest first, but each row keeps the balance the chronological fold
	// produced at its position.
	assert.Len(t, page.Entries, 3)
	assert.True(t, page.Entries[0].Balance.Equal(decimal.NewFromInt(75)))
	assert.True(t, page.Entries[1].Balance.Equal(decimal.NewFromInt(50)))
	assert.True(t, page.Entries[2].Balance.Equal(decimal.NewFromInt(100)))
}

func TestLedgerService_ListWithRunningBalance_DateFilterKeepsFullHistoryBalances(t *testing.T) {
	member := testMember()
	entries := []*domain.LedgerEntry{
		testEntry(member.ID, "2024-01-01", "100", "0"),
		testEntry(member.ID, "2024-02-01", "200", "0"),
		testEntry(member.ID, "2024-03-01", "300", "0"),
	}

	memberRepo := new(mocks.MockMemberRepository)
	memberRepo.On("GetByID", mock.Anything, member.ID).Return(member, nil)
	ledgerRepo := new(mocks.MockLedgerRepository)
	ledgerRepo.On("ListByMember", mock.Anything, member.ID).Return(entries, nil)

	service := NewLedgerService(memberRepo, ledgerRepo, new(mocks.MockLoanRepository), nil, testConfig())

	from := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	page, err := service.ListWithRunningBalance(context.Background(), member.ID, 1, 20, &from, nil)

	assert.NoError(t, err)
	assert.Equal(t, 2, page.TotalItems)
	// The February row still shows the balance including January's deposit.
	assert.True(t, page.Entries[1].Balance.Equal(decimal.NewFromInt(300)),
		"Expected 300, got %v", page.Entries[1].Balance)
}

func TestLedgerService_UpdateEntry_RecomputesBalance(t *testing.T) {
	memberID := uuid.New()
	entry := testEntry(memberID, "2024-01-01", "100", "0")

	ledgerRepo := new(mocks.MockLedgerRepository)
	ledgerRepo.On("GetByID", mock.Anything, entry.ID).Return(entry, nil)
	ledgerRepo.On("Update", mock.Anything, entry).Return(nil)
	// Post-edit history as the repository would now return it.
	ledgerRepo.On("ListByMember", mock.Anything, memberID).
		Return([]*domain.LedgerEntry{entry, testEntry(memberID, "2024-02-01", "50", "0")}, nil)

	service := NewLedgerService(new(mocks.MockMemberRepository), ledgerRepo, new(mocks.MockLoanRepository), nil, testConfig())

	result, err := service.UpdateEntry(context.Background(), entry.ID, &domain.UpdateEntryRequest{
		DepositAmount: decimal.NewFromInt(250),
	})

	assert.NoError(t, err)
	assert.True(t, result.Entry.DepositAmount.Equal(decimal.NewFromInt(250)))
	// 250 (edited) + 50
	assert.True(t, result.NewBalance.Equal(decimal.NewFromInt(300)),
		"Expected 300 after edit, got %v", result.NewBalance)
	ledgerRepo.AssertExpectations(t)
}

func TestLedgerService_UpdateEntry_RejectsEditToNoOp(t *testing.T) {
	memberID := uuid.New()
	entry := testEntry(memberID, "2024-01-01", "100", "0")

	ledgerRepo := new(mocks.MockLedgerRepository)
	ledgerRepo.On("GetByID", mock.Anything, entry.ID).Return(entry, nil)

	service := NewLedgerService(new(mocks.MockMemberRepository), ledgerRepo, new(mocks.MockLoanRepository), nil, testConfig())

	_, err := service.UpdateEntry(context.Background(), entry.ID, &domain.UpdateEntryRequest{
		DepositAmount: decimal.Zero,
	})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrInvalidEntry))
	ledgerRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestLedgerService_DeleteEntry_RecomputesBalance(t *testing.T) {
	memberID := uuid.New()
	entry := testEntry(memberID, "2024-01-01", "100", "0")
	survivor := testEntry(memberID, "2024-02-01", "40", "0")

	ledgerRepo := new(mocks.MockLedgerRepository)
	ledgerRepo.On("GetByID", mock.Anything, entry.ID).Return(entry, nil)
	ledgerRepo.On("Delete", mock.Anything, entry).Return(nil)
	ledgerRepo.On("ListByMember", mock.Anything, memberID).Return([]*domain.LedgerEntry{survivor}, nil)

	service := NewLedgerService(new(mocks.MockMemberRepository), ledgerRepo, new(mocks.MockLoanRepository), nil, testConfig())

	result, err := service.DeleteEntry(context.Background(), entry.ID)

	assert.NoError(t, err)
	assert.Equal(t, entry.ID, result.DeletedEntry.ID)
	assert.True(t, result.NewBalance.Equal(decimal.NewFromInt(40)))
}

func TestLedgerService_DeleteEntry_NotFound(t *testing.T) {
	entryID := uuid.New()
	ledgerRepo := new(mocks.MockLedgerRepository)
	ledgerRepo.On("GetByID", mock.Anything, entryID).Return(nil, sql.ErrNoRows)

	service := NewLedgerService(new(mocks.MockMemberRepository), ledgerRepo, new(mocks.MockLoanRepository), nil, testConfig())

	_, err := service.DeleteEntry(context.Background(), entryID)

	assert.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrEntryNotFound))
}

func TestLedgerService_TotalDeposits_ExcludesLoanRelatedEntries(t *testing.T) {
	memberID := uuid.New()
	loanID := uuid.New()

	cash := testEntry(memberID, "2024-01-01", "5000", "0")

	// Legacy disbursement row: no kind tag, classified by mode text alone.
	disbursement := testEntry(memberID, "2024-02-01", "40000", "0")
	disbursement.Mode = "Loan Disbursement"

	emi := testEntry(memberID, "2024-03-01", "0", "4000")
	emi.Kind = domain.EntryKindEmiPayment
	emi.LoanID = &loanID

	ledgerRepo := new(mocks.MockLedgerRepository)
	ledgerRepo.On("ListByMember", mock.Anything, memberID).
		Return([]*domain.LedgerEntry{cash, disbursement, emi}, nil)

	service := NewLedgerService(new(mocks.MockMemberRepository), ledgerRepo, new(mocks.MockLoanRepository), nil, testConfig())

	total, err := service.TotalDeposits(context.Background(), memberID)

	assert.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(5000)),
		"Expected 5000 excluding loan rows, got %v", total)
}
