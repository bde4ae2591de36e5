package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/sahakari/ledger-engine/internal/domain"
)

type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) Create(ctx context.Context, member *domain.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockMemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) GetByPhone(ctx context.Context, phone string) (*domain.Member, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) List(ctx context.Context) ([]*domain.Member, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Append(ctx context.Context, entry *domain.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.LedgerEntry, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) Update(ctx context.Context, entry *domain.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) Delete(ctx context.Context, entry *domain.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) CountByMember(ctx context.Context, memberID uuid.UUID) (int, error) {
	args := m.Called(ctx, memberID)
	return args.Int(0), args.Error(1)
}

func (m *MockLedgerRepository) CountByLoan(ctx context.Context, loanID uuid.UUID) (int, error) {
	args := m.Called(ctx, loanID)
	return args.Int(0), args.Error(1)
}

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Loan, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListActiveDueBefore(ctx context.Context, cutoff time.Time) ([]*domain.Loan, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) SumOutstandingByMember(ctx context.Context, memberID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLoanRepository) CountOpenByMember(ctx context.Context, memberID uuid.UUID) (int, error) {
	args := m.Called(ctx, memberID)
	return args.Int(0), args.Error(1)
}

func (m *MockLoanRepository) ActivateWithDisbursement(ctx context.Context, loan *domain.Loan, entry *domain.LedgerEntry) error {
	args := m.Called(ctx, loan, entry)
	return args.Error(0)
}

func (m *MockLoanRepository) ApplyPayment(ctx context.Context, loan *domain.Loan, entry *domain.LedgerEntry) error {
	args := m.Called(ctx, loan, entry)
	return args.Error(0)
}

func (m *MockLoanRepository) DeleteIfNoPayments(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockMaturityRepository struct {
	mock.Mock
}

func (m *MockMaturityRepository) Create(ctx context.Context, record *domain.MaturityRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockMaturityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MaturityRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MaturityRecord), args.Error(1)
}

func (m *MockMaturityRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.MaturityRecord, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.MaturityRecord), args.Error(1)
}

func (m *MockMaturityRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockMaturityRepository) SetOverride(ctx context.Context, id uuid.UUID, adjustedInterest decimal.Decimal) error {
	args := m.Called(ctx, id, adjustedInterest)
	return args.Error(0)
}

func (m *MockMaturityRepository) ClearOverride(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMaturityRepository) ListMaturingThrough(ctx context.Context, cutoff time.Time) ([]*domain.MaturityRecord, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.MaturityRecord), args.Error(1)
}
