package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sahakari/ledger-engine/internal/domain"
)

// MemberRepository defines the interface for member data operations
type MemberRepository interface {
	// Create creates a new member
	Create(ctx context.Context, member *domain.Member) error

	// GetByID retrieves a member by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error)

	// GetByPhone retrieves a member by phone number
	GetByPhone(ctx context.Context, phone string) (*domain.Member, error)

	// List retrieves all members
	List(ctx context.Context) ([]*domain.Member, error)

	// Delete removes a member
	Delete(ctx context.Context, id uuid.UUID) error
}

// LedgerRepository defines the interface for passbook entry operations.
// Mutating methods serialize on the owning member's row so concurrent
// appends/edits for the same member never interleave with a balance replay.
type LedgerRepository interface {
	// Append inserts a new entry under the member row lock and fills in its
	// insertion sequence number.
	Append(ctx context.Context, entry *domain.LedgerEntry) error

	// GetByID retrieves an entry by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error)

	// ListByMember returns all of a member's entries in canonical fold order:
	// transaction date ascending, insertion sequence as the tie-break.
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.LedgerEntry, error)

	// Update rewrites an entry under the member row lock
	Update(ctx context.Context, entry *domain.LedgerEntry) error

	// Delete removes an entry under the member row lock
	Delete(ctx context.Context, entry *domain.LedgerEntry) error

	// CountByMember counts a member's entries
	CountByMember(ctx context.Context, memberID uuid.UUID) (int, error)

	// CountByLoan counts entries referencing a loan
	CountByLoan(ctx context.Context, loanID uuid.UUID) (int, error)
}

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// Create creates a new loan
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a loan by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// Update updates a loan
	Update(ctx context.Context, loan *domain.Loan) error

	// ListByMember retrieves all loans for a member
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Loan, error)

	// ListActiveDueBefore retrieves active loans whose next due date falls
	// on or before the cutoff
	ListActiveDueBefore(ctx context.Context, cutoff time.Time) ([]*domain.Loan, error)

	// SumOutstandingByMember totals the remaining balance of a member's
	// active loans
	SumOutstandingByMember(ctx context.Context, memberID uuid.UUID) (decimal.Decimal, error)

	// CountOpenByMember counts a member's pending or active loans
	CountOpenByMember(ctx context.Context, memberID uuid.UUID) (int, error)

	// ActivateWithDisbursement saves the approved loan and appends its
	// disbursement ledger entry in one transaction
	ActivateWithDisbursement(ctx context.Context, loan *domain.Loan, entry *domain.LedgerEntry) error

	// ApplyPayment saves the paid-down loan and appends the EMI ledger entry
	// in one transaction, locking the loan row
	ApplyPayment(ctx context.Context, loan *domain.Loan, entry *domain.LedgerEntry) error

	// DeleteIfNoPayments deletes the loan only if no ledger entries reference
	// it, re-checking inside the deleting transaction. Returns false when the
	// loan has payment history.
	DeleteIfNoPayments(ctx context.Context, id uuid.UUID) (bool, error)
}

// MaturityRepository defines the interface for maturity scheme operations
type MaturityRepository interface {
	// Create creates a new maturity record
	Create(ctx context.Context, record *domain.MaturityRecord) error

	// GetByID retrieves a record by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MaturityRecord, error)

	// ListByMember retrieves all records for a member
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.MaturityRecord, error)

	// UpdateStatus sets the stored status
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error

	// SetOverride persists a manual interest override
	SetOverride(ctx context.Context, id uuid.UUID, adjustedInterest decimal.Decimal) error

	// ClearOverride removes a manual interest override
	ClearOverride(ctx context.Context, id uuid.UUID) error

	// ListMaturingThrough retrieves unclaimed records whose maturity date is
	// on or before the cutoff
	ListMaturingThrough(ctx context.Context, cutoff time.Time) ([]*domain.MaturityRecord, error)
}
