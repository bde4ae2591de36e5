package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LoanStatusPending   = "pending"
	LoanStatusActive    = "active"
	LoanStatusCompleted = "completed"
	LoanStatusRejected  = "rejected"
)

// Loan is a single credit facility for a member. It is created pending with
// an optional amount, activated on approval with the full payable schedule
// baked into RemainingBalance, and completed when that balance reaches zero.
type Loan struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	MemberID         uuid.UUID       `json:"member_id" db:"member_id"`
	LoanAmount       decimal.Decimal `json:"loan_amount" db:"loan_amount"`
	InterestRate     decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	Status           string          `json:"status" db:"status"`
	RemainingBalance decimal.Decimal `json:"remaining_balance" db:"remaining_balance"`
	LoanDate         time.Time       `json:"loan_date" db:"loan_date"`
	NextDueDate      *time.Time      `json:"next_due_date,omitempty" db:"next_due_date"`
	Description      string          `json:"description" db:"description"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// IsTerminal reports whether the loan can no longer change state.
func (l *Loan) IsTerminal() bool {
	return l.Status == LoanStatusCompleted || l.Status == LoanStatusRejected
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	MemberID    uuid.UUID       `json:"member_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type ApproveLoanRequest struct {
	LoanAmount        decimal.Decimal `json:"loan_amount"`
	InterestRate      decimal.Decimal `json:"interest_rate"`
	Installments      int             `json:"installments" validate:"required,gt=0"`
	InstallmentAmount decimal.Decimal `json:"installment_amount"`
}

type ApproveLoanResponse struct {
	Loan          *Loan           `json:"loan"`
	TotalPayable  decimal.Decimal `json:"total_payable"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	ReferenceEMI  decimal.Decimal `json:"reference_emi"`
}

type LoanPaymentRequest struct {
	MemberID uuid.UUID       `json:"member_id" validate:"required"`
	Amount   decimal.Decimal `json:"amount"`
	Mode     string          `json:"mode"`
}

type LoanPaymentResponse struct {
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	Status           string          `json:"status"`
}
