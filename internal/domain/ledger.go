package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entry kinds. The tag is set at creation time and replaces the legacy
// mode-string sniffing for classifying loan-related rows.
const (
	EntryKindDeposit          = "deposit"
	EntryKindLoanDisbursement = "loan_disbursement"
	EntryKindEmiPayment       = "emi_payment"
	EntryKindFine             = "fine"
	EntryKindInterest         = "interest"
	EntryKindReminder         = "reminder"
)

// LedgerEntry is one immutable monetary event in a member's passbook.
// TransactionDate is the event time; Seq is the insertion order and breaks
// ties between entries dated the same day, so the balance fold is stable.
type LedgerEntry struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	Seq             int64           `json:"seq" db:"seq"`
	MemberID        uuid.UUID       `json:"member_id" db:"member_id"`
	TransactionDate time.Time       `json:"transaction_date" db:"transaction_date"`
	DepositAmount   decimal.Decimal `json:"deposit_amount" db:"deposit_amount"`
	LoanInstallment decimal.Decimal `json:"loan_installment" db:"loan_installment"`
	InterestAuto    decimal.Decimal `json:"interest_auto" db:"interest_auto"`
	FineAuto        decimal.Decimal `json:"fine_auto" db:"fine_auto"`
	Kind            string          `json:"kind" db:"kind"`
	Mode            string          `json:"mode" db:"mode"`
	Description     string          `json:"description" db:"description"`
	LoanID          *uuid.UUID      `json:"loan_id,omitempty" db:"loan_id"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// SignedAmount is the entry's contribution to the running balance:
// deposit - installment + interest + fine.
func (e *LedgerEntry) SignedAmount() decimal.Decimal {
	return e.DepositAmount.
		Sub(e.LoanInstallment).
		Add(e.InterestAuto).
		Add(e.FineAuto)
}

// IsNoOp reports whether the entry carries neither a deposit nor an
// installment. Such entries are rejected at creation.
func (e *LedgerEntry) IsNoOp() bool {
	return !e.DepositAmount.IsPositive() && !e.LoanInstallment.IsPositive()
}

// IsLoanRelated reports whether the entry is excluded from deposit totals.
// The kind tag is authoritative; the loan back-reference and the historical
// mode-text heuristic ("loan"/"disbursal"/"approved") are kept as fallbacks
// for rows written before tagging existed.
func (e *LedgerEntry) IsLoanRelated() bool {
	switch e.Kind {
	case EntryKindLoanDisbursement, EntryKindEmiPayment:
		return true
	}
	if e.LoanID != nil {
		return true
	}

	mode := strings.ToLower(e.Mode)
	return strings.Contains(mode, "loan") ||
		strings.Contains(mode, "disbursal") ||
		strings.Contains(mode, "approved")
}

// DTOs for requests and responses

type CreateEntryRequest struct {
	TransactionDate string          `json:"transaction_date" validate:"required"`
	DepositAmount   decimal.Decimal `json:"deposit_amount"`
	LoanInstallment decimal.Decimal `json:"loan_installment"`
	InterestAuto    decimal.Decimal `json:"interest_auto"`
	FineAuto        decimal.Decimal `json:"fine_auto"`
	Kind            string          `json:"kind" validate:"omitempty,oneof=deposit loan_disbursement emi_payment fine interest reminder"`
	Mode            string          `json:"mode" validate:"required"`
	Description     string          `json:"description"`
	LoanID          *uuid.UUID      `json:"loan_id,omitempty"`
}

// UpdateEntryRequest replaces an entry wholesale. All four amounts are taken
// as sent, so a caller editing only the description must resend the amounts
// or they are zeroed (and the edit rejected as a no-op).
type UpdateEntryRequest struct {
	TransactionDate string          `json:"transaction_date"`
	DepositAmount   decimal.Decimal `json:"deposit_amount"`
	LoanInstallment decimal.Decimal `json:"loan_installment"`
	InterestAuto    decimal.Decimal `json:"interest_auto"`
	FineAuto        decimal.Decimal `json:"fine_auto"`
	Mode            string          `json:"mode"`
	Description     string          `json:"description"`
}

type CreateEntryResponse struct {
	Entry         *LedgerEntry    `json:"entry"`
	Balance       decimal.Decimal `json:"balance"`
	LoanBalance   decimal.Decimal `json:"loan_balance"`
	RemainingLoan decimal.Decimal `json:"remaining_loan"`
}

// EntryWithBalance annotates an entry with the running balance the canonical
// fold produced at that entry's position.
type EntryWithBalance struct {
	*LedgerEntry
	Balance decimal.Decimal `json:"balance"`
}

type LedgerPage struct {
	Entries    []*EntryWithBalance `json:"entries"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	TotalItems int                 `json:"total_items"`
	Balance    decimal.Decimal     `json:"balance"`
}

type DeleteEntryResponse struct {
	DeletedEntry *LedgerEntry    `json:"deleted_entry"`
	NewBalance   decimal.Decimal `json:"new_balance"`
}

type UpdateEntryResponse struct {
	Entry      *LedgerEntry    `json:"entry"`
	NewBalance decimal.Decimal `json:"new_balance"`
}
