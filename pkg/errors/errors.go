package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors
var (
	ErrMemberNotFound   = errors.New("member not found")
	ErrEntryNotFound    = errors.New("ledger entry not found")
	ErrLoanNotFound     = errors.New("loan not found")
	ErrMaturityNotFound = errors.New("maturity record not found")

	ErrInvalidEntry  = errors.New("ledger entry must carry a deposit or an installment")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidStatus = errors.New("invalid status")

	ErrLoanNotPending     = errors.New("loan is not pending")
	ErrLoanNotActive      = errors.New("loan is not active")
	ErrLoanAlreadyPaidOff = errors.New("loan is already paid off")
	ErrLoanHasPayments    = errors.New("loan has payment history")

	ErrDuplicatePhone   = errors.New("phone number already registered")
	ErrMemberHasRecords = errors.New("member still owns ledger entries or open loans")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeInvalidDate      = "INVALID_DATE"
	ErrCodeInvalidEntry     = "INVALID_ENTRY"
	ErrCodeMemberNotFound   = "MEMBER_NOT_FOUND"
	ErrCodeEntryNotFound    = "ENTRY_NOT_FOUND"
	ErrCodeLoanNotFound     = "LOAN_NOT_FOUND"
	ErrCodeMaturityNotFound = "MATURITY_NOT_FOUND"
	ErrCodeLoanNotPending   = "LOAN_NOT_PENDING"
	ErrCodeLoanNotActive    = "LOAN_NOT_ACTIVE"
	ErrCodeAlreadyPaidOff   = "LOAN_ALREADY_PAID_OFF"
	ErrCodeHasPayments      = "LOAN_HAS_PAYMENT_HISTORY"
	ErrCodeDuplicatePhone   = "DUPLICATE_PHONE"
	ErrCodeMemberHasRecords = "MEMBER_HAS_RECORDS"
	ErrCodeDatabaseError    = "DATABASE_ERROR"
	ErrCodeCacheError       = "CACHE_ERROR"
)

// statusByCode maps business error codes onto HTTP statuses: validation
// failures are 400, unknown ids 404, lifecycle and integrity conflicts 409.
var statusByCode = map[string]int{
	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeInvalidDate:      http.StatusBadRequest,
	ErrCodeInvalidEntry:     http.StatusBadRequest,
	ErrCodeMemberNotFound:   http.StatusNotFound,
	ErrCodeEntryNotFound:    http.StatusNotFound,
	ErrCodeLoanNotFound:     http.StatusNotFound,
	ErrCodeMaturityNotFound: http.StatusNotFound,
	ErrCodeLoanNotPending:   http.StatusConflict,
	ErrCodeLoanNotActive:    http.StatusConflict,
	ErrCodeAlreadyPaidOff:   http.StatusConflict,
	ErrCodeHasPayments:      http.StatusConflict,
	ErrCodeDuplicatePhone:   http.StatusConflict,
	ErrCodeMemberHasRecords: http.StatusConflict,
	ErrCodeDatabaseError:    http.StatusInternalServerError,
	ErrCodeCacheError:       http.StatusInternalServerError,
}

// HTTPStatus resolves the response status for an error. Unknown errors are
// treated as internal.
func HTTPStatus(err error) int {
	var be *BusinessError
	if errors.As(err, &be) {
		if status, ok := statusByCode[be.Code]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}

// Wrap common errors with business context

func WrapValidation(message string, err error) *BusinessError {
	return NewBusinessError(ErrCodeValidation, message, err)
}

func WrapInvalidDate(err error) *BusinessError {
	return NewBusinessError(ErrCodeInvalidDate, "date must be an ISO-8601 calendar date", err)
}

func WrapInvalidEntry() *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidEntry,
		"at least one of deposit amount or loan installment must be positive",
		ErrInvalidEntry,
	)
}

func WrapMemberNotFound(memberID string) *BusinessError {
	return NewBusinessError(
		ErrCodeMemberNotFound,
		fmt.Sprintf("Member with ID %s not found", memberID),
		ErrMemberNotFound,
	)
}

func WrapEntryNotFound(entryID string) *BusinessError {
	return NewBusinessError(
		ErrCodeEntryNotFound,
		fmt.Sprintf("Ledger entry with ID %s not found", entryID),
		ErrEntryNotFound,
	)
}

func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapMaturityNotFound(recordID string) *BusinessError {
	return NewBusinessError(
		ErrCodeMaturityNotFound,
		fmt.Sprintf("Maturity record with ID %s not found", recordID),
		ErrMaturityNotFound,
	)
}

func WrapLoanNotPending(loanID, currentStatus string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotPending,
		fmt.Sprintf("Loan %s cannot transition from status %q, expected pending", loanID, currentStatus),
		ErrLoanNotPending,
	)
}

func WrapLoanNotActive(loanID, currentStatus string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotActive,
		fmt.Sprintf("Loan %s cannot accept payments in status %q, expected active", loanID, currentStatus),
		ErrLoanNotActive,
	)
}

func WrapLoanAlreadyPaidOff(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeAlreadyPaidOff,
		fmt.Sprintf("Loan %s has no remaining balance", loanID),
		ErrLoanAlreadyPaidOff,
	)
}

func WrapLoanHasPayments(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeHasPayments,
		fmt.Sprintf("Loan %s has ledger entries referencing it and cannot be deleted", loanID),
		ErrLoanHasPayments,
	)
}

func WrapDuplicatePhone(phone string) *BusinessError {
	return NewBusinessError(
		ErrCodeDuplicatePhone,
		fmt.Sprintf("Phone number %s is already registered", phone),
		ErrDuplicatePhone,
	)
}

func WrapMemberHasRecords(memberID string) *BusinessError {
	return NewBusinessError(
		ErrCodeMemberHasRecords,
		fmt.Sprintf("Member %s still owns ledger entries or open loans", memberID),
		ErrMemberHasRecords,
	)
}

func WrapInvalidStatus(status string) *BusinessError {
	return NewBusinessError(
		ErrCodeValidation,
		fmt.Sprintf("status %q is not a valid maturity status", status),
		ErrInvalidStatus,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"cache operation failed",
		err,
	)
}
