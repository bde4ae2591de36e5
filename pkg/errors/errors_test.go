package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "validation", err: WrapValidation("bad input", ErrInvalidAmount), expected: http.StatusBadRequest},
		{name: "invalid entry", err: WrapInvalidEntry(), expected: http.StatusBadRequest},
		{name: "member not found", err: WrapMemberNotFound("abc"), expected: http.StatusNotFound},
		{name: "loan not found", err: WrapLoanNotFound("abc"), expected: http.StatusNotFound},
		{name: "loan not pending", err: WrapLoanNotPending("abc", "active"), expected: http.StatusConflict},
		{name: "already paid off", err: WrapLoanAlreadyPaidOff("abc"), expected: http.StatusConflict},
		{name: "has payments", err: WrapLoanHasPayments("abc"), expected: http.StatusConflict},
		{name: "duplicate phone", err: WrapDuplicatePhone("9876543210"), expected: http.StatusConflict},
		{name: "database", err: WrapDatabaseError(errors.New("boom")), expected: http.StatusInternalServerError},
		{name: "plain error", err: errors.New("boom"), expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestBusinessError_Unwrap(t *testing.T) {
	err := WrapLoanNotActive("abc", "pending")

	assert.True(t, errors.Is(err, ErrLoanNotActive))

	var be *BusinessError
	assert.True(t, errors.As(err, &be))
	assert.Equal(t, ErrCodeLoanNotActive, be.Code)
}
