package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLedgerEntry_SignedAmount(t *testing.T) {
	entry := &LedgerEntry{
		DepositAmount:   decimal.NewFromInt(1000),
		LoanInstallment: decimal.NewFromInt(300),
		InterestAuto:    decimal.NewFromInt(10),
		FineAuto:        decimal.NewFromInt(5),
	}

	assert.True(t, entry.SignedAmount().Equal(decimal.NewFromInt(715)))
}

func TestLedgerEntry_IsNoOp(t *testing.T) {
	assert.True(t, (&LedgerEntry{FineAuto: decimal.NewFromInt(50)}).IsNoOp())
	assert.False(t, (&LedgerEntry{DepositAmount: decimal.NewFromInt(1)}).IsNoOp())
	assert.False(t, (&LedgerEntry{LoanInstallment: decimal.NewFromInt(1)}).IsNoOp())
}

func TestLedgerEntry_IsLoanRelated(t *testing.T) {
	loanID := uuid.New()

	tests := []struct {
		name     string
		entry    LedgerEntry
		expected bool
	}{
		{name: "kind tag disbursement", entry: LedgerEntry{Kind: EntryKindLoanDisbursement}, expected: true},
		{name: "kind tag emi", entry: LedgerEntry{Kind: EntryKindEmiPayment}, expected: true},
		{name: "kind tag deposit", entry: LedgerEntry{Kind: EntryKindDeposit, Mode: "CASH"}, expected: false},
		{name: "loan back-reference", entry: LedgerEntry{LoanID: &loanID}, expected: true},
		{name: "legacy mode loan", entry: LedgerEntry{Mode: "Loan Disbursement"}, expected: true},
		{name: "legacy mode disbursal", entry: LedgerEntry{Mode: "DISBURSAL via cheque"}, expected: true},
		{name: "legacy mode approved", entry: LedgerEntry{Mode: "Approved 2024"}, expected: true},
		{name: "plain cash", entry: LedgerEntry{Mode: "CASH"}, expected: false},
		{name: "untagged upi", entry: LedgerEntry{Mode: "UPI"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.entry.IsLoanRelated())
		})
	}
}
