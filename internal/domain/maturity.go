package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MaturityStatusActive  = "active"
	MaturityStatusMatured = "matured"
	MaturityStatusClaimed = "claimed"
	MaturityStatusOverdue = "overdue"
)

// ValidMaturityStatus reports whether s is a recognised maturity status.
func ValidMaturityStatus(s string) bool {
	switch s {
	case MaturityStatusActive, MaturityStatusMatured, MaturityStatusClaimed, MaturityStatusOverdue:
		return true
	}
	return false
}

// MaturityRecord is a fixed-term deposit scheme. MaturityAmount is a snapshot
// computed once at enrollment and never recalculated. The stored status only
// matters when it is "claimed"; everything else is derived from the calendar
// on every read.
type MaturityRecord struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	MemberID         uuid.UUID        `json:"member_id" db:"member_id"`
	SchemeName       string           `json:"scheme_name" db:"scheme_name"`
	PrincipalAmount  decimal.Decimal  `json:"principal_amount" db:"principal_amount"`
	InterestRate     decimal.Decimal  `json:"interest_rate" db:"interest_rate"`
	MaturityAmount   decimal.Decimal  `json:"maturity_amount" db:"maturity_amount"`
	StartDate        time.Time        `json:"start_date" db:"start_date"`
	MaturityDate     time.Time        `json:"maturity_date" db:"maturity_date"`
	Status           string           `json:"status" db:"status"`
	ManualOverride   bool             `json:"manual_override" db:"manual_override"`
	AdjustedInterest *decimal.Decimal `json:"adjusted_interest,omitempty" db:"adjusted_interest"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

// MaturityView is the read model: the stored record plus the derived status
// and the linear-accrual figures recomputed for the current date.
type MaturityView struct {
	*MaturityRecord
	DerivedStatus     string          `json:"derived_status"`
	MonthsCompleted   int             `json:"months_completed"`
	RemainingMonths   int             `json:"remaining_months"`
	CurrentInterest   decimal.Decimal `json:"current_interest"`
	FullInterest      decimal.Decimal `json:"full_interest"`
	EffectiveInterest decimal.Decimal `json:"effective_interest"`
	CurrentAdjustment decimal.Decimal `json:"current_adjustment"`
}

// DTOs for requests and responses

type CreateMaturityRequest struct {
	MemberID        uuid.UUID       `json:"member_id" validate:"required"`
	SchemeName      string          `json:"scheme_name" validate:"required"`
	PrincipalAmount decimal.Decimal `json:"principal_amount"`
	InterestRate    decimal.Decimal `json:"interest_rate"`
	StartDate       string          `json:"start_date"`
}

type CreateMaturityResponse struct {
	ID             uuid.UUID       `json:"id"`
	MaturityAmount decimal.Decimal `json:"maturity_amount"`
	MaturityDate   time.Time       `json:"maturity_date"`
	DaysRemaining  int             `json:"days_remaining"`
}

type SetMaturityStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type SetOverrideRequest struct {
	AdjustedInterest decimal.Decimal `json:"adjusted_interest"`
}
