package domain

import (
	"time"

	"github.com/google/uuid"
)

// Member is the identity every ledger entry, loan and maturity record is
// scoped to. Identity is immutable after creation.
type Member struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Phone       string    `json:"phone" db:"phone"`
	Address     string    `json:"address" db:"address"`
	JoiningDate time.Time `json:"joining_date" db:"joining_date"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type CreateMemberRequest struct {
	Name        string `json:"name" validate:"required"`
	Phone       string `json:"phone" validate:"required"`
	Address     string `json:"address"`
	JoiningDate string `json:"joining_date"`
}
