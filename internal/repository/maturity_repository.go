package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/sahakari/ledger-engine/internal/domain"
)

type maturityRepository struct {
	db *sqlx.DB
}

func NewMaturityRepository(db *sqlx.DB) MaturityRepository {
	return &maturityRepository{db: db}
}

const maturityColumns = `id, member_id, scheme_name, principal_amount, interest_rate,
	maturity_amount, start_date, maturity_date, status, manual_override,
	adjusted_interest, created_at, updated_at`

func (r *maturityRepository) Create(ctx context.Context, record *domain.MaturityRecord) error {
	query := `
		INSERT INTO maturity_records (id, member_id, scheme_name, principal_amount,
			interest_rate, maturity_amount, start_date, maturity_date, status,
			manual_override, adjusted_interest, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.MemberID,
		record.SchemeName,
		record.PrincipalAmount,
		record.InterestRate,
		record.MaturityAmount,
		record.StartDate,
		record.MaturityDate,
		record.Status,
		record.ManualOverride,
		record.AdjustedInterest,
	)

	return err
}

func (r *maturityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MaturityRecord, error) {
	query := `SELECT ` + maturityColumns + ` FROM maturity_records WHERE id = $1`

	var record domain.MaturityRecord
	err := r.db.GetContext(ctx, &record, query, id)
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *maturityRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.MaturityRecord, error) {
	query := `SELECT ` + maturityColumns + ` FROM maturity_records WHERE member_id = $1 ORDER BY start_date, created_at`

	var records []*domain.MaturityRecord
	err := r.db.SelectContext(ctx, &records, query, memberID)
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *maturityRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE maturity_records SET status = $2, updated_at = NOW() WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id, status)
	return err
}

func (r *maturityRepository) SetOverride(ctx context.Context, id uuid.UUID, adjustedInterest decimal.Decimal) error {
	query := `
		UPDATE maturity_records
		SET manual_override = TRUE, adjusted_interest = $2, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, adjustedInterest)
	return err
}

func (r *maturityRepository) ClearOverride(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE maturity_records
		SET manual_override = FALSE, adjusted_interest = NULL, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *maturityRepository) ListMaturingThrough(ctx context.Context, cutoff time.Time) ([]*domain.MaturityRecord, error) {
	query := `
		SELECT ` + maturityColumns + `
		FROM maturity_records
		WHERE status != $1 AND maturity_date <= $2
		ORDER BY maturity_date
	`

	var records []*domain.MaturityRecord
	err := r.db.SelectContext(ctx, &records, query, domain.MaturityStatusClaimed, cutoff)
	if err != nil {
		return nil, err
	}

	return records, nil
}
