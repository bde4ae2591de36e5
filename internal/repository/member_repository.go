package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sahakari/ledger-engine/internal/domain"
)

type memberRepository struct {
	db *sqlx.DB
}

func NewMemberRepository(db *sqlx.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Create(ctx context.Context, member *domain.Member) error {
	query := `
		INSERT INTO members (id, name, phone, address, joining_date, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`

	_, err := r.db.ExecContext(ctx, query,
		member.ID,
		member.Name,
		member.Phone,
		member.Address,
		member.JoiningDate,
	)

	return err
}

func (r *memberRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	query := `
		SELECT id, name, phone, address, joining_date, created_at
		FROM members
		WHERE id = $1
	`

	var member domain.Member
	err := r.db.GetContext(ctx, &member, query, id)
	if err != nil {
		return nil, err
	}

	return &member, nil
}

func (r *memberRepository) GetByPhone(ctx context.Context, phone string) (*domain.Member, error) {
	query := `
		SELECT id, name, phone, address, joining_date, created_at
		FROM members
		WHERE phone = $1
	`

	var member domain.Member
	err := r.db.GetContext(ctx, &member, query, phone)
	if err != nil {
		return nil, err
	}

	return &member, nil
}

func (r *memberRepository) List(ctx context.Context) ([]*domain.Member, error) {
	query := `
		SELECT id, name, phone, address, joining_date, created_at
		FROM members
		ORDER BY joining_date, name
	`

	var members []*domain.Member
	err := r.db.SelectContext(ctx, &members, query)
	if err != nil {
		return nil, err
	}

	return members, nil
}

func (r *memberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM members WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
