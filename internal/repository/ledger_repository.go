package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sahakari/ledger-engine/internal/domain"
)

type ledgerRepository struct {
	db *sqlx.DB
}

func NewLedgerRepository(db *sqlx.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

// lockMember takes the member row lock that serializes all passbook mutation
// and replay for one member. Cross-member operations never contend.
func lockMember(ctx context.Context, tx *sqlx.Tx, memberID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `SELECT id FROM members WHERE id = $1 FOR UPDATE`, memberID)
	return err
}

func (r *ledgerRepository) Append(ctx context.Context, entry *domain.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries
			(id, member_id, transaction_date, deposit_amount, loan_installment,
			 interest_auto, fine_auto, kind, mode, description, loan_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		RETURNING seq
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err = lockMember(ctx, tx, entry.MemberID); err != nil {
		return err
	}

	err = tx.QueryRowContext(ctx, query,
		entry.ID,
		entry.MemberID,
		entry.TransactionDate,
		entry.DepositAmount,
		entry.LoanInstallment,
		entry.InterestAuto,
		entry.FineAuto,
		entry.Kind,
		entry.Mode,
		entry.Description,
		entry.LoanID,
	).Scan(&entry.Seq)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *ledgerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error) {
	query := `
		SELECT id, seq, member_id, transaction_date, deposit_amount, loan_installment,
		       interest_auto, fine_auto, kind, mode, description, loan_id, created_at
		FROM ledger_entries
		WHERE id = $1
	`

	var entry domain.LedgerEntry
	err := r.db.GetContext(ctx, &entry, query, id)
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

func (r *ledgerRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.LedgerEntry, error) {
	// Canonical fold order. Balance replay and aggregation must both use
	// exactly this ordering.
	query := `
		SELECT id, seq, member_id, transaction_date, deposit_amount, loan_installment,
		       interest_auto, fine_auto, kind, mode, description, loan_id, created_at
		FROM ledger_entries
		WHERE member_id = $1
		ORDER BY transaction_date ASC, seq ASC
	`

	var entries []*domain.LedgerEntry
	err := r.db.SelectContext(ctx, &entries, query, memberID)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *ledgerRepository) Update(ctx context.Context, entry *domain.LedgerEntry) error {
	query := `
		UPDATE ledger_entries
		SET transaction_date = $2, deposit_amount = $3, loan_installment = $4,
		    interest_auto = $5, fine_auto = $6, mode = $7, description = $8
		WHERE id = $1
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err = lockMember(ctx, tx, entry.MemberID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, query,
		entry.ID,
		entry.TransactionDate,
		entry.DepositAmount,
		entry.LoanInstallment,
		entry.InterestAuto,
		entry.FineAuto,
		entry.Mode,
		entry.Description,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *ledgerRepository) Delete(ctx context.Context, entry *domain.LedgerEntry) error {
	query := `DELETE FROM ledger_entries WHERE id = $1`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err = lockMember(ctx, tx, entry.MemberID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, query, entry.ID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *ledgerRepository) CountByMember(ctx context.Context, memberID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM ledger_entries WHERE member_id = $1`

	var count int
	err := r.db.GetContext(ctx, &count, query, memberID)
	return count, err
}

func (r *ledgerRepository) CountByLoan(ctx context.Context, loanID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM ledger_entries WHERE loan_id = $1`

	var count int
	err := r.db.GetContext(ctx, &count, query, loanID)
	return count, err
}
