package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/sahakari/ledger-engine/internal/domain"
)

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

const loanColumns = `id, member_id, loan_amount, interest_rate, status, remaining_balance,
	loan_date, next_due_date, description, created_at, updated_at`

const insertEntryQuery = `
	INSERT INTO ledger_entries
		(id, member_id, transaction_date, deposit_amount, loan_installment,
		 interest_auto, fine_auto, kind, mode, description, loan_id, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
	RETURNING seq
`

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (id, member_id, loan_amount, interest_rate, status,
			remaining_balance, loan_date, next_due_date, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.MemberID,
		loan.LoanAmount,
		loan.InterestRate,
		loan.Status,
		loan.RemainingBalance,
		loan.LoanDate,
		loan.NextDueDate,
		loan.Description,
	)

	return err
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	var loan domain.Loan
	err := r.db.GetContext(ctx, &loan, query, id)
	if err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	query := `
		UPDATE loans
		SET loan_amount = $2, interest_rate = $3, status = $4, remaining_balance = $5,
		    next_due_date = $6, description = $7, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.LoanAmount,
		loan.InterestRate,
		loan.Status,
		loan.RemainingBalance,
		loan.NextDueDate,
		loan.Description,
	)

	return err
}

func (r *loanRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE member_id = $1 ORDER BY loan_date, created_at`

	var loans []*domain.Loan
	err := r.db.SelectContext(ctx, &loans, query, memberID)
	if err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) ListActiveDueBefore(ctx context.Context, cutoff time.Time) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE status = $1 AND next_due_date IS NOT NULL AND next_due_date <= $2
		ORDER BY next_due_date
	`

	var loans []*domain.Loan
	err := r.db.SelectContext(ctx, &loans, query, domain.LoanStatusActive, cutoff)
	if err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) SumOutstandingByMember(ctx context.Context, memberID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(remaining_balance), 0)
		FROM loans
		WHERE member_id = $1 AND status = $2
	`

	var total decimal.Decimal
	err := r.db.GetContext(ctx, &total, query, memberID, domain.LoanStatusActive)
	if err != nil {
		return decimal.Zero, err
	}

	return total, nil
}

func (r *loanRepository) CountOpenByMember(ctx context.Context, memberID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM loans
		WHERE member_id = $1 AND status IN ($2, $3)
	`

	var count int
	err := r.db.GetContext(ctx, &count, query, memberID, domain.LoanStatusPending, domain.LoanStatusActive)
	return count, err
}

func (r *loanRepository) ActivateWithDisbursement(ctx context.Context, loan *domain.Loan, entry *domain.LedgerEntry) error {
	updateQuery := `
		UPDATE loans
		SET loan_amount = $2, interest_rate = $3, status = $4, remaining_balance = $5,
		    next_due_date = $6, updated_at = NOW()
		WHERE id = $1
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err = lockMember(ctx, tx, loan.MemberID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, updateQuery,
		loan.ID,
		loan.LoanAmount,
		loan.InterestRate,
		loan.Status,
		loan.RemainingBalance,
		loan.NextDueDate,
	)
	if err != nil {
		return err
	}

	err = tx.QueryRowContext(ctx, insertEntryQuery,
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

func (r *loanRepository) ApplyPayment(ctx context.Context, loan *domain.Loan, entry *domain.LedgerEntry) error {
	updateQuery := `
		UPDATE loans
		SET status = $2, remaining_balance = $3, next_due_date = $4, updated_at = NOW()
		WHERE id = $1
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Lock ordering: member first, then the loan row, matching the delete
	// path so payment and deletion for the same loan cannot interleave.
	if err = lockMember(ctx, tx, loan.MemberID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `SELECT id FROM loans WHERE id = $1 FOR UPDATE`, loan.ID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, updateQuery,
		loan.ID,
		loan.Status,
		loan.RemainingBalance,
		loan.NextDueDate,
	)
	if err != nil {
		return err
	}

	err = tx.QueryRowContext(ctx, insertEntryQuery,
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

func (r *loanRepository) DeleteIfNoPayments(ctx context.Context, id uuid.UUID) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var memberID uuid.UUID
	err = tx.QueryRowContext(ctx, `SELECT member_id FROM loans WHERE id = $1`, id).Scan(&memberID)
	if err != nil {
		return false, err
	}

	// Same lock ordering as ApplyPayment: member row, then loan row.
	if err = lockMember(ctx, tx, memberID); err != nil {
		return false, err
	}
	if _, err = tx.ExecContext(ctx, `SELECT id FROM loans WHERE id = $1 FOR UPDATE`, id); err != nil {
		return false, err
	}

	// Re-check history inside the transaction that performs the delete.
	var count int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM ledger_entries WHERE loan_id = $1`, id).Scan(&count)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM loans WHERE id = $1`, id); err != nil {
		return false, err
	}

	return true, tx.Commit()
}
