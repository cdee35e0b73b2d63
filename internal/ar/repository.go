package ar

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comanda-erp/comanda-erp/internal/platform/httpx"
	"github.com/comanda-erp/comanda-erp/internal/shared"
)

// ErrReceivableNotFound indicates a missing receivable.
var ErrReceivableNotFound = fmt.Errorf("%w: receivable", httpx.ErrNotFound)

// Filter narrows receivable listings.
type Filter struct {
	CustomerID *int64
	Status     *Status
}

type Repository interface {
	List(ctx context.Context, businessID int64, f Filter, rng shared.ListRange) ([]Receivable, error)
	Get(ctx context.Context, id, businessID int64) (Receivable, error)
	Insert(ctx context.Context, r Receivable) (Receivable, error)
	ListPayments(ctx context.Context, receivableID int64) ([]Payment, error)

	GetForUpdateTx(ctx context.Context, tx pgx.Tx, id, businessID int64) (Receivable, error)
	InsertPaymentTx(ctx context.Context, tx pgx.Tx, p Payment) (Payment, error)
	UpdateAmountsTx(ctx context.Context, tx pgx.Tx, r Receivable) error
}

const receivableColumns = `id, business_id, customer_id, order_id, COALESCE(reference, ''), COALESCE(description, ''),
amount, amount_paid, issued_at, due_date, status, paid_date, created_at, updated_at`

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func scanReceivable(row pgx.Row) (Receivable, error) {
	var r Receivable
	err := row.Scan(&r.ID, &r.BusinessID, &r.CustomerID, &r.OrderID, &r.Reference, &r.Description,
		&r.Amount, &r.AmountPaid, &r.IssuedAt, &r.DueDate, &r.Status, &r.PaidDate, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Receivable{}, ErrReceivableNotFound
	}
	return r, err
}

func (repo *repository) List(ctx context.Context, businessID int64, f Filter, rng shared.ListRange) ([]Receivable, error) {
	query := `SELECT ` + receivableColumns + ` FROM accounts_receivable WHERE business_id=$1`
	args := []any{businessID}
	if f.CustomerID != nil {
		args = append(args, *f.CustomerID)
		query += fmt.Sprintf(" AND customer_id=$%d", len(args))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		query += fmt.Sprintf(" AND status=$%d", len(args))
	}
	args = append(args, rng.Limit, rng.Offset)
	query += fmt.Sprintf(" ORDER BY due_date, id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := repo.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Receivable
	for rows.Next() {
		r, err := scanReceivable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (repo *repository) Get(ctx context.Context, id, businessID int64) (Receivable, error) {
	return scanReceivable(repo.db.QueryRow(ctx, `SELECT `+receivableColumns+`
FROM accounts_receivable WHERE id=$1 AND business_id=$2`, id, businessID))
}

func (repo *repository) Insert(ctx context.Context, r Receivable) (Receivable, error) {
	row := repo.db.QueryRow(ctx, `INSERT INTO accounts_receivable
(business_id, customer_id, order_id, reference, description, amount, amount_paid, issued_at, due_date, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10) RETURNING id, created_at, updated_at`,
		r.BusinessID, r.CustomerID, r.OrderID, r.Reference, r.Description,
		r.Amount, r.AmountPaid, r.IssuedAt, r.DueDate, r.Status)
	if err := row.Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return Receivable{}, err
	}
	return r, nil
}

func (repo *repository) ListPayments(ctx context.Context, receivableID int64) ([]Payment, error) {
	rows, err := repo.db.Query(ctx, `SELECT id, receivable_id, amount, COALESCE(method, ''), COALESCE(note, ''), paid_at, recorded_by, created_at
FROM ar_payments WHERE receivable_id=$1 ORDER BY paid_at, id`, receivableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.ReceivableID, &p.Amount, &p.Method, &p.Note,
			&p.PaidAt, &p.RecordedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (repo *repository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id, businessID int64) (Receivable, error) {
	return scanReceivable(tx.QueryRow(ctx, `SELECT `+receivableColumns+`
FROM accounts_receivable WHERE id=$1 AND business_id=$2 FOR UPDATE`, id, businessID))
}

func (repo *repository) InsertPaymentTx(ctx context.Context, tx pgx.Tx, p Payment) (Payment, error) {
	row := tx.QueryRow(ctx, `INSERT INTO ar_payments
(receivable_id, amount, method, note, paid_at, recorded_by)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING id, created_at`,
		p.ReceivableID, p.Amount, p.Method, p.Note, p.PaidAt, p.RecordedBy)
	if err := row.Scan(&p.ID, &p.CreatedAt); err != nil {
		return Payment{}, err
	}
	return p, nil
}

func (repo *repository) UpdateAmountsTx(ctx context.Context, tx pgx.Tx, r Receivable) error {
	_, err := tx.Exec(ctx, `UPDATE accounts_receivable
SET amount_paid=$2, status=$3, paid_date=$4, updated_at=NOW() WHERE id=$1`, r.ID, r.AmountPaid, r.Status, r.PaidDate)
	return err
}
