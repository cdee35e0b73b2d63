package ap

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comanda-erp/comanda-erp/internal/platform/httpx"
	"github.com/comanda-erp/comanda-erp/internal/shared"
)

// ErrPayableNotFound indicates a missing payable.
var ErrPayableNotFound = fmt.Errorf("%w: payable", httpx.ErrNotFound)

// Filter narrows payable listings.
type Filter struct {
	SupplierID *int64
	Status     *Status
}

type Repository interface {
	List(ctx context.Context, businessID int64, f Filter, rng shared.ListRange) ([]Payable, error)
	Get(ctx context.Context, id, businessID int64) (Payable, error)
	Insert(ctx context.Context, p Payable) (Payable, error)
	ListPayments(ctx context.Context, payableID int64) ([]Payment, error)

	GetForUpdateTx(ctx context.Context, tx pgx.Tx, id, businessID int64) (Payable, error)
	InsertPaymentTx(ctx context.Context, tx pgx.Tx, p Payment) (Payment, error)
	UpdateAmountsTx(ctx context.Context, tx pgx.Tx, p Payable) error
}

const payableColumns = `id, business_id, supplier_id, purchase_id, COALESCE(reference, ''), COALESCE(description, ''),
amount, amount_paid, issued_at, due_date, status, paid_date, created_at, updated_at`

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func scanPayable(row pgx.Row) (Payable, error) {
	var p Payable
	err := row.Scan(&p.ID, &p.BusinessID, &p.SupplierID, &p.PurchaseID, &p.Reference, &p.Description,
		&p.Amount, &p.AmountPaid, &p.IssuedAt, &p.DueDate, &p.Status, &p.PaidDate, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Payable{}, ErrPayableNotFound
	}
	return p, err
}

func (repo *repository) List(ctx context.Context, businessID int64, f Filter, rng shared.ListRange) ([]Payable, error) {
	query := `SELECT ` + payableColumns + ` FROM accounts_payable WHERE business_id=$1`
	args := []any{businessID}
	if f.SupplierID != nil {
		args = append(args, *f.SupplierID)
		query += fmt.Sprintf(" AND supplier_id=$%d", len(args))
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
	var out []Payable
	for rows.Next() {
		p, err := scanPayable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (repo *repository) Get(ctx context.Context, id, businessID int64) (Payable, error) {
	return scanPayable(repo.db.QueryRow(ctx, `SELECT `+payableColumns+`
FROM accounts_payable WHERE id=$1 AND business_id=$2`, id, businessID))
}

func (repo *repository) Insert(ctx context.Context, p Payable) (Payable, error) {
	row := repo.db.QueryRow(ctx, `INSERT INTO accounts_payable
(business_id, supplier_id, purchase_id, reference, description, amount, amount_paid, issued_at, due_date, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10) RETURNING id, created_at, updated_at`,
		p.BusinessID, p.SupplierID, p.PurchaseID, p.Reference, p.Description,
		p.Amount, p.AmountPaid, p.IssuedAt, p.DueDate, p.Status)
	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Payable{}, err
	}
	return p, nil
}

func (repo *repository) ListPayments(ctx context.Context, payableID int64) ([]Payment, error) {
	rows, err := repo.db.Query(ctx, `SELECT id, payable_id, amount, COALESCE(method, ''), COALESCE(note, ''), paid_at, recorded_by, created_at
FROM ap_payments WHERE payable_id=$1 ORDER BY paid_at, id`, payableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.PayableID, &p.Amount, &p.Method, &p.Note,
			&p.PaidAt, &p.RecordedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (repo *repository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id, businessID int64) (Payable, error) {
	return scanPayable(tx.QueryRow(ctx, `SELECT `+payableColumns+`
FROM accounts_payable WHERE id=$1 AND business_id=$2 FOR UPDATE`, id, businessID))
}

func (repo *repository) InsertPaymentTx(ctx context.Context, tx pgx.Tx, p Payment) (Payment, error) {
	row := tx.QueryRow(ctx, `INSERT INTO ap_payments
(payable_id, amount, method, note, paid_at, recorded_by)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING id, created_at`,
		p.PayableID, p.Amount, p.Method, p.Note, p.PaidAt, p.RecordedBy)
	if err := row.Scan(&p.ID, &p.CreatedAt); err != nil {
		return Payment{}, err
	}
	return p, nil
}

func (repo *repository) UpdateAmountsTx(ctx context.Context, tx pgx.Tx, p Payable) error {
	_, err := tx.Exec(ctx, `UPDATE accounts_payable
SET amount_paid=$2, status=$3, paid_date=$4, updated_at=NOW() WHERE id=$1`, p.ID, p.AmountPaid, p.Status, p.PaidDate)
	return err
}
