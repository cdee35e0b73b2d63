package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/comanda-erp/comanda-erp/internal/accounting/accounts"
	"github.com/comanda-erp/comanda-erp/internal/shared"
)

// Filter narrows general-ledger listings.
type Filter struct {
	AccountID *int64
	PeriodID  *int64
	From      *time.Time
	To        *time.Time
}

type Repository interface {
	List(ctx context.Context, businessID int64, f Filter, rng shared.ListRange) ([]Row, error)

	DeleteTx(ctx context.Context, tx pgx.Tx, businessID int64, from *time.Time) error
	InsertRowsTx(ctx context.Context, tx pgx.Tx, rows []Row) error
	ListPostedLinesTx(ctx context.Context, tx pgx.Tx, businessID int64, from *time.Time) ([]PostedLine, error)
	AccountNaturesTx(ctx context.Context, tx pgx.Tx, businessID int64) (map[int64]accounts.AccountNature, error)
	OpeningBalancesTx(ctx context.Context, tx pgx.Tx, businessID int64, before *time.Time) (map[int64]decimal.Decimal, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, businessID int64, f Filter, rng shared.ListRange) ([]Row, error) {
	query := `SELECT id, business_id, account_id, period_id, entry_id, line_id, entry_number,
entry_date, COALESCE(description, ''), debit, credit, balance_debit, balance_credit, created_at
FROM general_ledger WHERE business_id=$1`
	args := []any{businessID}
	if f.AccountID != nil {
		args = append(args, *f.AccountID)
		query += fmt.Sprintf(" AND account_id=$%d", len(args))
	}
	if f.PeriodID != nil {
		args = append(args, *f.PeriodID)
		query += fmt.Sprintf(" AND period_id=$%d", len(args))
	}
	if f.From != nil {
		args = append(args, *f.From)
		query += fmt.Sprintf(" AND entry_date >= $%d", len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		query += fmt.Sprintf(" AND entry_date <= $%d", len(args))
	}
	args = append(args, rng.Limit, rng.Offset)
	query += fmt.Sprintf(" ORDER BY entry_date, entry_id, id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.ID, &row.BusinessID, &row.AccountID, &row.PeriodID,
			&row.EntryID, &row.LineID, &row.EntryNumber, &row.EntryDate, &row.Description,
			&row.Debit, &row.Credit, &row.BalanceDebit, &row.BalanceCredit, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repository) DeleteTx(ctx context.Context, tx pgx.Tx, businessID int64, from *time.Time) error {
	if from == nil {
		_, err := tx.Exec(ctx, `DELETE FROM general_ledger WHERE business_id=$1`, businessID)
		return err
	}
	_, err := tx.Exec(ctx, `DELETE FROM general_ledger WHERE business_id=$1 AND entry_date >= $2`, businessID, *from)
	return err
}

func (r *repository) InsertRowsTx(ctx context.Context, tx pgx.Tx, rows []Row) error {
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"general_ledger"},
		[]string{"business_id", "account_id", "period_id", "entry_id", "line_id", "entry_number", "entry_date", "description", "debit", "credit", "balance_debit", "balance_credit"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			row := rows[i]
			return []any{row.BusinessID, row.AccountID, row.PeriodID, row.EntryID, row.LineID,
				row.EntryNumber, row.EntryDate, row.Description, row.Debit, row.Credit,
				row.BalanceDebit, row.BalanceCredit}, nil
		}))
	return err
}

func (r *repository) ListPostedLinesTx(ctx context.Context, tx pgx.Tx, businessID int64, from *time.Time) ([]PostedLine, error) {
	query := `SELECT e.id, e.entry_number, e.entry_date, COALESCE(l.description, e.description, ''), e.period_id,
l.id, l.account_id, l.debit, l.credit
FROM journal_entries e
JOIN journal_lines l ON l.entry_id = e.id
WHERE e.business_id=$1 AND e.status IN ('posted', 'reversed') AND e.deleted_at IS NULL`
	args := []any{businessID}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND e.entry_date >= $%d", len(args))
	}
	query += ` ORDER BY e.entry_date, e.id, l.position`

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PostedLine
	for rows.Next() {
		var l PostedLine
		if err := rows.Scan(&l.EntryID, &l.EntryNumber, &l.EntryDate, &l.Description, &l.PeriodID,
			&l.LineID, &l.AccountID, &l.Debit, &l.Credit); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repository) AccountNaturesTx(ctx context.Context, tx pgx.Tx, businessID int64) (map[int64]accounts.AccountNature, error) {
	rows, err := tx.Query(ctx, `SELECT id, nature FROM chart_of_accounts WHERE business_id=$1`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[int64]accounts.AccountNature)
	for rows.Next() {
		var (
			id     int64
			nature accounts.AccountNature
		)
		if err := rows.Scan(&id, &nature); err != nil {
			return nil, err
		}
		out[id] = nature
	}
	return out, rows.Err()
}

// OpeningBalancesTx computes each account's nature-signed balance at the cut
// date: the configured initial balance plus all posted movement strictly
// before the cut. A nil cut returns just the initial balances.
func (r *repository) OpeningBalancesTx(ctx context.Context, tx pgx.Tx, businessID int64, before *time.Time) (map[int64]decimal.Decimal, error) {
	query := `SELECT a.id,
a.initial_balance + COALESCE(SUM(
  CASE WHEN e.id IS NULL THEN 0
       WHEN a.nature = 'debit' THEN l.debit - l.credit
       ELSE l.credit - l.debit END
), 0)
FROM chart_of_accounts a
LEFT JOIN journal_lines l ON l.account_id = a.id
LEFT JOIN journal_entries e ON e.id = l.entry_id
  AND e.status IN ('posted', 'reversed') AND e.deleted_at IS NULL`
	args := []any{businessID}
	if before != nil {
		args = append(args, *before)
		query += fmt.Sprintf(" AND e.entry_date < $%d", len(args))
	} else {
		query += " AND FALSE"
	}
	query += ` WHERE a.business_id=$1 GROUP BY a.id`

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[int64]decimal.Decimal)
	for rows.Next() {
		var (
			id  int64
			bal decimal.Decimal
		)
		if err := rows.Scan(&id, &bal); err != nil {
			return nil, err
		}
		out[id] = bal
	}
	return out, rows.Err()
}
