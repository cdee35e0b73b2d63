package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	// AccountBalances aggregates posted movement per account over the
	// window. With includeInitial the configured initial balance seeds
	// each account's balance, which the balance sheet and trial balance
	// need and the income statement must not have.
	AccountBalances(ctx context.Context, businessID int64, from, to *time.Time, includeInitial bool) ([]AccountBalance, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) AccountBalances(ctx context.Context, businessID int64, from, to *time.Time, includeInitial bool) ([]AccountBalance, error) {
	seed := "0"
	if includeInitial {
		seed = "a.initial_balance"
	}
	query := `SELECT a.id, a.code, a.name, a.type, a.nature, a.initial_balance,
COALESCE(SUM(CASE WHEN e.id IS NULL THEN 0 ELSE l.debit END), 0),
COALESCE(SUM(CASE WHEN e.id IS NULL THEN 0 ELSE l.credit END), 0),
` + seed + ` + COALESCE(SUM(
  CASE WHEN e.id IS NULL THEN 0
       WHEN a.nature = 'debit' THEN l.debit - l.credit
       ELSE l.credit - l.debit END
), 0)
FROM chart_of_accounts a
LEFT JOIN journal_lines l ON l.account_id = a.id
LEFT JOIN journal_entries e ON e.id = l.entry_id
  AND e.status IN ('posted', 'reversed') AND e.deleted_at IS NULL`
	args := []any{businessID}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND e.entry_date >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND e.entry_date <= $%d", len(args))
	}
	query += ` WHERE a.business_id=$1 AND a.deleted_at IS NULL
GROUP BY a.id, a.code, a.name, a.type, a.nature, a.initial_balance
ORDER BY a.code`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AccountBalance
	for rows.Next() {
		var b AccountBalance
		if err := rows.Scan(&b.AccountID, &b.Code, &b.Name, &b.Type, &b.Nature,
			&b.Initial, &b.Debit, &b.Credit, &b.Balance); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
