package accounts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comanda-erp/comanda-erp/internal/accounting/shared"
)

// Repository encapsulates chart-of-accounts persistence.
type Repository interface {
	List(ctx context.Context, businessID int64, activeOnly bool) ([]Account, error)
	Get(ctx context.Context, id, businessID int64) (Account, error)
	FindByCode(ctx context.Context, businessID int64, code string) (Account, error)
	Insert(ctx context.Context, account Account) (Account, error)
	Update(ctx context.Context, account Account) (Account, error)
	SoftDelete(ctx context.Context, id, businessID int64) error
	CountLineReferences(ctx context.Context, accountID int64) (int64, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const accountColumns = `id, business_id, code, name, COALESCE(description, ''), account_type, nature,
parent_id, level, allows_manual_entries, is_active, is_system, initial_balance, initial_balance_date,
created_at, updated_at, deleted_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.BusinessID, &a.Code, &a.Name, &a.Description, &a.Type, &a.Nature,
		&a.ParentID, &a.Level, &a.AllowsManualEntries, &a.IsActive, &a.IsSystem,
		&a.InitialBalance, &a.InitialBalanceDate, &a.CreatedAt, &a.UpdatedAt, &a.DeletedAt)
	return a, err
}

func (r *repository) List(ctx context.Context, businessID int64, activeOnly bool) ([]Account, error) {
	query := `SELECT ` + accountColumns + ` FROM chart_of_accounts
WHERE business_id=$1 AND deleted_at IS NULL`
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY code`

	rows, err := r.db.Query(ctx, query, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id, businessID int64) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM chart_of_accounts
WHERE id=$1 AND business_id=$2 AND deleted_at IS NULL`, id, businessID)
	a, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, shared.ErrAccountNotFound
	}
	return a, err
}

func (r *repository) FindByCode(ctx context.Context, businessID int64, code string) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM chart_of_accounts
WHERE business_id=$1 AND code=$2 AND deleted_at IS NULL`, businessID, code)
	a, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, shared.ErrAccountNotFound
	}
	return a, err
}

func (r *repository) Insert(ctx context.Context, a Account) (Account, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO chart_of_accounts
(business_id, code, name, description, account_type, nature, parent_id, level,
 allows_manual_entries, is_active, is_system, initial_balance, initial_balance_date)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
RETURNING id, created_at, updated_at`,
		a.BusinessID, a.Code, a.Name, a.Description, a.Type, a.Nature, a.ParentID, a.Level,
		a.AllowsManualEntries, a.IsActive, a.IsSystem, a.InitialBalance, a.InitialBalanceDate)
	if err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		// The service checks the code upfront, but concurrent creates can
		// still trip the unique index.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Account{}, shared.ErrDuplicateCode
		}
		return Account{}, err
	}
	return a, nil
}

func (r *repository) Update(ctx context.Context, a Account) (Account, error) {
	row := r.db.QueryRow(ctx, `UPDATE chart_of_accounts SET
code=$3, name=$4, description=$5, account_type=$6, nature=$7, parent_id=$8, level=$9,
allows_manual_entries=$10, is_active=$11, initial_balance=$12, initial_balance_date=$13, updated_at=NOW()
WHERE id=$1 AND business_id=$2 AND deleted_at IS NULL
RETURNING updated_at`,
		a.ID, a.BusinessID, a.Code, a.Name, a.Description, a.Type, a.Nature, a.ParentID, a.Level,
		a.AllowsManualEntries, a.IsActive, a.InitialBalance, a.InitialBalanceDate)
	if err := row.Scan(&a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}

func (r *repository) SoftDelete(ctx context.Context, id, businessID int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE chart_of_accounts
SET deleted_at=NOW(), is_active=FALSE, updated_at=NOW()
WHERE id=$1 AND business_id=$2 AND deleted_at IS NULL`, id, businessID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrAccountNotFound
	}
	return nil
}

func (r *repository) CountLineReferences(ctx context.Context, accountID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM journal_lines l
JOIN journal_entries e ON e.id = l.entry_id
WHERE l.account_id=$1 AND e.deleted_at IS NULL`, accountID).Scan(&count)
	return count, err
}
