package mappings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comanda-erp/comanda-erp/internal/accounting/shared"
)

type Repository interface {
	Get(ctx context.Context, businessID int64, role string) (RoleMapping, error)
	ListByBusiness(ctx context.Context, businessID int64) ([]RoleMapping, error)
	Put(ctx context.Context, mapping RoleMapping) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

// Get resolves the account mapped to a role for a business.
func (r *repository) Get(ctx context.Context, businessID int64, role string) (RoleMapping, error) {
	if role == "" {
		return RoleMapping{}, errors.New("accounting: role required")
	}
	var m RoleMapping
	err := r.db.QueryRow(ctx, `SELECT business_id, role, account_id, created_at, updated_at
FROM account_role_mappings WHERE business_id=$1 AND role=$2`, businessID, role).
		Scan(&m.BusinessID, &m.Role, &m.AccountID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RoleMapping{}, shared.ErrMappingNotFound
		}
		return RoleMapping{}, err
	}
	return m, nil
}

func (r *repository) ListByBusiness(ctx context.Context, businessID int64) ([]RoleMapping, error) {
	rows, err := r.db.Query(ctx, `SELECT business_id, role, account_id, created_at, updated_at
FROM account_role_mappings WHERE business_id=$1 ORDER BY role`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RoleMapping
	for rows.Next() {
		var m RoleMapping
		if err := rows.Scan(&m.BusinessID, &m.Role, &m.AccountID, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *repository) Put(ctx context.Context, m RoleMapping) error {
	_, err := r.db.Exec(ctx, `INSERT INTO account_role_mappings (business_id, role, account_id)
VALUES ($1,$2,$3)
ON CONFLICT (business_id, role) DO UPDATE SET account_id=EXCLUDED.account_id, updated_at=NOW()`,
		m.BusinessID, m.Role, m.AccountID)
	return err
}
