package costcenters

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comanda-erp/comanda-erp/internal/accounting/shared"
)

type Repository interface {
	List(ctx context.Context, businessID int64, activeOnly bool) ([]CostCenter, error)
	Get(ctx context.Context, id, businessID int64) (CostCenter, error)
	Insert(ctx context.Context, center CostCenter) (CostCenter, error)
	Update(ctx context.Context, center CostCenter) (CostCenter, error)
	SoftDelete(ctx context.Context, id, businessID int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, businessID int64, activeOnly bool) ([]CostCenter, error) {
	query := `SELECT id, business_id, code, name, COALESCE(description, ''), parent_id, is_active, created_at, updated_at, deleted_at
FROM cost_centers WHERE business_id=$1 AND deleted_at IS NULL`
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY code`

	rows, err := r.db.Query(ctx, query, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CostCenter
	for rows.Next() {
		var c CostCenter
		if err := rows.Scan(&c.ID, &c.BusinessID, &c.Code, &c.Name, &c.Description,
			&c.ParentID, &c.IsActive, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id, businessID int64) (CostCenter, error) {
	var c CostCenter
	err := r.db.QueryRow(ctx, `SELECT id, business_id, code, name, COALESCE(description, ''), parent_id, is_active, created_at, updated_at, deleted_at
FROM cost_centers WHERE id=$1 AND business_id=$2 AND deleted_at IS NULL`, id, businessID).
		Scan(&c.ID, &c.BusinessID, &c.Code, &c.Name, &c.Description,
			&c.ParentID, &c.IsActive, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return CostCenter{}, shared.ErrCostCenterNotFound
	}
	return c, err
}

func (r *repository) Insert(ctx context.Context, c CostCenter) (CostCenter, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO cost_centers (business_id, code, name, description, parent_id, is_active)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING id, created_at, updated_at`,
		c.BusinessID, c.Code, c.Name, c.Description, c.ParentID, c.IsActive)
	if err := row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return CostCenter{}, err
	}
	return c, nil
}

func (r *repository) Update(ctx context.Context, c CostCenter) (CostCenter, error) {
	row := r.db.QueryRow(ctx, `UPDATE cost_centers
SET code=$3, name=$4, description=$5, parent_id=$6, is_active=$7, updated_at=NOW()
WHERE id=$1 AND business_id=$2 AND deleted_at IS NULL RETURNING updated_at`,
		c.ID, c.BusinessID, c.Code, c.Name, c.Description, c.ParentID, c.IsActive)
	if err := row.Scan(&c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CostCenter{}, shared.ErrCostCenterNotFound
		}
		return CostCenter{}, err
	}
	return c, nil
}

func (r *repository) SoftDelete(ctx context.Context, id, businessID int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE cost_centers
SET deleted_at=NOW(), is_active=FALSE, updated_at=NOW()
WHERE id=$1 AND business_id=$2 AND deleted_at IS NULL`, id, businessID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrCostCenterNotFound
	}
	return nil
}
