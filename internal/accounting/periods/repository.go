package periods

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comanda-erp/comanda-erp/internal/accounting/shared"
)

type Repository interface {
	List(ctx context.Context, businessID int64) ([]Period, error)
	Get(ctx context.Context, id, businessID int64) (Period, error)
	FindCurrent(ctx context.Context, businessID int64, now time.Time) (Period, error)
	FindForDate(ctx context.Context, businessID int64, date time.Time) (Period, error)
	Insert(ctx context.Context, period Period) (Period, error)
	Update(ctx context.Context, period Period) (Period, error)
	Close(ctx context.Context, id, businessID, closedBy int64, at time.Time) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const periodColumns = `id, business_id, name, start_date, end_date, is_closed, closed_at, closed_by, created_at, updated_at`

func scanPeriod(row pgx.Row) (Period, error) {
	var p Period
	err := row.Scan(&p.ID, &p.BusinessID, &p.Name, &p.StartDate, &p.EndDate,
		&p.IsClosed, &p.ClosedAt, &p.ClosedBy, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *repository) List(ctx context.Context, businessID int64) ([]Period, error) {
	rows, err := r.db.Query(ctx, `SELECT `+periodColumns+` FROM accounting_periods
WHERE business_id=$1 ORDER BY start_date DESC`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id, businessID int64) (Period, error) {
	p, err := scanPeriod(r.db.QueryRow(ctx, `SELECT `+periodColumns+` FROM accounting_periods
WHERE id=$1 AND business_id=$2`, id, businessID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Period{}, shared.ErrPeriodNotFound
	}
	return p, err
}

// FindCurrent returns the open period covering the supplied instant.
func (r *repository) FindCurrent(ctx context.Context, businessID int64, now time.Time) (Period, error) {
	p, err := scanPeriod(r.db.QueryRow(ctx, `SELECT `+periodColumns+` FROM accounting_periods
WHERE business_id=$1 AND NOT is_closed AND $2 BETWEEN start_date AND end_date
ORDER BY start_date LIMIT 1`, businessID, now))
	if errors.Is(err, pgx.ErrNoRows) {
		return Period{}, shared.ErrPeriodNotFound
	}
	return p, err
}

// FindForDate returns the period covering the date, closed or not. When a
// closed period overlaps a later open one, the open period wins.
func (r *repository) FindForDate(ctx context.Context, businessID int64, date time.Time) (Period, error) {
	p, err := scanPeriod(r.db.QueryRow(ctx, `SELECT `+periodColumns+` FROM accounting_periods
WHERE business_id=$1 AND $2 BETWEEN start_date AND end_date
ORDER BY is_closed, start_date LIMIT 1`, businessID, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return Period{}, shared.ErrPeriodNotFound
	}
	return p, err
}

func (r *repository) Insert(ctx context.Context, p Period) (Period, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO accounting_periods (business_id, name, start_date, end_date)
VALUES ($1,$2,$3,$4) RETURNING id, created_at, updated_at`,
		p.BusinessID, p.Name, p.StartDate, p.EndDate)
	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Period{}, err
	}
	return p, nil
}

func (r *repository) Update(ctx context.Context, p Period) (Period, error) {
	row := r.db.QueryRow(ctx, `UPDATE accounting_periods
SET name=$3, start_date=$4, end_date=$5, updated_at=NOW()
WHERE id=$1 AND business_id=$2 RETURNING updated_at`,
		p.ID, p.BusinessID, p.Name, p.StartDate, p.EndDate)
	if err := row.Scan(&p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Period{}, shared.ErrPeriodNotFound
		}
		return Period{}, err
	}
	return p, nil
}

func (r *repository) Close(ctx context.Context, id, businessID, closedBy int64, at time.Time) error {
	cmd, err := r.db.Exec(ctx, `UPDATE accounting_periods
SET is_closed=TRUE, closed_at=$3, closed_by=$4, updated_at=NOW()
WHERE id=$1 AND business_id=$2 AND NOT is_closed`, id, businessID, at, closedBy)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrPeriodClosed
	}
	return nil
}
