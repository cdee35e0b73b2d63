package journals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	accshared "github.com/comanda-erp/comanda-erp/internal/accounting/shared"
	"github.com/comanda-erp/comanda-erp/internal/shared"
)

// Filter narrows journal entry listings.
type Filter struct {
	Status     *EntryStatus
	SourceType *SourceType
	PeriodID   *int64
	From       *time.Time
	To         *time.Time
}

type Repository interface {
	List(ctx context.Context, businessID int64, f Filter, rng shared.ListRange) ([]Entry, error)
	Get(ctx context.Context, id, businessID int64) (Entry, error)

	InsertTx(ctx context.Context, tx pgx.Tx, entry Entry) (Entry, error)
	GetForUpdateTx(ctx context.Context, tx pgx.Tx, id, businessID int64) (Entry, error)
	UpdateHeaderTx(ctx context.Context, tx pgx.Tx, entry Entry) error
	ReplaceLinesTx(ctx context.Context, tx pgx.Tx, entryID int64, lines []Line) error
	MarkPostedTx(ctx context.Context, tx pgx.Tx, id int64, number string, periodID *int64, postedBy int64, at time.Time) error
	MarkReversedTx(ctx context.Context, tx pgx.Tx, id, reversalID int64) error
	SoftDeleteTx(ctx context.Context, tx pgx.Tx, id int64) error
	NextEntryNumberTx(ctx context.Context, tx pgx.Tx, businessID int64, year int) (string, error)
}

const entryColumns = `id, business_id, COALESCE(entry_number, ''), entry_date, COALESCE(reference, ''), COALESCE(description, ''),
status, source_type, source_id, period_id, total_debit, total_credit,
created_by, posted_by, posted_at, reversed_by_entry_id, reverses_entry_id,
created_at, updated_at, deleted_at`

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.BusinessID, &e.EntryNumber, &e.EntryDate, &e.Reference, &e.Description,
		&e.Status, &e.SourceType, &e.SourceID, &e.PeriodID, &e.TotalDebit, &e.TotalCredit,
		&e.CreatedBy, &e.PostedBy, &e.PostedAt, &e.ReversedBy, &e.Reverses,
		&e.CreatedAt, &e.UpdatedAt, &e.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, accshared.ErrEntryNotFound
	}
	return e, err
}

func (r *repository) List(ctx context.Context, businessID int64, f Filter, rng shared.ListRange) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE business_id=$1 AND deleted_at IS NULL`
	args := []any{businessID}
	if f.Status != nil {
		args = append(args, *f.Status)
		query += fmt.Sprintf(" AND status=$%d", len(args))
	}
	if f.SourceType != nil {
		args = append(args, *f.SourceType)
		query += fmt.Sprintf(" AND source_type=$%d", len(args))
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
	query += fmt.Sprintf(" ORDER BY entry_date DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id, businessID int64) (Entry, error) {
	row := r.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries
WHERE id=$1 AND business_id=$2 AND deleted_at IS NULL`, id, businessID)
	e, err := scanEntry(row)
	if err != nil {
		return Entry{}, err
	}
	e.Lines, err = r.lines(ctx, r.db, id)
	return e, err
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *repository) lines(ctx context.Context, q querier, entryID int64) ([]Line, error) {
	rows, err := q.Query(ctx, `SELECT id, entry_id, account_id, COALESCE(description, ''), COALESCE(reference, ''), debit, credit, cost_center_id, position
FROM journal_lines WHERE entry_id=$1 ORDER BY position`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.EntryID, &l.AccountID, &l.Description, &l.Reference,
			&l.Debit, &l.Credit, &l.CostCenterID, &l.Position); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repository) InsertTx(ctx context.Context, tx pgx.Tx, e Entry) (Entry, error) {
	row := tx.QueryRow(ctx, `INSERT INTO journal_entries
(business_id, entry_number, entry_date, reference, description, status, source_type, source_id, period_id,
 total_debit, total_credit, created_by, posted_by, posted_at, reverses_entry_id)
VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
RETURNING id, created_at, updated_at`,
		e.BusinessID, e.EntryNumber, e.EntryDate, e.Reference, e.Description, e.Status, e.SourceType, e.SourceID, e.PeriodID,
		e.TotalDebit, e.TotalCredit, e.CreatedBy, e.PostedBy, e.PostedAt, e.Reverses)
	if err := row.Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return Entry{}, err
	}
	if err := r.ReplaceLinesTx(ctx, tx, e.ID, e.Lines); err != nil {
		return Entry{}, err
	}
	for i := range e.Lines {
		e.Lines[i].EntryID = e.ID
	}
	return e, nil
}

func (r *repository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id, businessID int64) (Entry, error) {
	row := tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries
WHERE id=$1 AND business_id=$2 AND deleted_at IS NULL FOR UPDATE`, id, businessID)
	e, err := scanEntry(row)
	if err != nil {
		return Entry{}, err
	}
	e.Lines, err = r.lines(ctx, tx, id)
	return e, err
}

func (r *repository) UpdateHeaderTx(ctx context.Context, tx pgx.Tx, e Entry) error {
	_, err := tx.Exec(ctx, `UPDATE journal_entries
SET entry_date=$2, reference=NULLIF($3, ''), description=$4, period_id=$5, total_debit=$6, total_credit=$7, updated_at=NOW()
WHERE id=$1`, e.ID, e.EntryDate, e.Reference, e.Description, e.PeriodID, e.TotalDebit, e.TotalCredit)
	return err
}

func (r *repository) ReplaceLinesTx(ctx context.Context, tx pgx.Tx, entryID int64, lines []Line) error {
	if _, err := tx.Exec(ctx, `DELETE FROM journal_lines WHERE entry_id=$1`, entryID); err != nil {
		return err
	}
	for i, l := range lines {
		_, err := tx.Exec(ctx, `INSERT INTO journal_lines
(entry_id, account_id, description, reference, debit, credit, cost_center_id, position)
VALUES ($1,$2,$3,NULLIF($4, ''),$5,$6,$7,$8)`,
			entryID, l.AccountID, l.Description, l.Reference, l.Debit, l.Credit, l.CostCenterID, i+1)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) MarkPostedTx(ctx context.Context, tx pgx.Tx, id int64, number string, periodID *int64, postedBy int64, at time.Time) error {
	_, err := tx.Exec(ctx, `UPDATE journal_entries
SET status=$2, entry_number=$3, period_id=$4, posted_by=$5, posted_at=$6, updated_at=NOW()
WHERE id=$1`, id, StatusPosted, number, periodID, postedBy, at)
	return err
}

func (r *repository) MarkReversedTx(ctx context.Context, tx pgx.Tx, id, reversalID int64) error {
	_, err := tx.Exec(ctx, `UPDATE journal_entries
SET status=$2, reversed_by_entry_id=$3, updated_at=NOW()
WHERE id=$1`, id, StatusReversed, reversalID)
	return err
}

func (r *repository) SoftDeleteTx(ctx context.Context, tx pgx.Tx, id int64) error {
	_, err := tx.Exec(ctx, `UPDATE journal_entries SET deleted_at=NOW(), updated_at=NOW() WHERE id=$1`, id)
	return err
}

// entryNumberLockClass namespaces the advisory lock taken while allocating
// entry numbers, keeping it clear of other advisory lock users.
const entryNumberLockClass = 4201

// NextEntryNumberTx allocates the next AS-<year>-NNNNNN number for the
// business. A transaction-scoped advisory lock serializes concurrent
// posters so the read-max-and-increment cannot race.
func (r *repository) NextEntryNumberTx(ctx context.Context, tx pgx.Tx, businessID int64, year int) (string, error) {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, entryNumberLockClass, businessID); err != nil {
		return "", err
	}
	var max int
	err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(SUBSTRING(entry_number FROM 9)::int), 0)
FROM journal_entries WHERE business_id=$1 AND entry_number LIKE $2`,
		businessID, fmt.Sprintf("AS-%d-%%", year)).Scan(&max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("AS-%d-%06d", year, max+1), nil
}
