package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comanda-erp/comanda-erp/internal/accounting/periods"
	"github.com/comanda-erp/comanda-erp/internal/platform/db"
	"github.com/comanda-erp/comanda-erp/internal/shared"
)

// rebuildLockTTL bounds how long a crashed rebuilder can block the scope.
const rebuildLockTTL = 2 * time.Minute

// Service maintains the general-ledger projection and serves reads from it.
// It implements the journals package's Rebuilder port.
type Service struct {
	pool    *pgxpool.Pool
	repo    Repository
	periods *periods.Service
	locker  Locker
	log     *slog.Logger
}

func NewService(pool *pgxpool.Pool, repo Repository, periodSvc *periods.Service, locker Locker, log *slog.Logger) *Service {
	return &Service{pool: pool, repo: repo, periods: periodSvc, locker: locker, log: log}
}

func (s *Service) List(ctx context.Context, businessID int64, f Filter, rng shared.ListRange) ([]Row, error) {
	return s.repo.List(ctx, businessID, f, rng)
}

// Rebuild regenerates the ledger projection from the posted journal. With a
// period, only rows from that period's start date forward are replayed,
// seeded with opening balances at the cut; without one the whole business is
// rebuilt. Concurrent rebuilds of the same business are serialized through
// redis.
func (s *Service) Rebuild(ctx context.Context, businessID int64, periodID *int64) error {
	release, err := s.locker.Acquire(ctx, shared.LedgerLockKey(businessID, 0), rebuildLockTTL)
	if err != nil {
		return err
	}
	defer release()

	var from *time.Time
	if periodID != nil {
		period, err := s.periods.Get(ctx, *periodID, businessID)
		if err != nil {
			return err
		}
		from = &period.StartDate
	}

	started := time.Now()
	var replayed int
	err = db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		natures, err := s.repo.AccountNaturesTx(ctx, tx, businessID)
		if err != nil {
			return err
		}
		opening, err := s.repo.OpeningBalancesTx(ctx, tx, businessID, from)
		if err != nil {
			return err
		}
		lines, err := s.repo.ListPostedLinesTx(ctx, tx, businessID, from)
		if err != nil {
			return err
		}
		if err := s.repo.DeleteTx(ctx, tx, businessID, from); err != nil {
			return err
		}
		rows := buildRows(businessID, natures, opening, lines)
		replayed = len(rows)
		if len(rows) == 0 {
			return nil
		}
		return s.repo.InsertRowsTx(ctx, tx, rows)
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "general ledger rebuilt",
		slog.Int64("business_id", businessID),
		slog.Int("rows", replayed),
		slog.Duration("took", time.Since(started)))
	return nil
}
