package ap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/comanda-erp/comanda-erp/internal/accounting/bridge"
	"github.com/comanda-erp/comanda-erp/internal/platform/db"
	"github.com/comanda-erp/comanda-erp/internal/platform/httpx"
	"github.com/comanda-erp/comanda-erp/internal/shared"
)

// Ledger posts the accounting effect of supplier activity. Implemented by
// the integration bridge; nil disables posting.
type Ledger interface {
	RecordPayablePayment(ctx context.Context, ev bridge.PayablePaymentRecorded) (bridge.Result, error)
	RecordPurchase(ctx context.Context, ev bridge.InventoryPurchased) (bridge.Result, error)
}

type Service struct {
	pool   *pgxpool.Pool
	repo   Repository
	ledger Ledger
	log    *slog.Logger

	now func() time.Time
}

func NewService(pool *pgxpool.Pool, repo Repository, ledger Ledger, log *slog.Logger) *Service {
	return &Service{pool: pool, repo: repo, ledger: ledger, log: log, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) { s.now = now }

func (s *Service) List(ctx context.Context, businessID int64, f Filter, rng shared.ListRange) ([]Payable, error) {
	items, err := s.repo.List(ctx, businessID, f, rng)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	for i := range items {
		items[i].Status = ResolveStatus(items[i].Amount, items[i].AmountPaid, items[i].DueDate, now)
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id, businessID int64) (Payable, error) {
	p, err := s.repo.Get(ctx, id, businessID)
	if err != nil {
		return Payable{}, err
	}
	p.Status = ResolveStatus(p.Amount, p.AmountPaid, p.DueDate, s.now().UTC())
	return p, nil
}

func (s *Service) Payments(ctx context.Context, id, businessID int64) ([]Payment, error) {
	if _, err := s.repo.Get(ctx, id, businessID); err != nil {
		return nil, err
	}
	return s.repo.ListPayments(ctx, id)
}

// Open records a new payable to a supplier.
func (s *Service) Open(ctx context.Context, p Payable) (Payable, error) {
	if !p.Amount.IsPositive() {
		return Payable{}, fmt.Errorf("%w: payable amount must be positive", httpx.ErrValidation)
	}
	if p.DueDate.IsZero() {
		return Payable{}, fmt.Errorf("%w: due date is required", httpx.ErrValidation)
	}
	if p.IssuedAt.IsZero() {
		p.IssuedAt = s.now().UTC()
	}
	p.AmountPaid = decimal.Zero
	p.Status = ResolveStatus(p.Amount, p.AmountPaid, p.DueDate, s.now().UTC())
	created, err := s.repo.Insert(ctx, p)
	if err != nil {
		return Payable{}, err
	}
	s.log.InfoContext(ctx, "payable opened",
		slog.Int64("business_id", created.BusinessID),
		slog.Int64("payable_id", created.ID),
		slog.String("amount", created.Amount.StringFixed(2)))

	// A payable backed by a purchase is a credit purchase: book the stock
	// against the supplier debt.
	if s.ledger != nil && created.PurchaseID != nil {
		userID, _ := shared.UserFromContext(ctx)
		if _, err := s.ledger.RecordPurchase(ctx, bridge.InventoryPurchased{
			BusinessID: created.BusinessID,
			PurchaseID: *created.PurchaseID,
			Reference:  created.Reference,
			Date:       created.IssuedAt,
			Amount:     created.Amount,
			OnCredit:   true,
			UserID:     userID,
		}); err != nil {
			s.log.ErrorContext(ctx, "purchase posting failed",
				slog.Int64("payable_id", created.ID),
				slog.String("error", err.Error()))
		}
	}
	return created, nil
}

// AddPayment settles part or all of a payable and posts the cash movement.
func (s *Service) AddPayment(ctx context.Context, id, businessID int64, amount decimal.Decimal, method, note string, recordedBy int64) (Payable, error) {
	if !amount.IsPositive() {
		return Payable{}, fmt.Errorf("%w: payment amount must be positive", httpx.ErrValidation)
	}

	var updated Payable
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		p, err := s.repo.GetForUpdateTx(ctx, tx, id, businessID)
		if err != nil {
			return err
		}
		if p.Pending().LessThanOrEqual(PaymentEpsilon) {
			return fmt.Errorf("%w: payable is already settled", httpx.ErrStateConflict)
		}
		if amount.GreaterThan(p.Pending().Add(PaymentEpsilon)) {
			return fmt.Errorf("%w: payment exceeds pending amount %s", httpx.ErrValidation, p.Pending().StringFixed(2))
		}

		now := s.now().UTC()
		if _, err := s.repo.InsertPaymentTx(ctx, tx, Payment{
			PayableID:  p.ID,
			Amount:     amount,
			Method:     method,
			Note:       note,
			PaidAt:     now,
			RecordedBy: recordedBy,
		}); err != nil {
			return err
		}
		p = applyPayment(p, amount, now)
		updated = p
		return s.repo.UpdateAmountsTx(ctx, tx, p)
	})
	if err != nil {
		return Payable{}, err
	}

	if s.ledger != nil {
		if _, err := s.ledger.RecordPayablePayment(ctx, bridge.PayablePaymentRecorded{
			BusinessID: businessID,
			PayableID:  updated.ID,
			Reference:  updated.Reference,
			Date:       s.now().UTC(),
			Amount:     amount,
			UserID:     recordedBy,
		}); err != nil {
			s.log.ErrorContext(ctx, "payable payment posting failed",
				slog.Int64("payable_id", updated.ID),
				slog.String("error", err.Error()))
		}
	}
	return updated, nil
}

// Summarize aggregates open payables for the dashboard.
func (s *Service) Summarize(ctx context.Context, businessID int64) (Summary, error) {
	items, err := s.repo.List(ctx, businessID, Filter{}, shared.ListRange{Limit: 10000})
	if err != nil {
		return Summary{}, err
	}
	now := s.now().UTC()
	var sum Summary
	for _, p := range items {
		status := ResolveStatus(p.Amount, p.AmountPaid, p.DueDate, now)
		if status == StatusPaid {
			continue
		}
		sum.OpenCount++
		sum.TotalOutstanding = sum.TotalOutstanding.Add(p.Pending())
		// Past-due balances count as overdue even when partially paid.
		if now.After(p.DueDate) {
			sum.OverdueCount++
			sum.TotalOverdue = sum.TotalOverdue.Add(p.Pending())
		}
	}
	return sum, nil
}
