package ar

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

// OrderCompleter is notified when a receivable backed by an order is fully
// settled, so the order system can close it out. Implemented by the orders
// module.
type OrderCompleter interface {
	CompleteOrder(ctx context.Context, businessID, orderID int64) error
}

// Ledger posts the accounting effect of a customer payment. Implemented by
// the integration bridge; nil disables posting.
type Ledger interface {
	RecordReceivablePayment(ctx context.Context, ev bridge.ReceivablePaymentRecorded) (bridge.Result, error)
}

type Service struct {
	pool   *pgxpool.Pool
	repo   Repository
	ledger Ledger
	orders OrderCompleter
	log    *slog.Logger

	now func() time.Time
}

func NewService(pool *pgxpool.Pool, repo Repository, ledger Ledger, orders OrderCompleter, log *slog.Logger) *Service {
	return &Service{pool: pool, repo: repo, ledger: ledger, orders: orders, log: log, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) { s.now = now }

func (s *Service) List(ctx context.Context, businessID int64, f Filter, rng shared.ListRange) ([]Receivable, error) {
	items, err := s.repo.List(ctx, businessID, f, rng)
	if err != nil {
		return nil, err
	}
	// Statuses are stored, but overdue is a function of time; refresh on
	// the way out so listings never show a stale pending.
	now := s.now().UTC()
	for i := range items {
		items[i].Status = ResolveStatus(items[i].Amount, items[i].AmountPaid, items[i].DueDate, now)
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id, businessID int64) (Receivable, error) {
	r, err := s.repo.Get(ctx, id, businessID)
	if err != nil {
		return Receivable{}, err
	}
	r.Status = ResolveStatus(r.Amount, r.AmountPaid, r.DueDate, s.now().UTC())
	return r, nil
}

func (s *Service) Payments(ctx context.Context, id, businessID int64) ([]Payment, error) {
	if _, err := s.repo.Get(ctx, id, businessID); err != nil {
		return nil, err
	}
	return s.repo.ListPayments(ctx, id)
}

// Open records a new receivable for a customer.
func (s *Service) Open(ctx context.Context, r Receivable) (Receivable, error) {
	if !r.Amount.IsPositive() {
		return Receivable{}, fmt.Errorf("%w: receivable amount must be positive", httpx.ErrValidation)
	}
	if r.DueDate.IsZero() {
		return Receivable{}, fmt.Errorf("%w: due date is required", httpx.ErrValidation)
	}
	if r.IssuedAt.IsZero() {
		r.IssuedAt = s.now().UTC()
	}
	r.AmountPaid = decimal.Zero
	r.Status = ResolveStatus(r.Amount, r.AmountPaid, r.DueDate, s.now().UTC())
	created, err := s.repo.Insert(ctx, r)
	if err != nil {
		return Receivable{}, err
	}
	s.log.InfoContext(ctx, "receivable opened",
		slog.Int64("business_id", created.BusinessID),
		slog.Int64("receivable_id", created.ID),
		slog.String("amount", created.Amount.StringFixed(2)))
	return created, nil
}

// AddPayment settles part or all of a receivable. Overpayment beyond the
// pending amount is rejected; settlement within a cent of the total marks
// the receivable paid, completes its order, and posts the cash movement.
func (s *Service) AddPayment(ctx context.Context, id, businessID int64, amount decimal.Decimal, method, note string, recordedBy int64) (Receivable, error) {
	if !amount.IsPositive() {
		return Receivable{}, fmt.Errorf("%w: payment amount must be positive", httpx.ErrValidation)
	}

	var updated Receivable
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		r, err := s.repo.GetForUpdateTx(ctx, tx, id, businessID)
		if err != nil {
			return err
		}
		if r.Pending().LessThanOrEqual(PaymentEpsilon) {
			return fmt.Errorf("%w: receivable is already settled", httpx.ErrStateConflict)
		}
		if amount.GreaterThan(r.Pending().Add(PaymentEpsilon)) {
			return fmt.Errorf("%w: payment exceeds pending amount %s", httpx.ErrValidation, r.Pending().StringFixed(2))
		}

		now := s.now().UTC()
		if _, err := s.repo.InsertPaymentTx(ctx, tx, Payment{
			ReceivableID: r.ID,
			Amount:       amount,
			Method:       method,
			Note:         note,
			PaidAt:       now,
			RecordedBy:   recordedBy,
		}); err != nil {
			return err
		}
		r = applyPayment(r, amount, now)
		updated = r
		return s.repo.UpdateAmountsTx(ctx, tx, r)
	})
	if err != nil {
		return Receivable{}, err
	}

	if updated.Status == StatusPaid && updated.OrderID != nil && s.orders != nil {
		if err := s.orders.CompleteOrder(ctx, businessID, *updated.OrderID); err != nil {
			s.log.ErrorContext(ctx, "order completion after settlement failed",
				slog.Int64("order_id", *updated.OrderID),
				slog.String("error", err.Error()))
		}
	}
	if s.ledger != nil {
		if _, err := s.ledger.RecordReceivablePayment(ctx, bridge.ReceivablePaymentRecorded{
			BusinessID:   businessID,
			ReceivableID: updated.ID,
			Reference:    updated.Reference,
			Date:         s.now().UTC(),
			Amount:       amount,
			UserID:       recordedBy,
		}); err != nil {
			s.log.ErrorContext(ctx, "receivable payment posting failed",
				slog.Int64("receivable_id", updated.ID),
				slog.String("error", err.Error()))
		}
	}
	return updated, nil
}

// Summarize aggregates open receivables for the dashboard.
func (s *Service) Summarize(ctx context.Context, businessID int64) (Summary, error) {
	items, err := s.repo.List(ctx, businessID, Filter{}, shared.ListRange{Limit: 10000})
	if err != nil {
		return Summary{}, err
	}
	now := s.now().UTC()
	var sum Summary
	for _, r := range items {
		status := ResolveStatus(r.Amount, r.AmountPaid, r.DueDate, now)
		if status == StatusPaid {
			continue
		}
		sum.OpenCount++
		sum.TotalOutstanding = sum.TotalOutstanding.Add(r.Pending())
		// Past-due balances count as overdue even when partially paid.
		if now.After(r.DueDate) {
			sum.OverdueCount++
			sum.TotalOverdue = sum.TotalOverdue.Add(r.Pending())
		}
	}
	return sum, nil
}
