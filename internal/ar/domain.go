// Package ar tracks customer credit: receivables opened by credit orders
// and the payments that settle them.
package ar

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates receivable states.
type Status string

const (
	StatusPending Status = "pending"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// PaymentEpsilon absorbs sub-cent residue when deciding a receivable is
// settled.
var PaymentEpsilon = decimal.NewFromFloat(0.01)

// Receivable is an amount a customer owes, usually backed by an order.
type Receivable struct {
	ID          int64
	BusinessID  int64
	CustomerID  int64
	OrderID     *int64
	Reference   string
	Description string
	Amount      decimal.Decimal
	AmountPaid  decimal.Decimal
	IssuedAt    time.Time
	DueDate     time.Time
	Status      Status
	PaidDate    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Pending returns how much remains unpaid.
func (r Receivable) Pending() decimal.Decimal {
	return r.Amount.Sub(r.AmountPaid)
}

// Payment is one settlement against a receivable.
type Payment struct {
	ID           int64
	ReceivableID int64
	Amount       decimal.Decimal
	Method       string
	Note         string
	PaidAt       time.Time
	RecordedBy   int64
	CreatedAt    time.Time
}

// ResolveStatus derives a receivable's status from its amounts and due
// date. Any payment at all outranks the due date: a partially paid
// past-due receivable reads partial, not overdue.
func ResolveStatus(amount, amountPaid decimal.Decimal, dueDate, now time.Time) Status {
	pending := amount.Sub(amountPaid)
	switch {
	case pending.LessThanOrEqual(PaymentEpsilon):
		return StatusPaid
	case amountPaid.IsPositive():
		return StatusPartial
	case now.After(dueDate):
		return StatusOverdue
	default:
		return StatusPending
	}
}

// applyPayment folds a payment into the receivable's amounts, recomputes
// the status, and stamps the paid date on the first transition to paid.
func applyPayment(r Receivable, amount decimal.Decimal, now time.Time) Receivable {
	r.AmountPaid = r.AmountPaid.Add(amount)
	r.Status = ResolveStatus(r.Amount, r.AmountPaid, r.DueDate, now)
	if r.Status == StatusPaid && r.PaidDate == nil {
		r.PaidDate = &now
	}
	return r
}

// Summary aggregates a business's open receivables.
type Summary struct {
	TotalOutstanding decimal.Decimal
	TotalOverdue     decimal.Decimal
	OpenCount        int
	OverdueCount     int
}
