// Package ap tracks supplier debt: payables opened by credit purchases and
// the payments that settle them.
package ap

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates payable states.
type Status string

const (
	StatusPending Status = "pending"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// PaymentEpsilon absorbs sub-cent residue when deciding a payable is
// settled.
var PaymentEpsilon = decimal.NewFromFloat(0.01)

// Payable is an amount owed to a supplier, usually backed by a purchase.
type Payable struct {
	ID          int64
	BusinessID  int64
	SupplierID  int64
	PurchaseID  *int64
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
func (p Payable) Pending() decimal.Decimal {
	return p.Amount.Sub(p.AmountPaid)
}

// Payment is one settlement against a payable.
type Payment struct {
	ID         int64
	PayableID  int64
	Amount     decimal.Decimal
	Method     string
	Note       string
	PaidAt     time.Time
	RecordedBy int64
	CreatedAt  time.Time
}

// ResolveStatus derives a payable's status from its amounts and due date.
// Any payment at all outranks the due date: a partially paid past-due
// payable reads partial, not overdue.
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

// applyPayment folds a payment into the payable's amounts, recomputes the
// status, and stamps the paid date on the first transition to paid.
func applyPayment(p Payable, amount decimal.Decimal, now time.Time) Payable {
	p.AmountPaid = p.AmountPaid.Add(amount)
	p.Status = ResolveStatus(p.Amount, p.AmountPaid, p.DueDate, now)
	if p.Status == StatusPaid && p.PaidDate == nil {
		p.PaidDate = &now
	}
	return p
}

// Summary aggregates a business's open payables.
type Summary struct {
	TotalOutstanding decimal.Decimal
	TotalOverdue     decimal.Decimal
	OpenCount        int
	OverdueCount     int
}
