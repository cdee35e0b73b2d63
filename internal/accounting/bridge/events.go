// Package bridge turns operational events (settled orders, recorded
// payments, inventory purchases) into posted journal entries. It is a
// best-effort consumer: a business without the needed role accounts gets the
// event skipped, never an operational failure.
package bridge

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod distinguishes immediate settlement from credit.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentCredit   PaymentMethod = "credit"
)

// Immediate reports whether the method settles at once rather than creating
// a receivable.
func (m PaymentMethod) Immediate() bool {
	return m != PaymentCredit
}

// OrderSettled is emitted when a sale closes.
type OrderSettled struct {
	BusinessID int64
	OrderID    int64
	OrderRef   string
	Date       time.Time
	Subtotal   decimal.Decimal
	Total      decimal.Decimal
	Method     PaymentMethod
	UserID     int64

	// Items carries what was sold, for cost-of-sales resolution.
	Items []SoldItem
}

// SoldItem is one order line for COGS purposes.
type SoldItem struct {
	ProductID int64
	Quantity  decimal.Decimal
}

// ReceivablePaymentRecorded is emitted when a customer pays down an account.
type ReceivablePaymentRecorded struct {
	BusinessID   int64
	ReceivableID int64
	Reference    string
	Date         time.Time
	Amount       decimal.Decimal
	UserID       int64
}

// PayablePaymentRecorded is emitted when the business pays a supplier.
type PayablePaymentRecorded struct {
	BusinessID int64
	PayableID  int64
	Reference  string
	Date       time.Time
	Amount     decimal.Decimal
	UserID     int64
}

// InventoryPurchased is emitted when stock is received from a supplier.
type InventoryPurchased struct {
	BusinessID int64
	PurchaseID int64
	Reference  string
	Date       time.Time
	Amount     decimal.Decimal
	OnCredit   bool
	UserID     int64
}
