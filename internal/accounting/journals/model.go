package journals

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/comanda-erp/comanda-erp/internal/accounting/shared"
	"github.com/comanda-erp/comanda-erp/internal/platform/httpx"
)

// EntryStatus tracks the journal entry lifecycle: draft -> posted -> reversed.
type EntryStatus string

const (
	StatusDraft    EntryStatus = "draft"
	StatusPosted   EntryStatus = "posted"
	StatusReversed EntryStatus = "reversed"
)

// SourceType records what produced an entry. Manual entries come from the
// API; the rest are written by the integration bridge.
type SourceType string

const (
	SourceManual     SourceType = "manual"
	SourceSale       SourceType = "sale"
	SourcePayment    SourceType = "payment"
	SourcePurchase   SourceType = "purchase"
	SourceAdjustment SourceType = "adjustment"
	SourceReversal   SourceType = "reversal"
)

// ParseSourceType validates a raw source type at the boundary.
func ParseSourceType(raw string) (SourceType, error) {
	switch s := SourceType(raw); s {
	case SourceManual, SourceSale, SourcePayment, SourcePurchase, SourceAdjustment, SourceReversal:
		return s, nil
	default:
		return "", fmt.Errorf("%w: unknown source type %q", httpx.ErrValidation, raw)
	}
}

// Entry is a journal entry header with its lines attached.
type Entry struct {
	ID          int64
	BusinessID  int64
	EntryNumber string // empty until posted
	EntryDate   time.Time
	Reference   string // free-text external pointer, e.g. ORD-123
	Description string
	Status      EntryStatus
	SourceType  SourceType
	SourceID    *int64
	PeriodID    *int64
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	CreatedBy   int64
	PostedBy    *int64
	PostedAt    *time.Time
	ReversedBy  *int64 // entry id of the reversal
	Reverses    *int64 // entry id this entry reverses
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time

	Lines []Line
}

// Line is a single debit or credit movement inside an entry.
type Line struct {
	ID           int64
	EntryID      int64
	AccountID    int64
	Description  string
	Reference    string
	Debit        decimal.Decimal
	Credit       decimal.Decimal
	CostCenterID *int64
	Position     int
}

// Amount returns the line's movement regardless of side.
func (l Line) Amount() decimal.Decimal {
	if l.Debit.IsPositive() {
		return l.Debit
	}
	return l.Credit
}

// ValidateLines enforces the double-entry rules: at least two lines, no
// negative amounts, no line carrying both sides, no dead lines, and total
// debit equal to total credit.
func ValidateLines(lines []Line) (totalDebit, totalCredit decimal.Decimal, err error) {
	if len(lines) < 2 {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: an entry needs at least two lines", httpx.ErrValidation)
	}
	for _, l := range lines {
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return decimal.Zero, decimal.Zero, shared.ErrNegativeAmount
		}
		if l.Debit.IsPositive() && l.Credit.IsPositive() {
			return decimal.Zero, decimal.Zero, shared.ErrLineBothSides
		}
		totalDebit = totalDebit.Add(l.Debit)
		totalCredit = totalCredit.Add(l.Credit)
	}
	if totalDebit.IsZero() && totalCredit.IsZero() {
		return decimal.Zero, decimal.Zero, shared.ErrZeroEntry
	}
	if !totalDebit.Equal(totalCredit) {
		return decimal.Zero, decimal.Zero, shared.ErrUnbalanced
	}
	return totalDebit, totalCredit, nil
}

// ReversedLines returns the entry's lines with debit and credit swapped,
// ready to seed a reversal entry.
func (e Entry) ReversedLines() []Line {
	out := make([]Line, 0, len(e.Lines))
	for _, l := range e.Lines {
		out = append(out, Line{
			AccountID:    l.AccountID,
			Description:  l.Description,
			Reference:    l.Reference,
			Debit:        l.Credit,
			Credit:       l.Debit,
			CostCenterID: l.CostCenterID,
			Position:     l.Position,
		})
	}
	return out
}
