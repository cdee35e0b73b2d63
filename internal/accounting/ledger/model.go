package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/comanda-erp/comanda-erp/internal/accounting/accounts"
)

// Row is one materialized general-ledger line: a posted journal line
// denormalized with its entry header and the account's running cumulative
// debit and credit totals at that point in the replay order.
type Row struct {
	ID            int64
	BusinessID    int64
	AccountID     int64
	PeriodID      *int64
	EntryID       int64
	LineID        int64
	EntryNumber   string
	EntryDate     time.Time
	Description   string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
	BalanceDebit  decimal.Decimal
	BalanceCredit decimal.Decimal
	CreatedAt     time.Time
}

// PostedLine is the replay source: a posted journal line joined with its
// entry header, ordered by (entry_date, entry_id, position).
type PostedLine struct {
	EntryID     int64
	EntryNumber string
	EntryDate   time.Time
	Description string
	PeriodID    *int64
	LineID      int64
	AccountID   int64
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

type runningTotals struct {
	debit  decimal.Decimal
	credit decimal.Decimal
}

// buildRows replays posted lines into ledger rows, carrying per-account
// cumulative debit and credit totals. Opening balances seed the side the
// account's nature favors, so balanceDebit - balanceCredit stays the
// nature-signed balance at every row.
func buildRows(businessID int64, natures map[int64]accounts.AccountNature, opening map[int64]decimal.Decimal, lines []PostedLine) []Row {
	running := make(map[int64]runningTotals, len(opening))
	for id, bal := range opening {
		if natures[id] == accounts.NatureCredit {
			running[id] = runningTotals{credit: bal}
			continue
		}
		running[id] = runningTotals{debit: bal}
	}
	rows := make([]Row, 0, len(lines))
	for _, l := range lines {
		totals := running[l.AccountID]
		totals.debit = totals.debit.Add(l.Debit)
		totals.credit = totals.credit.Add(l.Credit)
		running[l.AccountID] = totals
		rows = append(rows, Row{
			BusinessID:    businessID,
			AccountID:     l.AccountID,
			PeriodID:      l.PeriodID,
			EntryID:       l.EntryID,
			LineID:        l.LineID,
			EntryNumber:   l.EntryNumber,
			EntryDate:     l.EntryDate,
			Description:   l.Description,
			Debit:         l.Debit,
			Credit:        l.Credit,
			BalanceDebit:  totals.debit,
			BalanceCredit: totals.credit,
		})
	}
	return rows
}
