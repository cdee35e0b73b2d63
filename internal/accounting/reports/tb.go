package reports

import (
	"time"

	"github.com/comanda-erp/comanda-erp/internal/accounting/accounts"
)

// BuildTrialBalance folds each account's final balance, initial balance
// included, onto its natural side: a debit-nature account with a positive
// balance lands in the debit column, a negative one flips to the credit
// column; credit-nature accounts mirror. Accounts with neither movement nor
// balance are dropped, so an account carrying only an opening balance still
// shows.
func BuildTrialBalance(balances []AccountBalance, from, to *time.Time) TrialBalance {
	tb := TrialBalance{From: from, To: to}
	for _, b := range balances {
		if b.Debit.IsZero() && b.Credit.IsZero() && b.Balance.IsZero() {
			continue
		}
		row := TrialBalanceRow{
			AccountID: b.AccountID,
			Code:      b.Code,
			Name:      b.Name,
			Type:      b.Type,
		}
		final := b.Balance
		if b.Nature == accounts.NatureCredit {
			final = final.Neg()
		}
		switch {
		case final.IsPositive():
			row.Debit = final
		case final.IsNegative():
			row.Credit = final.Neg()
		default:
			continue
		}
		tb.Rows = append(tb.Rows, row)
		tb.TotalDebit = tb.TotalDebit.Add(row.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(row.Credit)
	}
	return tb
}

// sumSection builds a section from the balances matching pred, keeping
// zero-balance accounts out of the listing.
func sumSection(balances []AccountBalance, pred func(AccountBalance) bool) Section {
	var s Section
	for _, b := range balances {
		if !pred(b) || b.Balance.IsZero() {
			continue
		}
		s.Rows = append(s.Rows, SectionRow{
			AccountID: b.AccountID,
			Code:      b.Code,
			Name:      b.Name,
			Amount:    b.Balance,
		})
		s.Total = s.Total.Add(b.Balance)
	}
	return s
}
