package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/comanda-erp/comanda-erp/internal/accounting/accounts"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBuildRowsRunningBalances(t *testing.T) {
	natures := map[int64]accounts.AccountNature{
		1: accounts.NatureDebit,  // cash
		2: accounts.NatureCredit, // revenue
	}
	lines := []PostedLine{
		{EntryID: 10, EntryNumber: "AS-2026-000001", EntryDate: day("2026-01-05"), LineID: 100, AccountID: 1, Debit: d("100")},
		{EntryID: 10, EntryNumber: "AS-2026-000001", EntryDate: day("2026-01-05"), LineID: 101, AccountID: 2, Credit: d("100")},
		{EntryID: 11, EntryNumber: "AS-2026-000002", EntryDate: day("2026-01-06"), LineID: 102, AccountID: 1, Debit: d("50")},
		{EntryID: 11, EntryNumber: "AS-2026-000002", EntryDate: day("2026-01-06"), LineID: 103, AccountID: 2, Credit: d("50")},
	}

	rows := buildRows(1, natures, nil, lines)
	require.Len(t, rows, 4)

	// Cash accumulates on the debit side.
	require.True(t, rows[0].BalanceDebit.Equal(d("100")))
	require.True(t, rows[0].BalanceCredit.IsZero())
	require.True(t, rows[2].BalanceDebit.Equal(d("150")))
	// Revenue accumulates on the credit side.
	require.True(t, rows[1].BalanceCredit.Equal(d("100")))
	require.True(t, rows[1].BalanceDebit.IsZero())
	require.True(t, rows[3].BalanceCredit.Equal(d("150")))
}

func TestBuildRowsSeedsOpeningBalances(t *testing.T) {
	natures := map[int64]accounts.AccountNature{1: accounts.NatureDebit}
	opening := map[int64]decimal.Decimal{1: d("500")}
	lines := []PostedLine{
		{EntryID: 10, EntryDate: day("2026-02-01"), LineID: 1, AccountID: 1, Credit: d("120")},
	}

	rows := buildRows(1, natures, opening, lines)
	require.Len(t, rows, 1)
	// Debit-nature opening seeds the debit column; the credit line lands on
	// the other side, leaving a 380 net balance.
	require.True(t, rows[0].BalanceDebit.Equal(d("500")))
	require.True(t, rows[0].BalanceCredit.Equal(d("120")))
	require.True(t, rows[0].BalanceDebit.Sub(rows[0].BalanceCredit).Equal(d("380")))
}

func TestBuildRowsDebitNatureGoesNegativeOnCredit(t *testing.T) {
	natures := map[int64]accounts.AccountNature{1: accounts.NatureDebit}
	lines := []PostedLine{
		{EntryID: 1, EntryDate: day("2026-01-01"), LineID: 1, AccountID: 1, Credit: d("30")},
	}
	rows := buildRows(1, natures, nil, lines)
	require.True(t, rows[0].BalanceDebit.Sub(rows[0].BalanceCredit).Equal(d("-30")))
}

func TestBuildRowsRebuildIsDeterministic(t *testing.T) {
	natures := map[int64]accounts.AccountNature{
		1: accounts.NatureDebit,
		2: accounts.NatureCredit,
	}
	lines := []PostedLine{
		{EntryID: 1, EntryDate: day("2026-01-02"), LineID: 1, AccountID: 1, Debit: d("10")},
		{EntryID: 1, EntryDate: day("2026-01-02"), LineID: 2, AccountID: 2, Credit: d("10")},
		{EntryID: 2, EntryDate: day("2026-01-03"), LineID: 3, AccountID: 1, Debit: d("5")},
		{EntryID: 2, EntryDate: day("2026-01-03"), LineID: 4, AccountID: 2, Credit: d("5")},
	}

	first := buildRows(1, natures, nil, lines)
	second := buildRows(1, natures, nil, lines)
	require.Equal(t, len(first), len(second))
	for i := range first {
		require.True(t, first[i].BalanceDebit.Equal(second[i].BalanceDebit))
		require.True(t, first[i].BalanceCredit.Equal(second[i].BalanceCredit))
		require.Equal(t, first[i].LineID, second[i].LineID)
	}
}
