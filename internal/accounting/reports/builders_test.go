package reports

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

func testBalances() []AccountBalance {
	return []AccountBalance{
		{AccountID: 1, Code: "1000", Name: "Caja", Type: accounts.TypeAsset, Nature: accounts.NatureDebit, Debit: d("1180"), Credit: d("400"), Balance: d("780")},
		{AccountID: 2, Code: "1200", Name: "Inventario", Type: accounts.TypeAsset, Nature: accounts.NatureDebit, Debit: d("400"), Credit: d("250"), Balance: d("150")},
		{AccountID: 3, Code: "2000", Name: "Proveedores", Type: accounts.TypeLiability, Nature: accounts.NatureCredit, Debit: d("0"), Credit: d("100"), Balance: d("100")},
		{AccountID: 4, Code: "2100", Name: "IVA por pagar", Type: accounts.TypeLiability, Nature: accounts.NatureCredit, Debit: d("0"), Credit: d("180"), Balance: d("180")},
		{AccountID: 5, Code: "3000", Name: "Capital", Type: accounts.TypeEquity, Nature: accounts.NatureCredit, Debit: d("0"), Credit: d("0"), Balance: d("0")},
		{AccountID: 6, Code: "4000", Name: "Ventas", Type: accounts.TypeRevenue, Nature: accounts.NatureCredit, Debit: d("0"), Credit: d("1000"), Balance: d("1000")},
		{AccountID: 7, Code: "5000", Name: "Costo de ventas", Type: accounts.TypeCostOfSales, Nature: accounts.NatureDebit, Debit: d("250"), Credit: d("0"), Balance: d("250")},
		{AccountID: 8, Code: "6000", Name: "Renta", Type: accounts.TypeExpense, Nature: accounts.NatureDebit, Debit: d("100"), Credit: d("0"), Balance: d("100")},
	}
}

func TestBuildTrialBalanceBalances(t *testing.T) {
	tb := BuildTrialBalance(testBalances(), nil, nil)

	require.True(t, tb.Balanced(), "total debit %s vs credit %s", tb.TotalDebit, tb.TotalCredit)
	require.True(t, tb.TotalDebit.Equal(d("1280")))

	// Zero-movement accounts are dropped.
	for _, row := range tb.Rows {
		require.NotEqual(t, "3000", row.Code)
	}
}

func TestBuildTrialBalanceFlipsNegativeNet(t *testing.T) {
	tb := BuildTrialBalance([]AccountBalance{
		{AccountID: 1, Code: "1000", Type: accounts.TypeAsset, Nature: accounts.NatureDebit, Debit: d("10"), Credit: d("40"), Balance: d("-30")},
		{AccountID: 2, Code: "4000", Type: accounts.TypeRevenue, Nature: accounts.NatureCredit, Debit: d("30"), Credit: d("0"), Balance: d("-30")},
	}, nil, nil)

	require.Len(t, tb.Rows, 2)
	require.True(t, tb.Rows[0].Credit.Equal(d("30")))
	require.True(t, tb.Rows[0].Debit.IsZero())
	require.True(t, tb.Rows[1].Debit.Equal(d("30")))
	require.True(t, tb.Balanced())
}

func TestBuildTrialBalanceKeepsOpeningOnlyAccounts(t *testing.T) {
	tb := BuildTrialBalance([]AccountBalance{
		{AccountID: 1, Code: "1000", Name: "Caja", Type: accounts.TypeAsset, Nature: accounts.NatureDebit, Initial: d("500"), Balance: d("500")},
		{AccountID: 5, Code: "3000", Name: "Capital", Type: accounts.TypeEquity, Nature: accounts.NatureCredit, Initial: d("500"), Balance: d("500")},
	}, nil, nil)

	require.Len(t, tb.Rows, 2)
	require.True(t, tb.Rows[0].Debit.Equal(d("500")))
	require.True(t, tb.Rows[1].Credit.Equal(d("500")))
	require.True(t, tb.Balanced())
}

func TestBuildBalanceSheetTiesOut(t *testing.T) {
	asOf := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	bs := BuildBalanceSheet(testBalances(), asOf)

	require.True(t, bs.TotalAssets.Equal(d("930")))
	require.True(t, bs.Liabilities.Total.Equal(d("280")))
	// Net income: 1000 revenue - 250 COGS - 100 expense.
	require.True(t, bs.NetIncome.Equal(d("650")))
	require.True(t, bs.TotalAssets.Equal(bs.TotalLiabilitiesAndEquity))

	// Zero-balance equity account stays off the listing.
	require.Empty(t, bs.Equity.Rows)
}

func TestBuildIncomeStatement(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	is := BuildIncomeStatement(testBalances(), from, to)

	require.True(t, is.Revenue.Total.Equal(d("1000")))
	require.True(t, is.CostOfSales.Total.Equal(d("250")))
	require.True(t, is.GrossProfit.Equal(d("750")))
	require.True(t, is.Expenses.Total.Equal(d("100")))
	require.True(t, is.NetIncome.Equal(d("650")))
}

func TestBuildIncomeStatementLossIsNegative(t *testing.T) {
	is := BuildIncomeStatement([]AccountBalance{
		{AccountID: 1, Code: "4000", Type: accounts.TypeRevenue, Nature: accounts.NatureCredit, Credit: d("100"), Balance: d("100")},
		{AccountID: 2, Code: "6000", Type: accounts.TypeExpense, Nature: accounts.NatureDebit, Debit: d("300"), Balance: d("300")},
	}, time.Now(), time.Now())

	require.True(t, is.NetIncome.Equal(d("-200")))
}
