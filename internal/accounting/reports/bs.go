package reports

import (
	"time"

	"github.com/comanda-erp/comanda-erp/internal/accounting/accounts"
)

// BuildBalanceSheet assembles the statement of financial position from
// nature-signed balances through the as-of date. The period's net income
// (revenue minus cost of sales minus expenses) is folded into the equity
// side so assets and liabilities-plus-equity tie out.
func BuildBalanceSheet(balances []AccountBalance, asOf time.Time) BalanceSheet {
	bs := BalanceSheet{AsOf: asOf}

	bs.Assets = sumSection(balances, func(b AccountBalance) bool {
		return b.Type == accounts.TypeAsset
	})
	bs.Liabilities = sumSection(balances, func(b AccountBalance) bool {
		return b.Type == accounts.TypeLiability
	})
	bs.Equity = sumSection(balances, func(b AccountBalance) bool {
		return b.Type == accounts.TypeEquity
	})

	for _, b := range balances {
		switch b.Type {
		case accounts.TypeRevenue:
			bs.NetIncome = bs.NetIncome.Add(b.Balance)
		case accounts.TypeExpense, accounts.TypeCostOfSales:
			bs.NetIncome = bs.NetIncome.Sub(b.Balance)
		}
	}

	bs.TotalAssets = bs.Assets.Total
	bs.TotalLiabilitiesAndEquity = bs.Liabilities.Total.Add(bs.Equity.Total).Add(bs.NetIncome)
	return bs
}
