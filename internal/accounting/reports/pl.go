package reports

import (
	"time"

	"github.com/comanda-erp/comanda-erp/internal/accounting/accounts"
)

// BuildIncomeStatement assembles the profit-and-loss statement from
// nature-signed balances over the report window. Gross profit is revenue
// minus cost of sales; net income subtracts operating expenses from that.
func BuildIncomeStatement(balances []AccountBalance, from, to time.Time) IncomeStatement {
	is := IncomeStatement{From: from, To: to}

	is.Revenue = sumSection(balances, func(b AccountBalance) bool {
		return b.Type == accounts.TypeRevenue
	})
	is.CostOfSales = sumSection(balances, func(b AccountBalance) bool {
		return b.Type == accounts.TypeCostOfSales
	})
	is.Expenses = sumSection(balances, func(b AccountBalance) bool {
		return b.Type == accounts.TypeExpense
	})

	is.GrossProfit = is.Revenue.Total.Sub(is.CostOfSales.Total)
	is.NetIncome = is.GrossProfit.Sub(is.Expenses.Total)
	return is
}
