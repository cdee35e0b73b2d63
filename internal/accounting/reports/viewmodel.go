package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/comanda-erp/comanda-erp/internal/accounting/accounts"
)

// AccountBalance is one account's aggregated movement over a report window,
// with Balance signed by the account's nature. Initial carries the configured
// opening balance regardless of whether Balance was seeded with it.
type AccountBalance struct {
	AccountID int64
	Code      string
	Name      string
	Type      accounts.AccountType
	Nature    accounts.AccountNature
	Initial   decimal.Decimal
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Balance   decimal.Decimal
}

// TrialBalanceRow presents an account with its net movement folded onto its
// natural side.
type TrialBalanceRow struct {
	AccountID int64
	Code      string
	Name      string
	Type      accounts.AccountType
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

type TrialBalance struct {
	From        *time.Time
	To          *time.Time
	Rows        []TrialBalanceRow
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

// Balanced reports whether total debit equals total credit, the trial
// balance's defining check.
func (tb TrialBalance) Balanced() bool {
	return tb.TotalDebit.Equal(tb.TotalCredit)
}

// SectionRow is one account line inside a report section.
type SectionRow struct {
	AccountID int64
	Code      string
	Name      string
	Amount    decimal.Decimal
}

// Section groups accounts of one category with their subtotal.
type Section struct {
	Rows  []SectionRow
	Total decimal.Decimal
}

type BalanceSheet struct {
	AsOf                      time.Time
	Assets                    Section
	Liabilities               Section
	Equity                    Section
	NetIncome                 decimal.Decimal
	TotalAssets               decimal.Decimal
	TotalLiabilitiesAndEquity decimal.Decimal
}

type IncomeStatement struct {
	From        time.Time
	To          time.Time
	Revenue     Section
	CostOfSales Section
	GrossProfit decimal.Decimal
	Expenses    Section
	NetIncome   decimal.Decimal
}

// Summary bundles the three statements for a single dashboard fetch.
type Summary struct {
	TrialBalance    TrialBalance
	BalanceSheet    BalanceSheet
	IncomeStatement IncomeStatement
}
