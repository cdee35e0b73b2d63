package accounts

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/comanda-erp/comanda-erp/internal/platform/httpx"
)

// AccountType enumerates chart-of-accounts categories.
type AccountType string

const (
	TypeAsset       AccountType = "asset"
	TypeLiability   AccountType = "liability"
	TypeEquity      AccountType = "equity"
	TypeRevenue     AccountType = "revenue"
	TypeExpense     AccountType = "expense"
	TypeCostOfSales AccountType = "cost_of_sales"
)

// ParseAccountType validates a raw account type at the boundary.
func ParseAccountType(raw string) (AccountType, error) {
	switch t := AccountType(raw); t {
	case TypeAsset, TypeLiability, TypeEquity, TypeRevenue, TypeExpense, TypeCostOfSales:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown account type %q", httpx.ErrValidation, raw)
	}
}

// AccountNature marks whether an account normally carries a debit or credit balance.
type AccountNature string

const (
	NatureDebit  AccountNature = "debit"
	NatureCredit AccountNature = "credit"
)

// ParseAccountNature validates a raw nature value at the boundary.
func ParseAccountNature(raw string) (AccountNature, error) {
	switch n := AccountNature(raw); n {
	case NatureDebit, NatureCredit:
		return n, nil
	default:
		return "", fmt.Errorf("%w: unknown account nature %q", httpx.ErrValidation, raw)
	}
}

// CanonicalNature returns the conventional nature for an account type.
// Asset, expense and cost-of-sales accounts carry debit balances; the rest credit.
func CanonicalNature(t AccountType) AccountNature {
	switch t {
	case TypeAsset, TypeExpense, TypeCostOfSales:
		return NatureDebit
	default:
		return NatureCredit
	}
}

// Role identifies the functional account roles the integration bridge resolves.
type Role string

const (
	RoleRevenue     Role = "revenue"
	RoleCostOfSales Role = "cost_of_sales"
	RoleInventory   Role = "inventory"
	RoleReceivable  Role = "accounts_receivable"
	RolePayable     Role = "accounts_payable"
	RoleCash        Role = "cash"
	RoleTaxPayable  Role = "tax_payable"
)

// Account models a chart-of-accounts node.
type Account struct {
	ID                  int64
	BusinessID          int64
	Code                string
	Name                string
	Description         string
	Type                AccountType
	Nature              AccountNature
	ParentID            *int64
	Level               int
	AllowsManualEntries bool
	IsActive            bool
	IsSystem            bool
	InitialBalance      decimal.Decimal
	InitialBalanceDate  *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
	DeletedAt           *time.Time
}
