package mappings

import "time"

// RoleMapping pins a functional account role to a ledger account for a business.
// When present it wins over the name-matching heuristic in accounts.DefaultAccounts.
type RoleMapping struct {
	BusinessID int64
	Role       string
	AccountID  int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// knownRoles lists the functional roles the integration bridge resolves.
// Kept as strings here so the package stays import-free of accounts.
var knownRoles = map[string]struct{}{
	"revenue":             {},
	"cost_of_sales":       {},
	"inventory":           {},
	"accounts_receivable": {},
	"accounts_payable":    {},
	"cash":                {},
	"tax_payable":         {},
}

// KnownRole reports whether the role name is one the system understands.
func KnownRole(role string) bool {
	_, ok := knownRoles[role]
	return ok
}
