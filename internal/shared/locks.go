package shared

import "fmt"

// LedgerLockKey builds the redis key serializing general-ledger rebuilds for a
// (business, period) scope. Period 0 means the business-wide scope.
func LedgerLockKey(businessID, periodID int64) string {
	return fmt.Sprintf("ledger:business:%d:period:%d:lock", businessID, periodID)
}
