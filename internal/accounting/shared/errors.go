// Package shared holds sentinel errors common to the accounting packages.
// Each sentinel wraps an httpx category so handlers map them with RespondError.
package shared

import (
	"fmt"

	"github.com/comanda-erp/comanda-erp/internal/platform/httpx"
)

var (
	// ErrUnbalanced indicates total debit != total credit.
	ErrUnbalanced = fmt.Errorf("%w: journal lines must balance", httpx.ErrValidation)
	// ErrZeroEntry indicates an entry with no movement at all.
	ErrZeroEntry = fmt.Errorf("%w: journal requires at least one movement", httpx.ErrValidation)
	// ErrLineBothSides indicates a line with both debit and credit set.
	ErrLineBothSides = fmt.Errorf("%w: line cannot carry both debit and credit", httpx.ErrValidation)
	// ErrNegativeAmount indicates a negative debit or credit.
	ErrNegativeAmount = fmt.Errorf("%w: amounts must not be negative", httpx.ErrValidation)
	// ErrAccountNotFound indicates a missing or soft-deleted account.
	ErrAccountNotFound = fmt.Errorf("%w: account", httpx.ErrNotFound)
	// ErrAccountInactive indicates an inactive account on a journal line.
	ErrAccountInactive = fmt.Errorf("%w: account is not active", httpx.ErrValidation)
	// ErrDuplicateCode indicates a chart-of-accounts code collision.
	ErrDuplicateCode = fmt.Errorf("%w: account code already exists", httpx.ErrDuplicate)
	// ErrSystemAccount indicates an edit or delete attempt on a system account.
	ErrSystemAccount = fmt.Errorf("%w: system accounts cannot be modified", httpx.ErrStateConflict)
	// ErrAccountInUse indicates a delete attempt on an account still referenced by lines.
	ErrAccountInUse = fmt.Errorf("%w: account is referenced by journal lines", httpx.ErrStateConflict)
	// ErrEntryNotFound indicates a missing or soft-deleted journal entry.
	ErrEntryNotFound = fmt.Errorf("%w: journal entry", httpx.ErrNotFound)
	// ErrEntryNotDraft indicates an update or delete on a non-draft entry.
	ErrEntryNotDraft = fmt.Errorf("%w: entry is no longer a draft", httpx.ErrStateConflict)
	// ErrEntryAlreadyPosted indicates posting an already-posted entry.
	ErrEntryAlreadyPosted = fmt.Errorf("%w: entry is already posted", httpx.ErrStateConflict)
	// ErrEntryNotPosted indicates a reversal of an entry that was never posted.
	ErrEntryNotPosted = fmt.Errorf("%w: entry is not posted", httpx.ErrStateConflict)
	// ErrEntryReversed indicates the entry was already reversed.
	ErrEntryReversed = fmt.Errorf("%w: entry is already reversed", httpx.ErrStateConflict)
	// ErrPeriodNotFound indicates a missing accounting period.
	ErrPeriodNotFound = fmt.Errorf("%w: accounting period", httpx.ErrNotFound)
	// ErrPeriodClosed indicates a write against a closed period.
	ErrPeriodClosed = fmt.Errorf("%w: accounting period is closed", httpx.ErrStateConflict)
	// ErrPeriodOverlap indicates a new period overlapping an open one.
	ErrPeriodOverlap = fmt.Errorf("%w: period overlaps an existing open period", httpx.ErrValidation)
	// ErrDateOutOfPeriod indicates an entry date outside its period window.
	ErrDateOutOfPeriod = fmt.Errorf("%w: entry date outside period", httpx.ErrValidation)
	// ErrCostCenterNotFound indicates a missing cost center.
	ErrCostCenterNotFound = fmt.Errorf("%w: cost center", httpx.ErrNotFound)
	// ErrMappingNotFound indicates a default-account role mapping is absent.
	ErrMappingNotFound = fmt.Errorf("%w: account mapping", httpx.ErrNotFound)
)
