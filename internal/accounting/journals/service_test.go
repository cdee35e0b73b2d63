package journals

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comanda-erp/comanda-erp/internal/accounting/accounts"
	"github.com/comanda-erp/comanda-erp/internal/accounting/periods"
	"github.com/comanda-erp/comanda-erp/internal/accounting/shared"
)

type memoryAccountRepo struct {
	accounts map[int64]accounts.Account
}

func (r *memoryAccountRepo) Get(_ context.Context, id, businessID int64) (accounts.Account, error) {
	a, ok := r.accounts[id]
	if !ok || a.BusinessID != businessID {
		return accounts.Account{}, shared.ErrAccountNotFound
	}
	return a, nil
}

func (r *memoryAccountRepo) List(context.Context, int64, bool) ([]accounts.Account, error) {
	return nil, nil
}
func (r *memoryAccountRepo) FindByCode(context.Context, int64, string) (accounts.Account, error) {
	return accounts.Account{}, shared.ErrAccountNotFound
}
func (r *memoryAccountRepo) Insert(_ context.Context, a accounts.Account) (accounts.Account, error) {
	return a, nil
}
func (r *memoryAccountRepo) Update(_ context.Context, a accounts.Account) (accounts.Account, error) {
	return a, nil
}
func (r *memoryAccountRepo) SoftDelete(context.Context, int64, int64) error { return nil }
func (r *memoryAccountRepo) CountLineReferences(context.Context, int64) (int64, error) {
	return 0, nil
}

func testService(accountRepo accounts.Repository) *Service {
	return NewService(nil, nil, accountRepo, nil, nil, slog.Default())
}

func TestCheckAccountsRejectsUnknownAccount(t *testing.T) {
	svc := testService(&memoryAccountRepo{accounts: map[int64]accounts.Account{}})
	err := svc.checkAccounts(context.Background(), 1, SourceManual, []Line{{AccountID: 99}})
	require.ErrorIs(t, err, shared.ErrAccountNotFound)
}

func TestCheckAccountsRejectsInactiveAccount(t *testing.T) {
	svc := testService(&memoryAccountRepo{accounts: map[int64]accounts.Account{
		7: {ID: 7, BusinessID: 1, Code: "1000", IsActive: false, AllowsManualEntries: true},
	}})
	err := svc.checkAccounts(context.Background(), 1, SourceManual, []Line{{AccountID: 7}})
	require.ErrorIs(t, err, shared.ErrAccountInactive)
}

func TestCheckAccountsRejectsManualOnRestrictedAccount(t *testing.T) {
	repo := &memoryAccountRepo{accounts: map[int64]accounts.Account{
		7: {ID: 7, BusinessID: 1, Code: "1000", IsActive: true, AllowsManualEntries: false},
	}}
	svc := testService(repo)

	err := svc.checkAccounts(context.Background(), 1, SourceManual, []Line{{AccountID: 7}})
	require.Error(t, err)

	// System-sourced entries may use restricted accounts.
	err = svc.checkAccounts(context.Background(), 1, SourceSale, []Line{{AccountID: 7}})
	require.NoError(t, err)
}

// staticPeriodRepo serves a fixed set of periods to the posting path.
type staticPeriodRepo struct {
	periods []periods.Period
}

func (r *staticPeriodRepo) List(_ context.Context, businessID int64) ([]periods.Period, error) {
	return r.periods, nil
}

func (r *staticPeriodRepo) Get(_ context.Context, id, businessID int64) (periods.Period, error) {
	for _, p := range r.periods {
		if p.ID == id && p.BusinessID == businessID {
			return p, nil
		}
	}
	return periods.Period{}, shared.ErrPeriodNotFound
}

func (r *staticPeriodRepo) FindCurrent(_ context.Context, businessID int64, now time.Time) (periods.Period, error) {
	for _, p := range r.periods {
		if p.BusinessID == businessID && !p.IsClosed && p.Contains(now) {
			return p, nil
		}
	}
	return periods.Period{}, shared.ErrPeriodNotFound
}

func (r *staticPeriodRepo) FindForDate(_ context.Context, businessID int64, date time.Time) (periods.Period, error) {
	var closed *periods.Period
	for i, p := range r.periods {
		if p.BusinessID != businessID || !p.Contains(date) {
			continue
		}
		if !p.IsClosed {
			return p, nil
		}
		if closed == nil {
			closed = &r.periods[i]
		}
	}
	if closed != nil {
		return *closed, nil
	}
	return periods.Period{}, shared.ErrPeriodNotFound
}

func (r *staticPeriodRepo) Insert(_ context.Context, p periods.Period) (periods.Period, error) {
	return p, nil
}

func (r *staticPeriodRepo) Update(_ context.Context, p periods.Period) (periods.Period, error) {
	return p, nil
}

func (r *staticPeriodRepo) Close(context.Context, int64, int64, int64, time.Time) error {
	return nil
}

func TestPostRejectsDateInsideClosedPeriod(t *testing.T) {
	closedAt := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	periodSvc := periods.NewService(&staticPeriodRepo{periods: []periods.Period{{
		ID:         4,
		BusinessID: 1,
		Name:       "Enero 2026",
		StartDate:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		IsClosed:   true,
		ClosedAt:   &closedAt,
	}}})
	svc := NewService(nil, nil, nil, periodSvc, nil, slog.Default())

	entry := Entry{BusinessID: 1, EntryDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)}
	_, err := svc.postInTx(context.Background(), nil, &entry, 1)
	require.ErrorIs(t, err, shared.ErrPeriodClosed)
}

func TestCheckAccountsScopedToBusiness(t *testing.T) {
	svc := testService(&memoryAccountRepo{accounts: map[int64]accounts.Account{
		7: {ID: 7, BusinessID: 2, Code: "1000", IsActive: true, AllowsManualEntries: true},
	}})
	err := svc.checkAccounts(context.Background(), 1, SourceManual, []Line{{AccountID: 7}})
	require.ErrorIs(t, err, shared.ErrAccountNotFound)
}
