package accounts

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comanda-erp/comanda-erp/internal/accounting/mappings"
	"github.com/comanda-erp/comanda-erp/internal/accounting/shared"
)

type memoryRepo struct {
	accounts []Account
	lineRefs map[int64]int64
	nextID   int64
}

func (m *memoryRepo) List(_ context.Context, businessID int64, activeOnly bool) ([]Account, error) {
	var out []Account
	for _, a := range m.accounts {
		if a.BusinessID != businessID {
			continue
		}
		if activeOnly && !a.IsActive {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, id, businessID int64) (Account, error) {
	for _, a := range m.accounts {
		if a.ID == id && a.BusinessID == businessID {
			return a, nil
		}
	}
	return Account{}, shared.ErrAccountNotFound
}

func (m *memoryRepo) FindByCode(_ context.Context, businessID int64, code string) (Account, error) {
	for _, a := range m.accounts {
		if a.BusinessID == businessID && a.Code == code {
			return a, nil
		}
	}
	return Account{}, shared.ErrAccountNotFound
}

func (m *memoryRepo) Insert(_ context.Context, account Account) (Account, error) {
	m.nextID++
	account.ID = m.nextID
	m.accounts = append(m.accounts, account)
	return account, nil
}

func (m *memoryRepo) Update(_ context.Context, account Account) (Account, error) {
	for i, a := range m.accounts {
		if a.ID == account.ID {
			m.accounts[i] = account
			return account, nil
		}
	}
	return Account{}, shared.ErrAccountNotFound
}

func (m *memoryRepo) SoftDelete(_ context.Context, id, businessID int64) error {
	for i, a := range m.accounts {
		if a.ID == id && a.BusinessID == businessID {
			m.accounts[i].IsActive = false
			return nil
		}
	}
	return shared.ErrAccountNotFound
}

func (m *memoryRepo) CountLineReferences(_ context.Context, accountID int64) (int64, error) {
	return m.lineRefs[accountID], nil
}

type staticMappings struct {
	list []mappings.RoleMapping
}

func (s staticMappings) ListByBusiness(context.Context, int64) ([]mappings.RoleMapping, error) {
	return s.list, nil
}

func seedChart(repo *memoryRepo) {
	for _, a := range []Account{
		{BusinessID: 1, Code: "1000", Name: "Caja general", Type: TypeAsset, IsActive: true},
		{BusinessID: 1, Code: "1100", Name: "Cuentas por cobrar", Type: TypeAsset, IsActive: true},
		{BusinessID: 1, Code: "1200", Name: "Inventario", Type: TypeAsset, IsActive: true},
		{BusinessID: 1, Code: "2000", Name: "Cuentas por pagar", Type: TypeLiability, IsActive: true},
		{BusinessID: 1, Code: "2100", Name: "Impuestos por pagar", Type: TypeLiability, IsActive: true},
		{BusinessID: 1, Code: "4000", Name: "Ventas", Type: TypeRevenue, IsActive: true},
		{BusinessID: 1, Code: "5000", Name: "Costo de ventas", Type: TypeCostOfSales, IsActive: true},
	} {
		_, _ = repo.Insert(context.Background(), a)
	}
}

func TestCreateDefaultsNatureFromType(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(slog.Default(), repo, nil)

	created, err := svc.Create(context.Background(), Account{
		BusinessID: 1, Code: "4000", Name: "Ventas", Type: TypeRevenue,
	})
	require.NoError(t, err)
	require.Equal(t, NatureCredit, created.Nature)
}

func TestCreateRejectsDuplicateCode(t *testing.T) {
	repo := &memoryRepo{}
	seedChart(repo)
	svc := NewService(slog.Default(), repo, nil)

	_, err := svc.Create(context.Background(), Account{
		BusinessID: 1, Code: "1000", Name: "Otra caja", Type: TypeAsset,
	})
	require.ErrorIs(t, err, shared.ErrDuplicateCode)
}

func TestCreateAllowsSameCodeInOtherBusiness(t *testing.T) {
	repo := &memoryRepo{}
	seedChart(repo)
	svc := NewService(slog.Default(), repo, nil)

	_, err := svc.Create(context.Background(), Account{
		BusinessID: 2, Code: "1000", Name: "Caja", Type: TypeAsset,
	})
	require.NoError(t, err)
}

func TestUpdateRejectsSystemAccount(t *testing.T) {
	repo := &memoryRepo{}
	_, _ = repo.Insert(context.Background(), Account{
		BusinessID: 1, Code: "3000", Name: "Capital", Type: TypeEquity, IsSystem: true, IsActive: true,
	})
	svc := NewService(slog.Default(), repo, nil)

	name := "Renamed"
	_, err := svc.Update(context.Background(), 1, 1, Patch{Name: &name})
	require.ErrorIs(t, err, shared.ErrSystemAccount)
}

func TestUpdateRejectsCodeCollision(t *testing.T) {
	repo := &memoryRepo{}
	seedChart(repo)
	svc := NewService(slog.Default(), repo, nil)

	code := "1100"
	_, err := svc.Update(context.Background(), 1, 1, Patch{Code: &code})
	require.ErrorIs(t, err, shared.ErrDuplicateCode)
}

func TestSoftDeleteProtectsReferencedAccount(t *testing.T) {
	repo := &memoryRepo{lineRefs: map[int64]int64{1: 3}}
	seedChart(repo)
	svc := NewService(slog.Default(), repo, nil)

	err := svc.SoftDelete(context.Background(), 1, 1)
	require.ErrorIs(t, err, shared.ErrAccountInUse)

	require.NoError(t, svc.SoftDelete(context.Background(), 2, 1))
}

func TestDefaultAccountsHeuristics(t *testing.T) {
	repo := &memoryRepo{}
	seedChart(repo)
	svc := NewService(slog.Default(), repo, nil)

	resolved, err := svc.DefaultAccounts(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "1000", resolved[RoleCash].Code)
	require.Equal(t, "1100", resolved[RoleReceivable].Code)
	require.Equal(t, "1200", resolved[RoleInventory].Code)
	require.Equal(t, "2000", resolved[RolePayable].Code)
	require.Equal(t, "2100", resolved[RoleTaxPayable].Code)
	require.Equal(t, "4000", resolved[RoleRevenue].Code)
	require.Equal(t, "5000", resolved[RoleCostOfSales].Code)
}

func TestDefaultAccountsMappingBeatsHeuristic(t *testing.T) {
	repo := &memoryRepo{}
	seedChart(repo)
	_, _ = repo.Insert(context.Background(), Account{
		BusinessID: 1, Code: "1010", Name: "Banco principal", Type: TypeAsset, IsActive: true,
	})
	roles := staticMappings{list: []mappings.RoleMapping{
		{BusinessID: 1, Role: string(RoleCash), AccountID: 8},
	}}
	svc := NewService(slog.Default(), repo, roles)

	resolved, err := svc.DefaultAccounts(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "1010", resolved[RoleCash].Code, "explicit mapping wins over the keyword scan")
}

func TestDefaultAccountsIgnoresMappingToInactiveAccount(t *testing.T) {
	repo := &memoryRepo{}
	seedChart(repo)
	_, _ = repo.Insert(context.Background(), Account{
		BusinessID: 1, Code: "1010", Name: "Banco cerrado", Type: TypeAsset, IsActive: false,
	})
	roles := staticMappings{list: []mappings.RoleMapping{
		{BusinessID: 1, Role: string(RoleCash), AccountID: 8},
	}}
	svc := NewService(slog.Default(), repo, roles)

	resolved, err := svc.DefaultAccounts(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "1000", resolved[RoleCash].Code, "falls back to the heuristic")
}

func TestDefaultAccountsMissingRolesAreAbsent(t *testing.T) {
	repo := &memoryRepo{}
	_, _ = repo.Insert(context.Background(), Account{
		BusinessID: 1, Code: "4000", Name: "Ventas", Type: TypeRevenue, IsActive: true,
	})
	svc := NewService(slog.Default(), repo, nil)

	resolved, err := svc.DefaultAccounts(context.Background(), 1)
	require.NoError(t, err)
	require.Contains(t, resolved, RoleRevenue)
	require.NotContains(t, resolved, RoleCash)
	require.NotContains(t, resolved, RoleInventory)
}
