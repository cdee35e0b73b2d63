package costcenters

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comanda-erp/comanda-erp/internal/accounting/shared"
	"github.com/comanda-erp/comanda-erp/internal/platform/httpx"
)

type memoryRepo struct {
	centers []CostCenter
	nextID  int64
}

func (m *memoryRepo) List(_ context.Context, businessID int64, activeOnly bool) ([]CostCenter, error) {
	var out []CostCenter
	for _, c := range m.centers {
		if c.BusinessID != businessID {
			continue
		}
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, id, businessID int64) (CostCenter, error) {
	for _, c := range m.centers {
		if c.ID == id && c.BusinessID == businessID {
			return c, nil
		}
	}
	return CostCenter{}, shared.ErrCostCenterNotFound
}

func (m *memoryRepo) Insert(_ context.Context, center CostCenter) (CostCenter, error) {
	m.nextID++
	center.ID = m.nextID
	m.centers = append(m.centers, center)
	return center, nil
}

func (m *memoryRepo) Update(_ context.Context, center CostCenter) (CostCenter, error) {
	for i, c := range m.centers {
		if c.ID == center.ID {
			m.centers[i] = center
			return center, nil
		}
	}
	return CostCenter{}, shared.ErrCostCenterNotFound
}

func (m *memoryRepo) SoftDelete(_ context.Context, id, businessID int64) error {
	for i, c := range m.centers {
		if c.ID == id && c.BusinessID == businessID {
			m.centers[i].IsActive = false
			return nil
		}
	}
	return shared.ErrCostCenterNotFound
}

func testService(repo Repository) *Service {
	return NewService(repo, slog.Default())
}

func TestCreateTrimsAndActivates(t *testing.T) {
	svc := testService(&memoryRepo{})
	created, err := svc.Create(context.Background(), CostCenter{
		BusinessID: 1,
		Code:       "  COCINA ",
		Name:       " Cocina principal ",
	})
	require.NoError(t, err)
	require.Equal(t, "COCINA", created.Code)
	require.Equal(t, "Cocina principal", created.Name)
	require.True(t, created.IsActive)
}

func TestCreateRequiresCodeAndName(t *testing.T) {
	svc := testService(&memoryRepo{})
	_, err := svc.Create(context.Background(), CostCenter{BusinessID: 1, Code: "   "})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateRejectsUnknownParent(t *testing.T) {
	svc := testService(&memoryRepo{})
	parent := int64(99)
	_, err := svc.Create(context.Background(), CostCenter{
		BusinessID: 1, Code: "BAR", Name: "Barra", ParentID: &parent,
	})
	require.ErrorIs(t, err, shared.ErrCostCenterNotFound)
}

func TestUpdateRejectsSelfParent(t *testing.T) {
	repo := &memoryRepo{}
	svc := testService(repo)
	created, err := svc.Create(context.Background(), CostCenter{
		BusinessID: 1, Code: "BAR", Name: "Barra",
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID, 1, Patch{ParentID: &created.ID})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateRejectsCrossTenantParent(t *testing.T) {
	repo := &memoryRepo{}
	svc := testService(repo)
	other, err := svc.Create(context.Background(), CostCenter{
		BusinessID: 2, Code: "SALON", Name: "Salon",
	})
	require.NoError(t, err)
	created, err := svc.Create(context.Background(), CostCenter{
		BusinessID: 1, Code: "BAR", Name: "Barra",
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID, 1, Patch{ParentID: &other.ID})
	require.ErrorIs(t, err, shared.ErrCostCenterNotFound)
}

func TestSoftDeleteHidesFromActiveList(t *testing.T) {
	repo := &memoryRepo{}
	svc := testService(repo)
	created, err := svc.Create(context.Background(), CostCenter{
		BusinessID: 1, Code: "BAR", Name: "Barra",
	})
	require.NoError(t, err)

	require.NoError(t, svc.SoftDelete(context.Background(), created.ID, 1))
	active, err := svc.List(context.Background(), 1, true)
	require.NoError(t, err)
	require.Empty(t, active)
}
