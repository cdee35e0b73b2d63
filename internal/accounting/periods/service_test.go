package periods

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comanda-erp/comanda-erp/internal/accounting/shared"
)

type memoryRepo struct {
	periods []Period
	nextID  int64
}

func (m *memoryRepo) List(_ context.Context, businessID int64) ([]Period, error) {
	var out []Period
	for _, p := range m.periods {
		if p.BusinessID == businessID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, id, businessID int64) (Period, error) {
	for _, p := range m.periods {
		if p.ID == id && p.BusinessID == businessID {
			return p, nil
		}
	}
	return Period{}, shared.ErrPeriodNotFound
}

func (m *memoryRepo) FindCurrent(_ context.Context, businessID int64, now time.Time) (Period, error) {
	for _, p := range m.periods {
		if p.BusinessID == businessID && !p.IsClosed && p.Contains(now) {
			return p, nil
		}
	}
	return Period{}, shared.ErrPeriodNotFound
}

func (m *memoryRepo) FindForDate(_ context.Context, businessID int64, date time.Time) (Period, error) {
	var closed *Period
	for i, p := range m.periods {
		if p.BusinessID != businessID || !p.Contains(date) {
			continue
		}
		if !p.IsClosed {
			return p, nil
		}
		if closed == nil {
			closed = &m.periods[i]
		}
	}
	if closed != nil {
		return *closed, nil
	}
	return Period{}, shared.ErrPeriodNotFound
}

func (m *memoryRepo) Insert(_ context.Context, period Period) (Period, error) {
	m.nextID++
	period.ID = m.nextID
	m.periods = append(m.periods, period)
	return period, nil
}

func (m *memoryRepo) Update(_ context.Context, period Period) (Period, error) {
	for i, p := range m.periods {
		if p.ID == period.ID {
			m.periods[i] = period
			return period, nil
		}
	}
	return Period{}, shared.ErrPeriodNotFound
}

func (m *memoryRepo) Close(_ context.Context, id, businessID, closedBy int64, at time.Time) error {
	for i, p := range m.periods {
		if p.ID == id && p.BusinessID == businessID {
			m.periods[i].IsClosed = true
			m.periods[i].ClosedAt = &at
			m.periods[i].ClosedBy = &closedBy
			return nil
		}
	}
	return shared.ErrPeriodNotFound
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func april() Period {
	return Period{
		BusinessID: 1,
		Name:       "Abril 2026",
		StartDate:  day(2026, 4, 1),
		EndDate:    day(2026, 4, 30),
	}
}

func TestCreateRejectsInvertedWindow(t *testing.T) {
	svc := NewService(&memoryRepo{})
	_, err := svc.Create(context.Background(), Period{
		BusinessID: 1,
		StartDate:  day(2026, 4, 30),
		EndDate:    day(2026, 4, 1),
	})
	require.ErrorIs(t, err, shared.ErrDateOutOfPeriod)
}

func TestCreateRejectsOverlapWithOpenPeriod(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo)
	_, err := svc.Create(context.Background(), april())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), Period{
		BusinessID: 1,
		Name:       "Quincena",
		StartDate:  day(2026, 4, 15),
		EndDate:    day(2026, 5, 15),
	})
	require.ErrorIs(t, err, shared.ErrPeriodOverlap)
}

func TestCreateAllowsOverlapWithClosedPeriod(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo)
	created, err := svc.Create(context.Background(), april())
	require.NoError(t, err)
	_, err = svc.Close(context.Background(), created.ID, 1, 9)
	require.NoError(t, err)

	// Reopening the same window after a close is allowed.
	_, err = svc.Create(context.Background(), april())
	require.NoError(t, err)
}

func TestCreateAllowsAdjacentPeriods(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo)
	_, err := svc.Create(context.Background(), april())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), Period{
		BusinessID: 1,
		Name:       "Mayo 2026",
		StartDate:  day(2026, 5, 1),
		EndDate:    day(2026, 5, 31),
	})
	require.NoError(t, err)
}

func TestCloseTwiceConflicts(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo)
	created, err := svc.Create(context.Background(), april())
	require.NoError(t, err)

	closed, err := svc.Close(context.Background(), created.ID, 1, 9)
	require.NoError(t, err)
	require.True(t, closed.IsClosed)
	require.NotNil(t, closed.ClosedAt)
	require.Equal(t, int64(9), *closed.ClosedBy)

	_, err = svc.Close(context.Background(), created.ID, 1, 9)
	require.ErrorIs(t, err, shared.ErrPeriodClosed)
}

func TestUpdateRejectsClosedPeriod(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo)
	created, err := svc.Create(context.Background(), april())
	require.NoError(t, err)
	_, err = svc.Close(context.Background(), created.ID, 1, 9)
	require.NoError(t, err)

	name := "Renombrado"
	_, err = svc.Update(context.Background(), created.ID, 1, &name, nil, nil)
	require.ErrorIs(t, err, shared.ErrPeriodClosed)
}

func TestEnsurePostable(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo)
	created, err := svc.Create(context.Background(), april())
	require.NoError(t, err)

	require.NoError(t, svc.EnsurePostable(context.Background(), created.ID, 1, day(2026, 4, 15)))
	require.NoError(t, svc.EnsurePostable(context.Background(), created.ID, 1, day(2026, 4, 1)), "start date is inclusive")
	require.NoError(t, svc.EnsurePostable(context.Background(), created.ID, 1, day(2026, 4, 30)), "end date is inclusive")

	err = svc.EnsurePostable(context.Background(), created.ID, 1, day(2026, 5, 1))
	require.ErrorIs(t, err, shared.ErrDateOutOfPeriod)

	_, err = svc.Close(context.Background(), created.ID, 1, 9)
	require.NoError(t, err)
	err = svc.EnsurePostable(context.Background(), created.ID, 1, day(2026, 4, 15))
	require.ErrorIs(t, err, shared.ErrPeriodClosed)
}

func TestResolveForDate(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo)
	created, err := svc.Create(context.Background(), april())
	require.NoError(t, err)

	id, err := svc.ResolveForDate(context.Background(), 1, day(2026, 4, 10))
	require.NoError(t, err)
	require.NotNil(t, id)
	require.Equal(t, created.ID, *id)

	id, err = svc.ResolveForDate(context.Background(), 1, day(2026, 7, 10))
	require.NoError(t, err)
	require.Nil(t, id, "no period is not an error")
}

func TestResolveForDateRejectsClosedPeriod(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo)
	created, err := svc.Create(context.Background(), april())
	require.NoError(t, err)
	_, err = svc.Close(context.Background(), created.ID, 1, 9)
	require.NoError(t, err)

	_, err = svc.ResolveForDate(context.Background(), 1, day(2026, 4, 15))
	require.ErrorIs(t, err, shared.ErrPeriodClosed)
}

func TestResolveForDatePrefersOpenOverClosedOverlap(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo)
	first, err := svc.Create(context.Background(), april())
	require.NoError(t, err)
	_, err = svc.Close(context.Background(), first.ID, 1, 9)
	require.NoError(t, err)
	reopened, err := svc.Create(context.Background(), april())
	require.NoError(t, err)

	id, err := svc.ResolveForDate(context.Background(), 1, day(2026, 4, 15))
	require.NoError(t, err)
	require.NotNil(t, id)
	require.Equal(t, reopened.ID, *id)
}
