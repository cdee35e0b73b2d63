package periods

import (
	"context"
	"errors"
	"time"

	"github.com/comanda-erp/comanda-erp/internal/accounting/shared"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) List(ctx context.Context, businessID int64) ([]Period, error) {
	return s.repo.List(ctx, businessID)
}

func (s *Service) Get(ctx context.Context, id, businessID int64) (Period, error) {
	return s.repo.Get(ctx, id, businessID)
}

func (s *Service) FindCurrent(ctx context.Context, businessID int64) (Period, error) {
	return s.repo.FindCurrent(ctx, businessID, s.now())
}

// Create inserts a period after checking it does not overlap any open period.
func (s *Service) Create(ctx context.Context, period Period) (Period, error) {
	if !period.StartDate.Before(period.EndDate) {
		return Period{}, shared.ErrDateOutOfPeriod
	}
	existing, err := s.repo.List(ctx, period.BusinessID)
	if err != nil {
		return Period{}, err
	}
	for _, p := range existing {
		if !p.IsClosed && p.Overlaps(period.StartDate, period.EndDate) {
			return Period{}, shared.ErrPeriodOverlap
		}
	}
	return s.repo.Insert(ctx, period)
}

// Update patches an open period.
func (s *Service) Update(ctx context.Context, id, businessID int64, name *string, start, end *time.Time) (Period, error) {
	current, err := s.repo.Get(ctx, id, businessID)
	if err != nil {
		return Period{}, err
	}
	if current.IsClosed {
		return Period{}, shared.ErrPeriodClosed
	}
	if name != nil {
		current.Name = *name
	}
	if start != nil {
		current.StartDate = *start
	}
	if end != nil {
		current.EndDate = *end
	}
	if !current.StartDate.Before(current.EndDate) {
		return Period{}, shared.ErrDateOutOfPeriod
	}
	return s.repo.Update(ctx, current)
}

// Close marks the period closed. Closing twice is a state conflict.
func (s *Service) Close(ctx context.Context, id, businessID, closedBy int64) (Period, error) {
	current, err := s.repo.Get(ctx, id, businessID)
	if err != nil {
		return Period{}, err
	}
	if current.IsClosed {
		return Period{}, shared.ErrPeriodClosed
	}
	at := s.now()
	if err := s.repo.Close(ctx, id, businessID, closedBy, at); err != nil {
		return Period{}, err
	}
	current.IsClosed = true
	current.ClosedAt = &at
	current.ClosedBy = &closedBy
	return current, nil
}

// EnsurePostable verifies an entry dated entryDate may be written against the
// period: the period must exist, be open, and contain the date.
func (s *Service) EnsurePostable(ctx context.Context, periodID, businessID int64, entryDate time.Time) error {
	period, err := s.repo.Get(ctx, periodID, businessID)
	if err != nil {
		return err
	}
	if period.IsClosed {
		return shared.ErrPeriodClosed
	}
	if !period.Contains(entryDate) {
		return shared.ErrDateOutOfPeriod
	}
	return nil
}

// ResolveForDate finds the period for a date when the caller supplied none.
// A date inside a closed period is unpostable; absence of any period is not
// fatal for system postings, callers decide.
func (s *Service) ResolveForDate(ctx context.Context, businessID int64, date time.Time) (*int64, error) {
	period, err := s.repo.FindForDate(ctx, businessID, date)
	if err != nil {
		if errors.Is(err, shared.ErrPeriodNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if period.IsClosed {
		return nil, shared.ErrPeriodClosed
	}
	return &period.ID, nil
}
