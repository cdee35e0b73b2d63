package costcenters

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/comanda-erp/comanda-erp/internal/platform/httpx"
)

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) List(ctx context.Context, businessID int64, activeOnly bool) ([]CostCenter, error) {
	return s.repo.List(ctx, businessID, activeOnly)
}

func (s *Service) Get(ctx context.Context, id, businessID int64) (CostCenter, error) {
	return s.repo.Get(ctx, id, businessID)
}

func (s *Service) Create(ctx context.Context, center CostCenter) (CostCenter, error) {
	center.Code = strings.TrimSpace(center.Code)
	center.Name = strings.TrimSpace(center.Name)
	if center.Code == "" || center.Name == "" {
		return CostCenter{}, fmt.Errorf("%w: cost center code and name are required", httpx.ErrValidation)
	}
	if center.ParentID != nil {
		if _, err := s.repo.Get(ctx, *center.ParentID, center.BusinessID); err != nil {
			return CostCenter{}, err
		}
	}
	center.IsActive = true
	created, err := s.repo.Insert(ctx, center)
	if err != nil {
		return CostCenter{}, err
	}
	s.log.InfoContext(ctx, "cost center created",
		slog.Int64("business_id", created.BusinessID),
		slog.String("code", created.Code))
	return created, nil
}

// Patch carries the mutable fields of a cost center update. Nil means
// leave the current value untouched.
type Patch struct {
	Code        *string
	Name        *string
	Description *string
	ParentID    *int64
	IsActive    *bool
}

func (p Patch) apply(c *CostCenter) {
	if p.Code != nil {
		c.Code = strings.TrimSpace(*p.Code)
	}
	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.ParentID != nil {
		c.ParentID = p.ParentID
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
}

func (s *Service) Update(ctx context.Context, id, businessID int64, patch Patch) (CostCenter, error) {
	current, err := s.repo.Get(ctx, id, businessID)
	if err != nil {
		return CostCenter{}, err
	}
	patch.apply(&current)
	if current.Code == "" || current.Name == "" {
		return CostCenter{}, fmt.Errorf("%w: cost center code and name are required", httpx.ErrValidation)
	}
	if current.ParentID != nil {
		if *current.ParentID == current.ID {
			return CostCenter{}, fmt.Errorf("%w: cost center cannot be its own parent", httpx.ErrValidation)
		}
		if _, err := s.repo.Get(ctx, *current.ParentID, businessID); err != nil {
			return CostCenter{}, err
		}
	}
	return s.repo.Update(ctx, current)
}

func (s *Service) SoftDelete(ctx context.Context, id, businessID int64) error {
	if _, err := s.repo.Get(ctx, id, businessID); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, id, businessID)
}
