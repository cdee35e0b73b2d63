package accounts

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/comanda-erp/comanda-erp/internal/accounting/mappings"
	"github.com/comanda-erp/comanda-erp/internal/accounting/shared"
)

// RoleSource provides explicit role→account configuration for a business.
// The heuristic resolver only runs for roles the source does not cover.
type RoleSource interface {
	ListByBusiness(ctx context.Context, businessID int64) ([]mappings.RoleMapping, error)
}

type Service struct {
	repo   Repository
	roles  RoleSource
	logger *slog.Logger
}

func NewService(logger *slog.Logger, repo Repository, roles RoleSource) *Service {
	return &Service{repo: repo, roles: roles, logger: logger}
}

func (s *Service) List(ctx context.Context, businessID int64, activeOnly bool) ([]Account, error) {
	return s.repo.List(ctx, businessID, activeOnly)
}

func (s *Service) Get(ctx context.Context, id, businessID int64) (Account, error) {
	return s.repo.Get(ctx, id, businessID)
}

// Create inserts a new account. The code must be unique within the business;
// nature defaults to the canonical mapping for the type when left empty.
func (s *Service) Create(ctx context.Context, account Account) (Account, error) {
	if account.Nature == "" {
		account.Nature = CanonicalNature(account.Type)
	}
	if _, err := s.repo.FindByCode(ctx, account.BusinessID, account.Code); err == nil {
		return Account{}, shared.ErrDuplicateCode
	} else if !errors.Is(err, shared.ErrAccountNotFound) {
		return Account{}, err
	}
	return s.repo.Insert(ctx, account)
}

// Update patches a non-system account. Changing the code is rejected when the
// new code collides with another live account.
func (s *Service) Update(ctx context.Context, id, businessID int64, patch Patch) (Account, error) {
	current, err := s.repo.Get(ctx, id, businessID)
	if err != nil {
		return Account{}, err
	}
	if current.IsSystem {
		return Account{}, shared.ErrSystemAccount
	}
	if patch.Code != nil && *patch.Code != current.Code {
		if existing, err := s.repo.FindByCode(ctx, businessID, *patch.Code); err == nil && existing.ID != id {
			return Account{}, shared.ErrDuplicateCode
		} else if err != nil && !errors.Is(err, shared.ErrAccountNotFound) {
			return Account{}, err
		}
	}
	patch.apply(&current)
	return s.repo.Update(ctx, current)
}

// SoftDelete removes an account from view. System accounts and accounts still
// referenced by live journal lines are protected.
func (s *Service) SoftDelete(ctx context.Context, id, businessID int64) error {
	account, err := s.repo.Get(ctx, id, businessID)
	if err != nil {
		return err
	}
	if account.IsSystem {
		return shared.ErrSystemAccount
	}
	refs, err := s.repo.CountLineReferences(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return shared.ErrAccountInUse
	}
	return s.repo.SoftDelete(ctx, id, businessID)
}

// Patch carries optional account updates.
type Patch struct {
	Code                *string
	Name                *string
	Description         *string
	Type                *AccountType
	Nature              *AccountNature
	ParentID            *int64
	Level               *int
	AllowsManualEntries *bool
	IsActive            *bool
}

func (p Patch) apply(a *Account) {
	if p.Code != nil {
		a.Code = *p.Code
	}
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.Type != nil {
		a.Type = *p.Type
	}
	if p.Nature != nil {
		a.Nature = *p.Nature
	}
	if p.ParentID != nil {
		a.ParentID = p.ParentID
	}
	if p.Level != nil {
		a.Level = *p.Level
	}
	if p.AllowsManualEntries != nil {
		a.AllowsManualEntries = *p.AllowsManualEntries
	}
	if p.IsActive != nil {
		a.IsActive = *p.IsActive
	}
}

// DefaultAccounts resolves the functional role accounts the integration bridge
// posts against. Explicit role mappings win; remaining roles fall back to a
// name-keyword scan over the active chart. Roles without a match are simply
// absent from the result, never an error.
func (s *Service) DefaultAccounts(ctx context.Context, businessID int64) (map[Role]Account, error) {
	active, err := s.repo.List(ctx, businessID, true)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]Account, len(active))
	for _, a := range active {
		byID[a.ID] = a
	}

	resolved := make(map[Role]Account)
	if s.roles != nil {
		configured, err := s.roles.ListByBusiness(ctx, businessID)
		if err != nil {
			return nil, err
		}
		for _, m := range configured {
			if a, ok := byID[m.AccountID]; ok {
				resolved[Role(m.Role)] = a
			} else {
				s.logger.Warn("role mapping points at missing or inactive account",
					slog.Int64("business_id", businessID),
					slog.String("role", m.Role),
					slog.Int64("account_id", m.AccountID))
			}
		}
	}

	for role, match := range heuristics {
		if _, ok := resolved[role]; ok {
			continue
		}
		for _, a := range active {
			if match(a) {
				resolved[role] = a
				break
			}
		}
	}
	return resolved, nil
}

// Legacy keyword matching retained for businesses without explicit role
// mappings. Keywords cover the Spanish and English account names seeded by the
// setup flow.
var heuristics = map[Role]func(Account) bool{
	RoleRevenue:     func(a Account) bool { return a.Type == TypeRevenue },
	RoleCostOfSales: func(a Account) bool { return a.Type == TypeCostOfSales },
	RoleInventory: func(a Account) bool {
		return a.Type == TypeAsset && nameContains(a, "inventario", "inventory")
	},
	RoleReceivable: func(a Account) bool {
		return a.Type == TypeAsset && nameContains(a, "cobrar", "receivable")
	},
	RolePayable: func(a Account) bool {
		return a.Type == TypeLiability && nameContains(a, "pagar", "payable")
	},
	RoleCash: func(a Account) bool {
		return a.Type == TypeAsset && nameContains(a, "caja", "banco", "cash", "efectivo")
	},
	RoleTaxPayable: func(a Account) bool {
		return a.Type == TypeLiability && nameContains(a, "impuesto", "tax")
	},
}

func nameContains(a Account, keywords ...string) bool {
	name := strings.ToLower(a.Name)
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}
