package mappings

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/comanda-erp/comanda-erp/internal/platform/httpx"
	"github.com/comanda-erp/comanda-erp/internal/shared"
)

// AccountCheck verifies the account belongs to the business before a role is
// pinned to it. Wired to the accounts repository at startup.
type AccountCheck func(ctx context.Context, accountID, businessID int64) error

type Handler struct {
	repo         Repository
	checkAccount AccountCheck
	validate     *validator.Validate
}

func NewHandler(repo Repository, checkAccount AccountCheck, validate *validator.Validate) *Handler {
	return &Handler{repo: repo, checkAccount: checkAccount, validate: validate}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Put("/{role}", h.put)
}

type mappingResponse struct {
	Role      string    `json:"role"`
	AccountID int64     `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type putRequest struct {
	AccountID int64 `json:"account_id" validate:"required,gt=0"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	businessID, ok := shared.BusinessFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, r, httpx.ErrForbidden)
		return
	}
	items, err := h.repo.ListByBusiness(r.Context(), businessID)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	out := make([]mappingResponse, 0, len(items))
	for _, m := range items {
		out = append(out, mappingResponse{
			Role:      m.Role,
			AccountID: m.AccountID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		})
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) put(w http.ResponseWriter, r *http.Request) {
	businessID, ok := shared.BusinessFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, r, httpx.ErrForbidden)
		return
	}
	role := chi.URLParam(r, "role")
	if !KnownRole(role) {
		httpx.RespondError(w, r, fmt.Errorf("%w: unknown role %q", httpx.ErrValidation, role))
		return
	}
	var req putRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, r, httpx.ErrValidation)
		return
	}
	if err := h.checkAccount(r.Context(), req.AccountID, businessID); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	if err := h.repo.Put(r.Context(), RoleMapping{
		BusinessID: businessID,
		Role:       role,
		AccountID:  req.AccountID,
	}); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.NoContent(w)
}
