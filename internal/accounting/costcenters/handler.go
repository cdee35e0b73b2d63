package costcenters

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/comanda-erp/comanda-erp/internal/platform/httpx"
	"github.com/comanda-erp/comanda-erp/internal/shared"
)

type Handler struct {
	service  *Service
	validate *validator.Validate
}

func NewHandler(service *Service, validate *validator.Validate) *Handler {
	return &Handler{service: service, validate: validate}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.remove)
}

type createRequest struct {
	Code        string `json:"code" validate:"required,max=32"`
	Name        string `json:"name" validate:"required,max=128"`
	Description string `json:"description" validate:"max=512"`
	ParentID    *int64 `json:"parent_id"`
}

type updateRequest struct {
	Code        *string `json:"code" validate:"omitempty,max=32"`
	Name        *string `json:"name" validate:"omitempty,max=128"`
	Description *string `json:"description" validate:"omitempty,max=512"`
	ParentID    *int64  `json:"parent_id"`
	IsActive    *bool   `json:"is_active"`
}

type costCenterResponse struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ParentID    *int64    `json:"parent_id,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toResponse(c CostCenter) costCenterResponse {
	return costCenterResponse{
		ID:          c.ID,
		Code:        c.Code,
		Name:        c.Name,
		Description: c.Description,
		ParentID:    c.ParentID,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	businessID, ok := shared.BusinessFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, r, httpx.ErrForbidden)
		return
	}
	activeOnly := r.URL.Query().Get("active_only") == "true"
	centers, err := h.service.List(r.Context(), businessID, activeOnly)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	out := make([]costCenterResponse, 0, len(centers))
	for _, c := range centers {
		out = append(out, toResponse(c))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	businessID, ok := shared.BusinessFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, r, httpx.ErrForbidden)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, r, httpx.ErrValidation)
		return
	}
	center, err := h.service.Get(r.Context(), id, businessID)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(center))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	businessID, ok := shared.BusinessFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, r, httpx.ErrForbidden)
		return
	}
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, r, httpx.ErrValidation)
		return
	}
	center, err := h.service.Create(r.Context(), CostCenter{
		BusinessID:  businessID,
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(center))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	businessID, ok := shared.BusinessFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, r, httpx.ErrForbidden)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, r, httpx.ErrValidation)
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, r, httpx.ErrValidation)
		return
	}
	center, err := h.service.Update(r.Context(), id, businessID, Patch{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
		IsActive:    req.IsActive,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(center))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	businessID, ok := shared.BusinessFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, r, httpx.ErrForbidden)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, r, httpx.ErrValidation)
		return
	}
	if err := h.service.SoftDelete(r.Context(), id, businessID); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.NoContent(w)
}
