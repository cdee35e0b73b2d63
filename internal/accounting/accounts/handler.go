package accounts

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/comanda-erp/comanda-erp/internal/platform/httpx"
	"github.com/comanda-erp/comanda-erp/internal/shared"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, validate *validator.Validate) *Handler {
	return &Handler{logger: logger, service: service, validate: validate}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/default-accounts", h.defaultAccounts)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.softDelete)
}

type createRequest struct {
	Code                string  `json:"code" validate:"required"`
	Name                string  `json:"name" validate:"required"`
	Description         string  `json:"description"`
	Type                string  `json:"account_type" validate:"required"`
	Nature              string  `json:"nature"`
	ParentID            *int64  `json:"parent_id"`
	Level               int     `json:"level"`
	AllowsManualEntries *bool   `json:"allows_manual_entries"`
	InitialBalance      *string `json:"initial_balance"`
	InitialBalanceDate  *string `json:"initial_balance_date"`
}

type updateRequest struct {
	Code                *string `json:"code"`
	Name                *string `json:"name"`
	Description         *string `json:"description"`
	Type                *string `json:"account_type"`
	Nature              *string `json:"nature"`
	ParentID            *int64  `json:"parent_id"`
	Level               *int    `json:"level"`
	AllowsManualEntries *bool   `json:"allows_manual_entries"`
	IsActive            *bool   `json:"is_active"`
}

type accountResponse struct {
	ID                  int64           `json:"id"`
	BusinessID          int64           `json:"business_id"`
	Code                string          `json:"code"`
	Name                string          `json:"name"`
	Description         string          `json:"description,omitempty"`
	Type                AccountType     `json:"account_type"`
	Nature              AccountNature   `json:"nature"`
	ParentID            *int64          `json:"parent_id,omitempty"`
	Level               int             `json:"level"`
	AllowsManualEntries bool            `json:"allows_manual_entries"`
	IsActive            bool            `json:"is_active"`
	IsSystem            bool            `json:"is_system"`
	InitialBalance      decimal.Decimal `json:"initial_balance"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func toResponse(a Account) accountResponse {
	return accountResponse{
		ID:                  a.ID,
		BusinessID:          a.BusinessID,
		Code:                a.Code,
		Name:                a.Name,
		Description:         a.Description,
		Type:                a.Type,
		Nature:              a.Nature,
		ParentID:            a.ParentID,
		Level:               a.Level,
		AllowsManualEntries: a.AllowsManualEntries,
		IsActive:            a.IsActive,
		IsSystem:            a.IsSystem,
		InitialBalance:      a.InitialBalance,
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
}

func tenant(r *http.Request) int64 {
	businessID, _ := shared.BusinessFromContext(r.Context())
	return businessID
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	businessID := tenant(r)
	activeOnly := r.URL.Query().Get("active_only") != "false"
	list, err := h.service.List(r.Context(), businessID, activeOnly)
	if err != nil {
		h.logger.Error("list accounts", slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	out := make([]accountResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toResponse(a))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid account id")
		return
	}
	account, err := h.service.Get(r.Context(), id, tenant(r))
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(account))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	account, err := h.accountFromCreate(r, req)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	created, err := h.service.Create(r.Context(), account)
	if err != nil {
		h.logger.Error("create account", slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(created))
}

func (h *Handler) accountFromCreate(r *http.Request, req createRequest) (Account, error) {
	accountType, err := ParseAccountType(req.Type)
	if err != nil {
		return Account{}, err
	}
	account := Account{
		BusinessID:          tenant(r),
		Code:                req.Code,
		Name:                req.Name,
		Description:         req.Description,
		Type:                accountType,
		ParentID:            req.ParentID,
		Level:               req.Level,
		AllowsManualEntries: true,
		IsActive:            true,
	}
	if account.Level == 0 {
		account.Level = 1
	}
	if req.AllowsManualEntries != nil {
		account.AllowsManualEntries = *req.AllowsManualEntries
	}
	if req.Nature != "" {
		nature, err := ParseAccountNature(req.Nature)
		if err != nil {
			return Account{}, err
		}
		account.Nature = nature
	}
	if req.InitialBalance != nil {
		balance, err := decimal.NewFromString(*req.InitialBalance)
		if err != nil {
			return Account{}, httpx.ErrValidation
		}
		account.InitialBalance = balance
	}
	if req.InitialBalanceDate != nil {
		at, err := time.Parse(time.RFC3339, *req.InitialBalanceDate)
		if err != nil {
			return Account{}, httpx.ErrValidation
		}
		account.InitialBalanceDate = &at
	}
	return account, nil
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid account id")
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}

	patch := Patch{
		Code:                req.Code,
		Name:                req.Name,
		Description:         req.Description,
		ParentID:            req.ParentID,
		Level:               req.Level,
		AllowsManualEntries: req.AllowsManualEntries,
		IsActive:            req.IsActive,
	}
	if req.Type != nil {
		accountType, err := ParseAccountType(*req.Type)
		if err != nil {
			httpx.RespondError(w, r, err)
			return
		}
		patch.Type = &accountType
	}
	if req.Nature != nil {
		nature, err := ParseAccountNature(*req.Nature)
		if err != nil {
			httpx.RespondError(w, r, err)
			return
		}
		patch.Nature = &nature
	}

	updated, err := h.service.Update(r.Context(), id, tenant(r), patch)
	if err != nil {
		h.logger.Error("update account", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(updated))
}

func (h *Handler) softDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid account id")
		return
	}
	if err := h.service.SoftDelete(r.Context(), id, tenant(r)); err != nil {
		h.logger.Error("delete account", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) defaultAccounts(w http.ResponseWriter, r *http.Request) {
	resolved, err := h.service.DefaultAccounts(r.Context(), tenant(r))
	if err != nil {
		h.logger.Error("resolve default accounts", slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	out := make(map[Role]accountResponse, len(resolved))
	for role, account := range resolved {
		out[role] = toResponse(account)
	}
	httpx.JSON(w, http.StatusOK, out)
}
