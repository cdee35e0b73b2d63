package ar

import (
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
	service  *Service
	validate *validator.Validate
}

func NewHandler(service *Service, validate *validator.Validate) *Handler {
	return &Handler{service: service, validate: validate}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/summary", h.summary)
	r.Get("/{id}", h.get)
	r.Get("/{id}/payments", h.payments)
	r.Post("/{id}/payments", h.addPayment)
}

type createRequest struct {
	CustomerID  int64  `json:"customer_id" validate:"required,gt=0"`
	OrderID     *int64 `json:"order_id"`
	Reference   string `json:"reference" validate:"max=64"`
	Description string `json:"description" validate:"max=512"`
	Amount      string `json:"amount" validate:"required"`
	DueDate     string `json:"due_date" validate:"required"`
}

type paymentRequest struct {
	Amount string `json:"amount" validate:"required"`
	Method string `json:"method" validate:"max=32"`
	Note   string `json:"note" validate:"max=512"`
}

type paymentResponse struct {
	ID     int64     `json:"id"`
	Amount string    `json:"amount"`
	Method string    `json:"method,omitempty"`
	Note   string    `json:"note,omitempty"`
	PaidAt time.Time `json:"paid_at"`
}

type receivableResponse struct {
	ID          int64     `json:"id"`
	CustomerID  int64     `json:"customer_id"`
	OrderID     *int64    `json:"order_id,omitempty"`
	Reference   string    `json:"reference,omitempty"`
	Description string    `json:"description,omitempty"`
	Amount      string    `json:"amount"`
	AmountPaid  string    `json:"amount_paid"`
	Pending     string    `json:"pending"`
	IssuedAt    time.Time `json:"issued_at"`
	DueDate     string    `json:"due_date"`
	Status      Status    `json:"status"`
	PaidDate    *string   `json:"paid_date,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toResponse(r Receivable) receivableResponse {
	var paidDate *string
	if r.PaidDate != nil {
		formatted := r.PaidDate.Format("2006-01-02")
		paidDate = &formatted
	}
	return receivableResponse{
		ID:          r.ID,
		CustomerID:  r.CustomerID,
		OrderID:     r.OrderID,
		Reference:   r.Reference,
		Description: r.Description,
		Amount:      r.Amount.StringFixed(2),
		AmountPaid:  r.AmountPaid.StringFixed(2),
		Pending:     r.Pending().StringFixed(2),
		IssuedAt:    r.IssuedAt,
		DueDate:     r.DueDate.Format("2006-01-02"),
		Status:      r.Status,
		PaidDate:    paidDate,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	businessID, ok := shared.BusinessFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, r, httpx.ErrForbidden)
		return
	}
	var f Filter
	if raw := r.URL.Query().Get("customer_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.RespondError(w, r, httpx.ErrValidation)
			return
		}
		f.CustomerID = &id
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		st := Status(raw)
		switch st {
		case StatusPending, StatusPartial, StatusPaid, StatusOverdue:
			f.Status = &st
		default:
			httpx.RespondError(w, r, httpx.ErrValidation)
			return
		}
	}
	items, err := h.service.List(r.Context(), businessID, f, shared.ParseListRange(r))
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	out := make([]receivableResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toResponse(item))
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
	item, err := h.service.Get(r.Context(), id, businessID)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(item))
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
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		httpx.RespondError(w, r, httpx.ErrValidation)
		return
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		httpx.RespondError(w, r, httpx.ErrValidation)
		return
	}
	item, err := h.service.Open(r.Context(), Receivable{
		BusinessID:  businessID,
		CustomerID:  req.CustomerID,
		OrderID:     req.OrderID,
		Reference:   req.Reference,
		Description: req.Description,
		Amount:      amount,
		DueDate:     dueDate,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(item))
}

func (h *Handler) payments(w http.ResponseWriter, r *http.Request) {
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
	items, err := h.service.Payments(r.Context(), id, businessID)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	out := make([]paymentResponse, 0, len(items))
	for _, p := range items {
		out = append(out, paymentResponse{
			ID:     p.ID,
			Amount: p.Amount.StringFixed(2),
			Method: p.Method,
			Note:   p.Note,
			PaidAt: p.PaidAt,
		})
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) addPayment(w http.ResponseWriter, r *http.Request) {
	businessID, ok := shared.BusinessFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, r, httpx.ErrForbidden)
		return
	}
	userID, _ := shared.UserFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, r, httpx.ErrValidation)
		return
	}
	var req paymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, r, httpx.ErrValidation)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		httpx.RespondError(w, r, httpx.ErrValidation)
		return
	}
	item, err := h.service.AddPayment(r.Context(), id, businessID, amount, req.Method, req.Note, userID)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(item))
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	businessID, ok := shared.BusinessFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, r, httpx.ErrForbidden)
		return
	}
	sum, err := h.service.Summarize(r.Context(), businessID)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"total_outstanding": sum.TotalOutstanding.StringFixed(2),
		"total_overdue":     sum.TotalOverdue.StringFixed(2),
		"open_count":        sum.OpenCount,
		"overdue_count":     sum.OverdueCount,
	})
}
