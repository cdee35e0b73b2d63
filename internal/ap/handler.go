package ap

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
	SupplierID  int64  `json:"supplier_id" validate:"required,gt=0"`
	PurchaseID  *int64 `json:"purchase_id"`
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

type payableResponse struct {
	ID          int64     `json:"id"`
	SupplierID  int64     `json:"supplier_id"`
	PurchaseID  *int64    `json:"purchase_id,omitempty"`
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

func toResponse(p Payable) payableResponse {
	var paidDate *string
	if p.PaidDate != nil {
		formatted := p.PaidDate.Format("2006-01-02")
		paidDate = &formatted
	}
	return payableResponse{
		ID:          p.ID,
		SupplierID:  p.SupplierID,
		PurchaseID:  p.PurchaseID,
		Reference:   p.Reference,
		Description: p.Description,
		Amount:      p.Amount.StringFixed(2),
		AmountPaid:  p.AmountPaid.StringFixed(2),
		Pending:     p.Pending().StringFixed(2),
		IssuedAt:    p.IssuedAt,
		DueDate:     p.DueDate.Format("2006-01-02"),
		Status:      p.Status,
		PaidDate:    paidDate,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	businessID, ok := shared.BusinessFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, r, httpx.ErrForbidden)
		return
	}
	var f Filter
	if raw := r.URL.Query().Get("supplier_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.RespondError(w, r, httpx.ErrValidation)
			return
		}
		f.SupplierID = &id
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
	out := make([]payableResponse, 0, len(items))
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
	item, err := h.service.Open(r.Context(), Payable{
		BusinessID:  businessID,
		SupplierID:  req.SupplierID,
		PurchaseID:  req.PurchaseID,
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
