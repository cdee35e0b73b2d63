package ledger

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/comanda-erp/comanda-erp/internal/platform/httpx"
	"github.com/comanda-erp/comanda-erp/internal/shared"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/rebuild", h.rebuild)
}

type rowResponse struct {
	ID            int64  `json:"id"`
	AccountID     int64  `json:"account_id"`
	PeriodID      *int64 `json:"period_id,omitempty"`
	EntryID       int64  `json:"entry_id"`
	EntryNumber   string `json:"entry_number"`
	EntryDate     string `json:"entry_date"`
	Description   string `json:"description,omitempty"`
	Debit         string `json:"debit"`
	Credit        string `json:"credit"`
	BalanceDebit  string `json:"balance_debit"`
	BalanceCredit string `json:"balance_credit"`
}

func parseFilter(r *http.Request) (Filter, error) {
	var f Filter
	q := r.URL.Query()
	if raw := q.Get("account_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Filter{}, httpx.ErrValidation
		}
		f.AccountID = &id
	}
	if raw := q.Get("period_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Filter{}, httpx.ErrValidation
		}
		f.PeriodID = &id
	}
	if raw := q.Get("from"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return Filter{}, httpx.ErrValidation
		}
		f.From = &d
	}
	if raw := q.Get("to"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return Filter{}, httpx.ErrValidation
		}
		f.To = &d
	}
	return f, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	businessID, ok := shared.BusinessFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, r, httpx.ErrForbidden)
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	rows, err := h.service.List(r.Context(), businessID, filter, shared.ParseListRange(r))
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	out := make([]rowResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowResponse{
			ID:            row.ID,
			AccountID:     row.AccountID,
			PeriodID:      row.PeriodID,
			EntryID:       row.EntryID,
			EntryNumber:   row.EntryNumber,
			EntryDate:     row.EntryDate.Format("2006-01-02"),
			Description:   row.Description,
			Debit:         row.Debit.StringFixed(2),
			Credit:        row.Credit.StringFixed(2),
			BalanceDebit:  row.BalanceDebit.StringFixed(2),
			BalanceCredit: row.BalanceCredit.StringFixed(2),
		})
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) rebuild(w http.ResponseWriter, r *http.Request) {
	businessID, ok := shared.BusinessFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, r, httpx.ErrForbidden)
		return
	}
	var periodID *int64
	if raw := r.URL.Query().Get("period_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.RespondError(w, r, httpx.ErrValidation)
			return
		}
		periodID = &id
	}
	if err := h.service.Rebuild(r.Context(), businessID, periodID); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "rebuilt"})
}
