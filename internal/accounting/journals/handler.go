package journals

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
	r.Post("/{id}/post", h.post)
	r.Post("/{id}/reverse", h.reverse)
}

func identity(r *http.Request) (businessID, userID int64, ok bool) {
	businessID, ok = shared.BusinessFromContext(r.Context())
	if !ok {
		return 0, 0, false
	}
	userID, _ = shared.UserFromContext(r.Context())
	return businessID, userID, true
}

func parseFilter(r *http.Request) (Filter, error) {
	var f Filter
	q := r.URL.Query()
	if raw := q.Get("status"); raw != "" {
		st := EntryStatus(raw)
		switch st {
		case StatusDraft, StatusPosted, StatusReversed:
			f.Status = &st
		default:
			return Filter{}, httpx.ErrValidation
		}
	}
	if raw := q.Get("source_type"); raw != "" {
		st, err := ParseSourceType(raw)
		if err != nil {
			return Filter{}, err
		}
		f.SourceType = &st
	}
	if raw := q.Get("period_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Filter{}, httpx.ErrValidation
		}
		f.PeriodID = &id
	}
	if raw := q.Get("from"); raw != "" {
		d, err := parseDate(raw)
		if err != nil {
			return Filter{}, err
		}
		f.From = &d
	}
	if raw := q.Get("to"); raw != "" {
		d, err := parseDate(raw)
		if err != nil {
			return Filter{}, err
		}
		f.To = &d
	}
	return f, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	businessID, _, ok := identity(r)
	if !ok {
		httpx.RespondError(w, r, httpx.ErrForbidden)
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	entries, err := h.service.List(r.Context(), businessID, filter, shared.ParseListRange(r))
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	businessID, _, ok := identity(r)
	if !ok {
		httpx.RespondError(w, r, httpx.ErrForbidden)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, r, httpx.ErrValidation)
		return
	}
	entry, err := h.service.Get(r.Context(), id, businessID)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toEntryResponse(entry))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	businessID, userID, ok := identity(r)
	if !ok {
		httpx.RespondError(w, r, httpx.ErrForbidden)
		return
	}
	var req createEntryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, r, httpx.ErrValidation)
		return
	}
	in, err := req.toInput(businessID, userID)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	entry, err := h.service.Create(r.Context(), in)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toEntryResponse(entry))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	businessID, _, ok := identity(r)
	if !ok {
		httpx.RespondError(w, r, httpx.ErrForbidden)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, r, httpx.ErrValidation)
		return
	}
	var req updateEntryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, r, httpx.ErrValidation)
		return
	}
	date, err := parseDate(req.EntryDate)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	lines, err := toLines(req.Lines)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	entry, err := h.service.Update(r.Context(), id, businessID, UpdateInput{
		EntryDate:   date,
		Reference:   req.Reference,
		Description: req.Description,
		Lines:       lines,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toEntryResponse(entry))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	businessID, _, ok := identity(r)
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

func (h *Handler) post(w http.ResponseWriter, r *http.Request) {
	businessID, userID, ok := identity(r)
	if !ok {
		httpx.RespondError(w, r, httpx.ErrForbidden)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, r, httpx.ErrValidation)
		return
	}
	entry, err := h.service.Post(r.Context(), id, businessID, userID)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toEntryResponse(entry))
}

func (h *Handler) reverse(w http.ResponseWriter, r *http.Request) {
	businessID, userID, ok := identity(r)
	if !ok {
		httpx.RespondError(w, r, httpx.ErrForbidden)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, r, httpx.ErrValidation)
		return
	}
	var req reverseEntryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, r, httpx.ErrValidation)
		return
	}
	var date time.Time
	if req.Date != "" {
		date, err = parseDate(req.Date)
		if err != nil {
			httpx.RespondError(w, r, err)
			return
		}
	}
	entry, err := h.service.Reverse(r.Context(), id, businessID, userID, date, req.Description)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toEntryResponse(entry))
}
